package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/nokel/shopify-migration-tool/internal/shopify"
	"github.com/nokel/shopify-migration-tool/internal/woocommerce"
	"github.com/nokel/shopify-migration-tool/internal/wordpress"
)

type fakeSource struct {
	products    []shopify.Product
	customers   []shopify.Customer
	orders      []shopify.Order
	collections []shopify.Collection
	discounts   []shopify.Discount
	pages       []shopify.Page
	blogs       []shopify.Blog
	articles    map[int64][]shopify.Article
	events      map[int64][]shopify.Event

	getOrdersCalls int
	connErr        error
}

func (f *fakeSource) GetProducts(context.Context) ([]shopify.Product, error) {
	return f.products, nil
}

func (f *fakeSource) GetCustomers(context.Context) ([]shopify.Customer, error) {
	return f.customers, nil
}

func (f *fakeSource) GetOrders(context.Context) ([]shopify.Order, error) {
	f.getOrdersCalls++
	return f.orders, nil
}

func (f *fakeSource) GetCollections(context.Context) ([]shopify.Collection, error) {
	return f.collections, nil
}

func (f *fakeSource) GetDiscounts(context.Context) ([]shopify.Discount, error) {
	return f.discounts, nil
}

func (f *fakeSource) GetPages(context.Context) ([]shopify.Page, error) {
	return f.pages, nil
}

func (f *fakeSource) GetBlogs(context.Context) ([]shopify.Blog, error) {
	return f.blogs, nil
}

func (f *fakeSource) GetBlogArticles(_ context.Context, blogID int64) ([]shopify.Article, error) {
	return f.articles[blogID], nil
}

func (f *fakeSource) GetOrderEvents(_ context.Context, orderID int64) ([]shopify.Event, error) {
	return f.events[orderID], nil
}

func (f *fakeSource) TestConnection(context.Context) error { return f.connErr }

type fakeTarget struct {
	existingCustomers  []woocommerce.Customer
	existingProducts   []woocommerce.Product
	existingCategories []woocommerce.Category
	existingOrders     []woocommerce.Order
	existingCoupons    []woocommerce.Coupon

	nextID int

	createdProducts   []*woocommerce.Product
	createdCustomers  []*woocommerce.Customer
	createdOrders     []*woocommerce.Order
	createdCoupons    []*woocommerce.Coupon
	createdCategories []*woocommerce.Category
	orderUpdates      []*woocommerce.Order
	imageUpdates      map[int][]woocommerce.Image
	notes             map[int][]string

	onCreateCustomer func(count int)
	createProductErr error
}

func (f *fakeTarget) allocID() int {
	if f.nextID == 0 {
		f.nextID = 100
	}
	f.nextID++
	return f.nextID
}

func (f *fakeTarget) GetExistingCustomers(context.Context) ([]woocommerce.Customer, error) {
	return f.existingCustomers, nil
}

func (f *fakeTarget) GetExistingProducts(context.Context) ([]woocommerce.Product, error) {
	return f.existingProducts, nil
}

func (f *fakeTarget) GetExistingCategories(context.Context) ([]woocommerce.Category, error) {
	return f.existingCategories, nil
}

func (f *fakeTarget) GetExistingOrders(context.Context) ([]woocommerce.Order, error) {
	return f.existingOrders, nil
}

func (f *fakeTarget) GetExistingCoupons(context.Context) ([]woocommerce.Coupon, error) {
	return f.existingCoupons, nil
}

func (f *fakeTarget) CreateProduct(_ context.Context, p *woocommerce.Product) (*woocommerce.Product, error) {
	if f.createProductErr != nil {
		return nil, f.createProductErr
	}
	created := *p
	created.ID = f.allocID()
	f.createdProducts = append(f.createdProducts, &created)
	return &created, nil
}

func (f *fakeTarget) CreateCustomer(_ context.Context, c *woocommerce.Customer) (*woocommerce.Customer, error) {
	created := *c
	created.ID = f.allocID()
	f.createdCustomers = append(f.createdCustomers, &created)
	if f.onCreateCustomer != nil {
		f.onCreateCustomer(len(f.createdCustomers))
	}
	return &created, nil
}

func (f *fakeTarget) CreateOrder(_ context.Context, o *woocommerce.Order) (*woocommerce.Order, error) {
	created := *o
	created.ID = f.allocID()
	f.createdOrders = append(f.createdOrders, &created)
	return &created, nil
}

func (f *fakeTarget) CreateCoupon(_ context.Context, c *woocommerce.Coupon) (*woocommerce.Coupon, error) {
	created := *c
	created.ID = f.allocID()
	f.createdCoupons = append(f.createdCoupons, &created)
	return &created, nil
}

func (f *fakeTarget) CreateProductCategory(_ context.Context, c *woocommerce.Category) (*woocommerce.Category, error) {
	created := *c
	created.ID = f.allocID()
	f.createdCategories = append(f.createdCategories, &created)
	return &created, nil
}

func (f *fakeTarget) UpdateOrder(_ context.Context, orderID int, o *woocommerce.Order) (*woocommerce.Order, error) {
	update := *o
	update.ID = orderID
	f.orderUpdates = append(f.orderUpdates, &update)
	return &update, nil
}

func (f *fakeTarget) AddOrderNote(_ context.Context, orderID int, note string, _ bool) (*woocommerce.OrderNote, error) {
	if f.notes == nil {
		f.notes = make(map[int][]string)
	}
	f.notes[orderID] = append(f.notes[orderID], note)
	return &woocommerce.OrderNote{ID: f.allocID(), Note: note}, nil
}

func (f *fakeTarget) UpdateProductImages(_ context.Context, productID int, images []woocommerce.Image) (*woocommerce.Product, error) {
	if f.imageUpdates == nil {
		f.imageUpdates = make(map[int][]woocommerce.Image)
	}
	f.imageUpdates[productID] = images
	return &woocommerce.Product{ID: productID, Images: images}, nil
}

func (f *fakeTarget) TestConnection(context.Context) error { return nil }

func (f *fakeTarget) mutations() int {
	return len(f.createdProducts) + len(f.createdCustomers) + len(f.createdOrders) +
		len(f.createdCoupons) + len(f.createdCategories) + len(f.orderUpdates) +
		len(f.imageUpdates) + len(f.notes)
}

type fakeCMS struct {
	existingPages []wordpress.Page
	existingPosts []wordpress.Post

	createdPages []*wordpress.NewPage
	createdPosts []*wordpress.NewPost

	connErr error
}

func (f *fakeCMS) GetExistingPages(context.Context) ([]wordpress.Page, error) {
	return f.existingPages, nil
}

func (f *fakeCMS) GetExistingPosts(context.Context) ([]wordpress.Post, error) {
	return f.existingPosts, nil
}

func (f *fakeCMS) CreatePage(_ context.Context, p *wordpress.NewPage) (*wordpress.Page, error) {
	f.createdPages = append(f.createdPages, p)
	return &wordpress.Page{ID: len(f.createdPages), Slug: p.Slug}, nil
}

func (f *fakeCMS) CreatePost(_ context.Context, p *wordpress.NewPost) (*wordpress.Post, error) {
	f.createdPosts = append(f.createdPosts, p)
	return &wordpress.Post{ID: len(f.createdPosts), Slug: p.Slug}, nil
}

func (f *fakeCMS) TestConnection(context.Context) error { return f.connErr }

type fakeMedia struct {
	processed map[string][]woocommerce.Image
	fail      bool
}

func (f *fakeMedia) ProcessProductImages(_ context.Context, productName string, images []woocommerce.Image) ([]woocommerce.Image, error) {
	if f.fail {
		return nil, fmt.Errorf("media pipeline down")
	}
	if f.processed == nil {
		f.processed = make(map[string][]woocommerce.Image)
	}
	uploaded := make([]woocommerce.Image, len(images))
	for i, img := range images {
		uploaded[i] = woocommerce.Image{ID: 9000 + i, Name: img.Name, Alt: img.Alt}
	}
	f.processed[productName] = uploaded
	return uploaded, nil
}

func (f *fakeMedia) Cleanup(time.Duration) (int, error) { return 0, nil }
