package woocommerce

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/nokel/shopify-migration-tool/internal/common"
	"github.com/nokel/shopify-migration-tool/internal/httpc"
	"github.com/nokel/shopify-migration-tool/internal/retry"
)

const perPage = 100

// Config holds the connection settings for a WooCommerce site.
type Config struct {
	BaseURL        string
	ConsumerKey    string
	ConsumerSecret string
	TlsConfig      *tls.Config
	Retry          *retry.Config
}

// Client talks to the wp-json/wc/v3 REST API with consumer key/secret
// basic auth.
type Client struct {
	baseURL string
	http    *resty.Client
	retry   *retry.Config
	logger  *common.Logger
}

func New(cfg Config) *Client {
	h := httpc.Httpc{TlsConfig: cfg.TlsConfig}
	c := h.New()
	c.SetBasicAuth(cfg.ConsumerKey, cfg.ConsumerSecret)
	c.SetHeader("Content-Type", "application/json")

	rc := cfg.Retry
	if rc == nil {
		rc = retry.DefaultConfig()
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    c,
		retry:   rc,
		logger:  common.GetLogger().WithComponent("woocommerce").WithPlatform("woocommerce"),
	}
}

func (c *Client) endpointURL(endpoint string) string {
	return fmt.Sprintf("%s/wp-json/wc/v3/%s", c.baseURL, endpoint)
}

func (c *Client) do(ctx context.Context, method, endpoint string, params map[string]string, payload any) ([]byte, error) {
	var body []byte

	err := retry.Do(ctx, c.retry, func() error {
		req := c.http.R().SetContext(ctx)
		if params != nil {
			req.SetQueryParams(params)
		}
		if payload != nil {
			req.SetBody(payload)
		}
		resp, err := req.Execute(method, c.endpointURL(endpoint))
		if err != nil {
			return err
		}
		if resp.StatusCode() == http.StatusTooManyRequests {
			return &retry.RateLimitError{RetryAfter: retry.RetryAfterFromResponse(resp.RawResponse)}
		}
		if resp.IsError() {
			return fmt.Errorf("woocommerce %s %s returned status %d: %s", method, endpoint, resp.StatusCode(), strings.TrimSpace(resp.String()))
		}
		body = resp.Body()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}

// getAll drains a page/per_page paginated collection endpoint.
func getAll[T any](ctx context.Context, c *Client, endpoint string) ([]T, error) {
	var all []T
	page := 1

	for {
		params := map[string]string{
			"page":     fmt.Sprintf("%d", page),
			"per_page": fmt.Sprintf("%d", perPage),
		}
		body, err := c.do(ctx, http.MethodGet, endpoint, params, nil)
		if err != nil {
			return nil, fmt.Errorf("fetch %s page %d: %w", endpoint, page, err)
		}

		var items []T
		if err := json.Unmarshal(body, &items); err != nil {
			return nil, fmt.Errorf("decode %s: %w", endpoint, err)
		}
		if len(items) == 0 {
			break
		}
		all = append(all, items...)
		if len(items) < perPage {
			break
		}
		page++
	}

	return all, nil
}

func create[T any](ctx context.Context, c *Client, endpoint string, payload any) (*T, error) {
	body, err := c.do(ctx, http.MethodPost, endpoint, nil, payload)
	if err != nil {
		return nil, err
	}
	var out T
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	return &out, nil
}

// GetExistingCustomers returns every customer on the target site.
func (c *Client) GetExistingCustomers(ctx context.Context) ([]Customer, error) {
	c.logger.Info("fetching existing customers")
	return getAll[Customer](ctx, c, "customers")
}

// GetExistingProducts returns every product on the target site.
func (c *Client) GetExistingProducts(ctx context.Context) ([]Product, error) {
	c.logger.Info("fetching existing products")
	return getAll[Product](ctx, c, "products")
}

// GetExistingCategories returns every product category.
func (c *Client) GetExistingCategories(ctx context.Context) ([]Category, error) {
	c.logger.Info("fetching existing categories")
	return getAll[Category](ctx, c, "products/categories")
}

// GetExistingOrders returns every order.
func (c *Client) GetExistingOrders(ctx context.Context) ([]Order, error) {
	c.logger.Info("fetching existing orders")
	return getAll[Order](ctx, c, "orders")
}

// GetExistingCoupons returns every coupon.
func (c *Client) GetExistingCoupons(ctx context.Context) ([]Coupon, error) {
	c.logger.Info("fetching existing coupons")
	return getAll[Coupon](ctx, c, "coupons")
}

// CreateProduct creates a product and returns the stored entity.
func (c *Client) CreateProduct(ctx context.Context, p *Product) (*Product, error) {
	return create[Product](ctx, c, "products", p)
}

// CreateCustomer creates a customer.
func (c *Client) CreateCustomer(ctx context.Context, cust *Customer) (*Customer, error) {
	return create[Customer](ctx, c, "customers", cust)
}

// CreateOrder creates an order.
func (c *Client) CreateOrder(ctx context.Context, o *Order) (*Order, error) {
	return create[Order](ctx, c, "orders", o)
}

// CreateCoupon creates a coupon.
func (c *Client) CreateCoupon(ctx context.Context, cp *Coupon) (*Coupon, error) {
	return create[Coupon](ctx, c, "coupons", cp)
}

// CreateProductCategory creates a product category.
func (c *Client) CreateProductCategory(ctx context.Context, cat *Category) (*Category, error) {
	return create[Category](ctx, c, "products/categories", cat)
}

// UpdateOrder applies a partial update to an existing order. Callers are
// responsible for stripping line_items, shipping_lines and fee_lines from
// the payload: the API appends those collections instead of replacing them.
func (c *Client) UpdateOrder(ctx context.Context, orderID int, o *Order) (*Order, error) {
	body, err := c.do(ctx, http.MethodPut, fmt.Sprintf("orders/%d", orderID), nil, o)
	if err != nil {
		return nil, err
	}
	var out Order
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode order update response: %w", err)
	}
	return &out, nil
}

// AddOrderNote attaches a note to an order. customerNote=false keeps it
// private to shop staff.
func (c *Client) AddOrderNote(ctx context.Context, orderID int, note string, customerNote bool) (*OrderNote, error) {
	payload := OrderNote{Note: note, CustomerNote: customerNote}
	return create[OrderNote](ctx, c, fmt.Sprintf("orders/%d/notes", orderID), &payload)
}

// UpdateProductImages replaces a product's image gallery.
func (c *Client) UpdateProductImages(ctx context.Context, productID int, images []Image) (*Product, error) {
	payload := map[string]any{"images": images}
	body, err := c.do(ctx, http.MethodPut, fmt.Sprintf("products/%d", productID), nil, payload)
	if err != nil {
		return nil, err
	}
	var out Product
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode product image update response: %w", err)
	}
	return &out, nil
}

// TestConnection verifies credentials against the system status endpoint.
func (c *Client) TestConnection(ctx context.Context) error {
	if _, err := c.do(ctx, http.MethodGet, "system_status", nil, nil); err != nil {
		return fmt.Errorf("woocommerce connection test failed: %w", err)
	}
	c.logger.Info("connected to woocommerce")
	return nil
}
