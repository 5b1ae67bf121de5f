package shopify

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"

	"github.com/nokel/shopify-migration-tool/internal/common"
	"github.com/nokel/shopify-migration-tool/internal/httpc"
	"github.com/nokel/shopify-migration-tool/internal/retry"
)

// APIVersion pins the Admin REST API version all requests go through.
const APIVersion = "2023-10"

const pageLimit = 250

// Config holds the connection settings for a Shopify store.
type Config struct {
	StoreURL    string
	AccessToken string
	TlsConfig   *tls.Config
	Retry       *retry.Config
}

// Client talks to the Shopify Admin REST API. All list calls drain
// cursor pagination (Link header page_info) before returning.
type Client struct {
	storeURL string
	http     *resty.Client
	retry    *retry.Config
	logger   *common.Logger
}

func New(cfg Config) *Client {
	h := httpc.Httpc{TlsConfig: cfg.TlsConfig}
	c := h.New()
	c.SetHeader("X-Shopify-Access-Token", cfg.AccessToken)
	c.SetHeader("Content-Type", "application/json")

	rc := cfg.Retry
	if rc == nil {
		rc = retry.DefaultConfig()
	}

	return &Client{
		storeURL: strings.TrimRight(cfg.StoreURL, "/"),
		http:     c,
		retry:    rc,
		logger:   common.GetLogger().WithComponent("shopify").WithPlatform("shopify"),
	}
}

func (c *Client) endpointURL(endpoint string) string {
	return fmt.Sprintf("%s/admin/api/%s/%s", c.storeURL, APIVersion, endpoint)
}

// get performs one GET with retry and returns the body plus the Link header
// used for cursor pagination.
func (c *Client) get(ctx context.Context, endpoint string, params map[string]string) ([]byte, string, error) {
	var body []byte
	var link string

	err := retry.Do(ctx, c.retry, func() error {
		resp, err := c.http.R().
			SetContext(ctx).
			SetQueryParams(params).
			Get(c.endpointURL(endpoint))
		if err != nil {
			return err
		}
		if resp.StatusCode() == http.StatusTooManyRequests {
			return &retry.RateLimitError{RetryAfter: retry.RetryAfterFromResponse(resp.RawResponse)}
		}
		if resp.IsError() {
			return fmt.Errorf("shopify %s returned status %d: %s", endpoint, resp.StatusCode(), strings.TrimSpace(resp.String()))
		}
		body = resp.Body()
		link = resp.Header().Get("Link")
		return nil
	})
	if err != nil {
		return nil, "", err
	}
	return body, link, nil
}

// nextPageInfo extracts the page_info cursor from a Link header, or "" when
// there is no next page.
func nextPageInfo(link string) string {
	for _, part := range strings.Split(link, ",") {
		if !strings.Contains(part, `rel="next"`) {
			continue
		}
		start := strings.Index(part, "<")
		end := strings.Index(part, ">")
		if start < 0 || end <= start {
			continue
		}
		u, err := url.Parse(part[start+1 : end])
		if err != nil {
			return ""
		}
		return u.Query().Get("page_info")
	}
	return ""
}

// getPaginated drains a list endpoint. The response envelope is unwrapped by
// key ({"products": [...]} etc.) and each page appended into out, which must
// be a pointer to a slice.
func getPaginated[T any](ctx context.Context, c *Client, endpoint, key string, extraParams map[string]string) ([]T, error) {
	var all []T

	params := map[string]string{"limit": fmt.Sprintf("%d", pageLimit)}
	for k, v := range extraParams {
		params[k] = v
	}

	for {
		body, link, err := c.get(ctx, endpoint, params)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", endpoint, err)
		}

		raw := gjson.GetBytes(body, key)
		if !raw.Exists() {
			break
		}

		var page []T
		if err := json.Unmarshal([]byte(raw.Raw), &page); err != nil {
			return nil, fmt.Errorf("decode %s: %w", endpoint, err)
		}
		if len(page) == 0 {
			break
		}
		all = append(all, page...)
		c.logger.Debug("fetched page", "endpoint", endpoint, "items", len(page), "total", len(all))

		pageInfo := nextPageInfo(link)
		if pageInfo == "" {
			break
		}
		// page_info requests reject filter params; only limit survives
		params = map[string]string{
			"limit":     fmt.Sprintf("%d", pageLimit),
			"page_info": pageInfo,
		}
	}

	return all, nil
}

// GetProducts returns every product in the store.
func (c *Client) GetProducts(ctx context.Context) ([]Product, error) {
	c.logger.Info("fetching products")
	return getPaginated[Product](ctx, c, "products.json", "products", nil)
}

// GetCustomers returns every customer in the store.
func (c *Client) GetCustomers(ctx context.Context) ([]Customer, error) {
	c.logger.Info("fetching customers")
	return getPaginated[Customer](ctx, c, "customers.json", "customers", nil)
}

// GetOrders returns every order regardless of status.
func (c *Client) GetOrders(ctx context.Context) ([]Order, error) {
	c.logger.Info("fetching orders")
	return getPaginated[Order](ctx, c, "orders.json", "orders", map[string]string{"status": "any"})
}

// GetCollections returns custom and smart collections merged into one list.
func (c *Client) GetCollections(ctx context.Context) ([]Collection, error) {
	c.logger.Info("fetching collections")
	custom, err := getPaginated[Collection](ctx, c, "custom_collections.json", "custom_collections", nil)
	if err != nil {
		return nil, err
	}
	smart, err := getPaginated[Collection](ctx, c, "smart_collections.json", "smart_collections", nil)
	if err != nil {
		return nil, err
	}
	return append(custom, smart...), nil
}

// GetDiscounts returns every discount code.
func (c *Client) GetDiscounts(ctx context.Context) ([]Discount, error) {
	c.logger.Info("fetching discount codes")
	return getPaginated[Discount](ctx, c, "discount_codes.json", "discount_codes", nil)
}

// GetPages returns every page.
func (c *Client) GetPages(ctx context.Context) ([]Page, error) {
	c.logger.Info("fetching pages")
	return getPaginated[Page](ctx, c, "pages.json", "pages", nil)
}

// GetBlogs returns every blog.
func (c *Client) GetBlogs(ctx context.Context) ([]Blog, error) {
	c.logger.Info("fetching blogs")
	return getPaginated[Blog](ctx, c, "blogs.json", "blogs", nil)
}

// GetBlogArticles returns all articles of one blog.
func (c *Client) GetBlogArticles(ctx context.Context, blogID int64) ([]Article, error) {
	c.logger.Info("fetching blog articles", "blog_id", blogID)
	endpoint := fmt.Sprintf("blogs/%d/articles.json", blogID)
	return getPaginated[Article](ctx, c, endpoint, "articles", nil)
}

// GetOrderEvents returns the timeline events of one order. Not every store
// plan exposes this endpoint; callers treat an error as "timeline not
// obtainable" and fall back to the order's note field.
func (c *Client) GetOrderEvents(ctx context.Context, orderID int64) ([]Event, error) {
	endpoint := fmt.Sprintf("orders/%d/events.json", orderID)
	return getPaginated[Event](ctx, c, endpoint, "events", nil)
}

// TestConnection verifies credentials by loading the shop resource.
func (c *Client) TestConnection(ctx context.Context) error {
	body, _, err := c.get(ctx, "shop.json", nil)
	if err != nil {
		return fmt.Errorf("shopify connection test failed: %w", err)
	}
	shopName := gjson.GetBytes(body, "shop.name").String()
	c.logger.Info("connected to shopify store", "shop", shopName)
	return nil
}
