package wordpress

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"

	"github.com/nokel/shopify-migration-tool/internal/common"
	"github.com/nokel/shopify-migration-tool/internal/httpc"
	"github.com/nokel/shopify-migration-tool/internal/retry"
)

const perPage = 100

// statuses included when snapshotting existing content
const allStatuses = "publish,draft,pending,private"

// Config holds the connection settings for a WordPress site. Password is an
// application password; embedded spaces are tolerated and stripped.
type Config struct {
	BaseURL   string
	Username  string
	Password  string
	TlsConfig *tls.Config
	Retry     *retry.Config
}

// Client talks to the wp-json/wp/v2 REST API, including the media library
// used by the image pipeline.
type Client struct {
	baseURL string
	http    *resty.Client
	media   *resty.Client
	retry   *retry.Config
	logger  *common.Logger
}

func New(cfg Config) *Client {
	password := strings.ReplaceAll(cfg.Password, " ", "")

	h := httpc.Httpc{TlsConfig: cfg.TlsConfig}
	c := h.New()
	c.SetBasicAuth(cfg.Username, password)
	c.SetHeader("Content-Type", "application/json")

	// media uploads move whole files and get a longer timeout
	m := h.NewMedia()
	m.SetBasicAuth(cfg.Username, password)

	rc := cfg.Retry
	if rc == nil {
		rc = retry.DefaultConfig()
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    c,
		media:   m,
		retry:   rc,
		logger:  common.GetLogger().WithComponent("wordpress").WithPlatform("wordpress"),
	}
}

func (c *Client) endpointURL(endpoint string) string {
	return fmt.Sprintf("%s/wp-json/wp/v2/%s", c.baseURL, endpoint)
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
			return fmt.Errorf("wordpress %s %s returned status %d: %s", method, endpoint, resp.StatusCode(), strings.TrimSpace(resp.String()))
		}
		body = resp.Body()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}

func getAll[T any](ctx context.Context, c *Client, endpoint string, extraParams map[string]string) ([]T, error) {
	var all []T
	page := 1

	for {
		params := map[string]string{
			"page":     fmt.Sprintf("%d", page),
			"per_page": fmt.Sprintf("%d", perPage),
		}
		for k, v := range extraParams {
			params[k] = v
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

// GetExistingPages returns every page in any status.
func (c *Client) GetExistingPages(ctx context.Context) ([]Page, error) {
	c.logger.Info("fetching existing pages")
	return getAll[Page](ctx, c, "pages", map[string]string{"status": allStatuses})
}

// GetExistingPosts returns every post in any status.
func (c *Client) GetExistingPosts(ctx context.Context) ([]Post, error) {
	c.logger.Info("fetching existing posts")
	return getAll[Post](ctx, c, "posts", map[string]string{"status": allStatuses})
}

// CreatePage creates a page.
func (c *Client) CreatePage(ctx context.Context, p *NewPage) (*Page, error) {
	body, err := c.do(ctx, http.MethodPost, "pages", nil, p)
	if err != nil {
		return nil, err
	}
	var out Page
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode page create response: %w", err)
	}
	return &out, nil
}

// CreatePost creates a blog post.
func (c *Client) CreatePost(ctx context.Context, p *NewPost) (*Post, error) {
	body, err := c.do(ctx, http.MethodPost, "posts", nil, p)
	if err != nil {
		return nil, err
	}
	var out Post
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode post create response: %w", err)
	}
	return &out, nil
}

// SearchMedia looks up media library attachments whose filename or title
// contains the given stem, most recent first.
func (c *Client) SearchMedia(ctx context.Context, stem string) ([]Media, error) {
	params := map[string]string{
		"search":   stem,
		"per_page": fmt.Sprintf("%d", perPage),
		"orderby":  "date",
		"order":    "desc",
	}
	body, err := c.do(ctx, http.MethodGet, "media", params, nil)
	if err != nil {
		return nil, err
	}
	var items []Media
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, fmt.Errorf("decode media search: %w", err)
	}
	return items, nil
}

// UploadMedia uploads raw file bytes to the media library, then applies alt
// text and title when provided.
func (c *Client) UploadMedia(ctx context.Context, filename, mimeType string, data []byte, altText, title string) (*Media, error) {
	var body []byte

	err := retry.Do(ctx, c.retry, func() error {
		resp, err := c.media.R().
			SetContext(ctx).
			SetHeader("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename)).
			SetHeader("Content-Type", mimeType).
			SetBody(data).
			Post(c.endpointURL("media"))
		if err != nil {
			return err
		}
		if resp.StatusCode() == http.StatusTooManyRequests {
			return &retry.RateLimitError{RetryAfter: retry.RetryAfterFromResponse(resp.RawResponse)}
		}
		if resp.IsError() {
			return fmt.Errorf("wordpress media upload returned status %d: %s", resp.StatusCode(), strings.TrimSpace(resp.String()))
		}
		body = resp.Body()
		return nil
	})
	if err != nil {
		return nil, err
	}

	var media Media
	if err := json.Unmarshal(body, &media); err != nil {
		return nil, fmt.Errorf("decode media upload response: %w", err)
	}

	if altText != "" || title != "" {
		update := map[string]string{}
		if altText != "" {
			update["alt_text"] = altText
		}
		if title != "" {
			update["title"] = title
		}
		// best effort; the attachment itself is already stored
		if _, err := c.do(ctx, http.MethodPost, fmt.Sprintf("media/%d", media.ID), nil, update); err != nil {
			c.logger.Warn("failed to set media alt/title", "media_id", media.ID, "error", err)
		}
	}

	return &media, nil
}

// TestConnection verifies credentials against the current-user endpoint.
func (c *Client) TestConnection(ctx context.Context) error {
	body, err := c.do(ctx, http.MethodGet, "users/me", nil, nil)
	if err != nil {
		return fmt.Errorf("wordpress connection test failed: %w", err)
	}
	name := gjson.GetBytes(body, "name").String()
	c.logger.Info("connected to wordpress", "user", name)
	return nil
}
