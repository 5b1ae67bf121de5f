package mapper

import (
	"fmt"

	"github.com/nokel/shopify-migration-tool/internal/shopify"
	"github.com/nokel/shopify-migration-tool/internal/wordpress"
)

// MapPage converts a Shopify page into a WordPress page payload.
func MapPage(p *shopify.Page) (*wordpress.NewPage, error) {
	if p == nil {
		return nil, fmt.Errorf("nil page")
	}
	if p.Title == "" {
		return nil, fmt.Errorf("page %d has no title", p.ID)
	}
	return &wordpress.NewPage{
		Title:   p.Title,
		Content: p.BodyHTML,
		Slug:    p.Handle,
		Status:  "publish",
	}, nil
}

// MapBlogArticle converts a Shopify blog article into a WordPress post
// payload, preserving the original publish date.
func MapBlogArticle(a *shopify.Article) (*wordpress.NewPost, error) {
	if a == nil {
		return nil, fmt.Errorf("nil article")
	}
	if a.Title == "" {
		return nil, fmt.Errorf("article %d has no title", a.ID)
	}
	return &wordpress.NewPost{
		Title:   a.Title,
		Content: a.BodyHTML,
		Slug:    a.Handle,
		Status:  "publish",
		Date:    a.PublishedAt,
	}, nil
}
