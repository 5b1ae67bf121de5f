package engine

import (
	"context"
	"fmt"

	"github.com/nokel/shopify-migration-tool/internal/mapper"
	"github.com/nokel/shopify-migration-tool/internal/shopify"
	"github.com/nokel/shopify-migration-tool/internal/wordpress"
)

// migratePages moves source pages to CMS pages and blog articles to CMS
// posts. Without a configured CMS the whole phase is skipped, not failed.
func (e *Engine) migratePages(ctx context.Context, mc *Context, dryRun bool) error {
	if e.cms == nil {
		e.logf("INFO", "CMS not configured, skipping pages phase")
		return nil
	}

	pages, err := e.source.GetPages(ctx)
	if err != nil {
		return err
	}
	blogs, err := e.source.GetBlogs(ctx)
	if err != nil {
		return err
	}
	var articles []shopify.Article
	for _, blog := range blogs {
		items, err := e.source.GetBlogArticles(ctx, blog.ID)
		if err != nil {
			return err
		}
		articles = append(articles, items...)
	}

	stats := mc.Report.Phases[PhasePages]
	stats.Attempted = len(pages) + len(articles)
	e.logf("INFO", "Found %d pages and %d blog articles to migrate", len(pages), len(articles))

	for i := range pages {
		if e.isStopped() {
			break
		}
		p := &pages[i]

		success := false
		var errMsg string

		if existing := findExistingPage(mc, p.Title, p.Handle); existing != nil {
			e.logf("INFO", "[%s] Skipped existing page: %s", modeTag(dryRun), p.Title)
			success = true
		} else {
			mapped, err := mapper.MapPage(p)
			if err != nil {
				errMsg = fmt.Sprintf("Page mapping failed for %d: %v", p.ID, err)
			} else if dryRun {
				e.logf("INFO", "[DRY RUN] Would create page: %s", p.Title)
				success = true
			} else {
				if _, err := e.cms.CreatePage(ctx, mapped); err != nil {
					errMsg = fmt.Sprintf("Failed to create page %s: %v", p.Title, err)
				} else {
					e.logf("INFO", "Created page: %s", p.Title)
					success = true
				}
			}
		}

		// single counting point
		if success {
			stats.Successful++
		} else {
			stats.Failed++
			if errMsg != "" {
				e.logf("ERROR", "%s", errMsg)
				mc.Report.addError(errMsg)
			}
		}
	}

	for i := range articles {
		if e.isStopped() {
			break
		}
		a := &articles[i]

		success := false
		var errMsg string

		if existing := findExistingPost(mc, a.Title, a.Handle); existing != nil {
			e.logf("INFO", "[%s] Skipped existing blog post: %s", modeTag(dryRun), a.Title)
			success = true
		} else {
			mapped, err := mapper.MapBlogArticle(a)
			if err != nil {
				errMsg = fmt.Sprintf("Article mapping failed for %d: %v", a.ID, err)
			} else if dryRun {
				e.logf("INFO", "[DRY RUN] Would create blog post: %s", a.Title)
				success = true
			} else {
				if _, err := e.cms.CreatePost(ctx, mapped); err != nil {
					errMsg = fmt.Sprintf("Failed to create blog post %s: %v", a.Title, err)
				} else {
					e.logf("INFO", "Created blog post: %s", a.Title)
					success = true
				}
			}
		}

		// single counting point
		if success {
			stats.Successful++
		} else {
			stats.Failed++
			if errMsg != "" {
				e.logf("ERROR", "%s", errMsg)
				mc.Report.addError(errMsg)
			}
		}
	}

	e.logf("INFO", "Pages: %d/%d successful, %d failed", stats.Successful, stats.Attempted, stats.Failed)
	return nil
}

// findExistingPage matches by rendered title, then by slug.
func findExistingPage(mc *Context, title, slug string) *wordpress.Page {
	if title != "" {
		for i := range mc.ExistingPages {
			if mc.ExistingPages[i].Title.Rendered == title {
				return &mc.ExistingPages[i]
			}
		}
	}
	if slug != "" {
		for i := range mc.ExistingPages {
			if mc.ExistingPages[i].Slug == slug {
				return &mc.ExistingPages[i]
			}
		}
	}
	return nil
}

func findExistingPost(mc *Context, title, slug string) *wordpress.Post {
	if title != "" {
		for i := range mc.ExistingPosts {
			if mc.ExistingPosts[i].Title.Rendered == title {
				return &mc.ExistingPosts[i]
			}
		}
	}
	if slug != "" {
		for i := range mc.ExistingPosts {
			if mc.ExistingPosts[i].Slug == slug {
				return &mc.ExistingPosts[i]
			}
		}
	}
	return nil
}
