package engine

import (
	"context"
	"fmt"

	"github.com/nokel/shopify-migration-tool/internal/mapper"
	"github.com/nokel/shopify-migration-tool/internal/shopify"
	"github.com/nokel/shopify-migration-tool/internal/woocommerce"
)

func (e *Engine) migrateCategories(ctx context.Context, mc *Context, dryRun bool) error {
	collections, err := e.source.GetCollections(ctx)
	if err != nil {
		return err
	}

	stats := mc.Report.Phases[PhaseCategories]
	stats.Attempted = len(collections)
	e.logf("INFO", "Found %d categories to migrate", len(collections))

	for i := range collections {
		if e.isStopped() {
			break
		}
		col := &collections[i]

		success := false
		var errMsg string

		if existing := findExistingCategory(mc, col); existing != nil {
			mc.Mappings.Categories[fmt.Sprintf("%d", col.ID)] = existing.ID
			e.logf("INFO", "[%s] Skipped existing category: %s", modeTag(dryRun), col.Title)
			success = true
		} else if dryRun {
			e.logf("INFO", "[DRY RUN] Would create category: %s", col.Title)
			success = true
		} else {
			created, err := e.target.CreateProductCategory(ctx, mapper.MapCategory(col))
			if err != nil {
				errMsg = fmt.Sprintf("Failed to create category %s: %v", col.Title, err)
			} else {
				mc.Mappings.Categories[fmt.Sprintf("%d", col.ID)] = created.ID
				e.logf("INFO", "Created category: %s", col.Title)
				success = true
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

	e.logf("INFO", "Categories: %d/%d successful, %d failed", stats.Successful, stats.Attempted, stats.Failed)
	return nil
}

// findExistingCategory matches a source collection against the category
// snapshot by name, then by slug.
func findExistingCategory(mc *Context, col *shopify.Collection) *woocommerce.Category {
	if col.Title != "" {
		for i := range mc.ExistingCategories {
			if mc.ExistingCategories[i].Name == col.Title {
				return &mc.ExistingCategories[i]
			}
		}
	}
	if col.Handle != "" {
		for i := range mc.ExistingCategories {
			if mc.ExistingCategories[i].Slug == col.Handle {
				return &mc.ExistingCategories[i]
			}
		}
	}
	return nil
}

func modeTag(dryRun bool) string {
	if dryRun {
		return "DRY RUN"
	}
	return "LIVE"
}
