package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/nokel/shopify-migration-tool/internal/mapper"
	"github.com/nokel/shopify-migration-tool/internal/shopify"
	"github.com/nokel/shopify-migration-tool/internal/woocommerce"
)

// migrateProducts runs in two phases: create product metadata first, then
// move images separately. Bundling binary transfer into the create request
// makes one slow image able to fail the whole product; splitting them means
// a product is never lost because its images were.
func (e *Engine) migrateProducts(ctx context.Context, mc *Context, dryRun bool) error {
	products, err := e.source.GetProducts(ctx)
	if err != nil {
		return err
	}

	stats := mc.Report.Phases[PhaseProducts]
	stats.Attempted = len(products)
	for i := range products {
		stats.Variants += len(products[i].Variants)
	}
	e.logf("INFO", "Found %d products to migrate", len(products))

	for i := range products {
		if e.isStopped() {
			break
		}
		p := &products[i]
		sourceID := fmt.Sprintf("%d", p.ID)

		success := false
		var errMsg string

		if existing := findExistingProduct(mc, p); existing != nil {
			mc.Mappings.Products[sourceID] = existing.ID
			e.logf("INFO", "[%s] Skipped existing product: %s", modeTag(dryRun), p.Title)
			success = true

			// existing but imageless products still go through the image phase
			if !dryRun && len(p.Images) > 0 && len(existing.Images) == 0 {
				if mapped, err := mapper.MapProduct(p); err == nil && len(mapped.Images) > 0 {
					mc.pendingImages = append(mc.pendingImages, pendingImages{
						targetID: existing.ID,
						name:     p.Title,
						images:   mapped.Images,
					})
					e.logf("INFO", "Existing product %q has no images, will add them", p.Title)
				}
			}
		} else {
			mapped, err := mapper.MapProduct(p)
			if err != nil {
				errMsg = fmt.Sprintf("Product mapping failed for %s: %v", p.Title, err)
			} else if dryRun {
				e.logf("INFO", "[DRY RUN] Would create product: %s", p.Title)
				success = true
			} else {
				// create without images; they move in the image phase
				images := mapped.Images
				mapped.Images = nil

				created, err := e.target.CreateProduct(ctx, mapped)
				if err != nil {
					errMsg = fmt.Sprintf("Failed to create product %s: %v", p.Title, err)
				} else {
					mc.Mappings.Products[sourceID] = created.ID
					e.logf("INFO", "Created product: %s (ID: %d)", p.Title, created.ID)
					success = true
					if len(images) > 0 {
						mc.pendingImages = append(mc.pendingImages, pendingImages{
							targetID: created.ID,
							name:     p.Title,
							images:   images,
						})
					}
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
				mc.Report.addError("Product: " + errMsg)
			}
		}
	}

	e.logf("INFO", "Products: %d/%d successful, %d failed", stats.Successful, stats.Attempted, stats.Failed)

	if !dryRun && !e.isStopped() && len(mc.pendingImages) > 0 {
		e.processPendingImages(ctx, mc)
	}

	return nil
}

// processPendingImages is the second product phase: download each queued
// product's images from the source and attach the uploaded media to the
// target product.
func (e *Engine) processPendingImages(ctx context.Context, mc *Context) {
	if e.media == nil {
		e.logf("WARNING", "Image pipeline not configured, skipping images for %d products", len(mc.pendingImages))
		return
	}

	e.logf("INFO", "Processing images for %d products...", len(mc.pendingImages))
	successful := 0
	failed := 0

	for _, item := range mc.pendingImages {
		if e.isStopped() {
			break
		}

		uploaded, err := e.media.ProcessProductImages(ctx, item.name, item.images)
		if err != nil || len(uploaded) == 0 {
			failed++
			e.logf("ERROR", "Failed to process images for: %s", item.name)
			continue
		}

		if _, err := e.target.UpdateProductImages(ctx, item.targetID, uploaded); err != nil {
			failed++
			e.logf("ERROR", "Failed to update product with images: %s: %v", item.name, err)
			continue
		}

		successful++
		e.logf("INFO", "Added %d images to product: %s", len(uploaded), item.name)
	}

	e.logf("INFO", "Images: %d/%d products updated successfully, %d failed", successful, len(mc.pendingImages), failed)

	if removed, err := e.media.Cleanup(e.opts.ImageMaxAge); err != nil {
		e.logf("WARNING", "Could not clean up cached images: %v", err)
	} else if removed > 0 {
		e.logf("INFO", "Cleaned up %d cached images", removed)
	}
}

// findExistingProduct matches by first-variant SKU, then by product name.
func findExistingProduct(mc *Context, p *shopify.Product) *woocommerce.Product {
	if len(p.Variants) > 0 {
		sku := strings.TrimSpace(p.Variants[0].SKU)
		if sku != "" {
			for i := range mc.ExistingProducts {
				if strings.TrimSpace(mc.ExistingProducts[i].SKU) == sku {
					return &mc.ExistingProducts[i]
				}
			}
		}
	}
	if p.Title != "" {
		for i := range mc.ExistingProducts {
			if mc.ExistingProducts[i].Name == p.Title {
				return &mc.ExistingProducts[i]
			}
		}
	}
	return nil
}
