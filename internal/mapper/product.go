// Package mapper translates Shopify entities into WooCommerce and WordPress
// create payloads. Everything here is a pure transformation; no I/O.
package mapper

import (
	"fmt"
	"strings"

	"github.com/nokel/shopify-migration-tool/internal/shopify"
	"github.com/nokel/shopify-migration-tool/internal/woocommerce"
)

// MapProduct converts a Shopify product into a WooCommerce create payload.
// Single-variant products become simple products carrying the variant's SKU,
// price and stock; multi-variant products become variable products with
// attributes derived from the variant options.
func MapProduct(p *shopify.Product) (*woocommerce.Product, error) {
	if p == nil {
		return nil, fmt.Errorf("nil product")
	}

	status := "draft"
	if p.Status == "active" {
		status = "publish"
	}

	wc := &woocommerce.Product{
		Name:              p.Title,
		Type:              "simple",
		Description:       p.BodyHTML,
		Status:            status,
		CatalogVisibility: "visible",
		TaxStatus:         "taxable",
		ReviewsAllowed:    true,
		ManageStock:       true,
		MetaData: []woocommerce.MetaData{
			{Key: "shopify_product_id", Value: fmt.Sprintf("%d", p.ID)},
		},
	}

	if len(p.Variants) > 0 {
		v := p.Variants[0]
		wc.SKU = v.SKU
		wc.RegularPrice = v.Price
		wc.StockQuantity = v.InventoryQuantity
		wc.Weight = fmt.Sprintf("%g", v.Weight)
		if v.InventoryQuantity > 0 {
			wc.StockStatus = "instock"
		} else {
			wc.StockStatus = "outofstock"
		}
	}

	if len(p.Variants) > 1 {
		wc.Type = "variable"
		// variant-level pricing and stock live on the variations, not the parent
		wc.SKU = ""
		wc.RegularPrice = ""
		wc.StockQuantity = 0
		wc.Weight = ""
		wc.Attributes = productAttributes(p)
	}

	for i, img := range p.Images {
		name := img.Alt
		if name == "" {
			name = fmt.Sprintf("Product image %d", i+1)
		}
		wc.Images = append(wc.Images, woocommerce.Image{
			Src:  img.Src,
			Name: name,
			Alt:  img.Alt,
		})
	}

	for _, tag := range strings.Split(p.Tags, ",") {
		tag = strings.TrimSpace(tag)
		if tag != "" {
			wc.Tags = append(wc.Tags, woocommerce.Tag{Name: tag})
		}
	}

	wc.MetaData = append(wc.MetaData,
		woocommerce.MetaData{Key: "_yoast_wpseo_title", Value: p.Title},
		woocommerce.MetaData{Key: "_yoast_wpseo_metadesc", Value: ExtractMetaDescription(p.BodyHTML, 160)},
	)

	return wc, nil
}

// productAttributes builds variation attributes from the product's declared
// options, collecting the distinct values actually used by its variants.
func productAttributes(p *shopify.Product) []woocommerce.Attribute {
	var attrs []woocommerce.Attribute

	for idx, opt := range p.Options {
		if opt.Name == "" || strings.EqualFold(opt.Name, "Title") {
			continue
		}

		seen := make(map[string]bool)
		var values []string
		for _, v := range p.Variants {
			var val string
			switch idx {
			case 0:
				val = v.Option1
			case 1:
				val = v.Option2
			case 2:
				val = v.Option3
			}
			if val != "" && !seen[val] {
				seen[val] = true
				values = append(values, val)
			}
		}
		if len(values) == 0 {
			continue
		}

		attrs = append(attrs, woocommerce.Attribute{
			Name:      opt.Name,
			Options:   values,
			Visible:   true,
			Variation: true,
		})
	}

	return attrs
}

// MapCategory converts a Shopify collection into a WooCommerce product
// category payload.
func MapCategory(c *shopify.Collection) *woocommerce.Category {
	return &woocommerce.Category{
		Name:        c.Title,
		Slug:        c.Handle,
		Description: c.BodyHTML,
		MetaData: []woocommerce.MetaData{
			{Key: "shopify_collection_id", Value: fmt.Sprintf("%d", c.ID)},
		},
	}
}
