package engine

import (
	"context"
	"fmt"

	"github.com/nokel/shopify-migration-tool/internal/mapper"
	"github.com/nokel/shopify-migration-tool/internal/shopify"
	"github.com/nokel/shopify-migration-tool/internal/woocommerce"
)

func (e *Engine) migrateOrders(ctx context.Context, mc *Context, dryRun bool) error {
	orders, err := e.source.GetOrders(ctx)
	if err != nil {
		return err
	}

	stats := mc.Report.Phases[PhaseOrders]
	stats.Attempted = len(orders)
	e.logf("INFO", "Found %d orders to migrate", len(orders))

	created, updated, skipped := 0, 0, 0

	for i := range orders {
		if e.isStopped() {
			break
		}
		o := &orders[i]

		success := false
		var errMsg string

		existing := findExistingOrder(mc, o.ID, o.OrderNumber)

		mapped, workNotes, mapErr := mapper.MapOrder(o, mc.Mappings.Customers)
		if mapErr != nil {
			errMsg = fmt.Sprintf("Order mapping failed: %d: %v", o.OrderNumber, mapErr)
		} else {
			e.mapOrderLineItems(mc, mapped)

			switch {
			case dryRun && existing != nil:
				if e.opts.UpdateExistingOrders && orderNeedsUpdate(existing, mapped) {
					e.logf("INFO", "[DRY RUN] Order %d already exists (ID: %d), would update (changes detected)", o.OrderNumber, existing.ID)
				} else {
					e.logf("INFO", "[DRY RUN] Order %d already exists (ID: %d), no changes needed", o.OrderNumber, existing.ID)
				}
				success = true

			case dryRun:
				e.logf("INFO", "[DRY RUN] Would create order: %d", o.OrderNumber)
				success = true

			case existing != nil && !e.opts.UpdateExistingOrders:
				// create-once policy: an existing order is never touched again
				e.logf("INFO", "Order %d already exists, skipping (ID: %d)", o.OrderNumber, existing.ID)
				success = true
				skipped++

			case existing != nil:
				if !orderNeedsUpdate(existing, mapped) {
					e.logf("INFO", "Order %d unchanged, skipping (ID: %d)", o.OrderNumber, existing.ID)
					success = true
					skipped++
					break
				}
				e.logf("INFO", "Order %d has changes, updating... (ID: %d)", o.OrderNumber, existing.ID)

				// line_items, shipping_lines and fee_lines are append-only on
				// the target API; resubmitting them duplicates financial data
				update := *mapped
				update.LineItems = nil
				update.ShippingLines = nil
				update.FeeLines = nil

				if _, err := e.target.UpdateOrder(ctx, existing.ID, &update); err != nil {
					errMsg = fmt.Sprintf("Failed to update order %d: %v", o.OrderNumber, err)
				} else {
					e.logf("INFO", "Updated order: %d (ID: %d)", o.OrderNumber, existing.ID)
					e.migrateOrderAnnotations(ctx, existing.ID, o, workNotes)
					success = true
					updated++
				}

			default:
				result, err := e.target.CreateOrder(ctx, mapped)
				if err != nil {
					errMsg = fmt.Sprintf("Failed to create order %d: %v", o.OrderNumber, err)
				} else {
					e.logf("INFO", "Created order: %d (ID: %d)", o.OrderNumber, result.ID)
					e.migrateOrderAnnotations(ctx, result.ID, o, workNotes)
					success = true
					created++
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

	if updated > 0 || skipped > 0 {
		e.logf("INFO", "Orders: %d/%d successful (%d created, %d updated, %d unchanged), %d failed",
			stats.Successful, stats.Attempted, created, updated, skipped, stats.Failed)
	} else {
		e.logf("INFO", "Orders: %d/%d successful, %d failed", stats.Successful, stats.Attempted, stats.Failed)
	}
	return nil
}

// findExistingOrder matches against the order snapshot by the cross-platform
// identifiers persisted in order metadata.
func findExistingOrder(mc *Context, sourceOrderID int64, orderNumber int) *woocommerce.Order {
	idStr := fmt.Sprintf("%d", sourceOrderID)
	numStr := fmt.Sprintf("%d", orderNumber)

	for i := range mc.ExistingOrders {
		for _, meta := range mc.ExistingOrders[i].MetaData {
			value := fmt.Sprint(meta.Value)
			if meta.Key == "shopify_order_id" && value == idStr {
				return &mc.ExistingOrders[i]
			}
			if meta.Key == "shopify_order_number" && value == numStr {
				return &mc.ExistingOrders[i]
			}
		}
	}
	return nil
}

// orderNeedsUpdate reports whether an existing order differs meaningfully
// from the freshly mapped one: status, line item count, or per-line quantity
// and total.
func orderNeedsUpdate(existing, mapped *woocommerce.Order) bool {
	if existing.Status != mapped.Status {
		return true
	}
	if len(existing.LineItems) != len(mapped.LineItems) {
		return true
	}
	for i := range mapped.LineItems {
		if existing.LineItems[i].Quantity != mapped.LineItems[i].Quantity {
			return true
		}
		if existing.LineItems[i].Total != mapped.LineItems[i].Total {
			return true
		}
	}
	return false
}

// mapOrderLineItems resolves each line item to a target product, preferring
// the variant mapping, then the product mapping, then a SKU lookup against
// the product snapshot. Unresolved items keep product_id 0 and the target
// treats them as custom/unlisted lines; order value is never dropped.
func (e *Engine) mapOrderLineItems(mc *Context, order *woocommerce.Order) {
	for i := range order.LineItems {
		item := &order.LineItems[i]

		var sourceVariantID, sourceProductID string
		for _, meta := range item.MetaData {
			switch meta.Key {
			case "shopify_variant_id":
				sourceVariantID = fmt.Sprint(meta.Value)
			case "shopify_product_id":
				sourceProductID = fmt.Sprint(meta.Value)
			}
		}

		if id, ok := mc.Mappings.Variants[sourceVariantID]; ok {
			item.VariationID = id
			continue
		}
		if id, ok := mc.Mappings.Products[sourceProductID]; ok {
			item.ProductID = id
			continue
		}
		if item.SKU != "" {
			if p := findProductBySKU(mc, item.SKU); p != nil {
				item.ProductID = p.ID
				continue
			}
		}

		e.logf("INFO", "Line item %q will be added as custom/unlisted item (no matching product)", item.Name)
	}
}

func findProductBySKU(mc *Context, sku string) *woocommerce.Product {
	for i := range mc.ExistingProducts {
		if mc.ExistingProducts[i].SKU == sku {
			return &mc.ExistingProducts[i]
		}
	}
	return nil
}

// migrateOrderAnnotations attaches the order's history as private notes, in
// chronological order: the source timeline when obtainable (else the single
// note field, never both), then extracted work notes, then the explicit
// cross-platform order ID.
func (e *Engine) migrateOrderAnnotations(ctx context.Context, targetOrderID int, o *shopify.Order, workNotes []string) {
	notesAdded := 0

	if e.addTimelineNote(ctx, targetOrderID, o) {
		notesAdded++
	} else if o.Note != "" {
		if mapper.NoteHasImages(o.Note) {
			e.logf("WARNING", "Order note contains images, they will be stripped")
		}
		if _, err := e.target.AddOrderNote(ctx, targetOrderID, mapper.CleanOrderNote(o.Note), false); err != nil {
			e.logf("ERROR", "Failed to add note to order %d: %v", targetOrderID, err)
		} else {
			notesAdded++
		}
	}

	for _, note := range workNotes {
		if note == "" {
			continue
		}
		if _, err := e.target.AddOrderNote(ctx, targetOrderID, mapper.FormatWorkNote(note), false); err != nil {
			e.logf("ERROR", "Failed to add work note to order %d: %v", targetOrderID, err)
		} else {
			notesAdded++
		}
	}

	idNote := fmt.Sprintf("Original Shopify order ID: %d", o.ID)
	if _, err := e.target.AddOrderNote(ctx, targetOrderID, idNote, false); err != nil {
		e.logf("ERROR", "Failed to add order ID note to order %d: %v", targetOrderID, err)
	} else {
		notesAdded++
	}

	if notesAdded > 0 {
		e.logf("INFO", "Added %d note(s) to order %d", notesAdded, targetOrderID)
	}
}

// addTimelineNote tries the richer source timeline. Returns false when the
// timeline is unavailable or empty so the caller can fall back to the
// order's note field.
func (e *Engine) addTimelineNote(ctx context.Context, targetOrderID int, o *shopify.Order) bool {
	events, err := e.source.GetOrderEvents(ctx, o.ID)
	if err != nil || len(events) == 0 {
		return false
	}

	text := "Shopify Order Timeline:\n"
	for _, ev := range events {
		msg := ev.Message
		if mapper.NoteHasImages(msg) {
			msg = mapper.StripNoteImages(msg)
		}
		text += fmt.Sprintf("%s %s: %s\n", ev.CreatedAt, ev.Verb, msg)
	}

	if _, err := e.target.AddOrderNote(ctx, targetOrderID, text, false); err != nil {
		e.logf("ERROR", "Failed to add timeline note to order %d: %v", targetOrderID, err)
		return false
	}
	return true
}
