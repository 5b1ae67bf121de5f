package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/nokel/shopify-migration-tool/internal/mapper"
	"github.com/nokel/shopify-migration-tool/internal/woocommerce"
)

func (e *Engine) migrateCoupons(ctx context.Context, mc *Context, dryRun bool) error {
	discounts, err := e.source.GetDiscounts(ctx)
	if err != nil {
		return err
	}

	stats := mc.Report.Phases[PhaseCoupons]
	stats.Attempted = len(discounts)
	e.logf("INFO", "Found %d discount codes to migrate", len(discounts))

	for i := range discounts {
		if e.isStopped() {
			break
		}
		d := &discounts[i]

		success := false
		var errMsg string

		mapped, err := mapper.MapCoupon(d)
		if err != nil {
			errMsg = fmt.Sprintf("Coupon mapping failed for discount %d: %v", d.ID, err)
		} else if existing := findExistingCoupon(mc, mapped.Code); existing != nil {
			e.logf("INFO", "[%s] Skipped existing coupon: %s", modeTag(dryRun), mapped.Code)
			success = true
		} else if dryRun {
			e.logf("INFO", "[DRY RUN] Would create coupon: %s", mapped.Code)
			success = true
		} else {
			if _, err := e.target.CreateCoupon(ctx, mapped); err != nil {
				errMsg = fmt.Sprintf("Failed to create coupon %s: %v", mapped.Code, err)
			} else {
				e.logf("INFO", "Created coupon: %s", mapped.Code)
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

	e.logf("INFO", "Coupons: %d/%d successful, %d failed", stats.Successful, stats.Attempted, stats.Failed)
	return nil
}

// findExistingCoupon matches by code, case-insensitively; the target stores
// codes lowercased.
func findExistingCoupon(mc *Context, code string) *woocommerce.Coupon {
	for i := range mc.ExistingCoupons {
		if strings.EqualFold(mc.ExistingCoupons[i].Code, code) {
			return &mc.ExistingCoupons[i]
		}
	}
	return nil
}
