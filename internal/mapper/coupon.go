package mapper

import (
	"fmt"

	"github.com/nokel/shopify-migration-tool/internal/shopify"
	"github.com/nokel/shopify-migration-tool/internal/woocommerce"
)

var discountTypeMap = map[string]string{
	"percentage":   "percent",
	"fixed_amount": "fixed_cart",
	"shipping":     "fixed_cart",
}

// MapCoupon converts a Shopify discount code into a WooCommerce coupon
// payload. Unknown value types default to fixed_cart.
func MapCoupon(d *shopify.Discount) (*woocommerce.Coupon, error) {
	if d == nil {
		return nil, fmt.Errorf("nil discount")
	}
	if d.Code == "" {
		return nil, fmt.Errorf("discount %d has no code", d.ID)
	}

	discountType, ok := discountTypeMap[d.ValueType]
	if !ok {
		discountType = "fixed_cart"
	}

	minimum := d.MinimumOrderAmount
	if minimum == "" {
		minimum = "0"
	}

	return &woocommerce.Coupon{
		Code:             d.Code,
		DiscountType:     discountType,
		Amount:           d.Value,
		IndividualUse:    !d.AppliesToShipping,
		ExcludeSaleItems: false,
		MinimumAmount:    minimum,
		UsageLimit:       d.UsageLimit,
		UsageCount:       d.UsedCount,
		DateExpires:      d.EndsAt,
		FreeShipping:     d.AppliesToShipping,
		Description:      fmt.Sprintf("Migrated from Shopify discount: %s", d.Code),
		MetaData: []woocommerce.MetaData{
			{Key: "shopify_discount_id", Value: fmt.Sprintf("%d", d.ID)},
		},
	}, nil
}
