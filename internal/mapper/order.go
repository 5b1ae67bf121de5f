package mapper

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nokel/shopify-migration-tool/internal/shopify"
	"github.com/nokel/shopify-migration-tool/internal/woocommerce"
)

// orderStatusMap translates Shopify fulfillment/financial statuses into
// WooCommerce order statuses.
var orderStatusMap = map[string]string{
	"pending":             "pending",
	"authorized":          "on-hold",
	"partially_paid":      "on-hold",
	"paid":                "processing",
	"partially_refunded":  "refunded",
	"refunded":            "refunded",
	"voided":              "cancelled",
	"fulfilled":           "completed",
	"partially_fulfilled": "processing",
	"unfulfilled":         "processing",
}

// MapOrderStatus resolves the target status, preferring the fulfillment
// status and falling back to the financial status.
func MapOrderStatus(fulfillmentStatus, financialStatus string) string {
	src := fulfillmentStatus
	if src == "" {
		src = financialStatus
	}
	if src == "" {
		src = "pending"
	}
	if mapped, ok := orderStatusMap[src]; ok {
		return mapped
	}
	return "pending"
}

// IsWorkNoteItem reports whether a line item is a zero-value annotation
// rather than billable content: price zero, no product or variant reference,
// and not a tip. Tips stay as line items because they carry order value
// semantics even at $0.
func IsWorkNoteItem(item *shopify.LineItem) bool {
	price, err := strconv.ParseFloat(item.Price, 64)
	if err != nil || price != 0 {
		return false
	}
	if item.ProductID != 0 || item.VariantID != 0 {
		return false
	}
	name := strings.ToLower(strings.TrimSpace(item.Name))
	return name != "tip" && name != "tips"
}

// MapOrder converts a Shopify order into a WooCommerce create payload.
// customerIDs maps Shopify customer IDs (as strings) to WooCommerce IDs;
// unknown customers become guest orders. Zero-value work-note items are
// extracted from the line items and returned separately so the caller can
// attach them as order annotations instead of financial lines.
func MapOrder(o *shopify.Order, customerIDs map[string]int) (*woocommerce.Order, []string, error) {
	if o == nil {
		return nil, nil, fmt.Errorf("nil order")
	}

	customerID := 0
	if o.Customer != nil && customerIDs != nil {
		customerID = customerIDs[fmt.Sprintf("%d", o.Customer.ID)]
	}

	var lineItems []woocommerce.LineItem
	var workNotes []string
	for i := range o.LineItems {
		item := &o.LineItems[i]
		if IsWorkNoteItem(item) {
			workNotes = append(workNotes, item.Name)
			continue
		}

		price, _ := strconv.ParseFloat(item.Price, 64)
		lineItems = append(lineItems, woocommerce.LineItem{
			ProductID: 0, // resolved later from the run's ID mappings
			Quantity:  item.Quantity,
			Name:      item.Name,
			SKU:       item.SKU,
			Price:     item.Price,
			Total:     fmt.Sprintf("%.2f", price*float64(item.Quantity)),
			MetaData: []woocommerce.MetaData{
				{Key: "shopify_variant_id", Value: fmt.Sprintf("%d", item.VariantID)},
				{Key: "shopify_product_id", Value: fmt.Sprintf("%d", item.ProductID)},
			},
		})
	}

	var billingSrc, shippingSrc shopify.Address
	if o.BillingAddress != nil {
		billingSrc = *o.BillingAddress
	}
	if o.ShippingAddress != nil {
		shippingSrc = *o.ShippingAddress
	} else {
		shippingSrc = billingSrc
	}

	billingEmail := o.ContactEmail
	if billingEmail == "" {
		billingEmail = billingSrc.Email
	}

	gateway := o.Gateway
	if gateway == "" {
		gateway = "unknown"
	}

	wc := &woocommerce.Order{
		Status:     MapOrderStatus(o.FulfillmentStatus, o.FinancialStatus),
		Currency:   o.Currency,
		CustomerID: customerID,
		Billing: woocommerce.Address{
			FirstName: billingSrc.FirstName,
			LastName:  billingSrc.LastName,
			Company:   billingSrc.Company,
			Address1:  billingSrc.Address1,
			Address2:  billingSrc.Address2,
			City:      billingSrc.City,
			State:     billingSrc.Province,
			Postcode:  billingSrc.Zip,
			Country:   billingSrc.CountryCode,
			Email:     billingEmail,
			Phone:     billingSrc.Phone,
		},
		Shipping: woocommerce.Address{
			FirstName: shippingSrc.FirstName,
			LastName:  shippingSrc.LastName,
			Company:   shippingSrc.Company,
			Address1:  shippingSrc.Address1,
			Address2:  shippingSrc.Address2,
			City:      shippingSrc.City,
			State:     shippingSrc.Province,
			Postcode:  shippingSrc.Zip,
			Country:   shippingSrc.CountryCode,
		},
		LineItems:          lineItems,
		PaymentMethod:      gateway,
		PaymentMethodTitle: gateway,
		SetPaid:            o.FinancialStatus == "paid" || o.FinancialStatus == "partially_paid",
		MetaData: []woocommerce.MetaData{
			{Key: "shopify_order_id", Value: fmt.Sprintf("%d", o.ID)},
			{Key: "shopify_order_number", Value: fmt.Sprintf("%d", o.OrderNumber)},
			{Key: "shopify_created_at", Value: o.CreatedAt},
		},
	}

	for _, s := range o.ShippingLines {
		title := s.Title
		if title == "" {
			title = "Shipping"
		}
		wc.ShippingLines = append(wc.ShippingLines, woocommerce.ShippingLine{
			MethodID:    "flat_rate",
			MethodTitle: title,
			Total:       s.Price,
		})
	}

	for _, t := range o.TaxLines {
		label := t.Title
		if label == "" {
			label = "Tax"
		}
		wc.TaxLines = append(wc.TaxLines, woocommerce.TaxLine{
			RateCode: label,
			Label:    label,
			TaxTotal: t.Price,
		})
	}

	return wc, workNotes, nil
}
