package mapper

import (
	"fmt"
	"strings"

	"github.com/nokel/shopify-migration-tool/internal/shopify"
	"github.com/nokel/shopify-migration-tool/internal/woocommerce"
)

// placeholderDomain hosts synthesized addresses for customers the source
// stored without an email. The TLD is intentionally non-routable for mail.
const placeholderDomain = "noemail.no"

// PlaceholderEmail synthesizes a deterministic address from the customer's
// name: lowercase alphanumeric first+last at the placeholder domain, with a
// numeric suffix on collision within usedEmails. The chosen address is added
// to usedEmails before returning.
func PlaceholderEmail(firstName, lastName string, usedEmails map[string]bool) string {
	slug := alnumLower(firstName) + alnumLower(lastName)
	if slug == "" {
		slug = "customer"
	}

	email := fmt.Sprintf("%s@%s", slug, placeholderDomain)
	for i := 1; usedEmails[email]; i++ {
		email = fmt.Sprintf("%s%d@%s", slug, i, placeholderDomain)
	}
	usedEmails[email] = true
	return email
}

func alnumLower(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// MapCustomer converts a Shopify customer into a WooCommerce create payload.
// Customers without an email get a placeholder generated against usedEmails
// so repeated names within one run stay distinct.
func MapCustomer(c *shopify.Customer, usedEmails map[string]bool) (*woocommerce.Customer, error) {
	if c == nil {
		return nil, fmt.Errorf("nil customer")
	}

	email := c.Email
	if email == "" {
		email = PlaceholderEmail(c.FirstName, c.LastName, usedEmails)
	}

	var addr shopify.Address
	if len(c.Addresses) > 0 {
		addr = c.Addresses[0]
	}

	pick := func(addrVal, custVal string) string {
		if addrVal != "" {
			return addrVal
		}
		return custVal
	}

	billing := woocommerce.Address{
		FirstName: pick(addr.FirstName, c.FirstName),
		LastName:  pick(addr.LastName, c.LastName),
		Company:   addr.Company,
		Address1:  addr.Address1,
		Address2:  addr.Address2,
		City:      addr.City,
		State:     addr.Province,
		Postcode:  addr.Zip,
		Country:   addr.CountryCode,
		Email:     email,
		Phone:     pick(addr.Phone, c.Phone),
	}

	shipping := billing
	shipping.Email = ""
	shipping.Phone = ""

	username := ""
	if at := strings.Index(email, "@"); at > 0 {
		username = email[:at]
	}

	return &woocommerce.Customer{
		Email:     email,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Username:  username,
		Billing:   billing,
		Shipping:  shipping,
		MetaData: []woocommerce.MetaData{
			{Key: "shopify_customer_id", Value: fmt.Sprintf("%d", c.ID)},
			{Key: "shopify_created_at", Value: c.CreatedAt},
		},
	}, nil
}
