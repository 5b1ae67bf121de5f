package shopify

// Admin REST API shapes, trimmed to the fields the migration consumes.
// Money amounts stay strings end to end; the Admin API serves them that way
// and re-parsing them risks precision drift.

type Product struct {
	ID       int64     `json:"id"`
	Title    string    `json:"title"`
	BodyHTML string    `json:"body_html"`
	Handle   string    `json:"handle"`
	Status   string    `json:"status"`
	Tags     string    `json:"tags"`
	Variants []Variant `json:"variants"`
	Images   []Image   `json:"images"`
	Options  []Option  `json:"options"`
}

type Variant struct {
	ID                int64   `json:"id"`
	ProductID         int64   `json:"product_id"`
	Title             string  `json:"title"`
	SKU               string  `json:"sku"`
	Price             string  `json:"price"`
	InventoryQuantity int     `json:"inventory_quantity"`
	Weight            float64 `json:"weight"`
	Option1           string  `json:"option1"`
	Option2           string  `json:"option2"`
	Option3           string  `json:"option3"`
}

type Image struct {
	ID  int64  `json:"id"`
	Src string `json:"src"`
	Alt string `json:"alt"`
}

type Option struct {
	Name     string   `json:"name"`
	Position int      `json:"position"`
	Values   []string `json:"values"`
}

type Customer struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Phone     string    `json:"phone"`
	CreatedAt string    `json:"created_at"`
	Addresses []Address `json:"addresses"`
}

type Address struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Company     string `json:"company"`
	Address1    string `json:"address1"`
	Address2    string `json:"address2"`
	City        string `json:"city"`
	Province    string `json:"province"`
	Zip         string `json:"zip"`
	CountryCode string `json:"country_code"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
}

type Order struct {
	ID                int64          `json:"id"`
	OrderNumber       int            `json:"order_number"`
	Note              string         `json:"note"`
	Currency          string         `json:"currency"`
	ContactEmail      string         `json:"contact_email"`
	Gateway           string         `json:"gateway"`
	FinancialStatus   string         `json:"financial_status"`
	FulfillmentStatus string         `json:"fulfillment_status"`
	CreatedAt         string         `json:"created_at"`
	Customer          *Customer      `json:"customer"`
	BillingAddress    *Address       `json:"billing_address"`
	ShippingAddress   *Address       `json:"shipping_address"`
	LineItems         []LineItem     `json:"line_items"`
	ShippingLines     []ShippingLine `json:"shipping_lines"`
	TaxLines          []TaxLine      `json:"tax_lines"`
}

type LineItem struct {
	ID        int64  `json:"id"`
	ProductID int64  `json:"product_id"`
	VariantID int64  `json:"variant_id"`
	Title     string `json:"title"`
	Name      string `json:"name"`
	SKU       string `json:"sku"`
	Price     string `json:"price"`
	Quantity  int    `json:"quantity"`
}

type ShippingLine struct {
	Title string `json:"title"`
	Price string `json:"price"`
}

type TaxLine struct {
	Title string `json:"title"`
	Price string `json:"price"`
}

// Collection covers both custom and smart collections; the fields the
// migration needs are identical.
type Collection struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Handle   string `json:"handle"`
	BodyHTML string `json:"body_html"`
}

type Discount struct {
	ID                 int64  `json:"id"`
	Code               string `json:"code"`
	ValueType          string `json:"value_type"`
	Value              string `json:"value"`
	UsageLimit         int    `json:"usage_limit"`
	UsedCount          int    `json:"used_count"`
	EndsAt             string `json:"ends_at"`
	MinimumOrderAmount string `json:"minimum_order_amount"`
	AppliesToShipping  bool   `json:"applies_to_shipping"`
}

type Page struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Handle   string `json:"handle"`
	BodyHTML string `json:"body_html"`
}

type Blog struct {
	ID     int64  `json:"id"`
	Title  string `json:"title"`
	Handle string `json:"handle"`
}

type Article struct {
	ID          int64  `json:"id"`
	BlogID      int64  `json:"blog_id"`
	Title       string `json:"title"`
	Handle      string `json:"handle"`
	BodyHTML    string `json:"body_html"`
	Author      string `json:"author"`
	PublishedAt string `json:"published_at"`
}

// Event is an entry in an order's timeline (orders/{id}/events.json).
type Event struct {
	ID        int64  `json:"id"`
	Verb      string `json:"verb"`
	Message   string `json:"message"`
	CreatedAt string `json:"created_at"`
}
