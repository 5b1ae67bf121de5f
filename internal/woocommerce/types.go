package woocommerce

// wp-json/wc/v3 shapes. Create payloads and read responses share these
// structs; omitempty keeps create bodies minimal and keeps stripped fields
// (order updates) out of the wire payload entirely.

type MetaData struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

type Product struct {
	ID                int         `json:"id,omitempty"`
	Name              string      `json:"name"`
	Type              string      `json:"type,omitempty"`
	Description       string      `json:"description,omitempty"`
	ShortDescription  string      `json:"short_description,omitempty"`
	SKU               string      `json:"sku,omitempty"`
	RegularPrice      string      `json:"regular_price,omitempty"`
	ManageStock       bool        `json:"manage_stock,omitempty"`
	StockQuantity     int         `json:"stock_quantity,omitempty"`
	StockStatus       string      `json:"stock_status,omitempty"`
	Weight            string      `json:"weight,omitempty"`
	Status            string      `json:"status,omitempty"`
	CatalogVisibility string      `json:"catalog_visibility,omitempty"`
	TaxStatus         string      `json:"tax_status,omitempty"`
	ReviewsAllowed    bool        `json:"reviews_allowed,omitempty"`
	Attributes        []Attribute `json:"attributes,omitempty"`
	Images            []Image     `json:"images,omitempty"`
	Tags              []Tag       `json:"tags,omitempty"`
	Categories        []CategoryRef `json:"categories,omitempty"`
	MetaData          []MetaData  `json:"meta_data,omitempty"`
}

type Attribute struct {
	Name      string   `json:"name"`
	Options   []string `json:"options"`
	Visible   bool     `json:"visible"`
	Variation bool     `json:"variation"`
}

type Image struct {
	ID   int    `json:"id,omitempty"`
	Src  string `json:"src,omitempty"`
	Name string `json:"name,omitempty"`
	Alt  string `json:"alt,omitempty"`
}

type Tag struct {
	ID   int    `json:"id,omitempty"`
	Name string `json:"name"`
}

type CategoryRef struct {
	ID int `json:"id"`
}

type Category struct {
	ID          int        `json:"id,omitempty"`
	Name        string     `json:"name"`
	Slug        string     `json:"slug,omitempty"`
	Description string     `json:"description,omitempty"`
	MetaData    []MetaData `json:"meta_data,omitempty"`
}

type Address struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Company   string `json:"company"`
	Address1  string `json:"address_1"`
	Address2  string `json:"address_2"`
	City      string `json:"city"`
	State     string `json:"state"`
	Postcode  string `json:"postcode"`
	Country   string `json:"country"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

type Customer struct {
	ID        int        `json:"id,omitempty"`
	Email     string     `json:"email"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	Username  string     `json:"username,omitempty"`
	Billing   Address    `json:"billing"`
	Shipping  Address    `json:"shipping"`
	MetaData  []MetaData `json:"meta_data,omitempty"`
}

type Order struct {
	ID                 int            `json:"id,omitempty"`
	Status             string         `json:"status,omitempty"`
	Currency           string         `json:"currency,omitempty"`
	CustomerID         int            `json:"customer_id"`
	Billing            Address        `json:"billing"`
	Shipping           Address        `json:"shipping"`
	LineItems          []LineItem     `json:"line_items,omitempty"`
	ShippingLines      []ShippingLine `json:"shipping_lines,omitempty"`
	FeeLines           []FeeLine      `json:"fee_lines,omitempty"`
	TaxLines           []TaxLine      `json:"tax_lines,omitempty"`
	PaymentMethod      string         `json:"payment_method,omitempty"`
	PaymentMethodTitle string         `json:"payment_method_title,omitempty"`
	SetPaid            bool           `json:"set_paid,omitempty"`
	Total              string         `json:"total,omitempty"`
	MetaData           []MetaData     `json:"meta_data,omitempty"`
}

type LineItem struct {
	ProductID   int        `json:"product_id"`
	VariationID int        `json:"variation_id,omitempty"`
	Quantity    int        `json:"quantity"`
	Name        string     `json:"name"`
	SKU         string     `json:"sku"`
	Price       string     `json:"price,omitempty"`
	Total       string     `json:"total,omitempty"`
	MetaData    []MetaData `json:"meta_data,omitempty"`
}

type ShippingLine struct {
	MethodID    string `json:"method_id"`
	MethodTitle string `json:"method_title"`
	Total       string `json:"total"`
}

type FeeLine struct {
	Name  string `json:"name"`
	Total string `json:"total"`
}

type TaxLine struct {
	RateCode string `json:"rate_code"`
	RateID   int    `json:"rate_id"`
	Label    string `json:"label"`
	Compound bool   `json:"compound"`
	TaxTotal string `json:"tax_total"`
}

type Coupon struct {
	ID               int        `json:"id,omitempty"`
	Code             string     `json:"code"`
	DiscountType     string     `json:"discount_type"`
	Amount           string     `json:"amount"`
	IndividualUse    bool       `json:"individual_use"`
	ExcludeSaleItems bool       `json:"exclude_sale_items"`
	MinimumAmount    string     `json:"minimum_amount,omitempty"`
	UsageLimit       int        `json:"usage_limit,omitempty"`
	UsageCount       int        `json:"usage_count,omitempty"`
	DateExpires      string     `json:"date_expires,omitempty"`
	FreeShipping     bool       `json:"free_shipping"`
	Description      string     `json:"description,omitempty"`
	MetaData         []MetaData `json:"meta_data,omitempty"`
}

type OrderNote struct {
	ID           int    `json:"id,omitempty"`
	Note         string `json:"note"`
	CustomerNote bool   `json:"customer_note"`
}
