package commerce

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Amount is an upstream money field. The platform usually sends strings
// but some plugins emit bare numbers or null, so both decode.
type Amount string

// UnmarshalJSON accepts a JSON string, number or null.
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*a = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = Amount(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("commerce: amount %s: %w", data, err)
	}
	*a = Amount(n.String())
	return nil
}

// Term is a category or tag reference.
type Term struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Image is an upstream product image.
type Image struct {
	ID  int64  `json:"id"`
	Src string `json:"src"`
	Alt string `json:"alt"`
}

// Attribute is a product-level option group such as "Size" with its options.
type Attribute struct {
	ID        int64    `json:"id"`
	Name      string   `json:"name"`
	Slug      string   `json:"slug"`
	Variation bool     `json:"variation"`
	Options   []string `json:"options"`
}

// MetaData is a free-form key/value pair attached to products.
type MetaData struct {
	ID    int64           `json:"id"`
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
}

// String returns the value when it is a JSON string or scalar, "" otherwise.
func (m MetaData) String() string {
	raw := bytes.TrimSpace(m.Value)
	if len(raw) == 0 {
		return ""
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return ""
		}
		return s
	case '{', '[', 'n':
		return ""
	default:
		return string(raw)
	}
}

// Product is the raw upstream product record.
type Product struct {
	ID               int64       `json:"id"`
	Name             string      `json:"name"`
	Slug             string      `json:"slug"`
	Type             string      `json:"type"`
	Status           string      `json:"status"`
	Price            Amount      `json:"price"`
	RegularPrice     Amount      `json:"regular_price"`
	SalePrice        Amount      `json:"sale_price"`
	ShortDescription string      `json:"short_description"`
	Description      string      `json:"description"`
	Categories       []Term      `json:"categories"`
	Tags             []Term      `json:"tags"`
	Images           []Image     `json:"images"`
	Attributes       []Attribute `json:"attributes"`
	StockStatus      string      `json:"stock_status"`
	StockQuantity    *int        `json:"stock_quantity"`
	MetaData         []MetaData  `json:"meta_data"`
	Variations       []int64     `json:"variations"`
}

// Meta returns the string value of the first meta entry with key.
func (p Product) Meta(key string) string {
	for _, m := range p.MetaData {
		if m.Key == key {
			return m.String()
		}
	}
	return ""
}

// DecodeProduct decodes a single raw product record.
func DecodeProduct(raw json.RawMessage) (Product, error) {
	var p Product
	if err := json.Unmarshal(raw, &p); err != nil {
		return Product{}, fmt.Errorf("commerce: decode product: %w", err)
	}
	return p, nil
}

// VariationAttribute is the chosen option of one attribute on a variation.
type VariationAttribute struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Slug   string `json:"slug"`
	Option string `json:"option"`
}

// Variation is the raw per-combination record from the variations sub-resource.
type Variation struct {
	ID            int64                `json:"id"`
	Price         Amount               `json:"price"`
	RegularPrice  Amount               `json:"regular_price"`
	StockStatus   string               `json:"stock_status"`
	StockQuantity *int                 `json:"stock_quantity"`
	Attributes    []VariationAttribute `json:"attributes"`
}

// ShippingZone is an upstream shipping zone.
type ShippingZone struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Order int    `json:"order"`
}

// ShippingSetting is one entry of a method's settings map.
type ShippingSetting struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Value string `json:"value"`
}

// ShippingMethod is a method configured in a zone.
type ShippingMethod struct {
	InstanceID int64                      `json:"instance_id"`
	Title      string                     `json:"title"`
	Enabled    bool                       `json:"enabled"`
	MethodID   string                     `json:"method_id"`
	Settings   map[string]ShippingSetting `json:"settings"`
}

// Address is a billing or shipping address.
type Address struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Address1  string `json:"address_1"`
	Address2  string `json:"address_2,omitempty"`
	City      string `json:"city"`
	State     string `json:"state,omitempty"`
	Postcode  string `json:"postcode,omitempty"`
	Country   string `json:"country"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

// OrderMeta is a key/value pair attached to orders or line items.
type OrderMeta struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// LineItem is an order line.
type LineItem struct {
	ProductID   int64       `json:"product_id"`
	VariationID int64       `json:"variation_id,omitempty"`
	Quantity    int         `json:"quantity"`
	MetaData    []OrderMeta `json:"meta_data,omitempty"`
}

// ShippingLine is the shipping charge submitted with an order.
type ShippingLine struct {
	MethodID    string `json:"method_id"`
	MethodTitle string `json:"method_title"`
	Total       string `json:"total"`
}

// OrderRequest is the payload for order creation.
type OrderRequest struct {
	PaymentMethod      string         `json:"payment_method"`
	PaymentMethodTitle string         `json:"payment_method_title"`
	SetPaid            bool           `json:"set_paid"`
	Billing            Address        `json:"billing"`
	Shipping           Address        `json:"shipping"`
	LineItems          []LineItem     `json:"line_items"`
	ShippingLines      []ShippingLine `json:"shipping_lines,omitempty"`
	CustomerNote       string         `json:"customer_note,omitempty"`
	MetaData           []OrderMeta    `json:"meta_data,omitempty"`
}

// Order is the subset of the created order the storefront shows.
type Order struct {
	ID       int64  `json:"id"`
	Number   string `json:"number"`
	Status   string `json:"status"`
	Total    Amount `json:"total"`
	Currency string `json:"currency"`
	OrderKey string `json:"order_key"`
}

// ProductID formats an upstream numeric id as the catalog's string id.
func ProductID(id int64) string {
	return strconv.FormatInt(id, 10)
}
