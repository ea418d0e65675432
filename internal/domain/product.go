package domain

import (
	"encoding/json"
	"strings"
	"time"
)

// Gender is the audience tag of a product
type Gender string

const (
	GenderMen       Gender = "men"
	GenderWomen     Gender = "women"
	GenderUnisex    Gender = "unisex"
	GenderUniversal Gender = "universal"
)

// Currency is the tag stored in the valute column
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyUZS Currency = "UZS"
)

// MaxImages is the number of image URLs a product may carry.
const MaxImages = 3

// ProductID is the identifier assigned by the store. PostgREST may hand it
// back as a JSON number or a string, both decode into the same value.
type ProductID string

func (id *ProductID) UnmarshalJSON(b []byte) error {
	s, err := decodeLoose(b)
	if err != nil {
		return err
	}
	*id = ProductID(s)
	return nil
}

func (id ProductID) String() string {
	return string(id)
}

// RawNumber holds numeric user input exactly as it was typed. Numbers,
// strings and null all decode; coercion happens in the pricing package.
type RawNumber string

func (r *RawNumber) UnmarshalJSON(b []byte) error {
	s, err := decodeLoose(b)
	if err != nil {
		return err
	}
	*r = RawNumber(s)
	return nil
}

func (r RawNumber) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(r))
}

func decodeLoose(b []byte) (string, error) {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		return "", nil
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return "", err
		}
		return str, nil
	}
	return s, nil
}

// Variant is one priced volume option of a product
//
// swagger:model
type Variant struct {
	// Volume in ml
	//
	// required: true
	// min: 1
	// example: 50
	Volume int `json:"volume" validate:"gt=0"`

	// Price before the discount
	//
	// required: true
	// min: 0
	// example: 100
	OriginalPrice float64 `json:"original_price" validate:"gte=0"`

	// Discount in percent
	//
	// required: true
	// min: 0
	// max: 100
	// example: 20
	DiscountPercent int `json:"discount_percent" validate:"min=0,max=100"`

	// Price after the discount, always derived
	//
	// example: 80
	FinalPrice float64 `json:"final_price"`
}

// Product represents a catalog entry as the store returns it
//
// swagger:model
type Product struct {
	// The ID of the product, assigned by the store
	//
	// required: true
	ID ProductID `json:"id"`

	// The title of the product
	//
	// required: true
	// example: Bleu de Chanel
	Title string `json:"title"`

	// The brand of the product
	//
	// required: true
	// example: Chanel
	Brand string `json:"brand"`

	// The audience of the product
	//
	// enum: men,women,unisex,universal
	Gender Gender `json:"gender"`

	// Currency tag of every price on the product
	//
	// enum: USD,UZS
	Valute Currency `json:"valute"`

	// Public image URLs, at most three
	Images []string `json:"images"`

	// Free text description
	Info *string `json:"info"`

	// Release date as typed by the admin
	ReleaseDate *string `json:"release_date"`

	// Price-variant table
	Variants []Variant `json:"variants,omitempty"`

	// Legacy flat schema: price after discount
	Price *float64 `json:"price,omitempty"`

	// Legacy flat schema: price before discount
	OldMoney *float64 `json:"old_money,omitempty"`

	// Legacy flat schema: discount in percent
	Discount *float64 `json:"discount,omitempty"`

	// Legacy flat schema: units in stock, null when unknown
	ItemLeft *int `json:"item_left,omitempty"`

	// Legacy flat schema: available volumes in ml
	MLSizes []float64 `json:"ml_sizes,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// IsLegacy reports whether the product only carries the flat pricing columns.
func (p *Product) IsLegacy() bool {
	return len(p.Variants) == 0 && (p.Price != nil || p.OldMoney != nil || len(p.MLSizes) > 0)
}

// Products is a collection of Product
type Products []*Product

// Clone returns a deep copy of p.
func (p *Product) Clone() *Product {
	c := *p
	c.Images = append([]string(nil), p.Images...)
	c.Variants = append([]Variant(nil), p.Variants...)
	c.MLSizes = append([]float64(nil), p.MLSizes...)
	c.Info = clonePtr(p.Info)
	c.ReleaseDate = clonePtr(p.ReleaseDate)
	c.Price = clonePtr(p.Price)
	c.OldMoney = clonePtr(p.OldMoney)
	c.Discount = clonePtr(p.Discount)
	c.ItemLeft = clonePtr(p.ItemLeft)
	return &c
}

func clonePtr[T any](v *T) *T {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
