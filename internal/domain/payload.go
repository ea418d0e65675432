package domain

import "encoding/json"

// Schema selects which pricing columns a payload writes.
type Schema string

const (
	// SchemaVariants writes the price-variant table
	SchemaVariants Schema = "variants"
	// SchemaFlat writes price, old_money, discount, item_left and ml_sizes
	SchemaFlat Schema = "flat"
)

// Payload is the exact shape sent to the store on create and update. Only
// the fields listed in MarshalJSON ever leave the process.
type Payload struct {
	Schema Schema `json:"-"`

	Title       string    `json:"title" validate:"notblank"`
	Brand       string    `json:"brand" validate:"notblank"`
	Gender      Gender    `json:"gender" validate:"oneof=men women unisex universal"`
	Valute      Currency  `json:"valute" validate:"oneof=USD UZS"`
	Info        *string   `json:"info"`
	ReleaseDate *string   `json:"release_date"`
	Images      []string  `json:"images" validate:"max=3,dive,required"`
	Variants    []Variant `json:"variants" validate:"dive"`

	Price    float64 `json:"price" validate:"gte=0"`
	OldMoney float64 `json:"old_money" validate:"gte=0"`
	Discount int     `json:"discount" validate:"min=0,max=100"`
	ItemLeft *int    `json:"item_left" validate:"omitempty,min=0"`
	MLSizes  []int   `json:"ml_sizes" validate:"dive,gt=0"`
}

func (p Payload) MarshalJSON() ([]byte, error) {
	fields := map[string]any{
		"title":        p.Title,
		"brand":        p.Brand,
		"gender":       p.Gender,
		"valute":       p.Valute,
		"info":         p.Info,
		"release_date": p.ReleaseDate,
		"images":       nonNil(p.Images),
	}

	switch p.Schema {
	case SchemaFlat:
		fields["price"] = p.Price
		fields["old_money"] = p.OldMoney
		fields["discount"] = p.Discount
		fields["item_left"] = p.ItemLeft
		fields["ml_sizes"] = nonNil(p.MLSizes)
	default:
		variants := make([]Variant, len(p.Variants))
		copy(variants, p.Variants)
		fields["variants"] = variants
	}

	return json.Marshal(fields)
}

// ApplyTo writes the payload onto a stored product the way a PATCH would:
// columns outside the payload's schema keep their values.
func (p Payload) ApplyTo(pr *Product) {
	pr.Title = p.Title
	pr.Brand = p.Brand
	pr.Gender = p.Gender
	pr.Valute = p.Valute
	pr.Info = p.Info
	pr.ReleaseDate = p.ReleaseDate
	pr.Images = append([]string{}, p.Images...)

	if p.Schema == SchemaFlat {
		price, oldMoney, discount := p.Price, p.OldMoney, float64(p.Discount)
		pr.Price = &price
		pr.OldMoney = &oldMoney
		pr.Discount = &discount
		pr.ItemLeft = p.ItemLeft
		pr.MLSizes = make([]float64, len(p.MLSizes))
		for i, ml := range p.MLSizes {
			pr.MLSizes[i] = float64(ml)
		}
		return
	}

	pr.Variants = append([]Variant{}, p.Variants...)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
