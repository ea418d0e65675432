package domain

// Draft is the editable copy of a product held by an open form. Numeric
// inputs stay raw until the draft is turned into a payload.
type Draft struct {
	Title       string    `json:"title"`
	Brand       string    `json:"brand"`
	Gender      Gender    `json:"gender"`
	Valute      Currency  `json:"valute"`
	Info        string    `json:"info"`
	ReleaseDate string    `json:"release_date"`
	Images      []string  `json:"images"`
	Variants    []Variant `json:"variants"`

	// flat schema inputs
	Price           RawNumber `json:"price"`
	Discount        RawNumber `json:"discount"`
	ItemLeft        RawNumber `json:"item_left"`
	ItemLeftUnknown bool      `json:"item_left_unknown"`
	MLSizes         []int     `json:"ml_sizes"`
}

// NewDraft returns the empty draft a new product starts from.
func NewDraft() Draft {
	return Draft{
		Gender:   GenderUnisex,
		Valute:   CurrencyUSD,
		Price:    "0",
		Discount: "0",
		ItemLeft: "0",
		Images:   []string{},
		Variants: []Variant{},
		MLSizes:  []int{},
	}
}

// Clone returns a deep copy so callers can't alias the session's slices.
func (d Draft) Clone() Draft {
	c := d
	c.Images = append([]string{}, d.Images...)
	c.Variants = append([]Variant{}, d.Variants...)
	c.MLSizes = append([]int{}, d.MLSizes...)
	return c
}

// DraftPatch carries the scalar form inputs a client changed. Nil fields
// are left untouched.
//
// swagger:model
type DraftPatch struct {
	Title           *string    `json:"title"`
	Brand           *string    `json:"brand"`
	Gender          *Gender    `json:"gender" validate:"omitempty,oneof=men women unisex universal"`
	Valute          *Currency  `json:"valute" validate:"omitempty,oneof=USD UZS"`
	Info            *string    `json:"info"`
	ReleaseDate     *string    `json:"release_date"`
	Price           *RawNumber `json:"price"`
	Discount        *RawNumber `json:"discount"`
	ItemLeft        *RawNumber `json:"item_left"`
	ItemLeftUnknown *bool      `json:"item_left_unknown"`
}

// ApplyTo copies the set fields onto d.
func (p DraftPatch) ApplyTo(d *Draft) {
	if p.Title != nil {
		d.Title = *p.Title
	}
	if p.Brand != nil {
		d.Brand = *p.Brand
	}
	if p.Gender != nil {
		d.Gender = *p.Gender
	}
	if p.Valute != nil {
		d.Valute = *p.Valute
	}
	if p.Info != nil {
		d.Info = *p.Info
	}
	if p.ReleaseDate != nil {
		d.ReleaseDate = *p.ReleaseDate
	}
	if p.Price != nil {
		d.Price = *p.Price
	}
	if p.Discount != nil {
		d.Discount = *p.Discount
	}
	if p.ItemLeft != nil {
		d.ItemLeft = *p.ItemLeft
	}
	if p.ItemLeftUnknown != nil {
		d.ItemLeftUnknown = *p.ItemLeftUnknown
	}
}
