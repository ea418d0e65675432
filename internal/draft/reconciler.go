// Package draft converts between stored products, the editable drafts held
// by open forms and the payloads written back to the store.
package draft

import (
	"strconv"
	"strings"

	"github.com/Mr-Shodiyorov/admin-page/internal/domain"
	"github.com/Mr-Shodiyorov/admin-page/internal/pricing"
)

type Reconciler struct {
	schema     domain.Schema
	policy     pricing.DuplicatePolicy
	validation *domain.Validation
}

func NewReconciler(schema domain.Schema, policy pricing.DuplicatePolicy, validation *domain.Validation) *Reconciler {
	if schema == "" {
		schema = domain.SchemaVariants
	}
	return &Reconciler{schema: schema, policy: policy, validation: validation}
}

func (r *Reconciler) Schema() domain.Schema {
	return r.schema
}

func (r *Reconciler) Policy() pricing.DuplicatePolicy {
	return r.policy
}

// ToDraft seeds an edit form from a stored product. Missing values fall back
// to the empty draft's defaults.
func (r *Reconciler) ToDraft(p *domain.Product) domain.Draft {
	d := domain.NewDraft()
	if p == nil {
		return d
	}

	d.Title = p.Title
	d.Brand = p.Brand
	if p.Gender != "" {
		d.Gender = p.Gender
	}
	if p.Valute != "" {
		d.Valute = p.Valute
	}
	if p.Info != nil {
		d.Info = *p.Info
	}
	if p.ReleaseDate != nil {
		d.ReleaseDate = *p.ReleaseDate
	}
	d.Images = append(d.Images, p.Images...)
	d.Variants = append(d.Variants, p.Variants...)

	// the form edits the pre-discount price while the store keeps the
	// discounted one in price
	original := 0.0
	switch {
	case p.OldMoney != nil:
		original = *p.OldMoney
	case p.Price != nil:
		original = *p.Price
	}
	d.Price = formatFloat(original)
	if p.Discount != nil {
		d.Discount = formatFloat(*p.Discount)
	}

	if p.ItemLeft == nil {
		d.ItemLeftUnknown = true
	} else {
		d.ItemLeft = domain.RawNumber(strconv.Itoa(*p.ItemLeft))
	}

	sizes := make([]domain.RawNumber, 0, len(p.MLSizes))
	for _, ml := range p.MLSizes {
		sizes = append(sizes, formatFloat(ml))
	}
	d.MLSizes = pricing.NormalizeVolumes(sizes)

	if r.schema == domain.SchemaVariants && p.IsLegacy() {
		table := pricing.NewTable(nil, r.policy)
		for _, ml := range d.MLSizes {
			table, _ = table.Add(domain.RawNumber(strconv.Itoa(ml)), d.Price, d.Discount)
		}
		d.Variants = table.Rows()
	}

	return d
}

// ToPayload validates a draft and builds the body sent to the store. Every
// derived price is computed again from the raw inputs.
func (r *Reconciler) ToPayload(d domain.Draft) (domain.Payload, error) {
	p := domain.Payload{
		Schema:      r.schema,
		Title:       strings.TrimSpace(d.Title),
		Brand:       strings.TrimSpace(d.Brand),
		Gender:      d.Gender,
		Valute:      d.Valute,
		Info:        optional(d.Info),
		ReleaseDate: optional(d.ReleaseDate),
		Images:      ClampImages(d.Images),
	}
	if p.Gender == "" {
		p.Gender = domain.GenderUnisex
	}
	if p.Valute == "" {
		p.Valute = domain.CurrencyUSD
	}

	switch r.schema {
	case domain.SchemaFlat:
		p.OldMoney = pricing.NonNegative(d.Price).InexactFloat64()
		p.Price = pricing.SalePrice(d.Price, d.Discount).InexactFloat64()
		p.Discount = pricing.DiscountPercent(d.Discount)
		if !d.ItemLeftUnknown {
			left := int(pricing.Coerce(d.ItemLeft).IntPart())
			p.ItemLeft = &left
		}
		p.MLSizes = pricing.NormalizeSizes(d.MLSizes)
	default:
		p.Variants = pricing.NewTable(d.Variants, r.policy).Recompute().Rows()
	}

	if errs := r.validation.Validate(p); len(errs) > 0 {
		return domain.Payload{}, errs
	}

	return p, nil
}

// Preview is the live pricing shown next to the form inputs. It is the price
// ToPayload would store.
type Preview struct {
	FinalPrice string           `json:"final_price"`
	Variants   []domain.Variant `json:"variants"`
}

func (r *Reconciler) Preview(d domain.Draft) Preview {
	return Preview{
		FinalPrice: pricing.SalePrice(d.Price, d.Discount).StringFixed(2),
		Variants:   pricing.NewTable(d.Variants, r.policy).Recompute().Rows(),
	}
}

// ClampImages keeps the first MaxImages URLs.
func ClampImages(images []string) []string {
	if len(images) > domain.MaxImages {
		images = images[:domain.MaxImages]
	}
	return append([]string{}, images...)
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func formatFloat(f float64) domain.RawNumber {
	return domain.RawNumber(strconv.FormatFloat(f, 'f', -1, 64))
}
