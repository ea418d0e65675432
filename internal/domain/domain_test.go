package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRawNumber_Decode(t *testing.T) {
	var in struct {
		Values []RawNumber `json:"values"`
	}
	err := json.Unmarshal([]byte(`{"values":[50,"30",null,-5,"x",12.5]}`), &in)
	require.NoError(t, err)

	assert.Equal(t, []RawNumber{"50", "30", "", "-5", "x", "12.5"}, in.Values)
}

func TestProductID_AcceptsNumbersAndStrings(t *testing.T) {
	var products []Product
	err := json.Unmarshal([]byte(`[{"id":17},{"id":"c0ffee"}]`), &products)
	require.NoError(t, err)

	assert.Equal(t, ProductID("17"), products[0].ID)
	assert.Equal(t, ProductID("c0ffee"), products[1].ID)
}

func TestPayload_FlatSchemaFields(t *testing.T) {
	p := Payload{
		Schema:   SchemaFlat,
		Title:    "A",
		Brand:    "B",
		Gender:   GenderMen,
		Valute:   CurrencyUZS,
		Price:    80,
		OldMoney: 100,
		Discount: 20,
	}

	body, err := json.Marshal(p)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(body, &fields))

	assert.Contains(t, fields, "item_left")
	assert.Nil(t, fields["item_left"])
	assert.Equal(t, []any{}, fields["ml_sizes"])
	assert.Equal(t, []any{}, fields["images"])
	assert.NotContains(t, fields, "variants")
	assert.Equal(t, 80.0, fields["price"])
}

func TestPayload_ApplyToKeepsOtherSchema(t *testing.T) {
	price := 10.0
	pr := Product{Price: &price}

	Payload{Schema: SchemaVariants, Title: "T", Variants: []Variant{{Volume: 5}}}.ApplyTo(&pr)

	assert.Equal(t, "T", pr.Title)
	assert.Equal(t, &price, pr.Price)
	assert.Len(t, pr.Variants, 1)
}

func TestDraftPatch(t *testing.T) {
	var patch DraftPatch
	require.NoError(t, json.Unmarshal([]byte(`{"title":"New","price":"12.5","item_left_unknown":true}`), &patch))

	d := NewDraft()
	d.Brand = "Kept"
	patch.ApplyTo(&d)

	assert.Equal(t, "New", d.Title)
	assert.Equal(t, "Kept", d.Brand)
	assert.Equal(t, RawNumber("12.5"), d.Price)
	assert.True(t, d.ItemLeftUnknown)
}

func TestValidation_DraftPatch(t *testing.T) {
	v := NewValidation()
	gender := Gender("aliens")

	errs := v.Validate(&DraftPatch{Gender: &gender})
	require.Len(t, errs, 1)
	assert.Equal(t, "gender", errs[0].Field)
	assert.Equal(t, "oneof", errs[0].Tag)

	assert.Empty(t, v.Validate(&DraftPatch{}))
}

func TestValidation_NestedFieldNames(t *testing.T) {
	errs := NewValidation().Validate(Payload{
		Title:    "A",
		Brand:    "B",
		Gender:   GenderMen,
		Valute:   CurrencyUSD,
		Variants: []Variant{{Volume: 0}},
	})

	require.Len(t, errs, 1)
	assert.Equal(t, "variants[0].volume", errs[0].Field)
}

func TestDraft_Clone(t *testing.T) {
	d := NewDraft()
	d.Images = append(d.Images, "a")
	c := d.Clone()
	c.Images[0] = "b"

	assert.Equal(t, "a", d.Images[0])
}
