package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttributeSetJSON(t *testing.T) {
	t.Run("decodes bare values and unit pairs in document order", func(t *testing.T) {
		var set AttributeSet
		err := json.Unmarshal([]byte(`{"Weight": {"value": "10", "uom": "kg"}, "Color": "Red", "Pieces": 12, "Sterile": true, "Note": null}`), &set)
		require.NoError(t, err)

		assert.Equal(t, AttributeSet{
			{Name: "Weight", Value: "10", Unit: "kg"},
			{Name: "Color", Value: "Red"},
			{Name: "Pieces", Value: "12"},
			{Name: "Sterile", Value: "true"},
			{Name: "Note", Value: ""},
		}, set)
	})

	t.Run("encodes pairs only when a unit is present", func(t *testing.T) {
		set := AttributeSet{{Name: "Color", Value: "Red"}, {Name: "Weight", Value: "10", Unit: "kg"}}
		b, err := json.Marshal(set)
		require.NoError(t, err)
		assert.JSONEq(t, `{"Color": "Red", "Weight": {"value": "10", "uom": "kg"}}`, string(b))
	})

	t.Run("a nil set encodes as an empty object", func(t *testing.T) {
		b, err := json.Marshal(AttributeSet(nil))
		require.NoError(t, err)
		assert.Equal(t, "{}", string(b))
	})

	t.Run("rejects non objects", func(t *testing.T) {
		var set AttributeSet
		assert.Error(t, json.Unmarshal([]byte(`["Red"]`), &set))
	})

	t.Run("scans jsonb bytes", func(t *testing.T) {
		var set AttributeSet
		require.NoError(t, set.Scan([]byte(`{"Size": "M"}`)))
		assert.Equal(t, AttributeSet{{Name: "Size", Value: "M"}}, set)

		require.NoError(t, set.Scan(nil))
		assert.Nil(t, set)
	})
}

func TestAttributeSetHelpers(t *testing.T) {
	set := AttributeSet{{Name: "Color", Value: "Red"}}

	updated := set.Set(AttributeValue{Name: "Color", Value: "Blue"})
	assert.Equal(t, "Red", set[0].Value, "Set must not mutate the receiver")
	v, ok := updated.Get("Color")
	require.True(t, ok)
	assert.Equal(t, "Blue", v.Value)

	updated = updated.Set(AttributeValue{Name: "Size", Value: "M"})
	assert.Len(t, updated, 2)

	assert.True(t, AttributeSet{}.AllEmpty())
	assert.True(t, AttributeSet{{Name: "Color"}, {Name: "Size", Value: ""}}.AllEmpty())
	assert.False(t, AttributeSet{{Name: "Weight", Unit: "kg"}}.AllEmpty())
	assert.False(t, AttributeSet{{Name: "Qty", Value: "0"}}.AllEmpty())
	assert.Equal(t, "10 kg", AttributeValue{Value: "10", Unit: "kg"}.Text())
}

func TestAttributeSetAllEmpty_FalsyScalars(t *testing.T) {
	tests := []struct {
		doc   string
		empty bool
	}{
		{`{"Qty": 0}`, true},
		{`{"Qty": 0.0}`, true},
		{`{"Qty": -0}`, true},
		{`{"Flag": false}`, true},
		{`{"Note": null, "Code": ""}`, true},
		{`{"Qty": 0, "Flag": false, "Note": null}`, true},
		{`{"Qty": "0"}`, false},
		{`{"Flag": "false"}`, false},
		{`{"Qty": 1}`, false},
		{`{"Flag": true}`, false},
		{`{"Qty": 0, "Color": "Red"}`, false},
		{`{"Weight": {"value": 0, "uom": "kg"}}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.doc, func(t *testing.T) {
			var set AttributeSet
			require.NoError(t, json.Unmarshal([]byte(tt.doc), &set))
			assert.Equal(t, tt.empty, set.AllEmpty())
		})
	}
}

func TestUnitSpec(t *testing.T) {
	assert.Nil(t, UnitSpec("").Units())
	assert.Equal(t, []string{"kg"}, UnitSpec("kg").Units())
	assert.Equal(t, []string{"kg", "g"}, UnitSpec(" kg , g ,").Units())

	var u UnitSpec
	require.NoError(t, json.Unmarshal([]byte(`["mm", "cm"]`), &u))
	assert.Equal(t, UnitSpec("mm,cm"), u)
	require.NoError(t, json.Unmarshal([]byte(`"kg"`), &u))
	assert.Equal(t, UnitSpec("kg"), u)
}

func TestAttributeDefinitionView(t *testing.T) {
	priority := 3
	def := AttributeDefinition{Name: "Outer Diameter", Unit: "mm", Validation: GrammarDecimal, PrintPriority: &priority}
	view := def.View()

	assert.Equal(t, "outer_diameter", view.TagName)
	assert.Equal(t, "Outer Diameter", view.PrintName)
	assert.Equal(t, 3, view.PrintPriority)
	assert.Equal(t, []string{}, view.Values)
	assert.Equal(t, "mm", view.Unit)

	assert.Equal(t, 0, AttributeDefinition{Name: "Color"}.View().PrintPriority)
}

func TestComposeLongName(t *testing.T) {
	assert.Equal(t, "GRP001 Fasteners Hex Bolt M8", ComposeLongName("GRP001", "Fasteners", "Hex Bolt M8"))
	assert.Equal(t, "GRP001 Hex Bolt", ComposeLongName("GRP001", " ", "Hex Bolt"))
}

func TestGrammar(t *testing.T) {
	assert.Equal(t, GrammarWholeNumber, Grammar("  WholeNumber ").Normalized())
	assert.True(t, Grammar("Decimal").Known())
	assert.False(t, Grammar("regex").Known())
	assert.False(t, GrammarNone.Known())
}
