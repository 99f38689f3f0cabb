package attributes

import (
	"context"
	"errors"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/fern/pkg/database"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSchema struct {
	defs  map[string][]models.AttributeDefinition
	err   error
	calls int
}

func (f *fakeSchema) ListByGroup(ctx context.Context, groupCode string) ([]models.AttributeDefinition, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.defs[groupCode], nil
}

func testLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

func definition(name string, grammar models.Grammar, unit models.UnitSpec, allowed ...string) models.AttributeDefinition {
	return models.AttributeDefinition{
		GroupCode:     "G",
		Name:          name,
		Validation:    grammar,
		Unit:          unit,
		AllowedValues: database.NewJSONB(allowed),
	}
}

func newFakeSchema() *fakeSchema {
	return &fakeSchema{defs: map[string][]models.AttributeDefinition{
		"G": {
			definition("Color", models.GrammarAlpha, ""),
			definition("Size", models.GrammarNone, "", "S", "M", "L"),
			definition("Weight", models.GrammarNone, "kg", "1 kg", "2 kg"),
			definition("Pieces", models.GrammarWholeNumber, ""),
			definition("Finish", models.GrammarNone, ""),
		},
	}}
}

func TestValidator_Validate(t *testing.T) {
	ctx := context.Background()
	group := models.Group{Code: "G"}

	t.Run("grammar violation names the attribute", func(t *testing.T) {
		v := NewValidator(newFakeSchema(), testLogger())
		result, err := v.Validate(ctx, group, models.AttributeSet{{Name: "Color", Value: "Red1"}})
		require.NoError(t, err)

		assert.False(t, result.Valid)
		require.Len(t, result.Violations, 1)
		assert.Equal(t, ViolationGrammar, result.Violations[0].Kind)
		assert.Equal(t, "Color", result.Violations[0].Attribute)
		assert.Contains(t, result.Messages()[0], "Color")
		assert.Contains(t, result.Messages()[0], "Red1")
	})

	t.Run("grammar replaces the allowed list", func(t *testing.T) {
		schema := &fakeSchema{defs: map[string][]models.AttributeDefinition{
			"G": {definition("Color", models.GrammarAlpha, "", "Blue")},
		}}
		v := NewValidator(schema, testLogger(), WithClosedValues(true))
		result, err := v.Validate(ctx, group, models.AttributeSet{{Name: "Color", Value: "Red"}})
		require.NoError(t, err)
		assert.True(t, result.Valid)
	})

	t.Run("custom values are accepted when the list is open", func(t *testing.T) {
		v := NewValidator(newFakeSchema(), testLogger())
		result, err := v.Validate(ctx, group, models.AttributeSet{{Name: "Size", Value: "XL"}})
		require.NoError(t, err)

		assert.True(t, result.Valid)
		assert.Equal(t, map[string]string{"Size": "XL"}, result.Normalized)
	})

	t.Run("closed group enforces membership on the normalized value", func(t *testing.T) {
		v := NewValidator(newFakeSchema(), testLogger())
		closed := models.Group{Code: "G", ClosedValues: true}

		result, err := v.Validate(ctx, closed, models.AttributeSet{
			{Name: "Size", Value: "XL"},
			{Name: "Weight", Value: "2", Unit: "kg"},
		})
		require.NoError(t, err)

		assert.False(t, result.Valid)
		require.Len(t, result.Violations, 1)
		assert.Equal(t, ViolationNotAllowed, result.Violations[0].Kind)
		assert.Equal(t, "Size", result.Violations[0].Attribute)
	})

	t.Run("undefined names are always violations and nothing short circuits", func(t *testing.T) {
		v := NewValidator(newFakeSchema(), testLogger())
		result, err := v.Validate(ctx, group, models.AttributeSet{
			{Name: "Voltage", Value: "220"},
			{Name: "Color", Value: "Red1"},
			{Name: "Pieces", Value: "-2"},
			{Name: "Finish", Value: "Matte"},
		})
		require.NoError(t, err)

		assert.False(t, result.Valid)
		assert.Equal(t, []string{
			"Voltage not defined for group G",
			"Color: Value 'Red1' must contain only alphabetic characters (alpha)",
			"Pieces: Value '-2' must be a whole number (non-negative integer) (wholenumber)",
		}, result.Messages())
	})

	t.Run("grammar runs on the literal value", func(t *testing.T) {
		schema := &fakeSchema{defs: map[string][]models.AttributeDefinition{
			"G": {definition("Length", models.GrammarDecimal, "mm")},
		}}
		v := NewValidator(schema, testLogger())

		result, err := v.Validate(ctx, group, models.AttributeSet{{Name: "Length", Value: "12 mm"}})
		require.NoError(t, err)
		assert.False(t, result.Valid)

		result, err = v.Validate(ctx, group, models.AttributeSet{{Name: "Length", Value: "12", Unit: "mm"}})
		require.NoError(t, err)
		assert.True(t, result.Valid)
		assert.Equal(t, "12", result.Normalized["Length"])
	})

	t.Run("schema errors are returned", func(t *testing.T) {
		v := NewValidator(&fakeSchema{err: errors.New("boom")}, testLogger())
		_, err := v.Validate(ctx, group, models.AttributeSet{{Name: "Color", Value: "Red"}})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to load attribute definitions for group G")
	})

	t.Run("empty set is valid", func(t *testing.T) {
		v := NewValidator(newFakeSchema(), testLogger())
		result, err := v.Validate(ctx, group, nil)
		require.NoError(t, err)
		assert.True(t, result.Valid)
		assert.Empty(t, result.Violations)
	})
}
