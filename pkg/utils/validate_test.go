package utils

import (
	"testing"

	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_GrammarTag(t *testing.T) {
	tests := []struct {
		name    string
		grammar models.Grammar
		wantErr bool
	}{
		{"empty", "", false},
		{"known", "decimal", false},
		{"case and spaces", " WholeNumber ", false},
		{"unknown", "roman", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Validate(models.UpsertAttributeRequest{Name: "Length", Validation: tt.grammar})
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "rule 'grammar'")
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestValidate_OptionalGrammarPointer(t *testing.T) {
	_, err := Validate(models.UpdateAttributeRequest{})
	assert.NoError(t, err)

	bad := models.Grammar("roman")
	_, err = Validate(models.UpdateAttributeRequest{Validation: &bad})
	assert.Error(t, err)
}

func TestValidate_RequiredAndDive(t *testing.T) {
	_, err := Validate(models.UpsertAttributesRequest{})
	assert.Error(t, err)

	_, err = Validate(models.UpsertAttributesRequest{Attributes: []models.UpsertAttributeRequest{{Name: ""}}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "'Name'")
}

func TestValidateValue(t *testing.T) {
	assert.NoError(t, ValidateValue("G1", "required,max=20"))
	assert.Error(t, ValidateValue("", "required"))
}
