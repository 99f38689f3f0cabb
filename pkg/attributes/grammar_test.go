package attributes

import (
	"testing"

	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckGrammar(t *testing.T) {
	tests := []struct {
		grammar models.Grammar
		valid   []string
		invalid []string
	}{
		{models.GrammarAlpha, []string{"Red", "Dark Red", "Rouge"}, []string{"Red1", "Red-Blue", "   "}},
		{models.GrammarNumeric, []string{"12", "12.5", "-3", "-0.25"}, []string{"1e5", "+3", "12a", "-", "1 2"}},
		{models.GrammarAlphanumeric, []string{"M8", "Type A 12"}, []string{"M8-x", "12.5"}},
		{models.GrammarWholeNumber, []string{"0", "42", "42.0", " 7 "}, []string{"-1", "2.5", "abc", "inf"}},
		{models.GrammarInteger, []string{"-12", "0", "+5", "99999999999999999999"}, []string{"1.5", "ten", "1e3"}},
		{models.GrammarDecimal, []string{"1.5", "-0.001", "3", "1e3"}, []string{"1,5", "abc", "NaN"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.grammar), func(t *testing.T) {
			for _, v := range tt.valid {
				assert.NoError(t, CheckGrammar(v, tt.grammar), "expected %q to pass", v)
			}
			for _, v := range tt.invalid {
				assert.Error(t, CheckGrammar(v, tt.grammar), "expected %q to fail", v)
			}
		})
	}
}

func TestCheckGrammarSkips(t *testing.T) {
	assert.NoError(t, CheckGrammar("", models.GrammarAlpha), "empty value is not checked")
	assert.NoError(t, CheckGrammar("anything 1!", models.GrammarNone))
	assert.NoError(t, CheckGrammar("anything 1!", "regex"), "unknown grammars do not check values")
}

func TestCheckGrammarMatchesTagLoosely(t *testing.T) {
	err := CheckGrammar("Red1", " Alpha ")
	require.Error(t, err)

	var grammarErr *GrammarError
	require.ErrorAs(t, err, &grammarErr)
	assert.Equal(t, models.GrammarAlpha, grammarErr.Grammar)
	assert.Equal(t, "Value 'Red1' must contain only alphabetic characters", grammarErr.Message)
}

func TestCheckGrammarWholeNumberMessages(t *testing.T) {
	assert.EqualError(t, CheckGrammar("2.5", models.GrammarWholeNumber), "Value '2.5' must be a whole number (non-negative integer)")
	assert.EqualError(t, CheckGrammar("two", models.GrammarWholeNumber), "Value 'two' must be a whole number")
}
