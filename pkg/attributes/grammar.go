package attributes

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/Ramsey-B/fern/pkg/models"
)

// GrammarError is a value that does not match its attribute's grammar.
type GrammarError struct {
	Value   string
	Grammar models.Grammar
	Message string
}

func (e *GrammarError) Error() string {
	return e.Message
}

// CheckGrammar checks the literal value against a grammar. An empty value, an
// empty grammar or an unknown grammar always passes.
func CheckGrammar(value string, grammar models.Grammar) error {
	if value == "" || grammar == models.GrammarNone {
		return nil
	}

	g := grammar.Normalized()
	fail := func(format string) error {
		return &GrammarError{Value: value, Grammar: g, Message: fmt.Sprintf(format, value)}
	}

	switch g {
	case models.GrammarAlpha:
		if !all(strings.ReplaceAll(value, " ", ""), unicode.IsLetter) {
			return fail("Value '%s' must contain only alphabetic characters")
		}
	case models.GrammarNumeric:
		// Only "." and a leading "-" are tolerated, so "1e5" and "+3" are rejected.
		digits := strings.ReplaceAll(strings.TrimPrefix(value, "-"), ".", "")
		if !all(digits, unicode.IsDigit) {
			return fail("Value '%s' must be numeric")
		}
	case models.GrammarAlphanumeric:
		if !all(strings.ReplaceAll(value, " ", ""), isAlnum) {
			return fail("Value '%s' must contain only alphanumeric characters")
		}
	case models.GrammarWholeNumber:
		num, err := parseFloat(value)
		if err != nil || math.IsInf(num, 0) {
			return fail("Value '%s' must be a whole number")
		}
		if num < 0 || num != math.Trunc(num) {
			return fail("Value '%s' must be a whole number (non-negative integer)")
		}
	case models.GrammarInteger:
		if _, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err != nil && !errors.Is(err, strconv.ErrRange) {
			return fail("Value '%s' must be an integer")
		}
	case models.GrammarDecimal:
		if _, err := parseFloat(value); err != nil {
			return fail("Value '%s' must be a decimal number")
		}
	}

	return nil
}

// parseFloat accepts surrounding whitespace, and overflow to ±Inf. NaN is rejected.
func parseFloat(value string) (float64, error) {
	num, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, err
	}
	if math.IsNaN(num) {
		return 0, fmt.Errorf("not a number: %s", value)
	}
	return num, nil
}

func isAlnum(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// all is false for the empty string.
func all(s string, pred func(rune) bool) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !pred(r) {
			return false
		}
	}
	return true
}
