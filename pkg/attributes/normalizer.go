// Package attributes normalizes attribute values and enforces a group's attribute schema.
package attributes

import (
	"maps"
	"strings"

	"github.com/Ramsey-B/fern/pkg/models"
)

// Normalize strips a trailing " <unit>" suffix for any accepted unit and trims
// surrounding whitespace. Units are tried in configured order and the first one
// that matches wins. Stripping repeats until no unit matches, so the result is a
// fixed point: Normalize(Normalize(v, u), u) == Normalize(v, u).
//
// Only a space-separated unit is recognised: "10 kg" becomes "10", "10kg" is kept.
// Case is preserved.
func Normalize(value string, spec models.UnitSpec) string {
	out := strings.TrimSpace(value)
	units := spec.Units()
	for {
		stripped := false
		for _, unit := range units {
			suffix := " " + unit
			if strings.HasSuffix(out, suffix) {
				out = strings.TrimSpace(strings.TrimSuffix(out, suffix))
				stripped = true
				break
			}
		}
		if !stripped {
			return out
		}
	}
}

// Schema indexes definitions by attribute name.
type Schema map[string]models.AttributeDefinition

func NewSchema(defs []models.AttributeDefinition) Schema {
	schema := make(Schema, len(defs))
	for _, def := range defs {
		schema[def.Name] = def
	}
	return schema
}

// Canonicalize normalizes every entry of set with the unit spec of its definition.
// Entries without a definition are only trimmed.
func Canonicalize(set models.AttributeSet, schema Schema) map[string]string {
	canonical := make(map[string]string, len(set))
	for _, v := range set {
		canonical[v.Name] = Normalize(v.Text(), schema[v.Name].Unit)
	}
	return canonical
}

// Equivalent reports whether two canonical sets have the same keys and values.
func Equivalent(a, b map[string]string) bool {
	return maps.Equal(a, b)
}
