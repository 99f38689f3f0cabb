package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Ramsey-B/fern/pkg/database"
	"github.com/google/uuid"
)

// AttributeDefinition declares one attribute of a material group.
type AttributeDefinition struct {
	ID            uuid.UUID                `json:"id" db:"id"`
	GroupCode     string                   `json:"mgrp_code" db:"mgrp_code"`
	Name          string                   `json:"attribute_name" db:"attribute_name"`
	AllowedValues database.JSONB[[]string] `json:"possible_values" db:"possible_values"`
	Unit          UnitSpec                 `json:"uom" db:"uom"`
	PrintPriority *int                     `json:"print_priority,omitempty" db:"print_priority"`
	Validation    Grammar                  `json:"validation" db:"validation"`
	CreatedAt     time.Time                `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time                `json:"updated_at" db:"updated_at"`
	DeletedAt     *time.Time               `json:"deleted_at,omitempty" db:"deleted_at"`
}

func (d AttributeDefinition) Values() []string {
	return d.AllowedValues.Data
}

// AttributeDefinitionView is the shape item details render for each definition.
type AttributeDefinitionView struct {
	Name          string   `json:"attrib_name"`
	PrintName     string   `json:"attrib_printname"`
	TagName       string   `json:"attrib_tagname"`
	PrintPriority int      `json:"attrib_printpriority"`
	Values        []string `json:"values"`
	Validation    string   `json:"validation"`
	Unit          string   `json:"unit"`
}

func (d AttributeDefinition) View() AttributeDefinitionView {
	priority := 0
	if d.PrintPriority != nil {
		priority = *d.PrintPriority
	}
	values := d.Values()
	if values == nil {
		values = []string{}
	}
	return AttributeDefinitionView{
		Name:          d.Name,
		PrintName:     d.Name,
		TagName:       strings.ReplaceAll(strings.ToLower(d.Name), " ", "_"),
		PrintPriority: priority,
		Values:        values,
		Validation:    string(d.Validation),
		Unit:          string(d.Unit),
	}
}

// UnitSpec is an attribute's accepted unit of measure: empty, one unit, or a
// comma separated list. Order is significant, the first matching unit wins.
type UnitSpec string

func (u UnitSpec) Units() []string {
	if strings.TrimSpace(string(u)) == "" {
		return nil
	}
	var units []string
	for _, part := range strings.Split(string(u), ",") {
		if part = strings.TrimSpace(part); part != "" {
			units = append(units, part)
		}
	}
	return units
}

// UnmarshalJSON accepts "kg", "kg, g" or ["kg", "g"].
func (u *UnitSpec) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		*u = ""
		return nil
	}
	var list []string
	if err := json.Unmarshal(b, &list); err == nil {
		*u = UnitSpec(strings.Join(list, ","))
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("uom must be a string or a list of strings: %w", err)
	}
	*u = UnitSpec(s)
	return nil
}

// Grammar names a value-shape rule.
type Grammar string

const (
	GrammarNone         Grammar = ""
	GrammarAlpha        Grammar = "alpha"
	GrammarNumeric      Grammar = "numeric"
	GrammarAlphanumeric Grammar = "alphanumeric"
	GrammarWholeNumber  Grammar = "wholenumber"
	GrammarInteger      Grammar = "integer"
	GrammarDecimal      Grammar = "decimal"
)

// Normalized lowercases and trims the tag as it is matched against the known grammars.
func (g Grammar) Normalized() Grammar {
	return Grammar(strings.ToLower(strings.TrimSpace(string(g))))
}

func (g Grammar) Known() bool {
	switch g.Normalized() {
	case GrammarAlpha, GrammarNumeric, GrammarAlphanumeric, GrammarWholeNumber, GrammarInteger, GrammarDecimal:
		return true
	}
	return false
}

// AttributeValue is one entry of an attribute set: a bare value, or a value
// with the unit it was entered in.
type AttributeValue struct {
	Name  string `json:"name"`
	Value string `json:"value"`
	Unit  string `json:"uom,omitempty"`

	// set when decoded from a bare false or numeric zero
	falsy bool
}

// Empty reports whether the entry carries nothing worth comparing.
func (v AttributeValue) Empty() bool {
	return v.Value == "" && v.Unit == ""
}

// Text is the value as a single string, "<value> <unit>" for pairs.
func (v AttributeValue) Text() string {
	if v.Unit == "" {
		return v.Value
	}
	return v.Value + " " + v.Unit
}

// AttributeSet is the attribute data of one item. It is stored as a JSON object
// keyed by attribute name whose values are either a scalar or {"value","uom"}.
type AttributeSet []AttributeValue

func (s AttributeSet) Get(name string) (AttributeValue, bool) {
	for _, v := range s {
		if v.Name == name {
			return v, true
		}
	}
	return AttributeValue{}, false
}

// Set replaces the entry with the same name or appends a new one.
func (s AttributeSet) Set(v AttributeValue) AttributeSet {
	for i := range s {
		if s[i].Name == v.Name {
			out := append(AttributeSet(nil), s...)
			out[i] = v
			return out
		}
	}
	return append(append(AttributeSet(nil), s...), v)
}

// AllEmpty is true for an empty set and for a set whose every entry is Empty
// or was decoded from a bare false or 0.
func (s AttributeSet) AllEmpty() bool {
	for _, v := range s {
		if !v.Empty() && !v.falsy {
			return false
		}
	}
	return true
}

func (s AttributeSet) Map() map[string]any {
	out := make(map[string]any, len(s))
	for _, v := range s {
		if v.Unit != "" {
			out[v.Name] = map[string]string{"value": v.Value, "uom": v.Unit}
			continue
		}
		out[v.Name] = v.Value
	}
	return out
}

func (s AttributeSet) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, v := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(v.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		var val []byte
		if v.Unit != "" {
			val, err = json.Marshal(struct {
				Value string `json:"value"`
				UOM   string `json:"uom"`
			}{v.Value, v.Unit})
		} else {
			val, err = json.Marshal(v.Value)
		}
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (s *AttributeSet) UnmarshalJSON(b []byte) error {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*s = nil
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("attributes must be a JSON object")
	}

	out := AttributeSet{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		name, _ := keyTok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		value, err := parseAttributeValue(name, raw)
		if err != nil {
			return err
		}
		out = out.Set(value)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*s = out
	return nil
}

func parseAttributeValue(name string, raw json.RawMessage) (AttributeValue, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '{' {
		var pair struct {
			Value json.RawMessage `json:"value"`
			UOM   json.RawMessage `json:"uom"`
		}
		if err := json.Unmarshal(raw, &pair); err != nil {
			return AttributeValue{}, fmt.Errorf("attribute %q: %w", name, err)
		}
		return AttributeValue{Name: name, Value: scalarText(pair.Value), Unit: scalarText(pair.UOM)}, nil
	}
	return AttributeValue{Name: name, Value: scalarText(raw), falsy: falsyScalar(raw)}, nil
}

func falsyScalar(raw json.RawMessage) bool {
	if bytes.Equal(raw, []byte("false")) {
		return true
	}
	if len(raw) == 0 || (raw[0] != '-' && (raw[0] < '0' || raw[0] > '9')) {
		return false
	}
	n, err := strconv.ParseFloat(string(raw), 64)
	return err == nil && n == 0
}

// scalarText renders a JSON scalar as its literal text. Strings lose their quotes
// and null becomes "".
func scalarText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	}
	return string(raw)
}

func (s *AttributeSet) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*s = nil
		return nil
	case []byte:
		return s.UnmarshalJSON(v)
	case string:
		return s.UnmarshalJSON([]byte(v))
	default:
		return fmt.Errorf("AttributeSet.Scan: expected []byte, got %T", src)
	}
}

func (s AttributeSet) Value() (driver.Value, error) {
	return s.MarshalJSON()
}

// UpsertAttributeRequest creates a definition or revives and overwrites the one
// with the same group and name.
type UpsertAttributeRequest struct {
	Name           string   `json:"attribute_name" validate:"required"`
	PossibleValues []string `json:"possible_values"`
	Unit           UnitSpec `json:"uom"`
	PrintPriority  *int     `json:"print_priority"`
	Validation     Grammar  `json:"validation" validate:"grammar"`
}

type UpsertAttributesRequest struct {
	Attributes []UpsertAttributeRequest `json:"attributes" validate:"required,min=1,dive"`
}

type UpdateAttributeRequest struct {
	PossibleValues *[]string `json:"possible_values,omitempty"`
	Unit           *UnitSpec `json:"uom,omitempty"`
	PrintPriority  *int      `json:"print_priority,omitempty"`
	Validation     *Grammar  `json:"validation,omitempty" validate:"omitempty,grammar"`
}

// Definition builds the stored form of the request for a group.
func (r UpsertAttributeRequest) Definition(groupCode string) AttributeDefinition {
	values := r.PossibleValues
	if values == nil {
		values = []string{}
	}
	return AttributeDefinition{
		GroupCode:     groupCode,
		Name:          strings.TrimSpace(r.Name),
		AllowedValues: database.NewJSONB(values),
		Unit:          r.Unit,
		PrintPriority: r.PrintPriority,
		Validation:    r.Validation.Normalized(),
	}
}
