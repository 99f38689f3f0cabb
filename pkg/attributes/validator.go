package attributes

import (
	"context"
	"fmt"
	"strings"

	"github.com/Gobusters/ectolinq"
	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

// SchemaLookup returns the live attribute definitions of a group.
type SchemaLookup interface {
	ListByGroup(ctx context.Context, groupCode string) ([]models.AttributeDefinition, error)
}

type ViolationKind string

const (
	ViolationUndefined  ViolationKind = "undefined"
	ViolationGrammar    ViolationKind = "grammar"
	ViolationNotAllowed ViolationKind = "not_allowed"
)

type Violation struct {
	Attribute string        `json:"attribute"`
	Value     string        `json:"value"`
	Kind      ViolationKind `json:"kind"`
	Message   string        `json:"message"`
}

// Result of validating an attribute set. Normalized holds the canonical value of
// every attribute and is only meaningful when Valid is true.
type Result struct {
	Valid      bool              `json:"valid"`
	Violations []Violation       `json:"violations,omitempty"`
	Normalized map[string]string `json:"normalized,omitempty"`
}

func (r *Result) Messages() []string {
	return ectolinq.Map(r.Violations, func(v Violation) string { return v.Message })
}

type Validator struct {
	schema SchemaLookup
	logger ectologger.Logger
	// closedByDefault makes allowed-value lists binding for every group.
	closedByDefault bool
}

type Option func(*Validator)

// WithClosedValues enforces allowed-value membership for all groups, not only the
// groups flagged with ClosedValues.
func WithClosedValues(closed bool) Option {
	return func(v *Validator) {
		v.closedByDefault = closed
	}
}

func NewValidator(schema SchemaLookup, logger ectologger.Logger, opts ...Option) *Validator {
	v := &Validator{
		schema: schema,
		logger: logger,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate checks every proposed attribute against the group's schema and
// collects all violations before returning.
func (v *Validator) Validate(ctx context.Context, group models.Group, attrs models.AttributeSet) (*Result, error) {
	ctx, span := tracing.StartSpan(ctx, "attributes.Validator.Validate")
	defer span.End()

	defs, err := v.schema.ListByGroup(ctx, group.Code)
	if err != nil {
		v.logger.WithContext(ctx).WithError(err).Error("failed to load attribute definitions")
		return nil, fmt.Errorf("failed to load attribute definitions for group %s: %w", group.Code, err)
	}

	result := v.ValidateWithSchema(group, NewSchema(defs), attrs)

	v.logger.WithContext(ctx).WithFields(map[string]any{
		"mgrp_code":  group.Code,
		"attributes": len(attrs),
		"violations": len(result.Violations),
	}).Debug("Validated attribute set")

	return result, nil
}

// ValidateWithSchema is Validate against an already loaded schema.
func (v *Validator) ValidateWithSchema(group models.Group, schema Schema, attrs models.AttributeSet) *Result {
	result := &Result{Normalized: make(map[string]string, len(attrs))}

	for _, attr := range attrs {
		def, ok := schema[attr.Name]
		if !ok {
			result.Violations = append(result.Violations, Violation{
				Attribute: attr.Name,
				Value:     attr.Text(),
				Kind:      ViolationUndefined,
				Message:   fmt.Sprintf("%s not defined for group %s", attr.Name, group.Code),
			})
			continue
		}

		if violation := v.CheckValue(group, def, attr); violation != nil {
			result.Violations = append(result.Violations, *violation)
			continue
		}

		result.Normalized[attr.Name] = Normalize(attr.Text(), def.Unit)
	}

	result.Valid = len(result.Violations) == 0
	return result
}

// CheckValue applies the value-level rule of one definition. A grammar, when set,
// is the only rule and runs on the literal value. Otherwise the normalized value
// must be in the allowed list, but only when the group's list is closed.
func (v *Validator) CheckValue(group models.Group, def models.AttributeDefinition, attr models.AttributeValue) *Violation {
	if def.Validation.Normalized() != models.GrammarNone {
		if err := CheckGrammar(attr.Value, def.Validation); err != nil {
			return &Violation{
				Attribute: attr.Name,
				Value:     attr.Value,
				Kind:      ViolationGrammar,
				Message:   fmt.Sprintf("%s: %s (%s)", attr.Name, err.Error(), def.Validation.Normalized()),
			}
		}
		return nil
	}

	allowed := def.Values()
	if len(allowed) == 0 || attr.Empty() || !v.closed(group) {
		return nil
	}

	normalized := Normalize(attr.Text(), def.Unit)
	ok := ectolinq.Contains(ectolinq.Map(allowed, func(a string) string { return Normalize(a, def.Unit) }), normalized)
	if ok {
		return nil
	}

	return &Violation{
		Attribute: attr.Name,
		Value:     attr.Text(),
		Kind:      ViolationNotAllowed,
		Message:   fmt.Sprintf("Value '%s' is not in allowed values for %s: %s", attr.Text(), attr.Name, strings.Join(allowed, ", ")),
	}
}

func (v *Validator) closed(group models.Group) bool {
	return v.closedByDefault || group.ClosedValues
}
