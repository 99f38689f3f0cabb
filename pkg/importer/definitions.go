package importer

import (
	"context"
	"fmt"
	"strings"

	"github.com/Ramsey-B/fern/pkg/database"
	"github.com/Ramsey-B/fern/pkg/metrics"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

// ImportDefinitions inserts the attribute definitions of an upload. Rows whose
// (group, name) already exists are skipped silently.
func (i *Importer) ImportDefinitions(ctx context.Context, filename string, data []byte) (*Result, error) {
	ctx, span := tracing.StartSpan(ctx, "importer.Importer.ImportDefinitions")
	defer span.End()

	sheet, err := ReadFile(filename, data, "")
	if err != nil {
		return nil, err
	}

	groups := newGroupCache(i.groups)
	result := &Result{Errors: []RowError{}}
	var defs []models.AttributeDefinition

	for _, row := range sheet.Rows {
		def, rowErr, err := i.definitionRow(ctx, groups, row)
		if err != nil {
			return nil, err
		}
		if rowErr != nil {
			result.Errors = append(result.Errors, *rowErr)
			continue
		}
		defs = append(defs, *def)
	}

	inserted := 0
	if len(defs) > 0 {
		inserted, err = i.defs.InsertIgnore(ctx, defs)
		if err != nil {
			return nil, err
		}
	}

	metrics.ImportRowsTotal.WithLabelValues(KindDefinitions, "inserted").Add(float64(inserted))
	metrics.ImportRowsTotal.WithLabelValues(KindDefinitions, "skipped").Add(float64(len(defs) - inserted))
	metrics.ImportRowsTotal.WithLabelValues(KindDefinitions, "error").Add(float64(len(result.Errors)))

	i.logger.WithContext(ctx).WithFields(map[string]any{
		"rows":     len(sheet.Rows),
		"inserted": inserted,
		"errors":   len(result.Errors),
	}).Info("Imported attribute definitions")

	i.emit(ctx, KindDefinitions, map[string]int{"inserted": inserted, "errors": len(result.Errors)})

	result.Message = "MatGroup Attribute Definitions imported"
	result.Inserted = intPtr(inserted)
	return result, nil
}

func (i *Importer) definitionRow(ctx context.Context, groups *groupCache, row Row) (*models.AttributeDefinition, *RowError, error) {
	groupCode := row.Get("mgrp_code")
	if groupCode == "" {
		return nil, &RowError{Row: row.Number, Error: "mgrp_code is required"}, nil
	}
	group, err := groups.get(ctx, groupCode)
	if err != nil {
		return nil, nil, err
	}
	if group == nil {
		return nil, &RowError{Row: row.Number, Error: fmt.Sprintf("MatGroup '%s' not found", groupCode)}, nil
	}

	name := row.Get("attribute_name")
	if name == "" {
		return nil, &RowError{Row: row.Number, Error: "attribute_name is required"}, nil
	}

	values := []string{}
	for _, v := range strings.Split(row.Get("possible_values"), ",") {
		if v = strings.TrimSpace(v); v != "" {
			values = append(values, v)
		}
	}

	validation := models.Grammar(row.Get("validation")).Normalized()
	if validation != models.GrammarNone && !validation.Known() {
		return nil, &RowError{Row: row.Number, Error: fmt.Sprintf("unknown validation '%s'", validation)}, nil
	}

	def := &models.AttributeDefinition{
		GroupCode:     group.Code,
		Name:          name,
		AllowedValues: database.NewJSONB(values),
		Unit:          models.UnitSpec(row.Get("uom", "unit_of_measure")),
		Validation:    validation,
	}
	// an unparseable priority is left unset rather than rejecting the row
	if n, ok := intValue(row.Get("print_priority")); ok {
		p := int(n)
		def.PrintPriority = &p
	}

	return def, nil, nil
}
