package importer

import (
	"context"
	"fmt"
	"strconv"

	ctxmiddleware "github.com/Ramsey-B/fern/pkg/context"
	"github.com/Ramsey-B/fern/pkg/metrics"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

type mergeOutcome string

const (
	mergeCreated   mergeOutcome = "created"
	mergeUpdated   mergeOutcome = "updated"
	mergeUnchanged mergeOutcome = "unchanged"
)

// MergeItemAttributes writes one attribute value per row into the item found by
// SAP id. Values are checked against the group's definition of the attribute;
// attributes the group does not define are stored unchecked.
func (i *Importer) MergeItemAttributes(ctx context.Context, filename string, data []byte) (*Result, error) {
	ctx, span := tracing.StartSpan(ctx, "importer.Importer.MergeItemAttributes")
	defer span.End()

	sheet, err := ReadFile(filename, data, AttributesSheet)
	if err != nil {
		return nil, err
	}

	actor := ctxmiddleware.GetUserID(ctx)
	groups := newGroupCache(i.groups)
	counts := map[mergeOutcome]int{}
	result := &Result{Errors: []RowError{}}

	for _, row := range sheet.Rows {
		outcome, rowErr, err := i.mergeRow(ctx, groups, row, actor)
		if err != nil {
			return nil, err
		}
		if rowErr != nil {
			result.Errors = append(result.Errors, *rowErr)
			continue
		}
		counts[outcome]++
	}

	for _, outcome := range []mergeOutcome{mergeCreated, mergeUpdated, mergeUnchanged} {
		metrics.ImportRowsTotal.WithLabelValues(KindAttributes, string(outcome)).Add(float64(counts[outcome]))
	}
	metrics.ImportRowsTotal.WithLabelValues(KindAttributes, "error").Add(float64(len(result.Errors)))

	i.logger.WithContext(ctx).WithFields(map[string]any{
		"rows":      len(sheet.Rows),
		"created":   counts[mergeCreated],
		"updated":   counts[mergeUpdated],
		"unchanged": counts[mergeUnchanged],
		"errors":    len(result.Errors),
	}).Info("Merged item attributes")

	i.emit(ctx, KindAttributes, map[string]int{
		"created":   counts[mergeCreated],
		"updated":   counts[mergeUpdated],
		"unchanged": counts[mergeUnchanged],
		"errors":    len(result.Errors),
	})

	result.Message = "ItemMaster Phase 2 attribute merge complete"
	result.Created = intPtr(counts[mergeCreated])
	result.Updated = intPtr(counts[mergeUpdated])
	result.Unchanged = intPtr(counts[mergeUnchanged])
	return result, nil
}

func (i *Importer) mergeRow(ctx context.Context, groups *groupCache, row Row, actor string) (mergeOutcome, *RowError, error) {
	rowError := func(format string, args ...any) (mergeOutcome, *RowError, error) {
		return "", &RowError{Row: row.Number, Error: fmt.Sprintf(format, args...)}, nil
	}

	rawSAP := row.Get("sap_item_id")
	if rawSAP == "" {
		return rowError("sap_item_id is required")
	}
	sapID, ok := normalizeSAPID(rawSAP)
	if !ok {
		return rowError("Invalid sap_item_id: %s", rawSAP)
	}

	item, err := i.items.GetBySAPID(ctx, sapID)
	if err != nil {
		return "", nil, err
	}
	if item == nil {
		return rowError("ItemMaster with sap_item_id %s not found", sapID)
	}

	name := row.Get("attribute_name")
	if name == "" {
		return rowError("attribute_name is required")
	}

	attr := models.AttributeValue{
		Name:  name,
		Value: row.Get("attribute_value"),
		Unit:  row.Get("uom", "unit_of_measure"),
	}

	def, err := i.defs.GetByGroupAndName(ctx, item.GroupCode, name)
	if err != nil {
		return "", nil, err
	}
	if def != nil && attr.Value != "" {
		group, err := groups.get(ctx, item.GroupCode)
		if err != nil {
			return "", nil, err
		}
		if group == nil {
			group = &models.Group{Code: item.GroupCode}
		}
		if violation := i.checker.CheckValue(*group, *def, attr); violation != nil {
			return rowError("%s", violation.Message)
		}
	}

	outcome := mergeUnchanged
	previous, found := item.Attributes.Get(name)
	switch {
	case !found || previous.Value == "":
		outcome = mergeCreated
	case previous.Value != attr.Value:
		outcome = mergeUpdated
	}

	if err := i.items.UpdateAttributes(ctx, item.ID, item.Attributes.Set(attr), actor); err != nil {
		return "", nil, err
	}
	return outcome, nil, nil
}

// normalizeSAPID renders a SAP id cell as an integer string, so "12345.0"
// from a spreadsheet matches the stored "12345".
func normalizeSAPID(raw string) (string, bool) {
	n, ok := intValue(raw)
	if !ok {
		return "", false
	}
	return strconv.FormatInt(n, 10), true
}
