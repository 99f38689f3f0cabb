package importer

import (
	"context"
	"fmt"

	ctxmiddleware "github.com/Ramsey-B/fern/pkg/context"
	"github.com/Ramsey-B/fern/pkg/metrics"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

// ImportItems creates base items (no attributes) from an upload. A row whose SAP
// id is already in the catalog is skipped.
func (i *Importer) ImportItems(ctx context.Context, filename string, data []byte) (*Result, error) {
	ctx, span := tracing.StartSpan(ctx, "importer.Importer.ImportItems")
	defer span.End()

	sheet, err := ReadFile(filename, data, "")
	if err != nil {
		return nil, err
	}

	actor := ctxmiddleware.GetUserID(ctx)
	groups := newGroupCache(i.groups)
	types := map[string]*models.MaterialType{}
	result := &Result{Errors: []RowError{}}
	inserted, skipped := 0, 0

	for _, row := range sheet.Rows {
		item, rowErr, err := i.itemRow(ctx, groups, types, row)
		if err != nil {
			return nil, err
		}
		if rowErr != nil {
			result.Errors = append(result.Errors, *rowErr)
			continue
		}

		if item.SAPItemID != nil {
			existing, err := i.items.GetBySAPID(ctx, *item.SAPItemID)
			if err != nil {
				return nil, err
			}
			if existing != nil {
				skipped++
				continue
			}
		}

		item.CreatedBy = actor
		item.UpdatedBy = actor
		created, err := i.items.Create(ctx, item)
		if err != nil {
			result.Errors = append(result.Errors, RowError{Row: row.Number, Error: err.Error()})
			continue
		}
		inserted++

		if err := i.events.EmitItemCreated(ctx, created); err != nil {
			i.logger.WithContext(ctx).WithError(err).Warn("Failed to emit item created event")
		}
	}

	metrics.ImportRowsTotal.WithLabelValues(KindItems, "inserted").Add(float64(inserted))
	metrics.ImportRowsTotal.WithLabelValues(KindItems, "skipped").Add(float64(skipped))
	metrics.ImportRowsTotal.WithLabelValues(KindItems, "error").Add(float64(len(result.Errors)))

	i.logger.WithContext(ctx).WithFields(map[string]any{
		"rows":     len(sheet.Rows),
		"inserted": inserted,
		"skipped":  skipped,
		"errors":   len(result.Errors),
	}).Info("Imported base items")

	result.Message = "ItemMaster Phase 1 upload complete"
	result.Inserted = intPtr(inserted)
	return result, nil
}

func (i *Importer) itemRow(ctx context.Context, groups *groupCache, types map[string]*models.MaterialType, row Row) (*models.Item, *RowError, error) {
	rowError := func(format string, args ...any) (*models.Item, *RowError, error) {
		return nil, &RowError{Row: row.Number, Error: fmt.Sprintf(format, args...)}, nil
	}

	typeCode := row.Get("mat_type_code")
	if typeCode == "" {
		return rowError("mat_type_code is required")
	}
	mt, ok := types[typeCode]
	if !ok {
		var err error
		if mt, err = i.groups.GetMaterialType(ctx, typeCode); err != nil {
			return nil, nil, err
		}
		types[typeCode] = mt
	}
	if mt == nil {
		return rowError("MaterialType '%s' not found", typeCode)
	}

	groupCode := row.Get("mgrp_code")
	if groupCode == "" {
		return rowError("mgrp_code is required")
	}
	group, err := groups.get(ctx, groupCode)
	if err != nil {
		return nil, nil, err
	}
	if group == nil {
		return rowError("MatGroup '%s' not found", groupCode)
	}

	shortName := row.Get("short_name")
	if shortName == "" {
		return rowError("short_name is required")
	}

	item := &models.Item{
		GroupCode:   group.Code,
		MatTypeCode: mt.Code,
		ShortName:   shortName,
		LongName:    row.Get("long_name"),
		ItemDesc:    row.Get("item_desc", "sap_name"),
		Notes:       row.Get("notes"),
		SearchText:  row.Get("search_text"),
		Attributes:  models.AttributeSet{},
	}
	if item.LongName == "" {
		item.LongName = models.ComposeLongName(group.Code, group.LongName, shortName)
	}
	// an unparseable SAP id leaves the item without one
	if sapID, ok := normalizeSAPID(row.Get("sap_item_id")); ok {
		item.SAPItemID = &sapID
	}

	return item, nil, nil
}
