// Package duplicates warns about catalog items whose attributes already exist in a group.
package duplicates

import (
	"context"
	"fmt"

	"github.com/Gobusters/ectolinq"
	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/fern/pkg/attributes"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/tracing"
	"github.com/google/uuid"
)

// ItemLookup returns the live items of a group that carry a non-empty attribute set.
type ItemLookup interface {
	ListWithAttributes(ctx context.Context, groupCode string) ([]models.Item, error)
}

type Options struct {
	// SkipIfEmpty skips detection when the proposed set has no meaningful value.
	SkipIfEmpty bool
	// ExcludeID leaves one item out of the comparison, the item being updated.
	ExcludeID uuid.UUID
}

func DefaultOptions() Options {
	return Options{SkipIfEmpty: true}
}

// Detector compares canonical attribute sets. It is advisory: nothing locks the
// group between detection and the insert that follows it.
type Detector struct {
	items  ItemLookup
	schema attributes.SchemaLookup
	logger ectologger.Logger
}

func NewDetector(items ItemLookup, schema attributes.SchemaLookup, logger ectologger.Logger) *Detector {
	return &Detector{
		items:  items,
		schema: schema,
		logger: logger,
	}
}

// FindDuplicates returns the items of groupCode whose canonical attribute set
// equals the canonical form of proposed.
func (d *Detector) FindDuplicates(ctx context.Context, groupCode string, proposed models.AttributeSet, opts Options) ([]models.Item, error) {
	ctx, span := tracing.StartSpan(ctx, "duplicates.Detector.FindDuplicates")
	defer span.End()

	if opts.SkipIfEmpty && proposed.AllEmpty() {
		d.logger.WithContext(ctx).WithFields(map[string]any{
			"mgrp_code": groupCode,
		}).Debug("Skipping duplicate detection for empty attribute set")
		return nil, nil
	}

	defs, err := d.schema.ListByGroup(ctx, groupCode)
	if err != nil {
		d.logger.WithContext(ctx).WithError(err).Error("failed to load attribute definitions")
		return nil, fmt.Errorf("failed to load attribute definitions for group %s: %w", groupCode, err)
	}
	schema := attributes.NewSchema(defs)

	candidates, err := d.items.ListWithAttributes(ctx, groupCode)
	if err != nil {
		d.logger.WithContext(ctx).WithError(err).Error("failed to load candidate items")
		return nil, fmt.Errorf("failed to load items for group %s: %w", groupCode, err)
	}

	return d.match(ctx, groupCode, proposed, schema, candidates, opts), nil
}

func (d *Detector) match(ctx context.Context, groupCode string, proposed models.AttributeSet, schema attributes.Schema, candidates []models.Item, opts Options) []models.Item {
	want := attributes.Canonicalize(proposed, schema)

	duplicates := ectolinq.Filter(candidates, func(item models.Item) bool {
		if item.ID == opts.ExcludeID || len(item.Attributes) == 0 {
			return false
		}
		return attributes.Equivalent(want, attributes.Canonicalize(item.Attributes, schema))
	})

	d.logger.WithContext(ctx).WithFields(map[string]any{
		"mgrp_code":  groupCode,
		"candidates": len(candidates),
		"duplicates": len(duplicates),
	}).Debug("Duplicate detection finished")

	return duplicates
}
