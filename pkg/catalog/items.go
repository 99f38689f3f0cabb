package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/Gobusters/ectolinq"
	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/fern/pkg/attributes"
	ctxmiddleware "github.com/Ramsey-B/fern/pkg/context"
	"github.com/Ramsey-B/fern/pkg/database"
	"github.com/Ramsey-B/fern/pkg/duplicates"
	"github.com/Ramsey-B/fern/pkg/metrics"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/tracing"
	"github.com/google/uuid"
)

type OutcomeStatus string

const (
	OutcomeCreated    OutcomeStatus = "created"
	OutcomeUpdated    OutcomeStatus = "updated"
	OutcomeDuplicates OutcomeStatus = "duplicates_found"
	OutcomeInvalid    OutcomeStatus = "invalid"
)

// Outcome of a create or update. Only a created or updated outcome carries Item.
type Outcome struct {
	Status     OutcomeStatus          `json:"status"`
	Message    string                 `json:"message,omitempty"`
	Item       *models.Item           `json:"item,omitempty"`
	Duplicates []models.ItemRef       `json:"duplicates,omitempty"`
	Violations []attributes.Violation `json:"violations,omitempty"`
}

type ItemService struct {
	items     ItemStore
	groups    GroupStore
	defs      DefinitionStore
	validator *attributes.Validator
	detector  *duplicates.Detector
	events    EventEmitter
	logger    ectologger.Logger
}

func NewItemService(
	items ItemStore,
	groups GroupStore,
	defs DefinitionStore,
	validator *attributes.Validator,
	detector *duplicates.Detector,
	events EventEmitter,
	logger ectologger.Logger,
) *ItemService {
	return &ItemService{
		items:     items,
		groups:    groups,
		defs:      defs,
		validator: validator,
		detector:  detector,
		events:    events,
		logger:    logger,
	}
}

// CreateItem validates the attributes against the group schema, warns about
// duplicates unless req.Force is set, then stores the item.
func (s *ItemService) CreateItem(ctx context.Context, req models.CreateItemRequest) (*Outcome, error) {
	ctx, span := tracing.StartSpan(ctx, "catalog.ItemService.CreateItem")
	defer span.End()

	group, err := s.group(ctx, req.GroupCode)
	if err != nil {
		return nil, err
	}
	if err := s.materialType(ctx, req.MatTypeCode); err != nil {
		return nil, err
	}

	if outcome, err := s.check(ctx, "create", *group, req.Attributes, uuid.Nil, req.Force); outcome != nil || err != nil {
		return outcome, err
	}

	actor := ctxmiddleware.GetUserID(ctx)
	item := &models.Item{
		SAPItemID:   req.SAPItemID,
		GroupCode:   group.Code,
		MatTypeCode: req.MatTypeCode,
		ShortName:   strings.TrimSpace(req.ShortName),
		ItemDesc:    req.ItemDesc,
		Notes:       req.Notes,
		SearchText:  req.SearchText,
		Attributes:  req.Attributes,
		IsFinal:     req.IsFinal,
		CreatedBy:   actor,
		UpdatedBy:   actor,
	}
	item.LongName = models.ComposeLongName(group.Code, group.LongName, item.ShortName)

	created, err := s.items.Create(ctx, item)
	if err != nil {
		metrics.ItemWritesTotal.WithLabelValues("create", "error").Inc()
		return nil, err
	}
	metrics.ItemWritesTotal.WithLabelValues("create", string(OutcomeCreated)).Inc()

	if err := s.events.EmitItemCreated(ctx, created); err != nil {
		s.logger.WithContext(ctx).WithError(err).Warn("item created but event was not published")
	}

	return &Outcome{Status: OutcomeCreated, Item: created}, nil
}

// UpdateItem applies a partial update. Validation and duplicate detection run
// again when the attributes or the group change, with the item itself excluded.
func (s *ItemService) UpdateItem(ctx context.Context, id uuid.UUID, req models.UpdateItemRequest) (*Outcome, error) {
	ctx, span := tracing.StartSpan(ctx, "catalog.ItemService.UpdateItem")
	defer span.End()

	item, err := s.items.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrItemNotFound
	}

	recheck := req.Attributes != nil
	if req.GroupCode != nil && *req.GroupCode != item.GroupCode {
		item.GroupCode = *req.GroupCode
		recheck = true
	}
	group, err := s.group(ctx, item.GroupCode)
	if err != nil {
		return nil, err
	}

	if req.MatTypeCode != nil && *req.MatTypeCode != item.MatTypeCode {
		if err := s.materialType(ctx, *req.MatTypeCode); err != nil {
			return nil, err
		}
		item.MatTypeCode = *req.MatTypeCode
	}
	if req.SAPItemID != nil {
		item.SAPItemID = req.SAPItemID
	}
	if req.ShortName != nil {
		item.ShortName = strings.TrimSpace(*req.ShortName)
	}
	if req.ItemDesc != nil {
		item.ItemDesc = *req.ItemDesc
	}
	if req.Notes != nil {
		item.Notes = *req.Notes
	}
	if req.SearchText != nil {
		item.SearchText = *req.SearchText
	}
	if req.IsFinal != nil {
		item.IsFinal = *req.IsFinal
	}
	if req.Attributes != nil {
		item.Attributes = *req.Attributes
	}

	if recheck {
		if outcome, err := s.check(ctx, "update", *group, item.Attributes, item.ID, req.Force); outcome != nil || err != nil {
			return outcome, err
		}
	}

	item.LongName = models.ComposeLongName(group.Code, group.LongName, item.ShortName)
	item.UpdatedBy = ctxmiddleware.GetUserID(ctx)

	updated, err := s.items.Update(ctx, item)
	if err != nil {
		metrics.ItemWritesTotal.WithLabelValues("update", "error").Inc()
		return nil, err
	}
	if updated == nil {
		return nil, ErrItemNotFound
	}
	metrics.ItemWritesTotal.WithLabelValues("update", string(OutcomeUpdated)).Inc()

	if err := s.events.EmitItemUpdated(ctx, updated); err != nil {
		s.logger.WithContext(ctx).WithError(err).Warn("item updated but event was not published")
	}

	return &Outcome{Status: OutcomeUpdated, Item: updated}, nil
}

// check runs validation then duplicate detection. It returns a non-nil outcome
// when the write must not proceed.
func (s *ItemService) check(ctx context.Context, operation string, group models.Group, attrs models.AttributeSet, exclude uuid.UUID, force bool) (*Outcome, error) {
	result, err := s.validator.Validate(ctx, group, attrs)
	if err != nil {
		return nil, err
	}
	if !result.Valid {
		for _, v := range result.Violations {
			metrics.AttributeViolationsTotal.WithLabelValues(string(v.Kind)).Inc()
		}
		metrics.ItemWritesTotal.WithLabelValues(operation, string(OutcomeInvalid)).Inc()
		return &Outcome{
			Status:     OutcomeInvalid,
			Message:    "attribute validation failed",
			Violations: result.Violations,
		}, nil
	}

	if force {
		metrics.DuplicateChecksTotal.WithLabelValues("forced").Inc()
		return nil, nil
	}

	refs, err := s.duplicates(ctx, group.Code, attrs, exclude)
	if err != nil {
		return nil, err
	}
	if len(refs) == 0 {
		return nil, nil
	}

	metrics.ItemWritesTotal.WithLabelValues(operation, string(OutcomeDuplicates)).Inc()
	s.logger.WithContext(ctx).WithFields(map[string]any{
		"mgrp_code":  group.Code,
		"duplicates": len(refs),
	}).Info("duplicate attribute set found")

	return &Outcome{
		Status:     OutcomeDuplicates,
		Message:    fmt.Sprintf("%d item(s) in group %s already have these attributes", len(refs), group.Code),
		Duplicates: refs,
	}, nil
}

func (s *ItemService) duplicates(ctx context.Context, groupCode string, attrs models.AttributeSet, exclude uuid.UUID) ([]models.ItemRef, error) {
	opts := duplicates.DefaultOptions()
	opts.ExcludeID = exclude

	if opts.SkipIfEmpty && attrs.AllEmpty() {
		metrics.DuplicateChecksTotal.WithLabelValues("skipped").Inc()
		return nil, nil
	}

	found, err := s.detector.FindDuplicates(ctx, groupCode, attrs, opts)
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		metrics.DuplicateChecksTotal.WithLabelValues("clear").Inc()
		return nil, nil
	}

	metrics.DuplicateChecksTotal.WithLabelValues("found").Inc()
	return ectolinq.Map(found, func(i models.Item) models.ItemRef { return i.Ref() }), nil
}

// DeleteItem soft deletes an item
func (s *ItemService) DeleteItem(ctx context.Context, id uuid.UUID) error {
	ctx, span := tracing.StartSpan(ctx, "catalog.ItemService.DeleteItem")
	defer span.End()

	item, err := s.items.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if item == nil {
		return ErrItemNotFound
	}

	deleted, err := s.items.Delete(ctx, id)
	if err != nil {
		metrics.ItemWritesTotal.WithLabelValues("delete", "error").Inc()
		return err
	}
	if !deleted {
		return ErrItemNotFound
	}
	metrics.ItemWritesTotal.WithLabelValues("delete", "deleted").Inc()

	if err := s.events.EmitItemDeleted(ctx, item); err != nil {
		s.logger.WithContext(ctx).WithError(err).Warn("item deleted but event was not published")
	}

	return nil
}

func (s *ItemService) GetItem(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	ctx, span := tracing.StartSpan(ctx, "catalog.ItemService.GetItem")
	defer span.End()

	item, err := s.items.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrItemNotFound
	}
	return item, nil
}

func (s *ItemService) ListItems(ctx context.Context, page, pageSize int) (*models.ItemListResponse, error) {
	ctx, span := tracing.StartSpan(ctx, "catalog.ItemService.ListItems")
	defer span.End()

	page, pageSize = database.ClampPage(page, pageSize)

	items, total, err := s.items.List(ctx, page, pageSize)
	if err != nil {
		return nil, err
	}

	return &models.ItemListResponse{
		Items:      items,
		TotalCount: total,
		Page:       page,
		PageSize:   pageSize,
	}, nil
}

// ItemDetails resolves key as a local item id first, then as a SAP id, and
// returns the item with its group, material type and attribute definitions.
func (s *ItemService) ItemDetails(ctx context.Context, key string) (*models.ItemDetails, error) {
	ctx, span := tracing.StartSpan(ctx, "catalog.ItemService.ItemDetails")
	defer span.End()

	var item *models.Item
	if id, err := uuid.Parse(key); err == nil {
		if item, err = s.items.GetByID(ctx, id); err != nil {
			return nil, err
		}
	}
	if item == nil {
		var err error
		if item, err = s.items.GetBySAPID(ctx, key); err != nil {
			return nil, err
		}
	}
	if item == nil {
		return nil, ErrItemNotFound
	}

	body := models.ItemDetailBody{Item: *item}

	group, err := s.groups.GetByCode(ctx, item.GroupCode)
	if err != nil {
		return nil, err
	}
	if group != nil {
		body.GroupShortName = group.ShortName
		body.GroupLongName = group.LongName
	}

	mt, err := s.groups.GetMaterialType(ctx, item.MatTypeCode)
	if err != nil {
		return nil, err
	}
	if mt != nil {
		body.MatTypeDesc = mt.Description
	}

	defs, err := s.defs.ListByGroup(ctx, item.GroupCode)
	if err != nil {
		return nil, err
	}

	return &models.ItemDetails{
		Item:       body,
		Attributes: ectolinq.Map(defs, func(d models.AttributeDefinition) models.AttributeDefinitionView { return d.View() }),
	}, nil
}

// ValidateAttributes checks a proposed attribute set without writing anything
func (s *ItemService) ValidateAttributes(ctx context.Context, groupCode string, attrs models.AttributeSet) (*attributes.Result, error) {
	ctx, span := tracing.StartSpan(ctx, "catalog.ItemService.ValidateAttributes")
	defer span.End()

	group, err := s.group(ctx, groupCode)
	if err != nil {
		return nil, err
	}

	result, err := s.validator.Validate(ctx, *group, attrs)
	if err != nil {
		return nil, err
	}
	for _, v := range result.Violations {
		metrics.AttributeViolationsTotal.WithLabelValues(string(v.Kind)).Inc()
	}
	return result, nil
}

// CheckDuplicates lists the items of a group whose attributes match attrs
func (s *ItemService) CheckDuplicates(ctx context.Context, groupCode string, attrs models.AttributeSet, exclude uuid.UUID) ([]models.ItemRef, error) {
	ctx, span := tracing.StartSpan(ctx, "catalog.ItemService.CheckDuplicates")
	defer span.End()

	group, err := s.group(ctx, groupCode)
	if err != nil {
		return nil, err
	}

	refs, err := s.duplicates(ctx, group.Code, attrs, exclude)
	if err != nil {
		return nil, err
	}
	if refs == nil {
		refs = []models.ItemRef{}
	}
	return refs, nil
}

func (s *ItemService) group(ctx context.Context, code string) (*models.Group, error) {
	group, err := s.groups.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, fmt.Errorf("%w: %s", ErrGroupNotFound, code)
	}
	return group, nil
}

func (s *ItemService) materialType(ctx context.Context, code string) error {
	mt, err := s.groups.GetMaterialType(ctx, code)
	if err != nil {
		return err
	}
	if mt == nil {
		return fmt.Errorf("%w: %s", ErrMaterialTypeNotFound, code)
	}
	return nil
}
