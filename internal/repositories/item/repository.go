package item

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Gobusters/ectolinq"
	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/fern/pkg/database"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/tracing"
	"github.com/google/uuid"
)

// ItemRepository defines the interface for item master operations
type ItemRepository interface {
	Create(ctx context.Context, item *models.Item) (*models.Item, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Item, error)
	GetBySAPID(ctx context.Context, sapID string) (*models.Item, error)
	GetByIDs(ctx context.Context, ids []string) ([]models.Item, error)
	Update(ctx context.Context, item *models.Item) (*models.Item, error)
	UpdateAttributes(ctx context.Context, id uuid.UUID, attrs models.AttributeSet, updatedBy string) error
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	List(ctx context.Context, page, pageSize int) ([]models.Item, int, error)
	ListWithAttributes(ctx context.Context, groupCode string) ([]models.Item, error)
	ListByGroup(ctx context.Context, groupCode string) ([]models.Item, error)
	ListByGroupAndType(ctx context.Context, groupCode, matTypeCode string) ([]models.Item, error)
	ListByMaterialType(ctx context.Context, matTypeCode, groupCode string) ([]models.Item, error)
}

// Repository implements ItemRepository
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new item repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

const tableName = "item_masters"

var columns = []string{
	"local_item_id", "sap_item_id", "mgrp_code", "mat_type_code", "short_name", "long_name",
	"item_desc", "notes", "search_text", "attributes", "is_final", "created_by", "updated_by",
	"created_at", "updated_at", "deleted_at",
}

// Create inserts a new item. A zero ID is replaced by a new one.
func (r *Repository) Create(ctx context.Context, item *models.Item) (*models.Item, error) {
	ctx, span := tracing.StartSpan(ctx, "ItemRepository.Create")
	defer span.End()

	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	now := time.Now()

	ib := database.NewInsertBuilder()
	ib.InsertInto(tableName)
	ib.Cols("local_item_id", "sap_item_id", "mgrp_code", "mat_type_code", "short_name", "long_name",
		"item_desc", "notes", "search_text", "attributes", "is_final", "created_by", "updated_by",
		"created_at", "updated_at")
	ib.Values(item.ID, item.SAPItemID, item.GroupCode, item.MatTypeCode, item.ShortName, item.LongName,
		item.ItemDesc, item.Notes, item.SearchText, attributesValue(item.Attributes), item.IsFinal, item.CreatedBy, item.UpdatedBy,
		now, now)
	ib.Returning(columns...)

	query, args := ib.Build()

	var created models.Item
	if err := r.db.Conn(ctx).GetContext(ctx, &created, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to create item")
		return nil, fmt.Errorf("failed to create item: %w", err)
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"local_item_id": created.ID,
		"mgrp_code":     created.GroupCode,
	}).Info("created item")

	return &created, nil
}

// GetByID gets a live item by its local ID
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	ctx, span := tracing.StartSpan(ctx, "ItemRepository.GetByID")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select(columns...)
	sb.From(tableName)
	sb.Where(
		sb.Equal("local_item_id", id),
		sb.Live(""),
	)

	return r.get(ctx, sb)
}

// GetBySAPID gets a live item by its SAP item ID
func (r *Repository) GetBySAPID(ctx context.Context, sapID string) (*models.Item, error) {
	ctx, span := tracing.StartSpan(ctx, "ItemRepository.GetBySAPID")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select(columns...)
	sb.From(tableName)
	sb.Where(
		sb.Equal("sap_item_id", sapID),
		sb.Live(""),
	)
	sb.OrderBy("created_at").Limit(1)

	return r.get(ctx, sb)
}

func (r *Repository) get(ctx context.Context, sb *database.SelectBuilder) (*models.Item, error) {
	query, args := sb.Build()

	var item models.Item
	err := r.db.Conn(ctx).GetContext(ctx, &item, query, args...)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.WithContext(ctx).WithError(err).Error("failed to get item")
		return nil, fmt.Errorf("failed to get item: %w", err)
	}

	return &item, nil
}

// GetByIDs returns the live items with the given IDs in the order of ids.
// Unknown IDs are skipped.
func (r *Repository) GetByIDs(ctx context.Context, ids []string) ([]models.Item, error) {
	ctx, span := tracing.StartSpan(ctx, "ItemRepository.GetByIDs")
	defer span.End()

	if len(ids) == 0 {
		return []models.Item{}, nil
	}

	sb := database.NewSelectBuilder()
	sb.Select(columns...)
	sb.From(tableName)
	sb.Where(
		sb.In("local_item_id::text", ectolinq.Map(ids, func(id string) any { return id })...),
		sb.Live(""),
	)

	items, err := r.list(ctx, sb)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]models.Item, len(items))
	for _, it := range items {
		byID[it.ID.String()] = it
	}

	ordered := make([]models.Item, 0, len(items))
	for _, id := range ids {
		if it, ok := byID[id]; ok {
			ordered = append(ordered, it)
		}
	}
	return ordered, nil
}

// Update overwrites the mutable fields of a live item and returns the stored row
func (r *Repository) Update(ctx context.Context, item *models.Item) (*models.Item, error) {
	ctx, span := tracing.StartSpan(ctx, "ItemRepository.Update")
	defer span.End()

	ub := database.NewUpdateBuilder()
	ub.Update(tableName)
	ub.Set(
		ub.Assign("sap_item_id", item.SAPItemID),
		ub.Assign("mgrp_code", item.GroupCode),
		ub.Assign("mat_type_code", item.MatTypeCode),
		ub.Assign("short_name", item.ShortName),
		ub.Assign("long_name", item.LongName),
		ub.Assign("item_desc", item.ItemDesc),
		ub.Assign("notes", item.Notes),
		ub.Assign("search_text", item.SearchText),
		ub.Assign("attributes", attributesValue(item.Attributes)),
		ub.Assign("is_final", item.IsFinal),
		ub.Assign("updated_by", item.UpdatedBy),
		ub.Assign("updated_at", time.Now()),
	)
	ub.Where(
		ub.Equal("local_item_id", item.ID),
		ub.IsNull("deleted_at"),
	)

	query, args := ub.Build()

	res, err := r.db.Conn(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to update item")
		return nil, fmt.Errorf("failed to update item: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, nil
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"local_item_id": item.ID,
	}).Info("updated item")

	return r.GetByID(ctx, item.ID)
}

// UpdateAttributes replaces only the attribute data of an item
func (r *Repository) UpdateAttributes(ctx context.Context, id uuid.UUID, attrs models.AttributeSet, updatedBy string) error {
	ctx, span := tracing.StartSpan(ctx, "ItemRepository.UpdateAttributes")
	defer span.End()

	ub := database.NewUpdateBuilder()
	ub.Update(tableName)
	ub.Set(
		ub.Assign("attributes", attributesValue(attrs)),
		ub.Assign("updated_by", updatedBy),
		ub.Assign("updated_at", time.Now()),
	)
	ub.Where(
		ub.Equal("local_item_id", id),
		ub.IsNull("deleted_at"),
	)

	query, args := ub.Build()

	if _, err := r.db.Conn(ctx).ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to update item attributes")
		return fmt.Errorf("failed to update item attributes: %w", err)
	}

	return nil
}

// Delete soft deletes an item. It reports whether a live row was deleted.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	ctx, span := tracing.StartSpan(ctx, "ItemRepository.Delete")
	defer span.End()

	ub := database.NewUpdateBuilder()
	ub.Update(tableName)
	ub.Set(ub.Assign("deleted_at", time.Now()))
	ub.Where(
		ub.Equal("local_item_id", id),
		ub.IsNull("deleted_at"),
	)

	query, args := ub.Build()

	res, err := r.db.Conn(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to delete item")
		return false, fmt.Errorf("failed to delete item: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read deleted count: %w", err)
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"local_item_id": id,
	}).Info("deleted item")

	return n > 0, nil
}

// List lists live items with pagination
func (r *Repository) List(ctx context.Context, page, pageSize int) ([]models.Item, int, error) {
	ctx, span := tracing.StartSpan(ctx, "ItemRepository.List")
	defer span.End()

	countSb := database.NewSelectBuilder()
	countSb.Select("COUNT(*)")
	countSb.From(tableName)
	countSb.Where(countSb.Live(""))

	countQuery, countArgs := countSb.Build()

	var totalCount int
	if err := r.db.Conn(ctx).GetContext(ctx, &totalCount, countQuery, countArgs...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to count items")
		return nil, 0, fmt.Errorf("failed to count items: %w", err)
	}

	sb := database.NewSelectBuilder()
	sb.Select(columns...)
	sb.From(tableName)
	sb.Where(sb.Live(""))
	sb.OrderBy("created_at DESC", "local_item_id")
	sb.Paginate(page, pageSize)

	items, err := r.list(ctx, sb)
	if err != nil {
		return nil, 0, err
	}

	return items, totalCount, nil
}

// ListWithAttributes returns the live items of a group that carry attribute data
func (r *Repository) ListWithAttributes(ctx context.Context, groupCode string) ([]models.Item, error) {
	ctx, span := tracing.StartSpan(ctx, "ItemRepository.ListWithAttributes")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select(columns...)
	sb.From(tableName)
	sb.Where(
		sb.Equal("mgrp_code", groupCode),
		sb.Live(""),
		sb.IsNotNull("attributes"),
		"attributes <> '{}'::jsonb",
	)
	sb.OrderBy("created_at", "local_item_id")

	return r.list(ctx, sb)
}

// ListByGroup returns every live item of a group
func (r *Repository) ListByGroup(ctx context.Context, groupCode string) ([]models.Item, error) {
	ctx, span := tracing.StartSpan(ctx, "ItemRepository.ListByGroup")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select(columns...)
	sb.From(tableName)
	sb.Where(
		sb.Equal("mgrp_code", groupCode),
		sb.Live(""),
	)
	sb.OrderBy("item_desc", "local_item_id")

	return r.list(ctx, sb)
}

// ListByGroupAndType returns the live items of one material type within a group
func (r *Repository) ListByGroupAndType(ctx context.Context, groupCode, matTypeCode string) ([]models.Item, error) {
	ctx, span := tracing.StartSpan(ctx, "ItemRepository.ListByGroupAndType")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select(columns...)
	sb.From(tableName)
	sb.Where(
		sb.Equal("mgrp_code", groupCode),
		sb.Equal("mat_type_code", matTypeCode),
		sb.Live(""),
	)
	sb.OrderBy("item_desc", "local_item_id")

	return r.list(ctx, sb)
}

// ListByMaterialType returns the live items of a material type, restricted to
// one group when groupCode is not empty
func (r *Repository) ListByMaterialType(ctx context.Context, matTypeCode, groupCode string) ([]models.Item, error) {
	ctx, span := tracing.StartSpan(ctx, "ItemRepository.ListByMaterialType")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select(columns...)
	sb.From(tableName)
	sb.Where(
		sb.Equal("mat_type_code", matTypeCode),
		sb.Live(""),
	)
	if groupCode != "" {
		sb.Where(sb.Equal("mgrp_code", groupCode))
	}
	sb.OrderBy("item_desc", "local_item_id")

	return r.list(ctx, sb)
}

func (r *Repository) list(ctx context.Context, sb *database.SelectBuilder) ([]models.Item, error) {
	query, args := sb.Build()

	items := []models.Item{}
	if err := r.db.Conn(ctx).SelectContext(ctx, &items, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to list items")
		return nil, fmt.Errorf("failed to list items: %w", err)
	}

	return items, nil
}

// attributesValue stores an empty set as {} rather than NULL.
func attributesValue(attrs models.AttributeSet) models.AttributeSet {
	if attrs == nil {
		return models.AttributeSet{}
	}
	return attrs
}
