package attributedef

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/fern/pkg/database"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/tracing"
	"github.com/google/uuid"
)

// AttributeDefinitionRepository defines the interface for attribute definition operations
type AttributeDefinitionRepository interface {
	ListByGroup(ctx context.Context, groupCode string) ([]models.AttributeDefinition, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.AttributeDefinition, error)
	GetByGroupAndName(ctx context.Context, groupCode, name string) (*models.AttributeDefinition, error)
	Upsert(ctx context.Context, defs []models.AttributeDefinition) ([]models.AttributeDefinition, error)
	InsertIgnore(ctx context.Context, defs []models.AttributeDefinition) (int, error)
	Update(ctx context.Context, id uuid.UUID, req models.UpdateAttributeRequest) (*models.AttributeDefinition, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

// Repository implements AttributeDefinitionRepository
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new attribute definition repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

const tableName = "matg_attributes"

var columns = []string{
	"id", "mgrp_code", "attribute_name", "possible_values", "uom", "print_priority",
	"validation", "created_at", "updated_at", "deleted_at",
}

// ListByGroup returns the live definitions of a group ordered by print priority, then name
func (r *Repository) ListByGroup(ctx context.Context, groupCode string) ([]models.AttributeDefinition, error) {
	ctx, span := tracing.StartSpan(ctx, "AttributeDefinitionRepository.ListByGroup")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select(columns...)
	sb.From(tableName)
	sb.Where(
		sb.Equal("mgrp_code", groupCode),
		sb.Live(""),
	)
	sb.OrderBy("print_priority ASC NULLS LAST", "attribute_name ASC")

	query, args := sb.Build()

	var defs []models.AttributeDefinition
	if err := r.db.Conn(ctx).SelectContext(ctx, &defs, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to list attribute definitions")
		return nil, fmt.Errorf("failed to list attribute definitions: %w", err)
	}

	return defs, nil
}

// GetByID gets a live definition by ID
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.AttributeDefinition, error) {
	ctx, span := tracing.StartSpan(ctx, "AttributeDefinitionRepository.GetByID")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select(columns...)
	sb.From(tableName)
	sb.Where(
		sb.Equal("id", id),
		sb.Live(""),
	)

	return r.get(ctx, sb)
}

// GetByGroupAndName gets a live definition by its natural key
func (r *Repository) GetByGroupAndName(ctx context.Context, groupCode, name string) (*models.AttributeDefinition, error) {
	ctx, span := tracing.StartSpan(ctx, "AttributeDefinitionRepository.GetByGroupAndName")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select(columns...)
	sb.From(tableName)
	sb.Where(
		sb.Equal("mgrp_code", groupCode),
		sb.Equal("attribute_name", name),
		sb.Live(""),
	)

	return r.get(ctx, sb)
}

func (r *Repository) get(ctx context.Context, sb *database.SelectBuilder) (*models.AttributeDefinition, error) {
	query, args := sb.Build()

	var def models.AttributeDefinition
	err := r.db.Conn(ctx).GetContext(ctx, &def, query, args...)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.WithContext(ctx).WithError(err).Error("failed to get attribute definition")
		return nil, fmt.Errorf("failed to get attribute definition: %w", err)
	}

	return &def, nil
}

// Upsert writes every definition in one transaction. A definition that already
// exists for the group and name, deleted or not, is overwritten and revived.
func (r *Repository) Upsert(ctx context.Context, defs []models.AttributeDefinition) ([]models.AttributeDefinition, error) {
	ctx, span := tracing.StartSpan(ctx, "AttributeDefinitionRepository.Upsert")
	defer span.End()

	ctx, tx, err := r.db.GetTx(ctx, nil)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	now := time.Now()
	saved := make([]models.AttributeDefinition, 0, len(defs))
	for _, def := range defs {
		ib := database.NewInsertBuilder()
		ib.InsertInto(tableName)
		ib.Cols("id", "mgrp_code", "attribute_name", "possible_values", "uom", "print_priority", "validation", "created_at", "updated_at")
		ib.Values(uuid.New(), def.GroupCode, def.Name, def.AllowedValues, def.Unit, def.PrintPriority, def.Validation.Normalized(), now, now)

		ub := ib.OnConflict("mgrp_code", "attribute_name")
		ub.Set(
			ub.Assign("possible_values", database.Excluded("possible_values")),
			ub.Assign("uom", database.Excluded("uom")),
			ub.Assign("print_priority", database.Excluded("print_priority")),
			ub.Assign("validation", database.Excluded("validation")),
			ub.Assign("updated_at", database.Excluded("updated_at")),
			ub.Assign("deleted_at", nil),
		)
		ib.Returning(columns...)

		query, args := ib.Build()

		var out models.AttributeDefinition
		if err := tx.GetContext(ctx, &out, query, args...); err != nil {
			r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
				"mgrp_code":      def.GroupCode,
				"attribute_name": def.Name,
			}).Error("failed to upsert attribute definition")
			return nil, fmt.Errorf("failed to upsert attribute definition %s: %w", def.Name, err)
		}
		saved = append(saved, out)
	}

	if err := tx.Commit(ctx); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to commit attribute definitions")
		return nil, fmt.Errorf("failed to commit attribute definitions: %w", err)
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"count": len(saved),
	}).Info("upserted attribute definitions")

	return saved, nil
}

// InsertIgnore inserts definitions and skips the ones whose group and name
// already exist. It returns how many rows were inserted.
func (r *Repository) InsertIgnore(ctx context.Context, defs []models.AttributeDefinition) (int, error) {
	ctx, span := tracing.StartSpan(ctx, "AttributeDefinitionRepository.InsertIgnore")
	defer span.End()

	if len(defs) == 0 {
		return 0, nil
	}

	now := time.Now()
	ib := database.NewInsertBuilder()
	ib.InsertInto(tableName)
	ib.Cols("id", "mgrp_code", "attribute_name", "possible_values", "uom", "print_priority", "validation", "created_at", "updated_at")
	for _, def := range defs {
		ib.Values(uuid.New(), def.GroupCode, def.Name, def.AllowedValues, def.Unit, def.PrintPriority, def.Validation.Normalized(), now, now)
	}
	ib.OnConflictDoNothing()

	query, args := ib.Build()

	res, err := r.db.Conn(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to insert attribute definitions")
		return 0, fmt.Errorf("failed to insert attribute definitions: %w", err)
	}

	inserted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read inserted count: %w", err)
	}

	return int(inserted), nil
}

// Update applies the fields present in req to a live definition
func (r *Repository) Update(ctx context.Context, id uuid.UUID, req models.UpdateAttributeRequest) (*models.AttributeDefinition, error) {
	ctx, span := tracing.StartSpan(ctx, "AttributeDefinitionRepository.Update")
	defer span.End()

	ub := database.NewUpdateBuilder()
	ub.Update(tableName)

	assignments := []string{ub.Assign("updated_at", time.Now())}
	if req.PossibleValues != nil {
		values := *req.PossibleValues
		if values == nil {
			values = []string{}
		}
		assignments = append(assignments, ub.Assign("possible_values", database.NewJSONB(values)))
	}
	if req.Unit != nil {
		assignments = append(assignments, ub.Assign("uom", *req.Unit))
	}
	if req.PrintPriority != nil {
		assignments = append(assignments, ub.Assign("print_priority", *req.PrintPriority))
	}
	if req.Validation != nil {
		assignments = append(assignments, ub.Assign("validation", req.Validation.Normalized()))
	}

	ub.Set(assignments...)
	ub.Where(
		ub.Equal("id", id),
		ub.IsNull("deleted_at"),
	)

	query, args := ub.Build()

	res, err := r.db.Conn(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to update attribute definition")
		return nil, fmt.Errorf("failed to update attribute definition: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, nil
	}

	return r.GetByID(ctx, id)
}

// Delete soft deletes a definition. It reports whether a live row was deleted.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	ctx, span := tracing.StartSpan(ctx, "AttributeDefinitionRepository.Delete")
	defer span.End()

	ub := database.NewUpdateBuilder()
	ub.Update(tableName)
	ub.Set(ub.Assign("deleted_at", time.Now()))
	ub.Where(
		ub.Equal("id", id),
		ub.IsNull("deleted_at"),
	)

	query, args := ub.Build()

	res, err := r.db.Conn(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to delete attribute definition")
		return false, fmt.Errorf("failed to delete attribute definition: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read deleted count: %w", err)
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"id": id,
	}).Info("deleted attribute definition")

	return n > 0, nil
}
