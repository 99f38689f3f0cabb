package group

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
)

// GroupRepository defines the interface for the catalog tree: super groups,
// material groups and material types
type GroupRepository interface {
	ListSuperGroups(ctx context.Context) ([]models.SuperGroup, error)
	UpsertSuperGroup(ctx context.Context, sg models.SuperGroup) (*models.SuperGroup, error)
	ListBySuperGroup(ctx context.Context, superGroupCode string) ([]models.Group, error)
	GetByCode(ctx context.Context, code string) (*models.Group, error)
	GetByCodes(ctx context.Context, codes []string) ([]models.Group, error)
	UpsertGroup(ctx context.Context, g models.Group) (*models.Group, error)
	GetMaterialType(ctx context.Context, code string) (*models.MaterialType, error)
	ListMaterialTypes(ctx context.Context) ([]models.MaterialType, error)
	ListMaterialTypesByGroup(ctx context.Context, groupCode string) ([]models.MaterialType, error)
	UpsertMaterialType(ctx context.Context, mt models.MaterialType) (*models.MaterialType, error)
}

// Repository implements GroupRepository
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new group repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

const (
	superGroupTable   = "super_groups"
	groupTable        = "mat_groups"
	materialTypeTable = "material_types"
	itemTable         = "item_masters"
)

var (
	superGroupColumns = []string{"sgrp_code", "sgrp_name", "created_at", "updated_at", "deleted_at"}
	groupColumns      = []string{
		"mgrp_code", "sgrp_code", "mgrp_shortname", "mgrp_longname", "notes", "is_service",
		"search_type", "closed_attribute_values", "created_at", "updated_at", "deleted_at",
	}
	materialTypeColumns = []string{"mat_type_code", "mat_type_desc", "created_at", "updated_at", "deleted_at"}
)

// ListSuperGroups returns every live super group ordered by code
func (r *Repository) ListSuperGroups(ctx context.Context) ([]models.SuperGroup, error) {
	ctx, span := tracing.StartSpan(ctx, "GroupRepository.ListSuperGroups")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select(superGroupColumns...)
	sb.From(superGroupTable)
	sb.Where(sb.Live(""))
	sb.OrderBy("sgrp_code")

	query, args := sb.Build()

	groups := []models.SuperGroup{}
	if err := r.db.Conn(ctx).SelectContext(ctx, &groups, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to list super groups")
		return nil, fmt.Errorf("failed to list super groups: %w", err)
	}

	return groups, nil
}

// UpsertSuperGroup creates or renames a super group, reviving it when deleted
func (r *Repository) UpsertSuperGroup(ctx context.Context, sg models.SuperGroup) (*models.SuperGroup, error) {
	ctx, span := tracing.StartSpan(ctx, "GroupRepository.UpsertSuperGroup")
	defer span.End()

	now := time.Now()
	ib := database.NewInsertBuilder()
	ib.InsertInto(superGroupTable)
	ib.Cols("sgrp_code", "sgrp_name", "created_at", "updated_at")
	ib.Values(sg.Code, sg.Name, now, now)

	ub := ib.OnConflict("sgrp_code")
	ub.Set(
		ub.Assign("sgrp_name", database.Excluded("sgrp_name")),
		ub.Assign("updated_at", database.Excluded("updated_at")),
		ub.Assign("deleted_at", nil),
	)
	ib.Returning(superGroupColumns...)

	query, args := ib.Build()

	var out models.SuperGroup
	if err := r.db.Conn(ctx).GetContext(ctx, &out, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to upsert super group")
		return nil, fmt.Errorf("failed to upsert super group: %w", err)
	}

	return &out, nil
}

// ListBySuperGroup returns the live groups of a super group ordered by code
func (r *Repository) ListBySuperGroup(ctx context.Context, superGroupCode string) ([]models.Group, error) {
	ctx, span := tracing.StartSpan(ctx, "GroupRepository.ListBySuperGroup")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select(groupColumns...)
	sb.From(groupTable)
	sb.Where(
		sb.Equal("sgrp_code", superGroupCode),
		sb.Live(""),
	)
	sb.OrderBy("mgrp_code")

	return r.listGroups(ctx, sb)
}

// GetByCode gets a live group by code
func (r *Repository) GetByCode(ctx context.Context, code string) (*models.Group, error) {
	ctx, span := tracing.StartSpan(ctx, "GroupRepository.GetByCode")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select(groupColumns...)
	sb.From(groupTable)
	sb.Where(
		sb.Equal("mgrp_code", code),
		sb.Live(""),
	)

	query, args := sb.Build()

	var g models.Group
	err := r.db.Conn(ctx).GetContext(ctx, &g, query, args...)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.WithContext(ctx).WithError(err).Error("failed to get group")
		return nil, fmt.Errorf("failed to get group: %w", err)
	}

	return &g, nil
}

// GetByCodes returns the live groups with the given codes in the order of codes
func (r *Repository) GetByCodes(ctx context.Context, codes []string) ([]models.Group, error) {
	ctx, span := tracing.StartSpan(ctx, "GroupRepository.GetByCodes")
	defer span.End()

	if len(codes) == 0 {
		return []models.Group{}, nil
	}

	sb := database.NewSelectBuilder()
	sb.Select(groupColumns...)
	sb.From(groupTable)
	sb.Where(
		sb.In("mgrp_code", ectolinq.Map(codes, func(c string) any { return c })...),
		sb.Live(""),
	)

	groups, err := r.listGroups(ctx, sb)
	if err != nil {
		return nil, err
	}

	byCode := make(map[string]models.Group, len(groups))
	for _, g := range groups {
		byCode[g.Code] = g
	}

	ordered := make([]models.Group, 0, len(groups))
	for _, code := range codes {
		if g, ok := byCode[code]; ok {
			ordered = append(ordered, g)
		}
	}
	return ordered, nil
}

// UpsertGroup creates or overwrites a group, reviving it when deleted
func (r *Repository) UpsertGroup(ctx context.Context, g models.Group) (*models.Group, error) {
	ctx, span := tracing.StartSpan(ctx, "GroupRepository.UpsertGroup")
	defer span.End()

	now := time.Now()
	ib := database.NewInsertBuilder()
	ib.InsertInto(groupTable)
	ib.Cols("mgrp_code", "sgrp_code", "mgrp_shortname", "mgrp_longname", "notes", "is_service",
		"search_type", "closed_attribute_values", "created_at", "updated_at")
	ib.Values(g.Code, g.SuperGroupCode, g.ShortName, g.LongName, g.Notes, g.IsService,
		g.SearchType, g.ClosedValues, now, now)

	ub := ib.OnConflict("mgrp_code")
	ub.Set(
		ub.Assign("sgrp_code", database.Excluded("sgrp_code")),
		ub.Assign("mgrp_shortname", database.Excluded("mgrp_shortname")),
		ub.Assign("mgrp_longname", database.Excluded("mgrp_longname")),
		ub.Assign("notes", database.Excluded("notes")),
		ub.Assign("is_service", database.Excluded("is_service")),
		ub.Assign("search_type", database.Excluded("search_type")),
		ub.Assign("closed_attribute_values", database.Excluded("closed_attribute_values")),
		ub.Assign("updated_at", database.Excluded("updated_at")),
		ub.Assign("deleted_at", nil),
	)
	ib.Returning(groupColumns...)

	query, args := ib.Build()

	var out models.Group
	if err := r.db.Conn(ctx).GetContext(ctx, &out, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to upsert group")
		return nil, fmt.Errorf("failed to upsert group: %w", err)
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"mgrp_code": out.Code,
	}).Info("upserted group")

	return &out, nil
}

func (r *Repository) listGroups(ctx context.Context, sb *database.SelectBuilder) ([]models.Group, error) {
	query, args := sb.Build()

	groups := []models.Group{}
	if err := r.db.Conn(ctx).SelectContext(ctx, &groups, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to list groups")
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}

	return groups, nil
}

// GetMaterialType gets a live material type by code
func (r *Repository) GetMaterialType(ctx context.Context, code string) (*models.MaterialType, error) {
	ctx, span := tracing.StartSpan(ctx, "GroupRepository.GetMaterialType")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select(materialTypeColumns...)
	sb.From(materialTypeTable)
	sb.Where(
		sb.Equal("mat_type_code", code),
		sb.Live(""),
	)

	query, args := sb.Build()

	var mt models.MaterialType
	err := r.db.Conn(ctx).GetContext(ctx, &mt, query, args...)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.WithContext(ctx).WithError(err).Error("failed to get material type")
		return nil, fmt.Errorf("failed to get material type: %w", err)
	}

	return &mt, nil
}

// ListMaterialTypes returns every live material type ordered by code
func (r *Repository) ListMaterialTypes(ctx context.Context) ([]models.MaterialType, error) {
	ctx, span := tracing.StartSpan(ctx, "GroupRepository.ListMaterialTypes")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select(materialTypeColumns...)
	sb.From(materialTypeTable)
	sb.Where(sb.Live(""))
	sb.OrderBy("mat_type_code")

	return r.listMaterialTypes(ctx, sb)
}

// ListMaterialTypesByGroup returns the material types that have at least one
// live item in the group
func (r *Repository) ListMaterialTypesByGroup(ctx context.Context, groupCode string) ([]models.MaterialType, error) {
	ctx, span := tracing.StartSpan(ctx, "GroupRepository.ListMaterialTypesByGroup")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Distinct().Select(ectolinq.Map(materialTypeColumns, func(c string) string { return "mt." + c })...)
	sb.From(sb.As(materialTypeTable, "mt"))
	sb.Join(sb.As(itemTable, "i"), "i.mat_type_code = mt.mat_type_code")
	sb.Where(
		sb.Equal("i.mgrp_code", groupCode),
		sb.Live("i"),
		sb.Live("mt"),
	)
	sb.OrderBy("mt.mat_type_code")

	return r.listMaterialTypes(ctx, sb)
}

// UpsertMaterialType creates or renames a material type, reviving it when deleted
func (r *Repository) UpsertMaterialType(ctx context.Context, mt models.MaterialType) (*models.MaterialType, error) {
	ctx, span := tracing.StartSpan(ctx, "GroupRepository.UpsertMaterialType")
	defer span.End()

	now := time.Now()
	ib := database.NewInsertBuilder()
	ib.InsertInto(materialTypeTable)
	ib.Cols("mat_type_code", "mat_type_desc", "created_at", "updated_at")
	ib.Values(mt.Code, mt.Description, now, now)

	ub := ib.OnConflict("mat_type_code")
	ub.Set(
		ub.Assign("mat_type_desc", database.Excluded("mat_type_desc")),
		ub.Assign("updated_at", database.Excluded("updated_at")),
		ub.Assign("deleted_at", nil),
	)
	ib.Returning(materialTypeColumns...)

	query, args := ib.Build()

	var out models.MaterialType
	if err := r.db.Conn(ctx).GetContext(ctx, &out, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to upsert material type")
		return nil, fmt.Errorf("failed to upsert material type: %w", err)
	}

	return &out, nil
}

func (r *Repository) listMaterialTypes(ctx context.Context, sb *database.SelectBuilder) ([]models.MaterialType, error) {
	query, args := sb.Build()

	types := []models.MaterialType{}
	if err := r.db.Conn(ctx).SelectContext(ctx, &types, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to list material types")
		return nil, fmt.Errorf("failed to list material types: %w", err)
	}

	return types, nil
}
