package routes

import (
	"context"

	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/tracing"
	"github.com/Ramsey-B/fern/pkg/utils"
	"github.com/labstack/echo/v4"
)

// CatalogStore maintains the catalog tree
type CatalogStore interface {
	UpsertSuperGroup(ctx context.Context, sg models.SuperGroup) (*models.SuperGroup, error)
	UpsertGroup(ctx context.Context, g models.Group) (*models.Group, error)
	ListMaterialTypes(ctx context.Context) ([]models.MaterialType, error)
	UpsertMaterialType(ctx context.Context, mt models.MaterialType) (*models.MaterialType, error)
}

// CatalogHandler handles maintenance of super groups, groups and material types
type CatalogHandler struct {
	store CatalogStore
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(store CatalogStore) *CatalogHandler {
	return &CatalogHandler{
		store: store,
	}
}

type UpsertSuperGroupRequest struct {
	Name string `json:"super_name" validate:"required"`
}

type UpsertGroupRequest struct {
	SuperGroupCode *string `json:"sgrp_code"`
	ShortName      string  `json:"mgrp_shortname" validate:"required"`
	LongName       string  `json:"mgrp_longname"`
	Notes          string  `json:"notes"`
	IsService      bool    `json:"is_service"`
	SearchType     string  `json:"search_type"`
	ClosedValues   bool    `json:"closed_attribute_values"`
}

type UpsertMaterialTypeRequest struct {
	Description string `json:"mat_type_desc" validate:"required"`
}

// RegisterRoutes registers the catalog maintenance routes
func (h *CatalogHandler) RegisterRoutes(g *echo.Group) {
	g.PUT("/super-groups/:code", h.UpsertSuperGroup)
	g.PUT("/groups/:code", h.UpsertGroup)
	g.GET("/material-types", h.ListMaterialTypes)
	g.PUT("/material-types/:code", h.UpsertMaterialType)
}

// UpsertSuperGroup handles PUT /super-groups/:code
func (h *CatalogHandler) UpsertSuperGroup(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "catalog_handler.UpsertSuperGroup")
	defer span.End()

	req, err := utils.BindRequest[UpsertSuperGroupRequest](c)
	if err != nil {
		return err
	}

	sg, err := h.store.UpsertSuperGroup(ctx, models.SuperGroup{Code: c.Param("code"), Name: req.Name})
	if err != nil {
		return MapError(err)
	}

	return SuccessResponse(c, sg)
}

// UpsertGroup handles PUT /groups/:code
func (h *CatalogHandler) UpsertGroup(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "catalog_handler.UpsertGroup")
	defer span.End()

	req, err := utils.BindRequest[UpsertGroupRequest](c)
	if err != nil {
		return err
	}

	group, err := h.store.UpsertGroup(ctx, models.Group{
		Code:           c.Param("code"),
		SuperGroupCode: req.SuperGroupCode,
		ShortName:      req.ShortName,
		LongName:       req.LongName,
		Notes:          req.Notes,
		IsService:      req.IsService,
		SearchType:     req.SearchType,
		ClosedValues:   req.ClosedValues,
	})
	if err != nil {
		return MapError(err)
	}

	return SuccessResponse(c, group)
}

func (h *CatalogHandler) ListMaterialTypes(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "catalog_handler.ListMaterialTypes")
	defer span.End()

	types, err := h.store.ListMaterialTypes(ctx)
	if err != nil {
		return MapError(err)
	}

	return SuccessResponse(c, types)
}

// UpsertMaterialType handles PUT /material-types/:code
func (h *CatalogHandler) UpsertMaterialType(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "catalog_handler.UpsertMaterialType")
	defer span.End()

	req, err := utils.BindRequest[UpsertMaterialTypeRequest](c)
	if err != nil {
		return err
	}

	mt, err := h.store.UpsertMaterialType(ctx, models.MaterialType{Code: c.Param("code"), Description: req.Description})
	if err != nil {
		return MapError(err)
	}

	return SuccessResponse(c, mt)
}
