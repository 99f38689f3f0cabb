package routes

import (
	"context"

	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/tracing"
	"github.com/Ramsey-B/fern/pkg/utils"
	"github.com/labstack/echo/v4"
)

// Searcher is the catalog search and drill-down surface
type Searcher interface {
	SearchGroups(ctx context.Context, query string) ([]models.GroupSearchResult, error)
	SearchItemsInGroup(ctx context.Context, groupCode, query string) ([]models.ItemSearchResult, error)
	SearchItemsInGroupAndType(ctx context.Context, groupCode, matTypeCode, query string) ([]models.ItemSearchResult, error)
	ListSuperGroups(ctx context.Context) ([]models.SuperGroup, error)
	ListGroups(ctx context.Context, superGroupCode string) ([]models.GroupSummary, error)
	ListMaterialTypes(ctx context.Context, groupCode string) ([]models.MaterialType, error)
	ListItemsByMaterialType(ctx context.Context, matTypeCode, groupCode string) ([]models.ItemSAPSummary, error)
	LookupGroup(ctx context.Context, groupCode string) (*models.GroupLookup, error)
	SAPIDsByGroup(ctx context.Context, groupCode string) ([]models.ItemSAPSummary, error)
}

// SearchHandler handles catalog search and browsing requests
type SearchHandler struct {
	search Searcher
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(search Searcher) *SearchHandler {
	return &SearchHandler{
		search: search,
	}
}

// SearchRequest is the request body of a group search
type SearchRequest struct {
	Query string `json:"query" validate:"required"`
}

// RegisterRoutes registers the search and drill-down routes
func (h *SearchHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/search/groups", h.SearchGroups)

	g.GET("/super-groups", h.ListSuperGroups)
	g.GET("/super-groups/:code/groups", h.ListGroups)

	g.GET("/groups/:code", h.LookupGroup)
	g.GET("/groups/:code/types", h.ListMaterialTypes)
	g.GET("/groups/:code/items", h.SearchItemsInGroup)
	g.GET("/groups/:code/types/:type/items", h.SearchItemsInGroupAndType)
	g.GET("/groups/:code/sap-ids", h.SAPIDsByGroup)

	g.GET("/material-types/:code/items", h.ListItemsByMaterialType)
}

// SearchGroups handles POST /search/groups
func (h *SearchHandler) SearchGroups(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "search_handler.SearchGroups")
	defer span.End()

	req, err := utils.BindRequest[SearchRequest](c)
	if err != nil {
		return err
	}

	results, err := h.search.SearchGroups(ctx, req.Query)
	if err != nil {
		return MapError(err)
	}

	return SuccessResponse(c, results)
}

// SearchItemsInGroup handles GET /groups/:code/items?q=
func (h *SearchHandler) SearchItemsInGroup(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "search_handler.SearchItemsInGroup")
	defer span.End()

	results, err := h.search.SearchItemsInGroup(ctx, c.Param("code"), c.QueryParam("q"))
	if err != nil {
		return MapError(err)
	}

	return SuccessResponse(c, results)
}

// SearchItemsInGroupAndType handles GET /groups/:code/types/:type/items?q=
func (h *SearchHandler) SearchItemsInGroupAndType(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "search_handler.SearchItemsInGroupAndType")
	defer span.End()

	results, err := h.search.SearchItemsInGroupAndType(ctx, c.Param("code"), c.Param("type"), c.QueryParam("q"))
	if err != nil {
		return MapError(err)
	}

	return SuccessResponse(c, results)
}

func (h *SearchHandler) ListSuperGroups(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "search_handler.ListSuperGroups")
	defer span.End()

	supers, err := h.search.ListSuperGroups(ctx)
	if err != nil {
		return MapError(err)
	}

	return SuccessResponse(c, supers)
}

func (h *SearchHandler) ListGroups(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "search_handler.ListGroups")
	defer span.End()

	groups, err := h.search.ListGroups(ctx, c.Param("code"))
	if err != nil {
		return MapError(err)
	}

	return SuccessResponse(c, groups)
}

func (h *SearchHandler) ListMaterialTypes(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "search_handler.ListMaterialTypes")
	defer span.End()

	types, err := h.search.ListMaterialTypes(ctx, c.Param("code"))
	if err != nil {
		return MapError(err)
	}

	return SuccessResponse(c, types)
}

// ListItemsByMaterialType handles GET /material-types/:code/items?mgrp_code=
func (h *SearchHandler) ListItemsByMaterialType(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "search_handler.ListItemsByMaterialType")
	defer span.End()

	items, err := h.search.ListItemsByMaterialType(ctx, c.Param("code"), c.QueryParam("mgrp_code"))
	if err != nil {
		return MapError(err)
	}

	return SuccessResponse(c, items)
}

func (h *SearchHandler) LookupGroup(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "search_handler.LookupGroup")
	defer span.End()

	lookup, err := h.search.LookupGroup(ctx, c.Param("code"))
	if err != nil {
		return MapError(err)
	}

	return SuccessResponse(c, lookup)
}

func (h *SearchHandler) SAPIDsByGroup(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "search_handler.SAPIDsByGroup")
	defer span.End()

	items, err := h.search.SAPIDsByGroup(ctx, c.Param("code"))
	if err != nil {
		return MapError(err)
	}

	return SuccessResponse(c, items)
}
