package routes

import (
	"context"
	"fmt"

	"github.com/Gobusters/ectolinq"
	"github.com/Ramsey-B/fern/pkg/attributes"
	"github.com/Ramsey-B/fern/pkg/catalog"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/tracing"
	"github.com/Ramsey-B/fern/pkg/utils"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// DefinitionStore maintains attribute definitions
type DefinitionStore interface {
	ListByGroup(ctx context.Context, groupCode string) ([]models.AttributeDefinition, error)
	Upsert(ctx context.Context, defs []models.AttributeDefinition) ([]models.AttributeDefinition, error)
	Update(ctx context.Context, id uuid.UUID, req models.UpdateAttributeRequest) (*models.AttributeDefinition, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

type GroupLookup interface {
	GetByCode(ctx context.Context, code string) (*models.Group, error)
}

// AttributeChecker runs standalone validation and duplicate checks
type AttributeChecker interface {
	ValidateAttributes(ctx context.Context, groupCode string, attrs models.AttributeSet) (*attributes.Result, error)
	CheckDuplicates(ctx context.Context, groupCode string, attrs models.AttributeSet, exclude uuid.UUID) ([]models.ItemRef, error)
}

// AttributeHandler handles attribute definition admin and attribute checks
type AttributeHandler struct {
	defs    DefinitionStore
	groups  GroupLookup
	checker AttributeChecker
}

// NewAttributeHandler creates a new attribute handler
func NewAttributeHandler(defs DefinitionStore, groups GroupLookup, checker AttributeChecker) *AttributeHandler {
	return &AttributeHandler{
		defs:    defs,
		groups:  groups,
		checker: checker,
	}
}

// CheckAttributesRequest carries an attribute set to validate or to check for duplicates
type CheckAttributesRequest struct {
	Attributes models.AttributeSet `json:"attributes"`
	// ExcludeID leaves an item out of the duplicate check, usually the one being edited.
	ExcludeID *uuid.UUID `json:"exclude_id,omitempty"`
}

type DuplicateCheckResponse struct {
	Status     catalog.OutcomeStatus `json:"status"`
	Duplicates []models.ItemRef      `json:"duplicates"`
}

// RegisterRoutes registers the attribute routes
func (h *AttributeHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/groups/:code/attributes", h.List)
	g.PUT("/groups/:code/attributes", h.Upsert)
	g.POST("/groups/:code/attributes/validate", h.Validate)
	g.POST("/groups/:code/attributes/duplicates", h.Duplicates)

	g.PATCH("/attributes/:id", h.Update)
	g.DELETE("/attributes/:id", h.Delete)
}

// List handles GET /groups/:code/attributes
func (h *AttributeHandler) List(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "attribute_handler.List")
	defer span.End()

	group, err := h.group(ctx, c.Param("code"))
	if err != nil {
		return err
	}

	defs, err := h.defs.ListByGroup(ctx, group.Code)
	if err != nil {
		return MapError(err)
	}

	return SuccessResponse(c, defs)
}

// Upsert handles PUT /groups/:code/attributes. Each definition is created, or
// overwrites (and revives) the one with the same name.
func (h *AttributeHandler) Upsert(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "attribute_handler.Upsert")
	defer span.End()

	req, err := utils.BindRequest[models.UpsertAttributesRequest](c)
	if err != nil {
		return err
	}

	group, err := h.group(ctx, c.Param("code"))
	if err != nil {
		return err
	}

	defs, err := h.defs.Upsert(ctx, ectolinq.Map(req.Attributes, func(r models.UpsertAttributeRequest) models.AttributeDefinition {
		return r.Definition(group.Code)
	}))
	if err != nil {
		return MapError(err)
	}

	return SuccessResponse(c, defs)
}

// Update handles PATCH /attributes/:id
func (h *AttributeHandler) Update(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "attribute_handler.Update")
	defer span.End()

	id, err := ParseUUID(c, "id")
	if err != nil {
		return err
	}

	req, err := utils.BindRequest[models.UpdateAttributeRequest](c)
	if err != nil {
		return err
	}
	if req.Validation != nil {
		normalized := req.Validation.Normalized()
		req.Validation = &normalized
	}

	def, err := h.defs.Update(ctx, id, req)
	if err != nil {
		return MapError(err)
	}
	if def == nil {
		return NotFound("attribute definition not found")
	}

	return SuccessResponse(c, def)
}

// Delete handles DELETE /attributes/:id
func (h *AttributeHandler) Delete(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "attribute_handler.Delete")
	defer span.End()

	id, err := ParseUUID(c, "id")
	if err != nil {
		return err
	}

	deleted, err := h.defs.Delete(ctx, id)
	if err != nil {
		return MapError(err)
	}
	if !deleted {
		return NotFound("attribute definition not found")
	}

	return NoContentResponse(c)
}

// Validate handles POST /groups/:code/attributes/validate
func (h *AttributeHandler) Validate(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "attribute_handler.Validate")
	defer span.End()

	req, err := utils.BindRequest[CheckAttributesRequest](c)
	if err != nil {
		return err
	}

	result, err := h.checker.ValidateAttributes(ctx, c.Param("code"), req.Attributes)
	if err != nil {
		return MapError(err)
	}

	return SuccessResponse(c, result)
}

// Duplicates handles POST /groups/:code/attributes/duplicates
func (h *AttributeHandler) Duplicates(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "attribute_handler.Duplicates")
	defer span.End()

	req, err := utils.BindRequest[CheckAttributesRequest](c)
	if err != nil {
		return err
	}

	exclude := uuid.Nil
	if req.ExcludeID != nil {
		exclude = *req.ExcludeID
	}

	refs, err := h.checker.CheckDuplicates(ctx, c.Param("code"), req.Attributes, exclude)
	if err != nil {
		return MapError(err)
	}

	resp := DuplicateCheckResponse{Status: "clear", Duplicates: refs}
	if len(refs) > 0 {
		resp.Status = catalog.OutcomeDuplicates
	}
	if resp.Duplicates == nil {
		resp.Duplicates = []models.ItemRef{}
	}

	return SuccessResponse(c, resp)
}

func (h *AttributeHandler) group(ctx context.Context, code string) (*models.Group, error) {
	group, err := h.groups.GetByCode(ctx, code)
	if err != nil {
		return nil, MapError(err)
	}
	if group == nil {
		return nil, MapError(fmt.Errorf("%w: %s", catalog.ErrGroupNotFound, code))
	}
	return group, nil
}
