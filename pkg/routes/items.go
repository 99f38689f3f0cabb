package routes

import (
	"context"
	"net/http"

	"github.com/Ramsey-B/fern/pkg/catalog"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/tracing"
	"github.com/Ramsey-B/fern/pkg/utils"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// ItemService is the item lifecycle surface
type ItemService interface {
	CreateItem(ctx context.Context, req models.CreateItemRequest) (*catalog.Outcome, error)
	UpdateItem(ctx context.Context, id uuid.UUID, req models.UpdateItemRequest) (*catalog.Outcome, error)
	DeleteItem(ctx context.Context, id uuid.UUID) error
	GetItem(ctx context.Context, id uuid.UUID) (*models.Item, error)
	ListItems(ctx context.Context, page, pageSize int) (*models.ItemListResponse, error)
	ItemDetails(ctx context.Context, key string) (*models.ItemDetails, error)
}

// ItemHandler handles item master requests
type ItemHandler struct {
	items ItemService
}

// NewItemHandler creates a new item handler
func NewItemHandler(items ItemService) *ItemHandler {
	return &ItemHandler{
		items: items,
	}
}

// RegisterRoutes registers the item routes
func (h *ItemHandler) RegisterRoutes(g *echo.Group) {
	items := g.Group("/items")
	items.POST("", h.Create)
	items.GET("", h.List)
	items.GET("/:id", h.Get)
	items.PUT("/:id", h.Update)
	items.DELETE("/:id", h.Delete)
	items.GET("/:id/details", h.Details)
}

// Create handles POST /items. Duplicates are reported with a 200 unless the
// request is forced, violations with a 422.
func (h *ItemHandler) Create(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "item_handler.Create")
	defer span.End()

	req, err := utils.BindRequest[models.CreateItemRequest](c)
	if err != nil {
		return err
	}

	outcome, err := h.items.CreateItem(ctx, req)
	if err != nil {
		return MapError(err)
	}

	return outcomeResponse(c, outcome)
}

// Update handles PUT /items/:id
func (h *ItemHandler) Update(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "item_handler.Update")
	defer span.End()

	id, err := ParseUUID(c, "id")
	if err != nil {
		return err
	}

	req, err := utils.BindRequest[models.UpdateItemRequest](c)
	if err != nil {
		return err
	}

	outcome, err := h.items.UpdateItem(ctx, id, req)
	if err != nil {
		return MapError(err)
	}

	return outcomeResponse(c, outcome)
}

func outcomeResponse(c echo.Context, outcome *catalog.Outcome) error {
	switch outcome.Status {
	case catalog.OutcomeCreated:
		return CreatedResponse(c, outcome)
	case catalog.OutcomeInvalid:
		return c.JSON(http.StatusUnprocessableEntity, outcome)
	default:
		return SuccessResponse(c, outcome)
	}
}

// List handles GET /items?page=&page_size=
func (h *ItemHandler) List(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "item_handler.List")
	defer span.End()

	resp, err := h.items.ListItems(ctx, QueryInt(c, "page"), QueryInt(c, "page_size"))
	if err != nil {
		return MapError(err)
	}

	return SuccessResponse(c, resp)
}

func (h *ItemHandler) Get(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "item_handler.Get")
	defer span.End()

	id, err := ParseUUID(c, "id")
	if err != nil {
		return err
	}

	item, err := h.items.GetItem(ctx, id)
	if err != nil {
		return MapError(err)
	}

	return SuccessResponse(c, item)
}

func (h *ItemHandler) Delete(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "item_handler.Delete")
	defer span.End()

	id, err := ParseUUID(c, "id")
	if err != nil {
		return err
	}

	if err := h.items.DeleteItem(ctx, id); err != nil {
		return MapError(err)
	}

	return NoContentResponse(c)
}

// Details handles GET /items/:id/details, id being a local item id or a SAP id
func (h *ItemHandler) Details(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "item_handler.Details")
	defer span.End()

	details, err := h.items.ItemDetails(ctx, c.Param("id"))
	if err != nil {
		return MapError(err)
	}

	return SuccessResponse(c, details)
}
