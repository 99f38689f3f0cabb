package routes

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/Ramsey-B/fern/pkg/importer"
	"github.com/Ramsey-B/fern/pkg/tracing"
	"github.com/labstack/echo/v4"
)

// Importer runs bulk uploads
type Importer interface {
	ImportDefinitions(ctx context.Context, filename string, data []byte) (*importer.Result, error)
	MergeItemAttributes(ctx context.Context, filename string, data []byte) (*importer.Result, error)
	ImportItems(ctx context.Context, filename string, data []byte) (*importer.Result, error)
}

// ImportHandler handles bulk uploads and template downloads
type ImportHandler struct {
	importer Importer
	maxBytes int64
}

// NewImportHandler creates a new import handler. Uploads larger than maxBytes are rejected.
func NewImportHandler(importer Importer, maxBytes int64) *ImportHandler {
	return &ImportHandler{
		importer: importer,
		maxBytes: maxBytes,
	}
}

// RegisterRoutes registers the import routes
func (h *ImportHandler) RegisterRoutes(g *echo.Group) {
	imports := g.Group("/imports")
	imports.POST("/:kind", h.Upload)
	imports.GET("/:kind/template", h.Template)
}

// Upload handles POST /imports/:kind with a multipart "file" field. kind is
// definitions, attributes or items.
func (h *ImportHandler) Upload(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "import_handler.Upload")
	defer span.End()

	var run func(ctx context.Context, filename string, data []byte) (*importer.Result, error)
	switch kind := c.Param("kind"); kind {
	case importer.KindDefinitions:
		run = h.importer.ImportDefinitions
	case importer.KindAttributes:
		run = h.importer.MergeItemAttributes
	case importer.KindItems:
		run = h.importer.ImportItems
	default:
		return BadRequest(fmt.Sprintf("invalid import kind '%s'", kind))
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return BadRequest("No file uploaded")
	}
	if h.maxBytes > 0 && fh.Size > h.maxBytes {
		return BadRequest(fmt.Sprintf("file exceeds %d bytes", h.maxBytes))
	}

	src, err := fh.Open()
	if err != nil {
		return BadRequest("unable to read uploaded file")
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return BadRequest("unable to read uploaded file")
	}

	result, err := run(ctx, fh.Filename, data)
	if err != nil {
		return MapError(err)
	}

	return SuccessResponse(c, result)
}

// Template handles GET /imports/:kind/template
func (h *ImportHandler) Template(c echo.Context) error {
	_, span := tracing.StartSpan(c.Request().Context(), "import_handler.Template")
	defer span.End()

	tmpl, ok := importer.TemplateFor(c.Param("kind"))
	if !ok {
		return NotFound(fmt.Sprintf("no template for '%s'", c.Param("kind")))
	}

	data, err := tmpl.Render()
	if err != nil {
		return err
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, tmpl.Filename))
	return c.Blob(http.StatusOK, importer.XLSXContentType, data)
}
