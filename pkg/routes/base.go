// Package routes holds the HTTP handlers of the catalog API.
package routes

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Ramsey-B/fern/pkg/catalog"
	"github.com/Ramsey-B/fern/pkg/importer"
	"github.com/Ramsey-B/fern/pkg/ranking"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/lib/pq"
)

// Postgres error codes surfaced as client errors
const (
	pqForeignKeyViolation = "23503"
	pqUniqueViolation     = "23505"
)

// ParseUUID parses a UUID from a path parameter
func ParseUUID(c echo.Context, param string) (uuid.UUID, error) {
	idStr := c.Param(param)
	if idStr == "" {
		return uuid.Nil, httperror.NewHTTPError(http.StatusBadRequest, "missing "+param)
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return uuid.Nil, httperror.NewHTTPErrorf(http.StatusBadRequest, "invalid %s: must be a valid UUID", param)
	}

	return id, nil
}

// QueryInt reads an integer query parameter, 0 when absent or malformed
func QueryInt(c echo.Context, name string) int {
	n, _ := strconv.Atoi(c.QueryParam(name))
	return n
}

// SuccessResponse returns a 200 OK with data
func SuccessResponse(c echo.Context, data any) error {
	return c.JSON(http.StatusOK, data)
}

// CreatedResponse returns a 201 Created with data
func CreatedResponse(c echo.Context, data any) error {
	return c.JSON(http.StatusCreated, data)
}

// NoContentResponse returns a 204 No Content
func NoContentResponse(c echo.Context) error {
	return c.NoContent(http.StatusNoContent)
}

// BadRequest returns a 400 Bad Request error
func BadRequest(message string) error {
	return httperror.NewHTTPError(http.StatusBadRequest, message)
}

// NotFound returns a 404 Not Found error
func NotFound(message string) error {
	return httperror.NewHTTPError(http.StatusNotFound, message)
}

// MapError turns domain errors into HTTP errors. Anything unrecognized is
// returned as is and rendered as a 500.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, catalog.ErrGroupNotFound),
		errors.Is(err, catalog.ErrSuperGroupNotFound),
		errors.Is(err, catalog.ErrMaterialTypeNotFound),
		errors.Is(err, catalog.ErrItemNotFound),
		errors.Is(err, catalog.ErrNoItems):
		return NotFound(err.Error())
	case errors.Is(err, ranking.ErrEmptyQuery),
		errors.Is(err, importer.ErrEmptyFile),
		errors.Is(err, importer.ErrUnsupportedFormat),
		errors.Is(err, importer.ErrParseFailed):
		return BadRequest(err.Error())
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqForeignKeyViolation:
			return httperror.NewHTTPErrorf(http.StatusBadRequest, "unknown reference: %s", pqErr.Detail)
		case pqUniqueViolation:
			return httperror.NewHTTPErrorf(http.StatusConflict, "already exists: %s", pqErr.Detail)
		}
	}

	return err
}
