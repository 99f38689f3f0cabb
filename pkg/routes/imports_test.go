package routes

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/Ramsey-B/fern/pkg/importer"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestImportHandler_Upload(t *testing.T) {
	imp := &fakeImporter{}
	e := newServer(NewImportHandler(imp, 1024))
	csv := []byte("mgrp_code,attribute_name\nG1,Length\n")

	for _, kind := range []string{importer.KindDefinitions, importer.KindAttributes, importer.KindItems} {
		t.Run(kind, func(t *testing.T) {
			rec := upload(t, e, "/api/v1/imports/"+kind, "upload.csv", csv)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			assert.Equal(t, kind, imp.kind)
			assert.Equal(t, "upload.csv", imp.filename)
			assert.Equal(t, csv, imp.data)

			result := decode[importer.Result](t, rec)
			assert.Equal(t, kind, result.Message)
			require.NotNil(t, result.Inserted)
			assert.Equal(t, 1, *result.Inserted)
		})
	}
}

func TestImportHandler_UploadErrors(t *testing.T) {
	t.Run("unknown kind", func(t *testing.T) {
		imp := &fakeImporter{}
		e := newServer(NewImportHandler(imp, 0))
		rec := upload(t, e, "/api/v1/imports/widgets", "upload.csv", []byte("a\n1\n"))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Empty(t, imp.kind)
	})

	t.Run("no file", func(t *testing.T) {
		e := newServer(NewImportHandler(&fakeImporter{}, 0))
		rec := upload(t, e, "/api/v1/imports/items", "", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("too large", func(t *testing.T) {
		imp := &fakeImporter{}
		e := newServer(NewImportHandler(imp, 4))
		rec := upload(t, e, "/api/v1/imports/items", "upload.csv", []byte("short_name\nbolt\n"))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Empty(t, imp.kind)
	})

	for _, err := range []error{importer.ErrEmptyFile, importer.ErrUnsupportedFormat, fmt.Errorf("%w: bad quote", importer.ErrParseFailed)} {
		t.Run(err.Error(), func(t *testing.T) {
			e := newServer(NewImportHandler(&fakeImporter{err: err}, 0))
			rec := upload(t, e, "/api/v1/imports/items", "upload.csv", []byte("x"))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestImportHandler_Template(t *testing.T) {
	e := newServer(NewImportHandler(&fakeImporter{}, 0))

	rec := do(e, http.MethodGet, "/api/v1/imports/definitions/template", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, importer.XLSXContentType, rec.Header().Get(echo.HeaderContentType))
	assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), "attachment; filename=")

	f, err := excelize.OpenReader(rec.Body)
	require.NoError(t, err)
	defer f.Close()
	assert.NotEmpty(t, f.GetSheetList())

	rec = do(e, http.MethodGet, "/api/v1/imports/widgets/template", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
