package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/fern/pkg/attributes"
	"github.com/Ramsey-B/fern/pkg/catalog"
	"github.com/Ramsey-B/fern/pkg/importer"
	"github.com/Ramsey-B/fern/pkg/middleware"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

func testLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

type registrar interface {
	RegisterRoutes(g *echo.Group)
}

func newServer(handlers ...registrar) *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = middleware.Error(testLogger())
	e.Use(middleware.Context())
	api := e.Group("/api/v1")
	for _, h := range handlers {
		h.RegisterRoutes(api)
	}
	return e
}

func do(e *echo.Echo, method, path string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func upload(t *testing.T, e *echo.Echo, path, filename string, data []byte) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if filename != "" {
		part, err := w.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

type fakeItemService struct {
	outcome  *catalog.Outcome
	err      error
	created  []models.CreateItemRequest
	page     [2]int
	item     *models.Item
	details  *models.ItemDetails
	detailID string
}

func (f *fakeItemService) CreateItem(ctx context.Context, req models.CreateItemRequest) (*catalog.Outcome, error) {
	f.created = append(f.created, req)
	return f.outcome, f.err
}

func (f *fakeItemService) UpdateItem(ctx context.Context, id uuid.UUID, req models.UpdateItemRequest) (*catalog.Outcome, error) {
	return f.outcome, f.err
}

func (f *fakeItemService) DeleteItem(ctx context.Context, id uuid.UUID) error {
	return f.err
}

func (f *fakeItemService) GetItem(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	return f.item, f.err
}

func (f *fakeItemService) ListItems(ctx context.Context, page, pageSize int) (*models.ItemListResponse, error) {
	f.page = [2]int{page, pageSize}
	return &models.ItemListResponse{Items: []models.Item{}, Page: 1, PageSize: 20}, f.err
}

func (f *fakeItemService) ItemDetails(ctx context.Context, key string) (*models.ItemDetails, error) {
	f.detailID = key
	return f.details, f.err
}

type fakeSearcher struct {
	err   error
	calls []string
}

func (f *fakeSearcher) record(call string) { f.calls = append(f.calls, call) }

func (f *fakeSearcher) SearchGroups(ctx context.Context, query string) ([]models.GroupSearchResult, error) {
	f.record("groups:" + query)
	return []models.GroupSearchResult{}, f.err
}

func (f *fakeSearcher) SearchItemsInGroup(ctx context.Context, groupCode, query string) ([]models.ItemSearchResult, error) {
	f.record("items:" + groupCode + ":" + query)
	return []models.ItemSearchResult{}, f.err
}

func (f *fakeSearcher) SearchItemsInGroupAndType(ctx context.Context, groupCode, matTypeCode, query string) ([]models.ItemSearchResult, error) {
	f.record("typed:" + groupCode + ":" + matTypeCode + ":" + query)
	return []models.ItemSearchResult{}, f.err
}

func (f *fakeSearcher) ListSuperGroups(ctx context.Context) ([]models.SuperGroup, error) {
	return []models.SuperGroup{{Code: "S1"}}, f.err
}

func (f *fakeSearcher) ListGroups(ctx context.Context, superGroupCode string) ([]models.GroupSummary, error) {
	f.record("supergroup:" + superGroupCode)
	return nil, f.err
}

func (f *fakeSearcher) ListMaterialTypes(ctx context.Context, groupCode string) ([]models.MaterialType, error) {
	return nil, f.err
}

func (f *fakeSearcher) ListItemsByMaterialType(ctx context.Context, matTypeCode, groupCode string) ([]models.ItemSAPSummary, error) {
	f.record("bytype:" + matTypeCode + ":" + groupCode)
	return nil, f.err
}

func (f *fakeSearcher) LookupGroup(ctx context.Context, groupCode string) (*models.GroupLookup, error) {
	return &models.GroupLookup{}, f.err
}

func (f *fakeSearcher) SAPIDsByGroup(ctx context.Context, groupCode string) ([]models.ItemSAPSummary, error) {
	return nil, f.err
}

type fakeDefinitions struct {
	upserted []models.AttributeDefinition
	updated  *models.AttributeDefinition
	deleted  bool
	lastReq  models.UpdateAttributeRequest
}

func (f *fakeDefinitions) ListByGroup(ctx context.Context, groupCode string) ([]models.AttributeDefinition, error) {
	return []models.AttributeDefinition{{GroupCode: groupCode, Name: "Thread"}}, nil
}

func (f *fakeDefinitions) Upsert(ctx context.Context, defs []models.AttributeDefinition) ([]models.AttributeDefinition, error) {
	f.upserted = defs
	return defs, nil
}

func (f *fakeDefinitions) Update(ctx context.Context, id uuid.UUID, req models.UpdateAttributeRequest) (*models.AttributeDefinition, error) {
	f.lastReq = req
	return f.updated, nil
}

func (f *fakeDefinitions) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	return f.deleted, nil
}

type fakeGroupLookup map[string]models.Group

func (f fakeGroupLookup) GetByCode(ctx context.Context, code string) (*models.Group, error) {
	g, ok := f[code]
	if !ok {
		return nil, nil
	}
	return &g, nil
}

type fakeChecker struct {
	refs    []models.ItemRef
	exclude uuid.UUID
}

func (f *fakeChecker) ValidateAttributes(ctx context.Context, groupCode string, attrs models.AttributeSet) (*attributes.Result, error) {
	if groupCode != "G1" {
		return nil, catalog.ErrGroupNotFound
	}
	return &attributes.Result{Valid: true, Normalized: map[string]string{}}, nil
}

func (f *fakeChecker) CheckDuplicates(ctx context.Context, groupCode string, attrs models.AttributeSet, exclude uuid.UUID) ([]models.ItemRef, error) {
	f.exclude = exclude
	return f.refs, nil
}

type fakeImporter struct {
	filename string
	data     []byte
	kind     string
	err      error
}

func (f *fakeImporter) run(kind, filename string, data []byte) (*importer.Result, error) {
	f.kind, f.filename, f.data = kind, filename, data
	if f.err != nil {
		return nil, f.err
	}
	n := 1
	return &importer.Result{Message: kind, Inserted: &n, Errors: []importer.RowError{}}, nil
}

func (f *fakeImporter) ImportDefinitions(ctx context.Context, filename string, data []byte) (*importer.Result, error) {
	return f.run(importer.KindDefinitions, filename, data)
}

func (f *fakeImporter) MergeItemAttributes(ctx context.Context, filename string, data []byte) (*importer.Result, error) {
	return f.run(importer.KindAttributes, filename, data)
}

func (f *fakeImporter) ImportItems(ctx context.Context, filename string, data []byte) (*importer.Result, error) {
	return f.run(importer.KindItems, filename, data)
}

type fakePinger struct {
	err error
}

func (f *fakePinger) PingContext(ctx context.Context) error {
	return f.err
}
