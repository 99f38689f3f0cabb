package importer

import (
	"context"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/fern/pkg/attributes"
	"github.com/Ramsey-B/fern/pkg/database"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func testLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

type fakeGroups struct {
	groups map[string]models.Group
	types  map[string]models.MaterialType
	calls  int
}

func (f *fakeGroups) GetByCode(ctx context.Context, code string) (*models.Group, error) {
	f.calls++
	g, ok := f.groups[code]
	if !ok {
		return nil, nil
	}
	return &g, nil
}

func (f *fakeGroups) GetMaterialType(ctx context.Context, code string) (*models.MaterialType, error) {
	mt, ok := f.types[code]
	if !ok {
		return nil, nil
	}
	return &mt, nil
}

type fakeDefs struct {
	defs     map[string][]models.AttributeDefinition
	existing map[string]bool
	inserted []models.AttributeDefinition
}

func (f *fakeDefs) ListByGroup(ctx context.Context, groupCode string) ([]models.AttributeDefinition, error) {
	return f.defs[groupCode], nil
}

func (f *fakeDefs) GetByGroupAndName(ctx context.Context, groupCode, name string) (*models.AttributeDefinition, error) {
	for _, d := range f.defs[groupCode] {
		if d.Name == name {
			return &d, nil
		}
	}
	return nil, nil
}

func (f *fakeDefs) InsertIgnore(ctx context.Context, defs []models.AttributeDefinition) (int, error) {
	n := 0
	for _, d := range defs {
		if f.existing[d.GroupCode+"/"+d.Name] {
			continue
		}
		f.inserted = append(f.inserted, d)
		n++
	}
	return n, nil
}

type fakeItems struct {
	items []*models.Item
}

func (f *fakeItems) Create(ctx context.Context, item *models.Item) (*models.Item, error) {
	cp := *item
	cp.ID = uuid.New()
	f.items = append(f.items, &cp)
	return &cp, nil
}

func (f *fakeItems) GetBySAPID(ctx context.Context, sapID string) (*models.Item, error) {
	for _, it := range f.items {
		if it.SAPItemID != nil && *it.SAPItemID == sapID {
			cp := *it
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeItems) UpdateAttributes(ctx context.Context, id uuid.UUID, attrs models.AttributeSet, updatedBy string) error {
	for _, it := range f.items {
		if it.ID == id {
			it.Attributes = attrs
			it.UpdatedBy = updatedBy
		}
	}
	return nil
}

type importEvent struct {
	kind   string
	counts map[string]int
}

type fakeEvents struct {
	created  []*models.Item
	imported []importEvent
}

func (f *fakeEvents) EmitItemCreated(ctx context.Context, item *models.Item) error {
	f.created = append(f.created, item)
	return nil
}

func (f *fakeEvents) EmitAttributesImported(ctx context.Context, kind string, counts map[string]int) error {
	f.imported = append(f.imported, importEvent{kind: kind, counts: counts})
	return nil
}

type fixture struct {
	groups   *fakeGroups
	defs     *fakeDefs
	items    *fakeItems
	events   *fakeEvents
	importer *Importer
}

func strPtr(s string) *string { return &s }

func newFixture() *fixture {
	groups := &fakeGroups{
		groups: map[string]models.Group{
			"G1": {Code: "G1", ShortName: "Bolts", LongName: "Hex Bolts"},
			"G2": {Code: "G2", ShortName: "Nuts", LongName: "Hex Nuts", ClosedValues: true},
		},
		types: map[string]models.MaterialType{
			"ROH": {Code: "ROH", Description: "Raw material"},
		},
	}
	defs := &fakeDefs{
		defs: map[string][]models.AttributeDefinition{
			"G1": {{GroupCode: "G1", Name: "Length", Unit: "mm", Validation: models.GrammarDecimal}},
			"G2": {{GroupCode: "G2", Name: "Thread", AllowedValues: database.NewJSONB([]string{"M8"})}},
		},
		existing: map[string]bool{},
	}
	items := &fakeItems{items: []*models.Item{
		{ID: uuid.New(), SAPItemID: strPtr("12345"), GroupCode: "G1", Attributes: models.AttributeSet{{Name: "Color", Value: "Red"}}},
		{ID: uuid.New(), SAPItemID: strPtr("12346"), GroupCode: "G2", Attributes: models.AttributeSet{}},
	}}
	events := &fakeEvents{}

	logger := testLogger()
	return &fixture{
		groups:   groups,
		defs:     defs,
		items:    items,
		events:   events,
		importer: NewImporter(groups, defs, items, attributes.NewValidator(defs, logger), events, logger),
	}
}

// workbook builds an xlsx with one sheet per entry, the first being active.
func workbook(t *testing.T, sheets map[string][][]any, order ...string) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	for i, name := range order {
		if i == 0 {
			require.NoError(t, f.SetSheetName(f.GetSheetName(f.GetActiveSheetIndex()), name))
		} else {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}
		for r, row := range sheets[name] {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			require.NoError(t, err)
			values := row
			require.NoError(t, f.SetSheetRow(name, cell, &values))
		}
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}
