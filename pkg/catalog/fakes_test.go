package catalog

import (
	"context"
	"sort"

	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/fern/pkg/attributes"
	"github.com/Ramsey-B/fern/pkg/database"
	"github.com/Ramsey-B/fern/pkg/duplicates"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/ranking"
	"github.com/google/uuid"
)

func testLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

type fakeGroups struct {
	supers []models.SuperGroup
	groups map[string]models.Group
	types  map[string]models.MaterialType
	items  *fakeItems
}

func (f *fakeGroups) ListSuperGroups(ctx context.Context) ([]models.SuperGroup, error) {
	return f.supers, nil
}

func (f *fakeGroups) ListBySuperGroup(ctx context.Context, code string) ([]models.Group, error) {
	var out []models.Group
	for _, g := range f.groups {
		if g.SuperGroupCode != nil && *g.SuperGroupCode == code {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (f *fakeGroups) GetByCode(ctx context.Context, code string) (*models.Group, error) {
	g, ok := f.groups[code]
	if !ok {
		return nil, nil
	}
	return &g, nil
}

func (f *fakeGroups) GetByCodes(ctx context.Context, codes []string) ([]models.Group, error) {
	var out []models.Group
	for _, c := range codes {
		if g, ok := f.groups[c]; ok {
			out = append(out, g)
		}
	}
	return out, nil
}

func (f *fakeGroups) GetMaterialType(ctx context.Context, code string) (*models.MaterialType, error) {
	mt, ok := f.types[code]
	if !ok {
		return nil, nil
	}
	return &mt, nil
}

func (f *fakeGroups) ListMaterialTypesByGroup(ctx context.Context, groupCode string) ([]models.MaterialType, error) {
	seen := map[string]bool{}
	var out []models.MaterialType
	for _, it := range f.items.live() {
		if it.GroupCode == groupCode && !seen[it.MatTypeCode] {
			seen[it.MatTypeCode] = true
			out = append(out, f.types[it.MatTypeCode])
		}
	}
	return out, nil
}

type fakeItems struct {
	order   []uuid.UUID
	byID    map[uuid.UUID]*models.Item
	deleted map[uuid.UUID]bool
}

func newFakeItems() *fakeItems {
	return &fakeItems{byID: map[uuid.UUID]*models.Item{}, deleted: map[uuid.UUID]bool{}}
}

func (f *fakeItems) live() []models.Item {
	var out []models.Item
	for _, id := range f.order {
		if !f.deleted[id] {
			out = append(out, *f.byID[id])
		}
	}
	return out
}

func (f *fakeItems) add(item models.Item) models.Item {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	f.order = append(f.order, item.ID)
	f.byID[item.ID] = &item
	return item
}

func (f *fakeItems) Create(ctx context.Context, item *models.Item) (*models.Item, error) {
	created := f.add(*item)
	return &created, nil
}

func (f *fakeItems) GetByID(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	it, ok := f.byID[id]
	if !ok || f.deleted[id] {
		return nil, nil
	}
	cp := *it
	return &cp, nil
}

func (f *fakeItems) GetBySAPID(ctx context.Context, sapID string) (*models.Item, error) {
	for _, it := range f.live() {
		if it.SAPItemID != nil && *it.SAPItemID == sapID {
			return &it, nil
		}
	}
	return nil, nil
}

func (f *fakeItems) GetByIDs(ctx context.Context, ids []string) ([]models.Item, error) {
	var out []models.Item
	for _, id := range ids {
		parsed, err := uuid.Parse(id)
		if err != nil {
			continue
		}
		if it, _ := f.GetByID(ctx, parsed); it != nil {
			out = append(out, *it)
		}
	}
	return out, nil
}

func (f *fakeItems) Update(ctx context.Context, item *models.Item) (*models.Item, error) {
	if _, ok := f.byID[item.ID]; !ok || f.deleted[item.ID] {
		return nil, nil
	}
	cp := *item
	f.byID[item.ID] = &cp
	return &cp, nil
}

func (f *fakeItems) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	if _, ok := f.byID[id]; !ok || f.deleted[id] {
		return false, nil
	}
	f.deleted[id] = true
	return true, nil
}

func (f *fakeItems) List(ctx context.Context, page, pageSize int) ([]models.Item, int, error) {
	live := f.live()
	start := (page - 1) * pageSize
	if start > len(live) {
		start = len(live)
	}
	end := start + pageSize
	if end > len(live) {
		end = len(live)
	}
	return live[start:end], len(live), nil
}

func (f *fakeItems) filter(pred func(models.Item) bool) []models.Item {
	out := []models.Item{}
	for _, it := range f.live() {
		if pred(it) {
			out = append(out, it)
		}
	}
	return out
}

func (f *fakeItems) ListWithAttributes(ctx context.Context, groupCode string) ([]models.Item, error) {
	return f.filter(func(it models.Item) bool { return it.GroupCode == groupCode && len(it.Attributes) > 0 }), nil
}

func (f *fakeItems) ListByGroup(ctx context.Context, groupCode string) ([]models.Item, error) {
	return f.filter(func(it models.Item) bool { return it.GroupCode == groupCode }), nil
}

func (f *fakeItems) ListByGroupAndType(ctx context.Context, groupCode, matTypeCode string) ([]models.Item, error) {
	return f.filter(func(it models.Item) bool { return it.GroupCode == groupCode && it.MatTypeCode == matTypeCode }), nil
}

func (f *fakeItems) ListByMaterialType(ctx context.Context, matTypeCode, groupCode string) ([]models.Item, error) {
	return f.filter(func(it models.Item) bool {
		return it.MatTypeCode == matTypeCode && (groupCode == "" || it.GroupCode == groupCode)
	}), nil
}

type fakeDefs struct {
	defs map[string][]models.AttributeDefinition
}

func (f *fakeDefs) ListByGroup(ctx context.Context, groupCode string) ([]models.AttributeDefinition, error) {
	return f.defs[groupCode], nil
}

type fakeEmitter struct {
	created, updated, deleted []*models.Item
}

func (f *fakeEmitter) EmitItemCreated(ctx context.Context, item *models.Item) error {
	f.created = append(f.created, item)
	return nil
}

func (f *fakeEmitter) EmitItemUpdated(ctx context.Context, item *models.Item) error {
	f.updated = append(f.updated, item)
	return nil
}

func (f *fakeEmitter) EmitItemDeleted(ctx context.Context, item *models.Item) error {
	f.deleted = append(f.deleted, item)
	return nil
}

type fakeRanker struct {
	hits   []ranking.Hit
	err    error
	scopes []ranking.Scope
}

func (f *fakeRanker) Rank(ctx context.Context, scope ranking.Scope, query string) ([]ranking.Hit, error) {
	f.scopes = append(f.scopes, scope)
	return f.hits, f.err
}

type fixture struct {
	groups  *fakeGroups
	items   *fakeItems
	defs    *fakeDefs
	emitter *fakeEmitter
	service *ItemService
}

func strPtr(s string) *string { return &s }

func newFixture() *fixture {
	items := newFakeItems()
	groups := &fakeGroups{
		supers: []models.SuperGroup{{Code: "S1", Name: "Hardware"}},
		groups: map[string]models.Group{
			"G1": {Code: "G1", SuperGroupCode: strPtr("S1"), ShortName: "Bolts", LongName: "Hex Bolts"},
			"G2": {Code: "G2", SuperGroupCode: strPtr("S1"), ShortName: "Nuts", LongName: "Hex Nuts", ClosedValues: true},
		},
		types: map[string]models.MaterialType{
			"ROH":  {Code: "ROH", Description: "Raw material"},
			"HALB": {Code: "HALB", Description: "Semi finished"},
		},
		items: items,
	}
	defs := &fakeDefs{defs: map[string][]models.AttributeDefinition{
		"G1": {
			{GroupCode: "G1", Name: "Thread", AllowedValues: database.NewJSONB([]string{"M8", "M10"})},
			{GroupCode: "G1", Name: "Length", Unit: "mm", Validation: models.GrammarDecimal},
		},
		"G2": {
			{GroupCode: "G2", Name: "Thread", AllowedValues: database.NewJSONB([]string{"M8"})},
		},
	}}
	emitter := &fakeEmitter{}

	logger := testLogger()
	validator := attributes.NewValidator(defs, logger)
	detector := duplicates.NewDetector(items, defs, logger)

	return &fixture{
		groups:  groups,
		items:   items,
		defs:    defs,
		emitter: emitter,
		service: NewItemService(items, groups, defs, validator, detector, emitter, logger),
	}
}
