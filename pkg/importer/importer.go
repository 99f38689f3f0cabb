// Package importer loads attribute definitions, item attribute values and base
// items from xlsx or csv uploads, and produces the matching templates.
package importer

import (
	"context"

	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/fern/pkg/attributes"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/google/uuid"
)

// Import kinds, used as metric labels and event kinds.
const (
	KindDefinitions = "definitions"
	KindAttributes  = "attributes"
	KindItems       = "items"
)

// AttributesSheet is the workbook sheet read by the attribute merge import when present.
const AttributesSheet = "attributes"

type GroupStore interface {
	GetByCode(ctx context.Context, code string) (*models.Group, error)
	GetMaterialType(ctx context.Context, code string) (*models.MaterialType, error)
}

type DefinitionStore interface {
	GetByGroupAndName(ctx context.Context, groupCode, name string) (*models.AttributeDefinition, error)
	InsertIgnore(ctx context.Context, defs []models.AttributeDefinition) (int, error)
}

type ItemStore interface {
	Create(ctx context.Context, item *models.Item) (*models.Item, error)
	GetBySAPID(ctx context.Context, sapID string) (*models.Item, error)
	UpdateAttributes(ctx context.Context, id uuid.UUID, attrs models.AttributeSet, updatedBy string) error
}

// ValueChecker applies the single-value rule of an attribute definition.
type ValueChecker interface {
	CheckValue(group models.Group, def models.AttributeDefinition, attr models.AttributeValue) *attributes.Violation
}

type EventEmitter interface {
	EmitItemCreated(ctx context.Context, item *models.Item) error
	EmitAttributesImported(ctx context.Context, kind string, counts map[string]int) error
}

// RowError reports a rejected row.
type RowError struct {
	Row   int    `json:"row"`
	Error string `json:"error"`
}

type Result struct {
	Message   string     `json:"message"`
	Inserted  *int       `json:"inserted,omitempty"`
	Created   *int       `json:"created,omitempty"`
	Updated   *int       `json:"updated,omitempty"`
	Unchanged *int       `json:"unchanged,omitempty"`
	Errors    []RowError `json:"errors"`
}

type Importer struct {
	groups  GroupStore
	defs    DefinitionStore
	items   ItemStore
	checker ValueChecker
	events  EventEmitter
	logger  ectologger.Logger
}

func NewImporter(groups GroupStore, defs DefinitionStore, items ItemStore, checker ValueChecker, events EventEmitter, logger ectologger.Logger) *Importer {
	return &Importer{
		groups:  groups,
		defs:    defs,
		items:   items,
		checker: checker,
		events:  events,
		logger:  logger,
	}
}

// groupCache resolves each group code once per import.
type groupCache struct {
	store  GroupStore
	groups map[string]*models.Group
}

func newGroupCache(store GroupStore) *groupCache {
	return &groupCache{store: store, groups: map[string]*models.Group{}}
}

func (c *groupCache) get(ctx context.Context, code string) (*models.Group, error) {
	if g, ok := c.groups[code]; ok {
		return g, nil
	}
	g, err := c.store.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	c.groups[code] = g
	return g, nil
}

func intPtr(n int) *int { return &n }

func (i *Importer) emit(ctx context.Context, kind string, counts map[string]int) {
	if err := i.events.EmitAttributesImported(ctx, kind, counts); err != nil {
		i.logger.WithContext(ctx).WithError(err).Warnf("Failed to emit %s import event", kind)
	}
}
