// Package catalog implements item lifecycle, catalog search and drill-down on
// top of the repositories.
package catalog

import (
	"context"
	"errors"

	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/google/uuid"
)

var (
	ErrGroupNotFound        = errors.New("material group not found")
	ErrSuperGroupNotFound   = errors.New("no groups found for super group")
	ErrMaterialTypeNotFound = errors.New("material type not found")
	ErrItemNotFound         = errors.New("item not found")
	ErrNoItems              = errors.New("no items found")
)

// GroupStore reads the catalog tree.
type GroupStore interface {
	ListSuperGroups(ctx context.Context) ([]models.SuperGroup, error)
	ListBySuperGroup(ctx context.Context, superGroupCode string) ([]models.Group, error)
	GetByCode(ctx context.Context, code string) (*models.Group, error)
	GetByCodes(ctx context.Context, codes []string) ([]models.Group, error)
	GetMaterialType(ctx context.Context, code string) (*models.MaterialType, error)
	ListMaterialTypesByGroup(ctx context.Context, groupCode string) ([]models.MaterialType, error)
}

// ItemStore reads and writes item masters.
type ItemStore interface {
	Create(ctx context.Context, item *models.Item) (*models.Item, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Item, error)
	GetBySAPID(ctx context.Context, sapID string) (*models.Item, error)
	GetByIDs(ctx context.Context, ids []string) ([]models.Item, error)
	Update(ctx context.Context, item *models.Item) (*models.Item, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	List(ctx context.Context, page, pageSize int) ([]models.Item, int, error)
	ListByGroup(ctx context.Context, groupCode string) ([]models.Item, error)
	ListByGroupAndType(ctx context.Context, groupCode, matTypeCode string) ([]models.Item, error)
	ListByMaterialType(ctx context.Context, matTypeCode, groupCode string) ([]models.Item, error)
}

// DefinitionStore reads the attribute schema of a group.
type DefinitionStore interface {
	ListByGroup(ctx context.Context, groupCode string) ([]models.AttributeDefinition, error)
}

// EventEmitter publishes item lifecycle events.
type EventEmitter interface {
	EmitItemCreated(ctx context.Context, item *models.Item) error
	EmitItemUpdated(ctx context.Context, item *models.Item) error
	EmitItemDeleted(ctx context.Context, item *models.Item) error
}
