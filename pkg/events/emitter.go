// Package events emits catalog lifecycle events.
package events

import (
	"context"
	"encoding/json"

	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/fern/pkg/kafka"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

// SchemaVersion is the current event schema version
const SchemaVersion = "1.0"

const (
	ItemCreated         = "item.created"
	ItemUpdated         = "item.updated"
	ItemDeleted         = "item.deleted"
	AttributesImported  = "attributes.imported"
	DefinitionsImported = "attribute_definitions.imported"
)

// Publisher sends one event to the catalog topic
type Publisher interface {
	Publish(ctx context.Context, event *kafka.CatalogEvent) error
}

// Emitter handles event emission for Fern
type Emitter struct {
	publisher Publisher
	logger    ectologger.Logger
}

// NewEmitter creates a new event emitter
func NewEmitter(publisher Publisher, logger ectologger.Logger) *Emitter {
	return &Emitter{
		publisher: publisher,
		logger:    logger,
	}
}

// EmitItemCreated emits an item created event carrying the stored item
func (e *Emitter) EmitItemCreated(ctx context.Context, item *models.Item) error {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitItemCreated")
	defer span.End()

	return e.emitItem(ctx, ItemCreated, item)
}

// EmitItemUpdated emits an item updated event carrying the stored item
func (e *Emitter) EmitItemUpdated(ctx context.Context, item *models.Item) error {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitItemUpdated")
	defer span.End()

	return e.emitItem(ctx, ItemUpdated, item)
}

// EmitItemDeleted emits an item deleted event
func (e *Emitter) EmitItemDeleted(ctx context.Context, item *models.Item) error {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitItemDeleted")
	defer span.End()

	event := &kafka.CatalogEvent{
		EventType: ItemDeleted,
		ItemID:    item.ID.String(),
		GroupCode: item.GroupCode,
	}

	return e.publish(ctx, event)
}

// EmitAttributesImported emits one event per import run with its counters
func (e *Emitter) EmitAttributesImported(ctx context.Context, kind string, counts map[string]int) error {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitAttributesImported")
	defer span.End()

	eventType := AttributesImported
	if kind == "definitions" {
		eventType = DefinitionsImported
	}

	data, err := json.Marshal(map[string]any{
		"schema_version": SchemaVersion,
		"counts":         counts,
	})
	if err != nil {
		return err
	}

	return e.publish(ctx, &kafka.CatalogEvent{EventType: eventType, Data: data})
}

func (e *Emitter) emitItem(ctx context.Context, eventType string, item *models.Item) error {
	data, err := json.Marshal(item)
	if err != nil {
		return err
	}

	event := &kafka.CatalogEvent{
		EventType: eventType,
		ItemID:    item.ID.String(),
		GroupCode: item.GroupCode,
		Data:      data,
	}

	return e.publish(ctx, event)
}

func (e *Emitter) publish(ctx context.Context, event *kafka.CatalogEvent) error {
	if err := e.publisher.Publish(ctx, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).Errorf("Failed to emit %s event", event.EventType)
		return err
	}
	return nil
}
