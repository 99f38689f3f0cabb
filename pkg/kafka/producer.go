package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/fern/pkg/tracing"
	"github.com/segmentio/kafka-go"
)

// Producer publishes catalog events. A producer built with Enabled=false
// accepts every event and writes nothing.
type Producer struct {
	writer *kafka.Writer
	logger ectologger.Logger
	topic  string
}

// ProducerConfig holds Kafka producer configuration
type ProducerConfig struct {
	Enabled      bool
	Brokers      []string
	Topic        string
	BatchSize    int
	BatchTimeout time.Duration
	RequiredAcks int
	Compression  string
}

// NewProducer creates a new Kafka producer
func NewProducer(cfg ProducerConfig, logger ectologger.Logger) *Producer {
	p := &Producer{
		logger: logger,
		topic:  cfg.Topic,
	}
	if !cfg.Enabled || len(cfg.Brokers) == 0 {
		return p
	}

	compression := kafka.Snappy
	switch cfg.Compression {
	case "gzip":
		compression = kafka.Gzip
	case "lz4":
		compression = kafka.Lz4
	case "zstd":
		compression = kafka.Zstd
	case "none":
		compression = 0
	}

	p.writer = &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Balancer:               &kafka.LeastBytes{},
		BatchSize:              cfg.BatchSize,
		BatchTimeout:           cfg.BatchTimeout,
		RequiredAcks:           kafka.RequiredAcks(cfg.RequiredAcks),
		Compression:            compression,
		AllowAutoTopicCreation: true,
	}
	return p
}

// Enabled reports whether events reach a broker
func (p *Producer) Enabled() bool {
	return p.writer != nil
}

// Close closes the producer
func (p *Producer) Close() error {
	if p.writer == nil {
		return nil
	}
	return p.writer.Close()
}

// CatalogEvent is the envelope of every event on the catalog topic
type CatalogEvent struct {
	EventType  string          `json:"event_type"`
	ItemID     string          `json:"item_id,omitempty"`
	GroupCode  string          `json:"mgrp_code,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
	Data       json.RawMessage `json:"data,omitempty"`
}

// Key partitions item events by item and group level events by group
func (e *CatalogEvent) Key() string {
	if e.ItemID != "" {
		return e.ItemID
	}
	return e.GroupCode
}

// Message renders the event as a Kafka message for topic
func (e *CatalogEvent) Message(topic string) (kafka.Message, error) {
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}

	data, err := json.Marshal(e)
	if err != nil {
		return kafka.Message{}, err
	}

	return kafka.Message{
		Topic: topic,
		Key:   []byte(e.Key()),
		Value: data,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(e.EventType)},
			{Key: "mgrp_code", Value: []byte(e.GroupCode)},
		},
	}, nil
}

// Publish publishes one catalog event
func (p *Producer) Publish(ctx context.Context, event *CatalogEvent) error {
	ctx, span := tracing.StartSpan(ctx, "kafka.Producer.Publish")
	defer span.End()

	if p.writer == nil {
		return nil
	}

	msg, err := event.Message(p.topic)
	if err != nil {
		return err
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.WithContext(ctx).WithError(err).Error("Failed to publish catalog event")
		return err
	}

	p.logger.WithContext(ctx).WithFields(map[string]any{
		"event_type": event.EventType,
		"item_id":    event.ItemID,
		"mgrp_code":  event.GroupCode,
	}).Debug("Published catalog event")

	return nil
}
