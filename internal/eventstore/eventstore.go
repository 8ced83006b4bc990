package eventstore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var (
	ErrConcurrencyConflict = errors.New("concurrency conflict: version mismatch")
	ErrInvalidVersion      = errors.New("invalid version number")
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Event represents a domain event with full metadata
type Event struct {
	ID            int64                  `json:"id"`
	AggregateID   string                 `json:"aggregate_id"`
	AggregateType string                 `json:"aggregate_type"`
	EventType     string                 `json:"event_type"`
	EventData     jsoniter.RawMessage    `json:"event_data"`
	Metadata      map[string]interface{} `json:"metadata,omitempty"`
	Version       int                    `json:"version"`
	CreatedAt     time.Time              `json:"created_at"`
}

// NewEvent builds an unversioned event with a JSON encoded payload.
func NewEvent(eventType string, data interface{}) (Event, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return Event{}, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	return Event{EventType: eventType, EventData: payload}, nil
}

// Decode unmarshals the event payload into v.
func (e Event) Decode(v interface{}) error {
	return json.Unmarshal(e.EventData, v)
}

// EventStore is an append-only, process-local event log.
// Versions are tracked per aggregate, ids are global and strictly increasing.
type EventStore struct {
	mu       sync.RWMutex
	events   []Event
	versions map[string]int
	tracer   trace.Tracer
	now      func() time.Time
}

// Option configures an EventStore.
type Option func(*EventStore)

// WithTracerProvider sets the provider used for eventstore spans.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(es *EventStore) {
		es.tracer = tp.Tracer("minilibrary/eventstore")
	}
}

// WithClock overrides the time source used for CreatedAt.
func WithClock(now func() time.Time) Option {
	return func(es *EventStore) {
		es.now = now
	}
}

// NewEventStore creates an empty event store.
func NewEventStore(opts ...Option) *EventStore {
	es := &EventStore{
		versions: make(map[string]int),
		tracer:   otel.Tracer("minilibrary/eventstore"),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(es)
	}
	return es
}

// AppendEvents atomically appends events with optimistic concurrency control
func (es *EventStore) AppendEvents(ctx context.Context, aggregateID string, aggregateType string, expectedVersion int, events []Event) error {
	_, span := es.tracer.Start(ctx, "eventstore.append",
		trace.WithAttributes(
			attribute.String("aggregate.id", aggregateID),
			attribute.String("aggregate.type", aggregateType),
			attribute.Int("expected.version", expectedVersion),
			attribute.Int("event.count", len(events)),
		),
	)
	defer span.End()

	if expectedVersion < 0 {
		return ErrInvalidVersion
	}

	es.mu.Lock()
	defer es.mu.Unlock()

	currentVersion := es.versions[aggregateID]
	if currentVersion != expectedVersion {
		span.SetAttributes(
			attribute.Int("actual.version", currentVersion),
			attribute.Bool("conflict.detected", true),
		)
		return ErrConcurrencyConflict
	}

	nextID := int64(len(es.events)) + 1
	createdAt := es.now().UTC()
	for i, event := range events {
		event.ID = nextID + int64(i)
		event.AggregateID = aggregateID
		event.AggregateType = aggregateType
		event.Version = expectedVersion + i + 1
		event.CreatedAt = createdAt
		es.events = append(es.events, event)

		span.AddEvent("event.appended", trace.WithAttributes(
			attribute.Int64("event.id", event.ID),
			attribute.Int("event.version", event.Version),
			attribute.String("event.type", event.EventType),
		))
	}
	es.versions[aggregateID] = expectedVersion + len(events)

	span.SetAttributes(attribute.Bool("append.success", true))
	return nil
}

// LoadEvents retrieves all events for an aggregate with optional version range
func (es *EventStore) LoadEvents(ctx context.Context, aggregateID string, fromVersion, toVersion int) ([]Event, error) {
	_, span := es.tracer.Start(ctx, "eventstore.load",
		trace.WithAttributes(
			attribute.String("aggregate.id", aggregateID),
			attribute.Int("from.version", fromVersion),
			attribute.Int("to.version", toVersion),
		),
	)
	defer span.End()

	es.mu.RLock()
	defer es.mu.RUnlock()

	var events []Event
	for _, event := range es.events {
		if event.AggregateID != aggregateID || event.Version < fromVersion {
			continue
		}
		if toVersion > 0 && event.Version > toVersion {
			continue
		}
		events = append(events, event)
	}

	span.SetAttributes(attribute.Int("events.loaded", len(events)))
	return events, nil
}

// GetCurrentVersion returns the latest version for an aggregate
func (es *EventStore) GetCurrentVersion(ctx context.Context, aggregateID string) (int, error) {
	_, span := es.tracer.Start(ctx, "eventstore.get_version",
		trace.WithAttributes(
			attribute.String("aggregate.id", aggregateID),
		),
	)
	defer span.End()

	es.mu.RLock()
	version := es.versions[aggregateID]
	es.mu.RUnlock()

	span.SetAttributes(attribute.Int("current.version", version))
	return version, nil
}

// StreamEvents provides a cursor-based event stream for projections
func (es *EventStore) StreamEvents(ctx context.Context, fromID int64, batchSize int) ([]Event, error) {
	_, span := es.tracer.Start(ctx, "eventstore.stream",
		trace.WithAttributes(
			attribute.Int64("from.id", fromID),
			attribute.Int("batch.size", batchSize),
		),
	)
	defer span.End()

	if batchSize <= 0 {
		return nil, nil
	}

	es.mu.RLock()
	defer es.mu.RUnlock()

	// ids are 1-based positions in the log
	start := fromID
	if start < 0 {
		start = 0
	}
	if start >= int64(len(es.events)) {
		return nil, nil
	}
	end := start + int64(batchSize)
	if end > int64(len(es.events)) {
		end = int64(len(es.events))
	}

	events := make([]Event, end-start)
	copy(events, es.events[start:end])

	span.SetAttributes(attribute.Int("events.streamed", len(events)))
	return events, nil
}
