// internal/chaos/chaos.go
package chaos

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/kingabdulai001/The-mini-library-management-system/internal/eventstore"
)

// ErrInjected is returned by appends the injector decided to fail.
var ErrInjected = errors.New("chaos: injected journal failure")

// Journal is the event store surface faults are injected into.
type Journal interface {
	AppendEvents(ctx context.Context, aggregateID, aggregateType string, expectedVersion int, events []eventstore.Event) error
	GetCurrentVersion(ctx context.Context, aggregateID string) (int, error)
	StreamEvents(ctx context.Context, fromID int64, batchSize int) ([]eventstore.Event, error)
}

// FaultyJournal wraps a Journal and fails or throttles appends. Reads always
// pass through.
type FaultyJournal struct {
	Journal

	mu          sync.Mutex
	failNext    int
	blastRadius float64 // 0.0 to 1.0, share of appends that fail
	rng         *rand.Rand
	limiter     *rate.Limiter
	injected    int
	tracer      trace.Tracer
}

// Option configures a FaultyJournal.
type Option func(*FaultyJournal)

// WithBlastRadius fails roughly radius of all appends, drawn from a seeded
// generator so runs are repeatable.
func WithBlastRadius(radius float64, seed uint64) Option {
	return func(f *FaultyJournal) {
		f.blastRadius = radius
		f.rng = rand.New(rand.NewPCG(seed, seed))
	}
}

// WithAppendRate throttles appends to r per second with the given burst.
// An append whose wait would outlive its context fails.
func WithAppendRate(r rate.Limit, burst int) Option {
	return func(f *FaultyJournal) { f.limiter = rate.NewLimiter(r, burst) }
}

// WithTracerProvider overrides the global tracer provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(f *FaultyJournal) { f.tracer = tp.Tracer("minilibrary/chaos") }
}

// Wrap returns j with fault injection. With no options every call passes
// through.
func Wrap(j Journal, opts ...Option) *FaultyJournal {
	f := &FaultyJournal{
		Journal: j,
		tracer:  otel.Tracer("minilibrary/chaos"),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FailNext makes the next n appends fail.
func (f *FaultyJournal) FailNext(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failNext = n
}

// Injected reports how many appends have been failed so far.
func (f *FaultyJournal) Injected() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.injected
}

// AppendEvents forwards to the wrapped journal unless a fault fires.
func (f *FaultyJournal) AppendEvents(ctx context.Context, aggregateID, aggregateType string, expectedVersion int, events []eventstore.Event) error {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			f.mu.Lock()
			f.injected++
			f.mu.Unlock()
			f.record(ctx, "throttle", aggregateType)
			return fmt.Errorf("chaos: append throttled: %w", err)
		}
	}
	if f.shouldFail() {
		f.record(ctx, "failure", aggregateType)
		return ErrInjected
	}
	return f.Journal.AppendEvents(ctx, aggregateID, aggregateType, expectedVersion, events)
}

func (f *FaultyJournal) shouldFail() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	fail := false
	switch {
	case f.failNext > 0:
		f.failNext--
		fail = true
	case f.rng != nil && f.rng.Float64() < f.blastRadius:
		fail = true
	}
	if fail {
		f.injected++
	}
	return fail
}

func (f *FaultyJournal) record(ctx context.Context, fault, aggregateType string) {
	_, span := f.tracer.Start(ctx, "chaos.inject_fault", trace.WithAttributes(
		attribute.String("fault.type", fault),
		attribute.String("aggregate.type", aggregateType),
	))
	span.End()
}
