// internal/catalog/implementation.go
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"

	"github.com/kingabdulai001/The-mini-library-management-system/internal/eventstore"
)

const instrumentationName = "minilibrary/catalog"

const (
	opAddBook      = "add_book"
	opUpdateBook   = "update_book"
	opDeleteBook   = "delete_book"
	opSearchBooks  = "search_books"
	opAddMember    = "add_member"
	opUpdateMember = "update_member"
	opDeleteMember = "delete_member"
	opBorrowBook   = "borrow_book"
	opReturnBook   = "return_book"
)

type bookRecord struct {
	book   Book
	stream uuid.UUID
}

type memberRecord struct {
	member Member
	stream uuid.UUID
}

// Journal is the append-only event log behind the catalog.
type Journal interface {
	AppendEvents(ctx context.Context, aggregateID, aggregateType string, expectedVersion int, events []eventstore.Event) error
	GetCurrentVersion(ctx context.Context, aggregateID string) (int, error)
	StreamEvents(ctx context.Context, fromID int64, batchSize int) ([]eventstore.Event, error)
}

type loanKey struct {
	memberID string
	isbn     string
}

// service implements the Service interface. A single mutex guards every
// collection; mutations hold it across validation, journal append and apply.
type service struct {
	mu          sync.RWMutex
	books       map[string]*bookRecord
	bookOrder   []string
	members     map[string]*memberRecord
	memberOrder []string
	loans       map[loanKey]uuid.UUID

	eventStore Journal
	logger     *slog.Logger
	tracer     trace.Tracer
	operations metric.Int64Counter
}

type options struct {
	eventStore     Journal
	logger         *slog.Logger
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
}

// Option configures the catalog service.
type Option func(*options)

// WithEventStore sets the journal that successful mutations are appended to.
func WithEventStore(es Journal) Option {
	return func(o *options) { o.eventStore = es }
}

// WithLogger sets the structured logger. The default discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithTracerProvider overrides the global tracer provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) { o.tracerProvider = tp }
}

// WithMeterProvider overrides the global meter provider.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *options) { o.meterProvider = mp }
}

// NewService creates a new, empty catalog service instance.
func NewService(opts ...Option) Service {
	o := options{
		logger:         slog.New(slog.DiscardHandler),
		tracerProvider: otel.GetTracerProvider(),
		meterProvider:  otel.GetMeterProvider(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.eventStore == nil {
		o.eventStore = eventstore.NewEventStore(eventstore.WithTracerProvider(o.tracerProvider))
	}

	operations, err := o.meterProvider.Meter(instrumentationName).Int64Counter(
		"library.catalog.operations",
		metric.WithDescription("Catalog operations by outcome"),
	)
	if err != nil {
		o.logger.Warn("operation counter unavailable", slog.Any("error", err))
		operations = noop.Int64Counter{}
	}

	return &service{
		books:      make(map[string]*bookRecord),
		members:    make(map[string]*memberRecord),
		loans:      make(map[loanKey]uuid.UUID),
		eventStore: o.eventStore,
		logger:     o.logger,
		tracer:     o.tracerProvider.Tracer(instrumentationName),
		operations: operations,
	}
}

// ------------------ Books ------------------

// AddBook creates a new book with every copy available.
func (s *service) AddBook(ctx context.Context, isbn, title, author string, genre Genre, totalCopies int) (book Book, err error) {
	attrs := []attribute.KeyValue{attribute.String("book.isbn", isbn)}
	ctx, span := s.start(ctx, opAddBook, attrs)
	defer func() { s.finish(ctx, span, opAddBook, err, attrs) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.books[isbn]; exists {
		return Book{}, ErrBookExists
	}
	if !genre.Valid() {
		return Book{}, invalidGenreError()
	}
	if totalCopies < 0 {
		return Book{}, ErrNegativeCopies
	}

	record := &bookRecord{
		book: Book{
			ISBN:            isbn,
			Title:           title,
			Author:          author,
			Genre:           genre,
			TotalCopies:     totalCopies,
			AvailableCopies: totalCopies,
			Borrowers:       []string{},
		},
		stream: uuid.New(),
	}
	event := BookAddedEvent{ISBN: isbn, Title: title, Author: author, Genre: genre, TotalCopies: totalCopies}
	if err := s.record(ctx, AggregateBook, record.stream, EventBookAdded, event); err != nil {
		return Book{}, err
	}

	s.books[isbn] = record
	s.bookOrder = append(s.bookOrder, isbn)
	return record.book.clone(), nil
}

// GetBook retrieves a book by its ISBN.
func (s *service) GetBook(ctx context.Context, isbn string) (Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.books[isbn]
	if !ok {
		return Book{}, ErrBookNotFound
	}
	return record.book.clone(), nil
}

// UpdateBook applies patch to a book. The patch is validated as a whole
// before any field changes.
func (s *service) UpdateBook(ctx context.Context, isbn string, patch BookPatch) (book Book, err error) {
	attrs := []attribute.KeyValue{attribute.String("book.isbn", isbn)}
	ctx, span := s.start(ctx, opUpdateBook, attrs)
	defer func() { s.finish(ctx, span, opUpdateBook, err, attrs) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.books[isbn]
	if !ok {
		return Book{}, ErrBookNotFound
	}
	if err := patch.validate(); err != nil {
		return Book{}, err
	}
	if err := s.record(ctx, AggregateBook, record.stream, EventBookUpdated, BookUpdatedEvent{ISBN: isbn, Patch: patch}); err != nil {
		return Book{}, err
	}

	patch.apply(&record.book)
	return record.book.clone(), nil
}

// DeleteBook removes a book nobody is holding.
func (s *service) DeleteBook(ctx context.Context, isbn string) (err error) {
	attrs := []attribute.KeyValue{attribute.String("book.isbn", isbn)}
	ctx, span := s.start(ctx, opDeleteBook, attrs)
	defer func() { s.finish(ctx, span, opDeleteBook, err, attrs) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.books[isbn]
	if !ok {
		return ErrBookNotFound
	}
	if len(record.book.Borrowers) > 0 {
		return ErrBookBorrowed
	}
	if err := s.record(ctx, AggregateBook, record.stream, EventBookDeleted, BookDeletedEvent{ISBN: isbn}); err != nil {
		return err
	}

	delete(s.books, isbn)
	s.bookOrder = removeValue(s.bookOrder, isbn)
	return nil
}

// SearchBooks returns the books whose title or author contains keyword,
// ignoring case. Unknown fields match nothing.
func (s *service) SearchBooks(ctx context.Context, field SearchField, keyword string) []Book {
	attrs := []attribute.KeyValue{
		attribute.String("search.field", string(field)),
		attribute.String("search.keyword", keyword),
	}
	ctx, span := s.start(ctx, opSearchBooks, attrs)

	s.mu.RLock()
	needle := strings.ToLower(keyword)
	results := []Book{}
	for _, isbn := range s.bookOrder {
		book := s.books[isbn].book
		var haystack string
		switch field {
		case SearchByTitle:
			haystack = book.Title
		case SearchByAuthor:
			haystack = book.Author
		default:
			continue
		}
		if strings.Contains(strings.ToLower(haystack), needle) {
			results = append(results, book.clone())
		}
	}
	s.mu.RUnlock()

	span.SetAttributes(attribute.Int("search.results", len(results)))
	s.finish(ctx, span, opSearchBooks, nil, attrs)
	return results
}

// ------------------ Members ------------------

// AddMember registers a new member with nothing borrowed.
func (s *service) AddMember(ctx context.Context, id, name, email string) (member Member, err error) {
	attrs := []attribute.KeyValue{attribute.String("member.id", id)}
	ctx, span := s.start(ctx, opAddMember, attrs)
	defer func() { s.finish(ctx, span, opAddMember, err, attrs) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.members[id]; exists {
		return Member{}, ErrMemberExists
	}

	record := &memberRecord{
		member: Member{ID: id, Name: name, Email: email, Borrowed: []string{}},
		stream: uuid.New(),
	}
	if err := s.record(ctx, AggregateMember, record.stream, EventMemberAdded, MemberAddedEvent{ID: id, Name: name, Email: email}); err != nil {
		return Member{}, err
	}

	s.members[id] = record
	s.memberOrder = append(s.memberOrder, id)
	return record.member.clone(), nil
}

// GetMember retrieves a member by their ID.
func (s *service) GetMember(ctx context.Context, id string) (Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.members[id]
	if !ok {
		return Member{}, ErrMemberNotFound
	}
	return record.member.clone(), nil
}

// UpdateMember applies patch to a member.
func (s *service) UpdateMember(ctx context.Context, id string, patch MemberPatch) (member Member, err error) {
	attrs := []attribute.KeyValue{attribute.String("member.id", id)}
	ctx, span := s.start(ctx, opUpdateMember, attrs)
	defer func() { s.finish(ctx, span, opUpdateMember, err, attrs) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.members[id]
	if !ok {
		return Member{}, ErrMemberNotFound
	}
	if err := s.record(ctx, AggregateMember, record.stream, EventMemberUpdated, MemberUpdatedEvent{ID: id, Patch: patch}); err != nil {
		return Member{}, err
	}

	patch.apply(&record.member)
	return record.member.clone(), nil
}

// DeleteMember removes a member holding no books.
func (s *service) DeleteMember(ctx context.Context, id string) (err error) {
	attrs := []attribute.KeyValue{attribute.String("member.id", id)}
	ctx, span := s.start(ctx, opDeleteMember, attrs)
	defer func() { s.finish(ctx, span, opDeleteMember, err, attrs) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.members[id]
	if !ok {
		return ErrMemberNotFound
	}
	if len(record.member.Borrowed) > 0 {
		return ErrMemberHasBooks
	}
	if err := s.record(ctx, AggregateMember, record.stream, EventMemberDeleted, MemberDeletedEvent{ID: id}); err != nil {
		return err
	}

	delete(s.members, id)
	s.memberOrder = removeValue(s.memberOrder, id)
	return nil
}

// ------------------ Lookups ------------------

// Books returns every book in insertion order.
func (s *service) Books(ctx context.Context) []Book {
	s.mu.RLock()
	defer s.mu.RUnlock()

	books := make([]Book, 0, len(s.bookOrder))
	for _, isbn := range s.bookOrder {
		books = append(books, s.books[isbn].book.clone())
	}
	return books
}

// Members returns every member in insertion order.
func (s *service) Members(ctx context.Context) []Member {
	s.mu.RLock()
	defer s.mu.RUnlock()

	members := make([]Member, 0, len(s.memberOrder))
	for _, id := range s.memberOrder {
		members = append(members, s.members[id].member.clone())
	}
	return members
}

// Genres returns the genre registry.
func (s *service) Genres() []Genre { return Genres() }

// BorrowedBooks lists the ISBNs a member holds. Unknown members hold nothing.
func (s *service) BorrowedBooks(ctx context.Context, memberID string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.members[memberID]
	if !ok {
		return []string{}
	}
	return slices.Clone(record.member.Borrowed)
}

// History returns the full journal in append order.
func (s *service) History(ctx context.Context) ([]eventstore.Event, error) {
	const batchSize = 100

	var (
		history []eventstore.Event
		cursor  int64
	)
	for {
		batch, err := s.eventStore.StreamEvents(ctx, cursor, batchSize)
		if err != nil {
			return nil, fmt.Errorf("stream events: %w", err)
		}
		if len(batch) == 0 {
			return history, nil
		}
		history = append(history, batch...)
		cursor = batch[len(batch)-1].ID
	}
}

// ------------------ Helpers ------------------

// record appends a single event to the aggregate's stream at its current version.
func (s *service) record(ctx context.Context, aggregateType string, stream uuid.UUID, eventType string, payload interface{}) error {
	event, err := eventstore.NewEvent(eventType, payload)
	if err != nil {
		return err
	}

	aggregateID := stream.String()
	version, err := s.eventStore.GetCurrentVersion(ctx, aggregateID)
	if err != nil {
		return fmt.Errorf("get %s version: %w", aggregateType, err)
	}
	if err := s.eventStore.AppendEvents(ctx, aggregateID, aggregateType, version, []eventstore.Event{event}); err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}
	return nil
}

func (s *service) start(ctx context.Context, op string, attrs []attribute.KeyValue) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "catalog."+op, trace.WithAttributes(attrs...))
}

func (s *service) finish(ctx context.Context, span trace.Span, op string, err error, attrs []attribute.KeyValue) {
	defer span.End()

	outcome := "ok"
	logAttrs := make([]any, 0, len(attrs)+2)
	logAttrs = append(logAttrs, slog.String("operation", op))
	for _, kv := range attrs {
		logAttrs = append(logAttrs, slog.String(string(kv.Key), kv.Value.Emit()))
	}

	if err != nil {
		outcome = KindOf(err).String()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if KindOf(err) == KindUnknown {
			s.logger.ErrorContext(ctx, "catalog operation failed", append(logAttrs, slog.Any("error", err))...)
		} else {
			s.logger.DebugContext(ctx, "catalog operation rejected", append(logAttrs, slog.String("reason", err.Error()))...)
		}
	} else if op != opSearchBooks {
		s.logger.InfoContext(ctx, "catalog operation applied", logAttrs...)
	}

	span.SetAttributes(attribute.String("outcome", outcome))
	s.operations.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", op),
		attribute.String("outcome", outcome),
	))
}

func removeValue(values []string, v string) []string {
	if i := slices.Index(values, v); i >= 0 {
		return slices.Delete(values, i, i+1)
	}
	return values
}
