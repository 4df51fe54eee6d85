// Package schedule implements the manage_schedule tool: a flat JSON book of
// events keyed by date and time, persisted through a memory.Store with a
// whole-document read-modify-write on every change.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/tailored-agentic-units/assistant/memory"
	"github.com/tailored-agentic-units/assistant/observability"
)

// Store executes schedule requests against a persisted Book. It serializes
// its own read-modify-write cycles but does not lock against other processes
// sharing the file.
type Store struct {
	backend  memory.Store
	key      string
	norm     *Normalizer
	observer observability.Observer
	mu       sync.Mutex
}

// Option configures a Store.
type Option func(*Store)

// WithNormalizer sets the date normalizer (and with it the clock).
func WithNormalizer(n *Normalizer) Option {
	return func(s *Store) { s.norm = n }
}

// WithClock is shorthand for WithNormalizer(NewNormalizer(now)).
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.norm = NewNormalizer(now) }
}

// WithObserver sets the observer receiving schedule events.
func WithObserver(o observability.Observer) Option {
	return func(s *Store) { s.observer = o }
}

// NewStore creates a Store persisting the book under key in backend.
func NewStore(backend memory.Store, key string, opts ...Option) *Store {
	s := &Store{
		backend:  backend,
		key:      key,
		norm:     NewNormalizer(nil),
		observer: observability.NoOpObserver{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open creates a Store backed by the JSON file at path.
func Open(path string, opts ...Option) *Store {
	return NewStore(memory.NewFileStore(filepath.Dir(path)), filepath.Base(path), opts...)
}

// Execute runs one request. Domain failures come back as error payloads;
// Execute never panics and never returns a Go error.
func (s *Store) Execute(ctx context.Context, req Request) Result {
	switch req.Action {
	case ActionAdd:
		return s.add(ctx, req)
	case ActionGetToday:
		return s.today(ctx)
	default:
		s.emit(ctx, EventUnknownAction, observability.LevelWarning, map[string]any{"action": req.Action})
		return errorResult(MsgUnknownAction)
	}
}

func (s *Store) add(ctx context.Context, req Request) Result {
	event, clock := value(req.Event), value(req.Time)
	date := value(s.norm.Normalize(req.Date))
	if event == "" || date == "" || clock == "" {
		s.emit(ctx, EventRejected, observability.LevelInfo, map[string]any{
			"has_event": event != "",
			"has_date":  date != "",
			"has_time":  clock != "",
		})
		return errorResult(MsgMissingFields)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	book, err := s.load(ctx)
	if err != nil {
		return errorResult(fmt.Sprintf("failed to load schedule: %v", err))
	}

	book.Add(date, clock, event)
	if err := s.save(ctx, book); err != nil {
		s.emit(ctx, EventSaveFailed, observability.LevelError, map[string]any{"error": err.Error()})
		return errorResult(fmt.Sprintf("failed to save schedule: %v", err))
	}

	s.emit(ctx, EventAdd, observability.LevelInfo, map[string]any{
		"date":  date,
		"time":  clock,
		"count": book.Count(date, clock),
	})

	return Result{
		Status:  "success",
		Message: fmt.Sprintf("Added schedule for %s at %s: %s", date, clock, event),
	}
}

func (s *Store) today(ctx context.Context) Result {
	today := s.norm.Today()

	s.mu.Lock()
	book, err := s.load(ctx)
	s.mu.Unlock()
	if err != nil {
		return errorResult(fmt.Sprintf("failed to load schedule: %v", err))
	}

	events := book.Day(today)
	msg := MsgToday
	if len(events) == 0 {
		msg = MsgNoneToday
	}

	s.emit(ctx, EventGetToday, observability.LevelVerbose, map[string]any{
		"date":  today,
		"slots": len(events),
	})

	return Result{Date: today, Events: events, Message: msg}
}

// Book returns the persisted book. A missing or malformed file reads as empty.
func (s *Store) Book(ctx context.Context) (Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

func (s *Store) load(ctx context.Context) (Book, error) {
	entries, err := s.backend.Load(ctx, s.key)
	if err != nil {
		if errors.Is(err, memory.ErrKeyNotFound) {
			return make(Book), nil
		}
		return nil, err
	}

	book, err := decodeBook(entries[0].Value)
	if err != nil {
		s.emit(ctx, EventCorrupt, observability.LevelWarning, map[string]any{
			"key":   s.key,
			"error": err.Error(),
		})
		return make(Book), nil
	}
	return book, nil
}

func (s *Store) save(ctx context.Context, book Book) error {
	data, err := book.encode()
	if err != nil {
		return err
	}
	return s.backend.Save(ctx, memory.Entry{Key: s.key, Value: data})
}

func (s *Store) emit(ctx context.Context, t observability.EventType, level observability.Level, data map[string]any) {
	s.observer.OnEvent(ctx, observability.Event{
		Type:      t,
		Level:     level,
		Timestamp: time.Now(),
		Source:    "schedule.Store",
		Data:      data,
	})
}

func value(p *string) string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(*p)
}
