package observability

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

// NoOpObserver drops every event.
type NoOpObserver struct{}

func (NoOpObserver) OnEvent(ctx context.Context, event Event) {}

// MultiObserver forwards each event to every observer it holds, in order.
type MultiObserver struct {
	observers []Observer
}

// NewMultiObserver skips nil observers.
func NewMultiObserver(observers ...Observer) *MultiObserver {
	m := &MultiObserver{}
	for _, obs := range observers {
		if obs != nil {
			m.observers = append(m.observers, obs)
		}
	}
	return m
}

func (m *MultiObserver) OnEvent(ctx context.Context, event Event) {
	for _, obs := range m.observers {
		obs.OnEvent(ctx, event)
	}
}

var (
	registryMu sync.RWMutex
	registry   = map[string]Observer{
		"noop": NoOpObserver{},
		"slog": NewSlogObserver(slog.Default()),
	}
)

// GetObserver looks up one registered observer. "noop" and "slog" are always
// present; Setup rebinds "slog" to the configured logger.
func GetObserver(name string) (Observer, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	obs, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown observer: %s", name)
	}
	return obs, nil
}

// RegisterObserver adds or replaces a named observer.
func RegisterObserver(name string, observer Observer) {
	registryMu.Lock()
	defer registryMu.Unlock()

	registry[name] = observer
}

// Resolve turns a config value such as "slog" or "slog,journal" into a single
// Observer. An empty value resolves to "slog"; several names fan out through
// a MultiObserver.
func Resolve(names string) (Observer, error) {
	var found []Observer
	for _, name := range strings.Split(names, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		obs, err := GetObserver(name)
		if err != nil {
			return nil, err
		}
		found = append(found, obs)
	}

	switch len(found) {
	case 0:
		return GetObserver("slog")
	case 1:
		return found[0], nil
	default:
		return NewMultiObserver(found...), nil
	}
}
