// Package server exposes the assistant over HTTP: a Connect unary procedure
// that answers one prompt per request, and a health probe. Turns are
// serialized so that concurrent requests never overlap.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"connectrpc.com/connect"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/tailored-agentic-units/assistant/observability"
)

const (
	// ServiceName is the fully qualified Connect service name.
	ServiceName = "assistant.v1.AssistantService"
	// AskProcedure is the path of the unary Ask procedure.
	AskProcedure = "/" + ServiceName + "/Ask"
	// HealthPath answers GET with "ok".
	HealthPath = "/healthz"
)

// EventAsk is emitted for every Ask request.
const EventAsk observability.EventType = "server.ask"

// ErrEmptyPrompt is returned to callers that send a blank prompt.
var ErrEmptyPrompt = errors.New("prompt is empty")

// HandleFunc answers a single prompt.
type HandleFunc func(ctx context.Context, prompt string) (string, error)

// Server serves Ask and the health probe.
type Server struct {
	handle   HandleFunc
	observer observability.Observer
	mu       sync.Mutex
	router   chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithObserver sets the observer receiving request events.
func WithObserver(o observability.Observer) Option {
	return func(s *Server) { s.observer = o }
}

// New creates a Server answering prompts with handle.
func New(handle HandleFunc, opts ...Option) *Server {
	s := &Server{
		handle:   handle,
		observer: observability.NoOpObserver{},
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get(HealthPath, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Handle(AskProcedure, connect.NewUnaryHandler(AskProcedure, s.ask))
	s.router = r

	return s
}

// Handler returns the HTTP handler serving every route.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// serve runs one turn under the turn lock. A panicking turn is reported as an
// error and releases the lock.
func (s *Server) serve(ctx context.Context, prompt string) (reply string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("turn panicked: %v", p)
		}
	}()
	return s.handle(ctx, prompt)
}

func (s *Server) ask(ctx context.Context, req *connect.Request[wrapperspb.StringValue]) (*connect.Response[wrapperspb.StringValue], error) {
	prompt := req.Msg.GetValue()
	if strings.TrimSpace(prompt) == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, ErrEmptyPrompt)
	}

	start := time.Now()
	reply, err := s.serve(ctx, prompt)
	duration := time.Since(start)

	data := map[string]any{
		"prompt_length": len(prompt),
		"duration_ms":   duration.Milliseconds(),
	}
	level := observability.LevelInfo
	if err != nil {
		data["error"] = err.Error()
		level = observability.LevelWarning
	}
	s.observer.OnEvent(ctx, observability.Event{
		Type:      EventAsk,
		Level:     level,
		Timestamp: time.Now(),
		Source:    "server.Ask",
		Data:      data,
	})

	if err != nil {
		if ctx.Err() != nil {
			return nil, connect.NewError(connect.CodeCanceled, err)
		}
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	return connect.NewResponse(wrapperspb.String(reply)), nil
}
