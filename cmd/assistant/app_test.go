package main

import (
	"bytes"
	"context"
	"io"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tailored-agentic-units/assistant/journal"
	"github.com/tailored-agentic-units/assistant/server"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp(strings.NewReader(""), &out)
	app.ErrWriter = io.Discard
	err := app.RunContext(context.Background(), append([]string{"assistant"}, args...))
	return out.String(), err
}

func TestAsk_Remote(t *testing.T) {
	srv := server.New(func(ctx context.Context, prompt string) (string, error) {
		return "echo: " + prompt, nil
	})
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	out, err := run(t, "ask", "--remote", ts.URL, "--prompt", "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "echo: hello\n" {
		t.Errorf("got %q, want %q", out, "echo: hello\n")
	}
}

func TestAsk_RemoteEmptyPrompt(t *testing.T) {
	srv := server.New(func(ctx context.Context, prompt string) (string, error) {
		return "unreachable", nil
	})
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	if _, err := run(t, "ask", "--remote", ts.URL, "--prompt", "  "); err == nil {
		t.Fatal("expected error for blank prompt")
	}
}

func TestHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")

	j, err := journal.Open(path)
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	turns := []*journal.Turn{
		{SessionID: "s1", Input: "What's the weather in Seoul?", ToolName: "get_weather",
			ToolArguments: `{"city":"Seoul"}`, ToolResult: `{"temp":21}`, Reply: "It's 21°C in Seoul."},
		{SessionID: "s2", Input: "hi", Error: "upstream unavailable"},
	}
	for _, turn := range turns {
		if err := j.Record(context.Background(), turn); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	j.Close()

	out, err := run(t, "--journal", path, "history")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{
		"You: What's the weather in Seoul?",
		`tool: get_weather({"city":"Seoul"}) -> {"temp":21}`,
		"AI: It's 21°C in Seoul.",
		"You: hi",
		"Error: upstream unavailable",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "Seoul?") > strings.Index(out, "You: hi") {
		t.Error("expected oldest turn first")
	}
}

func TestHistory_Limit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")

	j, err := journal.Open(path)
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	for _, in := range []string{"first", "second", "third"} {
		if err := j.Record(context.Background(), &journal.Turn{Input: in, Reply: "ok"}); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	j.Close()

	out, err := run(t, "--journal", path, "history", "--limit", "1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(out, "first") || !strings.Contains(out, "third") {
		t.Errorf("expected only the newest turn, got:\n%s", out)
	}
}

func TestHistory_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")

	out, err := run(t, "--journal", path, "history")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "No turns recorded.\n" {
		t.Errorf("got %q", out)
	}
}

func TestHistory_Disabled(t *testing.T) {
	if _, err := run(t, "history"); err == nil {
		t.Fatal("expected error when journal is disabled")
	}
}
