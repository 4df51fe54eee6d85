package memory_test

import (
	"context"
	"sync"
	"testing"

	"github.com/tailored-agentic-units/assistant/memory"
)

func TestCache_Bootstrap_IndexOnly(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, root, "memory/home.md", "lives in Seoul")
	writeTestFile(t, root, "schedule.json", "{}")

	cache := memory.NewCache(memory.NewFileStore(root))
	if err := cache.Bootstrap(context.Background()); err != nil {
		t.Fatalf("Bootstrap() error = %v", err)
	}

	if !cache.Has("memory/home.md") || !cache.Has("schedule.json") {
		t.Errorf("index incomplete: %v", cache.Keys())
	}
	if _, ok := cache.Get("memory/home.md"); ok {
		t.Error("Get() should return false before Resolve")
	}
}

func TestCache_Bootstrap_WithPrefix(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, root, "memory/home.md", "lives in Seoul")
	writeTestFile(t, root, "schedule.json", "{}")

	cache := memory.NewCache(memory.NewFileStore(root))
	if err := cache.Bootstrap(context.Background(), memory.NamespaceNotes); err != nil {
		t.Fatalf("Bootstrap() error = %v", err)
	}

	val, ok := cache.Get("memory/home.md")
	if !ok || string(val) != "lives in Seoul" {
		t.Errorf("Get(memory/home.md) = %q, %v", val, ok)
	}
	if _, ok := cache.Get("schedule.json"); ok {
		t.Error("schedule.json is outside the bootstrap prefix and must not be loaded")
	}
	if !cache.Has("schedule.json") {
		t.Error("schedule.json must still be indexed")
	}
}

func TestCache_Bootstrap_EmptyStore(t *testing.T) {
	cache := memory.NewCache(memory.NewFileStore(t.TempDir()))
	if err := cache.Bootstrap(context.Background(), memory.NamespaceNotes); err != nil {
		t.Fatalf("Bootstrap() error = %v", err)
	}
	if len(cache.Keys()) != 0 {
		t.Errorf("Keys() returned %d keys, want 0", len(cache.Keys()))
	}
}

func TestCache_Resolve(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, root, "memory/home.md", "original")

	cache := memory.NewCache(memory.NewFileStore(root))
	if err := cache.Resolve(context.Background(), "memory/home.md"); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	writeTestFile(t, root, "memory/home.md", "modified")
	if err := cache.Resolve(context.Background(), "memory/home.md"); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	val, _ := cache.Get("memory/home.md")
	if string(val) != "original" {
		t.Errorf("Resolve should skip cached keys, got %q", val)
	}
	if !cache.Has("memory/home.md") {
		t.Error("resolved key must be indexed")
	}
}

func TestCache_Get_DefensiveCopy(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, root, "memory/home.md", "abc")

	cache := memory.NewCache(memory.NewFileStore(root))
	cache.Resolve(context.Background(), "memory/home.md")

	val, _ := cache.Get("memory/home.md")
	val[0] = 'X'

	again, _ := cache.Get("memory/home.md")
	if string(again) != "abc" {
		t.Errorf("mutating a returned value changed the cache: %q", again)
	}
}

func TestCache_Entries(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, root, "memory/b.md", "b")
	writeTestFile(t, root, "memory/a.md", "a")
	writeTestFile(t, root, "schedule.json", "{}")

	cache := memory.NewCache(memory.NewFileStore(root))
	if err := cache.Bootstrap(context.Background(), memory.NamespaceNotes); err != nil {
		t.Fatalf("Bootstrap() error = %v", err)
	}

	entries := cache.Entries(memory.NamespaceNotes)
	if len(entries) != 2 {
		t.Fatalf("Entries() returned %d entries, want 2", len(entries))
	}
	if entries[0].Key != "memory/a.md" || entries[1].Key != "memory/b.md" {
		t.Errorf("Entries() order = [%s %s]", entries[0].Key, entries[1].Key)
	}
}

func TestCache_Concurrent(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, root, "memory/home.md", "x")
	cache := memory.NewCache(memory.NewFileStore(root))

	var wg sync.WaitGroup
	for range 50 {
		wg.Go(func() { cache.Resolve(context.Background(), "memory/home.md") })
		wg.Go(func() { cache.Get("memory/home.md") })
		wg.Go(func() { cache.Keys() })
		wg.Go(func() { cache.Entries(memory.NamespaceNotes) })
	}
	wg.Wait()
}
