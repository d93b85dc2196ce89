package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"tickd/pkg/logx"
)

func entryAt(name string, started time.Time) Entry {
	return Entry{Name: name, Started: started, Duration: 5 * time.Millisecond}
}

func TestMemoryRingBounded(t *testing.T) {
	t.Parallel()
	s := newMemory(3)
	ctx := context.Background()
	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		if err := s.Append(ctx, entryAt("jobs.a", base.Add(time.Duration(i)*time.Second))); err != nil {
			t.Fatalf("Append error: %v", err)
		}
	}
	got, err := s.Recent(ctx, 0)
	if err != nil {
		t.Fatalf("Recent error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3 (ring bound)", len(got))
	}
	// Newest first.
	if !got[0].Started.After(got[1].Started) {
		t.Fatalf("Recent not newest-first: %v then %v", got[0].Started, got[1].Started)
	}
}

func TestMemoryPrune(t *testing.T) {
	t.Parallel()
	s := newMemory(10)
	ctx := context.Background()
	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		_ = s.Append(ctx, entryAt("jobs.a", base.Add(time.Duration(i)*time.Hour)))
	}
	removed, err := s.Prune(ctx, base.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("Prune error: %v", err)
	}
	if removed != 2 {
		t.Fatalf("removed = %d, want 2", removed)
	}
	got, _ := s.Recent(ctx, 0)
	if len(got) != 2 {
		t.Fatalf("remaining = %d, want 2", len(got))
	}
}

func TestFileStoreRoundtrip(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "history.jsonl")
	s, err := Open(Config{Driver: "file", Path: path}, logx.Nop())
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		if err := s.Append(ctx, entryAt("jobs.b", base.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatalf("Append error: %v", err)
		}
	}

	got, err := s.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Name != "jobs.b" {
		t.Fatalf("Name = %q", got[0].Name)
	}
	if !got[0].Started.Equal(base.Add(2 * time.Minute)) {
		t.Fatalf("newest Started = %v", got[0].Started)
	}
}

func TestFileStorePruneCompacts(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "history.jsonl")
	s, err := Open(Config{Driver: "file", Path: path}, logx.Nop())
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		_ = s.Append(ctx, entryAt("jobs.c", base.Add(time.Duration(i)*time.Hour)))
	}
	removed, err := s.Prune(ctx, base.Add(3*time.Hour))
	if err != nil {
		t.Fatalf("Prune error: %v", err)
	}
	if removed != 3 {
		t.Fatalf("removed = %d, want 3", removed)
	}

	got, err := s.Recent(ctx, 0)
	if err != nil {
		t.Fatalf("Recent error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("remaining = %d, want 1", len(got))
	}

	// Appends still work on the reopened handle.
	if err := s.Append(ctx, entryAt("jobs.c", base.Add(5*time.Hour))); err != nil {
		t.Fatalf("Append after prune: %v", err)
	}
	got, _ = s.Recent(ctx, 0)
	if len(got) != 2 {
		t.Fatalf("after append: %d, want 2", len(got))
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	t.Parallel()
	if _, err := Open(Config{Driver: "postgres"}, logx.Nop()); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}
