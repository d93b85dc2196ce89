package prune

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"tickd/internal/history"
	"tickd/internal/service"
	"tickd/pkg/logx"
)

func memStore(t *testing.T) history.Store {
	t.Helper()
	s, err := history.Open(history.Config{Driver: "memory"}, logx.Nop())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	return s
}

func TestRunPrunesOldEntries(t *testing.T) {
	t.Parallel()
	store := memStore(t)
	ctx := context.Background()
	old := history.Entry{Name: "jobs.a", Started: time.Now().Add(-48 * time.Hour)}
	fresh := history.Entry{Name: "jobs.a", Started: time.Now()}
	_ = store.Append(ctx, old)
	_ = store.Append(ctx, fresh)

	s, err := New(service.Context{Name: "jobs.prune", Options: json.RawMessage(`{"retention":"24h"}`)}, store, "@daily")
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if err := s.Run(ctx); err != nil {
		t.Fatalf("Run error: %v", err)
	}

	left, err := store.Recent(ctx, 0)
	if err != nil {
		t.Fatalf("Recent error: %v", err)
	}
	if len(left) != 1 {
		t.Fatalf("remaining = %d, want 1", len(left))
	}
}

func TestNewRequiresStore(t *testing.T) {
	t.Parallel()
	if _, err := New(service.Context{}, nil, ""); err == nil {
		t.Fatal("expected error for nil store")
	}
}

func TestNewRejectsBadRetention(t *testing.T) {
	t.Parallel()
	store := memStore(t)
	for _, raw := range []string{`{"retention":"later"}`, `{"retention":"-1h"}`} {
		if _, err := New(service.Context{Options: json.RawMessage(raw)}, store, ""); err == nil {
			t.Fatalf("expected error for retention %s", raw)
		}
	}
}
