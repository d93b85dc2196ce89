package history

import (
	"context"
	"errors"
	"strings"
	"time"

	"tickd/pkg/logx"
)

// Entry records one tick outcome. Keep it compact and schema-stable.
type Entry struct {
	Name     string        `json:"name"`
	Started  time.Time     `json:"started"`
	Duration time.Duration `json:"duration"`
	Error    string        `json:"error,omitempty"`
}

// Store is the minimal persistence API used by the manager and the pruner
// service.
type Store interface {
	Append(ctx context.Context, e Entry) error
	// Recent returns up to limit entries, newest first.
	Recent(ctx context.Context, limit int) ([]Entry, error)
	// Prune removes entries started before cutoff and reports how many went.
	Prune(ctx context.Context, cutoff time.Time) (int, error)
	Close() error
}

// Config configures the history store.
//
// If Driver is empty, the in-memory ring is used.
type Config struct {
	Driver      string
	Path        string        // file and sqlite drivers
	MemorySize  int           // memory driver ring size; 0 means default
	BusyTimeout time.Duration // sqlite only; 0 means default
}

const defaultMemorySize = 200

// Open initializes the configured store.
func Open(cfg Config, log logx.Logger) (Store, error) {
	if log.IsZero() {
		log = logx.Nop()
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", "memory":
		return newMemory(cfg.MemorySize), nil
	case "file":
		return openFile(cfg, log)
	case "sqlite", "sqlite3":
		return openSQLite(cfg, log)
	default:
		return nil, errors.New("unknown history driver: " + cfg.Driver)
	}
}
