package service

import (
	"context"
	"encoding/json"
	"sync"

	"tickd/pkg/logx"
)

// Service is the unit the manager schedules.
//
// The manager guarantees it never overlaps two Run invocations for the same
// instance, and that no Run is issued after Stop returns. Hooks may block on
// I/O; the manager imposes no timeout of its own.
type Service interface {
	// Start is invoked exactly once, immediately after construction and
	// before the first scheduled tick.
	Start(ctx context.Context) error

	// Stop is invoked when the manager deactivates the service. After it
	// returns no further Run invocations are issued.
	Stop(ctx context.Context) error

	// Run is invoked once per cadence tick.
	Run(ctx context.Context) error

	// Cadence returns the recurrence expression, or "" for fire-once.
	// Read once at activation; later changes are not observed.
	Cadence() string
}

// Context carries the collaborators a Factory needs to build an instance:
// the qualified name the service is being started under, a logger, and the
// service's raw config section (opaque to the manager).
type Context struct {
	Name    string
	Log     logx.Logger
	Options json.RawMessage
}

// Factory produces a fresh, fully initialized instance. Restart never reuses
// an instance; every activation goes through the factory again.
type Factory func(c Context) (Service, error)

// Base carries the common collaborator plumbing so concrete services only
// implement Run. It tracks its own started flag; the manager does not own or
// inspect it.
type Base struct {
	name    string
	log     logx.Logger
	cadence string

	mu      sync.Mutex
	running bool
}

func NewBase(c Context, cadence string) Base {
	log := c.Log
	if log.IsZero() {
		log = logx.Nop()
	}
	return Base{name: c.Name, log: log.With(logx.String("service", c.Name)), cadence: cadence}
}

func (b *Base) Name() string     { return b.name }
func (b *Base) Log() logx.Logger { return b.log }
func (b *Base) Cadence() string  { return b.cadence }

func (b *Base) Start(ctx context.Context) error {
	b.mu.Lock()
	b.running = true
	b.mu.Unlock()
	return nil
}

func (b *Base) Stop(ctx context.Context) error {
	b.mu.Lock()
	b.running = false
	b.mu.Unlock()
	return nil
}

// Running reports the service's own flag. This is the service's view of
// itself, independent of the manager's active table.
func (b *Base) Running() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.running
}
