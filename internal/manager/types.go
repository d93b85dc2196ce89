package manager

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"tickd/internal/eventbus"
	"tickd/internal/history"
	"tickd/internal/runtime/supervisor"
	"tickd/internal/service"
	"tickd/pkg/logx"
)

// State of an active-table entry. Idle and Removed are implicit: an entry
// for the name simply does not exist.
type State int32

const (
	StateStarting State = iota
	StateActive
	StateStopping
)

func (s State) String() string {
	switch s {
	case StateStarting:
		return "starting"
	case StateActive:
		return "active"
	case StateStopping:
		return "stopping"
	default:
		return "unknown"
	}
}

// entry is one row of the active table.
type entry struct {
	name string
	svc  service.Service
	spec string // normalized cadence; "" = fire once

	state atomic.Int32

	cancel context.CancelFunc
	done   chan struct{} // closed when the tick loop (or one-shot run) exits

	ticks atomic.Uint64

	timesMu sync.Mutex
	prev    time.Time
	next    time.Time

	// failLog samples repeated run-failure logs so a fast failing cadence
	// cannot flood the sinks. Failures are still recorded and published.
	failLog *rate.Limiter
}

func (e *entry) setState(s State) { e.state.Store(int32(s)) }
func (e *entry) getState() State  { return State(e.state.Load()) }

func (e *entry) setPrev(t time.Time) {
	e.timesMu.Lock()
	e.prev = t
	e.timesMu.Unlock()
}

func (e *entry) setNext(t time.Time) {
	e.timesMu.Lock()
	e.next = t
	e.timesMu.Unlock()
}

func (e *entry) times() (prev, next time.Time) {
	e.timesMu.Lock()
	defer e.timesMu.Unlock()
	return e.prev, e.next
}

// Manager owns the registry of known services and the active table.
type Manager struct {
	log  logx.Logger
	reg  *service.Registry
	bus  eventbus.Bus
	hist history.Store
	sup  *supervisor.Supervisor

	// locks serializes Start/Stop per registered name. Built once at
	// construction from the immutable registry, so no map locking is needed.
	locks map[string]*sync.Mutex

	mu      sync.Mutex
	entries map[string]*entry
}

type Option func(*Manager)

func WithLogger(log logx.Logger) Option {
	return func(m *Manager) { m.log = log }
}

func WithBus(bus eventbus.Bus) Option {
	return func(m *Manager) { m.bus = bus }
}

func WithHistory(store history.Store) Option {
	return func(m *Manager) { m.hist = store }
}

// Event payloads published on the bus.

const (
	EventServiceStarted = "service.started"
	EventServiceStopped = "service.stopped"
	EventTickFinished   = "tick.finished"
	EventTickFailed     = "tick.failed"
)

type ServiceEvent struct {
	Name    string `json:"name"`
	Cadence string `json:"cadence,omitempty"`
}

type TickEvent struct {
	Name     string        `json:"name"`
	Started  time.Time     `json:"started"`
	Duration time.Duration `json:"duration"`
	Error    string        `json:"error,omitempty"`
}
