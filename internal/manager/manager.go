package manager

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"tickd/internal/cadence"
	"tickd/internal/service"
	"tickd/pkg/logx"
)

// New builds a Manager over an immutable registry. The manager is usable
// immediately; services start only when Start/StartAll is called.
func New(reg *service.Registry, opts ...Option) *Manager {
	m := &Manager{
		reg:     reg,
		entries: map[string]*entry{},
		locks:   make(map[string]*sync.Mutex, reg.Len()),
	}
	for _, o := range opts {
		o(m)
	}
	if m.log.IsZero() {
		m.log = logx.Nop()
	}
	for _, name := range reg.Names() {
		m.locks[name] = &sync.Mutex{}
	}
	m.sup = newSupervisorFor(m.log)
	return m
}

// Start activates the named service: fresh instance via its factory, Start
// hook, then (if a cadence is set) an armed timer loop. Idempotent while the
// name is active. On any failure nothing is left behind: no entry, no timer.
func (m *Manager) Start(ctx context.Context, name string) error {
	lk := m.locks[name]
	if lk == nil {
		return fmt.Errorf("start %s: %w", name, ErrNotFound)
	}
	lk.Lock()
	defer lk.Unlock()

	m.mu.Lock()
	_, active := m.entries[name]
	m.mu.Unlock()
	if active {
		m.log.Debug("service already active", logx.String("service", name))
		return nil
	}

	factory, ok := m.reg.Lookup(name)
	if !ok {
		return fmt.Errorf("start %s: %w", name, ErrNotFound)
	}

	svc, err := factory(service.Context{Name: name, Log: m.log})
	if err != nil {
		return fmt.Errorf("start %s: %w: %w", name, ErrInstantiate, err)
	}
	if svc == nil {
		return fmt.Errorf("start %s: %w: factory returned nil", name, ErrInstantiate)
	}

	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("start %s: %w: %w", name, ErrStartHook, err)
	}

	// Cadence is read once here; changes after activation are not observed.
	spec := strings.TrimSpace(svc.Cadence())
	var sched cadence.Schedule
	if spec != "" {
		sched, err = cadence.Parse(spec)
		if err != nil {
			// Roll back the already-invoked Start hook.
			if stopErr := svc.Stop(ctx); stopErr != nil {
				m.log.Warn("rollback stop hook failed", logx.String("service", name), logx.Err(stopErr))
			}
			return fmt.Errorf("start %s: %w", name, err)
		}
	}

	loopCtx, cancel := context.WithCancel(m.sup.Context())
	e := &entry{
		name:    name,
		svc:     svc,
		spec:    spec,
		cancel:  cancel,
		done:    make(chan struct{}),
		failLog: rate.NewLimiter(rate.Every(10*time.Second), 3),
	}
	e.setState(StateStarting)

	// Registered before the loop is armed so Get works as soon as Start
	// returns. The per-name lock keeps a racing Stop serialized behind us.
	m.mu.Lock()
	m.entries[name] = e
	m.mu.Unlock()

	if sched != nil {
		first := sched.Next(time.Now())
		e.setNext(first)
		e.setState(StateActive)
		m.sup.Go("service:"+name, func(context.Context) error {
			return m.runLoop(loopCtx, e, sched)
		})
		m.log.Info("service started",
			logx.String("service", name),
			logx.String("cadence", spec),
			logx.Time("next", first),
		)
	} else {
		// Fire once: a single immediate Run, then the instance stays active
		// with no timer until it is explicitly stopped.
		e.setState(StateActive)
		m.sup.Go("service:"+name, func(context.Context) error {
			defer close(e.done)
			m.tick(loopCtx, e)
			return nil
		})
		m.log.Info("service started", logx.String("service", name), logx.String("cadence", "once"))
	}

	m.publish(EventServiceStarted, ServiceEvent{Name: name, Cadence: spec})
	return nil
}

// Stop deactivates the named service: cancel the timer so no future tick
// fires, wait out an in-flight Run, invoke the Stop hook, drop the entry.
// The entry is removed even when the hook fails, so a bad hook cannot wedge
// the name; the failure is still surfaced.
func (m *Manager) Stop(ctx context.Context, name string) error {
	lk := m.locks[name]
	if lk == nil {
		return fmt.Errorf("stop %s: %w", name, ErrNotFound)
	}
	lk.Lock()
	defer lk.Unlock()

	m.mu.Lock()
	e := m.entries[name]
	m.mu.Unlock()
	if e == nil {
		return fmt.Errorf("stop %s: %w", name, ErrNotFound)
	}

	e.setState(StateStopping)
	e.cancel()
	// An in-flight Run is never aborted; the loop drains it and exits.
	// After this receive no further tick for the name can fire.
	<-e.done

	hookErr := e.svc.Stop(ctx)

	m.mu.Lock()
	delete(m.entries, name)
	m.mu.Unlock()

	m.publish(EventServiceStopped, ServiceEvent{Name: name, Cadence: e.spec})
	if hookErr != nil {
		m.log.Warn("service stopped with failing hook", logx.String("service", name), logx.Err(hookErr))
		return fmt.Errorf("stop %s: %w: %w", name, ErrStopHook, hookErr)
	}
	m.log.Info("service stopped", logx.String("service", name), logx.Uint64("ticks", e.ticks.Load()))
	return nil
}

// StartAll starts every registered name in registry order. Failures are
// collected per name; one bad service does not prevent the rest.
func (m *Manager) StartAll(ctx context.Context) error {
	var errs []error
	for _, name := range m.reg.Names() {
		if err := m.Start(ctx, name); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// StopAll stops every currently active name, collecting failures. Names
// that disappear concurrently are skipped.
func (m *Manager) StopAll(ctx context.Context) error {
	m.mu.Lock()
	names := make([]string, 0, len(m.entries))
	for name := range m.entries {
		names = append(names, name)
	}
	m.mu.Unlock()
	sort.Strings(names)

	var errs []error
	for _, name := range names {
		if err := m.Stop(ctx, name); err != nil && !errors.Is(err, ErrNotFound) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Get returns the active instance for name, or nil. O(1) against the active
// table only; the registry is never consulted.
func (m *Manager) Get(name string) service.Service {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.entries[name]
	if e == nil {
		return nil
	}
	return e.svc
}

// Close tears the manager down: stop all active services, then wait for the
// supervised loops, bounded by ctx.
func (m *Manager) Close(ctx context.Context) error {
	stopErr := m.StopAll(ctx)
	supErr := m.sup.Stop(ctx)
	return errors.Join(stopErr, supErr)
}

func (m *Manager) publish(typ string, data any) {
	if m.bus == nil {
		return
	}
	m.bus.Publish(busEvent(typ, data))
}
