package manager

import (
	"context"
	"time"

	"tickd/internal/cadence"
	"tickd/internal/eventbus"
	"tickd/internal/history"
	"tickd/internal/runtime/supervisor"
	"tickd/pkg/logx"
)

func newSupervisorFor(log logx.Logger) *supervisor.Supervisor {
	return supervisor.New(context.Background(), supervisor.WithLogger(log))
}

func busEvent(typ string, data any) eventbus.Event {
	return eventbus.Event{Type: typ, Time: time.Now(), Data: data}
}

// runLoop is the per-service timer loop: one single-shot timer, re-armed
// after every tick from the post-Run "now". Runs until the entry's context
// is cancelled by Stop or manager teardown.
func (m *Manager) runLoop(ctx context.Context, e *entry, sched cadence.Schedule) error {
	defer close(e.done)

	next := sched.Next(time.Now())
	e.setNext(next)
	timer := time.NewTimer(time.Until(next))
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-timer.C:
			// A due timer and a concurrent cancel can both be ready; the
			// cancel must win so a stopped service never ticks again.
			if ctx.Err() != nil {
				return nil
			}
			m.tick(ctx, e)
			// Recompute from the new "now": an overrunning Run skips the
			// missed instants instead of building a backlog.
			next = sched.Next(time.Now())
			e.setNext(next)
			timer.Reset(time.Until(next))
		}
	}
}

// tick runs one invocation of the service's Run and records the outcome.
// A failure is surfaced to observers but never deactivates the service.
func (m *Manager) tick(ctx context.Context, e *entry) {
	start := time.Now()
	e.setPrev(start)

	err := e.svc.Run(ctx)
	dur := time.Since(start)
	e.ticks.Add(1)

	rec := history.Entry{Name: e.name, Started: start, Duration: dur}
	if err != nil {
		rec.Error = err.Error()
	}
	if m.hist != nil {
		if herr := m.hist.Append(ctx, rec); herr != nil && ctx.Err() == nil {
			m.log.Warn("history append failed", logx.String("service", e.name), logx.Err(herr))
		}
	}

	if err != nil {
		m.publish(EventTickFailed, TickEvent{Name: e.name, Started: start, Duration: dur, Error: err.Error()})
		if e.failLog.Allow() {
			m.log.Warn("service run failed", logx.String("service", e.name), logx.Duration("dur", dur), logx.Err(err))
		} else {
			m.log.Debug("service run failed (sampled)", logx.String("service", e.name), logx.Err(err))
		}
		return
	}

	m.publish(EventTickFinished, TickEvent{Name: e.name, Started: start, Duration: dur})
	// Avoid noisy logs for very frequent services: only elevate slow runs.
	if dur >= 750*time.Millisecond {
		m.log.Info("service run completed", logx.String("service", e.name), logx.Duration("dur", dur))
	} else {
		m.log.Debug("service run completed", logx.String("service", e.name), logx.Duration("dur", dur))
	}
}
