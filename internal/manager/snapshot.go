package manager

import (
	"sort"
	"time"

	"tickd/internal/runtime/supervisor"
)

// EntryInfo is a point-in-time view of one active-table row.
type EntryInfo struct {
	Name    string    `json:"name"`
	State   string    `json:"state"`
	Cadence string    `json:"cadence,omitempty"`
	Ticks   uint64    `json:"ticks"`
	Prev    time.Time `json:"prev,omitzero"`
	Next    time.Time `json:"next,omitzero"`
}

// Snapshot is intended for observability/debug output, not synchronization.
type Snapshot struct {
	Registered int                         `json:"registered"`
	Active     []EntryInfo                 `json:"active"`
	Goroutines []supervisor.GoroutineStats `json:"goroutines,omitempty"`
}

func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	items := make([]EntryInfo, 0, len(m.entries))
	for _, e := range m.entries {
		prev, next := e.times()
		items = append(items, EntryInfo{
			Name:    e.name,
			State:   e.getState().String(),
			Cadence: e.spec,
			Ticks:   e.ticks.Load(),
			Prev:    prev,
			Next:    next,
		})
	}
	m.mu.Unlock()

	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return Snapshot{
		Registered: m.reg.Len(),
		Active:     items,
		Goroutines: m.sup.Snapshot(),
	}
}
