// Package prune trims old tick-history entries on its own cadence, keeping
// the history store bounded on long-running daemons.
package prune

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"tickd/internal/history"
	"tickd/internal/service"
	"tickd/pkg/logx"
)

const defaultRetention = 7 * 24 * time.Hour

type Options struct {
	// Retention is a Go duration string; entries older than now-retention
	// are removed. Defaults to 168h.
	Retention string `json:"retention,omitempty"`
}

type Service struct {
	service.Base

	store     history.Store
	retention time.Duration
}

func Factory(store history.Store, cadence string, options json.RawMessage) service.Factory {
	return func(c service.Context) (service.Service, error) {
		c.Options = options
		return New(c, store, cadence)
	}
}

func New(c service.Context, store history.Store, cadence string) (*Service, error) {
	if store == nil {
		return nil, errors.New("prune: history store required")
	}
	var opt Options
	if len(c.Options) > 0 {
		if err := json.Unmarshal(c.Options, &opt); err != nil {
			return nil, fmt.Errorf("prune options: %w", err)
		}
	}
	retention := defaultRetention
	if opt.Retention != "" {
		d, err := time.ParseDuration(opt.Retention)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("prune: invalid retention %q", opt.Retention)
		}
		retention = d
	}
	return &Service{Base: service.NewBase(c, cadence), store: store, retention: retention}, nil
}

func (s *Service) Run(ctx context.Context) error {
	cutoff := time.Now().Add(-s.retention)
	removed, err := s.store.Prune(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("prune history: %w", err)
	}
	if removed > 0 {
		s.Log().Info("history pruned", logx.Int("removed", removed), logx.Time("cutoff", cutoff))
	}
	return nil
}
