// Package heartbeat is a minimal background service: each tick it bumps a
// counter and logs a liveness line. Useful as a deployment smoke check and
// as the reference service for the manager's tests.
package heartbeat

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"

	"tickd/internal/service"
	"tickd/pkg/logx"
)

type Options struct {
	// Message is logged on every tick. Defaults to "alive".
	Message string `json:"message,omitempty"`
}

type Service struct {
	service.Base

	msg   string
	ticks atomic.Uint64
}

// Factory binds the declared cadence and options; the manager supplies the
// name and logger at activation time.
func Factory(cadence string, options json.RawMessage) service.Factory {
	return func(c service.Context) (service.Service, error) {
		c.Options = options
		return New(c, cadence)
	}
}

func New(c service.Context, cadence string) (*Service, error) {
	var opt Options
	if len(c.Options) > 0 {
		if err := json.Unmarshal(c.Options, &opt); err != nil {
			return nil, fmt.Errorf("heartbeat options: %w", err)
		}
	}
	if opt.Message == "" {
		opt.Message = "alive"
	}
	return &Service{Base: service.NewBase(c, cadence), msg: opt.Message}, nil
}

func (s *Service) Run(ctx context.Context) error {
	n := s.ticks.Add(1)
	s.Log().Debug("heartbeat", logx.String("message", s.msg), logx.Uint64("tick", n))
	return nil
}

// Ticks reports how many times Run has completed.
func (s *Service) Ticks() uint64 { return s.ticks.Load() }
