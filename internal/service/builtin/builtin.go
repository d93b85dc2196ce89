// Package builtin assembles the registry of bundled service types from a
// loaded config. Discovery of service types is deliberately static: the
// config names a type, this switch maps it to a factory.
package builtin

import (
	"fmt"

	"tickd/internal/config"
	"tickd/internal/history"
	"tickd/internal/service"
	"tickd/internal/service/builtin/heartbeat"
	"tickd/internal/service/builtin/prune"
)

// Registry builds an immutable registry from the config's services block.
// Disabled declarations are skipped entirely (not registered, so StartAll
// never touches them).
func Registry(cfg *config.Config, store history.Store) (*service.Registry, error) {
	factories := map[string]service.Factory{}
	for name, sc := range cfg.Services {
		if !sc.IsEnabled() {
			continue
		}
		switch sc.Type {
		case "heartbeat":
			factories[name] = heartbeat.Factory(sc.Cadence, sc.Options)
		case "history.prune":
			factories[name] = prune.Factory(store, sc.Cadence, sc.Options)
		default:
			return nil, fmt.Errorf("service %s: unknown type %q", name, sc.Type)
		}
	}
	return service.NewRegistry(factories), nil
}
