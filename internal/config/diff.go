package config

import (
	"bytes"
	"encoding/json"
	"sort"
)

// ChangedServices returns the names whose service sections differ between
// two configs: edited declarations, additions, and removals. Used on hot
// reload to restart only the affected services.
func ChangedServices(old, cur *Config) []string {
	names := map[string]struct{}{}
	if old != nil {
		for name := range old.Services {
			names[name] = struct{}{}
		}
	}
	if cur != nil {
		for name := range cur.Services {
			names[name] = struct{}{}
		}
	}

	var changed []string
	for name := range names {
		var a, b ServiceConfig
		var okA, okB bool
		if old != nil {
			a, okA = old.Services[name]
		}
		if cur != nil {
			b, okB = cur.Services[name]
		}
		if okA != okB || !sameSection(a, b) {
			changed = append(changed, name)
		}
	}
	sort.Strings(changed)
	return changed
}

func sameSection(a, b ServiceConfig) bool {
	ja, err := json.Marshal(a)
	if err != nil {
		return false
	}
	jb, err := json.Marshal(b)
	if err != nil {
		return false
	}
	return bytes.Equal(ja, jb)
}
