package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

const sampleYAML = `
logging:
  level: debug
  console: true
services:
  jobs.heartbeat:
    type: heartbeat
    cadence: "*/5 * * * * *"
    options:
      message: "still here"
  jobs.once:
    type: heartbeat
    enabled: false
history:
  driver: sqlite
  path: ./data/history.db
  busy_timeout: 2s
`

func TestParseYAML(t *testing.T) {
	t.Parallel()
	m := NewManager(writeConfig(t, "config.yaml", sampleYAML))
	cfg, err := m.Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Logging.Level != "debug" || !cfg.Logging.Console {
		t.Fatalf("Logging = %+v", cfg.Logging)
	}

	hb, ok := cfg.Services["jobs.heartbeat"]
	if !ok {
		t.Fatal("jobs.heartbeat missing")
	}
	if hb.Type != "heartbeat" || hb.Cadence != "*/5 * * * * *" {
		t.Fatalf("heartbeat = %+v", hb)
	}
	if !hb.IsEnabled() {
		t.Fatal("omitted enabled should default to true")
	}
	if cfg.Services["jobs.once"].IsEnabled() {
		t.Fatal("explicit enabled: false not honored")
	}

	hc, err := cfg.HistoryStore()
	if err != nil {
		t.Fatalf("HistoryStore error: %v", err)
	}
	if hc.Driver != "sqlite" || hc.BusyTimeout != 2*time.Second {
		t.Fatalf("history = %+v", hc)
	}

	if m.Get() != cfg {
		t.Fatal("Get did not return committed config")
	}
}

func TestParseRejectsUnknownFields(t *testing.T) {
	t.Parallel()
	m := NewManager(writeConfig(t, "config.yaml", "loging:\n  level: info\n"))
	if _, err := m.Parse(); err == nil {
		t.Fatal("expected error for unknown top-level field")
	}
}

func TestParseRejectsTrailingJSON(t *testing.T) {
	t.Parallel()
	m := NewManager(writeConfig(t, "config.json", `{"services":{}}{"services":{}}`))
	if _, err := m.Parse(); err == nil {
		t.Fatal("expected error for concatenated JSON")
	}
}

func TestParseDurationField(t *testing.T) {
	t.Parallel()
	tests := []struct {
		raw     string
		want    time.Duration
		wantErr bool
	}{
		{raw: "", want: 0},
		{raw: "2h30m", want: 2*time.Hour + 30*time.Minute},
		{raw: "-5s", wantErr: true},
		{raw: "soon", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseDurationField("x", tt.raw)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("ParseDurationField(%q): expected error", tt.raw)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseDurationField(%q) error: %v", tt.raw, err)
		}
		if got != tt.want {
			t.Fatalf("ParseDurationField(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestChangedServices(t *testing.T) {
	t.Parallel()
	old := &Config{Services: map[string]ServiceConfig{
		"jobs.a": {Type: "heartbeat", Cadence: "@every 5s"},
		"jobs.b": {Type: "heartbeat"},
		"jobs.c": {Type: "heartbeat"},
	}}
	cur := &Config{Services: map[string]ServiceConfig{
		"jobs.a": {Type: "heartbeat", Cadence: "@every 10s"}, // edited
		"jobs.b": {Type: "heartbeat"},                        // unchanged
		"jobs.d": {Type: "heartbeat"},                        // added
	}}

	got := ChangedServices(old, cur)
	want := []string{"jobs.a", "jobs.c", "jobs.d"}
	if len(got) != len(want) {
		t.Fatalf("ChangedServices = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ChangedServices = %v, want %v", got, want)
		}
	}
}

func TestSubscribePublish(t *testing.T) {
	t.Parallel()
	m := NewManager(writeConfig(t, "config.json", `{"services":{}}`))
	if _, err := m.Load(); err != nil {
		t.Fatalf("Load error: %v", err)
	}

	ch := m.Subscribe(1)
	defer m.Unsubscribe(ch)

	next := &Config{Services: map[string]ServiceConfig{"jobs.x": {Type: "heartbeat"}}}
	m.Commit(next)
	m.publish(next)

	select {
	case got := <-ch:
		if got != next {
			t.Fatal("subscriber received wrong config")
		}
	case <-time.After(time.Second):
		t.Fatal("subscriber never received config")
	}
}
