package service

import (
	"context"
	"testing"
)

func TestRegistryNamesSorted(t *testing.T) {
	t.Parallel()
	nop := func(c Context) (Service, error) { return nil, nil }
	r := NewRegistry(map[string]Factory{
		"jobs.b": nop,
		"jobs.a": nop,
		"jobs.c": nop,
	})
	names := r.Names()
	want := []string{"jobs.a", "jobs.b", "jobs.c"}
	if len(names) != len(want) {
		t.Fatalf("Names() = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("Names() = %v, want %v", names, want)
		}
	}
	if !r.Has("jobs.b") {
		t.Fatal("Has(jobs.b) = false")
	}
	if r.Has("jobs.z") {
		t.Fatal("Has(jobs.z) = true")
	}
}

func TestRegistrySkipsNilFactories(t *testing.T) {
	t.Parallel()
	r := NewRegistry(map[string]Factory{"jobs.nil": nil})
	if r.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", r.Len())
	}
	if _, ok := r.Lookup("jobs.nil"); ok {
		t.Fatal("Lookup returned a nil factory")
	}
}

func TestBaseLifecycleFlag(t *testing.T) {
	t.Parallel()
	b := NewBase(Context{Name: "jobs.x"}, "@every 1s")
	if b.Running() {
		t.Fatal("fresh Base reports running")
	}
	if err := b.Start(context.Background()); err != nil {
		t.Fatalf("Start error: %v", err)
	}
	if !b.Running() {
		t.Fatal("Base not running after Start")
	}
	if err := b.Stop(context.Background()); err != nil {
		t.Fatalf("Stop error: %v", err)
	}
	if b.Running() {
		t.Fatal("Base still running after Stop")
	}
	if b.Cadence() != "@every 1s" {
		t.Fatalf("Cadence = %q", b.Cadence())
	}
}
