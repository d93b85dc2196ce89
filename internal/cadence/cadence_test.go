package cadence

import (
	"testing"
	"time"
)

func TestNormalizeVariants(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "six field", raw: "*/5 * * * * *", want: "*/5 * * * * *"},
		{name: "five field", raw: "55 * * * *", want: "55 * * * *"},
		{name: "descriptor", raw: "@hourly", want: "@hourly"},
		{name: "every descriptor", raw: "@every 55m", want: "@every 55m"},
		{name: "prefixed cron", raw: "cron:0 0 * * *", want: "0 0 * * *"},
		{name: "prefixed interval", raw: "every:45s", want: "@every 45s"},
		{name: "bare duration", raw: "2h30m", want: "@every 2h30m0s"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.raw)
			if err != nil {
				t.Fatalf("Normalize(%q) error: %v", tt.raw, err)
			}
			if got != tt.want {
				t.Fatalf("Normalize(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestNormalizeInvalid(t *testing.T) {
	t.Parallel()
	for _, raw := range []string{"", "not-a-cadence", "every:", "cron:", "-5s", "every:0s"} {
		if _, err := Normalize(raw); err == nil {
			t.Fatalf("Normalize(%q): expected error", raw)
		}
	}
}

func TestParseNextStrictlyAfter(t *testing.T) {
	t.Parallel()
	sched, err := Parse("* * * * * *")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	now := time.Date(2026, 3, 1, 12, 0, 0, 500_000_000, time.UTC)
	next := sched.Next(now)
	if !next.After(now) {
		t.Fatalf("Next(%v) = %v, not strictly after", now, next)
	}
	if next.Second() != 1 || next.Nanosecond() != 0 {
		t.Fatalf("Next = %v, want top of next second", next)
	}
}

func TestParseFieldCarry(t *testing.T) {
	t.Parallel()
	// Seconds carry into minutes, minutes into hours, across a month boundary.
	sched, err := Parse("0 0 0 1 * *")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	now := time.Date(2026, 1, 31, 23, 59, 59, 0, time.UTC)
	next := sched.Next(now)
	want := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Fatalf("Next = %v, want %v", next, want)
	}
}

func TestParseInvalidSpec(t *testing.T) {
	t.Parallel()
	if _, err := Parse("61 * * * * *"); err == nil {
		t.Fatal("expected error for out-of-range seconds field")
	}
	if _, err := Parse("@every soon"); err == nil {
		t.Fatal("expected error for invalid interval")
	}
}

func TestParseIntervalKeepsSubSecondResolution(t *testing.T) {
	t.Parallel()
	sched, err := Parse("@every 50ms")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	next := sched.Next(now)
	if got := next.Sub(now); got != 50*time.Millisecond {
		t.Fatalf("interval = %v, want 50ms", got)
	}
}
