// Package cadence parses recurrence expressions for background services and
// computes fire times.
//
// Supported forms:
//   - Cron: 5-field (min hour dom mon dow) or 6-field with leading seconds.
//     Example: "55 * * * *" or "*/5 * * * * *".
//   - Cron descriptors: "@hourly", "@daily".
//   - Intervals: "@every 55m", a bare Go duration like "2h30m", or an
//     "every:"-prefixed one. Intervals keep full duration resolution
//     (robfig's own @every truncates to whole seconds).
//
// To force interpretation, callers may prefix the string with "cron:" or
// "every:".
package cadence

import (
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// Schedule yields the next fire instant strictly after a given time.
type Schedule = cron.Schedule

// SecondOptional allows both 5-field and 6-field (with seconds) cron specs.
var parser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// interval fires a fixed delay after each computed instant. Unlike
// cron.ConstantDelaySchedule it does not round to seconds.
type interval struct {
	every time.Duration
}

func (i interval) Next(t time.Time) time.Time { return t.Add(i.every) }

// Parse normalizes and parses a cadence expression.
//
// The result is parsed once per service activation; the manager re-reads
// nothing after that.
func Parse(raw string) (Schedule, error) {
	spec, err := Normalize(raw)
	if err != nil {
		return nil, err
	}

	// Intervals are handled here so sub-second delays survive.
	if rest, ok := strings.CutPrefix(spec, "@every "); ok {
		d, err := parseInterval(rest)
		if err != nil {
			return nil, fmt.Errorf("invalid cadence %q: %w", raw, err)
		}
		return interval{every: d}, nil
	}

	sched, err := parser.Parse(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid cadence %q: %w", raw, err)
	}
	return sched, nil
}

// Normalize rewrites the tolerant input forms into a canonical spec.
func Normalize(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", fmt.Errorf("cadence required")
	}

	low := strings.ToLower(s)
	if strings.HasPrefix(low, "cron:") {
		expr := strings.TrimSpace(s[len("cron:"):])
		if expr == "" {
			return "", fmt.Errorf("cron cadence required after 'cron:'")
		}
		return expr, nil
	}
	if strings.HasPrefix(low, "every:") {
		v := strings.TrimSpace(s[len("every:"):])
		d, err := parseInterval(v)
		if err != nil {
			return "", err
		}
		return "@every " + d.String(), nil
	}

	// Heuristics: any whitespace or leading '@' => cron form.
	if strings.ContainsAny(s, " \t\n\r") || strings.HasPrefix(s, "@") {
		return s, nil
	}

	// Bare Go duration => interval.
	d, err := time.ParseDuration(s)
	if err == nil {
		if d <= 0 {
			return "", fmt.Errorf("interval must be > 0")
		}
		return "@every " + d.String(), nil
	}

	return "", fmt.Errorf(
		"invalid cadence %q (use cron like '*/5 * * * * *', '@every 55m', or a duration like '55m')",
		raw,
	)
}

func parseInterval(v string) (time.Duration, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, fmt.Errorf("interval required")
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid interval %q (use a Go duration like '55m'/'2h30m')", v)
	}
	if d <= 0 {
		return 0, fmt.Errorf("interval must be > 0")
	}
	return d, nil
}
