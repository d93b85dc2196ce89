package manager

import "errors"

var (
	// ErrNotFound is returned by Start for names absent from the registry and
	// by Stop for names with no active entry.
	ErrNotFound = errors.New("service not found")

	// ErrInstantiate wraps factory failures; no active entry is created.
	ErrInstantiate = errors.New("service instantiation failed")

	// ErrStartHook wraps a failing Start hook; the activation is rolled back.
	ErrStartHook = errors.New("service start hook failed")

	// ErrStopHook wraps a failing Stop hook; the entry is removed regardless.
	ErrStopHook = errors.New("service stop hook failed")
)
