// Package config loads and watches tickd's configuration.
//
// Config files may be JSON or YAML; YAML is coerced to JSON so both formats
// share one strict decoder (unknown fields are rejected). The Manager
// supports hot reload via fsnotify with debouncing, content hashing to skip
// no-op writes, and an optional validator hook that can reject a bad config
// before it is published to subscribers.
package config
