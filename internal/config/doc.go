// Package config loads, normalizes and validates the TOML configuration.
//
// The core pipeline consumes this configuration but does not own it: every
// knob the stages need (credentials, thresholds, worker counts, cutter
// selection) arrives through a Config value built here.
package config
