// Package logging assembles the structured slog loggers used across the
// pipeline. Prefer these constructors over hand-rolled slog setup so every
// component emits records with the same shape and routing.
package logging
