// Package workdir owns the on-disk working area that doubles as the
// pipeline's state machine. Directory membership is the authoritative stage
// record: moving a file between sub-areas is the commit point of a stage
// transition, and every run re-derives all state by re-scanning.
package workdir
