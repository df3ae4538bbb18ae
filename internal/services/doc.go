// Package services defines the shared error taxonomy for the pipeline.
//
// Every per-asset failure is tagged with one of the exported sentinel errors
// so the orchestrator can classify outcomes without string matching. Wrap is
// the single constructor; stage code should never hand-roll fmt.Errorf chains
// that lose the marker.
package services
