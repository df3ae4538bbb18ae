package pipeline

import (
	"otrpipe/internal/asset"
	"otrpipe/internal/history"
)

// Outcome classifies what happened to one asset in one stage.
type Outcome string

const (
	// OutcomeDone means the stage transition committed.
	OutcomeDone Outcome = "done"
	// OutcomeSkipped means there was nothing to do for the asset.
	OutcomeSkipped Outcome = "skipped"
	// OutcomeParked means no usable cut list exists yet; the asset stays
	// where it is and is retried on a later run.
	OutcomeParked Outcome = "parked"
	// OutcomeFailed means the stage errored; the asset stays where it is.
	OutcomeFailed Outcome = "failed"
)

// Result is the outcome of one asset in one stage.
type Result struct {
	Asset   asset.Asset
	Stage   string
	Outcome Outcome
	Detail  string
	Err     error
}

// Report aggregates the results of one run.
type Report struct {
	RunID   string
	Results []Result
}

// Count returns how many results carry the given outcome.
func (r *Report) Count(outcome Outcome) int {
	n := 0
	for _, res := range r.Results {
		if res.Outcome == outcome {
			n++
		}
	}
	return n
}

// HasFailures reports whether any asset failed.
func (r *Report) HasFailures() bool {
	return r.Count(OutcomeFailed) > 0
}

func (o Outcome) historyOutcome() history.Outcome {
	switch o {
	case OutcomeDone:
		return history.OutcomeDone
	case OutcomeParked:
		return history.OutcomeNotFound
	case OutcomeSkipped:
		return history.OutcomeSkipped
	default:
		return history.OutcomeFailed
	}
}
