package cutlist

import "sort"

// Candidate is one cut list the provider offers for an asset.
type Candidate struct {
	ID         int64
	Rating     float64
	WithFrames bool
}

// Span is a start/duration pair in the unit of its kind: seconds for time
// spans, frame numbers for frame spans.
type Span struct {
	Start    float64
	Duration float64
}

// Entry is one cut, a span to remove from the video. It may carry a time
// span, a frame span, or both describing the same cut.
type Entry struct {
	Time   *Span
	Frames *Span
}

// List is a parsed cut list. ID is zero for self-authored lists that have
// not been submitted yet.
type List struct {
	ID      int64
	Entries []Entry
}

// SelectBest picks the candidate to apply: candidates rated below minRating
// are dropped (the threshold is inclusive), the highest rating wins, and
// rating ties go to the lowest ID so repeated runs choose the same list.
// ok is false when no candidate passes the threshold.
func SelectBest(candidates []Candidate, minRating float64) (best Candidate, ok bool) {
	eligible := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Rating >= minRating {
			eligible = append(eligible, c)
		}
	}
	if len(eligible) == 0 {
		return Candidate{}, false
	}
	sort.Slice(eligible, func(i, j int) bool {
		if eligible[i].Rating != eligible[j].Rating {
			return eligible[i].Rating > eligible[j].Rating
		}
		return eligible[i].ID < eligible[j].ID
	})
	return eligible[0], true
}
