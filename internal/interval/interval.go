// Package interval provides pure set operations on half-open time intervals.
//
// All boundaries are expressed in a single unit, milliseconds. Sources that
// describe intervals in frames must convert via the asset frame rate before
// entering this package; conversion accuracy decides whether cuts land on the
// requested frame.
package interval

import (
	"fmt"
	"math"
	"sort"
)

// Interval is a half-open span [Start, End) in milliseconds.
type Interval struct {
	Start int64
	End   int64
}

// Len returns the span length in milliseconds.
func (iv Interval) Len() int64 {
	return iv.End - iv.Start
}

// Empty reports whether the interval covers nothing.
func (iv Interval) Empty() bool {
	return iv.End <= iv.Start
}

func (iv Interval) String() string {
	return fmt.Sprintf("[%d,%d)", iv.Start, iv.End)
}

// Normalize sorts intervals by start and merges any that touch or overlap.
// Input may be unsorted and contain duplicates or overlaps; empty intervals
// are dropped. The input slice is not modified.
func Normalize(intervals []Interval) []Interval {
	work := make([]Interval, 0, len(intervals))
	for _, iv := range intervals {
		if !iv.Empty() {
			work = append(work, iv)
		}
	}
	if len(work) == 0 {
		return nil
	}
	sort.Slice(work, func(i, j int) bool {
		if work[i].Start != work[j].Start {
			return work[i].Start < work[j].Start
		}
		return work[i].End < work[j].End
	})

	merged := work[:1]
	for _, iv := range work[1:] {
		last := &merged[len(merged)-1]
		if iv.Start <= last.End {
			if iv.End > last.End {
				last.End = iv.End
			}
			continue
		}
		merged = append(merged, iv)
	}
	return merged
}

// Complement returns the gaps of a normalized interval sequence against
// [0, total). Intervals are clipped to that range first; a deletion touching 0
// or total simply removes the corresponding boundary gap. An empty input
// yields a single interval covering the whole range.
func Complement(sorted []Interval, total int64) []Interval {
	if total <= 0 {
		return nil
	}
	keep := make([]Interval, 0, len(sorted)+1)
	cursor := int64(0)
	for _, iv := range sorted {
		if iv.End <= 0 || iv.Start >= total {
			continue
		}
		start := max(iv.Start, 0)
		end := min(iv.End, total)
		if start > cursor {
			keep = append(keep, Interval{Start: cursor, End: start})
		}
		if end > cursor {
			cursor = end
		}
	}
	if cursor < total {
		keep = append(keep, Interval{Start: cursor, End: total})
	}
	return keep
}

// FromSeconds converts second-based boundaries to a millisecond interval.
func FromSeconds(start, duration float64) Interval {
	return Interval{
		Start: int64(math.Round(start * 1000)),
		End:   int64(math.Round((start + duration) * 1000)),
	}
}

// FromFrames converts frame-based boundaries to a millisecond interval using
// the given frame rate.
func FromFrames(startFrame, durationFrames, fps float64) (Interval, error) {
	if fps <= 0 {
		return Interval{}, fmt.Errorf("frame rate must be positive, got %v", fps)
	}
	return Interval{
		Start: int64(math.Round(startFrame / fps * 1000)),
		End:   int64(math.Round((startFrame + durationFrames) / fps * 1000)),
	}, nil
}
