package cutlist

import (
	"fmt"

	"otrpipe/internal/interval"
	"otrpipe/internal/services"
)

// KeepTimeline converts a cut list into the intervals of the video that
// survive cutting. Cuts are converted to millisecond deletions, normalized,
// and complemented against [0, totalMillis). When a cut carries both time and
// frame bounds the frame bounds win: they are exact where the time value is a
// rounded presentation of the same cut.
func KeepTimeline(list List, totalMillis int64, fps float64) ([]interval.Interval, error) {
	if totalMillis <= 0 {
		return nil, services.Wrap(services.ErrParse, "cutlist", "timeline",
			fmt.Sprintf("video duration %dms is not positive", totalMillis), nil)
	}

	deletions := make([]interval.Interval, 0, len(list.Entries))
	for i, entry := range list.Entries {
		switch {
		case entry.Frames != nil:
			iv, err := interval.FromFrames(entry.Frames.Start, entry.Frames.Duration, fps)
			if err != nil {
				return nil, services.Wrap(services.ErrParse, "cutlist", "timeline",
					fmt.Sprintf("cut %d", i), err)
			}
			deletions = append(deletions, iv)
		case entry.Time != nil:
			deletions = append(deletions, interval.FromSeconds(entry.Time.Start, entry.Time.Duration))
		}
	}

	keep := interval.Complement(interval.Normalize(deletions), totalMillis)
	if len(keep) == 0 {
		return nil, services.Wrap(services.ErrParse, "cutlist", "timeline",
			"cut list deletes the entire video", nil)
	}
	return keep, nil
}
