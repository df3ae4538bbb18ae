package cutlist

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"otrpipe/internal/services"
)

// Self-authored cut lists are passed on the command line as
// "time:[start,end][start,end]..." or "frames:[start,end]...". Time points
// are either plain seconds or H:MM:SS with an optional fraction; frame
// points are frame numbers.
var (
	reIntervals = regexp.MustCompile(`^(frames|time):((?:\[[^\[\],]+,[^\[\],]+\])+)$`)
	rePair      = regexp.MustCompile(`\[([^\[\],]+),([^\[\],]+)\]`)
	reClock     = regexp.MustCompile(`^(\d+):([0-5]\d):([0-5]\d)(?:\.(\d{1,6}))?$`)
)

// ParseIntervals turns an interval string into a cut list whose entries
// delete the listed spans.
func ParseIntervals(spec string) (List, error) {
	m := reIntervals.FindStringSubmatch(strings.TrimSpace(spec))
	if m == nil {
		return List{}, services.Wrap(services.ErrParse, "cutlist", "intervals",
			fmt.Sprintf("%q is not of the form time:[a,b]... or frames:[a,b]...", spec), nil)
	}
	kind := m[1]

	var list List
	for _, pair := range rePair.FindAllStringSubmatch(m[2], -1) {
		start, err := parsePoint(kind, pair[1])
		if err != nil {
			return List{}, err
		}
		end, err := parsePoint(kind, pair[2])
		if err != nil {
			return List{}, err
		}
		if end <= start {
			return List{}, services.Wrap(services.ErrParse, "cutlist", "intervals",
				fmt.Sprintf("interval [%s,%s] ends before it starts", pair[1], pair[2]), nil)
		}
		span := &Span{Start: start, Duration: end - start}
		if kind == "frames" {
			list.Entries = append(list.Entries, Entry{Frames: span})
		} else {
			list.Entries = append(list.Entries, Entry{Time: span})
		}
	}
	return list, nil
}

func parsePoint(kind, s string) (float64, error) {
	s = strings.TrimSpace(s)
	if kind == "time" {
		if m := reClock.FindStringSubmatch(s); m != nil {
			hours, _ := strconv.ParseFloat(m[1], 64)
			mins, _ := strconv.ParseFloat(m[2], 64)
			secs, _ := strconv.ParseFloat(m[3], 64)
			frac := 0.0
			if m[4] != "" {
				frac, _ = strconv.ParseFloat("0."+m[4], 64)
			}
			return hours*3600 + mins*60 + secs + frac, nil
		}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, services.Wrap(services.ErrParse, "cutlist", "intervals",
			fmt.Sprintf("%q is not a valid %s point", s, kind), err)
	}
	return v, nil
}
