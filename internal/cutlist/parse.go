package cutlist

import (
	"fmt"

	"gopkg.in/ini.v1"

	"otrpipe/internal/services"
)

// Section and key names of the provider's INI dialect.
const (
	sectionGeneral = "General"
	sectionInfo    = "Info"
	sectionCut     = "Cut"

	keyNoOfCuts       = "NoOfCuts"
	keyApplication    = "Application"
	keyVersion        = "Version"
	keyIntendedCutApp = "IntendedCutApplicationName"
	keyApplyToFile    = "ApplyToFile"
	keyOrigFileSize   = "OriginalFileSizeBytes"
	keyRatingByAuthor = "RatingByAuthor"

	keyTimeStart      = "Start"
	keyTimeDuration   = "Duration"
	keyFramesStart    = "StartFrame"
	keyFramesDuration = "DurationFrames"
)

// Parse reads a cut list in the provider's INI dialect. Every cut must carry
// a time span, a frame span, or both; cuts whose spans all have zero duration
// are dropped rather than rejected, since published lists contain them.
func Parse(data []byte) (List, error) {
	file, err := ini.Load(data)
	if err != nil {
		return List{}, services.Wrap(services.ErrParse, "cutlist", "parse", "not an INI document", err)
	}

	general, err := file.GetSection(sectionGeneral)
	if err != nil {
		return List{}, services.Wrap(services.ErrParse, "cutlist", "parse", "missing General section", err)
	}
	count, err := general.Key(keyNoOfCuts).Int()
	if err != nil {
		return List{}, services.Wrap(services.ErrParse, "cutlist", "parse", "missing or invalid NoOfCuts", err)
	}

	var list List
	for i := 0; i < count; i++ {
		section, err := file.GetSection(fmt.Sprintf("%s%d", sectionCut, i))
		if err != nil {
			return List{}, services.Wrap(services.ErrParse, "cutlist", "parse",
				fmt.Sprintf("cut %d of %d is missing", i, count), err)
		}
		entry, err := parseEntry(section, i)
		if err != nil {
			return List{}, err
		}
		if (entry.Time == nil || entry.Time.Duration <= 0) &&
			(entry.Frames == nil || entry.Frames.Duration <= 0) {
			continue
		}
		list.Entries = append(list.Entries, entry)
	}
	return list, nil
}

func parseEntry(section *ini.Section, index int) (Entry, error) {
	var entry Entry
	if section.HasKey(keyTimeStart) || section.HasKey(keyTimeDuration) {
		span, err := parseSpan(section, keyTimeStart, keyTimeDuration, index)
		if err != nil {
			return Entry{}, err
		}
		entry.Time = span
	}
	if section.HasKey(keyFramesStart) || section.HasKey(keyFramesDuration) {
		span, err := parseSpan(section, keyFramesStart, keyFramesDuration, index)
		if err != nil {
			return Entry{}, err
		}
		entry.Frames = span
	}
	if entry.Time == nil && entry.Frames == nil {
		return Entry{}, services.Wrap(services.ErrParse, "cutlist", "parse",
			fmt.Sprintf("cut %d has neither time nor frame bounds", index), nil)
	}
	return entry, nil
}

func parseSpan(section *ini.Section, startKey, durationKey string, index int) (*Span, error) {
	start, err := section.Key(startKey).Float64()
	if err != nil {
		return nil, services.Wrap(services.ErrParse, "cutlist", "parse",
			fmt.Sprintf("cut %d: invalid %s", index, startKey), err)
	}
	duration, err := section.Key(durationKey).Float64()
	if err != nil {
		return nil, services.Wrap(services.ErrParse, "cutlist", "parse",
			fmt.Sprintf("cut %d: invalid %s", index, durationKey), err)
	}
	return &Span{Start: start, Duration: duration}, nil
}
