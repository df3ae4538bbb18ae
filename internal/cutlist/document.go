package cutlist

import (
	"bytes"
	"fmt"
	"strconv"

	"gopkg.in/ini.v1"

	"otrpipe/internal/services"
)

const (
	application        = "otrpipe"
	applicationVersion = "0.9.0"
)

func init() {
	// The provider expects bare key=value lines, not the padded default.
	ini.PrettyFormat = false
}

// BuildDocument serializes a cut list into the provider's INI dialect for
// upload. applyTo is the decoded file name the list belongs to, fileSize its
// size in bytes, and rating the author's own 0-5 rating of the list.
func BuildDocument(list List, applyTo string, fileSize int64, rating int) ([]byte, error) {
	if len(list.Entries) == 0 {
		return nil, services.Wrap(services.ErrParse, "cutlist", "build",
			"cut list has no cuts", nil)
	}

	file := ini.Empty()
	general, err := file.NewSection(sectionGeneral)
	if err != nil {
		return nil, services.Wrap(services.ErrParse, "cutlist", "build", "", err)
	}
	setKey(general, keyApplication, application)
	setKey(general, keyVersion, applicationVersion)
	setKey(general, keyIntendedCutApp, "mkvmerge")
	setKey(general, keyNoOfCuts, strconv.Itoa(len(list.Entries)))
	setKey(general, keyApplyToFile, applyTo)
	setKey(general, keyOrigFileSize, strconv.FormatInt(fileSize, 10))

	for i, entry := range list.Entries {
		section, err := file.NewSection(fmt.Sprintf("%s%d", sectionCut, i))
		if err != nil {
			return nil, services.Wrap(services.ErrParse, "cutlist", "build", "", err)
		}
		if entry.Time != nil {
			setKey(section, keyTimeStart, formatFloat(entry.Time.Start))
			setKey(section, keyTimeDuration, formatFloat(entry.Time.Duration))
		}
		if entry.Frames != nil {
			setKey(section, keyFramesStart, formatFloat(entry.Frames.Start))
			setKey(section, keyFramesDuration, formatFloat(entry.Frames.Duration))
		}
	}

	info, err := file.NewSection(sectionInfo)
	if err != nil {
		return nil, services.Wrap(services.ErrParse, "cutlist", "build", "", err)
	}
	setKey(info, keyRatingByAuthor, strconv.Itoa(rating))

	var buf bytes.Buffer
	if _, err := file.WriteTo(&buf); err != nil {
		return nil, services.Wrap(services.ErrParse, "cutlist", "build", "", err)
	}
	return buf.Bytes(), nil
}

func setKey(section *ini.Section, name, value string) {
	// NewKey only fails on an empty name; all names here are constants.
	_, _ = section.NewKey(name, value)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
