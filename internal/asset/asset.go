package asset

import (
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"
)

// Stage is an asset's position in the durable pipeline.
type Stage int

const (
	StageEncoded Stage = iota
	StageDecoded
	StageCut
)

func (s Stage) String() string {
	switch s {
	case StageEncoded:
		return "encoded"
	case StageDecoded:
		return "decoded"
	case StageCut:
		return "cut"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// Asset is one logical video, keyed by its canonical name.
type Asset struct {
	// Key is the canonical name joining the asset across stages, e.g.
	// "Some_Movie_26.03.14_20-15_ard_90_TVOON_DE.mpg.HQ.avi".
	Key     string
	Path    string
	Stage   Stage
	Station string
	Airtime time.Time
	Quality string // "", "HQ" or "HD"
}

// FileName returns the last element of the asset path.
func (a Asset) FileName() string {
	return filepath.Base(a.Path)
}

// DecodedName is the file name the asset carries once decoded: the encoded
// name with the trailing .otrkey stripped.
func (a Asset) DecodedName() string {
	return strings.TrimSuffix(a.FileName(), ".otrkey")
}

// CutName is the file name of the cut result: the final extension prefixed
// with "cut.".
func (a Asset) CutName() string {
	name := a.DecodedName()
	ext := filepath.Ext(name)
	return strings.TrimSuffix(name, ext) + ".cut" + ext
}

// File names of uncut videos follow the recording service grammar:
// title_YY.MM.DD_hh-mm_station_number_TVOON_DE.<container>[.HQ|.HD].<ext>
// with a trailing .otrkey while still encrypted. Cut videos carry a "cut."
// segment before the final extension.
var (
	reUncut = regexp.MustCompile(`^([^.]+)_(\d{2})\.(\d{2})\.(\d{2})_(\d{2})-(\d{2})_([^_]+)_(\d+)_TVOON_DE\.[^.]+(\.(?:HQ|HD))?(\.[^.]+?)(\.otrkey)?$`)
	reCut   = regexp.MustCompile(`^([^.]+)_(\d{2})\.(\d{2})\.(\d{2})_(\d{2})-(\d{2})_([^_]+)_(\d+)_TVOON_DE\..*cut\..+$`)
)

// Parse classifies path into an Asset by filename grammar and extension.
func Parse(path string) (Asset, error) {
	name := filepath.Base(path)

	if reCut.MatchString(name) {
		m := reCut.FindStringSubmatch(name)
		a := Asset{
			Key:     cutKey(name),
			Path:    path,
			Stage:   StageCut,
			Station: m[7],
			Airtime: airtime(m),
		}
		return a, nil
	}

	m := reUncut.FindStringSubmatch(name)
	if m == nil {
		return Asset{}, fmt.Errorf("%q does not match the video filename grammar", name)
	}
	stage := StageDecoded
	if m[11] != "" {
		stage = StageEncoded
	}
	keyEnd := len(name)
	if stage == StageEncoded {
		keyEnd -= len(".otrkey")
	}
	return Asset{
		Key:     name[:keyEnd],
		Path:    path,
		Stage:   stage,
		Station: m[7],
		Airtime: airtime(m),
		Quality: strings.TrimPrefix(m[9], "."),
	}, nil
}

// cutKey recovers the canonical key from a cut file name by dropping the
// "cut." segment.
func cutKey(name string) string {
	return strings.Replace(name, ".cut.", ".", 1)
}

func airtime(m []string) time.Time {
	var yy, mm, dd, hh, mi int
	fmt.Sscanf(m[2], "%d", &yy)
	fmt.Sscanf(m[3], "%d", &mm)
	fmt.Sscanf(m[4], "%d", &dd)
	fmt.Sscanf(m[5], "%d", &hh)
	fmt.Sscanf(m[6], "%d", &mi)
	return time.Date(2000+yy, time.Month(mm), dd, hh, mi, 0, 0, time.Local)
}

// Sort orders assets by key ascending, stage descending, giving every run a
// stable discovery order with the most advanced stage first per key.
func Sort(assets []Asset) {
	sort.Slice(assets, func(i, j int) bool {
		if assets[i].Key != assets[j].Key {
			return assets[i].Key < assets[j].Key
		}
		return assets[i].Stage > assets[j].Stage
	})
}
