package cutlist

import (
	"errors"
	"strings"
	"testing"

	"otrpipe/internal/services"
)

const timeOnlyDocument = `[General]
Application=SomeTool
Version=1.2
NoOfCuts=2
ApplyToFile=Show_26.03.14_20-15_ard_90_TVOON_DE.mpg.avi

[Cut0]
Start=0
Duration=92.5

[Cut1]
Start=1480.16
Duration=311.04

[Info]
RatingByAuthor=4
`

const mixedDocument = `[General]
NoOfCuts=1

[Cut0]
Start=10.0
Duration=20.0
StartFrame=250
DurationFrames=500
`

func TestParseTimeOnlyDocument(t *testing.T) {
	list, err := Parse([]byte(timeOnlyDocument))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(list.Entries) != 2 {
		t.Fatalf("parsed %d cuts, want 2", len(list.Entries))
	}
	first := list.Entries[0]
	if first.Time == nil || first.Frames != nil {
		t.Fatalf("cut 0 should carry only a time span: %+v", first)
	}
	if first.Time.Start != 0 || first.Time.Duration != 92.5 {
		t.Fatalf("cut 0 span = %+v", *first.Time)
	}
	if list.Entries[1].Time.Start != 1480.16 {
		t.Fatalf("cut 1 start = %v", list.Entries[1].Time.Start)
	}
}

func TestParseMixedDocument(t *testing.T) {
	list, err := Parse([]byte(mixedDocument))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	entry := list.Entries[0]
	if entry.Time == nil || entry.Frames == nil {
		t.Fatalf("expected both span kinds: %+v", entry)
	}
	if entry.Frames.Start != 250 || entry.Frames.Duration != 500 {
		t.Fatalf("frame span = %+v", *entry.Frames)
	}
}

func TestParseDropsZeroDurationCuts(t *testing.T) {
	doc := `[General]
NoOfCuts=2

[Cut0]
Start=5
Duration=0

[Cut1]
Start=100
Duration=50
`
	list, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(list.Entries) != 1 || list.Entries[0].Time.Start != 100 {
		t.Fatalf("zero-duration cut not dropped: %+v", list.Entries)
	}
}

func TestParseRejectsBrokenDocuments(t *testing.T) {
	cases := []struct {
		name string
		doc  string
	}{
		{"no general section", "[Cut0]\nStart=1\nDuration=2\n"},
		{"no cut count", "[General]\nApplication=x\n"},
		{"missing cut section", "[General]\nNoOfCuts=2\n\n[Cut0]\nStart=1\nDuration=2\n"},
		{"cut without bounds", "[General]\nNoOfCuts=1\n\n[Cut0]\nComment=hi\n"},
		{"unparsable start", "[General]\nNoOfCuts=1\n\n[Cut0]\nStart=abc\nDuration=2\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Parse([]byte(tc.doc)); !errors.Is(err, services.ErrParse) {
				t.Fatalf("expected parse error, got %v", err)
			}
		})
	}
}

func TestBuildDocumentRoundTrips(t *testing.T) {
	in := List{Entries: []Entry{
		{Time: &Span{Start: 0, Duration: 92.5}},
		{Time: &Span{Start: 1480.16, Duration: 311.04}, Frames: &Span{Start: 37004, Duration: 7776}},
	}}
	doc, err := BuildDocument(in, "Show_26.03.14_20-15_ard_90_TVOON_DE.mpg.avi", 734003200, 4)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	text := string(doc)
	for _, want := range []string{
		"NoOfCuts=2",
		"ApplyToFile=Show_26.03.14_20-15_ard_90_TVOON_DE.mpg.avi",
		"OriginalFileSizeBytes=734003200",
		"RatingByAuthor=4",
		"StartFrame=37004",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("document misses %q:\n%s", want, text)
		}
	}

	out, err := Parse(doc)
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}
	if len(out.Entries) != 2 {
		t.Fatalf("round trip lost cuts: %+v", out.Entries)
	}
	if out.Entries[1].Frames == nil || out.Entries[1].Frames.Start != 37004 {
		t.Fatalf("round trip lost frame span: %+v", out.Entries[1])
	}
}

func TestBuildDocumentRejectsEmptyList(t *testing.T) {
	if _, err := BuildDocument(List{}, "x.avi", 1, 5); !errors.Is(err, services.ErrParse) {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestParseIntervals(t *testing.T) {
	list, err := ParseIntervals("time:[0:01:30.5,0:02:00][120,300]")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(list.Entries) != 2 {
		t.Fatalf("parsed %d entries, want 2", len(list.Entries))
	}
	if got := list.Entries[0].Time; got.Start != 90.5 || got.Duration != 29.5 {
		t.Fatalf("clock interval = %+v", *got)
	}
	if got := list.Entries[1].Time; got.Start != 120 || got.Duration != 180 {
		t.Fatalf("seconds interval = %+v", *got)
	}

	frames, err := ParseIntervals("frames:[100,250]")
	if err != nil {
		t.Fatalf("parse frames: %v", err)
	}
	if got := frames.Entries[0].Frames; got == nil || got.Start != 100 || got.Duration != 150 {
		t.Fatalf("frame interval = %+v", got)
	}
}

func TestParseIntervalsRejectsGarbage(t *testing.T) {
	for _, spec := range []string{
		"",
		"minutes:[1,2]",
		"time:[1,2",
		"time:[20,10]",
		"frames:[a,b]",
	} {
		if _, err := ParseIntervals(spec); !errors.Is(err, services.ErrParse) {
			t.Fatalf("%q: expected parse error, got %v", spec, err)
		}
	}
}
