package types

import (
	"sort"
	"time"
)

// TimestampSet is a deduplicated set of whole, non-negative seconds.
type TimestampSet map[int]struct{}

func NewTimestampSet(secs ...int) TimestampSet {
	s := make(TimestampSet, len(secs))
	for _, v := range secs {
		s.Add(v)
	}
	return s
}

// Add ignores negative values.
func (s TimestampSet) Add(sec int) {
	if sec < 0 {
		return
	}
	s[sec] = struct{}{}
}

func (s TimestampSet) Has(sec int) bool {
	_, ok := s[sec]
	return ok
}

// Sorted returns the members in ascending order.
func (s TimestampSet) Sorted() []int {
	out := make([]int, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Ints(out)
	return out
}

// Union returns a new set; either argument may be nil.
func Union(a, b TimestampSet) TimestampSet {
	out := make(TimestampSet, len(a)+len(b))
	for v := range a {
		out.Add(v)
	}
	for v := range b {
		out.Add(v)
	}
	return out
}

// Anchor is a selected second marking the start of a highlight.
type Anchor int

type ClipWindow struct {
	Start time.Duration
	End   time.Duration
}

func (w ClipWindow) Duration() time.Duration { return w.End - w.Start }

// ClipRecord is one selected clip of a run. Index is 1-based.
type ClipRecord struct {
	Index          int
	Anchor         Anchor
	Window         ClipWindow
	RawPath        string
	FinalPath      string
	TranscriptText string
}

// DescriptionRecord holds the generated copy for one clip. ClipIndex is 0-based.
type DescriptionRecord struct {
	ClipIndex int
	Label     string
	Text      string
	Path      string
}

type Transcript struct {
	Segments []Segment `json:"segments"`
}

type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// MediaInfo is what the decoder knows about a source before scanning it.
type MediaInfo struct {
	Duration time.Duration
	FPS      float64
	Width    int
	Height   int
	HasAudio bool
	HasVideo bool
}

type Manifest struct {
	Input string         `json:"input"`
	RunID string         `json:"run_id"`
	Clips []ManifestClip `json:"clips"`
}

type ManifestClip struct {
	ID          string  `json:"id"`
	Anchor      int     `json:"anchor_sec"`
	StartSec    float64 `json:"start_sec"`
	EndSec      float64 `json:"end_sec"`
	RawFile     string  `json:"raw_file"`
	File        string  `json:"file"`
	Transcript  string  `json:"transcript"`
	Description string  `json:"description,omitempty"`
}
