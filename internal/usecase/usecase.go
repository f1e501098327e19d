package usecase

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/forPelevin/clipmaker/internal/domain/highlights"
	"github.com/forPelevin/clipmaker/internal/ports"
	"github.com/forPelevin/clipmaker/internal/types"
)

type Deps struct {
	Decoder ports.Decoder
	Video   ports.VideoTool
	ASR     ports.ASR
	LLM     ports.LLM
}

// Sink receives one human-readable line per stage transition and error.
type Sink interface {
	Logf(format string, args ...any)
}

type Usecase struct{ d Deps }

func New(d Deps) Usecase { return Usecase{d: d} }

type Input struct {
	RunID     string
	InputMP4  string
	OutDir    string
	ClipsN    int
	ClipLen   time.Duration
	MinGapSec int
	Subtitles bool
	Lang      string

	AudioThresholdDB   float64
	FrameDiffThreshold float64
}

// Result is the outcome of one run. Err is set only in StateFailed; clip
// files written before the failure stay on disk and are listed in Clips.
type Result struct {
	RunID        string
	State        types.RunState
	Clips        []types.ClipRecord
	Descriptions []types.DescriptionRecord
	// Gaps lists labels of clips left without a description.
	Gaps     []string
	Manifest types.Manifest
	Err      error
}

type run struct {
	u    Usecase
	in   Input
	sink Sink
	res  Result
	info types.MediaInfo
	// total is the number of selected anchors.
	total int
}

// Run executes the pipeline state machine once. It never panics on stage
// failures; every failure ends in StateFailed with the error logged.
func (u Usecase) Run(ctx context.Context, in Input, sink Sink) Result {
	if in.RunID == "" {
		in.RunID = uuid.NewString()
	}
	r := &run{u: u, in: in, sink: sink, res: Result{RunID: in.RunID, State: types.StateIdle}}
	r.execute(ctx)
	return r.res
}

func (r *run) execute(ctx context.Context) {
	r.sink.Logf("run %s: %s", r.in.RunID, r.in.InputMP4)

	r.enter(types.StateAnalyzing, "scanning audio and motion")
	audio, motion, err := r.analyze(ctx)
	if err != nil {
		r.fail(err)
		return
	}
	r.sink.Logf("audio peaks: %d, motion peaks: %d", len(audio), len(motion))

	r.enter(types.StateSelecting, "min gap %ds, up to %d clips", r.in.MinGapSec, r.in.ClipsN)
	anchors := highlights.Select(audio, motion, r.in.ClipsN, r.in.MinGapSec)
	if len(anchors) == 0 {
		r.res.State = types.StateNoHighlights
		r.sink.Logf("no highlights found")
		return
	}
	r.total = len(anchors)
	r.sink.Logf("selected %d anchors: %v", len(anchors), anchors)

	for i, a := range anchors {
		rec, err := r.processClip(ctx, i, a)
		if rec.RawPath != "" {
			r.res.Clips = append(r.res.Clips, rec)
		}
		if err != nil {
			r.fail(err)
			return
		}
	}

	r.enter(types.StateDescribing, "one request for %d clips", len(r.res.Clips))
	if err := r.describe(ctx); err != nil {
		r.fail(err)
		return
	}

	r.res.Manifest = r.manifest()
	r.res.State = types.StateDone
	r.sink.Logf("%s: %d clips, %d descriptions", types.StateDone, len(r.res.Clips), len(r.res.Descriptions))
}

func (r *run) enter(s types.RunState, format string, args ...any) {
	r.res.State = s
	r.sink.Logf("%s: %s", s, fmt.Sprintf(format, args...))
}

// fail logs the message line, then the trace.
func (r *run) fail(err error) {
	r.res.State = types.StateFailed
	r.res.Err = err
	r.sink.Logf("%s: %v", types.StateFailed, err)
	r.sink.Logf("%+v", err)
}

func (r *run) manifest() types.Manifest {
	m := types.Manifest{Input: r.in.InputMP4, RunID: r.in.RunID}
	desc := make(map[int]string, len(r.res.Descriptions))
	for _, d := range r.res.Descriptions {
		desc[d.ClipIndex] = d.Text
	}
	for _, c := range r.res.Clips {
		m.Clips = append(m.Clips, types.ManifestClip{
			ID:          fmt.Sprintf("%03d", c.Index),
			Anchor:      int(c.Anchor),
			StartSec:    c.Window.Start.Seconds(),
			EndSec:      c.Window.End.Seconds(),
			RawFile:     relTo(r.in.OutDir, c.RawPath),
			File:        relTo(r.in.OutDir, c.FinalPath),
			Transcript:  c.TranscriptText,
			Description: desc[c.Index-1],
		})
	}
	return m
}

func relTo(base, p string) string {
	rel, err := filepath.Rel(base, p)
	if err != nil {
		return filepath.ToSlash(p)
	}
	return filepath.ToSlash(rel)
}
