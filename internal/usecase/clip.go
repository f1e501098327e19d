package usecase

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/forPelevin/clipmaker/internal/domain/highlights"
	"github.com/forPelevin/clipmaker/internal/domain/subtitles"
	"github.com/forPelevin/clipmaker/internal/types"
)

func RawClipName(i int) string { return fmt.Sprintf("clip_%d_raw.mp4", i) }
func SubtitledClipName(i int) string { return fmt.Sprintf("clip_%d_sub.mp4", i) }

// processClip runs Extracting, Transcribing and Subtitling for the clip at
// 0-based position i. The returned record carries RawPath as soon as the raw
// clip exists, even when a later stage fails.
func (r *run) processClip(ctx context.Context, i int, a types.Anchor) (types.ClipRecord, error) {
	n := i + 1
	rec := types.ClipRecord{Index: n, Anchor: a}

	w, err := highlights.Window(a, r.in.ClipLen, r.info.Duration)
	if err != nil {
		return rec, types.NewStageError(types.ErrExtraction, fmt.Sprintf("clip %d window", n), err)
	}
	rec.Window = w

	r.enter(types.StateExtracting, "clip %d/%d %.0fs-%.0fs (anchor %ds)",
		n, r.total, w.Start.Seconds(), w.End.Seconds(), int(a))
	raw := filepath.Join(r.in.OutDir, RawClipName(i))
	if err := r.u.d.Video.ExtractClip(ctx, r.in.InputMP4, w, raw); err != nil {
		return rec, types.NewStageError(types.ErrExtraction, fmt.Sprintf("clip %d", n), err)
	}
	if !fileExists(raw) {
		return rec, stageErrorf(types.ErrExtraction, fmt.Sprintf("clip %d", n), "transcoder produced no file at %s", raw)
	}
	rec.RawPath = raw
	rec.FinalPath = raw

	if !r.in.Subtitles {
		return rec, nil
	}
	if !r.info.HasAudio {
		r.sink.Logf("clip %d: source has no audio, subtitles skipped", n)
		return rec, nil
	}

	r.enter(types.StateTranscribing, "clip %d/%d", n, r.total)
	stem := filepath.Join(r.in.OutDir, fmt.Sprintf("clip_%d_raw", i))
	wav, srt := stem+".wav", stem+".srt"
	defer removeQuietly(wav)
	if err := r.u.d.Video.ExtractAudioMono16k(ctx, raw, wav); err != nil {
		return rec, types.NewStageError(types.ErrTranscription, fmt.Sprintf("clip %d audio", n), err)
	}
	tr, err := r.u.d.ASR.Transcribe(ctx, wav, r.in.Lang)
	if err != nil {
		return rec, types.NewStageError(types.ErrTranscription, fmt.Sprintf("clip %d", n), err)
	}
	rec.TranscriptText = subtitles.TranscriptText(tr.Segments)
	if len(tr.Segments) == 0 {
		r.sink.Logf("clip %d: no dialogue detected, subtitles skipped", n)
		return rec, nil
	}

	r.enter(types.StateSubtitling, "clip %d/%d, %d segments", n, r.total, len(tr.Segments))
	defer removeQuietly(srt)
	if err := os.WriteFile(srt, []byte(subtitles.RenderSRT(tr.Segments)), 0o644); err != nil {
		return rec, types.NewStageError(types.ErrSubtitleBurn, fmt.Sprintf("clip %d write srt", n), err)
	}
	sub := filepath.Join(r.in.OutDir, SubtitledClipName(i))
	if err := r.u.d.Video.BurnSubtitles(ctx, raw, srt, sub); err != nil {
		return rec, types.NewStageError(types.ErrSubtitleBurn, fmt.Sprintf("clip %d", n), err)
	}
	if !fileExists(sub) {
		return rec, stageErrorf(types.ErrSubtitleBurn, fmt.Sprintf("clip %d", n), "transcoder produced no subtitled file at %s", sub)
	}
	rec.FinalPath = sub
	return rec, nil
}

func fileExists(p string) bool {
	st, err := os.Stat(p)
	return err == nil && !st.IsDir()
}

// removeQuietly drops an intermediate; failures are ignored.
func removeQuietly(p string) { _ = os.Remove(p) }
