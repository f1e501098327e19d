package usecase

import (
	"context"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/forPelevin/clipmaker/internal/domain/highlights"
	"github.com/forPelevin/clipmaker/internal/types"
)

// analysisSampleRate is the PCM rate the audio scan decodes to.
const analysisSampleRate = 16000

// analyze probes the source and runs the audio and motion scans
// concurrently. Either scan failing fails the whole step; no partial
// peak set is returned.
func (r *run) analyze(ctx context.Context) (types.TimestampSet, types.TimestampSet, error) {
	dec := r.u.d.Decoder
	in := r.in.InputMP4

	info, err := dec.Probe(ctx, in)
	if err != nil {
		return nil, nil, types.NewStageError(types.ErrSourceRead, "probe", err)
	}
	if !info.HasVideo || info.Width <= 0 || info.Height <= 0 {
		return nil, nil, stageErrorf(types.ErrSourceRead, "probe", "%s has no decodable video stream", in)
	}
	if info.FPS <= 0 {
		return nil, nil, stageErrorf(types.ErrSourceRead, "probe", "%s reports no frame rate", in)
	}
	r.info = info
	r.sink.Logf("source: %s, %dx%d @ %.3f fps, audio=%t", info.Duration, info.Width, info.Height, info.FPS, info.HasAudio)

	audio := types.NewTimestampSet()
	var motion types.TimestampSet

	g, gctx := errgroup.WithContext(ctx)
	if info.HasAudio {
		g.Go(func() error {
			rc, err := dec.AudioPCM(gctx, in, analysisSampleRate)
			if err != nil {
				return types.NewStageError(types.ErrSourceRead, "decode audio", err)
			}
			peaks, scanErr := highlights.AudioPeaks(rc, analysisSampleRate, r.in.AudioThresholdDB)
			closeErr := rc.Close()
			if scanErr != nil {
				return types.NewStageError(types.ErrSourceRead, "scan audio", scanErr)
			}
			if closeErr != nil {
				return types.NewStageError(types.ErrSourceRead, "decode audio", closeErr)
			}
			audio = peaks
			return nil
		})
	} else {
		r.sink.Logf("source has no audio track, skipping audio scan")
	}
	g.Go(func() error {
		rc, err := dec.GrayFrames(gctx, in, info.Width, info.Height)
		if err != nil {
			return types.NewStageError(types.ErrSourceRead, "decode frames", err)
		}
		peaks, scanErr := highlights.MotionPeaks(rc, info.Width, info.Height, info.FPS, r.in.FrameDiffThreshold)
		closeErr := rc.Close()
		if scanErr != nil {
			return types.NewStageError(types.ErrSourceRead, "scan motion", scanErr)
		}
		if closeErr != nil {
			return types.NewStageError(types.ErrSourceRead, "decode frames", closeErr)
		}
		motion = peaks
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return audio, motion, nil
}

func stageErrorf(kind types.ErrorKind, op, format string, args ...any) error {
	return types.NewStageError(kind, op, errors.Errorf(format, args...))
}
