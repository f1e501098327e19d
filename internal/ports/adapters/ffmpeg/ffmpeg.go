package ffmpeg

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	ffmpeggo "github.com/u2takey/ffmpeg-go"

	"github.com/forPelevin/clipmaker/internal/types"
)

type Adapter struct {
	ffmpeg  string
	ffprobe string
	log     zerolog.Logger
}

func New(ffmpegPath, ffprobePath string, log zerolog.Logger) *Adapter {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &Adapter{
		ffmpeg:  ffmpegPath,
		ffprobe: ffprobePath,
		log:     log.With().Str("component", "ffmpeg").Logger(),
	}
}

func (a *Adapter) ExtractClip(ctx context.Context, inMP4 string, w types.ClipWindow, outMP4 string) error {
	if err := a.run(ctx, "ffmpeg extract clip", clipArgs(inMP4, w, outMP4)); err != nil {
		return err
	}
	return nil
}

func (a *Adapter) ExtractAudioMono16k(ctx context.Context, inMP4, outWav string) error {
	args := ffmpeggo.Input(inMP4).
		Output(outWav, ffmpeggo.KwArgs{
			"map": "0:a:0",
			"ac":  1,
			"ar":  16000,
			"f":   "wav",
		}).
		OverWriteOutput().
		GetArgs()
	return a.run(ctx, "ffmpeg extract audio", args)
}

func (a *Adapter) BurnSubtitles(ctx context.Context, inMP4, srtPath, outMP4 string) error {
	return a.run(ctx, "ffmpeg burn subtitles", burnArgs(inMP4, srtPath, outMP4))
}

func (a *Adapter) run(ctx context.Context, op string, args []string) error {
	args = append([]string{"-hide_banner", "-nostdin"}, args...)
	a.log.Debug().Strs("args", args).Msg(op)
	cmd := exec.CommandContext(ctx, a.ffmpeg, args...)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s: %w\n%s", op, err, string(b))
	}
	return nil
}

func clipArgs(inMP4 string, w types.ClipWindow, outMP4 string) []string {
	return ffmpeggo.Input(inMP4, ffmpeggo.KwArgs{
		"ss": fmtSeconds(w.Start),
		"t":  fmtSeconds(w.Duration()),
	}).
		Output(outMP4, ffmpeggo.KwArgs{
			"c:v":    "libx264",
			"preset": "veryfast",
			"crf":    18,
			"c:a":    "aac",
			"b:a":    "192k",
		}).
		OverWriteOutput().
		GetArgs()
}

func burnArgs(inMP4, srtPath, outMP4 string) []string {
	return ffmpeggo.Input(inMP4).
		Output(outMP4, ffmpeggo.KwArgs{
			"vf":     "subtitles=" + escapeFilterPath(srtPath) + ":charenc=UTF-8",
			"c:v":    "libx264",
			"preset": "veryfast",
			"crf":    18,
			"c:a":    "copy",
		}).
		OverWriteOutput().
		GetArgs()
}

func fmtSeconds(d time.Duration) string {
	sec := float64(d) / float64(time.Second)
	return strconv.FormatFloat(sec, 'f', 3, 64)
}

func escapeFilterPath(p string) string {
	p = strings.ReplaceAll(p, "\\", "\\\\")
	p = strings.ReplaceAll(p, ":", "\\:")
	p = strings.ReplaceAll(p, "'", "\\'")
	return p
}
