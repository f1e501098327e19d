package ffmpeg

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"time"

	ffmpeggo "github.com/u2takey/ffmpeg-go"

	"github.com/forPelevin/clipmaker/internal/types"
)

type probeResult struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
	Streams []struct {
		CodecType    string `json:"codec_type"`
		Width        int    `json:"width"`
		Height       int    `json:"height"`
		AvgFrameRate string `json:"avg_frame_rate"`
		RFrameRate   string `json:"r_frame_rate"`
	} `json:"streams"`
}

func (a *Adapter) Probe(ctx context.Context, inMP4 string) (types.MediaInfo, error) {
	cmd := exec.CommandContext(ctx, a.ffprobe,
		"-v", "error",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		inMP4,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	b, err := cmd.Output()
	if err != nil {
		return types.MediaInfo{}, fmt.Errorf("ffprobe: %w\n%s", err, stderr.String())
	}
	return parseProbe(b)
}

func parseProbe(b []byte) (types.MediaInfo, error) {
	var pr probeResult
	if err := json.Unmarshal(b, &pr); err != nil {
		return types.MediaInfo{}, fmt.Errorf("parse ffprobe json: %w", err)
	}
	var info types.MediaInfo
	if s := strings.TrimSpace(pr.Format.Duration); s != "" {
		sec, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return types.MediaInfo{}, fmt.Errorf("parse duration %q: %w", s, err)
		}
		info.Duration = time.Duration(sec * float64(time.Second))
	}
	for _, s := range pr.Streams {
		switch s.CodecType {
		case "video":
			if info.HasVideo {
				continue
			}
			info.HasVideo = true
			info.Width, info.Height = s.Width, s.Height
			info.FPS = parseFrameRate(s.AvgFrameRate)
			if info.FPS <= 0 {
				info.FPS = parseFrameRate(s.RFrameRate)
			}
		case "audio":
			info.HasAudio = true
		}
	}
	return info, nil
}

// parseFrameRate understands "30000/1001" and plain decimals; "0/0" is 0.
func parseFrameRate(s string) float64 {
	s = strings.TrimSpace(s)
	if num, den, ok := strings.Cut(s, "/"); ok {
		n, err1 := strconv.ParseFloat(num, 64)
		d, err2 := strconv.ParseFloat(den, 64)
		if err1 != nil || err2 != nil || d == 0 {
			return 0
		}
		return n / d
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

func (a *Adapter) AudioPCM(ctx context.Context, inMP4 string, sampleRate int) (io.ReadCloser, error) {
	return a.stream(ctx, "ffmpeg decode audio", pcmArgs(inMP4, sampleRate))
}

func (a *Adapter) GrayFrames(ctx context.Context, inMP4 string, width, height int) (io.ReadCloser, error) {
	return a.stream(ctx, "ffmpeg decode frames", grayArgs(inMP4, width, height))
}

func pcmArgs(inMP4 string, sampleRate int) []string {
	return ffmpeggo.Input(inMP4).
		Output("pipe:1", ffmpeggo.KwArgs{
			"map": "0:a:0",
			"ac":  1,
			"ar":  sampleRate,
			"c:a": "pcm_s16le",
			"f":   "s16le",
		}).
		GetArgs()
}

func grayArgs(inMP4 string, width, height int) []string {
	return ffmpeggo.Input(inMP4).
		Output("pipe:1", ffmpeggo.KwArgs{
			"map":     "0:v:0",
			"pix_fmt": "gray",
			"s":       fmt.Sprintf("%dx%d", width, height),
			"f":       "rawvideo",
		}).
		GetArgs()
}

func (a *Adapter) stream(ctx context.Context, op string, args []string) (io.ReadCloser, error) {
	args = append([]string{"-hide_banner", "-nostdin", "-loglevel", "error"}, args...)
	a.log.Debug().Strs("args", args).Msg(op)

	ctx, cancel := context.WithCancel(ctx)
	cmd := exec.CommandContext(ctx, a.ffmpeg, args...)
	ps := &procStream{op: op, cmd: cmd, cancel: cancel}
	cmd.Stderr = &ps.stderr
	out, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("%s: stdout pipe: %w", op, err)
	}
	if err := cmd.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("%s: start: %w", op, err)
	}
	ps.out = out
	return ps, nil
}

// procStream exposes a decoder's stdout. Close waits for the process and
// reports its failure once the stream was read to the end.
type procStream struct {
	op     string
	cmd    *exec.Cmd
	cancel context.CancelFunc
	out    io.ReadCloser
	stderr bytes.Buffer
	eof    bool
}

func (p *procStream) Read(b []byte) (int, error) {
	n, err := p.out.Read(b)
	if errors.Is(err, io.EOF) {
		p.eof = true
	}
	return n, err
}

func (p *procStream) Close() error {
	if !p.eof {
		p.cancel()
	}
	err := p.cmd.Wait()
	p.cancel()
	if err != nil && p.eof {
		return fmt.Errorf("%s: %w\n%s", p.op, err, strings.TrimSpace(p.stderr.String()))
	}
	return nil
}
