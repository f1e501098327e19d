package usecase

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/forPelevin/clipmaker/internal/types"
)

// fakeDecoder serves a 2x1 gray video at 1 fps so frame k maps to second k.
type fakeDecoder struct {
	info     types.MediaInfo
	pcm      []byte
	frames   []byte
	probeErr error
	pcmClose error
}

func (f *fakeDecoder) Probe(context.Context, string) (types.MediaInfo, error) {
	return f.info, f.probeErr
}

func (f *fakeDecoder) AudioPCM(context.Context, string, int) (io.ReadCloser, error) {
	return &closeErrReader{Reader: bytes.NewReader(f.pcm), err: f.pcmClose}, nil
}

func (f *fakeDecoder) GrayFrames(context.Context, string, int, int) (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(f.frames)), nil
}

type closeErrReader struct {
	io.Reader
	err error
}

func (c *closeErrReader) Close() error { return c.err }

func testInfo(seconds int) types.MediaInfo {
	return types.MediaInfo{
		Duration: time.Duration(seconds) * time.Second,
		FPS:      1,
		Width:    2,
		Height:   1,
		HasAudio: true,
		HasVideo: true,
	}
}

// pcmWithPeaks returns mono s16le audio at analysisSampleRate where only
// the listed seconds are loud (about -6 dBFS).
func pcmWithPeaks(seconds int, loud ...int) []byte {
	isLoud := map[int]bool{}
	for _, s := range loud {
		isLoud[s] = true
	}
	buf := make([]byte, 0, seconds*analysisSampleRate*2)
	for s := 0; s < seconds; s++ {
		var v int16
		if isLoud[s] {
			v = 16384
		}
		for i := 0; i < analysisSampleRate; i++ {
			buf = binary.LittleEndian.AppendUint16(buf, uint16(v))
		}
	}
	return buf
}

// framesWithMotion returns count 2x1 frames whose intensity flips between
// 0 and 100 at each listed frame index.
func framesWithMotion(count int, changes ...int) []byte {
	flip := map[int]bool{}
	for _, c := range changes {
		flip[c] = true
	}
	var v byte
	out := make([]byte, 0, count*2)
	for k := 0; k < count; k++ {
		if flip[k] {
			v = 100 - v
		}
		out = append(out, v, v)
	}
	return out
}

type fakeVideo struct {
	mu         sync.Mutex
	windows    []types.ClipWindow
	burns      []string
	srtSeen    []string
	noBurnOut  map[string]bool
	extractErr error
}

func (f *fakeVideo) ExtractClip(_ context.Context, _ string, w types.ClipWindow, outMP4 string) error {
	f.mu.Lock()
	f.windows = append(f.windows, w)
	f.mu.Unlock()
	if f.extractErr != nil {
		return f.extractErr
	}
	return os.WriteFile(outMP4, []byte("raw"), 0o644)
}

func (f *fakeVideo) ExtractAudioMono16k(_ context.Context, _, outWav string) error {
	return os.WriteFile(outWav, []byte("wav"), 0o644)
}

func (f *fakeVideo) BurnSubtitles(_ context.Context, _, srtPath, outMP4 string) error {
	b, err := os.ReadFile(srtPath)
	if err != nil {
		return err
	}
	f.mu.Lock()
	f.burns = append(f.burns, outMP4)
	f.srtSeen = append(f.srtSeen, string(b))
	f.mu.Unlock()
	if f.noBurnOut[filepath.Base(outMP4)] {
		// ffmpeg exited cleanly but wrote nothing.
		return nil
	}
	return os.WriteFile(outMP4, []byte("sub"), 0o644)
}

func (f *fakeVideo) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.windows) + len(f.burns)
}

type fakeASR struct {
	segs  []types.Segment
	err   error
	calls int
}

func (f *fakeASR) Transcribe(_ context.Context, wavPath, _ string) (types.Transcript, error) {
	f.calls++
	if _, err := os.Stat(wavPath); err != nil {
		return types.Transcript{}, err
	}
	return types.Transcript{Segments: f.segs}, f.err
}

type fakeLLM struct {
	content string
	err     error
	prompts []string
}

func (f *fakeLLM) Complete(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.content, f.err
}

type recSink struct {
	mu    sync.Mutex
	lines []string
}

func (s *recSink) Logf(format string, args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = append(s.lines, fmt.Sprintf(format, args...))
}

func (s *recSink) contains(sub string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.lines {
		if strings.Contains(l, sub) {
			return true
		}
	}
	return false
}

var errBoom = errors.New("boom")
