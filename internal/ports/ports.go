package ports

import (
	"context"
	"io"

	"github.com/forPelevin/clipmaker/internal/types"
)

// Decoder streams decoded media for signal analysis.
type Decoder interface {
	Probe(ctx context.Context, in string) (types.MediaInfo, error)
	// AudioPCM streams mono s16le samples. Close reports decoder failures.
	AudioPCM(ctx context.Context, in string, sampleRate int) (io.ReadCloser, error)
	// GrayFrames streams 8-bit single-channel frames of width*height bytes.
	GrayFrames(ctx context.Context, in string, width, height int) (io.ReadCloser, error)
}

// VideoTool is the transcode engine.
type VideoTool interface {
	ExtractClip(ctx context.Context, in string, w types.ClipWindow, outMP4 string) error
	ExtractAudioMono16k(ctx context.Context, inMP4, outWav string) error
	BurnSubtitles(ctx context.Context, inMP4, srtPath, outMP4 string) error
}

type ASR interface {
	Transcribe(ctx context.Context, wavPath, language string) (types.Transcript, error)
}

// LLM returns the primary text payload of a single completion.
type LLM interface {
	Complete(ctx context.Context, prompt string) (string, error)
}
