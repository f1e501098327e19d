package whispercpp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"

	"github.com/forPelevin/clipmaker/internal/types"
)

type Adapter struct {
	bin   string
	model string
	log   zerolog.Logger
}

func New(binPath, modelPath string, log zerolog.Logger) *Adapter {
	return &Adapter{bin: binPath, model: modelPath, log: log.With().Str("component", "whisper").Logger()}
}

// Transcribe writes whisper.cpp JSON next to the wav and removes it after
// reading.
func (a *Adapter) Transcribe(ctx context.Context, wavPath, language string) (types.Transcript, error) {
	outPrefix := strings.TrimSuffix(wavPath, ".wav") + ".whisper"
	args := []string{
		"-m", a.model,
		"-f", wavPath,
		"-oj",
		"-of", outPrefix,
	}
	if language != "" {
		args = append(args, "-l", language)
	}
	a.log.Debug().Strs("args", args).Msg("whisper.cpp")
	cmd := exec.CommandContext(ctx, a.bin, args...)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return types.Transcript{}, fmt.Errorf("whisper.cpp failed: %w\n%s", err, string(b))
	}

	jsonPath := outPrefix + ".json"
	jb, err := os.ReadFile(jsonPath)
	if err != nil {
		return types.Transcript{}, err
	}
	_ = os.Remove(jsonPath)
	return parseOutput(jb)
}

type whisperJSON struct {
	Transcription []struct {
		Offsets struct {
			From int64 `json:"from"`
			To   int64 `json:"to"`
		} `json:"offsets"`
		Text string `json:"text"`
	} `json:"transcription"`
	Segments []types.Segment `json:"segments"`
}

// parseOutput accepts whisper.cpp's native "transcription" array (offsets in
// milliseconds) as well as a plain "segments" array in seconds.
func parseOutput(b []byte) (types.Transcript, error) {
	var raw whisperJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return types.Transcript{}, fmt.Errorf("parse whisper.cpp json: %w", err)
	}
	var tr types.Transcript
	switch {
	case len(raw.Transcription) > 0:
		for _, t := range raw.Transcription {
			tr.Segments = append(tr.Segments, types.Segment{
				Start: float64(t.Offsets.From) / 1000,
				End:   float64(t.Offsets.To) / 1000,
				Text:  t.Text,
			})
		}
	default:
		tr.Segments = raw.Segments
	}
	out := tr.Segments[:0]
	for _, s := range tr.Segments {
		s.Text = strings.TrimSpace(s.Text)
		if s.Text == "" {
			continue
		}
		out = append(out, s)
	}
	tr.Segments = out
	return tr, nil
}
