package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/forPelevin/clipmaker/internal/config"
	"github.com/forPelevin/clipmaker/internal/ports"
	"github.com/forPelevin/clipmaker/internal/ports/adapters/ffmpeg"
	"github.com/forPelevin/clipmaker/internal/ports/adapters/openrouter"
	"github.com/forPelevin/clipmaker/internal/ports/adapters/whispercpp"
	"github.com/forPelevin/clipmaker/internal/runlog"
	"github.com/forPelevin/clipmaker/internal/types"
	"github.com/forPelevin/clipmaker/internal/usecase"
)

const ManifestName = "manifest.json"

type Config struct {
	InputMP4  string
	OutDir    string
	ClipsN    int
	ClipLen   time.Duration
	MinGapSec int
	Subtitles bool

	// Settings is the file configuration, read once per process.
	Settings config.Config
	Logger   zerolog.Logger
}

func (c Config) Validate() error {
	if c.InputMP4 == "" {
		return errors.New("input is empty")
	}
	if _, err := os.Stat(c.InputMP4); err != nil {
		return fmt.Errorf("stat input: %w", err)
	}
	if c.ClipsN <= 0 {
		return fmt.Errorf("clips must be > 0")
	}
	if c.ClipLen <= 0 {
		return fmt.Errorf("clip duration must be > 0")
	}
	if c.MinGapSec < 0 {
		return fmt.Errorf("gap must be >= 0")
	}
	if err := checkWorkspace(c.OutDir, c.InputMP4); err != nil {
		return err
	}
	if c.Subtitles && c.Settings.WhisperModel == "" {
		return fmt.Errorf("whisper model path is required when subtitles are enabled")
	}
	if err := c.Settings.Validate(); err != nil {
		return err
	}
	return openrouter.ValidateBaseURL(
		c.Settings.OpenRouterBaseURL,
		c.Settings.OpenRouterAllowedHosts,
	)
}

// checkWorkspace rejects directories whose clearing would take the input
// or the working directory with it.
func checkWorkspace(outDir, input string) error {
	if strings.TrimSpace(outDir) == "" {
		return errors.New("output directory is empty")
	}
	absOut, err := filepath.Abs(outDir)
	if err != nil {
		return err
	}
	if absOut == filepath.Dir(absOut) {
		return fmt.Errorf("refusing to use filesystem root %s as workspace", absOut)
	}
	if wd, err := os.Getwd(); err == nil && absOut == wd {
		return fmt.Errorf("refusing to use the working directory as workspace")
	}
	absIn, err := filepath.Abs(input)
	if err != nil {
		return err
	}
	if rel, err := filepath.Rel(absOut, absIn); err == nil && !strings.HasPrefix(rel, "..") {
		return fmt.Errorf("input %s is inside workspace %s, which is cleared on every run", input, outDir)
	}
	return nil
}

// Run executes one run synchronously.
func Run(ctx context.Context, cfg Config) (usecase.Result, error) {
	sink, err := prepare(cfg)
	if err != nil {
		return usecase.Result{}, err
	}
	defer sink.Close()
	return execute(ctx, cfg, sink), nil
}

// prepare clears the workspace, keeping the run log, and opens the sink.
func prepare(cfg Config) (*runlog.Sink, error) {
	removed, err := cleanWorkspace(cfg.OutDir)
	if err != nil {
		return nil, err
	}
	sink, err := runlog.Open(cfg.OutDir, cfg.Logger)
	if err != nil {
		return nil, err
	}
	sink.Logf("workspace %s ready (%d stale entries removed)", cfg.OutDir, removed)
	return sink, nil
}

func execute(ctx context.Context, cfg Config, sink *runlog.Sink) usecase.Result {
	s := cfg.Settings
	log := cfg.Logger

	// adapters
	v := ffmpeg.New(s.FFmpeg, s.FFprobe, log)
	asr := whispercpp.New(s.WhisperBin, s.WhisperModel, log)
	llm := openrouter.New(openrouter.Options{
		APIKey:  s.OpenRouterKey,
		Model:   s.OpenRouterModel,
		BaseURL: s.OpenRouterBaseURL,
	}, log)

	uc := usecase.New(usecase.Deps{
		Decoder: v,
		Video:   v,
		ASR:     asr,
		LLM:     llm,
	})

	res := uc.Run(ctx, usecase.Input{
		InputMP4:           cfg.InputMP4,
		OutDir:             cfg.OutDir,
		ClipsN:             cfg.ClipsN,
		ClipLen:            cfg.ClipLen,
		MinGapSec:          cfg.MinGapSec,
		Subtitles:          cfg.Subtitles,
		Lang:               s.Lang,
		AudioThresholdDB:   s.AudioThreshold,
		FrameDiffThreshold: s.FrameDiffThreshold,
	}, sink)

	if res.State == types.StateDone {
		p, err := writeManifest(cfg.OutDir, res.Manifest)
		if err != nil {
			sink.Logf("manifest not written: %v", err)
		} else {
			sink.Logf("manifest written (%d clips): %s", len(res.Manifest.Clips), p)
		}
	}
	return res
}

// cleanWorkspace creates dir or removes everything in it except the run log.
func cleanWorkspace(dir string) (int, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("mkdir workspace: %w", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("read workspace: %w", err)
	}
	n := 0
	for _, e := range entries {
		if e.Name() == runlog.FileName {
			continue
		}
		if err := os.RemoveAll(filepath.Join(dir, e.Name())); err != nil {
			return n, fmt.Errorf("clear workspace: %w", err)
		}
		n++
	}
	return n, nil
}

func writeManifest(dir string, m types.Manifest) (string, error) {
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal manifest: %w", err)
	}
	p := filepath.Join(dir, ManifestName)
	if err := os.WriteFile(p, b, 0o644); err != nil {
		return "", err
	}
	return p, nil
}

// ensure adapters implement ports
var _ ports.Decoder = (*ffmpeg.Adapter)(nil)
var _ ports.VideoTool = (*ffmpeg.Adapter)(nil)
var _ ports.ASR = (*whispercpp.Adapter)(nil)
var _ ports.LLM = (*openrouter.Adapter)(nil)
