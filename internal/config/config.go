// Package config loads the file configuration that is read once per
// process and passed by value to every run.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

type Config struct {
	AudioThreshold     float64 `toml:"AUDIO_THRESHOLD" yaml:"AUDIO_THRESHOLD"`
	FrameDiffThreshold float64 `toml:"FRAME_DIFF_THRESHOLD" yaml:"FRAME_DIFF_THRESHOLD"`
	Lang               string  `toml:"LANG" yaml:"LANG"`
	OpenRouterKey      string  `toml:"OPENROUTER_KEY" yaml:"OPENROUTER_KEY"`

	OpenRouterModel        string   `toml:"OPENROUTER_MODEL" yaml:"OPENROUTER_MODEL"`
	OpenRouterBaseURL      string   `toml:"OPENROUTER_BASE_URL" yaml:"OPENROUTER_BASE_URL"`
	OpenRouterAllowedHosts []string `toml:"OPENROUTER_ALLOWED_HOSTS" yaml:"OPENROUTER_ALLOWED_HOSTS"`

	FFmpeg       string `toml:"FFMPEG" yaml:"FFMPEG"`
	FFprobe      string `toml:"FFPROBE" yaml:"FFPROBE"`
	WhisperBin   string `toml:"WHISPER_BIN" yaml:"WHISPER_BIN"`
	WhisperModel string `toml:"WHISPER_MODEL" yaml:"WHISPER_MODEL"`
}

func Default() Config {
	return Config{
		AudioThreshold:     -20,
		FrameDiffThreshold: 30,
		Lang:               "ru",
		OpenRouterModel:    "mistralai/mistral-7b-instruct:free",
		OpenRouterBaseURL:  "https://openrouter.ai",
		FFmpeg:             "ffmpeg",
		FFprobe:            "ffprobe",
		WhisperBin:         ".cache/bin/whisper.cpp",
		WhisperModel:       ".cache/models/ggml-base.bin",
	}
}

// Load reads path over the defaults. With an empty path the first existing
// of config.toml, config.yaml and config.yml is used; if none exists the
// defaults are returned.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = findConfigFile()
		if path == "" {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		return Config{}, fmt.Errorf("unsupported config format %q (want .toml, .yaml or .yml)", filepath.Ext(path))
	}
	return cfg, nil
}

func findConfigFile() string {
	for _, p := range []string{"config.toml", "config.yaml", "config.yml"} {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// ApplyEnv overrides file values with non-empty environment variables.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if getenv == nil {
		getenv = os.Getenv
	}
	str := func(key string, dst *string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *float64) error {
		v := strings.TrimSpace(getenv(key))
		if v == "" {
			return nil
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = f
		return nil
	}

	str("OPENROUTER_KEY", &c.OpenRouterKey)
	str("OPENROUTER_API_KEY", &c.OpenRouterKey)
	str("OPENROUTER_MODEL", &c.OpenRouterModel)
	str("OPENROUTER_BASE_URL", &c.OpenRouterBaseURL)
	str("CLIPMAKER_LANG", &c.Lang)
	str("FFMPEG", &c.FFmpeg)
	str("FFPROBE", &c.FFprobe)
	str("WHISPER_BIN", &c.WhisperBin)
	str("WHISPER_MODEL", &c.WhisperModel)
	if v := strings.TrimSpace(getenv("OPENROUTER_ALLOWED_HOSTS")); v != "" {
		c.OpenRouterAllowedHosts = splitList(v)
	}
	if err := num("AUDIO_THRESHOLD", &c.AudioThreshold); err != nil {
		return err
	}
	return num("FRAME_DIFF_THRESHOLD", &c.FrameDiffThreshold)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (c Config) Validate() error {
	var errs []error
	if math.IsNaN(c.AudioThreshold) || math.IsInf(c.AudioThreshold, 0) {
		errs = append(errs, errors.New("AUDIO_THRESHOLD must be a finite number"))
	}
	if math.IsNaN(c.FrameDiffThreshold) || c.FrameDiffThreshold < 0 || c.FrameDiffThreshold > 255 {
		errs = append(errs, errors.New("FRAME_DIFF_THRESHOLD must be within [0, 255]"))
	}
	if strings.TrimSpace(c.Lang) == "" {
		errs = append(errs, errors.New("LANG is required"))
	}
	if strings.TrimSpace(c.OpenRouterKey) == "" {
		errs = append(errs, errors.New("OPENROUTER_KEY is required (config file, OPENROUTER_API_KEY or .env)"))
	}
	return errors.Join(errs...)
}
