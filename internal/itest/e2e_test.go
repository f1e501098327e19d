//go:build integration

package itest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/forPelevin/clipmaker/internal/types"
)

var logLineRE = regexp.MustCompile(`^\[\d{2}:\d{2}:\d{2}\] `)

func TestE2E(t *testing.T) {
	if os.Getenv("OPENROUTER_API_KEY") == "" {
		t.Skip("OPENROUTER_API_KEY is required for the end-to-end run")
	}
	repoRoot := mustRepoRoot(t)
	tmp := t.TempDir()
	in := makeBurstFixture(t, tmp)
	outDir := filepath.Join(tmp, "output")

	args := []string{in, "--out", outDir, "--clips", "3", "--duration", "20", "--gap", "10"}
	if _, err := os.Stat(filepath.Join(repoRoot, ".cache", "models", "ggml-base.bin")); err != nil {
		args = append(args, "--subtitles=false")
	}
	res := runCLI(t, repoRoot, args, nil)
	if res.exitCode != 0 {
		t.Fatalf("clipmaker failed (%d):\n%s", res.exitCode, res.output)
	}

	b, err := os.ReadFile(filepath.Join(outDir, "manifest.json"))
	if err != nil {
		t.Fatalf("missing manifest: %v", err)
	}
	var m types.Manifest
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatalf("decode manifest: %v", err)
	}
	if len(m.Clips) != 3 {
		t.Fatalf("expected 3 clips, got %d", len(m.Clips))
	}
	for i, c := range m.Clips {
		raw := filepath.Join(outDir, c.RawFile)
		if filepath.Base(raw) != fmt.Sprintf("clip_%d_raw.mp4", i) {
			t.Fatalf("unexpected raw clip name %s", raw)
		}
		dur, err := probeDurationSeconds(raw)
		if err != nil {
			t.Fatalf("probe %s: %v", raw, err)
		}
		if want := c.EndSec - c.StartSec; dur > want+0.5 {
			t.Fatalf("clip %d lasts %.2fs, window is %.2fs", i, dur, want)
		}
	}

	logBytes, err := os.ReadFile(filepath.Join(outDir, "log.txt"))
	if err != nil {
		t.Fatalf("missing log.txt: %v", err)
	}
	for _, l := range strings.Split(strings.TrimSpace(string(logBytes)), "\n") {
		if !logLineRE.MatchString(l) {
			t.Fatalf("log line without timestamp: %q", l)
		}
	}
}

func TestE2E_NoHighlights(t *testing.T) {
	repoRoot := mustRepoRoot(t)
	tmp := t.TempDir()
	in := makeSilentFixture(t, tmp)
	outDir := filepath.Join(tmp, "output")

	res := runCLI(t, repoRoot, []string{in, "--out", outDir}, map[string]string{"OPENROUTER_API_KEY": "dummy"})
	if res.exitCode != 0 {
		t.Fatalf("expected success, got %d:\n%s", res.exitCode, res.output)
	}
	if !strings.Contains(res.output, "no highlights found") {
		t.Fatalf("expected no-highlights report:\n%s", res.output)
	}
	clips, _ := filepath.Glob(filepath.Join(outDir, "clip_*.mp4"))
	if len(clips) != 0 {
		t.Fatalf("expected no clips, got %v", clips)
	}
}
