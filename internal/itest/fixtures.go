//go:build integration

package itest

import (
	"os/exec"
	"path/filepath"
	"testing"
)

// makeBurstFixture writes a 30 s flat gray video whose audio is loud only
// during seconds 8-10, 18-20 and 28-30.
func makeBurstFixture(t *testing.T, dir string) string {
	t.Helper()
	return ffmpegFixture(t, filepath.Join(dir, "bursts.mp4"),
		"-f", "lavfi", "-i", "color=c=gray:s=320x240:d=30:r=10",
		"-f", "lavfi", "-i", `aevalsrc=0.9*sin(2*PI*440*t)*gte(mod(t\,10)\,8):s=16000:d=30`,
	)
}

// makeSilentFixture writes a static, silent video with no highlights.
func makeSilentFixture(t *testing.T, dir string) string {
	t.Helper()
	return ffmpegFixture(t, filepath.Join(dir, "silent.mp4"),
		"-f", "lavfi", "-i", "color=c=black:s=320x240:d=12:r=10",
		"-f", "lavfi", "-i", "anullsrc=r=16000:cl=mono:d=12",
	)
}

func ffmpegFixture(t *testing.T, out string, inputs ...string) string {
	t.Helper()
	args := append([]string{"-y", "-hide_banner"}, inputs...)
	args = append(args, "-shortest", "-c:v", "libx264", "-pix_fmt", "yuv420p", "-c:a", "aac", out)
	if b, err := exec.Command("ffmpeg", args...).CombinedOutput(); err != nil {
		t.Fatalf("ffmpeg fixture failed: %v\n%s", err, string(b))
	}
	return out
}
