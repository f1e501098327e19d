package subtitles

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/forPelevin/clipmaker/internal/types"
)

// RenderSRT serializes segments as sequentially numbered SubRip captions.
func RenderSRT(segs []types.Segment) string {
	var b strings.Builder
	for i, s := range segs {
		fmt.Fprintf(&b, "%d\n%s --> %s\n%s\n\n", i+1, FormatTimestamp(s.Start), FormatTimestamp(s.End), strings.TrimSpace(s.Text))
	}
	return b.String()
}

// FormatTimestamp renders seconds as HH:MM:SS,mmm. Milliseconds are
// truncated, not rounded, except that values within 1e-6 ms below a
// boundary land on it. Hours are not wrapped.
func FormatTimestamp(sec float64) string {
	if sec < 0 || math.IsNaN(sec) {
		sec = 0
	}
	// The epsilon absorbs binary representation error (1.001*1000 = 1000.999...),
	// so truncation is approximate right below a millisecond boundary.
	total := int64(math.Floor(sec*1000 + 1e-6))
	ms := total % 1000
	s := total / 1000
	h, rem := s/3600, s%3600
	m, s := rem/60, rem%60
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}

var timestampRe = regexp.MustCompile(`^(\d{2,}):(\d{2}):(\d{2})[,.](\d{3})$`)

// ParseTimestamp is the inverse of FormatTimestamp.
func ParseTimestamp(ts string) (float64, error) {
	m := timestampRe.FindStringSubmatch(strings.TrimSpace(ts))
	if m == nil {
		return 0, fmt.Errorf("invalid srt timestamp %q", ts)
	}
	var parts [4]int64
	for i := range parts {
		v, err := strconv.ParseInt(m[i+1], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid srt timestamp %q: %w", ts, err)
		}
		parts[i] = v
	}
	if parts[1] > 59 || parts[2] > 59 {
		return 0, fmt.Errorf("invalid srt timestamp %q: minutes/seconds out of range", ts)
	}
	ms := ((parts[0]*60+parts[1])*60+parts[2])*1000 + parts[3]
	return float64(ms) / 1000, nil
}

// ParseSRT reads captions produced by RenderSRT (or any well-formed SubRip
// track). Caption numbering is ignored.
func ParseSRT(content string) ([]types.Segment, error) {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	var out []types.Segment
	for _, block := range strings.Split(content, "\n\n") {
		lines := strings.Split(strings.Trim(block, "\n"), "\n")
		if len(lines) == 0 || strings.TrimSpace(lines[0]) == "" {
			continue
		}
		timing := 0
		if !strings.Contains(lines[0], "-->") {
			timing = 1
		}
		if timing >= len(lines) {
			return nil, fmt.Errorf("srt block without timing: %q", block)
		}
		from, to, ok := strings.Cut(lines[timing], "-->")
		if !ok {
			return nil, fmt.Errorf("srt block without timing: %q", block)
		}
		start, err := ParseTimestamp(from)
		if err != nil {
			return nil, err
		}
		end, err := ParseTimestamp(to)
		if err != nil {
			return nil, err
		}
		out = append(out, types.Segment{
			Start: start,
			End:   end,
			Text:  strings.TrimSpace(strings.Join(lines[timing+1:], "\n")),
		})
	}
	return out, nil
}

// TranscriptText joins trimmed segment texts with single spaces. No
// segments means no dialogue and yields "".
func TranscriptText(segs []types.Segment) string {
	parts := make([]string, 0, len(segs))
	for _, s := range segs {
		if t := strings.TrimSpace(s.Text); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}
