package highlights

import (
	"fmt"
	"time"

	"github.com/forPelevin/clipmaker/internal/types"
)

// Select merges both peak sets and scans the union in ascending order,
// accepting a second when it is at least minGap past the last accepted one.
// At most maxCount anchors are returned, in ascending order.
//
// The scan is greedy and order-dependent; it does not try to maximize
// coverage or loudness.
func Select(audio, motion types.TimestampSet, maxCount, minGap int) []types.Anchor {
	if maxCount <= 0 {
		return nil
	}
	var out []types.Anchor
	for _, sec := range types.Union(audio, motion).Sorted() {
		if len(out) > 0 && sec-int(out[len(out)-1]) < minGap {
			continue
		}
		out = append(out, types.Anchor(sec))
		if len(out) == maxCount {
			break
		}
	}
	return out
}

// Window starts one second before the anchor (never before zero) and lasts
// clipLen. When sourceDur is known, the end is clamped to it.
func Window(a types.Anchor, clipLen, sourceDur time.Duration) (types.ClipWindow, error) {
	if clipLen <= 0 {
		return types.ClipWindow{}, fmt.Errorf("clip duration must be > 0")
	}
	startSec := int(a) - 1
	if startSec < 0 {
		startSec = 0
	}
	w := types.ClipWindow{Start: time.Duration(startSec) * time.Second}
	w.End = w.Start + clipLen
	if sourceDur > 0 {
		if w.Start >= sourceDur {
			return types.ClipWindow{}, fmt.Errorf("window start %s is past source duration %s", w.Start, sourceDur)
		}
		if w.End > sourceDur {
			w.End = sourceDur
		}
	}
	return w, nil
}
