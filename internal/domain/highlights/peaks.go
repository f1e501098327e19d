package highlights

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/forPelevin/clipmaker/internal/types"
)

// fullScale is the largest magnitude of a signed 16-bit sample.
const fullScale = 32768.0

// AudioPeaks reads mono s16le PCM and returns the starting second of every
// 1-second bucket louder than thresholdDB. The trailing partial bucket is
// evaluated as well. Buckets never overlap and are judged independently.
func AudioPeaks(r io.Reader, sampleRate int, thresholdDB float64) (types.TimestampSet, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("audio peaks: sample rate must be > 0, got %d", sampleRate)
	}
	peaks := types.TimestampSet{}
	buf := make([]byte, sampleRate*2)
	for sec := 0; ; sec++ {
		n, err := io.ReadFull(r, buf)
		if n >= 2 && DBFS(buf[:n-n%2]) > thresholdDB {
			peaks.Add(sec)
		}
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return peaks, nil
		}
		if err != nil {
			return nil, fmt.Errorf("audio peaks: read pcm: %w", err)
		}
	}
}

// DBFS returns the RMS loudness of little-endian s16 samples relative to
// full scale. Silence is -Inf.
func DBFS(pcm []byte) float64 {
	n := len(pcm) / 2
	if n == 0 {
		return math.Inf(-1)
	}
	var sum float64
	for i := 0; i < n; i++ {
		v := float64(int16(binary.LittleEndian.Uint16(pcm[2*i:])))
		sum += v * v
	}
	rms := math.Sqrt(sum / float64(n))
	if rms == 0 {
		return math.Inf(-1)
	}
	return 20 * math.Log10(rms/fullScale)
}

// MotionPeaks reads consecutive 8-bit grayscale frames of width*height bytes.
// For every (previous, current) pair whose mean absolute difference exceeds
// threshold, the second floor(currentIndex/fps) is marked. fps is taken as
// constant for the whole stream.
func MotionPeaks(r io.Reader, width, height int, fps, threshold float64) (types.TimestampSet, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("motion peaks: invalid frame size %dx%d", width, height)
	}
	if fps <= 0 || math.IsNaN(fps) || math.IsInf(fps, 0) {
		return nil, fmt.Errorf("motion peaks: invalid frame rate %v", fps)
	}

	size := width * height
	prev := make([]byte, size)
	cur := make([]byte, size)
	peaks := types.TimestampSet{}

	if _, err := io.ReadFull(r, prev); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return peaks, nil
		}
		return nil, fmt.Errorf("motion peaks: read frame: %w", err)
	}
	for idx := 1; ; idx++ {
		if _, err := io.ReadFull(r, cur); err != nil {
			// A short tail is an incomplete frame, not a comparison.
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return peaks, nil
			}
			return nil, fmt.Errorf("motion peaks: read frame: %w", err)
		}
		if MeanAbsDiff(prev, cur) > threshold {
			peaks.Add(int(math.Floor(float64(idx) / fps)))
		}
		prev, cur = cur, prev
	}
}

// MeanAbsDiff is the mean per-pixel absolute difference of two equally sized
// intensity planes.
func MeanAbsDiff(a, b []byte) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	if n == 0 {
		return 0
	}
	var sum uint64
	for i := 0; i < n; i++ {
		if a[i] > b[i] {
			sum += uint64(a[i] - b[i])
		} else {
			sum += uint64(b[i] - a[i])
		}
	}
	return float64(sum) / float64(n)
}
