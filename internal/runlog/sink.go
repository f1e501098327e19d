// Package runlog is the run's log sink: log.txt in the workspace, a
// progress feed for the interactive side and a zerolog mirror.
package runlog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const FileName = "log.txt"

const lineTimeFormat = "15:04:05"

type Sink struct {
	mu     sync.Mutex
	f      *os.File
	feed   []string
	closed bool
	log    zerolog.Logger
	now    func() time.Time
}

// Open appends to dir/log.txt, creating dir when needed.
func Open(dir string, log zerolog.Logger) (*Sink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir workspace: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(dir, FileName), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open run log: %w", err)
	}
	return &Sink{f: f, log: log, now: time.Now}, nil
}

// Logf writes "[HH:MM:SS] message" lines, one per line of the message. It
// never blocks on readers of the feed; a failed file write only reaches the
// zerolog mirror.
func (s *Sink) Logf(format string, args ...any) {
	msg := strings.TrimRight(fmt.Sprintf(format, args...), "\n")

	s.mu.Lock()
	defer s.mu.Unlock()

	stamp := s.now().Format(lineTimeFormat)
	var b strings.Builder
	for _, part := range strings.Split(msg, "\n") {
		line := fmt.Sprintf("[%s] %s", stamp, strings.TrimRight(part, "\r"))
		s.feed = append(s.feed, line)
		b.WriteString(line)
		b.WriteByte('\n')
	}
	s.log.Debug().Msg(msg)
	if s.closed {
		return
	}
	if _, err := s.f.WriteString(b.String()); err != nil {
		s.log.Warn().Err(err).Msg("write run log")
	}
}

// Drain returns the lines published since the previous call.
func (s *Sink) Drain() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.feed
	s.feed = nil
	return out
}

func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.f.Close()
}
