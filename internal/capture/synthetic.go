package capture

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/banshee-data/swing.report/internal/timeutil"
)

// ErrSourceClosed is returned by Grab after the source has been closed.
var ErrSourceClosed = errors.New("capture: source closed")

// SyntheticSource produces blank frames at a fixed rate. It stands in for a
// physical camera in tests and on development machines with no video device.
type SyntheticSource struct {
	mu     sync.Mutex
	closed bool

	width    int
	height   int
	interval time.Duration
	clock    timeutil.Clock
}

// NewSyntheticSource builds a synthetic camera emitting width x height frames
// at the given rate. A nil clock uses the real clock.
func NewSyntheticSource(width, height int, fps float64, clock timeutil.Clock) *SyntheticSource {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	interval := time.Second
	if fps > 0 {
		interval = time.Duration(float64(time.Second) / fps)
	}
	return &SyntheticSource{
		width:    width,
		height:   height,
		interval: interval,
		clock:    clock,
	}
}

// Grab waits one frame interval and returns a blank frame.
func (s *SyntheticSource) Grab(ctx context.Context) (Frame, error) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return Frame{}, ErrSourceClosed
	}

	select {
	case <-ctx.Done():
		return Frame{}, ctx.Err()
	case <-s.clock.After(s.interval):
	}

	return Frame{
		Timestamp: s.clock.Now(),
		Width:     s.width,
		Height:    s.height,
		Pixels:    make([]byte, s.width*s.height*3),
	}, nil
}

// Close marks the source closed; subsequent Grab calls fail.
func (s *SyntheticSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
