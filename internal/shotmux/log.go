package shotmux

import (
	"context"
	"sync"
	"time"

	"github.com/banshee-data/swing.report/internal/swing"
	"github.com/banshee-data/swing.report/internal/timeutil"
)

// defaultMinShotInterval debounces the feed: the monitor occasionally emits
// duplicate records for one ball strike.
const defaultMinShotInterval = 3 * time.Second

// shotLogCapacity bounds the retained shot history.
const shotLogCapacity = 64

// ShotLog subscribes to a ShotMux, parses and validates the feed, and keeps
// a bounded history of accepted shots for timestamp-based lookup. It is the
// pipeline's ShotProvider.
type ShotLog struct {
	minInterval time.Duration
	clock       timeutil.Clock

	mu           sync.Mutex
	shots        []swing.ShotData
	lastAccepted time.Time
	seen         int
	rejected     int
}

// NewShotLog builds a shot log. minInterval <= 0 uses the 3 second default;
// a nil clock uses the real clock.
func NewShotLog(minInterval time.Duration, clock timeutil.Clock) *ShotLog {
	if minInterval <= 0 {
		minInterval = defaultMinShotInterval
	}
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	return &ShotLog{minInterval: minInterval, clock: clock}
}

// Run consumes the feed until the context is cancelled or the mux closes its
// subscriber channel.
func (l *ShotLog) Run(ctx context.Context, mux Muxer) error {
	id, ch := mux.Subscribe()
	defer mux.Unsubscribe(id)

	opsf("shot log: consuming feed (min interval %s)", l.minInterval)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-ch:
			if !ok {
				return nil
			}
			l.Observe(line)
		}
	}
}

// Observe parses and, if valid, records one feed line. Exposed so tests and
// replay tooling can feed lines without a running mux.
func (l *ShotLog) Observe(line string) {
	now := l.clock.Now()
	shot, ok := ParseShot(line, now)
	if !ok {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.seen++

	if !ValidShot(shot) {
		l.rejected++
		tracef("shot rejected: ball speed %.1f out of range", shot.BallSpeed)
		return
	}
	if !l.lastAccepted.IsZero() && now.Sub(l.lastAccepted) < l.minInterval {
		l.rejected++
		tracef("shot rejected: %s since previous (min %s)", now.Sub(l.lastAccepted), l.minInterval)
		return
	}

	l.lastAccepted = now
	l.shots = append(l.shots, shot)
	if len(l.shots) > shotLogCapacity {
		l.shots = l.shots[len(l.shots)-shotLogCapacity:]
	}
	diagf("shot accepted: ball=%.1fmph club=%.1fmph carry=%.0f", shot.BallSpeed, shot.ClubSpeed, shot.CarryDistance)
}

// ShotNear returns the accepted shot closest to t within the window, or
// ok=false when none qualifies.
func (l *ShotLog) ShotNear(t time.Time, window time.Duration) (swing.ShotData, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	best := -1
	var bestGap time.Duration
	for i, s := range l.shots {
		gap := t.Sub(s.Timestamp)
		if gap < 0 {
			gap = -gap
		}
		if gap > window {
			continue
		}
		if best < 0 || gap < bestGap {
			best, bestGap = i, gap
		}
	}
	if best < 0 {
		return swing.ShotData{}, false
	}
	return l.shots[best], true
}

// Latest returns the most recently accepted shot.
func (l *ShotLog) Latest() (swing.ShotData, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.shots) == 0 {
		return swing.ShotData{}, false
	}
	return l.shots[len(l.shots)-1], true
}

// Stats reports how many feed lines parsed as shots and how many were
// rejected by validation or debounce.
func (l *ShotLog) Stats() (seen, rejected int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.seen, l.rejected
}
