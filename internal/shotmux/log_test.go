package shotmux

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/swing.report/internal/timeutil"
)

func shotLine(ballSpeed float64, club string) string {
	return fmt.Sprintf(`{"BallData":{"Speed":%.1f},"ClubData":{"Speed":90},"Club":%q}`, ballSpeed, club)
}

func TestShotLog_ObserveDebounces(t *testing.T) {
	t.Parallel()

	clock := timeutil.NewMockClock(time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC))
	log := NewShotLog(3*time.Second, clock)

	log.Observe(shotLine(140, "7i"))
	latest, ok := log.Latest()
	require.True(t, ok)
	assert.Equal(t, 140.0, latest.BallSpeed)

	// A duplicate record inside the debounce interval is dropped.
	clock.Advance(time.Second)
	log.Observe(shotLine(141, "7i"))
	latest, _ = log.Latest()
	assert.Equal(t, 140.0, latest.BallSpeed)

	clock.Advance(3 * time.Second)
	log.Observe(shotLine(150, "driver"))
	latest, _ = log.Latest()
	assert.Equal(t, 150.0, latest.BallSpeed)

	seen, rejected := log.Stats()
	assert.Equal(t, 3, seen)
	assert.Equal(t, 1, rejected)
}

func TestShotLog_ObserveRejectsInvalid(t *testing.T) {
	t.Parallel()

	clock := timeutil.NewMockClock(time.Now())
	log := NewShotLog(0, clock)

	// Connector chatter that is not a JSON object never counts as seen.
	log.Observe("READY")
	log.Observe("")
	seen, rejected := log.Stats()
	assert.Zero(t, seen)
	assert.Zero(t, rejected)

	// Parsed but implausible records count as rejected.
	log.Observe(shotLine(400, "driver"))
	log.Observe(`{"Club":"7i"}`)
	seen, rejected = log.Stats()
	assert.Equal(t, 2, seen)
	assert.Equal(t, 2, rejected)

	_, ok := log.Latest()
	assert.False(t, ok)
}

func TestShotLog_ShotNear(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	clock := timeutil.NewMockClock(base)
	log := NewShotLog(3*time.Second, clock)

	log.Observe(shotLine(140, "7i"))
	clock.Advance(10 * time.Second)
	log.Observe(shotLine(150, "driver"))

	shot, ok := log.ShotNear(base.Add(2*time.Second), 5*time.Second)
	require.True(t, ok)
	assert.Equal(t, 140.0, shot.BallSpeed)

	// Closest wins when both qualify.
	shot, ok = log.ShotNear(base.Add(7*time.Second), 10*time.Second)
	require.True(t, ok)
	assert.Equal(t, 150.0, shot.BallSpeed)

	_, ok = log.ShotNear(base.Add(30*time.Second), 5*time.Second)
	assert.False(t, ok)
}

func TestShotLog_HistoryBounded(t *testing.T) {
	t.Parallel()

	clock := timeutil.NewMockClock(time.Now())
	log := NewShotLog(time.Millisecond, clock)

	for i := 0; i < shotLogCapacity+10; i++ {
		clock.Advance(time.Second)
		log.Observe(shotLine(float64(100+i%50), "7i"))
	}

	log.mu.Lock()
	n := len(log.shots)
	log.mu.Unlock()
	assert.Equal(t, shotLogCapacity, n)
}

// stubMux hands a pre-made channel to its single subscriber.
type stubMux struct {
	ch chan string
}

func (m *stubMux) Subscribe() (string, chan string) { return "stub", m.ch }
func (m *stubMux) Unsubscribe(string)               {}

func TestShotLog_RunConsumesFeed(t *testing.T) {
	t.Parallel()

	clock := timeutil.NewMockClock(time.Now())
	log := NewShotLog(3*time.Second, clock)
	mux := &stubMux{ch: make(chan string)}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- log.Run(ctx, mux) }()

	mux.ch <- shotLine(140, "7i")
	require.Eventually(t, func() bool {
		_, ok := log.Latest()
		return ok
	}, 2*time.Second, time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestShotLog_RunStopsOnClosedFeed(t *testing.T) {
	t.Parallel()

	log := NewShotLog(0, nil)
	mux := &stubMux{ch: make(chan string)}

	done := make(chan error, 1)
	go func() { done <- log.Run(context.Background(), mux) }()

	close(mux.ch)
	assert.NoError(t, <-done)
}
