// Package timeutil abstracts the time operations the capture rig depends
// on. The live polling loop, swing debounce, batch deadline and shot log all
// take a Clock so tests can drive them with a MockClock instead of waiting
// out real intervals.
package timeutil

import (
	"sync"
	"time"
)

// Clock is the time surface the rig consumes. RealClock backs production;
// MockClock backs tests.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// Since returns the duration elapsed since t.
	Since(t time.Time) time.Duration

	// Sleep pauses the calling goroutine for the given duration.
	Sleep(d time.Duration)

	// After returns a channel that delivers the current time once the
	// duration has elapsed.
	After(d time.Duration) <-chan time.Time

	// NewTimer returns a Timer that delivers once after at least d.
	NewTimer(d time.Duration) Timer

	// NewTicker returns a Ticker that delivers repeatedly with period d.
	NewTicker(d time.Duration) Ticker
}

// Timer is a single-shot timer. The live loop uses timers for bounded waits
// that a test clock must be able to expire on demand.
type Timer interface {
	// C returns the channel the expiry time is delivered on.
	C() <-chan time.Time

	// Stop prevents the timer from firing. It reports whether the timer
	// was still pending.
	Stop() bool

	// Reset re-arms the timer to expire after d.
	Reset(d time.Duration) bool
}

// Ticker delivers ticks at a fixed period. The live polling loop runs off
// one ticker per orchestrator.
type Ticker interface {
	// C returns the channel ticks are delivered on.
	C() <-chan time.Time

	// Stop turns the ticker off.
	Stop()

	// Reset stops the ticker and restarts it with period d.
	Reset(d time.Duration)
}

// RealClock implements Clock with the standard time package.
type RealClock struct{}

// Now returns the current wall-clock time.
func (RealClock) Now() time.Time {
	return time.Now()
}

// Since returns the time elapsed since t.
func (RealClock) Since(t time.Time) time.Duration {
	return time.Since(t)
}

// Sleep pauses the calling goroutine for at least d.
func (RealClock) Sleep(d time.Duration) {
	time.Sleep(d)
}

// After waits for d to elapse and then delivers the current time.
func (RealClock) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}

// NewTimer returns a Timer backed by time.Timer.
func (RealClock) NewTimer(d time.Duration) Timer {
	return &realTimer{timer: time.NewTimer(d)}
}

// NewTicker returns a Ticker backed by time.Ticker.
func (RealClock) NewTicker(d time.Duration) Ticker {
	return &realTicker{ticker: time.NewTicker(d)}
}

type realTimer struct {
	timer *time.Timer
}

func (t *realTimer) C() <-chan time.Time { return t.timer.C }
func (t *realTimer) Stop() bool          { return t.timer.Stop() }
func (t *realTimer) Reset(d time.Duration) bool {
	return t.timer.Reset(d)
}

type realTicker struct {
	ticker *time.Ticker
}

func (t *realTicker) C() <-chan time.Time { return t.ticker.C }
func (t *realTicker) Stop()               { t.ticker.Stop() }
func (t *realTicker) Reset(d time.Duration) {
	t.ticker.Reset(d)
}

// MockClock is a manually driven Clock for tests. Time only moves when the
// test calls Set or Advance; Advance fires any timers and tickers whose
// deadlines it crosses, which is how the debounce and timeout tests step the
// pipeline through a swing without real waits.
type MockClock struct {
	mu      sync.Mutex
	now     time.Time
	sleeps  []time.Duration
	timers  []*MockTimer
	tickers []*MockTicker
}

// NewMockClock returns a MockClock frozen at t.
func NewMockClock(t time.Time) *MockClock {
	return &MockClock{now: t}
}

// Now returns the mocked current time.
func (c *MockClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Set jumps the mock clock to an absolute time without firing timers.
func (c *MockClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// Advance moves the mock clock forward by d and fires every timer and
// ticker whose deadline is now due.
func (c *MockClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	now := c.now
	timers := c.timers
	tickers := c.tickers
	c.mu.Unlock()

	for _, t := range timers {
		t.checkAndFire(now)
	}
	for _, t := range tickers {
		t.checkAndFire(now)
	}
}

// Since returns the mocked duration since t.
func (c *MockClock) Since(t time.Time) time.Duration {
	return c.Now().Sub(t)
}

// Sleep records the requested duration and returns immediately. Mock time
// does not move; use Sleeps to assert on the recorded pauses.
func (c *MockClock) Sleep(d time.Duration) {
	c.mu.Lock()
	c.sleeps = append(c.sleeps, d)
	c.mu.Unlock()
}

// Sleeps returns every duration passed to Sleep, in call order.
func (c *MockClock) Sleeps() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	result := make([]time.Duration, len(c.sleeps))
	copy(result, c.sleeps)
	return result
}

// After returns a channel that receives the mock time once Advance crosses
// the deadline.
func (c *MockClock) After(d time.Duration) <-chan time.Time {
	timer := c.NewTimer(d)
	return timer.C()
}

// NewTimer registers and returns a MockTimer due at now+d.
func (c *MockClock) NewTimer(d time.Duration) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := &MockTimer{
		ch:       make(chan time.Time, 1),
		deadline: c.now.Add(d),
		duration: d,
	}
	c.timers = append(c.timers, t)
	return t
}

// NewTicker registers and returns a MockTicker with period d.
func (c *MockClock) NewTicker(d time.Duration) Ticker {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := &MockTicker{
		ch:       make(chan time.Time, 1),
		interval: d,
		nextTick: c.now.Add(d),
		duration: d,
	}
	c.tickers = append(c.tickers, t)
	return t
}

// MockTimer is a single-shot timer driven by MockClock.Advance.
type MockTimer struct {
	mu       sync.Mutex
	ch       chan time.Time
	deadline time.Time
	duration time.Duration
	stopped  bool
	fired    bool
}

// C returns the timer channel.
func (t *MockTimer) C() <-chan time.Time {
	return t.ch
}

// Stop prevents the timer from firing and reports whether it was pending.
func (t *MockTimer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	wasActive := !t.stopped && !t.fired
	t.stopped = true
	return wasActive
}

// Reset re-arms the timer and reports whether it was pending.
func (t *MockTimer) Reset(d time.Duration) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	wasActive := !t.stopped && !t.fired
	t.stopped = false
	t.fired = false
	t.duration = d
	return wasActive
}

func (t *MockTimer) checkAndFire(now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stopped || t.fired {
		return
	}

	if now.After(t.deadline) || now.Equal(t.deadline) {
		t.fired = true
		select {
		case t.ch <- now:
		default:
		}
	}
}

// MockTicker is a periodic ticker driven by MockClock.Advance, with a
// Trigger escape hatch for tests that step a polling loop one tick at a
// time regardless of mock time.
type MockTicker struct {
	mu       sync.Mutex
	ch       chan time.Time
	interval time.Duration
	nextTick time.Time
	duration time.Duration
	stopped  bool
}

// C returns the ticker channel.
func (t *MockTicker) C() <-chan time.Time {
	return t.ch
}

// Stop turns the ticker off.
func (t *MockTicker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
}

// Reset restarts the ticker with period d.
func (t *MockTicker) Reset(d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = false
	t.duration = d
}

// Trigger sends one tick carrying the given time, bypassing the schedule.
// The tick is dropped if the channel is full.
func (t *MockTicker) Trigger(now time.Time) {
	select {
	case t.ch <- now:
	default:
	}
}

func (t *MockTicker) checkAndFire(now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stopped {
		return
	}

	if now.After(t.nextTick) || now.Equal(t.nextTick) {
		select {
		case t.ch <- now:
		default:
		}
		t.nextTick = now.Add(t.interval)
	}
}
