package capture

import (
	"sync"
	"time"
)

// FrameBuffer is a fixed-capacity ring of recent frames for one camera.
// A single producer goroutine pushes; any number of readers snapshot. Readers
// always see complete frames, never partially written ones, and snapshots
// copy the slice headers out under the lock so later pushes cannot mutate a
// reader's view.
type FrameBuffer struct {
	mu     sync.Mutex
	frames []Frame
	head   int
	count  int
	seq    uint64
}

// NewFrameBuffer sizes a ring to hold maxSeconds of footage at the given
// frame rate. Capacity is clamped to at least one frame.
func NewFrameBuffer(maxSeconds float64, fps float64) *FrameBuffer {
	capacity := int(maxSeconds * fps)
	if capacity < 1 {
		capacity = 1
	}
	return &FrameBuffer{frames: make([]Frame, capacity)}
}

// Capacity returns the maximum number of frames the buffer retains.
func (b *FrameBuffer) Capacity() int { return len(b.frames) }

// Len returns the number of frames currently held.
func (b *FrameBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count
}

// Push appends a frame, evicting the oldest when full, and stamps the
// frame's sequence number. Only the producer goroutine may call Push.
func (b *FrameBuffer) Push(f Frame) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.seq++
	f.Seq = b.seq
	idx := (b.head + b.count) % len(b.frames)
	if b.count == len(b.frames) {
		b.head = (b.head + 1) % len(b.frames)
		idx = (b.head + b.count - 1) % len(b.frames)
	} else {
		b.count++
	}
	b.frames[idx] = f
}

// Latest returns the most recent frame, or false when the buffer is empty.
func (b *FrameBuffer) Latest() (Frame, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.count == 0 {
		return Frame{}, false
	}
	return b.frames[(b.head+b.count-1)%len(b.frames)], true
}

// Snapshot returns the frames from the trailing window of the given length,
// oldest first. The window is half-open, (newest-window, newest], anchored at
// the newest frame's timestamp rather than the wall clock. The anchor is
// deliberate: a producer that stalled seconds ago still yields its trailing
// frames, where a wall-clock anchor would return nothing. An empty buffer
// returns nil.
func (b *FrameBuffer) Snapshot(window time.Duration) []Frame {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.count == 0 {
		return nil
	}
	newest := b.frames[(b.head+b.count-1)%len(b.frames)].Timestamp
	cutoff := newest.Add(-window)

	out := make([]Frame, 0, b.count)
	for i := 0; i < b.count; i++ {
		f := b.frames[(b.head+i)%len(b.frames)]
		if !f.Timestamp.After(cutoff) {
			continue
		}
		out = append(out, f)
	}
	return out
}

// SnapshotAll returns every buffered frame, oldest first.
func (b *FrameBuffer) SnapshotAll() []Frame {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Frame, 0, b.count)
	for i := 0; i < b.count; i++ {
		out = append(out, b.frames[(b.head+i)%len(b.frames)])
	}
	return out
}
