package capture

import (
	"context"
	"fmt"
	"time"

	"github.com/banshee-data/swing.report/internal/timeutil"
)

// Source is a blocking frame producer, typically a camera device. Grab
// returns the next available frame or an error; transient errors are
// retried by the producer loop, a closed source ends it.
type Source interface {
	Grab(ctx context.Context) (Frame, error)
	Close() error
}

// grabRetryDelay spaces retries after a transient Grab failure so a wedged
// device cannot spin the producer loop.
const grabRetryDelay = 10 * time.Millisecond

// Camera ties one Source to one FrameBuffer and runs the producer loop.
type Camera struct {
	ID    string
	src   Source
	buf   *FrameBuffer
	clock timeutil.Clock

	grabErrors uint64
}

// NewCamera builds a camera producer. A nil clock uses the real clock.
func NewCamera(id string, src Source, buf *FrameBuffer, clock timeutil.Clock) *Camera {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	return &Camera{ID: id, src: src, buf: buf, clock: clock}
}

// Buffer exposes the camera's ring buffer to consumers.
func (c *Camera) Buffer() *FrameBuffer { return c.buf }

// Run drives the acquisition loop until the context is cancelled. Each
// grabbed frame is stamped with the camera id and acquisition time before
// being pushed. Grab errors are logged and retried; the loop only exits on
// context cancellation.
func (c *Camera) Run(ctx context.Context) error {
	opsf("camera %s: producer loop starting", c.ID)
	defer opsf("camera %s: producer loop stopped", c.ID)

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		frame, err := c.src.Grab(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.grabErrors++
			diagf("camera %s: grab error (%d total): %v", c.ID, c.grabErrors, err)
			c.clock.Sleep(grabRetryDelay)
			continue
		}
		frame.CameraID = c.ID
		if frame.Timestamp.IsZero() {
			frame.Timestamp = c.clock.Now()
		}
		c.buf.Push(frame)
		tracef("camera %s: frame %dx%d at %s", c.ID, frame.Width, frame.Height, frame.Timestamp.Format(time.RFC3339Nano))
	}
}

// GrabErrors reports how many transient acquisition failures the loop has
// absorbed. Read after Run returns, or accept a racy value.
func (c *Camera) GrabErrors() uint64 { return c.grabErrors }

// String implements fmt.Stringer for log lines.
func (c *Camera) String() string {
	return fmt.Sprintf("camera(%s cap=%d)", c.ID, c.buf.Capacity())
}
