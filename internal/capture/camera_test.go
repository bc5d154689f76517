package capture

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubSource hands out a fixed number of frames and then blocks until the
// context is cancelled.
type stubSource struct {
	frames int
	failN  int
	served int
}

func (s *stubSource) Grab(ctx context.Context) (Frame, error) {
	if s.failN > 0 {
		s.failN--
		return Frame{}, errors.New("transient device error")
	}
	if s.served >= s.frames {
		<-ctx.Done()
		return Frame{}, ctx.Err()
	}
	s.served++
	return Frame{Width: 4, Height: 2, Pixels: make([]byte, 4*2*3)}, nil
}

func (s *stubSource) Close() error { return nil }

func TestCamera_RunFillsBuffer(t *testing.T) {
	t.Parallel()

	buf := NewFrameBuffer(1, 10)
	cam := NewCamera("front", &stubSource{frames: 6}, buf, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- cam.Run(ctx) }()

	require.Eventually(t, func() bool { return buf.Len() == 6 },
		2*time.Second, 5*time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)

	frames := buf.SnapshotAll()
	for _, f := range frames {
		assert.Equal(t, "front", f.CameraID)
		assert.False(t, f.Timestamp.IsZero())
	}
	assert.Zero(t, cam.GrabErrors())
}

func TestCamera_RetriesGrabErrors(t *testing.T) {
	t.Parallel()

	buf := NewFrameBuffer(1, 10)
	cam := NewCamera("side", &stubSource{frames: 2, failN: 3}, buf, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- cam.Run(ctx) }()

	require.Eventually(t, func() bool { return buf.Len() == 2 },
		2*time.Second, 5*time.Millisecond)
	cancel()
	<-done

	assert.Equal(t, uint64(3), cam.GrabErrors())
}

func TestSyntheticSource_ProducesFrames(t *testing.T) {
	t.Parallel()

	src := NewSyntheticSource(8, 6, 1000, nil)
	defer src.Close()

	f, err := src.Grab(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 8, f.Width)
	assert.Equal(t, 6, f.Height)
	assert.Len(t, f.Pixels, 8*6*3)
	assert.False(t, f.Absent())

	require.NoError(t, src.Close())
	_, err = src.Grab(context.Background())
	assert.ErrorIs(t, err, ErrSourceClosed)
}

func TestResizeToWidth(t *testing.T) {
	t.Parallel()

	t.Run("downscales preserving aspect", func(t *testing.T) {
		f := Frame{Width: 4, Height: 2, Pixels: make([]byte, 4*2*3)}
		// Mark the top-left pixel so sampling is observable.
		f.Pixels[0], f.Pixels[1], f.Pixels[2] = 1, 2, 3

		got := ResizeToWidth(f, 2)
		assert.Equal(t, 2, got.Width)
		assert.Equal(t, 1, got.Height)
		assert.Len(t, got.Pixels, 2*1*3)
		assert.Equal(t, []byte{1, 2, 3}, got.Pixels[:3])
	})

	t.Run("no upscale", func(t *testing.T) {
		f := Frame{Width: 4, Height: 2, Pixels: make([]byte, 4*2*3)}
		got := ResizeToWidth(f, 8)
		assert.Equal(t, f.Width, got.Width)
	})

	t.Run("absent frame untouched", func(t *testing.T) {
		got := ResizeToWidth(Frame{}, 320)
		assert.True(t, got.Absent())
	})
}

func TestFrameClone(t *testing.T) {
	t.Parallel()

	f := Frame{Width: 1, Height: 1, Pixels: []byte{9, 9, 9}}
	c := f.Clone()
	c.Pixels[0] = 0
	assert.Equal(t, byte(9), f.Pixels[0])
}
