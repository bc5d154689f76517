// Package capture provides per-camera frame acquisition: a blocking Source
// contract, a fixed-duration ring buffer filled by one producer goroutine
// per camera, and read-only snapshots for consumers.
package capture

import "time"

// Frame is one captured image with its acquisition timestamp. Pixels are
// tightly packed 24-bit RGB (stride = Width*3). Frames are immutable after
// creation; consumers receive copies, never references into the live buffer.
type Frame struct {
	CameraID  string
	Seq       uint64
	Timestamp time.Time
	Width     int
	Height    int
	Pixels    []byte
}

// Absent reports whether the frame carries no image data.
func (f Frame) Absent() bool { return len(f.Pixels) == 0 }

// Clone returns a deep copy of the frame.
func (f Frame) Clone() Frame {
	out := f
	if f.Pixels != nil {
		out.Pixels = make([]byte, len(f.Pixels))
		copy(out.Pixels, f.Pixels)
	}
	return out
}

// ResizeToWidth scales a frame to the target width with nearest-neighbour
// sampling, preserving aspect ratio. Frames at or below the target width are
// returned unchanged. Quality modes map to target widths before pose
// adaptation; the pose adapter never sees full-resolution frames in speed
// mode.
func ResizeToWidth(f Frame, targetWidth int) Frame {
	if targetWidth <= 0 || f.Width <= targetWidth || f.Height == 0 {
		return f
	}
	scale := float64(f.Width) / float64(targetWidth)
	targetHeight := int(float64(f.Height) / scale)
	if targetHeight < 1 {
		targetHeight = 1
	}

	out := f
	out.Width = targetWidth
	out.Height = targetHeight
	out.Pixels = make([]byte, targetWidth*targetHeight*3)

	for y := 0; y < targetHeight; y++ {
		srcY := int(float64(y) * scale)
		if srcY >= f.Height {
			srcY = f.Height - 1
		}
		for x := 0; x < targetWidth; x++ {
			srcX := int(float64(x) * scale)
			if srcX >= f.Width {
				srcX = f.Width - 1
			}
			si := (srcY*f.Width + srcX) * 3
			di := (y*targetWidth + x) * 3
			if si+2 < len(f.Pixels) {
				copy(out.Pixels[di:di+3], f.Pixels[si:si+3])
			}
		}
	}
	return out
}
