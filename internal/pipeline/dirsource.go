package pipeline

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/banshee-data/swing.report/internal/capture"
)

// DirFrameSource serves a directory of still frames, ordered by filename, as
// a FrameSource for batch runs. Operators extract frames from a recorded
// clip out of process (ffmpeg's %04d pattern keeps filename order equal to
// frame order) and point the batch command at the two directories. PNG and
// JPEG are accepted; other files in the directory are ignored.
type DirFrameSource struct {
	dir   string
	label string
	files []string
	next  int
}

// NewDirFrameSource lists the frame files under dir. It fails when the
// directory is unreadable or holds no decodable frame files; decode itself
// is deferred to Next.
func NewDirFrameSource(dir string) (*DirFrameSource, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read frame directory: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".png", ".jpg", ".jpeg":
			files = append(files, e.Name())
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no frame files (.png, .jpg) in %s", dir)
	}
	sort.Strings(files)

	return &DirFrameSource{
		dir:   dir,
		label: filepath.Base(dir),
		files: files,
	}, nil
}

// Next decodes and returns the next frame in filename order. A frame that
// fails to decode still advances the sequence: the returned frame is absent,
// carries its sequence number, and the error reports the file, so the batch
// loop can record the failure and keep the two sources aligned.
func (s *DirFrameSource) Next(ctx context.Context) (capture.Frame, bool, error) {
	if err := ctx.Err(); err != nil {
		return capture.Frame{}, false, err
	}
	if s.next >= len(s.files) {
		return capture.Frame{}, false, nil
	}
	name := s.files[s.next]
	s.next++
	seq := uint64(s.next)

	f, err := os.Open(filepath.Join(s.dir, name))
	if err != nil {
		return capture.Frame{CameraID: s.label, Seq: seq}, true, fmt.Errorf("open %s: %w", name, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return capture.Frame{CameraID: s.label, Seq: seq}, true, fmt.Errorf("decode %s: %w", name, err)
	}
	return frameFromImage(img, s.label, seq), true, nil
}

// Total returns the number of frame files listed at construction.
func (s *DirFrameSource) Total() int { return len(s.files) }

// Close releases nothing; files are opened and closed per frame.
func (s *DirFrameSource) Close() error { return nil }

// frameFromImage converts a decoded image into the packed RGB frame layout.
func frameFromImage(img image.Image, label string, seq uint64) capture.Frame {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	pixels := make([]byte, width*height*3)

	i := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			pixels[i] = byte(r >> 8)
			pixels[i+1] = byte(g >> 8)
			pixels[i+2] = byte(b >> 8)
			i += 3
		}
	}

	return capture.Frame{
		CameraID: label,
		Seq:      seq,
		Width:    width,
		Height:   height,
		Pixels:   pixels,
	}
}
