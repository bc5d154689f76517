package shotmux

import (
	"bytes"
	"errors"
	"io"
	"sync"
	"time"
)

// MockShotPort implements ShotPorter over an io.Pipe, emitting a canned shot
// line on a fixed period. Useful for development machines without a monitor.
type MockShotPort struct {
	io.Reader
	io.WriteCloser
}

// NewMockShotMux creates a ShotMux backed by a mock port that replays
// mockLine every interval.
func NewMockShotMux(mockLine []byte, interval time.Duration) *ShotMux[*MockShotPort] {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	r, w := io.Pipe()

	mockPort := &MockShotPort{
		Reader:      r,
		WriteCloser: nopWriteCloser{},
	}

	go func() {
		defer w.Close()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for range ticker.C {
			if _, err := w.Write(append(mockLine, '\n')); err != nil {
				return
			}
		}
	}()

	return NewShotMux(mockPort)
}

type nopWriteCloser struct{}

func (nopWriteCloser) Write(p []byte) (int, error) { return len(p), nil }
func (nopWriteCloser) Close() error                { return nil }

// TestablePort implements ShotPorter with configurable behaviour for tests:
// scripted reads, captured writes, injectable errors, optional blocking.
type TestablePort struct {
	mu sync.Mutex

	// ReadBuffer holds data to be returned by Read calls
	ReadBuffer *bytes.Buffer

	// WriteBuffer captures data written to the port
	WriteBuffer *bytes.Buffer

	// ReadError is returned by the next Read call if set
	ReadError error

	// WriteError is returned by the next Write call if set
	WriteError error

	// CloseError is returned by Close if set
	CloseError error

	// Closed indicates whether Close was called
	Closed bool

	// BlockReads causes Read to block until data is added or Close is called
	BlockReads bool

	readCond *sync.Cond
}

// NewTestablePort creates a TestablePort.
func NewTestablePort() *TestablePort {
	tp := &TestablePort{
		ReadBuffer:  bytes.NewBuffer(nil),
		WriteBuffer: bytes.NewBuffer(nil),
	}
	tp.readCond = sync.NewCond(&tp.mu)
	return tp
}

func (t *TestablePort) Read(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.Closed {
		return 0, errors.New("port closed")
	}
	if t.ReadError != nil {
		err := t.ReadError
		t.ReadError = nil
		return 0, err
	}
	if t.BlockReads && t.ReadBuffer.Len() == 0 {
		for !t.Closed && t.ReadBuffer.Len() == 0 {
			t.readCond.Wait()
		}
		if t.Closed {
			return 0, errors.New("port closed")
		}
	}
	return t.ReadBuffer.Read(p)
}

func (t *TestablePort) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.Closed {
		return 0, errors.New("port closed")
	}
	if t.WriteError != nil {
		err := t.WriteError
		t.WriteError = nil
		return 0, err
	}
	return t.WriteBuffer.Write(p)
}

func (t *TestablePort) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Closed = true
	t.readCond.Broadcast()
	return t.CloseError
}

// AddReadData appends data for subsequent Read calls and wakes one blocked
// reader.
func (t *TestablePort) AddReadData(data []byte) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ReadBuffer.Write(data)
	t.readCond.Signal()
}

// WrittenData returns everything written to the port.
func (t *TestablePort) WrittenData() []byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.WriteBuffer.Bytes()
}
