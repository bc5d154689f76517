package pipeline

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/swing.report/internal/swing"
)

// SessionState is one step of the session lifecycle. Transitions only move
// forward: Idle to Active to Stopped.
type SessionState string

const (
	SessionIdle    SessionState = "idle"
	SessionActive  SessionState = "active"
	SessionStopped SessionState = "stopped"
)

// maxSessionPoses bounds the pose window a live session accumulates. At 60
// frames per second this holds about five seconds of swing.
const maxSessionPoses = 300

// Session owns the lifecycle of one capture session and the pose window the
// live loop accumulates for it. All state transitions and window mutations
// are serialised behind the session mutex; at most one analysis pass runs at
// a time, guarded by the in-flight flag on the owning orchestrator.
type Session struct {
	ID string

	mu          sync.Mutex
	state       SessionState
	club        string
	startedAt   time.Time
	stoppedAt   time.Time
	lastSwingAt time.Time
	swingCount  int
	poses       []swing.PoseFrame
}

// NewSession creates a session in the Idle state.
func NewSession(club string) *Session {
	return &Session{
		ID:    uuid.NewString(),
		state: SessionIdle,
		club:  club,
	}
}

// State returns the current lifecycle state.
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Club returns the club type the session was started with.
func (s *Session) Club() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.club
}

// Start transitions Idle to Active. Any other starting state returns
// ErrSessionState.
func (s *Session) Start(now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != SessionIdle {
		return fmt.Errorf("%w: start from %s", ErrSessionState, s.state)
	}
	s.state = SessionActive
	s.startedAt = now
	opsf("session %s: started", s.ID)
	return nil
}

// Stop transitions Active to Stopped and drops the pose window.
func (s *Session) Stop(now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != SessionActive {
		return fmt.Errorf("%w: stop from %s", ErrSessionState, s.state)
	}
	s.state = SessionStopped
	s.stoppedAt = now
	s.poses = nil
	opsf("session %s: stopped after %d swings", s.ID, s.swingCount)
	return nil
}

// AppendPose adds one adapted pose to the session window, evicting the
// oldest entry beyond capacity. Poses appended while not Active are dropped.
func (s *Session) AppendPose(p swing.PoseFrame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != SessionActive {
		return
	}
	s.poses = append(s.poses, p)
	if len(s.poses) > maxSessionPoses {
		s.poses = s.poses[len(s.poses)-maxSessionPoses:]
	}
}

// PoseSnapshot returns a copy of the accumulated pose window.
func (s *Session) PoseSnapshot() []swing.PoseFrame {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]swing.PoseFrame, len(s.poses))
	copy(out, s.poses)
	return out
}

// PoseCount returns the current pose window length.
func (s *Session) PoseCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.poses)
}

// ResetPoses clears the pose window after an accepted swing so the next
// swing starts from a clean sequence.
func (s *Session) ResetPoses() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.poses = nil
}

// AcceptSwing records an accepted detection if the debounce interval has
// elapsed since the previous one. It returns false, without mutating state,
// when the swing arrives too soon.
func (s *Session) AcceptSwing(now time.Time, debounce time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.lastSwingAt.IsZero() && now.Sub(s.lastSwingAt) < debounce {
		return false
	}
	s.lastSwingAt = now
	s.swingCount++
	return true
}

// SwingCount returns how many swings the session has accepted.
func (s *Session) SwingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.swingCount
}

// StartedAt returns when the session became Active (zero if never started).
func (s *Session) StartedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.startedAt
}
