package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/swing.report/internal/swing"
)

func TestSession_Lifecycle(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	s := NewSession("7i")

	assert.NotEmpty(t, s.ID)
	assert.Equal(t, SessionIdle, s.State())
	assert.Equal(t, "7i", s.Club())

	require.NoError(t, s.Start(now))
	assert.Equal(t, SessionActive, s.State())
	assert.Equal(t, now, s.StartedAt())

	// Transitions only move forward.
	err := s.Start(now)
	assert.ErrorIs(t, err, ErrSessionState)

	require.NoError(t, s.Stop(now.Add(time.Minute)))
	assert.Equal(t, SessionStopped, s.State())

	assert.ErrorIs(t, s.Stop(now), ErrSessionState)
	assert.ErrorIs(t, s.Start(now), ErrSessionState)
}

func TestSession_StopFromIdle(t *testing.T) {
	t.Parallel()

	s := NewSession("")
	assert.ErrorIs(t, s.Stop(time.Now()), ErrSessionState)
}

func TestSession_AppendPose(t *testing.T) {
	t.Parallel()

	s := NewSession("7i")
	pose := swing.PoseFrame{Landmarks: map[swing.Joint]swing.Landmark{
		swing.JointWristL: {Y: 0.5},
	}}

	// Poses appended outside Active are dropped.
	s.AppendPose(pose)
	assert.Zero(t, s.PoseCount())

	require.NoError(t, s.Start(time.Now()))
	s.AppendPose(pose)
	assert.Equal(t, 1, s.PoseCount())

	snap := s.PoseSnapshot()
	require.Len(t, snap, 1)

	// The snapshot is a copy: later appends do not grow it.
	s.AppendPose(pose)
	assert.Len(t, snap, 1)

	s.ResetPoses()
	assert.Zero(t, s.PoseCount())
}

func TestSession_PoseWindowBounded(t *testing.T) {
	t.Parallel()

	s := NewSession("")
	require.NoError(t, s.Start(time.Now()))

	for i := 0; i < maxSessionPoses+25; i++ {
		s.AppendPose(swing.PoseFrame{Landmarks: map[swing.Joint]swing.Landmark{
			swing.JointWristL: {Y: float64(i)},
		}})
	}
	assert.Equal(t, maxSessionPoses, s.PoseCount())

	// Oldest entries evicted: the window starts 25 poses in.
	snap := s.PoseSnapshot()
	lm, ok := snap[0].Landmark(swing.JointWristL)
	require.True(t, ok)
	assert.Equal(t, 25.0, lm.Y)
}

func TestSession_AcceptSwingDebounce(t *testing.T) {
	t.Parallel()

	s := NewSession("")
	base := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	debounce := 3 * time.Second

	assert.True(t, s.AcceptSwing(base, debounce))
	assert.False(t, s.AcceptSwing(base.Add(2*time.Second), debounce), "within debounce")
	assert.True(t, s.AcceptSwing(base.Add(3*time.Second), debounce), "debounce boundary accepts")
	assert.Equal(t, 2, s.SwingCount())
}

func TestSession_StopDropsPoseWindow(t *testing.T) {
	t.Parallel()

	s := NewSession("")
	require.NoError(t, s.Start(time.Now()))
	s.AppendPose(swing.PoseFrame{Landmarks: map[swing.Joint]swing.Landmark{swing.JointWristL: {}}})
	require.NoError(t, s.Stop(time.Now()))
	assert.Zero(t, s.PoseCount())
}
