package swing

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func posedFrame(place map[Joint]Landmark) PoseFrame {
	return PoseFrame{Landmarks: place}
}

func TestExtractMetrics_AllAbsent(t *testing.T) {
	t.Parallel()

	events := SwingEvents{Address: 0, Top: 54, Impact: 72, Finish: 89}
	m := ExtractMetrics(PoseFrame{}, PoseFrame{}, PoseFrame{}, events, 60)

	// Pose-derived metrics zero out; time-derived metrics still compute.
	assert.Zero(t, m.HipRotationTop)
	assert.Zero(t, m.ShoulderRotationTop)
	assert.Zero(t, m.XFactor)
	assert.Zero(t, m.SpineAngleAddress)
	assert.Zero(t, m.WeightTransfer)
	assert.InDelta(t, 0.9, m.BackswingTime, 1e-9)
	assert.InDelta(t, 0.3, m.DownswingTime, 1e-9)
	assert.InDelta(t, 3.0, m.TempoRatio, 1e-9)
}

func TestExtractMetrics_ZeroFPS(t *testing.T) {
	t.Parallel()

	events := SwingEvents{Address: 0, Top: 10, Impact: 15, Finish: 20}
	m := ExtractMetrics(PoseFrame{}, PoseFrame{}, PoseFrame{}, events, 0)
	assert.Zero(t, m.BackswingTime)
	assert.Zero(t, m.DownswingTime)
	assert.InDelta(t, 2.0, m.TempoRatio, 1e-9)
}

func TestExtractMetrics_HipRotation(t *testing.T) {
	t.Parallel()

	// Hip axis flat at address, rotated 45 degrees in the ground plane at the
	// top (dz == dx).
	address := posedFrame(map[Joint]Landmark{
		JointHipL: {X: 0.44, Y: 0.58, Z: 0},
		JointHipR: {X: 0.56, Y: 0.58, Z: 0},
	})
	top := posedFrame(map[Joint]Landmark{
		JointHipL: {X: 0.45, Y: 0.58, Z: -0.05},
		JointHipR: {X: 0.55, Y: 0.58, Z: 0.05},
	})

	m := ExtractMetrics(address, top, PoseFrame{}, SwingEvents{}, 60)
	assert.InDelta(t, 45.0, m.HipRotationTop, 1e-6)
	// Shoulders missing in both frames: rotation zero, x-factor negative.
	assert.Zero(t, m.ShoulderRotationTop)
	assert.InDelta(t, -45.0, m.XFactor, 1e-6)
}

func TestExtractMetrics_SpineAngle(t *testing.T) {
	t.Parallel()

	// Shoulder midpoint offset 0.1 horizontally and 0.26 vertically from the
	// hip midpoint: atan2(0.1, 0.26) is about 21 degrees of forward tilt.
	f := posedFrame(map[Joint]Landmark{
		JointShoulderL: {X: 0.35, Y: 0.32},
		JointShoulderR: {X: 0.45, Y: 0.32},
		JointHipL:      {X: 0.45, Y: 0.58},
		JointHipR:      {X: 0.55, Y: 0.58},
	})
	m := ExtractMetrics(f, PoseFrame{}, f, SwingEvents{}, 60)

	want := math.Atan2(0.1, 0.26) * 180 / math.Pi
	assert.InDelta(t, want, m.SpineAngleAddress, 1e-6)
	assert.InDelta(t, want, m.SpineAngleImpact, 1e-6)
	assert.InDelta(t, 0, m.SpineAngleChange, 1e-6)
}

func TestExtractMetrics_WeightTransferCapped(t *testing.T) {
	t.Parallel()

	address := posedFrame(map[Joint]Landmark{
		JointHipL: {X: 0.1, Y: 0.58},
		JointHipR: {X: 0.2, Y: 0.58},
	})
	impact := posedFrame(map[Joint]Landmark{
		JointHipL: {X: 0.7, Y: 0.58},
		JointHipR: {X: 0.8, Y: 0.58},
	})
	m := ExtractMetrics(address, PoseFrame{}, impact, SwingEvents{}, 60)
	assert.InDelta(t, 0.2, m.WeightTransfer, 1e-9)
}

func TestExtractMetrics_Deterministic(t *testing.T) {
	t.Parallel()

	address := posedFrame(map[Joint]Landmark{
		JointHipL:      {X: 0.44, Y: 0.58},
		JointHipR:      {X: 0.56, Y: 0.58},
		JointShoulderL: {X: 0.40, Y: 0.32},
		JointShoulderR: {X: 0.60, Y: 0.32},
	})
	top := posedFrame(map[Joint]Landmark{
		JointHipL:      {X: 0.45, Y: 0.58, Z: -0.04},
		JointHipR:      {X: 0.55, Y: 0.58, Z: 0.04},
		JointShoulderL: {X: 0.45, Y: 0.32, Z: -0.15},
		JointShoulderR: {X: 0.55, Y: 0.32, Z: 0.15},
	})
	events := SwingEvents{Address: 0, Top: 40, Impact: 55, Finish: 89}

	a := ExtractMetrics(address, top, address, events, 60)
	b := ExtractMetrics(address, top, address, events, 60)
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("metrics not deterministic (-first +second):\n%s", diff)
	}
}

func TestDefaultMetrics_ScoresClean(t *testing.T) {
	t.Parallel()

	report := ScoreFlaws(DefaultMetrics())
	assert.Zero(t, report.FlawCount)
	assert.Equal(t, 100.0, report.OverallScore)
}

func TestValue_ClubSpeedUnmeasured(t *testing.T) {
	t.Parallel()

	var m SwingMetrics
	_, ok := m.Value(MetricClubSpeed)
	assert.False(t, ok)

	m.ClubSpeed = 98
	v, ok := m.Value(MetricClubSpeed)
	assert.True(t, ok)
	assert.Equal(t, 98.0, v)

	_, ok = m.Value(MetricKey("no_such_metric"))
	assert.False(t, ok)
}

func TestMetricKeys_CoversValueLookup(t *testing.T) {
	t.Parallel()

	m := DefaultMetrics()
	m.ClubSpeed = 100
	for _, k := range MetricKeys() {
		_, ok := m.Value(k)
		assert.True(t, ok, "metric %s must be addressable", k)
	}
}
