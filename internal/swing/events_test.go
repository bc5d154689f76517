package swing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// wristSeq builds a pose sequence carrying only the lead wrist at the given
// heights. A NaN-free negative sentinel (-1) marks an absent frame.
func wristSeq(heights []float64) []PoseFrame {
	seq := make([]PoseFrame, len(heights))
	for i, h := range heights {
		if h < 0 {
			continue
		}
		seq[i] = PoseFrame{Landmarks: map[Joint]Landmark{
			JointWristL: {X: 0.45, Y: h, Visibility: 1},
		}}
	}
	return seq
}

func TestDetectEvents_EmptySequence(t *testing.T) {
	t.Parallel()
	assert.Equal(t, SwingEvents{}, DetectEvents(nil))
	assert.Equal(t, SwingEvents{}, DetectEvents([]PoseFrame{}))
}

func TestDetectEvents_FallbackOnSparseWrists(t *testing.T) {
	t.Parallel()

	// 30 frames, only 5 with a detected wrist: below MinValidWristSamples.
	heights := make([]float64, 30)
	for i := range heights {
		heights[i] = -1
	}
	for _, i := range []int{2, 7, 11, 19, 25} {
		heights[i] = 0.5
	}

	got := DetectEvents(wristSeq(heights))
	assert.Equal(t, SwingEvents{Address: 0, Top: 10, Impact: 15, Finish: 29}, got)
}

func TestDetectEvents_FullArc(t *testing.T) {
	t.Parallel()

	// Descend to the top at index 6, rise to impact at index 15.
	heights := []float64{
		0.50, 0.45, 0.38, 0.30, 0.22, 0.15, 0.10,
		0.20, 0.35, 0.50, 0.62, 0.72, 0.80, 0.85, 0.88, 0.90,
		0.70, 0.55, 0.45, 0.40,
	}
	got := DetectEvents(wristSeq(heights))

	assert.Equal(t, 0, got.Address)
	assert.Equal(t, 6, got.Top)
	assert.Equal(t, 15, got.Impact)
	assert.Equal(t, 19, got.Finish)
}

func TestDetectEvents_ImpactOnlyAfterTop(t *testing.T) {
	t.Parallel()

	// Global maximum sits before the top; impact must ignore it.
	heights := []float64{
		0.50, 0.95, 0.40, 0.30, 0.20, 0.10,
		0.30, 0.50, 0.70, 0.80, 0.60, 0.50, 0.45, 0.40,
	}
	got := DetectEvents(wristSeq(heights))

	assert.Equal(t, 5, got.Top)
	assert.Equal(t, 9, got.Impact)
}

func TestDetectEvents_Ordering(t *testing.T) {
	t.Parallel()

	cases := map[string][]float64{
		"monotone descent":  {0.9, 0.8, 0.7, 0.6, 0.5, 0.4, 0.3, 0.2, 0.1, 0.05, 0.04, 0.03},
		"monotone ascent":   {0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 0.91, 0.92, 0.93},
		"flat":              {0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5},
		"gaps in detection": {0.5, -1, 0.3, -1, 0.1, 0.2, -1, 0.6, 0.8, 0.9, 0.7, 0.5, 0.4, 0.3, 0.2, 0.6},
	}
	for name, heights := range cases {
		t.Run(name, func(t *testing.T) {
			e := DetectEvents(wristSeq(heights))
			assert.LessOrEqual(t, e.Address, e.Top)
			assert.LessOrEqual(t, e.Top, e.Impact)
			assert.LessOrEqual(t, e.Impact, e.Finish)
			assert.Less(t, e.Finish, len(heights))
		})
	}
}

func TestClamp(t *testing.T) {
	t.Parallel()

	e := SwingEvents{Address: -3, Top: 5, Impact: 50, Finish: 99}
	got := e.Clamp(10)
	assert.Equal(t, SwingEvents{Address: 0, Top: 5, Impact: 9, Finish: 9}, got)

	assert.Equal(t, SwingEvents{}, e.Clamp(0))
}
