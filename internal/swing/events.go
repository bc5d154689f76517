package swing

// SwingEvents holds the indices of the four canonical swing phases within a
// pose sequence snapshot. Indices are monotonically non-decreasing:
// Address <= Top <= Impact <= Finish.
type SwingEvents struct {
	Address int `json:"address"`
	Top     int `json:"top"`
	Impact  int `json:"impact"`
	Finish  int `json:"finish"`
}

// MinValidWristSamples is the minimum number of frames with a detected lead
// wrist required before the height heuristic is trusted. Below this the
// detector falls back to thirds-of-sequence defaults.
const MinValidWristSamples = 10

// DetectEvents locates address, top of backswing, impact and finish in a
// pose sequence by tracking the vertical coordinate of the lead (left)
// wrist. Y grows downward in normalised image coordinates, so the top of the
// backswing is the minimum Y and impact is the maximum Y after it.
//
// The heuristic assumes a right-handed golfer filmed down-the-line with the
// camera in the standard orientation; a left-handed golfer or a mirrored
// camera will reverse which wrist leads. That behaviour is deliberate and
// matches the deployed detector. Do not swap joints here without revisiting
// the captured corpora.
//
// DetectEvents never fails: sequences with fewer than MinValidWristSamples
// detected wrists yield {0, len/3, len/2, len-1}.
func DetectEvents(seq []PoseFrame) SwingEvents {
	n := len(seq)
	if n == 0 {
		return SwingEvents{}
	}

	fallback := SwingEvents{
		Address: 0,
		Top:     n / 3,
		Impact:  n / 2,
		Finish:  n - 1,
	}

	// Collect wrist heights, NaN-free: track presence alongside values.
	heights := make([]float64, n)
	present := make([]bool, n)
	valid := 0
	for i, p := range seq {
		if lm, ok := p.Landmark(JointWristL); ok {
			heights[i] = lm.Y
			present[i] = true
			valid++
		}
	}

	if valid < MinValidWristSamples {
		tracef("event detection: only %d valid wrist samples (<%d), using fallback", valid, MinValidWristSamples)
		return fallback
	}

	// Top of backswing: global minimum wrist height.
	top := -1
	for i := 0; i < n; i++ {
		if !present[i] {
			continue
		}
		if top < 0 || heights[i] < heights[top] {
			top = i
		}
	}

	// Impact: maximum wrist height from the top onward (club near ground).
	impact := top
	for i := top; i < n; i++ {
		if !present[i] {
			continue
		}
		if heights[i] > heights[impact] {
			impact = i
		}
	}

	return SwingEvents{
		Address: 0,
		Top:     top,
		Impact:  impact,
		Finish:  n - 1,
	}
}

// Clamp bounds the event indices to a sequence of length n. Used after
// snapshotting so stale indices can never walk off the copy.
func (e SwingEvents) Clamp(n int) SwingEvents {
	clamp := func(i int) int {
		if i < 0 {
			return 0
		}
		if i >= n {
			return n - 1
		}
		return i
	}
	if n <= 0 {
		return SwingEvents{}
	}
	return SwingEvents{
		Address: clamp(e.Address),
		Top:     clamp(e.Top),
		Impact:  clamp(e.Impact),
		Finish:  clamp(e.Finish),
	}
}
