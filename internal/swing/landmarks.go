// Package swing implements the swing analysis core: pose landmark types,
// key-frame event detection, biomechanical metric extraction, flaw scoring
// against ideal ranges, and reference-swing style matching.
//
// Every function in this package is total: degenerate input (missing
// landmarks, short sequences, empty corpora) yields degenerate-but-valid
// output, never an error. Failure semantics live in the pipeline layer.
package swing

// Joint identifies one of the named body joints a pose adapter can report.
// The set is closed; adapters must map whatever skeleton they produce onto
// these names.
type Joint string

const (
	JointHead      Joint = "head"
	JointNeck      Joint = "neck"
	JointShoulderL Joint = "shoulder_l"
	JointShoulderR Joint = "shoulder_r"
	JointElbowL    Joint = "elbow_l"
	JointElbowR    Joint = "elbow_r"
	JointWristL    Joint = "wrist_l"
	JointWristR    Joint = "wrist_r"
	JointHipL      Joint = "hip_l"
	JointHipR      Joint = "hip_r"
	JointKneeL     Joint = "knee_l"
	JointKneeR     Joint = "knee_r"
	JointAnkleL    Joint = "ankle_l"
	JointAnkleR    Joint = "ankle_r"
)

// Joints returns the closed set of joints in canonical order.
func Joints() []Joint {
	return []Joint{
		JointHead, JointNeck,
		JointShoulderL, JointShoulderR,
		JointElbowL, JointElbowR,
		JointWristL, JointWristR,
		JointHipL, JointHipR,
		JointKneeL, JointKneeR,
		JointAnkleL, JointAnkleR,
	}
}

// Landmark is a single detected joint position. X and Y are normalised to
// frame dimensions, Z is relative depth in the same scale, and Visibility is
// the adapter's detection confidence in [0,1].
type Landmark struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Z          float64 `json:"z"`
	Visibility float64 `json:"visibility"`
}

// PoseFrame holds the landmarks detected for one input frame. A nil or empty
// Landmarks map means detection failed for that frame; such frames are valid
// inputs everywhere and simply contribute nothing.
type PoseFrame struct {
	Landmarks map[Joint]Landmark `json:"landmarks,omitempty"`
}

// Absent reports whether detection failed for this frame.
func (p PoseFrame) Absent() bool { return len(p.Landmarks) == 0 }

// Landmark returns the named landmark and whether it is present.
func (p PoseFrame) Landmark(j Joint) (Landmark, bool) {
	lm, ok := p.Landmarks[j]
	return lm, ok
}

// pair returns both landmarks of a joint pair, or ok=false when either is
// missing.
func (p PoseFrame) pair(left, right Joint) (Landmark, Landmark, bool) {
	l, okL := p.Landmarks[left]
	r, okR := p.Landmarks[right]
	return l, r, okL && okR
}

// midpoint returns the point halfway between two landmarks.
func midpoint(a, b Landmark) Landmark {
	return Landmark{
		X: (a.X + b.X) / 2,
		Y: (a.Y + b.Y) / 2,
		Z: (a.Z + b.Z) / 2,
	}
}

// CountPresent returns the number of frames in seq with at least one
// detected landmark. Batch mode uses this to pick the richer of the two
// camera sequences.
func CountPresent(seq []PoseFrame) int {
	n := 0
	for _, p := range seq {
		if !p.Absent() {
			n++
		}
	}
	return n
}
