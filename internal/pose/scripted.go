package pose

import (
	"context"
	"math"
	"sync"

	"github.com/banshee-data/swing.report/internal/capture"
	"github.com/banshee-data/swing.report/internal/swing"
)

// ScriptedAdapter replays a precomputed landmark sequence, one pose per
// frame. Frames carrying a buffer sequence number are mapped by that number
// so parallel adaptation stays deterministic; unsequenced frames fall back
// to call order. Indexes past the script's end repeat the final pose.
type ScriptedAdapter struct {
	mu     sync.Mutex
	next   int
	frames []swing.PoseFrame
}

// NewScriptedAdapter wraps a landmark sequence as an Adapter.
func NewScriptedAdapter(frames []swing.PoseFrame) *ScriptedAdapter {
	return &ScriptedAdapter{frames: frames}
}

func (a *ScriptedAdapter) Adapt(ctx context.Context, f capture.Frame) (swing.PoseFrame, error) {
	if err := ctx.Err(); err != nil {
		return swing.PoseFrame{}, err
	}

	var idx int
	if f.Seq > 0 {
		idx = int(f.Seq - 1)
	} else {
		a.mu.Lock()
		idx = a.next
		a.next++
		a.mu.Unlock()
	}

	if len(a.frames) == 0 {
		return swing.PoseFrame{}, nil
	}
	if idx >= len(a.frames) {
		idx = len(a.frames) - 1
	}
	return a.frames[idx], nil
}

func (a *ScriptedAdapter) Close() error { return nil }

// Swing phase fractions for the synthetic sequence. The wrist arc these
// produce is what the event detector keys on: lowest point at the top of the
// backswing, highest at impact.
const (
	scriptTopFraction    = 0.45
	scriptImpactFraction = 0.62
)

// SyntheticSwing builds an n-frame landmark sequence tracing a full swing:
// address, backswing to the top, downswing through impact, finish. Useful
// for tests and for exercising the pipeline without an estimator.
func SyntheticSwing(n int) []swing.PoseFrame {
	frames := make([]swing.PoseFrame, n)
	for i := 0; i < n; i++ {
		frames[i] = syntheticPose(i, n)
	}
	return frames
}

func syntheticPose(i, n int) swing.PoseFrame {
	if n <= 1 {
		n = 2
	}
	t := float64(i) / float64(n-1)

	// Wrist height arc. Smaller Y is higher in image coordinates.
	var wristY float64
	switch {
	case t < scriptTopFraction:
		wristY = lerp(0.55, 0.20, t/scriptTopFraction)
	case t < scriptImpactFraction:
		wristY = lerp(0.20, 0.85, (t-scriptTopFraction)/(scriptImpactFraction-scriptTopFraction))
	default:
		wristY = lerp(0.85, 0.30, (t-scriptImpactFraction)/(1-scriptImpactFraction))
	}

	// Rotation ramps to its peak at the top and unwinds through impact.
	var turn float64
	if t < scriptTopFraction {
		turn = t / scriptTopFraction
	} else {
		turn = math.Max(0, 1-(t-scriptTopFraction)/(scriptImpactFraction-scriptTopFraction))
	}
	hipAngle := turn * 42 * math.Pi / 180
	shoulderAngle := turn * 89 * math.Pi / 180

	lm := map[swing.Joint]swing.Landmark{}
	place := func(j swing.Joint, x, y, z float64) {
		lm[j] = swing.Landmark{X: x, Y: y, Z: z, Visibility: 1}
	}

	place(swing.JointHead, 0.5, 0.15, 0)
	place(swing.JointNeck, 0.5, 0.30, 0)

	// Rotating pairs around their midpoints in the XZ plane.
	shx, shz := 0.18*math.Cos(shoulderAngle), 0.18*math.Sin(shoulderAngle)
	place(swing.JointShoulderL, 0.5-shx, 0.32, -shz)
	place(swing.JointShoulderR, 0.5+shx, 0.32, shz)

	hx, hz := 0.12*math.Cos(hipAngle), 0.12*math.Sin(hipAngle)
	hipShift := 0.06 * math.Max(0, (t-scriptTopFraction)/(1-scriptTopFraction))
	place(swing.JointHipL, 0.5-hx+hipShift, 0.58, -hz)
	place(swing.JointHipR, 0.5+hx+hipShift, 0.58, hz)

	place(swing.JointWristL, 0.45, wristY, 0.05)
	place(swing.JointWristR, 0.47, wristY+0.01, 0.05)
	place(swing.JointElbowL, 0.42, (wristY+0.32)/2, 0.02)
	place(swing.JointElbowR, 0.55, (wristY+0.32)/2, 0.02)

	place(swing.JointKneeL, 0.45, 0.78, 0)
	place(swing.JointKneeR, 0.55, 0.78, 0)
	place(swing.JointAnkleL, 0.45, 0.95, 0)
	place(swing.JointAnkleR, 0.55, 0.95, 0)

	return swing.PoseFrame{Landmarks: lm}
}

func lerp(a, b, t float64) float64 { return a + (b-a)*t }
