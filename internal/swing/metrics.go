package swing

import "math"

// MetricKey names one swing metric. The set is fixed and versioned: adding a
// key means touching metricOrder, the ideal-range table, and the matcher
// weights together.
type MetricKey string

const (
	MetricHipRotationTop      MetricKey = "hip_rotation_top"
	MetricShoulderRotationTop MetricKey = "shoulder_rotation_top"
	MetricXFactor             MetricKey = "x_factor"
	MetricSpineAngleAddress   MetricKey = "spine_angle_address"
	MetricSpineAngleImpact    MetricKey = "spine_angle_impact"
	MetricSpineAngleChange    MetricKey = "spine_angle_change"
	MetricBackswingTime       MetricKey = "backswing_time"
	MetricDownswingTime       MetricKey = "downswing_time"
	MetricTempoRatio          MetricKey = "tempo_ratio"
	MetricWeightTransfer      MetricKey = "weight_transfer"
	MetricClubSpeed           MetricKey = "club_speed"
)

// metricOrder fixes the iteration order for scoring and serialisation so
// results are deterministic run to run.
var metricOrder = []MetricKey{
	MetricHipRotationTop,
	MetricShoulderRotationTop,
	MetricXFactor,
	MetricSpineAngleAddress,
	MetricSpineAngleImpact,
	MetricSpineAngleChange,
	MetricBackswingTime,
	MetricDownswingTime,
	MetricTempoRatio,
	MetricWeightTransfer,
	MetricClubSpeed,
}

// MetricKeys returns the fixed metric key set in canonical order.
func MetricKeys() []MetricKey {
	out := make([]MetricKey, len(metricOrder))
	copy(out, metricOrder)
	return out
}

// SwingMetrics is the fixed record of biomechanical metrics extracted from
// one swing. Angles are degrees, times are seconds, WeightTransfer is in
// normalised image units. ClubSpeed (mph) comes from the launch monitor
// rather than the pose; zero means not measured and the value is then
// excluded from scoring and matching.
type SwingMetrics struct {
	HipRotationTop      float64 `json:"hip_rotation_top"`
	ShoulderRotationTop float64 `json:"shoulder_rotation_top"`
	XFactor             float64 `json:"x_factor"`
	SpineAngleAddress   float64 `json:"spine_angle_address"`
	SpineAngleImpact    float64 `json:"spine_angle_impact"`
	SpineAngleChange    float64 `json:"spine_angle_change"`
	BackswingTime       float64 `json:"backswing_time"`
	DownswingTime       float64 `json:"downswing_time"`
	TempoRatio          float64 `json:"tempo_ratio"`
	WeightTransfer      float64 `json:"weight_transfer"`
	ClubSpeed           float64 `json:"club_speed,omitempty"`
}

// Value returns the metric named by k. ok is false for unknown keys and for
// an unmeasured ClubSpeed.
func (m SwingMetrics) Value(k MetricKey) (float64, bool) {
	switch k {
	case MetricHipRotationTop:
		return m.HipRotationTop, true
	case MetricShoulderRotationTop:
		return m.ShoulderRotationTop, true
	case MetricXFactor:
		return m.XFactor, true
	case MetricSpineAngleAddress:
		return m.SpineAngleAddress, true
	case MetricSpineAngleImpact:
		return m.SpineAngleImpact, true
	case MetricSpineAngleChange:
		return m.SpineAngleChange, true
	case MetricBackswingTime:
		return m.BackswingTime, true
	case MetricDownswingTime:
		return m.DownswingTime, true
	case MetricTempoRatio:
		return m.TempoRatio, true
	case MetricWeightTransfer:
		return m.WeightTransfer, true
	case MetricClubSpeed:
		return m.ClubSpeed, m.ClubSpeed > 0
	}
	return 0, false
}

// DefaultMetrics is the neutral metric set substituted when no pose data is
// available end to end. Values sit inside every ideal range.
func DefaultMetrics() SwingMetrics {
	return SwingMetrics{
		HipRotationTop:      42.0,
		ShoulderRotationTop: 89.0,
		XFactor:             47.0,
		SpineAngleAddress:   31.0,
		SpineAngleImpact:    31.0,
		SpineAngleChange:    0.0,
		BackswingTime:       0.9,
		DownswingTime:       0.3,
		TempoRatio:          3.0,
		WeightTransfer:      0.08,
	}
}

// coordEpsilon guards the angle computations against degenerate landmark
// pairs that collapse to a single point.
const coordEpsilon = 0.001

// ExtractMetrics derives SwingMetrics from the three key poses and the event
// indices at the given frame rate. It is a pure, total function: any missing
// landmark pair zeroes the affected metric instead of failing.
func ExtractMetrics(address, top, impact PoseFrame, events SwingEvents, fps float64) SwingMetrics {
	var m SwingMetrics

	m.HipRotationTop = pairRotation(address, top, JointHipL, JointHipR)
	m.ShoulderRotationTop = pairRotation(address, top, JointShoulderL, JointShoulderR)
	m.XFactor = m.ShoulderRotationTop - m.HipRotationTop

	m.SpineAngleAddress = spineAngle(address)
	m.SpineAngleImpact = spineAngle(impact)
	m.SpineAngleChange = m.SpineAngleImpact - m.SpineAngleAddress

	backswingFrames := float64(events.Top - events.Address)
	downswingFrames := float64(events.Impact - events.Top)
	if fps > 0 {
		m.BackswingTime = backswingFrames / fps
		m.DownswingTime = downswingFrames / fps
	}
	if downswingFrames > 0 {
		m.TempoRatio = backswingFrames / downswingFrames
	}

	m.WeightTransfer = weightTransfer(address, impact)

	return m
}

// pairRotation measures how much the axis through a left/right joint pair
// rotated between two instants, in degrees in [0,180]. The axis angle is
// atan2 of depth over horizontal, so rotation is measured in the ground
// plane as seen down the line.
func pairRotation(from, to PoseFrame, left, right Joint) float64 {
	a1, ok1 := pairAxisAngle(from, left, right)
	a2, ok2 := pairAxisAngle(to, left, right)
	if !ok1 || !ok2 {
		return 0
	}
	rot := a2 - a1
	for rot > 180 {
		rot -= 360
	}
	for rot < -180 {
		rot += 360
	}
	return math.Abs(rot)
}

func pairAxisAngle(p PoseFrame, left, right Joint) (float64, bool) {
	l, r, ok := p.pair(left, right)
	if !ok {
		return 0, false
	}
	dx := r.X - l.X
	dz := r.Z - l.Z
	if math.Abs(dx) < coordEpsilon && math.Abs(dz) < coordEpsilon {
		return 0, true
	}
	return math.Atan2(dz, dx) * 180 / math.Pi, true
}

// spineAngle measures the forward tilt of the shoulder-midpoint to
// hip-midpoint line from vertical, in degrees clamped to [0,90].
func spineAngle(p PoseFrame) float64 {
	hl, hr, okH := p.pair(JointHipL, JointHipR)
	sl, sr, okS := p.pair(JointShoulderL, JointShoulderR)
	if !okH || !okS {
		return 0
	}
	hip := midpoint(hl, hr)
	shoulder := midpoint(sl, sr)

	dx := shoulder.X - hip.X
	dy := shoulder.Y - hip.Y
	if math.Abs(dy) < coordEpsilon {
		return 0
	}
	angle := math.Atan2(math.Abs(dx), math.Abs(dy)) * 180 / math.Pi
	return math.Min(90, math.Max(0, angle))
}

// weightTransferCap bounds the lateral hip shift so an adapter glitch cannot
// report an implausible transfer.
const weightTransferCap = 0.2

// weightTransfer approximates lateral weight shift as the horizontal
// displacement of the hip midpoint between address and impact.
func weightTransfer(address, impact PoseFrame) float64 {
	al, ar, okA := address.pair(JointHipL, JointHipR)
	il, ir, okI := impact.pair(JointHipL, JointHipR)
	if !okA || !okI {
		return 0
	}
	shift := math.Abs(midpoint(il, ir).X - midpoint(al, ar).X)
	return math.Min(shift, weightTransferCap)
}
