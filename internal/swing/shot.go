package swing

import "time"

// ShotData is the launch-monitor record attached to a swing result when one
// arrived near the swing's timestamp. All fields are optional; a zero value
// means the monitor did not report that field. The pipeline treats the record
// as opaque apart from ClubSpeed, which feeds the club_speed metric.
type ShotData struct {
	Timestamp       time.Time `json:"timestamp"`
	BallSpeed       float64   `json:"ball_speed,omitempty"`
	ClubSpeed       float64   `json:"club_speed,omitempty"`
	LaunchAngle     float64   `json:"launch_angle,omitempty"`
	LaunchDirection float64   `json:"launch_direction,omitempty"`
	SpinRate        float64   `json:"spin_rate,omitempty"`
	SpinAxis        float64   `json:"spin_axis,omitempty"`
	CarryDistance   float64   `json:"carry_distance,omitempty"`
	TotalDistance   float64   `json:"total_distance,omitempty"`
	Club            string    `json:"club,omitempty"`
}

// Empty reports whether the record carries no measurements at all.
func (s ShotData) Empty() bool {
	return s.BallSpeed == 0 && s.ClubSpeed == 0 && s.SpinRate == 0 &&
		s.CarryDistance == 0 && s.TotalDistance == 0
}
