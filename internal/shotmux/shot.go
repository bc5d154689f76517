package shotmux

import (
	"encoding/json"
	"time"

	"github.com/banshee-data/swing.report/internal/swing"
)

// Connector wire format: the monitor's connector sends one JSON object per
// shot, grouping measurements under BallData/ClubData/ShotData. Every field
// is optional; json.Number tolerates both quoted and bare numerics.
type wireShot struct {
	BallData struct {
		Speed           json.Number `json:"Speed"`
		VerticalAngle   json.Number `json:"VerticalAngle"`
		HorizontalAngle json.Number `json:"HorizontalAngle"`
		TotalSpin       json.Number `json:"TotalSpin"`
		SpinAxis        json.Number `json:"SpinAxis"`
	} `json:"BallData"`
	ClubData struct {
		Speed json.Number `json:"Speed"`
	} `json:"ClubData"`
	ShotData struct {
		CarryDistance json.Number `json:"CarryDistance"`
		TotalDistance json.Number `json:"TotalDistance"`
	} `json:"ShotData"`
	Club string `json:"Club"`
}

// ParseShot decodes one feed line into a ShotData record. Malformed numeric
// fields are ignored field-by-field and default to zero; only a line that is
// not a JSON object at all returns ok=false. The record is stamped with the
// given receive time.
func ParseShot(line string, received time.Time) (swing.ShotData, bool) {
	var w wireShot
	if err := json.Unmarshal([]byte(line), &w); err != nil {
		tracef("unparseable feed line: %v", err)
		return swing.ShotData{}, false
	}

	shot := swing.ShotData{
		Timestamp:       received,
		BallSpeed:       num(w.BallData.Speed),
		ClubSpeed:       num(w.ClubData.Speed),
		LaunchAngle:     num(w.BallData.VerticalAngle),
		LaunchDirection: num(w.BallData.HorizontalAngle),
		SpinRate:        num(w.BallData.TotalSpin),
		SpinAxis:        num(w.BallData.SpinAxis),
		CarryDistance:   num(w.ShotData.CarryDistance),
		TotalDistance:   num(w.ShotData.TotalDistance),
		Club:            w.Club,
	}
	return shot, true
}

// num converts a JSON numeric field, defaulting to zero on absence or
// malformed content.
func num(n json.Number) float64 {
	if n == "" {
		return 0
	}
	v, err := n.Float64()
	if err != nil {
		return 0
	}
	return v
}

// maxPlausibleBallSpeed filters connector noise; nothing hits a golf ball
// past 250 mph.
const maxPlausibleBallSpeed = 250.0

// ValidShot reports whether a parsed record looks like a real shot rather
// than sensor noise: a positive, plausible ball speed.
func ValidShot(s swing.ShotData) bool {
	return s.BallSpeed > 0 && s.BallSpeed <= maxPlausibleBallSpeed
}
