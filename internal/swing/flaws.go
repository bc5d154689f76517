package swing

import (
	"fmt"
	"math"
	"sort"
)

// FlawIssue marks which side of the ideal range a metric fell on.
type FlawIssue string

const (
	IssueTooLow  FlawIssue = "too_low"
	IssueTooHigh FlawIssue = "too_high"
)

// Flaw is one metric outside its ideal range, with a [0,1] severity and a
// coaching recommendation.
type Flaw struct {
	Metric         MetricKey `json:"metric"`
	Value          float64   `json:"value"`
	IdealMin       float64   `json:"ideal_min"`
	IdealMax       float64   `json:"ideal_max"`
	Issue          FlawIssue `json:"issue"`
	Severity       float64   `json:"severity"`
	Recommendation string    `json:"recommendation"`
}

// FlawReport is the ordered (descending severity) flaw list plus the
// aggregate score in [0,100].
type FlawReport struct {
	Flaws        []Flaw  `json:"flaws"`
	OverallScore float64 `json:"overall_score"`
	FlawCount    int     `json:"flaw_count"`
}

type idealRange struct {
	Min, Max float64
}

// idealRanges is the fixed table of acceptable values per metric. Boundary
// values are inclusive: a value exactly at Min or Max produces no flaw.
// Metrics absent from this table are never scored.
var idealRanges = map[MetricKey]idealRange{
	MetricHipRotationTop:      {35, 50},    // degrees
	MetricShoulderRotationTop: {80, 110},   // degrees
	MetricXFactor:             {35, 55},    // degrees
	MetricSpineAngleAddress:   {25, 40},    // degrees
	MetricSpineAngleChange:    {-5, 5},     // degrees, posture should hold
	MetricWeightTransfer:      {0.05, 0.15},
	MetricTempoRatio:          {2.5, 3.5},
	MetricBackswingTime:       {0.7, 1.1},  // seconds
	MetricDownswingTime:       {0.2, 0.35}, // seconds
	MetricClubSpeed:           {85, 125},   // mph, launch monitor only
}

// IdealRange exposes the scoring bounds for a metric, for display layers.
func IdealRange(k MetricKey) (min, max float64, ok bool) {
	r, ok := idealRanges[k]
	return r.Min, r.Max, ok
}

// ScoreFlaws checks each measured metric against its ideal range and
// returns the ranked flaw report. Deterministic and total: the same metrics
// always produce the same report, and no input can make it fail.
func ScoreFlaws(m SwingMetrics) FlawReport {
	var flaws []Flaw

	for _, key := range metricOrder {
		bounds, scored := idealRanges[key]
		if !scored {
			continue
		}
		value, ok := m.Value(key)
		if !ok {
			continue
		}

		switch {
		case value < bounds.Min:
			flaws = append(flaws, Flaw{
				Metric:         key,
				Value:          round2(value),
				IdealMin:       bounds.Min,
				IdealMax:       bounds.Max,
				Issue:          IssueTooLow,
				Severity:       severity(bounds.Min-value, bounds.Min),
				Recommendation: recommendation(key, IssueTooLow, value, bounds.Min),
			})
		case value > bounds.Max:
			flaws = append(flaws, Flaw{
				Metric:         key,
				Value:          round2(value),
				IdealMin:       bounds.Min,
				IdealMax:       bounds.Max,
				Issue:          IssueTooHigh,
				Severity:       severity(value-bounds.Max, bounds.Max),
				Recommendation: recommendation(key, IssueTooHigh, value, bounds.Max),
			})
		}
	}

	sort.SliceStable(flaws, func(i, j int) bool {
		return flaws[i].Severity > flaws[j].Severity
	})

	return FlawReport{
		Flaws:        flaws,
		OverallScore: overallScore(flaws),
		FlawCount:    len(flaws),
	}
}

// severity scales the distance past the violated threshold relative to that
// threshold, so a 50% deviation saturates at 1.0. The result is clamped to
// [0,1]; a zero threshold (or a negative-bound range like spine_angle_change)
// degrades toward zero rather than producing out-of-range severities.
func severity(delta, threshold float64) float64 {
	if threshold == 0 {
		return 0
	}
	s := math.Min(2*delta/threshold, 1.0)
	if s < 0 {
		s = 0
	}
	return round2(s)
}

// overallScore starts at 100 and deducts per flaw by severity band:
// 15 for major (>=0.7), 10 for moderate (>=0.4), 5 for minor. Floor 0.
func overallScore(flaws []Flaw) float64 {
	score := 100.0
	for _, f := range flaws {
		switch {
		case f.Severity >= 0.7:
			score -= 15
		case f.Severity >= 0.4:
			score -= 10
		default:
			score -= 5
		}
	}
	if score < 0 {
		score = 0
	}
	return math.Round(score*10) / 10
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

type recKey struct {
	metric MetricKey
	issue  FlawIssue
}

var recommendations = map[recKey]string{
	{MetricHipRotationTop, IssueTooLow}:       "Your hip rotation is %.1f°, below the ideal range of 35-50°. Focus on rotating your hips more in the backswing. Try the step drill to improve hip turn.",
	{MetricHipRotationTop, IssueTooHigh}:      "Your hip rotation is %.1f°, above the ideal range. You may be over-rotating. Focus on maintaining connection between upper and lower body.",
	{MetricShoulderRotationTop, IssueTooLow}:  "Your shoulder turn is %.1f°, below the ideal range of 80-110°. Turn your shoulders more fully. Try to get your back facing the target at the top.",
	{MetricShoulderRotationTop, IssueTooHigh}: "Your shoulder turn is %.1f°, above the ideal range. You may be over-rotating. Focus on maintaining spine angle and connection.",
	{MetricXFactor, IssueTooLow}:              "Your X-Factor (shoulder-hip separation) is %.1f°, below the ideal range of 35-55°. Create more separation between shoulders and hips. Resist with your lower body in the backswing.",
	{MetricXFactor, IssueTooHigh}:             "Your X-Factor is %.1f°, above the ideal range. You may have too much separation. Focus on maintaining connection and sequencing.",
	{MetricSpineAngleAddress, IssueTooLow}:    "Your spine angle is %.1f°, below the ideal range of 25-40°. Stand more upright at address. Check your posture and setup.",
	{MetricSpineAngleAddress, IssueTooHigh}:   "Your spine angle is %.1f°, above the ideal range. You may be bending over too much. Check your setup posture.",
	{MetricSpineAngleChange, IssueTooLow}:     "Your spine angle changed by %.1f° (ideal: maintain within -5 to 5°). You're losing spine angle. Focus on maintaining your posture through impact.",
	{MetricSpineAngleChange, IssueTooHigh}:    "Your spine angle changed by %.1f° (ideal: maintain within -5 to 5°). You're changing spine angle too much. Focus on maintaining posture.",
	{MetricWeightTransfer, IssueTooLow}:       "Your weight transfer is %.2f, below the ideal range of 0.05-0.15. Shift more weight to your front foot through impact. Practice weight shift drills.",
	{MetricWeightTransfer, IssueTooHigh}:      "Your weight transfer is %.2f, above the ideal range. You may be shifting too aggressively. Focus on controlled weight transfer.",
	{MetricTempoRatio, IssueTooLow}:           "Your tempo ratio is %.1f:1, below the ideal range of 2.5-3.5:1. Slow down your backswing. Aim for a 3:1 tempo ratio (backswing:downswing).",
	{MetricTempoRatio, IssueTooHigh}:          "Your tempo ratio is %.1f:1, above the ideal range. Your backswing may be too slow. Find a balanced tempo that feels natural.",
}

// recommendation looks up the coaching text for a metric/direction pair,
// falling back to a generic template when no specific entry exists.
func recommendation(metric MetricKey, issue FlawIssue, value, threshold float64) string {
	if tmpl, ok := recommendations[recKey{metric, issue}]; ok {
		return fmt.Sprintf(tmpl, value)
	}
	return fmt.Sprintf("Work with a coach to improve your %s. Your value is %.2f, ideal range is %.1f.",
		metricDisplayName(metric), value, threshold)
}

func metricDisplayName(k MetricKey) string {
	out := make([]byte, 0, len(k))
	for i := 0; i < len(k); i++ {
		if k[i] == '_' {
			out = append(out, ' ')
			continue
		}
		out = append(out, k[i])
	}
	return string(out)
}
