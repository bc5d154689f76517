package swing

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreFlaws_BoundariesAreInclusive(t *testing.T) {
	t.Parallel()

	// Every scored metric sits exactly on a range boundary.
	m := SwingMetrics{
		HipRotationTop:      35,
		ShoulderRotationTop: 110,
		XFactor:             55,
		SpineAngleAddress:   40,
		SpineAngleChange:    -5,
		WeightTransfer:      0.15,
		TempoRatio:          3.5,
		BackswingTime:       1.1,
		DownswingTime:       0.2,
	}
	report := ScoreFlaws(m)

	assert.Empty(t, report.Flaws)
	assert.Zero(t, report.FlawCount)
	assert.Equal(t, 100.0, report.OverallScore)
}

func TestScoreFlaws_RestrictedSwing(t *testing.T) {
	t.Parallel()

	// Under-rotated hips and shoulders, a stalled weight shift and a rushed
	// backswing, everything else inside range.
	m := SwingMetrics{
		HipRotationTop:      28,
		ShoulderRotationTop: 75,
		XFactor:             47,
		SpineAngleAddress:   31,
		SpineAngleImpact:    31,
		SpineAngleChange:    0,
		BackswingTime:       0.9,
		DownswingTime:       0.3,
		TempoRatio:          2.2,
		WeightTransfer:      0.04,
	}
	report := ScoreFlaws(m)

	require.GreaterOrEqual(t, report.FlawCount, 3)
	assert.Less(t, report.OverallScore, 100.0)

	byMetric := map[MetricKey]Flaw{}
	for _, f := range report.Flaws {
		byMetric[f.Metric] = f
	}
	hip, ok := byMetric[MetricHipRotationTop]
	require.True(t, ok, "expected a hip rotation flaw")
	assert.Equal(t, IssueTooLow, hip.Issue)
	assert.InDelta(t, 0.4, hip.Severity, 1e-9)

	shoulder, ok := byMetric[MetricShoulderRotationTop]
	require.True(t, ok, "expected a shoulder rotation flaw")
	assert.Equal(t, IssueTooLow, shoulder.Issue)

	weight, ok := byMetric[MetricWeightTransfer]
	require.True(t, ok)
	assert.Equal(t, IssueTooLow, weight.Issue)

	tempo, ok := byMetric[MetricTempoRatio]
	require.True(t, ok)
	assert.Equal(t, IssueTooLow, tempo.Issue)

	// 2 moderate flaws (10 each) + 2 minor (5 each).
	assert.Equal(t, 70.0, report.OverallScore)

	// Ranked by severity, highest first; ties keep metric order.
	assert.Equal(t, MetricHipRotationTop, report.Flaws[0].Metric)
	for i := 1; i < len(report.Flaws); i++ {
		assert.GreaterOrEqual(t, report.Flaws[i-1].Severity, report.Flaws[i].Severity)
	}
}

func TestScoreFlaws_SeveritySaturates(t *testing.T) {
	t.Parallel()

	m := DefaultMetrics()
	m.HipRotationTop = 0 // 100% below the lower bound
	report := ScoreFlaws(m)

	require.Equal(t, 1, report.FlawCount)
	assert.Equal(t, 1.0, report.Flaws[0].Severity)
	assert.Equal(t, 85.0, report.OverallScore)
}

func TestScoreFlaws_ScoreFloorsAtZero(t *testing.T) {
	t.Parallel()

	m := SwingMetrics{
		HipRotationTop:      0,
		ShoulderRotationTop: 0,
		XFactor:             0,
		SpineAngleAddress:   90,
		SpineAngleChange:    50,
		WeightTransfer:      0.5,
		TempoRatio:          10,
		BackswingTime:       3,
		DownswingTime:       2,
		ClubSpeed:           300,
	}
	report := ScoreFlaws(m)

	assert.Equal(t, 0.0, report.OverallScore)
	for _, f := range report.Flaws {
		assert.GreaterOrEqual(t, f.Severity, 0.0)
		assert.LessOrEqual(t, f.Severity, 1.0)
	}
}

func TestScoreFlaws_UnmeasuredClubSpeedSkipped(t *testing.T) {
	t.Parallel()

	m := DefaultMetrics() // ClubSpeed zero
	report := ScoreFlaws(m)
	for _, f := range report.Flaws {
		assert.NotEqual(t, MetricClubSpeed, f.Metric)
	}

	m.ClubSpeed = 40 // measured and well below range
	report = ScoreFlaws(m)
	require.Equal(t, 1, report.FlawCount)
	assert.Equal(t, MetricClubSpeed, report.Flaws[0].Metric)
	assert.Equal(t, IssueTooLow, report.Flaws[0].Issue)
}

func TestScoreFlaws_Deterministic(t *testing.T) {
	t.Parallel()

	m := SwingMetrics{
		HipRotationTop:      28,
		ShoulderRotationTop: 120,
		XFactor:             30,
		SpineAngleAddress:   20,
		SpineAngleChange:    8,
		WeightTransfer:      0.2,
		TempoRatio:          1.5,
		BackswingTime:       0.5,
		DownswingTime:       0.5,
	}
	a := ScoreFlaws(m)
	b := ScoreFlaws(m)
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("flaw report not deterministic (-first +second):\n%s", diff)
	}
}

func TestScoreFlaws_RecommendationsPopulated(t *testing.T) {
	t.Parallel()

	m := DefaultMetrics()
	m.ShoulderRotationTop = 60
	report := ScoreFlaws(m)

	require.Equal(t, 1, report.FlawCount)
	assert.NotEmpty(t, report.Flaws[0].Recommendation)
	assert.Contains(t, report.Flaws[0].Recommendation, "shoulder")
}

func TestIdealRange(t *testing.T) {
	t.Parallel()

	min, max, ok := IdealRange(MetricHipRotationTop)
	require.True(t, ok)
	assert.Equal(t, 35.0, min)
	assert.Equal(t, 50.0, max)

	_, _, ok = IdealRange(MetricSpineAngleImpact)
	assert.False(t, ok, "spine angle at impact is informational, not scored")
}
