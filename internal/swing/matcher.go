package swing

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// ReferenceSwing is one corpus entry: a labelled reference ("pro") swing
// with its metrics and descriptive style tags. Corpus entries are read-only
// to the matcher.
type ReferenceSwing struct {
	ID       string       `json:"id"`
	Label    string       `json:"label"`
	ClubType string       `json:"club_type"`
	Metrics  SwingMetrics `json:"metrics"`
	Tags     []string     `json:"tags"`
}

// Recommendation is one targeted difference between the user's swing and the
// matched reference.
type Recommendation struct {
	Metric    MetricKey `json:"metric"`
	UserValue float64   `json:"user_value"`
	RefValue  float64   `json:"ref_value"`
	Delta     float64   `json:"delta"`
	Advice    string    `json:"advice"`
}

// MatchResult is the outcome of matching a swing against the corpus.
// Similarity is in [0,100].
type MatchResult struct {
	ReferenceID     string           `json:"reference_id"`
	Label           string           `json:"label"`
	Similarity      float64          `json:"similarity"`
	Metrics         SwingMetrics     `json:"metrics"`
	Tags            []string         `json:"tags"`
	Recommendations []Recommendation `json:"recommendations"`
}

// similarityDecay controls how fast per-metric similarity falls off with
// relative difference: s = exp(-k*d).
const similarityDecay = 2.0

// relDiffEpsilon keeps the relative-difference denominator away from zero.
const relDiffEpsilon = 1e-9

// matchWeights fixes which metrics participate in similarity and how much
// each contributes. Weights need not sum to 1; the weighted mean normalises
// at combine time. Order is fixed for deterministic recommendations.
var matchWeights = []struct {
	Key    MetricKey
	Weight float64
}{
	{MetricTempoRatio, 0.15},
	{MetricHipRotationTop, 0.12},
	{MetricShoulderRotationTop, 0.12},
	{MetricXFactor, 0.15},
	{MetricSpineAngleAddress, 0.10},
	{MetricSpineAngleChange, 0.08},
	{MetricWeightTransfer, 0.10},
	{MetricBackswingTime, 0.10},
	{MetricDownswingTime, 0.08},
}

// Similarity scores how close the user's metrics are to a reference, in
// [0,100]. Per shared metric the normalised relative difference feeds an
// exponential decay, and the per-metric similarities combine as a weighted
// mean. Identical metrics score 100; no shared metrics score 0.
func Similarity(user, ref SwingMetrics) float64 {
	sims := make([]float64, 0, len(matchWeights))
	weights := make([]float64, 0, len(matchWeights))

	for _, mw := range matchWeights {
		uv, okU := user.Value(mw.Key)
		rv, okR := ref.Value(mw.Key)
		if !okU || !okR {
			continue
		}
		d := math.Abs(uv-rv) / math.Max(math.Abs(rv), relDiffEpsilon)
		sims = append(sims, math.Exp(-similarityDecay*d))
		weights = append(weights, mw.Weight)
	}

	if len(sims) == 0 {
		return 0
	}
	score := stat.Mean(sims, weights) * 100
	return math.Round(score*100) / 100
}

// DefaultMatch is the documented neutral result for an empty corpus.
func DefaultMatch() MatchResult {
	return MatchResult{
		ReferenceID: "default",
		Label:       "Generic Professional",
		Similarity:  0,
	}
}

// BestMatch returns the highest-similarity reference for the user's metrics.
// Ties break by corpus order (first wins). An empty corpus yields
// DefaultMatch, never an error.
func BestMatch(user SwingMetrics, corpus []ReferenceSwing) MatchResult {
	if len(corpus) == 0 {
		return DefaultMatch()
	}

	best := 0
	bestScore := Similarity(user, corpus[0].Metrics)
	for i := 1; i < len(corpus); i++ {
		if s := Similarity(user, corpus[i].Metrics); s > bestScore {
			best, bestScore = i, s
		}
	}

	ref := corpus[best]
	return MatchResult{
		ReferenceID:     ref.ID,
		Label:           ref.Label,
		Similarity:      bestScore,
		Metrics:         ref.Metrics,
		Tags:            ref.Tags,
		Recommendations: Recommendations(user, ref.Metrics),
	}
}

// TopMatches returns the n best matches in descending similarity, ties kept
// in corpus order. Fewer than n corpus entries returns them all; an empty
// corpus returns the single default match.
func TopMatches(user SwingMetrics, corpus []ReferenceSwing, n int) []MatchResult {
	if len(corpus) == 0 {
		return []MatchResult{DefaultMatch()}
	}

	results := make([]MatchResult, 0, len(corpus))
	for _, ref := range corpus {
		results = append(results, MatchResult{
			ReferenceID:     ref.ID,
			Label:           ref.Label,
			Similarity:      Similarity(user, ref.Metrics),
			Metrics:         ref.Metrics,
			Tags:            ref.Tags,
			Recommendations: Recommendations(user, ref.Metrics),
		})
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})
	if n > 0 && n < len(results) {
		results = results[:n]
	}
	return results
}

// recommendDeltaFraction is the minimum relative gap to the reference before
// a metric earns a recommendation.
const recommendDeltaFraction = 0.1

// maxRecommendations caps the recommendation list per match.
const maxRecommendations = 5

// Recommendations lists the metrics where the user differs from the
// reference by more than 10%, largest absolute difference first, capped at
// five entries.
func Recommendations(user, ref SwingMetrics) []Recommendation {
	var recs []Recommendation
	for _, mw := range matchWeights {
		uv, okU := user.Value(mw.Key)
		rv, okR := ref.Value(mw.Key)
		if !okU || !okR {
			continue
		}
		delta := uv - rv
		if math.Abs(delta) <= math.Abs(rv)*recommendDeltaFraction {
			continue
		}
		recs = append(recs, Recommendation{
			Metric:    mw.Key,
			UserValue: uv,
			RefValue:  rv,
			Delta:     delta,
			Advice:    advice(mw.Key, delta),
		})
	}
	sort.SliceStable(recs, func(i, j int) bool {
		return math.Abs(recs[i].Delta) > math.Abs(recs[j].Delta)
	})
	if len(recs) > maxRecommendations {
		recs = recs[:maxRecommendations]
	}
	return recs
}

type adviceKey struct {
	metric MetricKey
	high   bool
}

var adviceTable = map[adviceKey]string{
	{MetricHipRotationTop, false}:      "Increase hip turn in backswing. Focus on rotating around your spine.",
	{MetricHipRotationTop, true}:       "You may be overrotating your hips. Work on more upper body turn instead.",
	{MetricShoulderRotationTop, false}: "Turn shoulders more fully. Try to get your back facing the target.",
	{MetricShoulderRotationTop, true}:  "Your shoulder turn is very full. Make sure you maintain balance.",
	{MetricXFactor, false}:            "Create more separation between shoulders and hips. Resist with lower body.",
	{MetricXFactor, true}:             "You have good separation. Focus on maintaining it through transition.",
	{MetricSpineAngleAddress, false}:  "Increase forward tilt at address. Bend more from your hips.",
	{MetricSpineAngleAddress, true}:   "You may be bent over too much. Stand a bit taller at address.",
	{MetricWeightTransfer, false}:     "Shift weight more to front foot through impact. Feel pressure on left side.",
	{MetricWeightTransfer, true}:      "You're shifting a lot. Make sure it's controlled and not sliding.",
	{MetricTempoRatio, false}:         "Slow down your backswing relative to downswing. Try 3:1 tempo.",
	{MetricTempoRatio, true}:          "Your backswing is very slow. Speed it up slightly for better rhythm.",
}

func advice(metric MetricKey, delta float64) string {
	if a, ok := adviceTable[adviceKey{metric, delta > 0}]; ok {
		return a
	}
	return fmt.Sprintf("Work with a coach on your %s.", metricDisplayName(metric))
}

// FilterByClub returns the corpus entries matching the given club type.
// An empty club matches everything.
func FilterByClub(corpus []ReferenceSwing, club string) []ReferenceSwing {
	if club == "" {
		return corpus
	}
	var out []ReferenceSwing
	for _, ref := range corpus {
		if ref.ClubType == club {
			out = append(out, ref)
		}
	}
	return out
}

// FilterByTags returns corpus entries carrying at least one of the wanted
// tags, falling back to the full corpus when nothing matches.
func FilterByTags(corpus []ReferenceSwing, tags []string) []ReferenceSwing {
	if len(tags) == 0 {
		return corpus
	}
	want := make(map[string]bool, len(tags))
	for _, t := range tags {
		want[t] = true
	}
	var out []ReferenceSwing
	for _, ref := range corpus {
		for _, t := range ref.Tags {
			if want[t] {
				out = append(out, ref)
				break
			}
		}
	}
	if len(out) == 0 {
		return corpus
	}
	return out
}
