package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/swing.report/internal/swing"
)

// SwingResult is the unit handed to callers for each analysed swing.
// Ownership transfers to the caller on delivery; the pipeline never mutates
// a result after emitting it.
type SwingResult struct {
	ID         string            `json:"id"`
	SessionID  string            `json:"session_id,omitempty"`
	Timestamp  time.Time         `json:"timestamp"`
	Club       string            `json:"club,omitempty"`
	FPS        float64           `json:"fps"`
	Events     swing.SwingEvents `json:"events"`
	Metrics    swing.SwingMetrics `json:"metrics"`
	Flaws      swing.FlawReport  `json:"flaw_report"`
	Match      swing.MatchResult `json:"match_result"`
	Tags       []string          `json:"tags,omitempty"`
	Shot       *swing.ShotData   `json:"shot_data,omitempty"`
	WristCurve []float64         `json:"wrist_curve,omitempty"`
}

// CorpusProvider supplies reference swings for matching. Read path only; the
// corpus is refreshed out of band.
type CorpusProvider interface {
	ListReferences(ctx context.Context, club string) ([]swing.ReferenceSwing, error)
}

// ResultSink persists an analysed swing. Saves are fire-and-forget from the
// pipeline's perspective: the result has already been delivered to the
// caller before the sink runs, and a sink error only logs.
type ResultSink interface {
	SaveResult(ctx context.Context, r *SwingResult) error
}

// ShotProvider looks up the launch-monitor record nearest a swing timestamp.
// ok is false when no shot arrived within the window; that is valid and the
// result simply carries no shot data.
type ShotProvider interface {
	ShotNear(t time.Time, window time.Duration) (swing.ShotData, bool)
}

// shotMatchWindow bounds how far a launch-monitor record may sit from the
// swing timestamp and still be attached to it.
const shotMatchWindow = 5 * time.Second

// analyze runs detection, metrics, flaw scoring and matching over one pose
// sequence and assembles the result. It never fails; callers decide
// beforehand whether the sequence is rich enough to analyse.
func (o *Orchestrator) analyze(ctx context.Context, seq []swing.PoseFrame, sessionID, club string, now time.Time) *SwingResult {
	events := swing.DetectEvents(seq).Clamp(len(seq))

	var metrics swing.SwingMetrics
	if len(seq) == 0 {
		metrics = swing.DefaultMetrics()
	} else {
		metrics = swing.ExtractMetrics(seq[events.Address], seq[events.Top], seq[events.Impact], events, o.cfg.FPS)
	}

	var shot *swing.ShotData
	if o.shots != nil {
		if sd, ok := o.shots.ShotNear(now, shotMatchWindow); ok {
			shot = &sd
			if sd.ClubSpeed > 0 {
				metrics.ClubSpeed = sd.ClubSpeed
			}
			if club == "" {
				club = sd.Club
			}
		}
	}

	corpus := o.corpusFor(ctx, club)
	result := &SwingResult{
		ID:         uuid.NewString(),
		SessionID:  sessionID,
		Timestamp:  now,
		Club:       club,
		FPS:        o.cfg.FPS,
		Events:     events,
		Metrics:    metrics,
		Flaws:      swing.ScoreFlaws(metrics),
		Match:      swing.BestMatch(metrics, corpus),
		Tags:       swing.StyleTags(metrics),
		Shot:       shot,
		WristCurve: wristCurve(seq),
	}

	diagf("analyzed swing %s: score=%.1f flaws=%d match=%s sim=%.1f",
		result.ID, result.Flaws.OverallScore, result.Flaws.FlawCount,
		result.Match.Label, result.Match.Similarity)
	return result
}

// corpusFor loads the reference corpus for a club, logging and degrading to
// an empty corpus (and thus the default match) on store errors.
func (o *Orchestrator) corpusFor(ctx context.Context, club string) []swing.ReferenceSwing {
	if o.corpus == nil {
		return nil
	}
	refs, err := o.corpus.ListReferences(ctx, club)
	if err != nil {
		opsf("corpus load failed (club=%q): %v", club, err)
		return nil
	}
	return refs
}

// wristCurve extracts the lead-wrist height series for the monitor's
// trajectory plot. Absent frames carry the previous height so the curve
// stays plottable.
func wristCurve(seq []swing.PoseFrame) []float64 {
	if len(seq) == 0 {
		return nil
	}
	out := make([]float64, len(seq))
	last := 0.0
	for i, p := range seq {
		if lm, ok := p.Landmark(swing.JointWristL); ok {
			last = lm.Y
		}
		out[i] = last
	}
	return out
}

// deliver hands the result to the caller's callback and then kicks off the
// fire-and-forget save.
func (o *Orchestrator) deliver(r *SwingResult) {
	if o.onResult != nil {
		o.onResult(r)
	}
	if o.sink != nil {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
			defer cancel()
			if err := o.sink.SaveResult(ctx, r); err != nil {
				opsf("save failed for swing %s: %v", r.ID, err)
			}
		}()
	}
	o.setLastResult(r)
}

// saveTimeout bounds the background persistence of one result.
const saveTimeout = 10 * time.Second
