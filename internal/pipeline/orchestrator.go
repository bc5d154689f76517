package pipeline

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/banshee-data/swing.report/internal/capture"
	"github.com/banshee-data/swing.report/internal/pose"
	"github.com/banshee-data/swing.report/internal/swing"
	"github.com/banshee-data/swing.report/internal/timeutil"
)

// Config tunes the orchestrator. Zero values fall back to the defaults from
// DefaultConfig at construction time.
type Config struct {
	// FPS is the nominal capture rate used for time-based metrics.
	FPS float64 `json:"fps"`

	// PollInterval is the live loop's tick period.
	PollInterval time.Duration `json:"poll_interval"`

	// Debounce is the minimum interval between two accepted swings.
	Debounce time.Duration `json:"debounce"`

	// MinPosesForDetection gates event detection until the live pose window
	// has accumulated this many frames.
	MinPosesForDetection int `json:"min_poses_for_detection"`

	// ResizeWidth is the pre-adaptation frame target width for the active
	// quality mode. Zero disables resizing.
	ResizeWidth int `json:"resize_width"`
}

// DefaultConfig returns the orchestrator defaults: 60fps capture, 50ms poll,
// 3s debounce, detection after 30 buffered poses.
func DefaultConfig() Config {
	return Config{
		FPS:                  60,
		PollInterval:         50 * time.Millisecond,
		Debounce:             3 * time.Second,
		MinPosesForDetection: 30,
	}
}

// swingMotionThreshold is the minimum lead-wrist height travel (normalised
// units) within the pose window before the live loop treats the window as
// containing a swing rather than a golfer standing at address.
const swingMotionThreshold = 0.15

// Orchestrator composes capture buffers, the pose adapter, the analysis core
// and the collaborator stores into the live loop and the batch pipeline. One
// orchestrator owns at most one session; at most one analysis pass runs at a
// time, guarded by the in-flight flag.
type Orchestrator struct {
	cfg     Config
	adapter pose.Adapter
	cameras []*capture.Camera
	corpus  CorpusProvider
	sink    ResultSink
	shots   ShotProvider
	clock   timeutil.Clock

	onResult func(*SwingResult)

	inFlight    atomic.Bool
	batchCancel atomic.Bool

	mu         sync.Mutex
	session    *Session
	lastResult *SwingResult
	lastSeq    map[string]uint64
}

// Option configures optional orchestrator collaborators.
type Option func(*Orchestrator)

// WithCorpus attaches the reference corpus store.
func WithCorpus(c CorpusProvider) Option { return func(o *Orchestrator) { o.corpus = c } }

// WithSink attaches the persistence collaborator.
func WithSink(s ResultSink) Option { return func(o *Orchestrator) { o.sink = s } }

// WithShots attaches the launch-monitor shot lookup.
func WithShots(s ShotProvider) Option { return func(o *Orchestrator) { o.shots = s } }

// WithClock injects a clock, for tests. Defaults to the real clock.
func WithClock(c timeutil.Clock) Option { return func(o *Orchestrator) { o.clock = c } }

// WithResultCallback registers the per-swing delivery callback. It is
// invoked from the analysis goroutine and must not block.
func WithResultCallback(fn func(*SwingResult)) Option {
	return func(o *Orchestrator) { o.onResult = fn }
}

// New builds an orchestrator over the given cameras and pose adapter.
func New(cfg Config, adapter pose.Adapter, cameras []*capture.Camera, opts ...Option) *Orchestrator {
	def := DefaultConfig()
	if cfg.FPS <= 0 {
		cfg.FPS = def.FPS
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = def.PollInterval
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = def.Debounce
	}
	if cfg.MinPosesForDetection <= 0 {
		cfg.MinPosesForDetection = def.MinPosesForDetection
	}

	o := &Orchestrator{
		cfg:     cfg,
		adapter: adapter,
		cameras: cameras,
		clock:   timeutil.RealClock{},
		lastSeq: make(map[string]uint64),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// StartSession creates and activates a new session for the given club. An
// existing active session must be stopped first.
func (o *Orchestrator) StartSession(club string) (*Session, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.session != nil && o.session.State() == SessionActive {
		return nil, fmt.Errorf("%w: session %s still active", ErrSessionState, o.session.ID)
	}
	s := NewSession(club)
	if err := s.Start(o.clock.Now()); err != nil {
		return nil, err
	}
	o.session = s
	return s, nil
}

// StopSession stops the active session.
func (o *Orchestrator) StopSession() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.session == nil {
		return fmt.Errorf("%w: no session", ErrSessionState)
	}
	return o.session.Stop(o.clock.Now())
}

// Session returns the current session, which may be nil.
func (o *Orchestrator) Session() *Session {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.session
}

// LastResult returns the most recently analysed swing, or nil.
func (o *Orchestrator) LastResult() *SwingResult {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lastResult
}

func (o *Orchestrator) setLastResult(r *SwingResult) {
	o.mu.Lock()
	o.lastResult = r
	o.mu.Unlock()
}

// RunLive drives the live polling loop until the context is cancelled. Each
// tick pulls the newest frame per camera, adapts it, and once the session's
// pose window is deep enough and the debounce interval allows, analyses the
// window and emits a result. A failed tick logs and the loop continues.
func (o *Orchestrator) RunLive(ctx context.Context) error {
	ticker := o.clock.NewTicker(o.cfg.PollInterval)
	defer ticker.Stop()

	opsf("live loop starting (poll=%s debounce=%s)", o.cfg.PollInterval, o.cfg.Debounce)
	defer opsf("live loop stopped")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C():
			o.liveTick(ctx)
		}
	}
}

// liveTick is one iteration of the live loop.
func (o *Orchestrator) liveTick(ctx context.Context) {
	session := o.Session()
	if session == nil || session.State() != SessionActive {
		return
	}

	// Adapt the newest unseen frame per camera, then append exactly one pose
	// for this tick: the first non-absent one, falling back to the primary
	// camera's pose so the window keeps advancing during detection gaps.
	var poses []swing.PoseFrame
	for _, cam := range o.cameras {
		frame, ok := cam.Buffer().Latest()
		if !ok || o.alreadySeen(cam.ID, frame.Seq) {
			continue
		}
		if o.cfg.ResizeWidth > 0 {
			frame = capture.ResizeToWidth(frame, o.cfg.ResizeWidth)
		}
		pf, err := o.adapter.Adapt(ctx, frame)
		if err != nil {
			diagf("live adapt failed on camera %s: %v", cam.ID, err)
			continue
		}
		poses = append(poses, pf)
	}
	if len(poses) > 0 {
		chosen := poses[0]
		for _, pf := range poses {
			if !pf.Absent() {
				chosen = pf
				break
			}
		}
		session.AppendPose(chosen)
	}

	if session.PoseCount() < o.cfg.MinPosesForDetection {
		return
	}

	seq := session.PoseSnapshot()
	if !swingObserved(seq) {
		return
	}

	now := o.clock.Now()
	if !session.AcceptSwing(now, o.cfg.Debounce) {
		tracef("swing suppressed by debounce")
		return
	}

	if !o.inFlight.CompareAndSwap(false, true) {
		diagf("swing dropped: %v", ErrPipelineBusy)
		return
	}
	session.ResetPoses()

	go func() {
		defer o.inFlight.Store(false)
		result := o.analyze(ctx, seq, session.ID, session.Club(), now)
		o.deliver(result)
	}()
}

// alreadySeen tracks the newest buffer sequence number consumed per camera
// so a stalled producer does not replay its last frame into the window.
func (o *Orchestrator) alreadySeen(cameraID string, seq uint64) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.lastSeq[cameraID] >= seq {
		return true
	}
	o.lastSeq[cameraID] = seq
	return false
}

// swingObserved reports whether the pose window looks like a swing: enough
// detected lead wrists and enough vertical wrist travel to rule out a golfer
// standing still at address.
func swingObserved(seq []swing.PoseFrame) bool {
	minY, maxY := 0.0, 0.0
	valid := 0
	for _, p := range seq {
		lm, ok := p.Landmark(swing.JointWristL)
		if !ok {
			continue
		}
		if valid == 0 {
			minY, maxY = lm.Y, lm.Y
		} else {
			if lm.Y < minY {
				minY = lm.Y
			}
			if lm.Y > maxY {
				maxY = lm.Y
			}
		}
		valid++
	}
	return valid >= swing.MinValidWristSamples && maxY-minY >= swingMotionThreshold
}
