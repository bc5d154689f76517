package pipeline

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/banshee-data/swing.report/internal/capture"
	"github.com/banshee-data/swing.report/internal/swing"
)

// FrameSource yields successive frames from one recorded video. Decoders are
// not assumed thread safe, so Next is always called sequentially from the
// batch loop; only pose adaptation of already-decoded frames runs in
// parallel. Total may return 0 when the container does not report a frame
// count.
type FrameSource interface {
	Next(ctx context.Context) (f capture.Frame, ok bool, err error)
	Total() int
	Close() error
}

// BatchOptions tunes one batch run.
type BatchOptions struct {
	// Downsample keeps every Nth frame pair. Values below 1 mean keep all.
	Downsample int

	// Timeout is the overall budget for the run. Zero means no timeout.
	Timeout time.Duration

	// Club filters the reference corpus for matching.
	Club string

	// Progress, when set, receives periodic updates. It is called from the
	// batch goroutine and must not block.
	Progress ProgressFunc

	// ProgressEvery sets how many processed pairs elapse between progress
	// callbacks. Defaults to 5.
	ProgressEvery int
}

// ProgressFunc receives batch progress: fraction is in [0,1], message is a
// human-readable summary carrying processed/total counts, the average
// per-pair cost and the estimated time remaining.
type ProgressFunc func(fraction float64, message string)

// BatchResult is the structured outcome of a batch run. Failed runs carry
// Success=false with a message and sub-errors rather than only an error
// value, so partial progress is reportable.
type BatchResult struct {
	Success        bool         `json:"success"`
	Message        string       `json:"message"`
	ProcessedPairs int          `json:"processed_pairs"`
	TotalPairs     int          `json:"total_pairs"`
	Elapsed        time.Duration `json:"elapsed"`
	Result         *SwingResult `json:"result,omitempty"`
	Errors         []string     `json:"errors,omitempty"`
}

// CancelBatch requests cancellation of the in-flight batch run. The flag is
// polled between frame pairs; cancellation is cooperative and the run
// returns ErrBatchCancelled once observed.
func (o *Orchestrator) CancelBatch() {
	o.batchCancel.Store(true)
}

// RunBatch analyses a recorded swing from two synchronized video sources.
// Frames are decoded sequentially per source, downsampled by index, and the
// two frames of each kept pair are pose-adapted in parallel. The richer of
// the two accumulated pose sequences is analysed.
//
// The returned error is nil on success and one of ErrBatchCancelled,
// ErrBatchTimeout, ErrNoSwingDetected or ErrPipelineBusy otherwise; the
// BatchResult is always populated.
func (o *Orchestrator) RunBatch(ctx context.Context, front, side FrameSource, opts BatchOptions) (*BatchResult, error) {
	if !o.inFlight.CompareAndSwap(false, true) {
		return &BatchResult{Success: false, Message: "analysis already in flight"}, ErrPipelineBusy
	}
	defer o.inFlight.Store(false)
	defer front.Close()
	defer side.Close()
	o.batchCancel.Store(false)

	downsample := opts.Downsample
	if downsample < 1 {
		downsample = 1
	}
	progressEvery := opts.ProgressEvery
	if progressEvery < 1 {
		progressEvery = 5
	}

	totalPairs := front.Total()
	if t := side.Total(); t > 0 && (totalPairs == 0 || t < totalPairs) {
		totalPairs = t
	}
	totalSelected := 0
	if totalPairs > 0 {
		totalSelected = (totalPairs + downsample - 1) / downsample
	}

	start := o.clock.Now()
	deadline := time.Time{}
	if opts.Timeout > 0 {
		deadline = start.Add(opts.Timeout)
	}

	opsf("batch starting: pairs=%d downsample=%d selected=%d timeout=%s",
		totalPairs, downsample, totalSelected, opts.Timeout)

	var (
		seqFront  []swing.PoseFrame
		seqSide   []swing.PoseFrame
		processed int
		subErrors []string
	)

	fail := func(err error, msg string) (*BatchResult, error) {
		opsf("batch failed after %d pairs: %s", processed, msg)
		return &BatchResult{
			Success:        false,
			Message:        msg,
			ProcessedPairs: processed,
			TotalPairs:     totalSelected,
			Elapsed:        o.clock.Since(start),
			Errors:         subErrors,
		}, err
	}

	for index := 0; ; index++ {
		// Cancellation, timeout and context are all checked between units of
		// work so an abort never tears a half-adapted pair.
		if o.batchCancel.Load() {
			return fail(ErrBatchCancelled, "cancelled by caller")
		}
		if ctx.Err() != nil {
			return fail(ErrBatchCancelled, "context cancelled")
		}
		if !deadline.IsZero() && o.clock.Now().After(deadline) {
			return fail(ErrBatchTimeout, fmt.Sprintf("timeout after %s", opts.Timeout))
		}

		frameF, okF, errF := front.Next(ctx)
		frameS, okS, errS := side.Next(ctx)
		if errF != nil {
			subErrors = append(subErrors, fmt.Sprintf("front decode: %v", errF))
		}
		if errS != nil {
			subErrors = append(subErrors, fmt.Sprintf("side decode: %v", errS))
		}
		if !okF || !okS {
			break
		}
		if index%downsample != 0 {
			continue
		}

		poseF, poseS, err := o.adaptPair(ctx, frameF, frameS)
		if err != nil {
			subErrors = append(subErrors, fmt.Sprintf("pair %d: %v", index, err))
			continue
		}
		seqFront = append(seqFront, poseF)
		seqSide = append(seqSide, poseS)
		processed++

		if opts.Progress != nil && processed%progressEvery == 0 {
			reportProgress(opts.Progress, processed, totalSelected, o.clock.Since(start))
		}
	}

	elapsed := o.clock.Since(start)
	best := seqFront
	if swing.CountPresent(seqSide) > swing.CountPresent(seqFront) {
		best = seqSide
	}

	if swing.CountPresent(best) < swing.MinValidWristSamples {
		return fail(ErrNoSwingDetected,
			fmt.Sprintf("no swing detected across %d processed pairs", processed))
	}

	result := o.analyze(ctx, best, "", opts.Club, o.clock.Now())
	o.deliver(result)

	if opts.Progress != nil {
		reportProgress(opts.Progress, processed, processed, elapsed)
	}
	opsf("batch complete: %d pairs in %s, swing %s score=%.1f",
		processed, elapsed, result.ID, result.Flaws.OverallScore)

	return &BatchResult{
		Success:        true,
		Message:        fmt.Sprintf("processed %d frame pairs", processed),
		ProcessedPairs: processed,
		TotalPairs:     totalSelected,
		Elapsed:        elapsed,
		Result:         result,
		Errors:         subErrors,
	}, nil
}

// adaptPair runs pose adaptation for the two frames of one pair in parallel.
// The two adaptations share no mutable state; the group joins before the
// loop advances so decode stays sequential.
func (o *Orchestrator) adaptPair(ctx context.Context, front, side capture.Frame) (swing.PoseFrame, swing.PoseFrame, error) {
	if o.cfg.ResizeWidth > 0 {
		front = capture.ResizeToWidth(front, o.cfg.ResizeWidth)
		side = capture.ResizeToWidth(side, o.cfg.ResizeWidth)
	}

	var poseF, poseS swing.PoseFrame
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		poseF, err = o.adapter.Adapt(gctx, front)
		return err
	})
	g.Go(func() error {
		var err error
		poseS, err = o.adapter.Adapt(gctx, side)
		return err
	})
	if err := g.Wait(); err != nil {
		return swing.PoseFrame{}, swing.PoseFrame{}, err
	}
	return poseF, poseS, nil
}

// reportProgress formats and delivers one progress update.
func reportProgress(fn ProgressFunc, processed, total int, elapsed time.Duration) {
	fraction := 0.0
	avg := time.Duration(0)
	eta := time.Duration(0)
	if processed > 0 {
		avg = elapsed / time.Duration(processed)
	}
	if total > 0 {
		fraction = float64(processed) / float64(total)
		if fraction > 1 {
			fraction = 1
		}
		eta = time.Duration(total-processed) * avg
	}
	fn(fraction, fmt.Sprintf("processed %d/%d pairs (%.0fms/pair, eta %s)",
		processed, total, float64(avg.Milliseconds()), eta.Round(time.Second)))
}
