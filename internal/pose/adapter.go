// Package pose adapts captured frames into body landmark frames. The real
// estimator runs out of process; this package defines the adapter contract
// and provides deterministic adapters for tests and development machines.
package pose

import (
	"context"

	"github.com/banshee-data/swing.report/internal/capture"
	"github.com/banshee-data/swing.report/internal/swing"
)

// Adapter turns one captured frame into a pose frame. An adapter returns an
// empty PoseFrame (no landmarks) when no body is visible; that is not an
// error. Adapters must be safe for concurrent calls, batch analysis adapts
// frames in parallel.
type Adapter interface {
	Adapt(ctx context.Context, f capture.Frame) (swing.PoseFrame, error)
	Close() error
}

// NullAdapter reports every frame as empty. It keeps the pipeline runnable
// when no estimator is configured.
type NullAdapter struct{}

func (NullAdapter) Adapt(ctx context.Context, f capture.Frame) (swing.PoseFrame, error) {
	return swing.PoseFrame{}, nil
}

func (NullAdapter) Close() error { return nil }
