package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/reglet-dev/xrdsim/internal/application/dto"
	"github.com/reglet-dev/xrdsim/internal/application/ports"
	"github.com/reglet-dev/xrdsim/internal/domain/values"
	"golang.org/x/sync/errgroup"
)

// Ensure interface compliance
var _ ports.CompositionRunner = (*Runner)(nil)

// Runner executes a task for every composition of a sweep. Tasks receive the
// composition's index so they can write results into pre-sized slots, which
// keeps output order equal to sweep order regardless of scheduling.
type Runner struct {
	logger *slog.Logger
}

// NewRunner creates a new composition runner.
func NewRunner(logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{logger: logger}
}

// Run executes task for each composition. In parallel mode at most
// opts.MaxWorkers tasks run at once; the first error cancels the rest.
func (r *Runner) Run(ctx context.Context, compositions []values.Composition, opts dto.ExecutionOptions, task ports.CompositionTask) error {
	if len(compositions) == 0 {
		return nil
	}
	if !opts.Parallel || len(compositions) == 1 {
		return r.runSequential(ctx, compositions, task)
	}
	return r.runParallel(ctx, compositions, workerCount(opts.MaxWorkers), task)
}

func (r *Runner) runSequential(ctx context.Context, compositions []values.Composition, task ports.CompositionTask) error {
	r.logger.Debug("running compositions sequentially", "compositions", len(compositions))
	for i, comp := range compositions {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := task(ctx, i, comp); err != nil {
			return fmt.Errorf("composition %d (%s): %w", i, comp, err)
		}
	}
	return nil
}

func (r *Runner) runParallel(ctx context.Context, compositions []values.Composition, workers int, task ports.CompositionTask) error {
	r.logger.Debug("running compositions in parallel", "compositions", len(compositions), "workers", workers)

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, comp := range compositions {
		if gCtx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			if err := task(gCtx, i, comp); err != nil {
				return fmt.Errorf("composition %d (%s): %w", i, comp, err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	// A cancelled parent with no task failure still aborts the run.
	return ctx.Err()
}
