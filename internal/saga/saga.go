// Package saga runs an ordered list of steps with per-step compensating
// actions. When a step fails, the compensations of every previously
// completed step run in reverse order; a compensation failure is logged
// and never masks the original error. The submission coordinator uses
// this to keep the record store and the blob store consistent without
// nested error handling.
package saga

import (
	"context"
	"fmt"

	"github.com/muralvote/muralvote/internal/logging"
)

// Step is one unit of work. Compensate may be nil for steps with nothing
// to undo (pure validations, reads).
type Step struct {
	Name       string
	Run        func(ctx context.Context) error
	Compensate func(ctx context.Context) error
}

// Run executes steps in order. On the first failure it unwinds the
// completed steps' compensations (latest first) and returns the failing
// step's error wrapped with its name.
func Run(ctx context.Context, log logging.Logger, steps []Step) error {
	for i, step := range steps {
		err := step.Run(ctx)
		if err == nil {
			continue
		}

		for j := i - 1; j >= 0; j-- {
			comp := steps[j].Compensate
			if comp == nil {
				continue
			}
			if cerr := comp(ctx); cerr != nil {
				log.Error(ctx, "compensation failed",
					"step", steps[j].Name, "error", cerr.Error())
			}
		}

		return fmt.Errorf("%s: %w", step.Name, err)
	}
	return nil
}
