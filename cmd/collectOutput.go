package cmd

import (
	"context"
	"errors"
	"fmt"
)

// runCollect replaces the dataset directory with the generator's output.
// Only creating the directory is fatal. Every move and the final cleanup are
// attempted whatever happened before, and their failures are returned
// together.
func runCollect(ctx context.Context, tc *taskContext, h *remoteHost) error {
	mf := tc.mf
	dataset := shellQuote(mf.datasetDir())

	// A missing previous dataset is fine.
	_ = h.try(ctx, "rm -rf "+dataset)

	if _, err := h.run(ctx, "mkdir -p "+dataset); err != nil {
		return fmt.Errorf("create dataset dir: %w", err)
	}

	src := mf.sourceDir()
	var errs []error
	for _, p := range mf.Collect.Patterns {
		if err := h.tryIn(ctx, src, "mv "+p+" "+dataset); err != nil {
			errs = append(errs, fmt.Errorf("move %s: %w", p, err))
		}
	}
	if mf.Collect.Cleanup != "" {
		if err := h.tryIn(ctx, src, "rm -rf "+mf.Collect.Cleanup); err != nil {
			errs = append(errs, fmt.Errorf("cleanup %s: %w", mf.Collect.Cleanup, err))
		}
	}
	return errors.Join(errs...)
}
