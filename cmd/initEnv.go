package cmd

import (
	"context"
	"fmt"
)

// runInitEnv prepares a host: workspace, checkout and compiled generator.
// An existing workspace or checkout is reused so init can be repeated.
func runInitEnv(ctx context.Context, tc *taskContext, h *remoteHost) error {
	mf := tc.mf

	ok, err := h.exists(ctx, mf.Workspace)
	if err != nil {
		return err
	}
	if !ok {
		if _, err := h.run(ctx, "mkdir -p "+shellQuote(mf.Workspace)); err != nil {
			return fmt.Errorf("create workspace: %w", err)
		}
	}

	ok, err = h.exists(ctx, mf.checkoutDir())
	if err != nil {
		return err
	}
	if ok {
		h.log.WithField("dir", mf.checkoutDir()).Info("checkout exists, skipping clone")
	} else {
		clone := commandEntry{Command: "git", Args: []string{"clone", mf.Repository.URL, mf.Repository.Dir}}
		if _, err := h.runIn(ctx, mf.Workspace, clone.line()); err != nil {
			return fmt.Errorf("clone repository: %w", err)
		}
	}

	build := mf.Build
	if _, err := h.runInFor(ctx, mf.checkoutDir(), build.line(), build.perCommandTimeout(tc.cmdTimeout)); err != nil {
		return fmt.Errorf("compile generator: %w", err)
	}
	return nil
}
