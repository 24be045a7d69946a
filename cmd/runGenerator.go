package cmd

import (
	"context"
	"fmt"
)

// runGenerator starts the launcher script in the background and returns
// without waiting for it.
func runGenerator(ctx context.Context, tc *taskContext, h *remoteHost) error {
	script := tc.mf.scriptPath()
	ok, err := h.exists(ctx, script)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("launcher script %s not found; run script-gen first", script)
	}
	if err := h.detach(ctx, shellQuote(script)); err != nil {
		return fmt.Errorf("launch generator: %w", err)
	}
	h.log.Info("generator launched")
	return nil
}
