package cmd

import (
	"context"
	"fmt"
	"time"

	"cmtgen/internal/state"
)

// runScriptGen writes the launcher script for one host. The counter advances
// before the write and stays advanced when the write fails, so a seed is never
// handed out twice.
func runScriptGen(ctx context.Context, tc *taskContext, h *remoteHost) error {
	mf := tc.mf

	// Leftover output from a previous run; failure only warns.
	if mf.Generator.Cleanup != "" {
		_ = h.tryIn(ctx, mf.checkoutDir(), "rm -rf "+mf.Generator.Cleanup)
	}

	seed, err := tc.store.Advance(ctx)
	if err != nil {
		return fmt.Errorf("advance generator counter: %w", err)
	}
	body := mf.launcherScript(seed)
	writeErr := writeRemoteScript(ctx, h, mf.scriptPath(), body)

	rec := state.ScriptRecord{
		RunID:     tc.runID,
		Host:      h.addr,
		Seed:      seed,
		Script:    body,
		CreatedAt: time.Now().UTC(),
	}
	if writeErr != nil {
		rec.Error = writeErr.Error()
	}
	if err := tc.store.Record(ctx, rec); err != nil {
		h.log.WithError(err).Warn("failed to record script history")
	}

	if writeErr != nil {
		return fmt.Errorf("write launcher script (seed %d): %w", seed, writeErr)
	}
	h.log.WithField("seed", seed).Info("launcher script written")
	return nil
}

// writeRemoteScript writes body verbatim to p and marks it executable. The old
// script is removed first so a failed write leaves no launcher behind.
func writeRemoteScript(ctx context.Context, h *remoteHost, p, body string) error {
	if _, err := h.run(ctx, "rm -f "+shellQuote(p)); err != nil {
		return err
	}
	if _, err := h.run(ctx, "printf '%s' "+shellQuote(body)+" > "+shellQuote(p)); err != nil {
		return err
	}
	_, err := h.run(ctx, "chmod +x "+shellQuote(p))
	return err
}
