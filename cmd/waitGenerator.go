package cmd

import (
	"context"
	"fmt"
	"time"
	"unicode"
)

const defaultPollInterval = 30 * time.Second

// runWait polls the host until no process matches the generator pattern.
func runWait(ctx context.Context, tc *taskContext, h *remoteHost) error {
	cmd := "pgrep -f " + shellQuote(processPattern(tc.mf.Generator.Process))

	interval := tc.pollInterval
	if interval <= 0 {
		interval = defaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var deadline <-chan time.Time
	if tc.waitTimeout > 0 {
		timer := time.NewTimer(tc.waitTimeout)
		defer timer.Stop()
		deadline = timer.C
	}

	for polls := 1; ; polls++ {
		running, err := h.check(ctx, cmd, false)
		if err != nil {
			return fmt.Errorf("poll generator process: %w", err)
		}
		if !running {
			h.record(yamlStep{Command: cmd, ExitCode: 1, Output: fmt.Sprintf("no generator process after %d polls", polls)})
			h.log.WithField("polls", polls).Info("generator finished")
			return nil
		}
		h.log.WithField("polls", polls).Debug("generator still running")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline:
			return fmt.Errorf("generator still running after %s", tc.waitTimeout)
		case <-ticker.C:
		}
	}
}

// processPattern wraps the first character in a bracket expression so the
// pattern does not match the pgrep invocation's own command line.
func processPattern(p string) string {
	if p == "" {
		return p
	}
	r := []rune(p)
	if !unicode.IsLetter(r[0]) && !unicode.IsDigit(r[0]) {
		return p
	}
	return "[" + string(r[0]) + "]" + string(r[1:])
}
