package cmd

import (
	"context"
	"errors"
	"time"

	"golang.org/x/crypto/ssh"
)

// runRemoteCommand executes cmd on a fresh session and returns the combined
// output and exit code. The exit code is -1 when the remote side did not
// report one. A positive timeout bounds the command; cancelling ctx closes the
// session and returns ctx's error.
func runRemoteCommand(ctx context.Context, client sessionClient, cmd string, timeout time.Duration) ([]byte, int, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	sess, err := client.NewSession()
	if err != nil {
		return nil, -1, err
	}
	// Close after CombinedOutput usually reports io.EOF; nothing to act on.
	defer func() { _ = sess.Close() }()

	type result struct {
		out []byte
		err error
	}
	ch := make(chan result, 1)
	go func() {
		b, err := sess.CombinedOutput(cmd)
		ch <- result{b, err}
	}()

	select {
	case r := <-ch:
		if r.err == nil {
			return r.out, 0, nil
		}
		exit := -1
		var ee *ssh.ExitError
		if errors.As(r.err, &ee) {
			exit = ee.ExitStatus()
		}
		return r.out, exit, r.err
	case <-ctx.Done():
		return nil, -1, ctx.Err()
	}
}
