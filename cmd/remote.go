package cmd

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// commandError is a remote command that failed to run or exited non-zero.
type commandError struct {
	Host     string
	Command  string
	ExitCode int
	Output   string
	Err      error
}

func (e *commandError) Error() string {
	msg := fmt.Sprintf("%q exited %d", e.Command, e.ExitCode)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if out := strings.TrimSpace(e.Output); out != "" {
		msg += ": " + lastLine(out)
	}
	return msg
}

func (e *commandError) Unwrap() error { return e.Err }

func lastLine(s string) string {
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}

// remoteHost runs commands on one connected host and keeps a record of every
// step for the report.
type remoteHost struct {
	addr    string
	client  sessionClient
	timeout time.Duration
	log     *logrus.Entry

	mu    sync.Mutex
	steps []yamlStep
}

func newRemoteHost(addr string, client sessionClient, timeout time.Duration, log *logrus.Entry) *remoteHost {
	return &remoteHost{
		addr:    addr,
		client:  hostClient{addr: addr, sessionClient: client},
		timeout: timeout,
		log:     log.WithField("host", addr),
	}
}

func (h *remoteHost) record(s yamlStep) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.steps = append(h.steps, s)
}

// recordedSteps returns a copy of the steps run so far.
func (h *remoteHost) recordedSteps() []yamlStep {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]yamlStep(nil), h.steps...)
}

// exec runs cmd and records it. Any failure, including a non-zero exit, is
// returned as *commandError.
func (h *remoteHost) exec(ctx context.Context, cmd string, timeout time.Duration, ignored bool) ([]byte, error) {
	h.log.WithField("command", cmd).Debug("running remote command")
	out, code, err := runRemoteCommandFunc(ctx, h.client, cmd, timeout)
	step := yamlStep{Command: cmd, ExitCode: code, Output: string(out), Ignored: ignored}
	if err == nil && code != 0 {
		err = fmt.Errorf("exit status %d", code)
	}
	if err != nil {
		step.Error = err.Error()
		h.record(step)
		return out, &commandError{Host: h.addr, Command: cmd, ExitCode: code, Output: string(out), Err: err}
	}
	h.record(step)
	return out, nil
}

// run executes cmd; failure is fatal to the caller.
func (h *remoteHost) run(ctx context.Context, cmd string) ([]byte, error) {
	return h.exec(ctx, cmd, h.timeout, false)
}

// runIn executes cmd with dir as the working directory.
func (h *remoteHost) runIn(ctx context.Context, dir, cmd string) ([]byte, error) {
	return h.run(ctx, inDir(dir, cmd))
}

// runInFor is runIn with an explicit timeout.
func (h *remoteHost) runInFor(ctx context.Context, dir, cmd string, timeout time.Duration) ([]byte, error) {
	return h.exec(ctx, inDir(dir, cmd), timeout, false)
}

// try executes cmd best-effort: failures are logged and recorded as ignored,
// and returned so callers can aggregate them.
func (h *remoteHost) try(ctx context.Context, cmd string) error {
	_, err := h.exec(ctx, cmd, h.timeout, true)
	if err != nil {
		h.log.WithError(err).Warn("best-effort command failed")
	}
	return err
}

// tryIn is try with dir as the working directory.
func (h *remoteHost) tryIn(ctx context.Context, dir, cmd string) error {
	return h.try(ctx, inDir(dir, cmd))
}

// check runs a test-style command: exit 0 is true, exit 1 is false, anything
// else is an error. The step is recorded only when rec is set.
func (h *remoteHost) check(ctx context.Context, cmd string, rec bool) (bool, error) {
	out, code, err := runRemoteCommandFunc(ctx, h.client, cmd, h.timeout)
	if rec {
		step := yamlStep{Command: cmd, ExitCode: code, Output: string(out), Ignored: code == 1}
		if err != nil {
			step.Error = err.Error()
		}
		h.record(step)
	}
	switch {
	case code == 0 && err == nil:
		return true, nil
	case code == 1:
		return false, nil
	}
	if err == nil {
		err = fmt.Errorf("exit status %d", code)
	}
	return false, &commandError{Host: h.addr, Command: cmd, ExitCode: code, Output: string(out), Err: err}
}

// exists reports whether p exists on the host.
func (h *remoteHost) exists(ctx context.Context, p string) (bool, error) {
	return h.check(ctx, "test -e "+shellQuote(p), true)
}

// detach launches cmd in the background with every standard stream
// redirected, so the remote command returns at once and the process outlives
// the SSH channel.
func (h *remoteHost) detach(ctx context.Context, cmd string) error {
	_, err := h.run(ctx, detachedLine(cmd))
	return err
}

func inDir(dir, cmd string) string {
	return "cd " + shellQuote(dir) + " && " + cmd
}

func detachedLine(cmd string) string {
	return "nohup " + cmd + " > /dev/null 2>&1 < /dev/null &"
}
