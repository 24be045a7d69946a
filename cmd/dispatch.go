package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

type dispatchMode string

const (
	// modeParallel runs a task on every host at once.
	modeParallel dispatchMode = "parallel"
	// modeSerial runs a task on one host at a time and stops at the first
	// failing host unless the task sets keepGoing.
	modeSerial dispatchMode = "serial"
)

// dispatch runs t on hosts according to t.mode.
func dispatch(ctx context.Context, tc *taskContext, t *task, hosts []string) error {
	if t.mode == modeSerial {
		var errs []error
		for _, addr := range hosts {
			if err := ctx.Err(); err != nil {
				return errors.Join(append(errs, err)...)
			}
			if err := runOnHost(ctx, tc, t, addr); err != nil {
				err = fmt.Errorf("host %s: %w", addr, err)
				if !t.keepGoing {
					return err
				}
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}

	errs := make([]error, len(hosts))
	var g errgroup.Group
	if tc.parallel > 0 {
		g.SetLimit(tc.parallel)
	}
	for i, addr := range hosts {
		g.Go(func() error {
			if err := runOnHost(ctx, tc, t, addr); err != nil {
				errs[i] = fmt.Errorf("host %s: %w", addr, err)
			}
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}

// runOnHost connects to addr, runs the task, and records the outcome.
func runOnHost(ctx context.Context, tc *taskContext, t *task, addr string) error {
	log := tc.log.WithFields(logrus.Fields{"task": t.name, "host": addr})
	log.Info("starting task")

	var steps []yamlStep
	h, closeHost, err := connectHost(addr, tc)
	if err != nil {
		err = fmt.Errorf("ssh connection failed: %w", err)
	} else {
		h.log = h.log.WithField("task", t.name)
		err = t.run(ctx, tc, h)
		steps = h.recordedSteps()
		closeHost()
	}

	tc.report.addHostRun(t.name, string(t.mode), addr, steps, err)
	tc.hostSummary(t.name, addr, err)
	if err != nil {
		log.WithError(err).Error("task failed")
		return err
	}
	log.Info("task completed")
	return nil
}

var (
	okMark   = color.New(color.FgGreen).Sprint("✓")
	failMark = color.New(color.FgRed).Sprint("✗")
	skipMark = color.New(color.FgYellow).Sprint("-")
)

// hostSummary and skipSummary serialize summary lines from concurrent hosts.
func (tc *taskContext) hostSummary(task, host string, err error) {
	tc.summaryMu.Lock()
	defer tc.summaryMu.Unlock()
	printHostSummary(tc.summary, task, host, err)
}

func (tc *taskContext) skipSummary(task string, reason error) {
	tc.summaryMu.Lock()
	defer tc.summaryMu.Unlock()
	printSkipSummary(tc.summary, task, reason)
}

func printHostSummary(w io.Writer, task, host string, err error) {
	if w == nil {
		return
	}
	if err != nil {
		_, _ = fmt.Fprintf(w, "%s %-10s %s: %v\n", failMark, task, host, err)
		return
	}
	_, _ = fmt.Fprintf(w, "%s %-10s %s\n", okMark, task, host)
}

func printSkipSummary(w io.Writer, task string, reason error) {
	if w == nil {
		return
	}
	_, _ = fmt.Fprintf(w, "%s %-10s %v\n", skipMark, task, reason)
}
