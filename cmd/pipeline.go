package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

// pipeline is an ordered list of tasks. A task runs after the tasks it depends
// on; a dependency that is not part of the pipeline counts as satisfied.
type pipeline struct {
	steps []*task
}

func newPipeline(steps []*task) (*pipeline, error) {
	ordered, err := orderSteps(steps)
	if err != nil {
		return nil, err
	}
	return &pipeline{steps: ordered}, nil
}

// orderSteps sorts steps topologically, preferring the given order among steps
// that are ready at the same time.
func orderSteps(steps []*task) ([]*task, error) {
	index := make(map[string]int, len(steps))
	for i, t := range steps {
		if _, dup := index[t.name]; dup {
			return nil, fmt.Errorf("step %q listed more than once", t.name)
		}
		index[t.name] = i
	}

	indegree := make([]int, len(steps))
	dependents := make([][]int, len(steps))
	for i, t := range steps {
		for _, d := range t.deps {
			j, ok := index[d]
			if !ok {
				continue
			}
			if j == i {
				return nil, fmt.Errorf("step %q depends on itself", t.name)
			}
			indegree[i]++
			dependents[j] = append(dependents[j], i)
		}
	}

	done := make([]bool, len(steps))
	out := make([]*task, 0, len(steps))
	for len(out) < len(steps) {
		next := -1
		for i := range steps {
			if !done[i] && indegree[i] == 0 {
				next = i
				break
			}
		}
		if next < 0 {
			var stuck []string
			for i, t := range steps {
				if !done[i] {
					stuck = append(stuck, t.name)
				}
			}
			return nil, fmt.Errorf("circular dependency among steps: %s", strings.Join(stuck, ", "))
		}
		done[next] = true
		out = append(out, steps[next])
		for _, k := range dependents[next] {
			indegree[k]--
		}
	}
	return out, nil
}

func (p *pipeline) names() []string {
	out := make([]string, len(p.steps))
	for i, t := range p.steps {
		out[i] = t.name
	}
	return out
}

// run executes every step on hosts. A failed step marks its dependents, and
// theirs, as skipped. The returned error joins the failures of steps that
// actually ran.
func (p *pipeline) run(ctx context.Context, tc *taskContext, hosts []string) error {
	failed := make(map[string]bool)
	var errs []error
	for _, t := range p.steps {
		log := tc.log.WithField("task", t.name)

		if dep := failedDependency(t, failed); dep != "" {
			failed[t.name] = true
			reason := fmt.Errorf("%w: depends on failed step %s", errStepSkipped, dep)
			tc.report.finishTask(t.name, string(t.mode), statusSkipped, reason)
			tc.skipSummary(t.name, reason)
			log.WithError(reason).Warn("step skipped")
			continue
		}

		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		log.WithField("mode", t.mode).Info("running step")
		if err := dispatch(ctx, tc, t, hosts); err != nil {
			failed[t.name] = true
			tc.report.finishTask(t.name, string(t.mode), statusFailed, err)
			errs = append(errs, fmt.Errorf("%s: %w", t.name, err))
			continue
		}
		tc.report.finishTask(t.name, string(t.mode), statusOK, nil)
	}
	return errors.Join(errs...)
}

func failedDependency(t *task, failed map[string]bool) string {
	for _, d := range t.deps {
		if failed[d] {
			return d
		}
	}
	return ""
}

// runTasks builds the run context, resolves hosts and runs steps as a
// pipeline.
func runTasks(ctx context.Context, steps []*task, summary io.Writer) (err error) {
	p, err := newPipeline(steps)
	if err != nil {
		return err
	}
	tc, err := newTaskContext(summary)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := tc.close(); cerr != nil {
			err = errors.Join(err, cerr)
		}
	}()

	hosts, err := resolveHosts(ctx, tc)
	if err != nil {
		return err
	}
	tc.report.setHosts(hosts)
	tc.log.WithFields(logrus.Fields{
		"hosts": len(hosts),
		"steps": strings.Join(p.names(), ","),
	}).Info("starting run")
	return p.run(ctx, tc, hosts)
}
