package cmd

import (
	"context"
	"fmt"
	"strings"
)

// taskFunc is the body of a task on one connected host.
type taskFunc func(ctx context.Context, tc *taskContext, h *remoteHost) error

// task is a named remote task. deps only matter inside a pipeline; invoking a
// task on its own never runs its dependencies.
type task struct {
	name    string
	aliases []string
	short   string
	mode    dispatchMode
	deps    []string
	run     taskFunc
	// keepGoing lets a serial task continue past a failing host.
	keepGoing bool
}

var tasks = []*task{
	{
		name:    "init",
		aliases: []string{"cmt_init"},
		short:   "Create the workspace, clone the generator and compile it",
		mode:    modeParallel,
		run:     runInitEnv,
	},
	{
		name:    "script-gen",
		aliases: []string{"cmt_script_gen_100000000"},
		short:   "Write the launcher script with the next counter value as seed",
		mode:    modeSerial,
		deps:    []string{"init"},
		run:     runScriptGen,
		// Every reachable host gets a fresh seed even if one write fails.
		keepGoing: true,
	},
	{
		name:    "gen",
		aliases: []string{"cmt_gen"},
		short:   "Launch the generator detached from the SSH session",
		mode:    modeParallel,
		deps:    []string{"script-gen"},
		run:     runGenerator,
	},
	{
		name:  "wait",
		short: "Poll until no generator process is running",
		mode:  modeParallel,
		deps:  []string{"gen"},
		run:   runWait,
	},
	{
		name:    "collect",
		aliases: []string{"cmt_move_data_100000000"},
		short:   "Move generated files into the dataset directory",
		mode:    modeSerial,
		deps:    []string{"wait"},
		run:     runCollect,
	},
}

// lookupTask finds a task by name or alias.
func lookupTask(name string) (*task, error) {
	name = strings.TrimSpace(name)
	for _, t := range tasks {
		if t.name == name {
			return t, nil
		}
		for _, a := range t.aliases {
			if a == name {
				return t, nil
			}
		}
	}
	return nil, fmt.Errorf("%w: %q", errUnknownTask, name)
}

// lookupTasks resolves names in order; no names selects every task.
func lookupTasks(names []string) ([]*task, error) {
	if len(names) == 0 {
		return append([]*task(nil), tasks...), nil
	}
	out := make([]*task, 0, len(names))
	for _, n := range names {
		for _, part := range strings.Split(n, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			t, err := lookupTask(part)
			if err != nil {
				return nil, err
			}
			out = append(out, t)
		}
	}
	return out, nil
}
