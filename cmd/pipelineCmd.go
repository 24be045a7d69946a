package cmd

import (
	"github.com/spf13/cobra"
)

var pipelineCmd = &cobra.Command{
	Use:   "pipeline [task...]",
	Short: "Run tasks in dependency order, skipping dependents of a failed task",
	Long: "Runs the named tasks (all tasks when none are given) ordered by their declared " +
		"dependencies: init, script-gen, gen, wait, collect. When a task fails, every task that " +
		"depends on it is skipped.",
	RunE: func(cmd *cobra.Command, args []string) error {
		steps, err := lookupTasks(args)
		if err != nil {
			return err
		}
		return runTasks(cmd.Context(), steps, cmd.ErrOrStderr())
	},
}
