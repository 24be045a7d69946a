package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "cmtgen",
	Short: "Provision, launch and collect the CMT data generator over SSH",
	Long: "Connects to a set of hosts over SSH to clone and compile the CMT data generator, write a " +
		"seeded launcher script per host, start the generator detached, and move its output into a " +
		"dataset directory. Each task can be run on its own or as part of a pipeline.",
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		switch cfgLogFormat {
		case "text", "json":
		default:
			return fmt.Errorf("invalid --log-format %q (want text or json)", cfgLogFormat)
		}
		configureLogger(logger, cfgLogLevel, cfgLogFormat, cmd.ErrOrStderr())
		return nil
	},
}

// newTaskCmd exposes t as a subcommand that runs it alone on every host.
func newTaskCmd(t *task) *cobra.Command {
	return &cobra.Command{
		Use:     t.name,
		Aliases: t.aliases,
		Short:   t.short,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTasks(cmd.Context(), []*task{t}, cmd.ErrOrStderr())
		},
	}
}
