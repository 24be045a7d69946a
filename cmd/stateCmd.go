package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var (
	stateHistoryLimit int
	stateResetValue   int64
)

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Inspect or reset the generator counter",
}

var stateShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the counter and recent script-gen attempts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStoreFunc(cfgState)
		if err != nil {
			return fmt.Errorf("open state store: %w", err)
		}
		defer func() { _ = store.Close() }()

		ctx := cmd.Context()
		v, err := store.Counter(ctx)
		if err != nil {
			return err
		}
		history, err := store.History(ctx, stateHistoryLimit)
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		_, _ = fmt.Fprintf(w, "counter: %d\n", v)
		if len(history) == 0 {
			return nil
		}
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		_, _ = fmt.Fprintln(tw, "SEED\tHOST\tRUN\tCREATED\tERROR")
		for _, r := range history {
			_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", r.Seed, r.Host, r.RunID, r.CreatedAt.Format(time.RFC3339), r.Error)
		}
		return tw.Flush()
	},
}

var stateResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Set the counter (0 unless --value is given)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if stateResetValue < 0 {
			return fmt.Errorf("--value must not be negative, got %d", stateResetValue)
		}
		store, err := openStoreFunc(cfgState)
		if err != nil {
			return fmt.Errorf("open state store: %w", err)
		}
		defer func() { _ = store.Close() }()

		if err := store.Reset(cmd.Context(), stateResetValue); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "counter reset to %d\n", stateResetValue)
		return nil
	},
}

func init() {
	stateShowCmd.Flags().IntVar(&stateHistoryLimit, "limit", 10, "Number of history entries to show (0 for all)")
	stateResetCmd.Flags().Int64Var(&stateResetValue, "value", 0, "Counter value to set")
	stateCmd.AddCommand(stateShowCmd, stateResetCmd)
}
