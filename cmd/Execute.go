package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

// Execute runs the root command. SIGINT and SIGTERM cancel the running task.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		exitFunc(1)
	}
}
