package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Validate a manifest YAML file",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfgManifest == "" {
			return errors.New("--manifest is required (path to YAML)")
		}
		mf, err := loadManifest(cfgManifest)
		if err != nil {
			return fmt.Errorf("invalid manifest: %w", err)
		}
		w := cmd.OutOrStdout()
		_, _ = fmt.Fprintf(w, "Manifest OK: %s\n", mf.Name)
		_, _ = fmt.Fprintf(w, "launcher: %s\n", mf.generatorLine(0))
		return nil
	},
}
