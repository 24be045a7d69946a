package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var planCmd = &cobra.Command{
	Use:   "plan [task...]",
	Short: "Print the pipeline order and target hosts without connecting",
	RunE: func(cmd *cobra.Command, args []string) error {
		steps, err := lookupTasks(args)
		if err != nil {
			return err
		}
		p, err := newPipeline(steps)
		if err != nil {
			return err
		}
		mf, err := loadManifest(cfgManifest)
		if err != nil {
			return fmt.Errorf("invalid manifest: %w", err)
		}

		w := cmd.OutOrStdout()
		for i, t := range p.steps {
			line := fmt.Sprintf("%d. %-10s %-8s", i+1, t.name, t.mode)
			if len(t.deps) > 0 {
				line += " after " + strings.Join(t.deps, ", ")
			}
			_, _ = fmt.Fprintln(w, strings.TrimRight(line, " "))
		}
		_, _ = fmt.Fprintln(w, "hosts:", plannedHosts(mf))
		return nil
	},
}

// plannedHosts describes where hosts will come from without dialing anything.
func plannedHosts(mf *manifest) string {
	if hosts := splitHosts(cfgHosts); len(hosts) > 0 {
		return strings.Join(hosts, ", ")
	}
	if hosts := splitHosts(mf.Hosts); len(hosts) > 0 {
		return strings.Join(hosts, ", ")
	}
	if mf.Discover {
		return "discovered from /etc/hosts on " + normalizeHost(mf.SSHHost.IP)
	}
	return "none"
}
