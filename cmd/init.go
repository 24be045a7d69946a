package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// init registers the persistent flags, binds each to a CMTGEN_* environment
// variable through Viper, and adds the subcommands.
func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&cfgManifest, "manifest", "m", "", "Path to YAML manifest file (built-in defaults when empty)")
	pf.StringSliceVarP(&cfgHosts, "hosts", "H", nil, "Target hosts, comma separated (host or host:port)")
	pf.StringVarP(&cfgOutPath, "out", "o", "", "Path to write the YAML run report")
	pf.StringVarP(&cfgUser, "user", "u", "", "SSH username (defaults to manifest ssh_host.user)")
	pf.StringVar(&cfgPassword, "password", "", "SSH password (or set CMTGEN_PASSWORD)")
	pf.StringVar(&cfgKeyPath, "key", "", "Path to SSH private key (PEM, OpenSSH)")
	pf.StringVar(&cfgPassphrase, "passphrase", "", "Private key passphrase (or set CMTGEN_PASSPHRASE)")
	pf.StringVar(&cfgKnownHosts, "known-hosts", filepath.Join(os.Getenv("HOME"), ".ssh", "known_hosts"), "Path to known_hosts file")
	pf.BoolVar(&cfgStrictHost, "strict-host-key", true, "Require host key verification (disable to accept any host key)")
	pf.DurationVar(&cfgTimeout, "cmd-timeout", 0, "Per-command timeout (e.g., 30s). 0 disables")
	pf.DurationVar(&cfgConnTimeout, "conn-timeout", 15*time.Second, "Connection timeout")
	pf.IntVar(&cfgParallel, "parallel", 0, "Maximum hosts running a parallel task at once. 0 means all")
	pf.StringVar(&cfgState, "state", "", `Counter store: "memory" or a SQLite file path (default ~/.cmtgen/state.db)`)
	pf.StringVar(&cfgLogLevel, "log-level", "info", "Log level: debug, info, warn, error")
	pf.StringVar(&cfgLogFormat, "log-format", "text", "Log format: text or json")
	pf.DurationVar(&cfgPollInterval, "poll-interval", defaultPollInterval, "How often wait checks for a running generator")
	pf.DurationVar(&cfgWaitTimeout, "wait-timeout", 0, "Give up waiting for the generator after this long. 0 waits forever")

	for _, name := range []string{
		"manifest", "hosts", "out", "user", "password", "key", "passphrase", "known-hosts",
		"strict-host-key", "cmd-timeout", "conn-timeout", "parallel", "state", "log-level",
		"log-format", "poll-interval", "wait-timeout",
	} {
		_ = viper.BindPFlag(name, pf.Lookup(name))
	}

	viper.SetEnvPrefix("CMTGEN")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	cobra.OnInitialize(loadEnvOverrides)

	for _, t := range tasks {
		rootCmd.AddCommand(newTaskCmd(t))
	}
	rootCmd.AddCommand(pipelineCmd, planCmd, verifyCmd, stateCmd)
}

// loadEnvOverrides reads .env when present and applies CMTGEN_* values.
func loadEnvOverrides() {
	_ = godotenv.Load()

	strs := map[string]*string{
		"manifest":    &cfgManifest,
		"out":         &cfgOutPath,
		"user":        &cfgUser,
		"password":    &cfgPassword,
		"key":         &cfgKeyPath,
		"passphrase":  &cfgPassphrase,
		"known-hosts": &cfgKnownHosts,
		"state":       &cfgState,
		"log-level":   &cfgLogLevel,
		"log-format":  &cfgLogFormat,
	}
	for key, dst := range strs {
		if v := viper.GetString(key); v != "" {
			*dst = v
		}
	}

	durations := map[string]*time.Duration{
		"cmd-timeout":   &cfgTimeout,
		"conn-timeout":  &cfgConnTimeout,
		"poll-interval": &cfgPollInterval,
		"wait-timeout":  &cfgWaitTimeout,
	}
	for key, dst := range durations {
		if v := viper.GetString(key); v != "" {
			if d, err := time.ParseDuration(v); err == nil {
				*dst = d
			}
		}
	}

	if v := viper.GetStringSlice("hosts"); len(v) > 0 {
		cfgHosts = v
	}
	if viper.IsSet("parallel") {
		cfgParallel = viper.GetInt("parallel")
	}
	if viper.IsSet("strict-host-key") {
		cfgStrictHost = viper.GetBool("strict-host-key")
	}
}
