package cmd

import (
	"errors"
	"time"
)

// Version is the CLI version string injected at build time via -ldflags.
var Version = "0.1.0"

var (
	errNoHosts     = errors.New("no hosts: pass --hosts, list hosts in the manifest, or enable discover")
	errUnknownTask = errors.New("unknown task")
	errStepSkipped = errors.New("skipped")
)

var (
	// Global configuration populated by flags and/or CMTGEN_* environment
	// variables, shared by every subcommand.
	cfgManifest     string
	cfgHosts        []string
	cfgUser         string
	cfgPassword     string
	cfgKeyPath      string
	cfgPassphrase   string
	cfgKnownHosts   string
	cfgStrictHost   bool
	cfgTimeout      time.Duration
	cfgConnTimeout  time.Duration
	cfgParallel     int
	cfgState        string
	cfgOutPath      string
	cfgLogLevel     string
	cfgLogFormat    string
	cfgPollInterval time.Duration
	cfgWaitTimeout  time.Duration
)

// Allow tests to stub dialing, command execution and the state store.
var (
	dialSSHFunc          = dialSSH
	runRemoteCommandFunc = runRemoteCommand
	openStoreFunc        = openStore
)
