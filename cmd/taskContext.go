package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"cmtgen/internal/state"
)

// taskContext is everything a task needs besides the host it runs on. One is
// built per CLI invocation; the generator counter lives in store rather than
// in a package variable.
type taskContext struct {
	runID        string
	mf           *manifest
	store        state.Store
	report       *yamlReport
	log          *logrus.Entry
	ssh          sshOptions
	cmdTimeout   time.Duration
	pollInterval time.Duration
	waitTimeout  time.Duration
	parallel     int
	outPath      string

	summaryMu sync.Mutex
	summary   io.Writer
}

// openStore maps --state to a store: "memory" keeps the counter in process,
// anything else is a SQLite file path ("" selects the default location).
func openStore(target string) (state.Store, error) {
	switch target {
	case "memory":
		return state.NewMemory(), nil
	case "":
		p, err := state.DefaultPath()
		if err != nil {
			return nil, err
		}
		return state.OpenSQLite(p)
	default:
		return state.OpenSQLite(target)
	}
}

func newTaskContext(summary io.Writer) (*taskContext, error) {
	mf, err := loadManifest(cfgManifest)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	opts := currentSSHOptions()
	if opts.User == "" {
		opts.User = strings.TrimSpace(mf.SSHHost.User)
	}
	if opts.User == "" {
		return nil, errors.New("--user is required for SSH authentication")
	}
	store, err := openStoreFunc(cfgState)
	if err != nil {
		return nil, fmt.Errorf("open state store: %w", err)
	}

	runID := uuid.NewString()
	return &taskContext{
		runID:        runID,
		mf:           mf,
		store:        store,
		report:       newYAMLReport(runID, mf),
		log:          logger.WithField("run_id", runID),
		ssh:          opts,
		cmdTimeout:   cfgTimeout,
		pollInterval: cfgPollInterval,
		waitTimeout:  cfgWaitTimeout,
		parallel:     cfgParallel,
		summary:      summary,
		outPath:      cfgOutPath,
	}, nil
}

// close writes the report when --out is set and releases the store.
func (tc *taskContext) close() error {
	var errs []error
	if tc.outPath != "" {
		if err := writeYAMLReportFile(tc.outPath, tc.report); err != nil {
			errs = append(errs, fmt.Errorf("failed to write YAML report: %w", err))
		} else {
			tc.log.WithField("out", tc.outPath).Info("report written")
		}
	}
	if err := tc.store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close state store: %w", err))
	}
	return errors.Join(errs...)
}

// connectHost dials addr and wraps the connection. The returned func closes it.
func connectHost(addr string, tc *taskContext) (*remoteHost, func(), error) {
	client, err := dialSSHFunc(addr, tc.ssh)
	if err != nil {
		return nil, nil, err
	}
	h := newRemoteHost(addr, sshClientWrapper{client}, tc.cmdTimeout, tc.log)
	return h, func() {
		if client != nil {
			_ = client.Close()
		}
	}, nil
}
