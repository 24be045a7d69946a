package cmd

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ssh"

	"cmtgen/internal/state"
)

// writeTemp creates a temp file with content and returns its path.
func writeTemp(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func resetFlag(f *pflag.Flag) {
	if sv, ok := f.Value.(pflag.SliceValue); ok {
		_ = sv.Replace(nil)
	} else {
		_ = f.Value.Set(f.DefValue)
	}
	f.Changed = false
}

// resetConfig clears global configuration so tests don't leak state.
func resetConfig() {
	viper.Reset()
	viper.SetEnvPrefix("CMTGEN")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	rootCmd.PersistentFlags().VisitAll(resetFlag)
	stateShowCmd.Flags().VisitAll(resetFlag)
	stateResetCmd.Flags().VisitAll(resetFlag)
	rootCmd.SetOut(nil)
	rootCmd.SetErr(nil)
	resetContext(rootCmd)

	cfgManifest = ""
	cfgHosts = nil
	cfgUser = ""
	cfgPassword = ""
	cfgKeyPath = ""
	cfgPassphrase = ""
	cfgKnownHosts = ""
	cfgStrictHost = true
	cfgTimeout = 0
	cfgConnTimeout = 0
	cfgParallel = 0
	cfgState = ""
	cfgOutPath = ""
	cfgLogLevel = "info"
	cfgLogFormat = "text"
	cfgPollInterval = defaultPollInterval
	cfgWaitTimeout = 0
	stateHistoryLimit = 10
	stateResetValue = 0
}

// resetContext drops the context cobra keeps on every command after
// ExecuteContext; Execute cancels its signal context on return.
func resetContext(c *cobra.Command) {
	c.SetContext(context.Background())
	for _, sub := range c.Commands() {
		resetContext(sub)
	}
}

func quietLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

// useMemoryStore makes every command in the test share one in-memory store.
func useMemoryStore(t *testing.T) *state.Memory {
	t.Helper()
	m := state.NewMemory()
	orig := openStoreFunc
	t.Cleanup(func() { openStoreFunc = orig })
	openStoreFunc = func(string) (state.Store, error) { return m, nil }
	return m
}

type remoteCall struct {
	Host string
	Cmd  string
}

// fakeRemote replaces SSH: dialing succeeds unless dialErr names the host, and
// every command is answered by respond.
type fakeRemote struct {
	mu      sync.Mutex
	calls   []remoteCall
	dialErr map[string]error
	respond func(host, cmd string) ([]byte, int, error)
}

func installFakeRemote(t *testing.T, respond func(host, cmd string) ([]byte, int, error)) *fakeRemote {
	t.Helper()
	f := &fakeRemote{respond: respond, dialErr: map[string]error{}}
	origDial, origRun := dialSSHFunc, runRemoteCommandFunc
	t.Cleanup(func() { dialSSHFunc = origDial; runRemoteCommandFunc = origRun })

	dialSSHFunc = func(target string, opts sshOptions) (*ssh.Client, error) {
		f.mu.Lock()
		defer f.mu.Unlock()
		return nil, f.dialErr[target]
	}
	runRemoteCommandFunc = func(ctx context.Context, client sessionClient, cmd string, timeout time.Duration) ([]byte, int, error) {
		host := client.(interface{ Addr() string }).Addr()
		f.mu.Lock()
		f.calls = append(f.calls, remoteCall{Host: host, Cmd: cmd})
		f.mu.Unlock()
		if f.respond == nil {
			return nil, 0, nil
		}
		return f.respond(host, cmd)
	}
	return f
}

// commands returns the commands sent to host, in order.
func (f *fakeRemote) commands(host string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, c := range f.calls {
		if c.Host == host {
			out = append(out, c.Cmd)
		}
	}
	return out
}

func (f *fakeRemote) hostOrder() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, c := range f.calls {
		if len(out) == 0 || out[len(out)-1] != c.Host {
			out = append(out, c.Host)
		}
	}
	return out
}

func newTestContext(t *testing.T) *taskContext {
	t.Helper()
	mf := defaultManifest()
	return &taskContext{
		runID:        "test-run",
		mf:           mf,
		store:        state.NewMemory(),
		report:       newYAMLReport("test-run", mf),
		log:          quietLogger(),
		pollInterval: time.Millisecond,
		summary:      io.Discard,
	}
}

func newTestHost(tc *taskContext, addr string) *remoteHost {
	return newRemoteHost(addr, sshClientWrapper{}, 0, tc.log)
}

// exitCode answers a command with only an exit status.
func exitCode(code int) ([]byte, int, error) {
	return nil, code, nil
}
