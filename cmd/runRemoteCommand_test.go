package cmd

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeSession struct {
	mu     sync.Mutex
	out    []byte
	err    error
	delay  time.Duration
	closed bool
	cmd    string
}

func (f *fakeSession) CombinedOutput(cmd string) ([]byte, error) {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	f.mu.Lock()
	f.cmd = cmd
	f.mu.Unlock()
	return f.out, f.err
}

func (f *fakeSession) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeSession) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

type fakeClient struct {
	sess   *fakeSession
	newErr error
}

func (c *fakeClient) NewSession() (session, error) {
	if c.newErr != nil {
		return nil, c.newErr
	}
	return c.sess, nil
}

func TestRunRemoteCommand_Success(t *testing.T) {
	s := &fakeSession{out: []byte("OK\n")}
	out, code, err := runRemoteCommand(context.Background(), &fakeClient{sess: s}, "echo OK", 0)
	require.NoError(t, err)
	require.Equal(t, 0, code)
	require.Equal(t, "OK\n", string(out))
	require.Equal(t, "echo OK", s.cmd)
	require.True(t, s.isClosed())
}

func TestRunRemoteCommand_Timeout(t *testing.T) {
	s := &fakeSession{out: []byte("SLOW\n"), delay: 200 * time.Millisecond}
	out, code, err := runRemoteCommand(context.Background(), &fakeClient{sess: s}, "sleep", 10*time.Millisecond)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Equal(t, -1, code)
	require.Nil(t, out)
}

func TestRunRemoteCommand_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := &fakeSession{delay: 200 * time.Millisecond}
	_, code, err := runRemoteCommand(ctx, &fakeClient{sess: s}, "sleep", 0)
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, -1, code)
}

func TestRunRemoteCommand_NewSessionError(t *testing.T) {
	out, code, err := runRemoteCommand(context.Background(), &fakeClient{newErr: errors.New("no session")}, "cmd", 0)
	require.EqualError(t, err, "no session")
	require.Equal(t, -1, code)
	require.Nil(t, out)
}

func TestRunRemoteCommand_ErrorWithoutExitStatus(t *testing.T) {
	s := &fakeSession{out: []byte("oops\n"), err: errors.New("boom")}
	out, code, err := runRemoteCommand(context.Background(), &fakeClient{sess: s}, "cmd", 0)
	require.Error(t, err)
	require.Equal(t, -1, code)
	require.Equal(t, "oops\n", string(out))
}

func TestSSHClientWrapper_NilClient(t *testing.T) {
	_, err := sshClientWrapper{}.NewSession()
	require.ErrorIs(t, err, errNilClient)
}

func TestDialSSH_Unreachable(t *testing.T) {
	_, err := dialSSH("127.0.0.1:1", sshOptions{User: "u", Password: "p", DialTimeout: 50 * time.Millisecond})
	require.Error(t, err)
}

func TestDialSSH_StrictHostNeedsKnownHosts(t *testing.T) {
	_, err := dialSSH("127.0.0.1:1", sshOptions{
		User:           "u",
		StrictHost:     true,
		KnownHostsPath: t.TempDir() + "/missing",
	})
	require.ErrorContains(t, err, "known_hosts file not found")
}
