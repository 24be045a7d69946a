package cmd

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ssh"

	srv "cmtgen/tools/sshserv"
)

func startTestServer(t *testing.T, h srv.Handler) *srv.Server {
	t.Helper()
	s, err := srv.Start("127.0.0.1:0", h)
	if err != nil {
		t.Skipf("skipping e2e: cannot start test ssh server: %v", err)
	}
	t.Cleanup(s.Stop)
	return s
}

func TestEndToEnd_ExitStatusOverSSH(t *testing.T) {
	s := startTestServer(t, srv.Reply("nope\n", 3))

	client, err := dialSSH(s.Addr(), sshOptions{User: "tester", DialTimeout: 2 * time.Second})
	require.NoError(t, err)
	defer client.Close()

	out, code, err := runRemoteCommand(context.Background(), sshClientWrapper{client}, "false", 0)
	var ee *ssh.ExitError
	require.ErrorAs(t, err, &ee)
	require.Equal(t, 3, code)
	require.Equal(t, "nope\n", string(out))

	cmds := s.Commands()
	require.Len(t, cmds, 1)
	require.Equal(t, srv.Exec{User: "tester", Command: "false"}, cmds[0])
}

// TestEndToEnd_ScriptGenAndCollect points the CLI at a test server that runs
// commands in a local shell, with the workspace in a temp dir.
func TestEndToEnd_ScriptGenAndCollect(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("skipping e2e: no sh")
	}
	s := startTestServer(t, srv.LocalShell)

	ws := t.TempDir()
	src := filepath.Join(ws, "cmt-dbgen", "src")
	require.NoError(t, os.MkdirAll(src, 0o755))
	writeTemp(t, ws, "cmt-dbgen/old.txt.1", "stale")

	mfPath := writeTemp(t, t.TempDir(), "m.yaml", "name: e2e\nworkspace: "+ws+"\n")
	args := func(task string) []string {
		return []string{task, "--manifest", mfPath, "--hosts", s.Addr(), "--user", "tester", "--strict-host-key=false"}
	}

	resetConfig()
	mem := useMemoryStore(t)
	_, err := mem.Advance(context.Background())
	require.NoError(t, err)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args("script-gen"))
	require.NoError(t, rootCmd.Execute())

	script := filepath.Join(ws, "cmt-dbgen", "data_gen.sh")
	b, err := os.ReadFile(script)
	require.NoError(t, err)
	require.Equal(t, "#!/bin/bash\ncd "+src+"\njava dataGenerator ../dist 10 1 100000000\n", string(b))
	fi, err := os.Stat(script)
	require.NoError(t, err)
	require.NotZero(t, fi.Mode()&0o100)
	_, err = os.Stat(filepath.Join(ws, "cmt-dbgen", "old.txt.1"))
	require.True(t, os.IsNotExist(err))

	for _, name := range []string{"mapmatch_history.txt.0", "mapmatch_history_latest.txt.0", "sf_datasets.txt.9.0", "sf_datasets.txt.1.0"} {
		writeTemp(t, src, name, name)
	}
	dataset := filepath.Join(ws, "cmt100000000")
	writeTemp(t, dataset, "previous", "x")

	resetConfig()
	useMemoryStore(t)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args("collect"))
	require.NoError(t, rootCmd.Execute())

	entries, err := os.ReadDir(dataset)
	require.NoError(t, err)
	var got []string
	for _, e := range entries {
		got = append(got, e.Name())
	}
	require.ElementsMatch(t, []string{"mapmatch_history.txt.0", "mapmatch_history_latest.txt.0", "sf_datasets.txt.9.0"}, got)

	left, err := os.ReadDir(src)
	require.NoError(t, err)
	require.Empty(t, left)
}
