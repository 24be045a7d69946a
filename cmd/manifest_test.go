package cmd

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaultManifest_LauncherScript(t *testing.T) {
	mf := defaultManifest()
	require.NoError(t, mf.validate())

	require.Equal(t, "/data/mdindex/yilu/cmt-dbgen", mf.checkoutDir())
	require.Equal(t, "/data/mdindex/yilu/cmt-dbgen/data_gen.sh", mf.scriptPath())
	require.Equal(t, "/data/mdindex/yilu/cmt100000000", mf.datasetDir())
	require.Equal(t, "java dataGenerator ../dist 10 7 100000000", mf.generatorLine(7))
	require.Equal(t,
		"#!/bin/bash\ncd /data/mdindex/yilu/cmt-dbgen/src\njava dataGenerator ../dist 10 0 100000000\n",
		mf.launcherScript(0))
}

func TestLoadManifest_EmptyPathUsesDefaults(t *testing.T) {
	mf, err := loadManifest("")
	require.NoError(t, err)
	require.Equal(t, defaultManifest(), mf)
}

func TestLoadManifest_OverlaysDefaults(t *testing.T) {
	tmp := t.TempDir()
	p := writeTemp(t, tmp, "m.yaml", `
name: small
workspace: /scratch/gen
hosts: [10.0.0.5, "10.0.0.6:2222"]
build:
  timeout: 10m
generator:
  rows: 1000
  run:
    cmd: java
    args: ["-Xmx4g", "dataGenerator"]
collect:
  dataset: cmt1000
`)
	mf, err := loadManifest(p)
	require.NoError(t, err)

	require.Equal(t, "small", mf.Name)
	require.Equal(t, []string{"10.0.0.5", "10.0.0.6:2222"}, mf.Hosts)
	require.Equal(t, "/scratch/gen/cmt-dbgen", mf.checkoutDir())
	require.Equal(t, "/scratch/gen/cmt1000", mf.datasetDir())
	// build keeps its command and only gains a timeout
	require.Equal(t, "javac src/dataGenerator.java", mf.Build.line())
	require.Equal(t, 10*time.Minute, mf.Build.perCommandTimeout(0))
	require.Equal(t, "java -Xmx4g dataGenerator ../dist 10 3 1000", mf.generatorLine(3))
	require.Len(t, mf.Collect.Patterns, 3)
}

func TestLoadManifest_Errors(t *testing.T) {
	tmp := t.TempDir()
	cases := map[string]string{
		"relative workspace":  "workspace: data\n",
		"dataset with slash":  "collect:\n  dataset: ../x\n",
		"no patterns":         "collect:\n  patterns: []\n",
		"pattern with slash":  "collect:\n  patterns: [\"src/a.*\"]\n",
		"zero rows":           "generator:\n  rows: 0\n",
		"discover needs host": "discover: true\n",
		"bad yaml":            "name: [\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := loadManifest(writeTemp(t, tmp, name+".yaml", body))
			require.Error(t, err)
		})
	}

	_, err := loadManifest(tmp + "/missing.yaml")
	require.Error(t, err)
}

func TestCommandEntry(t *testing.T) {
	c := commandEntry{Command: "echo", Args: []string{"hello world", "a'b"}}
	require.Equal(t, `echo 'hello world' 'a'\''b'`, c.line())
	require.Equal(t, "echo", commandEntry{Command: "echo"}.line())

	w := c.with("x")
	require.Equal(t, []string{"hello world", "a'b", "x"}, w.Args)
	require.Len(t, c.Args, 2)

	require.Equal(t, 5*time.Second, commandEntry{}.perCommandTimeout(5*time.Second))
	require.Equal(t, 5*time.Second, commandEntry{Timeout: "soon"}.perCommandTimeout(5*time.Second))
	require.Equal(t, time.Minute, commandEntry{Timeout: "1m"}.perCommandTimeout(5*time.Second))
}
