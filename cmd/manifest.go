package cmd

import (
	"path"
	"strconv"
)

// manifest describes where the generator lives on the remote hosts, how to
// build and launch it, and where its output goes. Every field has a built-in
// default (see defaultManifest), so running without a manifest targets the
// cmt-dbgen layout under /data/mdindex/yilu.
type manifest struct {
	Name        string        `yaml:"name"`
	Description string        `yaml:"description"`
	SSHHost     sshHost       `yaml:"ssh_host,omitempty"`
	Discover    bool          `yaml:"discover,omitempty"`
	Hosts       []string      `yaml:"hosts,omitempty"`
	Workspace   string        `yaml:"workspace"`
	Repository  repository    `yaml:"repository"`
	Build       commandEntry  `yaml:"build"`
	Generator   generatorSpec `yaml:"generator"`
	Collect     collectSpec   `yaml:"collect"`
}

// sshHost is the leader queried for /etc/hosts when discover is set. Its user
// is also the default SSH user when --user is not given.
type sshHost struct {
	IP   string `yaml:"ip"`
	User string `yaml:"user"`
}

type repository struct {
	URL string `yaml:"url"`
	// Dir is the checkout directory name inside the workspace.
	Dir string `yaml:"dir"`
}

// generatorSpec describes the launcher script and the generator command line
//
//	<run> <output_dir> <scale> <counter> <rows>
type generatorSpec struct {
	Script    string       `yaml:"script"`
	WorkDir   string       `yaml:"workdir"`
	Run       commandEntry `yaml:"run"`
	OutputDir string       `yaml:"output_dir"`
	Scale     int64        `yaml:"scale"`
	Rows      int64        `yaml:"rows"`
	// Cleanup is the glob removed in the checkout before a new script is written.
	Cleanup string `yaml:"cleanup"`
	// Process is matched against running command lines by the wait task.
	Process string `yaml:"process"`
}

type collectSpec struct {
	// Dataset is the destination directory name inside the workspace.
	Dataset  string   `yaml:"dataset"`
	Patterns []string `yaml:"patterns"`
	// Cleanup is the glob removed from the generator workdir after moving.
	Cleanup string `yaml:"cleanup"`
}

func defaultManifest() *manifest {
	return &manifest{
		Name:        "cmt-dbgen",
		Description: "Provision and run the CMT synthetic data generator",
		Workspace:   "/data/mdindex/yilu",
		Repository: repository{
			URL: "https://github.com/luyi0619/cmt-dbgen.git",
			Dir: "cmt-dbgen",
		},
		Build: commandEntry{Command: "javac", Args: []string{"src/dataGenerator.java"}},
		Generator: generatorSpec{
			Script:    "data_gen.sh",
			WorkDir:   "src",
			Run:       commandEntry{Command: "java", Args: []string{"dataGenerator"}},
			OutputDir: "../dist",
			Scale:     10,
			Rows:      100000000,
			Cleanup:   "*txt*",
			Process:   "dataGenerator",
		},
		Collect: collectSpec{
			Dataset: "cmt100000000",
			Patterns: []string{
				"mapmatch_history.txt.*",
				"mapmatch_history_latest.txt.*",
				"sf_datasets.txt.9.*",
			},
			Cleanup: "*txt*",
		},
	}
}

func (mf *manifest) checkoutDir() string {
	return path.Join(mf.Workspace, mf.Repository.Dir)
}

func (mf *manifest) scriptPath() string {
	return path.Join(mf.checkoutDir(), mf.Generator.Script)
}

// sourceDir is where the generator runs and writes its files.
func (mf *manifest) sourceDir() string {
	return path.Join(mf.checkoutDir(), mf.Generator.WorkDir)
}

func (mf *manifest) datasetDir() string {
	return path.Join(mf.Workspace, mf.Collect.Dataset)
}

// generatorLine is the generator invocation for one counter value.
func (mf *manifest) generatorLine(counter int64) string {
	g := mf.Generator
	return g.Run.with(
		g.OutputDir,
		strconv.FormatInt(g.Scale, 10),
		strconv.FormatInt(counter, 10),
		strconv.FormatInt(g.Rows, 10),
	).line()
}

// launcherScript is the body of the script written by script-gen.
func (mf *manifest) launcherScript(counter int64) string {
	return "#!/bin/bash\n" +
		"cd " + shellQuote(mf.sourceDir()) + "\n" +
		mf.generatorLine(counter) + "\n"
}
