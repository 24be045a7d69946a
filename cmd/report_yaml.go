package cmd

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// yamlReport is written to --out after a run: metadata, discovery, and per
// task, per host results with every remote step.
type yamlReport struct {
	RunID       string         `yaml:"run_id"`
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Generated   string         `yaml:"generated"`
	Hosts       []string       `yaml:"hosts,omitempty"`
	Discovery   *yamlDiscovery `yaml:"discovery,omitempty"`
	Tasks       []yamlTask     `yaml:"tasks,omitempty"`

	mu sync.Mutex
}

type yamlDiscovery struct {
	Leader          string   `yaml:"leader"`
	HostsContent    string   `yaml:"hosts_content,omitempty"`
	DiscoveredHosts []string `yaml:"discovered_hosts"`
}

type yamlTask struct {
	Task   string        `yaml:"task"`
	Mode   string        `yaml:"mode"`
	Status string        `yaml:"status"`
	Error  string        `yaml:"error,omitempty"`
	Hosts  []yamlHostRun `yaml:"hosts,omitempty"`
}

type yamlHostRun struct {
	Host   string     `yaml:"host"`
	Status string     `yaml:"status"`
	Error  string     `yaml:"error,omitempty"`
	Steps  []yamlStep `yaml:"steps,omitempty"`
}

// yamlStep is one remote command. Ignored marks best-effort commands whose
// failure did not stop the task.
type yamlStep struct {
	Command  string `yaml:"command"`
	ExitCode int    `yaml:"exit_code"`
	Ignored  bool   `yaml:"ignored,omitempty"`
	Error    string `yaml:"error,omitempty"`
	Output   string `yaml:"output,omitempty"`
}

const (
	statusOK      = "ok"
	statusFailed  = "failed"
	statusSkipped = "skipped"
)

func newYAMLReport(runID string, mf *manifest) *yamlReport {
	return &yamlReport{
		RunID:       runID,
		Name:        mf.Name,
		Description: mf.Description,
		Generated:   time.Now().Format(time.RFC3339),
	}
}

func (r *yamlReport) setHosts(hosts []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Hosts = append([]string(nil), hosts...)
}

func (r *yamlReport) setDiscovery(leader string, hostsContent []byte, hosts []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Discovery = &yamlDiscovery{
		Leader:          leader,
		HostsContent:    string(hostsContent),
		DiscoveredHosts: append([]string{}, hosts...),
	}
}

// task finds or creates the entry for name. Callers hold r.mu.
func (r *yamlReport) task(name, mode string) *yamlTask {
	for i := range r.Tasks {
		if r.Tasks[i].Task == name {
			return &r.Tasks[i]
		}
	}
	r.Tasks = append(r.Tasks, yamlTask{Task: name, Mode: mode})
	return &r.Tasks[len(r.Tasks)-1]
}

// addHostRun appends one host's outcome beneath the task.
func (r *yamlReport) addHostRun(name, mode, host string, steps []yamlStep, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	run := yamlHostRun{Host: host, Status: statusOK, Steps: steps}
	if err != nil {
		run.Status = statusFailed
		run.Error = err.Error()
	}
	t := r.task(name, mode)
	t.Hosts = append(t.Hosts, run)
}

// finishTask sets the task's overall status.
func (r *yamlReport) finishTask(name, mode, status string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t := r.task(name, mode)
	t.Status = status
	if err != nil {
		t.Error = err.Error()
	}
}

// writeYAMLReport serializes the report with two-space indentation.
func writeYAMLReport(w io.Writer, r *yamlReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		_ = enc.Close()
		return err
	}
	_ = enc.Close()
	bw := bufio.NewWriter(w)
	if _, err := bw.Write(buf.Bytes()); err != nil {
		return err
	}
	return bw.Flush()
}

// writeYAMLReportFile creates p (and its directory) and writes the report.
func writeYAMLReportFile(p string, r *yamlReport) error {
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.Create(p)
	if err != nil {
		return err
	}
	if err := writeYAMLReport(f, r); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
