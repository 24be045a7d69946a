package cmd

import (
	"errors"
	"fmt"
	"os"
	"path"
	"strings"
)

// loadManifest returns the built-in defaults when p is empty; otherwise it
// overlays the YAML file at p on the defaults and validates the result.
func loadManifest(p string) (*manifest, error) {
	mf := defaultManifest()
	if p == "" {
		return mf, nil
	}
	b, err := os.ReadFile(p)
	if err != nil {
		return nil, err
	}
	if err := yamlUnmarshal(b, mf); err != nil {
		return nil, err
	}
	if err := mf.validate(); err != nil {
		return nil, err
	}
	return mf, nil
}

func (mf *manifest) validate() error {
	if strings.TrimSpace(mf.Name) == "" {
		return errors.New("manifest.name is required")
	}
	if !path.IsAbs(mf.Workspace) {
		return fmt.Errorf("manifest.workspace must be an absolute path, got %q", mf.Workspace)
	}
	if strings.TrimSpace(mf.Repository.URL) == "" {
		return errors.New("manifest.repository.url is required")
	}
	if err := plainName("repository.dir", mf.Repository.Dir); err != nil {
		return err
	}
	if strings.TrimSpace(mf.Build.Command) == "" {
		return errors.New("manifest.build.command is required")
	}
	if err := plainName("generator.script", mf.Generator.Script); err != nil {
		return err
	}
	if strings.TrimSpace(mf.Generator.Run.Command) == "" {
		return errors.New("manifest.generator.run.command is required")
	}
	if mf.Generator.Rows <= 0 {
		return errors.New("manifest.generator.rows must be positive")
	}
	if err := plainName("collect.dataset", mf.Collect.Dataset); err != nil {
		return err
	}
	if len(mf.Collect.Patterns) == 0 {
		return errors.New("manifest.collect.patterns must list at least one glob")
	}
	for i, p := range mf.Collect.Patterns {
		if strings.TrimSpace(p) == "" || strings.Contains(p, "/") {
			return fmt.Errorf("manifest.collect.patterns[%d] must be a file glob without '/'", i)
		}
	}
	if mf.Discover && strings.TrimSpace(mf.SSHHost.IP) == "" {
		return errors.New("manifest.ssh_host.ip is required when discover is set")
	}
	return nil
}

// plainName rejects empty values and anything that could escape the workspace.
func plainName(field, v string) error {
	v = strings.TrimSpace(v)
	if v == "" {
		return fmt.Errorf("manifest.%s is required", field)
	}
	if strings.Contains(v, "/") || v == "." || v == ".." {
		return fmt.Errorf("manifest.%s must be a plain name, got %q", field, v)
	}
	return nil
}
