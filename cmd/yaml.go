package cmd

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

func yamlUnmarshal(b []byte, out any) error {
	if err := yaml.Unmarshal(b, out); err != nil {
		return fmt.Errorf("yaml unmarshal: %w", err)
	}
	return nil
}

// UnmarshalYAML accepts "command" or "cmd" and only overwrites the fields
// present in the node, so a manifest can override just a timeout and keep the
// built-in command.
func (c *commandEntry) UnmarshalYAML(value *yaml.Node) error {
	var aux struct {
		Command string   `yaml:"command"`
		Cmd     string   `yaml:"cmd"`
		Args    []string `yaml:"args"`
		Timeout string   `yaml:"timeout"`
	}
	if err := value.Decode(&aux); err != nil {
		return err
	}
	if aux.Command == "" {
		aux.Command = aux.Cmd
	}
	if aux.Command != "" {
		c.Command = aux.Command
	}
	if aux.Args != nil {
		c.Args = aux.Args
	}
	if aux.Timeout != "" {
		c.Timeout = aux.Timeout
	}
	return nil
}
