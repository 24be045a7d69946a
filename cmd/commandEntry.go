package cmd

import (
	"strings"
	"time"
)

// commandEntry is a command plus arguments as written in the manifest.
// "cmd" is accepted as an alias for "command" when decoding.
type commandEntry struct {
	Command string   `yaml:"command"`
	Args    []string `yaml:"args,omitempty"`
	// Optional timeout like "10m"; overrides --cmd-timeout for this command.
	Timeout string `yaml:"timeout,omitempty"`
}

// line renders the command with each argument shell-quoted.
func (c commandEntry) line() string {
	if len(c.Args) == 0 {
		return c.Command
	}
	quoted := make([]string, 0, len(c.Args))
	for _, a := range c.Args {
		quoted = append(quoted, shellQuote(a))
	}
	return strings.TrimSpace(c.Command + " " + strings.Join(quoted, " "))
}

// with returns a copy whose argument list has extra appended.
func (c commandEntry) with(extra ...string) commandEntry {
	args := make([]string, 0, len(c.Args)+len(extra))
	args = append(args, c.Args...)
	c.Args = append(args, extra...)
	return c
}

func (c commandEntry) perCommandTimeout(defaultTimeout time.Duration) time.Duration {
	if c.Timeout == "" {
		return defaultTimeout
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return defaultTimeout
	}
	return d
}
