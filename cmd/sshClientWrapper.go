package cmd

import (
	"errors"

	"golang.org/x/crypto/ssh"
)

var errNilClient = errors.New("nil ssh client")

// sshClientWrapper adapts *ssh.Client to sessionClient. Every NewSession opens
// a fresh exec channel without a PTY, so detached processes are not tied to a
// terminal that goes away with the channel.
type sshClientWrapper struct {
	c *ssh.Client
}

func (w sshClientWrapper) NewSession() (session, error) {
	if w.c == nil {
		return nil, errNilClient
	}
	s, err := w.c.NewSession()
	if err != nil {
		return nil, err
	}
	return sshSessionWrapper{s}, nil
}
