package cmd

import (
	"fmt"
	"net"
	"os"
	"time"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
	"golang.org/x/crypto/ssh/knownhosts"
)

// sshOptions carries everything needed to authenticate to a host. The same
// options are used for every host in a run.
type sshOptions struct {
	User           string
	Password       string
	KeyPath        string
	Passphrase     string
	KnownHostsPath string
	StrictHost     bool
	DialTimeout    time.Duration
}

// currentSSHOptions snapshots the flag/env configuration.
func currentSSHOptions() sshOptions {
	return sshOptions{
		User:           cfgUser,
		Password:       cfgPassword,
		KeyPath:        cfgKeyPath,
		Passphrase:     cfgPassphrase,
		KnownHostsPath: cfgKnownHosts,
		StrictHost:     cfgStrictHost,
		DialTimeout:    cfgConnTimeout,
	}
}

func (o sshOptions) authMethods() ([]ssh.AuthMethod, error) {
	var auths []ssh.AuthMethod
	if o.KeyPath != "" {
		signer, err := loadSigner(o.KeyPath, o.Passphrase)
		if err != nil {
			return nil, fmt.Errorf("load key: %w", err)
		}
		auths = append(auths, ssh.PublicKeys(signer))
	}
	if o.Password != "" {
		auths = append(auths, ssh.Password(o.Password))
	}
	if sock := os.Getenv("SSH_AUTH_SOCK"); sock != "" {
		if conn, err := net.Dial("unix", sock); err == nil {
			auths = append(auths, ssh.PublicKeysCallback(agent.NewClient(conn).Signers))
		}
	}
	return auths, nil
}

func (o sshOptions) hostKeyCallback() (ssh.HostKeyCallback, error) {
	if !o.StrictHost {
		return ssh.InsecureIgnoreHostKey(), nil
	}
	if _, err := os.Stat(o.KnownHostsPath); err != nil {
		return nil, fmt.Errorf("known_hosts file not found at %s and strict-host-key is enabled", o.KnownHostsPath)
	}
	cb, err := knownhosts.New(o.KnownHostsPath)
	if err != nil {
		return nil, fmt.Errorf("known_hosts: %w", err)
	}
	return cb, nil
}

// dialSSH connects to target (host:port) with opts.
func dialSSH(target string, opts sshOptions) (*ssh.Client, error) {
	auths, err := opts.authMethods()
	if err != nil {
		return nil, err
	}
	hostKeyCB, err := opts.hostKeyCallback()
	if err != nil {
		return nil, err
	}

	cfg := &ssh.ClientConfig{
		User:            opts.User,
		Auth:            auths,
		HostKeyCallback: hostKeyCB,
		Timeout:         opts.DialTimeout,
	}

	d := net.Dialer{Timeout: opts.DialTimeout}
	conn, err := d.Dial("tcp", target)
	if err != nil {
		return nil, err
	}
	c, chans, reqs, err := ssh.NewClientConn(conn, target, cfg)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	return ssh.NewClient(c, chans, reqs), nil
}
