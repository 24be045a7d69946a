// Package sshserv is a small in-process SSH server for tests and local
// experiments. It accepts any user without authentication and answers every
// exec request through a Handler, replying with the handler's output and exit
// status.
package sshserv

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"net"
	"os/exec"
	"sync"
	"time"

	"golang.org/x/crypto/ssh"
)

// Handler answers one exec request.
type Handler func(user, command string) (output string, exitStatus uint32)

// Exec is one command received by the server.
type Exec struct {
	User    string
	Command string
}

// Server is a running test SSH server.
type Server struct {
	ln      net.Listener
	handler Handler
	stopCh  chan struct{}
	done    chan struct{}

	mu    sync.Mutex
	execs []Exec
}

// Start listens on listenAddr (e.g. 127.0.0.1:0) and serves until Stop.
func Start(listenAddr string, h Handler) (*Server, error) {
	if h == nil {
		return nil, errors.New("sshserv: nil handler")
	}
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}
	signer, err := ssh.NewSignerFromKey(priv)
	if err != nil {
		return nil, err
	}
	cfg := &ssh.ServerConfig{NoClientAuth: true}
	cfg.AddHostKey(signer)

	ln, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return nil, err
	}
	s := &Server{
		ln:      ln,
		handler: h,
		stopCh:  make(chan struct{}),
		done:    make(chan struct{}),
	}
	go s.serve(cfg)
	return s, nil
}

// Addr is the address the server listens on.
func (s *Server) Addr() string { return s.ln.Addr().String() }

// Commands returns every exec request received so far, in arrival order.
func (s *Server) Commands() []Exec {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Exec(nil), s.execs...)
}

// Stop closes the listener and waits for the accept loop to exit.
func (s *Server) Stop() {
	close(s.stopCh)
	_ = s.ln.Close()
	<-s.done
}

func (s *Server) serve(cfg *ssh.ServerConfig) {
	defer close(s.done)
	for {
		if tl, ok := s.ln.(*net.TCPListener); ok {
			_ = tl.SetDeadline(time.Now().Add(500 * time.Millisecond))
		}
		conn, err := s.ln.Accept()
		select {
		case <-s.stopCh:
			if conn != nil {
				_ = conn.Close()
			}
			return
		default:
		}
		if err != nil {
			continue
		}
		go s.handleConn(conn, cfg)
	}
}

func (s *Server) handleConn(raw net.Conn, cfg *ssh.ServerConfig) {
	sc, chans, reqs, err := ssh.NewServerConn(raw, cfg)
	if err != nil {
		_ = raw.Close()
		return
	}
	defer sc.Close()
	go ssh.DiscardRequests(reqs)
	for ch := range chans {
		if ch.ChannelType() != "session" {
			_ = ch.Reject(ssh.UnknownChannelType, "only session channels are supported")
			continue
		}
		c, in, err := ch.Accept()
		if err != nil {
			continue
		}
		go s.handleSession(sc.User(), c, in)
	}
}

func (s *Server) handleSession(user string, ch ssh.Channel, in <-chan *ssh.Request) {
	defer ch.Close()
	for req := range in {
		if req.Type != "exec" {
			_ = req.Reply(false, nil)
			continue
		}
		var payload struct{ Command string }
		if err := ssh.Unmarshal(req.Payload, &payload); err != nil {
			_ = req.Reply(false, nil)
			continue
		}
		_ = req.Reply(true, nil)

		s.mu.Lock()
		s.execs = append(s.execs, Exec{User: user, Command: payload.Command})
		s.mu.Unlock()

		out, status := s.handler(user, payload.Command)
		_, _ = ch.Write([]byte(out))
		_, _ = ch.SendRequest("exit-status", false, ssh.Marshal(struct{ Status uint32 }{status}))
		return
	}
}

// Reply returns a Handler that answers every command with out and status.
func Reply(out string, status uint32) Handler {
	return func(string, string) (string, uint32) { return out, status }
}

// LocalShell runs each command with sh -c on the local machine.
func LocalShell(_ string, command string) (string, uint32) {
	out, err := exec.Command("sh", "-c", command).CombinedOutput()
	if err == nil {
		return string(out), 0
	}
	var ee *exec.ExitError
	if errors.As(err, &ee) && ee.ExitCode() >= 0 {
		return string(out), uint32(ee.ExitCode())
	}
	return string(out) + err.Error(), 127
}
