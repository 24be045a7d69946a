package cmd

// session runs one command and is then closed.
type session interface {
	CombinedOutput(cmd string) ([]byte, error)
	Close() error
}

// sessionClient hands out command sessions on one host connection.
type sessionClient interface {
	NewSession() (session, error)
}

// hostClient tags a sessionClient with the address it is connected to so
// command results and logs can be attributed to a host.
type hostClient struct {
	addr string
	sessionClient
}

// Addr is the host:port this client talks to.
func (h hostClient) Addr() string { return h.addr }
