package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	flag "github.com/spf13/pflag"

	srv "cmtgen/tools/sshserv"
)

// ssh_test_server runs commands it receives in a local shell, so cmtgen can be
// pointed at 127.0.0.1 without a real SSH daemon.
func main() {
	addr := flag.String("listen", "127.0.0.1:20222", "listen address")
	flag.Parse()

	s, err := srv.Start(*addr, srv.LocalShell)
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "failed to start test ssh server:", err)
		os.Exit(1)
	}
	_, _ = fmt.Fprintln(os.Stderr, "test ssh server listening on", s.Addr())
	defer s.Stop()
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
}
