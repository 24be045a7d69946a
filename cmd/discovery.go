package cmd

import (
	"bufio"
	"bytes"
	"context"
	"net"
	"strings"
)

// parseHostsIPs returns a deduplicated, in-order list of IPs from /etc/hosts
// content: the first field of every non-comment line that parses as an IP.
func parseHostsIPs(b []byte) []string {
	seen := make(map[string]struct{})
	var out []string
	s := bufio.NewScanner(bytes.NewReader(b))
	for s.Scan() {
		line := s.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		ip := fields[0]
		if net.ParseIP(ip) == nil {
			continue
		}
		if _, ok := seen[ip]; ok {
			continue
		}
		seen[ip] = struct{}{}
		out = append(out, ip)
	}
	return out
}

// withoutLoopback drops 127.0.0.0/8 and ::1.
func withoutLoopback(ips []string) []string {
	out := make([]string, 0, len(ips))
	for _, ip := range ips {
		if v := net.ParseIP(ip); v != nil && v.IsLoopback() {
			continue
		}
		out = append(out, ip)
	}
	return out
}

// discoverHosts reads /etc/hosts on the leader and returns the raw content and
// every non-loopback IP listed in it.
func discoverHosts(ctx context.Context, leader *remoteHost) (raw []byte, ips []string, err error) {
	out, err := leader.run(ctx, "cat /etc/hosts")
	if err != nil {
		return out, nil, err
	}
	return out, withoutLoopback(parseHostsIPs(out)), nil
}
