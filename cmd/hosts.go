package cmd

import (
	"context"
	"fmt"
	"net"
	"strings"
)

// normalizeHost adds the default SSH port when h has none. IPv6 literals are
// bracketed.
func normalizeHost(h string) string {
	h = strings.TrimSpace(h)
	if h == "" {
		return ""
	}
	if _, _, err := net.SplitHostPort(h); err == nil {
		return h
	}
	return net.JoinHostPort(strings.Trim(h, "[]"), "22")
}

// splitHosts flattens comma separated entries, normalizes them, and drops
// blanks and duplicates while keeping order.
func splitHosts(entries []string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, e := range entries {
		for _, part := range strings.Split(e, ",") {
			h := normalizeHost(part)
			if h == "" {
				continue
			}
			if _, ok := seen[h]; ok {
				continue
			}
			seen[h] = struct{}{}
			out = append(out, h)
		}
	}
	return out
}

// resolveHosts picks the target hosts: --hosts, then manifest hosts, then
// discovery through the manifest's ssh_host leader.
func resolveHosts(ctx context.Context, tc *taskContext) ([]string, error) {
	if hosts := splitHosts(cfgHosts); len(hosts) > 0 {
		return hosts, nil
	}
	if hosts := splitHosts(tc.mf.Hosts); len(hosts) > 0 {
		return hosts, nil
	}
	if !tc.mf.Discover {
		return nil, errNoHosts
	}

	leaderAddr := normalizeHost(tc.mf.SSHHost.IP)
	leader, closeLeader, err := connectHost(leaderAddr, tc)
	if err != nil {
		return nil, fmt.Errorf("connect to leader %s: %w", leaderAddr, err)
	}
	defer closeLeader()

	raw, ips, err := discoverHosts(ctx, leader)
	if err != nil {
		return nil, fmt.Errorf("discover hosts on %s: %w", leaderAddr, err)
	}
	tc.report.setDiscovery(leaderAddr, raw, ips)
	tc.log.WithField("leader", leaderAddr).Infof("discovered %d hosts", len(ips))
	hosts := splitHosts(ips)
	if len(hosts) == 0 {
		return nil, errNoHosts
	}
	return hosts, nil
}
