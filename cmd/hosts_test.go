package cmd

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleEtcHosts = `127.0.0.1   localhost
::1         localhost ip6-localhost
# cluster
10.0.0.1    leader
10.0.0.2    worker-1 # inline comment
10.0.0.3    worker-2
10.0.0.2    worker-1-alias
not-an-ip   junk
127.0.1.1   self
`

func TestParseHostsIPs(t *testing.T) {
	ips := parseHostsIPs([]byte(sampleEtcHosts))
	require.Equal(t, []string{"127.0.0.1", "::1", "10.0.0.1", "10.0.0.2", "10.0.0.3", "127.0.1.1"}, ips)
	require.Equal(t, []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"}, withoutLoopback(ips))
}

func TestNormalizeAndSplitHosts(t *testing.T) {
	require.Equal(t, "10.0.0.1:22", normalizeHost(" 10.0.0.1 "))
	require.Equal(t, "10.0.0.1:2222", normalizeHost("10.0.0.1:2222"))
	require.Equal(t, "[fe80::1]:22", normalizeHost("fe80::1"))
	require.Equal(t, "", normalizeHost("  "))

	require.Equal(t,
		[]string{"a:22", "b:22", "c:2200"},
		splitHosts([]string{"a,b", " a:22 ", "c:2200,,"}))
}

func TestResolveHosts_Precedence(t *testing.T) {
	resetConfig()
	tc := newTestContext(t)
	tc.mf.Hosts = []string{"m1", "m2"}

	hosts, err := resolveHosts(context.Background(), tc)
	require.NoError(t, err)
	require.Equal(t, []string{"m1:22", "m2:22"}, hosts)

	cfgHosts = []string{"f1,f2"}
	t.Cleanup(func() { cfgHosts = nil })
	hosts, err = resolveHosts(context.Background(), tc)
	require.NoError(t, err)
	require.Equal(t, []string{"f1:22", "f2:22"}, hosts)
}

func TestResolveHosts_NoneConfigured(t *testing.T) {
	resetConfig()
	_, err := resolveHosts(context.Background(), newTestContext(t))
	require.ErrorIs(t, err, errNoHosts)
}

func TestResolveHosts_Discovery(t *testing.T) {
	resetConfig()
	f := installFakeRemote(t, func(host, cmd string) ([]byte, int, error) {
		return []byte(sampleEtcHosts), 0, nil
	})
	tc := newTestContext(t)
	tc.mf.Discover = true
	tc.mf.SSHHost = sshHost{IP: "10.0.0.1", User: "gen"}

	hosts, err := resolveHosts(context.Background(), tc)
	require.NoError(t, err)
	require.Equal(t, []string{"10.0.0.1:22", "10.0.0.2:22", "10.0.0.3:22"}, hosts)
	require.Equal(t, []string{"cat /etc/hosts"}, f.commands("10.0.0.1:22"))
	require.NotNil(t, tc.report.Discovery)
	require.Equal(t, "10.0.0.1:22", tc.report.Discovery.Leader)
}

func TestResolveHosts_DiscoveryOnlyLoopback(t *testing.T) {
	resetConfig()
	installFakeRemote(t, func(host, cmd string) ([]byte, int, error) {
		return []byte("127.0.0.1 localhost\n"), 0, nil
	})
	tc := newTestContext(t)
	tc.mf.Discover = true
	tc.mf.SSHHost = sshHost{IP: "10.0.0.1"}

	_, err := resolveHosts(context.Background(), tc)
	require.ErrorIs(t, err, errNoHosts)
}
