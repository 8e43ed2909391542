package netutil

import (
	"context"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func listen(t *testing.T) (string, int) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	host, portStr, err := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)
	return host, port
}

func TestIsPortOpen(t *testing.T) {
	host, port := listen(t)
	assert.True(t, IsPortOpen(host, port, time.Second))
	assert.False(t, IsPortOpen("127.0.0.1", 1, 200*time.Millisecond))
}

func TestScanPorts(t *testing.T) {
	host, port := listen(t)

	open, err := ScanPorts(host, port, port, time.Second)
	require.NoError(t, err)
	assert.Equal(t, []int{port}, open)

	_, err = ScanPorts(host, 100, 1, time.Second)
	assert.Error(t, err)
	_, err = ScanPorts(host, 0, 10, time.Second)
	assert.Error(t, err)
}

func TestPingTimePattern(t *testing.T) {
	output := `PING 127.0.0.1 (127.0.0.1) 56(84) bytes of data.
64 bytes from 127.0.0.1: icmp_seq=1 ttl=64 time=0.045 ms
64 bytes from 127.0.0.1: icmp_seq=2 ttl=64 time=0.051 ms`

	matches := pingTimePattern.FindAllStringSubmatch(output, -1)
	require.Len(t, matches, 2)
	assert.Equal(t, "0.045", matches[0][1])
	assert.Equal(t, "0.051", matches[1][1])
}

func TestPingTimePatternWindows(t *testing.T) {
	output := "Reply from 127.0.0.1: bytes=32 time<1ms TTL=128"
	matches := pingTimePattern.FindAllStringSubmatch(output, -1)
	require.Len(t, matches, 1)
	assert.Equal(t, "1", matches[0][1])
}

func TestResolve(t *testing.T) {
	addrs, err := Resolve(context.Background(), "localhost")
	require.NoError(t, err)
	assert.NotEmpty(t, addrs)

	_, err = Resolve(context.Background(), "definitely-not-a-host.invalid")
	assert.Error(t, err)
}

func TestHostname(t *testing.T) {
	name, err := Hostname()
	require.NoError(t, err)
	assert.NotEmpty(t, name)
}

func TestLocalIP(t *testing.T) {
	ip, err := LocalIP()
	if err != nil {
		t.Skip("no outbound route available")
	}
	assert.NotNil(t, net.ParseIP(ip))
}

func TestInterfaces(t *testing.T) {
	infos, err := Interfaces()
	require.NoError(t, err)
	assert.NotEmpty(t, infos)

	var foundLoopback bool
	for _, info := range infos {
		if info.Name == "lo" || info.Name == "lo0" {
			foundLoopback = true
		}
	}
	assert.True(t, foundLoopback, "expected a loopback interface")
}
