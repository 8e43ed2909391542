// Package netutil answers small network questions: is a port open, does a
// host respond to ping, what is my address. Ping shells out to the system
// binary since raw ICMP needs privileges.
package netutil

import (
	"context"
	"fmt"
	"net"
	"os"
	"regexp"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/milkywaygod2/sysutil/internal/errors"
	"github.com/milkywaygod2/sysutil/internal/shellexec"
)

// DefaultProbeTimeout bounds a single connection attempt.
const DefaultProbeTimeout = 3 * time.Second

// IsPortOpen reports whether a TCP connection to host:port succeeds within
// the timeout.
func IsPortOpen(host string, port int, timeout time.Duration) bool {
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	conn, err := net.DialTimeout("tcp", net.JoinHostPort(host, strconv.Itoa(port)), timeout)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// ScanPorts probes a port range on a host and returns the open ports.
func ScanPorts(host string, from, to int, timeout time.Duration) ([]int, error) {
	if from < 1 || to > 65535 || from > to {
		return nil, errors.NewValidationError(errors.ErrCodeInvalidArgument,
			fmt.Sprintf("invalid port range %d-%d", from, to))
	}

	var open []int
	for port := from; port <= to; port++ {
		if IsPortOpen(host, port, timeout) {
			open = append(open, port)
		}
	}
	return open, nil
}

var pingTimePattern = regexp.MustCompile(`(?:time|시간)[=<]([0-9.]+)\s*ms`)

// PingResult summarizes a ping exchange with a host.
type PingResult struct {
	Host       string
	Reachable  bool
	AvgLatency time.Duration
}

// Ping runs the system ping binary against a host and parses the reply
// times. count bounds the number of echo requests (default 4).
func Ping(ctx context.Context, host string, count int) (*PingResult, error) {
	if count <= 0 {
		count = 4
	}

	countFlag := "-c"
	if runtime.GOOS == "windows" {
		countFlag = "-n"
	}

	result, err := shellexec.Run(ctx, fmt.Sprintf("ping %s %d %s", countFlag, count, host), shellexec.Options{})
	if err != nil {
		return nil, err
	}

	ping := &PingResult{Host: host, Reachable: result.Success()}
	if !ping.Reachable {
		return ping, nil
	}

	matches := pingTimePattern.FindAllStringSubmatch(result.Stdout, -1)
	if len(matches) > 0 {
		var total float64
		for _, m := range matches {
			ms, err := strconv.ParseFloat(m[1], 64)
			if err != nil {
				continue
			}
			total += ms
		}
		ping.AvgLatency = time.Duration(total / float64(len(matches)) * float64(time.Millisecond))
	}
	return ping, nil
}

// LocalIP returns the machine's outbound IPv4 address, discovered by
// opening a UDP socket toward a public address. No packet is sent.
func LocalIP() (string, error) {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return "", errors.NewNetworkError(errors.ErrCodeValidationFailed,
			"failed to determine local address", err)
	}
	defer conn.Close()

	addr, ok := conn.LocalAddr().(*net.UDPAddr)
	if !ok {
		return "", errors.NewNetworkError(errors.ErrCodeValidationFailed,
			"unexpected local address type", nil)
	}
	return addr.IP.String(), nil
}

// Hostname returns the machine's hostname.
func Hostname() (string, error) {
	name, err := os.Hostname()
	if err != nil {
		return "", errors.NewNetworkError(errors.ErrCodeValidationFailed,
			"failed to read hostname", err)
	}
	return name, nil
}

// Resolve returns the IP addresses a hostname resolves to.
func Resolve(ctx context.Context, hostname string) ([]string, error) {
	addrs, err := net.DefaultResolver.LookupHost(ctx, hostname)
	if err != nil {
		return nil, errors.NewNetworkError(errors.ErrCodeValidationFailed,
			"failed to resolve "+hostname, err)
	}
	return addrs, nil
}

// ReverseLookup returns the hostnames an IP address maps back to.
func ReverseLookup(ctx context.Context, ip string) ([]string, error) {
	names, err := net.DefaultResolver.LookupAddr(ctx, ip)
	if err != nil {
		return nil, errors.NewNetworkError(errors.ErrCodeValidationFailed,
			"reverse lookup failed for "+ip, err)
	}
	for i, name := range names {
		names[i] = strings.TrimSuffix(name, ".")
	}
	return names, nil
}

// HasInternet reports whether a well-known public endpoint accepts a TCP
// connection.
func HasInternet(timeout time.Duration) bool {
	return IsPortOpen("8.8.8.8", 53, timeout)
}

// Interface describes one network interface and its addresses.
type Interface struct {
	Name      string
	MAC       string
	Addresses []string
	Up        bool
}

// Interfaces enumerates the machine's network interfaces.
func Interfaces() ([]Interface, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, errors.NewNetworkError(errors.ErrCodeValidationFailed,
			"failed to list interfaces", err)
	}

	infos := make([]Interface, 0, len(ifaces))
	for _, iface := range ifaces {
		info := Interface{
			Name: iface.Name,
			MAC:  iface.HardwareAddr.String(),
			Up:   iface.Flags&net.FlagUp != 0,
		}
		if addrs, err := iface.Addrs(); err == nil {
			for _, addr := range addrs {
				info.Addresses = append(info.Addresses, addr.String())
			}
		}
		infos = append(infos, info)
	}
	return infos, nil
}
