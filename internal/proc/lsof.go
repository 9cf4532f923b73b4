package proc

import (
	"bufio"
	"bytes"
	"fmt"
	"net"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/pranshuparmar/ports/pkg/model"
)

// ListConnections runs lsof over every internet socket. A failed run is
// treated as an empty result.
func ListConnections(r Runner, f Filter) []Socket {
	out, err := r.Output("lsof", "-i", "-n", "-P")
	if err != nil && len(out) == 0 {
		zap.S().Debugw("lsof failed", "error", err)
		return nil
	}
	return ParseLsof(out, f)
}

// ParseLsof parses the columnar output of `lsof -i -n -P`:
//
//	COMMAND PID USER FD TYPE DEVICE SIZE/OFF NODE NAME [(STATE)]
//
// The header and any line that does not parse are skipped.
func ParseLsof(out []byte, f Filter) []Socket {
	var sockets []Socket

	scanner := bufio.NewScanner(bytes.NewReader(out))
	scanner.Scan() // header
	for scanner.Scan() {
		s, err := parseLsofLine(scanner.Text())
		if err != nil {
			zap.S().Debugw("skipping lsof line", "error", err)
			continue
		}
		if s.matches(f) {
			sockets = append(sockets, s)
		}
	}
	return sockets
}

func parseLsofLine(line string) (Socket, error) {
	parts := strings.Fields(line)
	if len(parts) < 9 {
		return Socket{}, fmt.Errorf("short line: %d fields", len(parts))
	}

	pid, err := strconv.Atoi(parts[1])
	if err != nil {
		return Socket{}, fmt.Errorf("pid %q: %w", parts[1], err)
	}
	var proto model.Protocol
	switch parts[7] {
	case "TCP":
		proto = model.TCP
	case "UDP":
		proto = model.UDP
	default:
		return Socket{}, fmt.Errorf("protocol %q", parts[7])
	}
	ipv6 := parts[4] == "IPv6"

	name := parts[8]
	state := ""
	if len(parts) > 9 {
		state = strings.Trim(parts[9], "()")
	}

	local, remote, connected := strings.Cut(name, "->")
	s := Socket{
		Protocol: proto,
		PID:      pid,
		Command:  unescapeLsof(parts[0]),
		State:    state,
	}
	if s.LocalIP, s.LocalPort, err = parseLsofEndpoint(local, ipv6); err != nil {
		return Socket{}, err
	}
	if connected {
		if s.RemoteIP, s.RemotePort, err = parseLsofEndpoint(remote, ipv6); err != nil {
			return Socket{}, err
		}
	}

	if proto == model.TCP {
		s.Listening = state == "LISTEN"
	} else {
		s.Listening = !connected
	}
	return s, nil
}

func parseLsofEndpoint(endpoint string, ipv6 bool) (net.IP, uint16, error) {
	host, port, err := net.SplitHostPort(endpoint)
	if err != nil {
		return nil, 0, fmt.Errorf("endpoint %q: %w", endpoint, err)
	}
	p, err := strconv.ParseUint(port, 10, 16)
	if err != nil {
		return nil, 0, fmt.Errorf("endpoint %q: %w", endpoint, err)
	}
	if host == "*" {
		if ipv6 {
			return net.IPv6unspecified, uint16(p), nil
		}
		return net.IPv4zero, uint16(p), nil
	}
	ip := net.ParseIP(host)
	if ip == nil {
		return nil, 0, fmt.Errorf("endpoint %q: bad host", endpoint)
	}
	return ip, uint16(p), nil
}

// lsof escapes spaces in command names as \x20.
func unescapeLsof(s string) string {
	return strings.ReplaceAll(s, `\x20`, " ")
}
