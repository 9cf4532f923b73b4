package proc

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"

	"github.com/pranshuparmar/ports/pkg/model"
)

// Filter selects which sockets an enumeration returns.
type Filter int

const (
	FilterListening Filter = iota
	FilterEstablished
	FilterAll
)

func (f Filter) String() string {
	switch f {
	case FilterListening:
		return "listening"
	case FilterEstablished:
		return "established"
	}
	return "all"
}

// Kernel TCP state codes as they appear in the st column.
const (
	tcpEstablished = 0x01
	tcpListen      = 0x0A
)

var tcpStateNames = map[uint8]string{
	0x01: "ESTABLISHED",
	0x02: "SYN_SENT",
	0x03: "SYN_RECV",
	0x04: "FIN_WAIT1",
	0x05: "FIN_WAIT2",
	0x06: "TIME_WAIT",
	0x07: "CLOSE",
	0x08: "CLOSE_WAIT",
	0x09: "LAST_ACK",
	0x0A: "LISTEN",
	0x0B: "CLOSING",
}

// Socket is a raw socket tuple before it is joined to a process.
type Socket struct {
	Protocol   model.Protocol
	LocalIP    net.IP
	LocalPort  uint16
	RemoteIP   net.IP
	RemotePort uint16
	State      string
	Listening  bool

	// Inode is set by the kernel-table reader, PID and Command by the
	// snapshot-tool reader.
	Inode   uint64
	PID     int
	Command string
}

func (s Socket) LocalAddress() string {
	return net.JoinHostPort(s.LocalIP.String(), strconv.Itoa(int(s.LocalPort)))
}

func (s Socket) RemoteAddress() string {
	if s.RemoteIP == nil {
		return ""
	}
	return net.JoinHostPort(s.RemoteIP.String(), strconv.Itoa(int(s.RemotePort)))
}

func (s Socket) matches(f Filter) bool {
	switch f {
	case FilterListening:
		return s.Listening
	case FilterEstablished:
		if s.Protocol == model.UDP {
			return !s.Listening
		}
		return s.State == tcpStateNames[tcpEstablished]
	}
	return true
}

type kernelTable struct {
	name  string
	proto model.Protocol
}

var kernelTables = []kernelTable{
	{"tcp", model.TCP},
	{"tcp6", model.TCP},
	{"udp", model.UDP},
	{"udp6", model.UDP},
}

// ReadSocketTables reads the four kernel socket tables under <root>/net. A
// table that cannot be opened is skipped; an error is returned only when
// none of them could be read.
func ReadSocketTables(root string, f Filter) ([]Socket, error) {
	var (
		sockets []Socket
		errs    *multierror.Error
		read    int
	)
	for _, t := range kernelTables {
		path := filepath.Join(root, "net", t.name)
		file, err := os.Open(path)
		if err != nil {
			zap.S().Debugw("skipping socket table", "path", path, "error", err)
			errs = multierror.Append(errs, err)
			continue
		}
		sockets = append(sockets, ParseSocketTable(file, t.proto, f)...)
		file.Close()
		read++
	}
	if read == 0 {
		return nil, errs.ErrorOrNil()
	}
	return sockets, nil
}

// ParseSocketTable parses one kernel socket table. The header line is
// skipped and malformed lines are dropped one at a time.
func ParseSocketTable(r io.Reader, proto model.Protocol, f Filter) []Socket {
	var out []Socket

	scanner := bufio.NewScanner(r)
	scanner.Scan() // header
	for scanner.Scan() {
		s, err := parseSocketLine(scanner.Text(), proto)
		if err != nil {
			zap.S().Debugw("skipping socket line", "protocol", proto, "error", err)
			continue
		}
		if s.matches(f) {
			out = append(out, s)
		}
	}
	return out
}

func parseSocketLine(line string, proto model.Protocol) (Socket, error) {
	fields := strings.Fields(line)
	if len(fields) < 10 {
		return Socket{}, fmt.Errorf("short line: %d fields", len(fields))
	}

	localIP, localPort, err := decodeEndpoint(fields[1])
	if err != nil {
		return Socket{}, fmt.Errorf("local address: %w", err)
	}
	remoteIP, remotePort, err := decodeEndpoint(fields[2])
	if err != nil {
		return Socket{}, fmt.Errorf("remote address: %w", err)
	}
	state, err := strconv.ParseUint(fields[3], 16, 8)
	if err != nil {
		return Socket{}, fmt.Errorf("state %q: %w", fields[3], err)
	}
	inode, err := strconv.ParseUint(fields[9], 10, 64)
	if err != nil {
		return Socket{}, fmt.Errorf("inode %q: %w", fields[9], err)
	}

	s := Socket{
		Protocol:   proto,
		LocalIP:    localIP,
		LocalPort:  localPort,
		RemoteIP:   remoteIP,
		RemotePort: remotePort,
		Inode:      inode,
	}
	if proto == model.TCP {
		s.State = tcpStateNames[uint8(state)]
		s.Listening = state == tcpListen
	} else {
		// UDP has no connection state; an unconnected socket has a
		// wildcard peer.
		s.Listening = remoteIP.IsUnspecified() && remotePort == 0
	}
	if s.Listening {
		s.RemoteIP = nil
		s.RemotePort = 0
	}
	return s, nil
}

func decodeEndpoint(token string) (net.IP, uint16, error) {
	addr, port, ok := strings.Cut(token, ":")
	if !ok {
		return nil, 0, fmt.Errorf("missing port in %q", token)
	}
	ip, err := DecodeHexAddr(addr)
	if err != nil {
		return nil, 0, err
	}
	p, err := DecodeHexPort(port)
	if err != nil {
		return nil, 0, err
	}
	return ip, p, nil
}

// DecodeHexAddr decodes an address as the kernel prints it: 8 hex digits
// for IPv4 or 32 for IPv6, each 32-bit word in host (little-endian) order.
func DecodeHexAddr(token string) (net.IP, error) {
	if len(token) != 8 && len(token) != 32 {
		return nil, fmt.Errorf("address %q: unexpected length %d", token, len(token))
	}
	b, err := hex.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("address %q: %w", token, err)
	}
	for i := 0; i < len(b); i += 4 {
		b[i], b[i+1], b[i+2], b[i+3] = b[i+3], b[i+2], b[i+1], b[i]
	}
	if len(b) == net.IPv4len {
		return net.IPv4(b[0], b[1], b[2], b[3]), nil
	}
	return net.IP(b), nil
}

// DecodeHexPort parses the port half of an endpoint. Unlike the address it
// is printed in network order.
func DecodeHexPort(token string) (uint16, error) {
	p, err := strconv.ParseUint(token, 16, 16)
	if err != nil {
		return 0, fmt.Errorf("port %q: %w", token, err)
	}
	return uint16(p), nil
}

func parseIPOrZero(s string) net.IP {
	if ip := net.ParseIP(s); ip != nil {
		return ip
	}
	return net.IPv4zero
}
