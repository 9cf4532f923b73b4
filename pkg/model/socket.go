package model

import (
	"fmt"
	"strings"
)

// Protocol is the transport of a socket binding.
type Protocol string

const (
	TCP Protocol = "TCP"
	UDP Protocol = "UDP"
)

// ParseProtocol accepts "tcp"/"udp" in any case.
func ParseProtocol(s string) (Protocol, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TCP":
		return TCP, nil
	case "UDP":
		return UDP, nil
	}
	return "", fmt.Errorf("unknown protocol %q", s)
}

// PortRecord is one socket binding joined to its owning process.
type PortRecord struct {
	Port          uint16   `json:"port"`
	Protocol      Protocol `json:"protocol"`
	PID           int      `json:"pid"`
	ProcessName   string   `json:"process_name"`
	Address       string   `json:"address"`
	RemoteAddress string   `json:"remote_address,omitempty"`

	// Enrichment, filled after enumeration.
	Container   string `json:"container,omitempty"`
	ServiceName string `json:"service_name,omitempty"`
}

// RecordKey is the structural identity of a PortRecord. Enrichment fields do
// not participate.
type RecordKey struct {
	Port          uint16
	Protocol      Protocol
	PID           int
	Address       string
	RemoteAddress string
}

func (r PortRecord) Key() RecordKey {
	return RecordKey{
		Port:          r.Port,
		Protocol:      r.Protocol,
		PID:           r.PID,
		Address:       r.Address,
		RemoteAddress: r.RemoteAddress,
	}
}

// DisplayName prefers the container name when one is known.
func (r PortRecord) DisplayName() string {
	if r.Container != "" {
		return r.Container
	}
	return r.ProcessName
}

func (r PortRecord) String() string {
	if r.RemoteAddress != "" {
		return fmt.Sprintf("%s %s -> %s %s (pid %d)", r.Protocol, r.Address, r.RemoteAddress, r.ProcessName, r.PID)
	}
	return fmt.Sprintf("%s %s %s (pid %d)", r.Protocol, r.Address, r.ProcessName, r.PID)
}
