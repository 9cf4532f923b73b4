package proc

import (
	"syscall"

	gnet "github.com/shirou/gopsutil/v3/net"
	gprocess "github.com/shirou/gopsutil/v3/process"
	"go.uber.org/zap"

	"github.com/pranshuparmar/ports/pkg/model"
)

// Fallback lists listening sockets through gopsutil when neither procfs nor
// the snapshot tools are available. Established connections are not
// offered.
type Fallback struct{}

func NewFallback() *Fallback { return &Fallback{} }

func (Fallback) Name() string { return "fallback" }

func (Fallback) Sockets(f Filter) ([]model.PortRecord, error) {
	if f != FilterListening {
		return nil, ErrUnsupported
	}
	conns, err := gnet.Connections("inet")
	if err != nil {
		return nil, err
	}

	names := make(map[int32]string)
	var records []model.PortRecord
	for _, c := range conns {
		if c.Pid == 0 {
			continue
		}
		var proto model.Protocol
		switch c.Type {
		case syscall.SOCK_STREAM:
			if c.Status != "LISTEN" {
				continue
			}
			proto = model.TCP
		case syscall.SOCK_DGRAM:
			if c.Raddr.IP != "" || c.Raddr.Port != 0 {
				continue
			}
			proto = model.UDP
		default:
			continue
		}

		name, ok := names[c.Pid]
		if !ok {
			if p, err := gprocess.NewProcess(c.Pid); err == nil {
				name, _ = p.Name()
			}
			names[c.Pid] = name
		}
		s := Socket{Protocol: proto, LocalPort: uint16(c.Laddr.Port), PID: int(c.Pid), Command: name}
		s.LocalIP = parseIPOrZero(c.Laddr.IP)
		records = append(records, correlate([]Socket{s}, nil)...)
	}
	return records, nil
}

func (Fallback) Process(pid int) (ProcessInfo, bool) {
	p, err := gprocess.NewProcess(int32(pid))
	if err != nil {
		return ProcessInfo{}, false
	}
	name, err := p.Name()
	if err != nil {
		zap.S().Debugw("cannot read process name", "pid", pid, "error", err)
		return ProcessInfo{}, false
	}
	ppid, _ := p.Ppid()
	return ProcessInfo{PID: pid, PPID: int(ppid), Name: name}, true
}

func (Fallback) Prewarm() {}

func (Fallback) RootPID() int { return 1 }

func (Fallback) ContainerMetadata(int) (string, bool) { return "", false }

func (Fallback) Health(pid int) []model.HealthWarning {
	p, err := gprocess.NewProcess(int32(pid))
	if err != nil {
		return nil
	}
	status, err := p.Status()
	if err != nil {
		return nil
	}
	for _, s := range status {
		if s == gprocess.Zombie {
			return []model.HealthWarning{model.WarningZombie}
		}
	}
	return nil
}

func (Fallback) WorkingDir(pid int) (string, bool) {
	p, err := gprocess.NewProcess(int32(pid))
	if err != nil {
		return "", false
	}
	cwd, err := p.Cwd()
	if err != nil || cwd == "" {
		return "", false
	}
	return cwd, true
}

func (Fallback) InitUnit(int) string { return "" }
