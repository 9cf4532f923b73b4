package proc

import (
	"github.com/pranshuparmar/ports/pkg/model"
)

// Direct reads the kernel socket tables and per-process state from procfs.
type Direct struct {
	reg   *Registry
	root  string
	units UnitLookup
}

func NewDirect(reg *Registry, root string, units UnitLookup) *Direct {
	return &Direct{reg: reg, root: root, units: units}
}

func (d *Direct) Name() string { return "procfs" }

func (d *Direct) Sockets(f Filter) ([]model.PortRecord, error) {
	sockets, err := ReadSocketTables(d.root, f)
	if err != nil {
		return nil, err
	}
	return correlate(sockets, d.reg.SocketOwners()), nil
}

func (d *Direct) Process(pid int) (ProcessInfo, bool) { return d.reg.Process(pid) }

// Prewarm is a no-op, every read goes straight to procfs.
func (d *Direct) Prewarm() {}

func (d *Direct) RootPID() int { return 1 }

func (d *Direct) ContainerMetadata(pid int) (string, bool) { return d.reg.Cgroup(pid) }

func (d *Direct) Health(pid int) []model.HealthWarning { return d.reg.Health(pid) }

func (d *Direct) WorkingDir(pid int) (string, bool) { return d.reg.Cwd(pid) }

func (d *Direct) InitUnit(pid int) string {
	if cgroup, ok := d.reg.Cgroup(pid); ok {
		if unit := SystemdUnit(cgroup); unit != "" {
			return unit
		}
	}
	if d.units == nil {
		return ""
	}
	return d.units.UnitForPID(pid)
}
