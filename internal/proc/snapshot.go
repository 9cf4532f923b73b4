package proc

import (
	"github.com/pranshuparmar/ports/internal/launchd"
	"github.com/pranshuparmar/ports/pkg/model"
)

// Snapshot answers everything by running lsof, ps and launchctl.
type Snapshot struct {
	runner Runner
	table  *ProcessTable
}

func NewSnapshot(r Runner, table *ProcessTable) *Snapshot {
	return &Snapshot{runner: r, table: table}
}

func (s *Snapshot) Name() string { return "lsof" }

func (s *Snapshot) Sockets(f Filter) ([]model.PortRecord, error) {
	return correlate(ListConnections(s.runner, f), nil), nil
}

func (s *Snapshot) Process(pid int) (ProcessInfo, bool) { return s.table.Lookup(pid) }

func (s *Snapshot) Prewarm() { s.table.Refresh() }

func (s *Snapshot) RootPID() int { return 1 }

// ContainerMetadata has no equivalent without cgroups.
func (s *Snapshot) ContainerMetadata(int) (string, bool) { return "", false }

// Health needs per-process state that ps does not expose cheaply.
func (s *Snapshot) Health(int) []model.HealthWarning { return nil }

func (s *Snapshot) WorkingDir(pid int) (string, bool) { return LsofCwd(s.runner, pid) }

func (s *Snapshot) InitUnit(pid int) string { return launchd.Label(s.runner, pid) }
