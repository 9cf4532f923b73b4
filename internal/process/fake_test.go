package process

import (
	"sync/atomic"

	"github.com/pranshuparmar/ports/internal/proc"
	"github.com/pranshuparmar/ports/pkg/model"
)

type fakePlatform struct {
	procs    map[int]proc.ProcessInfo
	cgroups  map[int]string
	health   map[int][]model.HealthWarning
	cwd      map[int]string
	units    map[int]string
	prewarms atomic.Int32
}

func newFakePlatform(procs ...proc.ProcessInfo) *fakePlatform {
	f := &fakePlatform{
		procs:   map[int]proc.ProcessInfo{},
		cgroups: map[int]string{},
		health:  map[int][]model.HealthWarning{},
		cwd:     map[int]string{},
		units:   map[int]string{},
	}
	for _, p := range procs {
		f.procs[p.PID] = p
	}
	return f
}

func (f *fakePlatform) Name() string { return "fake" }

func (f *fakePlatform) Sockets(proc.Filter) ([]model.PortRecord, error) { return nil, nil }

func (f *fakePlatform) Process(pid int) (proc.ProcessInfo, bool) {
	p, ok := f.procs[pid]
	return p, ok
}

func (f *fakePlatform) Prewarm() { f.prewarms.Add(1) }

func (f *fakePlatform) RootPID() int { return 1 }

func (f *fakePlatform) ContainerMetadata(pid int) (string, bool) {
	c, ok := f.cgroups[pid]
	return c, ok
}

func (f *fakePlatform) Health(pid int) []model.HealthWarning { return f.health[pid] }

func (f *fakePlatform) WorkingDir(pid int) (string, bool) {
	d, ok := f.cwd[pid]
	return d, ok
}

func (f *fakePlatform) InitUnit(pid int) string { return f.units[pid] }

func info(pid, ppid int, name string) proc.ProcessInfo {
	return proc.ProcessInfo{PID: pid, PPID: ppid, Name: name}
}
