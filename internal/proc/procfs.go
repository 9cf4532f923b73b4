package proc

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/prometheus/procfs"
	"go.uber.org/zap"

	"github.com/pranshuparmar/ports/pkg/model"
)

// DefaultProcRoot is where procfs is normally mounted.
const DefaultProcRoot = "/proc"

// Interpreters whose executable name says less than the title the process
// gave itself, so comm is shown instead.
var interpreters = map[string]bool{
	"node":    true,
	"nodejs":  true,
	"deno":    true,
	"bun":     true,
	"python":  true,
	"python2": true,
	"python3": true,
	"ruby":    true,
	"perl":    true,
	"php":     true,
	"java":    true,
	"bash":    true,
	"sh":      true,
	"zsh":     true,
	"dash":    true,
	"fish":    true,
	"ksh":     true,
}

func isInterpreter(name string) bool {
	if interpreters[name] {
		return true
	}
	// python3.12 and friends
	return strings.HasPrefix(name, "python") && strings.Trim(name[len("python"):], "0123456789.") == ""
}

// DisplayName picks the name shown for a process from its executable link
// and its short command name.
func DisplayName(exe, comm string) string {
	comm = strings.TrimSpace(comm)
	name := filepath.Base(exe)
	if exe == "" || name == "" || strings.Contains(name, "(deleted)") {
		return comm
	}
	if isInterpreter(name) && comm != "" {
		return comm
	}
	return name
}

// Owner is the process holding a socket.
type Owner struct {
	PID  int
	Name string
}

// ProcessInfo is what the registry knows about one pid.
type ProcessInfo struct {
	PID   int
	PPID  int
	Name  string
	State string
}

// Registry reads per-process state from a procfs mount.
type Registry struct {
	fs procfs.FS
}

func NewRegistry(root string) (*Registry, error) {
	fs, err := procfs.NewFS(root)
	if err != nil {
		return nil, fmt.Errorf("open procfs at %s: %w", root, err)
	}
	return &Registry{fs: fs}, nil
}

// SocketOwners maps socket inodes to their owning process by walking every
// process's descriptor table. Processes that cannot be read are skipped.
func (r *Registry) SocketOwners() map[uint64]Owner {
	owners := make(map[uint64]Owner)

	procs, err := r.fs.AllProcs()
	if err != nil {
		zap.S().Debugw("cannot list processes", "error", err)
		return owners
	}
	for _, p := range procs {
		targets, err := p.FileDescriptorTargets()
		if err != nil {
			zap.S().Debugw("skipping process descriptors", "pid", p.PID, "error", err)
			continue
		}
		var name string
		for _, target := range targets {
			inode, ok := ParseSocketLink(target)
			if !ok {
				continue
			}
			if name == "" {
				name = r.name(p)
			}
			owners[inode] = Owner{PID: p.PID, Name: name}
		}
	}
	return owners
}

// ParseSocketLink extracts N from a descriptor link of the form socket:[N].
func ParseSocketLink(target string) (uint64, bool) {
	rest, ok := strings.CutPrefix(target, "socket:[")
	if !ok {
		return 0, false
	}
	rest, ok = strings.CutSuffix(rest, "]")
	if !ok {
		return 0, false
	}
	inode, err := strconv.ParseUint(rest, 10, 64)
	if err != nil {
		return 0, false
	}
	return inode, true
}

func (r *Registry) name(p procfs.Proc) string {
	exe, _ := p.Executable()
	comm, err := p.Comm()
	if err != nil {
		if st, serr := p.Stat(); serr == nil {
			comm = st.Comm
		}
	}
	return DisplayName(exe, comm)
}

// Process resolves name, parent and state for pid. The name is the
// kernel comm so multi-call binaries keep their applet name in chains.
func (r *Registry) Process(pid int) (ProcessInfo, bool) {
	p, err := r.fs.Proc(pid)
	if err != nil {
		return ProcessInfo{}, false
	}
	st, err := p.Stat()
	if err != nil {
		zap.S().Debugw("cannot read stat", "pid", pid, "error", err)
		return ProcessInfo{}, false
	}
	return ProcessInfo{
		PID:   pid,
		PPID:  st.PPID,
		Name:  st.Comm,
		State: st.State,
	}, true
}

// Health reports deleted executables and zombies.
func (r *Registry) Health(pid int) []model.HealthWarning {
	p, err := r.fs.Proc(pid)
	if err != nil {
		return nil
	}
	var warnings []model.HealthWarning
	if exe, err := p.Executable(); err == nil && strings.Contains(exe, "(deleted)") {
		warnings = append(warnings, model.WarningDeletedBinary)
	}
	if st, err := p.Stat(); err == nil && st.State == "Z" {
		warnings = append(warnings, model.WarningZombie)
	}
	return warnings
}

// Cgroup returns the cgroup membership of pid rendered one line per
// hierarchy, in the kernel's own format.
func (r *Registry) Cgroup(pid int) (string, bool) {
	p, err := r.fs.Proc(pid)
	if err != nil {
		return "", false
	}
	groups, err := p.Cgroups()
	if err != nil || len(groups) == 0 {
		return "", false
	}
	var b strings.Builder
	for _, g := range groups {
		fmt.Fprintf(&b, "%d:%s:%s\n", g.HierarchyID, strings.Join(g.Controllers, ","), g.Path)
	}
	return b.String(), true
}

func (r *Registry) Cwd(pid int) (string, bool) {
	p, err := r.fs.Proc(pid)
	if err != nil {
		return "", false
	}
	cwd, err := p.Cwd()
	if err != nil || cwd == "" {
		return "", false
	}
	return cwd, true
}
