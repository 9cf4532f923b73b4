package proc

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"github.com/pranshuparmar/ports/pkg/model"
)

// ErrUnsupported is returned when the host offers no way to answer a query.
var ErrUnsupported = errors.New("not supported on this platform")

// Platform is the set of host capabilities the rest of the program needs.
// Implementations are chosen by Probe from what the host actually offers.
type Platform interface {
	Name() string

	// Sockets enumerates sockets matching f joined to their owning process.
	// A partial list is normal; an error means nothing could be read.
	Sockets(f Filter) ([]model.PortRecord, error)

	// Process resolves the name and parent of pid.
	Process(pid int) (ProcessInfo, bool)

	// Prewarm refreshes any shared snapshot ahead of a batch of lookups.
	Prewarm()

	// RootPID is the pid an ancestry walk stops at.
	RootPID() int

	ContainerMetadata(pid int) (string, bool)
	Health(pid int) []model.HealthWarning
	WorkingDir(pid int) (string, bool)

	// InitUnit names the init system job that owns pid, if any.
	InitUnit(pid int) string
}

type Options struct {
	ProcRoot string
	Runner   Runner
	Clock    clock.Clock
	Units    UnitLookup
}

func (o Options) withDefaults() Options {
	if o.ProcRoot == "" {
		o.ProcRoot = DefaultProcRoot
	}
	if o.Runner == nil {
		o.Runner = ExecRunner{}
	}
	if o.Clock == nil {
		o.Clock = clock.New()
	}
	if o.Units == nil {
		o.Units = NewSystemdBus()
	}
	return o
}

// Probe picks the best strategy the host supports: the kernel tables when
// they are readable, otherwise lsof and ps, otherwise a listening-only
// fallback.
func Probe(opts Options) Platform {
	opts = opts.withDefaults()
	log := zap.S()

	if f, err := os.Open(filepath.Join(opts.ProcRoot, "net", "tcp")); err == nil {
		f.Close()
		reg, err := NewRegistry(opts.ProcRoot)
		if err == nil {
			log.Debugw("using kernel socket tables", "root", opts.ProcRoot)
			return NewDirect(reg, opts.ProcRoot, opts.Units)
		}
		log.Debugw("procfs unusable", "error", err)
	}

	_, lsofErr := opts.Runner.LookPath("lsof")
	_, psErr := opts.Runner.LookPath("ps")
	if lsofErr == nil && psErr == nil {
		log.Debug("using lsof and ps snapshots")
		return NewSnapshot(opts.Runner, NewProcessTable(opts.Runner, opts.Clock, DefaultTableTTL))
	}

	log.Debug("using listening-only fallback")
	return NewFallback()
}

// correlate joins sockets to owners. Sockets without an owner are dropped,
// which is what an unprivileged caller sees for other users' processes.
func correlate(sockets []Socket, owners map[uint64]Owner) []model.PortRecord {
	records := make([]model.PortRecord, 0, len(sockets))
	for _, s := range sockets {
		pid, name := s.PID, s.Command
		if pid == 0 {
			o, ok := owners[s.Inode]
			if !ok {
				continue
			}
			pid, name = o.PID, o.Name
		}
		records = append(records, model.PortRecord{
			Port:          s.LocalPort,
			Protocol:      s.Protocol,
			PID:           pid,
			ProcessName:   name,
			Address:       s.LocalAddress(),
			RemoteAddress: s.RemoteAddress(),
		})
	}
	return records
}
