package proc

import (
	"bufio"
	"bytes"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"
)

// DefaultTableTTL bounds how long a ps snapshot is reused.
const DefaultTableTTL = 5 * time.Second

// ProcessTable is a system-wide ps snapshot shared by every lookup in a
// refresh window. It is safe for concurrent use.
type ProcessTable struct {
	runner Runner
	clock  clock.Clock
	ttl    time.Duration

	mu      sync.Mutex
	entries map[int]ProcessInfo
	taken   time.Time
}

func NewProcessTable(r Runner, clk clock.Clock, ttl time.Duration) *ProcessTable {
	if clk == nil {
		clk = clock.New()
	}
	if ttl <= 0 {
		ttl = DefaultTableTTL
	}
	return &ProcessTable{runner: r, clock: clk, ttl: ttl}
}

// Refresh takes a new snapshot if the current one has expired.
func (t *ProcessTable) Refresh() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.refreshLocked()
}

func (t *ProcessTable) refreshLocked() {
	if t.entries != nil && t.clock.Since(t.taken) < t.ttl {
		return
	}
	out, err := t.runner.Output("ps", "-A", "-o", "pid=,ppid=,comm=")
	if err != nil {
		zap.S().Debugw("ps snapshot failed", "error", err)
		// keep the previous snapshot, try again next time
		if t.entries == nil {
			t.entries = map[int]ProcessInfo{}
		}
		t.taken = time.Time{}
		return
	}
	t.entries = ParsePs(out)
	t.taken = t.clock.Now()
}

// Lookup returns pid from the snapshot, falling back to a single-process
// query when the pid appeared after the snapshot was taken.
func (t *ProcessTable) Lookup(pid int) (ProcessInfo, bool) {
	t.mu.Lock()
	t.refreshLocked()
	info, ok := t.entries[pid]
	t.mu.Unlock()
	if ok {
		return info, true
	}

	out, err := t.runner.Output("ps", "-o", "pid=,ppid=,comm=", "-p", strconv.Itoa(pid))
	if err != nil {
		return ProcessInfo{}, false
	}
	info, ok = ParsePs(out)[pid]
	return info, ok
}

// ParsePs parses `ps -o pid=,ppid=,comm=` output. The command column may
// be a full path and may contain spaces; its base name is kept.
func ParsePs(out []byte) map[int]ProcessInfo {
	entries := make(map[int]ProcessInfo)

	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 3 {
			continue
		}
		pid, err := strconv.Atoi(fields[0])
		if err != nil {
			continue
		}
		ppid, err := strconv.Atoi(fields[1])
		if err != nil {
			continue
		}
		comm := strings.Join(fields[2:], " ")
		entries[pid] = ProcessInfo{PID: pid, PPID: ppid, Name: filepath.Base(comm)}
	}
	return entries
}
