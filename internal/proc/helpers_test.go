package proc

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	mu      sync.Mutex
	outputs map[string]string
	paths   map[string]bool
	calls   []string
}

func (r *fakeRunner) Output(name string, args ...string) ([]byte, error) {
	cmd := strings.Join(append([]string{name}, args...), " ")
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, cmd)
	out, ok := r.outputs[cmd]
	if !ok {
		return nil, errors.New("exit status 1")
	}
	return []byte(out), nil
}

func (r *fakeRunner) LookPath(name string) (string, error) {
	if r.paths[name] {
		return "/usr/bin/" + name, nil
	}
	return "", errors.New("not found")
}

func (r *fakeRunner) count(cmd string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.calls {
		if c == cmd {
			n++
		}
	}
	return n
}

// fakeProc describes one entry of a fixture procfs tree.
type fakeProc struct {
	pid     int
	ppid    int
	comm    string
	state   string
	exe     string
	cgroup  string
	cwd     string
	sockets []uint64
}

func writeProc(t *testing.T, root string, p fakeProc) {
	t.Helper()
	dir := filepath.Join(root, strconv.Itoa(p.pid))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "fd"), 0o755))

	state := p.state
	if state == "" {
		state = "S"
	}
	stat := fmt.Sprintf("%d (%s) %s %d %s\n", p.pid, p.comm, state, p.ppid, strings.TrimSpace(strings.Repeat("0 ", 50)))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "stat"), []byte(stat), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "comm"), []byte(p.comm+"\n"), 0o644))
	if p.exe != "" {
		require.NoError(t, os.Symlink(p.exe, filepath.Join(dir, "exe")))
	}
	if p.cgroup != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "cgroup"), []byte(p.cgroup), 0o644))
	}
	if p.cwd != "" {
		require.NoError(t, os.Symlink(p.cwd, filepath.Join(dir, "cwd")))
	}
	for i, inode := range p.sockets {
		link := filepath.Join(dir, "fd", strconv.Itoa(i+3))
		require.NoError(t, os.Symlink(fmt.Sprintf("socket:[%d]", inode), link))
	}
	require.NoError(t, os.Symlink("/dev/null", filepath.Join(dir, "fd", "0")))
}

func writeTable(t *testing.T, root, name string, lines ...string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "net"), 0o755))
	body := tableHeader + "\n" + strings.Join(lines, "\n") + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, "net", name), []byte(body), 0o644))
}

const tableHeader = "  sl  local_address rem_address   st tx_queue rx_queue tr tm->when retrnsmt   uid  timeout inode"

func tableLine(slot int, local, remote, state string, inode uint64) string {
	return fmt.Sprintf("%4d: %s %s %s 00000000:00000000 00:00000000 00000000  1000        0 %d 1 0000000000000000 100 0 0 10 0",
		slot, local, remote, state, inode)
}
