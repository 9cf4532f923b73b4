package proc

import (
	"bufio"
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/coreos/go-systemd/v22/dbus"
	"go.uber.org/zap"
)

// SystemdUnit extracts the unit from cgroup text, e.g.
// "0::/system.slice/nginx.service" yields "nginx.service".
func SystemdUnit(cgroup string) string {
	scanner := bufio.NewScanner(strings.NewReader(cgroup))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		i := strings.LastIndex(line, "/")
		if i < 0 {
			continue
		}
		if unit := line[i+1:]; strings.HasSuffix(unit, ".service") {
			return unit
		}
	}
	return ""
}

// UnitLookup asks systemd which unit owns a pid. It is only consulted when
// cgroup text did not name one.
type UnitLookup interface {
	UnitForPID(pid int) string
}

type systemdBus struct {
	timeout time.Duration
}

// NewSystemdBus returns a lookup backed by the systemd D-Bus API. Each call
// opens its own connection; failures yield no unit.
func NewSystemdBus() UnitLookup {
	return systemdBus{timeout: 2 * time.Second}
}

func (b systemdBus) UnitForPID(pid int) string {
	ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
	defer cancel()

	conn, err := dbus.NewWithContext(ctx)
	if err != nil {
		zap.S().Debugw("systemd bus unavailable", "error", err)
		return ""
	}
	defer conn.Close()

	unit, err := conn.GetUnitNameByPID(ctx, uint32(pid))
	if err != nil || !strings.HasSuffix(unit, ".service") {
		return ""
	}
	return unit
}

// LsofCwd resolves a working directory with `lsof -a -p <pid> -d cwd -Fn`.
func LsofCwd(r Runner, pid int) (string, bool) {
	out, err := r.Output("lsof", "-a", "-p", strconv.Itoa(pid), "-d", "cwd", "-Fn")
	if err != nil {
		return "", false
	}
	scanner := bufio.NewScanner(strings.NewReader(string(out)))
	for scanner.Scan() {
		if path, ok := strings.CutPrefix(scanner.Text(), "n"); ok && path != "" {
			return path, true
		}
	}
	return "", false
}
