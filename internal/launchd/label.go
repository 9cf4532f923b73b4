// Package launchd looks up the launchd job that owns a process.
package launchd

import (
	"bufio"
	"strconv"
	"strings"
)

// Runner runs launchctl.
type Runner interface {
	Output(name string, args ...string) ([]byte, error)
}

// Label returns the job label for pid, or "" when launchd does not manage
// it. `launchctl procinfo` is asked first; `launchctl blame` is used when
// procinfo is unavailable (it needs root on recent releases).
func Label(r Runner, pid int) string {
	out, err := r.Output("launchctl", "procinfo", strconv.Itoa(pid))
	if err == nil || len(out) > 0 {
		if label := ParseProcinfo(string(out)); label != "" {
			return label
		}
	}
	out, err = r.Output("launchctl", "blame", strconv.Itoa(pid))
	if err != nil {
		return ""
	}
	return ParseBlame(string(out))
}

// ParseProcinfo extracts the value of the first "label = X" line.
func ParseProcinfo(out string) string {
	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if label, ok := strings.CutPrefix(line, "label = "); ok {
			return strings.TrimSpace(label)
		}
	}
	return ""
}

// ParseBlame turns "gui/501/com.example.app" into "com.example.app". Blame
// reasons such as "speculative" or "ipc (mach)" name no job.
func ParseBlame(out string) string {
	line := strings.TrimSpace(out)
	if !strings.Contains(line, "/") {
		return ""
	}
	return line[strings.LastIndex(line, "/")+1:]
}
