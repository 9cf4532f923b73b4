package process

import (
	"github.com/pranshuparmar/ports/internal/proc"
	"github.com/pranshuparmar/ports/pkg/model"
)

// Resolver looks up name and parent for a pid.
type Resolver func(pid int) (proc.ProcessInfo, bool)

// Walk climbs parent links from pid. It stops at a pid with no parent, at
// rootPID, or when a pid repeats, and returns what it collected so far. An
// empty chain means pid itself could not be resolved.
func Walk(pid int, resolve Resolver, rootPID int) []model.Ancestor {
	var chain []model.Ancestor
	seen := make(map[int]bool)

	current := pid
	for current > 0 {
		if seen[current] {
			break // loop protection
		}
		seen[current] = true

		info, ok := resolve(current)
		if !ok {
			break
		}
		chain = append(chain, model.Ancestor{PID: current, Name: info.Name, PPID: info.PPID})

		if info.PPID == 0 || current == rootPID {
			break
		}
		current = info.PPID
	}
	return chain
}
