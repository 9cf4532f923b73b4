package proc

import (
	"fmt"

	"github.com/shirou/gopsutil/v3/process"
)

// Terminate asks pid to exit. With force the process is killed outright.
func Terminate(pid int, force bool) error {
	p, err := process.NewProcess(int32(pid))
	if err != nil {
		return fmt.Errorf("pid %d: %w", pid, err)
	}
	if force {
		err = p.Kill()
	} else {
		err = p.Terminate()
	}
	if err != nil {
		return fmt.Errorf("signal pid %d: %w", pid, err)
	}
	return nil
}
