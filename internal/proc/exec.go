package proc

import (
	"os/exec"
)

// Runner executes external listing tools. Tests substitute a fake.
type Runner interface {
	Output(name string, args ...string) ([]byte, error)
	LookPath(name string) (string, error)
}

// ExecRunner runs commands on the host.
type ExecRunner struct{}

func (ExecRunner) Output(name string, args ...string) ([]byte, error) {
	return exec.Command(name, args...).Output()
}

func (ExecRunner) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}
