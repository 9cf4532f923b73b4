package model

import (
	"encoding/json"
	"fmt"
)

// SourceType names whatever is ultimately responsible for a process running.
// The string value is the token used in machine-readable output.
type SourceType string

const (
	SourceSystemd     SourceType = "systemd"
	SourceLaunchd     SourceType = "launchd"
	SourceDocker      SourceType = "docker"
	SourceCron        SourceType = "cron"
	SourceShell       SourceType = "shell"
	SourcePm2         SourceType = "pm2"
	SourceSupervisord SourceType = "supervisord"
	SourceGunicorn    SourceType = "gunicorn"
	SourceRunit       SourceType = "runit"
	SourceS6          SourceType = "s6"
	SourceTmux        SourceType = "tmux"
	SourceScreen      SourceType = "screen"
	SourceNohup       SourceType = "nohup"
	SourceUnknown     SourceType = "unknown"
)

var sourceTypes = []SourceType{
	SourceSystemd, SourceLaunchd, SourceDocker, SourceCron, SourceShell,
	SourcePm2, SourceSupervisord, SourceGunicorn, SourceRunit, SourceS6,
	SourceTmux, SourceScreen, SourceNohup, SourceUnknown,
}

func (s SourceType) String() string {
	if s == "" {
		return string(SourceUnknown)
	}
	return string(s)
}

func (s *SourceType) UnmarshalJSON(b []byte) error {
	var tok string
	if err := json.Unmarshal(b, &tok); err != nil {
		return err
	}
	for _, t := range sourceTypes {
		if string(t) == tok {
			*s = t
			return nil
		}
	}
	return fmt.Errorf("unknown source type %q", tok)
}

// HealthWarning is an informational finding about a process. It never
// influences classification.
type HealthWarning string

const (
	WarningDeletedBinary HealthWarning = "deleted-binary"
	WarningZombie        HealthWarning = "zombie"
)

func (w HealthWarning) Message() string {
	switch w {
	case WarningDeletedBinary:
		return "binary deleted from disk since the process started"
	case WarningZombie:
		return "zombie process (terminated, not reaped by parent)"
	}
	return string(w)
}

func (w *HealthWarning) UnmarshalJSON(b []byte) error {
	var tok string
	if err := json.Unmarshal(b, &tok); err != nil {
		return err
	}
	switch HealthWarning(tok) {
	case WarningDeletedBinary, WarningZombie:
		*w = HealthWarning(tok)
		return nil
	}
	return fmt.Errorf("unknown health warning %q", tok)
}
