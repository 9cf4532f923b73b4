// Package source decides what is ultimately responsible for a process
// from its ancestry chain and cgroup membership.
package source

import (
	"strings"

	"github.com/pranshuparmar/ports/pkg/model"
)

// Cgroup path fragments left by container runtimes.
var containerMarkers = []string{"/docker/", "/containerd/", "/kubepods/", "/podman-"}

const unitMarker = ".service"

// LaunchdRoot is the root process name that marks a launchd-managed chain.
const LaunchdRoot = "launchd"

type rule struct {
	name   string
	detect func(chain []model.Ancestor, metadata string) (model.SourceType, bool)
}

// Evaluated in order, first match wins.
var rules = []rule{
	{"container", detectContainer},
	{"init system", detectInitSystem},
	{"supervisor", detectSupervisor},
	{"multiplexer", detectMultiplexer},
	{"cron", detectCron},
	{"shell", detectShell},
	{"launchd root", detectLaunchdRoot},
}

// Detect classifies chain (target first, root last). metadata is the raw
// cgroup text of the target, or empty when the platform has none.
// Chains shorter than two entries have no parent to reason about and are
// always Unknown.
func Detect(chain []model.Ancestor, metadata string) model.SourceType {
	if len(chain) < 2 {
		return model.SourceUnknown
	}
	for _, r := range rules {
		if s, ok := r.detect(chain, metadata); ok {
			return s
		}
	}
	return model.SourceUnknown
}

func detectContainer(_ []model.Ancestor, metadata string) (model.SourceType, bool) {
	for _, m := range containerMarkers {
		if strings.Contains(metadata, m) {
			return model.SourceDocker, true
		}
	}
	return "", false
}

func detectInitSystem(_ []model.Ancestor, metadata string) (model.SourceType, bool) {
	if strings.Contains(metadata, unitMarker) {
		return model.SourceSystemd, true
	}
	return "", false
}

func detectLaunchdRoot(chain []model.Ancestor, _ string) (model.SourceType, bool) {
	if chain[len(chain)-1].Name == LaunchdRoot {
		return model.SourceLaunchd, true
	}
	return "", false
}
