package source

import (
	"strings"

	"github.com/pranshuparmar/ports/pkg/model"
)

var knownSupervisors = map[string]model.SourceType{
	"pm2":          model.SourcePm2,
	"supervisord":  model.SourceSupervisord,
	"supervisor":   model.SourceSupervisord,
	"gunicorn":     model.SourceGunicorn,
	"runsv":        model.SourceRunit,
	"runsvdir":     model.SourceRunit,
	"s6-svscan":    model.SourceS6,
	"s6-supervise": model.SourceS6,
}

// Multiplexers match on prefix too; tmux renames its server "tmux: server".
var multiplexers = []struct {
	name   string
	source model.SourceType
}{
	{"tmux", model.SourceTmux},
	{"tmux: server", model.SourceTmux},
	{"screen", model.SourceScreen},
	{"nohup", model.SourceNohup},
}

var cronNames = map[string]bool{
	"cron":    true,
	"crond":   true,
	"anacron": true,
}

// topDown visits the chain from the root toward the target so the outermost
// match wins.
func topDown(chain []model.Ancestor, match func(name string) (model.SourceType, bool)) (model.SourceType, bool) {
	for i := len(chain) - 1; i >= 0; i-- {
		if s, ok := match(strings.ToLower(chain[i].Name)); ok {
			return s, true
		}
	}
	return "", false
}

func detectSupervisor(chain []model.Ancestor, _ string) (model.SourceType, bool) {
	return topDown(chain, func(name string) (model.SourceType, bool) {
		s, ok := knownSupervisors[name]
		return s, ok
	})
}

func detectMultiplexer(chain []model.Ancestor, _ string) (model.SourceType, bool) {
	return topDown(chain, func(name string) (model.SourceType, bool) {
		for _, m := range multiplexers {
			if name == m.name || strings.HasPrefix(name, m.name) {
				return m.source, true
			}
		}
		return "", false
	})
}

func detectCron(chain []model.Ancestor, _ string) (model.SourceType, bool) {
	return topDown(chain, func(name string) (model.SourceType, bool) {
		return model.SourceCron, cronNames[name]
	})
}
