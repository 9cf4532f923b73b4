package source

import (
	"strings"

	"github.com/pranshuparmar/ports/pkg/model"
)

var shells = map[string]bool{
	"bash": true,
	"zsh":  true,
	"sh":   true,
	"fish": true,
	"csh":  true,
	"tcsh": true,
	"ksh":  true,
	"dash": true,
}

// detectShell only looks at the direct parent. A shell further up the chain
// is usually the login shell of whoever started the supervisor.
func detectShell(chain []model.Ancestor, _ string) (model.SourceType, bool) {
	if len(chain) < 2 {
		return "", false
	}
	if shells[strings.ToLower(chain[1].Name)] {
		return model.SourceShell, true
	}
	return "", false
}
