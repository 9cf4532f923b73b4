package output

import (
	"io"
	"strings"

	"github.com/pranshuparmar/ports/pkg/model"
)

// PrintTree prints the chain root first, each hop indented under its
// parent.
func PrintTree(w io.Writer, a model.ProcessAncestry, colorEnabled bool) {
	p := NewPrinter(w, colorEnabled)

	chain := a.RootToTarget()
	for i, anc := range chain {
		indent := strings.Repeat("  ", i)
		if i > 0 {
			p.Printf("%s%s", ansiString(indent), p.Style(arrowStyle, "└─ "))
		}
		st := nameStyle.UnsetBold()
		if i == len(chain)-1 {
			st = targetStyle
		}
		p.Printf("%s (pid %s)\n", p.Style(st, anc.Name), p.Style(pidStyle, itoa(anc.PID)))
	}
}
