package output

import (
	"io"

	"github.com/pranshuparmar/ports/pkg/model"
)

// RenderShort prints the chain on one line, root first, the target
// highlighted: "systemd (pid 1) → nginx (pid 500)".
func RenderShort(w io.Writer, a model.ProcessAncestry, colorEnabled bool) {
	p := NewPrinter(w, colorEnabled)
	p.Print(shortChain(p, a))
	p.Println()
}

func shortChain(p Printer, a model.ProcessAncestry) ansiString {
	var out ansiString
	chain := a.RootToTarget()
	for i, anc := range chain {
		if i > 0 {
			out += p.Style(arrowStyle, " → ")
		}
		st := nameStyle.UnsetBold()
		if i == len(chain)-1 {
			st = targetStyle
		}
		out += p.Style(st, anc.Name) + ansiString(" (pid ") + p.Style(pidStyle, itoa(anc.PID)) + ansiString(")")
	}
	return out
}
