package output

import (
	"io"
	"strings"

	"github.com/pranshuparmar/ports/pkg/model"
)

// WhyOptions controls RenderWhy.
type WhyOptions struct {
	Color bool
	// Tree prints the chain as an indented tree instead of one line.
	Tree bool
}

// RenderWhy prints one block per process:
//
//	Process: nginx (PID 500)
//	  Ports:     80/tcp, 443/tcp
//	  Source:    systemd
//	  Unit:      nginx.service
//	  Chain:     systemd (pid 1) → nginx (pid 500)
func RenderWhy(w io.Writer, results []model.WhyResult, opts WhyOptions) {
	p := NewPrinter(w, opts.Color)
	field := func(label string) ansiString {
		return p.Style(labelStyle, label+strings.Repeat(" ", 10-len(label)))
	}

	for i, res := range results {
		if i > 0 {
			p.Println()
		}
		p.Printf("%s %s (PID %s)\n", p.Style(headerStyle, "Process:"), p.Style(nameStyle, res.ProcessName), p.Style(pidStyle, itoa(res.PID)))
		if len(res.Ports) > 0 {
			p.Printf("  %s %s\n", field("Ports:"), strings.Join(res.Ports, ", "))
		}

		a := res.Ancestry
		if a == nil {
			p.Printf("  %s %s\n", field("Source:"), p.Style(labelStyle, "ancestry unavailable (process exited or access denied)"))
			continue
		}
		p.Printf("  %s %s\n", field("Source:"), p.Style(sourceStyle, a.Source.String()))
		if a.Unit != "" {
			label := "Label:"
			if strings.HasSuffix(a.Unit, ".service") {
				label = "Unit:"
			}
			p.Printf("  %s %s\n", field(label), a.Unit)
		}
		if opts.Tree {
			p.Printf("  %s\n", field("Chain:"))
			var b strings.Builder
			PrintTree(&b, *a, opts.Color)
			for _, line := range strings.Split(strings.TrimRight(b.String(), "\n"), "\n") {
				p.Printf("    %s\n", ansiString(line))
			}
		} else {
			p.Printf("  %s %s\n", field("Chain:"), shortChain(p, *a))
		}
		if a.Git != nil {
			p.Printf("  %s %s\n", field("Git:"), a.Git.String())
		}
		for _, warn := range a.Warnings {
			p.Printf("  %s %s\n", field("Warning:"), p.Style(warningStyle, warn.Message()))
		}
	}
}

// RenderError prints a one-line error in the style of the rest of the
// output.
func RenderError(w io.Writer, err error, colorEnabled bool) {
	p := NewPrinter(w, colorEnabled)
	p.Printf("%s %s\n", p.Style(errorStyle, "Error:"), err)
}
