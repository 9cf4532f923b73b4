// Package output renders port records and causality answers as tables,
// text and JSON.
package output

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/pranshuparmar/ports/pkg/model"
)

// TableOptions controls RenderPorts.
type TableOptions struct {
	// Connections adds the remote address column.
	Connections bool
	// Highlight marks rows, e.g. records new since the last refresh.
	Highlight func(model.PortRecord) bool
	Color     bool
}

func itoa(n int) string { return strconv.Itoa(n) }

// RenderPorts prints records as an aligned table followed by a count.
func RenderPorts(w io.Writer, records []model.PortRecord, opts TableOptions) {
	p := NewPrinter(w, opts.Color)
	noun := "listening port(s)"
	if opts.Connections {
		noun = "connection(s)"
	}
	if len(records) == 0 {
		p.Printf("No %s found\n", noun)
		return
	}

	header := []string{"PORT", "PROTO", "PID", "PROCESS", "SERVICE", "ADDRESS"}
	if opts.Connections {
		header = append(header, "REMOTE")
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	table.SetHeaderLine(false)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetTablePadding("  ")
	table.SetNoWhiteSpace(true)

	for _, r := range records {
		row := []string{
			strconv.Itoa(int(r.Port)),
			string(r.Protocol),
			strconv.Itoa(r.PID),
			SanitizeCell(processLabel(r)),
			r.ServiceName,
			SanitizeCell(r.Address),
		}
		if opts.Connections {
			row = append(row, SanitizeCell(r.RemoteAddress))
		}

		if opts.Color && opts.Highlight != nil && opts.Highlight(r) {
			colors := make([]tablewriter.Colors, len(row))
			for i := range colors {
				colors[i] = tablewriter.Colors{tablewriter.Bold, tablewriter.FgGreenColor}
			}
			table.Rich(row, colors)
			continue
		}
		if !opts.Color && opts.Highlight != nil && opts.Highlight(r) {
			row[0] = "+" + row[0]
		}
		table.Append(row)
	}
	table.Render()

	p.Printf("\n%d %s found\n", len(records), noun)
}

func processLabel(r model.PortRecord) string {
	if r.Container != "" {
		return fmt.Sprintf("%s (%s)", r.ProcessName, r.Container)
	}
	return r.ProcessName
}
