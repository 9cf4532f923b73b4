package cmd

import (
	"github.com/spf13/cobra"

	"github.com/pranshuparmar/ports/internal/tui"
)

func newTopCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "top",
		Short: "Interactive dashboard of ports, refreshed live",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return tui.Run(a.topOptions())
		},
	}
}

func (a *app) topOptions() tui.Options {
	return tui.Options{
		Lister:      a.lister,
		Ancestry:    a.cache,
		Kill:        func(pid int) error { return a.env.Kill(pid, false) },
		Connections: a.s.Connections,
		Protocol:    a.s.Protocol,
		Sort:        a.s.Sort,
		Interval:    a.s.Interval,
		Color:       a.s.Color,
	}
}
