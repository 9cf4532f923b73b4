package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pranshuparmar/ports/internal/output"
	"github.com/pranshuparmar/ports/internal/ports"
	"github.com/pranshuparmar/ports/pkg/model"
)

const clearScreen = "\x1b[2J\x1b[H"

func newListCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List listening ports (or connections with -c)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.list("")
		},
	}
}

func newWatchCommand(a *app) *cobra.Command {
	var count int
	cmd := &cobra.Command{
		Use:   "watch [query]",
		Short: "Refresh the list periodically, marking entries that appeared",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := ""
			if len(args) == 1 {
				query = args[0]
			}
			return a.watch(cmd.Context(), query, count)
		},
	}
	cmd.Flags().IntVar(&count, "count", 0, "stop after this many refreshes (0 runs until interrupted)")
	return cmd
}

func (a *app) list(query string) error {
	records, err := a.lister.List(a.s.query(query))
	if err != nil {
		return err
	}
	if a.s.JSON {
		return output.WritePortsJSON(a.env.Out, records)
	}
	output.RenderPorts(a.env.Out, records, output.TableOptions{
		Connections: a.s.Connections,
		Color:       a.s.Color,
	})
	return nil
}

// watch prints the list every interval until ctx is done or rounds
// refreshes have been shown. Records absent from the previous round are
// highlighted and records that disappeared are counted; the first round has
// nothing to compare against.
func (a *app) watch(ctx context.Context, query string, rounds int) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ticker := a.env.Clock.Ticker(a.s.Interval)
	defer ticker.Stop()

	var previous ports.Set
	for round := 1; ; round++ {
		records, err := a.lister.List(a.s.query(query))
		if err != nil {
			return err
		}

		if a.s.JSON {
			if err := output.WritePortsJSON(a.env.Out, records); err != nil {
				return err
			}
		} else {
			if a.env.Terminal {
				fmt.Fprint(a.env.Out, clearScreen)
			}
			opts := output.TableOptions{Connections: a.s.Connections, Color: a.s.Color}
			var added ports.Set
			if previous != nil {
				added = ports.Added(previous, records)
				opts.Highlight = func(r model.PortRecord) bool { return added.Has(r) }
			}
			output.RenderPorts(a.env.Out, records, opts)
			if previous != nil {
				gone := ports.Removed(previous, records)
				fmt.Fprintf(a.env.Out, "\n%d new, %d gone since last refresh\n", len(added), len(gone))
			}
			mode := "listening ports"
			if a.s.Connections {
				mode = "connections"
			}
			fmt.Fprintf(a.env.Out, "\nWatching %s (every %.1fs, Ctrl+C to exit)\n", mode, a.s.Interval.Seconds())
		}
		previous = ports.NewSet(records)

		if rounds > 0 && round >= rounds {
			return nil
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
