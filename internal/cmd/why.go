package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/pranshuparmar/ports/internal/output"
	"github.com/pranshuparmar/ports/internal/target"
)

func newWhyCommand(a *app) *cobra.Command {
	var tree, short bool
	cmd := &cobra.Command{
		Use:   "why <port|pid|name>",
		Short: "Explain why the process behind a port, pid or name is running",
		Long: `why resolves the target to processes holding sockets (a number is tried
as a port first, then as a pid; anything else matches process or container
names) and prints each process's ancestry and what started it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.why(args[0], tree, short)
		},
	}
	cmd.Flags().BoolVar(&tree, "tree", false, "print the ancestry as a tree")
	cmd.Flags().BoolVar(&short, "short", false, "print one line per process")
	return cmd
}

func (a *app) why(t string, tree, short bool) error {
	results, err := a.explainer().Explain(t)
	if errors.Is(err, target.ErrNoMatch) {
		if a.s.JSON {
			return output.WriteWhyJSON(a.env.Out, nil)
		}
		output.RenderError(a.env.Err, err, a.s.Color)
		return nil
	}
	if err != nil {
		return err
	}

	switch {
	case a.s.JSON:
		return output.WriteWhyJSON(a.env.Out, results)
	case short:
		for _, res := range results {
			if res.Ancestry == nil {
				continue
			}
			output.RenderShort(a.env.Out, *res.Ancestry, a.s.Color)
		}
	default:
		output.RenderWhy(a.env.Out, results, output.WhyOptions{Color: a.s.Color, Tree: tree})
	}
	return nil
}
