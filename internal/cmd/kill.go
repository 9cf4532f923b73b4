package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"

	"github.com/pranshuparmar/ports/internal/output"
	"github.com/pranshuparmar/ports/pkg/model"
)

var (
	errAmbiguous = errors.New("more than one process matches")
	errAborted   = errors.New("aborted")
)

func newKillCommand(a *app) *cobra.Command {
	var force, all bool
	cmd := &cobra.Command{
		Use:   "kill <port|pid|name>",
		Short: "Stop the process behind a port, pid or name",
		Long: `kill shows what started each matching process and asks before
signalling it. Without --force the process receives SIGTERM after
confirmation; with --force it is killed without asking.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.kill(args[0], force, all)
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "skip confirmation and kill immediately")
	cmd.Flags().BoolVarP(&all, "all", "a", false, "act on every matching process")
	return cmd
}

func (a *app) kill(t string, force, all bool) error {
	results, err := a.explainer().Explain(t)
	if err != nil {
		return err
	}

	output.RenderWhy(a.env.Out, results, output.WhyOptions{Color: a.s.Color})
	if len(results) > 1 && !all {
		return fmt.Errorf("%w %q (%d found); use --all or a more specific target", errAmbiguous, t, len(results))
	}

	if !force {
		if !a.env.Interactive {
			return fmt.Errorf("%w: stdin is not a terminal, use --force", errAborted)
		}
		if !a.confirm(results) {
			return errAborted
		}
	}

	var result *multierror.Error
	for _, res := range results {
		if err := a.env.Kill(res.PID, force); err != nil {
			result = multierror.Append(result, err)
			continue
		}
		fmt.Fprintf(a.env.Out, "Killed %s (PID %d)\n", output.SanitizeCell(res.ProcessName), res.PID)
	}
	return result.ErrorOrNil()
}

func (a *app) confirm(results []model.WhyResult) bool {
	names := make([]string, len(results))
	for i, res := range results {
		names[i] = fmt.Sprintf("%s (PID %d)", output.SanitizeCell(res.ProcessName), res.PID)
	}
	fmt.Fprintf(a.env.Out, "\nKill %s? [y/N] ", strings.Join(names, ", "))

	line, _ := bufio.NewReader(a.env.In).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}
