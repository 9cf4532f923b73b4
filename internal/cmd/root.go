// Package cmd wires the command line: flags and environment through viper,
// logging through zap, and the platform, lister and ancestry cache shared by
// every subcommand.
package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pranshuparmar/ports/internal/output"
	"github.com/pranshuparmar/ports/internal/ports"
	"github.com/pranshuparmar/ports/internal/proc"
	"github.com/pranshuparmar/ports/internal/process"
	"github.com/pranshuparmar/ports/internal/target"
	"github.com/pranshuparmar/ports/pkg/model"
)

// Env is what the commands run against. Zero fields are filled from the
// host.
type Env struct {
	Out io.Writer
	Err io.Writer
	In  io.Reader

	// Terminal reports whether Out is a terminal; Interactive whether In is.
	Terminal    bool
	Interactive bool

	Platform   proc.Platform
	Containers ports.ContainerLister
	Kill       func(pid int, force bool) error
	Clock      clock.Clock
}

// HostEnv describes the real process environment.
func HostEnv() Env {
	return Env{
		Out:         os.Stdout,
		Err:         os.Stderr,
		In:          os.Stdin,
		Terminal:    isTerminal(os.Stdout),
		Interactive: isTerminal(os.Stdin),
	}
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

type settings struct {
	JSON        bool
	Connections bool
	Regex       bool
	Sort        ports.SortField
	Protocol    model.Protocol
	Interval    time.Duration
	Debug       bool
	Color       bool
	ProcRoot    string
}

func (s settings) filter() proc.Filter {
	if s.Connections {
		return proc.FilterEstablished
	}
	return proc.FilterListening
}

func (s settings) query(match string) ports.Query {
	return ports.Query{
		Filter:   s.filter(),
		Protocol: s.Protocol,
		Match:    match,
		Regex:    s.Regex,
		Sort:     s.Sort,
	}
}

type app struct {
	env Env
	v   *viper.Viper
	s   settings

	platform proc.Platform
	lister   ports.Lister
	cache    *process.Cache
}

// NewRootCommand builds the command tree. Every flag can also be set from
// the environment as PORTS_<FLAG>, e.g. PORTS_JSON=1 or PORTS_PROC_ROOT.
func NewRootCommand(env Env, version string) *cobra.Command {
	if env.Out == nil {
		env.Out = io.Discard
	}
	if env.Err == nil {
		env.Err = io.Discard
	}
	if env.In == nil {
		env.In = strings.NewReader("")
	}
	if env.Clock == nil {
		env.Clock = clock.New()
	}
	if env.Kill == nil {
		env.Kill = proc.Terminate
	}

	a := &app{env: env, v: viper.New()}

	var watch bool
	root := &cobra.Command{
		Use:   "ports [query]",
		Short: "Show what is listening on this machine and why it is running",
		Long: `ports lists listening sockets and established connections with the
process that owns each one, and traces every process back to what started
it: systemd, launchd, docker, cron, a supervisor or an interactive shell.

A query narrows the list: a number matches the port exactly, anything else
matches the process or container name.`,
		Version:           version,
		Args:              cobra.MaximumNArgs(1),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error { return a.setup() },
		RunE: func(cmd *cobra.Command, args []string) error {
			query := ""
			if len(args) == 1 {
				query = args[0]
			}
			if watch {
				return a.watch(cmd.Context(), query, 0)
			}
			return a.list(query)
		},
	}
	root.SetOut(env.Out)
	root.SetErr(env.Err)
	root.SetIn(env.In)

	pf := root.PersistentFlags()
	pf.Bool("json", false, "output as JSON")
	pf.BoolP("connections", "c", false, "show established connections instead of listening ports")
	pf.StringP("sort", "s", "", "sort by port, pid or name")
	pf.StringP("protocol", "p", "", "only show tcp or udp")
	pf.Bool("regex", false, "treat the query as a regular expression")
	pf.Float64P("interval", "n", 1, "refresh interval in seconds for watch and top")
	pf.Bool("debug", false, "log diagnostics to stderr")
	pf.Bool("no-color", false, "disable colorized output")
	pf.String("proc-root", proc.DefaultProcRoot, "procfs mount to read")
	root.Flags().BoolVarP(&watch, "watch", "w", false, "refresh continuously")

	a.v.SetEnvPrefix("PORTS")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()
	cobra.CheckErr(a.v.BindPFlags(pf))

	root.AddCommand(
		newListCommand(a),
		newWatchCommand(a),
		newWhyCommand(a),
		newKillCommand(a),
		newTopCommand(a),
	)
	return root
}

// Execute runs the command line and reports a failure on stderr.
func Execute(version string) int {
	env := HostEnv()
	root := NewRootCommand(env, version)
	if err := root.Execute(); err != nil {
		output.RenderError(env.Err, err, env.Terminal)
		return 1
	}
	return 0
}

func (a *app) setup() error {
	s, err := a.loadSettings()
	if err != nil {
		return err
	}
	a.s = s

	zap.ReplaceGlobals(newLogger(s.Debug, a.env.Err))

	a.platform = a.env.Platform
	if a.platform == nil {
		a.platform = proc.Probe(proc.Options{ProcRoot: s.ProcRoot, Clock: a.env.Clock})
	}
	zap.S().Debugw("platform selected", "platform", a.platform.Name())

	containers := a.env.Containers
	if containers == nil {
		containers = ports.NewDockerLister()
	}
	a.lister = ports.Lister{Platform: a.platform, Containers: ports.NewContainers(containers)}
	a.cache = process.NewPlatformCache(a.platform, process.WithClock(a.env.Clock))
	return nil
}

func (a *app) loadSettings() (settings, error) {
	s := settings{
		JSON:        a.v.GetBool("json"),
		Connections: a.v.GetBool("connections"),
		Regex:       a.v.GetBool("regex"),
		Debug:       a.v.GetBool("debug"),
		Color:       a.env.Terminal && !a.v.GetBool("no-color"),
		ProcRoot:    a.v.GetString("proc-root"),
	}

	sortField, err := ports.ParseSortField(a.v.GetString("sort"))
	if err != nil {
		return s, err
	}
	s.Sort = sortField

	if p := a.v.GetString("protocol"); p != "" {
		proto, err := model.ParseProtocol(p)
		if err != nil {
			return s, err
		}
		s.Protocol = proto
	}

	interval := a.v.GetFloat64("interval")
	if interval <= 0 {
		return s, fmt.Errorf("interval must be positive, got %v", interval)
	}
	s.Interval = time.Duration(interval * float64(time.Second))
	return s, nil
}

func (a *app) explainer() target.Explainer {
	return target.Explainer{Lister: a.lister, Cache: a.cache}
}
