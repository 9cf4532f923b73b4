// Package tui implements the interactive "top" dashboard.
package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"

	"github.com/pranshuparmar/ports/internal/output"
	"github.com/pranshuparmar/ports/internal/ports"
	"github.com/pranshuparmar/ports/internal/proc"
	"github.com/pranshuparmar/ports/internal/target"
	"github.com/pranshuparmar/ports/pkg/model"
)

// NewWindow is how long a record stays marked after it first appears.
const NewWindow = 3 * time.Second

const messageTTL = 3 * time.Second

var (
	baseStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240"))
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("57")).Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("160")).Bold(true)
	detailStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("57")).
			Padding(0, 1)
)

var errNoKill = errors.New("killing is not available")

type tickMsg time.Time

// refreshMsg asks for an immediate fetch outside the tick cadence.
type refreshMsg struct{}

type viewMode int

const (
	viewListening viewMode = iota
	viewConnections
)

func (v viewMode) filter() proc.Filter {
	if v == viewConnections {
		return proc.FilterEstablished
	}
	return proc.FilterListening
}

func (v viewMode) String() string {
	if v == viewConnections {
		return "CONNECTIONS"
	}
	return "LISTENING"
}

type recordsMsg struct {
	mode    viewMode
	seq     int
	records []model.PortRecord
}

type errMsg struct {
	mode viewMode
	seq  int
	err  error
}

type detailMsg struct {
	result model.WhyResult
}

type killedMsg struct {
	pid int
	err error
}

// Lister supplies the records shown on screen.
type Lister interface {
	List(q ports.Query) ([]model.PortRecord, error)
}

// AncestryLookup explains a single process.
type AncestryLookup interface {
	Get(pid int, name string) (model.ProcessAncestry, bool)
}

// Options configures the dashboard.
type Options struct {
	Lister      Lister
	Ancestry    AncestryLookup
	Kill        func(pid int) error
	Connections bool
	Protocol    model.Protocol
	Sort        ports.SortField
	Interval    time.Duration
	Clock       clock.Clock
	Color       bool
}

var sortOrder = []ports.SortField{ports.SortPort, ports.SortPID, ports.SortName}

type tuiModel struct {
	opts  Options
	clock clock.Clock

	mode        viewMode
	table       table.Model
	filterInput textinput.Model
	filtering   bool

	records   []model.PortRecord
	visible   []model.PortRecord
	firstSeen map[model.RecordKey]time.Time
	loaded    bool

	sort     ports.SortField
	sortDesc bool
	paused   bool

	// fetchSeq numbers the latest fetch; only its reply is applied.
	fetchSeq int
	fetching bool

	confirmingKill bool
	killTarget     model.PortRecord
	detailPID      int
	detail         *model.WhyResult

	message     string
	messageTime time.Time
	err         error
	width       int
	height      int
}

func newModel(opts Options) tuiModel {
	if opts.Interval <= 0 {
		opts.Interval = time.Second
	}
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	if opts.Sort == ports.SortNone {
		opts.Sort = ports.SortPort
	}

	ti := textinput.New()
	ti.Placeholder = "port or process..."
	ti.CharLimit = 50
	ti.Width = 30

	m := tuiModel{
		opts:        opts,
		clock:       opts.Clock,
		filterInput: ti,
		firstSeen:   make(map[model.RecordKey]time.Time),
		sort:        opts.Sort,
	}
	if opts.Connections {
		m.mode = viewConnections
	}
	m.initTable()
	return m
}

func sortColumn(f ports.SortField) string {
	switch f {
	case ports.SortPID:
		return "PID"
	case ports.SortName:
		return "PROCESS"
	}
	return "PORT"
}

func (m *tuiModel) initTable() {
	columns := []table.Column{
		{Title: "", Width: 1},
		{Title: "PROTO", Width: 6},
		{Title: "PORT", Width: 7},
		{Title: "PID", Width: 8},
		{Title: "ADDRESS", Width: 24},
	}
	if m.mode == viewConnections {
		columns = append(columns, table.Column{Title: "REMOTE", Width: 24})
	}
	columns = append(columns,
		table.Column{Title: "SERVICE", Width: 10},
		table.Column{Title: "PROCESS", Width: 32},
	)

	indicator := " ↑"
	if m.sortDesc {
		indicator = " ↓"
	}
	for i := range columns {
		if columns[i].Title == sortColumn(m.sort) {
			columns[i].Title += indicator
		}
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(m.tableHeight()),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(true)
	t.SetStyles(s)

	m.table = t
	m.updateRows()
}

func (m tuiModel) tableHeight() int {
	return max(m.height-14, 5)
}

func (m tuiModel) Init() tea.Cmd {
	return tea.Batch(m.tick(), func() tea.Msg { return refreshMsg{} })
}

func (m tuiModel) tick() tea.Cmd {
	return tea.Tick(m.opts.Interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// refreshData starts a fetch off the UI loop. Replies carry the sequence
// number they were issued with; anything older than the latest fetch is
// dropped.
func (m *tuiModel) refreshData() tea.Cmd {
	if m.paused || m.opts.Lister == nil {
		return nil
	}
	m.fetchSeq++
	m.fetching = true
	mode, seq := m.mode, m.fetchSeq
	lister := m.opts.Lister
	q := ports.Query{Filter: mode.filter(), Protocol: m.opts.Protocol}
	return func() tea.Msg {
		records, err := lister.List(q)
		if err != nil {
			return errMsg{mode: mode, seq: seq, err: err}
		}
		return recordsMsg{mode: mode, seq: seq, records: records}
	}
}

func (m tuiModel) current(mode viewMode, seq int) bool {
	return mode == m.mode && seq == m.fetchSeq
}

func (m tuiModel) detailCmd(r model.PortRecord) tea.Cmd {
	lookup := m.opts.Ancestry
	labels := target.PortLabels(m.records, r.PID)
	return func() tea.Msg {
		res := model.WhyResult{PID: r.PID, ProcessName: r.DisplayName(), Ports: labels}
		if lookup != nil {
			if a, ok := lookup.Get(r.PID, r.ProcessName); ok && a.PID() == r.PID {
				res.Ancestry = &a
			}
		}
		return detailMsg{result: res}
	}
}

func (m tuiModel) killCmd(pid int) tea.Cmd {
	kill := m.opts.Kill
	return func() tea.Msg {
		if kill == nil {
			return killedMsg{pid: pid, err: errNoKill}
		}
		return killedMsg{pid: pid, err: kill(pid)}
	}
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tickMsg:
		// a slow source skips ticks instead of queueing fetches
		if m.fetching {
			return m, m.tick()
		}
		cmd = m.refreshData()
		return m, tea.Batch(m.tick(), cmd)
	case refreshMsg:
		cmd = m.refreshData()
		return m, cmd
	case recordsMsg:
		if m.current(msg.mode, msg.seq) {
			m.fetching = false
			m.setRecords(msg.records)
		}
		return m, nil
	case errMsg:
		if m.current(msg.mode, msg.seq) {
			m.fetching = false
			m.err = msg.err
		}
		return m, nil
	case detailMsg:
		if msg.result.PID == m.detailPID {
			res := msg.result
			m.detail = &res
		}
		return m, nil
	case killedMsg:
		if msg.err != nil {
			m.setMessage(fmt.Sprintf("Failed to kill PID %d: %v", msg.pid, msg.err))
		} else {
			m.setMessage(fmt.Sprintf("Killed PID %d", msg.pid))
		}
		cmd = m.refreshData()
		return m, cmd
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table.SetHeight(m.tableHeight())
		return m, nil
	}

	if key, ok := msg.(tea.KeyMsg); ok {
		if m.confirmingKill {
			m.confirmingKill = false
			switch key.String() {
			case "y", "Y":
				return m, m.killCmd(m.killTarget.PID)
			}
			return m, nil
		}

		if m.filtering {
			switch key.String() {
			case "enter", "esc":
				m.filtering = false
				m.filterInput.Blur()
				m.updateRows()
				return m, nil
			}
			m.filterInput, cmd = m.filterInput.Update(msg)
			m.updateRows()
			return m, cmd
		}

		if m.detailPID != 0 {
			m.detailPID = 0
			m.detail = nil
			return m, nil
		}

		switch key.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "esc":
			m.filterInput.SetValue("")
			m.updateRows()
			return m, nil
		case "tab", "1", "2":
			next := viewListening
			switch key.String() {
			case "tab":
				if m.mode == viewListening {
					next = viewConnections
				}
			case "2":
				next = viewConnections
			}
			if next != m.mode {
				m.mode = next
				m.records = nil
				m.firstSeen = make(map[model.RecordKey]time.Time)
				m.loaded = false
				m.err = nil
				m.initTable()
			}
			cmd = m.refreshData()
			return m, cmd
		case "p":
			m.paused = !m.paused
			return m, nil
		case "/":
			m.filtering = true
			m.filterInput.Focus()
			return m, nil
		case "s":
			i := lo.IndexOf(sortOrder, m.sort)
			m.sort = sortOrder[(i+1)%len(sortOrder)]
			m.sortDesc = false
			m.initTable()
			return m, nil
		case "r":
			m.sortDesc = !m.sortDesc
			m.initTable()
			return m, nil
		case "x":
			if r, ok := m.selected(); ok {
				m.confirmingKill = true
				m.killTarget = r
			}
			return m, nil
		case "enter":
			if r, ok := m.selected(); ok {
				m.detailPID = r.PID
				m.detail = nil
				return m, m.detailCmd(r)
			}
			return m, nil
		}
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *tuiModel) setMessage(s string) {
	m.message = s
	m.messageTime = m.clock.Now()
}

// setRecords replaces the data set. Records present on the first load are
// not marked as new.
func (m *tuiModel) setRecords(records []model.PortRecord) {
	now := m.clock.Now()
	seen := make(map[model.RecordKey]time.Time, len(records))
	for _, r := range records {
		k := r.Key()
		switch t, ok := m.firstSeen[k]; {
		case ok:
			seen[k] = t
		case m.loaded:
			seen[k] = now
		default:
			seen[k] = time.Time{}
		}
	}
	m.firstSeen = seen
	m.loaded = true
	m.records = records
	m.err = nil
	m.updateRows()
}

func (m tuiModel) isNew(r model.PortRecord) bool {
	t := m.firstSeen[r.Key()]
	return !t.IsZero() && m.clock.Since(t) < NewWindow
}

func (m tuiModel) selected() (model.PortRecord, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.visible) {
		return model.PortRecord{}, false
	}
	return m.visible[i], true
}

func (m *tuiModel) updateRows() {
	visible, err := ports.FilterQuery(m.records, strings.TrimSpace(m.filterInput.Value()), false)
	if err != nil {
		visible = nil
	}
	visible = append([]model.PortRecord(nil), visible...)
	ports.Sort(visible, m.sort)
	if m.sortDesc {
		lo.Reverse(visible)
	}

	rows := make([]table.Row, 0, len(visible))
	for _, r := range visible {
		rows = append(rows, m.row(r))
	}
	m.visible = visible
	m.table.SetRows(rows)
}

func (m tuiModel) row(r model.PortRecord) table.Row {
	marker := " "
	if m.isNew(r) {
		marker = "+"
	}
	name := r.ProcessName
	if r.Container != "" {
		name = fmt.Sprintf("%s (%s)", r.ProcessName, r.Container)
	}
	row := table.Row{
		marker,
		string(r.Protocol),
		strconv.Itoa(int(r.Port)),
		strconv.Itoa(r.PID),
		output.SanitizeCell(r.Address),
	}
	if m.mode == viewConnections {
		row = append(row, output.SanitizeCell(lo.Ternary(r.RemoteAddress == "", "-", r.RemoteAddress)))
	}
	return append(row,
		lo.Ternary(r.ServiceName == "", "-", r.ServiceName),
		output.SanitizeCell(name),
	)
}

func (m tuiModel) View() string {
	var b strings.Builder

	title := fmt.Sprintf("ports top - %s (%d entries, sorted by %s)", m.mode, len(m.visible), m.sort)
	if m.paused {
		title += " (PAUSED)"
	}
	b.WriteString(titleStyle.Render(title) + "\n")

	tcp := lo.CountBy(m.visible, func(r model.PortRecord) bool { return r.Protocol == model.TCP })
	procs := len(lo.UniqBy(m.visible, func(r model.PortRecord) int { return r.PID }))
	stats := fmt.Sprintf("TCP: %d  UDP: %d  Processes: %d", tcp, len(m.visible)-tcp, procs)
	b.WriteString(mutedStyle.Render(stats) + "\n\n")

	tabs := []string{"[1] Listening", "[2] Connections"}
	for i, t := range tabs {
		style := lipgloss.NewStyle().Padding(0, 1)
		if int(m.mode) == i {
			style = style.Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57")).Bold(true)
		} else {
			style = style.Foreground(lipgloss.Color("240"))
		}
		b.WriteString(style.Render(t) + " ")
	}
	b.WriteString("\n\n")

	if m.filtering {
		b.WriteString(titleStyle.Render(" / ") + m.filterInput.View() + "\n")
	} else if m.filterInput.Value() != "" {
		b.WriteString(mutedStyle.Render(" Filter: "+output.SanitizeCell(m.filterInput.Value())) + "\n")
	} else {
		b.WriteString("\n")
	}

	if m.err != nil {
		b.WriteString(errStyle.Render(" Error: "+output.SanitizeCell(m.err.Error())) + "\n")
	}

	b.WriteString(baseStyle.Render(m.table.View()) + "\n")
	if m.loaded && len(m.visible) == 0 {
		b.WriteString(mutedStyle.Render(" No "+strings.ToLower(m.mode.String())+" ports found") + "\n")
	}

	if m.message != "" && m.clock.Since(m.messageTime) < messageTTL {
		b.WriteString("\n" + lipgloss.NewStyle().
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57")).
			Padding(0, 1).
			Render(output.SanitizeCell(m.message)) + "\n")
	}

	if m.confirmingKill {
		r := m.killTarget
		prompt := fmt.Sprintf(" Kill %s (PID %d) on port %d? [y/n] ", output.SanitizeCell(r.DisplayName()), r.PID, r.Port)
		b.WriteString("\n" + lipgloss.NewStyle().
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("160")).
			Bold(true).
			Padding(0, 1).
			Render(prompt) + "\n")
	}

	if m.detailPID != 0 && !m.confirmingKill {
		var body string
		if m.detail == nil {
			body = fmt.Sprintf("Resolving PID %d...", m.detailPID)
		} else {
			var sb strings.Builder
			output.RenderWhy(&sb, []model.WhyResult{*m.detail}, output.WhyOptions{Color: m.opts.Color, Tree: true})
			body = strings.TrimRight(sb.String(), "\n")
		}
		b.WriteString("\n" + detailStyle.Render(body) + "\n")
	}

	help := "\n  q: quit • tab/1-2: view • /: filter • s: sort • r: reverse • p: pause • x: kill • enter: details"
	if m.detailPID != 0 {
		help = "\n  any key: close details"
	}
	b.WriteString(mutedStyle.Render(help) + "\n")

	return b.String()
}

// Run starts the dashboard on the alternate screen and blocks until the
// user quits.
func Run(opts Options) error {
	p := tea.NewProgram(newModel(opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
