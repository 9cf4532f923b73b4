package tui

import (
	"errors"
	"sync"
	"testing"

	"github.com/benbjohnson/clock"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pranshuparmar/ports/internal/ports"
	"github.com/pranshuparmar/ports/internal/proc"
	"github.com/pranshuparmar/ports/pkg/model"
)

type fakeLister struct {
	mu      sync.Mutex
	queries []ports.Query
	records map[proc.Filter][]model.PortRecord
}

func (f *fakeLister) List(q ports.Query) ([]model.PortRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)
	return f.records[q.Filter], nil
}

type fakeAncestry map[int]model.ProcessAncestry

func (f fakeAncestry) Get(pid int, _ string) (model.ProcessAncestry, bool) {
	a, ok := f[pid]
	return a, ok
}

var fixture = []model.PortRecord{
	{Port: 80, Protocol: model.TCP, PID: 500, ProcessName: "nginx", Address: "0.0.0.0:80", ServiceName: "http"},
	{Port: 22, Protocol: model.TCP, PID: 77, ProcessName: "sshd", Address: "0.0.0.0:22", ServiceName: "ssh"},
	{Port: 53, Protocol: model.UDP, PID: 900, ProcessName: "dnsmasq", Address: "127.0.0.1:53", ServiceName: "dns"},
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m tuiModel, msg tea.Msg) (tuiModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	out, ok := next.(tuiModel)
	require.True(t, ok)
	return out, cmd
}

func loaded(t *testing.T, opts Options) tuiModel {
	t.Helper()
	m := newModel(opts)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 160, Height: 40})
	m, _ = update(t, m, recordsMsg{mode: viewListening, records: fixture})
	return m
}

func pids(records []model.PortRecord) []int {
	out := make([]int, len(records))
	for i, r := range records {
		out[i] = r.PID
	}
	return out
}

func TestNewRecordsAreMarked(t *testing.T) {
	t.Parallel()

	mock := clock.NewMock()
	m := newModel(Options{Clock: mock})
	m, _ = update(t, m, recordsMsg{mode: viewListening, records: fixture[:2]})
	for _, row := range m.table.Rows() {
		assert.Equal(t, " ", row[0], "first load is not highlighted")
	}

	m, _ = update(t, m, recordsMsg{mode: viewListening, records: fixture})
	rows := m.table.Rows()
	require.Len(t, rows, 3)
	assert.Equal(t, []int{77, 900, 500}, pids(m.visible))
	assert.Equal(t, " ", rows[0][0])
	assert.Equal(t, "+", rows[1][0])
	assert.Equal(t, " ", rows[2][0])

	mock.Add(NewWindow)
	m.updateRows()
	assert.Equal(t, " ", m.table.Rows()[1][0])
}

func TestSortKeys(t *testing.T) {
	t.Parallel()

	m := loaded(t, Options{Clock: clock.NewMock()})
	assert.Equal(t, []int{77, 900, 500}, pids(m.visible))

	m, _ = update(t, m, keyMsg("s"))
	assert.Equal(t, ports.SortPID, m.sort)
	assert.Equal(t, []int{77, 500, 900}, pids(m.visible))

	m, _ = update(t, m, keyMsg("r"))
	assert.Equal(t, []int{900, 500, 77}, pids(m.visible))

	m, _ = update(t, m, keyMsg("s"))
	assert.Equal(t, ports.SortName, m.sort)
	assert.False(t, m.sortDesc)
	assert.Equal(t, []int{900, 500, 77}, pids(m.visible))

	m, _ = update(t, m, keyMsg("s"))
	assert.Equal(t, ports.SortPort, m.sort)
}

func TestFilterInput(t *testing.T) {
	t.Parallel()

	m := loaded(t, Options{Clock: clock.NewMock()})
	m, _ = update(t, m, keyMsg("/"))
	require.True(t, m.filtering)
	m, _ = update(t, m, keyMsg("53"))
	m, _ = update(t, m, keyMsg("enter"))

	assert.False(t, m.filtering)
	assert.Equal(t, []int{900}, pids(m.visible))
	assert.Contains(t, m.View(), "Filter: 53")

	m, _ = update(t, m, keyMsg("esc"))
	assert.Len(t, m.visible, 3)
}

func TestTabSwitchesView(t *testing.T) {
	t.Parallel()

	conn := model.PortRecord{Port: 22, Protocol: model.TCP, PID: 77, ProcessName: "sshd", Address: "10.0.0.2:22", RemoteAddress: "10.0.0.9:51000"}
	l := &fakeLister{records: map[proc.Filter][]model.PortRecord{
		proc.FilterListening:   fixture,
		proc.FilterEstablished: {conn},
	}}
	m := loaded(t, Options{Lister: l, Clock: clock.NewMock()})

	m, cmd := update(t, m, keyMsg("tab"))
	require.NotNil(t, cmd)
	assert.Equal(t, viewConnections, m.mode)
	assert.Empty(t, m.records)

	msg := cmd()
	require.IsType(t, recordsMsg{}, msg)
	l.mu.Lock()
	assert.Equal(t, proc.FilterEstablished, l.queries[len(l.queries)-1].Filter)
	l.mu.Unlock()

	// A late listening answer must not land in the connections view.
	m, _ = update(t, m, recordsMsg{mode: viewListening, records: fixture})
	assert.Empty(t, m.records)

	m, _ = update(t, m, msg)
	require.Len(t, m.table.Rows(), 1)
	assert.Equal(t, "10.0.0.9:51000", m.table.Rows()[0][5])
	assert.Contains(t, m.View(), "CONNECTIONS")
}

func TestPauseStopsRefresh(t *testing.T) {
	t.Parallel()

	m := newModel(Options{Lister: &fakeLister{}, Clock: clock.NewMock()})
	require.NotNil(t, m.refreshData())

	m, _ = update(t, m, keyMsg("p"))
	assert.Nil(t, m.refreshData())
	assert.Contains(t, m.View(), "(PAUSED)")
}

func TestOlderReplyIsDropped(t *testing.T) {
	t.Parallel()

	l := &fakeLister{records: map[proc.Filter][]model.PortRecord{proc.FilterListening: fixture[:1]}}
	m := loaded(t, Options{Lister: l, Clock: clock.NewMock()})

	m, first := update(t, m, refreshMsg{})
	require.NotNil(t, first)
	older := first()

	l.mu.Lock()
	l.records[proc.FilterListening] = fixture
	l.mu.Unlock()
	m, second := update(t, m, refreshMsg{})
	require.NotNil(t, second)

	m, _ = update(t, m, second())
	assert.Len(t, m.records, 3)
	assert.False(t, m.fetching)

	m, _ = update(t, m, older)
	assert.Len(t, m.records, 3, "an older reply must not overwrite newer rows")
}

func TestTickSkipsFetchInFlight(t *testing.T) {
	t.Parallel()

	l := &fakeLister{}
	m := newModel(Options{Lister: l, Clock: clock.NewMock()})

	m, cmd := update(t, m, tickMsg{})
	require.NotNil(t, cmd)
	require.True(t, m.fetching)
	seq := m.fetchSeq

	m, cmd = update(t, m, tickMsg{})
	require.NotNil(t, cmd)
	assert.Equal(t, seq, m.fetchSeq, "no new fetch while one is outstanding")

	m, _ = update(t, m, recordsMsg{mode: viewListening, seq: seq, records: fixture})
	assert.False(t, m.fetching)
	assert.Len(t, m.records, 3)

	m, _ = update(t, m, tickMsg{})
	assert.Equal(t, seq+1, m.fetchSeq)
}

func TestErrorIsShown(t *testing.T) {
	t.Parallel()

	m := loaded(t, Options{Clock: clock.NewMock()})
	m, _ = update(t, m, errMsg{mode: viewListening, err: proc.ErrUnsupported})
	assert.Contains(t, m.View(), "Error: "+proc.ErrUnsupported.Error())

	m, _ = update(t, m, recordsMsg{mode: viewListening, records: fixture})
	assert.NotContains(t, m.View(), "Error:")
}

func TestViewHeader(t *testing.T) {
	t.Parallel()

	view := loaded(t, Options{Clock: clock.NewMock()}).View()
	assert.Contains(t, view, "ports top - LISTENING (3 entries, sorted by port)")
	assert.Contains(t, view, "TCP: 2  UDP: 1  Processes: 3")
	assert.Contains(t, view, "nginx")
}

func TestKill(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		confirm string
		killErr error
		killed  []int
		message string
	}{
		"confirmed": {
			confirm: "y",
			killed:  []int{77},
			message: "Killed PID 77",
		},
		"refused": {
			confirm: "n",
		},
		"any other key cancels": {
			confirm: "q",
		},
		"signal fails": {
			confirm: "y",
			killErr: errors.New("operation not permitted"),
			killed:  []int{77},
			message: "Failed to kill PID 77: operation not permitted",
		},
	}

	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			var killed []int
			m := loaded(t, Options{
				Clock: clock.NewMock(),
				Kill: func(pid int) error {
					killed = append(killed, pid)
					return tt.killErr
				},
			})

			m, _ = update(t, m, keyMsg("x"))
			require.True(t, m.confirmingKill)
			assert.Contains(t, m.View(), "Kill sshd (PID 77) on port 22?")

			m, cmd := update(t, m, keyMsg(tt.confirm))
			assert.False(t, m.confirmingKill)
			if tt.killed == nil {
				assert.Nil(t, cmd)
				assert.Empty(t, killed)
				return
			}

			require.NotNil(t, cmd)
			m, _ = update(t, m, cmd())
			assert.Equal(t, tt.killed, killed)
			assert.Contains(t, m.View(), tt.message)
		})
	}
}

func TestDetailPopup(t *testing.T) {
	t.Parallel()

	anc := fakeAncestry{77: {
		Chain:  []model.Ancestor{{PID: 77, Name: "sshd", PPID: 1}, {PID: 1, Name: "systemd"}},
		Source: model.SourceSystemd,
		Unit:   "ssh.service",
	}}
	m := loaded(t, Options{Clock: clock.NewMock(), Ancestry: anc})

	m, cmd := update(t, m, keyMsg("enter"))
	require.NotNil(t, cmd)
	assert.Equal(t, 77, m.detailPID)
	assert.Contains(t, m.View(), "Resolving PID 77")

	m, _ = update(t, m, cmd())
	require.NotNil(t, m.detail)
	view := m.View()
	assert.Contains(t, view, "Process: sshd (PID 77)")
	assert.Contains(t, view, "22/tcp")
	assert.Contains(t, view, "ssh.service")
	assert.Contains(t, view, "systemd (pid 1)")

	m, cmd = update(t, m, keyMsg("j"))
	assert.Nil(t, cmd)
	assert.Zero(t, m.detailPID)
	assert.Nil(t, m.detail)
}

func TestDetailPopupWithoutAncestry(t *testing.T) {
	t.Parallel()

	m := loaded(t, Options{Clock: clock.NewMock(), Ancestry: fakeAncestry{}})
	m, cmd := update(t, m, keyMsg("enter"))
	require.NotNil(t, cmd)
	m, _ = update(t, m, cmd())
	assert.Contains(t, m.View(), "ancestry unavailable")
}

func TestDetailPopupIgnoresMismatchedAncestry(t *testing.T) {
	t.Parallel()

	anc := fakeAncestry{77: {Chain: []model.Ancestor{{PID: 78, Name: "sshd", PPID: 1}, {PID: 1, Name: "systemd"}}}}
	m := loaded(t, Options{Clock: clock.NewMock(), Ancestry: anc})
	m, cmd := update(t, m, keyMsg("enter"))
	require.NotNil(t, cmd)
	m, _ = update(t, m, cmd())
	require.NotNil(t, m.detail)
	assert.Nil(t, m.detail.Ancestry)
	assert.Contains(t, m.View(), "ancestry unavailable")
}
