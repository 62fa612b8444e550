// Package tui is the live terminal view of a running screenwall daemon.
package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/screenwall/internal/ipc"
	"github.com/1broseidon/screenwall/internal/matrix"
)

// DefaultRefresh is how often the view polls the daemon.
const DefaultRefresh = time.Second

// Daemon is the part of the IPC client the view uses.
type Daemon interface {
	GetStatus() (*ipc.StatusData, error)
	GetMatrices() (*ipc.MatricesData, error)
	StopPoll() (*ipc.PollData, error)
	CloseAll() error
}

var _ Daemon = (*ipc.Client)(nil)

type refreshMsg struct {
	status   *ipc.StatusData
	matrices []matrix.Matrix
	err      error
}

type tickMsg time.Time

type actionMsg struct {
	what string
	err  error
}

// model is the root bubbletea model for the watch view.
type model struct {
	daemon  Daemon
	refresh time.Duration

	activeTab Tab

	connected bool
	status    ipc.StatusData
	matrices  []matrix.Matrix
	lastErr   string
	notice    string
	updated   time.Time

	width  int
	height int
}

func newModel(daemon Daemon, refresh time.Duration) model {
	if refresh <= 0 {
		refresh = DefaultRefresh
	}
	return model{
		daemon:    daemon,
		refresh:   refresh,
		activeTab: TabWall,
	}
}

func (m model) fetch() tea.Cmd {
	d := m.daemon
	return func() tea.Msg {
		st, err := d.GetStatus()
		if err != nil {
			return refreshMsg{err: err}
		}
		data, err := d.GetMatrices()
		if err != nil {
			return refreshMsg{err: err}
		}
		return refreshMsg{status: st, matrices: data.Matrices}
	}
}

func (m model) tick() tea.Cmd {
	return tea.Tick(m.refresh, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m model) act(what string, fn func() error) tea.Cmd {
	return func() tea.Msg {
		return actionMsg{what: what, err: fn()}
	}
}

// Init implements tea.Model.
func (m model) Init() tea.Cmd {
	return tea.Batch(m.fetch(), m.tick())
}

// Update implements tea.Model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "tab":
			m.activeTab = (m.activeTab + 1) % tabCount
		case "shift+tab":
			m.activeTab = (m.activeTab - 1 + tabCount) % tabCount
		case "1":
			m.activeTab = TabWall
		case "2":
			m.activeTab = TabMatrices
		case "3":
			m.activeTab = TabPoll
		case "r":
			return m, m.fetch()
		case "s":
			d := m.daemon
			return m, m.act("poll stopped", func() error {
				_, err := d.StopPoll()
				return err
			})
		case "c":
			return m, m.act("windows closed", m.daemon.CloseAll)
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		return m, tea.Batch(m.fetch(), m.tick())

	case refreshMsg:
		if msg.err != nil {
			m.connected = false
			m.lastErr = msg.err.Error()
			return m, nil
		}
		m.connected = true
		m.lastErr = ""
		m.status = *msg.status
		m.matrices = msg.matrices
		m.updated = time.Now()
		return m, nil

	case actionMsg:
		if msg.err != nil {
			m.lastErr = msg.err.Error()
			return m, nil
		}
		m.notice = msg.what
		return m, m.fetch()
	}
	return m, nil
}

// View implements tea.Model.
func (m model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	statusBar := renderStatusBar(m.connected, len(m.status.Windows), m.status.Poll.State, m.width)
	tabBar := renderTabBar(m.activeTab, m.width)
	helpBar := renderHelpBar(m.width)

	var footer string
	switch {
	case m.lastErr != "":
		footer = errorStyle.Render(" " + m.lastErr)
	case m.notice != "":
		footer = dimStyle.Render(" " + m.notice)
	}

	used := lipgloss.Height(statusBar) + lipgloss.Height(tabBar) + lipgloss.Height(helpBar)
	if footer != "" {
		used += lipgloss.Height(footer)
	}
	contentHeight := max(m.height-used, 1)

	var content string
	switch m.activeTab {
	case TabWall:
		content = m.viewWall(contentHeight)
	case TabMatrices:
		content = m.viewMatrices()
	case TabPoll:
		content = m.viewPoll()
	}
	content = lipgloss.NewStyle().Width(m.width).Height(contentHeight).MaxHeight(contentHeight).Render(content)

	parts := []string{statusBar, tabBar, content}
	if footer != "" {
		parts = append(parts, footer)
	}
	parts = append(parts, helpBar)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m model) viewWall(height int) string {
	summary := summarizeWall(m.matrices)
	lines := renderWallPreview(m.matrices, m.width, max(height-1, 0))
	return dimStyle.Render(summary) + "\n" + strings.Join(lines, "\n")
}

func (m model) viewMatrices() string {
	if len(m.matrices) == 0 {
		return dimStyle.Render("no matrices")
	}
	var sb strings.Builder
	for _, mx := range m.matrices {
		flags := []string{}
		if mx.IsPrimary {
			flags = append(flags, "primary")
		}
		if mx.IsInternal {
			flags = append(flags, "internal")
		}
		fmt.Fprintf(&sb, "%s  %s\n", labelStyle.Render(mx.ID), dimStyle.Render(strings.Join(flags, ",")))
		fmt.Fprintf(&sb, "  fixing %d,%d  avail %dx%d+%d+%d  grid %s\n",
			mx.FixingLeft, mx.FixingTop,
			mx.AvailWidth, mx.AvailHeight, mx.AvailLeft, mx.AvailTop,
			mx.Grid.Template.String())
		for _, c := range mx.Grid.List {
			data := c.DataID
			if data == "" {
				data = dimStyle.Render("-")
			}
			fmt.Fprintf(&sb, "    %-3s %s\n", c.GridID, data)
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

func (m model) viewPoll() string {
	p := m.status.Poll
	rows := [][2]string{
		{"state", p.State},
		{"interval", p.Interval.String()},
		{"cursor", fmt.Sprintf("%d/%d", p.Cursor, p.DataLen)},
		{"capacity", itoa(p.Capacity)},
		{"ticks", itoa(p.Ticks)},
		{"last batch", strings.Join(p.LastBatch, " ")},
		{"windows", strings.Join(m.status.Windows, " ")},
		{"close sticky", strconv.FormatBool(m.status.CloseSticky)},
		{"storage", m.status.StorageBackend + ":" + m.status.StorageKey},
	}
	var sb strings.Builder
	for _, r := range rows {
		fmt.Fprintf(&sb, "%s %s\n", labelStyle.Render(fmt.Sprintf("%-13s", r[0])), r[1])
	}
	if !m.updated.IsZero() {
		sb.WriteString(dimStyle.Render("updated " + m.updated.Format("15:04:05")))
	}
	return sb.String()
}

func itoa(n int) string { return strconv.Itoa(n) }

// Run starts the watch view, refreshing from daemon every refresh interval.
func Run(daemon Daemon, refresh time.Duration) error {
	p := tea.NewProgram(newModel(daemon, refresh), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
