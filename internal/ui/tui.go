package ui

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/qfs-dev/qfs/internal/store"
)

// TUIRenderer renders a live bubbletea status dashboard.
type TUIRenderer struct {
	mu      sync.Mutex
	cfg     Config
	source  StatusSource
	busy    BusyFunc
	program *tea.Program
	started bool
	done    chan struct{}
}

// NewTUIRenderer creates a TUI renderer. Returns an error if the output is
// not a TTY.
func NewTUIRenderer(source StatusSource, busy BusyFunc, cfg Config) (*TUIRenderer, error) {
	if !IsTTY(cfg.Output) {
		return nil, fmt.Errorf("output is not a TTY")
	}
	return &TUIRenderer{
		cfg:    cfg,
		source: source,
		busy:   busy,
		done:   make(chan struct{}),
	}, nil
}

// Start implements Renderer.
func (r *TUIRenderer) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.started {
		return nil
	}

	styles := DefaultStyles()
	if r.cfg.NoColor || DetectNoColor() {
		styles = NoColorStyles()
	}

	model := newDashboardModel(r.source, r.busy, r.cfg.RefreshInterval, styles)

	var opts []tea.ProgramOption
	if f, ok := r.cfg.Output.(*os.File); ok {
		opts = append(opts, tea.WithOutput(f))
	}
	opts = append(opts, tea.WithContext(ctx))

	r.program = tea.NewProgram(model, opts...)
	r.started = true

	go func() {
		defer close(r.done)
		_, _ = r.program.Run()
	}()

	return nil
}

// Stop implements Renderer.
func (r *TUIRenderer) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.program != nil {
		r.program.Quit()
		select {
		case <-r.done:
		case <-time.After(2 * time.Second):
		}
	}
	return nil
}

type tickMsg time.Time

type snapshotMsg Snapshot

// dashboardModel is the bubbletea model for the status dashboard.
type dashboardModel struct {
	source   StatusSource
	busy     BusyFunc
	interval time.Duration
	styles   Styles
	spinner  spinner.Model
	snapshot Snapshot
	quitting bool
	width    int
}

func newDashboardModel(source StatusSource, busy BusyFunc, interval time.Duration, styles Styles) *dashboardModel {
	if interval <= 0 {
		interval = time.Second
	}
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorLime))

	return &dashboardModel{
		source:   source,
		busy:     busy,
		interval: interval,
		styles:   styles,
		spinner:  s,
		width:    80,
	}
}

func (m *dashboardModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.poll(), tickCmd(m.interval))
}

func tickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m *dashboardModel) poll() tea.Cmd {
	return func() tea.Msg {
		snap := Snapshot{UpdatedAt: time.Now()}
		if m.busy != nil {
			snap.Busy = m.busy()
		}
		status, err := m.source.GetStatus(context.Background())
		snap.Status = status
		snap.Err = err
		return snapshotMsg(snap)
	}
}

func (m *dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width

	case tickMsg:
		return m, tea.Batch(m.poll(), tickCmd(m.interval))

	case snapshotMsg:
		m.snapshot = Snapshot(msg)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *dashboardModel) View() string {
	if m.quitting {
		return ""
	}

	contentWidth := m.width - 4
	if contentWidth < 40 {
		contentWidth = 40
	}

	var lines []string
	lines = append(lines, m.renderHeader())
	lines = append(lines, "")

	if m.snapshot.Err != nil {
		lines = append(lines, m.styles.Error.Render(fmt.Sprintf("status error: %v", m.snapshot.Err)))
	} else if m.snapshot.Status != nil {
		lines = append(lines, m.renderTable(m.snapshot.Status)...)
	} else {
		lines = append(lines, m.styles.Dim.Render("loading..."))
	}

	content := strings.Join(lines, "\n")
	panel := m.styles.Panel.Width(contentWidth).Render(content)

	return panel + "\n" + m.styles.Dim.Render("q to quit")
}

func (m *dashboardModel) renderHeader() string {
	title := "qfs status"
	if m.snapshot.Busy {
		title = fmt.Sprintf("%s %s indexing...", m.spinner.View(), title)
	}
	return m.styles.Header.Render(title)
}

func (m *dashboardModel) renderTable(status *store.Status) []string {
	label := m.styles.Label
	active := m.styles.Active

	lines := []string{
		fmt.Sprintf("%s %s", label.Render("Schema version:"), active.Render(fmt.Sprintf("%d", status.SchemaVersion))),
		fmt.Sprintf("%s    %s", label.Render("Documents:"), active.Render(fmt.Sprintf("%d", status.Documents))),
		fmt.Sprintf("%s   %s", label.Render("Embeddings:"), active.Render(fmt.Sprintf("%d", status.Embeddings))),
		"",
		label.Render(fmt.Sprintf("Collections (%d):", len(status.Collections))),
	}

	if len(status.Collections) == 0 {
		lines = append(lines, m.styles.Dim.Render("  (none registered)"))
	}
	for _, c := range status.Collections {
		lines = append(lines, "  "+active.Render(c))
	}

	return lines
}
