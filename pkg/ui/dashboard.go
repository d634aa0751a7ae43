package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"afdscraper/pkg/catalog"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	minBarWidth = 10
	maxBarWidth = 60
)

// Message types for the dashboard
type (
	catalogListedMsg struct{ total int }

	postExportedMsg struct{ path string }

	postSkippedMsg struct{}

	postFailedMsg struct{ ref catalog.PostRef }

	exportDoneMsg struct{}
)

// DashboardModel shows a progress bar over the posts of one album
type DashboardModel struct {
	albumID  string
	total    int
	exported int
	skipped  int
	failed   int
	last     string
	finished bool

	spinner spinner.Model
	bar     progress.Model
}

// NewDashboardModel creates the model for albumID
func NewDashboardModel(albumID string) DashboardModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle

	return DashboardModel{
		albumID: albumID,
		spinner: s,
		bar:     progress.New(progress.WithGradient(barStartColor, barEndColor), progress.WithWidth(40)),
	}
}

// Init starts the spinner
func (m DashboardModel) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles all messages and updates the model
func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		width := msg.Width - 20
		if width > maxBarWidth {
			width = maxBarWidth
		}
		if width < minBarWidth {
			width = minBarWidth
		}
		m.bar.Width = width
		return m, nil

	case spinner.TickMsg:
		if m.finished {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case catalogListedMsg:
		m.total = msg.total

	case postExportedMsg:
		m.exported++
		m.last = msg.path

	case postSkippedMsg:
		m.skipped++

	case postFailedMsg:
		m.failed++
		m.last = fmt.Sprintf("failed: %s (%s)", msg.ref.Title, msg.ref.ID)

	case exportDoneMsg:
		m.finished = true
		return m, tea.Quit
	}
	return m, nil
}

// Done returns how many posts have been handled
func (m DashboardModel) Done() int {
	return m.exported + m.skipped + m.failed
}

// Percent returns the handled share of the catalog, from 0 to 1
func (m DashboardModel) Percent() float64 {
	if m.total == 0 {
		return 0
	}
	return float64(m.Done()) / float64(m.total)
}

// View renders the album line, the bar and the latest file
func (m DashboardModel) View() string {
	var b strings.Builder

	icon := m.spinner.View()
	if m.finished {
		icon = render(successStyle, "✓")
	}
	fmt.Fprintf(&b, "%s %s %s\n", icon, render(labelStyle, "Album"), render(valueStyle, m.albumID))
	fmt.Fprintf(&b, "%s %d/%d\n", m.bar.ViewAs(m.Percent()), m.Done(), m.total)
	fmt.Fprintf(&b, "%s\n", render(dimStyle,
		fmt.Sprintf("%d exported, %d skipped, %d failed", m.exported, m.skipped, m.failed)))
	if m.last != "" {
		fmt.Fprintf(&b, "%s\n", render(dimStyle, m.last))
	}
	return b.String()
}

// Dashboard runs DashboardModel as a bubbletea program and is fed by the
// export run's progress events. The program starts with the first event, so
// a credential prompt before the catalog is listed keeps the terminal.
type Dashboard struct {
	model   DashboardModel
	opts    []tea.ProgramOption
	once    sync.Once
	program *tea.Program
	done    chan struct{}
	err     error
}

// NewDashboard creates a dashboard that renders to out
func NewDashboard(albumID string, out io.Writer) *Dashboard {
	return &Dashboard{
		model: NewDashboardModel(albumID),
		opts: []tea.ProgramOption{
			tea.WithOutput(out),
			tea.WithInput(nil),
			tea.WithoutSignalHandler(),
		},
		done: make(chan struct{}),
	}
}

func (d *Dashboard) start() {
	d.once.Do(func() {
		d.program = tea.NewProgram(d.model, d.opts...)
		go func() {
			defer close(d.done)
			_, d.err = d.program.Run()
		}()
	})
}

func (d *Dashboard) send(msg tea.Msg) {
	d.start()
	d.program.Send(msg)
}

// CatalogListed starts the program and sets the bar's total
func (d *Dashboard) CatalogListed(total int) {
	d.send(catalogListedMsg{total: total})
}

// PostExported advances the bar and shows path
func (d *Dashboard) PostExported(ref catalog.PostRef, path string) {
	d.send(postExportedMsg{path: path})
}

// PostSkipped advances the bar
func (d *Dashboard) PostSkipped(ref catalog.PostRef) {
	d.send(postSkippedMsg{})
}

// PostFailed advances the bar and names the failed post
func (d *Dashboard) PostFailed(ref catalog.PostRef, err error) {
	d.send(postFailedMsg{ref: ref})
}

// Stop renders the final frame and waits for the program to exit. It is a
// no-op when no event was ever sent.
func (d *Dashboard) Stop() error {
	if d.program == nil {
		return nil
	}
	d.program.Send(exportDoneMsg{})
	<-d.done
	return d.err
}
