package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pithecene-io/webpify/download"
	"github.com/pithecene-io/webpify/types"
)

// Downloader is the part of a session the browser drives.
type Downloader interface {
	Results() []types.ConvertedResult
	Download(ctx context.Context, index int) (download.Saved, error)
	DownloadAll(ctx context.Context) (download.Saved, error)
}

type keyMap struct {
	Up          key.Binding
	Down        key.Binding
	Download    key.Binding
	DownloadAll key.Binding
	Quit        key.Binding
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Download, k.DownloadAll, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

var keys = keyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	Download: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "download"),
	),
	DownloadAll: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "download all"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// savedMsg reports a finished download.
type savedMsg struct {
	saved download.Saved
	err   error
}

// ResultsModel is a Bubble Tea model listing converted results.
type ResultsModel struct {
	ctx      context.Context
	d        Downloader
	results  []types.ConvertedResult
	cursor   int
	busy     bool
	status   string
	failed   bool
	help     help.Model
	quitting bool
}

// NewResultsModel creates a browser over d's current results.
func NewResultsModel(ctx context.Context, d Downloader) ResultsModel {
	return ResultsModel{
		ctx:     ctx,
		d:       d,
		results: d.Results(),
		help:    help.New(),
	}
}

// Init implements tea.Model.
func (m ResultsModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m ResultsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil

	case savedMsg:
		m.busy = false
		if msg.err != nil {
			m.failed = true
			m.status = "download failed: " + msg.err.Error()
			return m, nil
		}
		m.failed = false
		m.status = "saved " + msg.saved.Location
		if n := len(msg.saved.Skipped); n > 0 {
			m.status += fmt.Sprintf(" (%d skipped)", n)
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, keys.Down):
			if m.cursor < len(m.results)-1 {
				m.cursor++
			}
		case key.Matches(msg, keys.Download):
			if m.busy || len(m.results) == 0 {
				return m, nil
			}
			m.busy = true
			m.status = "saving " + m.results[m.cursor].Name + "..."
			return m, m.downloadOne(m.cursor)
		case key.Matches(msg, keys.DownloadAll):
			if m.busy || len(m.results) == 0 {
				return m, nil
			}
			m.busy = true
			m.status = "saving all..."
			return m, m.downloadAll()
		}
	}

	return m, nil
}

func (m ResultsModel) downloadOne(i int) tea.Cmd {
	ctx, d := m.ctx, m.d
	return func() tea.Msg {
		saved, err := d.Download(ctx, i)
		return savedMsg{saved: saved, err: err}
	}
}

func (m ResultsModel) downloadAll() tea.Cmd {
	ctx, d := m.ctx, m.d
	return func() tea.Msg {
		saved, err := d.DownloadAll(ctx)
		return savedMsg{saved: saved, err: err}
	}
}

// View implements tea.Model.
func (m ResultsModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render(fmt.Sprintf("Converted results (%d)", len(m.results))))
	b.WriteString("\n")

	if len(m.results) == 0 {
		b.WriteString(MutedStyle.Render("no results"))
	}
	for i, r := range m.results {
		line := fmt.Sprintf("%s  %s", r.Name, MutedStyle.Render(FormatSize(r.SizeBytes)))
		if r.IsBundle {
			line += " " + WarningStyle.Render("[zip]")
		}
		if i == m.cursor {
			b.WriteString(CursorStyle.Render("> " + line))
		} else {
			b.WriteString(RowStyle.Render(line))
		}
		b.WriteString("\n")
	}

	out := BoxStyle.Render(strings.TrimRight(b.String(), "\n"))
	if m.status != "" {
		style := SuccessStyle
		switch {
		case m.failed:
			style = ErrorStyle
		case m.busy:
			style = WarningStyle
		}
		out += "\n" + style.Render(m.status)
	}
	return out + "\n" + m.help.View(keys)
}

// Status returns the status line text.
func (m ResultsModel) Status() string { return m.status }

// Cursor returns the focused row.
func (m ResultsModel) Cursor() int { return m.cursor }

// FormatSize renders a byte count for display.
func FormatSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

// Run opens the results browser and blocks until the user quits.
func Run(ctx context.Context, d Downloader) error {
	p := tea.NewProgram(NewResultsModel(ctx, d), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
