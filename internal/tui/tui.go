// Package tui provides a Bubble Tea terminal user interface for bing-wallpaper.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/santiagofdezg/bing-wallpaper/internal/config"
	"github.com/santiagofdezg/bing-wallpaper/internal/download"
	"github.com/santiagofdezg/bing-wallpaper/internal/model"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00A4EF")).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#95E1A3"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFE66D"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8DADC"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#00A4EF")).
			Padding(1, 2)

	fileStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F8B500"))
)

const maxLogLines = 10

var errCancelled = errors.New("cancelled by user")

// State represents the current UI state.
type State int

const (
	StateOptions State = iota
	StateEditingName
	StateDownloading
	StateComplete
	StateError
)

// LogEntry represents a log message in the UI.
type LogEntry struct {
	Message string
	Level   download.ProgressLevel
}

// logBuffer collects manager events from the download goroutine.
type logBuffer struct {
	mu      sync.Mutex
	entries []LogEntry
}

func (l *logBuffer) add(e LogEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, e)
	if len(l.entries) > maxLogLines {
		l.entries = l.entries[len(l.entries)-maxLogLines:]
	}
}

func (l *logBuffer) snapshot() []LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]LogEntry(nil), l.entries...)
}

// Model is the Bubble Tea model for the TUI.
type Model struct {
	state     State
	nameInput textinput.Model
	spinner   spinner.Model
	progress  progress.Model
	settings  *config.Settings
	logs      *logBuffer
	downloads []*model.Download
	err       error

	// Download context
	ctx    context.Context
	cancel context.CancelFunc

	manager *download.Manager

	// Download progress
	receivedBytes  int64
	processedFiles int32
	totalFiles     int32

	// Options
	batch      int
	resolution config.Resolution
	datePrefix bool
	force      bool
	verbose    bool

	width  int
	height int
}

// NewModel creates a new TUI model seeded from settings.
func NewModel(settings *config.Settings) Model {
	ti := textinput.New()
	ti.Placeholder = "upstream name"
	ti.CharLimit = 200
	ti.Width = 40
	ti.SetValue(settings.FileName)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#00A4EF"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 50

	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		state:      StateOptions,
		nameInput:  ti,
		spinner:    sp,
		progress:   prog,
		settings:   settings,
		logs:       &logBuffer{},
		ctx:        ctx,
		cancel:     cancel,
		batch:      settings.BatchSize,
		resolution: settings.Resolution,
		datePrefix: settings.DatePrefix,
		force:      settings.Force,
		verbose:    settings.Verbose,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Message types
type (
	// DownloadDoneMsg is sent when the manager run returns.
	DownloadDoneMsg struct {
		Downloads []*model.Download
		Err       error
	}

	// TickMsg is for periodic progress updates.
	TickMsg struct{}
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = min(max(msg.Width-20, 20), 80)
		return m, nil

	case tea.KeyMsg:
		if m.state == StateEditingName {
			return m.updateName(msg)
		}
		return m.updateKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case DownloadDoneMsg:
		m.downloads = msg.Downloads
		m.syncProgress()
		switch {
		case m.ctx.Err() != nil:
			m.state = StateError
			m.err = errCancelled
		case msg.Err != nil:
			m.state = StateError
			m.err = msg.Err
		default:
			m.state = StateComplete
		}

	case TickMsg:
		if m.manager != nil && m.state == StateDownloading {
			m.syncProgress()

			var percent float64
			if m.totalFiles > 0 {
				percent = float64(m.processedFiles) / float64(m.totalFiles)
			}
			cmds = append(cmds, m.progress.SetPercent(percent), m.tickProgress())
		}

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m Model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.cancel()
		return m, tea.Quit

	case "esc":
		switch m.state {
		case StateOptions:
			return m, tea.Quit
		case StateDownloading:
			m.cancel()
		}
		return m, nil

	case "q":
		if m.state != StateDownloading {
			return m, tea.Quit
		}
		return m, nil
	}

	switch m.state {
	case StateOptions:
		return m.updateOptions(msg)
	case StateComplete, StateError:
		if msg.String() == "enter" {
			return m.reset(), nil
		}
	}
	return m, nil
}

func (m Model) updateOptions(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		return m.start()
	case "+", "=", "right":
		m.batch = min(m.batch+1, config.MaxBatchSize)
	case "-", "left":
		m.batch = max(m.batch-1, 0)
	case "r":
		m.resolution = m.resolution.Next()
	case "d":
		m.datePrefix = !m.datePrefix
	case "f":
		m.force = !m.force
	case "v":
		m.verbose = !m.verbose
	case "n":
		m.state = StateEditingName
		return m, m.nameInput.Focus()
	}
	return m, nil
}

func (m Model) updateName(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.cancel()
		return m, tea.Quit
	case "enter", "esc":
		m.nameInput.SetValue(strings.TrimSpace(m.nameInput.Value()))
		m.nameInput.Blur()
		m.state = StateOptions
		return m, nil
	}

	var cmd tea.Cmd
	m.nameInput, cmd = m.nameInput.Update(msg)
	return m, cmd
}

// runSettings returns a copy of the settings with the screen options applied.
func (m Model) runSettings() (*config.Settings, error) {
	s := *m.settings
	s.BatchSize = m.batch
	s.Resolution = m.resolution
	s.DatePrefix = m.datePrefix
	s.Force = m.force
	s.Verbose = m.verbose
	s.FileName = m.nameInput.Value()
	s.Normalize()
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (m Model) start() (tea.Model, tea.Cmd) {
	settings, err := m.runSettings()
	if err != nil {
		m.state = StateError
		m.err = err
		return m, nil
	}

	logs := m.logs
	verbose := settings.Verbose
	m.manager = download.NewManager(settings, func(event download.ProgressEvent) {
		if event.Level == download.LevelVerbose && !verbose {
			return
		}
		logs.add(LogEntry{Message: event.Message, Level: event.Level})
	})
	m.state = StateDownloading

	return m, tea.Batch(m.startDownload(), m.tickProgress(), m.spinner.Tick)
}

// reset returns to the options screen keeping the chosen options.
func (m Model) reset() Model {
	m.state = StateOptions
	m.logs = &logBuffer{}
	m.downloads = nil
	m.err = nil
	m.manager = nil
	m.receivedBytes = 0
	m.processedFiles = 0
	m.totalFiles = 0
	m.ctx, m.cancel = context.WithCancel(context.Background())
	return m
}

func (m *Model) syncProgress() {
	if m.manager == nil {
		return
	}
	m.receivedBytes, m.processedFiles, m.totalFiles = m.manager.GetProgress()
}

// tickProgress returns a command to tick progress updates.
func (m Model) tickProgress() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

// startDownload runs the manager in the background.
func (m Model) startDownload() tea.Cmd {
	manager, ctx := m.manager, m.ctx
	return func() tea.Msg {
		downloads, err := manager.Run(ctx)
		return DownloadDoneMsg{Downloads: downloads, Err: err}
	}
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Bing Wallpaper"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Download the Bing picture of the day"))
	b.WriteString("\n\n")

	switch m.state {
	case StateOptions, StateEditingName:
		b.WriteString(m.viewOptions())
	case StateDownloading:
		b.WriteString(m.viewDownloading())
	case StateComplete:
		b.WriteString(m.viewComplete())
	case StateError:
		b.WriteString(m.viewError())
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.helpText()))

	return b.String()
}

func check(on bool) string {
	if on {
		return "[x]"
	}
	return "[ ]"
}

func (m Model) viewOptions() string {
	var b strings.Builder

	b.WriteString(subtitleStyle.Render("Options:"))
	b.WriteString("\n\n")

	batch := "latest only"
	if m.batch > 0 {
		batch = fmt.Sprintf("%d most recent", m.batch)
	}
	fmt.Fprintf(&b, "  Images (+/-):      %s\n", batch)
	fmt.Fprintf(&b, "  Resolution (r):    %s\n", m.resolution)
	fmt.Fprintf(&b, "  %s Date prefix (d)\n", check(m.datePrefix))
	fmt.Fprintf(&b, "  %s Force download (f)\n", check(m.force))
	fmt.Fprintf(&b, "  %s Verbose output (v)\n", check(m.verbose))
	b.WriteString("\n")

	b.WriteString(infoStyle.Render("File name (n):"))
	b.WriteString("\n")
	b.WriteString(m.nameInput.View())
	b.WriteString("\n\n")

	b.WriteString(dimStyle.Render(fmt.Sprintf("Picture directory: %s", m.settings.PictureDir)))
	b.WriteString("\n")

	return b.String()
}

func (m Model) viewDownloading() string {
	var b strings.Builder

	if m.totalFiles == 0 {
		b.WriteString(m.spinner.View())
		b.WriteString(" ")
		b.WriteString(subtitleStyle.Render("Fetching image archive..."))
		b.WriteString("\n\n")
	} else {
		percent := float64(m.processedFiles) / float64(m.totalFiles)
		b.WriteString(m.progress.ViewAs(percent))
		b.WriteString("\n")

		b.WriteString(infoStyle.Render(fmt.Sprintf(
			"Images: %d/%d | Downloaded: %.2f MB",
			m.processedFiles,
			m.totalFiles,
			float64(m.receivedBytes)/1024/1024,
		)))
		b.WriteString("\n\n")
	}

	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewComplete() string {
	var b strings.Builder

	var downloaded, skipped int
	for _, d := range m.downloads {
		switch d.Outcome {
		case model.OutcomeDownloaded:
			downloaded++
		case model.OutcomeSkipped:
			skipped++
		}
	}

	box := boxStyle.Render(fmt.Sprintf(
		"Done!\n\n"+
			"Downloaded: %d\n"+
			"Skipped: %d\n"+
			"Size: %.2f MB",
		downloaded,
		skipped,
		float64(m.receivedBytes)/1024/1024,
	))
	b.WriteString(box)
	b.WriteString("\n\n")

	for _, d := range m.downloads {
		b.WriteString(fileStyle.Render(fmt.Sprintf("  %s (%s)", d.Path, d.Outcome)))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) viewError() string {
	var b strings.Builder

	b.WriteString(errorStyle.Render("Error occurred:"))
	b.WriteString("\n\n")
	if m.err != nil {
		b.WriteString(fmt.Sprintf("  %s", m.err.Error()))
		b.WriteString("\n\n")
	}
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) renderLogs() string {
	var b strings.Builder

	for _, log := range m.logs.snapshot() {
		var style lipgloss.Style
		prefix := "•"
		switch log.Level {
		case download.LevelError:
			style = errorStyle
			prefix = "✗"
		case download.LevelWarning:
			style = warningStyle
			prefix = "!"
		case download.LevelSuccess:
			style = successStyle
			prefix = "✓"
		case download.LevelInfo:
			style = infoStyle
			prefix = "›"
		default:
			style = dimStyle
		}
		b.WriteString(style.Render(prefix + " " + log.Message))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) helpText() string {
	switch m.state {
	case StateOptions:
		return "enter: download • +/-: images • r: resolution • d: date • f: force • n: name • esc: quit"
	case StateEditingName:
		return "enter: confirm"
	case StateDownloading:
		return "esc: cancel"
	case StateComplete, StateError:
		return "enter: back to options • q: quit"
	}
	return ""
}

// Run starts the TUI application.
func Run(settings *config.Settings) error {
	p := tea.NewProgram(NewModel(settings), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
