// Package tui provides a Bubble Tea terminal user interface for sd-gallery.
package tui

import (
	"bytes"
	"context"
	"fmt"
	"math/rand/v2"
	"path/filepath"
	"slices"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/handiism/sd-gallery/internal/catalog"
	"github.com/handiism/sd-gallery/internal/config"
	"github.com/handiism/sd-gallery/internal/export"
	"github.com/handiism/sd-gallery/internal/filter"
	ioutils "github.com/handiism/sd-gallery/internal/io"
	"github.com/handiism/sd-gallery/internal/metadata"
	"github.com/handiism/sd-gallery/internal/model"
)

// State represents the current UI state.
type State int

const (
	StateInput State = iota
	StateBuilding
	StateBrowsing
	StateError
)

// pane is the focused area of the gallery screen.
type pane int

const (
	paneFacets pane = iota
	paneImages
	paneDetail
)

// maxLogs is how many log lines the UI keeps.
const maxLogs = 10

// facetPaneWidth is the fixed width of the facet column.
const facetPaneWidth = 36

// LogEntry represents a log message in the UI.
type LogEntry struct {
	Message string
	Level   catalog.ProgressLevel
}

// Model is the Bubble Tea model for the TUI.
type Model struct {
	state     State
	textInput textinput.Model
	spinner   spinner.Model
	progress  progress.Model
	list      list.Model
	detail    viewport.Model
	keys      keyMap
	settings  *config.Settings
	logs      []LogEntry
	status    string
	err       error

	// Build context
	ctx    context.Context
	cancel context.CancelFunc

	builder *catalog.Builder
	events  chan catalog.ProgressEvent

	// Build progress
	doneFiles  int
	totalFiles int

	// Gallery state
	catalog     *model.Catalog
	selection   filter.Selection
	result      filter.Result
	rng         *rand.Rand
	focus       pane
	facetIndex  int
	facetCursor int

	verbose bool

	width  int
	height int
}

// NewModel creates a new TUI model. Verbose build events are shown only
// when verbose is set.
func NewModel(settings *config.Settings, verbose bool) Model {
	if settings == nil {
		settings = config.DefaultSettings()
	}

	ti := textinput.New()
	ti.Placeholder = "/path/to/stable-diffusion-webui/outputs"
	ti.SetValue(settings.OutputsPath)
	ti.Focus()
	ti.CharLimit = 500
	ti.Width = 60

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 50

	l := list.New(nil, list.NewDefaultDelegate(), 40, 20)
	l.Title = "Images"
	l.SetShowHelp(false)
	l.DisableQuitKeybindings()
	l.Styles.Title = l.Styles.Title.Background(lipgloss.Color("#4ECDC4"))

	ctx, cancel := context.WithCancel(context.Background())

	m := Model{
		state:     StateInput,
		textInput: ti,
		spinner:   sp,
		progress:  prog,
		list:      l,
		detail:    viewport.New(40, 20),
		keys:      defaultKeyMap(),
		settings:  settings,
		logs:      make([]LogEntry, 0),
		selection: filter.Selection{},
		verbose:   verbose,
		ctx:       ctx,
		cancel:    cancel,
	}
	if settings.Shuffle {
		m.rng = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))
	}
	return m
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// Message types
type (
	// ProgressMsg carries one catalog build event.
	ProgressMsg struct {
		Event catalog.ProgressEvent
	}

	// BuildDoneMsg is sent when the catalog build completes.
	BuildDoneMsg struct {
		Catalog *model.Catalog
		Err     error
	}

	// ExportDoneMsg is sent when an export file has been written.
	ExportDoneMsg struct {
		Path  string
		Count int
		Err   error
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
		m.resize()
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.ForceQuit) {
			m.cancel()
			return m, tea.Quit
		}
		switch m.state {
		case StateInput:
			return m.updateInput(msg)
		case StateBuilding:
			if key.Matches(msg, m.keys.Back) {
				m.cancel()
			}
			return m, nil
		case StateBrowsing:
			return m.updateBrowsing(msg)
		case StateError:
			switch {
			case key.Matches(msg, m.keys.Quit):
				return m, tea.Quit
			case key.Matches(msg, m.keys.Back):
				m.reset()
				return m, textinput.Blink
			}
			return m, nil
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case ProgressMsg:
		m.addLog(msg.Event)
		cmds = append(cmds, waitForEvent(m.events))

	case BuildDoneMsg:
		if msg.Err != nil {
			m.state = StateError
			m.err = msg.Err
			if m.ctx.Err() != nil {
				m.err = fmt.Errorf("cancelled by user")
			}
			return m, nil
		}
		m.catalog = msg.Catalog
		m.selection = filter.Selection{}
		m.state = StateBrowsing
		m.focus = paneFacets
		m.facetIndex = 0
		m.facetCursor = 0
		m.resize()
		cmds = append(cmds, m.refresh())

	case ExportDoneMsg:
		if msg.Err != nil {
			m.addLog(catalog.ProgressEvent{Message: fmt.Sprintf("Export failed: %v", msg.Err), Level: catalog.LevelError})
		} else {
			m.status = fmt.Sprintf("Exported %d images to %s", msg.Count, msg.Path)
			m.addLog(catalog.ProgressEvent{Message: m.status, Level: catalog.LevelSuccess})
		}

	case TickMsg:
		if m.builder != nil && m.state == StateBuilding {
			m.doneFiles, m.totalFiles = m.builder.Progress()

			var percent float64
			if m.totalFiles > 0 {
				percent = float64(m.doneFiles) / float64(m.totalFiles)
			}
			cmds = append(cmds, m.progress.SetPercent(percent), tickProgress())
		}

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		cmds = append(cmds, cmd)
	}

	if m.state == StateInput {
		var cmd tea.Cmd
		m.textInput, cmd = m.textInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		return m, tea.Quit

	case key.Matches(msg, m.keys.StartBuild):
		root := m.textInput.Value()
		if root == "" {
			return m, nil
		}
		cmd := m.startBuild(root)
		return m, cmd
	}

	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

// startBuild switches to the building state and launches the scan.
func (m *Model) startBuild(root string) tea.Cmd {
	m.state = StateBuilding
	m.doneFiles, m.totalFiles = 0, 0
	m.logs = m.logs[:0]

	events := make(chan catalog.ProgressEvent, 64)
	verbose := m.verbose
	m.events = events
	m.builder = catalog.NewBuilder(m.settings, metadata.NewReader(m.settings.ReadDimensions), func(event catalog.ProgressEvent) {
		if event.Level == catalog.LevelVerbose && !verbose {
			return
		}
		// Drop events rather than stall the workers when the UI lags.
		select {
		case events <- event:
		default:
		}
	})

	return tea.Batch(
		buildCatalog(m.ctx, m.builder, root, events),
		waitForEvent(events),
		m.spinner.Tick,
		tickProgress(),
	)
}

func (m Model) updateBrowsing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	filtering := m.list.FilterState() == list.Filtering

	if !filtering {
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.cancel()
			return m, tea.Quit
		case key.Matches(msg, m.keys.Back) && m.list.FilterState() == list.Unfiltered:
			m.reset()
			return m, textinput.Blink
		case key.Matches(msg, m.keys.NextPane):
			m.focus = (m.focus + 1) % 3
			return m, nil
		case key.Matches(msg, m.keys.Reshuffle):
			cmd := m.refresh()
			return m, cmd
		case key.Matches(msg, m.keys.Export):
			return m, m.exportCurrent()
		case key.Matches(msg, m.keys.Clear):
			m.selection = filter.Selection{}
			m.facetCursor = 0
			cmd := m.refresh()
			return m, cmd
		}
	}

	switch m.focus {
	case paneFacets:
		return m.updateFacets(msg)

	case paneImages:
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		m.showDetail()
		return m, cmd

	case paneDetail:
		var cmd tea.Cmd
		m.detail, cmd = m.detail.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) updateFacets(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	rows := m.facetRows()

	switch {
	case key.Matches(msg, m.keys.PrevFacet):
		m.facetIndex = (m.facetIndex + len(model.Facets) - 1) % len(model.Facets)
		m.facetCursor = 0
	case key.Matches(msg, m.keys.NextFacet):
		m.facetIndex = (m.facetIndex + 1) % len(model.Facets)
		m.facetCursor = 0
	case key.Matches(msg, m.keys.Up):
		if m.facetCursor > 0 {
			m.facetCursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.facetCursor < len(rows)-1 {
			m.facetCursor++
		}
	case key.Matches(msg, m.keys.Toggle):
		if m.facetCursor < len(rows) {
			m.selection.Toggle(m.currentFacet(), rows[m.facetCursor].Value)
			cmd := m.refresh()
			m.clampCursor()
			return m, cmd
		}
	}
	return m, nil
}

// refresh re-applies the selection and reloads the image list.
func (m *Model) refresh() tea.Cmd {
	m.result = filter.Apply(m.catalog, m.selection)
	shown := filter.Sample(m.result.Catalog.Records, m.settings.MaxDisplay, m.rng)
	cmd := m.list.SetItems(toItems(shown))
	m.list.ResetSelected()
	m.showDetail()
	return cmd
}

// showDetail renders the highlighted record into the detail pane.
func (m *Model) showDetail() {
	item, ok := m.list.SelectedItem().(imageItem)
	if !ok {
		m.detail.SetContent(dimStyle.Render("No image selected"))
		return
	}
	r := item.record
	header := pathStyle.Render(r.Path)
	m.detail.SetContent(header + "\n" + model.FormatDetail(r))
	m.detail.GotoTop()
}

func (m Model) currentFacet() model.Facet {
	return model.Facets[m.facetIndex]
}

// facetRows lists the choices of the focused facet, followed by selected
// values that no longer match any image.
func (m Model) facetRows() []model.Choice {
	state := m.result.Facets[m.currentFacet()]
	rows := slices.Clone(state.Choices)
	for _, sel := range state.Selected {
		if !slices.ContainsFunc(rows, func(c model.Choice) bool { return c.Value == sel.Value }) {
			rows = append(rows, sel)
		}
	}
	return rows
}

func (m *Model) clampCursor() {
	if n := len(m.facetRows()); m.facetCursor >= n {
		m.facetCursor = max(n-1, 0)
	}
}

func (m *Model) resize() {
	if m.width == 0 || m.height == 0 {
		return
	}

	m.progress.Width = min(max(m.width-20, 20), 80)

	rest := max(m.width-facetPaneWidth-6, 40)
	listWidth := rest / 2
	paneHeight := max(m.height-10, 5)

	m.list.SetSize(listWidth, paneHeight)
	m.detail.Width = rest - listWidth
	m.detail.Height = paneHeight
}

func (m *Model) addLog(event catalog.ProgressEvent) {
	if event.Level == catalog.LevelVerbose && !m.verbose {
		return
	}
	m.logs = append(m.logs, LogEntry{Message: event.Message, Level: event.Level})
	if len(m.logs) > maxLogs {
		m.logs = m.logs[len(m.logs)-maxLogs:]
	}
}

// reset returns to the input screen.
func (m *Model) reset() {
	m.cancel()
	m.state = StateInput
	m.logs = nil
	m.err = nil
	m.status = ""
	m.builder = nil
	m.catalog = nil
	m.selection = filter.Selection{}
	m.result = filter.Result{}
	m.ctx, m.cancel = context.WithCancel(context.Background())
	m.textInput.Focus()
}

// exportCurrent writes the filtered images in the configured format.
func (m Model) exportCurrent() tea.Cmd {
	records := m.result.Catalog.Records
	name := m.settings.ExportFormat
	ctx := m.ctx

	return func() tea.Msg {
		format, err := export.ParseFormat(name)
		if err != nil {
			return ExportDoneMsg{Err: err}
		}

		var buf bytes.Buffer
		if err := export.Write(&buf, records, format); err != nil {
			return ExportDoneMsg{Err: err}
		}

		path, err := filepath.Abs("sd-gallery-export" + format.Extension())
		if err != nil {
			return ExportDoneMsg{Err: err}
		}
		if err := ioutils.WriteFile(ctx, path, buf.Bytes()); err != nil {
			return ExportDoneMsg{Err: err}
		}
		return ExportDoneMsg{Path: path, Count: len(records)}
	}
}

// buildCatalog runs the builder in the background.
func buildCatalog(ctx context.Context, builder *catalog.Builder, root string, events chan catalog.ProgressEvent) tea.Cmd {
	return func() tea.Msg {
		cat, err := builder.Build(ctx, root)
		close(events)
		return BuildDoneMsg{Catalog: cat, Err: err}
	}
}

// waitForEvent delivers the next build event, or nothing once the build ends.
func waitForEvent(events <-chan catalog.ProgressEvent) tea.Cmd {
	return func() tea.Msg {
		if events == nil {
			return nil
		}
		event, ok := <-events
		if !ok {
			return nil
		}
		return ProgressMsg{Event: event}
	}
}

// tickProgress returns a command to tick progress updates.
func tickProgress() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

// Run starts the TUI application.
func Run(settings *config.Settings, verbose bool) error {
	p := tea.NewProgram(NewModel(settings, verbose), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
