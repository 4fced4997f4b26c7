package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/lipgloss"
	"github.com/handiism/sd-gallery/internal/catalog"
	"github.com/handiism/sd-gallery/internal/model"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B")).
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

	paneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#6C757D")).
			Padding(0, 1)

	focusedPaneStyle = paneStyle.
				BorderForeground(lipgloss.Color("#4ECDC4"))

	pathStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F8B500"))

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#95E1A3"))
)

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	// Header
	b.WriteString(titleStyle.Render("SD Gallery"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Browse generated images by folder, date, model and prompt"))
	b.WriteString("\n\n")

	switch m.state {
	case StateInput:
		b.WriteString(m.viewInput())
	case StateBuilding:
		b.WriteString(m.viewBuilding())
	case StateBrowsing:
		b.WriteString(m.viewBrowsing())
	case StateError:
		b.WriteString(m.viewError())
	}

	// Footer
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.getHelpText()))

	return b.String()
}

func (m Model) viewInput() string {
	var b strings.Builder

	b.WriteString(subtitleStyle.Render("Outputs folder:"))
	b.WriteString("\n\n")
	b.WriteString(m.textInput.View())
	b.WriteString("\n\n")

	b.WriteString(dimStyle.Render(fmt.Sprintf(
		"Extensions: %s | Workers: %d | Max display: %d",
		strings.Join(m.settings.Extensions, " "),
		m.settings.Workers,
		m.settings.MaxDisplay,
	)))
	b.WriteString("\n")

	return b.String()
}

func (m Model) viewBuilding() string {
	var b strings.Builder

	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(subtitleStyle.Render("Reading image metadata..."))
	b.WriteString("\n\n")

	var percent float64
	if m.totalFiles > 0 {
		percent = float64(m.doneFiles) / float64(m.totalFiles)
	}
	b.WriteString(m.progress.ViewAs(percent))
	b.WriteString("\n")
	b.WriteString(infoStyle.Render(fmt.Sprintf("Images: %d/%d", m.doneFiles, m.totalFiles)))
	b.WriteString("\n\n")

	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewBrowsing() string {
	var b strings.Builder

	b.WriteString(infoStyle.Render(fmt.Sprintf(
		"%d of %d images match | showing %d",
		m.result.Catalog.Len(),
		m.catalog.Len(),
		len(m.list.Items()),
	)))
	b.WriteString("\n")

	facets := m.stylePane(paneFacets).Width(facetPaneWidth).Render(m.renderFacets())
	images := m.stylePane(paneImages).Render(m.list.View())
	detail := m.stylePane(paneDetail).Render(m.detail.View())
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, facets, images, detail))
	b.WriteString("\n")

	if m.status != "" {
		b.WriteString(successStyle.Render(m.status))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) stylePane(p pane) lipgloss.Style {
	if m.focus == p {
		return focusedPaneStyle
	}
	return paneStyle
}

// renderFacets draws the tab row of facets and the choices of the focused one.
func (m Model) renderFacets() string {
	var b strings.Builder

	tabs := make([]string, len(model.Facets))
	for i, f := range model.Facets {
		label := f.Label()
		if n := len(m.selection[f]); n > 0 {
			label = fmt.Sprintf("%s(%d)", label, n)
		}
		if i == m.facetIndex {
			tabs[i] = subtitleStyle.Bold(true).Render(label)
		} else {
			tabs[i] = dimStyle.Render(label)
		}
	}
	b.WriteString(strings.Join(tabs, " "))
	b.WriteString("\n\n")

	f := m.currentFacet()
	rows := m.facetRows()
	if len(rows) == 0 {
		b.WriteString(dimStyle.Render("no values"))
		return b.String()
	}

	// Window the rows around the cursor.
	height := max(m.detail.Height-2, 5)
	start := 0
	if m.facetCursor >= height {
		start = m.facetCursor - height + 1
	}
	end := min(start+height, len(rows))

	for i := start; i < end; i++ {
		c := rows[i]
		check := "[ ]"
		style := lipgloss.NewStyle()
		if m.selection.Has(f, c.Value) {
			check = "[x]"
			style = selectedStyle
		}
		cursor := "  "
		if i == m.facetCursor && m.focus == paneFacets {
			cursor = "› "
		}
		line := fmt.Sprintf("%s%s %s", cursor, check, c.Label())
		b.WriteString(style.Render(truncate(line, facetPaneWidth-2)))
		b.WriteString("\n")
	}
	if end < len(rows) {
		b.WriteString(dimStyle.Render(fmt.Sprintf("  … %d more", len(rows)-end)))
	}

	return b.String()
}

func (m Model) viewError() string {
	var b strings.Builder

	b.WriteString(errorStyle.Render("✗ Error occurred:"))
	b.WriteString("\n\n")
	if m.err != nil {
		b.WriteString(fmt.Sprintf("  %s", m.err.Error()))
	}
	b.WriteString("\n\n")
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) renderLogs() string {
	var b strings.Builder

	for _, log := range m.logs {
		var style lipgloss.Style
		prefix := "•"
		switch log.Level {
		case catalog.LevelError:
			style = errorStyle
			prefix = "✗"
		case catalog.LevelWarning:
			style = warningStyle
			prefix = "!"
		case catalog.LevelSuccess:
			style = successStyle
			prefix = "✓"
		case catalog.LevelInfo:
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

func (m Model) getHelpText() string {
	k := m.keys
	switch m.state {
	case StateInput:
		return helpLine(k.StartBuild, k.Back)
	case StateBuilding:
		return "esc: cancel"
	case StateBrowsing:
		if m.list.FilterState() == list.Filtering {
			return "enter: apply search • esc: cancel search"
		}
		switch m.focus {
		case paneFacets:
			return helpLine(k.NextPane, k.PrevFacet, k.NextFacet, k.Toggle, k.Clear, k.Reshuffle, k.Export, k.Quit)
		case paneImages:
			return "↑/↓: move • /: search • " + helpLine(k.NextPane, k.Reshuffle, k.Export, k.Quit)
		default:
			return "↑/↓: scroll • " + helpLine(k.NextPane, k.Quit)
		}
	case StateError:
		return "esc: back • q: quit"
	}
	return ""
}

func truncate(s string, width int) string {
	if lipgloss.Width(s) <= width {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && lipgloss.Width(string(r))+1 > width {
		r = r[:len(r)-1]
	}
	return string(r) + "…"
}
