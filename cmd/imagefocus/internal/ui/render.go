package ui

import (
	"fmt"
	"path"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/net/html"

	"github.com/recera/imagefocus/pkg/imagefocus"
)

// Style definitions
var (
	primaryColor   = lipgloss.Color("#3b82f6")
	secondaryColor = lipgloss.Color("#64748b")
	successColor   = lipgloss.Color("#10b981")
	warningColor   = lipgloss.Color("#f59e0b")
	errorColor     = lipgloss.Color("#ef4444")
	mutedColor     = lipgloss.Color("#94a3b8")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			MarginBottom(1)

	labelStyle = lipgloss.NewStyle().
			Foreground(secondaryColor).
			Width(10)

	selectedStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true)

	focusedStyle = lipgloss.NewStyle().
			Foreground(successColor).
			Bold(true)

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ffffff"))

	mutedStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	warningStyle = lipgloss.NewStyle().
			Foreground(warningColor)

	errorStyle = lipgloss.NewStyle().
			Foreground(errorColor).
			Bold(true)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primaryColor).
			Padding(0, 1)
)

func (m Model) render() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("🔍 " + m.title))
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString(errorStyle.Render("Reload failed: " + m.err.Error()))
		b.WriteString("\n\n")
	}

	overlay := boxStyle.Render(m.renderOverlay())
	images := boxStyle.Render(m.renderImages())
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, images, " ", overlay))
	b.WriteString("\n")

	if m.showHelp {
		b.WriteString(m.help.FullHelpView(DefaultKeyMap.FullHelp()))
	} else {
		b.WriteString(m.help.ShortHelpView(DefaultKeyMap.ShortHelp()))
	}
	return b.String()
}

func (m Model) renderOverlay() string {
	s := m.state.Snapshot
	var lines []string
	row := func(label, value string) {
		lines = append(lines, labelStyle.Render(label)+value)
	}

	state := normalStyle.Render(s.State.String())
	if s.State != imagefocus.Unfocused {
		state = focusedStyle.Render(s.State.String())
	}
	row("State", state)
	row("Viewport", fmt.Sprintf("%.0f×%.0f", s.Viewport.Width, s.Viewport.Height))
	row("Fragment", orNone("#"+s.Fragment, s.Fragment == ""))
	if !s.Engaged {
		return strings.Join(lines, "\n")
	}

	if s.Index != imagefocus.NoIndex {
		row("Slide", fmt.Sprintf("%s of %d %s", s.Number, s.Count, m.renderButtons()))
	}
	t := s.Transform
	row("Size", fmt.Sprintf("%.0f×%.0f", t.Width, t.Height))
	row("Offset", fmt.Sprintf("%+.0f, %+.0f", t.Left, t.Top))
	row("Filter", orNone(t.Filter, t.Filter == ""))
	row("Cursor", orNone(s.Cursor, s.Cursor == ""))
	chrome := "visible"
	if s.ChromeHidden {
		chrome = warningStyle.Render("hidden")
	}
	row("Chrome", chrome)
	caption := captionText(s.Caption)
	row("Caption", orNone(caption, caption == ""))
	return strings.Join(lines, "\n")
}

func (m Model) renderButtons() string {
	button := func(label string, disabled bool) string {
		if disabled {
			return mutedStyle.Render(label)
		}
		return selectedStyle.Render(label)
	}
	return button("◀", m.state.PrevDisabled) + " " + button("▶", m.state.NextDisabled)
}

func (m Model) renderImages() string {
	if len(m.state.Images) == 0 {
		return mutedStyle.Render("No focusable images")
	}
	var lines []string
	for i, img := range m.state.Images {
		cursor := "  "
		if i == m.selected {
			cursor = selectedStyle.Render("▸ ")
		}
		slot := mutedStyle.Render("  ·")
		if img.Gallery {
			slot = fmt.Sprintf("%3d", img.Index+1)
		}
		name := path.Base(img.Src)
		style := normalStyle
		if i == m.state.Selected {
			style = focusedStyle
		}
		lines = append(lines, fmt.Sprintf("%s%s %s %s",
			cursor, slot, style.Render(name),
			mutedStyle.Render(fmt.Sprintf("%.0f×%.0f", img.Width, img.Height))))
	}
	return strings.Join(lines, "\n")
}

func orNone(value string, none bool) string {
	if none {
		return mutedStyle.Render("none")
	}
	return value
}

// captionText flattens caption markup to its text
func captionText(markup string) string {
	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(markup))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.Join(strings.Fields(b.String()), " ")
		case html.TextToken:
			b.Write(z.Text())
		case html.StartTagToken, html.EndTagToken:
			b.WriteByte(' ')
		}
	}
}
