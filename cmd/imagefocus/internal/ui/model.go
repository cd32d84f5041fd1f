// Package ui is the terminal view of a page running the image focus overlay
package ui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/recera/imagefocus/cmd/imagefocus/internal/host"
)

const (
	wheelStep = 100
	panStep   = 40
)

// Page is the overlay the model drives. host.Page implements it.
type Page interface {
	State() host.State
	Focus(i int)
	Key(key string)
	Wheel(deltaY float64)
	Pan(dx, dy float64)
	MoveMouse()
	Resize(width, height float64)
	Close()
}

// RefreshMsg asks the model to re-read the page state
type RefreshMsg struct{}

// ReloadMsg replaces the page after its file changed
type ReloadMsg struct {
	Page Page
	Err  error
}

// Model represents the TUI application state
type Model struct {
	width  int
	height int

	page  Page
	state host.State
	title string

	// selected is the highlighted row of the image list
	selected int

	help     help.Model
	showHelp bool
	quitting bool
	err      error
}

// NewModel creates a model for page
func NewModel(title string, page Page) Model {
	m := Model{
		page:  page,
		title: title,
		help:  help.New(),
	}
	m.state = page.State()
	return m
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case RefreshMsg:
		m.refresh()
		return m, nil

	case ReloadMsg:
		if msg.Err != nil {
			m.err = msg.Err
			return m, nil
		}
		old := m.page
		m.page = msg.Page
		m.err = nil
		m.refresh()
		return m, func() tea.Msg {
			old.Close()
			return nil
		}

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	keys := DefaultKeyMap
	switch {
	case key.Matches(msg, keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, keys.Help):
		m.showHelp = !m.showHelp
		return m, nil
	case key.Matches(msg, keys.Up):
		if m.selected > 0 {
			m.selected--
		}
		return m, nil
	case key.Matches(msg, keys.Down):
		if m.selected < len(m.state.Images)-1 {
			m.selected++
		}
		return m, nil
	case key.Matches(msg, keys.Focus):
		m.page.Focus(m.selected)
	case key.Matches(msg, keys.Previous):
		m.page.Key("ArrowLeft")
	case key.Matches(msg, keys.Next):
		m.page.Key("ArrowRight")
	case key.Matches(msg, keys.Reset):
		m.page.Key(" ")
	case key.Matches(msg, keys.Exit):
		m.page.Key("Escape")
	case key.Matches(msg, keys.ZoomIn):
		m.page.Wheel(-wheelStep)
	case key.Matches(msg, keys.ZoomOut):
		m.page.Wheel(wheelStep)
	case key.Matches(msg, keys.PanLeft):
		m.page.Pan(-panStep, 0)
	case key.Matches(msg, keys.PanDown):
		m.page.Pan(0, panStep)
	case key.Matches(msg, keys.PanUp):
		m.page.Pan(0, -panStep)
	case key.Matches(msg, keys.PanRight):
		m.page.Pan(panStep, 0)
	case key.Matches(msg, keys.Mouse):
		m.page.MoveMouse()
	case key.Matches(msg, keys.Rotate):
		vp := m.state.Viewport
		m.page.Resize(vp.Height, vp.Width)
	default:
		return m, nil
	}
	m.refresh()
	return m, nil
}

// refresh re-reads the page and follows the focused image in the list
func (m *Model) refresh() {
	m.state = m.page.State()
	if m.state.Selected >= 0 {
		m.selected = m.state.Selected
	}
	if m.selected >= len(m.state.Images) {
		m.selected = len(m.state.Images) - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
}

// View renders the UI
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	return m.render()
}
