package ui

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/recera/imagefocus/cmd/imagefocus/internal/host"
)

// Program wraps the running TUI so other goroutines can reach it
type Program struct {
	p *tea.Program
}

// NewProgram prepares the TUI for page. The page's idle hook is pointed at
// the program so timer-driven changes, such as the chrome hiding, repaint.
func NewProgram(title string, page *host.Page) (*Program, error) {
	if !isatty() {
		return nil, fmt.Errorf("not running in a terminal")
	}
	prog := &Program{}
	prog.p = tea.NewProgram(NewModel(title, page), tea.WithAltScreen())
	prog.watch(page)
	return prog, nil
}

// watch repaints after every batch of work on page's loop. Send blocks until
// Update runs, and Update itself waits on the loop, so it must not block here.
func (prog *Program) watch(page *host.Page) {
	page.SetIdleHook(func() {
		go prog.p.Send(RefreshMsg{})
	})
}

// Reload swaps in a freshly opened page, or shows err
func (prog *Program) Reload(page *host.Page, err error) {
	if err != nil {
		prog.p.Send(ReloadMsg{Err: err})
		return
	}
	prog.watch(page)
	prog.p.Send(ReloadMsg{Page: page})
}

// Run blocks until the user quits, then closes the page on screen
func (prog *Program) Run() error {
	final, err := prog.p.Run()
	if m, ok := final.(Model); ok && m.page != nil {
		m.page.Close()
	}
	if err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

// isatty checks if we're running in a terminal
func isatty() bool {
	fileInfo, _ := os.Stdout.Stat()
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}
