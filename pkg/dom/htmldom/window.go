package htmldom

import (
	"github.com/recera/imagefocus/pkg/dom"
)

// Window is a headless browsing context around a Document
type Window struct {
	doc       *Document
	width     float64
	height    float64
	fragment  string
	mobile    bool
	scrolling bool
	loaded    bool
	onLoad    []func()
	listeners listenerSet
	rotate    listenerSet

	// History records every fragment passed to Relocate
	History  []string
	revealed dom.Element
}

// NewWindow attaches a window with the given viewport to doc
func NewWindow(doc *Document, width, height float64) *Window {
	w := &Window{
		doc:       doc,
		width:     width,
		height:    height,
		scrolling: true,
	}
	doc.window = w
	return w
}

// Document returns the window's document
func (w *Window) Document() *Document {
	return w.doc
}

// Viewport returns the inner size
func (w *Window) Viewport() (float64, float64) {
	return w.width, w.height
}

// SetViewport resizes the viewport. Crossing between portrait and landscape
// fires the orientation-change handlers.
func (w *Window) SetViewport(width, height float64) {
	wasPortrait := w.height > w.width
	w.width, w.height = width, height
	if wasPortrait != (height > width) {
		w.rotate.fire(dom.NewEvent("change", nil))
	}
}

// Fragment returns the location fragment without '#'
func (w *Window) Fragment() string {
	return w.fragment
}

// SetFragment sets the fragment as if the page had been opened with it
func (w *Window) SetFragment(fragment string) {
	w.fragment = fragment
}

// Relocate replaces the fragment and records it in History
func (w *Window) Relocate(fragment string) {
	w.fragment = fragment
	w.History = append(w.History, fragment)
}

// Reveal records el as the element last scrolled into view
func (w *Window) Reveal(el dom.Element) {
	w.revealed = el
}

// Revealed returns the element last passed to Reveal
func (w *Window) Revealed() dom.Element {
	return w.revealed
}

// SetPageScrolling enables or disables page scrolling
func (w *Window) SetPageScrolling(enabled bool) {
	w.scrolling = enabled
}

// PageScrolling reports whether page scrolling is enabled
func (w *Window) PageScrolling() bool {
	return w.scrolling
}

// SetMobile sets whether the window behaves as a touch device
func (w *Window) SetMobile(mobile bool) {
	w.mobile = mobile
}

// IsMobile reports a touch/mobile environment
func (w *Window) IsMobile() bool {
	return w.mobile
}

// WhenLoaded runs fn now if the page has loaded, otherwise after Load
func (w *Window) WhenLoaded(fn func()) {
	if w.loaded {
		fn()
		return
	}
	w.onLoad = append(w.onLoad, fn)
}

// Load marks the page loaded and runs queued WhenLoaded callbacks
func (w *Window) Load() {
	if w.loaded {
		return
	}
	w.loaded = true
	queued := w.onLoad
	w.onLoad = nil
	for _, fn := range queued {
		fn()
	}
}

// OnOrientationChange registers fn for orientation changes
func (w *Window) OnOrientationChange(fn func()) func() {
	return w.rotate.add("change", func(*dom.Event) { fn() })
}

// AddEventListener registers a window-level listener
func (w *Window) AddEventListener(typ string, fn dom.Listener) func() {
	return w.listeners.add(typ, fn)
}

// ListenerCount returns the number of window listeners for typ
func (w *Window) ListenerCount(typ string) int {
	return w.listeners.count(typ)
}
