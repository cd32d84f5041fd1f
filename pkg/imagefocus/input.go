package imagefocus

import (
	"github.com/recera/imagefocus/pkg/dom"
	"github.com/recera/imagefocus/pkg/geometry"
)

// controlsSelector matches overlay chrome that swallows clicks
const controlsSelector = ".slideshow-button, .help-overlay"

// attachInput installs the input router for one engagement
func (f *ImageFocus) attachInput() *session {
	s := &session{}
	w, d := f.env.Window, f.env.Document
	s.add(w.AddEventListener("wheel", f.wheel))
	s.add(w.AddEventListener("mousedown", f.mouseDown))
	s.add(w.AddEventListener("mouseup", f.mouseUp))
	s.add(w.AddEventListener("mousemove", f.mouseMoved))
	s.add(d.AddEventListener("keyup", f.keyUp))
	s.add(f.stopDrag)
	return s
}

func point(ev *dom.Event) geometry.Point {
	return geometry.Point{X: ev.ClientX, Y: ev.ClientY}
}

// wheel zooms the clone about the cursor
func (f *ImageFocus) wheel(ev *dom.Event) {
	ev.PreventDefault()
	if f.state.clone == nil {
		return
	}
	t := geometry.Zoom(f.state.transform, f.naturalSize(), f.viewport(),
		geometry.Wheel{DeltaY: ev.DeltaY, Cursor: point(ev)})
	f.apply(t)
}

// mouseDown starts a drag when the clone can be panned
func (f *ImageFocus) mouseDown(ev *dom.Event) {
	if ev.Button != dom.ButtonPrimary {
		return
	}
	ev.PreventDefault()
	if f.state.clone == nil || !geometry.Pannable(f.state.transform, f.viewport()) {
		return
	}
	f.stopDrag()
	pan := geometry.StartPan(f.state.transform, point(ev))
	f.state.pan = &pan
	f.state.endDrag = f.env.Window.AddEventListener("mousemove", func(ev *dom.Event) {
		f.apply(pan.Move(f.state.transform, point(ev)))
	})
}

// stopDrag removes the drag handler, if any
func (f *ImageFocus) stopDrag() {
	if f.state.endDrag != nil {
		f.state.endDrag()
		f.state.endDrag = nil
	}
	f.state.pan = nil
}

// mouseUp ends a drag, restoring the filter, or exits the overlay on a click
// outside a pannable image
func (f *ImageFocus) mouseUp(ev *dom.Event) {
	filter := f.state.baseFilter
	if f.state.pan != nil {
		filter = f.state.pan.Filter()
	}
	f.stopDrag()

	if ev.Button != dom.ButtonPrimary {
		return
	}
	if ev.TargetIn(controlsSelector) {
		return
	}
	if f.state.clone == nil {
		return
	}

	onRoot := ev.Target == f.env.Document.Root()
	onClone := ev.Target == f.state.clone
	switch {
	case (onClone || onRoot) && geometry.Pannable(f.state.transform, f.viewport()):
		t := f.state.transform
		t.Filter = filter
		f.apply(t)
	case !onRoot:
		f.Exit()
	}
}

// doubleClick on the clone exits the overlay
func (f *ImageFocus) doubleClick(ev *dom.Event) {
	if ev.TargetIn(controlsSelector) {
		return
	}
	f.Exit()
}

// mouseMoved shows the chrome while the mouse moves over the image or the
// overlay backdrop. Moving onto the chrome keeps it shown.
func (f *ImageFocus) mouseMoved(ev *dom.Event) {
	now := f.env.Clock.Now()
	if ev.Target != f.state.clone && ev.Target != f.overlay {
		f.cancelHideTimer()
		return
	}
	if f.state.hideTimer == nil {
		f.unhideUI()
	}
	f.state.mouseLastMovedAt = now
}

// Keys the router handles, with their legacy aliases
var (
	exitKeys     = map[string]bool{"Escape": true, "Esc": true}
	resetKeys    = map[string]bool{" ": true, "Spacebar": true}
	nextKeys     = map[string]bool{"ArrowDown": true, "Down": true, "ArrowRight": true, "Right": true}
	previousKeys = map[string]bool{"ArrowUp": true, "Up": true, "ArrowLeft": true, "Left": true}
)

// keyUp handles keyboard commands while the overlay is displayed
func (f *ImageFocus) keyUp(ev *dom.Event) {
	k := ev.Key
	if !exitKeys[k] && !resetKeys[k] && !nextKeys[k] && !previousKeys[k] {
		return
	}
	if !f.state.engaged {
		return
	}
	ev.PreventDefault()

	switch {
	case exitKeys[k]:
		f.Exit()
	case resetKeys[k]:
		f.ResetPosition()
	case nextKeys[k]:
		f.FocusNext(true)
	case previousKeys[k]:
		f.FocusNext(false)
	}
}
