// Package imagefocus turns images in a document into focusable, zoomable
// items shown in a full-viewport overlay. Images inside the primary content
// region form a gallery that can be stepped through with buttons, arrow keys,
// and URL fragments of the form #if_slide_N.
//
// ImageFocus is not safe for concurrent use. All calls, DOM events, and timer
// callbacks must arrive on one goroutine; scheduler.Loop provides that for
// headless hosts, and the browser's event loop does for jsdom.
package imagefocus

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/recera/imagefocus/pkg/dom"
	"github.com/recera/imagefocus/pkg/geometry"
	"github.com/recera/imagefocus/pkg/notify"
	"github.com/recera/imagefocus/pkg/scheduler"
)

// ErrNoOverlay is returned by operations that need Setup to have run
var ErrNoOverlay = errors.New("imagefocus: overlay is not set up")

// ErrNoBody is returned by Setup when the document has no body to host the
// overlay
var ErrNoBody = errors.New("imagefocus: document has no body")

// Env is the host the overlay runs in
type Env struct {
	Document dom.Document
	Window   dom.Window
	// Bus carries content-injection and hash-change notifications in, and
	// the overlay's own notifications out
	Bus   *notify.Center
	Clock scheduler.Clock
}

// ImageFocus is the image focus overlay for one document
type ImageFocus struct {
	opts Options
	env  Env
	log  *slog.Logger

	overlay dom.Element
	ui      controls
	// release undoes Setup: bus subscriptions, button and orientation
	// handlers
	release []func()

	images map[dom.Element]*image
	state  overlayState
}

// New creates an overlay for env. Setup must be called before use.
func New(env Env, opts *Options) (*ImageFocus, error) {
	if env.Document == nil || env.Window == nil || env.Clock == nil {
		return nil, fmt.Errorf("imagefocus: env needs a document, window, and clock")
	}
	o := opts.withDefaults()
	if err := o.Validate(env.Document); err != nil {
		return nil, fmt.Errorf("imagefocus: %w", err)
	}
	if env.Bus == nil {
		env.Bus = notify.NewCenter()
	}
	return &ImageFocus{
		opts:   o,
		env:    env,
		log:    o.Logger,
		images: make(map[dom.Element]*image),
	}, nil
}

// Options returns the effective options
func (f *ImageFocus) Options() Options {
	return f.opts
}

// Bus returns the notification center the overlay fires on
func (f *ImageFocus) Bus() *notify.Center {
	return f.env.Bus
}

// Overlay returns the overlay element, or nil before Setup
func (f *ImageFocus) Overlay() dom.Element {
	return f.overlay
}

// Setup inserts the overlay into the document body, wires its buttons,
// subscribes to content injection and hash changes, and focuses the slide
// named by the URL, if any. Calling it again is a no-op.
func (f *ImageFocus) Setup() error {
	if f.overlay != nil {
		return nil
	}
	f.log.Debug("ImageFocus.setup")

	body := f.env.Document.Body()
	if body == nil {
		return ErrNoBody
	}
	overlay, ui, err := buildOverlay(f.env.Document)
	if err != nil {
		return fmt.Errorf("imagefocus: %w", err)
	}
	body.AppendChild(overlay)
	f.overlay, f.ui = overlay, ui

	f.release = append(f.release, f.env.Window.OnOrientationChange(func() {
		if f.state.clone != nil {
			f.resetFocusedImagePosition(false)
		}
	}))
	for _, button := range []dom.Element{ui.previous, ui.next} {
		next := button == ui.next
		f.release = append(f.release, button.AddEventListener("click", func(*dom.Event) {
			f.FocusNext(next)
			f.cancelHideTimer()
			button.Blur()
		}))
	}
	f.setChromeHidden(true)

	f.release = append(f.release,
		f.env.Bus.AddHandler(EventContentDidInject, f.contentDidInject),
		f.env.Bus.AddHandler(EventHashDidChange, func(notify.Info) {
			f.FocusImageSpecifiedByURL()
		}),
		// The page may finish loading before its content is injected, so the
		// slide named by the URL is looked up again once the gallery exists
		f.env.Bus.AddHandler(EventContentDidInject, func(notify.Info) {
			f.FocusImageSpecifiedByURL()
		}, notify.HandlerOptions{Once: true, Condition: f.isMainUnfocused}),
	)

	f.env.Bus.FireEvent(EventSetupDidComplete, nil)
	f.FocusImageSpecifiedByURL()
	return nil
}

// isMainUnfocused reports whether info announces the main document's content
// while no image is focused
func (f *ImageFocus) isMainUnfocused(info notify.Info) bool {
	doc, _ := info["document"].(dom.Document)
	return doc == f.env.Document && f.state.focused == nil
}

// Dispose exits the overlay, removes every handler the overlay installed,
// and takes the overlay out of the document
func (f *ImageFocus) Dispose() {
	if f.overlay == nil {
		return
	}
	f.Exit()
	for i := len(f.release) - 1; i >= 0; i-- {
		f.release[i]()
	}
	f.release = nil
	for el, img := range f.images {
		img.release()
		delete(f.images, el)
	}
	f.overlay.Remove()
	f.overlay = nil
	f.ui = controls{}
	f.state = overlayState{}
}

// State returns the focus state machine's state
func (f *ImageFocus) State() FocusState {
	switch {
	case f.state.focused == nil:
		return Unfocused
	case f.state.focused.gallery:
		return FocusedGallery
	default:
		return FocusedSingle
	}
}

// Engaged reports whether the overlay is displayed
func (f *ImageFocus) Engaged() bool {
	return f.state.engaged
}

// Focused returns the focused source image, or nil
func (f *ImageFocus) Focused() dom.Element {
	if f.state.focused == nil {
		return nil
	}
	return f.state.focused.el
}

// Clone returns the rendered copy of the focused image, or nil
func (f *ImageFocus) Clone() dom.Element {
	return f.state.clone
}

// Snapshot captures the overlay's current presentation
func (f *ImageFocus) Snapshot() Snapshot {
	vp := f.viewport()
	s := Snapshot{
		State:        f.State(),
		Engaged:      f.state.engaged,
		Index:        f.CurrentIndex(),
		Count:        len(f.galleryImages()),
		Fragment:     f.env.Window.Fragment(),
		Transform:    f.state.transform,
		Viewport:     vp,
		ChromeHidden: f.state.chromeHidden,
		PrevDisabled: f.state.prevDisabled,
		NextDisabled: f.state.nextDisabled,
		Focused:      f.Focused(),
	}
	if f.state.clone != nil {
		s.Cursor = geometry.Cursor(f.state.transform, vp)
	}
	if f.overlay != nil {
		s.Caption = f.ui.caption.InnerHTML()
		s.Number = f.ui.number.InnerHTML()
	}
	return s
}

func (f *ImageFocus) viewport() geometry.Size {
	w, h := f.env.Window.Viewport()
	return geometry.Size{Width: w, Height: h}
}
