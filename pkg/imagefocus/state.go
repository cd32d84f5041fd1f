package imagefocus

import (
	"time"

	"github.com/recera/imagefocus/pkg/dom"
	"github.com/recera/imagefocus/pkg/geometry"
	"github.com/recera/imagefocus/pkg/scheduler"
)

// NoIndex is returned by CurrentIndex when no gallery image is focused
const NoIndex = -1

// FocusState is the state of the focus state machine
type FocusState int

const (
	Unfocused FocusState = iota
	FocusedSingle
	FocusedGallery
)

func (s FocusState) String() string {
	switch s {
	case Unfocused:
		return "unfocused"
	case FocusedSingle:
		return "focused-single"
	case FocusedGallery:
		return "focused-gallery"
	default:
		return "unknown"
	}
}

// image is a registered focusable image
type image struct {
	el      dom.Element
	gallery bool
	// release removes the click handler installed by the scan
	release func()
}

// session owns the listeners attached for one engagement of the overlay.
// Dispose releases them all, whichever path leaves the overlay.
type session struct {
	release []func()
}

func (s *session) add(fn func()) {
	s.release = append(s.release, fn)
}

// Dispose runs every release function in reverse order
func (s *session) Dispose() {
	for i := len(s.release) - 1; i >= 0; i-- {
		s.release[i]()
	}
	s.release = nil
}

// overlayState is everything that changes while the overlay is in use
type overlayState struct {
	engaged bool
	session *session

	focused   *image
	clone     dom.Element
	transform geometry.Transform
	// baseFilter is the clone's filter at rest: the source's filter plus the
	// drop shadow
	baseFilter string

	// savedFragment is the non-slide fragment in place when the gallery was
	// entered; exiting relocates to it, so an empty one clears the fragment
	savedFragment string

	hideTimer        scheduler.Timer
	chromeHidden     bool
	mouseLastMovedAt time.Time

	lastFocused *image

	pan     *geometry.Pan
	endDrag func()

	prevDisabled bool
	nextDisabled bool
}

// Snapshot is a read-only view of the overlay, for hosts that draw their own
// presentation and for tests
type Snapshot struct {
	State   FocusState
	Engaged bool
	// Index is the 0-based gallery position, or NoIndex
	Index        int
	Count        int
	Fragment     string
	Transform    geometry.Transform
	Viewport     geometry.Size
	Cursor       string
	ChromeHidden bool
	Caption      string
	// Number is the text of the image-number indicator
	Number       string
	PrevDisabled bool
	NextDisabled bool
	Focused      dom.Element
}
