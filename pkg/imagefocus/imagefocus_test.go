package imagefocus

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/recera/imagefocus/pkg/dom"
	"github.com/recera/imagefocus/pkg/dom/htmldom"
	"github.com/recera/imagefocus/pkg/notify"
)

func TestNew_RejectsInvalidSelector(t *testing.T) {
	doc, err := htmldom.ParseString(testPage)
	if err != nil {
		t.Fatal(err)
	}
	win := htmldom.NewWindow(doc, 1000, 800)
	_, err = New(Env{Document: doc, Window: win, Clock: newFakeClock()}, &Options{ContentImagesSelector: "figure["})
	if err == nil {
		t.Fatal("Expected error for invalid selector")
	}
	if !strings.Contains(err.Error(), "content images selector") {
		t.Errorf("Expected error to name the selector, got %v", err)
	}

	_, err = New(Env{Document: doc, Window: win}, nil)
	if err == nil {
		t.Error("Expected error without a clock")
	}
}

func TestFocus_BeforeSetup(t *testing.T) {
	h := newHarness(t, testPage, nil)
	if err := h.focus.Focus(h.el("a")); !errors.Is(err, ErrNoOverlay) {
		t.Errorf("Expected ErrNoOverlay, got %v", err)
	}
	h.start()
	if err := h.focus.Focus(h.el("linked")); !errors.Is(err, ErrNotFocusable) {
		t.Errorf("Expected ErrNotFocusable, got %v", err)
	}
}

func TestSetup_InsertsOverlayOnce(t *testing.T) {
	h := newHarness(t, testPage, nil)
	h.start()
	if err := h.focus.Setup(); err != nil {
		t.Fatalf("Second Setup failed: %v", err)
	}

	overlays := h.doc.QueryAll("#image-focus-overlay")
	if len(overlays) != 1 {
		t.Fatalf("Expected 1 overlay, got %d", len(overlays))
	}
	if overlays[0].Parent() != h.doc.Body() {
		t.Error("Expected overlay to be a child of body")
	}
	if h.events[EventSetupDidComplete] != 1 {
		t.Errorf("Expected 1 setup notification, got %d", h.events[EventSetupDidComplete])
	}
	if !h.focus.Snapshot().ChromeHidden {
		t.Error("Expected chrome to start hidden")
	}
	if h.inputListeners() != 0 {
		t.Errorf("Expected no input listeners before engagement, got %d", h.inputListeners())
	}
}

func TestSetup_ButtonsSkipKeyboardFocus(t *testing.T) {
	h := newHarness(t, testPage, nil)
	h.start()

	buttons := h.doc.QueryAll(".slideshow-button")
	if len(buttons) != 2 {
		t.Fatalf("Expected 2 slideshow buttons, got %d", len(buttons))
	}
	for _, b := range buttons {
		if v, _ := b.Attr("tabindex"); v != "-1" {
			t.Errorf("Expected tabindex -1, got %q", v)
		}
	}
}

func TestProcessImages_Classification(t *testing.T) {
	h := newHarness(t, testPage, nil)
	h.start()

	tests := []struct {
		id        string
		focusable bool
		gallery   bool
	}{
		{"a", true, true},
		{"b", true, true},
		{"c", true, true},
		{"linked", false, false},
		{"thumb", true, false},
		{"opted-out", false, false},
		{"fn", true, false},
		{"side", true, false},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			el := h.el(tt.id)
			if got := el.HasClass("focusable"); got != tt.focusable {
				t.Errorf("Expected focusable %v, got %v", tt.focusable, got)
			}
			if got := el.HasClass("gallery-image"); got != tt.gallery {
				t.Errorf("Expected gallery %v, got %v", tt.gallery, got)
			}
			if tt.focusable {
				if p := el.Parent(); p == nil || !p.HasClass("image-wrapper") {
					t.Error("Expected figure image to be wrapped")
				}
			}
		})
	}

	if n, _ := h.doc.Query(".image-number").Attr("data-number-of-images"); n != "3" {
		t.Errorf("Expected data-number-of-images 3, got %q", n)
	}
	if k, _ := h.el("a").Attr("accesskey"); k != "l" {
		t.Errorf("Expected access key on first gallery image, got %q", k)
	}
	if h.events[EventImagesDidProcess] != 1 {
		t.Errorf("Expected 1 processed notification, got %d", h.events[EventImagesDidProcess])
	}
}

func TestProcessImages_Idempotent(t *testing.T) {
	h := newHarness(t, testPage, nil)
	h.start()
	h.inject()
	h.inject()

	a := h.el("a").(*htmldom.Element)
	if a.ListenerCount("click") != 1 {
		t.Errorf("Expected 1 click listener, got %d", a.ListenerCount("click"))
	}
	if n := len(h.doc.QueryAll(".image-wrapper .image-wrapper")); n != 0 {
		t.Errorf("Expected no nested wrappers, got %d", n)
	}
	if n := len(h.focus.GalleryImages()); n != 3 {
		t.Errorf("Expected 3 gallery images, got %d", n)
	}
}

func TestProcessImages_ForgetsRemovedImages(t *testing.T) {
	h := newHarness(t, testPage, nil)
	h.start()

	b := h.el("b")
	b.Parent().Remove()
	h.inject()

	if _, ok := h.focus.images[b]; ok {
		t.Error("Expected removed image to be forgotten")
	}
	if b.(*htmldom.Element).ListenerCount("click") != 0 {
		t.Error("Expected removed image's click handler to be released")
	}
	if n := len(h.focus.GalleryImages()); n != 2 {
		t.Errorf("Expected 2 gallery images, got %d", n)
	}
}

func TestGalleryInclusionTest(t *testing.T) {
	h := newHarness(t, testPage, &Options{
		GalleryInclusionTest: func(dom.Element) bool { return false },
	})
	h.start()
	if n := len(h.focus.GalleryImages()); n != 0 {
		t.Errorf("Expected empty gallery, got %d", n)
	}
}

// Scenario: step through a gallery with the keyboard, then exit
func TestGallery_NavigateAndExit(t *testing.T) {
	h := newHarness(t, testPage, nil)
	h.win.SetFragment("intro")
	h.start()

	h.click(h.el("b"))

	s := h.focus.Snapshot()
	if s.State != FocusedGallery {
		t.Fatalf("Expected focused-gallery, got %v", s.State)
	}
	if s.Index != 1 || s.Count != 3 {
		t.Errorf("Expected index 1 of 3, got %d of %d", s.Index, s.Count)
	}
	if s.Number != "2" {
		t.Errorf("Expected counter 2, got %q", s.Number)
	}
	if s.PrevDisabled || s.NextDisabled {
		t.Error("Expected both buttons enabled in the middle of the gallery")
	}
	if s.Fragment != "if_slide_2" {
		t.Errorf("Expected fragment if_slide_2, got %q", s.Fragment)
	}
	if !h.focus.Overlay().HasClass("slideshow") || !h.focus.Overlay().HasClass("engaged") {
		t.Error("Expected overlay to be engaged in slideshow mode")
	}
	if h.win.PageScrolling() {
		t.Error("Expected page scrolling to be disabled")
	}
	if h.win.Revealed() != h.el("b") {
		t.Error("Expected focused image to be revealed")
	}

	if ev := h.key("ArrowRight"); !ev.DefaultPrevented() {
		t.Error("Expected handled key to prevent default")
	}
	s = h.focus.Snapshot()
	if s.Focused != h.el("c") || s.Fragment != "if_slide_3" {
		t.Errorf("Expected c at if_slide_3, got %v at %q", s.Focused, s.Fragment)
	}
	if !s.NextDisabled || s.PrevDisabled {
		t.Error("Expected only next disabled at the end")
	}

	h.key("Right")
	if h.focus.Focused() != h.el("c") {
		t.Error("Expected next at the end of the gallery to do nothing")
	}

	h.key("Esc")
	if h.focus.Engaged() || h.focus.State() != Unfocused {
		t.Error("Expected overlay to exit")
	}
	if h.win.Fragment() != "intro" {
		t.Errorf("Expected fragment restored to intro, got %q", h.win.Fragment())
	}
	c := h.el("c")
	if !c.HasClass("last-focused") || c.HasClass("focused") {
		t.Error("Expected exited image to be marked last-focused")
	}
	if k, _ := c.Attr("accesskey"); k != "l" {
		t.Errorf("Expected access key on last-focused image, got %q", k)
	}
	if h.focus.Overlay().Query("img") != nil {
		t.Error("Expected clone to be removed from the overlay")
	}
	if !h.win.PageScrolling() {
		t.Error("Expected page scrolling to be restored")
	}
	if h.inputListeners() != 0 {
		t.Errorf("Expected input listeners detached, got %d", h.inputListeners())
	}

	// Re-entering clears the previous marker
	h.click(h.el("a"))
	if c.HasClass("last-focused") {
		t.Error("Expected last-focused marker to be cleared")
	}
	if _, ok := c.Attr("accesskey"); ok {
		t.Error("Expected access key to be cleared")
	}
}

// Scenario: a single image outside the gallery
func TestSingleImage(t *testing.T) {
	h := newHarness(t, testPage, nil)
	h.win.SetFragment("top")
	h.start()

	h.click(h.el("side"))
	s := h.focus.Snapshot()
	if s.State != FocusedSingle {
		t.Fatalf("Expected focused-single, got %v", s.State)
	}
	if s.Index != NoIndex {
		t.Errorf("Expected NoIndex, got %d", s.Index)
	}
	if h.focus.Overlay().HasClass("slideshow") {
		t.Error("Expected no slideshow mode for a single image")
	}
	if s.Caption != "<p>Side &amp; note</p>" {
		t.Errorf("Expected caption from title, got %q", s.Caption)
	}

	h.key("ArrowRight")
	h.key("ArrowLeft")
	if h.focus.Focused() != h.el("side") {
		t.Error("Expected arrow keys to do nothing for a single image")
	}

	h.key("Escape")
	if h.focus.Engaged() {
		t.Error("Expected overlay to exit")
	}
	if len(h.win.History) != 0 || h.win.Fragment() != "top" {
		t.Errorf("Expected fragment untouched, got %q after %v", h.win.Fragment(), h.win.History)
	}
	if h.el("side").HasClass("last-focused") {
		t.Error("Expected single image not to be remembered")
	}
}

func TestFocus_CloneAndCaption(t *testing.T) {
	h := newHarness(t, testPage, nil)
	h.start()

	h.click(h.el("a"))
	clone := h.focus.Clone()
	if clone == nil || !h.focus.Overlay().Contains(clone) {
		t.Fatal("Expected clone inside the overlay")
	}
	if _, ok := clone.Attr("width"); ok {
		t.Error("Expected width attribute stripped from clone")
	}
	if got := clone.Style("width"); got != "800px" {
		t.Errorf("Expected width 800px, got %q", got)
	}
	if got := clone.Style("height"); got != "600px" {
		t.Errorf("Expected height 600px, got %q", got)
	}
	if got := clone.Style("filter"); got != DefaultDropShadow {
		t.Errorf("Expected drop shadow filter, got %q", got)
	}
	if got := h.focus.Snapshot().Caption; got != "<p>First <em>caption</em></p>" {
		t.Errorf("Expected caption from figcaption, got %q", got)
	}

	h.click(h.el("c"))
	if got := h.focus.Clone().Style("filter"); got != "grayscale(1) "+DefaultDropShadow {
		t.Errorf("Expected source filter kept, got %q", got)
	}
	if h.events[EventImageDidUnfocus] != 1 || h.events[EventImageDidFocus] != 2 {
		t.Errorf("Expected 2 focus and 1 unfocus, got %d and %d",
			h.events[EventImageDidFocus], h.events[EventImageDidUnfocus])
	}
	if h.events[EventImageOverlayDidAppear] != 1 {
		t.Errorf("Expected overlay to appear once, got %d", h.events[EventImageOverlayDidAppear])
	}
	if n := len(h.focus.Overlay().QueryAll("img")); n != 1 {
		t.Errorf("Expected exactly one clone, got %d", n)
	}
}

func TestFocus_GalleryOrder(t *testing.T) {
	h := newHarness(t, testPage, nil)
	h.start()

	for i, el := range h.focus.GalleryImages() {
		if err := h.focus.Focus(el); err != nil {
			t.Fatal(err)
		}
		if got := h.focus.CurrentIndex(); got != i {
			t.Errorf("Expected index %d, got %d", i, got)
		}
		if want := h.focus.SlideFragment(i + 1); h.win.Fragment() != want {
			t.Errorf("Expected fragment %q, got %q", want, h.win.Fragment())
		}
	}
}

func TestFocus_DeferredFit(t *testing.T) {
	page := strings.Replace(testPage, "<p>Intro</p>",
		`<figure><img id="lazy" src="z.png"></figure>`, 1)
	h := newHarness(t, page, nil)
	h.start()

	h.click(h.el("lazy"))
	clone := h.focus.Clone()
	if got := clone.Style("width"); got != "" {
		t.Errorf("Expected no size before decode, got %q", got)
	}

	h.doc.Decode(clone, 3900, 2000)
	tr := h.focus.Snapshot().Transform
	if tr.Width != 975 || tr.Height != 500 {
		t.Errorf("Expected 975x500 after decode, got %vx%v", tr.Width, tr.Height)
	}
}

func TestFocus_DeferredFitIgnoredAfterExit(t *testing.T) {
	page := strings.Replace(testPage, "<p>Intro</p>",
		`<figure><img id="lazy" src="z.png"></figure>`, 1)
	h := newHarness(t, page, nil)
	h.start()

	h.click(h.el("lazy"))
	clone := h.focus.Clone()
	h.key("Escape")
	h.doc.Decode(clone, 3900, 2000)
	if got := clone.Style("width"); got != "" {
		t.Errorf("Expected stale clone untouched, got %q", got)
	}
}

func TestFragment_FocusOnLoad(t *testing.T) {
	tests := []struct {
		name     string
		fragment string
		want     string
	}{
		{"valid", "if_slide_2", "b"},
		{"first", "if_slide_1", "a"},
		{"out of range", "if_slide_7", ""},
		{"zero", "if_slide_0", ""},
		{"malformed", "if_slide_two", ""},
		{"other fragment", "section-2", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, testPage, nil)
			h.win.SetFragment(tt.fragment)
			h.start()

			got := h.focus.Focused()
			if tt.want == "" {
				if got != nil {
					t.Errorf("Expected no focus, got %v", got)
				}
				if h.win.Fragment() != tt.fragment {
					t.Errorf("Expected fragment left as %q, got %q", tt.fragment, h.win.Fragment())
				}
				return
			}
			if got != h.el(tt.want) {
				t.Errorf("Expected #%s focused", tt.want)
			}
		})
	}
}

func TestFragment_FocusWhenLoadedBeforeContent(t *testing.T) {
	h := newHarness(t, testPage, nil)
	h.win.SetFragment("if_slide_2")
	h.win.Load()
	if err := h.focus.Setup(); err != nil {
		t.Fatalf("Setup failed: %v", err)
	}
	if h.focus.Focused() != nil {
		t.Fatal("Expected nothing focused before content is injected")
	}

	h.inject()
	if h.focus.Focused() != h.el("b") {
		t.Fatalf("Expected #b focused from if_slide_2, got %v", h.focus.Focused())
	}

	// Later injections leave the user's choice alone
	h.click(h.el("c"))
	h.inject()
	if h.focus.Focused() != h.el("c") {
		t.Errorf("Expected #c to stay focused, got %v", h.focus.Focused())
	}
}

func TestFragment_InjectedOtherDocumentIgnored(t *testing.T) {
	h := newHarness(t, testPage, nil)
	h.win.SetFragment("if_slide_1")
	h.win.Load()
	if err := h.focus.Setup(); err != nil {
		t.Fatalf("Setup failed: %v", err)
	}

	other, err := htmldom.ParseString(testPage)
	if err != nil {
		t.Fatal(err)
	}
	h.bus.FireEvent(EventContentDidInject, notify.Info{
		"container": h.doc.Body(),
		"document":  other,
	})
	if h.focus.Focused() != nil {
		t.Errorf("Expected no focus from another document's content, got %v", h.focus.Focused())
	}

	h.inject()
	if h.focus.Focused() != h.el("a") {
		t.Errorf("Expected #a focused once the main content arrives, got %v", h.focus.Focused())
	}
}

func TestFragment_HashChange(t *testing.T) {
	h := newHarness(t, testPage, nil)
	h.start()

	h.win.SetFragment("if_slide_3")
	h.bus.FireEvent(EventHashDidChange, nil)
	if h.focus.Focused() != h.el("c") {
		t.Fatal("Expected hash change to focus slide 3")
	}

	h.key("Escape")
	if h.win.Fragment() != "" {
		t.Errorf("Expected fragment cleared when none was saved, got %q", h.win.Fragment())
	}
}

func TestInput_ListenersScopedToEngagement(t *testing.T) {
	h := newHarness(t, testPage, nil)
	h.start()

	for round := 0; round < 3; round++ {
		h.click(h.el("a"))
		if got := h.inputListeners(); got != 5 {
			t.Errorf("Round %d: expected 5 input listeners, got %d", round, got)
		}
		h.click(h.el("b"))
		if got := h.inputListeners(); got != 5 {
			t.Errorf("Round %d: expected listeners not duplicated, got %d", round, got)
		}
		h.focus.Exit()
		if got := h.inputListeners(); got != 0 {
			t.Errorf("Round %d: expected 0 input listeners, got %d", round, got)
		}
	}
	if h.events[EventImageOverlayDidDisappear] != 3 {
		t.Errorf("Expected 3 disappear notifications, got %d", h.events[EventImageOverlayDidDisappear])
	}

	h.focus.Exit()
	if h.events[EventImageOverlayDidDisappear] != 3 {
		t.Error("Expected Exit when not engaged to do nothing")
	}
}

func TestInput_WheelZoomAndPan(t *testing.T) {
	h := newHarness(t, testPage, nil)
	h.start()
	h.click(h.el("c"))

	fit := h.focus.Snapshot().Transform
	if fit.Width != 975 || fit.Height != 650 {
		t.Fatalf("Expected fit 975x650, got %vx%v", fit.Width, fit.Height)
	}
	if h.focus.Snapshot().Cursor != "" {
		t.Error("Expected default cursor for a fitted image")
	}

	if ev := h.wheel(-100, 500, 400); !ev.DefaultPrevented() {
		t.Error("Expected wheel to prevent default")
	}
	zoomed := h.focus.Snapshot().Transform
	if zoomed.Width <= fit.Width {
		t.Fatalf("Expected zoom in, got width %v", zoomed.Width)
	}
	if h.focus.Snapshot().Cursor != "move" {
		t.Error("Expected move cursor once pannable")
	}

	clone := h.focus.Clone()
	h.mouse("mousedown", clone, 500, 400)
	h.mouse("mousemove", clone, 520, 430)
	dragged := h.focus.Snapshot().Transform
	if !near(dragged.Left, zoomed.Left+20) || !near(dragged.Top, zoomed.Top+30) {
		t.Errorf("Expected 1:1 drag, got offset (%v, %v) from (%v, %v)",
			dragged.Left, dragged.Top, zoomed.Left, zoomed.Top)
	}
	if dragged.Filter != "none" {
		t.Errorf("Expected filter removed while dragging, got %q", dragged.Filter)
	}

	h.mouse("mouseup", clone, 520, 430)
	if !h.focus.Engaged() {
		t.Fatal("Expected drag release to keep the overlay open")
	}
	if got := h.focus.Snapshot().Transform.Filter; got != "grayscale(1) "+DefaultDropShadow {
		t.Errorf("Expected filter restored, got %q", got)
	}

	h.mouse("mousemove", clone, 600, 600)
	released := dragged
	released.Filter = "grayscale(1) " + DefaultDropShadow
	if h.focus.Snapshot().Transform != released {
		t.Error("Expected mouse move after release not to pan")
	}

	h.key(" ")
	if got := h.focus.Snapshot().Transform; got != fit {
		t.Errorf("Expected space to reset to %+v, got %+v", fit, got)
	}
}

func TestInput_WheelDuringDragKeepsSize(t *testing.T) {
	h := newHarness(t, testPage, nil)
	h.start()
	h.click(h.el("c"))
	h.wheel(-100, 500, 400)

	clone := h.focus.Clone()
	h.mouse("mousedown", clone, 500, 400)
	h.wheel(-400, 500, 400)
	zoomed := h.focus.Snapshot().Transform

	h.mouse("mousemove", clone, 501, 400)
	moved := h.focus.Snapshot().Transform
	if moved.Width != zoomed.Width || moved.Height != zoomed.Height {
		t.Errorf("Expected size %vx%v kept after move, got %vx%v",
			zoomed.Width, zoomed.Height, moved.Width, moved.Height)
	}
}

func TestFocus_RepeatedFocusDoesNotGrowWrappers(t *testing.T) {
	h := newHarness(t, testPage, nil)
	h.start()

	h.click(h.el("a"))
	h.focus.Exit()
	before := h.doc.WrapperCount()

	for i := 0; i < 200; i++ {
		h.click(h.el("a"))
		h.click(h.el("b"))
		h.focus.Exit()
	}
	if after := h.doc.WrapperCount(); after != before {
		t.Errorf("Expected %d wrappers after repeated focus, got %d", before, after)
	}
}

func TestInput_MouseUpExits(t *testing.T) {
	tests := []struct {
		name   string
		target func(h *harness) dom.Element
		button int
		exits  bool
	}{
		{"clone of fitted image", func(h *harness) dom.Element { return h.focus.Clone() }, 0, true},
		{"backdrop", func(h *harness) dom.Element { return h.focus.Overlay() }, 0, true},
		{"root", func(h *harness) dom.Element { return nil }, 0, false},
		{"button", func(h *harness) dom.Element { return h.doc.Query(".slideshow-button.next") }, 0, false},
		{"help", func(h *harness) dom.Element { return h.doc.Query(".help-overlay p") }, 0, false},
		{"secondary button", func(h *harness) dom.Element { return h.focus.Clone() }, 2, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, testPage, nil)
			h.start()
			h.click(h.el("b"))

			ev := dom.NewEvent("mouseup", nil)
			ev.Button = tt.button
			h.doc.Dispatch(tt.target(h), ev)

			if h.focus.Engaged() == tt.exits {
				t.Errorf("Expected exit %v, got engaged %v", tt.exits, h.focus.Engaged())
			}
		})
	}
}

func TestInput_MouseDownOnFittedImageDoesNotDrag(t *testing.T) {
	h := newHarness(t, testPage, nil)
	h.start()
	h.click(h.el("b"))

	before := h.win.ListenerCount("mousemove")
	if ev := h.mouse("mousedown", h.focus.Clone(), 10, 10); !ev.DefaultPrevented() {
		t.Error("Expected primary mousedown to prevent default")
	}
	if got := h.win.ListenerCount("mousemove"); got != before {
		t.Errorf("Expected no drag handler, got %d mousemove listeners", got)
	}
}

func TestInput_DoubleClickExits(t *testing.T) {
	h := newHarness(t, testPage, nil)
	h.start()
	h.click(h.el("c"))
	h.wheel(-400, 500, 400)

	h.doc.Dispatch(h.focus.Clone(), dom.NewEvent("dblclick", nil))
	if h.focus.Engaged() {
		t.Error("Expected double click to exit")
	}
}

func TestButtons_Navigate(t *testing.T) {
	h := newHarness(t, testPage, nil)
	h.start()
	h.click(h.el("a"))

	if !h.focus.Snapshot().PrevDisabled {
		t.Error("Expected previous disabled at the start")
	}
	next := h.doc.Query(".slideshow-button.next")
	h.click(next)
	if h.focus.Focused() != h.el("b") {
		t.Fatal("Expected next button to focus b")
	}
	if h.clock.Pending() != 0 {
		t.Errorf("Expected button click to cancel the hide timer, got %d pending", h.clock.Pending())
	}
	h.click(h.doc.Query(".slideshow-button.previous"))
	if h.focus.Focused() != h.el("a") {
		t.Error("Expected previous button to focus a")
	}
}

func TestHideTimer(t *testing.T) {
	h := newHarness(t, testPage, nil)
	h.start()
	h.click(h.el("a"))

	if h.focus.Snapshot().ChromeHidden {
		t.Fatal("Expected chrome shown on focus")
	}
	if h.clock.Pending() != 1 {
		t.Fatalf("Expected 1 pending timer, got %d", h.clock.Pending())
	}

	h.clock.Advance(time.Second)
	h.mouse("mousemove", h.focus.Clone(), 100, 100)
	if h.clock.Pending() != 1 {
		t.Errorf("Expected movement not to add a timer, got %d", h.clock.Pending())
	}

	// The original timer finds recent movement and waits out the rest
	h.clock.Advance(500 * time.Millisecond)
	if h.focus.Snapshot().ChromeHidden {
		t.Error("Expected chrome shown 500ms after movement")
	}
	if h.clock.Pending() != 1 {
		t.Errorf("Expected timer re-armed, got %d", h.clock.Pending())
	}
	h.clock.Advance(999 * time.Millisecond)
	if h.focus.Snapshot().ChromeHidden {
		t.Error("Expected chrome shown before the idle period ends")
	}
	h.clock.Advance(time.Millisecond)
	if !h.focus.Snapshot().ChromeHidden {
		t.Error("Expected chrome hidden after 1.5s idle")
	}
	if h.clock.Pending() != 0 {
		t.Errorf("Expected no timer after hiding, got %d", h.clock.Pending())
	}

	// Moving again shows the chrome and arms one timer
	h.mouse("mousemove", h.focus.Overlay(), 100, 100)
	if h.focus.Snapshot().ChromeHidden || h.clock.Pending() != 1 {
		t.Error("Expected movement over the backdrop to show the chrome")
	}

	// Moving onto the chrome keeps it shown
	h.mouse("mousemove", h.doc.Query(".caption"), 100, 100)
	if h.clock.Pending() != 0 {
		t.Errorf("Expected timer cancelled over the chrome, got %d", h.clock.Pending())
	}

	h.focus.Exit()
	if h.clock.Pending() != 0 {
		t.Errorf("Expected exit to cancel timers, got %d", h.clock.Pending())
	}
}

func TestHideTimer_NeverArmsOnMobile(t *testing.T) {
	h := newHarness(t, testPage, nil)
	h.win.SetMobile(true)
	h.start()
	h.click(h.el("a"))

	if h.clock.Pending() != 0 {
		t.Errorf("Expected no hide timer on mobile, got %d", h.clock.Pending())
	}
	h.clock.Advance(10 * time.Second)
	if h.focus.Snapshot().ChromeHidden {
		t.Error("Expected chrome to stay shown on mobile")
	}
}

func TestOrientationChange_Refits(t *testing.T) {
	h := newHarness(t, testPage, nil)
	h.start()
	h.click(h.el("c"))
	h.wheel(-100, 500, 400)

	h.win.SetViewport(800, 1000)
	tr := h.focus.Snapshot().Transform
	if tr.Width != 780 || tr.Height != 520 || tr.Left != 0 || tr.Top != 0 {
		t.Errorf("Expected refit to 780x520 at origin, got %+v", tr)
	}
}

func TestDispose(t *testing.T) {
	h := newHarness(t, testPage, nil)
	h.start()
	h.click(h.el("a"))
	h.focus.Dispose()

	if h.doc.Query("#image-focus-overlay") != nil {
		t.Error("Expected overlay removed")
	}
	if h.inputListeners() != 0 {
		t.Errorf("Expected input listeners removed, got %d", h.inputListeners())
	}
	if h.el("a").(*htmldom.Element).ListenerCount("click") != 0 {
		t.Error("Expected image click handlers removed")
	}
	if h.bus.HandlerCount(EventContentDidInject) != 0 {
		t.Error("Expected bus subscriptions removed")
	}
}

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestImages_DocumentOrder(t *testing.T) {
	h := newHarness(t, testPage, nil)
	h.start()

	var got []string
	for _, info := range h.focus.Images() {
		id, _ := info.Element.Attr("id")
		got = append(got, id)
		if info.Gallery != (info.Index != NoIndex) {
			t.Errorf("Expected #%s gallery flag to match index %d", id, info.Index)
		}
	}
	want := "a b c thumb fn side"
	if strings.Join(got, " ") != want {
		t.Errorf("Expected %q, got %q", want, strings.Join(got, " "))
	}
}
