package imagefocus

import (
	"io"
	"log/slog"
	"sort"
	"testing"
	"time"

	"github.com/recera/imagefocus/pkg/dom"
	"github.com/recera/imagefocus/pkg/dom/htmldom"
	"github.com/recera/imagefocus/pkg/notify"
	"github.com/recera/imagefocus/pkg/scheduler"
)

// fakeClock is a manually advanced scheduler.Clock
type fakeClock struct {
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	at      time.Time
	fn      func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, fn func()) scheduler.Timer {
	t := &fakeTimer{at: c.now.Add(d), fn: fn}
	c.timers = append(c.timers, t)
	return t
}

// Advance moves time forward by d, firing due timers in order
func (c *fakeClock) Advance(d time.Duration) {
	target := c.now.Add(d)
	for {
		due := c.pending()
		sort.SliceStable(due, func(i, j int) bool { return due[i].at.Before(due[j].at) })
		if len(due) == 0 || due[0].at.After(target) {
			break
		}
		next := due[0]
		c.now = next.at
		next.fired = true
		next.fn()
	}
	c.now = target
}

func (c *fakeClock) pending() []*fakeTimer {
	var out []*fakeTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			out = append(out, t)
		}
	}
	return out
}

// Pending returns the number of timers that have not fired or been stopped
func (c *fakeClock) Pending() int {
	return len(c.pending())
}

const testPage = `<!DOCTYPE html>
<html><head><title>Test</title></head><body>
<div id="markdownBody" class="markdownBody">
  <p>Intro</p>
  <figure><img id="a" src="a.png" width="800" height="600" title="Alpha"><figcaption>First <em>caption</em></figcaption></figure>
  <figure><img id="b" src="b.png" data-natural-width="400" data-natural-height="300"></figure>
  <figure><a href="/x"><img id="linked" src="l.png" width="10" height="10"></a></figure>
  <figure><img id="c" src="c.png" width="3000" height="2000" style="filter: grayscale(1)"></figure>
  <figure><img id="thumb" class="page-thumbnail" src="t.png" width="100" height="100"></figure>
  <figure class="image-focus-not"><img id="opted-out" src="o.png" width="100" height="100"></figure>
  <div class="footnotes"><figure><img id="fn" src="f.png" width="50" height="50"></figure></div>
</div>
<div class="markdownBody"><figure><img id="side" src="s.png" width="200" height="100" title="Side & note"></figure></div>
</body></html>`

type harness struct {
	t      *testing.T
	doc    *htmldom.Document
	win    *htmldom.Window
	clock  *fakeClock
	bus    *notify.Center
	focus  *ImageFocus
	events map[string]int
}

func newHarness(t *testing.T, page string, opts *Options) *harness {
	t.Helper()
	doc, err := htmldom.ParseString(page)
	if err != nil {
		t.Fatalf("Failed to parse page: %v", err)
	}
	h := &harness{
		t:      t,
		doc:    doc,
		win:    htmldom.NewWindow(doc, 1000, 800),
		clock:  newFakeClock(),
		bus:    notify.NewCenter(),
		events: make(map[string]int),
	}
	if opts == nil {
		opts = &Options{}
	}
	opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	h.focus, err = New(Env{Document: doc, Window: h.win, Bus: h.bus, Clock: h.clock}, opts)
	if err != nil {
		t.Fatalf("Failed to create overlay: %v", err)
	}
	for _, name := range []string{
		EventSetupDidComplete, EventImagesDidProcess, EventImageDidFocus,
		EventImageDidUnfocus, EventImageOverlayDidAppear, EventImageOverlayDidDisappear,
	} {
		h.bus.AddHandler(name, func(notify.Info) { h.events[name]++ })
	}
	return h
}

// start sets up the overlay, injects the body, and finishes loading
func (h *harness) start() {
	h.t.Helper()
	if err := h.focus.Setup(); err != nil {
		h.t.Fatalf("Setup failed: %v", err)
	}
	h.inject()
	h.win.Load()
}

func (h *harness) inject() {
	h.bus.FireEvent(EventContentDidInject, notify.Info{
		"container": h.doc.Body(),
		"document":  h.doc,
	})
}

func (h *harness) el(id string) dom.Element {
	h.t.Helper()
	e := h.doc.Query("#" + id)
	if e == nil {
		h.t.Fatalf("No element #%s", id)
	}
	return e
}

func (h *harness) click(target dom.Element) {
	h.doc.Dispatch(target, dom.NewEvent("click", nil))
}

func (h *harness) key(k string) *dom.Event {
	ev := dom.NewEvent("keyup", nil)
	ev.Key = k
	h.doc.Dispatch(nil, ev)
	return ev
}

func (h *harness) mouse(typ string, target dom.Element, x, y float64) *dom.Event {
	ev := dom.NewEvent(typ, nil)
	ev.Button = dom.ButtonPrimary
	ev.ClientX, ev.ClientY = x, y
	h.doc.Dispatch(target, ev)
	return ev
}

func (h *harness) wheel(deltaY, x, y float64) *dom.Event {
	ev := dom.NewEvent("wheel", nil)
	ev.DeltaY = deltaY
	ev.ClientX, ev.ClientY = x, y
	h.doc.Dispatch(h.focus.Clone(), ev)
	return ev
}

// inputListeners totals the router's window and document listeners
func (h *harness) inputListeners() int {
	n := h.doc.ListenerCount("keyup")
	for _, typ := range []string{"wheel", "mousedown", "mouseup", "mousemove"} {
		n += h.win.ListenerCount(typ)
	}
	return n
}
