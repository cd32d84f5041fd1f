// Package host runs the image focus overlay against an HTML file in the
// headless DOM. Every call is serialized onto a scheduler loop, which also
// runs the overlay's hide timer.
package host

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/recera/imagefocus/cmd/imagefocus/internal/config"
	"github.com/recera/imagefocus/cmd/imagefocus/internal/imagesize"
	"github.com/recera/imagefocus/cmd/imagefocus/internal/markdown"
	"github.com/recera/imagefocus/pkg/dom"
	"github.com/recera/imagefocus/pkg/dom/htmldom"
	"github.com/recera/imagefocus/pkg/imagefocus"
	"github.com/recera/imagefocus/pkg/notify"
	"github.com/recera/imagefocus/pkg/scheduler"
)

// Page is a loaded page with a running overlay
type Page struct {
	Path string

	doc   *htmldom.Document
	win   *htmldom.Window
	loop  *scheduler.Loop
	bus   *notify.Center
	focus *imagefocus.ImageFocus
	log   *slog.Logger
}

// Image describes a registered image for display
type Image struct {
	Src     string
	Title   string
	Gallery bool
	Index   int
	Width   float64
	Height  float64
}

// State is a consistent view of the page taken on the loop
type State struct {
	imagefocus.Snapshot
	Images []Image
	// Selected is the position in Images of the focused image, or -1
	Selected int
}

// Open parses the file at path and starts an overlay on it
func Open(path string, cfg *config.Config, logger *slog.Logger) (*Page, error) {
	return OpenAt(path, "", cfg, logger)
}

// OpenAt is Open with the page's URL fragment set before it loads
func OpenAt(path, fragment string, cfg *config.Config, logger *slog.Logger) (*Page, error) {
	doc, err := markdown.Load(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	decodeImages(doc, filepath.Dir(path), logger)
	p, err := start(doc, fragment, cfg, logger)
	if err != nil {
		return nil, err
	}
	p.Path = path
	return p, nil
}

// decodeImages gives images without declared dimensions the size of their
// local file, as a browser would after loading them
func decodeImages(doc *htmldom.Document, baseDir string, logger *slog.Logger) {
	for _, el := range doc.QueryAll("img") {
		if w, h := el.NaturalSize(); w > 0 && h > 0 {
			continue
		}
		src, _ := el.Attr("src")
		w, h, err := imagesize.ProbeSrc(baseDir, src)
		if err != nil {
			if logger != nil {
				logger.Debug("image size unknown", "src", src, "error", err)
			}
			continue
		}
		doc.Decode(el, float64(w), float64(h))
	}
}

// New starts an overlay on doc
func New(doc *htmldom.Document, cfg *config.Config, logger *slog.Logger) (*Page, error) {
	return start(doc, "", cfg, logger)
}

func start(doc *htmldom.Document, fragment string, cfg *config.Config, logger *slog.Logger) (*Page, error) {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Page{
		doc:  doc,
		win:  htmldom.NewWindow(doc, cfg.Viewport.Width, cfg.Viewport.Height),
		loop: scheduler.NewLoop(),
		bus:  notify.NewCenter(),
		log:  logger,
	}
	p.loop.SetErrorHandler(func(err interface{}) bool {
		logger.Error("overlay task failed", "error", err)
		return true
	})

	focus, err := imagefocus.New(imagefocus.Env{
		Document: doc,
		Window:   p.win,
		Bus:      p.bus,
		Clock:    p.loop,
	}, cfg.Options(logger))
	if err != nil {
		return nil, err
	}
	p.focus = focus
	p.win.SetFragment(fragment)

	p.loop.Start()
	p.loop.Do(func() {
		if err = focus.Setup(); err != nil {
			return
		}
		p.inject()
		p.win.Load()
	})
	if err != nil {
		p.loop.Stop()
		return nil, err
	}
	return p, nil
}

// inject announces the page body as newly injected content
func (p *Page) inject() {
	p.bus.FireEvent(imagefocus.EventContentDidInject, notify.Info{
		"container": p.doc.Body(),
		"document":  dom.Document(p.doc),
	})
}

// SetIdleHook sets a function called on the loop after every batch of work,
// including timer callbacks
func (p *Page) SetIdleHook(fn func()) {
	p.loop.SetIdleHook(fn)
}

// Close disposes the overlay and stops the loop
func (p *Page) Close() {
	p.loop.Do(p.focus.Dispose)
	p.loop.Stop()
}

// State captures the overlay and the registered images
func (p *Page) State() State {
	var s State
	p.loop.Do(func() {
		s.Snapshot = p.focus.Snapshot()
		s.Selected = -1
		for i, info := range p.focus.Images() {
			src, _ := info.Element.Attr("src")
			title, _ := info.Element.Attr("title")
			w, h := info.Element.NaturalSize()
			s.Images = append(s.Images, Image{
				Src:     src,
				Title:   title,
				Gallery: info.Gallery,
				Index:   info.Index,
				Width:   w,
				Height:  h,
			})
			if info.Element == s.Focused {
				s.Selected = i
			}
		}
	})
	return s
}

// Focus clicks the i-th registered image
func (p *Page) Focus(i int) {
	p.loop.Do(func() {
		images := p.focus.Images()
		if i < 0 || i >= len(images) {
			return
		}
		p.doc.Dispatch(images[i].Element, dom.NewEvent("click", nil))
	})
}

// Key sends a keyup for key
func (p *Page) Key(key string) {
	p.loop.Do(func() {
		ev := dom.NewEvent("keyup", nil)
		ev.Key = key
		p.doc.Dispatch(nil, ev)
	})
}

// Wheel sends one wheel tick over the viewport center
func (p *Page) Wheel(deltaY float64) {
	p.loop.Do(func() {
		clone := p.focus.Clone()
		if clone == nil {
			return
		}
		ev := p.pointer("wheel", 0, 0)
		ev.DeltaY = deltaY
		p.doc.Dispatch(clone, ev)
	})
}

// Pan drags the focused image by (dx, dy) when it is large enough to pan
func (p *Page) Pan(dx, dy float64) {
	p.loop.Do(func() {
		clone := p.focus.Clone()
		if clone == nil || p.focus.Snapshot().Cursor == "" {
			return
		}
		p.doc.Dispatch(clone, p.pointer("mousedown", 0, 0))
		p.doc.Dispatch(clone, p.pointer("mousemove", dx, dy))
		p.doc.Dispatch(clone, p.pointer("mouseup", dx, dy))
	})
}

// MoveMouse moves the mouse over the focused image
func (p *Page) MoveMouse() {
	p.loop.Do(func() {
		target := p.focus.Clone()
		if target == nil {
			target = p.focus.Overlay()
		}
		p.doc.Dispatch(target, p.pointer("mousemove", 0, 0))
	})
}

// Resize changes the viewport
func (p *Page) Resize(width, height float64) {
	p.loop.Do(func() {
		p.win.SetViewport(width, height)
	})
}

// pointer builds a primary-button event offset from the viewport center
func (p *Page) pointer(typ string, dx, dy float64) *dom.Event {
	w, h := p.win.Viewport()
	ev := dom.NewEvent(typ, nil)
	ev.Button = dom.ButtonPrimary
	ev.ClientX, ev.ClientY = w/2+dx, h/2+dy
	return ev
}
