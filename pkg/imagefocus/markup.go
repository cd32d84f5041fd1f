package imagefocus

import (
	"fmt"

	"github.com/recera/imagefocus/pkg/dom"
	htmlrender "github.com/recera/imagefocus/pkg/renderer/html"
	"github.com/recera/imagefocus/pkg/vdom"
)

// Overlay selectors
const (
	overlayID         = "image-focus-overlay"
	helpSelector      = ".help-overlay"
	numberSelector    = ".image-number"
	captionSelector   = ".caption"
	buttonSelector    = ".slideshow-button"
	previousSelector  = ".slideshow-button.previous"
	nextSelector      = ".slideshow-button.next"
	hideableSelectors = ".slideshow-button, .help-overlay, .image-number, .caption"
)

// controls are the overlay's chrome elements
type controls struct {
	help     dom.Element
	number   dom.Element
	caption  dom.Element
	previous dom.Element
	next     dom.Element
	hideable []dom.Element
}

func el(tag string, props vdom.Props, kids ...*vdom.VNode) *vdom.VNode {
	return vdom.NewElement(tag, props, kids...)
}

func text(s string) *vdom.VNode {
	return vdom.NewText(s)
}

func strong(s string) *vdom.VNode {
	return el("strong", nil, text(s))
}

func chevron(path string) *vdom.VNode {
	return el("svg", vdom.Props{"xmlns": "http://www.w3.org/2000/svg", "viewBox": "0 0 320 512"},
		el("path", vdom.Props{"d": path}))
}

func slideshowButton(class, title, path string) *vdom.VNode {
	return el("button", vdom.Props{
		"type":     "button",
		"class":    "slideshow-button " + class,
		"title":    title,
		"tabindex": "-1",
	}, chevron(path))
}

// overlayMarkup builds the overlay: help panel, image number, previous/next
// buttons, and caption
func overlayMarkup() *vdom.VNode {
	return el("div", vdom.Props{"id": overlayID},
		el("div", vdom.Props{"class": "help-overlay"},
			el("p", vdom.Props{"class": "slideshow-help-text"},
				strong("Arrow keys:"), text(" Next/previous image")),
			el("p", nil, strong("Escape"), text(" or "), strong("click"), text(": Hide zoomed image")),
			el("p", nil, strong("Space bar:"), text(" Reset image size & position")),
			el("p", nil, strong("Scroll"), text(" to zoom in/out")),
			el("p", nil, text("(When zoomed in, "), strong("drag"), text(" to pan;"),
				el("br", nil), strong("double-click"), text(" to close)")),
		),
		el("div", vdom.Props{"class": "image-number"}),
		el("div", vdom.Props{"class": "slideshow-buttons"},
			slideshowButton("previous", "Previous image", "M41 239 L238 42 a24 24 0 0 1 34 34 L109 256 l163 180 a24 24 0 0 1-34 34 L41 273 a24 24 0 0 1 0-34z"),
			slideshowButton("next", "Next image", "M279 273 L82 470 a24 24 0 0 1-34-34 L211 256 48 76 a24 24 0 0 1 34-34 L279 239 a24 24 0 0 1 0 34z"),
		),
		el("div", vdom.Props{"class": "caption"}),
	)
}

// buildOverlay renders the overlay markup into doc and locates its controls
func buildOverlay(doc dom.Document) (dom.Element, controls, error) {
	markup, err := htmlrender.RenderToString(overlayMarkup())
	if err != nil {
		return nil, controls{}, fmt.Errorf("render overlay: %w", err)
	}
	overlay, err := doc.ParseElement(markup)
	if err != nil {
		return nil, controls{}, fmt.Errorf("parse overlay: %w", err)
	}
	c := controls{
		help:     overlay.Query(helpSelector),
		number:   overlay.Query(numberSelector),
		caption:  overlay.Query(captionSelector),
		previous: overlay.Query(previousSelector),
		next:     overlay.Query(nextSelector),
		hideable: overlay.QueryAll(hideableSelectors),
	}
	if c.number == nil || c.caption == nil || c.previous == nil || c.next == nil {
		return nil, controls{}, fmt.Errorf("overlay markup is missing controls")
	}
	return overlay, c, nil
}

// setChromeHidden shows or hides the help panel, buttons, number, and caption
func (f *ImageFocus) setChromeHidden(hidden bool) {
	for _, e := range f.ui.hideable {
		e.ToggleClass("hidden", hidden)
	}
	f.state.chromeHidden = hidden
}
