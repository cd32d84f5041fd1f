package imagefocus

import (
	"errors"
	"html"
	"strconv"
	"strings"

	"github.com/recera/imagefocus/pkg/dom"
	"github.com/recera/imagefocus/pkg/geometry"
	"github.com/recera/imagefocus/pkg/notify"
)

// ErrNotFocusable is returned by Focus for elements the scan did not register
var ErrNotFocusable = errors.New("imagefocus: element is not a focusable image")

// Focus shows el in the overlay. el must have been registered by
// ProcessImagesWithin.
func (f *ImageFocus) Focus(el dom.Element) error {
	if f.overlay == nil {
		return ErrNoOverlay
	}
	img, ok := f.images[el]
	if !ok {
		return ErrNotFocusable
	}
	f.focus(img)
	return nil
}

func (f *ImageFocus) focus(img *image) {
	f.log.Debug("ImageFocus.focusImage", "gallery", img.gallery)

	f.enter()
	f.unhideUI()
	f.unfocus()

	f.state.focused = img
	img.el.ToggleClass("focused", true)

	if img.gallery {
		f.clearLastFocused()

		images := f.galleryImages()
		index := indexOf(images, img)
		f.syncControls(index, len(images))

		if frag := f.env.Window.Fragment(); !f.isSlideFragment(frag) {
			f.state.savedFragment = frag
		}
		f.env.Window.Relocate(f.SlideFragment(index + 1))

		if index > 0 {
			images[index-1].el.Preload()
		}
		if index+1 < len(images) {
			images[index+1].el.Preload()
		}
	}

	f.env.Window.Reveal(img.el)

	clone := img.el.CloneDeep()
	clone.RemoveAttr("width")
	clone.RemoveAttr("height")
	clone.ClearStyle()
	f.state.baseFilter = strings.TrimSpace(img.el.Style("filter") + " " + f.opts.DropShadowFilter)
	clone.SetStyle("filter", f.state.baseFilter)
	f.overlay.AppendChild(clone)
	f.state.clone = clone
	f.state.transform = geometry.Transform{Filter: f.state.baseFilter}

	f.resetFocusedImagePosition(false)

	clone.AddEventListener("dblclick", f.doubleClick)
	f.overlay.ToggleClass("slideshow", img.gallery)

	f.setCaption(img)

	f.env.Bus.FireEvent(EventImageDidFocus, notify.Info{"image": img.el})
}

// clearLastFocused drops the marker and access key from the image that was
// remembered on the last exit
func (f *ImageFocus) clearLastFocused() {
	last := f.state.lastFocused
	if last == nil {
		return
	}
	last.el.ToggleClass("last-focused", false)
	last.el.RemoveAttr("accesskey")
	f.state.lastFocused = nil
}

// unfocus removes the clone and clears the focused marker. The overlay stays
// displayed.
func (f *ImageFocus) unfocus() {
	f.stopDrag()
	if f.state.clone != nil {
		f.state.clone.Remove()
		f.state.clone = nil
		f.state.transform = geometry.Transform{}
	}
	img := f.state.focused
	if img == nil {
		return
	}
	f.log.Debug("ImageFocus.unfocusImage")
	img.el.ToggleClass("focused", false)
	f.state.focused = nil

	f.env.Bus.FireEvent(EventImageDidUnfocus, notify.Info{"image": img.el})
}

// Exit leaves the overlay. A focused gallery image is remembered as the last
// focused image, and a slide fragment is replaced by the fragment saved when
// the gallery was entered.
func (f *ImageFocus) Exit() {
	if img := f.state.focused; img != nil && img.gallery {
		img.el.ToggleClass("focused", false)
		img.el.ToggleClass("last-focused", true)
		img.el.SetAttr("accesskey", f.opts.AccessKey)
		f.state.lastFocused = img

		if f.isSlideFragment(f.env.Window.Fragment()) {
			f.env.Window.Relocate(f.state.savedFragment)
		}
		f.state.savedFragment = ""
	}
	f.unfocus()
	f.exit()
}

// ResetPosition refits the focused image to the viewport, clearing any zoom
// and pan
func (f *ImageFocus) ResetPosition() {
	if f.state.clone == nil {
		return
	}
	f.resetFocusedImagePosition(false)
}

// resetFocusedImagePosition fits the clone using the natural size of the
// source image, or of the clone itself when useSelf is set. If the size is
// not known yet, the fit is retried once the clone has decoded.
func (f *ImageFocus) resetFocusedImagePosition(useSelf bool) {
	clone := f.state.clone
	if clone == nil {
		return
	}
	src := clone
	if !useSelf && f.state.focused != nil {
		src = f.state.focused.el
	}
	w, h := src.NaturalSize()
	t, ok := geometry.Fit(geometry.Size{Width: w, Height: h}, f.viewport(), f.opts.ShrinkRatio, f.state.baseFilter)
	if !ok {
		f.log.Debug("ImageFocus: natural size unknown, deferring fit")
		clone.WhenDecoded(func() {
			if f.state.clone == clone {
				f.resetFocusedImagePosition(true)
			}
		})
		return
	}
	f.apply(t)
}

// apply writes t to the clone's inline style
func (f *ImageFocus) apply(t geometry.Transform) {
	f.state.transform = t
	c := f.state.clone
	if c == nil {
		return
	}
	c.SetStyle("width", px(t.Width))
	c.SetStyle("height", px(t.Height))
	c.SetStyle("left", offset(t.Left))
	c.SetStyle("top", offset(t.Top))
	c.SetStyle("filter", t.Filter)
	c.SetStyle("cursor", geometry.Cursor(t, f.viewport()))
}

func px(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "px"
}

// offset renders a position offset; zero clears it
func offset(v float64) string {
	if v == 0 {
		return ""
	}
	return px(v)
}

// naturalSize returns the focused image's natural size, preferring the
// clone's once decoded
func (f *ImageFocus) naturalSize() geometry.Size {
	if c := f.state.clone; c != nil {
		if w, h := c.NaturalSize(); w > 0 && h > 0 {
			return geometry.Size{Width: w, Height: h}
		}
	}
	if f.state.focused != nil {
		w, h := f.state.focused.el.NaturalSize()
		return geometry.Size{Width: w, Height: h}
	}
	return geometry.Size{}
}

// setCaption fills the caption from the enclosing figure's figcaption, or
// failing that from the image's title
func (f *ImageFocus) setCaption(img *image) {
	caption := ""
	if fig := img.el.Closest("figure"); fig != nil {
		if fc := fig.Query("figcaption"); fc != nil {
			caption = fc.InnerHTML()
			if fc.Query("p") == nil {
				caption = "<p>" + caption + "</p>"
			}
		}
	}
	if caption == "" {
		if title, _ := img.el.Attr("title"); title != "" {
			caption = "<p>" + html.EscapeString(title) + "</p>"
		}
	}
	f.ui.caption.SetInnerHTML(caption)
}
