package imagefocus

import (
	"strconv"

	"github.com/recera/imagefocus/pkg/dom"
	"github.com/recera/imagefocus/pkg/notify"
)

// ProcessImagesWithin registers the focusable images under container. It is
// safe to call repeatedly: registered images keep a single click handler,
// and images no longer in the document are forgotten.
func (f *ImageFocus) ProcessImagesWithin(container dom.Element) int {
	if container == nil {
		return 0
	}
	f.prune()

	count := 0
	for _, el := range container.QueryAll(f.opts.ContentImagesSelector) {
		if el.Closest(f.opts.ExcludedContainersSelector) != nil {
			continue
		}
		if f.overlay != nil && f.overlay.Contains(el) {
			continue
		}
		img, ok := f.images[el]
		if !ok {
			img = &image{el: el}
			img.release = el.AddEventListener("click", func(*dom.Event) {
				f.focus(img)
			})
			f.images[el] = img
		}
		el.ToggleClass("focusable", true)
		img.gallery = f.inGallery(el)
		el.ToggleClass("gallery-image", img.gallery)

		// A figure image gets a wrapper that hosts the hover hint
		if el.Closest("figure") != nil {
			if p := el.Parent(); p == nil || !p.HasClass("image-wrapper") {
				el.Wrap("span", "image-wrapper focusable")
			}
		}
		count++
	}
	f.log.Debug("ImageFocus.processImagesWithin", "images", count)
	return count
}

// inGallery reports whether el belongs to the gallery
func (f *ImageFocus) inGallery(el dom.Element) bool {
	if f.opts.GalleryInclusionTest != nil {
		return f.opts.GalleryInclusionTest(el)
	}
	return el.Closest(f.opts.GalleryScopeSelector) != nil &&
		el.Closest(f.opts.FootnotesSelector) == nil &&
		!el.HasClass(f.opts.ThumbnailClass)
}

// prune forgets registered images that left the document
func (f *ImageFocus) prune() {
	root := f.env.Document.Root()
	for el, img := range f.images {
		if img == f.state.focused || (root != nil && root.Contains(el)) {
			continue
		}
		img.release()
		delete(f.images, el)
		if f.state.lastFocused == img {
			f.state.lastFocused = nil
		}
	}
}

// contentDidInject processes newly injected content. For the main document
// it also records the gallery size and gives the first gallery image the
// access key.
func (f *ImageFocus) contentDidInject(info notify.Info) {
	container, _ := info["container"].(dom.Element)
	if container == nil || f.overlay == nil {
		return
	}
	f.ProcessImagesWithin(container)

	if doc, _ := info["document"].(dom.Document); doc == f.env.Document {
		images := f.galleryImages()
		f.ui.number.SetAttr("data-number-of-images", strconv.Itoa(len(images)))
		if len(images) > 0 {
			images[0].el.SetAttr("accesskey", f.opts.AccessKey)
		}
	}

	f.env.Bus.FireEvent(EventImagesDidProcess, notify.Info{
		"container": container,
		"document":  info["document"],
	})
}
