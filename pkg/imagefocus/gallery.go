package imagefocus

import (
	"strconv"

	"github.com/recera/imagefocus/pkg/dom"
)

// galleryImages returns the gallery in document order
func (f *ImageFocus) galleryImages() []*image {
	var out []*image
	for _, el := range f.env.Document.QueryAll(f.opts.ContentImagesSelector) {
		if img, ok := f.images[el]; ok && img.gallery {
			out = append(out, img)
		}
	}
	return out
}

// GalleryImages returns the gallery's source images in document order
func (f *ImageFocus) GalleryImages() []dom.Element {
	images := f.galleryImages()
	out := make([]dom.Element, len(images))
	for i, img := range images {
		out[i] = img.el
	}
	return out
}

func indexOf(images []*image, img *image) int {
	for i, candidate := range images {
		if candidate == img {
			return i
		}
	}
	return NoIndex
}

// CurrentIndex returns the 0-based gallery position of the focused image,
// or NoIndex when nothing in the gallery is focused
func (f *ImageFocus) CurrentIndex() int {
	if f.state.focused == nil || !f.state.focused.gallery {
		return NoIndex
	}
	return indexOf(f.galleryImages(), f.state.focused)
}

// FocusNext focuses the next gallery image, or the previous one when next is
// false. It does nothing at either end of the gallery or when no gallery
// image is focused.
func (f *ImageFocus) FocusNext(next bool) {
	if f.state.focused == nil || !f.state.focused.gallery {
		return
	}
	images := f.galleryImages()
	index := indexOf(images, f.state.focused)
	if index == NoIndex {
		return
	}
	if next {
		index++
	} else {
		index--
	}
	if index < 0 || index >= len(images) {
		return
	}
	f.log.Debug("ImageFocus.focusNextImage", "next", next, "index", index)
	f.focus(images[index])
}

// syncControls disables the button at each end and shows the 1-based number
func (f *ImageFocus) syncControls(index, count int) {
	f.state.prevDisabled = index == 0
	f.state.nextDisabled = index == count-1
	f.ui.previous.SetDisabled(f.state.prevDisabled)
	f.ui.next.SetDisabled(f.state.nextDisabled)
	f.ui.number.SetText(strconv.Itoa(index + 1))
}

// ImageInfo describes a registered image
type ImageInfo struct {
	Element dom.Element
	Gallery bool
	// Index is the 0-based gallery position, or NoIndex
	Index int
}

// Images returns every registered image in document order
func (f *ImageFocus) Images() []ImageInfo {
	var out []ImageInfo
	index := 0
	for _, el := range f.env.Document.QueryAll(f.opts.ContentImagesSelector) {
		img, ok := f.images[el]
		if !ok {
			continue
		}
		info := ImageInfo{Element: el, Gallery: img.gallery, Index: NoIndex}
		if img.gallery {
			info.Index = index
			index++
		}
		out = append(out, info)
	}
	return out
}
