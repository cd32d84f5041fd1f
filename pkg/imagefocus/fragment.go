package imagefocus

import (
	"strconv"
	"strings"
)

// SlideFragment returns the fragment that names 1-based slide n
func (f *ImageFocus) SlideFragment(n int) string {
	return f.opts.SlideFragmentPrefix + strconv.Itoa(n)
}

func (f *ImageFocus) isSlideFragment(fragment string) bool {
	return strings.HasPrefix(fragment, f.opts.SlideFragmentPrefix)
}

// slideNumber parses a slide fragment. ok is false for other fragments and
// for numbers below 1.
func (f *ImageFocus) slideNumber(fragment string) (n int, ok bool) {
	rest, found := strings.CutPrefix(fragment, f.opts.SlideFragmentPrefix)
	if !found {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// FocusImageSpecifiedByURL focuses the gallery image named by a slide
// fragment once the page has loaded. Malformed or out-of-range slide numbers
// are ignored.
func (f *ImageFocus) FocusImageSpecifiedByURL() {
	if f.overlay == nil || !f.isSlideFragment(f.env.Window.Fragment()) {
		return
	}
	f.env.Window.WhenLoaded(func() {
		if f.overlay == nil {
			return
		}
		fragment := f.env.Window.Fragment()
		n, ok := f.slideNumber(fragment)
		if !ok {
			f.log.Debug("ImageFocus: ignoring malformed slide fragment", "fragment", fragment)
			return
		}
		images := f.galleryImages()
		if n > len(images) {
			f.log.Debug("ImageFocus: slide out of range", "slide", n, "count", len(images))
			return
		}
		if f.state.focused == images[n-1] {
			return
		}
		f.focus(images[n-1])
	})
}
