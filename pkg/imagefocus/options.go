package imagefocus

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/recera/imagefocus/pkg/dom"
)

// Notification names fired by ImageFocus
const (
	EventSetupDidComplete         = "ImageFocus.setupDidComplete"
	EventImagesDidProcess         = "ImageFocus.imagesDidProcessOnContentInject"
	EventImageDidFocus            = "ImageFocus.imageDidFocus"
	EventImageDidUnfocus          = "ImageFocus.imageDidUnfocus"
	EventImageOverlayDidAppear    = "ImageFocus.imageOverlayDidAppear"
	EventImageOverlayDidDisappear = "ImageFocus.imageOverlayDidDisappear"
)

// Notification names ImageFocus listens for
const (
	// EventContentDidInject carries "container" (dom.Element) and
	// "document" (dom.Document)
	EventContentDidInject = "Content.didInject"
	// EventHashDidChange fires after the location fragment changes
	EventHashDidChange = "Location.hashDidChange"
)

// DefaultDropShadow is the filter appended to a focused image by default
const DefaultDropShadow = "drop-shadow(10px 10px 10px #000) drop-shadow(0 0 10px #444)"

// Options configures ImageFocus. Zero values take defaults.
type Options struct {
	// ContentImagesSelector finds candidate images; it may be a comma list
	ContentImagesSelector string
	// ExcludedContainersSelector matches ancestors that make an image
	// unfocusable
	ExcludedContainersSelector string
	// GalleryScopeSelector is the primary content region gallery images
	// must be inside
	GalleryScopeSelector string
	// FootnotesSelector matches regions whose images are excluded from
	// the gallery
	FootnotesSelector string
	// ThumbnailClass marks page thumbnails, which are excluded from the
	// gallery
	ThumbnailClass string
	// GalleryInclusionTest, when set, replaces the scope/footnote/thumbnail
	// gallery test
	GalleryInclusionTest func(image dom.Element) bool

	// ShrinkRatio is the fraction of the viewport a fitted image may fill
	ShrinkRatio float64
	// HideUIAfter is the idle time after which overlay chrome hides
	HideUIAfter time.Duration
	// DropShadowFilter is appended to the focused clone's filter
	DropShadowFilter string
	// SlideFragmentPrefix precedes the 1-based slide number in the fragment
	SlideFragmentPrefix string
	// AccessKey is assigned to the image that re-opens the gallery
	AccessKey string

	Logger *slog.Logger
}

func (o *Options) withDefaults() Options {
	d := Options{
		ContentImagesSelector:      ".markdownBody figure img",
		ExcludedContainersSelector: "a, button, figure.image-focus-not",
		GalleryScopeSelector:       "#markdownBody",
		FootnotesSelector:          ".footnotes",
		ThumbnailClass:             "page-thumbnail",
		ShrinkRatio:                0.975,
		HideUIAfter:                1500 * time.Millisecond,
		DropShadowFilter:           DefaultDropShadow,
		SlideFragmentPrefix:        "if_slide_",
		AccessKey:                  "l",
		Logger:                     slog.Default(),
	}
	if o == nil {
		return d
	}
	if o.ContentImagesSelector != "" {
		d.ContentImagesSelector = o.ContentImagesSelector
	}
	if o.ExcludedContainersSelector != "" {
		d.ExcludedContainersSelector = o.ExcludedContainersSelector
	}
	if o.GalleryScopeSelector != "" {
		d.GalleryScopeSelector = o.GalleryScopeSelector
	}
	if o.FootnotesSelector != "" {
		d.FootnotesSelector = o.FootnotesSelector
	}
	if o.ThumbnailClass != "" {
		d.ThumbnailClass = o.ThumbnailClass
	}
	d.GalleryInclusionTest = o.GalleryInclusionTest
	if o.ShrinkRatio > 0 {
		d.ShrinkRatio = o.ShrinkRatio
	}
	if o.HideUIAfter > 0 {
		d.HideUIAfter = o.HideUIAfter
	}
	if o.DropShadowFilter != "" {
		d.DropShadowFilter = o.DropShadowFilter
	}
	if o.SlideFragmentPrefix != "" {
		d.SlideFragmentPrefix = o.SlideFragmentPrefix
	}
	if o.AccessKey != "" {
		d.AccessKey = o.AccessKey
	}
	if o.Logger != nil {
		d.Logger = o.Logger
	}
	return d
}

// Validate checks the selectors against doc and the numeric settings
func (o Options) Validate(doc dom.Document) error {
	opts := o.withDefaults()
	for name, sel := range map[string]string{
		"content images":      opts.ContentImagesSelector,
		"excluded containers": opts.ExcludedContainersSelector,
		"gallery scope":       opts.GalleryScopeSelector,
		"footnotes":           opts.FootnotesSelector,
	} {
		if err := doc.ValidSelector(sel); err != nil {
			return fmt.Errorf("%s selector: %w", name, err)
		}
	}
	if opts.ShrinkRatio > 1 {
		return fmt.Errorf("shrink ratio %v must not exceed 1", opts.ShrinkRatio)
	}
	return nil
}
