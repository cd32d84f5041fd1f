// Package geometry computes the size and position of a focused image inside
// the overlay. Every function here is pure: callers read the current
// Transform, pass it in together with the viewport and the input, and write
// the returned Transform back to the rendered clone.
//
// Coordinates are viewport pixels. A Transform's Left and Top are offsets
// from the image's default flow position, which centers it in the overlay.
package geometry

import "math"

const (
	// RecenterStep is the fraction of the distance to the viewport center
	// covered by one auto-recenter nudge.
	RecenterStep = 0.1

	// MinZoomOutSize is the size in pixels below which zooming out stops
	// shrinking the image.
	MinZoomOutSize = 10.0

	// CursorMove is the cursor shown over a pannable image.
	CursorMove = "move"
)

// Point is a position in viewport coordinates
type Point struct {
	X, Y float64
}

// Size is a width and height in pixels
type Size struct {
	Width, Height float64
}

// Known reports whether both dimensions are positive
func (s Size) Known() bool {
	return s.Width > 0 && s.Height > 0
}

// Center returns the center point of a box of this size anchored at the origin
func (s Size) Center() Point {
	return Point{X: s.Width / 2, Y: s.Height / 2}
}

// Rect is an axis-aligned box in viewport coordinates
type Rect struct {
	X, Y, Width, Height float64
}

// Right returns the right edge
func (r Rect) Right() float64 { return r.X + r.Width }

// Bottom returns the bottom edge
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// Center returns the center point
func (r Rect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Contains reports whether p lies inside r, edges included
func (r Rect) Contains(p Point) bool {
	return r.X <= p.X && p.X <= r.Right() && r.Y <= p.Y && p.Y <= r.Bottom()
}

// Transform is the inline presentation state of the rendered clone.
// It is passed between zoom steps as one value so the filter never has to
// be stashed on the element itself.
type Transform struct {
	Filter string
	Width  float64
	Height float64
	Left   float64
	Top    float64
}

// Size returns the displayed size
func (t Transform) Size() Size {
	return Size{Width: t.Width, Height: t.Height}
}

// Bounds returns the clone's box in the viewport. The default flow position
// centers the image, so the box is centered and then shifted by Left/Top.
func Bounds(t Transform, viewport Size) Rect {
	return Rect{
		X:      (viewport.Width-t.Width)/2 + t.Left,
		Y:      (viewport.Height-t.Height)/2 + t.Top,
		Width:  t.Width,
		Height: t.Height,
	}
}

// Fit returns the transform that shows an image of the given natural size
// inside the viewport, shrunk by ratio but never enlarged. Offsets are
// cleared. ok is false when the natural size is not yet known; callers should
// retry once the image has decoded.
func Fit(natural, viewport Size, ratio float64, filter string) (t Transform, ok bool) {
	if !natural.Known() {
		return Transform{Filter: filter}, false
	}
	widthScale := math.Min(1, viewport.Width*ratio/natural.Width)
	heightScale := math.Min(1, viewport.Height*ratio/natural.Height)
	scale := math.Min(widthScale, heightScale)
	return Transform{
		Filter: filter,
		Width:  math.Round(natural.Width * scale),
		Height: math.Round(natural.Height * scale),
	}, true
}

// Pannable reports whether the image reaches or exceeds the viewport in
// either dimension. Pannable images can be dragged and show the move cursor.
func Pannable(t Transform, viewport Size) bool {
	return t.Height >= viewport.Height || t.Width >= viewport.Width
}

// Exceeds reports whether the image is strictly larger than the viewport in
// either dimension.
func Exceeds(t Transform, viewport Size) bool {
	return t.Width > viewport.Width || t.Height > viewport.Height
}

// Cursor returns the CSS cursor for the clone: "move" when pannable, else
// the empty string (default cursor).
func Cursor(t Transform, viewport Size) string {
	if Pannable(t, viewport) {
		return CursorMove
	}
	return ""
}

// Wheel is a single wheel tick. DeltaY < 0 zooms in.
type Wheel struct {
	DeltaY float64
	Cursor Point
}

// ZoomingIn reports whether the tick enlarges the image
func (w Wheel) ZoomingIn() bool {
	return w.DeltaY < 0
}

// Factor returns the scale factor for one wheel tick. Once the image is
// tiny, zooming out stops so it cannot shrink toward nothing.
func Factor(t Transform, w Wheel) float64 {
	if (t.Height > MinZoomOutSize && t.Width > MinZoomOutSize) || w.ZoomingIn() {
		return 1 + math.Sqrt(math.Abs(w.DeltaY))/100
	}
	return 1
}

// Origin identifies which point a zoom is anchored on
type Origin int

const (
	// OriginCursor anchors on the cursor position
	OriginCursor Origin = iota
	// OriginViewportCenter anchors on the middle of the viewport
	OriginViewportCenter
	// OriginImageCenter anchors on the middle of the image
	OriginImageCenter
)

func (o Origin) String() string {
	switch o {
	case OriginCursor:
		return "cursor"
	case OriginViewportCenter:
		return "viewport-center"
	case OriginImageCenter:
		return "image-center"
	}
	return "unknown"
}

// ZoomOrigin chooses the anchor point for a zoom. before is the clone's box
// prior to resizing and oversized tells whether the resized image exceeds the
// viewport.
//
// Priority: the cursor when the image is oversized and the cursor is over
// it; then the viewport center when zooming out; otherwise the image center.
func ZoomOrigin(before Rect, oversized bool, w Wheel, viewport Size) (Point, Origin) {
	switch {
	case oversized && before.Contains(w.Cursor):
		return w.Cursor, OriginCursor
	case w.DeltaY > 0:
		return viewport.Center(), OriginViewportCenter
	default:
		return before.Center(), OriginImageCenter
	}
}

// Zoom applies one wheel tick to t. Only the width is scaled by the wheel
// factor; the height follows from the natural aspect ratio (or, while the
// natural size is unknown, from the current one). The image is repositioned
// so the chosen origin stays visually fixed, and an image that fits within
// the viewport afterwards drifts a step toward the viewport center.
//
// Measurements are taken on the unfiltered box; the filter passes through.
func Zoom(t Transform, natural, viewport Size, w Wheel) Transform {
	before := Bounds(t, viewport)
	factor := Factor(t, w)

	next := t
	if w.ZoomingIn() {
		next.Width = t.Width * factor
	} else {
		next.Width = t.Width / factor
	}
	next.Height = heightForWidth(next.Width, t, natural)

	oversized := Exceeds(next, viewport)
	origin, _ := ZoomOrigin(before, oversized, w, viewport)

	offset := Point{X: before.X - origin.X, Y: before.Y - origin.Y}
	if w.ZoomingIn() {
		offset.X *= factor
		offset.Y *= factor
	} else {
		offset.X /= factor
		offset.Y /= factor
	}

	// Where the resized box lands with unchanged offsets, versus where it
	// has to be for the origin to stay put.
	resized := Bounds(next, viewport)
	next.Left -= resized.X - (origin.X + offset.X)
	next.Top -= resized.Y - (origin.Y + offset.Y)

	if !oversized {
		next = Recenter(next, viewport)
	}
	return next
}

// Recenter moves t one RecenterStep of the way toward the viewport center
func Recenter(t Transform, viewport Size) Transform {
	c := Bounds(t, viewport).Center()
	vc := viewport.Center()
	t.Left += (vc.X - c.X) * RecenterStep
	t.Top += (vc.Y - c.Y) * RecenterStep
	return t
}

// DistanceFromCenter returns how far the clone's center is from the viewport
// center
func DistanceFromCenter(t Transform, viewport Size) float64 {
	c := Bounds(t, viewport).Center()
	vc := viewport.Center()
	return math.Hypot(c.X-vc.X, c.Y-vc.Y)
}

func heightForWidth(width float64, current Transform, natural Size) float64 {
	if natural.Known() {
		return width * natural.Height / natural.Width
	}
	if current.Width > 0 {
		return width * current.Height / current.Width
	}
	return current.Height
}

// Pan is an in-progress drag of a pannable image
type Pan struct {
	start  Point
	origin Transform
}

// StartPan begins a drag at cursor
func StartPan(t Transform, cursor Point) Pan {
	return Pan{start: cursor, origin: t}
}

// Move repositions current for the cursor: the position at the start of the
// drag plus the cursor delta, 1:1. The size of current is kept, so a zoom
// during the drag survives. The filter is dropped while dragging.
func (p Pan) Move(current Transform, cursor Point) Transform {
	t := current
	t.Filter = "none"
	t.Left = p.origin.Left + cursor.X - p.start.X
	t.Top = p.origin.Top + cursor.Y - p.start.Y
	return t
}

// Filter returns the filter that was in effect when the drag started
func (p Pan) Filter() string {
	return p.origin.Filter
}
