// Package dom defines the document primitives the image-focus core consumes:
// element lookup and classification by selector, class and attribute
// toggling, inline style, deep cloning, and event listeners. Hosts provide
// an implementation: htmldom for headless use and jsdom in the browser.
//
// Element values are comparable: a host returns the same Element value for
// the same underlying node, so == is identity.
package dom

import "time"

// Listener handles an event
type Listener func(ev *Event)

// EventTarget is anything that listeners can be attached to
type EventTarget interface {
	// AddEventListener registers fn for events of type typ and returns a
	// function that removes it.
	AddEventListener(typ string, fn Listener) (remove func())
}

// Element is a node in a document
type Element interface {
	EventTarget

	// TagName returns the lower-case tag name
	TagName() string
	Parent() Element

	Attr(name string) (string, bool)
	SetAttr(name, value string)
	RemoveAttr(name string)

	HasClass(name string) bool
	ToggleClass(name string, on bool)

	// Closest returns the nearest inclusive ancestor matching selector, or nil
	Closest(selector string) Element
	// Query returns the first descendant matching selector, or nil
	Query(selector string) Element
	// QueryAll returns descendants matching selector in document order
	QueryAll(selector string) []Element
	// Contains reports whether other is this element or one of its descendants
	Contains(other Element) bool

	InnerHTML() string
	SetInnerHTML(markup string)
	SetText(text string)

	Style(prop string) string
	SetStyle(prop, value string)
	// ClearStyle removes every inline style property
	ClearStyle()

	// CloneDeep returns a detached deep copy without event listeners
	CloneDeep() Element
	AppendChild(child Element)
	// Remove detaches the element from its parent
	Remove()
	// Wrap inserts a new element with the given tag and class in place of
	// this element and moves this element inside it
	Wrap(tag, class string) Element

	// NaturalSize returns an image's intrinsic size; zero until decoded
	NaturalSize() (width, height float64)
	// WhenDecoded runs fn once the image's intrinsic size becomes known
	WhenDecoded(fn func())
	// Preload forces the image to load and decode eagerly
	Preload()

	SetDisabled(disabled bool)
	Blur()
}

// Document is the page being enhanced
type Document interface {
	EventTarget

	// Root returns the document element (<html>)
	Root() Element
	Body() Element
	Query(selector string) Element
	QueryAll(selector string) []Element
	// ParseElement parses markup holding a single element and returns it
	// detached from the document
	ParseElement(markup string) (Element, error)
	// ValidSelector reports whether selector can be matched
	ValidSelector(selector string) error
}

// Window is the browsing context around a Document
type Window interface {
	EventTarget

	// Viewport returns the inner width and height in CSS pixels
	Viewport() (width, height float64)
	// Fragment returns the location fragment without the leading '#'
	Fragment() string
	// Relocate replaces the location fragment; "" clears it
	Relocate(fragment string)
	// Reveal scrolls el into view in the base document
	Reveal(el Element)
	// SetPageScrolling enables or disables scrolling of the page
	SetPageScrolling(enabled bool)
	// IsMobile reports a touch/mobile environment
	IsMobile() bool
	// WhenLoaded runs fn once the page has finished loading
	WhenLoaded(fn func())
	// OnOrientationChange registers fn for viewport orientation changes
	OnOrientationChange(fn func()) (remove func())
}

// Mouse buttons
const (
	ButtonPrimary = 0
)

// Event is a DOM event delivered to listeners
type Event struct {
	Type    string
	Key     string
	Button  int
	ClientX float64
	ClientY float64
	DeltaY  float64
	Target  Element
	Time    time.Time

	preventer func()
	prevented bool
}

// NewEvent creates an event of type typ aimed at target
func NewEvent(typ string, target Element) *Event {
	return &Event{Type: typ, Target: target}
}

// WithPreventer sets a callback invoked by PreventDefault; hosts use it to
// forward to the native event
func (e *Event) WithPreventer(fn func()) *Event {
	e.preventer = fn
	return e
}

// PreventDefault cancels the event's default action
func (e *Event) PreventDefault() {
	e.prevented = true
	if e.preventer != nil {
		e.preventer()
	}
}

// DefaultPrevented reports whether PreventDefault was called
func (e *Event) DefaultPrevented() bool {
	return e.prevented
}

// TargetIn reports whether the event target is inside an element matching
// selector
func (e *Event) TargetIn(selector string) bool {
	return e.Target != nil && e.Target.Closest(selector) != nil
}
