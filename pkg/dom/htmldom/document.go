// Package htmldom implements the dom contract over a parsed HTML tree. It has
// no layout engine: natural image sizes come from markup attributes or from
// Decode, and events are delivered with Dispatch. It backs the CLI and the
// tests of the image-focus core.
package htmldom

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/recera/imagefocus/pkg/dom"
)

// ErrNoElement is returned when markup holds no element
var ErrNoElement = errors.New("htmldom: markup contains no element")

// Document is a parsed HTML document
type Document struct {
	node      *html.Node
	elems     map[*html.Node]*Element
	selectors map[string]cascadia.Selector
	listeners listenerSet
	window    *Window
}

// Parse reads an HTML document from r
func Parse(r io.Reader) (*Document, error) {
	n, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return &Document{
		node:      n,
		elems:     make(map[*html.Node]*Element),
		selectors: make(map[string]cascadia.Selector),
	}, nil
}

// ParseString parses an HTML document held in a string
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// ParseFile parses the HTML document at path
func ParseFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(bytes.NewReader(data))
}

// Window returns the window attached with NewWindow, if any
func (d *Document) Window() *Window {
	return d.window
}

// element wraps n, keeping one wrapper per node so == is identity
func (d *Document) element(n *html.Node) dom.Element {
	if n == nil {
		return nil
	}
	return d.wrap(n)
}

func (d *Document) wrap(n *html.Node) *Element {
	if e, ok := d.elems[n]; ok {
		return e
	}
	e := &Element{doc: d, n: n}
	e.natural = initialNaturalSize(n)
	d.elems[n] = e
	return e
}

// forget drops the wrappers of n and its descendants
func (d *Document) forget(n *html.Node) {
	delete(d.elems, n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		d.forget(c)
	}
}

// WrapperCount returns the number of element wrappers the document holds
func (d *Document) WrapperCount() int {
	return len(d.elems)
}

// initialNaturalSize reads data-natural-width/height, falling back to the
// width/height attributes of an img
func initialNaturalSize(n *html.Node) [2]float64 {
	if n.DataAtom != atom.Img {
		return [2]float64{}
	}
	w, h := attrFloat(n, "data-natural-width"), attrFloat(n, "data-natural-height")
	if w > 0 && h > 0 {
		return [2]float64{w, h}
	}
	w, h = attrFloat(n, "width"), attrFloat(n, "height")
	if w > 0 && h > 0 {
		return [2]float64{w, h}
	}
	return [2]float64{}
}

func attrFloat(n *html.Node, key string) float64 {
	v, ok := getAttr(n, key)
	if !ok {
		return 0
	}
	f, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(v), "px"), 64)
	if err != nil {
		return 0
	}
	return f
}

func (d *Document) selector(sel string) (cascadia.Selector, error) {
	if s, ok := d.selectors[sel]; ok {
		return s, nil
	}
	s, err := cascadia.Compile(sel)
	if err != nil {
		return nil, fmt.Errorf("compile selector %q: %w", sel, err)
	}
	d.selectors[sel] = s
	return s, nil
}

// ValidSelector reports whether selector compiles
func (d *Document) ValidSelector(selector string) error {
	_, err := d.selector(selector)
	return err
}

// Root returns the <html> element
func (d *Document) Root() dom.Element {
	for c := d.node.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return d.wrap(c)
		}
	}
	return nil
}

// Body returns the <body> element
func (d *Document) Body() dom.Element {
	return d.Query("body")
}

// Query returns the first element matching selector
func (d *Document) Query(selector string) dom.Element {
	return d.element(d.queryFirst(d.node, selector))
}

// QueryAll returns all elements matching selector in document order
func (d *Document) QueryAll(selector string) []dom.Element {
	return d.wrapAll(d.queryAll(d.node, selector))
}

// queryFirst and queryAll search the descendants of n, excluding n itself
func (d *Document) queryFirst(n *html.Node, selector string) *html.Node {
	s, err := d.selector(selector)
	if err != nil {
		return nil
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if m := s.MatchFirst(c); m != nil {
			return m
		}
	}
	return nil
}

func (d *Document) queryAll(n *html.Node, selector string) []*html.Node {
	s, err := d.selector(selector)
	if err != nil {
		return nil
	}
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, s.MatchAll(c)...)
	}
	return out
}

func (d *Document) wrapAll(nodes []*html.Node) []dom.Element {
	out := make([]dom.Element, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, d.wrap(n))
	}
	return out
}

// ParseElement parses markup and returns its first element, detached
func (d *Document) ParseElement(markup string) (dom.Element, error) {
	context := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(markup), context)
	if err != nil {
		return nil, fmt.Errorf("parse fragment: %w", err)
	}
	for _, n := range nodes {
		if n.Type == html.ElementNode {
			return d.wrap(n), nil
		}
	}
	return nil, ErrNoElement
}

// AddEventListener registers a document-level listener
func (d *Document) AddEventListener(typ string, fn dom.Listener) func() {
	return d.listeners.add(typ, fn)
}

// Decode sets the natural size of an image and runs its pending
// WhenDecoded callbacks, as a browser does when the image finishes loading
func (d *Document) Decode(el dom.Element, width, height float64) {
	e, ok := el.(*Element)
	if !ok || e == nil {
		return
	}
	e.natural = [2]float64{width, height}
	waiters := e.waiters
	e.waiters = nil
	for _, fn := range waiters {
		fn()
	}
}

// Dispatch delivers ev to target and bubbles it through the target's
// ancestors, the document, and the window. A nil target means the root.
func (d *Document) Dispatch(target dom.Element, ev *dom.Event) {
	if target == nil {
		target = d.Root()
	}
	ev.Target = target

	if e, ok := target.(*Element); ok {
		for n := e.n; n != nil; n = n.Parent {
			if n.Type != html.ElementNode {
				continue
			}
			if w, ok := d.elems[n]; ok {
				w.listeners.fire(ev)
			}
		}
	}
	d.listeners.fire(ev)
	if d.window != nil {
		d.window.listeners.fire(ev)
	}
}

// Render writes the document as HTML
func (d *Document) Render(w io.Writer) error {
	return html.Render(w, d.node)
}

// listenerSet is an ordered, removable collection of listeners by type
type listenerSet struct {
	nextID uint64
	byType map[string][]listenerEntry
}

type listenerEntry struct {
	id uint64
	fn dom.Listener
}

func (s *listenerSet) add(typ string, fn dom.Listener) func() {
	if s.byType == nil {
		s.byType = make(map[string][]listenerEntry)
	}
	s.nextID++
	id := s.nextID
	s.byType[typ] = append(s.byType[typ], listenerEntry{id: id, fn: fn})
	return func() {
		entries := s.byType[typ]
		for i, e := range entries {
			if e.id == id {
				s.byType[typ] = append(entries[:i:i], entries[i+1:]...)
				return
			}
		}
	}
}

func (s *listenerSet) fire(ev *dom.Event) {
	entries := append([]listenerEntry(nil), s.byType[ev.Type]...)
	for _, e := range entries {
		e.fn(ev)
	}
}

func (s *listenerSet) count(typ string) int {
	return len(s.byType[typ])
}

// ListenerCount returns the number of document listeners for typ
func (d *Document) ListenerCount(typ string) int {
	return d.listeners.count(typ)
}
