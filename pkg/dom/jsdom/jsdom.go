//go:build js && wasm
// +build js,wasm

// Package jsdom implements the dom contract over the browser DOM with
// syscall/js
package jsdom

import (
	"fmt"
	"strings"
	"syscall/js"
	"time"

	"github.com/recera/imagefocus/pkg/dom"
	"github.com/recera/imagefocus/pkg/scheduler"
)

// idKey is the JS property holding a node's wrapper id
const idKey = "__imageFocusID"

// Document wraps the page's document
type Document struct {
	document js.Value
	window   js.Value
	elems    map[int]*Element
	nextID   int
}

// New returns the document and window of the running page
func New() (*Document, *Window, error) {
	d := &Document{
		document: js.Global().Get("document"),
		window:   js.Global().Get("window"),
		elems:    make(map[int]*Element),
	}
	if d.document.IsUndefined() || d.window.IsUndefined() {
		return nil, nil, fmt.Errorf("jsdom: no document in this context")
	}
	return d, &Window{doc: d, window: d.window}, nil
}

// wrap returns the single wrapper for v, so == is identity
func (d *Document) wrap(v js.Value) *Element {
	if v.IsNull() || v.IsUndefined() {
		return nil
	}
	if id := v.Get(idKey); id.Type() == js.TypeNumber {
		if e, ok := d.elems[id.Int()]; ok {
			return e
		}
	}
	d.nextID++
	v.Set(idKey, d.nextID)
	e := &Element{doc: d, v: v}
	d.elems[d.nextID] = e
	return e
}

// forget drops the wrapper registered for v, if any
func (d *Document) forget(v js.Value) {
	if id := v.Get(idKey); id.Type() == js.TypeNumber {
		delete(d.elems, id.Int())
		v.Delete(idKey)
	}
}

// Wrap returns the element for a JS node, or nil
func (d *Document) Wrap(v js.Value) dom.Element {
	return d.element(v)
}

func (d *Document) element(v js.Value) dom.Element {
	if e := d.wrap(v); e != nil {
		return e
	}
	return nil
}

func (d *Document) list(nodes js.Value) []dom.Element {
	n := nodes.Length()
	out := make([]dom.Element, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, d.wrap(nodes.Index(i)))
	}
	return out
}

// Root returns document.documentElement
func (d *Document) Root() dom.Element {
	return d.element(d.document.Get("documentElement"))
}

// Body returns document.body
func (d *Document) Body() dom.Element {
	return d.element(d.document.Get("body"))
}

func (d *Document) Query(selector string) dom.Element {
	return d.element(d.document.Call("querySelector", selector))
}

func (d *Document) QueryAll(selector string) []dom.Element {
	return d.list(d.document.Call("querySelectorAll", selector))
}

// ParseElement parses markup in a template and returns its first element
func (d *Document) ParseElement(markup string) (dom.Element, error) {
	tmpl := d.document.Call("createElement", "template")
	tmpl.Set("innerHTML", markup)
	first := tmpl.Get("content").Get("firstElementChild")
	if first.IsNull() {
		return nil, fmt.Errorf("jsdom: markup contains no element")
	}
	return d.wrap(d.document.Call("importNode", first, true)), nil
}

// ValidSelector reports whether the browser accepts selector
func (d *Document) ValidSelector(selector string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("invalid selector %q: %v", selector, r)
		}
	}()
	d.document.Call("createDocumentFragment").Call("querySelector", selector)
	return nil
}

func (d *Document) AddEventListener(typ string, fn dom.Listener) func() {
	return d.listen(d.document, typ, fn, nil)
}

// listen attaches fn to target and returns its remover
func (d *Document) listen(target js.Value, typ string, fn dom.Listener, options map[string]interface{}) func() {
	cb := js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		if len(args) > 0 {
			fn(d.event(args[0]))
		}
		return nil
	})
	if options != nil {
		target.Call("addEventListener", typ, cb, options)
	} else {
		target.Call("addEventListener", typ, cb)
	}
	released := false
	return func() {
		if released {
			return
		}
		released = true
		if options != nil {
			target.Call("removeEventListener", typ, cb, options)
		} else {
			target.Call("removeEventListener", typ, cb)
		}
		cb.Release()
	}
}

// event converts a native event
func (d *Document) event(ev js.Value) *dom.Event {
	out := &dom.Event{
		Type:   ev.Get("type").String(),
		Target: d.target(ev.Get("target")),
		Time:   time.Now(),
	}
	if k := ev.Get("key"); k.Type() == js.TypeString {
		out.Key = k.String()
	}
	if b := ev.Get("button"); b.Type() == js.TypeNumber {
		out.Button = b.Int()
	}
	if x := ev.Get("clientX"); x.Type() == js.TypeNumber {
		out.ClientX = x.Float()
		out.ClientY = ev.Get("clientY").Float()
	}
	if dy := ev.Get("deltaY"); dy.Type() == js.TypeNumber {
		out.DeltaY = dy.Float()
	}
	return out.WithPreventer(func() { ev.Call("preventDefault") })
}

// target maps an event target to an element: text nodes map to their parent
// and the document to its root
func (d *Document) target(t js.Value) dom.Element {
	if t.IsNull() || t.IsUndefined() {
		return nil
	}
	nodeType := t.Get("nodeType")
	if nodeType.Type() != js.TypeNumber {
		return nil
	}
	switch nodeType.Int() {
	case 1:
		return d.element(t)
	case 9:
		return d.Root()
	default:
		return d.element(t.Get("parentElement"))
	}
}

// Element wraps a browser element
type Element struct {
	doc *Document
	v   js.Value
}

// Value returns the underlying JS object
func (e *Element) Value() js.Value {
	return e.v
}

func (e *Element) AddEventListener(typ string, fn dom.Listener) func() {
	return e.doc.listen(e.v, typ, fn, nil)
}

func (e *Element) TagName() string {
	return strings.ToLower(e.v.Get("tagName").String())
}

func (e *Element) Parent() dom.Element {
	return e.doc.element(e.v.Get("parentElement"))
}

func (e *Element) Attr(name string) (string, bool) {
	if !e.v.Call("hasAttribute", name).Bool() {
		return "", false
	}
	return e.v.Call("getAttribute", name).String(), true
}

func (e *Element) SetAttr(name, value string) {
	e.v.Call("setAttribute", name, value)
}

func (e *Element) RemoveAttr(name string) {
	e.v.Call("removeAttribute", name)
}

func (e *Element) HasClass(name string) bool {
	return e.v.Get("classList").Call("contains", name).Bool()
}

func (e *Element) ToggleClass(name string, on bool) {
	e.v.Get("classList").Call("toggle", name, on)
}

func (e *Element) Closest(selector string) dom.Element {
	return e.doc.element(e.v.Call("closest", selector))
}

func (e *Element) Query(selector string) dom.Element {
	return e.doc.element(e.v.Call("querySelector", selector))
}

func (e *Element) QueryAll(selector string) []dom.Element {
	return e.doc.list(e.v.Call("querySelectorAll", selector))
}

func (e *Element) Contains(other dom.Element) bool {
	o, ok := other.(*Element)
	if !ok || o == nil {
		return false
	}
	return e.v.Call("contains", o.v).Bool()
}

func (e *Element) InnerHTML() string {
	return e.v.Get("innerHTML").String()
}

func (e *Element) SetInnerHTML(markup string) {
	e.v.Set("innerHTML", markup)
}

func (e *Element) SetText(text string) {
	e.v.Set("textContent", text)
}

func (e *Element) Style(prop string) string {
	return e.v.Get("style").Call("getPropertyValue", prop).String()
}

func (e *Element) SetStyle(prop, value string) {
	if value == "" {
		e.v.Get("style").Call("removeProperty", prop)
		return
	}
	e.v.Get("style").Call("setProperty", prop, value)
}

func (e *Element) ClearStyle() {
	e.v.Call("removeAttribute", "style")
}

// CloneDeep copies the node; the copy gets its own wrapper id
func (e *Element) CloneDeep() dom.Element {
	c := e.v.Call("cloneNode", true)
	c.Delete(idKey)
	return e.doc.wrap(c)
}

func (e *Element) AppendChild(child dom.Element) {
	if c, ok := child.(*Element); ok && c != nil {
		e.v.Call("appendChild", c.v)
	}
}

// Remove detaches the node and forgets the wrappers of its subtree, so a
// discarded clone is not kept reachable
func (e *Element) Remove() {
	e.v.Call("remove")
	e.doc.forget(e.v)
	nodes := e.v.Call("querySelectorAll", "*")
	for i, n := 0, nodes.Length(); i < n; i++ {
		e.doc.forget(nodes.Index(i))
	}
}

func (e *Element) Wrap(tag, class string) dom.Element {
	w := e.doc.document.Call("createElement", tag)
	if class != "" {
		w.Set("className", class)
	}
	if p := e.v.Get("parentNode"); !p.IsNull() {
		p.Call("insertBefore", w, e.v)
	}
	w.Call("appendChild", e.v)
	return e.doc.wrap(w)
}

func (e *Element) NaturalSize() (float64, float64) {
	w, h := e.v.Get("naturalWidth"), e.v.Get("naturalHeight")
	if w.Type() != js.TypeNumber || h.Type() != js.TypeNumber {
		return 0, 0
	}
	return w.Float(), h.Float()
}

// WhenDecoded runs fn now if the image has loaded, otherwise on its load
// event
func (e *Element) WhenDecoded(fn func()) {
	if w, h := e.NaturalSize(); w > 0 && h > 0 {
		fn()
		return
	}
	var remove func()
	remove = e.doc.listen(e.v, "load", func(*dom.Event) {
		remove()
		fn()
	}, nil)
}

func (e *Element) Preload() {
	if e.v.Get("complete").Bool() {
		return
	}
	e.v.Set("loading", "eager")
	e.v.Set("decoding", "sync")
}

func (e *Element) SetDisabled(disabled bool) {
	e.v.Set("disabled", disabled)
}

func (e *Element) Blur() {
	e.v.Call("blur")
}

// Window wraps the browser window
type Window struct {
	doc    *Document
	window js.Value
}

func (w *Window) AddEventListener(typ string, fn dom.Listener) func() {
	var options map[string]interface{}
	if typ == "wheel" {
		// wheel listeners must be active to cancel page scrolling
		options = map[string]interface{}{"passive": false}
	}
	return w.doc.listen(w.window, typ, fn, options)
}

func (w *Window) Viewport() (float64, float64) {
	return w.window.Get("innerWidth").Float(), w.window.Get("innerHeight").Float()
}

func (w *Window) Fragment() string {
	return strings.TrimPrefix(w.window.Get("location").Get("hash").String(), "#")
}

// Relocate rewrites the fragment in place without adding history entries
// or firing hashchange
func (w *Window) Relocate(fragment string) {
	loc := w.window.Get("location")
	url := loc.Get("pathname").String() + loc.Get("search").String()
	if fragment != "" {
		url += "#" + fragment
	}
	w.window.Get("history").Call("replaceState", js.Null(), "", url)
}

func (w *Window) Reveal(el dom.Element) {
	if e, ok := el.(*Element); ok && e != nil {
		e.v.Call("scrollIntoView", map[string]interface{}{"block": "center"})
	}
}

func (w *Window) SetPageScrolling(enabled bool) {
	style := w.doc.document.Get("documentElement").Get("style")
	if enabled {
		style.Call("removeProperty", "overflow")
		return
	}
	style.Call("setProperty", "overflow", "hidden")
}

func (w *Window) IsMobile() bool {
	return w.window.Call("matchMedia", "(hover: none)").Get("matches").Bool()
}

func (w *Window) WhenLoaded(fn func()) {
	if w.doc.document.Get("readyState").String() == "complete" {
		fn()
		return
	}
	var remove func()
	remove = w.doc.listen(w.window, "load", func(*dom.Event) {
		remove()
		fn()
	}, nil)
}

func (w *Window) OnOrientationChange(fn func()) func() {
	mq := w.window.Call("matchMedia", "(orientation: portrait)")
	return w.doc.listen(mq, "change", func(*dom.Event) { fn() }, nil)
}

// Clock schedules callbacks with setTimeout. Callbacks run on the browser's
// event loop, like every other handler.
type Clock struct{}

func (Clock) Now() time.Time {
	return time.Now()
}

func (Clock) AfterFunc(d time.Duration, fn func()) scheduler.Timer {
	t := &timer{}
	t.cb = js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		if t.done {
			return nil
		}
		t.done = true
		t.cb.Release()
		fn()
		return nil
	})
	t.id = js.Global().Call("setTimeout", t.cb, d.Milliseconds())
	return t
}

type timer struct {
	id   js.Value
	cb   js.Func
	done bool
}

func (t *timer) Stop() bool {
	if t.done {
		return false
	}
	t.done = true
	js.Global().Call("clearTimeout", t.id)
	t.cb.Release()
	return true
}
