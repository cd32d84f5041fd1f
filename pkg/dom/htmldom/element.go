package htmldom

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/recera/imagefocus/pkg/dom"
)

// Element wraps an element node of a Document
type Element struct {
	doc       *Document
	n         *html.Node
	listeners listenerSet
	natural   [2]float64
	waiters   []func()
}

// Node returns the underlying html node
func (e *Element) Node() *html.Node {
	return e.n
}

// ListenerCount returns the number of listeners registered for typ
func (e *Element) ListenerCount(typ string) int {
	return e.listeners.count(typ)
}

// TagName returns the lower-case tag name
func (e *Element) TagName() string {
	return e.n.Data
}

// Parent returns the parent element, or nil
func (e *Element) Parent() dom.Element {
	p := e.n.Parent
	if p == nil || p.Type != html.ElementNode {
		return nil
	}
	return e.doc.wrap(p)
}

func getAttr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// Attr returns the value of attribute name
func (e *Element) Attr(name string) (string, bool) {
	return getAttr(e.n, name)
}

// SetAttr sets attribute name to value
func (e *Element) SetAttr(name, value string) {
	for i, a := range e.n.Attr {
		if a.Namespace == "" && a.Key == name {
			e.n.Attr[i].Val = value
			return
		}
	}
	e.n.Attr = append(e.n.Attr, html.Attribute{Key: name, Val: value})
}

// RemoveAttr removes attribute name
func (e *Element) RemoveAttr(name string) {
	for i, a := range e.n.Attr {
		if a.Namespace == "" && a.Key == name {
			e.n.Attr = append(e.n.Attr[:i:i], e.n.Attr[i+1:]...)
			return
		}
	}
}

func (e *Element) classes() []string {
	v, _ := e.Attr("class")
	return strings.Fields(v)
}

// HasClass reports whether the element carries class name
func (e *Element) HasClass(name string) bool {
	for _, c := range e.classes() {
		if c == name {
			return true
		}
	}
	return false
}

// ToggleClass adds or removes class name
func (e *Element) ToggleClass(name string, on bool) {
	classes := e.classes()
	out := classes[:0]
	for _, c := range classes {
		if c != name {
			out = append(out, c)
		}
	}
	if on {
		out = append(out, name)
	}
	if len(out) == 0 {
		e.RemoveAttr("class")
		return
	}
	e.SetAttr("class", strings.Join(out, " "))
}

// Closest returns the nearest inclusive ancestor matching selector
func (e *Element) Closest(selector string) dom.Element {
	s, err := e.doc.selector(selector)
	if err != nil {
		return nil
	}
	for n := e.n; n != nil; n = n.Parent {
		if n.Type == html.ElementNode && s.Match(n) {
			return e.doc.wrap(n)
		}
	}
	return nil
}

// Query returns the first descendant matching selector
func (e *Element) Query(selector string) dom.Element {
	return e.doc.element(e.doc.queryFirst(e.n, selector))
}

// QueryAll returns descendants matching selector in document order
func (e *Element) QueryAll(selector string) []dom.Element {
	return e.doc.wrapAll(e.doc.queryAll(e.n, selector))
}

// Contains reports whether other is e or one of its descendants
func (e *Element) Contains(other dom.Element) bool {
	o, ok := other.(*Element)
	if !ok || o == nil {
		return false
	}
	for n := o.n; n != nil; n = n.Parent {
		if n == e.n {
			return true
		}
	}
	return false
}

// InnerHTML returns the markup of the element's children
func (e *Element) InnerHTML() string {
	var b strings.Builder
	for c := e.n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&b, c); err != nil {
			break
		}
	}
	return b.String()
}

// SetInnerHTML replaces the element's children with parsed markup
func (e *Element) SetInnerHTML(markup string) {
	nodes, err := html.ParseFragment(strings.NewReader(markup), e.n)
	if err != nil {
		return
	}
	e.removeChildren()
	for _, n := range nodes {
		e.n.AppendChild(n)
	}
}

// SetText replaces the element's children with a text node
func (e *Element) SetText(text string) {
	e.removeChildren()
	if text != "" {
		e.n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	}
}

func (e *Element) removeChildren() {
	for c := e.n.FirstChild; c != nil; {
		next := c.NextSibling
		e.n.RemoveChild(c)
		c = next
	}
}

// Style returns the inline value of prop
func (e *Element) Style(prop string) string {
	for _, d := range e.declarations() {
		if d[0] == prop {
			return d[1]
		}
	}
	return ""
}

// SetStyle sets inline prop to value; an empty value removes it
func (e *Element) SetStyle(prop, value string) {
	decls := e.declarations()
	out := decls[:0]
	found := false
	for _, d := range decls {
		if d[0] == prop {
			found = true
			if value == "" {
				continue
			}
			d[1] = value
		}
		out = append(out, d)
	}
	if !found && value != "" {
		out = append(out, [2]string{prop, value})
	}
	e.writeDeclarations(out)
}

// ClearStyle removes the style attribute
func (e *Element) ClearStyle() {
	e.RemoveAttr("style")
}

func (e *Element) declarations() [][2]string {
	raw, _ := e.Attr("style")
	var decls [][2]string
	for _, part := range strings.Split(raw, ";") {
		k, v, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}
		k, v = strings.TrimSpace(k), strings.TrimSpace(v)
		if k != "" {
			decls = append(decls, [2]string{k, v})
		}
	}
	return decls
}

func (e *Element) writeDeclarations(decls [][2]string) {
	if len(decls) == 0 {
		e.RemoveAttr("style")
		return
	}
	parts := make([]string, len(decls))
	for i, d := range decls {
		parts[i] = d[0] + ": " + d[1]
	}
	e.SetAttr("style", strings.Join(parts, "; ")+";")
}

// CloneDeep returns a detached deep copy. The copy shares the source's
// decoded natural size but none of its listeners.
func (e *Element) CloneDeep() dom.Element {
	c := e.doc.wrap(cloneNode(e.n))
	c.natural = e.natural
	return c
}

func cloneNode(n *html.Node) *html.Node {
	c := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
		Attr:      append([]html.Attribute(nil), n.Attr...),
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		c.AppendChild(cloneNode(child))
	}
	return c
}

// AppendChild moves child to the end of e's children
func (e *Element) AppendChild(child dom.Element) {
	c, ok := child.(*Element)
	if !ok || c == nil {
		return
	}
	if c.n.Parent != nil {
		c.n.Parent.RemoveChild(c.n)
	}
	e.n.AppendChild(c.n)
}

// Remove detaches e from its parent. The document forgets the wrappers of
// the removed subtree; existing references keep working, but a later lookup
// of the same node yields a fresh wrapper.
func (e *Element) Remove() {
	if e.n.Parent != nil {
		e.n.Parent.RemoveChild(e.n)
	}
	e.doc.forget(e.n)
}

// Wrap moves e into a new element inserted at e's position
func (e *Element) Wrap(tag, class string) dom.Element {
	tag = strings.ToLower(tag)
	w := &html.Node{Type: html.ElementNode, Data: tag, DataAtom: atom.Lookup([]byte(tag))}
	if class != "" {
		w.Attr = []html.Attribute{{Key: "class", Val: class}}
	}
	if p := e.n.Parent; p != nil {
		p.InsertBefore(w, e.n)
		p.RemoveChild(e.n)
	}
	w.AppendChild(e.n)
	return e.doc.wrap(w)
}

// NaturalSize returns the intrinsic size, zero until decoded
func (e *Element) NaturalSize() (float64, float64) {
	return e.natural[0], e.natural[1]
}

// WhenDecoded runs fn once the natural size is known. If it already is, fn
// runs immediately.
func (e *Element) WhenDecoded(fn func()) {
	if e.natural[0] > 0 && e.natural[1] > 0 {
		fn()
		return
	}
	e.waiters = append(e.waiters, fn)
}

// Preload marks an undecoded image for eager, synchronous decoding
func (e *Element) Preload() {
	if e.natural[0] > 0 {
		return
	}
	e.SetAttr("loading", "eager")
	e.SetAttr("decoding", "sync")
}

// SetDisabled sets or clears the disabled attribute
func (e *Element) SetDisabled(disabled bool) {
	if disabled {
		e.SetAttr("disabled", "")
		return
	}
	e.RemoveAttr("disabled")
}

// Disabled reports whether the disabled attribute is present
func (e *Element) Disabled() bool {
	_, ok := e.Attr("disabled")
	return ok
}

// Blur is a no-op; headless documents have no keyboard focus
func (e *Element) Blur() {}

// AddEventListener registers an element listener
func (e *Element) AddEventListener(typ string, fn dom.Listener) func() {
	return e.listeners.add(typ, fn)
}
