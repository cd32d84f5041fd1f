// Package html renders vdom trees to HTML markup
package html

import (
	"fmt"
	"html"
	"io"
	"sort"
	"strings"

	"github.com/recera/imagefocus/pkg/vdom"
)

// voidElements are HTML elements that cannot have children
var voidElements = map[string]bool{
	"area":   true,
	"base":   true,
	"br":     true,
	"col":    true,
	"embed":  true,
	"hr":     true,
	"img":    true,
	"input":  true,
	"link":   true,
	"meta":   true,
	"source": true,
	"track":  true,
	"wbr":    true,
}

// booleanAttributes are HTML attributes that are boolean flags
var booleanAttributes = map[string]bool{
	"checked":  true,
	"disabled": true,
	"hidden":   true,
	"readonly": true,
	"required": true,
	"selected": true,
}

// Renderer writes VNodes as HTML
type Renderer struct {
	w   io.Writer
	err error
}

// NewRenderer creates a new renderer writing to w
func NewRenderer(w io.Writer) *Renderer {
	return &Renderer{w: w}
}

// Render writes node and its children
func (r *Renderer) Render(node *vdom.VNode) error {
	if node == nil {
		return nil
	}
	r.renderNode(node)
	return r.err
}

// write helper that tracks errors
func (r *Renderer) write(s string) {
	if r.err != nil {
		return
	}
	_, r.err = io.WriteString(r.w, s)
}

func (r *Renderer) renderNode(node *vdom.VNode) {
	if node == nil || r.err != nil {
		return
	}

	switch node.Kind {
	case vdom.KindText:
		r.write(html.EscapeString(node.Text))
	case vdom.KindElement:
		r.renderElement(node)
	case vdom.KindFragment:
		for i := range node.Kids {
			r.renderNode(&node.Kids[i])
		}
	}
}

func (r *Renderer) renderElement(node *vdom.VNode) {
	r.write("<")
	r.write(node.Tag)

	// Attributes in a stable order
	keys := make([]string, 0, len(node.Props))
	for k := range node.Props {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := node.Props[key]
		if booleanAttributes[key] {
			if v, ok := value.(bool); ok && v {
				r.write(" ")
				r.write(key)
			}
			continue
		}

		valueStr := fmt.Sprintf("%v", value)
		if (key == "href" || key == "src") && strings.HasPrefix(strings.ToLower(valueStr), "javascript:") {
			valueStr = "#"
		}

		r.write(" ")
		r.write(key)
		r.write(`="`)
		r.write(html.EscapeString(valueStr))
		r.write(`"`)
	}
	r.write(">")

	if voidElements[node.Tag] {
		return
	}
	for i := range node.Kids {
		r.renderNode(&node.Kids[i])
	}
	r.write("</")
	r.write(node.Tag)
	r.write(">")
}

// RenderToString is a convenience function to render a VNode to a string
func RenderToString(node *vdom.VNode) (string, error) {
	var buf strings.Builder
	if err := NewRenderer(&buf).Render(node); err != nil {
		return "", err
	}
	return buf.String(), nil
}
