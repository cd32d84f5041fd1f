// Package vdom is a minimal virtual node tree used to declare the overlay's
// markup once and render it for any host document.
package vdom

// VKind represents the type of virtual node
type VKind uint8

const (
	// KindElement represents a DOM element node
	KindElement VKind = iota
	// KindText represents a text node
	KindText
	// KindFragment represents a fragment (multiple children without parent)
	KindFragment
)

// Props represents the attributes of a VNode
type Props map[string]any

// VNode represents a virtual DOM node
type VNode struct {
	Kind  VKind
	Tag   string
	Props Props
	Kids  []VNode
	Text  string
}

// NewElement creates a new element VNode
func NewElement(tag string, props Props, children ...*VNode) *VNode {
	return &VNode{
		Kind:  KindElement,
		Tag:   tag,
		Props: props,
		Kids:  collect(children),
	}
}

// NewText creates a new text VNode
func NewText(text string) *VNode {
	return &VNode{
		Kind: KindText,
		Text: text,
	}
}

// NewFragment creates a new fragment VNode
func NewFragment(children ...*VNode) *VNode {
	return &VNode{
		Kind: KindFragment,
		Kids: collect(children),
	}
}

// collect converts child pointers to values, skipping nils
func collect(children []*VNode) []VNode {
	kids := make([]VNode, 0, len(children))
	for _, child := range children {
		if child != nil {
			kids = append(kids, *child)
		}
	}
	return kids
}

// IsElement returns true if this is an element node
func (v VNode) IsElement() bool {
	return v.Kind == KindElement
}

// Class returns the node's class attribute
func (v VNode) Class() string {
	if v.Props != nil {
		if c, ok := v.Props["class"].(string); ok {
			return c
		}
	}
	return ""
}
