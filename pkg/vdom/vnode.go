package vdom

import "strings"

// VKind discriminates virtual node types.
type VKind uint8

const (
	KindElement   VKind = iota // <div>, <button>, ...
	KindText                   // plain text
	KindFragment               // grouping without a wrapper element
	KindComponent              // nested component, rendered on demand
	KindRaw                    // pre-rendered HTML, inserted verbatim
)

// String returns a human-readable kind name.
func (k VKind) String() string {
	switch k {
	case KindElement:
		return "Element"
	case KindText:
		return "Text"
	case KindFragment:
		return "Fragment"
	case KindComponent:
		return "Component"
	case KindRaw:
		return "Raw"
	default:
		return "Unknown"
	}
}

// Props holds element attributes and event handlers.
// Keys starting with "on" are event handlers, everything else renders
// as an HTML attribute.
type Props map[string]any

// VNode is a node in the virtual tree.
type VNode struct {
	Kind     VKind
	Tag      string    // element tag for KindElement
	Props    Props     // attributes and handlers
	Children []*VNode  // child nodes
	Key      string    // reconciliation key for keyed lists
	Text     string    // content for KindText and KindRaw
	Comp     Component // component for KindComponent
	HID      string    // hydration id, assigned before render
}

// IsInteractive reports whether the node carries at least one event handler.
func (v *VNode) IsInteractive() bool {
	if v == nil || v.Kind != KindElement {
		return false
	}
	for key := range v.Props {
		if IsEventProp(key) {
			return true
		}
	}
	return false
}

// IsEventProp reports whether a prop key names an event handler.
// Case-insensitive so onClick and ONCLICK are both caught.
func IsEventProp(key string) bool {
	return len(key) > 2 && strings.EqualFold(key[:2], "on")
}

// Attr is a single attribute passed to an element constructor.
type Attr struct {
	Key   string
	Value any
}

// EventHandler binds a handler to a DOM event.
type EventHandler struct {
	Event   string // "onclick", "oninput", ...
	Handler any
}

// Component is anything that renders to a VNode.
type Component interface {
	Render() *VNode
}

// funcComponent adapts a plain render function to Component.
type funcComponent struct {
	render func() *VNode
}

func (f *funcComponent) Render() *VNode { return f.render() }

// Func wraps a render function as a Component.
func Func(render func() *VNode) Component {
	return &funcComponent{render: render}
}

// Materialize returns a copy of the tree with every KindComponent node
// replaced by its rendered output. Sessions diff materialized trees so
// component boundaries never reach the patch layer.
func Materialize(node *VNode) *VNode {
	if node == nil {
		return nil
	}
	if node.Kind == KindComponent {
		if node.Comp == nil {
			return nil
		}
		return Materialize(node.Comp.Render())
	}
	if len(node.Children) == 0 {
		return node
	}
	children := make([]*VNode, 0, len(node.Children))
	for _, child := range node.Children {
		if m := Materialize(child); m != nil {
			children = append(children, m)
		}
	}
	node.Children = children
	return node
}
