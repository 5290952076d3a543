package protocol

import (
	"errors"
	"fmt"
	"sort"

	"github.com/marycampus/advisor/pkg/vdom"
)

// MaxNodeDepth bounds the nesting of decoded node trees. Recursion on
// attacker-controlled depth would otherwise overflow the stack.
const MaxNodeDepth = 256

// ErrMaxDepthExceeded is returned when a decoded tree nests deeper
// than MaxNodeDepth.
var ErrMaxDepthExceeded = errors.New("protocol: node tree too deep")

const nullNodeMarker = 0xFF

// VNodeWire is the serializable shape of a vdom node. Event handlers
// never cross the wire; interactive elements carry data-on-* marker
// attributes instead, and the client reports their events by
// hydration id.
type VNodeWire struct {
	Kind     vdom.VKind
	Tag      string
	HID      string
	Attrs    map[string]string
	Children []*VNodeWire
	Text     string
}

// VNodeToWire strips a materialized vdom node down to wire shape.
// Component nodes must be materialized first; any leftover is encoded
// as an empty fragment.
func VNodeToWire(node *vdom.VNode) *VNodeWire {
	if node == nil {
		return nil
	}
	w := &VNodeWire{
		Kind: node.Kind,
		Tag:  node.Tag,
		HID:  node.HID,
		Text: node.Text,
	}
	if attrs := wireAttrs(node.Props); len(attrs) > 0 {
		w.Attrs = attrs
	}
	if len(node.Children) > 0 {
		w.Children = make([]*VNodeWire, 0, len(node.Children))
		for _, child := range node.Children {
			if child != nil {
				w.Children = append(w.Children, VNodeToWire(child))
			}
		}
	}
	return w
}

// wireAttrs converts props to string attributes: handlers become
// data-on-* markers, true booleans become empty-valued attributes,
// false booleans and the reconciliation key disappear.
func wireAttrs(props vdom.Props) map[string]string {
	if len(props) == 0 {
		return nil
	}
	attrs := make(map[string]string, len(props))
	for key, value := range props {
		switch {
		case key == "key":
		case vdom.IsEventProp(key):
			attrs["data-on-"+key[2:]] = "true"
		default:
			switch v := value.(type) {
			case bool:
				if v {
					attrs[key] = ""
				}
			case string:
				attrs[key] = v
			default:
				attrs[key] = fmt.Sprintf("%v", v)
			}
		}
	}
	return attrs
}

// ToVNode rebuilds a plain vdom node from wire shape. Handlers are
// gone for good; this is only useful for inspection and tests.
func (w *VNodeWire) ToVNode() *vdom.VNode {
	if w == nil {
		return nil
	}
	node := &vdom.VNode{
		Kind: w.Kind,
		Tag:  w.Tag,
		HID:  w.HID,
		Text: w.Text,
	}
	if len(w.Attrs) > 0 {
		node.Props = make(vdom.Props, len(w.Attrs))
		for k, v := range w.Attrs {
			node.Props[k] = v
		}
	}
	if len(w.Children) > 0 {
		node.Children = make([]*vdom.VNode, len(w.Children))
		for i, child := range w.Children {
			node.Children[i] = child.ToVNode()
		}
	}
	return node
}

// EncodeVNodeWire appends node to e. Attributes are written in sorted
// key order so identical trees encode to identical bytes.
func EncodeVNodeWire(e *Encoder, node *VNodeWire) {
	if node == nil {
		e.WriteByte(nullNodeMarker)
		return
	}
	e.WriteByte(byte(node.Kind))

	switch node.Kind {
	case vdom.KindElement:
		e.WriteString(node.Tag)
		e.WriteString(node.HID)

		keys := make([]string, 0, len(node.Attrs))
		for k := range node.Attrs {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		e.WriteUvarint(uint64(len(keys)))
		for _, k := range keys {
			e.WriteString(k)
			e.WriteString(node.Attrs[k])
		}

		e.WriteUvarint(uint64(len(node.Children)))
		for _, child := range node.Children {
			EncodeVNodeWire(e, child)
		}

	case vdom.KindText, vdom.KindRaw:
		e.WriteString(node.Text)

	case vdom.KindFragment:
		e.WriteUvarint(uint64(len(node.Children)))
		for _, child := range node.Children {
			EncodeVNodeWire(e, child)
		}

	default:
		// Unmaterialized component or unknown kind: empty fragment.
		e.WriteUvarint(0)
	}
}

// DecodeVNodeWire reads one node tree from d.
func DecodeVNodeWire(d *Decoder) (*VNodeWire, error) {
	return decodeVNodeWire(d, 0)
}

func decodeVNodeWire(d *Decoder, depth int) (*VNodeWire, error) {
	if depth > MaxNodeDepth {
		return nil, ErrMaxDepthExceeded
	}

	kind, err := d.ReadByte()
	if err != nil {
		return nil, err
	}
	if kind == nullNodeMarker {
		return nil, nil
	}

	node := &VNodeWire{Kind: vdom.VKind(kind)}
	switch node.Kind {
	case vdom.KindElement:
		if node.Tag, err = d.ReadString(); err != nil {
			return nil, err
		}
		if node.HID, err = d.ReadString(); err != nil {
			return nil, err
		}
		attrCount, err := d.ReadCollectionCount()
		if err != nil {
			return nil, err
		}
		if attrCount > 0 {
			node.Attrs = make(map[string]string, attrCount)
			for i := 0; i < attrCount; i++ {
				key, err := d.ReadString()
				if err != nil {
					return nil, err
				}
				value, err := d.ReadString()
				if err != nil {
					return nil, err
				}
				node.Attrs[key] = value
			}
		}
		if node.Children, err = decodeWireChildren(d, depth); err != nil {
			return nil, err
		}

	case vdom.KindText, vdom.KindRaw:
		if node.Text, err = d.ReadString(); err != nil {
			return nil, err
		}

	case vdom.KindFragment:
		if node.Children, err = decodeWireChildren(d, depth); err != nil {
			return nil, err
		}

	default:
		// Forward compatibility: treat like a fragment.
		if node.Children, err = decodeWireChildren(d, depth); err != nil {
			return nil, err
		}
	}
	return node, nil
}

func decodeWireChildren(d *Decoder, depth int) ([]*VNodeWire, error) {
	count, err := d.ReadCollectionCount()
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, nil
	}
	children := make([]*VNodeWire, count)
	for i := 0; i < count; i++ {
		child, err := decodeVNodeWire(d, depth+1)
		if err != nil {
			return nil, err
		}
		children[i] = child
	}
	return children, nil
}
