package protocol

import (
	"bytes"
	"errors"
	"testing"

	"github.com/marycampus/advisor/pkg/vdom"
)

func TestVNodeToWireAttrs(t *testing.T) {
	node := vdom.Button(
		vdom.Class("send"),
		vdom.Disabled(),
		vdom.Attr{Key: "draggable", Value: false},
		vdom.OnClick(func() {}),
		vdom.Key("k1"),
		vdom.Text("Send"),
	)
	node.HID = "h9"

	w := VNodeToWire(node)
	if w.Tag != "button" || w.HID != "h9" {
		t.Fatalf("wire = %+v", w)
	}
	if w.Attrs["class"] != "send" {
		t.Errorf("class = %q", w.Attrs["class"])
	}
	if v, ok := w.Attrs["disabled"]; !ok || v != "" {
		t.Errorf("disabled = %q (present=%v), want empty present", v, ok)
	}
	if _, ok := w.Attrs["draggable"]; ok {
		t.Error("false boolean kept")
	}
	if w.Attrs["data-on-click"] != "true" {
		t.Error("event marker missing")
	}
	if _, ok := w.Attrs["onclick"]; ok {
		t.Error("handler crossed the wire")
	}
	if _, ok := w.Attrs["key"]; ok {
		t.Error("reconciliation key crossed the wire")
	}
	if len(w.Children) != 1 || w.Children[0].Kind != vdom.KindText {
		t.Errorf("children = %+v", w.Children)
	}
}

func TestVNodeWireRoundTrip(t *testing.T) {
	tree := VNodeToWire(vdom.Div(
		vdom.Class("thread"),
		vdom.Span(vdom.Text("hi")),
		vdom.Raw("<b>raw</b>"),
		vdom.Fragment(vdom.Text("a"), vdom.Text("b")),
	))

	e := NewEncoder()
	EncodeVNodeWire(e, tree)
	got, err := DecodeVNodeWire(NewDecoder(e.Bytes()))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Tag != "div" || got.Attrs["class"] != "thread" {
		t.Errorf("root = %+v", got)
	}
	if len(got.Children) != 3 {
		t.Fatalf("children = %d, want 3", len(got.Children))
	}
	if got.Children[1].Kind != vdom.KindRaw || got.Children[1].Text != "<b>raw</b>" {
		t.Errorf("raw child = %+v", got.Children[1])
	}
	if len(got.Children[2].Children) != 2 {
		t.Errorf("fragment children = %+v", got.Children[2])
	}
}

func TestVNodeWireDeterministic(t *testing.T) {
	node := VNodeToWire(vdom.Div(
		vdom.Class("c"),
		vdom.ID("i"),
		vdom.Attr{Key: "title", Value: "t"},
		vdom.Attr{Key: "role", Value: "main"},
	))

	first := NewEncoder()
	EncodeVNodeWire(first, node)
	second := NewEncoder()
	EncodeVNodeWire(second, node)
	if !bytes.Equal(first.Bytes(), second.Bytes()) {
		t.Error("identical node encoded to different bytes")
	}
}

func TestVNodeWireNull(t *testing.T) {
	e := NewEncoder()
	EncodeVNodeWire(e, nil)
	got, err := DecodeVNodeWire(NewDecoder(e.Bytes()))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got != nil {
		t.Errorf("got %+v, want nil", got)
	}
}

func TestVNodeWireDepthGuard(t *testing.T) {
	leaf := &VNodeWire{Kind: vdom.KindText, Text: "deep"}
	node := leaf
	for i := 0; i < MaxNodeDepth+10; i++ {
		node = &VNodeWire{Kind: vdom.KindElement, Tag: "div", Children: []*VNodeWire{node}}
	}

	e := NewEncoder()
	EncodeVNodeWire(e, node)
	if _, err := DecodeVNodeWire(NewDecoder(e.Bytes())); !errors.Is(err, ErrMaxDepthExceeded) {
		t.Errorf("err = %v, want ErrMaxDepthExceeded", err)
	}
}

func TestWireToVNode(t *testing.T) {
	w := &VNodeWire{
		Kind:     vdom.KindElement,
		Tag:      "p",
		Attrs:    map[string]string{"class": "note"},
		Children: []*VNodeWire{{Kind: vdom.KindText, Text: "hello"}},
	}
	node := w.ToVNode()
	if node.Tag != "p" || node.Props["class"] != "note" {
		t.Errorf("node = %+v", node)
	}
	if len(node.Children) != 1 || node.Children[0].Text != "hello" {
		t.Errorf("children = %+v", node.Children)
	}
}
