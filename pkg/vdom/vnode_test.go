package vdom

import "testing"

func TestNewElementArguments(t *testing.T) {
	clicked := func() {}
	node := Div(
		ID("panel"),
		Class("card", "wide"),
		OnClick(clicked),
		nil,
		Span("hello"),
		[]*VNode{Text("a"), nil, Text("b")},
		"tail",
	)

	if node.Kind != KindElement || node.Tag != "div" {
		t.Fatalf("node = %v %q, want Element div", node.Kind, node.Tag)
	}
	if got := node.Props["id"]; got != "panel" {
		t.Errorf("id = %v, want panel", got)
	}
	if got := node.Props["class"]; got != "card wide" {
		t.Errorf("class = %v, want %q", got, "card wide")
	}
	if node.Props["onclick"] == nil {
		t.Error("onclick handler not set")
	}
	if len(node.Children) != 4 {
		t.Fatalf("children = %d, want 4", len(node.Children))
	}
	if node.Children[3].Kind != KindText || node.Children[3].Text != "tail" {
		t.Errorf("last child = %v %q, want Text tail", node.Children[3].Kind, node.Children[3].Text)
	}
}

func TestKeyAttrSetsKeyField(t *testing.T) {
	node := Li(Key("m-1"), "item")
	if node.Key != "m-1" {
		t.Errorf("Key = %q, want m-1", node.Key)
	}
	if _, ok := node.Props["key"]; ok {
		t.Error("key must not leak into Props")
	}
}

func TestIsInteractive(t *testing.T) {
	if Div().IsInteractive() {
		t.Error("plain div must not be interactive")
	}
	if !Button(OnClick(func() {})).IsInteractive() {
		t.Error("button with onclick must be interactive")
	}
	if Text("x").IsInteractive() {
		t.Error("text node must not be interactive")
	}
}

func TestComponentChildWrapped(t *testing.T) {
	comp := Func(func() *VNode { return P("inner") })
	node := Div(comp)
	if len(node.Children) != 1 {
		t.Fatalf("children = %d, want 1", len(node.Children))
	}
	if node.Children[0].Kind != KindComponent {
		t.Errorf("child kind = %v, want Component", node.Children[0].Kind)
	}
}

func TestMaterializeExpandsComponents(t *testing.T) {
	inner := Func(func() *VNode { return Span(ID("deep"), "x") })
	tree := Materialize(Div(inner, P("sibling")))

	if len(tree.Children) != 2 {
		t.Fatalf("children = %d, want 2", len(tree.Children))
	}
	if tree.Children[0].Kind != KindElement || tree.Children[0].Tag != "span" {
		t.Errorf("component child = %v %q, want span element", tree.Children[0].Kind, tree.Children[0].Tag)
	}
	if FindByID(tree, "deep") == nil {
		t.Error("materialized tree missing nested element")
	}
}

func TestFindByID(t *testing.T) {
	tree := Div(Header(), Main(ID("app"), P("body")), Footer())
	if node := FindByID(tree, "app"); node == nil || node.Tag != "main" {
		t.Fatalf("FindByID(app) = %v, want main element", node)
	}
	if node := FindByID(tree, "absent"); node != nil {
		t.Errorf("FindByID(absent) = %v, want nil", node)
	}
}

func TestFragmentGroupsChildren(t *testing.T) {
	frag := Fragment(Text("a"), nil, "b", []*VNode{Span("c")})
	if frag.Kind != KindFragment {
		t.Fatalf("kind = %v, want Fragment", frag.Kind)
	}
	if len(frag.Children) != 3 {
		t.Errorf("children = %d, want 3", len(frag.Children))
	}
}

func TestIsVoidElement(t *testing.T) {
	if !IsVoidElement("br") {
		t.Error("br should be void")
	}
	if IsVoidElement("div") {
		t.Error("div should not be void")
	}
}
