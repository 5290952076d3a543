package vdom

import "testing"

// stampHIDs assigns IDs to every element so patches have stable targets.
func stampHIDs(node *VNode) *VNode {
	AssignHIDs(node, NewHIDGenerator())
	return node
}

func TestDiffNilTrees(t *testing.T) {
	if patches := Diff(nil, nil); len(patches) != 0 {
		t.Errorf("patches = %d, want 0", len(patches))
	}
}

func TestDiffNodeRemoved(t *testing.T) {
	prev := stampHIDs(Div())
	patches := Diff(prev, nil)
	if len(patches) != 1 {
		t.Fatalf("patches = %d, want 1", len(patches))
	}
	if patches[0].Op != PatchRemoveNode || patches[0].HID != prev.HID {
		t.Errorf("patch = %v %q, want RemoveNode %q", patches[0].Op, patches[0].HID, prev.HID)
	}
}

func TestDiffTextChangeTargetsParent(t *testing.T) {
	prev := stampHIDs(P("before"))
	next := P("after")

	patches := Diff(prev, next)
	if len(patches) != 1 {
		t.Fatalf("patches = %d, want 1", len(patches))
	}
	got := patches[0]
	if got.Op != PatchSetText || got.HID != prev.HID || got.Value != "after" {
		t.Errorf("patch = %v %q %q, want SetText %q after", got.Op, got.HID, got.Value, prev.HID)
	}
}

func TestDiffUnchangedProducesNothing(t *testing.T) {
	prev := stampHIDs(Div(Class("a"), P("same")))
	next := Div(Class("a"), P("same"))
	if patches := Diff(prev, next); len(patches) != 0 {
		t.Errorf("patches = %d, want 0", len(patches))
	}
}

func TestDiffKindChangeReplaces(t *testing.T) {
	prev := Text("hello")
	prev.HID = "h9"
	patches := Diff(prev, Div("hello"))
	if len(patches) != 1 || patches[0].Op != PatchReplaceNode {
		t.Fatalf("patches = %v, want one ReplaceNode", patches)
	}
}

func TestDiffTagChangeReplaces(t *testing.T) {
	prev := stampHIDs(Div())
	patches := Diff(prev, Span())
	if len(patches) != 1 || patches[0].Op != PatchReplaceNode {
		t.Fatalf("patches = %v, want one ReplaceNode", patches)
	}
}

func TestDiffAttrLifecycle(t *testing.T) {
	tests := []struct {
		name string
		prev *VNode
		next *VNode
		op   PatchOp
		key  string
		val  string
	}{
		{"added", Div(), Div(Class("new")), PatchSetAttr, "class", "new"},
		{"changed", Div(Class("old")), Div(Class("new")), PatchSetAttr, "class", "new"},
		{"removed", Div(Class("old")), Div(), PatchRemoveAttr, "class", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stampHIDs(tt.prev)
			patches := Diff(tt.prev, tt.next)
			if len(patches) != 1 {
				t.Fatalf("patches = %d, want 1", len(patches))
			}
			got := patches[0]
			if got.Op != tt.op || got.Key != tt.key {
				t.Errorf("patch = %v %q, want %v %q", got.Op, got.Key, tt.op, tt.key)
			}
			if tt.op == PatchSetAttr && got.Value != tt.val {
				t.Errorf("value = %q, want %q", got.Value, tt.val)
			}
		})
	}
}

func TestDiffEventHandlersNotPatched(t *testing.T) {
	prev := stampHIDs(Button(OnClick(func() {}), "go"))
	next := Button(OnClick(func() {}), "go")
	if patches := Diff(prev, next); len(patches) != 0 {
		t.Errorf("patches = %d, want 0 (handlers are re-indexed, not patched)", len(patches))
	}
}

func TestDiffChildAppended(t *testing.T) {
	prev := stampHIDs(Ul(Li("a")))
	next := Ul(Li("a"), Li("b"))

	patches := Diff(prev, next)
	if len(patches) != 1 {
		t.Fatalf("patches = %d, want 1", len(patches))
	}
	got := patches[0]
	if got.Op != PatchInsertNode || got.ParentID != prev.HID || got.Index != 1 {
		t.Errorf("patch = %v parent=%q idx=%d, want InsertNode parent=%q idx=1",
			got.Op, got.ParentID, got.Index, prev.HID)
	}
}

func TestDiffChildRemoved(t *testing.T) {
	prev := stampHIDs(Ul(Li("a"), Li("b")))
	next := Ul(Li("a"))

	patches := Diff(prev, next)
	if len(patches) != 1 {
		t.Fatalf("patches = %d, want 1", len(patches))
	}
	if patches[0].Op != PatchRemoveNode || patches[0].HID != prev.Children[1].HID {
		t.Errorf("patch = %v %q, want RemoveNode %q", patches[0].Op, patches[0].HID, prev.Children[1].HID)
	}
}

func TestDiffKeyedReorder(t *testing.T) {
	prev := stampHIDs(Ul(
		Li(Key("a"), "a"),
		Li(Key("b"), "b"),
		Li(Key("c"), "c"),
	))
	next := Ul(
		Li(Key("c"), "c"),
		Li(Key("a"), "a"),
		Li(Key("b"), "b"),
	)

	patches := Diff(prev, next)
	moves := 0
	for _, p := range patches {
		switch p.Op {
		case PatchMoveNode:
			moves++
		case PatchInsertNode, PatchRemoveNode, PatchReplaceNode:
			t.Errorf("unexpected structural patch %v in pure reorder", p.Op)
		}
	}
	if moves == 0 {
		t.Error("expected at least one MoveNode for keyed reorder")
	}
}

func TestDiffKeyedInsertAndRemove(t *testing.T) {
	prev := stampHIDs(Ul(Li(Key("a"), "a"), Li(Key("b"), "b")))
	next := Ul(Li(Key("a"), "a"), Li(Key("c"), "c"))

	var inserts, removes int
	for _, p := range Diff(prev, next) {
		switch p.Op {
		case PatchInsertNode:
			inserts++
		case PatchRemoveNode:
			removes++
		}
	}
	if inserts != 1 || removes != 1 {
		t.Errorf("inserts=%d removes=%d, want 1 and 1", inserts, removes)
	}
}

func TestDiffCopiesHIDsForward(t *testing.T) {
	prev := stampHIDs(Div(Class("a"), P("x")))
	next := Div(Class("b"), P("x"))
	Diff(prev, next)
	if next.HID != prev.HID {
		t.Errorf("root HID = %q, want %q", next.HID, prev.HID)
	}
	if next.Children[0].HID != prev.Children[0].HID {
		t.Errorf("child HID = %q, want %q", next.Children[0].HID, prev.Children[0].HID)
	}
}

func TestDiffRawChangeReplaces(t *testing.T) {
	prev := Div(Raw("<b>old</b>"))
	stampHIDs(prev)
	next := Div(Raw("<b>new</b>"))

	patches := Diff(prev, next)
	if len(patches) != 1 || patches[0].Op != PatchReplaceNode {
		t.Fatalf("patches = %v, want one ReplaceNode", patches)
	}
	if patches[0].HID != prev.HID {
		t.Errorf("target = %q, want parent %q", patches[0].HID, prev.HID)
	}
}

func TestPropString(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{"s", "s"},
		{true, "true"},
		{false, "false"},
		{42, "42"},
		{int64(7), "7"},
		{1.5, "1.5"},
	}
	for _, tt := range tests {
		if got := PropString(tt.in); got != tt.want {
			t.Errorf("PropString(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
