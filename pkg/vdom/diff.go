package vdom

import (
	"fmt"
	"reflect"
	"strconv"
)

// Diff compares two trees and returns the patches that transform prev
// into next. It also copies hydration IDs from prev onto matching next
// nodes, so next can serve as the session's current tree afterwards.
// Both trees must be materialized (no KindComponent nodes) for stable
// results; Diff falls back to rendering components in place if present.
func Diff(prev, next *VNode) []Patch {
	var patches []Patch
	diffNodes(prev, next, "", &patches)
	return patches
}

func diffNodes(prev, next *VNode, parentHID string, patches *[]Patch) {
	if prev == nil && next == nil {
		return
	}
	// Additions are handled by the parent's child walk via InsertNode.
	if prev == nil {
		return
	}
	if next == nil {
		*patches = append(*patches, Patch{Op: PatchRemoveNode, HID: prev.HID})
		return
	}
	if prev.Kind != next.Kind {
		*patches = append(*patches, Patch{Op: PatchReplaceNode, HID: prev.HID, Node: next})
		return
	}

	switch prev.Kind {
	case KindText:
		diffText(prev, next, parentHID, patches)
	case KindElement:
		diffElement(prev, next, patches)
	case KindFragment:
		next.HID = prev.HID
		diffChildren(prev, next, parentHID, patches)
	case KindComponent:
		next.HID = prev.HID
		if prev.Comp != nil && next.Comp != nil {
			diffNodes(prev.Comp.Render(), next.Comp.Render(), parentHID, patches)
		}
	case KindRaw:
		diffRaw(prev, next, parentHID, patches)
	}
}

// diffText targets the parent element when the text node itself carries
// no hydration ID; the client updates the parent's textContent.
func diffText(prev, next *VNode, parentHID string, patches *[]Patch) {
	next.HID = prev.HID
	if prev.Text == next.Text {
		return
	}
	target := prev.HID
	if target == "" {
		target = parentHID
	}
	if target != "" {
		*patches = append(*patches, Patch{Op: PatchSetText, HID: target, Value: next.Text})
	}
}

func diffRaw(prev, next *VNode, parentHID string, patches *[]Patch) {
	next.HID = prev.HID
	if prev.Text == next.Text {
		return
	}
	target := prev.HID
	if target == "" {
		target = parentHID
	}
	if target != "" {
		*patches = append(*patches, Patch{Op: PatchReplaceNode, HID: target, Node: next})
	}
}

func diffElement(prev, next *VNode, patches *[]Patch) {
	if prev.Tag != next.Tag {
		*patches = append(*patches, Patch{Op: PatchReplaceNode, HID: prev.HID, Node: next})
		return
	}
	next.HID = prev.HID
	diffProps(prev, next, patches)
	diffChildren(prev, next, prev.HID, patches)
}

func diffProps(prev, next *VNode, patches *[]Patch) {
	for key, prevVal := range prev.Props {
		// Handlers are re-indexed after each render, not patched.
		if IsEventProp(key) || key == "key" {
			continue
		}
		nextVal, exists := next.Props[key]
		switch {
		case !exists:
			*patches = append(*patches, Patch{Op: PatchRemoveAttr, HID: prev.HID, Key: key})
		case !propsEqual(prevVal, nextVal):
			*patches = append(*patches, Patch{
				Op: PatchSetAttr, HID: prev.HID, Key: key, Value: PropString(nextVal),
			})
		}
	}
	for key, nextVal := range next.Props {
		if IsEventProp(key) || key == "key" {
			continue
		}
		if _, exists := prev.Props[key]; !exists {
			*patches = append(*patches, Patch{
				Op: PatchSetAttr, HID: prev.HID, Key: key, Value: PropString(nextVal),
			})
		}
	}
}

func diffChildren(prev, next *VNode, parentHID string, patches *[]Patch) {
	if hasKeys(prev.Children) || hasKeys(next.Children) {
		diffKeyedChildren(prev, prev.Children, next.Children, parentHID, patches)
		return
	}
	diffUnkeyedChildren(prev, prev.Children, next.Children, parentHID, patches)
}

func diffUnkeyedChildren(parent *VNode, prev, next []*VNode, parentHID string, patches *[]Patch) {
	maxLen := len(prev)
	if len(next) > maxLen {
		maxLen = len(next)
	}
	for i := 0; i < maxLen; i++ {
		var prevChild, nextChild *VNode
		if i < len(prev) {
			prevChild = prev[i]
		}
		if i < len(next) {
			nextChild = next[i]
		}
		switch {
		case prevChild == nil && nextChild != nil:
			*patches = append(*patches, Patch{
				Op: PatchInsertNode, ParentID: parent.HID, Index: i, Node: nextChild,
			})
		case prevChild != nil && nextChild == nil:
			*patches = append(*patches, Patch{Op: PatchRemoveNode, HID: prevChild.HID})
		default:
			diffNodes(prevChild, nextChild, parentHID, patches)
		}
	}
}

func diffKeyedChildren(parent *VNode, prev, next []*VNode, parentHID string, patches *[]Patch) {
	prevByKey := make(map[string]int, len(prev))
	for i, child := range prev {
		if key := childKey(child); key != "" {
			prevByKey[key] = i
		}
	}

	matched := make(map[int]bool, len(prev))
	for nextIdx, nextChild := range next {
		key := childKey(nextChild)
		var prevIdx int
		exists := false
		if key != "" {
			prevIdx, exists = prevByKey[key]
		}
		if !exists {
			*patches = append(*patches, Patch{
				Op: PatchInsertNode, ParentID: parent.HID, Index: nextIdx, Node: nextChild,
			})
			continue
		}
		matched[prevIdx] = true
		prevChild := prev[prevIdx]
		if prevIdx != nextIdx {
			*patches = append(*patches, Patch{
				Op: PatchMoveNode, HID: prevChild.HID, ParentID: parent.HID, Index: nextIdx,
			})
		}
		diffNodes(prevChild, nextChild, parentHID, patches)
	}

	for i, prevChild := range prev {
		if !matched[i] {
			*patches = append(*patches, Patch{Op: PatchRemoveNode, HID: prevChild.HID})
		}
	}
}

func childKey(node *VNode) string {
	if node == nil {
		return ""
	}
	if node.Key != "" {
		return node.Key
	}
	if node.Props != nil {
		if key, ok := node.Props["key"].(string); ok {
			return key
		}
	}
	return ""
}

func hasKeys(children []*VNode) bool {
	for _, child := range children {
		if childKey(child) != "" {
			return true
		}
	}
	return false
}

func propsEqual(a, b any) bool {
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case int:
		bv, ok := b.(int)
		return ok && av == bv
	case int64:
		bv, ok := b.(int64)
		return ok && av == bv
	case float64:
		bv, ok := b.(float64)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case nil:
		return b == nil
	}
	return reflect.DeepEqual(a, b)
}

// PropString converts a prop value to its attribute string form.
func PropString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case bool:
		if val {
			return "true"
		}
		return "false"
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}
