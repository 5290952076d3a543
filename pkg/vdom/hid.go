package vdom

import (
	"strconv"
	"sync"
)

// HIDGenerator produces session-unique hydration IDs ("h1", "h2", ...).
// Patches address DOM nodes by these IDs, so a session keeps one generator
// for its whole lifetime.
type HIDGenerator struct {
	mu      sync.Mutex
	counter uint64
}

// NewHIDGenerator creates a generator starting at h1.
func NewHIDGenerator() *HIDGenerator {
	return &HIDGenerator{}
}

// Next returns the next hydration ID.
func (g *HIDGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.counter++
	return "h" + strconv.FormatUint(g.counter, 10)
}

// Reset restarts the sequence. Only safe between page loads.
func (g *HIDGenerator) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.counter = 0
}

// AssignHIDs walks the tree and assigns an ID to every element node that
// does not already carry one. Text and fragment nodes are addressed
// through their parent element.
func AssignHIDs(node *VNode, gen *HIDGenerator) {
	if node == nil {
		return
	}
	if node.Kind == KindElement && node.HID == "" {
		node.HID = gen.Next()
	}
	for _, child := range node.Children {
		AssignHIDs(child, gen)
	}
}

// FindByHID returns the node with the given ID, or nil.
func FindByHID(node *VNode, hid string) *VNode {
	if node == nil {
		return nil
	}
	if node.HID == hid {
		return node
	}
	for _, child := range node.Children {
		if found := FindByHID(child, hid); found != nil {
			return found
		}
	}
	return nil
}

// FindByID returns the element whose id attribute equals id, or nil.
// The bootstrap uses this to verify the mount node exists in the shell.
func FindByID(node *VNode, id string) *VNode {
	if node == nil {
		return nil
	}
	if node.Kind == KindElement && node.Props != nil {
		if v, ok := node.Props["id"].(string); ok && v == id {
			return node
		}
	}
	for _, child := range node.Children {
		if found := FindByID(child, id); found != nil {
			return found
		}
	}
	return nil
}

// CollectHandlers returns hid → (event → handler) for every interactive
// element in the tree. The session rebuilds this index after each render.
func CollectHandlers(node *VNode) map[string]map[string]any {
	result := make(map[string]map[string]any)
	collectHandlers(node, result)
	return result
}

func collectHandlers(node *VNode, result map[string]map[string]any) {
	if node == nil {
		return
	}
	if node.Kind == KindElement && node.HID != "" {
		for key, value := range node.Props {
			if !IsEventProp(key) {
				continue
			}
			if result[node.HID] == nil {
				result[node.HID] = make(map[string]any)
			}
			result[node.HID][key] = value
		}
	}
	for _, child := range node.Children {
		collectHandlers(child, result)
	}
}
