package vdom

// PatchOp identifies a DOM mutation.
type PatchOp uint8

const (
	PatchSetText     PatchOp = 0x01 // replace text content
	PatchSetAttr     PatchOp = 0x02 // set or update an attribute
	PatchRemoveAttr  PatchOp = 0x03 // remove an attribute
	PatchInsertNode  PatchOp = 0x04 // insert a rendered node at an index
	PatchRemoveNode  PatchOp = 0x05 // remove a node
	PatchMoveNode    PatchOp = 0x06 // move a node to a new index
	PatchReplaceNode PatchOp = 0x07 // replace a node with a rendered one
	PatchSetValue    PatchOp = 0x08 // set an input's live value
	PatchFocus       PatchOp = 0x09 // focus an element
	PatchNavigate    PatchOp = 0x0A // push or replace a history entry
)

// String returns the operation name.
func (op PatchOp) String() string {
	switch op {
	case PatchSetText:
		return "SetText"
	case PatchSetAttr:
		return "SetAttr"
	case PatchRemoveAttr:
		return "RemoveAttr"
	case PatchInsertNode:
		return "InsertNode"
	case PatchRemoveNode:
		return "RemoveNode"
	case PatchMoveNode:
		return "MoveNode"
	case PatchReplaceNode:
		return "ReplaceNode"
	case PatchSetValue:
		return "SetValue"
	case PatchFocus:
		return "Focus"
	case PatchNavigate:
		return "Navigate"
	default:
		return "Unknown"
	}
}

// Patch is a single DOM operation to apply on the client.
type Patch struct {
	Op       PatchOp
	HID      string // target node
	Key      string // attribute key; "replace" for Navigate's history mode
	Value    string // new value; target URL for Navigate
	Node     *VNode // payload for InsertNode/ReplaceNode
	Index    int    // position for InsertNode/MoveNode
	ParentID string // parent node for InsertNode/MoveNode
}
