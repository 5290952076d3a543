package protocol

import (
	"github.com/marycampus/advisor/pkg/vdom"
)

// PatchesFrame is a batch of DOM patches with a sequence number. The
// client applies batches in sequence order and acknowledges them.
type PatchesFrame struct {
	Seq     uint64
	Patches []WirePatch
}

// WirePatch is a vdom.Patch with its node payload converted to wire
// shape.
type WirePatch struct {
	Op       vdom.PatchOp
	HID      string
	Key      string
	Value    string
	ParentID string
	Index    int
	Node     *VNodeWire
}

// PatchToWire converts a diff patch for transmission.
func PatchToWire(p vdom.Patch) WirePatch {
	return WirePatch{
		Op:       p.Op,
		HID:      p.HID,
		Key:      p.Key,
		Value:    p.Value,
		ParentID: p.ParentID,
		Index:    p.Index,
		Node:     VNodeToWire(p.Node),
	}
}

// PatchesToWire converts a batch of diff patches.
func PatchesToWire(patches []vdom.Patch) []WirePatch {
	out := make([]WirePatch, len(patches))
	for i, p := range patches {
		out[i] = PatchToWire(p)
	}
	return out
}

// EncodePatches encodes a patch batch to payload bytes.
func EncodePatches(pf *PatchesFrame) []byte {
	e := NewEncoder()
	EncodePatchesTo(e, pf)
	return e.Bytes()
}

// EncodePatchesTo encodes a patch batch using the provided encoder.
func EncodePatchesTo(e *Encoder, pf *PatchesFrame) {
	e.WriteUvarint(pf.Seq)
	e.WriteUvarint(uint64(len(pf.Patches)))
	for i := range pf.Patches {
		encodePatch(e, &pf.Patches[i])
	}
}

func encodePatch(e *Encoder, p *WirePatch) {
	e.WriteByte(byte(p.Op))
	e.WriteString(p.HID)

	switch p.Op {
	case vdom.PatchSetText, vdom.PatchSetValue:
		e.WriteString(p.Value)

	case vdom.PatchSetAttr:
		e.WriteString(p.Key)
		e.WriteString(p.Value)

	case vdom.PatchRemoveAttr:
		e.WriteString(p.Key)

	case vdom.PatchInsertNode:
		e.WriteString(p.ParentID)
		e.WriteUvarint(uint64(p.Index))
		EncodeVNodeWire(e, p.Node)

	case vdom.PatchRemoveNode, vdom.PatchFocus:
		// HID alone is enough.

	case vdom.PatchMoveNode:
		e.WriteString(p.ParentID)
		e.WriteUvarint(uint64(p.Index))

	case vdom.PatchReplaceNode:
		EncodeVNodeWire(e, p.Node)

	case vdom.PatchNavigate:
		e.WriteString(p.Value)
		e.WriteString(p.Key)
	}
}

// DecodePatches decodes a patch batch payload.
func DecodePatches(data []byte) (*PatchesFrame, error) {
	d := NewDecoder(data)
	seq, err := d.ReadUvarint()
	if err != nil {
		return nil, err
	}
	count, err := d.ReadCollectionCount()
	if err != nil {
		return nil, err
	}
	patches := make([]WirePatch, count)
	for i := 0; i < count; i++ {
		if err := decodePatch(d, &patches[i]); err != nil {
			return nil, err
		}
	}
	return &PatchesFrame{Seq: seq, Patches: patches}, nil
}

func decodePatch(d *Decoder, p *WirePatch) error {
	op, err := d.ReadByte()
	if err != nil {
		return err
	}
	p.Op = vdom.PatchOp(op)

	if p.HID, err = d.ReadString(); err != nil {
		return err
	}

	switch p.Op {
	case vdom.PatchSetText, vdom.PatchSetValue:
		p.Value, err = d.ReadString()

	case vdom.PatchSetAttr:
		if p.Key, err = d.ReadString(); err != nil {
			return err
		}
		p.Value, err = d.ReadString()

	case vdom.PatchRemoveAttr:
		p.Key, err = d.ReadString()

	case vdom.PatchInsertNode:
		if p.ParentID, err = d.ReadString(); err != nil {
			return err
		}
		var idx uint64
		if idx, err = d.ReadUvarint(); err != nil {
			return err
		}
		p.Index = int(idx)
		p.Node, err = DecodeVNodeWire(d)

	case vdom.PatchRemoveNode, vdom.PatchFocus:
		// No payload.

	case vdom.PatchMoveNode:
		if p.ParentID, err = d.ReadString(); err != nil {
			return err
		}
		var idx uint64
		idx, err = d.ReadUvarint()
		p.Index = int(idx)

	case vdom.PatchReplaceNode:
		p.Node, err = DecodeVNodeWire(d)

	case vdom.PatchNavigate:
		if p.Value, err = d.ReadString(); err != nil {
			return err
		}
		p.Key, err = d.ReadString()

	default:
		// Unknown op: nothing more can be read reliably.
	}
	return err
}
