package server

import "sync"

// PatchHistory is a ring of recently sent patch frames, kept so a
// resuming client can be rolled forward instead of reloaded.
type PatchHistory struct {
	mu      sync.Mutex
	entries []historyEntry
	head    int // next write position
	count   int
}

type historyEntry struct {
	seq   uint64
	frame []byte
}

// NewPatchHistory returns a history holding up to capacity frames.
func NewPatchHistory(capacity int) *PatchHistory {
	if capacity <= 0 {
		capacity = 1
	}
	return &PatchHistory{entries: make([]historyEntry, capacity)}
}

// Add records a sent frame under its sequence. Sequences must arrive
// in increasing order; the oldest entry falls off when the ring is
// full.
func (h *PatchHistory) Add(seq uint64, frame []byte) {
	h.mu.Lock()
	h.entries[h.head] = historyEntry{seq: seq, frame: frame}
	h.head = (h.head + 1) % len(h.entries)
	if h.count < len(h.entries) {
		h.count++
	}
	h.mu.Unlock()
}

// FramesSince returns the recorded frames after afterSeq, oldest
// first. The second return is false when the gap reaches past what
// the ring still holds; a full resync is then the only way forward.
func (h *PatchHistory) FramesSince(afterSeq uint64) ([][]byte, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.count == 0 {
		return nil, false
	}
	size := len(h.entries)
	start := (h.head - h.count + size) % size
	oldest := h.entries[start].seq
	newest := h.entries[(h.head-1+size)%size].seq
	if afterSeq >= newest {
		return nil, true
	}
	if afterSeq+1 < oldest {
		return nil, false
	}
	out := make([][]byte, 0, newest-afterSeq)
	for i := 0; i < h.count; i++ {
		e := h.entries[(start+i)%size]
		if e.seq > afterSeq {
			out = append(out, e.frame)
		}
	}
	return out, true
}

// CanRecover reports whether a client at afterSeq can be replayed
// forward from the ring.
func (h *PatchHistory) CanRecover(afterSeq uint64) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.count == 0 {
		return false
	}
	size := len(h.entries)
	start := (h.head - h.count + size) % size
	newest := h.entries[(h.head-1+size)%size].seq
	return afterSeq >= newest || afterSeq+1 >= h.entries[start].seq
}

// MinSeq returns the oldest recorded sequence, or 0 when empty.
func (h *PatchHistory) MinSeq() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.count == 0 {
		return 0
	}
	size := len(h.entries)
	return h.entries[(h.head-h.count+size)%size].seq
}

// MaxSeq returns the newest recorded sequence, or 0 when empty.
func (h *PatchHistory) MaxSeq() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.count == 0 {
		return 0
	}
	size := len(h.entries)
	return h.entries[(h.head-1+size)%size].seq
}

// Count returns the number of recorded frames.
func (h *PatchHistory) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.count
}

// Clear drops all recorded frames.
func (h *PatchHistory) Clear() {
	h.mu.Lock()
	h.head = 0
	h.count = 0
	for i := range h.entries {
		h.entries[i] = historyEntry{}
	}
	h.mu.Unlock()
}
