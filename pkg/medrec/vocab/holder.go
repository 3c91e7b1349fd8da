package vocab

import "sync/atomic"

// Holder publishes the current Index to concurrent readers. Publishing swaps a
// pointer; an Index already handed to a reader stays valid and unchanged.
type Holder struct {
	current atomic.Pointer[Index]
}

// NewHolder returns a holder that starts with idx, or an empty index if nil.
func NewHolder(idx *Index) *Holder {
	h := &Holder{}
	if idx == nil {
		idx = Empty()
	}
	h.current.Store(idx)
	return h
}

// Load returns the currently published index. It never returns nil.
func (h *Holder) Load() *Index {
	if idx := h.current.Load(); idx != nil {
		return idx
	}
	return Empty()
}

// Publish replaces the current index. A nil idx publishes an empty index.
func (h *Holder) Publish(idx *Index) {
	if idx == nil {
		idx = Empty()
	}
	h.current.Store(idx)
}

// Rebuild builds a new index from records, publishes it and returns it.
func (h *Holder) Rebuild(records []Record) *Index {
	idx := Build(records)
	h.Publish(idx)
	return idx
}
