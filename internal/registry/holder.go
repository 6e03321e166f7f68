package registry

import "sync/atomic"

// Holder publishes the current registry to concurrent readers.
type Holder struct {
	p atomic.Pointer[Registry]
}

// NewHolder returns a holder publishing r, which may be nil.
func NewHolder(r *Registry) *Holder {
	h := &Holder{}
	if r != nil {
		h.p.Store(r)
	}
	return h
}

// Load returns the published registry or nil.
func (h *Holder) Load() *Registry {
	return h.p.Load()
}

// Store publishes r. Readers holding the previous registry keep using it.
func (h *Holder) Store(r *Registry) {
	h.p.Store(r)
}
