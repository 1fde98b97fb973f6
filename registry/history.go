package registry

import (
	"sync"

	"github.com/flourish-xyz/go-extension/token"
)

// History is the append-only record of every published set. Version n
// lives at index n-1; version 0 means nothing has been published yet.
// All methods are safe for concurrent use.
type History struct {
	mu   sync.RWMutex
	sets []*Set
}

// NewHistory creates an empty history at version 0.
func NewHistory() *History {
	return &History{}
}

// CurrentVersion returns the version id of the latest published set,
// or 0 if none has been published.
func (h *History) CurrentVersion() uint64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return uint64(len(h.sets))
}

// Current returns the latest published set, or nil before the first
// mutation.
func (h *History) Current() *Set {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if len(h.sets) == 0 {
		return nil
	}
	return h.sets[len(h.sets)-1]
}

// At returns the set published as version v.
func (h *History) At(v uint64) (*Set, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if v == 0 || v > uint64(len(h.sets)) {
		return nil, ErrUnknownVersion
	}
	return h.sets[v-1], nil
}

// Add publishes a new set with ref appended at the tail. When the
// current set is already at capacity the oldest entry (position 0) is
// evicted first; exactly one entry is ever evicted. Returns the new
// set.
func (h *History) Add(ref token.Address) *Set {
	h.mu.Lock()
	defer h.mu.Unlock()

	var prev []token.Address
	if len(h.sets) > 0 {
		prev = h.sets[len(h.sets)-1].addrs
	}

	addrs := make([]token.Address, 0, MaxExtensions)
	if len(prev) >= MaxExtensions {
		addrs = append(addrs, prev[1:]...)
	} else {
		addrs = append(addrs, prev...)
	}
	addrs = append(addrs, ref)

	return h.publish(addrs)
}

// Replace publishes a new set with the entry equal to old swapped for
// ref. hint is the caller's belief about old's position and is used
// only to shortcut the scan.
func (h *History) Replace(hint int, old, ref token.Address) (*Set, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.checkReplaceLocked(hint, old); err != nil {
		return nil, err
	}
	cur := h.currentLocked()
	i := cur.indexOf(hint, old)

	addrs := make([]token.Address, len(cur.addrs))
	copy(addrs, cur.addrs)
	addrs[i] = ref

	return h.publish(addrs), nil
}

// CanReplace reports whether Replace would succeed for old, without
// publishing anything.
func (h *History) CanReplace(hint int, old token.Address) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.checkReplaceLocked(hint, old)
}

func (h *History) checkReplaceLocked(hint int, old token.Address) error {
	cur := h.currentLocked()
	if cur == nil || cur.indexOf(hint, old) < 0 {
		return ErrRefNotFound
	}
	return nil
}

// Remove publishes a new set with the entry equal to ref removed and
// the remaining entries collapsed leftward, preserving their relative
// order. The size guard fires first: a removal that would leave the
// set empty rejects with ErrMustHaveOne before ref is even located.
func (h *History) Remove(hint int, ref token.Address) (*Set, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.checkRemoveLocked(hint, ref); err != nil {
		return nil, err
	}
	cur := h.currentLocked()
	i := cur.indexOf(hint, ref)

	addrs := make([]token.Address, 0, len(cur.addrs)-1)
	addrs = append(addrs, cur.addrs[:i]...)
	addrs = append(addrs, cur.addrs[i+1:]...)

	return h.publish(addrs), nil
}

// CanRemove reports whether Remove would succeed for ref, without
// publishing anything.
func (h *History) CanRemove(hint int, ref token.Address) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.checkRemoveLocked(hint, ref)
}

func (h *History) checkRemoveLocked(hint int, ref token.Address) error {
	cur := h.currentLocked()
	if cur == nil || len(cur.addrs) <= 1 {
		return ErrMustHaveOne
	}
	if cur.indexOf(hint, ref) < 0 {
		return ErrRefNotFound
	}
	return nil
}

func (h *History) currentLocked() *Set {
	if len(h.sets) == 0 {
		return nil
	}
	return h.sets[len(h.sets)-1]
}

func (h *History) publish(addrs []token.Address) *Set {
	next := &Set{
		version: uint64(len(h.sets)) + 1,
		addrs:   addrs,
	}
	h.sets = append(h.sets, next)
	return next
}
