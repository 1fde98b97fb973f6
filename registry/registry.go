// Package registry implements the versioned render-extension set: an
// ordered list of at most eight extension addresses, mutated only by
// publishing a new immutable snapshot. Every mutation advances a
// monotonically increasing version id and every past version remains
// retrievable, so tokens minted under an older arrangement keep
// rendering with it.
package registry

import (
	"errors"

	"github.com/flourish-xyz/go-extension/token"
)

// MaxExtensions is the capacity of a set. Adding to a full set evicts
// the single oldest entry.
const MaxExtensions = 8

var (
	// ErrMustHaveOne rejects a removal that would empty the set.
	// The message is the contract's revert string.
	ErrMustHaveOne = errors.New("MUST_HAVE_ONE")

	// ErrRefNotFound is returned when a replace or remove names an
	// extension that is not in the current set.
	ErrRefNotFound = errors.New("registry: expected extension not in current set")

	// ErrUnknownVersion is returned for a version id that was never
	// published.
	ErrUnknownVersion = errors.New("registry: unknown version")
)

// Set is one immutable arrangement of the registry. It is never
// mutated after publication; mutations produce the next Set.
type Set struct {
	version uint64
	addrs   []token.Address
}

// Version returns the set's version id. Ids start at 1 and advance by
// exactly one per published mutation.
func (s *Set) Version() uint64 {
	return s.version
}

// Len returns the number of extensions in the set.
func (s *Set) Len() int {
	return len(s.addrs)
}

// Addresses returns a copy of the set's addresses in order, oldest
// first.
func (s *Set) Addresses() []token.Address {
	out := make([]token.Address, len(s.addrs))
	copy(out, s.addrs)
	return out
}

// At returns the address at position i.
func (s *Set) At(i int) token.Address {
	return s.addrs[i]
}

// Contains reports whether a is in the set.
func (s *Set) Contains(a token.Address) bool {
	return s.indexOf(-1, a) >= 0
}

// indexOf locates a by value. hint is checked first when it is a valid
// position; positions drift as older entries are evicted, so the hint
// is only an optimization and never trusted.
func (s *Set) indexOf(hint int, a token.Address) int {
	if hint >= 0 && hint < len(s.addrs) && s.addrs[hint] == a {
		return hint
	}
	for i, addr := range s.addrs {
		if addr == a {
			return i
		}
	}
	return -1
}
