package registry

import (
	"errors"
	"testing"

	"github.com/flourish-xyz/go-extension/token"
)

func addr(n byte) token.Address {
	var a token.Address
	a[19] = n
	return a
}

func TestHistoryStartsEmpty(t *testing.T) {
	h := NewHistory()
	if h.CurrentVersion() != 0 {
		t.Errorf("expected version 0, got %d", h.CurrentVersion())
	}
	if h.Current() != nil {
		t.Error("expected nil current set before first mutation")
	}
	if _, err := h.At(1); !errors.Is(err, ErrUnknownVersion) {
		t.Errorf("expected ErrUnknownVersion, got %v", err)
	}
}

func TestAddPublishesNewVersions(t *testing.T) {
	h := NewHistory()

	for i := 1; i <= 3; i++ {
		set := h.Add(addr(byte(i)))
		if set.Version() != uint64(i) {
			t.Errorf("expected version %d, got %d", i, set.Version())
		}
		if set.Len() != i {
			t.Errorf("expected %d entries, got %d", i, set.Len())
		}
	}

	// Every prior version stays retrievable and unchanged.
	for i := 1; i <= 3; i++ {
		set, err := h.At(uint64(i))
		if err != nil {
			t.Fatalf("version %d: %v", i, err)
		}
		if set.Len() != i {
			t.Errorf("version %d: expected %d entries, got %d", i, i, set.Len())
		}
	}
}

func TestAddEvictsOldestAtCapacity(t *testing.T) {
	h := NewHistory()
	for i := 1; i <= MaxExtensions; i++ {
		h.Add(addr(byte(i)))
	}

	set := h.Current()
	if set.Len() != MaxExtensions {
		t.Fatalf("expected %d entries, got %d", MaxExtensions, set.Len())
	}
	for i := 0; i < MaxExtensions; i++ {
		if set.At(i) != addr(byte(i+1)) {
			t.Errorf("slot %d: expected %v, got %v", i, addr(byte(i+1)), set.At(i))
		}
	}

	// The ninth add lands at the tail and pushes off entry 1 only.
	set = h.Add(addr(9))
	if set.Len() != MaxExtensions {
		t.Fatalf("expected %d entries after eviction, got %d", MaxExtensions, set.Len())
	}
	for i := 0; i < MaxExtensions-1; i++ {
		if set.At(i) != addr(byte(i+2)) {
			t.Errorf("slot %d: expected %v, got %v", i, addr(byte(i+2)), set.At(i))
		}
	}
	if set.At(MaxExtensions-1) != addr(9) {
		t.Errorf("tail: expected %v, got %v", addr(9), set.At(MaxExtensions-1))
	}
}

func TestFIFONeverExceedsCapacity(t *testing.T) {
	h := NewHistory()
	for i := 0; i < 3*MaxExtensions; i++ {
		set := h.Add(addr(byte(i + 1)))
		if set.Len() > MaxExtensions {
			t.Fatalf("add %d: set grew to %d entries", i+1, set.Len())
		}
	}
	// After 24 adds the survivors are the 8 most recent, in add order.
	set := h.Current()
	for i := 0; i < MaxExtensions; i++ {
		want := addr(byte(2*MaxExtensions + i + 1))
		if set.At(i) != want {
			t.Errorf("slot %d: expected %v, got %v", i, want, set.At(i))
		}
	}
}

func TestReplaceLocatesByValue(t *testing.T) {
	h := NewHistory()
	for i := 1; i <= 4; i++ {
		h.Add(addr(byte(i)))
	}

	// Deliberately wrong hint: the entry must be found by value.
	set, err := h.Replace(0, addr(3), addr(9))
	if err != nil {
		t.Fatalf("replace failed: %v", err)
	}
	want := []token.Address{addr(1), addr(2), addr(9), addr(4)}
	for i, w := range want {
		if set.At(i) != w {
			t.Errorf("slot %d: expected %v, got %v", i, w, set.At(i))
		}
	}
	if set.Version() != 5 {
		t.Errorf("expected version 5, got %d", set.Version())
	}
}

func TestReplaceMissingRef(t *testing.T) {
	h := NewHistory()
	h.Add(addr(1))

	if _, err := h.Replace(0, addr(7), addr(9)); !errors.Is(err, ErrRefNotFound) {
		t.Errorf("expected ErrRefNotFound, got %v", err)
	}
	if h.CurrentVersion() != 1 {
		t.Errorf("failed replace must not publish a version, got %d", h.CurrentVersion())
	}
}

func TestRemoveCollapsesLeftward(t *testing.T) {
	h := NewHistory()
	for i := 1; i <= 4; i++ {
		h.Add(addr(byte(i)))
	}

	set, err := h.Remove(5, addr(2))
	if err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	want := []token.Address{addr(1), addr(3), addr(4)}
	if set.Len() != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), set.Len())
	}
	for i, w := range want {
		if set.At(i) != w {
			t.Errorf("slot %d: expected %v, got %v", i, w, set.At(i))
		}
	}
}

func TestRemoveKeepsAtLeastOne(t *testing.T) {
	h := NewHistory()
	h.Add(addr(1))
	h.Add(addr(2))

	if _, err := h.Remove(0, addr(1)); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if _, err := h.Remove(0, addr(2)); !errors.Is(err, ErrMustHaveOne) {
		t.Errorf("expected ErrMustHaveOne, got %v", err)
	}
	// The failed removal must not publish a version.
	if h.CurrentVersion() != 3 {
		t.Errorf("expected version 3, got %d", h.CurrentVersion())
	}
}

func TestRemoveSizeGuardFiresFirst(t *testing.T) {
	// The size guard precedes the value lookup: a sole-entry set
	// rejects with ErrMustHaveOne even when ref does not match.
	h := NewHistory()
	h.Add(addr(1))
	if _, err := h.Remove(0, addr(9)); !errors.Is(err, ErrMustHaveOne) {
		t.Errorf("expected ErrMustHaveOne, got %v", err)
	}

	// Same for an empty history.
	if _, err := NewHistory().Remove(0, addr(1)); !errors.Is(err, ErrMustHaveOne) {
		t.Errorf("expected ErrMustHaveOne on empty history, got %v", err)
	}
}

func TestCanReplaceAndCanRemove(t *testing.T) {
	h := NewHistory()
	h.Add(addr(1))
	h.Add(addr(2))

	if err := h.CanReplace(0, addr(2)); err != nil {
		t.Errorf("expected replace to be possible, got %v", err)
	}
	if err := h.CanReplace(0, addr(7)); !errors.Is(err, ErrRefNotFound) {
		t.Errorf("expected ErrRefNotFound, got %v", err)
	}
	if err := h.CanRemove(0, addr(1)); err != nil {
		t.Errorf("expected remove to be possible, got %v", err)
	}
	if err := h.CanRemove(0, addr(7)); !errors.Is(err, ErrRefNotFound) {
		t.Errorf("expected ErrRefNotFound, got %v", err)
	}
	// Checks publish nothing.
	if h.CurrentVersion() != 2 {
		t.Errorf("expected version 2, got %d", h.CurrentVersion())
	}
}

func TestSetAddressesReturnsCopy(t *testing.T) {
	h := NewHistory()
	h.Add(addr(1))
	h.Add(addr(2))

	set := h.Current()
	got := set.Addresses()
	got[0] = addr(99)
	if set.At(0) != addr(1) {
		t.Error("mutating the returned slice must not affect the set")
	}
}
