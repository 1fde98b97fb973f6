package ledger

import (
	"errors"
	"math"
	"testing"
)

func TestNewBookOpensGenerationOne(t *testing.T) {
	b, err := NewBook(10, 3)
	if err != nil {
		t.Fatalf("new book failed: %v", err)
	}

	g := b.Current()
	if g.Number != 1 {
		t.Errorf("expected generation 1, got %d", g.Number)
	}
	if g.MintNumStart != 1 {
		t.Errorf("expected start id 1, got %d", g.MintNumStart)
	}
	if g.TotalCap != 10 || g.OwnerCap != 3 {
		t.Errorf("unexpected caps %d/%d", g.OwnerCap, g.TotalCap)
	}
}

func TestNewBookRejectsOwnerCapAboveTotal(t *testing.T) {
	if _, err := NewBook(3, 10); !errors.Is(err, ErrOwnerCapTooLarge) {
		t.Errorf("expected ErrOwnerCapTooLarge, got %v", err)
	}
}

func TestOwnerMintQuota(t *testing.T) {
	b, _ := NewBook(10, 3)

	for i := 0; i < 3; i++ {
		first, err := b.OwnerMint(1)
		if err != nil {
			t.Fatalf("owner mint %d failed: %v", i+1, err)
		}
		if first != uint64(i+1) {
			t.Errorf("expected id %d, got %d", i+1, first)
		}
	}
	if _, err := b.OwnerMint(1); !errors.Is(err, ErrOwnerMintComplete) {
		t.Errorf("expected ErrOwnerMintComplete, got %v", err)
	}
}

func TestPublicMintQuota(t *testing.T) {
	b, _ := NewBook(10, 3)

	// The owner allotment stays reserved: only 7 of 10 are public.
	for i := 0; i < 7; i++ {
		if _, err := b.Mint(1); err != nil {
			t.Fatalf("mint %d failed: %v", i+1, err)
		}
	}
	if _, err := b.Mint(1); !errors.Is(err, ErrGenerationLocked) {
		t.Errorf("expected ErrGenerationLocked, got %v", err)
	}

	// Claiming the owner allotment does not reopen the public path.
	if _, err := b.OwnerMint(3); err != nil {
		t.Fatalf("owner mint failed: %v", err)
	}
	if _, err := b.Mint(1); !errors.Is(err, ErrGenerationLocked) {
		t.Errorf("expected ErrGenerationLocked, got %v", err)
	}
}

func TestBulkMintAtomicity(t *testing.T) {
	b, _ := NewBook(10, 3)

	// One owner mint, then a bulk that would straddle the owner cap.
	if _, err := b.OwnerMint(1); err != nil {
		t.Fatalf("owner mint failed: %v", err)
	}
	if _, err := b.OwnerMint(3); !errors.Is(err, ErrOwnerMintComplete) {
		t.Errorf("expected ErrOwnerMintComplete, got %v", err)
	}
	g := b.Current()
	if g.OwnerMinted != 1 || g.TotalMinted != 1 {
		t.Errorf("failed bulk must not move counters: owner %d total %d", g.OwnerMinted, g.TotalMinted)
	}

	// Same on the public path against the total cap.
	if _, err := b.Mint(1); err != nil {
		t.Fatalf("mint failed: %v", err)
	}
	if _, err := b.Mint(9); !errors.Is(err, ErrGenerationLocked) {
		t.Errorf("expected ErrGenerationLocked, got %v", err)
	}
	g = b.Current()
	if g.TotalMinted != 2 {
		t.Errorf("failed bulk must not move counters: total %d", g.TotalMinted)
	}
}

func TestMixedOrderMints(t *testing.T) {
	b, _ := NewBook(10, 3)

	steps := []struct {
		owner  bool
		amount uint64
		want   error
	}{
		{true, 1, nil},
		{false, 1, nil},
		{false, 7, ErrGenerationLocked}, // 2 owner mints still reserved, only 6 public slots left
		{true, 3, ErrOwnerMintComplete},
		{false, 1, nil},
		{true, 2, nil},
		{true, 1, ErrOwnerMintComplete},
		{false, 5, nil},
		{false, 1, ErrGenerationLocked},
	}
	for i, s := range steps {
		var err error
		if s.owner {
			_, err = b.OwnerMint(s.amount)
		} else {
			_, err = b.Mint(s.amount)
		}
		if !errors.Is(err, s.want) {
			t.Fatalf("step %d: expected %v, got %v", i, s.want, err)
		}
	}

	g := b.Current()
	if g.OwnerMinted != 3 || g.TotalMinted != 10 {
		t.Errorf("expected 3/10 minted, got %d/%d", g.OwnerMinted, g.TotalMinted)
	}
}

func TestGenerationBoundaries(t *testing.T) {
	b, _ := NewBook(10, 3)

	// Mint only 7 of 10, then advance: the next generation still
	// starts after generation 1's last possible id.
	if _, err := b.Mint(7); err != nil {
		t.Fatalf("mint failed: %v", err)
	}
	g2, err := b.NextGeneration(13, 5)
	if err != nil {
		t.Fatalf("next generation failed: %v", err)
	}
	if g2.Number != 2 {
		t.Errorf("expected generation 2, got %d", g2.Number)
	}
	if g2.MintNumStart != 11 {
		t.Errorf("expected start id 11, got %d", g2.MintNumStart)
	}

	first, err := b.Mint(1)
	if err != nil {
		t.Fatalf("mint in generation 2 failed: %v", err)
	}
	if first != 11 {
		t.Errorf("expected first id 11, got %d", first)
	}

	// Generation 1 is frozen.
	g1, err := b.Generation(1)
	if err != nil {
		t.Fatalf("generation 1 lookup failed: %v", err)
	}
	if g1.TotalMinted != 7 {
		t.Errorf("generation 1 counters changed: %d", g1.TotalMinted)
	}
}

func TestNextGenerationRejectsOwnerCapAboveTotal(t *testing.T) {
	b, _ := NewBook(10, 3)
	if _, err := b.NextGeneration(5, 6); !errors.Is(err, ErrOwnerCapTooLarge) {
		t.Errorf("expected ErrOwnerCapTooLarge, got %v", err)
	}
	if b.CurrentNumber() != 1 {
		t.Errorf("failed advance must not create a generation, got %d", b.CurrentNumber())
	}
}

func TestGenerationOf(t *testing.T) {
	b, _ := NewBook(10, 3)
	b.Mint(7)
	b.NextGeneration(13, 5)
	b.Mint(2)

	cases := []struct {
		id   uint64
		gen  uint64
		want error
	}{
		{0, 0, ErrTokenDoesNotExist},
		{1, 1, nil},
		{7, 1, nil},
		{8, 0, ErrTokenDoesNotExist},  // inside generation 1's range but never minted
		{10, 0, ErrTokenDoesNotExist}, // generation 1's last possible id, never minted
		{11, 2, nil},
		{12, 2, nil},
		{13, 0, ErrTokenDoesNotExist},
		{24, 0, ErrTokenDoesNotExist},
	}
	for _, c := range cases {
		g, err := b.GenerationOf(c.id)
		if !errors.Is(err, c.want) {
			t.Errorf("id %d: expected error %v, got %v", c.id, c.want, err)
			continue
		}
		if err == nil && g.Number != c.gen {
			t.Errorf("id %d: expected generation %d, got %d", c.id, c.gen, g.Number)
		}
	}
}

func TestHugeBatchesRejectedWithoutWrapping(t *testing.T) {
	b, _ := NewBook(10, 3)
	if _, err := b.OwnerMint(1); err != nil {
		t.Fatalf("owner mint failed: %v", err)
	}

	// Batches near MaxUint64 must reject cleanly; an additive check
	// would wrap past the cap and accept them.
	if _, err := b.OwnerMint(math.MaxUint64); !errors.Is(err, ErrOwnerMintComplete) {
		t.Errorf("expected ErrOwnerMintComplete, got %v", err)
	}
	if _, err := b.Mint(math.MaxUint64); !errors.Is(err, ErrGenerationLocked) {
		t.Errorf("expected ErrGenerationLocked, got %v", err)
	}
	if _, err := b.Mint(math.MaxUint64 - 10); !errors.Is(err, ErrGenerationLocked) {
		t.Errorf("expected ErrGenerationLocked, got %v", err)
	}

	g := b.Current()
	if g.OwnerMinted != 1 || g.TotalMinted != 1 {
		t.Fatalf("counters moved: owner %d total %d", g.OwnerMinted, g.TotalMinted)
	}
	first, err := b.OwnerMint(1)
	if err != nil {
		t.Fatalf("owner mint failed: %v", err)
	}
	if first != 2 {
		t.Errorf("expected id 2, got %d", first)
	}
}

func TestCapOverflowRejected(t *testing.T) {
	if _, err := NewBook(math.MaxUint64, 0); !errors.Is(err, ErrCapOverflow) {
		t.Errorf("expected ErrCapOverflow, got %v", err)
	}

	b, _ := NewBook(10, 3)
	if _, err := b.NextGeneration(math.MaxUint64-5, 0); !errors.Is(err, ErrCapOverflow) {
		t.Errorf("expected ErrCapOverflow, got %v", err)
	}
	if err := b.CanNextGeneration(math.MaxUint64-5, 0); !errors.Is(err, ErrCapOverflow) {
		t.Errorf("expected ErrCapOverflow, got %v", err)
	}
	if b.CurrentNumber() != 1 {
		t.Errorf("failed advance must not create a generation, got %d", b.CurrentNumber())
	}
}

func TestCanMintMovesNoCounters(t *testing.T) {
	b, _ := NewBook(10, 3)

	if err := b.CanOwnerMint(3); err != nil {
		t.Errorf("expected owner batch to be accepted, got %v", err)
	}
	if err := b.CanOwnerMint(4); !errors.Is(err, ErrOwnerMintComplete) {
		t.Errorf("expected ErrOwnerMintComplete, got %v", err)
	}
	if err := b.CanMint(7); err != nil {
		t.Errorf("expected public batch to be accepted, got %v", err)
	}
	if err := b.CanMint(8); !errors.Is(err, ErrGenerationLocked) {
		t.Errorf("expected ErrGenerationLocked, got %v", err)
	}

	g := b.Current()
	if g.OwnerMinted != 0 || g.TotalMinted != 0 {
		t.Errorf("checks moved counters: owner %d total %d", g.OwnerMinted, g.TotalMinted)
	}
}

func TestZeroAmountRejected(t *testing.T) {
	b, _ := NewBook(10, 3)
	if _, err := b.Mint(0); !errors.Is(err, ErrZeroAmount) {
		t.Errorf("expected ErrZeroAmount, got %v", err)
	}
	if _, err := b.OwnerMint(0); !errors.Is(err, ErrZeroAmount) {
		t.Errorf("expected ErrZeroAmount, got %v", err)
	}
}
