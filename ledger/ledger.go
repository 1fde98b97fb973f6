// Package ledger implements generation accounting: each generation is
// a numbered batch of sequential token ids with a total mint cap and
// an owner-only sub-cap. Token ids are allocated strictly in order
// within the active generation; a generation freezes the moment the
// next one is created. Bulk mints are checked against remaining
// capacity as a single comparison before any counter moves, so a
// batch straddling a limit fails whole.
package ledger

import (
	"errors"
	"math"
	"sync"
)

// Rejections surfaced to callers. The quota messages are the
// contract's revert strings and must stay stable.
var (
	ErrOwnerMintComplete = errors.New("OWNER_MINT_COMPLETE")
	ErrGenerationLocked  = errors.New("GENERATION_LOCKED")
	ErrTokenDoesNotExist = errors.New("TOKEN_DOES_NOT_EXIST")

	ErrOwnerCapTooLarge  = errors.New("ledger: owner cap exceeds total cap")
	ErrCapOverflow       = errors.New("ledger: cap overflows the token id space")
	ErrZeroAmount        = errors.New("ledger: amount must be positive")
	ErrUnknownGeneration = errors.New("ledger: unknown generation")
)

// Generation is one numbered mint batch. Fields never change once the
// next generation has been created.
type Generation struct {
	Number       uint64
	MintNumStart uint64
	TotalCap     uint64
	OwnerCap     uint64
	OwnerMinted  uint64
	TotalMinted  uint64
}

// LastPossibleID returns the highest token id the generation can ever
// issue. The next generation starts immediately after it whether or
// not this one minted out.
func (g Generation) LastPossibleID() uint64 {
	return g.MintNumStart + g.TotalCap - 1
}

// Book is the ordered record of all generations. Generation n lives
// at index n-1 and exactly one generation is current at any time.
// All methods are safe for concurrent use.
type Book struct {
	mu          sync.RWMutex
	generations []*Generation
}

// NewBook opens a book at generation 1, which starts at token id 1.
func NewBook(totalCap, ownerCap uint64) (*Book, error) {
	if ownerCap > totalCap {
		return nil, ErrOwnerCapTooLarge
	}
	// Ids start at 1; the last possible id must stay within uint64.
	if totalCap > math.MaxUint64-1 {
		return nil, ErrCapOverflow
	}
	return &Book{
		generations: []*Generation{{
			Number:       1,
			MintNumStart: 1,
			TotalCap:     totalCap,
			OwnerCap:     ownerCap,
		}},
	}, nil
}

// CurrentNumber returns the active generation's number.
func (b *Book) CurrentNumber() uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return uint64(len(b.generations))
}

// Current returns a copy of the active generation.
func (b *Book) Current() Generation {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return *b.generations[len(b.generations)-1]
}

// Generation returns a copy of generation n.
func (b *Book) Generation(n uint64) (Generation, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if n == 0 || n > uint64(len(b.generations)) {
		return Generation{}, ErrUnknownGeneration
	}
	return *b.generations[n-1], nil
}

// checkOwnerMint validates an owner batch against the owner sub-cap
// and the total cap. Checks run in subtraction form against remaining
// capacity; minted never exceeds its cap, so the differences cannot
// wrap no matter how large amount is.
func (g Generation) checkOwnerMint(amount uint64) error {
	if amount == 0 {
		return ErrZeroAmount
	}
	if amount > g.OwnerCap-g.OwnerMinted {
		return ErrOwnerMintComplete
	}
	if amount > g.TotalCap-g.TotalMinted {
		return ErrGenerationLocked
	}
	return nil
}

// checkMint validates a public batch. The unclaimed owner allotment
// stays reserved; totalMinted plus the reserve never exceeds totalCap,
// so the subtraction cannot wrap.
func (g Generation) checkMint(amount uint64) error {
	if amount == 0 {
		return ErrZeroAmount
	}
	reserved := g.OwnerCap - g.OwnerMinted
	if amount > (g.TotalCap-reserved)-g.TotalMinted {
		return ErrGenerationLocked
	}
	return nil
}

// OwnerMint allocates amount consecutive token ids through the
// owner-only quota of the active generation. Both the owner sub-cap
// and the total cap are checked before either counter moves; a batch
// that would cross the owner sub-cap rejects with
// ErrOwnerMintComplete, one that would cross the total cap with
// ErrGenerationLocked. Returns the first allocated id.
func (b *Book) OwnerMint(amount uint64) (uint64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	g := b.generations[len(b.generations)-1]
	if err := g.checkOwnerMint(amount); err != nil {
		return 0, err
	}

	first := g.MintNumStart + g.TotalMinted
	g.OwnerMinted += amount
	g.TotalMinted += amount
	return first, nil
}

// CanOwnerMint reports whether OwnerMint would accept a batch of
// amount, without moving any counter.
func (b *Book) CanOwnerMint(amount uint64) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.generations[len(b.generations)-1].checkOwnerMint(amount)
}

// Mint allocates amount consecutive token ids through the public path
// of the active generation. The unclaimed owner allotment stays
// reserved: a public batch may never eat into ownerCap minus
// ownerMinted, so the effective public limit is totalCap less the
// outstanding owner reserve. The owner counter is untouched. Returns
// the first allocated id.
func (b *Book) Mint(amount uint64) (uint64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	g := b.generations[len(b.generations)-1]
	if err := g.checkMint(amount); err != nil {
		return 0, err
	}

	first := g.MintNumStart + g.TotalMinted
	g.TotalMinted += amount
	return first, nil
}

// CanMint reports whether Mint would accept a batch of amount, without
// moving any counter.
func (b *Book) CanMint(amount uint64) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.generations[len(b.generations)-1].checkMint(amount)
}

// NextGeneration freezes the active generation and opens the next one,
// starting immediately after the frozen generation's last possible id
// regardless of how much of it was minted.
func (b *Book) NextGeneration(totalCap, ownerCap uint64) (Generation, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkNextGenerationLocked(totalCap, ownerCap); err != nil {
		return Generation{}, err
	}

	prev := b.generations[len(b.generations)-1]
	next := &Generation{
		Number:       prev.Number + 1,
		MintNumStart: prev.MintNumStart + prev.TotalCap,
		TotalCap:     totalCap,
		OwnerCap:     ownerCap,
	}
	b.generations = append(b.generations, next)
	return *next, nil
}

// CanNextGeneration reports whether NextGeneration would accept the
// given caps, without opening a generation.
func (b *Book) CanNextGeneration(totalCap, ownerCap uint64) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.checkNextGenerationLocked(totalCap, ownerCap)
}

func (b *Book) checkNextGenerationLocked(totalCap, ownerCap uint64) error {
	if ownerCap > totalCap {
		return ErrOwnerCapTooLarge
	}
	// start cannot wrap: the previous generation's caps were guarded
	// the same way when it was created.
	prev := b.generations[len(b.generations)-1]
	start := prev.MintNumStart + prev.TotalCap
	if totalCap > math.MaxUint64-start {
		return ErrCapOverflow
	}
	return nil
}

// GenerationOf resolves the generation that issued token id by range
// lookup. Ids inside a generation's range that were never minted, and
// ids outside every range, reject with ErrTokenDoesNotExist.
func (b *Book) GenerationOf(id uint64) (Generation, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if id == 0 {
		return Generation{}, ErrTokenDoesNotExist
	}
	for _, g := range b.generations {
		if id < g.MintNumStart {
			break
		}
		if id < g.MintNumStart+g.TotalMinted {
			return *g, nil
		}
	}
	return Generation{}, ErrTokenDoesNotExist
}

// Exists reports whether token id was ever issued.
func (b *Book) Exists(id uint64) bool {
	_, err := b.GenerationOf(id)
	return err == nil
}
