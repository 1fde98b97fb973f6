package extension

import (
	"github.com/flourish-xyz/go-extension/ledger"
	"github.com/flourish-xyz/go-extension/moderation"
	"github.com/flourish-xyz/go-extension/token"
	"github.com/holiman/uint256"
)

// Owner returns the contract owner.
func (e *Engine) Owner() token.Address {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.owner
}

// Moderator returns the designated moderator. It is the deployer and
// does not change even after moderation is relinquished.
func (e *Engine) Moderator() token.Address {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.gate == nil {
		return token.ZeroAddress
	}
	return e.gate.Moderator()
}

// CanModerate reports whether moderation is still enabled.
func (e *Engine) CanModerate() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.gate != nil && e.gate.Moderating()
}

// IsBanned reports the ban bit for target in the given namespace.
func (e *Engine) IsBanned(ns moderation.Namespace, target token.Address) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.gate != nil && e.gate.Banned(ns, target)
}

// ValidatorAddress returns the validator supplied at initialization.
func (e *Engine) ValidatorAddress() token.Address {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.validator
}

// CurrentGeneration returns the active generation's number.
func (e *Engine) CurrentGeneration() uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.book == nil {
		return 0
	}
	return e.book.CurrentNumber()
}

// GenerationInfo returns a copy of generation n.
func (e *Engine) GenerationInfo(n uint64) (ledger.Generation, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.book == nil {
		return ledger.Generation{}, ErrNotInitialized
	}
	return e.book.Generation(n)
}

// CurrentExtensionSet returns the version id of the latest published
// set, or 0 before the first registry mutation.
func (e *Engine) CurrentExtensionSet() uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.sets.CurrentVersion()
}

// ExtensionSetAddresses returns the addresses published as set
// version v, oldest first.
func (e *Engine) ExtensionSetAddresses(v uint64) ([]token.Address, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	set, err := e.sets.At(v)
	if err != nil {
		return nil, err
	}
	return set.Addresses(), nil
}

// Balance returns the accrued native-currency balance.
func (e *Engine) Balance() *uint256.Int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.balance.Clone()
}

// MintPrice returns the per-token public mint price.
func (e *Engine) MintPrice() *uint256.Int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.opts.MintPrice.Clone()
}

// RegistrationCost returns the fee required from non-privileged
// callers for registry mutations.
func (e *Engine) RegistrationCost() *uint256.Int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.gate == nil {
		return moderation.DefaultRegistrationCost.Clone()
	}
	return e.gate.RegistrationCost()
}

// OwnerOf returns the owner of token id.
func (e *Engine) OwnerOf(id uint64) (token.Address, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	rec, ok := e.tokens[id]
	if !ok {
		return token.ZeroAddress, ledger.ErrTokenDoesNotExist
	}
	return rec.Owner, nil
}

// GenerationOf returns the generation that issued token id.
func (e *Engine) GenerationOf(id uint64) (uint64, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	rec, ok := e.tokens[id]
	if !ok {
		return 0, ledger.ErrTokenDoesNotExist
	}
	return rec.Generation, nil
}

// TotalMinted returns the number of tokens issued across all
// generations.
func (e *Engine) TotalMinted() uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return uint64(len(e.tokens))
}
