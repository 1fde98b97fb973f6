// Package moderation implements the access gate for the extension
// engine: a process-wide moderation toggle, two independent ban
// namespaces, and the single authorization decision applied to every
// gated mutation.
//
// Ban state is only enforced while moderation is enabled. The
// designated moderator may permanently switch moderation off;
// re-enabling is not provided.
package moderation

import (
	"errors"
	"sync"

	"github.com/flourish-xyz/go-extension/token"
	"github.com/holiman/uint256"
)

// Rejections surfaced to callers. The messages are the contract's
// revert strings and must stay stable.
var (
	ErrSenderBanned      = errors.New("SENDER_BANNED")
	ErrContractBanned    = errors.New("CONTRACT_BANNED")
	ErrNoRegistrationFee = errors.New("NO_REGISTRATION_FEE")
)

// ErrNotModerator is returned when a moderator-only operation is
// invoked by anyone else.
var ErrNotModerator = errors.New("moderation: caller is not the moderator")

// Namespace selects which ban list an address is tracked in.
type Namespace int

const (
	// NamespaceContract bans an address from being registered as a
	// render extension.
	NamespaceContract Namespace = iota

	// NamespaceSender bans an address from invoking gated mutations.
	NamespaceSender
)

// Config carries the gate's fixed policy.
type Config struct {
	// RegistrationCost is the fee a non-privileged caller must attach
	// to a gated registry mutation. Nil means DefaultRegistrationCost.
	RegistrationCost *uint256.Int

	// OwnerAlwaysFeeExempt keeps the moderator fee-exempt even after
	// moderation has been relinquished. The deployed contract ties the
	// exemption to moderation being enabled, so this defaults to false.
	OwnerAlwaysFeeExempt bool
}

// DefaultRegistrationCost is the fee charged for public registry
// mutations when no override is configured.
var DefaultRegistrationCost = token.MilliEther(20)

// Gate holds the moderation state and answers authorization queries.
// All methods are safe for concurrent use.
type Gate struct {
	mu               sync.RWMutex
	moderator        token.Address
	moderating       bool
	bannedContracts  map[token.Address]bool
	bannedSenders    map[token.Address]bool
	registrationCost *uint256.Int
	alwaysExempt     bool
}

// NewGate creates a gate with moderation enabled and the given address
// as moderator.
func NewGate(moderator token.Address, cfg Config) *Gate {
	cost := cfg.RegistrationCost
	if cost == nil {
		cost = DefaultRegistrationCost
	}
	return &Gate{
		moderator:        moderator,
		moderating:       true,
		bannedContracts:  make(map[token.Address]bool),
		bannedSenders:    make(map[token.Address]bool),
		registrationCost: cost.Clone(),
		alwaysExempt:     cfg.OwnerAlwaysFeeExempt,
	}
}

// Moderator returns the designated moderator address.
func (g *Gate) Moderator() token.Address {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.moderator
}

// Moderating reports whether moderation is still enabled.
func (g *Gate) Moderating() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.moderating
}

// RegistrationCost returns the fee required from non-privileged
// callers for gated registry mutations.
func (g *Gate) RegistrationCost() *uint256.Int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.registrationCost.Clone()
}

// SetBan flips the ban bit for target in the given namespace.
// Moderator-only. Setting an already-set value is a no-op.
func (g *Gate) SetBan(caller token.Address, ns Namespace, target token.Address, banned bool) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if caller != g.moderator {
		return ErrNotModerator
	}
	switch ns {
	case NamespaceContract:
		g.bannedContracts[target] = banned
	case NamespaceSender:
		g.bannedSenders[target] = banned
	}
	return nil
}

// Banned reports the ban bit for target in the given namespace,
// regardless of whether moderation is currently enabled.
func (g *Gate) Banned(ns Namespace, target token.Address) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	switch ns {
	case NamespaceContract:
		return g.bannedContracts[target]
	case NamespaceSender:
		return g.bannedSenders[target]
	}
	return false
}

// Relinquish permanently disables moderation. Moderator-only and
// idempotent. There is no way to re-enable.
func (g *Gate) Relinquish(caller token.Address) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if caller != g.moderator {
		return ErrNotModerator
	}
	g.moderating = false
	return nil
}

// Authorize decides whether a gated mutation from caller may proceed.
// target is the render-extension address under consideration, or the
// zero address for mutations without one (removal). payment is the
// attached value; nil means none.
//
// While moderation is enabled, a banned target rejects with
// ErrContractBanned and a banned caller with ErrSenderBanned, in that
// order. The moderator is then fee-exempt; everyone else must attach
// at least RegistrationCost or the call rejects with
// ErrNoRegistrationFee. Once moderation has been relinquished the
// bans stop applying and, unless OwnerAlwaysFeeExempt was configured,
// the moderator pays like any other caller.
func (g *Gate) Authorize(caller, target token.Address, payment *uint256.Int) error {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if g.moderating {
		if !target.IsZero() && g.bannedContracts[target] {
			return ErrContractBanned
		}
		if g.bannedSenders[caller] {
			return ErrSenderBanned
		}
	}

	if caller == g.moderator && (g.moderating || g.alwaysExempt) {
		return nil
	}
	if payment == nil || payment.Lt(g.registrationCost) {
		return ErrNoRegistrationFee
	}
	return nil
}
