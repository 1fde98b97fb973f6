// Package extension composes the moderation gate, the versioned
// extension registry, and the generation ledger into the full engine
// behind a generative NFT collection: gated registry mutations, dual
// owner/public mint quotas, per-token rendering context, and fund
// custody. Every mutating operation is applied atomically under one
// lock and journaled only after all of its checks pass, with the event
// appended before state moves; an operation either fully succeeds or
// fails with no state change, journal included.
package extension

import (
	"fmt"
	"sync"

	"github.com/flourish-xyz/go-extension/cache"
	"github.com/flourish-xyz/go-extension/journal"
	"github.com/flourish-xyz/go-extension/ledger"
	"github.com/flourish-xyz/go-extension/moderation"
	"github.com/flourish-xyz/go-extension/registry"
	"github.com/flourish-xyz/go-extension/token"
	"github.com/holiman/uint256"
)

// DefaultMintPrice is charged per token on the public mint path when
// no override is configured.
var DefaultMintPrice = token.MilliEther(100)

// DefaultCacheSize bounds the render cache when no override is
// configured.
const DefaultCacheSize = 1024

// Call identifies the sender of an operation and any attached payment,
// in the manner of a transaction's sender and value.
type Call struct {
	Caller token.Address
	Value  *uint256.Int
}

func (c Call) value() *uint256.Int {
	if c.Value == nil {
		return token.ZeroWei()
	}
	return c.Value
}

// Options configures an engine.
type Options struct {
	// Resolver looks up deployed components. Required.
	Resolver token.Resolver

	// MintPrice is the per-token public mint price. Nil means
	// DefaultMintPrice.
	MintPrice *uint256.Int

	// RegistrationCost is the fee for public registry mutations. Nil
	// means moderation.DefaultRegistrationCost.
	RegistrationCost *uint256.Int

	// OwnerAlwaysFeeExempt keeps the owner fee-exempt for registry
	// mutations even after moderation is relinquished. The deployed
	// contract's behavior is false.
	OwnerAlwaysFeeExempt bool

	// CacheSize bounds the render cache. Zero means DefaultCacheSize;
	// negative means unbounded.
	CacheSize int

	// Journal, when set, records every applied mutation to Stream.
	Journal journal.Store

	// Stream names the journal stream. Empty means "extension".
	Stream string
}

type tokenRecord struct {
	Owner      token.Address
	Generation uint64
	SetVersion uint64
}

// Engine is the registry-and-accounting engine. Construct with New,
// then call Initialize exactly once before any other operation.
type Engine struct {
	mu   sync.RWMutex
	opts Options

	initialized bool
	owner       token.Address
	validator   token.Address

	gate    *moderation.Gate
	sets    *registry.History
	book    *ledger.Book
	tokens  map[uint64]tokenRecord
	balance *uint256.Int
	renders *cache.RenderCache

	journalVersion int
	replaying      bool
}

// New creates an uninitialized engine.
func New(opts Options) *Engine {
	if opts.MintPrice == nil {
		opts.MintPrice = DefaultMintPrice
	}
	size := opts.CacheSize
	if size == 0 {
		size = DefaultCacheSize
	} else if size < 0 {
		size = 0
	}
	if opts.Stream == "" {
		opts.Stream = "extension"
	}
	return &Engine{
		opts:           opts,
		sets:           registry.NewHistory(),
		tokens:         make(map[uint64]tokenRecord),
		balance:        token.ZeroWei(),
		renders:        cache.NewRenderCache(size),
		journalVersion: -1,
	}
}

// Initialize sets up the engine exactly once. deployer becomes owner
// and moderator, moderation starts enabled, and generation 1 opens at
// token id 1 with the given caps. validator is the address consulted
// to post-process rendered metadata.
func (e *Engine) Initialize(deployer token.Address, totalMints, ownerMints uint64, validator token.Address) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.initialized {
		return ErrAlreadyInitialized
	}
	book, err := ledger.NewBook(totalMints, ownerMints)
	if err != nil {
		return err
	}
	if err := e.record(EventInitialized, initializedEvent{
		Owner:      deployer.Hex(),
		TotalMints: totalMints,
		OwnerMints: ownerMints,
		Validator:  validator.Hex(),
	}); err != nil {
		return err
	}

	e.owner = deployer
	e.validator = validator
	e.book = book
	e.gate = moderation.NewGate(deployer, moderation.Config{
		RegistrationCost:     e.opts.RegistrationCost,
		OwnerAlwaysFeeExempt: e.opts.OwnerAlwaysFeeExempt,
	})
	e.initialized = true
	return nil
}

// AddExtension appends a render extension to the current set,
// publishing a new set version. At capacity the oldest entry is
// evicted first. Gated by validation, bans, and the registration fee.
func (e *Engine) AddExtension(call Call, ref token.Address) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireInit(); err != nil {
		return err
	}
	if err := e.validateExtension(ref); err != nil {
		return err
	}
	if err := e.gate.Authorize(call.Caller, ref, call.value()); err != nil {
		return err
	}
	if err := e.record(EventExtensionAdded, extensionAddedEvent{
		Caller: call.Caller.Hex(),
		Value:  call.value().Dec(),
		Ref:    ref.Hex(),
	}); err != nil {
		return err
	}

	e.sets.Add(ref)
	e.credit(call.value())
	return nil
}

// ReplaceExtension swaps the entry equal to old for ref, publishing a
// new set version. index is the caller's belief about old's position;
// the entry is located by value, since positions drift as older
// entries are evicted.
func (e *Engine) ReplaceExtension(call Call, index int, old, ref token.Address) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireInit(); err != nil {
		return err
	}
	if err := e.validateExtension(ref); err != nil {
		return err
	}
	if err := e.gate.Authorize(call.Caller, ref, call.value()); err != nil {
		return err
	}
	if err := e.sets.CanReplace(index, old); err != nil {
		return err
	}
	if err := e.record(EventExtensionReplaced, extensionReplacedEvent{
		Caller: call.Caller.Hex(),
		Value:  call.value().Dec(),
		Index:  index,
		Old:    old.Hex(),
		New:    ref.Hex(),
	}); err != nil {
		return err
	}

	if _, err := e.sets.Replace(index, old, ref); err != nil {
		return err
	}
	e.credit(call.value())
	return nil
}

// RemoveExtension removes the entry equal to ref, collapsing the set
// leftward and publishing a new version. The set may never go below
// one entry. The contract-ban check does not apply to removal; only
// the caller is screened.
func (e *Engine) RemoveExtension(call Call, index int, ref token.Address) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireInit(); err != nil {
		return err
	}
	if err := e.gate.Authorize(call.Caller, token.ZeroAddress, call.value()); err != nil {
		return err
	}
	if err := e.sets.CanRemove(index, ref); err != nil {
		return err
	}
	if err := e.record(EventExtensionRemoved, extensionRemovedEvent{
		Caller: call.Caller.Hex(),
		Value:  call.value().Dec(),
		Index:  index,
		Ref:    ref.Hex(),
	}); err != nil {
		return err
	}

	if _, err := e.sets.Remove(index, ref); err != nil {
		return err
	}
	e.credit(call.value())
	return nil
}

// OwnerMint allocates amount consecutive tokens to recipient through
// the owner-only quota. Owner-only; no payment required. Returns the
// first allocated token id.
func (e *Engine) OwnerMint(call Call, amount uint64, recipient token.Address) (uint64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireInit(); err != nil {
		return 0, err
	}
	if call.Caller != e.owner {
		return 0, ErrNotOwner
	}
	if err := e.book.CanOwnerMint(amount); err != nil {
		return 0, err
	}
	if err := e.record(EventOwnerMinted, ownerMintedEvent{
		Caller:    call.Caller.Hex(),
		Amount:    amount,
		Recipient: recipient.Hex(),
	}); err != nil {
		return 0, err
	}

	first, err := e.book.OwnerMint(amount)
	if err != nil {
		return 0, err
	}
	e.bindTokens(first, amount, recipient)
	return first, nil
}

// Mint allocates amount consecutive tokens to the caller through the
// public path. Requires an attached payment of at least price times
// amount; the full attached value accrues to the engine balance.
// Returns the first allocated token id.
func (e *Engine) Mint(call Call, amount uint64) (uint64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireInit(); err != nil {
		return 0, err
	}
	cost := new(uint256.Int).Mul(e.opts.MintPrice, uint256.NewInt(amount))
	if call.value().Lt(cost) {
		return 0, ErrInsufficientPayment
	}
	if err := e.book.CanMint(amount); err != nil {
		return 0, err
	}
	if err := e.record(EventMinted, mintedEvent{
		Caller: call.Caller.Hex(),
		Value:  call.value().Dec(),
		Amount: amount,
	}); err != nil {
		return 0, err
	}

	first, err := e.book.Mint(amount)
	if err != nil {
		return 0, err
	}
	e.bindTokens(first, amount, call.Caller)
	e.credit(call.value())
	return first, nil
}

// NextGeneration freezes the current generation and opens the next
// one. Owner-only.
func (e *Engine) NextGeneration(call Call, totalCap, ownerCap uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireInit(); err != nil {
		return err
	}
	if call.Caller != e.owner {
		return ErrNotOwner
	}
	if err := e.book.CanNextGeneration(totalCap, ownerCap); err != nil {
		return err
	}
	if err := e.record(EventGenerationAdvanced, generationAdvancedEvent{
		Caller:   call.Caller.Hex(),
		TotalCap: totalCap,
		OwnerCap: ownerCap,
	}); err != nil {
		return err
	}

	_, err := e.book.NextGeneration(totalCap, ownerCap)
	return err
}

// ModerateAddress flips the ban bit for target in both namespaces:
// as a render-extension candidate and as a caller. Moderator-only.
func (e *Engine) ModerateAddress(call Call, target token.Address, banned bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireInit(); err != nil {
		return err
	}
	if call.Caller != e.gate.Moderator() {
		return moderation.ErrNotModerator
	}
	if err := e.record(EventAddressModerated, addressModeratedEvent{
		Caller: call.Caller.Hex(),
		Target: target.Hex(),
		Banned: banned,
	}); err != nil {
		return err
	}

	if err := e.gate.SetBan(call.Caller, moderation.NamespaceContract, target, banned); err != nil {
		return err
	}
	return e.gate.SetBan(call.Caller, moderation.NamespaceSender, target, banned)
}

// RelinquishModeration permanently disables moderation. Moderator-only
// and idempotent; there is no way back.
func (e *Engine) RelinquishModeration(call Call) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireInit(); err != nil {
		return err
	}
	if call.Caller != e.gate.Moderator() {
		return moderation.ErrNotModerator
	}
	if err := e.record(EventModerationRelinquished, moderationRelinquishedEvent{
		Caller: call.Caller.Hex(),
	}); err != nil {
		return err
	}

	return e.gate.Relinquish(call.Caller)
}

// EthRecoup transfers amount of the accrued balance to dest.
// Owner-only; the only withdrawal path.
func (e *Engine) EthRecoup(call Call, dest token.Address, amount *uint256.Int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireInit(); err != nil {
		return err
	}
	if call.Caller != e.owner {
		return ErrNotOwner
	}
	if amount == nil || amount.Gt(e.balance) {
		return ErrInsufficientBalance
	}
	if err := e.record(EventFundsRecouped, fundsRecoupedEvent{
		Caller: call.Caller.Hex(),
		Dest:   dest.Hex(),
		Amount: amount.Dec(),
	}); err != nil {
		return err
	}

	e.balance = new(uint256.Int).Sub(e.balance, amount)
	return nil
}

func (e *Engine) requireInit() error {
	if !e.initialized {
		return ErrNotInitialized
	}
	return nil
}

// validateExtension checks a render-extension candidate: non-zero,
// deployed, and advertising the render capability.
func (e *Engine) validateExtension(ref token.Address) error {
	if ref.IsZero() {
		return ErrInvalidAddress
	}
	comp := e.opts.Resolver.ComponentAt(ref)
	if comp == nil {
		return ErrNotComponent
	}
	if !comp.SupportsCapability(token.CapRender) {
		return ErrNoRenderSupport
	}
	return nil
}

// bindTokens records ownership and rendering context for a run of
// freshly allocated ids. The set version current at mint time is what
// the tokens will render with forever.
func (e *Engine) bindTokens(first, amount uint64, owner token.Address) {
	gen := e.book.CurrentNumber()
	version := e.sets.CurrentVersion()
	for id := first; id < first+amount; id++ {
		e.tokens[id] = tokenRecord{
			Owner:      owner,
			Generation: gen,
			SetVersion: version,
		}
	}
}

func (e *Engine) credit(value *uint256.Int) {
	if value.IsZero() {
		return
	}
	e.balance = new(uint256.Int).Add(e.balance, value)
}

// record appends one journal event for an operation that has passed
// every check. Callers invoke it before touching state, so a failed
// append (a concurrency conflict from a second writer, say) leaves the
// engine unchanged and still in step with its journal.
func (e *Engine) record(eventType string, payload any) error {
	if e.opts.Journal == nil || e.replaying {
		return nil
	}
	ev, err := journal.NewEvent(e.opts.Stream, eventType, payload)
	if err != nil {
		return err
	}
	v, err := e.opts.Journal.Append(recordCtx, e.opts.Stream, e.journalVersion, []*journal.Event{ev})
	if err != nil {
		return fmt.Errorf("extension: record %s: %w", eventType, err)
	}
	e.journalVersion = v
	return nil
}
