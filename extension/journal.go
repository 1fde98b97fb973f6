package extension

import (
	"context"
	"fmt"

	"github.com/flourish-xyz/go-extension/journal"
	"github.com/flourish-xyz/go-extension/token"
	"github.com/holiman/uint256"
)

// Event types recorded to the journal, one per mutating operation.
const (
	EventInitialized            = "Initialized"
	EventExtensionAdded         = "ExtensionAdded"
	EventExtensionReplaced      = "ExtensionReplaced"
	EventExtensionRemoved       = "ExtensionRemoved"
	EventOwnerMinted            = "OwnerMinted"
	EventMinted                 = "Minted"
	EventGenerationAdvanced     = "GenerationAdvanced"
	EventAddressModerated       = "AddressModerated"
	EventModerationRelinquished = "ModerationRelinquished"
	EventFundsRecouped          = "FundsRecouped"
)

var recordCtx = context.Background()

// Event payloads. Addresses are hex strings; amounts are decimal wei
// strings, since JSON numbers cannot carry 256-bit values.

type initializedEvent struct {
	Owner      string `json:"owner"`
	TotalMints uint64 `json:"total_mints"`
	OwnerMints uint64 `json:"owner_mints"`
	Validator  string `json:"validator"`
}

type extensionAddedEvent struct {
	Caller string `json:"caller"`
	Value  string `json:"value"`
	Ref    string `json:"ref"`
}

type extensionReplacedEvent struct {
	Caller string `json:"caller"`
	Value  string `json:"value"`
	Index  int    `json:"index"`
	Old    string `json:"old"`
	New    string `json:"new"`
}

type extensionRemovedEvent struct {
	Caller string `json:"caller"`
	Value  string `json:"value"`
	Index  int    `json:"index"`
	Ref    string `json:"ref"`
}

type ownerMintedEvent struct {
	Caller    string `json:"caller"`
	Amount    uint64 `json:"amount"`
	Recipient string `json:"recipient"`
}

type mintedEvent struct {
	Caller string `json:"caller"`
	Value  string `json:"value"`
	Amount uint64 `json:"amount"`
}

type generationAdvancedEvent struct {
	Caller   string `json:"caller"`
	TotalCap uint64 `json:"total_cap"`
	OwnerCap uint64 `json:"owner_cap"`
}

type addressModeratedEvent struct {
	Caller string `json:"caller"`
	Target string `json:"target"`
	Banned bool   `json:"banned"`
}

type moderationRelinquishedEvent struct {
	Caller string `json:"caller"`
}

type fundsRecoupedEvent struct {
	Caller string `json:"caller"`
	Dest   string `json:"dest"`
	Amount string `json:"amount"`
}

// Replay rebuilds an engine by re-applying every event of a journal
// stream in order. The returned engine keeps recording to the same
// stream. Replay applies events through the same operations that
// produced them, so a journal written by one engine configuration
// replays to identical state under the same configuration.
func Replay(ctx context.Context, store journal.Store, stream string, opts Options) (*Engine, error) {
	if stream == "" {
		stream = "extension"
	}
	events, err := store.Read(ctx, stream, 0)
	if err != nil {
		return nil, fmt.Errorf("extension: replay read: %w", err)
	}

	opts.Journal = nil
	opts.Stream = stream
	e := New(opts)
	e.replaying = true
	for _, ev := range events {
		if err := e.applyEvent(ev); err != nil {
			return nil, fmt.Errorf("extension: replay event %d (%s): %w", ev.Version, ev.Type, err)
		}
	}
	e.replaying = false
	e.opts.Journal = store
	if len(events) > 0 {
		e.journalVersion = events[len(events)-1].Version
	}
	return e, nil
}

func (e *Engine) applyEvent(ev *journal.Event) error {
	switch ev.Type {
	case EventInitialized:
		var p initializedEvent
		if err := ev.Decode(&p); err != nil {
			return err
		}
		owner, err := token.ParseAddress(p.Owner)
		if err != nil {
			return err
		}
		validator, err := token.ParseAddress(p.Validator)
		if err != nil {
			return err
		}
		return e.Initialize(owner, p.TotalMints, p.OwnerMints, validator)

	case EventExtensionAdded:
		var p extensionAddedEvent
		if err := ev.Decode(&p); err != nil {
			return err
		}
		call, err := parseCall(p.Caller, p.Value)
		if err != nil {
			return err
		}
		ref, err := token.ParseAddress(p.Ref)
		if err != nil {
			return err
		}
		return e.AddExtension(call, ref)

	case EventExtensionReplaced:
		var p extensionReplacedEvent
		if err := ev.Decode(&p); err != nil {
			return err
		}
		call, err := parseCall(p.Caller, p.Value)
		if err != nil {
			return err
		}
		old, err := token.ParseAddress(p.Old)
		if err != nil {
			return err
		}
		ref, err := token.ParseAddress(p.New)
		if err != nil {
			return err
		}
		return e.ReplaceExtension(call, p.Index, old, ref)

	case EventExtensionRemoved:
		var p extensionRemovedEvent
		if err := ev.Decode(&p); err != nil {
			return err
		}
		call, err := parseCall(p.Caller, p.Value)
		if err != nil {
			return err
		}
		ref, err := token.ParseAddress(p.Ref)
		if err != nil {
			return err
		}
		return e.RemoveExtension(call, p.Index, ref)

	case EventOwnerMinted:
		var p ownerMintedEvent
		if err := ev.Decode(&p); err != nil {
			return err
		}
		caller, err := token.ParseAddress(p.Caller)
		if err != nil {
			return err
		}
		recipient, err := token.ParseAddress(p.Recipient)
		if err != nil {
			return err
		}
		_, err = e.OwnerMint(Call{Caller: caller}, p.Amount, recipient)
		return err

	case EventMinted:
		var p mintedEvent
		if err := ev.Decode(&p); err != nil {
			return err
		}
		call, err := parseCall(p.Caller, p.Value)
		if err != nil {
			return err
		}
		_, err = e.Mint(call, p.Amount)
		return err

	case EventGenerationAdvanced:
		var p generationAdvancedEvent
		if err := ev.Decode(&p); err != nil {
			return err
		}
		caller, err := token.ParseAddress(p.Caller)
		if err != nil {
			return err
		}
		return e.NextGeneration(Call{Caller: caller}, p.TotalCap, p.OwnerCap)

	case EventAddressModerated:
		var p addressModeratedEvent
		if err := ev.Decode(&p); err != nil {
			return err
		}
		caller, err := token.ParseAddress(p.Caller)
		if err != nil {
			return err
		}
		target, err := token.ParseAddress(p.Target)
		if err != nil {
			return err
		}
		return e.ModerateAddress(Call{Caller: caller}, target, p.Banned)

	case EventModerationRelinquished:
		var p moderationRelinquishedEvent
		if err := ev.Decode(&p); err != nil {
			return err
		}
		caller, err := token.ParseAddress(p.Caller)
		if err != nil {
			return err
		}
		return e.RelinquishModeration(Call{Caller: caller})

	case EventFundsRecouped:
		var p fundsRecoupedEvent
		if err := ev.Decode(&p); err != nil {
			return err
		}
		caller, err := token.ParseAddress(p.Caller)
		if err != nil {
			return err
		}
		dest, err := token.ParseAddress(p.Dest)
		if err != nil {
			return err
		}
		amount, err := parseWei(p.Amount)
		if err != nil {
			return err
		}
		return e.EthRecoup(Call{Caller: caller}, dest, amount)
	}
	return fmt.Errorf("extension: unknown event type %q", ev.Type)
}

func parseCall(caller, value string) (Call, error) {
	addr, err := token.ParseAddress(caller)
	if err != nil {
		return Call{}, err
	}
	wei, err := parseWei(value)
	if err != nil {
		return Call{}, err
	}
	return Call{Caller: addr, Value: wei}, nil
}

func parseWei(s string) (*uint256.Int, error) {
	if s == "" {
		return token.ZeroWei(), nil
	}
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, fmt.Errorf("extension: parse amount %q: %w", s, err)
	}
	return v, nil
}
