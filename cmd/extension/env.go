package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/flourish-xyz/go-extension/extension"
	"github.com/flourish-xyz/go-extension/journal"
	"github.com/flourish-xyz/go-extension/token"
	"github.com/holiman/uint256"
)

const streamName = "extension"

// localRenderer stands in for a deployed render extension. It renders
// deterministic metadata from the token id, its generation, and the
// extension's own address, so different registered addresses produce
// distinguishable output.
type localRenderer struct {
	addr token.Address
}

func (r localRenderer) SupportsCapability(c token.Capability) bool {
	return c == token.CapRender
}

func (r localRenderer) Render(id, generation uint64) (token.Metadata, error) {
	return token.Metadata{
		Name: fmt.Sprintf("Extension #%d", id),
		Attrs: []token.Attribute{
			{TraitType: "Generation", Value: strconv.FormatUint(generation, 10)},
			{TraitType: "Renderer", Value: r.addr.Hex()},
		},
	}, nil
}

// localValidator passes rendered metadata through unchanged.
type localValidator struct{}

func (localValidator) SupportsCapability(token.Capability) bool { return false }

func (localValidator) Validate(m token.Metadata) (token.Metadata, error) { return m, nil }

// localResolver simulates the chain for the CLI: the validator address
// resolves to a pass-through validator and every other non-zero
// address to a render-capable component.
type localResolver struct {
	validator token.Address
}

func (l *localResolver) ComponentAt(a token.Address) token.Component {
	if a.IsZero() {
		return nil
	}
	if !l.validator.IsZero() && a == l.validator {
		return localValidator{}
	}
	return localRenderer{addr: a}
}

// openEngine replays the journal at path into a live engine.
func openEngine(ctx context.Context, path string) (*extension.Engine, journal.Store, error) {
	store, err := journal.NewSQLiteStore(path)
	if err != nil {
		return nil, nil, err
	}

	resolver := &localResolver{}
	if v, err := storedValidator(ctx, store); err == nil {
		resolver.validator = v
	}

	eng, err := extension.Replay(ctx, store, streamName, extension.Options{
		Resolver: resolver,
	})
	if err != nil {
		store.Close()
		return nil, nil, err
	}
	return eng, store, nil
}

// storedValidator recovers the validator address from the stream's
// Initialized event so the resolver can distinguish it before replay.
func storedValidator(ctx context.Context, store journal.Store) (token.Address, error) {
	events, err := store.ReadAll(ctx, journal.EventFilter{
		StreamID: streamName,
		Types:    []string{extension.EventInitialized},
	})
	if err != nil || len(events) == 0 {
		return token.ZeroAddress, fmt.Errorf("extension: no Initialized event")
	}
	var p struct {
		Validator string `json:"validator"`
	}
	if err := events[0].Decode(&p); err != nil {
		return token.ZeroAddress, err
	}
	return token.ParseAddress(p.Validator)
}

func parseWeiFlag(s string) (*uint256.Int, error) {
	if s == "" || s == "0" {
		return token.ZeroWei(), nil
	}
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, fmt.Errorf("invalid wei amount %q: %w", s, err)
	}
	return v, nil
}
