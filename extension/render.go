package extension

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/flourish-xyz/go-extension/ledger"
	"github.com/flourish-xyz/go-extension/token"
)

// TokenURI renders token id as an inline data URI wrapping the
// metadata JSON. The token renders with the extension set that was
// current when it was minted: the first render-capable entry of that
// set produces the metadata and the validator post-processes it.
// Results are memoized; rendering is deterministic for a given
// (id, generation, set version).
func (e *Engine) TokenURI(id uint64) (string, error) {
	e.mu.RLock()
	if !e.initialized {
		e.mu.RUnlock()
		return "", ErrNotInitialized
	}
	rec, ok := e.tokens[id]
	e.mu.RUnlock()
	if !ok {
		return "", ledger.ErrTokenDoesNotExist
	}

	return e.renders.GetOrCompute(id, rec.SetVersion, func() (string, error) {
		return e.renderToken(id, rec)
	})
}

func (e *Engine) renderToken(id uint64, rec tokenRecord) (string, error) {
	meta := token.Metadata{
		Name: fmt.Sprintf("Extension #%d", id),
		Attrs: []token.Attribute{
			{TraitType: "Generation", Value: strconv.FormatUint(rec.Generation, 10)},
		},
	}

	if r := e.rendererFor(rec.SetVersion); r != nil {
		rendered, err := r.Render(id, rec.Generation)
		if err != nil {
			return "", fmt.Errorf("extension: render token %d: %w", id, err)
		}
		meta = rendered
	}

	if v := e.resolveValidator(); v != nil {
		validated, err := v.Validate(meta)
		if err != nil {
			return "", fmt.Errorf("extension: validate token %d: %w", id, err)
		}
		meta = validated
	}

	b, err := json.Marshal(meta)
	if err != nil {
		return "", fmt.Errorf("extension: encode token %d metadata: %w", id, err)
	}
	return "data:application/json;base64," + base64.StdEncoding.EncodeToString(b), nil
}

// rendererFor returns the first render-capable component of set
// version v, or nil when the version is 0 (token minted before any
// extension was registered) or no entry resolves.
func (e *Engine) rendererFor(v uint64) token.RenderExtension {
	if v == 0 {
		return nil
	}
	set, err := e.sets.At(v)
	if err != nil {
		return nil
	}
	for _, addr := range set.Addresses() {
		comp := e.opts.Resolver.ComponentAt(addr)
		if comp == nil {
			continue
		}
		if r, ok := comp.(token.RenderExtension); ok && r.SupportsCapability(token.CapRender) {
			return r
		}
	}
	return nil
}

// resolveValidator looks up the validator component supplied at
// initialization. A missing or incompatible component simply disables
// post-processing.
func (e *Engine) resolveValidator() token.Validator {
	addr := e.ValidatorAddress()
	if addr.IsZero() {
		return nil
	}
	comp := e.opts.Resolver.ComponentAt(addr)
	if comp == nil {
		return nil
	}
	v, ok := comp.(token.Validator)
	if !ok {
		return nil
	}
	return v
}
