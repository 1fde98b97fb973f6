package token

// Capability identifies an interface a deployed component can
// advertise through introspection, in the manner of ERC-165
// interface identifiers.
type Capability [4]byte

// CapRender is the capability a component must advertise before it can
// be registered as a render extension.
var CapRender = Capability{0x8f, 0x3e, 0xc1, 0x0a}

// Component is anything deployed at an address that can answer
// capability introspection.
type Component interface {
	// SupportsCapability reports whether the component implements the
	// interface identified by c.
	SupportsCapability(c Capability) bool
}

// Attribute is a single displayed trait of a token.
type Attribute struct {
	TraitType string `json:"trait_type"`
	Value     string `json:"value"`
}

// Metadata is the displayed form of a token: a name, its traits, and
// an image payload (typically an inline SVG data URI).
type Metadata struct {
	Name  string      `json:"name"`
	Attrs []Attribute `json:"attrs,omitempty"`
	Image string      `json:"image,omitempty"`
}

// RenderExtension computes a token's displayed metadata from its id
// and the generation it was minted in.
type RenderExtension interface {
	Component

	// Render produces the metadata for a token. It must be
	// deterministic for a given (tokenID, generation) pair.
	Render(tokenID, generation uint64) (Metadata, error)
}

// Validator post-processes rendered metadata before it is served.
// The engine is handed exactly one validator at initialization.
type Validator interface {
	// Validate checks and optionally rewrites rendered metadata.
	Validate(m Metadata) (Metadata, error)
}

// Resolver looks up the component deployed at an address. A nil result
// means nothing is deployed there (a plain account).
type Resolver interface {
	ComponentAt(a Address) Component
}
