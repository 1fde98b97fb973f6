package extension

import "errors"

// Rejections surfaced to callers. The uppercase messages are the
// contract's revert strings and must stay stable; callers match them
// with errors.Is.
var (
	// ErrInvalidAddress rejects the zero address as an extension
	// candidate.
	ErrInvalidAddress = errors.New("INVALID_ADDRESS")

	// ErrNoRenderSupport rejects a component that does not advertise
	// the render capability.
	ErrNoRenderSupport = errors.New("NO_RENDER_SUPPORT")
)

var (
	// ErrNotComponent rejects an address with nothing deployed at it.
	ErrNotComponent = errors.New("extension: no component deployed at address")

	// ErrNotOwner rejects an owner-only operation from anyone else.
	ErrNotOwner = errors.New("extension: caller is not the owner")

	// ErrNotInitialized rejects any operation before Initialize.
	ErrNotInitialized = errors.New("extension: engine not initialized")

	// ErrAlreadyInitialized rejects a second Initialize.
	ErrAlreadyInitialized = errors.New("extension: engine already initialized")

	// ErrInsufficientPayment rejects a public mint whose attached
	// value does not cover price times amount.
	ErrInsufficientPayment = errors.New("extension: payment below mint price")

	// ErrInsufficientBalance rejects a recoup larger than the accrued
	// balance.
	ErrInsufficientBalance = errors.New("extension: amount exceeds accrued balance")
)
