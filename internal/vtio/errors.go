package vtio

import "errors"

// Bridge errors.
var (
	// ErrInvalidMode indicates an unrecognized VT mode string. The
	// caller must correct its configuration; retrying is pointless.
	ErrInvalidMode = errors.New("invalid vt mode")

	// ErrInternal indicates a state that correct call sequencing makes
	// unreachable, such as an unresolved mode reaching the engine
	// factory or the renderer rejecting registration.
	ErrInternal = errors.New("internal bridge error")

	// ErrAlreadyStarted indicates a second StartIfNeeded on a running
	// bridge.
	ErrAlreadyStarted = errors.New("bridge already started")
)
