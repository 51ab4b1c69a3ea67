package core

import "errors"

// Error taxonomy. Collaborator failures (billing, dispatch, claim store)
// are wrapped with context and surface as generic server failures; these
// sentinels are the client-distinguishable classes.
var (
	// ErrInvalidToken means token verification failed. The detail is logged
	// server-side and never elaborated to the caller.
	ErrInvalidToken = errors.New("token verification failed")

	// ErrAlreadyActivated means an idempotent-activation precondition was
	// violated (trial already set, or premium already flagged).
	ErrAlreadyActivated = errors.New("already activated")

	// ErrNoEntitlement means the caller holds neither an active trial nor a
	// premium flag and may not dispatch notifications.
	ErrNoEntitlement = errors.New("no active entitlement")

	// ErrMissingField means a required request field was absent.
	ErrMissingField = errors.New("missing required field")
)
