package policy

import "errors"

var (
	// ErrForbidden means the actor lacks permission or scope. Callers
	// recover by redirecting; it is never fatal.
	ErrForbidden = errors.New("policy: forbidden")
	// ErrNotFound means a referenced user, firm, role or profile does not
	// resolve. Distinct from ErrForbidden so callers can render a generic
	// error instead of an authorization-specific one.
	ErrNotFound = errors.New("policy: not found")
	// ErrInvalidState marks user-correctable validation failures such as a
	// no-op firm reassignment or a disable without a reason.
	ErrInvalidState = errors.New("policy: invalid state")
	// ErrConflict marks a uniqueness violation surfaced by the store.
	ErrConflict = errors.New("policy: conflict")
)
