package workspace

import "errors"

// Sentinel errors for the workspace package.
var (
	// ErrPoolExhausted is returned when every workspace number in a pool's
	// range is currently claimed.
	ErrPoolExhausted = errors.New("workspace pool exhausted")

	// ErrSlotTaken is returned when claim_workspace loses a race: by the
	// time the exclusive lock was acquired, another writer had already
	// claimed the requested slot.
	ErrSlotTaken = errors.New("workspace slot already claimed")

	// ErrClaimNotFound is returned when release_workspace cannot find a
	// matching row to remove.
	ErrClaimNotFound = errors.New("workspace claim not found")

	// ErrUnknownPool is returned for a workspace number outside any known
	// pool's range.
	ErrUnknownPool = errors.New("workspace number is not in any known pool")
)
