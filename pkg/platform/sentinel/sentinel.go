package sentinel

import "errors"

// Sentinel dependency errors. Stores return these (optionally wrapped) so the
// service can translate them into domain errors exactly once.
var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("concurrent modification")
	ErrAlreadyUsed = errors.New("already used")
	ErrUnavailable = errors.New("unavailable")
)
