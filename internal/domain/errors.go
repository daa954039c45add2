package domain

import "errors"

// Sentinel errors shared by every collection store implementation.
var (
	ErrDuplicate        = errors.New("duplicate record")
	ErrStoreUnavailable = errors.New("store unavailable")
)
