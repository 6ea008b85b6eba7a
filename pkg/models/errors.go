package models

import "github.com/Aidin1998/investboard/pkg/errors"

// Lookup failures shared by the services
var (
	ErrClientNotFound  = errors.NotFound.Reason("client_not_found")
	ErrProductNotFound = errors.NotFound.Reason("product_not_found")
	ErrProfileNotFound = errors.NotFound.Reason("profile_not_found")
)

// ErrConflict reports a stale client version at write time; callers retry
// with fresh state.
var ErrConflict = errors.Conflict.Reason("persistence_conflict")
