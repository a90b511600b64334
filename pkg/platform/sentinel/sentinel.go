package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and external clients
// return these (optionally wrapped) so services can translate them into
// domain errors.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: entity does not exist in store, or no candidate available
// - ErrConflict: entity already exists (e.g. a succeeded run for the date)
// - ErrExpired: cached entry or token past its lifetime
// - ErrInvalidState: entity in wrong state for requested operation
// - ErrQuotaExceeded: posting quota for the period is used up
// - ErrUnavailable: external service or resource temporarily unavailable
//
// For validation errors (bad input, missing fields), use pkg/domain-errors.
var (
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
	ErrExpired       = errors.New("expired")
	ErrInvalidState  = errors.New("invalid state")
	ErrQuotaExceeded = errors.New("quota exceeded")
	ErrUnavailable   = errors.New("unavailable")
)
