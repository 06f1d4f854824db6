package common

import "errors"

// Business logic errors
var (
	// General errors
	ErrNotFound  = errors.New("resource not found")
	ErrForbidden = errors.New("forbidden")

	// Form errors
	ErrFormNotFound = errors.New("form not found")

	// Preset errors
	ErrPresetNotFound   = errors.New("preset not found")
	ErrTenantMismatch   = errors.New("resource belongs to another tenant")
	ErrRevisionNotFound = errors.New("preset revision not found")
	ErrSameVersion      = errors.New("rollback target equals current version")
	ErrVersionConflict  = errors.New("preset version already archived by another writer")

	// Import errors
	ErrInvalidImport       = errors.New("invalid import payload")
	ErrImportTooLarge      = errors.New("import payload exceeds size limit")
	ErrImportRevisionLimit = errors.New("import revision count exceeds limit")

	// Auth errors
	ErrUnauthorized = errors.New("unauthorized")

	// Validation errors
	ErrInvalidInput = errors.New("invalid input")
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("expired token")
)
