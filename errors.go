package glowstash

import (
	"errors"
	"fmt"
)

// Common errors returned by the glowstash client.
var (
	// ErrNotFound is returned when a record is not found in the local store.
	ErrNotFound = errors.New("record not found")

	// ErrEmptyName is returned when a record is created without a name.
	ErrEmptyName = errors.New("name cannot be empty")

	// ErrNameTooLong is returned when a name exceeds MaxNameLength.
	ErrNameTooLong = errors.New("name exceeds maximum length")

	// ErrBarcodeTooLong is returned when a barcode exceeds MaxBarcodeLength.
	ErrBarcodeTooLong = errors.New("barcode exceeds maximum length")

	// ErrStoreClosed is returned when operating on a closed store.
	ErrStoreClosed = errors.New("store is closed")

	// ErrOffline is returned when a network operation is attempted without a
	// configured catalog service.
	ErrOffline = errors.New("operation unavailable in offline mode")

	// ErrAuthRequired is returned when the catalog service rejects the bearer
	// credential. The session-level auth collaborator is responsible for
	// invalidating the session; sync never retries under a stale credential.
	ErrAuthRequired = errors.New("catalog authentication required")

	// ErrBackendIDSet is returned when attempting to overwrite an assigned
	// backend ID. Backend identity is immutable once stamped.
	ErrBackendIDSet = errors.New("backend id already assigned")
)

// ValidationError is returned when configuration validation fails.
// Extractable via errors.As().
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Message)
}

// SyncError is returned when a catalog call fails.
// Extractable via errors.As(). Supports Unwrap().
type SyncError struct {
	Operation  string
	StatusCode int
	Err        error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("sync: %s failed (status %d): %v", e.Operation, e.StatusCode, e.Err)
}

func (e *SyncError) Unwrap() error { return e.Err }
