/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package errors

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	// ErrStorageUnsupported is returned when the persistent primitive is missing or unwritable
	ErrStorageUnsupported = errors.New("storage not supported")

	// ErrStorageBlocked is returned when the host environment denies storage access
	ErrStorageBlocked = errors.New("storage access blocked")

	// ErrQuotaExceeded is returned when a write fails even after cleanup and retry
	ErrQuotaExceeded = errors.New("storage quota exceeded")

	// ErrCorruptEnvelope is returned when a stored value cannot be decoded
	ErrCorruptEnvelope = errors.New("corrupt envelope")

	// ErrNotFound is returned when no value exists for a key
	ErrNotFound = errors.New("record not found")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")
)

// QuotaError reports a write that still failed after one cleanup and retry cycle.
// Raw preserves the backend exception name for diagnostics; Error() never includes
// it, so the user-facing message stays free of host-specific tokens.
type QuotaError struct {
	Key string
	Raw string
}

func (e *QuotaError) Error() string {
	return "storage quota exceeded"
}

func (e *QuotaError) Is(target error) bool {
	return target == ErrQuotaExceeded
}

// SecurityError reports storage access denied by the host environment.
// These failures are never retried.
type SecurityError struct {
	Op string
}

func (e *SecurityError) Error() string {
	return "storage access blocked"
}

func (e *SecurityError) Is(target error) bool {
	return target == ErrStorageBlocked
}

// CorruptEnvelopeError reports a stored value that failed to decode.
// The offending key is purged before this error is surfaced.
type CorruptEnvelopeError struct {
	Key    string
	Reason string
}

func (e *CorruptEnvelopeError) Error() string {
	return fmt.Sprintf("corrupt envelope at key %q: %s", e.Key, e.Reason)
}

func (e *CorruptEnvelopeError) Is(target error) bool {
	return target == ErrCorruptEnvelope
}

// NotFoundError reports a missing record
type NotFoundError struct {
	Kind string
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with key %q not found", e.Kind, e.Key)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// ValidationError represents an input validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %q: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// Helper functions for creating errors

// NewQuotaError creates a new QuotaError
func NewQuotaError(key, raw string) error {
	return &QuotaError{Key: key, Raw: raw}
}

// NewSecurityError creates a new SecurityError
func NewSecurityError(op string) error {
	return &SecurityError{Op: op}
}

// NewCorruptEnvelopeError creates a new CorruptEnvelopeError
func NewCorruptEnvelopeError(key, reason string) error {
	return &CorruptEnvelopeError{Key: key, Reason: reason}
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(kind, key string) error {
	return &NotFoundError{Kind: kind, Key: key}
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// IsQuotaExceeded checks if an error is a quota exhaustion error
func IsQuotaExceeded(err error) bool {
	return errors.Is(err, ErrQuotaExceeded)
}

// IsStorageBlocked checks if an error is a security/permission error
func IsStorageBlocked(err error) bool {
	return errors.Is(err, ErrStorageBlocked)
}

// IsCorruptEnvelope checks if an error is a corrupt envelope error
func IsCorruptEnvelope(err error) bool {
	return errors.Is(err, ErrCorruptEnvelope)
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}
