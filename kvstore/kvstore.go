/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package kvstore

import (
	"errors"
	"strings"
)

// KVStore is the persistent key/value primitive the engine builds on. The
// contract mirrors a browser-style storage object: synchronous calls, string
// values, enumerable keys. Reads report absence instead of failing; only
// writes surface errors.
type KVStore interface {
	// GetItem returns the stored value for key, or ok=false when absent.
	GetItem(key string) (value string, ok bool)

	// SetItem stores value under key, overwriting any previous value.
	SetItem(key, value string) error

	// RemoveItem deletes key. Removing an absent key is a no-op.
	RemoveItem(key string)

	// Keys lists every stored key. The slice is a snapshot; callers may
	// range over it freely.
	Keys() []string
}

// QuotaError is returned by SetItem when the primitive rejects a write for
// lack of space. Name carries the backend-specific token, for example
// "QuotaExceededError" or "SQLITE_FULL".
type QuotaError struct {
	Name string
}

func (e *QuotaError) Error() string { return e.Name }

// AccessError is returned by SetItem when the host environment denies
// storage access outright. Writes failing this way must not be retried.
type AccessError struct {
	Name string
}

func (e *AccessError) Error() string { return e.Name }

// IsQuota reports whether err signals quota exhaustion. Backends that cannot
// return a typed error are matched on conventional token substrings.
func IsQuota(err error) bool {
	if err == nil {
		return false
	}
	var qe *QuotaError
	if errors.As(err, &qe) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "quota") || strings.Contains(msg, "disk is full")
}

// IsAccessDenied reports whether err signals a security or permission
// failure.
func IsAccessDenied(err error) bool {
	if err == nil {
		return false
	}
	var ae *AccessError
	if errors.As(err, &ae) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "access") || strings.Contains(msg, "security") ||
		strings.Contains(msg, "permission")
}

// ErrorName extracts the backend-specific error name for diagnostics. Typed
// errors report their Name; anything else falls back to the message.
func ErrorName(err error) string {
	if err == nil {
		return ""
	}
	var qe *QuotaError
	if errors.As(err, &qe) {
		return qe.Name
	}
	var ae *AccessError
	if errors.As(err, &ae) {
		return ae.Name
	}
	return err.Error()
}
