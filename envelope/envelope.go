/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package envelope

import (
	"encoding/json"
	"time"

	dserrors "github.com/suparena/draftstore/errors"
)

// Envelope wraps a persisted value with its write timestamp, optional expiry
// and schema version. Timestamps are unix milliseconds and strictly increase
// across successful writes to the same key.
type Envelope struct {
	Value         json.RawMessage `json:"value"`
	Timestamp     int64           `json:"timestamp"`
	ExpiresAt     *int64          `json:"expiresAt"`
	SchemaVersion string          `json:"schemaVersion"`
}

// Wrap marshals value into an envelope stamped at now. A zero ttl leaves
// ExpiresAt unset.
func Wrap(value any, now time.Time, ttl time.Duration, schemaVersion string) (*Envelope, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, dserrors.NewValidationError("value", "not serializable: "+err.Error())
	}

	env := &Envelope{
		Value:         raw,
		Timestamp:     now.UnixMilli(),
		SchemaVersion: schemaVersion,
	}
	if ttl > 0 {
		exp := now.Add(ttl).UnixMilli()
		env.ExpiresAt = &exp
	}
	return env, nil
}

// Encode renders the envelope to its stored string form.
func (e *Envelope) Encode() (string, error) {
	raw, err := json.Marshal(e)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// Decode parses a stored string back into an envelope. Values that are not
// well-formed envelopes (invalid JSON, missing value, zero timestamp) are
// reported as corrupt; callers purge the offending key.
func Decode(key, raw string) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		return nil, dserrors.NewCorruptEnvelopeError(key, err.Error())
	}
	if env.Timestamp <= 0 {
		return nil, dserrors.NewCorruptEnvelopeError(key, "missing or invalid timestamp")
	}
	if len(env.Value) == 0 {
		return nil, dserrors.NewCorruptEnvelopeError(key, "missing value")
	}
	return &env, nil
}

// Expired reports whether the envelope is past its expiry at now. Envelopes
// without expiry never expire.
func (e *Envelope) Expired(now time.Time) bool {
	return e.ExpiresAt != nil && now.UnixMilli() >= *e.ExpiresAt
}

// Age returns the time elapsed since the envelope was written.
func (e *Envelope) Age(now time.Time) time.Duration {
	return now.Sub(time.UnixMilli(e.Timestamp))
}

// DecodeValue unmarshals the wrapped value into out.
func (e *Envelope) DecodeValue(out any) error {
	return json.Unmarshal(e.Value, out)
}
