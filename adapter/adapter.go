/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package adapter

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/suparena/draftstore/envelope"
	dserrors "github.com/suparena/draftstore/errors"
	"github.com/suparena/draftstore/kvstore"
	"github.com/suparena/draftstore/storagemodels"
)

// probeKey is written and removed once to verify the primitive is writable.
const probeKey = "__draftstore_probe__"

// Adapter wraps the key/value primitive behind a capability probe. Every
// operation is total: an unsupported or misbehaving primitive degrades to
// no-ops reporting failure instead of panicking.
type Adapter struct {
	kv        kvstore.KVStore
	logger    *slog.Logger
	probeOnce sync.Once
	supported bool
}

// New wraps kv. The probe runs lazily on first use.
func New(kv kvstore.KVStore, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{kv: kv, logger: logger}
}

// Supported reports whether the primitive exists and accepted the probe
// write. The result is decided once per adapter.
func (a *Adapter) Supported() bool {
	a.probeOnce.Do(a.probe)
	return a.supported
}

func (a *Adapter) probe() {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Warn("storage probe panicked, persistence disabled", "component", "adapter", "panic", r)
			a.supported = false
		}
	}()

	if a.kv == nil {
		a.supported = false
		return
	}
	if err := a.kv.SetItem(probeKey, "1"); err != nil {
		a.logger.Warn("storage probe write failed, persistence disabled",
			"component", "adapter", "error", err)
		a.supported = false
		return
	}
	v, ok := a.kv.GetItem(probeKey)
	a.kv.RemoveItem(probeKey)
	a.supported = ok && v == "1"
}

// Get returns the decoded envelope for key, or ok=false when the key is
// absent. A value that fails to decode is removed before returning absent,
// so corruption heals itself on the read path.
func (a *Adapter) Get(key string) (env *envelope.Envelope, ok bool) {
	if !a.Supported() {
		return nil, false
	}
	defer func() {
		if r := recover(); r != nil {
			env, ok = nil, false
		}
	}()

	raw, found := a.kv.GetItem(key)
	if !found {
		return nil, false
	}

	decoded, err := envelope.Decode(key, raw)
	if err != nil {
		a.logger.Warn("purging corrupt stored value", "component", "adapter", "key", key, "error", err)
		a.kv.RemoveItem(key)
		return nil, false
	}
	return decoded, true
}

// Raw returns the undecoded stored string for key. Used by health reporting,
// which needs sizes for every key regardless of shape.
func (a *Adapter) Raw(key string) (string, bool) {
	if !a.Supported() {
		return "", false
	}
	return a.kv.GetItem(key)
}

// Set encodes and writes the envelope under key. The result always carries a
// non-nil Err on failure and never panics.
func (a *Adapter) Set(key string, env *envelope.Envelope) (res storagemodels.SetResult) {
	if !a.Supported() {
		return storagemodels.SetResult{Success: false, Err: dserrors.ErrStorageUnsupported}
	}
	defer func() {
		if r := recover(); r != nil {
			res = storagemodels.SetResult{Success: false, Err: fmt.Errorf("storage write panicked: %v", r)}
		}
	}()

	raw, err := env.Encode()
	if err != nil {
		return storagemodels.SetResult{Success: false, Err: err}
	}
	if err := a.kv.SetItem(key, raw); err != nil {
		return storagemodels.SetResult{Success: false, Err: err}
	}
	return storagemodels.SetResult{Success: true, BytesWritten: len(raw)}
}

// Remove deletes key. Removing through an unsupported adapter is a no-op.
func (a *Adapter) Remove(key string) {
	if !a.Supported() {
		return
	}
	defer func() { _ = recover() }()
	a.kv.RemoveItem(key)
}

// Enumerate lists the stored keys matching prefix. Each call re-lists from
// the primitive, so the sequence is restartable and finite.
func (a *Adapter) Enumerate(prefix string) []string {
	if !a.Supported() {
		return nil
	}

	var keys []string
	for _, k := range a.kv.Keys() {
		if k == probeKey {
			continue
		}
		if prefix == "" || strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys
}
