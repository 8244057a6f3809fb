/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package quota

import (
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/suparena/draftstore/adapter"
	"github.com/suparena/draftstore/envelope"
	dserrors "github.com/suparena/draftstore/errors"
	"github.com/suparena/draftstore/kvstore"
	"github.com/suparena/draftstore/storagemodels"
)

// degradedThreshold is the number of consecutive failed cleanup-and-retry
// cycles after which non-critical writes are skipped.
const degradedThreshold = 2

// Manager makes writes succeed under a byte budget: it scrubs oversized file
// content before writing, evicts stale entries when the primitive reports
// quota exhaustion, and retries the write exactly once.
type Manager struct {
	adapter *adapter.Adapter
	opts    storagemodels.EngineOptions
	logger  *slog.Logger

	mu           sync.Mutex
	lastStamp    map[string]int64
	failedCycles int
}

// New creates a manager over a probed adapter.
func New(a *adapter.Adapter, opts storagemodels.EngineOptions) *Manager {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		adapter:   a,
		opts:      opts,
		logger:    logger,
		lastStamp: make(map[string]int64),
	}
}

// EstimateSize serializes value and measures its encoded length.
func (m *Manager) EstimateSize(value any) (int, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return 0, dserrors.NewValidationError("value", "not serializable: "+err.Error())
	}
	return len(raw), nil
}

// Compress recursively replaces file-descriptor-shaped fields whose content
// exceeds the threshold with their metadata-only form. The reduction is
// deliberate and irreversible: HasData and Compressed stay true as a
// tombstone while the raw bytes are dropped.
func (m *Manager) Compress(value any) (any, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, dserrors.NewValidationError("value", "not serializable: "+err.Error())
	}
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, dserrors.NewValidationError("value", "not round-trippable: "+err.Error())
	}
	return m.scrub(decoded), nil
}

func (m *Manager) scrub(v any) any {
	switch node := v.(type) {
	case map[string]any:
		if m.oversizedDescriptor(node) {
			return map[string]any{
				"name":       node["name"],
				"size":       node["size"],
				"mimeType":   node["mimeType"],
				"hasData":    true,
				"compressed": true,
			}
		}
		for k, child := range node {
			node[k] = m.scrub(child)
		}
		return node
	case []any:
		for i, child := range node {
			node[i] = m.scrub(child)
		}
		return node
	default:
		return v
	}
}

// oversizedDescriptor reports whether node looks like a file attachment
// descriptor carrying more content than the threshold allows.
func (m *Manager) oversizedDescriptor(node map[string]any) bool {
	if _, ok := node["name"]; !ok {
		return false
	}
	if _, ok := node["mimeType"]; !ok {
		return false
	}
	size, ok := node["size"].(float64)
	if !ok {
		return false
	}
	dataURL, _ := node["dataUrl"].(string)
	return int(size) > m.opts.CompressionThreshold || len(dataURL) > m.opts.CompressionThreshold
}

// Write compresses, stamps and persists value under key with the given ttl.
// A quota-class failure triggers one cleanup pass and one retry; a security
// failure is surfaced immediately and never retried. In degraded mode only
// the resume-position marker key is still attempted.
func (m *Manager) Write(key string, value any, ttl time.Duration) storagemodels.WriteResult {
	if m.Degraded() && !m.critical(key) {
		return storagemodels.WriteResult{
			Success: false,
			Error:   "storage degraded, write skipped",
			Type:    "Degraded",
			Err:     dserrors.ErrQuotaExceeded,
		}
	}

	compressed, err := m.Compress(value)
	if err != nil {
		return storagemodels.WriteResult{Success: false, Error: err.Error(), Err: err}
	}

	res := m.attempt(key, compressed, ttl)
	if res.Success {
		m.recordOutcome(true)
		return res
	}

	switch {
	case errors.Is(res.Err, dserrors.ErrStorageUnsupported):
		return storagemodels.WriteResult{
			Success: false,
			Error:   "storage not supported",
			Err:     dserrors.ErrStorageUnsupported,
		}
	case kvstore.IsAccessDenied(res.Err):
		return storagemodels.WriteResult{
			Success:       false,
			Error:         "storage access blocked",
			Type:          "SecurityError",
			OriginalError: kvstore.ErrorName(res.Err),
			Err:           dserrors.NewSecurityError("set"),
		}
	case kvstore.IsQuota(res.Err):
		removed := m.Cleanup()
		m.logger.Info("quota exceeded, retrying after cleanup",
			"component", "quota", "key", key, "removed", removed)

		retry := m.attempt(key, compressed, ttl)
		if retry.Success {
			m.recordOutcome(true)
			return retry
		}
		m.recordOutcome(false)
		raw := kvstore.ErrorName(retry.Err)
		return storagemodels.WriteResult{
			Success:       false,
			Error:         "storage quota exceeded",
			OriginalError: raw,
			Err:           dserrors.NewQuotaError(key, raw),
		}
	default:
		return storagemodels.WriteResult{
			Success:       false,
			Error:         "storage write failed",
			OriginalError: kvstore.ErrorName(res.Err),
			Err:           res.Err,
		}
	}
}

// attempt performs one wrap-and-set with a per-key monotonic timestamp.
func (m *Manager) attempt(key string, value any, ttl time.Duration) storagemodels.WriteResult {
	now := m.opts.Clock()
	env, err := envelope.Wrap(value, now, ttl, m.opts.SchemaVersion)
	if err != nil {
		return storagemodels.WriteResult{Success: false, Error: err.Error(), Err: err}
	}
	env.Timestamp = m.stamp(key, now)

	set := m.adapter.Set(key, env)
	if !set.Success {
		return storagemodels.WriteResult{Success: false, Err: set.Err}
	}

	m.commitStamp(key, env.Timestamp)
	return storagemodels.WriteResult{Success: true, BytesWritten: set.BytesWritten}
}

// stamp returns a timestamp strictly greater than the last successful write
// to key, seeding from any envelope already in storage.
func (m *Manager) stamp(key string, now time.Time) int64 {
	m.mu.Lock()
	last, seen := m.lastStamp[key]
	m.mu.Unlock()

	if !seen {
		if env, ok := m.adapter.Get(key); ok {
			last = env.Timestamp
		}
	}

	ts := now.UnixMilli()
	if ts <= last {
		ts = last + 1
	}
	return ts
}

func (m *Manager) commitStamp(key string, ts int64) {
	m.mu.Lock()
	m.lastStamp[key] = ts
	m.mu.Unlock()
}

func (m *Manager) recordOutcome(success bool) {
	m.mu.Lock()
	if success {
		m.failedCycles = 0
	} else {
		m.failedCycles++
	}
	m.mu.Unlock()
}

// Degraded reports whether enough cleanup-and-retry cycles have failed in a
// row that non-critical writes are being skipped.
func (m *Manager) Degraded() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.failedCycles >= degradedThreshold
}

// critical reports whether key holds the wizard resume-position marker.
// Losing resume position is worse than losing a field's latest edit, so the
// marker is attempted even in degraded mode.
func (m *Manager) critical(key string) bool {
	parsed, ok := storagemodels.ParseKey(key)
	return ok && parsed.Section == storagemodels.SectionMarker
}

// Cleanup removes expired envelopes and entries older than the retention
// window. Only keys under known namespaces are touched. Returns the number
// of removed entries; corrupt values purged by the read path are not
// counted.
func (m *Manager) Cleanup() int {
	now := m.opts.Clock()
	removed := 0

	for _, prefix := range []string{m.opts.Namespace + ":", "file_"} {
		for _, key := range m.adapter.Enumerate(prefix) {
			env, ok := m.adapter.Get(key)
			if !ok {
				continue
			}
			if env.Expired(now) || env.Age(now) > m.opts.RetentionWindow {
				m.adapter.Remove(key)
				removed++
			}
		}
	}

	if removed > 0 {
		m.logger.Info("retention cleanup removed stale entries",
			"component", "quota", "removed", removed)
	}
	return removed
}

// HealthSnapshot sums sizes and counts keys by category across the whole
// primitive. The snapshot reflects live state and is recomputed on every
// call.
func (m *Manager) HealthSnapshot() storagemodels.StorageHealthSnapshot {
	snap := storagemodels.StorageHealthSnapshot{
		MaxBytes:    m.opts.MaxBytes,
		GeneratedAt: strfmt.DateTime(m.opts.Clock()),
	}

	for _, key := range m.adapter.Enumerate("") {
		raw, ok := m.adapter.Raw(key)
		if !ok {
			continue
		}
		snap.TotalBytesUsed += int64(len(key) + len(raw))

		switch {
		case storagemodels.IsFileKey(key):
			snap.KeyCounts.FileData++
		default:
			if parsed, ok := storagemodels.ParseKey(key); ok && parsed.Namespace == m.opts.Namespace {
				snap.KeyCounts.FormData++
			} else {
				snap.KeyCounts.Other++
			}
		}
	}

	if snap.MaxBytes > 0 {
		snap.PercentUsed = float64(snap.TotalBytesUsed) / float64(snap.MaxBytes) * 100
	}
	return snap
}
