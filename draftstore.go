/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package draftstore

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"

	"github.com/suparena/draftstore/adapter"
	dserrors "github.com/suparena/draftstore/errors"
	"github.com/suparena/draftstore/kvstore"
	"github.com/suparena/draftstore/quota"
	"github.com/suparena/draftstore/reconcile"
	"github.com/suparena/draftstore/recovery"
	"github.com/suparena/draftstore/remote"
	"github.com/suparena/draftstore/storagemodels"
	"github.com/suparena/draftstore/wizard"
)

// remoteSyncTimeout bounds the best-effort push after a local flush.
const remoteSyncTimeout = 5 * time.Second

// pendingWrite is one debounced save waiting for its quiet period. A newer
// save for the same section stops the timer and replaces the payload; the
// superseded payload is dropped, not queued.
type pendingWrite struct {
	timer *time.Timer
	data  any
}

// failedWrite remembers the last write that surfaced a failure so Retry can
// re-attempt it.
type failedWrite struct {
	section string
	data    any
}

// DraftStore is the public surface the wizard UI consumes: debounced saves,
// reconciled loads, retry, diagnostics and session state flags. One
// DraftStore is one wizard session; it holds no process-wide state.
type DraftStore struct {
	opts     storagemodels.EngineOptions
	logger   *slog.Logger
	adapter  *adapter.Adapter
	quota    *quota.Manager
	recovery *recovery.Controller
	remote   *remote.Client
	events   *subscribers

	mu          sync.Mutex
	entityID    string
	pending     map[string]*pendingWrite
	lastFailed  *failedWrite
	isLoading   bool
	isSaving    bool
	lastSavedAt strfmt.DateTime
	storageErr  string
	closed      bool
}

// New creates a wizard session over the given primitive.
func New(kv kvstore.KVStore, opts ...storagemodels.EngineOption) *DraftStore {
	options := storagemodels.DefaultEngineOptions()
	for _, opt := range opts {
		opt(&options)
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}

	a := adapter.New(kv, logger)
	s := &DraftStore{
		opts:    options,
		logger:  logger,
		adapter: a,
		quota:   quota.New(a, options),
		events:  newSubscribers(),
		pending: make(map[string]*pendingWrite),
	}
	s.recovery = recovery.New("draft-persistence", "/proposals/new", logger).
		WithResetCallback(func(kind recovery.Kind) {
			s.logger.Info("recovery reset requested", "component", "draft-persistence", "kind", string(kind))
		})
	return s
}

// WithRemote attaches a Draft API client for best-effort server sync
func (s *DraftStore) WithRemote(c *remote.Client) *DraftStore {
	s.remote = c
	return s
}

// WithEntityID pins the draft identifier instead of generating one
func (s *DraftStore) WithEntityID(id string) *DraftStore {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entityID = id
	return s
}

// EntityID returns the session's draft identifier, generating one on first
// use.
func (s *DraftStore) EntityID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ensureEntityLocked()
}

func (s *DraftStore) ensureEntityLocked() string {
	if s.entityID == "" {
		s.entityID = uuid.NewString()
	}
	return s.entityID
}

// Save schedules a debounced write of data under the given section. Rapid
// successive saves for the same section coalesce into one persisted write
// after the quiet period; the last edit before flush wins.
func (s *DraftStore) Save(section string, data any) error {
	if section == "" {
		return dserrors.NewValidationError("section", "must not be empty")
	}
	if data == nil {
		return dserrors.NewValidationError("data", "must not be nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return dserrors.NewValidationError("", "session is closed")
	}
	s.ensureEntityLocked()

	if prev, ok := s.pending[section]; ok {
		prev.timer.Stop()
	}

	pw := &pendingWrite{data: data}
	pw.timer = time.AfterFunc(s.opts.DebounceInterval, func() {
		s.flushSection(section)
	})
	s.pending[section] = pw
	s.isSaving = true
	return nil
}

// Flush forces every pending debounced write to persist immediately. Used
// on teardown and by tests.
func (s *DraftStore) Flush() {
	s.mu.Lock()
	sections := make([]string, 0, len(s.pending))
	for section, pw := range s.pending {
		pw.timer.Stop()
		sections = append(sections, section)
	}
	s.mu.Unlock()

	for _, section := range sections {
		s.flushSection(section)
	}
}

// flushSection persists one pending section write, then the resume marker,
// then fires the best-effort remote sync.
func (s *DraftStore) flushSection(section string) {
	s.mu.Lock()
	pw, ok := s.pending[section]
	if !ok {
		s.mu.Unlock()
		return
	}
	delete(s.pending, section)
	entityID := s.ensureEntityLocked()
	data := pw.data
	s.mu.Unlock()

	key := storagemodels.Key{Namespace: s.opts.Namespace, EntityID: entityID, Section: section}
	res := s.quota.Write(key.String(), data, 0)

	// Losing resume position is worse than losing a field edit; the marker
	// is written even when the engine is degraded.
	markerKey := storagemodels.Key{
		Namespace: s.opts.Namespace, EntityID: entityID, Section: storagemodels.SectionMarker,
	}
	if section != storagemodels.SectionMarker {
		if marker := s.quota.Write(markerKey.String(), section, 0); !marker.Success {
			s.logger.Warn("resume marker write failed",
				"component", "draft-persistence", "error", marker.Error)
		}
	}

	s.mu.Lock()
	s.isSaving = len(s.pending) > 0
	if res.Success {
		s.lastSavedAt = strfmt.DateTime(s.opts.Clock())
		s.storageErr = ""
		s.lastFailed = nil
	} else {
		s.storageErr = res.Error
		s.lastFailed = &failedWrite{section: section, data: data}
	}
	s.mu.Unlock()

	if res.Success {
		s.events.notify(Event{Kind: EventSaved, Section: section})
		s.syncRemote(entityID, section, data)
		return
	}

	s.recovery.Handle(res.Err)
	s.events.notify(Event{Kind: EventSaveFailed, Section: section, Message: res.Error})
}

// syncRemote pushes one section to the Draft API. Failures are logged and
// never affect local persistence.
func (s *DraftStore) syncRemote(entityID, section string, data any) {
	if s.remote == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), remoteSyncTimeout)
	defer cancel()

	if err := s.remote.PatchSection(ctx, entityID, section, data); err != nil {
		s.recovery.Handle(err)
	}
}

// Load returns the stored payload for one section, or nil when absent.
func (s *DraftStore) Load(section string) (map[string]any, error) {
	s.mu.Lock()
	entityID := s.ensureEntityLocked()
	s.mu.Unlock()

	key := storagemodels.Key{Namespace: s.opts.Namespace, EntityID: entityID, Section: section}
	env, ok := s.adapter.Get(key.String())
	if !ok {
		return nil, nil
	}

	var payload map[string]any
	if err := env.DecodeValue(&payload); err != nil {
		return nil, dserrors.NewCorruptEnvelopeError(key.String(), err.Error())
	}
	return payload, nil
}

// LoadDraft reconciles every candidate snapshot, current and legacy, and
// returns the canonical draft record. The session adopts the winning
// candidate's entity id when it has none yet.
func (s *DraftStore) LoadDraft() storagemodels.DraftRecord {
	s.mu.Lock()
	s.isLoading = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.isLoading = false
		s.mu.Unlock()
	}()

	var candidates []reconcile.Candidate

	for _, key := range s.adapter.Enumerate(s.opts.Namespace + ":") {
		raw, ok := s.adapter.Raw(key)
		if !ok {
			continue
		}
		if c, ok := reconcile.Parse(key, raw); ok {
			candidates = append(candidates, c)
		}
	}
	for _, legacy := range s.opts.LegacySources {
		raw, ok := s.adapter.Raw(legacy.Key)
		if !ok {
			continue
		}
		if c, ok := reconcile.Parse(legacy.Source, raw); ok {
			candidates = append(candidates, c)
		}
	}

	best, score, ok := reconcile.Select(candidates)
	if !ok {
		return storagemodels.DraftRecord{}
	}
	s.logger.Info("reconciled draft candidates",
		"component", "draft-persistence",
		"candidates", len(candidates), "winner", best.Source, "score", score)

	rec := reconcile.ToDraftRecord(best)

	// The marker often lives in its own key rather than inside the winning
	// payload.
	if rec.CurrentSection == "" {
		rec.CurrentSection = s.markerFromStorage(best.Source)
	}
	if rec.EntityID == "" {
		if parsed, ok := storagemodels.ParseKey(best.Source); ok {
			rec.EntityID = parsed.EntityID
		}
	}

	s.mu.Lock()
	if s.entityID == "" && rec.EntityID != "" {
		s.entityID = rec.EntityID
	}
	s.mu.Unlock()
	return rec
}

func (s *DraftStore) markerFromStorage(winnerSource string) string {
	parsed, ok := storagemodels.ParseKey(winnerSource)
	if !ok {
		return ""
	}
	markerKey := storagemodels.Key{
		Namespace: parsed.Namespace, EntityID: parsed.EntityID, Section: storagemodels.SectionMarker,
	}
	env, ok := s.adapter.Get(markerKey.String())
	if !ok {
		return ""
	}
	var marker string
	if err := env.DecodeValue(&marker); err != nil {
		return ""
	}
	return marker
}

// Resume derives the safe wizard step for the reconciled draft. Evaluated
// once per call; no retries.
func (s *DraftStore) Resume() wizard.Step {
	return wizard.Resolve(s.LoadDraft())
}

// Retry re-attempts the last failed write immediately, bypassing the
// debounce window.
func (s *DraftStore) Retry() {
	s.mu.Lock()
	failed := s.lastFailed
	entityID := s.ensureEntityLocked()
	s.mu.Unlock()
	if failed == nil {
		return
	}

	key := storagemodels.Key{Namespace: s.opts.Namespace, EntityID: entityID, Section: failed.section}
	res := s.quota.Write(key.String(), failed.data, 0)

	s.mu.Lock()
	if res.Success {
		s.lastSavedAt = strfmt.DateTime(s.opts.Clock())
		s.storageErr = ""
		s.lastFailed = nil
	} else {
		s.storageErr = res.Error
	}
	s.mu.Unlock()

	if res.Success {
		s.events.notify(Event{Kind: EventSaved, Section: failed.section})
	} else {
		s.events.notify(Event{Kind: EventSaveFailed, Section: failed.section, Message: res.Error})
	}
}

// Clear removes the draft and aborts every pending debounced write. Used by
// the new-proposal action.
func (s *DraftStore) Clear() {
	s.mu.Lock()
	for _, pw := range s.pending {
		pw.timer.Stop()
	}
	s.pending = make(map[string]*pendingWrite)
	entityID := s.entityID
	s.entityID = ""
	s.lastFailed = nil
	s.isSaving = false
	s.storageErr = ""
	s.mu.Unlock()

	if entityID != "" {
		prefix := storagemodels.Key{Namespace: s.opts.Namespace, EntityID: entityID}
		for _, key := range s.adapter.Enumerate(prefix.Namespace + ":" + prefix.EntityID + ":") {
			s.adapter.Remove(key)
		}
		for _, key := range s.adapter.Enumerate("file_" + entityID + "_") {
			s.adapter.Remove(key)
		}
	}
	for _, legacy := range s.opts.LegacySources {
		s.adapter.Remove(legacy.Key)
	}

	s.events.notify(Event{Kind: EventCleared})
}

// Diagnostics returns a live storage health snapshot.
func (s *DraftStore) Diagnostics() storagemodels.StorageHealthSnapshot {
	return s.quota.HealthSnapshot()
}

// Cleanup evicts expired and out-of-retention entries immediately, returning
// the number removed. The same pass runs automatically when a write hits the
// quota.
func (s *DraftStore) Cleanup() int {
	return s.quota.Cleanup()
}

// Subscribe registers a callback for persistence events. The returned
// handle must be closed when the observer goes away; Close on the store
// releases any still-open handles.
func (s *DraftStore) Subscribe(fn func(Event)) *Subscription {
	return s.events.add(fn)
}

// Close flushes pending writes and tears the session down.
func (s *DraftStore) Close() {
	s.Flush()

	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.events.closeAll()
}

// IsLoading reports whether a reconciling load is in progress.
func (s *DraftStore) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isLoading
}

// IsSaving reports whether any debounced write is pending.
func (s *DraftStore) IsSaving() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isSaving
}

// LastSavedAt reports the time of the last successful write.
func (s *DraftStore) LastSavedAt() strfmt.DateTime {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSavedAt
}

// StorageError reports the current user-facing storage failure, or empty.
func (s *DraftStore) StorageError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.storageErr
}

// Degraded reports whether the engine is skipping non-critical writes.
func (s *DraftStore) Degraded() bool {
	return s.quota.Degraded()
}
