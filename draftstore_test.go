/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package draftstore

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/suparena/draftstore/kvstore/memkv"
	"github.com/suparena/draftstore/storagemodels"
	"github.com/suparena/draftstore/wizard"
)

// newTestStore disables the debounce timer so writes persist only through
// Flush; tests that exercise the timer itself override the interval.
func newTestStore(kv *memkv.Store, opts ...storagemodels.EngineOption) *DraftStore {
	base := []storagemodels.EngineOption{
		storagemodels.WithDebounce(time.Hour),
	}
	return New(kv, append(base, opts...)...)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("Condition not met before deadline")
}

func TestSaveLoadRoundTrip(t *testing.T) {
	kv := memkv.New()
	s := newTestStore(kv)
	defer s.Close()

	payload := map[string]any{
		"organizationName": "Acme",
		"contactEmail":     "dana@acme.org",
		"notes":            map[string]any{"internal": "call back tuesday"},
		"confirmed":        true,
	}

	if err := s.Save("organization", payload); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	s.Flush()

	got, err := s.Load("organization")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !reflect.DeepEqual(got, payload) {
		t.Errorf("Round trip mismatch:\n got %v\nwant %v", got, payload)
	}

	if s.StorageError() != "" {
		t.Errorf("Unexpected storage error: %q", s.StorageError())
	}
	if time.Time(s.LastSavedAt()).IsZero() {
		t.Error("LastSavedAt should be set after a successful flush")
	}
}

func TestLoadAbsentSection(t *testing.T) {
	s := newTestStore(memkv.New())
	defer s.Close()

	got, err := s.Load("reporting")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got != nil {
		t.Errorf("Absent section must load as nil, got %v", got)
	}
}

func TestDebounceCoalescing(t *testing.T) {
	kv := memkv.New()
	s := newTestStore(kv, storagemodels.WithDebounce(10*time.Millisecond))
	defer s.Close()

	if err := s.Save("organization", map[string]any{"name": "Acme"}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := s.Save("organization", map[string]any{"name": "Acme Corp"}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	waitFor(t, func() bool { return !s.IsSaving() })

	// Exactly one persisted write for the section: the probe, the section
	// key and the resume marker account for all primitive writes.
	if got := kv.SetCalls(); got != 3 {
		t.Errorf("Expected 3 primitive writes (probe, section, marker), got %d", got)
	}

	got, err := s.Load("organization")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got["name"] != "Acme Corp" {
		t.Errorf("Last edit must win, got %v", got)
	}
}

func TestReconciliationPrefersIdentityRichSnapshot(t *testing.T) {
	kv := memkv.New()

	// A sparse modern candidate and a rich legacy one
	legacy := `{"organizationName":"Acme","contactEmail":"a@b.com","x":1,"y":2,"z":3}`
	if err := kv.SetItem("eventProposalData", legacy); err != nil {
		t.Fatalf("SetItem failed: %v", err)
	}
	if err := kv.SetItem("proposal_drafts:d9:reporting",
		`{"value":{"foo":1,"bar":2},"timestamp":99,"schemaVersion":"2"}`); err != nil {
		t.Fatalf("SetItem failed: %v", err)
	}
	// A corrupt candidate is skipped, not scored at zero
	if err := kv.SetItem("oldDraftBackup", "{truncated"); err != nil {
		t.Fatalf("SetItem failed: %v", err)
	}

	s := newTestStore(kv, storagemodels.WithLegacySources(
		storagemodels.LegacySource{Source: "eventProposalData", Key: "eventProposalData"},
		storagemodels.LegacySource{Source: "oldDraftBackup", Key: "oldDraftBackup"},
	))
	defer s.Close()

	rec := s.LoadDraft()
	if rec.OrganizationName != "Acme" || rec.ContactEmail != "a@b.com" {
		t.Errorf("Expected the identity-rich legacy snapshot to win, got %+v", rec)
	}
}

func TestResumeSafeStart(t *testing.T) {
	kv := memkv.New()
	// Sparse snapshot with a deep marker: never trust it
	if err := kv.SetItem("eventProposalData",
		`{"foo":1,"currentSection":"reporting"}`); err != nil {
		t.Fatalf("SetItem failed: %v", err)
	}

	s := newTestStore(kv, storagemodels.WithLegacySources(
		storagemodels.LegacySource{Source: "eventProposalData", Key: "eventProposalData"},
	))
	defer s.Close()

	if step := s.Resume(); step != wizard.StepOverview {
		t.Errorf("Sparse draft must resume at overview, got %q", step)
	}
}

func TestResumeGuarded(t *testing.T) {
	kv := memkv.New()
	if err := kv.SetItem("eventProposalData",
		`{"organizationName":"Acme","contactEmail":"dana@acme.org","currentSection":"schoolEvent"}`); err != nil {
		t.Fatalf("SetItem failed: %v", err)
	}

	s := newTestStore(kv, storagemodels.WithLegacySources(
		storagemodels.LegacySource{Source: "eventProposalData", Key: "eventProposalData"},
	))
	defer s.Close()

	if step := s.Resume(); step != wizard.StepSchoolEvent {
		t.Errorf("Draft with identity and marker must resume at schoolEvent, got %q", step)
	}
}

func TestResumeAcrossSessions(t *testing.T) {
	kv := memkv.New()

	first := newTestStore(kv)
	if err := first.Save("organization", map[string]any{
		"organizationName": "Acme",
		"contactEmail":     "dana@acme.org",
		"contactPhone":     "555-0100",
	}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	first.Close()

	// A fresh session over the same primitive adopts the stored draft
	second := newTestStore(kv)
	defer second.Close()

	rec := second.LoadDraft()
	if rec.OrganizationName != "Acme" {
		t.Fatalf("Expected stored draft to reconcile, got %+v", rec)
	}
	if rec.EntityID != first.EntityID() {
		t.Errorf("Entity id must carry across sessions: %q vs %q", rec.EntityID, first.EntityID())
	}
	if step := second.Resume(); step != wizard.StepOrganizationInfo {
		t.Errorf("Expected resume at the marked organization step, got %q", step)
	}
}

func TestRetryAfterQuotaFailure(t *testing.T) {
	kv := memkv.New()
	s := newTestStore(kv)
	defer s.Close()

	// Force the capability probe before injecting failures
	_ = s.Diagnostics()

	kv.WithFailNext(2) // original attempt + the one retry
	if err := s.Save("organization", map[string]any{"name": "Acme"}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	s.Flush()

	if !strings.Contains(s.StorageError(), "quota") {
		t.Fatalf("Expected surfaced quota error, got %q", s.StorageError())
	}
	if strings.Contains(s.StorageError(), "QuotaExceededError") {
		t.Error("Surfaced error must not leak the raw backend token")
	}

	s.Retry()

	if s.StorageError() != "" {
		t.Errorf("Retry should clear the storage error, got %q", s.StorageError())
	}
	got, err := s.Load("organization")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got["name"] != "Acme" {
		t.Errorf("Retried write lost data: %v", got)
	}
}

func TestClear(t *testing.T) {
	kv := memkv.New()
	if err := kv.SetItem("eventProposalData", `{"orgName":"Old"}`); err != nil {
		t.Fatalf("SetItem failed: %v", err)
	}

	s := newTestStore(kv, storagemodels.WithLegacySources(
		storagemodels.LegacySource{Source: "eventProposalData", Key: "eventProposalData"},
	))
	defer s.Close()

	if err := s.Save("organization", map[string]any{"name": "Acme"}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	s.Flush()

	s.Clear()

	if got, _ := s.Load("organization"); got != nil {
		t.Errorf("Cleared draft must not load, got %v", got)
	}
	if _, ok := kv.GetItem("eventProposalData"); ok {
		t.Error("Clear must remove legacy snapshots too")
	}
	if rec := s.LoadDraft(); !rec.IsEmpty() {
		t.Errorf("Expected empty record after clear, got %+v", rec)
	}
}

func TestClearAbortsPendingWrites(t *testing.T) {
	kv := memkv.New()
	s := newTestStore(kv)
	defer s.Close()

	if err := s.Save("organization", map[string]any{"name": "Acme"}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if !s.IsSaving() {
		t.Error("IsSaving should be true while a write is pending")
	}
	s.Clear()

	if s.IsSaving() {
		t.Error("Clear must abort pending writes")
	}
	if got, _ := s.Load("organization"); got != nil {
		t.Errorf("Aborted write must not persist, got %v", got)
	}
}

func TestSubscription(t *testing.T) {
	s := newTestStore(memkv.New())
	defer s.Close()

	var events []Event
	sub := s.Subscribe(func(ev Event) { events = append(events, ev) })

	if err := s.Save("organization", map[string]any{"name": "Acme"}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	s.Flush()

	if len(events) != 1 || events[0].Kind != EventSaved || events[0].Section != "organization" {
		t.Fatalf("Expected one saved event, got %v", events)
	}

	// Released handles receive nothing further
	sub.Close()
	s.Clear()
	if len(events) != 1 {
		t.Errorf("Closed subscription must not receive events, got %v", events)
	}
}

func TestDiagnostics(t *testing.T) {
	s := newTestStore(memkv.New(), storagemodels.WithMaxBytes(10*1024))
	defer s.Close()

	if err := s.Save("organization", map[string]any{"name": "Acme"}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	s.Flush()

	snap := s.Diagnostics()
	// The section payload plus the resume marker
	if snap.KeyCounts.FormData != 2 {
		t.Errorf("Expected 2 form keys, got %+v", snap.KeyCounts)
	}
	if snap.TotalBytesUsed == 0 || snap.PercentUsed == 0 {
		t.Errorf("Expected live usage numbers, got %+v", snap)
	}
}

func TestNoPersistenceDegradation(t *testing.T) {
	// No primitive at all: the wizard must stay usable with no persistence
	s := newTestStore(nil)
	defer s.Close()

	if err := s.Save("organization", map[string]any{"name": "Acme"}); err != nil {
		t.Fatalf("Save must not fail fatally: %v", err)
	}
	s.Flush()

	if s.StorageError() != "storage not supported" {
		t.Errorf("Expected stable unsupported error, got %q", s.StorageError())
	}
	if got, _ := s.Load("organization"); got != nil {
		t.Errorf("Nothing can load without a primitive, got %v", got)
	}
	if step := s.Resume(); step != wizard.StepOverview {
		t.Errorf("Resume without storage must default to overview, got %q", step)
	}
}

func TestSaveValidation(t *testing.T) {
	s := newTestStore(memkv.New())
	defer s.Close()

	if err := s.Save("", map[string]any{}); err == nil {
		t.Error("Empty section must be rejected")
	}
	if err := s.Save("organization", nil); err == nil {
		t.Error("Nil payload must be rejected")
	}

	s.Close()
	if err := s.Save("organization", map[string]any{"a": 1}); err == nil {
		t.Error("Saving through a closed session must be rejected")
	}
}
