/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package reconcile

import (
	"encoding/json"

	"github.com/suparena/draftstore/envelope"
	"github.com/suparena/draftstore/storagemodels"
)

// Scoring weights. Identity fields (who/what) dominate the structural marker
// (where), which dominates raw field volume: losing the user's organization
// or contact entry is the worst outcome to avoid.
const (
	weightOrganizationName = 10
	weightContactEmail     = 10
	weightEntityID         = 5
	weightSectionMarker    = 1
)

// Field name aliases accumulated across persistence scheme generations.
var (
	organizationNameKeys = []string{"organizationName", "orgName", "organization_name"}
	contactEmailKeys     = []string{"contactEmail", "email", "contact_email"}
	entityIDKeys         = []string{"entityId", "proposalId", "draftId", "proposal_id"}
	sectionMarkerKeys    = []string{"currentSection", "current_section", "currentStep"}
)

// Candidate is one tagged snapshot of a draft: the key it was read from and
// its decoded top-level fields. Reconciliation is a pure function over a
// finite list of candidates, independent of how many legacy key names exist.
type Candidate struct {
	Source string
	Fields map[string]any
}

// Parse decodes one stored value into a candidate. Current-scheme values are
// envelopes; legacy snapshots may be bare JSON objects. Values that decode
// to neither are skipped by the caller (absent, not zero-score).
func Parse(source, raw string) (Candidate, bool) {
	if env, err := envelope.Decode(source, raw); err == nil {
		var fields map[string]any
		if err := env.DecodeValue(&fields); err == nil {
			return Candidate{Source: source, Fields: fields}, true
		}
		return Candidate{}, false
	}

	var fields map[string]any
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return Candidate{}, false
	}
	return Candidate{Source: source, Fields: fields}, true
}

// Score rates how much recoverable draft state a candidate holds.
func Score(c Candidate) int {
	score := 0
	if hasAny(c.Fields, organizationNameKeys) {
		score += weightOrganizationName
	}
	if hasAny(c.Fields, contactEmailKeys) {
		score += weightContactEmail
	}
	if hasAny(c.Fields, entityIDKeys) {
		score += weightEntityID
	}
	if hasAny(c.Fields, sectionMarkerKeys) {
		score += weightSectionMarker
	}
	score += bonusCount(c.Fields)
	return score
}

// Select picks the canonical candidate: highest score wins, ties keep the
// first-scanned candidate. ok is false when the list is empty.
func Select(cands []Candidate) (best Candidate, bestScore int, ok bool) {
	for _, c := range cands {
		s := Score(c)
		if !ok || s > bestScore {
			best, bestScore, ok = c, s, true
		}
	}
	return best, bestScore, ok
}

// ToDraftRecord projects the canonical candidate onto the aggregate draft
// record consumed by the wizard state machine.
func ToDraftRecord(c Candidate) storagemodels.DraftRecord {
	rec := storagemodels.DraftRecord{
		EntityID:         firstString(c.Fields, entityIDKeys),
		OrganizationName: firstString(c.Fields, organizationNameKeys),
		ContactName:      firstString(c.Fields, []string{"contactName", "contact_name"}),
		ContactEmail:     firstString(c.Fields, contactEmailKeys),
		ContactPhone:     firstString(c.Fields, []string{"contactPhone", "phone", "contact_phone"}),
		EventType:        firstString(c.Fields, []string{"eventType", "event_type", "selectedEventType"}),
		CurrentSection:   firstString(c.Fields, sectionMarkerKeys),
	}

	if raw, ok := c.Fields["sections"].(map[string]any); ok {
		rec.Sections = make(map[string]map[string]any, len(raw))
		for name, payload := range raw {
			if m, ok := payload.(map[string]any); ok {
				rec.Sections[name] = m
			}
		}
	}
	if raw, ok := c.Fields["completed"].(map[string]any); ok {
		rec.Completed = make(map[string]bool, len(raw))
		for name, flag := range raw {
			if b, ok := flag.(bool); ok {
				rec.Completed[name] = b
			}
		}
	}
	return rec
}

func hasAny(fields map[string]any, keys []string) bool {
	for _, k := range keys {
		if populated(fields[k]) {
			return true
		}
	}
	return false
}

func firstString(fields map[string]any, keys []string) string {
	for _, k := range keys {
		if s, ok := fields[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// bonusCount counts populated top-level fields as a tie-breaker. Fields the
// weighted checks already credit are excluded so identity data is never
// counted twice.
func bonusCount(fields map[string]any) int {
	weighted := make(map[string]bool)
	for _, keys := range [][]string{
		organizationNameKeys, contactEmailKeys, entityIDKeys, sectionMarkerKeys,
	} {
		for _, k := range keys {
			weighted[k] = true
		}
	}

	n := 0
	for k, v := range fields {
		if !weighted[k] && populated(v) {
			n++
		}
	}
	return n
}

func populated(v any) bool {
	switch tv := v.(type) {
	case nil:
		return false
	case string:
		return tv != ""
	case map[string]any:
		return len(tv) > 0
	case []any:
		return len(tv) > 0
	default:
		return true
	}
}
