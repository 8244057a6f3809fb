/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package wizard

import (
	"github.com/suparena/draftstore/storagemodels"
)

// Step is one state of the proposal wizard.
type Step string

const (
	StepOverview           Step = "overview"
	StepEventTypeSelection Step = "eventTypeSelection"
	StepOrganizationInfo   Step = "organizationInfo"
	StepSchoolEvent        Step = "schoolEvent"
	StepCommunityEvent     Step = "communityEvent"
	StepReporting          Step = "reporting"
	StepSubmitted          Step = "submitted"
)

// trivialFieldThreshold is the populated-field count at or below which a
// record is too sparse to justify resuming past the overview.
const trivialFieldThreshold = 2

// stepOrder fixes the wizard's forward progression.
var stepOrder = map[Step]int{
	StepOverview:           0,
	StepEventTypeSelection: 1,
	StepOrganizationInfo:   2,
	StepSchoolEvent:        3,
	StepCommunityEvent:     3,
	StepReporting:          4,
	StepSubmitted:          5,
}

// markerSteps maps persisted currentSection markers, across scheme
// generations, onto steps. Unrecognized markers resolve to nothing and the
// caller falls back to the overview.
var markerSteps = map[string]Step{
	"overview":           StepOverview,
	"eventType":          StepEventTypeSelection,
	"eventTypeSelection": StepEventTypeSelection,
	"organization":       StepOrganizationInfo,
	"organizationInfo":   StepOrganizationInfo,
	"schoolEvent":        StepSchoolEvent,
	"communityEvent":     StepCommunityEvent,
	"reporting":          StepReporting,
	"submitted":          StepSubmitted,
}

// ParseStep resolves a persisted section marker to a step.
func ParseStep(marker string) (Step, bool) {
	s, ok := markerSteps[marker]
	return s, ok
}

// Terminal reports whether the step ends the wizard.
func (s Step) Terminal() bool {
	return s == StepSubmitted
}

// After reports whether s comes after other in the wizard flow.
func (s Step) After(other Step) bool {
	return stepOrder[s] > stepOrder[other]
}

// requiresEventType reports whether the step assumes an event type has been
// selected.
func requiresEventType(s Step) bool {
	return s.After(StepEventTypeSelection)
}

// requiresOrgInfo reports whether the step assumes organization info has
// been entered.
func requiresOrgInfo(s Step) bool {
	return s.After(StepOrganizationInfo)
}

// Resolve derives the safe step to resume at from a reconciled draft record.
// It is a guarded, one-shot evaluation: called once per load and once after
// every reconciliation, with no loops or retries.
func Resolve(rec storagemodels.DraftRecord) Step {
	// Too little data to justify guessing a deeper step.
	if rec.PopulatedFieldCount() <= trivialFieldThreshold {
		return StepOverview
	}

	marked, recognized := ParseStep(rec.CurrentSection)

	hasIdentity := rec.OrganizationName != "" && rec.ContactEmail != ""

	// An explicit marker is trusted once identity data exists.
	if hasIdentity && recognized && marked.After(StepOverview) {
		return marked
	}

	if recognized && requiresEventType(marked) && rec.EventType == "" {
		return StepEventTypeSelection
	}
	if recognized && requiresOrgInfo(marked) && !hasIdentity {
		return StepOrganizationInfo
	}

	// Safe default for any unrecognized or trivial marker.
	return StepOverview
}
