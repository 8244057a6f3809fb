/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package storagemodels

import (
	"strings"

	"github.com/go-openapi/strfmt"
)

// Key identifies one persisted section payload. Keys are unique per
// namespace/entity/section triple; writing to an existing key overwrites it.
type Key struct {
	Namespace string
	EntityID  string
	Section   string
}

// String renders the persisted form "<namespace>:<entityId>:<section>".
func (k Key) String() string {
	return k.Namespace + ":" + k.EntityID + ":" + k.Section
}

// ParseKey parses a persisted key back into its triple. The reported ok is
// false for keys that do not follow the section-payload convention.
func ParseKey(s string) (Key, bool) {
	parts := strings.SplitN(s, ":", 3)
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return Key{}, false
	}
	return Key{Namespace: parts[0], EntityID: parts[1], Section: parts[2]}, true
}

// FileKey renders the persisted key for a file attachment descriptor,
// "file_<entityId>_<fieldName>".
func FileKey(entityID, fieldName string) string {
	return "file_" + entityID + "_" + fieldName
}

// IsFileKey reports whether a persisted key names a file descriptor.
func IsFileKey(s string) bool {
	return strings.HasPrefix(s, "file_")
}

// Well-known section names used by the proposal wizard.
const (
	SectionOrganization = "organization"
	SectionEventType    = "eventType"
	SectionSchoolEvent  = "schoolEvent"
	SectionCommunity    = "communityEvent"
	SectionReporting    = "reporting"
	SectionMarker       = "currentSection"
)

// DraftRecord is the aggregate view of one in-progress proposal. The facade
// owns the record; callers receive copies and never mutate stored state
// directly.
type DraftRecord struct {
	EntityID         string                    `json:"entityId,omitempty"`
	OrganizationName string                    `json:"organizationName,omitempty"`
	ContactName      string                    `json:"contactName,omitempty"`
	ContactEmail     string                    `json:"contactEmail,omitempty"`
	ContactPhone     string                    `json:"contactPhone,omitempty"`
	EventType        string                    `json:"eventType,omitempty"`
	Sections         map[string]map[string]any `json:"sections,omitempty"`
	CurrentSection   string                    `json:"currentSection,omitempty"`
	Completed        map[string]bool           `json:"completed,omitempty"`
}

// PopulatedFieldCount counts the non-empty top-level fields of the record.
// Section payload maps count once each when non-empty.
func (r *DraftRecord) PopulatedFieldCount() int {
	if r == nil {
		return 0
	}
	n := 0
	for _, s := range []string{
		r.EntityID, r.OrganizationName, r.ContactName,
		r.ContactEmail, r.ContactPhone, r.EventType, r.CurrentSection,
	} {
		if s != "" {
			n++
		}
	}
	for _, payload := range r.Sections {
		if len(payload) > 0 {
			n++
		}
	}
	for _, done := range r.Completed {
		if done {
			n++
		}
	}
	return n
}

// IsEmpty reports whether the record holds no populated fields at all.
func (r *DraftRecord) IsEmpty() bool {
	return r.PopulatedFieldCount() == 0
}

// FileAttachmentDescriptor describes one uploaded file field. When Size
// exceeds the compression threshold the stored form keeps the metadata and
// drops DataURL entirely (Compressed=true, HasData=true). The reduction is
// lossy by design; raw bytes are never recoverable from storage.
type FileAttachmentDescriptor struct {
	Name       string `json:"name"`
	Size       int64  `json:"size"`
	MimeType   string `json:"mimeType"`
	HasData    bool   `json:"hasData"`
	Compressed bool   `json:"compressed"`
	DataURL    string `json:"dataUrl,omitempty"`
}

// KeyCounts breaks persisted keys down by category.
type KeyCounts struct {
	FormData int `json:"formData"`
	FileData int `json:"fileData"`
	Other    int `json:"other"`
}

// StorageHealthSnapshot reports live storage usage. Snapshots are recomputed
// on every request and never cached across calls.
type StorageHealthSnapshot struct {
	TotalBytesUsed int64           `json:"totalBytesUsed"`
	MaxBytes       int64           `json:"maxBytes"`
	PercentUsed    float64         `json:"percentUsed"`
	KeyCounts      KeyCounts       `json:"keyCounts"`
	GeneratedAt    strfmt.DateTime `json:"generatedAt"`
}

// SetResult reports the outcome of a single adapter write.
type SetResult struct {
	Success      bool
	BytesWritten int
	Err          error
}

// WriteResult reports the outcome of a managed write, after any cleanup and
// retry. Error carries the stable user-facing message; OriginalError preserves
// the raw backend error name for diagnostics and is never shown verbatim to
// users.
type WriteResult struct {
	Success       bool
	BytesWritten  int
	Error         string
	OriginalError string
	Type          string
	Err           error
}
