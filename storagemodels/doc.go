/*
Package storagemodels defines the data structures shared across the draft
persistence engine.

Key Types:

Key:
The persisted identity of one wizard section payload:

	key := storagemodels.Key{
	    Namespace: "proposal_drafts",
	    EntityID:  "7f3a...",
	    Section:   storagemodels.SectionOrganization,
	}
	key.String() // "proposal_drafts:7f3a...:organization"

DraftRecord:
The aggregate view of one in-progress proposal, assembled by reconciliation
and consumed by the wizard state machine.

FileAttachmentDescriptor:
Metadata for an uploaded file field. Oversized content is dropped on write,
keeping HasData=true and Compressed=true as a tombstone:

	{Name: "flyer.pdf", Size: 482113, MimeType: "application/pdf",
	 HasData: true, Compressed: true}

EngineOptions:
Per-session configuration built through functional options:

	opts := []EngineOption{
	    WithNamespace("proposal_drafts"),
	    WithDebounce(500 * time.Millisecond),
	    WithRetention(24 * time.Hour),
	}

These types provide a consistent surface across storage backends.
*/
package storagemodels
