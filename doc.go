/*
Package draftstore keeps partially-filled proposal wizard data durable
across reloads and crashes, survives storage-quota exhaustion, reconciles
overlapping legacy snapshots of the same draft, and decides safely which
wizard step to resume at.

The engine is layered leaf-first:
  - kvstore: the persistent key/value primitive contract, with in-memory,
    SQLite and DynamoDB backends
  - adapter: capability probe, never-throw result objects, self-healing reads
  - envelope: the timestamped, versioned wrapper around every stored value
  - quota: lossy file-content compression, retention cleanup, retry-once
    writes under a byte budget
  - reconcile: scoring and selection of the canonical draft snapshot
  - wizard: guarded derivation of the safe resume step
  - recovery: failure classification and recovery strategies

Basic Usage:

	kv, _ := sqlitekv.Open("drafts.db")
	store := draftstore.New(kv,
	    storagemodels.WithNamespace("proposal_drafts"),
	    storagemodels.WithDebounce(500*time.Millisecond),
	)
	defer store.Close()

	// Debounced; rapid saves for one section coalesce into one write
	_ = store.Save("organization", map[string]any{
	    "organizationName": "Acme",
	    "contactEmail":     "dana@acme.org",
	})

	// On reload: reconcile snapshots and resume at the safe step
	step := store.Resume()

Nothing in this package is fatal: when the primitive is missing, blocked or
full beyond repair, the engine degrades to no persistence and the wizard
keeps working in memory.
*/
package draftstore
