/*
Package quota makes draft writes succeed under a storage byte budget.

The write path is compress → estimate → set. Compression here is not generic
compression: fields shaped like file attachment descriptors whose content
exceeds the threshold are replaced by their metadata-only form, dropping the
raw bytes for good. When the primitive still reports quota exhaustion, the
manager runs one retention cleanup pass over the known namespaces and retries
the write exactly once.

Failure semantics:

  - quota exhaustion after retry: user-facing "storage quota exceeded" with
    the raw backend error name preserved separately for diagnostics
  - security/permission denial: "storage access blocked", never retried
  - two consecutive failed cleanup cycles: degraded mode, where only the
    resume-position marker key is still attempted

The manager also produces on-demand StorageHealthSnapshots for diagnostics.
*/
package quota
