/*
Package errors provides semantic error types for the draft persistence engine.

The package defines sentinel errors for the storage failure taxonomy along with
typed errors carrying diagnostic context. Typed errors implement Is so they match
their sentinel with errors.Is:

	res := mgr.Write(ctx, key, value, ttl)
	if errors.IsQuotaExceeded(res.Err) {
	    // cleanup + retry already happened; surface the degraded state
	}

QuotaError deliberately separates the user-facing message from the raw backend
exception name: Error() returns a stable string while the Raw field preserves the
original token for diagnostics only.
*/
package errors
