/*
Package adapter wraps the key/value primitive behind a capability probe.

On first use the adapter writes, reads back and removes a probe key. If any
step fails, every later operation becomes a no-op reporting failure with the
stable "storage not supported" sentinel; nothing in this package panics or
propagates a backend panic.

The read path self-heals: a stored value that fails envelope decoding is
removed before Get reports the key absent, so one corrupt write can never
wedge a draft.
*/
package adapter
