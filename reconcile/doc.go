/*
Package reconcile selects the canonical draft snapshot among several
overlapping candidates.

Because the wizard's persistence scheme evolved, differently-named keys may
simultaneously hold snapshots of the same draft. Each candidate is a tagged
record of its source key and decoded fields; scoring weighs identity fields
over the structural resume marker over raw field volume. Candidates that
fail to decode are treated as absent rather than scored at zero.

The whole package is pure: no I/O, no clock, no state.
*/
package reconcile
