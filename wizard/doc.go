/*
Package wizard derives the safe step to resume the proposal wizard at from a
reconciled draft record.

The resolution is deliberately conservative: a sparse record always lands on
the overview rather than guessing a deeper step, an explicit resume marker
is only trusted once identity data (organization name and contact email) is
present, and any unrecognized marker falls back to the overview. Resolve is
a guarded one-shot evaluation with no retries.
*/
package wizard
