// Package result holds the outcome model shared by the inventory and SSH
// validators.
//
// A [Result] is an ordered accumulator of [Entry] values. Validators never
// stop at the first defect: every checked subject is appended exactly once
// with a PASS, WARN or FAIL status, and [Result.OK] reports whether the run
// produced zero FAIL entries.
package result
