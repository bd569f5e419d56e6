// Package report renders check results for humans and machines.
//
// The text form prints one row per entry with an [OK], [??] or [!!] marker,
// coloured when the output is a terminal. The JSON form wraps all results
// with an overall verdict and status counts.
package report
