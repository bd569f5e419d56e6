package result

import (
	"cmp"
	"slices"
)

// Status is the outcome of a single check.
type Status string

const (
	// StatusPass means the check succeeded.
	StatusPass Status = "PASS"
	// StatusWarn flags a deviation that does not fail the run.
	StatusWarn Status = "WARN"
	// StatusFail marks a defect; any FAIL makes the run unsuccessful.
	StatusFail Status = "FAIL"
)

// Reason classifies why an entry was not a plain PASS.
type Reason string

const (
	ReasonMissingField              Reason = "MissingField"
	ReasonMissingGroup              Reason = "MissingGroup"
	ReasonPlaceholderNotSubstituted Reason = "PlaceholderNotSubstituted"
	ReasonInvalidAddressFormat      Reason = "InvalidAddressFormat"
	ReasonDuplicateAddress          Reason = "DuplicateAddress"
	ReasonDuplicateHost             Reason = "DuplicateHost"
	ReasonOutsideNetwork            Reason = "OutsideNetwork"
	ReasonEmptyGroup                Reason = "EmptyGroup"
	ReasonRecommended               Reason = "Recommended"
	ReasonUnreachable               Reason = "Unreachable"
	ReasonUntrustedHostKey          Reason = "UntrustedHostKey"
	ReasonKeyAbsent                 Reason = "KeyAbsent"
	ReasonToolMissing               Reason = "ToolMissing"
)

// Entry is one tagged check outcome.
type Entry struct {
	// Subject is the host name, group or section the check is about.
	Subject string `json:"subject"`
	// Field is the dotted document path or check name, if any.
	Field   string `json:"field,omitempty"`
	Status  Status `json:"status"`
	Reason  Reason `json:"reason,omitempty"`
	Message string `json:"message"`
	// Line is the 1-based source line for document checks, 0 when unknown.
	Line int `json:"line,omitempty"`
}

// Result is an ordered sequence of check outcomes.
type Result struct {
	Title   string  `json:"title"`
	Entries []Entry `json:"entries"`
}

// New creates an empty result with the given title.
func New(title string) *Result {
	return &Result{Title: title, Entries: []Entry{}}
}

// Add appends an entry.
func (r *Result) Add(e Entry) {
	r.Entries = append(r.Entries, e)
}

// Pass appends a PASS entry.
func (r *Result) Pass(subject, field, msg string) {
	r.Add(Entry{Subject: subject, Field: field, Status: StatusPass, Message: msg})
}

// Warn appends a WARN entry.
func (r *Result) Warn(subject, field string, reason Reason, msg string) {
	r.Add(Entry{Subject: subject, Field: field, Status: StatusWarn, Reason: reason, Message: msg})
}

// Fail appends a FAIL entry.
func (r *Result) Fail(subject, field string, reason Reason, msg string) {
	r.Add(Entry{Subject: subject, Field: field, Status: StatusFail, Reason: reason, Message: msg})
}

// Merge appends all entries of other, keeping their order.
func (r *Result) Merge(other *Result) {
	if other == nil {
		return
	}
	r.Entries = append(r.Entries, other.Entries...)
}

// SortBySubject orders entries by subject. Entries of the same subject keep
// their relative order.
func (r *Result) SortBySubject() {
	slices.SortStableFunc(r.Entries, func(a, b Entry) int {
		return cmp.Compare(a.Subject, b.Subject)
	})
}

// Count returns the number of entries with the given status.
func (r *Result) Count(s Status) int {
	n := 0
	for _, e := range r.Entries {
		if e.Status == s {
			n++
		}
	}
	return n
}

// Failures returns the FAIL entries in order.
func (r *Result) Failures() []Entry {
	return r.filter(StatusFail)
}

// Warnings returns the WARN entries in order.
func (r *Result) Warnings() []Entry {
	return r.filter(StatusWarn)
}

// OK reports whether the result contains no FAIL entries.
// WARN entries do not affect success.
func (r *Result) OK() bool {
	return r.Count(StatusFail) == 0
}

func (r *Result) filter(s Status) []Entry {
	var out []Entry
	for _, e := range r.Entries {
		if e.Status == s {
			out = append(out, e)
		}
	}
	return out
}
