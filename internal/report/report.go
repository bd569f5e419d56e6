package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/imamik/preflight/internal/result"
)

// Options controls text rendering.
type Options struct {
	// Color enables lipgloss styling.
	Color bool
	// Quiet hides PASS rows.
	Quiet bool
}

// Printer writes human-readable reports.
type Printer struct {
	w     io.Writer
	opts  Options
	style styles
}

// NewPrinter creates a Printer writing to w.
func NewPrinter(w io.Writer, opts Options) *Printer {
	return &Printer{w: w, opts: opts, style: newStyles(w, opts.Color)}
}

// IsTerminal reports whether f is an interactive terminal.
func IsTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Result prints a header, one row per entry and a summary line.
func (p *Printer) Result(res *result.Result) {
	p.header(res.Title)

	rows := res.Entries
	if p.opts.Quiet {
		rows = nil
		for _, e := range res.Entries {
			if e.Status != result.StatusPass {
				rows = append(rows, e)
			}
		}
	}

	subjectW, fieldW := 0, 0
	for _, e := range rows {
		subjectW = max(subjectW, len(e.Subject))
		fieldW = max(fieldW, len(e.Field))
	}
	for _, e := range rows {
		p.row(e, subjectW, fieldW)
	}
	if len(rows) > 0 {
		p.printf("\n")
	}
	p.printf("  %s\n\n", p.summary(res))
}

// Hints prints suggested commands under a heading. Nothing is printed when
// hints is empty.
func (p *Printer) Hints(hints []string) {
	if len(hints) == 0 {
		return
	}
	p.printf("  %s\n", p.style.render(p.style.title, "To fix:"))
	for _, h := range hints {
		p.printf("    %s\n", p.style.render(p.style.hint, h))
	}
	p.printf("\n")
}

func (p *Printer) header(title string) {
	p.printf("  %s\n", p.style.render(p.style.title, title))
	p.printf("  %s\n\n", strings.Repeat("═", len([]rune(title))))
}

func (p *Printer) row(e result.Entry, subjectW, fieldW int) {
	line := fmt.Sprintf("  %s  %-*s  %-*s  %s", p.style.marker(e.Status), subjectW, e.Subject, fieldW, e.Field, e.Message)
	if e.Line > 0 {
		line += " " + p.style.render(p.style.dim, fmt.Sprintf("(line %d)", e.Line))
	}
	p.printf("%s\n", strings.TrimRight(line, " "))
}

func (p *Printer) summary(res *result.Result) string {
	s := Summarize(res)
	text := fmt.Sprintf("%d passed, %d warning(s), %d failed", s.Pass, s.Warn, s.Fail)
	if s.Fail > 0 {
		return p.style.render(p.style.fail, "FAILED: "+text)
	}
	return p.style.render(p.style.pass, "OK: "+text)
}

func (p *Printer) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(p.w, format, args...)
}

// Summary counts entries by status.
type Summary struct {
	Pass int `json:"pass"`
	Warn int `json:"warn"`
	Fail int `json:"fail"`
}

// Summarize counts the entries of all results.
func Summarize(results ...*result.Result) Summary {
	var s Summary
	for _, r := range results {
		s.Pass += r.Count(result.StatusPass)
		s.Warn += r.Count(result.StatusWarn)
		s.Fail += r.Count(result.StatusFail)
	}
	return s
}

// Document is the JSON report.
type Document struct {
	OK      bool             `json:"ok"`
	Summary Summary          `json:"summary"`
	Results []*result.Result `json:"results"`
	Hints   []string         `json:"hints,omitempty"`
}

// WriteJSON writes results, and any remediation hints, as indented JSON.
func WriteJSON(w io.Writer, hints []string, results ...*result.Result) error {
	doc := Document{
		OK:      true,
		Summary: Summarize(results...),
		Results: results,
		Hints:   hints,
	}
	for _, r := range results {
		doc.OK = doc.OK && r.OK()
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	if _, err := fmt.Fprintln(w, string(data)); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
