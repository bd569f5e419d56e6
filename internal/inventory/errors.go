package inventory

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

var errEmptyDocument = errors.New("document is empty")

var (
	lineRe   = regexp.MustCompile(`line (\d+)`)
	columnRe = regexp.MustCompile(`column (\d+)`)
)

// ParseError reports an inventory that could not be read or is not
// well-formed YAML. It aborts the run before any check executes.
type ParseError struct {
	Path   string
	Line   int // 0 when the parser gave no position
	Column int // 0 when the parser gave no position
	Err    error
}

func (e *ParseError) Error() string {
	switch {
	case e.Line > 0 && e.Column > 0:
		return fmt.Sprintf("failed to parse inventory %s at line %d, column %d: %v", e.Path, e.Line, e.Column, e.Err)
	case e.Line > 0:
		return fmt.Sprintf("failed to parse inventory %s at line %d: %v", e.Path, e.Line, e.Err)
	default:
		return fmt.Sprintf("failed to parse inventory %s: %v", e.Path, e.Err)
	}
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// newParseError extracts the position the YAML parser embeds in its message.
func newParseError(path string, err error) *ParseError {
	pe := &ParseError{Path: path, Err: err}
	msg := err.Error()
	if m := lineRe.FindStringSubmatch(msg); m != nil {
		pe.Line, _ = strconv.Atoi(m[1])
	}
	if m := columnRe.FindStringSubmatch(msg); m != nil {
		pe.Column, _ = strconv.Atoi(m[1])
	}
	return pe
}
