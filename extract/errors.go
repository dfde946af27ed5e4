package extract

import (
	"fmt"
	"strings"
)

// MalformedOutputError reports model output that could not be parsed as JSON
// after sanitization. It carries the sanitized text for diagnostics. Given
// nonzero sampling temperature this can be transient; a bounded retry is
// reasonable.
type MalformedOutputError struct {
	Raw string
	Err error
}

func (e *MalformedOutputError) Error() string {
	return fmt.Sprintf("model output is not valid JSON: %v", e.Err)
}

func (e *MalformedOutputError) Unwrap() error { return e.Err }

// SchemaViolationError reports well-formed JSON that failed required-field or
// enum checks. Fields lists the offending instance locations. The object is
// rejected in its entirety; no partially-populated result is ever returned.
type SchemaViolationError struct {
	Fields []string
	Err    error
}

func (e *SchemaViolationError) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("lab summary violates schema: %v", e.Err)
	}
	return fmt.Sprintf("lab summary violates schema at %s", strings.Join(e.Fields, ", "))
}

func (e *SchemaViolationError) Unwrap() error { return e.Err }
