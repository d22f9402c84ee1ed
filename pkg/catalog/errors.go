package catalog

import (
	"fmt"
	"strings"
)

// ErrorType categorizes a catalog error.
type ErrorType string

const (
	ErrorTypeSyntax     ErrorType = "syntax"     // document is not valid YAML or JSON
	ErrorTypeStructural ErrorType = "structural" // wrong shape, bad or duplicate name
	ErrorTypeFormula    ErrorType = "formula"    // formula text does not parse
	ErrorTypeIO         ErrorType = "io"         // file could not be read
)

// Error is one located catalog problem.
type Error struct {
	Type    ErrorType
	File    string // empty when parsing bytes
	Name    string // formula name, when the error belongs to an entry
	Line    int    // 1-based, 0 when unknown
	Column  int    // 1-based, 0 when unknown
	Message string
	Err     error // underlying error, e.g. *formula.SyntaxError
}

// Error implements the error interface.
func (e *Error) Error() string {
	var sb strings.Builder
	if loc := e.location(); loc != "" {
		sb.WriteString(loc)
		sb.WriteString(": ")
	}
	fmt.Fprintf(&sb, "[%s] ", e.Type)
	if e.Name != "" {
		fmt.Fprintf(&sb, "%s: ", e.Name)
	}
	sb.WriteString(e.Message)
	return sb.String()
}

func (e *Error) location() string {
	switch {
	case e.Line > 0 && e.File != "":
		return fmt.Sprintf("%s:%d:%d", e.File, e.Line, e.Column)
	case e.Line > 0:
		return fmt.Sprintf("%d:%d", e.Line, e.Column)
	default:
		return e.File
	}
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// ErrorList collects every error found in a catalog instead of stopping at
// the first one.
type ErrorList struct {
	Errors []*Error
}

// Add appends an error to the list.
func (el *ErrorList) Add(err *Error) {
	el.Errors = append(el.Errors, err)
}

// HasErrors returns true if the list contains any errors.
func (el *ErrorList) HasErrors() bool {
	return len(el.Errors) > 0
}

// Count returns the number of errors in the list.
func (el *ErrorList) Count() int {
	return len(el.Errors)
}

// Error implements the error interface, one error per line.
func (el *ErrorList) Error() string {
	if !el.HasErrors() {
		return ""
	}
	if len(el.Errors) == 1 {
		return el.Errors[0].Error()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "found %d errors:", len(el.Errors))
	for _, err := range el.Errors {
		sb.WriteString("\n  ")
		sb.WriteString(err.Error())
	}
	return sb.String()
}

// Unwrap exposes the collected errors to errors.Is and errors.As.
func (el *ErrorList) Unwrap() []error {
	errs := make([]error, len(el.Errors))
	for i, err := range el.Errors {
		errs[i] = err
	}
	return errs
}

// ToError returns nil if the list is empty, otherwise the list itself.
func (el *ErrorList) ToError() error {
	if !el.HasErrors() {
		return nil
	}
	return el
}

// ByType returns all errors of the given type.
func (el *ErrorList) ByType(errType ErrorType) []*Error {
	var result []*Error
	for _, err := range el.Errors {
		if err.Type == errType {
			result = append(result, err)
		}
	}
	return result
}
