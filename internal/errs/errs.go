// Package errs defines the error taxonomy shared by the extractor, the
// namespace builder and the dispatcher. Callers inspect errors with
// errors.As; every wrapping type implements Unwrap so the underlying cause
// stays reachable.
package errs

import "fmt"

// NotFoundError reports a missing file or module.
type NotFoundError struct {
	What string // "file" or "module"
	Name string
	Err  error
}

func (e *NotFoundError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s not found: %s: %v", e.What, e.Name, e.Err)
	}
	return fmt.Sprintf("%s not found: %s", e.What, e.Name)
}

func (e *NotFoundError) Unwrap() error { return e.Err }

// ParseError reports source text that is not valid Python. Line and Column
// are 1-based and point at the first offending node.
type ParseError struct {
	Path   string
	Line   int
	Column int
	Msg    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.Path, e.Line, e.Column, e.Msg)
}

// LoadError reports a module that could not be located, imported or
// executed.
type LoadError struct {
	Module string
	Path   string
	Err    error
}

func (e *LoadError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("failed to load module %s from %s: %v", e.Module, e.Path, e.Err)
	}
	return fmt.Sprintf("failed to load module %s: %v", e.Module, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// ResolutionError reports an unknown namespace or function at dispatch time,
// or a reference that cannot be split.
type ResolutionError struct {
	Ref    string
	Reason string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("cannot resolve %q: %s", e.Ref, e.Reason)
}

// DispatchUnavailableError reports a dispatch against a namespace that was
// built from source text only and has no live module behind it.
type DispatchUnavailableError struct {
	Namespace string
}

func (e *DispatchUnavailableError) Error() string {
	return fmt.Sprintf("namespace %q is metadata-only (static mode) and cannot be dispatched against", e.Namespace)
}
