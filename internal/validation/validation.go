// Package validation aggregates structured, path-addressed request
// validation errors. A Result collects every field problem before the
// request is rejected once, instead of failing field by field.
package validation

import "slices"

// Kind classifies a single validation error.
type Kind string

const (
	KindInvalidFormat Kind = "invalid_format"
	KindRequired      Kind = "required"
	KindNotFound      Kind = "not_found"
	KindAlreadyExists Kind = "already_exists"
	KindDataConflict  Kind = "data_conflict"
)

// Error is one field-level validation problem. Path addresses the offending
// field as a sequence of segments, e.g. ["document", "title"].
type Error struct {
	Path    []string
	Kind    Kind
	Message string
}

// PrependPath returns a copy of e nested under prefix. An error with an
// empty path adopts the prefix as its whole path.
func (e Error) PrependPath(prefix ...string) Error {
	if len(e.Path) == 0 {
		e.Path = slices.Clone(prefix)
		return e
	}
	e.Path = append(slices.Clone(prefix), e.Path...)
	return e
}

// Result is an accumulating set of validation errors. The zero value is a
// valid (empty) result; all mutating methods return the receiver for chaining.
type Result struct {
	errors []Error
}

// Valid reports whether no errors have been collected.
func (r *Result) Valid() bool {
	return len(r.errors) == 0
}

// Errors returns the collected errors in insertion order.
func (r *Result) Errors() []Error {
	return r.errors
}

// Add records a validation error at the given path.
func (r *Result) Add(path []string, kind Kind, message string) *Result {
	r.errors = append(r.errors, Error{Path: path, Kind: kind, Message: message})
	return r
}

// AddRequired records a missing-field error.
func (r *Result) AddRequired(path []string, message string) *Result {
	return r.Add(path, KindRequired, message)
}

// AddInvalidFormat records a malformed-field error.
func (r *Result) AddInvalidFormat(path []string, message string) *Result {
	return r.Add(path, KindInvalidFormat, message)
}

// AddNotFound records a referenced-entity-missing error.
func (r *Result) AddNotFound(path []string, message string) *Result {
	return r.Add(path, KindNotFound, message)
}

// AddAlreadyExists records a uniqueness-conflict error.
func (r *Result) AddAlreadyExists(path []string, message string) *Result {
	return r.Add(path, KindAlreadyExists, message)
}

// AddDataConflict records a state-conflict error.
func (r *Result) AddDataConflict(path []string, message string) *Result {
	return r.Add(path, KindDataConflict, message)
}

// Merge appends all of other's errors to r.
func (r *Result) Merge(other *Result) *Result {
	if other != nil {
		r.errors = append(r.errors, other.errors...)
	}
	return r
}

// PrependPath returns a new result with every error nested under prefix,
// for hoisting a sub-object's validation under its field name.
func (r *Result) PrependPath(prefix ...string) *Result {
	out := &Result{errors: make([]Error, 0, len(r.errors))}
	for _, e := range r.errors {
		out.errors = append(out.errors, e.PrependPath(prefix...))
	}
	return out
}

// Err returns nil when the result is valid, otherwise an *AggregateError
// carrying every collected error.
func (r *Result) Err() error {
	if r.Valid() {
		return nil
	}
	return &AggregateError{Errors: slices.Clone(r.errors)}
}
