// Package domain contains business types and the error taxonomy.
// Domain errors represent business-level failures, NOT HTTP errors.
// They are infrastructure-agnostic and are mapped to HTTP by adapters.
package domain

import (
	"context"
	"errors"
	"fmt"
	"maps"
)

// Root codes for the failure kinds whose code is fixed.
const (
	CodeInvalidBody           = "error.invalid_body"
	CodeValidationFailed      = "error.validation_failed"
	CodeDependencyUnavailable = "error.dependency_unavailable"
	CodeTimeout               = "error.timeout"
	CodeServiceUnavailable    = "error.service_unavailable"
	CodeInternal              = "error.internal_error"
)

// Sentinel errors for use with errors.Is().
var (
	// ErrInvalidBody indicates the request body could not be decoded.
	ErrInvalidBody = errors.New("invalid request body")

	// ErrValidation indicates structural validation of the input failed.
	ErrValidation = errors.New("validation failed")

	// ErrBusiness indicates a domain rule was violated.
	ErrBusiness = errors.New("business rule violated")

	// ErrDependency indicates a downstream dependency (database, cache) failed.
	ErrDependency = errors.New("dependency failure")

	// ErrTimeout indicates the request exceeded its time budget.
	ErrTimeout = errors.New("time budget exceeded")

	// ErrOverloaded indicates admission control rejected the request.
	ErrOverloaded = errors.New("service overloaded")

	// ErrInternal indicates an unclassified internal fault.
	ErrInternal = errors.New("internal error")
)

// Failure is the closed set of error kinds the service reports to clients.
// The unexported marker method keeps the variant set fixed to this package,
// so adapters can switch over it exhaustively.
type Failure interface {
	error

	// Code returns the stable, locale-independent root code.
	Code() string

	// Node builds the pre-translation error tree for this failure.
	Node() ErrorNode

	failure()
}

// InvalidBodyError reports a request body that could not be decoded.
type InvalidBodyError struct {
	Cause error
}

func (e *InvalidBodyError) Error() string {
	if e.Cause != nil {
		return "invalid request body: " + e.Cause.Error()
	}

	return "invalid request body"
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *InvalidBodyError) Unwrap() []error { return []error{ErrInvalidBody, e.Cause} }

// Code implements Failure.
func (e *InvalidBodyError) Code() string { return CodeInvalidBody }

// Node implements Failure.
func (e *InvalidBodyError) Node() ErrorNode { return ErrorNode{Code: CodeInvalidBody} }

func (*InvalidBodyError) failure() {}

// ValidationError reports failed structural validation. It is the only
// failure kind whose node carries children, one per rule violation.
type ValidationError struct {
	Tree ValidationTree
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %d violation(s)", e.Tree.Count())
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *ValidationError) Unwrap() error { return ErrValidation }

// Code implements Failure.
func (e *ValidationError) Code() string { return CodeValidationFailed }

// Node implements Failure.
func (e *ValidationError) Node() ErrorNode {
	return ErrorNode{Code: CodeValidationFailed, Children: Flatten(e.Tree)}
}

func (*ValidationError) failure() {}

// BusinessError reports a domain rule violation. Its code and status are
// chosen by the caller; status is an HTTP status hint for adapters.
type BusinessError struct {
	Status int
	code   string
	args   map[string]string
}

// NewBusinessError creates a business error with a caller-chosen code.
func NewBusinessError(status int, code string, args map[string]string) *BusinessError {
	return &BusinessError{Status: status, code: code, args: maps.Clone(args)}
}

func (e *BusinessError) Error() string { return "business rule violated: " + e.code }

// Unwrap returns the sentinel error for errors.Is() support.
func (e *BusinessError) Unwrap() error { return ErrBusiness }

// Code implements Failure.
func (e *BusinessError) Code() string { return e.code }

// Args returns a copy of the interpolation arguments.
func (e *BusinessError) Args() map[string]string { return maps.Clone(e.args) }

// Node implements Failure.
func (e *BusinessError) Node() ErrorNode {
	return ErrorNode{Code: e.code, Args: maps.Clone(e.args)}
}

func (*BusinessError) failure() {}

// Dependency names used by DependencyError.
const (
	DependencyDatabase = "database"
	DependencyCache    = "cache"
)

// DependencyError reports a failed downstream dependency.
type DependencyError struct {
	Dependency string
	Cause      error
}

// NewDependencyError wraps a dependency failure.
func NewDependencyError(dependency string, cause error) *DependencyError {
	return &DependencyError{Dependency: dependency, Cause: cause}
}

func (e *DependencyError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s failure: %v", e.Dependency, e.Cause)
	}

	return e.Dependency + " failure"
}

// Unwrap returns the sentinel error and the cause.
func (e *DependencyError) Unwrap() []error { return []error{ErrDependency, e.Cause} }

// Code implements Failure.
func (e *DependencyError) Code() string { return CodeDependencyUnavailable }

// Node implements Failure. The dependency name is never exposed to clients.
func (e *DependencyError) Node() ErrorNode { return ErrorNode{Code: CodeDependencyUnavailable} }

func (*DependencyError) failure() {}

// TimeoutError reports a request that exceeded its time budget.
type TimeoutError struct {
	Cause error
}

func (e *TimeoutError) Error() string { return "request exceeded time budget" }

// Unwrap returns the sentinel error for errors.Is() support.
func (e *TimeoutError) Unwrap() error { return ErrTimeout }

// Code implements Failure.
func (e *TimeoutError) Code() string { return CodeTimeout }

// Node implements Failure.
func (e *TimeoutError) Node() ErrorNode { return ErrorNode{Code: CodeTimeout} }

func (*TimeoutError) failure() {}

// OverloadedError reports a request rejected by admission control.
type OverloadedError struct {
	Reason string
}

func (e *OverloadedError) Error() string {
	if e.Reason != "" {
		return "service overloaded: " + e.Reason
	}

	return "service overloaded"
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *OverloadedError) Unwrap() error { return ErrOverloaded }

// Code implements Failure.
func (e *OverloadedError) Code() string { return CodeServiceUnavailable }

// Node implements Failure.
func (e *OverloadedError) Node() ErrorNode { return ErrorNode{Code: CodeServiceUnavailable} }

func (*OverloadedError) failure() {}

// InternalError reports an unclassified fault. The cause is for logs only.
type InternalError struct {
	Cause error
}

func (e *InternalError) Error() string {
	if e.Cause != nil {
		return "internal error: " + e.Cause.Error()
	}

	return "internal error"
}

// Unwrap returns the sentinel error and the cause.
func (e *InternalError) Unwrap() []error { return []error{ErrInternal, e.Cause} }

// Code implements Failure.
func (e *InternalError) Code() string { return CodeInternal }

// Node implements Failure.
func (e *InternalError) Node() ErrorNode { return InternalErrorNode() }

func (*InternalError) failure() {}

// Classify maps any error onto a Failure. Failures found anywhere in the
// chain win; context deadlines become timeouts; everything else is internal.
// Returns nil for a nil error.
func Classify(err error) Failure {
	if err == nil {
		return nil
	}

	var f Failure
	if errors.As(err, &f) {
		return f
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &TimeoutError{Cause: err}
	}

	return &InternalError{Cause: err}
}

// IsValidation checks if an error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsBusiness checks if an error is a business rule violation.
func IsBusiness(err error) bool {
	return errors.Is(err, ErrBusiness)
}

// IsDependency checks if an error is a dependency failure.
func IsDependency(err error) bool {
	return errors.Is(err, ErrDependency)
}

// IsTimeout checks if an error is a timeout.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// IsOverloaded checks if an error is an admission rejection.
func IsOverloaded(err error) bool {
	return errors.Is(err, ErrOverloaded)
}
