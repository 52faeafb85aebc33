package model

// Unit is the value carried by a successful command with no payload.
type Unit struct{}

// Result is the return contract of every use-case handler. A result is one of
// Success (value present), NotFound (success without a value) or Failure
// (a business rule was not met). Unexpected faults are returned as plain
// errors alongside the zero Result, never encoded in it.
type Result[T any] struct {
	value   T
	found   bool
	failed  bool
	message string
}

// Success wraps a value.
func Success[T any](value T) Result[T] {
	return Result[T]{value: value, found: true}
}

// NotFound signals a successful lookup that matched nothing.
func NotFound[T any]() Result[T] {
	return Result[T]{}
}

// Failure carries a human-readable reason the operation was refused.
func Failure[T any](message string) Result[T] {
	return Result[T]{failed: true, message: message}
}

// IsSuccess reports whether the result is Success or NotFound.
func (r Result[T]) IsSuccess() bool { return !r.failed }

// Found reports whether a successful result carries a value.
func (r Result[T]) Found() bool { return !r.failed && r.found }

// Value returns the wrapped value, or the zero value when absent.
func (r Result[T]) Value() T { return r.value }

// Message returns the failure message, empty for successful results.
func (r Result[T]) Message() string { return r.message }
