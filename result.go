package account

import (
	goerrors "github.com/goliatone/go-errors"
)

// Status is the state of a Result.
type Status int

const (
	// StatusLoading marks an operation still in flight. It is never stored.
	StatusLoading Status = iota
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return "loading"
	}
}

// Result is the outcome of every orchestration operation.
type Result[T any] struct {
	Status  Status `json:"-"`
	Value   T      `json:"value,omitempty"`
	Message string `json:"message,omitempty"`
	// Err holds the structured error behind Message.
	Err error `json:"-"`
}

// Success wraps a value.
func Success[T any](v T) Result[T] {
	return Result[T]{Status: StatusSuccess, Value: v}
}

// Failure wraps an error. The message shown to users is taken from the
// rich error when there is one.
func Failure[T any](err error) Result[T] {
	return Result[T]{Status: StatusError, Message: messageOf(err), Err: err}
}

// Loading is the in-flight sentinel.
func Loading[T any]() Result[T] {
	return Result[T]{Status: StatusLoading}
}

func (r Result[T]) IsSuccess() bool { return r.Status == StatusSuccess }

func (r Result[T]) IsError() bool { return r.Status == StatusError }

func (r Result[T]) IsLoading() bool { return r.Status == StatusLoading }

// Category returns the error category of a failed result and whether one
// was found.
func (r Result[T]) Category() (goerrors.Category, bool) {
	var richErr *goerrors.Error
	if r.Err != nil && goerrors.As(r.Err, &richErr) {
		return richErr.Category, true
	}
	var zero goerrors.Category
	return zero, false
}

func messageOf(err error) string {
	if err == nil {
		return ""
	}
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr.Message
	}
	return err.Error()
}
