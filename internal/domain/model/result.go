package model

import "encoding/json"

type resultState int

const (
	stateIdle resultState = iota
	stateSuccess
	stateError
)

// Result is the three-state wrapper used for everything surfaced to the
// presentation layer: not yet attempted, a value, or a user-facing error
// message.
type Result[T any] struct {
	state   resultState
	value   T
	message string
}

func Idle[T any]() Result[T] {
	return Result[T]{state: stateIdle}
}

func Success[T any](value T) Result[T] {
	return Result[T]{state: stateSuccess, value: value}
}

func Failure[T any](message string) Result[T] {
	return Result[T]{state: stateError, message: message}
}

func (r Result[T]) IsIdle() bool    { return r.state == stateIdle }
func (r Result[T]) IsSuccess() bool { return r.state == stateSuccess }
func (r Result[T]) IsError() bool   { return r.state == stateError }

// Value returns the payload and whether the result is a success.
func (r Result[T]) Value() (T, bool) {
	return r.value, r.state == stateSuccess
}

// Message returns the error message, empty unless the result is an error.
func (r Result[T]) Message() string {
	return r.message
}

func (r Result[T]) MarshalJSON() ([]byte, error) {
	switch r.state {
	case stateSuccess:
		return json.Marshal(struct {
			Status string `json:"status"`
			Data   T      `json:"data"`
		}{"success", r.value})
	case stateError:
		return json.Marshal(struct {
			Status string `json:"status"`
			Error  string `json:"error"`
		}{"error", r.message})
	default:
		return json.Marshal(struct {
			Status string `json:"status"`
		}{"idle"})
	}
}
