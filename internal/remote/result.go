package remote

import (
	"encoding/json"
	"errors"
	"strings"
)

// FallbackMessage is used when a failure carries no readable message.
const FallbackMessage = "unknown error"

// Result is either a Success holding a value or a Failure holding a message.
type Result[T any] struct {
	value   T
	message string
	ok      bool
}

func Success[T any](value T) Result[T] {
	return Result[T]{value: value, ok: true}
}

func Failure[T any](message string) Result[T] {
	message = strings.TrimSpace(message)
	if message == "" {
		message = FallbackMessage
	}
	return Result[T]{message: message}
}

// OK reports whether r is a Success.
func (r Result[T]) OK() bool { return r.ok }

// Value returns the success value; the zero value and false on Failure.
func (r Result[T]) Value() (T, bool) {
	if !r.ok {
		var zero T
		return zero, false
	}
	return r.value, true
}

// Message returns the failure message, or "" on Success.
func (r Result[T]) Message() string {
	if r.ok {
		return ""
	}
	return r.message
}

// Unwrap converts r back into Go's (value, error) pair.
func (r Result[T]) Unwrap() (T, error) {
	if r.ok {
		return r.value, nil
	}
	var zero T
	return zero, errors.New(r.message)
}

// Map converts the success value of r, passing failures through unchanged.
func Map[T, U any](r Result[T], fn func(T) U) Result[U] {
	if !r.ok {
		return Result[U]{message: r.message}
	}
	return Success(fn(r.value))
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// MarshalJSON renders {"success":true,"data":...} or {"success":false,"error":"..."}.
func (r Result[T]) MarshalJSON() ([]byte, error) {
	if !r.ok {
		return json.Marshal(envelope{Success: false, Error: r.message})
	}
	data, err := json.Marshal(r.value)
	if err != nil {
		return nil, err
	}
	return json.Marshal(envelope{Success: true, Data: data})
}

func (r *Result[T]) UnmarshalJSON(b []byte) error {
	var env envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return err
	}
	if !env.Success {
		*r = Failure[T](env.Error)
		return nil
	}
	var v T
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &v); err != nil {
			return err
		}
	}
	*r = Success(v)
	return nil
}
