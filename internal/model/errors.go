package model

import "errors"

var (
	// ErrInvalidRequest is returned before any computation when the request
	// is incomplete or inconsistent.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrEngineFault marks unexpected internal failures. It is never used for
	// parts that merely do not fit.
	ErrEngineFault = errors.New("engine fault")
	// ErrMalformedShape reports shape data that cannot be interpreted.
	ErrMalformedShape = errors.New("malformed shape data")
)

// RequestError is an ErrInvalidRequest carrying a message meant for the caller.
type RequestError struct {
	Msg string
}

func (e *RequestError) Error() string { return e.Msg }

func (e *RequestError) Unwrap() error { return ErrInvalidRequest }

// InvalidRequest returns a RequestError with msg.
func InvalidRequest(msg string) error {
	return &RequestError{Msg: msg}
}
