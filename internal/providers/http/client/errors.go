package client

import (
	"errors"
	"fmt"
)

// Kind classifies an Error.
type Kind string

const (
	KindTransport      Kind = "transport"
	KindFileResolution Kind = "file_resolution"
	KindConfiguration  Kind = "configuration"
)

// Sentinels for errors.Is checks against an *Error of the matching kind.
var (
	ErrTransport      = &Error{Kind: KindTransport}
	ErrFileResolution = &Error{Kind: KindFileResolution}
	ErrConfiguration  = &Error{Kind: KindConfiguration}
)

// Error is returned by the executor and the transports.
type Error struct {
	Kind   Kind
	Op     string
	Method string
	URL    string
	Err    error
}

// Error implements error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := string(e.Kind)
	if e.Op != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Op)
	}
	if e.Method != "" || e.URL != "" {
		msg = fmt.Sprintf("%s %s %s", msg, e.Method, e.URL)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches any *Error of the same kind.
func (e *Error) Is(target error) bool {
	if e == nil {
		return false
	}
	if t, ok := target.(*Error); ok && t != nil {
		return e.Kind == t.Kind
	}
	return false
}

// TransportError wraps a failed exchange.
func TransportError(method, url string, err error) error {
	return &Error{Kind: KindTransport, Op: "send", Method: method, URL: url, Err: err}
}

// FileResolutionError wraps a file that could not be opened for upload.
func FileResolutionError(path string, err error) error {
	return &Error{Kind: KindFileResolution, Op: "open " + path, Err: err}
}

// ConfigurationError reports an option value of an unsupported shape.
func ConfigurationError(key string, err error) error {
	return &Error{Kind: KindConfiguration, Op: "option " + key, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or "".
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
