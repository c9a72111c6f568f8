package ncerr

import (
	"bytes"
	"errors"
	"fmt"
)

// Type represents the class of a network controller error
type Type int

const (
	// TypeConfiguration is an invalid bind address, port or config file
	TypeConfiguration Type = iota
	// TypeProtocol is a malformed envelope, empty response body or
	// invalid request parameter
	TypeProtocol
	// TypeTransport is an I/O failure on a session's socket
	TypeTransport
	// TypeLogic is a condition the channel's peer role never expects,
	// such as an inbound response
	TypeLogic
)

func (t Type) String() string {
	switch t {
	case TypeConfiguration:
		return "configuration"
	case TypeProtocol:
		return "protocol"
	case TypeTransport:
		return "transport"
	case TypeLogic:
		return "logic"
	default:
		return fmt.Sprintf("Type(%d)", int(t))
	}
}

func (t *Type) UnmarshalText(b []byte) error {
	b = bytes.TrimSpace(b)
	switch string(b) {
	case "configuration":
		*t = TypeConfiguration
	case "protocol":
		*t = TypeProtocol
	case "transport":
		*t = TypeTransport
	case "logic":
		*t = TypeLogic
	default:
		return errors.New("unknown value")
	}
	return nil
}

func (t Type) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// Error tags
const (
	TagInvalidBindAddress     = "invalid-bind-address"
	TagInvalidBindPort        = "invalid-bind-port"
	TagInvalidConfig          = "invalid-config"
	TagMalformedMessage       = "malformed-message"
	TagEmptyResponse          = "empty-response"
	TagInvalidParameter       = "invalid-parameter"
	TagIOFailure              = "io-failure"
	TagUnexpectedResponse     = "unexpected-response"
	TagUnsupportedOutgoing    = "unsupported-outgoing"
	TagUnsupportedRouteFamily = "unsupported-route-family"
)

// Sentinels for use with errors.Is. They match any *Error of the same
// Type and Tag.
var (
	ErrInvalidParameter = &Error{Type: TypeProtocol, Tag: TagInvalidParameter}
	ErrMalformedMessage = &Error{Type: TypeProtocol, Tag: TagMalformedMessage}
	ErrEmptyResponse    = &Error{Type: TypeProtocol, Tag: TagEmptyResponse}
)

// Error represents a network controller channel error.
//
// Message is the human readable description, and is what a peer
// receives in an error response. Err is the optional underlying cause.
type Error struct {
	Type    Type   `json:"error-type"`
	Tag     string `json:"error-tag"`
	Message string `json:"error-message,omitempty"`
	Err     error  `json:"-"`
}

func (e *Error) Error() string {
	s := fmt.Sprintf("%s error tag:%s", e.Type, e.Tag)
	if e.Message != "" {
		s += " " + e.Message
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

// Unwrap returns the underlying cause, if any
func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error with the same Type and Tag.
// A target with an empty Tag matches any error of its Type.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Type == t.Type && (t.Tag == "" || t.Tag == e.Tag)
}

// IsType reports whether err is (or wraps) an *Error of type t
func IsType(err error, t Type) bool {
	var e *Error
	return errors.As(err, &e) && e.Type == t
}

// Description returns the text sent to a peer for err: the Message of
// an *Error when it has one, else err.Error().
func Description(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return err.Error()
}

func newError(t Type, tag string, opts []Option) *Error {
	e := &Error{Type: t, Tag: tag}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func InvalidBindAddress(opts ...Option) *Error {
	return newError(TypeConfiguration, TagInvalidBindAddress, opts)
}

func InvalidBindPort(opts ...Option) *Error {
	return newError(TypeConfiguration, TagInvalidBindPort, opts)
}

func InvalidConfig(opts ...Option) *Error {
	return newError(TypeConfiguration, TagInvalidConfig, opts)
}

func MalformedMessage(opts ...Option) *Error {
	return newError(TypeProtocol, TagMalformedMessage, opts)
}

func EmptyResponse(opts ...Option) *Error {
	return newError(TypeProtocol, TagEmptyResponse, opts)
}

// InvalidParameter is the protocol error for request parameters the
// operation registry rejected for their type.
func InvalidParameter(opts ...Option) *Error {
	e := newError(TypeProtocol, TagInvalidParameter, opts)
	// error-type must be protocol for invalid-parameter
	e.Type = TypeProtocol
	return e
}

func IOFailure(opts ...Option) *Error {
	return newError(TypeTransport, TagIOFailure, opts)
}

func UnexpectedResponse(opts ...Option) *Error {
	return newError(TypeLogic, TagUnexpectedResponse, opts)
}

func UnsupportedOutgoing(opts ...Option) *Error {
	return newError(TypeLogic, TagUnsupportedOutgoing, opts)
}

func UnsupportedRouteFamily(opts ...Option) *Error {
	return newError(TypeLogic, TagUnsupportedRouteFamily, opts)
}
