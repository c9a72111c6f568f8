package message

import "fmt"

// Type is an envelope's wire type tag
type Type int

const (
	// TypeRequest is a method call expecting a Response
	TypeRequest Type = 0
	// TypeResponse answers the Request with the same ID
	TypeResponse Type = 1
	// TypeNotification is a method call without a reply
	TypeNotification Type = 2
)

func (t Type) String() string {
	switch t {
	case TypeRequest:
		return "request"
	case TypeResponse:
		return "response"
	case TypeNotification:
		return "notification"
	default:
		return fmt.Sprintf("Type(%d)", int(t))
	}
}

// Params is the wire form of a method's parameters
type Params []map[string]interface{}

// Kwargs returns the keyword arguments carried by p, which are the
// first element, or an empty map if p is empty.
func (p Params) Kwargs() map[string]interface{} {
	if len(p) == 0 || p[0] == nil {
		return map[string]interface{}{}
	}
	return p[0]
}

// Envelope is one complete protocol message. It is implemented only by
// *Request, *Response and *Notification.
type Envelope interface {
	Type() Type
	envelope()
}

// Request is a method call from the peer
type Request struct {
	ID     uint64
	Method string
	Params Params
}

// Response is the reply to a Request. Exactly one of Error and Result
// is set.
type Response struct {
	ID     uint64
	Error  string
	Result interface{}
}

// Notification is a method call without a reply
type Notification struct {
	Method string
	Params Params
}

func (*Request) Type() Type      { return TypeRequest }
func (*Response) Type() Type     { return TypeResponse }
func (*Notification) Type() Type { return TypeNotification }

func (*Request) envelope()      {}
func (*Response) envelope()     {}
func (*Notification) envelope() {}

// IsError reports whether the response carries an error
func (r *Response) IsError() bool { return r.Error != "" }
