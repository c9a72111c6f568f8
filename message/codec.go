package message

import (
	"bytes"
	"fmt"
	"sync/atomic"

	"github.com/andaru/netctrl/framing"
	"github.com/andaru/netctrl/ncerr"
	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/multierr"
)

// Encoder encodes envelopes and allocates request IDs.
//
// The ID sequence starts at 0 and is strictly increasing for the
// lifetime of the Encoder. Encoder is safe for concurrent use.
type Encoder struct {
	nextID atomic.Uint64
}

// NextID returns the ID the next EncodeRequest call will use
func (e *Encoder) NextID() uint64 { return e.nextID.Load() }

// EncodeRequest encodes a Request for method, returning the encoding
// and the request's newly allocated ID.
func (e *Encoder) EncodeRequest(method string, params Params) ([]byte, uint64, error) {
	id := e.nextID.Add(1) - 1
	b, err := pack([]interface{}{int(TypeRequest), id, method, nonNil(params)})
	return b, id, err
}

// EncodeSuccessResponse encodes a successful Response to request id.
// It returns an empty-response protocol error if result is nil.
func (e *Encoder) EncodeSuccessResponse(id uint64, result interface{}) ([]byte, error) {
	if result == nil {
		return nil, ncerr.EmptyResponse(ncerr.WithMessage("Creating response without body!"))
	}
	return pack([]interface{}{int(TypeResponse), id, nil, result})
}

// EncodeErrorResponse encodes a failed Response to request id. It
// returns an empty-response protocol error if errmsg is empty.
func (e *Encoder) EncodeErrorResponse(id uint64, errmsg string) ([]byte, error) {
	if errmsg == "" {
		return nil, ncerr.EmptyResponse(ncerr.WithMessage("Creating error without body!"))
	}
	return pack([]interface{}{int(TypeResponse), id, errmsg, nil})
}

// EncodeNotification encodes a Notification for method
func (e *Encoder) EncodeNotification(method string, params Params) ([]byte, error) {
	return pack([]interface{}{int(TypeNotification), method, nonNil(params)})
}

// Encode encodes env. Requests keep the ID they carry.
func (e *Encoder) Encode(env Envelope) ([]byte, error) {
	switch m := env.(type) {
	case *Request:
		return pack([]interface{}{int(TypeRequest), m.ID, m.Method, nonNil(m.Params)})
	case *Response:
		if m.IsError() {
			return e.EncodeErrorResponse(m.ID, m.Error)
		}
		return e.EncodeSuccessResponse(m.ID, m.Result)
	case *Notification:
		return e.EncodeNotification(m.Method, m.Params)
	}
	return nil, ncerr.MalformedMessage(ncerr.WithMessage(fmt.Sprintf("unknown envelope %T", env)))
}

func nonNil(p Params) Params {
	if p == nil {
		return Params{}
	}
	return p
}

func pack(v []interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.UseCompactInts(true)
	enc.SetSortMapKeys(true)
	if err := enc.Encode(v); err != nil {
		return nil, ncerr.MalformedMessage(ncerr.WithMessage("encoding failed"), ncerr.WithCause(err))
	}
	return buf.Bytes(), nil
}

// Decoder incrementally decodes a byte stream into envelopes.
//
// Decoder is not safe for concurrent use; it is owned by the goroutine
// reading the session's socket.
type Decoder struct {
	buf framing.Buffer
}

// Buffered returns the number of bytes held for an incomplete envelope
func (d *Decoder) Buffered() int { return d.buf.Len() }

// Feed appends b to the decode buffer and returns every envelope now
// complete, in arrival order. Any trailing partial envelope stays
// buffered for the next call.
//
// A non-nil error holds one protocol error per rejected message (see
// multierr.Errors). Envelopes decoded alongside rejected messages are
// still returned, and the Decoder remains usable.
func (d *Decoder) Feed(b []byte) (envs []Envelope, err error) {
	d.buf.Feed(b)
	for {
		var v interface{}
		ok, ferr := d.buf.Next(func(r *bytes.Reader) (derr error) {
			dec := msgpack.NewDecoder(r)
			dec.UseLooseInterfaceDecoding(true)
			v, derr = dec.DecodeInterfaceLoose()
			return derr
		})
		if ferr != nil {
			err = multierr.Append(err, ncerr.MalformedMessage(ncerr.WithMessage("undecodable input"), ncerr.WithCause(ferr)))
			return envs, err
		}
		if !ok {
			return envs, err
		}
		env, serr := toEnvelope(v)
		if serr != nil {
			err = multierr.Append(err, serr)
			continue
		}
		envs = append(envs, env)
	}
}

func malformed(format string, args ...interface{}) error {
	return ncerr.MalformedMessage(ncerr.WithMessage(fmt.Sprintf(format, args...)))
}

// toEnvelope performs the closed-shape conversion of a generically
// decoded msgpack value.
func toEnvelope(v interface{}) (Envelope, error) {
	arr, ok := v.([]interface{})
	if !ok {
		return nil, malformed("message is %T, not an array", v)
	}
	if len(arr) < 3 || len(arr) > 4 {
		return nil, malformed("message has %d elements", len(arr))
	}
	tag, ok := toUint(arr[0])
	if !ok {
		return nil, malformed("invalid message type %v", arr[0])
	}

	switch want := map[Type]int{TypeRequest: 4, TypeResponse: 4, TypeNotification: 3}[Type(tag)]; {
	case want == 0:
		return nil, malformed("invalid message type %d", tag)
	case want != len(arr):
		return nil, malformed("%s has %d elements, want %d", Type(tag), len(arr), want)
	}

	switch Type(tag) {
	case TypeRequest:
		id, ok := toUint(arr[1])
		if !ok {
			return nil, malformed("request id %v is not an unsigned integer", arr[1])
		}
		method, ok := toString(arr[2])
		if !ok {
			return nil, malformed("request method %v is not a string", arr[2])
		}
		params, err := toParams(arr[3])
		if err != nil {
			return nil, err
		}
		return &Request{ID: id, Method: method, Params: params}, nil

	case TypeResponse:
		id, ok := toUint(arr[1])
		if !ok {
			return nil, malformed("response id %v is not an unsigned integer", arr[1])
		}
		r := &Response{ID: id, Result: arr[3]}
		if arr[2] != nil {
			if r.Error, ok = toString(arr[2]); !ok || r.Error == "" {
				return nil, malformed("response error %v is not a non-empty string", arr[2])
			}
		}
		if r.IsError() == (r.Result != nil) {
			return nil, malformed("response must carry exactly one of error and result")
		}
		return r, nil
	}

	method, ok := toString(arr[1])
	if !ok {
		return nil, malformed("notification method %v is not a string", arr[1])
	}
	params, err := toParams(arr[2])
	if err != nil {
		return nil, err
	}
	return &Notification{Method: method, Params: params}, nil
}

func toUint(v interface{}) (uint64, bool) {
	switch n := v.(type) {
	case uint64:
		return n, true
	case uint32:
		return uint64(n), true
	case uint16:
		return uint64(n), true
	case uint8:
		return uint64(n), true
	case int64:
		return uint64(n), n >= 0
	case int32:
		return uint64(n), n >= 0
	case int16:
		return uint64(n), n >= 0
	case int8:
		return uint64(n), n >= 0
	}
	return 0, false
}

func toString(v interface{}) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case []byte:
		return string(s), true
	}
	return "", false
}

func toParams(v interface{}) (Params, error) {
	if v == nil {
		return Params{}, nil
	}
	arr, ok := v.([]interface{})
	if !ok {
		return nil, malformed("params %T is not an array", v)
	}
	params := make(Params, 0, len(arr))
	for i, elem := range arr {
		m, ok := elem.(map[string]interface{})
		if !ok {
			return nil, malformed("params[%d] %T is not a map", i, elem)
		}
		params = append(params, m)
	}
	return params, nil
}
