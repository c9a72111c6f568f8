package framing

import (
	"bytes"
	"fmt"
	"io"

	"github.com/pkg/errors"
)

// ErrBadFrame is returned by Next when the buffered input can not be
// decoded. The buffer is discarded when it is returned.
type ErrBadFrame struct {
	Message string
	Offset  int
	Err     error
}

func (e ErrBadFrame) Error() string {
	msg := "bad frame"
	if e.Message != "" {
		msg = msg + ": " + e.Message
	}
	if e.Offset < 1 {
		return msg
	}
	return fmt.Sprintf("%s at input offset %d", msg, e.Offset)
}

func (e ErrBadFrame) Unwrap() error { return e.Err }

// DecodeFunc decodes exactly one message from r.
type DecodeFunc func(r *bytes.Reader) error

// Buffer is an unbounded byte accumulator.
//
// Buffer is not safe for concurrent use.
type Buffer struct {
	buf    []byte
	offset int // stream offset of buf[0]
}

// Feed appends b to the buffer. b is copied and may be reused by the caller.
func (b *Buffer) Feed(p []byte) { b.buf = append(b.buf, p...) }

// Len returns the number of buffered, unconsumed bytes.
func (b *Buffer) Len() int { return len(b.buf) }

// Next calls decode with the unconsumed input. It returns true if
// decode consumed one complete message, in which case the bytes it
// read are dropped from the buffer. If decode ran out of input the
// buffer is left untouched and Next returns false with a nil error.
// Any other decode error discards the buffer and is returned as an
// ErrBadFrame, since the stream can not be resynchronized.
func (b *Buffer) Next(decode DecodeFunc) (bool, error) {
	if len(b.buf) == 0 {
		return false, nil
	}
	r := bytes.NewReader(b.buf)
	err := decode(r)
	switch {
	case err == nil:
		b.advance(len(b.buf) - r.Len())
		return true, nil
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return false, nil
	}
	bad := ErrBadFrame{Message: err.Error(), Offset: b.offset, Err: err}
	b.offset += len(b.buf)
	b.buf = b.buf[:0]
	return false, bad
}

func (b *Buffer) advance(n int) {
	rest := copy(b.buf, b.buf[n:])
	b.buf = b.buf[:rest]
	b.offset += n
}
