package transport

import (
	"io"
	"net"
	"sync/atomic"

	"github.com/andaru/netctrl/ncerr"
	"go.uber.org/zap"
)

// DefaultRecvSize is the receive buffer size used when none is configured
const DefaultRecvSize = 4096

// Conn is the session's socket wrapper.
//
// Recv must only be called from one goroutine at a time. Send may be
// called concurrently; each call writes its whole buffer before another
// write starts, since net.Conn serializes writes.
type Conn struct {
	conn    net.Conn
	buf     []byte
	onError func(error)
	log     *zap.Logger
	closed  atomic.Bool
}

// NewConn returns a new Conn for c. onError is called with a transport
// error each time a Recv or Send fails; it must be non-nil. A bufSize of
// zero or less uses DefaultRecvSize.
func NewConn(c net.Conn, bufSize int, log *zap.Logger, onError func(error)) *Conn {
	if c == nil || onError == nil {
		panic("NewConn: both c and onError must be non-nil")
	}
	if bufSize <= 0 {
		bufSize = DefaultRecvSize
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Conn{conn: c, buf: make([]byte, bufSize), onError: onError, log: log}
}

// Recv waits for data from the peer. It returns ok false if the read
// failed, after the failure has been logged and reported. A clean
// disconnect by the peer returns an empty slice with ok true.
//
// The returned slice is only valid until the next call to Recv.
func (c *Conn) Recv() (data []byte, ok bool) {
	for {
		n, err := c.conn.Read(c.buf)
		if n > 0 {
			// deliver what we have; a sticky error is seen on the next read
			return c.buf[:n], true
		}
		switch err {
		case nil:
			// an empty read is not a disconnect
			continue
		case io.EOF:
			return c.buf[:0], true
		}
		c.fail("recv", err)
		return nil, false
	}
}

// Send writes all of b to the peer. It returns false if the write
// failed, after the failure has been logged and reported.
func (c *Conn) Send(b []byte) bool {
	if _, err := c.conn.Write(b); err != nil {
		c.fail("send", err)
		return false
	}
	return true
}

// Close closes the underlying connection. Failures of reads and writes
// still in progress are expected after Close and are only logged at
// debug level.
func (c *Conn) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	return c.conn.Close()
}

// Closed reports whether Close has been called
func (c *Conn) Closed() bool { return c.closed.Load() }

// RemoteAddr returns the peer's address as a string
func (c *Conn) RemoteAddr() string {
	if addr := c.conn.RemoteAddr(); addr != nil {
		return addr.String()
	}
	return ""
}

func (c *Conn) fail(op string, err error) {
	terr := ncerr.IOFailure(ncerr.WithMessage(op+" failed"), ncerr.WithCause(err))
	if c.closed.Load() {
		c.log.Debug("transport closed", zap.String("op", op), zap.Error(err))
	} else {
		c.log.Error("transport failure", zap.String("op", op), zap.String("peer", c.RemoteAddr()), zap.Error(err))
	}
	c.onError(terr)
}
