package session

import (
	"context"
	"errors"
	"fmt"
	"net"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/andaru/netctrl/dispatch"
	"github.com/andaru/netctrl/message"
	"github.com/andaru/netctrl/ncerr"
	"github.com/andaru/netctrl/prefix"
	"github.com/andaru/netctrl/sink"
	"github.com/andaru/netctrl/transport"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrAlreadyStarted is returned by a second call to Run
	ErrAlreadyStarted = errors.New("session already started")
	// ErrStopped is returned when sending on a session which is not
	// running, or whose transport failed
	ErrStopped = errors.New("session stopped")
)

// Source supplies the outgoing route events a session reports to its
// peer. Next blocks until an item is available or ctx is done.
//
// A Source may also implement TryNext() (interface{}, bool), returning
// an already available item without blocking; the session then sends
// everything available before yielding.
type Source interface {
	Next(ctx context.Context) (interface{}, error)
}

type batchSource interface {
	TryNext() (interface{}, bool)
}

// Config contains Session configuration
type Config struct {
	// StrictLogic stops the session on a logic error (an inbound
	// response or an unsupported outgoing item) instead of logging
	// and skipping it.
	StrictLogic bool
	// RecvBufferSize is the socket read size. Defaults to 4096.
	RecvBufferSize int
	// Logger is the session's logger. Defaults to a no-op logger.
	Logger *zap.Logger
}

// Status is a Session's (present) state.
type Status int32

const (
	// StatusInactive is the initial session state, before Run.
	StatusInactive Status = iota
	// StatusRunning is set by Run while both loops run.
	StatusRunning
	// StatusStopped is final, set by Stop.
	StatusStopped
)

func (s Status) String() string {
	switch s {
	case StatusInactive:
		return "inactive"
	case StatusRunning:
		return "running"
	case StatusStopped:
		return "stopped"
	default:
		return fmt.Sprintf("Status(%d)", int32(s))
	}
}

// Session is an RPC session with one network controller peer
type Session struct {
	config     Config
	conn       *transport.Conn
	source     Source
	dispatcher *dispatch.Dispatcher
	log        *zap.Logger

	enc message.Encoder
	dec message.Decoder

	ctx      context.Context
	cancel   context.CancelFunc
	status   atomic.Int32
	started  atomic.Bool
	stopOnce sync.Once
	done     chan struct{}

	mu  sync.Mutex
	err error
}

// New returns a new Session on conn. Outgoing route events are read
// from source, and inbound requests and notifications are passed to d.
func New(conn net.Conn, source Source, d *dispatch.Dispatcher, config Config) *Session {
	if conn == nil || source == nil || d == nil {
		panic("session.New: conn, source and dispatcher must be non-nil")
	}
	log := config.Logger
	if log == nil {
		log = zap.NewNop()
	}
	s := &Session{
		config:     config,
		source:     source,
		dispatcher: d,
		done:       make(chan struct{}),
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.conn = transport.NewConn(conn, config.RecvBufferSize, log, s.onTransportError)
	s.log = log.With(zap.String("peer", s.conn.RemoteAddr()))
	return s
}

// Run executes the session until it is stopped, the peer disconnects,
// the transport fails or ctx is done. Run returns after both the
// incoming and outgoing loops have exited.
//
// The returned error is the transport failure or (with StrictLogic)
// the logic error that stopped the session, if any.
func (s *Session) Run(ctx context.Context) error {
	if !s.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}
	defer close(s.done)
	if !s.status.CompareAndSwap(int32(StatusInactive), int32(StatusRunning)) {
		// stopped before it started
		return nil
	}
	s.log.Info("session started")

	g := new(errgroup.Group)
	g.Go(func() error {
		select {
		case <-ctx.Done():
			s.Stop()
		case <-s.ctx.Done():
		}
		return nil
	})
	g.Go(func() error { return s.recvLoop(s.ctx) })
	g.Go(func() error { return s.sendLoop(s.ctx) })
	err := g.Wait()

	s.mu.Lock()
	err = multierr.Append(s.err, err)
	s.mu.Unlock()
	s.log.Info("session finished", zap.Error(err))
	return err
}

// Stop stops the session. It is safe to call more than once, and from
// any goroutine.
func (s *Session) Stop() {
	s.stopOnce.Do(func() {
		s.status.Store(int32(StatusStopped))
		s.cancel()
		if err := s.conn.Close(); err != nil {
			s.log.Debug("close failed", zap.Error(err))
		}
	})
}

// Done returns a channel closed when Run has returned
func (s *Session) Done() <-chan struct{} { return s.done }

// Status returns the session's status
func (s *Session) Status() Status { return Status(s.status.Load()) }

// RemoteAddr returns the peer's address
func (s *Session) RemoteAddr() string { return s.conn.RemoteAddr() }

// SendNotification sends a notification to the peer immediately. It
// returns ErrStopped if the session is not running or the write failed.
func (s *Session) SendNotification(method string, params message.Params) error {
	if s.Status() != StatusRunning {
		return ErrStopped
	}
	b, err := s.enc.EncodeNotification(method, params)
	if err != nil {
		return err
	}
	if !s.conn.Send(b) {
		return ErrStopped
	}
	return nil
}

func (s *Session) onTransportError(err error) {
	if !s.conn.Closed() {
		s.mu.Lock()
		if s.err == nil {
			s.err = err
		}
		s.mu.Unlock()
	}
	s.Stop()
}

// logic handles a logic error, returning it only if it must stop the
// session.
func (s *Session) logic(err error) error {
	if s.config.StrictLogic {
		s.log.Error("stopping session on logic error", zap.Error(err))
		return err
	}
	s.log.Warn("ignoring logic error", zap.Error(err))
	return nil
}

func (s *Session) recvLoop(ctx context.Context) error {
	defer s.Stop()
	for {
		data, ok := s.conn.Recv()
		if !ok {
			return nil
		}
		if len(data) == 0 {
			s.log.Info("peer disconnected")
			return nil
		}
		envs, err := s.dec.Feed(data)
		for _, merr := range multierr.Errors(err) {
			s.log.Warn("dropped malformed message", zap.Error(merr))
		}
		for _, env := range envs {
			if err := s.handle(ctx, env); err != nil {
				return err
			}
		}
		runtime.Gosched()
	}
}

func (s *Session) handle(ctx context.Context, env message.Envelope) error {
	switch m := env.(type) {
	case *message.Request:
		s.handleRequest(ctx, m)
	case *message.Notification:
		s.dispatcher.DispatchNotification(ctx, m.Method, m.Params)
	case *message.Response:
		return s.logic(s.dispatcher.DispatchResponse(m))
	}
	return nil
}

func (s *Session) handleRequest(ctx context.Context, req *message.Request) {
	log := s.log.With(zap.Uint64("id", req.ID), zap.String("method", req.Method))
	result, err := s.dispatcher.DispatchRequest(ctx, req.Method, req.Params)
	var b []byte
	if err == nil {
		if b, err = s.enc.EncodeSuccessResponse(req.ID, result); err != nil {
			log.Warn("result not sendable", zap.Error(err))
		}
	} else {
		log.Debug("request failed", zap.Error(err))
	}
	if err != nil {
		var eerr error
		if b, eerr = s.enc.EncodeErrorResponse(req.ID, ncerr.Description(err)); eerr != nil {
			log.Error("dropped response", zap.Error(eerr), zap.NamedError("cause", err))
			return
		}
	}
	s.conn.Send(b)
}

func (s *Session) sendLoop(ctx context.Context) error {
	defer s.Stop()
	batch, _ := s.source.(batchSource)
	for ctx.Err() == nil {
		item, err := s.source.Next(ctx)
		if err != nil {
			switch {
			case ctx.Err() != nil:
			case errors.Is(err, sink.ErrClosed):
				s.log.Info("outgoing source closed")
			default:
				s.log.Error("outgoing source failed", zap.Error(err))
			}
			return nil
		}
		for {
			sent, err := s.sendOutgoing(item)
			if err != nil || !sent {
				return err
			}
			if batch == nil || ctx.Err() != nil {
				break
			}
			var ok bool
			if item, ok = batch.TryNext(); !ok {
				break
			}
		}
		runtime.Gosched()
	}
	return nil
}

// sendOutgoing reports an outgoing item to the peer. It returns false
// once the transport has failed; skipped items return true.
func (s *Session) sendOutgoing(item interface{}) (bool, error) {
	route, ok := item.(*prefix.OutgoingRoute)
	if !ok {
		err := s.logic(ncerr.UnsupportedOutgoing(ncerr.WithMessage(fmt.Sprintf("unsupported outgoing item %T", item))))
		return err == nil, err
	}
	n, err := prefix.Build(route)
	if err != nil {
		s.log.Warn("skipped outgoing route", zap.String("route_dist", route.RouteDist), zap.Error(err))
		return true, nil
	}
	b, err := s.enc.EncodeNotification(n.Method, n.Params)
	if err != nil {
		s.log.Error("skipped outgoing route", zap.String("route_dist", route.RouteDist), zap.Error(err))
		return true, nil
	}
	return s.conn.Send(b), nil
}
