package server

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/andaru/netctrl/config"
	"github.com/andaru/netctrl/dispatch"
	"github.com/andaru/netctrl/message"
	"github.com/andaru/netctrl/session"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var (
	// ErrServing is returned by Serve if the server is already serving
	ErrServing = errors.New("server already serving")
	// ErrServerStopped is returned by Serve after Stop
	ErrServerStopped = errors.New("server stopped")
)

// Config contains Server configuration
type Config struct {
	// Logger defaults to a no-op logger. It is also the session logger
	// unless Session.Logger is set.
	Logger *zap.Logger
	// Registry receives inbound requests and notifications
	Registry dispatch.Registry
	// Source supplies outgoing route events to the active session. It
	// must be non-nil.
	Source session.Source
	// Session configures each accepted session
	Session session.Config
}

// Status is the server's (present) state.
type Status int32

const (
	// StatusIdle is the initial state, before Serve.
	StatusIdle Status = iota
	// StatusListening is set while serving without an active session.
	StatusListening
	// StatusSessionActive is set while a session runs.
	StatusSessionActive
	// StatusStopped is final, set by Stop.
	StatusStopped
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusListening:
		return "listening"
	case StatusSessionActive:
		return "session-active"
	case StatusStopped:
		return "stopped"
	default:
		return fmt.Sprintf("Status(%d)", int32(s))
	}
}

// Server is the network controller server
type Server struct {
	config     Config
	log        *zap.Logger
	dispatcher *dispatch.Dispatcher

	status atomic.Int32
	active atomic.Pointer[session.Session]

	mu       sync.Mutex
	ln       net.Listener
	stopped  bool
	sessions sync.WaitGroup
}

// New returns a new Server
func New(cfg Config) *Server {
	if cfg.Source == nil {
		panic("server.New: Source must be non-nil")
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Session.Logger == nil {
		cfg.Session.Logger = cfg.Logger
	}
	return &Server{
		config:     cfg,
		log:        cfg.Logger,
		dispatcher: dispatch.New(cfg.Registry, cfg.Logger),
	}
}

// Start validates the bind address and port, listens on them and
// serves until ctx is done or Stop is called.
func (s *Server) Start(ctx context.Context, ip string, port int) error {
	if err := config.ValidateBindAddress(ip); err != nil {
		return err
	}
	if err := config.ValidateBindPort(port); err != nil {
		return err
	}
	addr := net.JoinHostPort(ip, strconv.Itoa(port))
	ln, err := net.Listen("tcp4", addr)
	if err != nil {
		return errors.Wrapf(err, "listen on %s", addr)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done or Stop is called,
// running one session at a time. Stop closes ln. Serve returns nil
// once stopped.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.mu.Lock()
	switch {
	case s.stopped:
		s.mu.Unlock()
		ln.Close()
		return ErrServerStopped
	case s.ln != nil:
		s.mu.Unlock()
		return ErrServing
	}
	s.ln = ln
	s.status.Store(int32(StatusListening))
	s.mu.Unlock()

	log := s.log.With(zap.Stringer("addr", ln.Addr()))
	log.Info("listening for network controller")
	defer context.AfterFunc(ctx, s.Stop)()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if s.isStopped() {
				log.Info("stopped listening")
				return nil
			}
			s.Stop()
			return errors.Wrap(err, "accept")
		}
		log.Info("accepted network controller", zap.Stringer("peer", conn.RemoteAddr()))
		s.replace(conn)
	}
}

// replace stops the active session, waits for it to finish and starts
// a new session on conn.
func (s *Server) replace(conn net.Conn) {
	if old := s.active.Load(); old != nil {
		s.log.Info("replacing session", zap.String("peer", old.RemoteAddr()))
		old.Stop()
		<-old.Done()
	}

	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		conn.Close()
		return
	}
	sess := session.New(conn, s.config.Source, s.dispatcher, s.config.Session)
	s.active.Store(sess)
	s.status.Store(int32(StatusSessionActive))
	s.sessions.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.sessions.Done()
		if err := sess.Run(context.Background()); err != nil {
			s.log.Warn("session failed", zap.String("peer", sess.RemoteAddr()), zap.Error(err))
		}
		s.mu.Lock()
		if s.active.CompareAndSwap(sess, nil) && !s.stopped {
			s.status.Store(int32(StatusListening))
		}
		s.mu.Unlock()
	}()
}

func (s *Server) isStopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}

// SendNotification sends a notification on the active session. It is
// a no-op returning nil when no session is running.
func (s *Server) SendNotification(method string, params message.Params) error {
	sess := s.active.Load()
	if sess == nil || sess.Status() != session.StatusRunning {
		return nil
	}
	return sess.SendNotification(method, params)
}

// Session returns the active session, or nil
func (s *Server) Session() *session.Session { return s.active.Load() }

// Status returns the server's status
func (s *Server) Status() Status { return Status(s.status.Load()) }

// Stop closes the listener, stops the active session and waits for it
// to finish. It is safe to call more than once.
func (s *Server) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	s.status.Store(int32(StatusStopped))
	if s.ln != nil {
		s.ln.Close()
	}
	s.mu.Unlock()

	if sess := s.active.Load(); sess != nil {
		sess.Stop()
	}
	s.sessions.Wait()
}
