// Package server is a framed TCP server: an accept loop, one goroutine per
// connection and a static message-type dispatch table.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"net"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/udisondev/navgo/internal/constants"
	"github.com/udisondev/navgo/internal/protocol"
)

// HandlerFunc serves one request frame. It writes the response body into w;
// the server frames it with the request's message type. A returned error
// is a protocol error and closes the connection.
type HandlerFunc func(ctx context.Context, c *Conn, body []byte, w *protocol.Writer) error

// Handlers maps message types to handlers. It is copied by New and never modified afterwards.
type Handlers map[protocol.MessageType]HandlerFunc

// Hooks are invoked around a connection's lifetime.
// Connect and disconnect are logged by the hooks; the server logs only failures.
type Hooks struct {
	// OnConnect runs before the first frame is read. An error closes the
	// connection without calling OnDisconnect.
	OnConnect func(c *Conn) error
	// OnDisconnect runs exactly once after the connection's loop exits.
	OnDisconnect func(c *Conn)
}

// Config holds listener and socket settings.
type Config struct {
	BindAddress string
	Port        int
	// ReadTimeout bounds the wait for a frame; zero waits forever.
	ReadTimeout time.Duration
	// WriteTimeout bounds writing a response; zero waits forever.
	WriteTimeout time.Duration
}

// Server accepts navigation clients.
type Server struct {
	cfg      Config
	handlers Handlers
	hooks    Hooks

	readPool *BytePool
	sendPool *BytePool

	nextID   atomic.Uint64
	conns    sync.Map // map[uint64]*Conn
	active   atomic.Int64
	stopping atomic.Bool

	listener net.Listener
	mu       sync.Mutex
}

// New creates a server with a fixed dispatch table.
func New(cfg Config, handlers Handlers, hooks Hooks) *Server {
	return &Server{
		cfg:      cfg,
		handlers: maps.Clone(handlers),
		hooks:    hooks,
		readPool: NewBytePool(constants.MaxFrameLength, constants.MaxFrameLength),
		sendPool: NewBytePool(constants.DefaultSendBufSize, constants.DefaultReadBufSize),
	}
}

// Addr возвращает адрес, на котором слушает сервер.
// Возвращает nil если сервер ещё не запущен.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// ActiveConns returns the number of open connections.
func (s *Server) ActiveConns() int {
	return int(s.active.Load())
}

// Close stops accepting connections. Connections waiting for a frame are
// released; a connection in the middle of a frame finishes it and exits
// before reading the next one.
func (s *Server) Close() error {
	s.stopping.Store(true)

	s.mu.Lock()
	var err error
	if s.listener != nil {
		err = s.listener.Close()
		if errors.Is(err, net.ErrClosed) {
			err = nil
		}
	}
	s.mu.Unlock()

	s.conns.Range(func(_, v any) bool {
		v.(*Conn).interruptIfIdle()
		return true
	})
	return err
}

// Run begins listening for client connections.
// Создаёт listener на cfg.BindAddress:cfg.Port и запускает accept loop.
func (s *Server) Run(ctx context.Context) error {
	addr := net.JoinHostPort(s.cfg.BindAddress, fmt.Sprint(s.cfg.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve принимает готовый listener и запускает accept loop.
// Returns after the listener is closed and every connection has exited.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	if s.stopping.Load() {
		_ = ln.Close()
		return nil
	}

	stop := context.AfterFunc(ctx, func() { _ = s.Close() })
	defer stop()

	var wg sync.WaitGroup
	slog.Info("navigation server started", "address", ln.Addr())
	s.acceptLoop(ctx, &wg, ln)
	wg.Wait()

	slog.Info("navigation server stopped", "address", ln.Addr())
	return nil
}

func (s *Server) acceptLoop(ctx context.Context, wg *sync.WaitGroup, ln net.Listener) {
	for {
		nc, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) || s.stopping.Load() {
				return
			}
			slog.Error("failed to accept new connection", "err", err)
			continue
		}

		c := newConn(s.nextID.Add(1), nc, s)
		s.conns.Store(c.id, c)
		s.active.Add(1)

		// Соединение могло прийти одновременно с Close.
		if s.stopping.Load() {
			s.release(c)
			return
		}

		wg.Go(func() {
			s.handleConnection(ctx, c)
		})
	}
}

func (s *Server) handleConnection(ctx context.Context, c *Conn) {
	if s.hooks.OnConnect != nil {
		if err := s.hooks.OnConnect(c); err != nil {
			slog.Error("connect hook failed", "client", c.id, "remote", c.remote, "err", err)
			s.release(c)
			return
		}
	}

	c.setState(StateRunning)

	defer func() {
		c.setState(StateDisconnecting)
		if s.hooks.OnDisconnect != nil {
			s.hooks.OnDisconnect(c)
		}
		s.release(c)
	}()

	readBuf := s.readPool.Get()
	defer s.readPool.Put(readBuf)
	w := protocol.NewWriter(s.sendPool.Get())
	defer func() { s.sendPool.Put(w.Buffer()) }()

	for {
		ok, err := s.handleFrame(ctx, c, readBuf, w)
		if err != nil {
			s.logFrameError(c, err)
		}
		if !ok {
			return
		}
	}
}

// handleFrame reads, dispatches and answers one frame.
// Returns false when the connection must be closed.
func (s *Server) handleFrame(ctx context.Context, c *Conn, readBuf []byte, w *protocol.Writer) (bool, error) {
	if !c.beginIdle() {
		return false, nil
	}
	n, err := protocol.ReadFrameHeader(c.conn)
	c.endIdle()
	if err != nil {
		return false, fmt.Errorf("read frame: %w", err)
	}

	msgType, body, err := protocol.ReadFramePayload(c.conn, readBuf, n)
	if err != nil {
		return false, fmt.Errorf("read frame: %w", err)
	}

	h, ok := s.handlers[msgType]
	if !ok {
		return false, fmt.Errorf("%w: %s", protocol.ErrUnknownMessageType, msgType)
	}

	w.Reset()
	if err := h(ctx, c, body, w); err != nil {
		return false, fmt.Errorf("handle %s: %w", msgType, err)
	}

	frame := w.Finish(msgType)
	if len(frame)-constants.FrameHeaderSize > constants.MaxFrameLength {
		return false, fmt.Errorf("%w: %s response of %d bytes", protocol.ErrMalformedFrame, msgType, len(frame))
	}
	if err := c.write(frame); err != nil {
		return false, fmt.Errorf("write %s: %w", msgType, err)
	}
	return true, nil
}

func (s *Server) logFrameError(c *Conn, err error) {
	switch {
	case errors.Is(err, io.EOF), errors.Is(err, net.ErrClosed):
		slog.Debug("connection closed by peer", "client", c.id)
	case errors.Is(err, os.ErrDeadlineExceeded) && s.stopping.Load():
		slog.Debug("connection released on shutdown", "client", c.id)
	case errors.Is(err, protocol.ErrUnknownMessageType), errors.Is(err, protocol.ErrMalformedFrame):
		slog.Warn("protocol error", "client", c.id, "remote", c.remote, "err", err)
	default:
		slog.Error("connection error", "client", c.id, "remote", c.remote, "err", err)
	}
}

func (s *Server) release(c *Conn) {
	_ = c.conn.Close()
	c.setState(StateClosed)
	s.conns.Delete(c.id)
	s.active.Add(-1)
}
