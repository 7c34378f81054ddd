package server

import (
	"net"
	"sync"
	"sync/atomic"
	"time"
)

// ConnState is the lifecycle stage of a connection.
type ConnState int32

const (
	StateAccepted      ConnState = iota // TCP accepted, hooks not run yet
	StateRunning                        // serving frames
	StateDisconnecting                  // loop left, disconnect hook running
	StateClosed                         // socket closed
)

func (s ConnState) String() string {
	switch s {
	case StateAccepted:
		return "ACCEPTED"
	case StateRunning:
		return "RUNNING"
	case StateDisconnecting:
		return "DISCONNECTING"
	case StateClosed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}

// Conn is one client connection. Handlers of a connection run sequentially
// on its own goroutine.
type Conn struct {
	id     uint64
	conn   net.Conn
	remote string
	srv    *Server
	state  atomic.Int32

	// mu связывает флаг ожидания кадра с установкой дедлайна при остановке.
	mu   sync.Mutex
	idle bool
}

func newConn(id uint64, c net.Conn, srv *Server) *Conn {
	return &Conn{
		id:     id,
		conn:   c,
		remote: c.RemoteAddr().String(),
		srv:    srv,
	}
}

// ID returns the server-unique connection id.
func (c *Conn) ID() uint64 { return c.id }

// RemoteAddr returns the peer address.
func (c *Conn) RemoteAddr() string { return c.remote }

// State returns the lifecycle stage.
func (c *Conn) State() ConnState { return ConnState(c.state.Load()) }

func (c *Conn) setState(s ConnState) { c.state.Store(int32(s)) }

// beginIdle marks the connection as waiting for the next frame.
// Returns false when the server is stopping and no frame must be read.
func (c *Conn) beginIdle() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.srv.stopping.Load() {
		return false
	}
	c.idle = true
	c.resetReadDeadline()
	return true
}

// endIdle marks that a frame has started arriving.
func (c *Conn) endIdle() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.idle = false
	c.resetReadDeadline()
}

// interruptIfIdle unblocks a connection waiting for a frame header.
// A connection in the middle of a frame is left alone.
func (c *Conn) interruptIfIdle() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.idle {
		_ = c.conn.SetReadDeadline(time.Now())
	}
}

func (c *Conn) resetReadDeadline() {
	var deadline time.Time
	if t := c.srv.cfg.ReadTimeout; t > 0 {
		deadline = time.Now().Add(t)
	}
	_ = c.conn.SetReadDeadline(deadline)
}

func (c *Conn) write(frame []byte) error {
	if t := c.srv.cfg.WriteTimeout; t > 0 {
		if err := c.conn.SetWriteDeadline(time.Now().Add(t)); err != nil {
			return err
		}
	}
	_, err := c.conn.Write(frame)
	return err
}
