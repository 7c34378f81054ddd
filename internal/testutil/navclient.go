package testutil

import (
	"errors"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/udisondev/navgo/internal/constants"
	"github.com/udisondev/navgo/internal/geom"
	"github.com/udisondev/navgo/internal/protocol"
)

// NavClient is a test client of the navigation protocol.
type NavClient struct {
	conn    net.Conn
	buf     []byte
	timeout time.Duration
}

// NewNavClient подключается к серверу навигации.
func NewNavClient(t testing.TB, addr string) *NavClient {
	t.Helper()
	return &NavClient{
		conn:    DialTCP(t, addr),
		buf:     make([]byte, constants.MaxFrameLength),
		timeout: 5 * time.Second,
	}
}

// Conn returns the underlying connection for raw writes.
func (c *NavClient) Conn() net.Conn { return c.conn }

// Close закрывает соединение.
func (c *NavClient) Close() error { return c.conn.Close() }

// Call sends one request frame and waits for the response frame.
func (c *NavClient) Call(msgType protocol.MessageType, body []byte) ([]byte, error) {
	if err := c.conn.SetDeadline(time.Now().Add(c.timeout)); err != nil {
		return nil, err
	}
	if err := protocol.WriteFrame(c.conn, msgType, body); err != nil {
		return nil, err
	}
	got, resp, err := protocol.ReadFrame(c.conn, c.buf)
	if err != nil {
		return nil, err
	}
	if got != msgType {
		return nil, fmt.Errorf("response type %s, want %s", got, msgType)
	}
	return resp, nil
}

// Path sends PATH (or RANDOM_PATH when random is set) and decodes the point list.
func (c *NavClient) Path(req protocol.PathRequest, random bool) ([]geom.Vec3, error) {
	t := protocol.MsgPath
	if random {
		t = protocol.MsgRandomPath
	}
	body, err := c.Call(t, req.AppendBody(nil))
	if err != nil {
		return nil, err
	}
	return protocol.DecodePoints(body)
}

// Point sends a request answered by a single point.
func (c *NavClient) Point(msgType protocol.MessageType, body []byte) (geom.Vec3, error) {
	resp, err := c.Call(msgType, body)
	if err != nil {
		return geom.Vec3{}, err
	}
	return protocol.DecodePoint(resp)
}

// RandomPoint sends RANDOM_POINT for mapID.
func (c *NavClient) RandomPoint(mapID int32) (geom.Vec3, error) {
	return c.Point(protocol.MsgRandomPoint, protocol.RandomPointRequest{MapID: mapID}.AppendBody(nil))
}

// WaitClosed blocks until the server closes the connection.
func (c *NavClient) WaitClosed(t testing.TB) {
	t.Helper()

	_ = c.conn.SetReadDeadline(time.Now().Add(c.timeout))
	var b [1]byte
	for {
		_, err := c.conn.Read(b[:])
		if err == nil {
			continue
		}
		var ne net.Error
		if errors.As(err, &ne) && ne.Timeout() {
			t.Fatalf("connection still open after %v", c.timeout)
		}
		// EOF или ECONNRESET.
		return
	}
}
