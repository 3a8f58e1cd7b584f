package httpadapter

import (
	"context"
	"net"
	"sync/atomic"
	"time"
)

const defaultKeepAlive = 30 * time.Second

// timeouts holds the socket timeouts. They are read on every dial, read and
// write, so a change reaches pooled connections on their next I/O.
type timeouts struct {
	connect atomic.Int64
	read    atomic.Int64
	write   atomic.Int64
}

func (t *timeouts) connectTimeout() time.Duration { return time.Duration(t.connect.Load()) }
func (t *timeouts) readTimeout() time.Duration    { return time.Duration(t.read.Load()) }
func (t *timeouts) writeTimeout() time.Duration   { return time.Duration(t.write.Load()) }

// deadline returns the absolute deadline for d, or the zero time for no deadline.
func deadline(d time.Duration) time.Time {
	if d <= 0 {
		return time.Time{}
	}
	return time.Now().Add(d)
}

// deadlineConn arms a fresh read or write deadline before every I/O call.
type deadlineConn struct {
	net.Conn
	timeouts *timeouts
}

func (c *deadlineConn) Read(p []byte) (int, error) {
	if err := c.Conn.SetReadDeadline(deadline(c.timeouts.readTimeout())); err != nil {
		return 0, err
	}
	return c.Conn.Read(p)
}

func (c *deadlineConn) Write(p []byte) (int, error) {
	if err := c.Conn.SetWriteDeadline(deadline(c.timeouts.writeTimeout())); err != nil {
		return 0, err
	}
	return c.Conn.Write(p)
}

func defaultDial() DialFunc {
	d := &net.Dialer{KeepAlive: defaultKeepAlive}
	return d.DialContext
}

// dialContext is installed as the transport's dialer. The connect timeout
// bounds the whole dial, including a SOCKS handshake.
func (a *Adapter) dialContext(ctx context.Context, network, addr string) (net.Conn, error) {
	if d := a.timeouts.connectTimeout(); d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}

	var conn net.Conn
	var err error
	if p := a.Proxy(); p.IsSOCKS() {
		conn, err = p.dialSOCKS(ctx, a.dial, network, addr)
	} else {
		conn, err = a.dial(ctx, network, addr)
	}
	if err != nil {
		return nil, err
	}
	return &deadlineConn{Conn: conn, timeouts: &a.timeouts}, nil
}
