package smtpsubmit

import (
	"context"
	"crypto/tls"
	"io"
	"net"
	"strconv"
)

// Transport is the external collaborator that opens connections. TLS
// wrapping, if any, is the Transport's own responsibility — the core never
// sees a distinction between a plain and a TLS-wrapped connection beyond
// the NetworkConnection it gets back.
type Transport interface {
	Connect(ctx context.Context, host string, port int) (NetworkConnection, error)
}

// NetworkConnection is a single opened connection. Process must be called
// exactly once; it starts delivering inbound bytes to onBytes and, exactly
// once, reports closure (err is nil for a graceful close) to onClose.
type NetworkConnection interface {
	Process(onBytes func([]byte), onClose func(err error))
	SendMessage(p []byte) error
	Close(graceful bool) error
	BoundAddress() net.IP
}

// tcpTransport implements Transport over net.Dial / tls.Dial, adapted from
// the teacher's client.go Dial/DialTLS/StartTLS, which drove a blocking
// request/response loop; here the read side runs on its own goroutine and
// feeds callbacks instead.
type tcpTransport struct {
	tlsConfig *tls.Config
}

// NewTCPTransport returns a Transport dialing plain TCP connections.
func NewTCPTransport() Transport {
	return &tcpTransport{}
}

// NewTLSTransport returns a Transport dialing TLS connections directly
// (implicit TLS, e.g. port 465), using cfg (which may be nil for defaults).
func NewTLSTransport(cfg *tls.Config) Transport {
	if cfg == nil {
		cfg = &tls.Config{}
	}
	return &tcpTransport{tlsConfig: cfg}
}

func (t *tcpTransport) Connect(ctx context.Context, host string, port int) (NetworkConnection, error) {
	addr := net.JoinHostPort(host, strconv.Itoa(port))

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}

	if t.tlsConfig != nil {
		cfg := t.tlsConfig.Clone()
		if cfg.ServerName == "" {
			cfg.ServerName = host
		}
		tlsConn := tls.Client(conn, cfg)
		if err := tlsConn.HandshakeContext(ctx); err != nil {
			conn.Close()
			return nil, err
		}
		return &tcpConnection{conn: tlsConn, raw: conn}, nil
	}

	return &tcpConnection{conn: conn, raw: conn}, nil
}

// tcpConnection wraps a net.Conn (plain or TLS) as a NetworkConnection.
type tcpConnection struct {
	conn net.Conn
	raw  net.Conn // the underlying non-TLS conn, for BoundAddress
}

func (c *tcpConnection) Process(onBytes func([]byte), onClose func(err error)) {
	go func() {
		buf := make([]byte, 4096)
		for {
			n, err := c.conn.Read(buf)
			if n > 0 {
				chunk := make([]byte, n)
				copy(chunk, buf[:n])
				onBytes(chunk)
			}
			if err != nil {
				if err == io.EOF {
					err = nil
				}
				onClose(err)
				return
			}
		}
	}()
}

func (c *tcpConnection) SendMessage(p []byte) error {
	_, err := c.conn.Write(p)
	return err
}

func (c *tcpConnection) Close(graceful bool) error {
	return c.conn.Close()
}

func (c *tcpConnection) BoundAddress() net.IP {
	addr, ok := c.raw.LocalAddr().(*net.TCPAddr)
	if !ok {
		return nil
	}
	return addr.IP
}

// UpgradeToTLS replaces the connection's underlying net.Conn with a TLS
// client wrapping it, used by the starttls extension via TransportBound.
func (c *tcpConnection) UpgradeToTLS(ctx context.Context, cfg *tls.Config) error {
	tlsConn := tls.Client(c.conn, cfg)
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		return err
	}
	c.conn = tlsConn
	return nil
}
