package smtpsubmit

import (
	"context"
	"log/slog"
	"strings"
	"sync"
)

// Client is a single long-lived SMTP submission session, adapted from the
// teacher's client.go lifecycle but restructured from a blocking
// request/response loop into a callback-driven state machine: inbound bytes
// arrive on the Transport's own goroutine and drive TransitionProtocolStage
// synchronously, under Client's lock.
//
// A Client is created empty; Configure binds the Transport. Extensions may
// be registered at any time before Connect.
type Client struct {
	config ClientConfig

	mu sync.Mutex

	transport Transport
	conn      NetworkConnection

	reassembler *Reassembler
	registry    *ExtensionRegistry

	ctx             MessageContext
	activeExtension Extension

	pending *PendingSend

	readyWaiters   []*boolFuture
	sendCompletion *boolFuture

	connected bool

	diagSubs []diagnosticSubscription
	diagSeq  uint64
}

// NewClient returns an empty Client using cfg (see DefaultClientConfig).
func NewClient(cfg ClientConfig) *Client {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Client{
		config:   cfg,
		registry: NewExtensionRegistry(),
	}
}

// Configure binds the Transport collaborator used by subsequent Connect
// calls.
func (c *Client) Configure(transport Transport) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.transport = transport
}

// RegisterExtension adds ext under name. Safe to call at any time. An
// extension registered after Connect is not Reset or bound to the current
// connection, but is still marked supported if the server advertises it in
// an EHLO reply that arrives afterwards.
func (c *Client) RegisterExtension(name string, ext Extension) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.registry.Register(name, ext)
}

// Connect resolves asynchronously to true iff the connection is established
// and the Transport's Process call has wired up without error. No SMTP-level
// bytes are sent by Connect itself; the state machine waits in StageGreeting
// for the server's banner once bytes start arriving.
func (c *Client) Connect(host string, port int) *boolFuture {
	future := newBoolFuture()

	go func() {
		c.mu.Lock()
		if c.transport == nil {
			c.config.Logger.Warn("smtp connect failed", "error", ErrNotConfigured)
			c.mu.Unlock()
			future.resolve(false)
			return
		}

		c.registry.ResetAll()
		c.registry.ResetSupported()
		c.ctx = MessageContext{Stage: StageGreeting}
		c.activeExtension = nil
		c.pending = nil
		c.reassembler = NewReassembler(c.config.MaxLineLength)
		transport := c.transport
		connectTimeout := c.config.ConnectTimeout
		c.mu.Unlock()

		dialCtx := context.Background()
		if connectTimeout > 0 {
			var cancel context.CancelFunc
			dialCtx, cancel = context.WithTimeout(dialCtx, connectTimeout)
			defer cancel()
		}

		conn, err := transport.Connect(dialCtx, host, port)
		if err != nil {
			c.mu.Lock()
			c.config.Logger.Warn("smtp connect failed", "host", host, "port", port, "error", err)
			c.mu.Unlock()
			future.resolve(false)
			return
		}

		c.mu.Lock()
		c.conn = conn
		c.connected = true
		for _, name := range c.registry.order {
			if tb, ok := c.registry.byName[name].(TransportBound); ok {
				tb.BindConnection(conn)
			}
		}
		c.mu.Unlock()

		conn.Process(c.onBytes, c.onClose)

		future.resolve(true)
	}()

	return future
}

// Disconnect closes the connection (best-effort graceful), drops the
// connection handle, and resets the MessageContext to its initial value.
func (c *Client) Disconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.disconnectLocked()
}

func (c *Client) disconnectLocked() {
	if c.conn != nil {
		c.conn.Close(true)
	}
	c.conn = nil
	c.connected = false
	c.ctx = MessageContext{Stage: StageGreeting}
	c.activeExtension = nil
}

// GetReadyOrBrokenFuture returns a future resolving to true once the
// session enters StageReadyToSend with no active extension, or false if the
// connection is already broken or becomes broken first.
func (c *Client) GetReadyOrBrokenFuture() *boolFuture {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected {
		return newResolvedFuture(false)
	}
	if c.ctx.Stage == StageReadyToSend && c.activeExtension == nil {
		return newResolvedFuture(true)
	}

	f := newBoolFuture()
	c.readyWaiters = append(c.readyWaiters, f)
	return f
}

// onReadyLocked fires every pending ready-or-broken waiter with true,
// atomically swapping out the waiter list. Caller must hold c.mu.
func (c *Client) onReadyLocked() {
	waiters := c.readyWaiters
	c.readyWaiters = nil
	for _, f := range waiters {
		f.resolve(true)
	}
}

// onHardFailureLocked closes the connection and resolves every outstanding
// waiter (ready-or-broken, and any in-flight send) to false. Caller must
// hold c.mu.
func (c *Client) onHardFailureLocked(err error) {
	c.config.Logger.Warn("smtp hard failure", "error", err)

	waiters := c.readyWaiters
	c.readyWaiters = nil
	for _, f := range waiters {
		f.resolve(false)
	}

	if c.sendCompletion != nil {
		c.sendCompletion.resolve(false)
		c.sendCompletion = nil
	}

	c.disconnectLocked()
}

// onBytes is wired to the NetworkConnection as its receive callback.
func (c *Client) onBytes(p []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.reassembler == nil {
		return
	}
	lines, err := c.reassembler.Feed(p)
	for _, line := range lines {
		c.emitDiagnostic('S', slog.LevelDebug, strings.TrimSuffix(line, "\r\n"))
		reply, perr := ParseReply(line)
		if perr != nil {
			c.onHardFailureLocked(perr)
			return
		}
		if !c.handleReplyLocked(reply) {
			return
		}
	}
	if err != nil {
		c.onHardFailureLocked(err)
	}
}

// onClose is wired to the NetworkConnection as its close callback.
func (c *Client) onClose(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.connected {
		return
	}
	if err == nil {
		err = ErrConnectionClosed
	}
	c.onHardFailureLocked(err)
}

// sendRawLocked writes line (already CRLF-terminated) to the connection and
// logs it unless logDiagnostic is false — extension-driven output is not
// logged (spec.md 6). Caller must hold c.mu.
func (c *Client) sendRawLocked(line string, logDiagnostic bool) error {
	if c.conn == nil {
		return ErrConnectionClosed
	}
	if logDiagnostic {
		trimmed := strings.TrimSuffix(line, "\r\n")
		for _, l := range strings.Split(trimmed, "\r\n") {
			c.emitDiagnostic('C', slog.LevelDebug, l)
		}
	}
	return c.conn.SendMessage([]byte(line))
}

// sendThroughExtensionsLocked applies ModifyMessage in supported-extension
// insertion order, appends CRLF, and sends. Caller must hold c.mu.
func (c *Client) sendThroughExtensionsLocked(lineWithoutCRLF string) error {
	line := lineWithoutCRLF
	for _, name := range c.registry.SupportedInOrder() {
		ext, _ := c.registry.Get(name)
		line = ext.ModifyMessage(&c.ctx, line)
	}
	return c.sendRawLocked(line+"\r\n", true)
}
