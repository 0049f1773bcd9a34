package smtpsubmit

import (
	"log/slog"
	"time"
)

// ClientConfig contains configuration options for a Client.
type ClientConfig struct {
	// ---- Timeouts ----

	// ConnectTimeout bounds the Transport's Connect call.
	// Default: 30 seconds
	ConnectTimeout time.Duration

	// ReadyTimeout bounds how long GetReadyOrBrokenFuture's caller should
	// wait before treating the session as unresponsive. Not enforced by
	// the Client itself; exposed for callers to apply to Wait.
	// Default: 2 minutes
	ReadyTimeout time.Duration

	// ---- Line Framing ----

	// MaxLineLength is the maximum length, including CRLF, of a single
	// reply line (RFC 5321: 512).
	// Default: 512
	MaxLineLength int

	// ---- Logging ----

	// Logger is the structured logger used for diagnostics. Every
	// outbound line the core sends (not extension-driven output) is
	// logged at Debug level prefixed "C:"; every inbound line at Debug
	// prefixed "S:"; connection failures at Warn level.
	// Default: slog.Default()
	Logger *slog.Logger
}

// DefaultClientConfig returns a ClientConfig with sensible defaults.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		ConnectTimeout: 30 * time.Second,
		ReadyTimeout:   2 * time.Minute,
		MaxLineLength:  512,
		Logger:         slog.Default(),
	}
}
