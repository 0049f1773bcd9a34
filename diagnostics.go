package smtpsubmit

import (
	"context"
	"log/slog"
)

// DiagnosticEvent is one line of wire-level diagnostics.
type DiagnosticEvent struct {
	Level     slog.Level
	Direction byte // 'C' for outbound, 'S' for inbound
	Line      string
}

// DiagnosticSink receives diagnostic events from SubscribeToDiagnostics.
type DiagnosticSink func(DiagnosticEvent)

type diagnosticSubscription struct {
	id       uint64
	sink     DiagnosticSink
	minLevel slog.Level
}

// SubscribeToDiagnostics registers sink to receive every diagnostic event at
// or above minLevel, in addition to the Client's own slog.Logger output.
// The returned function unsubscribes.
func (c *Client) SubscribeToDiagnostics(sink DiagnosticSink, minLevel slog.Level) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.diagSeq++
	id := c.diagSeq
	c.diagSubs = append(c.diagSubs, diagnosticSubscription{id: id, sink: sink, minLevel: minLevel})

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		for i, s := range c.diagSubs {
			if s.id == id {
				c.diagSubs = append(c.diagSubs[:i], c.diagSubs[i+1:]...)
				break
			}
		}
	}
}

// emitDiagnostic logs line at level and fans it out to subscribers. Callers
// must hold c.mu.
func (c *Client) emitDiagnostic(direction byte, level slog.Level, line string) {
	if c.config.Logger != nil {
		c.config.Logger.Log(context.Background(), level, "smtp wire", "dir", string(direction), "line", string(direction)+": "+line)
	}
	ev := DiagnosticEvent{Level: level, Direction: direction, Line: line}
	for _, s := range c.diagSubs {
		if level >= s.minLevel {
			s.sink(ev)
		}
	}
}
