// Package smtpsubmit implements the client-side half of RFC 5321: a single
// long-lived Client that carries one SMTP submission session at a time over
// a caller-supplied Transport.
//
// The Client is a state machine, not a request/response wrapper: bytes
// arrive from the Transport on its own goroutine, are reassembled into
// lines, parsed into replies, and drive stage transitions that may in turn
// consult registered Extensions before the caller's SendMail ever sees a
// result. Callers observe progress and completion through one-shot futures
// (GetReadyOrBrokenFuture, and the future returned by SendMail) rather than
// by blocking on the wire directly.
//
// # Extensions
//
// AUTH (see extensions/auth) and STARTTLS (see extensions/starttls) are
// provided as reference Extensions; the core issues neither AUTH nor
// STARTTLS commands itself.
package smtpsubmit
