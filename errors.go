package smtpsubmit

import "errors"

var (
	// ErrMalformedReply is a hard failure: a server line failed reply
	// parsing (bad code, bad separator, or missing CRLF).
	ErrMalformedReply = errors.New("smtpsubmit: malformed reply line")

	// ErrLineTooLong is a hard failure: a line, or the reassembler's
	// buffer while still waiting for a CRLF, exceeded its configured
	// maximum.
	ErrLineTooLong = errors.New("smtpsubmit: line too long")

	// ErrUnexpectedReply is a hard failure: a reply code not valid for the
	// current stage.
	ErrUnexpectedReply = errors.New("smtpsubmit: unexpected reply for stage")

	// ErrExtensionRejected is a hard failure: an active extension's
	// HandleServerMessage returned false.
	ErrExtensionRejected = errors.New("smtpsubmit: extension rejected server message")

	// ErrConnectionClosed is a hard failure: the transport reported close.
	ErrConnectionClosed = errors.New("smtpsubmit: connection closed")

	// ErrNotConfigured is logged by Connect, whose future then resolves to
	// false, when no Transport has been bound via Configure.
	ErrNotConfigured = errors.New("smtpsubmit: no transport configured")

	// ErrNotReady is a precondition failure: SendMail was called outside
	// StageReadyToSend.
	ErrNotReady = errors.New("smtpsubmit: client is not ready to send")

	// ErrMissingFromHeader is a precondition failure: SendMail's headers
	// had no From header.
	ErrMissingFromHeader = errors.New("smtpsubmit: headers missing From")

	// ErrBareDomainAddress rejects a From address whose domain is itself a
	// public suffix (e.g. "user@co.uk").
	ErrBareDomainAddress = errors.New("smtpsubmit: from address domain is a bare public suffix")
)
