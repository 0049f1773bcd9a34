package smtpsubmit

import (
	"crypto/rand"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/net/publicsuffix"
)

// PendingSend captures one in-flight SendMail call: a copy of the caller's
// headers, the normalized body, and a FIFO recipient queue drained during
// StageDeclaringRecipients.
type PendingSend struct {
	id        ulid.ULID
	headerSet HeaderSet
	body      string
	recipients []string
}

// SendMail submits one message. Precondition: the client is in
// StageReadyToSend and headers contains a From header; otherwise the
// returned future resolves immediately to false with no wire traffic.
func (c *Client) SendMail(headers HeaderSet, body string) *boolFuture {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ctx.Stage != StageReadyToSend || c.activeExtension != nil {
		c.config.Logger.Warn("smtp send rejected", "error", ErrNotReady)
		return newResolvedFuture(false)
	}

	from, ok := headers.GetHeaderValue("From")
	if !ok || from == "" {
		c.config.Logger.Warn("smtp send rejected", "error", ErrMissingFromHeader)
		return newResolvedFuture(false)
	}

	if domain, ok := addressDomain(from); ok {
		if suffix, icannOK := publicsuffix.PublicSuffix(strings.ToLower(domain)); icannOK && suffix == strings.ToLower(domain) {
			c.config.Logger.Warn("smtp send rejected", "error", ErrBareDomainAddress, "from", from)
			return newResolvedFuture(false)
		}
	}

	future := newBoolFuture()
	c.sendCompletion = future
	c.pending = &PendingSend{
		id:        newSendID(),
		headerSet: headers,
		body:      NormalizeBody(body),
	}
	c.config.Logger.Debug("smtp send started", "send_id", c.pending.id.String(), "from", from)

	if err := c.sendThroughExtensionsLocked(formatMailFrom(from)); err != nil {
		c.onHardFailureLocked(err)
		return future
	}
	c.ctx.Stage = StageDeclaringSender

	return future
}

// formatMailFrom and formatRcptTo insert the header's address value
// literally: if it already carries its own angle brackets it is not
// wrapped a second time, matching the "latest source" policy spec.md's
// open question settles on.
func formatMailFrom(addr string) string {
	return "MAIL FROM:" + literalAddress(addr)
}

func formatRcptTo(addr string) string {
	return "RCPT TO:" + literalAddress(addr)
}

func literalAddress(addr string) string {
	if strings.HasPrefix(addr, "<") && strings.HasSuffix(addr, ">") {
		return addr
	}
	return fmt.Sprintf("<%s>", addr)
}

// addressDomain extracts the domain portion of a bare or already-bracketed
// mailbox address, for the public-suffix sanity check only; it is not a
// general address parser (spec.md's Non-goals exclude address syntax
// parsing beyond protocol needs).
func addressDomain(addr string) (string, bool) {
	addr = strings.TrimPrefix(strings.TrimSuffix(addr, ">"), "<")
	at := strings.LastIndexByte(addr, '@')
	if at < 0 || at == len(addr)-1 {
		return "", false
	}
	return addr[at+1:], true
}

func newSendID() ulid.ULID {
	return ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader)
}
