// Package starttls provides a STARTTLS (RFC 3207) Extension that upgrades
// the connection in place and forces a fresh EHLO, the canonical use of the
// core's optional StageForcer/TransportBound capabilities (see
// SPEC_FULL.md 4.3) since the base Extension interface alone cannot express
// either "act on the raw connection" or "resume into a stage other than the
// one being transitioned into".
package starttls

import (
	"context"
	"crypto/tls"
	"fmt"

	"github.com/relaykit/smtpsubmit"
)

// tlsUpgrader is implemented by the core's concrete NetworkConnection; kept
// as a narrow local interface so this package does not need to reach into
// smtpsubmit's unexported transport type.
type tlsUpgrader interface {
	UpgradeToTLS(ctx context.Context, cfg *tls.Config) error
}

// Extension implements smtpsubmit.Extension plus StageForcer and
// TransportBound.
type Extension struct {
	smtpsubmit.NopExtension

	tlsConfig *tls.Config

	conn      smtpsubmit.NetworkConnection
	attempted bool
	forced    bool

	sendRaw       func(string)
	stageComplete func(bool)
}

// New returns a STARTTLS extension upgrading with cfg. cfg is passed to the
// handshake unchanged: no ServerName is filled in, so a nil cfg, or one with
// neither ServerName nor InsecureSkipVerify set, makes the handshake fail.
func New(cfg *tls.Config) *Extension {
	return &Extension{tlsConfig: cfg}
}

func (e *Extension) Reset() {
	e.attempted = false
	e.forced = false
}

func (e *Extension) BindConnection(conn smtpsubmit.NetworkConnection) {
	e.conn = conn
}

// IsExtraProtocolStageNeededHere demands exactly one turn per connection, at
// the first transition it is consulted on. The core consults only extensions
// the server has advertised, so that is normally the transition into
// ReadyToSend at the end of the EHLO reply; an extension advertised earlier
// in that reply is consulted first.
func (e *Extension) IsExtraProtocolStageNeededHere(ctx *smtpsubmit.MessageContext) bool {
	return !e.attempted
}

func (e *Extension) GoAhead(sendRaw func(string), stageComplete func(bool)) {
	e.attempted = true
	e.sendRaw = sendRaw
	e.stageComplete = stageComplete
	sendRaw("STARTTLS")
}

// ForceStage resumes into StageHelloResponse once the TLS handshake
// succeeds and the fresh EHLO has been sent, since the server must
// re-advertise its extensions over the encrypted channel.
func (e *Extension) ForceStage() (smtpsubmit.ProtocolStage, bool) {
	if e.forced {
		return smtpsubmit.StageHelloResponse, true
	}
	return 0, false
}

// HandleServerMessage expects exactly one reply: 220 Ready to start TLS.
// On success it performs the handshake and re-issues EHLO itself, since the
// core only issues EHLO in response to the greeting banner.
func (e *Extension) HandleServerMessage(ctx *smtpsubmit.MessageContext, reply smtpsubmit.Reply) bool {
	if reply.Code != 220 {
		e.stageComplete(false)
		return true
	}

	upgrader, ok := e.conn.(tlsUpgrader)
	if !ok {
		e.stageComplete(false)
		return true
	}
	if err := upgrader.UpgradeToTLS(context.Background(), e.tlsConfig); err != nil {
		e.stageComplete(false)
		return true
	}

	ip := "0.0.0.0"
	if addr := e.conn.BoundAddress(); addr != nil {
		if v4 := addr.To4(); v4 != nil {
			ip = v4.String()
		}
	}
	e.sendRaw(fmt.Sprintf("EHLO [%s]", ip))

	e.forced = true
	e.stageComplete(true)
	return true
}
