// Package auth provides an AUTH (RFC 4954) Extension hosting PLAIN and
// LOGIN client-side SASL mechanisms, the reference implementation
// demonstrating that the core's Extension interface is sufficient to host
// SASL mechanisms without the core itself knowing anything about them.
package auth

import (
	"encoding/base64"
	"strings"

	"github.com/relaykit/smtpsubmit"
	"github.com/relaykit/smtpsubmit/sasl"
)

// Extension implements smtpsubmit.Extension, demanding an extra protocol
// stage at ReadyToSend the first time it becomes supported, to run the AUTH
// exchange before the caller's SendMail can proceed.
type Extension struct {
	smtpsubmit.NopExtension

	creds sasl.Credentials

	serverMechanisms []string
	attempted        bool
	mech             sasl.ClientMechanism

	sendRaw       func(string)
	stageComplete func(bool)
}

// New returns an AUTH extension that will authenticate with creds once the
// server advertises support, preferring PLAIN over LOGIN.
func New(creds sasl.Credentials) *Extension {
	return &Extension{creds: creds}
}

func (e *Extension) Reset() {
	e.serverMechanisms = nil
	e.attempted = false
	e.mech = nil
}

// Configure parses the space-separated mechanism list on the AUTH 250 line.
func (e *Extension) Configure(params string) {
	e.serverMechanisms = strings.Fields(params)
}

func (e *Extension) supportsMechanism(name string) bool {
	for _, m := range e.serverMechanisms {
		if strings.EqualFold(m, name) {
			return true
		}
	}
	return false
}

// IsExtraProtocolStageNeededHere demands one turn, the first time a
// transition happens after AUTH was configured.
func (e *Extension) IsExtraProtocolStageNeededHere(ctx *smtpsubmit.MessageContext) bool {
	if e.attempted {
		return false
	}
	switch {
	case e.supportsMechanism("PLAIN"):
		e.mech = sasl.NewPlainClient(e.creds)
		return true
	case e.supportsMechanism("LOGIN"):
		e.mech = sasl.NewLoginClient(e.creds)
		return true
	default:
		return false
	}
}

// GoAhead sends the AUTH command (with an initial response if the mechanism
// supports one) and waits for the server's challenges/result via
// HandleServerMessage.
func (e *Extension) GoAhead(sendRaw func(string), stageComplete func(bool)) {
	e.attempted = true
	e.sendRaw = sendRaw
	e.stageComplete = stageComplete

	if resp, ok := e.mech.InitialResponse(); ok {
		sendRaw("AUTH " + e.mech.Name() + " " + resp)
		return
	}
	sendRaw("AUTH " + e.mech.Name())
}

// HandleServerMessage drives the AUTH challenge/response loop: 334 means a
// base64 challenge follows, 235 is success, anything else is treated as a
// declined authentication attempt — reported as a failed (not successful)
// stageComplete rather than returning false here, since a server declining
// auth shouldn't be fatal to the whole connection.
func (e *Extension) HandleServerMessage(ctx *smtpsubmit.MessageContext, reply smtpsubmit.Reply) bool {
	switch {
	case reply.Code == 235:
		e.stageComplete(true)
		return true
	case reply.Code == 334:
		challenge, err := base64.StdEncoding.DecodeString(reply.Text)
		if err != nil {
			e.stageComplete(false)
			return true
		}
		resp, err := e.mech.Respond(string(challenge))
		if err != nil {
			e.stageComplete(false)
			return true
		}
		e.sendRaw(resp)
		return true
	default:
		e.stageComplete(false)
		return true
	}
}
