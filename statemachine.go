package smtpsubmit

import (
	"fmt"
	"strings"
)

// handleReplyLocked routes a parsed reply according to the current stage,
// or exclusively to the active extension if one is installed. Returns false
// if the reply triggered a hard failure (the caller must stop processing
// further lines from the same Feed batch, since the connection is gone).
// Caller must hold c.mu.
func (c *Client) handleReplyLocked(reply Reply) bool {
	if c.activeExtension != nil {
		if !c.activeExtension.HandleServerMessage(&c.ctx, reply) {
			c.onHardFailureLocked(fmt.Errorf("%w: %s", ErrExtensionRejected, reply.Text))
			return false
		}
		return true
	}

	switch c.ctx.Stage {
	case StageGreeting:
		return c.handleGreetingLocked(reply)
	case StageOptions:
		return c.handleOptionsLocked(reply)
	case StageHelloResponse:
		return c.handleHelloResponseLocked(reply)
	case StageDeclaringSender:
		return c.handleDeclaringSenderLocked(reply)
	case StageDeclaringRecipients:
		return c.handleDeclaringRecipientsLocked(reply)
	case StageSendingData:
		return c.handleSendingDataLocked(reply)
	case StageAwaitingSendResponse:
		return c.handleAwaitingSendResponseLocked(reply)
	default:
		c.onHardFailureLocked(fmt.Errorf("%w: reply in stage %s", ErrUnexpectedReply, c.ctx.Stage))
		return false
	}
}

func (c *Client) handleGreetingLocked(reply Reply) bool {
	if reply.Code != 220 {
		c.onHardFailureLocked(fmt.Errorf("%w: greeting code %d", ErrUnexpectedReply, reply.Code))
		return false
	}

	ip := "0.0.0.0"
	if c.conn != nil {
		if addr := c.conn.BoundAddress(); addr != nil {
			if v4 := addr.To4(); v4 != nil {
				ip = v4.String()
			}
		}
	}
	if err := c.sendRawLocked(fmt.Sprintf("EHLO [%s]\r\n", ip), true); err != nil {
		c.onHardFailureLocked(err)
		return false
	}

	c.transitionProtocolStageLocked(StageOptions)
	return true
}

func (c *Client) handleOptionsLocked(reply Reply) bool {
	if reply.Code != 250 {
		c.onHardFailureLocked(fmt.Errorf("%w: options code %d", ErrUnexpectedReply, reply.Code))
		return false
	}

	name, rest, _ := strings.Cut(reply.Text, " ")
	if c.registry.MarkSupported(name) {
		ext, _ := c.registry.Get(name)
		ext.Configure(rest)
	}

	if reply.Last {
		c.transitionProtocolStageLocked(StageReadyToSend)
	}
	return true
}

func (c *Client) handleHelloResponseLocked(reply Reply) bool {
	if reply.Code != 250 {
		c.onHardFailureLocked(fmt.Errorf("%w: hello-response code %d", ErrUnexpectedReply, reply.Code))
		return false
	}
	if reply.Last {
		c.transitionProtocolStageLocked(StageReadyToSend)
	} else {
		c.transitionProtocolStageLocked(StageOptions)
	}
	return true
}

func (c *Client) handleDeclaringSenderLocked(reply Reply) bool {
	if reply.Code != 250 {
		c.finishSendLocked(false)
		c.transitionProtocolStageLocked(StageReadyToSend)
		return true
	}

	for _, addr := range c.pending.headerSet.GetHeaderMultiValue("To") {
		c.pending.recipients = append(c.pending.recipients, addr)
	}
	c.ctx.Stage = StageDeclaringRecipients
	c.sendNextRecipientLocked()
	return true
}

func (c *Client) handleDeclaringRecipientsLocked(reply Reply) bool {
	if reply.Code != 250 {
		c.finishSendLocked(false)
		c.transitionProtocolStageLocked(StageReadyToSend)
		return true
	}

	if len(c.pending.recipients) == 0 {
		if err := c.sendThroughExtensionsLocked("DATA"); err != nil {
			c.onHardFailureLocked(err)
			return false
		}
		c.ctx.Stage = StageSendingData
		return true
	}
	c.sendNextRecipientLocked()
	return true
}

func (c *Client) sendNextRecipientLocked() {
	addr := c.pending.recipients[0]
	c.pending.recipients = c.pending.recipients[1:]
	if err := c.sendThroughExtensionsLocked(formatRcptTo(addr)); err != nil {
		c.onHardFailureLocked(err)
	}
}

func (c *Client) handleSendingDataLocked(reply Reply) bool {
	if reply.Code != 354 {
		c.finishSendLocked(false)
		c.transitionProtocolStageLocked(StageReadyToSend)
		return true
	}

	c.ctx.Stage = StageAwaitingSendResponse

	if err := c.sendRawLocked(c.pending.headerSet.GenerateRawHeaders(), true); err != nil {
		c.onHardFailureLocked(err)
		return false
	}
	if c.pending.body != "" {
		if err := c.sendRawLocked(c.pending.body, true); err != nil {
			c.onHardFailureLocked(err)
			return false
		}
	}
	if err := c.sendRawLocked(".\r\n", true); err != nil {
		c.onHardFailureLocked(err)
		return false
	}
	return true
}

func (c *Client) handleAwaitingSendResponseLocked(reply Reply) bool {
	c.finishSendLocked(reply.Code == 250)
	c.transitionProtocolStageLocked(StageReadyToSend)
	return true
}

// finishSendLocked resolves the current send's completion and clears the
// in-flight PendingSend. Caller must hold c.mu.
func (c *Client) finishSendLocked(success bool) {
	if c.sendCompletion != nil {
		c.sendCompletion.resolve(success)
		c.sendCompletion = nil
	}
	c.pending = nil
}

// transitionProtocolStageLocked is the transition primitive that consults
// extensions (spec.md 4.3). It is used for transitions into StageOptions,
// StageHelloResponse and StageReadyToSend; the send stages
// (StageDeclaringSender, StageDeclaringRecipients, StageSendingData,
// StageAwaitingSendResponse) are entered by assigning c.ctx.Stage directly,
// so no extension is offered a stage on entering them. Caller must hold
// c.mu.
func (c *Client) transitionProtocolStageLocked(next ProtocolStage) {
	c.activeExtension = nil
	c.ctx.Stage = next

	for _, name := range c.registry.SupportedInOrder() {
		ext, _ := c.registry.Get(name)
		if ext.IsExtraProtocolStageNeededHere(&c.ctx) {
			c.activeExtension = ext
			ext.GoAhead(c.extensionSendRaw, c.makeStageComplete(ext))
			return
		}
	}

	if next == StageReadyToSend {
		c.onReadyLocked()
	}
}

// extensionSendRaw is the sendRaw callback handed to an active extension's
// GoAhead. It is called synchronously from within a locked code path (the
// extension calling back into the Client while the reply that activated it
// is still being handled), so it must not attempt to re-lock c.mu.
func (c *Client) extensionSendRaw(line string) {
	if !strings.HasSuffix(line, "\r\n") {
		line += "\r\n"
	}
	_ = c.sendRawLocked(line, false)
}

// makeStageComplete returns the stageComplete callback for ext, honoring
// the optional StageForcer capability described in SPEC_FULL.md 4.3.
//
// success==false is a soft failure (spec.md 4.5): any in-flight send
// resolves to false and the session returns to StageReadyToSend with the
// connection kept open. It is HandleServerMessage returning false, not a
// failed stageComplete, that is a hard failure (spec.md 7).
func (c *Client) makeStageComplete(ext Extension) func(success bool) {
	return func(success bool) {
		if !success {
			c.finishSendLocked(false)
			c.transitionProtocolStageLocked(StageReadyToSend)
			return
		}

		resumeStage := c.ctx.Stage
		if forcer, ok := ext.(StageForcer); ok {
			if forced, override := forcer.ForceStage(); override {
				resumeStage = forced
			}
		}
		c.transitionProtocolStageLocked(resumeStage)
	}
}
