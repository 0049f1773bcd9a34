package smtpsubmit

// ProtocolStage names a point in the SMTP client state machine.
type ProtocolStage int

const (
	// StageGreeting is the initial stage after Connect; the client is
	// waiting for the server's 220 banner.
	StageGreeting ProtocolStage = iota

	// StageHelloResponse is reachable only if an extension forces it
	// (see StageForcer) — typically after a STARTTLS handshake requires a
	// fresh EHLO.
	StageHelloResponse

	// StageOptions is entered once EHLO has been sent; the client is
	// collecting the multi-line 250 extension list.
	StageOptions

	// StageReadyToSend is the only stage at which a new SendMail may be
	// initiated.
	StageReadyToSend

	StageDeclaringSender
	StageDeclaringRecipients
	StageSendingData
	StageAwaitingSendResponse
)

func (s ProtocolStage) String() string {
	switch s {
	case StageGreeting:
		return "Greeting"
	case StageHelloResponse:
		return "HelloResponse"
	case StageOptions:
		return "Options"
	case StageReadyToSend:
		return "ReadyToSend"
	case StageDeclaringSender:
		return "DeclaringSender"
	case StageDeclaringRecipients:
		return "DeclaringRecipients"
	case StageSendingData:
		return "SendingData"
	case StageAwaitingSendResponse:
		return "AwaitingSendResponse"
	default:
		return "Unknown"
	}
}

// MessageContext is the shared state passed to extensions on every callback.
type MessageContext struct {
	Stage ProtocolStage
}
