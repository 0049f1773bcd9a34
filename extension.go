package smtpsubmit

// Extension is a pluggable handler registered by name (matching the
// EHLO-advertised token, case-sensitive) that may amend outbound commands,
// interpose its own protocol stage, and decide whether inbound replies
// constitute success or failure.
//
// Implementations should embed NopExtension and override only the methods
// they need; NopExtension's defaults satisfy "return input unchanged /
// false / no-op" for every method.
type Extension interface {
	// Configure is invoked during the Options stage with everything after
	// the extension's name token on its 250 line.
	Configure(params string)

	// Reset is invoked on every registered extension (supported or not) at
	// the start of each Connect.
	Reset()

	// ModifyMessage rewrites an outbound line sent via SendThroughExtensions.
	ModifyMessage(ctx *MessageContext, line string) string

	// IsExtraProtocolStageNeededHere is consulted, in supported-extension
	// insertion order, on every TransitionProtocolStage call.
	IsExtraProtocolStageNeededHere(ctx *MessageContext) bool

	// GoAhead is invoked once this extension becomes the active extension.
	// sendRaw writes a line verbatim; stageComplete ends the extension's
	// turn, success indicating its sub-protocol succeeded.
	GoAhead(sendRaw func(line string), stageComplete func(success bool))

	// HandleServerMessage is invoked for every reply while this extension
	// is active. Returning false is a hard failure.
	HandleServerMessage(ctx *MessageContext, reply Reply) bool
}

// NopExtension provides the default no-op implementation of every Extension
// method. Embed it in a concrete extension type to only override what's
// needed.
type NopExtension struct{}

func (NopExtension) Configure(string)                                       {}
func (NopExtension) Reset()                                                 {}
func (NopExtension) ModifyMessage(_ *MessageContext, line string) string    { return line }
func (NopExtension) IsExtraProtocolStageNeededHere(_ *MessageContext) bool  { return false }
func (NopExtension) GoAhead(sendRaw func(string), stageComplete func(bool)) {}
func (NopExtension) HandleServerMessage(_ *MessageContext, _ Reply) bool    { return false }

// StageForcer is an optional capability an Extension may implement to
// redirect TransitionProtocolStage's target once the extension's own
// sub-protocol completes successfully — the mechanism that makes
// StageHelloResponse reachable (see SPEC_FULL.md 4.3).
type StageForcer interface {
	// ForceStage reports the stage to transition into instead of the
	// originally targeted one. The second return reports whether to
	// override at all.
	ForceStage() (ProtocolStage, bool)
}

// TransportBound is an optional capability an Extension may implement to
// receive the live connection, for extensions (like STARTTLS) that must act
// on the transport directly rather than only through sendRaw.
type TransportBound interface {
	BindConnection(conn NetworkConnection)
}

// ExtensionRegistry holds registered extensions and, per connection, the
// subset the server has advertised support for.
type ExtensionRegistry struct {
	order []string
	byName map[string]Extension

	supported    []string
	supportedSet map[string]bool
}

// NewExtensionRegistry returns an empty registry.
func NewExtensionRegistry() *ExtensionRegistry {
	return &ExtensionRegistry{
		byName:       make(map[string]Extension),
		supportedSet: make(map[string]bool),
	}
}

// Register adds an extension under name, in insertion order. Registering
// the same name twice replaces the extension but keeps its original
// position.
func (r *ExtensionRegistry) Register(name string, ext Extension) {
	if _, exists := r.byName[name]; !exists {
		r.order = append(r.order, name)
	}
	r.byName[name] = ext
}

// Get returns the registered extension for name, if any.
func (r *ExtensionRegistry) Get(name string) (Extension, bool) {
	ext, ok := r.byName[name]
	return ext, ok
}

// ResetAll invokes Reset on every registered extension, regardless of
// whether it ends up supported for the new connection.
func (r *ExtensionRegistry) ResetAll() {
	for _, name := range r.order {
		r.byName[name].Reset()
	}
}

// ResetSupported clears the supported-extension set, done at the start of
// each Connect alongside ResetAll.
func (r *ExtensionRegistry) ResetSupported() {
	r.supported = nil
	r.supportedSet = make(map[string]bool)
}

// MarkSupported records name as supported by the current server, in
// advertisement order, if it is registered and not already marked.
// Reports whether the name was newly marked.
func (r *ExtensionRegistry) MarkSupported(name string) bool {
	if _, registered := r.byName[name]; !registered {
		return false
	}
	if r.supportedSet[name] {
		return false
	}
	r.supportedSet[name] = true
	r.supported = append(r.supported, name)
	return true
}

// SupportedInOrder returns the names marked supported, in advertisement
// order.
func (r *ExtensionRegistry) SupportedInOrder() []string {
	return r.supported
}
