package docipc

// BindingState is the state of the channel binding.
//
//	Unbound       → Bound          [bind, when ready]
//	Unbound       → PendingRebind  [bind, when not ready]
//	PendingRebind → Bound          [readiness transition]
//	Bound         → Unbound        [disconnect, reset]
//	Bound         → Bound          [bind, old endpoint closed first]
type BindingState uint8

const (
	// Unbound indicates there is no live or pending endpoint.
	Unbound BindingState = iota
	// Bound indicates a live endpoint is delivering calls.
	Bound
	// PendingRebind indicates an endpoint was supplied before readiness,
	// and will be installed on the readiness transition.
	PendingRebind
)

// String returns a human-readable representation of the state.
func (s BindingState) String() string {
	switch s {
	case Unbound:
		return "Unbound"
	case Bound:
		return "Bound"
	case PendingRebind:
		return "PendingRebind"
	default:
		return "Unknown"
	}
}

// channelBinding owns at most one live endpoint, and at most one endpoint
// awaiting installation. It is only accessed from the service's execution
// unit.
type channelBinding struct {
	receiver Receiver
	live     Endpoint
	pending  Endpoint
	// onInstall is notified of each installed endpoint, for logging.
	onInstall func(ep Endpoint, err error)
}

func (b *channelBinding) state() BindingState {
	switch {
	case b.pending != nil:
		return PendingRebind
	case b.live != nil:
		return Bound
	default:
		return Unbound
	}
}

// bind installs ep if ready, otherwise holds it until activatePending. A
// previously pending endpoint is superseded, and closed.
func (b *channelBinding) bind(ep Endpoint, ready bool) error {
	if !ready {
		if b.pending != nil && b.pending != ep {
			_ = b.pending.Close()
		}
		b.pending = ep
		return nil
	}
	return b.install(ep)
}

// activatePending installs the pending endpoint, if any.
func (b *channelBinding) activatePending() error {
	ep := b.pending
	if ep == nil {
		return nil
	}
	b.pending = nil
	return b.install(ep)
}

// install closes any other live endpoint, then binds ep. An ep that fails
// to bind is closed.
func (b *channelBinding) install(ep Endpoint) error {
	if ep == b.live {
		return nil
	}
	if old := b.live; old != nil {
		b.live = nil
		_ = old.Close()
	}
	err := ep.Bind(b.receiver, func() { b.onDisconnect(ep) })
	if err == nil {
		b.live = ep
	} else {
		_ = ep.Close()
	}
	if b.onInstall != nil {
		b.onInstall(ep, err)
	}
	return err
}

// onDisconnect clears the live endpoint, if it is still ep. Notifications
// from superseded endpoints are ignored.
func (b *channelBinding) onDisconnect(ep Endpoint) {
	if b.live != ep {
		return
	}
	b.live = nil
	_ = ep.Close()
}

// reset closes and clears both the live and the pending endpoint.
func (b *channelBinding) reset() {
	if ep := b.live; ep != nil {
		b.live = nil
		_ = ep.Close()
	}
	if ep := b.pending; ep != nil {
		b.pending = nil
		_ = ep.Close()
	}
}
