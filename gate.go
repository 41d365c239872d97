package docipc

// Readiness is the state of the readiness gate.
type Readiness uint8

const (
	// NotReady indicates the destination document has not been created.
	NotReady Readiness = iota
	// Ready indicates the destination document exists. It is terminal.
	Ready
)

// String returns a human-readable representation of the state.
func (r Readiness) String() string {
	switch r {
	case NotReady:
		return "NotReady"
	case Ready:
		return "Ready"
	default:
		return "Unknown"
	}
}

// readinessGate is a monotonic flag. It owns no delivery logic: whoever
// observes the transition is responsible for draining.
type readinessGate struct {
	state Readiness
}

// markReady sets the flag, reporting whether this call made the transition.
func (g *readinessGate) markReady() bool {
	if g.state == Ready {
		return false
	}
	g.state = Ready
	return true
}

func (g *readinessGate) ready() bool {
	return g.state == Ready
}
