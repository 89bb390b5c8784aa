package simplepublish

import "fmt"

// Lifecycle rules. Each kind's state machine is closed: toggle flips between
// exactly the two primary states, side states are reachable only by direct
// set, and the terminal state has no outgoing edges.

// ToggleTarget returns the state Toggle moves to from current.
// Fails with ErrIllegalTransition when current is terminal or a side state.
func (sp KindSpec) ToggleTarget(current Status) (Status, error) {
	switch current {
	case sp.RestingStatus():
		return sp.PrimaryStatus(), nil
	case sp.PrimaryStatus():
		return sp.RestingStatus(), nil
	}
	if sp.Terminal != "" && current == sp.Terminal {
		return "", fmt.Errorf("%w: cannot toggle %s in terminal state %s", ErrIllegalTransition, sp.Kind, current)
	}
	if sp.isSideState(current) {
		return "", fmt.Errorf("%w: cannot toggle %s out of %s; set status directly", ErrIllegalTransition, sp.Kind, current)
	}
	return "", fmt.Errorf("%w: unknown status %s for kind %s", ErrIllegalTransition, current, sp.Kind)
}

// CheckTransition validates a direct status set from one state to another.
// Elevated callers may set any enumerated status, except that nothing leaves
// the terminal state.
func (sp KindSpec) CheckTransition(from, to Status) error {
	if !sp.HasStatus(to) {
		return fmt.Errorf("%w: status %s is not defined for kind %s", ErrIllegalTransition, to, sp.Kind)
	}
	if sp.Terminal != "" && from == sp.Terminal && to != from {
		return fmt.Errorf("%w: %s is terminal for kind %s", ErrIllegalTransition, from, sp.Kind)
	}
	return nil
}
