package reconcile

import "fmt"

// State is a node of the engine's state machine.
type State string

const (
	StateIdle                      State = "idle"
	StateExtracting                State = "extracting"
	StateComparing                 State = "comparing"
	StateAwaitingReprocessDecision State = "awaiting_reprocess_decision"
	StateReprocessing              State = "reprocessing"
	StateDone                      State = "done"
)

// IsTerminal reports whether no further transition is possible.
func IsTerminal(s State) bool {
	return s == StateDone
}

func isAllowedTransition(from, to State) bool {
	switch from {
	case StateIdle:
		return to == StateExtracting || to == StateDone
	case StateExtracting:
		return to == StateComparing || to == StateDone
	case StateComparing:
		return to == StateAwaitingReprocessDecision || to == StateDone
	case StateAwaitingReprocessDecision:
		return to == StateReprocessing || to == StateDone
	case StateReprocessing:
		return to == StateComparing || to == StateDone
	default:
		return false
	}
}

// Transition validates a move between states. Cancellation may move any
// non-terminal state straight to Done.
func Transition(from, to State) error {
	if !isAllowedTransition(from, to) {
		return fmt.Errorf("disallowed transition: %s -> %s", from, to)
	}
	return nil
}

// Phase names the part of a pass that drives a web session.
type Phase string

const (
	PhaseExtract Phase = "extracao_FSE"
	PhaseCompare Phase = "comparacao"
)
