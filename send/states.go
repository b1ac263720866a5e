package send

// State is the lifecycle state of a single send attempt. Transitions
// are validated centrally in Attempt; illegal states are not
// representable by flag combinations.
type State uint8

const (
	// StateIdle means no destination has been entered.
	StateIdle State = iota

	// StateClassified means the destination has been classified,
	// possibly as Unrecognized.
	StateClassified

	// StateMethodSelection means the user is choosing between the
	// sub-destinations of a unified URI.
	StateMethodSelection

	// StateConfirming means the user is reviewing the send.
	StateConfirming

	// StateDispatching means the single external-engine call is in
	// flight. Destination and amount are frozen; the attempt can no
	// longer be cancelled, only awaited.
	StateDispatching

	// StateSucceeded is terminal: the engine reported success and the
	// result record was handed to history.
	StateSucceeded

	// StateFailed is terminal: the engine rejected the send. The raw
	// error is preserved on the attempt.
	StateFailed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateClassified:
		return "classified"
	case StateMethodSelection:
		return "method-selection"
	case StateConfirming:
		return "confirming"
	case StateDispatching:
		return "dispatching"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}
