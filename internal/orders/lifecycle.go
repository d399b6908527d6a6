package orders

// Status is an order lifecycle state.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusShipped   Status = "shipped"
	StatusCancelled Status = "cancelled"
)

// Valid reports whether the status is a known lifecycle state.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusShipped, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no transition leaves the status.
func (s Status) Terminal() bool {
	return s == StatusShipped || s == StatusCancelled
}

// CanTransition reports whether from -> to is a legal lifecycle step. The
// forward chain is strict (pending -> confirmed -> shipped, no skipping) and
// cancellation branches only off pending.
func CanTransition(from, to Status) bool {
	switch from {
	case StatusPending:
		return to == StatusConfirmed || to == StatusCancelled
	case StatusConfirmed:
		return to == StatusShipped
	case StatusShipped, StatusCancelled:
		return false
	}
	return false
}

// Transition validates a lifecycle step, returning InvalidTransitionError
// when the step is not legal.
func Transition(from, to Status) error {
	if !CanTransition(from, to) {
		return &InvalidTransitionError{From: from, To: to}
	}
	return nil
}
