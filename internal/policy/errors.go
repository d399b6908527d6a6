package policy

import "fmt"

// DeniedError is returned when the decision table denies an action. It is
// never retried; callers surface it as a permission failure.
type DeniedError struct {
	Reason string
}

func (e *DeniedError) Error() string {
	return "policy: denied: " + e.Reason
}

func deny(format string, args ...any) error {
	return &DeniedError{Reason: fmt.Sprintf(format, args...)}
}
