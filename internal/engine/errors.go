package engine

import (
	"errors"
	"fmt"
)

// ErrNoMatchingConfig means no active ConfigFlujo row governs the request.
// A configuration gap: retrying with the same input cannot succeed until an
// administrator adds or widens a rule.
var ErrNoMatchingConfig = errors.New("no matching flow configuration")

// IncompleteChainError means the hierarchy has no approver for some level the
// matched rule requires. Also a configuration gap.
type IncompleteChainError struct {
	Nivel int
}

func (e *IncompleteChainError) Error() string {
	return fmt.Sprintf("incomplete approval chain: no approver configured for level %d", e.Nivel)
}

// IsConfigGap reports whether err is one of the administrator-fixable
// configuration gaps (no rule, or a hole in the hierarchy).
func IsConfigGap(err error) bool {
	var ic *IncompleteChainError
	return errors.Is(err, ErrNoMatchingConfig) || errors.As(err, &ic)
}
