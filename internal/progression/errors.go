package progression

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-estate/contracts"
)

// ErrTransitionNotAllowed is the single rejection outcome of the resolver.
var ErrTransitionNotAllowed = errors.New("progression: transition not allowed")

// ErrUnknownAction indicates an Action value outside the declared set.
var ErrUnknownAction = errors.New("progression: unknown action")

// RejectReason explains why a transition was refused.
type RejectReason string

const (
	// ReasonTerminal means the contract already sits in a terminal status.
	ReasonTerminal RejectReason = "terminal"
	// ReasonUnknownStatus means the current status is not part of the table.
	ReasonUnknownStatus RejectReason = "unknown_status"
	// ReasonNotNextStep means the target is neither the next path step nor terminal.
	ReasonNotNextStep RejectReason = "not_next_step"
)

// TransitionError describes a rejected transition. It unwraps to ErrTransitionNotAllowed.
type TransitionError struct {
	From   contracts.Status
	To     contracts.Status
	Reason RejectReason
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: %s -> %s (%s)", ErrTransitionNotAllowed, e.From, e.To, e.Reason)
}

func (e *TransitionError) Unwrap() error {
	return ErrTransitionNotAllowed
}
