package progression

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-estate/contracts"
	"github.com/google/uuid"
)

// Action is a user-facing transition choice. Terminal menu entries and the
// quick-advance control all resolve through it.
type Action int

const (
	// ActionAdvance moves to the next status on the linear path.
	ActionAdvance Action = iota + 1
	// ActionCancel moves to CANCELLED.
	ActionCancel
	// ActionTerminate moves to TERMINATED.
	ActionTerminate
)

func (a Action) String() string {
	switch a {
	case ActionAdvance:
		return "advance"
	case ActionCancel:
		return "cancel"
	case ActionTerminate:
		return "terminate"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

// ParseAction maps "advance", "cancel" or "terminate" (any case) to an Action.
func ParseAction(raw string) (Action, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "advance":
		return ActionAdvance, nil
	case "cancel":
		return ActionCancel, nil
	case "terminate":
		return ActionTerminate, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownAction, raw)
	}
}

// TargetFor resolves the status an action leads to from current.
func (r *Resolver) TargetFor(current contracts.Status, action Action) (contracts.Status, error) {
	switch action {
	case ActionAdvance:
		next, ok := r.NextStatus(current)
		if !ok {
			return "", &TransitionError{From: current, Reason: advanceRejectReason(r, current)}
		}
		return next, nil
	case ActionCancel:
		return contracts.StatusCancelled, nil
	case ActionTerminate:
		return contracts.StatusTerminated, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownAction, action)
	}
}

// Apply resolves action and performs the transition on behalf of actorID.
func (r *Resolver) Apply(contract contracts.Contract, action Action, actorID uuid.UUID) (contracts.Contract, error) {
	target, err := r.TargetFor(contract.CurrentStatus, action)
	if err != nil {
		return contract, err
	}
	return r.TransitionAs(contract, target, actorID)
}

func advanceRejectReason(r *Resolver, current contracts.Status) RejectReason {
	switch {
	case r.IsTerminal(current):
		return ReasonTerminal
	case !r.table.known(current):
		return ReasonUnknownStatus
	default:
		return ReasonNotNextStep
	}
}
