package progression

import (
	"time"

	"github.com/goliatone/go-estate/contracts"
	"github.com/goliatone/go-estate/internal/identity"
	"github.com/google/uuid"
)

// Resolver answers progression questions against a single Table. It holds no
// mutable state; transitions return new contract values.
type Resolver struct {
	table *Table
	now   func() time.Time
}

// Option configures the resolver.
type Option func(*Resolver)

// WithClock overrides the clock used for history timestamps (primarily for testing).
func WithClock(clock func() time.Time) Option {
	return func(r *Resolver) {
		if clock != nil {
			r.now = clock
		}
	}
}

// NewResolver builds a resolver over table. A nil table uses DefaultTable.
func NewResolver(table *Table, opts ...Option) *Resolver {
	if table == nil {
		table = DefaultTable()
	}
	r := &Resolver{
		table: table,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Table exposes the resolver's status table.
func (r *Resolver) Table() *Table {
	return r.table
}

// CurrentStepIndex returns the zero-based path position of status. Terminal and
// unknown statuses resolve to the path length ("fully advanced" sentinel).
func (r *Resolver) CurrentStepIndex(status contracts.Status) int {
	if idx, ok := r.table.pathIndex(status); ok {
		return idx
	}
	return r.table.Len()
}

// IsTerminal reports whether status ends the workflow.
func (r *Resolver) IsTerminal(status contracts.Status) bool {
	return r.table.isTerminal(status)
}

// CanAdvanceTo reports whether target is the immediate successor of current on
// the linear path. Terminal and unknown statuses never advance.
func (r *Resolver) CanAdvanceTo(current, target contracts.Status) bool {
	currentIdx, ok := r.table.pathIndex(current)
	if !ok {
		return false
	}
	targetIdx, ok := r.table.pathIndex(target)
	if !ok {
		return false
	}
	return targetIdx == currentIdx+1
}

// NextStatus returns the quick-advance target for current, if there is one.
func (r *Resolver) NextStatus(current contracts.Status) (contracts.Status, bool) {
	idx, ok := r.table.pathIndex(current)
	if !ok || idx+1 >= r.table.Len() {
		return "", false
	}
	return r.table.path[idx+1], true
}

// AvailableTransitions lists the statuses reachable from current: the next path
// step (when present) followed by the terminal statuses.
func (r *Resolver) AvailableTransitions(current contracts.Status) []contracts.Status {
	if r.IsTerminal(current) || !r.table.known(current) {
		return nil
	}
	out := make([]contracts.Status, 0, 1+len(r.table.terminal))
	if next, ok := r.NextStatus(current); ok {
		out = append(out, next)
	}
	return append(out, r.table.terminal...)
}

// CheckTransition validates a transition without applying it.
func (r *Resolver) CheckTransition(current, target contracts.Status) error {
	switch {
	case r.IsTerminal(current):
		return &TransitionError{From: current, To: target, Reason: ReasonTerminal}
	case !r.table.known(current):
		return &TransitionError{From: current, To: target, Reason: ReasonUnknownStatus}
	case r.IsTerminal(target):
		return nil
	case r.CanAdvanceTo(current, target):
		return nil
	default:
		return &TransitionError{From: current, To: target, Reason: ReasonNotNextStep}
	}
}

// RequestTransition moves contract to target when the table allows it. The
// input is never modified; on success the returned copy carries the new status
// and one appended history entry.
func (r *Resolver) RequestTransition(contract contracts.Contract, target contracts.Status) (contracts.Contract, error) {
	return r.TransitionAs(contract, target, uuid.Nil)
}

// TransitionAs behaves like RequestTransition and records actorID on the history entry.
func (r *Resolver) TransitionAs(contract contracts.Contract, target contracts.Status, actorID uuid.UUID) (contracts.Contract, error) {
	if err := r.CheckTransition(contract.CurrentStatus, target); err != nil {
		return contract, err
	}

	now := r.now()
	previous := contract.CurrentStatus
	sequence := nextSequence(contract.History)

	updated := contract
	updated.History = cloneHistory(contract.History, 1)
	updated.History = append(updated.History, &contracts.StatusHistoryEntry{
		ID:             identity.HistoryEntryUUID(contract.ID, sequence),
		ContractID:     contract.ID,
		Sequence:       sequence,
		PreviousStatus: &previous,
		CurrentStatus:  target,
		ChangedAt:      now,
		ActorID:        actorID,
	})
	updated.CurrentStatus = target
	updated.UpdatedAt = now

	return updated, nil
}

// StatusLabel returns the human readable label for status, or the raw code.
func (r *Resolver) StatusLabel(status contracts.Status) string {
	if info, ok := r.table.Info(status); ok && info.Label != "" {
		return info.Label
	}
	return string(status)
}

// StatusDisplayColor returns the display color for status.
func (r *Resolver) StatusDisplayColor(status contracts.Status) Color {
	if info, ok := r.table.Info(status); ok && info.Color != "" {
		return info.Color
	}
	return NeutralColor
}

// LastChangedAt returns when status was most recently entered according to history.
func LastChangedAt(history []*contracts.StatusHistoryEntry, status contracts.Status) *time.Time {
	for i := len(history) - 1; i >= 0; i-- {
		entry := history[i]
		if entry == nil || entry.CurrentStatus != status {
			continue
		}
		changed := entry.ChangedAt
		return &changed
	}
	return nil
}

func nextSequence(history []*contracts.StatusHistoryEntry) int {
	last := 0
	for _, entry := range history {
		if entry != nil && entry.Sequence > last {
			last = entry.Sequence
		}
	}
	if last < len(history) {
		last = len(history)
	}
	return last + 1
}

func cloneHistory(history []*contracts.StatusHistoryEntry, extra int) []*contracts.StatusHistoryEntry {
	out := make([]*contracts.StatusHistoryEntry, 0, len(history)+extra)
	for _, entry := range history {
		if entry == nil {
			continue
		}
		cloned := *entry
		if entry.PreviousStatus != nil {
			prev := *entry.PreviousStatus
			cloned.PreviousStatus = &prev
		}
		out = append(out, &cloned)
	}
	return out
}
