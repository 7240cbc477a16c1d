package progression

import (
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-estate/contracts"
	"github.com/google/uuid"
)

var fixedNow = time.Date(2024, 6, 3, 10, 30, 0, 0, time.UTC)

func newTestResolver() *Resolver {
	return NewResolver(DefaultTable(), WithClock(func() time.Time { return fixedNow }))
}

func contractAt(status contracts.Status) contracts.Contract {
	return contracts.Contract{
		ID:            uuid.MustParse("00000000-0000-0000-0000-00000000c001"),
		Reference:     "gangnam-officetel-1203",
		CurrentStatus: status,
	}
}

func TestCurrentStepIndexMatchesPathPosition(t *testing.T) {
	r := newTestResolver()
	path := r.Table().Path()
	for i, status := range path {
		if got := r.CurrentStepIndex(status); got != i {
			t.Fatalf("CurrentStepIndex(%s): want %d got %d", status, i, got)
		}
	}
}

func TestTerminalStatusesResolveToSentinelAndNeverAdvance(t *testing.T) {
	r := newTestResolver()
	n := r.Table().Len()
	for _, terminal := range r.Table().Terminal() {
		if got := r.CurrentStepIndex(terminal); got != n {
			t.Fatalf("CurrentStepIndex(%s): want sentinel %d got %d", terminal, n, got)
		}
		for _, target := range contracts.Statuses() {
			if r.CanAdvanceTo(terminal, target) {
				t.Fatalf("CanAdvanceTo(%s, %s): expected false", terminal, target)
			}
		}
	}
}

func TestCanAdvanceToOnlyImmediateSuccessor(t *testing.T) {
	r := newTestResolver()
	path := r.Table().Path()
	for i := range path {
		for j := range path {
			want := j == i+1
			if got := r.CanAdvanceTo(path[i], path[j]); got != want {
				t.Fatalf("CanAdvanceTo(%s, %s): want %v got %v", path[i], path[j], want, got)
			}
		}
	}
}

func TestCanAdvanceToRejectsUnknownStatuses(t *testing.T) {
	r := newTestResolver()
	if r.CanAdvanceTo("ARCHIVED", contracts.StatusListed) {
		t.Fatal("expected unknown current status not to advance")
	}
	if r.CanAdvanceTo(contracts.StatusListed, "ARCHIVED") {
		t.Fatal("expected unknown target status to be rejected")
	}
	if got := r.CurrentStepIndex("ARCHIVED"); got != r.Table().Len() {
		t.Fatalf("expected unknown status to resolve to sentinel, got %d", got)
	}
}

func TestRequestTransitionToTerminalFromAnyNonTerminal(t *testing.T) {
	r := newTestResolver()
	for _, current := range r.Table().Path() {
		for _, terminal := range r.Table().Terminal() {
			updated, err := r.RequestTransition(contractAt(current), terminal)
			if err != nil {
				t.Fatalf("%s -> %s: unexpected error %v", current, terminal, err)
			}
			if updated.CurrentStatus != terminal {
				t.Fatalf("%s -> %s: status %s", current, terminal, updated.CurrentStatus)
			}
		}
	}
}

func TestRequestTransitionFromTerminalAlwaysFails(t *testing.T) {
	r := newTestResolver()
	for _, terminal := range r.Table().Terminal() {
		for _, target := range contracts.Statuses() {
			original := contractAt(terminal)
			updated, err := r.RequestTransition(original, target)
			if !errors.Is(err, ErrTransitionNotAllowed) {
				t.Fatalf("%s -> %s: expected ErrTransitionNotAllowed, got %v", terminal, target, err)
			}
			var transitionErr *TransitionError
			if !errors.As(err, &transitionErr) || transitionErr.Reason != ReasonTerminal {
				t.Fatalf("%s -> %s: expected terminal reason, got %v", terminal, target, err)
			}
			if updated.CurrentStatus != terminal || len(updated.History) != 0 {
				t.Fatalf("%s -> %s: contract mutated on failure: %+v", terminal, target, updated)
			}
		}
	}
}

func TestScenarioAdvanceListedToNegotiating(t *testing.T) {
	r := newTestResolver()
	original := contractAt(contracts.StatusListed)

	updated, err := r.RequestTransition(original, contracts.StatusNegotiating)
	if err != nil {
		t.Fatalf("transition: %v", err)
	}
	if updated.CurrentStatus != contracts.StatusNegotiating {
		t.Fatalf("expected NEGOTIATING, got %s", updated.CurrentStatus)
	}
	if len(updated.History) != len(original.History)+1 {
		t.Fatalf("expected history to grow by one, got %d", len(updated.History))
	}

	entry := updated.History[len(updated.History)-1]
	if entry.PreviousStatus == nil || *entry.PreviousStatus != contracts.StatusListed {
		t.Fatalf("expected previous LISTED, got %v", entry.PreviousStatus)
	}
	if entry.CurrentStatus != contracts.StatusNegotiating || !entry.ChangedAt.Equal(fixedNow) {
		t.Fatalf("unexpected history entry %+v", entry)
	}
	if entry.Sequence != 1 || entry.ContractID != original.ID || entry.ID == uuid.Nil {
		t.Fatalf("unexpected history bookkeeping %+v", entry)
	}
	if original.CurrentStatus != contracts.StatusListed || len(original.History) != 0 {
		t.Fatal("expected input contract to stay untouched")
	}
}

func TestScenarioSkippingStepsIsRejected(t *testing.T) {
	r := newTestResolver()
	updated, err := r.RequestTransition(contractAt(contracts.StatusListed), contracts.StatusContracted)
	if !errors.Is(err, ErrTransitionNotAllowed) {
		t.Fatalf("expected ErrTransitionNotAllowed, got %v", err)
	}
	var transitionErr *TransitionError
	if !errors.As(err, &transitionErr) || transitionErr.Reason != ReasonNotNextStep {
		t.Fatalf("expected not-next-step reason, got %v", err)
	}
	if updated.CurrentStatus != contracts.StatusListed {
		t.Fatalf("expected status unchanged, got %s", updated.CurrentStatus)
	}
}

func TestScenarioCancelFromContracted(t *testing.T) {
	r := newTestResolver()
	updated, err := r.RequestTransition(contractAt(contracts.StatusContracted), contracts.StatusCancelled)
	if err != nil {
		t.Fatalf("transition: %v", err)
	}
	if updated.CurrentStatus != contracts.StatusCancelled {
		t.Fatalf("expected CANCELLED, got %s", updated.CurrentStatus)
	}
}

func TestScenarioCancelledCannotClose(t *testing.T) {
	r := newTestResolver()
	updated, err := r.RequestTransition(contractAt(contracts.StatusCancelled), contracts.StatusClosed)
	if !errors.Is(err, ErrTransitionNotAllowed) {
		t.Fatalf("expected ErrTransitionNotAllowed, got %v", err)
	}
	if updated.CurrentStatus != contracts.StatusCancelled {
		t.Fatalf("expected CANCELLED to remain, got %s", updated.CurrentStatus)
	}
}

func TestScenarioStepIndexes(t *testing.T) {
	r := newTestResolver()
	if got := r.CurrentStepIndex(contracts.StatusMovedIn); got != 7 {
		t.Fatalf("MOVED_IN: want 7 got %d", got)
	}
	if got := r.CurrentStepIndex(contracts.StatusTerminated); got != 9 {
		t.Fatalf("TERMINATED: want 9 got %d", got)
	}
}

func TestRequestTransitionRejectsSelfAndUnknown(t *testing.T) {
	r := newTestResolver()
	if _, err := r.RequestTransition(contractAt(contracts.StatusContracted), contracts.StatusContracted); !errors.Is(err, ErrTransitionNotAllowed) {
		t.Fatalf("expected self transition to be rejected, got %v", err)
	}

	_, err := r.RequestTransition(contractAt("ARCHIVED"), contracts.StatusCancelled)
	var transitionErr *TransitionError
	if !errors.As(err, &transitionErr) || transitionErr.Reason != ReasonUnknownStatus {
		t.Fatalf("expected unknown status rejection, got %v", err)
	}
}

func TestHistorySequenceContinuesFromExistingEntries(t *testing.T) {
	r := newTestResolver()
	contract := contractAt(contracts.StatusListed)

	var err error
	for _, target := range []contracts.Status{contracts.StatusNegotiating, contracts.StatusIntentSigned, contracts.StatusTerminated} {
		contract, err = r.RequestTransition(contract, target)
		if err != nil {
			t.Fatalf("transition to %s: %v", target, err)
		}
	}

	if len(contract.History) != 3 {
		t.Fatalf("expected 3 history entries, got %d", len(contract.History))
	}
	for i, entry := range contract.History {
		if entry.Sequence != i+1 {
			t.Fatalf("entry %d: expected sequence %d, got %d", i, i+1, entry.Sequence)
		}
	}
}

func TestAvailableTransitions(t *testing.T) {
	r := newTestResolver()

	got := r.AvailableTransitions(contracts.StatusListed)
	want := []contracts.Status{contracts.StatusNegotiating, contracts.StatusCancelled, contracts.StatusTerminated}
	if len(got) != len(want) {
		t.Fatalf("want %v got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("want %v got %v", want, got)
		}
	}

	closed := r.AvailableTransitions(contracts.StatusClosed)
	if len(closed) != 2 || closed[0] != contracts.StatusCancelled {
		t.Fatalf("expected only terminal transitions from CLOSED, got %v", closed)
	}

	if got := r.AvailableTransitions(contracts.StatusTerminated); len(got) != 0 {
		t.Fatalf("expected no transitions from terminal status, got %v", got)
	}
}

func TestLabelsAndColors(t *testing.T) {
	r := newTestResolver()
	if got := r.StatusLabel(contracts.StatusPaidComplete); got != "Paid in full" {
		t.Fatalf("unexpected label %q", got)
	}
	if got := r.StatusLabel("ARCHIVED"); got != "ARCHIVED" {
		t.Fatalf("expected raw code fallback, got %q", got)
	}
	if got := r.StatusDisplayColor(contracts.StatusTerminated); got != "#C62828" {
		t.Fatalf("unexpected color %q", got)
	}
	if got := r.StatusDisplayColor("ARCHIVED"); got != NeutralColor {
		t.Fatalf("expected neutral fallback, got %q", got)
	}
}

func TestLastChangedAtPicksMostRecentEntry(t *testing.T) {
	first := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	second := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	history := []*contracts.StatusHistoryEntry{
		{Sequence: 1, CurrentStatus: contracts.StatusListed, ChangedAt: first},
		{Sequence: 2, CurrentStatus: contracts.StatusNegotiating, ChangedAt: first},
		nil,
		{Sequence: 3, CurrentStatus: contracts.StatusListed, ChangedAt: second},
	}

	got := LastChangedAt(history, contracts.StatusListed)
	if got == nil || !got.Equal(second) {
		t.Fatalf("expected %s, got %v", second, got)
	}
	if LastChangedAt(history, contracts.StatusClosed) != nil {
		t.Fatal("expected nil for status never reached")
	}
}
