package progression

import (
	"errors"
	"strings"
	"testing"

	"github.com/goliatone/go-estate/contracts"
	"github.com/goliatone/go-estate/pkg/testsupport"
	"github.com/google/uuid"
)

type actionFixture struct {
	InitialStatus string              `json:"initial_status"`
	Steps         []actionFixtureStep `json:"steps"`
}

type actionFixtureStep struct {
	Action     string `json:"action"`
	WantStatus string `json:"want_status"`
	WantIndex  int    `json:"want_index"`
}

func parseAction(t *testing.T, raw string) Action {
	t.Helper()
	for _, action := range []Action{ActionAdvance, ActionCancel, ActionTerminate} {
		if action.String() == raw {
			return action
		}
	}
	t.Fatalf("unknown fixture action %q", raw)
	return 0
}

func TestApplyWalksHappyPathFixture(t *testing.T) {
	var fixture actionFixture
	if err := testsupport.LoadJSONFixture("happy_path.json", &fixture); err != nil {
		t.Fatalf("load fixture: %v", err)
	}

	r := newTestResolver()
	actor := uuid.MustParse("00000000-0000-0000-0000-0000000000a1")
	contract := contractAt(contracts.Status(fixture.InitialStatus))

	for idx, step := range fixture.Steps {
		next, err := r.Apply(contract, parseAction(t, step.Action), actor)
		if err != nil {
			t.Fatalf("step %d %s: %v", idx, step.Action, err)
		}
		contract = next
		if string(contract.CurrentStatus) != step.WantStatus {
			t.Fatalf("step %d %s: want %s got %s", idx, step.Action, step.WantStatus, contract.CurrentStatus)
		}
		if got := r.CurrentStepIndex(contract.CurrentStatus); got != step.WantIndex {
			t.Fatalf("step %d %s: want index %d got %d", idx, step.Action, step.WantIndex, got)
		}
	}

	if len(contract.History) != len(fixture.Steps) {
		t.Fatalf("expected %d history entries, got %d", len(fixture.Steps), len(contract.History))
	}
	if contract.History[0].ActorID != actor {
		t.Fatalf("expected actor to be recorded, got %s", contract.History[0].ActorID)
	}
}

func TestApplyAdvanceFromLastStepIsRejected(t *testing.T) {
	r := newTestResolver()
	_, err := r.Apply(contractAt(contracts.StatusClosed), ActionAdvance, uuid.Nil)
	if !errors.Is(err, ErrTransitionNotAllowed) {
		t.Fatalf("expected ErrTransitionNotAllowed, got %v", err)
	}

	_, err = r.Apply(contractAt(contracts.StatusCancelled), ActionAdvance, uuid.Nil)
	var transitionErr *TransitionError
	if !errors.As(err, &transitionErr) || transitionErr.Reason != ReasonTerminal {
		t.Fatalf("expected terminal reason, got %v", err)
	}
}

func TestApplyRejectsUnknownAction(t *testing.T) {
	r := newTestResolver()
	_, err := r.Apply(contractAt(contracts.StatusListed), Action(42), uuid.Nil)
	if !errors.Is(err, ErrUnknownAction) {
		t.Fatalf("expected ErrUnknownAction, got %v", err)
	}
}

func TestStepsProjection(t *testing.T) {
	r := newTestResolver()
	contract := contractAt(contracts.StatusListed)
	var err error
	for _, target := range []contracts.Status{contracts.StatusNegotiating, contracts.StatusIntentSigned} {
		if contract, err = r.RequestTransition(contract, target); err != nil {
			t.Fatalf("transition: %v", err)
		}
	}

	steps := r.Steps(contract)
	if len(steps) != r.Table().Len() {
		t.Fatalf("expected %d steps, got %d", r.Table().Len(), len(steps))
	}
	if !steps[0].Reached || !steps[2].Reached || steps[3].Reached {
		t.Fatalf("unexpected reached flags %+v", steps[:4])
	}
	if !steps[2].Current || steps[1].Current {
		t.Fatalf("expected INTENT_SIGNED to be current, got %+v", steps[:3])
	}
	if !steps[3].Advanceable || steps[4].Advanceable {
		t.Fatalf("expected only CONTRACTED to be advanceable, got %+v", steps[3:5])
	}
	if steps[1].ReachedAt == nil || !steps[1].ReachedAt.Equal(fixedNow) {
		t.Fatalf("expected NEGOTIATING reached at %s, got %v", fixedNow, steps[1].ReachedAt)
	}
	if steps[2].Label != "Intent signed" {
		t.Fatalf("unexpected label %q", steps[2].Label)
	}

	cancelled, err := r.RequestTransition(contract, contracts.StatusCancelled)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	terminalSteps := r.Steps(cancelled)
	if !terminalSteps[1].Reached || terminalSteps[3].Reached {
		t.Fatalf("expected reached flags to follow history for terminal contracts, got %+v", terminalSteps[:4])
	}
	for _, step := range terminalSteps {
		if step.Advanceable || step.Current {
			t.Fatalf("expected no current/advanceable steps once cancelled, got %+v", step)
		}
	}
}

func TestParseActionRoundTripsString(t *testing.T) {
	for _, action := range []Action{ActionAdvance, ActionCancel, ActionTerminate} {
		parsed, err := ParseAction(" " + strings.ToUpper(action.String()) + " ")
		if err != nil || parsed != action {
			t.Fatalf("ParseAction(%s): got %v, %v", action, parsed, err)
		}
	}
	if _, err := ParseAction("archive"); !errors.Is(err, ErrUnknownAction) {
		t.Fatalf("expected ErrUnknownAction, got %v", err)
	}
}
