package estate_test

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-estate"
	"github.com/goliatone/go-estate/contracts"
	"github.com/goliatone/go-estate/internal/progression"
	"github.com/google/uuid"
)

var agentID = uuid.MustParse("00000000-0000-0000-0000-0000000000a1")

func TestModuleDrivesContractLifecycle(t *testing.T) {
	cfg := estate.DefaultConfig()
	cfg.Contracts.InitialStatus = "listed"

	module, err := estate.New(cfg)
	if err != nil {
		t.Fatalf("new module: %v", err)
	}
	t.Cleanup(func() { _ = module.Close() })

	ctx := context.Background()
	svc := module.Contracts()
	record, err := svc.Create(ctx, estate.CreateContractInput{Reference: "Hannam 5", CreatedBy: agentID})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	record, err = svc.Advance(ctx, record.ID, agentID)
	if err != nil {
		t.Fatalf("advance: %v", err)
	}
	if record.CurrentStatus != contracts.StatusNegotiating {
		t.Fatalf("expected NEGOTIATING, got %s", record.CurrentStatus)
	}

	steps, err := svc.Steps(ctx, record.ID)
	if err != nil {
		t.Fatalf("steps: %v", err)
	}
	if len(steps) != module.Resolver().Table().Len() {
		t.Fatalf("expected one step per path status, got %d", len(steps))
	}
	if !steps[0].Reached || !steps[1].Current || steps[2].Reached || !steps[2].Advanceable {
		t.Fatalf("unexpected step states %+v", steps[:2])
	}

	record, err = svc.Cancel(ctx, record.ID, agentID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if _, err := svc.Advance(ctx, record.ID, agentID); !errors.Is(err, progression.ErrTransitionNotAllowed) {
		t.Fatalf("expected terminal contract to reject advance, got %v", err)
	}
}

func TestModuleRejectsInvalidConfig(t *testing.T) {
	cfg := estate.DefaultConfig()
	cfg.Contracts.InitialStatus = "archived"

	if _, err := estate.New(cfg); !errors.Is(err, estate.ErrInitialStatusInvalid) {
		t.Fatalf("expected ErrInitialStatusInvalid, got %v", err)
	}
}
