package main

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-estate"
	contractscmd "github.com/goliatone/go-estate/internal/commands/contracts"
	"github.com/goliatone/go-estate/internal/di"
	"github.com/goliatone/go-estate/pkg/activity"
	"github.com/google/uuid"
)

func main() {
	ctx := context.Background()

	cfg := estate.DefaultConfig()
	cfg.Storage = estate.StorageConfig{
		Provider:    "bun",
		Driver:      "sqlite",
		DSN:         "file:estate-example?mode=memory&cache=shared",
		AutoMigrate: true,
	}
	cfg.Features.Logger = true
	cfg.Features.Activity = true
	cfg.Logging.Format = "console"
	cfg.Contracts.InitialStatus = "listed"

	capture := &activity.CaptureHook{}
	module, err := estate.New(cfg, di.WithActivityHooks(activity.Hooks{capture}))
	if err != nil {
		log.Fatalf("init estate module: %v", err)
	}
	defer func() {
		if err := module.Close(); err != nil {
			log.Printf("close module: %v", err)
		}
	}()

	agent := uuid.New()
	expires := time.Now().Add(10 * 24 * time.Hour)

	if err := dispatcher.Dispatch(ctx, contractscmd.CreateContractCommand{
		Reference: "Gangnam Officetel 1203",
		Title:     "Officetel lease, unit 1203",
		ExpiresAt: &expires,
		CreatedBy: agent,
	}); err != nil {
		log.Fatalf("create contract: %v", err)
	}

	svc := module.Contracts()
	record, err := svc.GetByReference(ctx, "gangnam-officetel-1203")
	if err != nil {
		log.Fatalf("lookup contract: %v", err)
	}

	for _, action := range []string{"advance", "advance", "advance"} {
		if err := dispatcher.Dispatch(ctx, contractscmd.ContractActionCommand{
			ContractID: record.ID,
			Action:     action,
			ActorID:    agent,
		}); err != nil {
			log.Fatalf("%s contract: %v", action, err)
		}
	}

	// Skipping a step is rejected and leaves the contract untouched.
	if err := dispatcher.Dispatch(ctx, contractscmd.TransitionContractCommand{
		ContractID:   record.ID,
		TargetStatus: "REGISTERED",
		ActorID:      agent,
	}); err != nil {
		fmt.Printf("rejected: %v\n", err)
	}

	steps, err := svc.Steps(ctx, record.ID)
	if err != nil {
		log.Fatalf("steps: %v", err)
	}
	fmt.Println("progress:")
	for _, step := range steps {
		marker := " "
		switch {
		case step.Current:
			marker = ">"
		case step.Reached:
			marker = "x"
		}
		fmt.Printf("  [%s] %-14s %s\n", marker, step.Status, step.Label)
	}

	available, err := svc.AvailableTransitions(ctx, record.ID)
	if err != nil {
		log.Fatalf("available transitions: %v", err)
	}
	names := make([]string, 0, len(available))
	for _, status := range available {
		names = append(names, string(status))
	}
	fmt.Printf("available: %s\n", strings.Join(names, ", "))

	summary, err := svc.Summary(ctx)
	if err != nil {
		log.Fatalf("summary: %v", err)
	}
	fmt.Printf("summary: total=%d active=%d expiring_soon=%d\n", summary.Total, summary.Active, summary.ExpiringSoon)

	snapshot, err := svc.ExportSnapshot(ctx, record.ID)
	if err != nil {
		log.Fatalf("export snapshot: %v", err)
	}
	fmt.Printf("snapshot: %d bytes, %d activity events\n", len(snapshot), len(capture.Events))
}
