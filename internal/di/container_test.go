package di_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-estate/contracts"
	"github.com/goliatone/go-estate/internal/commands/fixtures"
	contractsvc "github.com/goliatone/go-estate/internal/contracts"
	"github.com/goliatone/go-estate/internal/di"
	"github.com/goliatone/go-estate/internal/runtimeconfig"
	"github.com/goliatone/go-estate/pkg/activity"
	"github.com/goliatone/go-estate/pkg/interfaces"
	"github.com/google/uuid"
)

var (
	fixedNow = time.Date(2024, 6, 3, 10, 30, 0, 0, time.UTC)
	agentID  = uuid.MustParse("00000000-0000-0000-0000-0000000000a1")
)

type recordingSink struct {
	records []interfaces.ActivityRecord
}

func (s *recordingSink) Log(_ context.Context, record interfaces.ActivityRecord) error {
	s.records = append(s.records, record)
	return nil
}

func newContainer(t *testing.T, cfg runtimeconfig.Config, opts ...di.Option) *di.Container {
	t.Helper()
	opts = append([]di.Option{di.WithClock(func() time.Time { return fixedNow })}, opts...)
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		t.Fatalf("new container: %v", err)
	}
	t.Cleanup(func() { _ = container.Close() })
	return container
}

func TestContainerDefaultsToMemoryStorage(t *testing.T) {
	recorder := fixtures.NewRecordingDispatcher()
	container := newContainer(t, runtimeconfig.DefaultConfig(), di.WithCommandDispatcher(recorder))

	if container.BunDB() != nil {
		t.Fatal("expected no database for memory storage")
	}
	if container.Table().Len() != 9 {
		t.Fatalf("expected default path, got %v", container.Table().Path())
	}

	svc := container.ContractService()
	record, err := svc.Create(context.Background(), contractsvc.CreateContractInput{Reference: "Mapo 402", CreatedBy: agentID})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if record.CurrentStatus != contracts.DefaultInitialStatus {
		t.Fatalf("expected default initial status, got %s", record.CurrentStatus)
	}
	if !record.CreatedAt.Equal(fixedNow) {
		t.Fatalf("expected injected clock, got %v", record.CreatedAt)
	}

	if len(recorder.Handlers) != 3 {
		t.Fatalf("expected 3 registered handlers, got %d", len(recorder.Handlers))
	}
	if container.CreateContractHandler() == nil || container.TransitionContractHandler() == nil || container.ContractActionHandler() == nil {
		t.Fatal("expected command handlers to be exposed")
	}

	if err := container.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if released := recorder.Released(); released != 3 {
		t.Fatalf("expected 3 released subscriptions, got %d", released)
	}
}

func TestContainerSkipsCommandsWhenDisabled(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Features.Commands = false
	recorder := fixtures.NewRecordingDispatcher()

	container := newContainer(t, cfg, di.WithCommandDispatcher(recorder))
	if len(recorder.Handlers) != 0 || container.CreateContractHandler() != nil {
		t.Fatalf("expected no command registration, got %d", len(recorder.Handlers))
	}
}

func TestContainerPropagatesDispatcherErrors(t *testing.T) {
	recorder := fixtures.NewRecordingDispatcher()
	recorder.Err = errors.New("dispatcher offline")

	if _, err := di.NewContainer(runtimeconfig.DefaultConfig(), di.WithCommandDispatcher(recorder)); !errors.Is(err, recorder.Err) {
		t.Fatalf("expected dispatcher error, got %v", err)
	}
}

func TestContainerBunStorageWithCache(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Storage = runtimeconfig.StorageConfig{
		Provider:    runtimeconfig.StorageProviderBun,
		Driver:      runtimeconfig.StorageDriverSQLite,
		DSN:         "file:" + t.Name() + "?mode=memory&cache=shared",
		AutoMigrate: true,
	}
	cfg.Features.Commands = false

	container := newContainer(t, cfg)
	if container.BunDB() == nil {
		t.Fatal("expected database handle for bun storage")
	}

	ctx := context.Background()
	svc := container.ContractService()
	record, err := svc.Create(ctx, contractsvc.CreateContractInput{Reference: "Seocho 77", CreatedBy: agentID})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Advance(ctx, record.ID, agentID); err != nil {
		t.Fatalf("advance: %v", err)
	}

	stored, err := container.ContractRepository().GetByID(ctx, record.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.CurrentStatus != contracts.StatusPaidComplete || len(stored.History) != 2 {
		t.Fatalf("expected PAID_COMPLETE with 2 history entries, got %s with %d", stored.CurrentStatus, len(stored.History))
	}
}

func TestContainerRejectsInitialStatusOffPath(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Workflow = runtimeconfig.WorkflowConfig{
		Path: []runtimeconfig.WorkflowStatusConfig{
			{Status: "listed"},
			{Status: "contracted"},
			{Status: "closed"},
		},
	}

	if _, err := di.NewContainer(cfg); !errors.Is(err, di.ErrInitialStatusNotOnPath) {
		t.Fatalf("expected ErrInitialStatusNotOnPath, got %v", err)
	}

	cfg.Contracts.InitialStatus = "listed"
	container := newContainer(t, cfg)
	if container.Resolver().CurrentStepIndex(contracts.StatusContracted) != 1 {
		t.Fatal("expected resolver to use the configured workflow")
	}
}

func TestContainerRejectsInvalidConfig(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Storage.Provider = "redis"

	if _, err := di.NewContainer(cfg); !errors.Is(err, runtimeconfig.ErrStorageProviderUnknown) {
		t.Fatalf("expected config error, got %v", err)
	}
}

func TestContainerEmitsActivityToHooksAndSink(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Features.Activity = true
	cfg.Features.Commands = false

	capture := &activity.CaptureHook{}
	sink := &recordingSink{}
	container := newContainer(t, cfg, di.WithActivityHooks(activity.Hooks{capture}), di.WithActivitySink(sink))

	ctx := context.Background()
	record, err := container.ContractService().Create(ctx, contractsvc.CreateContractInput{Reference: "Yongsan 9", CreatedBy: agentID})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := container.ContractService().Advance(ctx, record.ID, agentID); err != nil {
		t.Fatalf("advance: %v", err)
	}

	if len(capture.Events) != 2 {
		t.Fatalf("expected 2 captured events, got %d", len(capture.Events))
	}
	if capture.Events[0].Channel != "estate" || capture.Events[1].Verb != "transition" {
		t.Fatalf("unexpected events %+v", capture.Events)
	}
	if len(sink.records) != 2 || sink.records[1].Verb != "transition" {
		t.Fatalf("expected sink to receive activity, got %+v", sink.records)
	}
}

func TestContainerActivityDisabledByDefault(t *testing.T) {
	capture := &activity.CaptureHook{}
	container := newContainer(t, runtimeconfig.DefaultConfig(), di.WithActivityHooks(activity.Hooks{capture}))

	if _, err := container.ContractService().Create(context.Background(), contractsvc.CreateContractInput{Reference: "Jongno 3", CreatedBy: agentID}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(capture.Events) != 0 {
		t.Fatalf("expected no events while activity feature is off, got %d", len(capture.Events))
	}
}

func TestContainerBuildsGoLoggerProvider(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Features.Logger = true
	cfg.Logging.Format = "console"

	container := newContainer(t, cfg)
	if container.LoggerProvider() == nil {
		t.Fatal("expected go-logger provider when logging feature is enabled")
	}
}
