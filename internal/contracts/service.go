package contracts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-estate/internal/identity"
	"github.com/goliatone/go-estate/internal/logging"
	"github.com/goliatone/go-estate/internal/progression"
	"github.com/goliatone/go-estate/pkg/activity"
	"github.com/goliatone/go-estate/pkg/interfaces"
	"github.com/goliatone/go-slug"
	"github.com/google/uuid"
)

// Service exposes back-office contract operations.
type Service interface {
	Create(ctx context.Context, input CreateContractInput) (*Contract, error)
	Get(ctx context.Context, id uuid.UUID) (*Contract, error)
	GetByReference(ctx context.Context, reference string) (*Contract, error)
	List(ctx context.Context, opts ListOptions) ([]*Contract, error)

	Transition(ctx context.Context, input TransitionInput) (*Contract, error)
	Advance(ctx context.Context, id uuid.UUID, actorID uuid.UUID) (*Contract, error)
	Cancel(ctx context.Context, id uuid.UUID, actorID uuid.UUID) (*Contract, error)
	Terminate(ctx context.Context, id uuid.UUID, actorID uuid.UUID) (*Contract, error)

	AvailableTransitions(ctx context.Context, id uuid.UUID) ([]Status, error)
	Steps(ctx context.Context, id uuid.UUID) ([]progression.Step, error)
	Summary(ctx context.Context) (Summary, error)

	Delete(ctx context.Context, id uuid.UUID, actorID uuid.UUID) error
	ExportSnapshot(ctx context.Context, id uuid.UUID) ([]byte, error)
	ImportSnapshot(ctx context.Context, data []byte, actorID uuid.UUID) (*Contract, error)
}

// CreateContractInput captures the fields required to open a contract.
type CreateContractInput struct {
	Reference  string
	Title      string
	PropertyID *uuid.UUID
	CustomerID *uuid.UUID
	// InitialStatus overrides the configured initial status when set.
	InitialStatus Status
	ExpiresAt     *time.Time
	CreatedBy     uuid.UUID
}

// TransitionInput requests a move of a contract to Target.
type TransitionInput struct {
	ContractID uuid.UUID
	Target     Status
	ActorID    uuid.UUID
}

var (
	ErrContractRepositoryRequired = errors.New("contracts: contract repository required")

	ErrReferenceRequired    = errors.New("contracts: reference required")
	ErrReferenceInvalid     = errors.New("contracts: reference invalid")
	ErrContractExists       = errors.New("contracts: contract already exists")
	ErrContractNotFound     = errors.New("contracts: contract not found")
	ErrInitialStatusInvalid = errors.New("contracts: initial status must be a step of the linear path")
	ErrStatusUnknown        = errors.New("contracts: status not part of the workflow")
)

// IDGenerator derives a contract identifier from its normalized reference.
type IDGenerator func(reference string) uuid.UUID

// ServiceOption configures service behaviour.
type ServiceOption func(*service)

// WithIDGenerator overrides the default deterministic ID generator.
func WithIDGenerator(generator IDGenerator) ServiceOption {
	return func(s *service) {
		if generator != nil {
			s.id = generator
		}
	}
}

// WithNow overrides the time source (primarily for tests).
func WithNow(now func() time.Time) ServiceOption {
	return func(s *service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithResolver sets the progression resolver. Defaults to the stock table.
func WithResolver(resolver *progression.Resolver) ServiceOption {
	return func(s *service) {
		if resolver != nil {
			s.resolver = resolver
		}
	}
}

// WithInitialStatus sets the status assigned to contracts created without one.
func WithInitialStatus(status Status) ServiceOption {
	return func(s *service) {
		if status != "" {
			s.initialStatus = status
		}
	}
}

// WithExpiryWindow sets the lookahead used by Summary for expiring contracts.
func WithExpiryWindow(window time.Duration) ServiceOption {
	return func(s *service) {
		if window >= 0 {
			s.expiryWindow = window
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithActivityEmitter wires the activity emitter used for contract events.
func WithActivityEmitter(emitter *activity.Emitter) ServiceOption {
	return func(s *service) {
		if emitter != nil {
			s.activity = emitter
		}
	}
}

type service struct {
	repo          ContractRepository
	resolver      *progression.Resolver
	id            IDGenerator
	now           func() time.Time
	initialStatus Status
	expiryWindow  time.Duration
	logger        interfaces.Logger
	activity      *activity.Emitter

	// mu serializes read-modify-write cycles on contract status.
	mu sync.Mutex
}

// NewService constructs a contract service instance.
func NewService(repo ContractRepository, opts ...ServiceOption) Service {
	if repo == nil {
		panic(ErrContractRepositoryRequired)
	}

	s := &service{
		repo:          repo,
		resolver:      progression.NewResolver(nil),
		id:            identity.ContractUUID,
		now:           time.Now,
		initialStatus: DefaultInitialStatus,
		expiryWindow:  30 * 24 * time.Hour,
		logger:        logging.NoOp(),
		activity:      activity.NewEmitter(nil, activity.Config{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) Create(ctx context.Context, input CreateContractInput) (*Contract, error) {
	reference, err := normalizeReference(input.Reference)
	if err != nil {
		return nil, err
	}

	status := input.InitialStatus
	if status == "" {
		status = s.initialStatus
	}
	if !s.onPath(status) {
		return nil, fmt.Errorf("%w: %s", ErrInitialStatusInvalid, status)
	}

	if err := s.ensureAbsent(ctx, uuid.Nil, reference); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	id := s.id(reference)
	record := &Contract{
		ID:            id,
		Reference:     reference,
		Title:         strings.TrimSpace(input.Title),
		PropertyID:    cloneUUIDPtr(input.PropertyID),
		CustomerID:    cloneUUIDPtr(input.CustomerID),
		CurrentStatus: status,
		ExpiresAt:     cloneTimePtr(input.ExpiresAt),
		CreatedBy:     input.CreatedBy,
		CreatedAt:     now,
		UpdatedAt:     now,
		History: []*StatusHistoryEntry{{
			ID:            identity.HistoryEntryUUID(id, 1),
			ContractID:    id,
			Sequence:      1,
			CurrentStatus: status,
			ChangedAt:     now,
			ActorID:       input.CreatedBy,
		}},
	}

	created, err := s.repo.Create(ctx, record)
	if err != nil {
		return nil, err
	}

	logging.WithContractContext(s.logger, created.ID, created.Reference).Info("contract.created", "status", status)
	s.emitActivity(ctx, input.CreatedBy, "create", created, map[string]any{
		"status": status.String(),
	})
	return cloneContract(created), nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*Contract, error) {
	if id == uuid.Nil {
		return nil, ErrContractNotFound
	}
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, translateRepoError(err, ErrContractNotFound)
	}
	return cloneContract(record), nil
}

func (s *service) GetByReference(ctx context.Context, reference string) (*Contract, error) {
	normalized, err := normalizeReference(reference)
	if err != nil {
		return nil, ErrContractNotFound
	}
	record, err := s.repo.GetByReference(ctx, normalized)
	if err != nil {
		return nil, translateRepoError(err, ErrContractNotFound)
	}
	return cloneContract(record), nil
}

func (s *service) List(ctx context.Context, opts ListOptions) ([]*Contract, error) {
	records, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	filtered := FilterContracts(records, opts, s.resolver, s.now().UTC())
	out := make([]*Contract, len(filtered))
	for i, record := range filtered {
		out[i] = cloneContract(record)
	}
	return out, nil
}

func (s *service) Transition(ctx context.Context, input TransitionInput) (*Contract, error) {
	return s.transition(ctx, input.ContractID, input.ActorID, func(current Contract) (Contract, error) {
		return s.resolver.TransitionAs(current, input.Target, input.ActorID)
	})
}

func (s *service) Advance(ctx context.Context, id uuid.UUID, actorID uuid.UUID) (*Contract, error) {
	return s.applyAction(ctx, id, actorID, progression.ActionAdvance)
}

func (s *service) Cancel(ctx context.Context, id uuid.UUID, actorID uuid.UUID) (*Contract, error) {
	return s.applyAction(ctx, id, actorID, progression.ActionCancel)
}

func (s *service) Terminate(ctx context.Context, id uuid.UUID, actorID uuid.UUID) (*Contract, error) {
	return s.applyAction(ctx, id, actorID, progression.ActionTerminate)
}

func (s *service) applyAction(ctx context.Context, id uuid.UUID, actorID uuid.UUID, action progression.Action) (*Contract, error) {
	return s.transition(ctx, id, actorID, func(current Contract) (Contract, error) {
		return s.resolver.Apply(current, action, actorID)
	})
}

func (s *service) transition(ctx context.Context, id uuid.UUID, actorID uuid.UUID, apply func(Contract) (Contract, error)) (*Contract, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	logger := logging.WithContractContext(s.logger, current.ID, current.Reference)

	updated, err := apply(*current)
	if err != nil {
		logger.Warn("contract.transition.rejected", "from", current.CurrentStatus, "error", err)
		return nil, err
	}
	entry := updated.History[len(updated.History)-1]

	stored, err := s.repo.ApplyTransition(ctx, &updated, entry)
	if err != nil {
		logger.Error("contract.transition.persist_failed", "to", updated.CurrentStatus, "sequence", entry.Sequence, "error", err)
		return nil, translateRepoError(err, ErrContractNotFound)
	}

	logger.Info("contract.transition.applied", "from", current.CurrentStatus, "to", stored.CurrentStatus)
	s.emitActivity(ctx, actorID, "transition", stored, map[string]any{
		"from":     current.CurrentStatus.String(),
		"to":       stored.CurrentStatus.String(),
		"sequence": entry.Sequence,
	})
	return cloneContract(stored), nil
}

func (s *service) AvailableTransitions(ctx context.Context, id uuid.UUID) ([]Status, error) {
	record, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.resolver.AvailableTransitions(record.CurrentStatus), nil
}

func (s *service) Steps(ctx context.Context, id uuid.UUID) ([]progression.Step, error) {
	record, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.resolver.Steps(*record), nil
}

func (s *service) Summary(ctx context.Context) (Summary, error) {
	records, err := s.repo.List(ctx)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(records, s.resolver, s.now().UTC(), s.expiryWindow), nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID, actorID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return translateRepoError(err, ErrContractNotFound)
	}
	logging.WithContractContext(s.logger, record.ID, record.Reference).Info("contract.deleted")
	s.emitActivity(ctx, actorID, "delete", record, nil)
	return nil
}

func (s *service) ExportSnapshot(ctx context.Context, id uuid.UUID) ([]byte, error) {
	record, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return EncodeSnapshot(record)
}

func (s *service) ImportSnapshot(ctx context.Context, data []byte, actorID uuid.UUID) (*Contract, error) {
	record, err := DecodeSnapshot(data)
	if err != nil {
		return nil, err
	}

	reference, err := normalizeReference(record.Reference)
	if err != nil {
		return nil, err
	}
	record.Reference = reference
	if !s.known(record.CurrentStatus) {
		return nil, fmt.Errorf("%w: %s", ErrStatusUnknown, record.CurrentStatus)
	}
	if record.ID == uuid.Nil {
		record.ID = s.id(reference)
	}
	if err := s.ensureAbsent(ctx, record.ID, reference); err != nil {
		return nil, err
	}
	for _, entry := range record.History {
		if entry != nil {
			entry.ContractID = record.ID
		}
	}

	created, err := s.repo.Create(ctx, record)
	if err != nil {
		return nil, err
	}

	logging.WithContractContext(s.logger, created.ID, created.Reference).Info("contract.imported", "history", len(created.History))
	s.emitActivity(ctx, actorID, "import", created, map[string]any{
		"status": created.CurrentStatus.String(),
	})
	return cloneContract(created), nil
}

func (s *service) ensureAbsent(ctx context.Context, id uuid.UUID, reference string) error {
	if existing, err := s.repo.GetByReference(ctx, reference); err == nil && existing != nil {
		return ErrContractExists
	} else if err != nil && !isNotFound(err) {
		return err
	}
	if id == uuid.Nil {
		return nil
	}
	if existing, err := s.repo.GetByID(ctx, id); err == nil && existing != nil {
		return ErrContractExists
	} else if err != nil && !isNotFound(err) {
		return err
	}
	return nil
}

func (s *service) onPath(status Status) bool {
	return s.resolver.CurrentStepIndex(status) < s.resolver.Table().Len()
}

func (s *service) known(status Status) bool {
	return s.onPath(status) || s.resolver.IsTerminal(status)
}

func (s *service) emitActivity(ctx context.Context, actorID uuid.UUID, verb string, record *Contract, meta map[string]any) {
	if s.activity == nil || !s.activity.Enabled() || record == nil {
		return
	}
	if meta == nil {
		meta = map[string]any{}
	}
	meta["reference"] = record.Reference
	event := activity.Event{
		Verb:       verb,
		ObjectType: "contract",
		ObjectID:   record.ID.String(),
		Metadata:   meta,
	}
	if actorID != uuid.Nil {
		event.ActorID = actorID.String()
	}
	if err := s.activity.Emit(ctx, event); err != nil {
		s.logger.Warn("contract.activity.failed", "verb", verb, "error", err)
	}
}

func normalizeReference(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrReferenceRequired
	}
	normalized, err := slug.Normalize(trimmed)
	if err != nil || normalized == "" || !slug.IsValid(normalized) {
		return "", fmt.Errorf("%w: %q", ErrReferenceInvalid, raw)
	}
	return normalized, nil
}

func isNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

func translateRepoError(err error, fallback error) error {
	if err == nil {
		return nil
	}
	if isNotFound(err) {
		return fallback
	}
	return err
}
