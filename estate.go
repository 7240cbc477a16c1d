package estate

import (
	contractscmd "github.com/goliatone/go-estate/internal/commands/contracts"
	"github.com/goliatone/go-estate/internal/contracts"
	"github.com/goliatone/go-estate/internal/di"
	"github.com/goliatone/go-estate/internal/progression"
)

// ContractService exports the contracts service contract for consumers of the estate package.
type ContractService = contracts.Service

// CreateContractInput exports the contract creation payload.
type CreateContractInput = contracts.CreateContractInput

// TransitionInput exports the transition request payload.
type TransitionInput = contracts.TransitionInput

// ListOptions exports the contract listing filters.
type ListOptions = contracts.ListOptions

// Summary exports the dashboard counters.
type Summary = contracts.Summary

// Resolver exports the progression resolver.
type Resolver = progression.Resolver

// Step exports a single progress indicator step.
type Step = progression.Step

// Action exports the operator actions.
type Action = progression.Action

const (
	ActionAdvance   = progression.ActionAdvance
	ActionCancel    = progression.ActionCancel
	ActionTerminate = progression.ActionTerminate
)

// Option customises module wiring.
type Option = di.Option

// Module represents the top level estate runtime façade.
type Module struct {
	container *di.Container
}

// New constructs an estate module using the provided configuration and optional DI overrides.
func New(cfg Config, opts ...Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Contracts returns the configured contracts service.
func (m *Module) Contracts() ContractService {
	return m.container.ContractService()
}

// Resolver returns the progression resolver backing the contracts service.
func (m *Module) Resolver() *Resolver {
	return m.container.Resolver()
}

// CreateContractHandler returns the create command handler, nil when commands are disabled.
func (m *Module) CreateContractHandler() *contractscmd.CreateContractHandler {
	return m.container.CreateContractHandler()
}

// TransitionContractHandler returns the transition command handler.
func (m *Module) TransitionContractHandler() *contractscmd.TransitionContractHandler {
	return m.container.TransitionContractHandler()
}

// ContractActionHandler returns the action command handler.
func (m *Module) ContractActionHandler() *contractscmd.ContractActionHandler {
	return m.container.ContractActionHandler()
}

// Close releases command subscriptions and storage owned by the module.
func (m *Module) Close() error {
	return m.container.Close()
}
