package contractscmd

import (
	"context"
	"errors"
	"strings"

	estatecontracts "github.com/goliatone/go-estate/contracts"
	"github.com/goliatone/go-estate/internal/commands"
	"github.com/goliatone/go-estate/internal/contracts"
	"github.com/goliatone/go-estate/internal/progression"
	"github.com/goliatone/go-estate/pkg/interfaces"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

const (
	transitionNotAllowedCode = "CONTRACT_TRANSITION_NOT_ALLOWED"
	contractNotFoundCode     = "CONTRACT_NOT_FOUND"
	contractExistsCode       = "CONTRACT_ALREADY_EXISTS"
)

// CreateContractHandler opens contracts through the contracts service.
type CreateContractHandler struct {
	inner *commands.Handler[CreateContractCommand]
}

// NewCreateContractHandler constructs a handler wired to the provided contracts service.
func NewCreateContractHandler(service contracts.Service, logger interfaces.Logger, opts ...commands.HandlerOption[CreateContractCommand]) *CreateContractHandler {
	exec := func(ctx context.Context, msg CreateContractCommand) error {
		input := contracts.CreateContractInput{
			Reference:  msg.Reference,
			Title:      msg.Title,
			PropertyID: msg.PropertyID,
			CustomerID: msg.CustomerID,
			ExpiresAt:  msg.ExpiresAt,
			CreatedBy:  msg.CreatedBy,
		}
		if raw := strings.TrimSpace(msg.InitialStatus); raw != "" {
			status, err := estatecontracts.ParseStatus(raw)
			if err != nil {
				return err
			}
			input.InitialStatus = status
		}
		_, err := service.Create(ctx, input)
		return mapServiceError(err)
	}

	handlerOpts := []commands.HandlerOption[CreateContractCommand]{
		commands.WithLogger[CreateContractCommand](logger),
		commands.WithOperation[CreateContractCommand]("contracts.create"),
		commands.WithMessageFields[CreateContractCommand](func(msg CreateContractCommand) map[string]any {
			return map[string]any{"reference": strings.TrimSpace(msg.Reference)}
		}),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &CreateContractHandler{
		inner: commands.NewHandler[CreateContractCommand](exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[CreateContractCommand].Execute.
func (h *CreateContractHandler) Execute(ctx context.Context, msg CreateContractCommand) error {
	return h.inner.Execute(ctx, msg)
}

// TransitionContractHandler applies explicit status transitions.
type TransitionContractHandler struct {
	inner *commands.Handler[TransitionContractCommand]
}

// NewTransitionContractHandler constructs a handler wired to the provided contracts service.
func NewTransitionContractHandler(service contracts.Service, logger interfaces.Logger, opts ...commands.HandlerOption[TransitionContractCommand]) *TransitionContractHandler {
	exec := func(ctx context.Context, msg TransitionContractCommand) error {
		target, err := estatecontracts.ParseStatus(msg.TargetStatus)
		if err != nil {
			return err
		}
		_, err = service.Transition(ctx, contracts.TransitionInput{
			ContractID: msg.ContractID,
			Target:     target,
			ActorID:    msg.ActorID,
		})
		return mapServiceError(err)
	}

	handlerOpts := []commands.HandlerOption[TransitionContractCommand]{
		commands.WithLogger[TransitionContractCommand](logger),
		commands.WithOperation[TransitionContractCommand]("contracts.transition"),
		commands.WithMessageFields[TransitionContractCommand](func(msg TransitionContractCommand) map[string]any {
			return contractFields(msg.ContractID, msg.ActorID, map[string]any{
				"target_status": estatecontracts.NormalizeStatus(msg.TargetStatus).String(),
			})
		}),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &TransitionContractHandler{
		inner: commands.NewHandler[TransitionContractCommand](exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[TransitionContractCommand].Execute.
func (h *TransitionContractHandler) Execute(ctx context.Context, msg TransitionContractCommand) error {
	return h.inner.Execute(ctx, msg)
}

// ContractActionHandler resolves menu actions through the contracts service.
type ContractActionHandler struct {
	inner *commands.Handler[ContractActionCommand]
}

// NewContractActionHandler constructs a handler wired to the provided contracts service.
func NewContractActionHandler(service contracts.Service, logger interfaces.Logger, opts ...commands.HandlerOption[ContractActionCommand]) *ContractActionHandler {
	exec := func(ctx context.Context, msg ContractActionCommand) error {
		action, err := progression.ParseAction(msg.Action)
		if err != nil {
			return err
		}
		switch action {
		case progression.ActionAdvance:
			_, err = service.Advance(ctx, msg.ContractID, msg.ActorID)
		case progression.ActionCancel:
			_, err = service.Cancel(ctx, msg.ContractID, msg.ActorID)
		case progression.ActionTerminate:
			_, err = service.Terminate(ctx, msg.ContractID, msg.ActorID)
		}
		return mapServiceError(err)
	}

	handlerOpts := []commands.HandlerOption[ContractActionCommand]{
		commands.WithLogger[ContractActionCommand](logger),
		commands.WithOperation[ContractActionCommand]("contracts.action"),
		commands.WithMessageFields[ContractActionCommand](func(msg ContractActionCommand) map[string]any {
			return contractFields(msg.ContractID, msg.ActorID, map[string]any{
				"action": strings.ToLower(strings.TrimSpace(msg.Action)),
			})
		}),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &ContractActionHandler{
		inner: commands.NewHandler[ContractActionCommand](exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[ContractActionCommand].Execute.
func (h *ContractActionHandler) Execute(ctx context.Context, msg ContractActionCommand) error {
	return h.inner.Execute(ctx, msg)
}

func contractFields(contractID, actorID uuid.UUID, extra map[string]any) map[string]any {
	fields := map[string]any{"contract_id": contractID.String()}
	if actorID != uuid.Nil {
		fields["actor_id"] = actorID.String()
	}
	for key, value := range extra {
		fields[key] = value
	}
	return fields
}

func mapServiceError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, progression.ErrTransitionNotAllowed):
		return goerrors.Wrap(err, goerrors.CategoryValidation, "contract transition not allowed").
			WithTextCode(transitionNotAllowedCode)
	case errors.Is(err, contracts.ErrContractNotFound):
		return goerrors.Wrap(err, goerrors.CategoryCommand, "contract not found").
			WithTextCode(contractNotFoundCode)
	case errors.Is(err, contracts.ErrContractExists):
		return goerrors.Wrap(err, goerrors.CategoryValidation, "contract already exists").
			WithTextCode(contractExistsCode)
	default:
		return err
	}
}
