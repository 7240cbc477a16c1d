package contractscmd

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	estatecontracts "github.com/goliatone/go-estate/contracts"
	"github.com/goliatone/go-estate/internal/progression"
	"github.com/google/uuid"
)

const (
	createContractMessageType     = "estate.contracts.create"
	transitionContractMessageType = "estate.contracts.transition"
	contractActionMessageType     = "estate.contracts.action"
)

// CreateContractCommand opens a new contract.
type CreateContractCommand struct {
	Reference     string     `json:"reference"`
	Title         string     `json:"title,omitempty"`
	PropertyID    *uuid.UUID `json:"property_id,omitempty"`
	CustomerID    *uuid.UUID `json:"customer_id,omitempty"`
	InitialStatus string     `json:"initial_status,omitempty"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
	CreatedBy     uuid.UUID  `json:"created_by"`
}

// Type implements command.Message.
func (CreateContractCommand) Type() string { return createContractMessageType }

// Validate ensures the message carries the required fields before reaching handlers.
func (m CreateContractCommand) Validate() error {
	errs := validation.Errors{}
	if strings.TrimSpace(m.Reference) == "" {
		errs["reference"] = validation.NewError("estate.contracts.create.reference_required", "reference is required")
	}
	if raw := strings.TrimSpace(m.InitialStatus); raw != "" {
		if _, err := estatecontracts.ParseStatus(raw); err != nil {
			errs["initial_status"] = validation.NewError("estate.contracts.create.initial_status_invalid", "initial_status is not a known status")
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// TransitionContractCommand moves a contract to an explicit target status.
type TransitionContractCommand struct {
	ContractID   uuid.UUID `json:"contract_id"`
	TargetStatus string    `json:"target_status"`
	ActorID      uuid.UUID `json:"actor_id"`
}

// Type implements command.Message.
func (TransitionContractCommand) Type() string { return transitionContractMessageType }

// Validate ensures the message carries the required fields before reaching handlers.
func (m TransitionContractCommand) Validate() error {
	errs := validation.Errors{}
	if m.ContractID == uuid.Nil {
		errs["contract_id"] = validation.NewError("estate.contracts.transition.contract_id_required", "contract_id is required")
	}
	if strings.TrimSpace(m.TargetStatus) == "" {
		errs["target_status"] = validation.NewError("estate.contracts.transition.target_status_required", "target_status is required")
	} else if _, err := estatecontracts.ParseStatus(m.TargetStatus); err != nil {
		errs["target_status"] = validation.NewError("estate.contracts.transition.target_status_invalid", "target_status is not a known status")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ContractActionCommand applies a menu action (advance, cancel, terminate).
type ContractActionCommand struct {
	ContractID uuid.UUID `json:"contract_id"`
	Action     string    `json:"action"`
	ActorID    uuid.UUID `json:"actor_id"`
}

// Type implements command.Message.
func (ContractActionCommand) Type() string { return contractActionMessageType }

// Validate ensures the message carries the required fields before reaching handlers.
func (m ContractActionCommand) Validate() error {
	errs := validation.Errors{}
	if m.ContractID == uuid.Nil {
		errs["contract_id"] = validation.NewError("estate.contracts.action.contract_id_required", "contract_id is required")
	}
	if _, err := progression.ParseAction(m.Action); err != nil {
		errs["action"] = validation.NewError("estate.contracts.action.action_invalid", "action must be advance, cancel or terminate")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}
