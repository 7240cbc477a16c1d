package contracts

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ContractRepository exposes persistence operations for contracts and their
// status history.
type ContractRepository interface {
	// Create stores the contract together with any history entries it carries.
	Create(ctx context.Context, contract *Contract) (*Contract, error)
	// ApplyTransition stores the contract's new status and appends entry as a
	// single unit. On error neither change is visible.
	ApplyTransition(ctx context.Context, contract *Contract, entry *StatusHistoryEntry) (*Contract, error)
	// GetByID returns the contract with its history ordered by sequence.
	GetByID(ctx context.Context, id uuid.UUID) (*Contract, error)
	// GetByReference returns the contract with its history ordered by sequence.
	GetByReference(ctx context.Context, reference string) (*Contract, error)
	// List returns every contract without history.
	List(ctx context.Context) ([]*Contract, error)
	ListHistory(ctx context.Context, contractID uuid.UUID) ([]*StatusHistoryEntry, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ErrHistorySequenceTaken indicates a history entry with the same sequence already exists.
var ErrHistorySequenceTaken = errors.New("contracts: history sequence already recorded")

// NotFoundError is returned when a contract resource cannot be located.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}
