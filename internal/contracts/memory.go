package contracts

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
)

var _ ContractRepository = (*MemoryContractRepository)(nil)

// MemoryContractRepository provides an in-memory implementation of ContractRepository.
type MemoryContractRepository struct {
	mu          sync.RWMutex
	byID        map[uuid.UUID]*Contract
	byReference map[string]uuid.UUID
	history     map[uuid.UUID][]*StatusHistoryEntry
}

// NewMemoryContractRepository constructs an empty memory-backed contract repository.
func NewMemoryContractRepository() *MemoryContractRepository {
	return &MemoryContractRepository{
		byID:        make(map[uuid.UUID]*Contract),
		byReference: make(map[string]uuid.UUID),
		history:     make(map[uuid.UUID][]*StatusHistoryEntry),
	}
}

func (r *MemoryContractRepository) Create(_ context.Context, contract *Contract) (*Contract, error) {
	if contract == nil {
		return nil, nil
	}
	cloned := cloneContract(contract)
	history := cloned.History
	cloned.History = nil

	r.mu.Lock()
	defer r.mu.Unlock()

	r.byID[cloned.ID] = cloned
	r.byReference[cloned.Reference] = cloned.ID
	entries := make([]*StatusHistoryEntry, 0, len(history))
	for _, entry := range history {
		entry.ContractID = cloned.ID
		entries = append(entries, entry)
	}
	r.history[cloned.ID] = entries

	return r.assemble(cloned), nil
}

func (r *MemoryContractRepository) ApplyTransition(_ context.Context, contract *Contract, entry *StatusHistoryEntry) (*Contract, error) {
	if contract == nil || entry == nil {
		return nil, fmt.Errorf("contract repository: transition requires a contract and a history entry")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.byID[contract.ID]
	if !ok {
		return nil, &NotFoundError{Resource: "contract", Key: contract.ID.String()}
	}
	for _, existing := range r.history[contract.ID] {
		if existing.Sequence == entry.Sequence {
			return nil, fmt.Errorf("%w: contract %s sequence %d", ErrHistorySequenceTaken, contract.ID, entry.Sequence)
		}
	}

	next := cloneContract(current)
	next.CurrentStatus = contract.CurrentStatus
	next.UpdatedAt = contract.UpdatedAt
	appended := cloneHistoryEntry(entry)
	appended.ContractID = contract.ID

	r.byID[contract.ID] = next
	r.history[contract.ID] = append(r.history[contract.ID], appended)
	return r.assemble(next), nil
}

func (r *MemoryContractRepository) GetByID(_ context.Context, id uuid.UUID) (*Contract, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.byID[id]
	if !ok {
		return nil, &NotFoundError{Resource: "contract", Key: id.String()}
	}
	return r.assemble(record), nil
}

func (r *MemoryContractRepository) GetByReference(_ context.Context, reference string) (*Contract, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byReference[reference]
	if !ok {
		return nil, &NotFoundError{Resource: "contract", Key: reference}
	}
	return r.assemble(r.byID[id]), nil
}

func (r *MemoryContractRepository) List(_ context.Context) ([]*Contract, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Contract, 0, len(r.byID))
	for _, contract := range r.byID {
		out = append(out, cloneContract(contract))
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].Reference < out[j].Reference
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *MemoryContractRepository) ListHistory(_ context.Context, contractID uuid.UUID) ([]*StatusHistoryEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return sortedHistory(r.history[contractID]), nil
}

func (r *MemoryContractRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, ok := r.byID[id]
	if !ok {
		return &NotFoundError{Resource: "contract", Key: id.String()}
	}
	delete(r.byReference, record.Reference)
	delete(r.byID, id)
	delete(r.history, id)
	return nil
}

// assemble must be called with the lock held.
func (r *MemoryContractRepository) assemble(record *Contract) *Contract {
	out := cloneContract(record)
	out.History = sortedHistory(r.history[record.ID])
	return out
}

func sortedHistory(entries []*StatusHistoryEntry) []*StatusHistoryEntry {
	out := cloneHistory(entries)
	if out == nil {
		out = []*StatusHistoryEntry{}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Sequence < out[j].Sequence
	})
	return out
}
