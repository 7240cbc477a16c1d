package contracts

import (
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// NewContractRepository creates a repository for contracts keyed by reference.
func NewContractRepository(db *bun.DB) repository.Repository[*Contract] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Contract]{
		NewRecord:          func() *Contract { return &Contract{} },
		GetID:              func(contract *Contract) uuid.UUID { return contract.ID },
		SetID:              func(contract *Contract, id uuid.UUID) { contract.ID = id },
		GetIdentifier:      func() string { return "reference" },
		GetIdentifierValue: func(contract *Contract) string { return contract.Reference },
	})
}

// NewHistoryRepository creates a repository for status history entries.
func NewHistoryRepository(db *bun.DB) repository.Repository[*StatusHistoryEntry] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*StatusHistoryEntry]{
		NewRecord:          func() *StatusHistoryEntry { return &StatusHistoryEntry{} },
		GetID:              func(entry *StatusHistoryEntry) uuid.UUID { return entry.ID },
		SetID:              func(entry *StatusHistoryEntry, id uuid.UUID) { entry.ID = id },
		GetIdentifier:      func() string { return "id" },
		GetIdentifierValue: func(entry *StatusHistoryEntry) string { return entry.ID.String() },
	})
}
