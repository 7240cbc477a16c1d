package contracts

import (
	"context"
	"fmt"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	"github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

var _ ContractRepository = (*BunContractRepository)(nil)

// BunContractRepository implements ContractRepository with optional caching of
// contract reads. History reads always hit the database.
type BunContractRepository struct {
	db           *bun.DB
	repo         repository.Repository[*Contract]
	history      repository.Repository[*StatusHistoryEntry]
	cacheService cache.CacheService
	cachePrefix  string
}

const contractNamespace = "contract"

// NewBunContractRepository creates a contract repository without caching.
func NewBunContractRepository(db *bun.DB) *BunContractRepository {
	return NewBunContractRepositoryWithCache(db, nil, nil)
}

// NewBunContractRepositoryWithCache creates a contract repository with caching support.
func NewBunContractRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, serializer cache.KeySerializer) *BunContractRepository {
	base := NewContractRepository(db)
	var svc cache.CacheService
	if cacheService != nil && serializer != nil {
		base = repositorycache.New(base, cacheService, serializer)
		svc = cacheService
	}
	prefix := ""
	if svc != nil {
		prefix = contractNamespace + cache.KeySeparator
	}
	return &BunContractRepository{
		db:           db,
		repo:         base,
		history:      NewHistoryRepository(db),
		cacheService: svc,
		cachePrefix:  prefix,
	}
}

// Create inserts the contract and its history in one transaction.
func (r *BunContractRepository) Create(ctx context.Context, contract *Contract) (*Contract, error) {
	if r.db == nil {
		return nil, fmt.Errorf("contract repository: database not configured")
	}

	record := cloneContract(contract)
	history := make([]*StatusHistoryEntry, 0, len(record.History))
	for _, entry := range record.History {
		if entry == nil {
			continue
		}
		entry.ContractID = record.ID
		history = append(history, entry)
	}
	record.History = nil

	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(record).Exec(ctx); err != nil {
			return fmt.Errorf("insert contract: %w", err)
		}
		if len(history) == 0 {
			return nil
		}
		if _, err := tx.NewInsert().Model(&history).Exec(ctx); err != nil {
			return fmt.Errorf("insert contract status history: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := r.InvalidateCache(ctx); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, record.ID)
}

// ApplyTransition stores the new status and appends entry in one transaction.
// A failed append leaves the stored status untouched.
func (r *BunContractRepository) ApplyTransition(ctx context.Context, contract *Contract, entry *StatusHistoryEntry) (*Contract, error) {
	if r.db == nil {
		return nil, fmt.Errorf("contract repository: database not configured")
	}
	if contract == nil || entry == nil {
		return nil, fmt.Errorf("contract repository: transition requires a contract and a history entry")
	}

	row := &Contract{
		ID:            contract.ID,
		CurrentStatus: contract.CurrentStatus,
		UpdatedAt:     contract.UpdatedAt,
	}
	appended := cloneHistoryEntry(entry)
	appended.ContractID = contract.ID

	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewUpdate().
			Model(row).
			Column("current_status", "updated_at").
			WherePK().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("update contract status: %w", err)
		}
		if affected, _ := res.RowsAffected(); affected == 0 {
			return &NotFoundError{Resource: "contract", Key: contract.ID.String()}
		}

		if _, err := tx.NewInsert().Model(appended).Exec(ctx); err != nil {
			return fmt.Errorf("insert contract status history: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := r.InvalidateCache(ctx); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, contract.ID)
}

func (r *BunContractRepository) GetByID(ctx context.Context, id uuid.UUID) (*Contract, error) {
	record, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, "contract", id.String())
	}
	return r.withHistory(ctx, record)
}

func (r *BunContractRepository) GetByReference(ctx context.Context, reference string) (*Contract, error) {
	record, err := r.repo.GetByIdentifier(ctx, reference)
	if err != nil {
		return nil, mapRepositoryError(err, "contract", reference)
	}
	return r.withHistory(ctx, record)
}

func (r *BunContractRepository) List(ctx context.Context) ([]*Contract, error) {
	records, _, err := r.repo.List(ctx, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.OrderExpr("?TableAlias.created_at ASC")
	}))
	return records, err
}

func (r *BunContractRepository) ListHistory(ctx context.Context, contractID uuid.UUID) ([]*StatusHistoryEntry, error) {
	records, _, err := r.history.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.contract_id = ?", contractID)
		}),
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.OrderExpr("?TableAlias.sequence ASC")
		}),
	)
	if err != nil {
		return nil, mapRepositoryError(err, "contract_status_history", contractID.String())
	}
	return records, nil
}

// Delete removes the contract and its history in one transaction.
func (r *BunContractRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if r.db == nil {
		return fmt.Errorf("contract repository: database not configured")
	}

	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*StatusHistoryEntry)(nil)).
			Where("?TableAlias.contract_id = ?", id).
			Exec(ctx); err != nil {
			return fmt.Errorf("delete contract status history: %w", err)
		}

		res, err := tx.NewDelete().
			Model((*Contract)(nil)).
			Where("?TableAlias.id = ?", id).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("delete contract: %w", err)
		}
		if affected, _ := res.RowsAffected(); affected == 0 {
			return &NotFoundError{Resource: "contract", Key: id.String()}
		}
		return nil
	})
	if err != nil {
		return err
	}
	return r.InvalidateCache(ctx)
}

// InvalidateCache drops cached contract reads. It is a no-op without a cache.
func (r *BunContractRepository) InvalidateCache(ctx context.Context) error {
	if r.cacheService == nil || r.cachePrefix == "" {
		return nil
	}
	return r.cacheService.DeleteByPrefix(ctx, r.cachePrefix)
}

func (r *BunContractRepository) withHistory(ctx context.Context, record *Contract) (*Contract, error) {
	history, err := r.ListHistory(ctx, record.ID)
	if err != nil {
		return nil, err
	}
	out := cloneContract(record)
	out.History = history
	return out, nil
}

func mapRepositoryError(err error, resource, key string) error {
	if err == nil {
		return nil
	}
	if errors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &NotFoundError{Resource: resource, Key: key}
	}
	return fmt.Errorf("%s repository error: %w", resource, err)
}
