package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	estatecontracts "github.com/goliatone/go-estate/contracts"
	"github.com/goliatone/go-estate/internal/runtimeconfig"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

var (
	ErrDriverUnsupported = errors.New("storage: unsupported driver")
	ErrDSNRequired       = errors.New("storage: dsn required")
)

const historySequenceIndex = "contract_status_history_contract_sequence_idx"

// Open connects to the configured database and returns a bun handle with the
// matching dialect.
func Open(cfg runtimeconfig.StorageConfig) (*bun.DB, error) {
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		return nil, ErrDSNRequired
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case runtimeconfig.StorageDriverSQLite, "sqlite3":
		sqlDB, err := sql.Open("sqlite3", dsn)
		if err != nil {
			return nil, fmt.Errorf("storage: open sqlite: %w", err)
		}
		db := bun.NewDB(sqlDB, sqlitedialect.New())
		// sqlite allows a single writer.
		db.SetMaxOpenConns(1)
		return db, nil
	case runtimeconfig.StorageDriverPostgres, "postgresql":
		sqlDB, err := sql.Open("postgres", dsn)
		if err != nil {
			return nil, fmt.Errorf("storage: open postgres: %w", err)
		}
		return bun.NewDB(sqlDB, pgdialect.New()), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrDriverUnsupported, cfg.Driver)
	}
}

// Models lists the bun models owned by the module.
func Models() []any {
	return []any{
		(*estatecontracts.Contract)(nil),
		(*estatecontracts.StatusHistoryEntry)(nil),
	}
}

// Migrate creates missing tables and the unique history sequence index. It is
// safe to run repeatedly.
func Migrate(ctx context.Context, db *bun.DB) error {
	for _, model := range Models() {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("storage: create table %T: %w", model, err)
		}
	}
	_, err := db.NewCreateIndex().
		Model((*estatecontracts.StatusHistoryEntry)(nil)).
		Index(historySequenceIndex).
		Column("contract_id", "sequence").
		Unique().
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("storage: create history index: %w", err)
	}
	return nil
}
