package core

import (
	"context"
	"fmt"
	"strings"

	"loanlocator/internal/infra/persistence/memory"
	"loanlocator/internal/infra/persistence/mongo"
	"loanlocator/internal/infra/persistence/postgres"
	"loanlocator/internal/infra/persistence/sqlite"
	"loanlocator/pkg/domain"
)

// StorageDriver identifies a concrete reference store implementation.
type StorageDriver string

const (
	StorageMemory   StorageDriver = "memory"   // in-memory only (tests / ephemeral)
	StorageSQLite   StorageDriver = "sqlite"   // embedded sqlite file
	StoragePostgres StorageDriver = "postgres" // PostgreSQL server
	StorageMongo    StorageDriver = "mongo"    // MongoDB document store
)

// StorageOptions carries the connection settings of every driver.
type StorageOptions struct {
	Driver        string
	SQLitePath    string
	PostgresDSN   string
	MongoURI      string
	MongoDatabase string
}

// OpenReferenceStore constructs the store named by opts.Driver, defaulting to sqlite.
// Stores holding connections also implement io.Closer.
func OpenReferenceStore(ctx context.Context, opts StorageOptions) (domain.ReferenceStore, error) {
	driver := StorageDriver(strings.ToLower(strings.TrimSpace(opts.Driver)))
	if driver == "" {
		driver = StorageSQLite
	}
	switch driver {
	case StorageMemory:
		return memory.NewStore(), nil
	case StorageSQLite:
		store, err := sqlite.NewStore(ctx, opts.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return store, nil
	case StoragePostgres:
		store, err := postgres.NewStore(ctx, opts.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres store: %w", err)
		}
		return store, nil
	case StorageMongo:
		store, err := mongo.NewStore(ctx, opts.MongoURI, opts.MongoDatabase)
		if err != nil {
			return nil, fmt.Errorf("open mongo store: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %s", opts.Driver)
	}
}
