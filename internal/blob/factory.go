package blob

import (
	"context"
	"fmt"
	"strings"

	"loanlocator/internal/infra/blob/fs"
	memorystore "loanlocator/internal/infra/blob/memory"
	infraS3 "loanlocator/internal/infra/blob/s3"
)

// S3Config re-exports the infra S3 configuration type.
type S3Config = infraS3.Config

// Config selects and parameterizes a backend.
type Config struct {
	Driver string
	FSRoot string
	S3     S3Config
}

// Open constructs the Store named by cfg.Driver (fs when empty).
func Open(ctx context.Context, cfg Config) (Store, error) {
	driver := Driver(strings.ToLower(strings.TrimSpace(cfg.Driver)))
	if driver == "" {
		driver = DriverFilesystem
	}
	switch driver {
	case DriverFilesystem:
		return NewFilesystem(cfg.FSRoot)
	case DriverS3:
		return NewS3(ctx, cfg.S3)
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown blob driver %s", cfg.Driver)
	}
}

// NewMemory returns an in-memory blob.Store.
func NewMemory() Store { return memorystore.New() }

// NewFilesystem constructs a filesystem-backed blob.Store rooted at root.
func NewFilesystem(root string) (Store, error) {
	store, err := fs.New(root)
	if err != nil {
		return nil, err
	}
	return store, nil
}

// NewS3 constructs an S3-backed blob.Store from cfg.
func NewS3(ctx context.Context, cfg S3Config) (Store, error) {
	store, err := infraS3.New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return store, nil
}

// NewMockS3ForTests exposes the fake-transport S3 store for cross-package tests.
func NewMockS3ForTests() Store { return infraS3.NewMockForTests() }
