package domain

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AssetRepository defines the interface for holding persistence operations
type AssetRepository interface {
	// GetByID retrieves an asset by its ID
	GetByID(ctx context.Context, id uuid.UUID) (*Asset, error)

	// Create stores a new asset
	Create(ctx context.Context, asset *Asset) error

	// UpdateAmount changes the quantity held
	UpdateAmount(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error

	// Delete removes an asset
	Delete(ctx context.Context, id uuid.UUID) error

	// List returns all assets in creation order
	List(ctx context.Context) ([]*Asset, error)
}

// TargetRepository defines the interface for target allocation persistence
type TargetRepository interface {
	// Get returns the stored allocation in configuration order.
	// An empty allocation means nothing has been configured yet.
	Get(ctx context.Context) (TargetAllocation, error)

	// Save replaces the stored allocation
	Save(ctx context.Context, targets TargetAllocation) error
}

// PriceRepository defines the interface for price quote persistence
type PriceRepository interface {
	// Upsert stores a quote, replacing any quote with the same key and source
	Upsert(ctx context.Context, quote *PriceQuote) error

	// Delete removes the quote with the given key and source
	Delete(ctx context.Context, key string, source PriceSource) error

	// List returns every stored quote
	List(ctx context.Context) ([]*PriceQuote, error)
}

// SnapshotRepository defines the interface for portfolio history persistence
type SnapshotRepository interface {
	// Upsert stores the snapshot, replacing the one for the same day
	Upsert(ctx context.Context, snapshot *PortfolioSnapshot) error

	// List returns all snapshots ordered by date
	List(ctx context.Context) ([]*PortfolioSnapshot, error)
}
