package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/portfoy-backend/internal/domain"
)

// assetRepository implements domain.AssetRepository
type assetRepository struct {
	db *DB
}

// NewAssetRepository creates a new asset repository
func NewAssetRepository(db *DB) domain.AssetRepository {
	return &assetRepository{db: db}
}

const assetColumns = `id, name, asset_type, amount, buy_price, target, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAsset(row rowScanner) (*domain.Asset, error) {
	var asset domain.Asset
	var amountStr, buyPriceStr, createdAtStr string
	var targetStr sql.NullString

	if err := row.Scan(
		&asset.ID,
		&asset.Name,
		&asset.Type,
		&amountStr,
		&buyPriceStr,
		&targetStr,
		&createdAtStr,
	); err != nil {
		return nil, err
	}

	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse amount: %w", err)
	}
	asset.Amount = amount

	buyPrice, err := decimal.NewFromString(buyPriceStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse buy_price: %w", err)
	}
	asset.BuyPrice = buyPrice

	// Parse target (nullable)
	if targetStr.Valid {
		target, err := decimal.NewFromString(targetStr.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse target: %w", err)
		}
		asset.Target = &target
	}

	createdAt, err := time.Parse(timeLayout, createdAtStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	asset.CreatedAt = createdAt

	return &asset, nil
}

// GetByID retrieves an asset by its ID
func (r *assetRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Asset, error) {
	query := r.db.rebind(`SELECT ` + assetColumns + ` FROM assets WHERE id = $1`)

	asset, err := scanAsset(r.db.QueryRowContext(ctx, query, id.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("asset %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get asset by ID: %w", err)
	}
	return asset, nil
}

// Create creates a new asset
func (r *assetRepository) Create(ctx context.Context, asset *domain.Asset) error {
	query := r.db.rebind(`
		INSERT INTO assets (` + assetColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`)

	var target interface{}
	if asset.Target != nil {
		target = asset.Target.String()
	}

	_, err := r.db.ExecContext(ctx, query,
		asset.ID.String(),
		asset.Name,
		string(asset.Type),
		asset.Amount.String(),
		asset.BuyPrice.String(),
		target,
		asset.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to create asset: %w", err)
	}

	return nil
}

// UpdateAmount changes the quantity of an asset
func (r *assetRepository) UpdateAmount(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error {
	query := r.db.rebind(`UPDATE assets SET amount = $1 WHERE id = $2`)

	result, err := r.db.ExecContext(ctx, query, amount.String(), id.String())
	if err != nil {
		return fmt.Errorf("failed to update asset amount: %w", err)
	}
	return expectOneRow(result, id)
}

// Delete removes an asset
func (r *assetRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := r.db.rebind(`DELETE FROM assets WHERE id = $1`)

	result, err := r.db.ExecContext(ctx, query, id.String())
	if err != nil {
		return fmt.Errorf("failed to delete asset: %w", err)
	}
	return expectOneRow(result, id)
}

// List retrieves all assets in insertion order
func (r *assetRepository) List(ctx context.Context) ([]*domain.Asset, error) {
	query := `SELECT ` + assetColumns + ` FROM assets ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}
	defer rows.Close()

	assets := make([]*domain.Asset, 0)
	for rows.Next() {
		asset, err := scanAsset(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan asset: %w", err)
		}
		assets = append(assets, asset)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating assets: %w", err)
	}

	return assets, nil
}

func expectOneRow(result sql.Result, id uuid.UUID) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("asset %s: %w", id, domain.ErrNotFound)
	}
	return nil
}
