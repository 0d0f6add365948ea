package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/simaogato/portfoy-backend/internal/domain"
)

// priceRepository implements domain.PriceRepository
type priceRepository struct {
	db *DB
}

// NewPriceRepository creates a new price repository
func NewPriceRepository(db *DB) domain.PriceRepository {
	return &priceRepository{db: db}
}

// Upsert stores a quote, replacing the previous one for the same key and source
func (r *priceRepository) Upsert(ctx context.Context, quote *domain.PriceQuote) error {
	query := r.db.rebind(`
		INSERT INTO prices (price_key, source, price, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (price_key, source) DO UPDATE SET
			price = excluded.price,
			updated_at = excluded.updated_at
	`)

	_, err := r.db.ExecContext(ctx, query,
		quote.Key,
		string(quote.Source),
		quote.Price.String(),
		quote.UpdatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert price: %w", err)
	}
	return nil
}

// Delete removes a quote. Deleting a missing quote is not an error.
func (r *priceRepository) Delete(ctx context.Context, key string, source domain.PriceSource) error {
	query := r.db.rebind(`DELETE FROM prices WHERE price_key = $1 AND source = $2`)

	if _, err := r.db.ExecContext(ctx, query, key, string(source)); err != nil {
		return fmt.Errorf("failed to delete price: %w", err)
	}
	return nil
}

// List retrieves every stored quote
func (r *priceRepository) List(ctx context.Context) ([]*domain.PriceQuote, error) {
	query := `SELECT price_key, source, price, updated_at FROM prices ORDER BY price_key, source`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list prices: %w", err)
	}
	defer rows.Close()

	quotes := make([]*domain.PriceQuote, 0)
	for rows.Next() {
		var q domain.PriceQuote
		var priceStr, updatedAtStr string

		if err := rows.Scan(&q.Key, &q.Source, &priceStr, &updatedAtStr); err != nil {
			return nil, fmt.Errorf("failed to scan price: %w", err)
		}

		price, err := decimal.NewFromString(priceStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse price: %w", err)
		}
		q.Price = price

		updatedAt, err := time.Parse(timeLayout, updatedAtStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse updated_at: %w", err)
		}
		q.UpdatedAt = updatedAt

		quotes = append(quotes, &q)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating prices: %w", err)
	}

	return quotes, nil
}
