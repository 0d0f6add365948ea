package sqlstore

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/simaogato/portfoy-backend/internal/domain"
)

// targetRepository implements domain.TargetRepository
type targetRepository struct {
	db *DB
}

// NewTargetRepository creates a new target repository
func NewTargetRepository(db *DB) domain.TargetRepository {
	return &targetRepository{db: db}
}

// Get retrieves the allocation in configuration order.
// An unconfigured store yields an empty allocation.
func (r *targetRepository) Get(ctx context.Context) (domain.TargetAllocation, error) {
	query := `SELECT asset_type, target FROM targets ORDER BY position`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list targets: %w", err)
	}
	defer rows.Close()

	targets := make(domain.TargetAllocation, 0)
	for rows.Next() {
		var tt domain.TypeTarget
		var targetStr string

		if err := rows.Scan(&tt.Type, &targetStr); err != nil {
			return nil, fmt.Errorf("failed to scan target: %w", err)
		}

		target, err := decimal.NewFromString(targetStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse target: %w", err)
		}
		tt.Target = target

		targets = append(targets, tt)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating targets: %w", err)
	}

	return targets, nil
}

// Save replaces the whole allocation within a transaction
func (r *targetRepository) Save(ctx context.Context, targets domain.TargetAllocation) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM targets`); err != nil {
		return fmt.Errorf("failed to clear targets: %w", err)
	}

	insert := r.db.rebind(`INSERT INTO targets (asset_type, target, position) VALUES ($1, $2, $3)`)
	for i, tt := range targets {
		if _, err := tx.ExecContext(ctx, insert, string(tt.Type), tt.Target.String(), i); err != nil {
			return fmt.Errorf("failed to insert target %q: %w", tt.Type, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit targets: %w", err)
	}
	return nil
}
