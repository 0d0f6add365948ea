package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/simaogato/portfoy-backend/internal/domain"
)

// shareRecord is the msgpack form of one distribution entry.
// Decimals are kept as strings so no precision is lost.
type shareRecord struct {
	Type       string `msgpack:"t"`
	Value      string `msgpack:"v"`
	Percentage string `msgpack:"p"`
}

// snapshotRepository implements domain.SnapshotRepository
type snapshotRepository struct {
	db *DB
}

// NewSnapshotRepository creates a new snapshot repository
func NewSnapshotRepository(db *DB) domain.SnapshotRepository {
	return &snapshotRepository{db: db}
}

// Upsert stores a snapshot, replacing any snapshot of the same day
func (r *snapshotRepository) Upsert(ctx context.Context, snapshot *domain.PortfolioSnapshot) error {
	records := make([]shareRecord, 0, len(snapshot.Distribution))
	for _, share := range snapshot.Distribution {
		records = append(records, shareRecord{
			Type:       string(share.Type),
			Value:      share.Value.String(),
			Percentage: share.Percentage.String(),
		})
	}

	blob, err := msgpack.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to encode distribution: %w", err)
	}

	query := r.db.rebind(`
		INSERT INTO snapshots (snapshot_date, total_value, distribution)
		VALUES ($1, $2, $3)
		ON CONFLICT (snapshot_date) DO UPDATE SET
			total_value = excluded.total_value,
			distribution = excluded.distribution
	`)

	if _, err := r.db.ExecContext(ctx, query, snapshot.Day(), snapshot.TotalValue.String(), blob); err != nil {
		return fmt.Errorf("failed to upsert snapshot: %w", err)
	}
	return nil
}

// List retrieves all snapshots ordered by date
func (r *snapshotRepository) List(ctx context.Context) ([]*domain.PortfolioSnapshot, error) {
	query := `SELECT snapshot_date, total_value, distribution FROM snapshots ORDER BY snapshot_date`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer rows.Close()

	snapshots := make([]*domain.PortfolioSnapshot, 0)
	for rows.Next() {
		var dateStr, totalStr string
		var blob []byte

		if err := rows.Scan(&dateStr, &totalStr, &blob); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}

		snapshot, err := decodeSnapshot(dateStr, totalStr, blob)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, snapshot)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating snapshots: %w", err)
	}

	return snapshots, nil
}

func decodeSnapshot(dateStr, totalStr string, blob []byte) (*domain.PortfolioSnapshot, error) {
	date, err := time.Parse(domain.SnapshotDateLayout, dateStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse snapshot_date: %w", err)
	}

	total, err := decimal.NewFromString(totalStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse total_value: %w", err)
	}

	var records []shareRecord
	if err := msgpack.Unmarshal(blob, &records); err != nil {
		return nil, fmt.Errorf("failed to decode distribution: %w", err)
	}

	distribution := make([]domain.TypeShare, 0, len(records))
	for _, rec := range records {
		value, err := decimal.NewFromString(rec.Value)
		if err != nil {
			return nil, fmt.Errorf("failed to parse share value: %w", err)
		}
		pct, err := decimal.NewFromString(rec.Percentage)
		if err != nil {
			return nil, fmt.Errorf("failed to parse share percentage: %w", err)
		}
		distribution = append(distribution, domain.TypeShare{
			Type:       domain.AssetType(rec.Type),
			Value:      value,
			Percentage: pct,
		})
	}

	return &domain.PortfolioSnapshot{
		Date:         date,
		TotalValue:   total,
		Distribution: distribution,
	}, nil
}
