package snapshot

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/simaogato/portfoy-backend/internal/domain"
	"github.com/simaogato/portfoy-backend/internal/usecase/dashboard"
	"github.com/simaogato/portfoy-backend/internal/usecase/pricing"
)

// ErrSnapshotSkipped is returned when the portfolio cannot be valued reliably
var ErrSnapshotSkipped = errors.New("snapshot skipped")

// SnapshotService records the daily portfolio history
type SnapshotService struct {
	AssetRepo    domain.AssetRepository
	SnapshotRepo domain.SnapshotRepository
	Prices       *pricing.PriceService

	// VolatileThreshold is the daily move, in percent, reported as volatile by Analyze
	VolatileThreshold decimal.Decimal
}

// NewSnapshotService creates a new SnapshotService instance
func NewSnapshotService(
	assetRepo domain.AssetRepository,
	snapshotRepo domain.SnapshotRepository,
	prices *pricing.PriceService,
) *SnapshotService {
	return &SnapshotService{
		AssetRepo:    assetRepo,
		SnapshotRepo: snapshotRepo,
		Prices:       prices,

		VolatileThreshold: decimal.NewFromInt(DefaultVolatileThreshold),
	}
}

// Record stores the portfolio value for the calendar day of day.
// Recording the same day twice replaces the earlier snapshot.
// A portfolio without open positions, or with any open position that has no
// usable price, is not recorded and ErrSnapshotSkipped is returned.
func (s *SnapshotService) Record(ctx context.Context, day time.Time) (*domain.PortfolioSnapshot, error) {
	stored, err := s.AssetRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}

	assets, err := s.Prices.ResolveAll(ctx, stored)
	if err != nil {
		return nil, err
	}

	open := 0
	for i := range assets {
		if !assets[i].IsEligible() {
			continue
		}
		open++
		if !assets[i].Price.IsPositive() {
			return nil, fmt.Errorf("%w: no price for %s", ErrSnapshotSkipped, assets[i].Name)
		}
	}
	if open == 0 {
		return nil, fmt.Errorf("%w: no open positions", ErrSnapshotSkipped)
	}

	total, shares := dashboard.Distribute(assets)
	snapshot := &domain.PortfolioSnapshot{
		Date:         truncateToDay(day),
		TotalValue:   total,
		Distribution: shares,
	}

	if err := s.SnapshotRepo.Upsert(ctx, snapshot); err != nil {
		return nil, err
	}
	return snapshot, nil
}

// History returns every snapshot, oldest first
func (s *SnapshotService) History(ctx context.Context) ([]*domain.PortfolioSnapshot, error) {
	snapshots, err := s.SnapshotRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}

	sort.SliceStable(snapshots, func(i, j int) bool {
		return snapshots[i].Date.Before(snapshots[j].Date)
	})
	return snapshots, nil
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
