package targets

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/simaogato/portfoy-backend/internal/domain"
)

// TargetService manages the target allocation, which doubles as the asset type registry
type TargetService struct {
	TargetRepo domain.TargetRepository
	AssetRepo  domain.AssetRepository
}

// NewTargetService creates a new TargetService instance
func NewTargetService(targetRepo domain.TargetRepository, assetRepo domain.AssetRepository) *TargetService {
	return &TargetService{
		TargetRepo: targetRepo,
		AssetRepo:  assetRepo,
	}
}

// GetTargets returns the configured allocation in configuration order
func (s *TargetService) GetTargets(ctx context.Context) (domain.TargetAllocation, error) {
	targets, err := s.TargetRepo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load targets: %w", err)
	}
	return targets, nil
}

// SetTarget sets the target of one type, registering the type if it is new
func (s *TargetService) SetTarget(ctx context.Context, assetType domain.AssetType, pct decimal.Decimal) (domain.TargetAllocation, error) {
	if assetType == "" {
		return nil, fmt.Errorf("%w: asset type cannot be empty", domain.ErrInvalidArgument)
	}

	current, err := s.GetTargets(ctx)
	if err != nil {
		return nil, err
	}

	updated := current.With(assetType, pct)
	if err := updated.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err)
	}

	if err := s.TargetRepo.Save(ctx, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// RemoveTarget unregisters a type.
// A type still held by an open position cannot be removed, otherwise the
// rebalance engine would reject the portfolio.
func (s *TargetService) RemoveTarget(ctx context.Context, assetType domain.AssetType) (domain.TargetAllocation, error) {
	current, err := s.GetTargets(ctx)
	if err != nil {
		return nil, err
	}
	if !current.Has(assetType) {
		return nil, fmt.Errorf("target for %q: %w", assetType, domain.ErrNotFound)
	}

	assets, err := s.AssetRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}
	for _, asset := range assets {
		if asset.Type == assetType && asset.IsEligible() {
			return nil, fmt.Errorf("%w: asset type %q is still held by %s", domain.ErrInvalidArgument, assetType, asset.Name)
		}
	}

	updated := make(domain.TargetAllocation, 0, len(current))
	for _, tt := range current {
		if tt.Type != assetType {
			updated = append(updated, tt)
		}
	}

	if err := s.TargetRepo.Save(ctx, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// ApplyRiskProfile replaces the targets with a preset profile
func (s *TargetService) ApplyRiskProfile(ctx context.Context, profile domain.RiskProfile) (domain.TargetAllocation, error) {
	current, err := s.GetTargets(ctx)
	if err != nil {
		return nil, err
	}

	updated := profile.ApplyTo(current)
	if err := s.TargetRepo.Save(ctx, updated); err != nil {
		return nil, err
	}
	return updated, nil
}
