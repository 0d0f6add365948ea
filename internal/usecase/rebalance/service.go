package rebalance

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/simaogato/portfoy-backend/internal/domain"
	"github.com/simaogato/portfoy-backend/internal/usecase/pricing"
)

// Service runs the engine over the stored portfolio
type Service struct {
	AssetRepo  domain.AssetRepository
	TargetRepo domain.TargetRepository
	Prices     *pricing.PriceService
	Policy     Policy

	log zerolog.Logger
}

// NewRebalanceService creates a new Service instance
func NewRebalanceService(
	assetRepo domain.AssetRepository,
	targetRepo domain.TargetRepository,
	prices *pricing.PriceService,
	policy Policy,
	log zerolog.Logger,
) *Service {
	return &Service{
		AssetRepo:  assetRepo,
		TargetRepo: targetRepo,
		Prices:     prices,
		Policy:     policy,
		log:        log.With().Str("service", "rebalance").Logger(),
	}
}

// Rebalance values the stored holdings and compares them with the stored targets
func (s *Service) Rebalance(ctx context.Context) (*domain.RebalanceReport, error) {
	targets, err := s.TargetRepo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load targets: %w", err)
	}
	return s.run(ctx, targets)
}

// PreviewProfile rebalances the stored holdings against a risk profile
// without saving the profile's targets
func (s *Service) PreviewProfile(ctx context.Context, profile domain.RiskProfile) (*domain.RebalanceReport, error) {
	targets, err := s.TargetRepo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load targets: %w", err)
	}
	return s.run(ctx, profile.ApplyTo(targets))
}

// Preview runs the engine on caller-supplied data. Nothing is loaded or stored.
func (s *Service) Preview(assets []domain.Asset, targets domain.TargetAllocation) (*domain.RebalanceReport, error) {
	return CalculateRebalance(assets, targets, s.Policy)
}

func (s *Service) run(ctx context.Context, targets domain.TargetAllocation) (*domain.RebalanceReport, error) {
	stored, err := s.AssetRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}

	assets, err := s.Prices.ResolveAll(ctx, stored)
	if err != nil {
		return nil, err
	}

	report, err := CalculateRebalance(assets, targets, s.Policy)
	if err != nil {
		var cfgErr *domain.ConfigurationError
		if errors.As(err, &cfgErr) {
			s.log.Warn().Str("asset_type", string(cfgErr.Type)).Msg("Rebalance blocked by missing target")
		}
		return nil, err
	}

	s.log.Debug().
		Str("total_value", report.TotalValue.String()).
		Int("assets", len(report.PerAsset)).
		Int("types", len(report.PerType)).
		Msg("Rebalance computed")

	return report, nil
}
