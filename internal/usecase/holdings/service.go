package holdings

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/portfoy-backend/internal/domain"
)

// AddAssetInput represents the input for recording a new holding
type AddAssetInput struct {
	Name     string
	Type     domain.AssetType
	Amount   decimal.Decimal
	BuyPrice decimal.Decimal
	Target   *decimal.Decimal // Optional display target, defaults to the type target
}

// HoldingService handles the holdings store
type HoldingService struct {
	AssetRepo  domain.AssetRepository
	TargetRepo domain.TargetRepository
}

// NewHoldingService creates a new HoldingService instance
func NewHoldingService(assetRepo domain.AssetRepository, targetRepo domain.TargetRepository) *HoldingService {
	return &HoldingService{
		AssetRepo:  assetRepo,
		TargetRepo: targetRepo,
	}
}

// AddAsset records a new holding
// Logic:
//  1. Name, amount and buy price are required; amount and buy price must be positive
//  2. The type must be registered in the target allocation, so a holding can
//     never reach the rebalance engine with an unconfigured type
//  3. A missing display target defaults to the type target
func (s *HoldingService) AddAsset(ctx context.Context, input AddAssetInput) (*domain.Asset, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: asset name cannot be empty", domain.ErrInvalidArgument)
	}
	if input.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: asset amount must be positive", domain.ErrInvalidArgument)
	}
	if input.BuyPrice.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: asset price must be positive", domain.ErrInvalidArgument)
	}

	targets, err := s.TargetRepo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load targets: %w", err)
	}

	typeTarget, ok := targets.Lookup(input.Type)
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownAssetType, input.Type)
	}

	target := input.Target
	if target == nil {
		target = &typeTarget
	}

	asset := &domain.Asset{
		ID:        uuid.New(),
		Name:      name,
		Type:      input.Type,
		Amount:    input.Amount,
		BuyPrice:  input.BuyPrice,
		Target:    target,
		CreatedAt: time.Now().UTC(),
	}

	if err := asset.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err)
	}

	if err := s.AssetRepo.Create(ctx, asset); err != nil {
		return nil, err
	}

	return asset, nil
}

// RemoveAsset deletes a holding
func (s *HoldingService) RemoveAsset(ctx context.Context, id uuid.UUID) error {
	// Verify asset exists so callers get a not-found error rather than a silent no-op
	if _, err := s.AssetRepo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.AssetRepo.Delete(ctx, id)
}

// UpdateAmount changes the quantity held. Zero closes the position.
func (s *HoldingService) UpdateAmount(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (*domain.Asset, error) {
	if amount.LessThan(decimal.Zero) {
		return nil, fmt.Errorf("%w: asset amount cannot be negative", domain.ErrInvalidArgument)
	}

	asset, err := s.AssetRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.AssetRepo.UpdateAmount(ctx, id, amount); err != nil {
		return nil, err
	}

	asset.Amount = amount
	return asset, nil
}

// ListAssets returns every stored holding, closed positions included
func (s *HoldingService) ListAssets(ctx context.Context) ([]*domain.Asset, error) {
	return s.AssetRepo.List(ctx)
}
