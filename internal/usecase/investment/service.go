package investment

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/portfoy-backend/internal/domain"
	"github.com/simaogato/portfoy-backend/internal/usecase/pricing"
)

var hundred = decimal.NewFromInt(100)

// Profit is the unrealized result of one holding
type Profit struct {
	AssetID     uuid.UUID       `json:"asset_id"`
	CostBasis   decimal.Decimal `json:"cost_basis"`   // BuyPrice × Amount
	MarketValue decimal.Decimal `json:"market_value"` // Resolved price × Amount
	Profit      decimal.Decimal `json:"profit"`
	Percentage  decimal.Decimal `json:"percentage"` // Profit over cost basis, percent
}

// InvestmentService handles investment-related operations
type InvestmentService struct {
	AssetRepo domain.AssetRepository
	Prices    *pricing.PriceService
}

// NewInvestmentService creates a new InvestmentService instance
func NewInvestmentService(assetRepo domain.AssetRepository, prices *pricing.PriceService) *InvestmentService {
	return &InvestmentService{
		AssetRepo: assetRepo,
		Prices:    prices,
	}
}

// UpdateMarketPrice records a manual market price for a holding
// Logic: The price is stored under the holding's price key, so every holding
// sharing the key is revalued. Amounts and buy prices are not touched.
func (s *InvestmentService) UpdateMarketPrice(ctx context.Context, assetID uuid.UUID, price decimal.Decimal) (*domain.PriceQuote, error) {
	// Validate price is positive
	if price.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: market price must be positive", domain.ErrInvalidArgument)
	}

	// Verify asset exists
	asset, err := s.AssetRepo.GetByID(ctx, assetID)
	if err != nil {
		return nil, err
	}

	return s.Prices.SetManualPrice(ctx, asset.PriceKey(), price)
}

// CalculateProfit calculates the profit/loss for a holding
// Logic: Profit = (Price - BuyPrice) × Amount
// Price = resolved market price (manual, cached, then buy price)
// Percentage = Profit / (BuyPrice × Amount) × 100, zero without a buy price
func (s *InvestmentService) CalculateProfit(ctx context.Context, assetID uuid.UUID) (*Profit, error) {
	asset, err := s.AssetRepo.GetByID(ctx, assetID)
	if err != nil {
		return nil, err
	}

	book, err := s.Prices.Book(ctx)
	if err != nil {
		return nil, err
	}
	price := book.Resolve(asset)

	result := &Profit{
		AssetID:     asset.ID,
		CostBasis:   asset.BuyPrice.Mul(asset.Amount),
		MarketValue: price.Mul(asset.Amount),
		Profit:      decimal.Zero,
		Percentage:  decimal.Zero,
	}

	// Without any price there is nothing to compare against (safe default)
	if price.IsZero() || asset.BuyPrice.IsZero() {
		return result, nil
	}

	result.Profit = result.MarketValue.Sub(result.CostBasis)
	if result.CostBasis.IsPositive() {
		result.Percentage = result.Profit.Mul(hundred).Div(result.CostBasis)
	}
	return result, nil
}
