package dashboard

import (
	"context"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/floats"

	"github.com/simaogato/portfoy-backend/internal/domain"
	"github.com/simaogato/portfoy-backend/internal/usecase/pricing"
	"github.com/simaogato/portfoy-backend/internal/usecase/rebalance"
)

var hundred = decimal.NewFromInt(100)

// DefaultRiskWeight applies to types without a configured weight
const DefaultRiskWeight = 5.0

// DefaultRiskWeights returns the 1 (safest) to 10 risk weight of each known type
func DefaultRiskWeights() map[domain.AssetType]float64 {
	return map[domain.AssetType]float64{
		domain.AssetTypeEquity:   8,
		domain.AssetTypeCrypto:   9,
		domain.AssetTypeUSD:      2,
		domain.AssetTypeGold:     4,
		domain.AssetTypeFund:     6,
		domain.AssetTypeEurobond: 3,
		domain.AssetTypeCurrency: 2,
		domain.AssetTypeCash:     1,
	}
}

// TypeAllocation is one row of the dashboard distribution
type TypeAllocation struct {
	domain.TypeShare
	Target     decimal.Decimal `json:"target"`
	RiskWeight float64         `json:"risk_weight"`
}

// Summary represents the portfolio overview
type Summary struct {
	TotalValue   decimal.Decimal  `json:"total_value"`
	AssetCount   int              `json:"asset_count"` // Open positions only
	Distribution []TypeAllocation `json:"distribution"`
	RiskScore    float64          `json:"risk_score"` // Value-weighted risk, one decimal
}

// Share returns the percentage held in a type, zero when absent
func (s *Summary) Share(t domain.AssetType) decimal.Decimal {
	for _, row := range s.Distribution {
		if row.Type == t {
			return row.Percentage
		}
	}
	return decimal.Zero
}

// DashboardService handles dashboard-related operations
type DashboardService struct {
	AssetRepo   domain.AssetRepository
	TargetRepo  domain.TargetRepository
	Prices      *pricing.PriceService
	RiskWeights map[domain.AssetType]float64
}

// NewDashboardService creates a new DashboardService instance
func NewDashboardService(
	assetRepo domain.AssetRepository,
	targetRepo domain.TargetRepository,
	prices *pricing.PriceService,
) *DashboardService {
	return &DashboardService{
		AssetRepo:   assetRepo,
		TargetRepo:  targetRepo,
		Prices:      prices,
		RiskWeights: DefaultRiskWeights(),
	}
}

// GetSummary calculates the portfolio overview
// Logic:
//   - Total: Σ amount × resolved price over open positions
//   - Distribution: value and share per type, in order of first appearance
//   - Target: the configured type target, 0 for unregistered types
//   - RiskScore: Σ share × weight, on the same 1 to 10 scale as the weights
func (s *DashboardService) GetSummary(ctx context.Context) (*Summary, error) {
	stored, err := s.AssetRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}

	assets, err := s.Prices.ResolveAll(ctx, stored)
	if err != nil {
		return nil, err
	}

	targets, err := s.TargetRepo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load targets: %w", err)
	}

	total, shares := Distribute(assets)

	summary := &Summary{
		TotalValue:   total,
		Distribution: make([]TypeAllocation, 0, len(shares)),
	}
	for i := range assets {
		if assets[i].IsEligible() {
			summary.AssetCount++
		}
	}

	weights := make([]float64, 0, len(shares))
	risks := make([]float64, 0, len(shares))
	for _, share := range shares {
		target, _ := targets.Lookup(share.Type)
		risk := s.riskWeight(share.Type)

		summary.Distribution = append(summary.Distribution, TypeAllocation{
			TypeShare:  share,
			Target:     target,
			RiskWeight: risk,
		})

		weights = append(weights, share.Percentage.Div(hundred).InexactFloat64())
		risks = append(risks, risk)
	}

	if total.IsPositive() {
		summary.RiskScore = math.Round(floats.Dot(weights, risks)*10) / 10
	}

	return summary, nil
}

func (s *DashboardService) riskWeight(t domain.AssetType) float64 {
	if w, ok := s.RiskWeights[t]; ok {
		return w
	}
	return DefaultRiskWeight
}

// Distribute sums the value of the open positions per type.
// Types appear in the order they are first held; the percentages of a
// zero-value portfolio are all zero.
func Distribute(assets []domain.Asset) (decimal.Decimal, []domain.TypeShare) {
	totals := rebalance.SumByType(assets)

	shares := make([]domain.TypeShare, 0, len(totals.Types))
	for _, t := range totals.Types {
		value := totals.ByType[t]
		shares = append(shares, domain.TypeShare{
			Type:       t,
			Value:      value,
			Percentage: totals.Share(value),
		})
	}
	return totals.Total, shares
}
