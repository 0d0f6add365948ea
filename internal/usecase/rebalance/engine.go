package rebalance

import (
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/portfoy-backend/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// Policy holds the tunable constants of the engine
type Policy struct {
	// DeadBand is the neutral zone, in percentage points, inside which no action is signaled.
	// The boundary itself is a hold.
	DeadBand decimal.Decimal
}

// DefaultPolicy returns the dashboard's historical ±2 point dead-band
func DefaultPolicy() Policy {
	return Policy{DeadBand: decimal.NewFromInt(2)}
}

// Validate ensures the policy is usable
func (p Policy) Validate() error {
	if p.DeadBand.LessThan(decimal.Zero) {
		return errors.New("dead-band cannot be negative")
	}
	return nil
}

// ComputeRebalance runs CalculateRebalance with the default policy
func ComputeRebalance(assets []domain.Asset, targets domain.TargetAllocation) (*domain.RebalanceReport, error) {
	return CalculateRebalance(assets, targets, DefaultPolicy())
}

// CalculateRebalance derives per-asset and per-type rebalance rows from a holdings snapshot
// Logic:
//  1. Keep assets with amount > 0 (input order is preserved)
//  2. Total value = Σ amount × price, negative prices count as 0
//  3. Sum value per type; type share = 100 × typeValue / total
//  4. Asset target = typeTarget × assetShare / typeShare (0 when the type holds nothing)
//  5. Asset drift = share - target, trade amount = total × drift / 100
//  6. Type drift = typeShare - typeTarget, one row per configured type
//  7. Drift beyond ±DeadBand signals SAT/AL, anything else is TUT
//
// A zero total yields zero percentages and trade amounts, never NaN.
// An eligible asset whose type has no target fails with *domain.ConfigurationError.
// Inputs are never mutated.
func CalculateRebalance(assets []domain.Asset, targets domain.TargetAllocation, policy Policy) (*domain.RebalanceReport, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}

	// First entry wins for duplicated types, matching TargetAllocation.Lookup
	typeTargets := make(map[domain.AssetType]decimal.Decimal, len(targets))
	for _, tt := range targets {
		if _, ok := typeTargets[tt.Type]; !ok {
			typeTargets[tt.Type] = tt.Target
		}
	}

	// Step 1: Check configuration before any arithmetic
	for _, asset := range assets {
		if !asset.IsEligible() {
			continue
		}
		if _, ok := typeTargets[asset.Type]; !ok {
			return nil, &domain.ConfigurationError{Type: asset.Type}
		}
	}

	// Step 2 and 3: Total and per-type values in a single pass
	totals := SumByType(assets)
	totalValue := totals.Total

	// Step 4 and 5: Per-asset rows
	perAsset := make([]domain.RebalanceRow, 0, len(totals.Eligible))
	for i, asset := range totals.Eligible {
		typeValue := totals.ByType[asset.Type]
		currentPct := totals.Share(totals.Values[i])

		// assetShare / typeShare reduces to value / typeValue, which avoids rounding twice
		targetPct := decimal.Zero
		if typeValue.GreaterThan(decimal.Zero) {
			targetPct = typeTargets[asset.Type].Mul(totals.Values[i]).Div(typeValue)
		}

		id := asset.ID
		perAsset = append(perAsset, newRow(&id, asset.Name, asset.Type, totals.Values[i], currentPct, targetPct, totalValue, policy))
	}

	// Step 6: Per-type rows, one per configured type even when nothing is held
	perType := make([]domain.RebalanceRow, 0, len(typeTargets))
	emitted := make(map[domain.AssetType]bool, len(typeTargets))
	for _, tt := range targets {
		if emitted[tt.Type] {
			continue
		}
		emitted[tt.Type] = true

		typeValue := totals.ByType[tt.Type]
		perType = append(perType, newRow(nil, string(tt.Type), tt.Type, typeValue, totals.Share(typeValue), tt.Target, totalValue, policy))
	}

	return &domain.RebalanceReport{
		TotalValue: totalValue,
		PerAsset:   perAsset,
		PerType:    perType,
	}, nil
}

// newRow fills in drift, trade amount and action for one row
func newRow(
	assetID *uuid.UUID,
	name string,
	assetType domain.AssetType,
	currentValue, currentPct, targetPct, totalValue decimal.Decimal,
	policy Policy,
) domain.RebalanceRow {
	difference := currentPct.Sub(targetPct)

	tradeAmount := decimal.Zero
	if !totalValue.IsZero() {
		tradeAmount = totalValue.Mul(difference).Div(hundred)
	}

	return domain.RebalanceRow{
		AssetID:           assetID,
		Name:              name,
		Type:              assetType,
		CurrentValue:      currentValue,
		CurrentPercentage: currentPct,
		TargetPercentage:  targetPct,
		Difference:        difference,
		TradeAmount:       tradeAmount,
		Action:            Classify(difference, policy.DeadBand),
	}
}

// Classify maps a drift in percentage points to an action.
// Only drift strictly beyond the dead-band triggers a trade.
func Classify(difference, deadBand decimal.Decimal) domain.Action {
	action := domain.Action{
		Kind:    domain.ActionHold,
		Percent: difference.Abs().Round(2),
	}

	switch {
	case difference.GreaterThan(deadBand):
		action.Kind = domain.ActionSell
	case difference.LessThan(deadBand.Neg()):
		action.Kind = domain.ActionBuy
	}

	return action
}
