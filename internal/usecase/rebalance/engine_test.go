package rebalance

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/portfoy-backend/internal/domain"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newAsset(name string, assetType domain.AssetType, amount, price string) domain.Asset {
	return domain.Asset{
		ID:     uuid.New(),
		Name:   name,
		Type:   assetType,
		Amount: dec(amount),
		Price:  dec(price),
	}
}

func findType(t *testing.T, rows []domain.RebalanceRow, assetType domain.AssetType) domain.RebalanceRow {
	t.Helper()
	for _, row := range rows {
		if row.Type == assetType {
			return row
		}
	}
	t.Fatalf("no per-type row for %s", assetType)
	return domain.RebalanceRow{}
}

func TestCalculateRebalance_BalancedTwoTypeScenario(t *testing.T) {
	// Hisse 50% / USD 50%, each holding worth 1000
	a := newAsset("THYAO", domain.AssetTypeEquity, "10", "100")
	b := newAsset("USD", domain.AssetTypeUSD, "20", "50")
	targets := domain.TargetAllocation{
		{Type: domain.AssetTypeEquity, Target: dec("50")},
		{Type: domain.AssetTypeUSD, Target: dec("50")},
	}

	report, err := ComputeRebalance([]domain.Asset{a, b}, targets)

	require.NoError(t, err)
	assert.True(t, report.TotalValue.Equal(dec("2000")))
	require.Len(t, report.PerAsset, 2)
	require.Len(t, report.PerType, 2)

	rowA := report.PerAsset[0]
	assert.Equal(t, a.ID, *rowA.AssetID)
	assert.True(t, rowA.CurrentPercentage.Equal(dec("50")), "A should hold 50%%")
	assert.True(t, rowA.TargetPercentage.Equal(dec("50")), "A is the only equity so it carries the whole type target")
	assert.True(t, rowA.Difference.IsZero())
	assert.Equal(t, domain.ActionHold, rowA.Action.Kind)

	for _, row := range report.PerType {
		assert.True(t, row.CurrentPercentage.Equal(dec("50")))
		assert.True(t, row.Difference.IsZero())
		assert.True(t, row.TradeAmount.IsZero())
		assert.Equal(t, "TUT", row.Action.Label())
	}
}

func TestCalculateRebalance_UnequalSplitWithinType(t *testing.T) {
	// Kripto target 20%, X=300 and Y=700 are the whole portfolio
	x := newAsset("BTC", domain.AssetTypeCrypto, "1", "300")
	y := newAsset("ETH", domain.AssetTypeCrypto, "7", "100")
	targets := domain.TargetAllocation{
		{Type: domain.AssetTypeCrypto, Target: dec("20")},
	}

	report, err := ComputeRebalance([]domain.Asset{x, y}, targets)

	require.NoError(t, err)
	require.Len(t, report.PerAsset, 2)

	rowX, rowY := report.PerAsset[0], report.PerAsset[1]

	assert.True(t, rowX.CurrentPercentage.Equal(dec("30")))
	assert.True(t, rowX.TargetPercentage.Equal(dec("6")), "20 × 30/100 = 6")
	assert.True(t, rowX.Difference.Equal(dec("24")))
	assert.True(t, rowX.TradeAmount.Equal(dec("240")))
	assert.Equal(t, domain.ActionSell, rowX.Action.Kind)
	assert.Equal(t, "%24.00 azalt (SAT)", rowX.Action.Label())

	assert.True(t, rowY.CurrentPercentage.Equal(dec("70")))
	assert.True(t, rowY.TargetPercentage.Equal(dec("14")), "20 × 70/100 = 14")
	assert.True(t, rowY.Difference.Equal(dec("56")))
	assert.Equal(t, "%56.00 azalt (SAT)", rowY.Action.Label())

	kripto := findType(t, report.PerType, domain.AssetTypeCrypto)
	assert.True(t, kripto.CurrentPercentage.Equal(dec("100")))
	assert.True(t, kripto.Difference.Equal(dec("80")))
	assert.True(t, kripto.TradeAmount.Equal(dec("800")))
}

func TestCalculateRebalance_ConfiguredTypeWithoutHoldings(t *testing.T) {
	equity := newAsset("ASELS", domain.AssetTypeEquity, "50", "100") // 5000
	targets := domain.TargetAllocation{
		{Type: domain.AssetTypeEquity, Target: dec("85")},
		{Type: domain.AssetTypeEurobond, Target: dec("15")},
	}

	report, err := ComputeRebalance([]domain.Asset{equity}, targets)

	require.NoError(t, err)
	assert.True(t, report.TotalValue.Equal(dec("5000")))

	eurobond := findType(t, report.PerType, domain.AssetTypeEurobond)
	assert.True(t, eurobond.CurrentValue.IsZero())
	assert.True(t, eurobond.CurrentPercentage.IsZero())
	assert.True(t, eurobond.Difference.Equal(dec("-15")))
	assert.True(t, eurobond.TradeAmount.Equal(dec("-750")))
	assert.Equal(t, domain.ActionBuy, eurobond.Action.Kind)
	assert.Equal(t, "%15.00 artır (AL)", eurobond.Action.Label())
	assert.Nil(t, eurobond.AssetID)
}

func TestCalculateRebalance_EmptyPortfolio(t *testing.T) {
	targets := domain.DefaultTargets()

	report, err := ComputeRebalance(nil, targets)

	require.NoError(t, err)
	assert.Empty(t, report.PerAsset)
	assert.True(t, report.TotalValue.IsZero())
	require.Len(t, report.PerType, len(targets))

	for i, row := range report.PerType {
		assert.Equal(t, targets[i].Type, row.Type, "per-type rows follow target order")
		assert.True(t, row.CurrentPercentage.IsZero())
		assert.True(t, row.Difference.Equal(targets[i].Target.Neg()))
		assert.True(t, row.TradeAmount.IsZero())
		if targets[i].Target.GreaterThan(dec("2")) {
			assert.Equal(t, domain.ActionBuy, row.Action.Kind, "type %s", row.Type)
		}
	}
}

func TestCalculateRebalance_ZeroValuePortfolio(t *testing.T) {
	// Holdings exist but no price resolved: listed, zero value, hold
	a := newAsset("FON1", domain.AssetTypeFund, "100", "0")
	b := newAsset("BROKEN", domain.AssetTypeFund, "5", "-3")
	targets := domain.TargetAllocation{{Type: domain.AssetTypeFund, Target: dec("10")}}

	report, err := ComputeRebalance([]domain.Asset{a, b}, targets)

	require.NoError(t, err)
	assert.True(t, report.TotalValue.IsZero())
	require.Len(t, report.PerAsset, 2)
	for _, row := range report.PerAsset {
		assert.True(t, row.CurrentValue.IsZero())
		assert.True(t, row.CurrentPercentage.IsZero())
		assert.True(t, row.TargetPercentage.IsZero())
		assert.True(t, row.TradeAmount.IsZero())
		assert.Equal(t, domain.ActionHold, row.Action.Kind)
	}
}

func TestCalculateRebalance_NegativePriceContributesNothing(t *testing.T) {
	good := newAsset("GARAN", domain.AssetTypeEquity, "10", "100")
	bad := newAsset("BAD", domain.AssetTypeEquity, "10", "-100")
	targets := domain.TargetAllocation{{Type: domain.AssetTypeEquity, Target: dec("100")}}

	report, err := ComputeRebalance([]domain.Asset{good, bad}, targets)

	require.NoError(t, err)
	assert.True(t, report.TotalValue.Equal(dec("1000")))
	require.Len(t, report.PerAsset, 2)
	assert.True(t, report.PerAsset[1].CurrentValue.IsZero())
	assert.True(t, report.PerAsset[1].TargetPercentage.IsZero())
}

func TestCalculateRebalance_ExcludesClosedPositions(t *testing.T) {
	open := newAsset("GOLD", domain.AssetTypeGold, "2", "2500")
	closed := newAsset("SOLD", domain.AssetTypeGold, "0", "9999")
	negative := newAsset("SHORT", domain.AssetTypeGold, "-1", "2500")
	// Closed positions are excluded even when their type is unknown
	closedUnknown := newAsset("OLD", domain.AssetType("Emtia"), "0", "10")
	targets := domain.TargetAllocation{{Type: domain.AssetTypeGold, Target: dec("10")}}

	report, err := ComputeRebalance([]domain.Asset{open, closed, negative, closedUnknown}, targets)

	require.NoError(t, err)
	require.Len(t, report.PerAsset, 1)
	assert.Equal(t, open.ID, *report.PerAsset[0].AssetID)
	assert.True(t, report.TotalValue.Equal(dec("5000")))
}

func TestCalculateRebalance_MissingTypeFailsFast(t *testing.T) {
	a := newAsset("THYAO", domain.AssetTypeEquity, "1", "10")
	b := newAsset("XAU", domain.AssetType("Emtia"), "1", "10")
	targets := domain.TargetAllocation{{Type: domain.AssetTypeEquity, Target: dec("100")}}

	report, err := ComputeRebalance([]domain.Asset{a, b}, targets)

	assert.Nil(t, report)
	var cfgErr *domain.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, domain.AssetType("Emtia"), cfgErr.Type)
	assert.Equal(t, `asset type "Emtia" has no target configured`, err.Error())
}

func TestCalculateRebalance_Conservation(t *testing.T) {
	assets := []domain.Asset{
		newAsset("THYAO", domain.AssetTypeEquity, "13", "271.35"),
		newAsset("ASELS", domain.AssetTypeEquity, "7", "58.2"),
		newAsset("BTC", domain.AssetTypeCrypto, "0.013", "2150000"),
		newAsset("USD", domain.AssetTypeUSD, "1234", "32.91"),
		newAsset("GRAM", domain.AssetTypeGold, "3", "2499.99"),
		newAsset("TTE", domain.AssetTypeFund, "1000", "1.7331"),
	}

	report, err := ComputeRebalance(assets, domain.DefaultTargets())
	require.NoError(t, err)

	assetSum := decimal.Zero
	for _, row := range report.PerAsset {
		assetSum = assetSum.Add(row.CurrentValue)
	}
	typeSum := decimal.Zero
	for _, row := range report.PerType {
		typeSum = typeSum.Add(row.CurrentValue)
	}

	assert.True(t, assetSum.Equal(report.TotalValue), "per-asset values must add up to the total")
	assert.True(t, typeSum.Equal(report.TotalValue), "per-type values must add up to the total")
}

func TestCalculateRebalance_Idempotent(t *testing.T) {
	assets := []domain.Asset{
		newAsset("THYAO", domain.AssetTypeEquity, "3", "100"),
		newAsset("BTC", domain.AssetTypeCrypto, "1", "700"),
	}
	targets := domain.DefaultTargets()

	first, err := ComputeRebalance(assets, targets)
	require.NoError(t, err)
	second, err := ComputeRebalance(assets, targets)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestCalculateRebalance_DoesNotMutateInputs(t *testing.T) {
	override := dec("42")
	assets := []domain.Asset{
		{ID: uuid.New(), Name: "THYAO", Type: domain.AssetTypeEquity, Amount: dec("3"), Price: dec("100"), Target: &override},
		newAsset("SOLD", domain.AssetTypeEquity, "0", "100"),
	}
	targets := domain.TargetAllocation{{Type: domain.AssetTypeEquity, Target: dec("35")}}

	assetsBefore := append([]domain.Asset(nil), assets...)
	targetsBefore := append(domain.TargetAllocation(nil), targets...)

	_, err := ComputeRebalance(assets, targets)
	require.NoError(t, err)

	assert.Equal(t, assetsBefore, assets)
	assert.Equal(t, targetsBefore, targets)
	assert.True(t, override.Equal(dec("42")))
}

func TestCalculateRebalance_DeadBandBoundaryIsHold(t *testing.T) {
	// Hisse 50% held vs 48% target is exactly +2, USD exactly -2
	a := newAsset("THYAO", domain.AssetTypeEquity, "10", "100")
	b := newAsset("USD", domain.AssetTypeUSD, "20", "50")
	targets := domain.TargetAllocation{
		{Type: domain.AssetTypeEquity, Target: dec("48")},
		{Type: domain.AssetTypeUSD, Target: dec("52")},
	}

	report, err := ComputeRebalance([]domain.Asset{a, b}, targets)
	require.NoError(t, err)

	equity := findType(t, report.PerType, domain.AssetTypeEquity)
	usd := findType(t, report.PerType, domain.AssetTypeUSD)
	assert.True(t, equity.Difference.Equal(dec("2")))
	assert.Equal(t, domain.ActionHold, equity.Action.Kind)
	assert.True(t, usd.Difference.Equal(dec("-2")))
	assert.Equal(t, domain.ActionHold, usd.Action.Kind)
}

func TestCalculateRebalance_CustomDeadBand(t *testing.T) {
	a := newAsset("THYAO", domain.AssetTypeEquity, "10", "100")
	b := newAsset("USD", domain.AssetTypeUSD, "20", "50")
	targets := domain.TargetAllocation{
		{Type: domain.AssetTypeEquity, Target: dec("48")},
		{Type: domain.AssetTypeUSD, Target: dec("52")},
	}

	report, err := CalculateRebalance([]domain.Asset{a, b}, targets, Policy{DeadBand: dec("1")})
	require.NoError(t, err)

	assert.Equal(t, domain.ActionSell, findType(t, report.PerType, domain.AssetTypeEquity).Action.Kind)
	assert.Equal(t, domain.ActionBuy, findType(t, report.PerType, domain.AssetTypeUSD).Action.Kind)

	_, err = CalculateRebalance([]domain.Asset{a}, targets, Policy{DeadBand: dec("-1")})
	assert.EqualError(t, err, "dead-band cannot be negative")
}

func TestClassify(t *testing.T) {
	band := dec("2")

	tests := []struct {
		name       string
		difference string
		wantKind   domain.ActionKind
		wantLabel  string
	}{
		{name: "exact upper boundary holds", difference: "2.00", wantKind: domain.ActionHold, wantLabel: "TUT"},
		{name: "exact lower boundary holds", difference: "-2.00", wantKind: domain.ActionHold, wantLabel: "TUT"},
		{name: "just above band sells", difference: "2.0001", wantKind: domain.ActionSell, wantLabel: "%2.00 azalt (SAT)"},
		{name: "just below band buys", difference: "-2.0001", wantKind: domain.ActionBuy, wantLabel: "%2.00 artır (AL)"},
		{name: "zero holds", difference: "0", wantKind: domain.ActionHold, wantLabel: "TUT"},
		{name: "label rounds to two decimals", difference: "-12.345", wantKind: domain.ActionBuy, wantLabel: "%12.35 artır (AL)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			action := Classify(dec(tt.difference), band)
			assert.Equal(t, tt.wantKind, action.Kind)
			assert.Equal(t, tt.wantLabel, action.Label())
		})
	}
}
