package rebalance

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/portfoy-backend/internal/domain"
	"github.com/simaogato/portfoy-backend/internal/testutil"
	"github.com/simaogato/portfoy-backend/internal/usecase/pricing"
)

type serviceFixture struct {
	assets  *testutil.MockAssetRepository
	targets *testutil.MockTargetRepository
	prices  *testutil.MockPriceRepository
	service *Service
}

func newServiceFixture() serviceFixture {
	f := serviceFixture{
		assets:  new(testutil.MockAssetRepository),
		targets: new(testutil.MockTargetRepository),
		prices:  new(testutil.MockPriceRepository),
	}
	f.service = NewRebalanceService(f.assets, f.targets, pricing.NewPriceService(f.prices), DefaultPolicy(), zerolog.Nop())
	return f
}

func TestService_Rebalance_UsesResolvedPrices(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture()

	equity := testutil.Asset("THYAO", domain.AssetTypeEquity, 10, 100)
	usd := testutil.Asset("USD", domain.AssetTypeUSD, 100, 10)

	f.targets.On("Get", ctx).Return(domain.TargetAllocation{
		{Type: domain.AssetTypeEquity, Target: decimal.NewFromInt(50)},
		{Type: domain.AssetTypeUSD, Target: decimal.NewFromInt(50)},
	}, nil)
	f.assets.On("List", ctx).Return([]*domain.Asset{equity, usd}, nil)
	// THYAO doubled since purchase, USD has no quote and falls back to its buy price
	f.prices.On("List", ctx).Return([]*domain.PriceQuote{
		{Key: "THYAO", Source: domain.PriceSourceCached, Price: decimal.NewFromInt(200)},
	}, nil)

	report, err := f.service.Rebalance(ctx)

	require.NoError(t, err)
	assert.True(t, report.TotalValue.Equal(decimal.NewFromInt(3000)))
	require.Len(t, report.PerType, 2)
	assert.Equal(t, domain.ActionSell, report.PerType[0].Action.Kind)
	assert.Equal(t, domain.ActionBuy, report.PerType[1].Action.Kind)
	// The stored asset is not modified by price resolution
	assert.True(t, equity.Price.IsZero())
}

func TestService_Rebalance_ConfigurationError(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture()

	f.targets.On("Get", ctx).Return(domain.TargetAllocation{
		{Type: domain.AssetTypeEquity, Target: decimal.NewFromInt(100)},
	}, nil)
	f.assets.On("List", ctx).Return([]*domain.Asset{
		testutil.Asset("BTC", domain.AssetTypeCrypto, 1, 1000),
	}, nil)
	f.prices.On("List", ctx).Return([]*domain.PriceQuote{}, nil)

	report, err := f.service.Rebalance(ctx)

	assert.Nil(t, report)
	var cfgErr *domain.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, domain.AssetTypeCrypto, cfgErr.Type)
}

func TestService_Rebalance_TargetRepositoryError(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture()

	f.targets.On("Get", ctx).Return(nil, errors.New("connection reset"))

	_, err := f.service.Rebalance(ctx)

	assert.ErrorContains(t, err, "failed to load targets")
	f.assets.AssertNotCalled(t, "List", mock.Anything)
}

func TestService_PreviewProfile_DoesNotSaveTargets(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture()

	f.targets.On("Get", ctx).Return(domain.DefaultTargets(), nil)
	f.assets.On("List", ctx).Return([]*domain.Asset{
		testutil.Asset("Eurobond 2030", domain.AssetTypeEurobond, 1, 1000),
		testutil.Asset("Nakit", domain.AssetTypeCash, 1000, 1),
	}, nil)
	f.prices.On("List", ctx).Return([]*domain.PriceQuote{}, nil)

	report, err := f.service.PreviewProfile(ctx, domain.RiskProfileLow)

	require.NoError(t, err)
	// Nakit is unknown to the stored targets but part of the profile
	var cash *domain.RebalanceRow
	for i := range report.PerType {
		if report.PerType[i].Type == domain.AssetTypeCash {
			cash = &report.PerType[i]
		}
	}
	require.NotNil(t, cash)
	assert.True(t, cash.TargetPercentage.Equal(decimal.NewFromInt(10)))
	f.targets.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestService_Preview_UsesPolicy(t *testing.T) {
	f := newServiceFixture()
	f.service.Policy = Policy{DeadBand: decimal.NewFromInt(10)}

	assets := []domain.Asset{
		{Name: "A", Type: domain.AssetTypeEquity, Amount: decimal.NewFromInt(55), Price: decimal.NewFromInt(1)},
		{Name: "B", Type: domain.AssetTypeFund, Amount: decimal.NewFromInt(45), Price: decimal.NewFromInt(1)},
	}
	targets := domain.TargetAllocation{
		{Type: domain.AssetTypeEquity, Target: decimal.NewFromInt(50)},
		{Type: domain.AssetTypeFund, Target: decimal.NewFromInt(50)},
	}

	report, err := f.service.Preview(assets, targets)

	require.NoError(t, err)
	for _, row := range report.PerType {
		assert.Equal(t, domain.ActionHold, row.Action.Kind, "5 point drift is inside a 10 point band")
	}
}
