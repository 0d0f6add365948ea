// Package testutil provides testify mocks of the domain repositories.
package testutil

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/simaogato/portfoy-backend/internal/domain"
)

// MockAssetRepository is a mock implementation of AssetRepository for testing
type MockAssetRepository struct {
	mock.Mock
}

func (m *MockAssetRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Asset, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Asset), args.Error(1)
}

func (m *MockAssetRepository) Create(ctx context.Context, asset *domain.Asset) error {
	args := m.Called(ctx, asset)
	return args.Error(0)
}

func (m *MockAssetRepository) UpdateAmount(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error {
	args := m.Called(ctx, id, amount)
	return args.Error(0)
}

func (m *MockAssetRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockAssetRepository) List(ctx context.Context) ([]*domain.Asset, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Asset), args.Error(1)
}

// MockTargetRepository is a mock implementation of TargetRepository for testing
type MockTargetRepository struct {
	mock.Mock
}

func (m *MockTargetRepository) Get(ctx context.Context) (domain.TargetAllocation, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(domain.TargetAllocation), args.Error(1)
}

func (m *MockTargetRepository) Save(ctx context.Context, targets domain.TargetAllocation) error {
	args := m.Called(ctx, targets)
	return args.Error(0)
}

// MockPriceRepository is a mock implementation of PriceRepository for testing
type MockPriceRepository struct {
	mock.Mock
}

func (m *MockPriceRepository) Upsert(ctx context.Context, quote *domain.PriceQuote) error {
	args := m.Called(ctx, quote)
	return args.Error(0)
}

func (m *MockPriceRepository) Delete(ctx context.Context, key string, source domain.PriceSource) error {
	args := m.Called(ctx, key, source)
	return args.Error(0)
}

func (m *MockPriceRepository) List(ctx context.Context) ([]*domain.PriceQuote, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.PriceQuote), args.Error(1)
}

// MockSnapshotRepository is a mock implementation of SnapshotRepository for testing
type MockSnapshotRepository struct {
	mock.Mock
}

func (m *MockSnapshotRepository) Upsert(ctx context.Context, snapshot *domain.PortfolioSnapshot) error {
	args := m.Called(ctx, snapshot)
	return args.Error(0)
}

func (m *MockSnapshotRepository) List(ctx context.Context) ([]*domain.PortfolioSnapshot, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.PortfolioSnapshot), args.Error(1)
}

// Asset builds a holding with the given quantity and buy price
func Asset(name string, assetType domain.AssetType, amount, buyPrice int64) *domain.Asset {
	return &domain.Asset{
		ID:       uuid.New(),
		Name:     name,
		Type:     assetType,
		Amount:   decimal.NewFromInt(amount),
		BuyPrice: decimal.NewFromInt(buyPrice),
	}
}
