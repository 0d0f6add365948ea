package pricing

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/portfoy-backend/internal/domain"
)

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

func quote(key string, source domain.PriceSource, price int64) *domain.PriceQuote {
	return &domain.PriceQuote{Key: key, Source: source, Price: decimal.NewFromInt(price)}
}

func TestPriceBook_Resolve(t *testing.T) {
	book := NewPriceBook([]*domain.PriceQuote{
		quote("THYAO", domain.PriceSourceManual, 300),
		quote("THYAO", domain.PriceSourceCached, 280),
		quote("BTC", domain.PriceSourceCached, 2000000),
		quote("GOLD", domain.PriceSourceCached, 2500),
		quote("ZERO", domain.PriceSourceManual, 0),
		quote("ZERO", domain.PriceSourceCached, 15),
	})

	tests := []struct {
		name  string
		asset domain.Asset
		want  int64
	}{
		{
			name:  "manual override wins over cached price",
			asset: domain.Asset{Name: "thyao", Type: domain.AssetTypeEquity, BuyPrice: decimal.NewFromInt(100)},
			want:  300,
		},
		{
			name:  "cached price used without override",
			asset: domain.Asset{Name: "Btc", Type: domain.AssetTypeCrypto, BuyPrice: decimal.NewFromInt(1)},
			want:  2000000,
		},
		{
			name:  "gold holdings share the GOLD quote",
			asset: domain.Asset{Name: "Çeyrek", Type: domain.AssetTypeGold},
			want:  2500,
		},
		{
			name:  "zero override falls through to cached price",
			asset: domain.Asset{Name: "zero", Type: domain.AssetTypeFund},
			want:  15,
		},
		{
			name:  "buy price used when nothing is stored",
			asset: domain.Asset{Name: "TTE", Type: domain.AssetTypeFund, BuyPrice: decimal.NewFromInt(7)},
			want:  7,
		},
		{
			name:  "unresolved price is zero",
			asset: domain.Asset{Name: "NOPE", Type: domain.AssetTypeFund},
			want:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := book.Resolve(&tt.asset)
			assert.True(t, got.Equal(decimal.NewFromInt(tt.want)), "got %s want %d", got, tt.want)
		})
	}
}

func TestPriceService_ResolveAll_DoesNotMutateInput(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockPriceRepository)
	service := NewPriceService(mockRepo)

	mockRepo.On("List", ctx).Return([]*domain.PriceQuote{quote("USD", domain.PriceSourceCached, 33)}, nil)

	original := &domain.Asset{Name: "USD", Type: domain.AssetTypeUSD, Amount: decimal.NewFromInt(10)}
	resolved, err := service.ResolveAll(ctx, []*domain.Asset{original})

	require.NoError(t, err)
	require.Len(t, resolved, 1)
	assert.True(t, resolved[0].Price.Equal(decimal.NewFromInt(33)))
	assert.True(t, original.Price.IsZero(), "input asset must not be modified")
	mockRepo.AssertExpectations(t)
}

func TestPriceService_ResolveAll_RepositoryError(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockPriceRepository)
	service := NewPriceService(mockRepo)

	mockRepo.On("List", ctx).Return(nil, errors.New("connection refused"))

	resolved, err := service.ResolveAll(ctx, nil)

	assert.Nil(t, resolved)
	assert.ErrorContains(t, err, "failed to list price quotes")
}

func TestPriceService_SetManualPrice(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockPriceRepository)
	service := NewPriceService(mockRepo)

	mockRepo.On("Upsert", ctx, mock.MatchedBy(func(q *domain.PriceQuote) bool {
		return q.Key == "ASELS" &&
			q.Source == domain.PriceSourceManual &&
			q.Price.Equal(decimal.NewFromInt(58)) &&
			!q.UpdatedAt.IsZero()
	})).Return(nil)

	q, err := service.SetManualPrice(ctx, "  asels ", decimal.NewFromInt(58))

	require.NoError(t, err)
	assert.Equal(t, "ASELS", q.Key)
	mockRepo.AssertExpectations(t)
}

func TestPriceService_RecordQuote_Validation(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockPriceRepository)
	service := NewPriceService(mockRepo)

	_, err := service.RecordQuote(ctx, "BTC", decimal.Zero)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = service.RecordQuote(ctx, " ", decimal.NewFromInt(1))
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	mockRepo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestPriceService_ClearManualPrice(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockPriceRepository)
	service := NewPriceService(mockRepo)

	mockRepo.On("Delete", ctx, "GARAN", domain.PriceSourceManual).Return(nil)

	require.NoError(t, service.ClearManualPrice(ctx, "garan"))
	mockRepo.AssertExpectations(t)
}
