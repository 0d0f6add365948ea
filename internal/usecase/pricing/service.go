package pricing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/simaogato/portfoy-backend/internal/domain"
)

// PriceBook holds the stored quotes indexed by source and key
type PriceBook struct {
	Manual map[string]decimal.Decimal
	Cached map[string]decimal.Decimal
}

// NewPriceBook indexes a list of quotes
func NewPriceBook(quotes []*domain.PriceQuote) PriceBook {
	book := PriceBook{
		Manual: make(map[string]decimal.Decimal),
		Cached: make(map[string]decimal.Decimal),
	}
	for _, q := range quotes {
		switch q.Source {
		case domain.PriceSourceManual:
			book.Manual[q.Key] = q.Price
		case domain.PriceSourceCached:
			book.Cached[q.Key] = q.Price
		}
	}
	return book
}

// Resolve returns the unit price to value an asset with
// Priority:
//  1. Manual override for the asset's key
//  2. Cached feed price (gold holdings all share the GOLD quote)
//  3. The buy price recorded with the asset
//  4. Zero
//
// Only strictly positive prices are accepted at each step.
func (b PriceBook) Resolve(asset *domain.Asset) decimal.Decimal {
	key := asset.PriceKey()

	if p, ok := b.Manual[key]; ok && p.IsPositive() {
		return p
	}

	cachedKey := key
	if asset.Type == domain.AssetTypeGold {
		cachedKey = domain.GoldPriceKey
	}
	if p, ok := b.Cached[cachedKey]; ok && p.IsPositive() {
		return p
	}

	if asset.BuyPrice.IsPositive() {
		return asset.BuyPrice
	}

	return decimal.Zero
}

// PriceService manages stored quotes and resolves asset prices
type PriceService struct {
	PriceRepo domain.PriceRepository
}

// NewPriceService creates a new PriceService instance
func NewPriceService(priceRepo domain.PriceRepository) *PriceService {
	return &PriceService{
		PriceRepo: priceRepo,
	}
}

// Book loads every stored quote into a PriceBook
func (s *PriceService) Book(ctx context.Context) (PriceBook, error) {
	quotes, err := s.PriceRepo.List(ctx)
	if err != nil {
		return PriceBook{}, fmt.Errorf("failed to list price quotes: %w", err)
	}
	return NewPriceBook(quotes), nil
}

// ResolveAll returns copies of the assets with Price filled in.
// The input assets are left untouched.
func (s *PriceService) ResolveAll(ctx context.Context, assets []*domain.Asset) ([]domain.Asset, error) {
	book, err := s.Book(ctx)
	if err != nil {
		return nil, err
	}

	resolved := make([]domain.Asset, 0, len(assets))
	for _, asset := range assets {
		a := *asset
		a.Price = book.Resolve(asset)
		resolved = append(resolved, a)
	}
	return resolved, nil
}

// SetManualPrice stores a user override for a price key
func (s *PriceService) SetManualPrice(ctx context.Context, key string, price decimal.Decimal) (*domain.PriceQuote, error) {
	return s.upsert(ctx, key, domain.PriceSourceManual, price)
}

// ClearManualPrice removes a user override
func (s *PriceService) ClearManualPrice(ctx context.Context, key string) error {
	key = normalizeKey(key)
	if key == "" {
		return fmt.Errorf("%w: price key cannot be empty", domain.ErrInvalidArgument)
	}
	return s.PriceRepo.Delete(ctx, key, domain.PriceSourceManual)
}

// RecordQuote stores the latest price reported by an external feed
func (s *PriceService) RecordQuote(ctx context.Context, key string, price decimal.Decimal) (*domain.PriceQuote, error) {
	return s.upsert(ctx, key, domain.PriceSourceCached, price)
}

func (s *PriceService) upsert(ctx context.Context, key string, source domain.PriceSource, price decimal.Decimal) (*domain.PriceQuote, error) {
	key = normalizeKey(key)
	if key == "" {
		return nil, fmt.Errorf("%w: price key cannot be empty", domain.ErrInvalidArgument)
	}
	if !price.IsPositive() {
		return nil, fmt.Errorf("%w: price must be positive", domain.ErrInvalidArgument)
	}

	quote := &domain.PriceQuote{
		Key:       key,
		Source:    source,
		Price:     price,
		UpdatedAt: time.Now().UTC(),
	}
	if err := s.PriceRepo.Upsert(ctx, quote); err != nil {
		return nil, err
	}
	return quote, nil
}

func normalizeKey(key string) string {
	return strings.ToUpper(strings.TrimSpace(key))
}
