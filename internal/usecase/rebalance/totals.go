package rebalance

import (
	"github.com/shopspring/decimal"
	"github.com/simaogato/portfoy-backend/internal/domain"
)

// Totals is the valuation of the open positions of a portfolio
type Totals struct {
	Eligible []domain.Asset                       // Open positions, input order
	Values   []decimal.Decimal                    // Value of Eligible[i]
	ByType   map[domain.AssetType]decimal.Decimal // Summed value per type
	Types    []domain.AssetType                   // Held types, first appearance order
	Total    decimal.Decimal
}

// SumByType values the open positions and sums them per type.
// Closed positions are dropped and negative prices count as zero.
func SumByType(assets []domain.Asset) Totals {
	t := Totals{
		Eligible: make([]domain.Asset, 0, len(assets)),
		Values:   make([]decimal.Decimal, 0, len(assets)),
		ByType:   make(map[domain.AssetType]decimal.Decimal),
		Total:    decimal.Zero,
	}

	for _, asset := range assets {
		if !asset.IsEligible() {
			continue
		}
		value := asset.Value()

		if _, seen := t.ByType[asset.Type]; !seen {
			t.Types = append(t.Types, asset.Type)
		}
		t.ByType[asset.Type] = t.ByType[asset.Type].Add(value)
		t.Eligible = append(t.Eligible, asset)
		t.Values = append(t.Values, value)
		t.Total = t.Total.Add(value)
	}

	return t
}

// Share returns value as a percentage of the total, zero for a zero-value portfolio
func (t Totals) Share(value decimal.Decimal) decimal.Decimal {
	if t.Total.IsZero() {
		return decimal.Zero
	}
	return value.Mul(hundred).Div(t.Total)
}
