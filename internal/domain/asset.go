package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AssetType is the allocation category of a holding.
// The set is open: any type registered in the TargetAllocation is valid.
type AssetType string

const (
	AssetTypeEquity   AssetType = "Hisse"
	AssetTypeCrypto   AssetType = "Kripto"
	AssetTypeUSD      AssetType = "USD"
	AssetTypeGold     AssetType = "Altın"
	AssetTypeFund     AssetType = "Fon"
	AssetTypeEurobond AssetType = "Eurobond"
	AssetTypeCurrency AssetType = "Döviz"
	AssetTypeCash     AssetType = "Nakit"
)

// Asset represents a single holding
type Asset struct {
	ID        uuid.UUID        `json:"id"`
	Name      string           `json:"name"`
	Type      AssetType        `json:"type"`
	Amount    decimal.Decimal  `json:"amount"`
	Price     decimal.Decimal  `json:"price"`     // Resolved unit price, filled in by the price resolver
	BuyPrice  decimal.Decimal  `json:"buy_price"` // Unit price entered when the holding was recorded
	Target    *decimal.Decimal `json:"target,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}

// PriceKey returns the key used to look the asset up in price books
func (a *Asset) PriceKey() string {
	return strings.ToUpper(strings.TrimSpace(a.Name))
}

// IsEligible reports whether the asset takes part in valuation.
// Holdings with a non-positive amount are closed positions.
func (a *Asset) IsEligible() bool {
	return a.Amount.GreaterThan(decimal.Zero)
}

// Value returns amount × price, treating negative prices as zero
func (a *Asset) Value() decimal.Decimal {
	if !a.IsEligible() || a.Price.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return a.Amount.Mul(a.Price)
}

// Validate ensures the asset adheres to domain rules
func (a *Asset) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return errors.New("asset name cannot be empty")
	}
	if a.Type == "" {
		return errors.New("asset type cannot be empty")
	}
	if a.Amount.LessThan(decimal.Zero) {
		return errors.New("asset amount cannot be negative")
	}
	if a.BuyPrice.LessThan(decimal.Zero) {
		return errors.New("asset buy price cannot be negative")
	}
	if a.Target != nil {
		if a.Target.LessThan(decimal.Zero) || a.Target.GreaterThan(hundred) {
			return errors.New("asset target must be between 0 and 100")
		}
	}
	return nil
}
