package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// TypeTarget is the desired share of total portfolio value for one asset type
type TypeTarget struct {
	Type   AssetType       `json:"type"`
	Target decimal.Decimal `json:"target"` // Percentage (0-100), not a fraction
}

// TargetAllocation maps asset types to target percentages.
// It is ordered: per-type rebalance rows follow this order.
// Targets are not required to sum to 100.
type TargetAllocation []TypeTarget

// Lookup returns the target percentage configured for the given type
func (ta TargetAllocation) Lookup(t AssetType) (decimal.Decimal, bool) {
	for _, tt := range ta {
		if tt.Type == t {
			return tt.Target, true
		}
	}
	return decimal.Zero, false
}

// Has reports whether the type is registered
func (ta TargetAllocation) Has(t AssetType) bool {
	_, ok := ta.Lookup(t)
	return ok
}

// Types returns the registered types in configuration order
func (ta TargetAllocation) Types() []AssetType {
	types := make([]AssetType, 0, len(ta))
	for _, tt := range ta {
		types = append(types, tt.Type)
	}
	return types
}

// Sum returns the total of all targets
func (ta TargetAllocation) Sum() decimal.Decimal {
	sum := decimal.Zero
	for _, tt := range ta {
		sum = sum.Add(tt.Target)
	}
	return sum
}

// With returns a copy with the given type set to pct.
// Unknown types are appended at the end.
func (ta TargetAllocation) With(t AssetType, pct decimal.Decimal) TargetAllocation {
	out := make(TargetAllocation, 0, len(ta)+1)
	found := false
	for _, tt := range ta {
		if tt.Type == t {
			tt.Target = pct
			found = true
		}
		out = append(out, tt)
	}
	if !found {
		out = append(out, TypeTarget{Type: t, Target: pct})
	}
	return out
}

// Validate ensures every entry has a type, is unique and lies in [0,100]
func (ta TargetAllocation) Validate() error {
	seen := make(map[AssetType]bool, len(ta))
	for _, tt := range ta {
		if tt.Type == "" {
			return errors.New("target type cannot be empty")
		}
		if seen[tt.Type] {
			return fmt.Errorf("duplicate target for asset type %q", tt.Type)
		}
		seen[tt.Type] = true

		if tt.Target.LessThan(decimal.Zero) || tt.Target.GreaterThan(hundred) {
			return fmt.Errorf("target for asset type %q must be between 0 and 100", tt.Type)
		}
	}
	return nil
}

// DefaultTargets returns the allocation used when nothing is configured yet
func DefaultTargets() TargetAllocation {
	return TargetAllocation{
		{Type: AssetTypeEquity, Target: decimal.NewFromInt(35)},
		{Type: AssetTypeCrypto, Target: decimal.NewFromInt(10)},
		{Type: AssetTypeUSD, Target: decimal.NewFromInt(20)},
		{Type: AssetTypeGold, Target: decimal.NewFromInt(10)},
		{Type: AssetTypeFund, Target: decimal.NewFromInt(10)},
		{Type: AssetTypeEurobond, Target: decimal.NewFromInt(15)},
	}
}
