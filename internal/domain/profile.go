package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// RiskProfile names a preset target distribution
type RiskProfile string

const (
	RiskProfileLow    RiskProfile = "Düşük"
	RiskProfileMedium RiskProfile = "Orta"
	RiskProfileHigh   RiskProfile = "Yüksek"
)

// RiskProfiles lists the built-in profiles from the most to the least defensive
var RiskProfiles = []RiskProfile{RiskProfileLow, RiskProfileMedium, RiskProfileHigh}

// ParseRiskProfile validates a profile name
func ParseRiskProfile(s string) (RiskProfile, error) {
	for _, p := range RiskProfiles {
		if string(p) == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: unknown risk profile %q", ErrInvalidArgument, s)
}

// Targets returns the target distribution of the profile
func (p RiskProfile) Targets() TargetAllocation {
	d := decimal.NewFromInt
	switch p {
	case RiskProfileLow:
		return TargetAllocation{
			{Type: AssetTypeEquity, Target: d(20)},
			{Type: AssetTypeCrypto, Target: d(5)},
			{Type: AssetTypeFund, Target: d(30)},
			{Type: AssetTypeCurrency, Target: d(15)},
			{Type: AssetTypeGold, Target: d(20)},
			{Type: AssetTypeCash, Target: d(10)},
		}
	case RiskProfileHigh:
		return TargetAllocation{
			{Type: AssetTypeEquity, Target: d(40)},
			{Type: AssetTypeCrypto, Target: d(20)},
			{Type: AssetTypeFund, Target: d(15)},
			{Type: AssetTypeCurrency, Target: d(10)},
			{Type: AssetTypeGold, Target: d(10)},
			{Type: AssetTypeCash, Target: d(5)},
		}
	default:
		return TargetAllocation{
			{Type: AssetTypeEquity, Target: d(32)},
			{Type: AssetTypeCrypto, Target: d(15)},
			{Type: AssetTypeFund, Target: d(22)},
			{Type: AssetTypeCurrency, Target: d(13)},
			{Type: AssetTypeGold, Target: d(12)},
			{Type: AssetTypeCash, Target: d(6)},
		}
	}
}

// ApplyTo overlays the profile on an existing allocation.
// Profile types take the profile share, every other configured type drops to 0,
// so holdings of those types stay rebalance-eligible.
func (p RiskProfile) ApplyTo(current TargetAllocation) TargetAllocation {
	profile := p.Targets()
	out := make(TargetAllocation, 0, len(current)+len(profile))
	for _, tt := range current {
		pct, ok := profile.Lookup(tt.Type)
		if !ok {
			pct = decimal.Zero
		}
		out = append(out, TypeTarget{Type: tt.Type, Target: pct})
	}
	for _, tt := range profile {
		if !current.Has(tt.Type) {
			out = append(out, tt)
		}
	}
	return out
}
