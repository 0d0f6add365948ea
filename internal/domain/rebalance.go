package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ActionKind is the categorical rebalance signal
type ActionKind string

const (
	ActionHold ActionKind = "TUT" // Within the dead-band
	ActionBuy  ActionKind = "AL"  // Underweight, increase
	ActionSell ActionKind = "SAT" // Overweight, reduce
)

// Action is a rebalance signal together with the size of the drift it reacts to
type Action struct {
	Kind    ActionKind      `json:"kind"`
	Percent decimal.Decimal `json:"percent"` // |difference| in percentage points, rounded to two decimals
}

// Label renders the action the way the dashboard displays it
func (a Action) Label() string {
	switch a.Kind {
	case ActionSell:
		return "%" + a.Percent.StringFixed(2) + " azalt (SAT)"
	case ActionBuy:
		return "%" + a.Percent.StringFixed(2) + " artır (AL)"
	default:
		return string(ActionHold)
	}
}

// RebalanceRow is the derived rebalance state of one asset or one asset type.
// Rows are recomputed on every call and never stored.
type RebalanceRow struct {
	AssetID           *uuid.UUID      `json:"asset_id,omitempty"` // nil for per-type rows
	Name              string          `json:"name"`
	Type              AssetType       `json:"type"`
	CurrentValue      decimal.Decimal `json:"current_value"`
	CurrentPercentage decimal.Decimal `json:"current_percentage"`
	TargetPercentage  decimal.Decimal `json:"target_percentage"`
	Difference        decimal.Decimal `json:"difference"`   // Current - Target, percentage points
	TradeAmount       decimal.Decimal `json:"trade_amount"` // Positive = overweight by this value
	Action            Action          `json:"action"`
}

// RebalanceReport is the output of one engine run
type RebalanceReport struct {
	TotalValue decimal.Decimal `json:"total_value"`
	PerAsset   []RebalanceRow  `json:"per_asset"`
	PerType    []RebalanceRow  `json:"per_type"`
}
