package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SnapshotDateLayout is the calendar-day key of a portfolio snapshot
const SnapshotDateLayout = "2006-01-02"

// TypeShare is the value held in one asset type
type TypeShare struct {
	Type       AssetType       `json:"type"`
	Value      decimal.Decimal `json:"value"`
	Percentage decimal.Decimal `json:"percentage"`
}

// PortfolioSnapshot records the portfolio value for one calendar day.
// There is at most one snapshot per day; recording again replaces it.
type PortfolioSnapshot struct {
	Date         time.Time       `json:"date"`
	TotalValue   decimal.Decimal `json:"total_value"`
	Distribution []TypeShare     `json:"distribution"`
}

// Day returns the snapshot's date key
func (s *PortfolioSnapshot) Day() string {
	return s.Date.Format(SnapshotDateLayout)
}
