package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceSource tells where a stored quote came from
type PriceSource string

const (
	PriceSourceManual PriceSource = "MANUAL" // Entered by the user, always wins
	PriceSourceCached PriceSource = "CACHED" // Last price fetched by an external price feed
)

// GoldPriceKey is the cached-quote key shared by every gold holding
const GoldPriceKey = "GOLD"

// PriceQuote is a stored unit price for a price key
type PriceQuote struct {
	Key       string          `json:"key"`
	Source    PriceSource     `json:"source"`
	Price     decimal.Decimal `json:"price"`
	UpdatedAt time.Time       `json:"updated_at"`
}
