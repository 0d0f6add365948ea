package snapshot

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/simaogato/portfoy-backend/internal/domain"
)

var hundred = decimal.NewFromInt(100)

const (
	// DefaultVolatileThreshold is the absolute daily move, in percent, beyond which a day counts as volatile
	DefaultVolatileThreshold = 10

	// WeekWindow is the number of snapshots covered by the weekly change
	WeekWindow = 7
)

// Change is the move of the portfolio value between two snapshots
type Change struct {
	From       time.Time       `json:"from"`
	To         time.Time       `json:"to"`
	StartValue decimal.Decimal `json:"start_value"`
	EndValue   decimal.Decimal `json:"end_value"`
	Change     decimal.Decimal `json:"change"`     // EndValue - StartValue
	Percentage decimal.Decimal `json:"percentage"` // Change over StartValue, percent; zero when StartValue is zero
}

// Analysis summarizes the recorded history
type Analysis struct {
	Daily       []Change `json:"daily"`        // One entry per consecutive pair, oldest first
	Volatile    []Change `json:"volatile"`     // Daily moves beyond the volatile threshold
	Latest      *Change  `json:"latest"`       // Move between the last two snapshots
	BiggestGain *Change  `json:"biggest_gain"` // Largest positive daily move
	BiggestLoss *Change  `json:"biggest_loss"` // Largest negative daily move
	Weekly      *Change  `json:"weekly"`       // First to last of the last WeekWindow snapshots
}

func newChange(from, to *domain.PortfolioSnapshot) Change {
	c := Change{
		From:       from.Date,
		To:         to.Date,
		StartValue: from.TotalValue,
		EndValue:   to.TotalValue,
		Change:     to.TotalValue.Sub(from.TotalValue),
		Percentage: decimal.Zero,
	}
	if from.TotalValue.IsPositive() {
		c.Percentage = c.Change.Mul(hundred).Div(from.TotalValue)
	}
	return c
}

// DailyChanges returns the move between every consecutive pair of snapshots.
// history must be ordered oldest first.
func DailyChanges(history []*domain.PortfolioSnapshot) []Change {
	if len(history) < 2 {
		return []Change{}
	}

	changes := make([]Change, 0, len(history)-1)
	for i := 1; i < len(history); i++ {
		changes = append(changes, newChange(history[i-1], history[i]))
	}
	return changes
}

// Analyze derives the daily, weekly and extreme moves of a history ordered oldest first.
// Logic:
//   - Volatile: |daily %| strictly above volatileThreshold
//   - BiggestGain / BiggestLoss: the highest positive / lowest negative daily %, first wins on ties
//   - Weekly: first to last snapshot of the last WeekWindow entries
//
// Fewer than two snapshots leave every pointer nil.
func Analyze(history []*domain.PortfolioSnapshot, volatileThreshold decimal.Decimal) *Analysis {
	a := &Analysis{
		Daily:    DailyChanges(history),
		Volatile: []Change{},
	}
	if len(a.Daily) == 0 {
		return a
	}

	for i := range a.Daily {
		c := &a.Daily[i]
		if c.Percentage.Abs().GreaterThan(volatileThreshold) {
			a.Volatile = append(a.Volatile, *c)
		}
		if c.Percentage.IsPositive() && (a.BiggestGain == nil || c.Percentage.GreaterThan(a.BiggestGain.Percentage)) {
			a.BiggestGain = c
		}
		if c.Percentage.IsNegative() && (a.BiggestLoss == nil || c.Percentage.LessThan(a.BiggestLoss.Percentage)) {
			a.BiggestLoss = c
		}
	}

	a.Latest = &a.Daily[len(a.Daily)-1]

	start := len(history) - WeekWindow
	if start < 0 {
		start = 0
	}
	weekly := newChange(history[start], history[len(history)-1])
	a.Weekly = &weekly

	return a
}

// Analyze loads the history and analyzes it
func (s *SnapshotService) Analyze(ctx context.Context) (*Analysis, error) {
	history, err := s.History(ctx)
	if err != nil {
		return nil, err
	}
	return Analyze(history, s.VolatileThreshold), nil
}
