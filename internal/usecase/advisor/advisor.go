package advisor

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/simaogato/portfoy-backend/internal/domain"
	"github.com/simaogato/portfoy-backend/internal/usecase/dashboard"
	"github.com/simaogato/portfoy-backend/internal/usecase/snapshot"
)

// AlertCode identifies a portfolio condition worth reporting
type AlertCode string

const (
	AlertEmptyPortfolio    AlertCode = "EMPTY_PORTFOLIO"
	AlertCryptoOverweight  AlertCode = "CRYPTO_OVERWEIGHT"
	AlertEquityUnderweight AlertCode = "EQUITY_UNDERWEIGHT"
	AlertCashExcess        AlertCode = "CASH_EXCESS"
	AlertGoldUnderweight   AlertCode = "GOLD_UNDERWEIGHT"

	AlertNoFundHolding       AlertCode = "NO_FUND_HOLDING"
	AlertNoCurrencyHolding   AlertCode = "NO_CURRENCY_HOLDING"
	AlertCryptoConcentration AlertCode = "CRYPTO_CONCENTRATION"
	AlertLowTotalValue       AlertCode = "LOW_TOTAL_VALUE"

	AlertValueDrop AlertCode = "VALUE_DROP"
	AlertValueRise AlertCode = "VALUE_RISE"
)

// Severity orders alerts for display
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityDanger  Severity = "danger"
	SeveritySuccess Severity = "success"
)

// Alert is a structured finding. Rendering it as prose is left to clients.
type Alert struct {
	Code      AlertCode        `json:"code"`
	Severity  Severity         `json:"severity"`
	Type      domain.AssetType `json:"type,omitempty"`
	Current   decimal.Decimal  `json:"current"`   // Share or daily change in percent; total value for LOW_TOTAL_VALUE
	Threshold decimal.Decimal  `json:"threshold"` // The limit that was crossed, same unit as Current
}

// Limits are the per-profile thresholds
type Limits struct {
	MaxCrypto decimal.Decimal
	MinEquity decimal.Decimal
}

// Policy holds every advisor threshold
type Policy struct {
	Profiles map[domain.RiskProfile]Limits
	MaxCash  decimal.Decimal
	MinGold  decimal.Decimal

	MaxCryptoConcentration decimal.Decimal // Percent, regardless of profile
	MinTotalValue          decimal.Decimal // Portfolio value below which the portfolio counts as small

	MaxDailyDrop decimal.Decimal // Day-over-day change at or below this is a drop, percent
	MinDailyRise decimal.Decimal // Day-over-day change at or above this is a rise, percent
}

// DefaultPolicy returns the thresholds used by the dashboard
func DefaultPolicy() Policy {
	d := decimal.NewFromInt
	return Policy{
		Profiles: map[domain.RiskProfile]Limits{
			domain.RiskProfileLow:    {MaxCrypto: d(8), MinEquity: d(15)},
			domain.RiskProfileMedium: {MaxCrypto: d(17), MinEquity: d(27)},
			domain.RiskProfileHigh:   {MaxCrypto: d(28), MinEquity: d(35)},
		},
		MaxCash: d(12),
		MinGold: d(5),

		MaxCryptoConcentration: d(40),
		MinTotalValue:          d(10000),

		MaxDailyDrop: d(-3),
		MinDailyRise: d(5),
	}
}

// Evaluate checks a summary against the limits of a profile
// Logic:
//   - An empty portfolio yields EMPTY_PORTFOLIO and nothing else
//   - Kripto above the profile maximum yields CRYPTO_OVERWEIGHT
//   - Hisse below the profile minimum yields EQUITY_UNDERWEIGHT
//   - Nakit above MaxCash yields CASH_EXCESS
//   - Altın below MinGold yields GOLD_UNDERWEIGHT
func Evaluate(summary *dashboard.Summary, profile domain.RiskProfile, policy Policy) []Alert {
	if !summary.TotalValue.IsPositive() {
		return []Alert{{Code: AlertEmptyPortfolio, Severity: SeverityInfo, Current: decimal.Zero, Threshold: decimal.Zero}}
	}

	limits, ok := policy.Profiles[profile]
	if !ok {
		limits = policy.Profiles[domain.RiskProfileMedium]
	}

	alerts := make([]Alert, 0)

	crypto := summary.Share(domain.AssetTypeCrypto)
	if crypto.GreaterThan(limits.MaxCrypto) {
		alerts = append(alerts, Alert{
			Code:      AlertCryptoOverweight,
			Severity:  SeverityWarning,
			Type:      domain.AssetTypeCrypto,
			Current:   crypto,
			Threshold: limits.MaxCrypto,
		})
	}

	equity := summary.Share(domain.AssetTypeEquity)
	if equity.LessThan(limits.MinEquity) {
		alerts = append(alerts, Alert{
			Code:      AlertEquityUnderweight,
			Severity:  SeverityInfo,
			Type:      domain.AssetTypeEquity,
			Current:   equity,
			Threshold: limits.MinEquity,
		})
	}

	cash := summary.Share(domain.AssetTypeCash)
	if cash.GreaterThan(policy.MaxCash) {
		alerts = append(alerts, Alert{
			Code:      AlertCashExcess,
			Severity:  SeverityInfo,
			Type:      domain.AssetTypeCash,
			Current:   cash,
			Threshold: policy.MaxCash,
		})
	}

	gold := summary.Share(domain.AssetTypeGold)
	if gold.LessThan(policy.MinGold) {
		alerts = append(alerts, Alert{
			Code:      AlertGoldUnderweight,
			Severity:  SeverityInfo,
			Type:      domain.AssetTypeGold,
			Current:   gold,
			Threshold: policy.MinGold,
		})
	}

	return alerts
}

// EvaluateComposition flags gaps in what the portfolio holds. An empty portfolio yields nothing.
func EvaluateComposition(summary *dashboard.Summary, policy Policy) []Alert {
	alerts := make([]Alert, 0)
	if !summary.TotalValue.IsPositive() {
		return alerts
	}

	for _, missing := range []struct {
		code AlertCode
		typ  domain.AssetType
	}{
		{AlertNoFundHolding, domain.AssetTypeFund},
		{AlertNoCurrencyHolding, domain.AssetTypeCurrency},
	} {
		if !summary.Share(missing.typ).IsPositive() {
			alerts = append(alerts, Alert{
				Code:      missing.code,
				Severity:  SeverityWarning,
				Type:      missing.typ,
				Current:   decimal.Zero,
				Threshold: decimal.Zero,
			})
		}
	}

	crypto := summary.Share(domain.AssetTypeCrypto)
	if crypto.GreaterThan(policy.MaxCryptoConcentration) {
		alerts = append(alerts, Alert{
			Code:      AlertCryptoConcentration,
			Severity:  SeverityWarning,
			Type:      domain.AssetTypeCrypto,
			Current:   crypto,
			Threshold: policy.MaxCryptoConcentration,
		})
	}

	if summary.TotalValue.LessThan(policy.MinTotalValue) {
		alerts = append(alerts, Alert{
			Code:      AlertLowTotalValue,
			Severity:  SeverityInfo,
			Current:   summary.TotalValue,
			Threshold: policy.MinTotalValue,
		})
	}

	return alerts
}

// EvaluateChange turns the latest day-over-day move into an alert.
// A nil change (fewer than two snapshots) yields nothing.
func EvaluateChange(latest *snapshot.Change, policy Policy) []Alert {
	alerts := make([]Alert, 0)
	if latest == nil {
		return alerts
	}

	switch pct := latest.Percentage; {
	case pct.LessThanOrEqual(policy.MaxDailyDrop):
		alerts = append(alerts, Alert{Code: AlertValueDrop, Severity: SeverityDanger, Current: pct, Threshold: policy.MaxDailyDrop})
	case pct.GreaterThanOrEqual(policy.MinDailyRise):
		alerts = append(alerts, Alert{Code: AlertValueRise, Severity: SeveritySuccess, Current: pct, Threshold: policy.MinDailyRise})
	}
	return alerts
}

// HistorySource supplies the snapshot history analysis
type HistorySource interface {
	Analyze(ctx context.Context) (*snapshot.Analysis, error)
}

// AdvisorService evaluates the live portfolio
type AdvisorService struct {
	Dashboard *dashboard.DashboardService
	History   HistorySource // Optional; nil skips day-over-day alerts
	Policy    Policy
	Profile   domain.RiskProfile // Used when the caller does not name one
}

// NewAdvisorService creates a new AdvisorService instance
func NewAdvisorService(dash *dashboard.DashboardService, history HistorySource, policy Policy, profile domain.RiskProfile) *AdvisorService {
	return &AdvisorService{
		Dashboard: dash,
		History:   history,
		Policy:    policy,
		Profile:   profile,
	}
}

// GetAlerts evaluates the current summary and the latest recorded move.
// An empty profile selects the default one. An empty portfolio yields only EMPTY_PORTFOLIO.
func (s *AdvisorService) GetAlerts(ctx context.Context, profile domain.RiskProfile) ([]Alert, error) {
	if profile == "" {
		profile = s.Profile
	}

	summary, err := s.Dashboard.GetSummary(ctx)
	if err != nil {
		return nil, err
	}
	if !summary.TotalValue.IsPositive() {
		return Evaluate(summary, profile, s.Policy), nil
	}

	alerts := Evaluate(summary, profile, s.Policy)
	alerts = append(alerts, EvaluateComposition(summary, s.Policy)...)

	if s.History != nil {
		analysis, err := s.History.Analyze(ctx)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, EvaluateChange(analysis.Latest, s.Policy)...)
	}
	return alerts, nil
}
