package main

import (
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/shopspring/decimal"

	"github.com/simaogato/portfoy-backend/internal/domain"
	"github.com/simaogato/portfoy-backend/internal/usecase/dashboard"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")).MarginTop(1)
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("244")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	actionColors = map[domain.ActionKind]lipgloss.Color{
		domain.ActionSell: lipgloss.Color("196"),
		domain.ActionBuy:  lipgloss.Color("42"),
		domain.ActionHold: lipgloss.Color("244"),
	}
)

// formatMoney renders an amount in the given currency, e.g. ₺1,500.00.
// Unknown currency codes fall back to the plain decimal.
func formatMoney(amount decimal.Decimal, currency string) string {
	cur := money.GetCurrency(currency)
	if cur == nil {
		return amount.StringFixed(2) + " " + currency
	}

	factor := decimal.New(1, int32(cur.Fraction))
	return money.New(amount.Mul(factor).Round(0).IntPart(), cur.Code).Display()
}

func formatPercent(p decimal.Decimal) string {
	return "%" + p.StringFixed(2)
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

func renderActions(t *table.Table, rows []domain.RebalanceRow, actionCol int) *table.Table {
	return t.StyleFunc(func(row, col int) lipgloss.Style {
		if row == table.HeaderRow {
			return headerStyle
		}
		if col == actionCol && row >= 0 && row < len(rows) {
			return cellStyle.Foreground(actionColors[rows[row].Action.Kind])
		}
		return cellStyle
	})
}

// renderReport prints the per-type and per-asset rows of a rebalance report
func renderReport(report *domain.RebalanceReport, currency string) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Toplam: " + formatMoney(report.TotalValue, currency)))
	b.WriteString("\n")

	types := newTable("Tür", "Değer", "Mevcut", "Hedef", "Fark", "İşlem Tutarı", "Aksiyon")
	for _, row := range report.PerType {
		types.Row(
			string(row.Type),
			formatMoney(row.CurrentValue, currency),
			formatPercent(row.CurrentPercentage),
			formatPercent(row.TargetPercentage),
			formatPercent(row.Difference),
			formatMoney(row.TradeAmount, currency),
			row.Action.Label(),
		)
	}
	b.WriteString(renderActions(types, report.PerType, 6).String())
	b.WriteString("\n")

	if len(report.PerAsset) > 0 {
		assets := newTable("Varlık", "Tür", "Değer", "Mevcut", "Hedef", "Fark", "Aksiyon")
		for _, row := range report.PerAsset {
			assets.Row(
				row.Name,
				string(row.Type),
				formatMoney(row.CurrentValue, currency),
				formatPercent(row.CurrentPercentage),
				formatPercent(row.TargetPercentage),
				formatPercent(row.Difference),
				row.Action.Label(),
			)
		}
		b.WriteString(renderActions(assets, report.PerAsset, 6).String())
	}

	return b.String()
}

func renderSummary(summary *dashboard.Summary, currency string) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("Toplam: %s | Varlık: %d | Risk: %.1f",
		formatMoney(summary.TotalValue, currency), summary.AssetCount, summary.RiskScore)))
	b.WriteString("\n")

	t := newTable("Tür", "Değer", "Pay", "Hedef")
	for _, d := range summary.Distribution {
		t.Row(string(d.Type), formatMoney(d.Value, currency), formatPercent(d.Percentage), formatPercent(d.Target))
	}
	b.WriteString(t.String())

	return b.String()
}

func renderProfiles(profiles []domain.RiskProfile) string {
	var b strings.Builder
	for _, p := range profiles {
		b.WriteString(titleStyle.Render(string(p)))
		b.WriteString("\n")

		t := newTable("Tür", "Hedef")
		for _, tt := range p.Targets() {
			t.Row(string(tt.Type), formatPercent(tt.Target))
		}
		b.WriteString(t.String())
		b.WriteString("\n")
	}
	return b.String()
}
