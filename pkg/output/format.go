// Package output provides utilities for formatting and displaying computed
// fiscal snapshots.
package output

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fbonnet/fiscal-forecast/internal/domain"
	"github.com/fbonnet/fiscal-forecast/internal/presenter"
	"github.com/fbonnet/fiscal-forecast/pkg/money"
)

// PrettyFormat outputs a human-readable rather than machine-readable view of
// the snapshot: the monthly ledger, the tax lines, the payment schedule, and
// the alerts.
func PrettyFormat(snap *domain.FiscalSnapshot, vm *presenter.DashboardViewModel) {
	fmt.Printf("--- Forecast %d (engine %s) ---\n", snap.Metadata.RulesetYear, snap.Metadata.EngineVersion)
	fmt.Printf("Hash: %s\n\n", snap.Metadata.FiscalHash)

	if vm != nil {
		fmt.Printf("Period %s: income %s | outflow %s | closing treasury %s\n",
			vm.Period.Value, money.FormatEUR(vm.Income), money.FormatEUR(vm.Outflow), money.FormatEUR(vm.ClosingTreasury))
		fmt.Printf("Provisions %s | safe to spend %s (%s)\n\n",
			money.FormatEUR(vm.Provisions), money.FormatEUR(vm.SafeToSpend), vm.SafeToSpendStatus)
	}

	fmt.Printf("Month      | Income        | Outflow       | VAT collected\n")
	fmt.Printf("_____      | ______        | _______       | _____________\n")
	for _, month := range snap.LedgerFinal.ByMonth {
		fmt.Printf("%-10s | %13s | %13s | %13s\n",
			month.Month, money.FormatEUR(month.Income), money.FormatEUR(month.Outflow()), money.FormatEUR(month.VATCollected))
	}

	fmt.Printf("\nTax lines:\n")
	for _, line := range snap.Taxes.All() {
		fmt.Printf("  %-24s %-8s %13s (base %s, %s)\n",
			line.Code, line.Organization, money.FormatEUR(line.Amount), money.FormatEUR(line.Base), money.FormatBps(line.Rate))
	}

	fmt.Printf("\nSchedule:\n")
	for _, ev := range snap.Schedule {
		fmt.Printf("  %s | %-8s | %-7s | %13s | %s\n",
			ev.Date, ev.Organization, ev.Status, money.FormatEUR(ev.Amount), ev.Label)
	}

	if len(snap.Alerts) > 0 {
		fmt.Printf("\nAlerts:\n")
		for _, alert := range snap.Alerts {
			fmt.Printf("  [%s] %s: %s\n", alert.Severity, alert.Code, alert.Message)
		}
	}
}

// CsvFormat outputs the payment schedule in comma-separated value format.
func CsvFormat(snap *domain.FiscalSnapshot) {
	fmt.Printf(`"date","organization","type","status","confidence","amount","label","sources"`)
	fmt.Printf("\n")
	for _, ev := range snap.Schedule {
		fmt.Printf(`"%s","%s","%s","%s","%s","%s","%s","%s"`,
			ev.Date, ev.Organization, ev.Type, ev.Status, ev.Confidence,
			money.FormatNumeric(ev.Amount), ev.Label, strings.Join(ev.SourceLineCodes, ";"))
		fmt.Printf("\n")
	}
}

// JSONFormat outputs the full snapshot as indented JSON, the structure
// consumed by client transports and caches.
func JSONFormat(snap *domain.FiscalSnapshot) error {
	payload, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize snapshot: %w", err)
	}
	fmt.Println(string(payload))
	return nil
}
