// Package alerts scans a computed state for anomalies. Detection is strictly
// read-only: alerts never block or alter snapshot assembly, because the
// product must still produce a best-effort forecast from messy data.
package alerts

import (
	"fmt"

	"github.com/fbonnet/fiscal-forecast/internal/domain"
	"github.com/fbonnet/fiscal-forecast/internal/rules"
	"github.com/fbonnet/fiscal-forecast/pkg/money"
	"go.uber.org/zap"
)

// excessiveContributionsBps is the contributions-to-result ratio above which
// the forecast is flagged (0.60).
const excessiveContributionsBps = 6000

// Detector scans computation results for anomalies.
type Detector struct {
	logger *zap.Logger
}

// NewDetector creates an alert detector with the given logger.
// If logger is nil, it will use a no-op logger to prevent panics.
func NewDetector(logger *zap.Logger) *Detector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Detector{logger: logger}
}

// Detect returns all anomalies for one computation: the warnings the rule
// engine surfaced while computing, plus the post-computation scans.
func (d *Detector) Detect(result *rules.Result) []domain.Alert {
	alerts := make([]domain.Alert, 0, len(result.Warnings)+2)
	alerts = append(alerts, result.Warnings...)

	if result.RegularizationTotal < 0 {
		trigger := result.RegularizationTotal
		alerts = append(alerts, domain.Alert{
			Code:         domain.AlertNegativeRegularization,
			Severity:     domain.SeverityInfo,
			Message:      fmt.Sprintf("prior-year adjustment is negative (%s): a refund is expected", money.FormatEUR(trigger)),
			TriggerValue: &trigger,
		})
	}

	if alert := d.excessiveContributions(result); alert != nil {
		alerts = append(alerts, *alert)
	}

	d.logger.Debug("alert scan complete",
		zap.String("op", "alerts.Detect"),
		zap.Int("alerts", len(alerts)),
	)
	return alerts
}

// excessiveContributions flags a contributions-to-result ratio above 60%,
// which usually means the activity result is too small for the declared
// contribution base.
func (d *Detector) excessiveContributions(result *rules.Result) *domain.Alert {
	profit := result.Bases.RevenueHT - result.Bases.DeductibleExpenses
	if profit <= 0 {
		return nil
	}
	var contributions int64
	for _, line := range result.Taxes.URSSAF {
		contributions += line.Amount
	}
	for _, line := range result.Taxes.IRCEC {
		contributions += line.Amount
	}
	ratio := money.RatioBps(contributions, profit)
	if ratio <= excessiveContributionsBps {
		return nil
	}
	threshold := int64(excessiveContributionsBps)
	return &domain.Alert{
		Code:           domain.AlertExcessiveContributions,
		Severity:       domain.SeverityWarning,
		Message:        fmt.Sprintf("social contributions are %s of the activity result", money.FormatBps(ratio)),
		TriggerValue:   &ratio,
		ThresholdValue: &threshold,
	}
}
