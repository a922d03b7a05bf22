package rules

import (
	"fmt"

	"github.com/fbonnet/fiscal-forecast/internal/domain"
	"github.com/fbonnet/fiscal-forecast/pkg/constants"
	"github.com/fbonnet/fiscal-forecast/pkg/datetime"
)

// computeVAT produces the per-period VAT balance lines from the monthly
// ledger: balance = collected - deductible - carryover. A negative balance
// becomes the next period's carryover credit, never an immediate refund.
// Under the franchise regime no VAT lines exist at all.
func computeVAT(rs *Ruleset, frequency domain.VATRegime, final *domain.LedgerFinal, carryover int64) []domain.TaxLineItem {
	if rs.VATRegime == domain.VATFranchise {
		return nil
	}

	periodMonths := 1
	if frequency == domain.VATQuarterly {
		periodMonths = constants.MonthsPerQuarter
	}

	var lines []domain.TaxLineItem
	credit := carryover
	for start := 0; start < constants.MonthsPerYear; start += periodMonths {
		var collected, deductible int64
		for m := start; m < start+periodMonths; m++ {
			collected += final.ByMonth[m].VATCollected
			deductible += final.ByMonth[m].VATDeductible
		}

		balance := collected - deductible - credit
		amount := balance
		credit = 0
		if balance < 0 {
			credit = -balance
			amount = 0
		}

		lines = append(lines, domain.TaxLineItem{
			Code:         vatPeriodCode(frequency, rs.Year, start),
			Label:        vatPeriodLabel(frequency, rs.Year, start),
			Base:         collected - deductible,
			Rate:         0,
			Amount:       amount,
			Organization: domain.OrgDGFIP,
			Category:     domain.CategoryVAT,
			Confidence:   domain.ConfidenceEstimated,
			Formula:      fmt.Sprintf("collectee %d - deductible %d - credit reporte", collected, deductible),
		})
	}
	return lines
}

func vatPeriodCode(regime domain.VATRegime, year, startMonth int) string {
	if regime == domain.VATQuarterly {
		return fmt.Sprintf("TVA_%d_T%d", year, startMonth/constants.MonthsPerQuarter+1)
	}
	return fmt.Sprintf("TVA_%d_M%02d", year, startMonth+1)
}

func vatPeriodLabel(regime domain.VATRegime, year, startMonth int) string {
	if regime == domain.VATQuarterly {
		return fmt.Sprintf("TVA trimestre %d %d", startMonth/constants.MonthsPerQuarter+1, year)
	}
	return fmt.Sprintf("TVA %s %d", datetime.FrenchMonthName(startMonth+1), year)
}

// franchiseCeiling returns the applicable franchise ceiling given the revenue
// mix: the sales ceiling only applies when sales dominate the revenue.
func franchiseCeiling(rs *Ruleset, revenueByKind map[RevenueKind]int64) int64 {
	sales := revenueByKind[RevenueSales]
	var services int64
	for kind, revenue := range revenueByKind {
		if kind != RevenueSales {
			services += revenue
		}
	}
	if sales > services {
		return rs.VAT.FranchiseCeilingSales
	}
	return rs.VAT.FranchiseCeilingServices
}
