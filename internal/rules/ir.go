package rules

import (
	"fmt"

	"github.com/fbonnet/fiscal-forecast/internal/domain"
	"github.com/fbonnet/fiscal-forecast/pkg/money"
)

// bracketTax runs a taxable amount through the marginal bracket schedule.
func bracketTax(brackets []Bracket, taxable int64) int64 {
	if taxable <= 0 {
		return 0
	}
	var total int64
	var lower int64
	for _, b := range brackets {
		upper := taxable
		if b.UpTo > 0 && upper > b.UpTo {
			upper = b.UpTo
		}
		if upper > lower {
			total += money.ApplyBps(upper-lower, b.Rate)
		}
		if b.UpTo == 0 || taxable <= b.UpTo {
			break
		}
		lower = b.UpTo
	}
	return total
}

// householdTax applies the family-quotient mechanism: the taxable income is
// divided by the household parts (hundredths), run through the brackets, and
// the per-part tax is multiplied back.
func householdTax(brackets []Bracket, taxable, partsHundredths int64) int64 {
	if partsHundredths <= 0 {
		partsHundredths = 100
	}
	perPart := money.RoundDiv(taxable*100, partsHundredths)
	taxPerPart := bracketTax(brackets, perPart)
	return money.RoundDiv(taxPerPart*partsHundredths, 100)
}

// computeIR produces the income tax line for a net taxable amount through the
// household-parts-adjusted bracket schedule.
func computeIR(rs *Ruleset, netTaxable, partsHundredths int64) []domain.TaxLineItem {
	amount := householdTax(rs.IR.Brackets, netTaxable, partsHundredths)
	return []domain.TaxLineItem{{
		Code:         "IR_BAREME",
		Label:        "Impot sur le revenu (bareme)",
		Base:         netTaxable,
		Rate:         money.RatioBps(amount, netTaxable),
		Amount:       amount,
		Organization: domain.OrgDGFIP,
		Category:     domain.CategoryFiscal,
		Confidence:   domain.ConfidenceEstimated,
		Formula:      fmt.Sprintf("quotient familial %d.%02d parts", partsHundredths/100, partsHundredths%100),
	}}
}

// computeVersementLiberatoire replaces the bracket IR with the flat
// per-revenue-kind rates of the micro-regime opt-in.
func computeVersementLiberatoire(rs *Ruleset, revenueByKind map[RevenueKind]int64) []domain.TaxLineItem {
	var lines []domain.TaxLineItem
	for _, kind := range []RevenueKind{RevenueSales, RevenueServices, RevenueBNC, RevenueRights} {
		revenue := revenueByKind[kind]
		if revenue <= 0 {
			continue
		}
		rate := rs.IR.VLRates[kind]
		lines = append(lines, domain.TaxLineItem{
			Code:         fmt.Sprintf("IR_VL_%s", kindCode(kind)),
			Label:        fmt.Sprintf("Versement liberatoire (%s)", kindLabel(kind)),
			Base:         revenue,
			Rate:         rate,
			Amount:       money.ApplyBps(revenue, rate),
			Organization: domain.OrgDGFIP,
			Category:     domain.CategoryFiscal,
			Confidence:   domain.ConfidenceEstimated,
		})
	}
	return lines
}

// microNetTaxable applies the micro-regime flat abatement per revenue kind,
// floored at the legal minimum abatement.
func microNetTaxable(rs *Ruleset, revenueByKind map[RevenueKind]int64) int64 {
	var net int64
	for kind, revenue := range revenueByKind {
		if revenue <= 0 {
			continue
		}
		abatement := money.ApplyBps(revenue, rs.IR.MicroAbatements[kind])
		if abatement < rs.IR.MinimumAbatement {
			abatement = money.Min(rs.IR.MinimumAbatement, revenue)
		}
		net += revenue - abatement
	}
	return net
}
