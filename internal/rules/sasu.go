package rules

import (
	"fmt"

	"github.com/fbonnet/fiscal-forecast/internal/domain"
	"github.com/fbonnet/fiscal-forecast/pkg/constants"
	"github.com/fbonnet/fiscal-forecast/pkg/money"
)

// sasuResult holds the corporate cascade outcome.
type sasuResult struct {
	Gross            int64
	Net              int64
	EmployerCost     int64
	SocialLines      []domain.TaxLineItem
	ISLines          []domain.TaxLineItem
	DividendLines    []domain.TaxLineItem
	Distributable    int64
	Dividends        int64
	DividendsClamped bool
	NetTaxable       int64
}

// computeSASU runs the remuneration/dividend cascade. total_charge goes
// forward from a requested gross; net_target inverse-solves the gross for a
// requested net. Requested dividends are clamped to the distributable result;
// clamping is reported, never fatal.
func computeSASU(rs *Ruleset, opts *domain.Options, profitBeforeRemuneration int64) sasuResult {
	var result sasuResult

	switch opts.RemunerationMode {
	case domain.RemunerationNetTarget:
		// gross = net / (1 - employeeRate)
		result.Gross = money.RoundDiv(opts.RemunerationNetTarget*constants.BpsDenominator, constants.BpsDenominator-rs.SASU.EmployeeRate)
	default:
		result.Gross = opts.RemunerationGross
	}
	if result.Gross < 0 {
		result.Gross = 0
	}

	employee := money.ApplyBps(result.Gross, rs.SASU.EmployeeRate)
	employer := money.ApplyBps(result.Gross, rs.SASU.EmployerRate)
	result.Net = result.Gross - employee
	result.EmployerCost = result.Gross + employer

	if result.Gross > 0 {
		result.SocialLines = []domain.TaxLineItem{
			{
				Code:         "URSSAF_PATRONALES",
				Label:        "Cotisations patronales",
				Base:         result.Gross,
				Rate:         rs.SASU.EmployerRate,
				Amount:       employer,
				Organization: domain.OrgURSSAF,
				Category:     domain.CategorySocial,
				Confidence:   domain.ConfidenceEstimated,
			},
			{
				Code:         "URSSAF_SALARIALES",
				Label:        "Cotisations salariales",
				Base:         result.Gross,
				Rate:         rs.SASU.EmployeeRate,
				Amount:       employee,
				Organization: domain.OrgURSSAF,
				Category:     domain.CategorySocial,
				Confidence:   domain.ConfidenceEstimated,
			},
		}
	}

	// Corporate result after the full remuneration cost, then IS with the
	// reduced rate up to the ceiling.
	taxableResult := money.Max(profitBeforeRemuneration-result.EmployerCost, 0)
	reduced := money.Min(taxableResult, rs.SASU.ISReducedCeiling)
	is := money.ApplyBps(reduced, rs.SASU.ISReducedRate)
	if taxableResult > rs.SASU.ISReducedCeiling {
		is += money.ApplyBps(taxableResult-rs.SASU.ISReducedCeiling, rs.SASU.ISRate)
	}
	if taxableResult > 0 {
		result.ISLines = []domain.TaxLineItem{{
			Code:         "IS",
			Label:        "Impot sur les societes",
			Base:         taxableResult,
			Rate:         money.RatioBps(is, taxableResult),
			Amount:       is,
			Organization: domain.OrgDGFIP,
			Category:     domain.CategoryFiscal,
			Confidence:   domain.ConfidenceEstimated,
			Formula:      fmt.Sprintf("taux reduit %s jusqu'a %d", money.FormatBps(rs.SASU.ISReducedRate), rs.SASU.ISReducedCeiling),
		}}
	}

	result.Distributable = money.Max(taxableResult-is, 0)
	result.Dividends = opts.RequestedDividends
	if result.Dividends > result.Distributable {
		result.Dividends = result.Distributable
		result.DividendsClamped = true
	}
	if result.Dividends < 0 {
		result.Dividends = 0
	}

	if result.Dividends > 0 {
		result.DividendLines = []domain.TaxLineItem{{
			Code:         "PFU_DIVIDENDES",
			Label:        "Prelevement forfaitaire unique sur dividendes",
			Base:         result.Dividends,
			Rate:         rs.SASU.PFURate,
			Amount:       money.ApplyBps(result.Dividends, rs.SASU.PFURate),
			Organization: domain.OrgDGFIP,
			Category:     domain.CategoryFiscal,
			Confidence:   domain.ConfidenceEstimated,
		}}
	}

	// Net remuneration enters the personal IR base after the salary abatement.
	result.NetTaxable = result.Net - money.ApplyBps(result.Net, rs.SASU.SalaryAbatement)
	return result
}
