// Package rules applies a year-specific rule-set to the materialized ledger
// to compute tax bases and line items. It contains the iterative
// social-contribution solver, the SASU remuneration/dividend split, the VAT
// period balances, and the household-adjusted income tax brackets.
package rules

import (
	"github.com/fbonnet/fiscal-forecast/internal/domain"
)

// Bracket is one marginal income tax bracket. UpTo is the inclusive upper
// bound of the bracket in cents; 0 means no upper bound.
type Bracket struct {
	UpTo int64
	Rate int64
}

// SocialComponent is one published social contribution line applied to the
// social base.
type SocialComponent struct {
	Code  string
	Label string
	Rate  int64
	Org   domain.Organization
}

// SocialTable holds the social-contribution parameters of a ruleset.
type SocialTable struct {
	// Components apply to the social base. For the micro regime the rates
	// are the flat revenue-kind rates and no iteration takes place.
	Components []SocialComponent
	// MicroRates maps a revenue kind to its flat micro-social rate.
	MicroRates map[RevenueKind]int64
	// Iterative marks regimes where contributions are legally computed on
	// income net of the contributions themselves.
	Iterative bool
}

// IRCECTable holds the artist-author supplementary pension (RAAP) parameters.
type IRCECTable struct {
	Threshold      int64 // no contribution below this base
	ReducedCeiling int64 // reduced rate applies below this base
	ReducedRate    int64
	FullRate       int64
}

// SASUTable holds the corporate cascade parameters.
type SASUTable struct {
	EmployerRate     int64
	EmployeeRate     int64
	SalaryAbatement  int64 // abatement on net remuneration before IR
	ISReducedRate    int64
	ISReducedCeiling int64
	ISRate           int64
	PFURate          int64
}

// IRTable holds the income tax parameters of a ruleset.
type IRTable struct {
	Brackets []Bracket
	// MicroAbatements maps a revenue kind to its micro-regime flat
	// abatement; MinimumAbatement floors the abatement amount.
	MicroAbatements   map[RevenueKind]int64
	MinimumAbatement  int64
	// VLRates maps a revenue kind to its versement liberatoire flat rate.
	VLRates map[RevenueKind]int64
	// SalaryAbatement applies to SASU net remuneration.
	SalaryAbatement int64
}

// VATTable holds the VAT parameters of a ruleset.
type VATTable struct {
	FranchiseCeilingServices int64
	FranchiseCeilingSales    int64
}

// Ruleset is the full parameter set selected for one computation.
type Ruleset struct {
	Year         int
	Status       domain.UserStatus
	FiscalRegime domain.FiscalRegime
	VATRegime    domain.VATRegime
	Social       SocialTable
	IRCEC        IRCECTable
	IR           IRTable
	VAT          VATTable
	SASU         SASUTable
}

// Select resolves the ruleset for the context, or fails with RulesetNotFound
// when the year is unknown or the status/regime combination is not supported.
func Select(ctx *domain.FiscalContext) (*Ruleset, error) {
	params, ok := yearParams[ctx.TaxYear]
	if !ok {
		return nil, domain.NewRulesetNotFound(ctx.TaxYear, ctx.UserStatus, ctx.FiscalRegime, ctx.VATRegime)
	}

	rs := &Ruleset{
		Year:         ctx.TaxYear,
		Status:       ctx.UserStatus,
		FiscalRegime: ctx.FiscalRegime,
		VATRegime:    ctx.VATRegime,
		IRCEC:        params.ircec,
		IR:           params.ir,
		VAT:          params.vat,
		SASU:         params.sasu,
	}

	switch ctx.UserStatus {
	case domain.StatusFreelance:
		if ctx.FiscalRegime == domain.RegimeMicro {
			rs.Social = SocialTable{MicroRates: params.microSocialRates}
		} else {
			rs.Social = SocialTable{Components: params.tnsComponents, Iterative: true}
		}
	case domain.StatusArtisteAuteur:
		// Artist-author contributions are withheld on the declared base;
		// the micro/real split only changes the IR abatement.
		rs.Social = SocialTable{Components: params.artistComponents}
	case domain.StatusSASU:
		if ctx.FiscalRegime == domain.RegimeMicro {
			// A company cannot be under the micro regime.
			return nil, domain.NewRulesetNotFound(ctx.TaxYear, ctx.UserStatus, ctx.FiscalRegime, ctx.VATRegime)
		}
		rs.Social = SocialTable{}
	default:
		return nil, domain.NewRulesetNotFound(ctx.TaxYear, ctx.UserStatus, ctx.FiscalRegime, ctx.VATRegime)
	}

	return rs, nil
}
