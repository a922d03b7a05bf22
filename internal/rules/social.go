package rules

import (
	"fmt"

	"github.com/fbonnet/fiscal-forecast/internal/domain"
	"github.com/fbonnet/fiscal-forecast/pkg/constants"
	"github.com/fbonnet/fiscal-forecast/pkg/money"
	"go.uber.org/zap"
)

// SocialResult is the outcome of the social-contribution computation.
type SocialResult struct {
	Base       int64
	Lines      []domain.TaxLineItem
	Total      int64
	Iterations int
	FellBack   bool
}

// componentLines applies every component rate to the base.
func componentLines(components []SocialComponent, base int64) ([]domain.TaxLineItem, int64) {
	lines := make([]domain.TaxLineItem, 0, len(components))
	var total int64
	for _, comp := range components {
		amount := money.ApplyBps(base, comp.Rate)
		lines = append(lines, domain.TaxLineItem{
			Code:         comp.Code,
			Label:        comp.Label,
			Base:         base,
			Rate:         comp.Rate,
			Amount:       amount,
			Organization: comp.Org,
			Category:     domain.CategorySocial,
			Confidence:   domain.ConfidenceEstimated,
		})
		total += amount
	}
	return lines, total
}

// solveApprox applies the published flat rates directly to the profit in a
// single pass.
func solveApprox(components []SocialComponent, profit int64) SocialResult {
	base := money.Max(profit, 0)
	lines, total := componentLines(components, base)
	return SocialResult{Base: base, Lines: lines, Total: total, Iterations: 1}
}

// solveIterative runs the bounded fixed-point iteration for contributions
// legally computed on income net of the contributions themselves: recompute
// base, then contributions, then net base, until the delta between successive
// contribution totals falls below the cent-level epsilon. On hitting the
// iteration cap it falls back to the approx result and reports the fallback;
// it never fails.
func solveIterative(components []SocialComponent, profit int64, logger *zap.Logger) SocialResult {
	if logger == nil {
		logger = zap.NewNop()
	}

	approx := solveApprox(components, profit)
	prevTotal := approx.Total
	for i := 1; i <= constants.SolverMaxIterations; i++ {
		base := money.Max(profit-prevTotal, 0)
		lines, total := componentLines(components, base)
		if money.Abs(total-prevTotal) <= constants.SolverEpsilonCents {
			logger.Debug("social solver converged",
				zap.String("op", "rules.solveIterative"),
				zap.Int("iterations", i),
				zap.Int64("total", total),
			)
			return SocialResult{Base: base, Lines: lines, Total: total, Iterations: i}
		}
		prevTotal = total
	}

	logger.Warn("social solver did not converge, falling back to approx",
		zap.String("op", "rules.solveIterative"),
		zap.Int("maxIterations", constants.SolverMaxIterations),
		zap.Int64("profit", profit),
	)
	approx.Iterations = constants.SolverMaxIterations
	approx.FellBack = true
	return approx
}

// computeSocial dispatches between the micro flat rates and the component
// solver according to the ruleset and the requested solver mode.
func computeSocial(rs *Ruleset, mode domain.SolverMode, profit int64, revenueByKind map[RevenueKind]int64, logger *zap.Logger) SocialResult {
	if rs.Social.MicroRates != nil {
		return microSocial(rs, revenueByKind)
	}

	if rs.Social.Iterative && mode != domain.SolverApprox {
		return solveIterative(rs.Social.Components, profit, logger)
	}
	return solveApprox(rs.Social.Components, profit)
}

// microSocial applies the flat micro-social rate per revenue kind to the
// corresponding revenue, with no iteration.
func microSocial(rs *Ruleset, revenueByKind map[RevenueKind]int64) SocialResult {
	var result SocialResult
	for _, kind := range []RevenueKind{RevenueSales, RevenueServices, RevenueBNC, RevenueRights} {
		revenue := revenueByKind[kind]
		if revenue <= 0 {
			continue
		}
		rate := rs.Social.MicroRates[kind]
		amount := money.ApplyBps(revenue, rate)
		result.Lines = append(result.Lines, domain.TaxLineItem{
			Code:         fmt.Sprintf("URSSAF_MICRO_%s", kindCode(kind)),
			Label:        fmt.Sprintf("Cotisations micro-sociales (%s)", kindLabel(kind)),
			Base:         revenue,
			Rate:         rate,
			Amount:       amount,
			Organization: domain.OrgURSSAF,
			Category:     domain.CategorySocial,
			Confidence:   domain.ConfidenceEstimated,
		})
		result.Total += amount
		result.Base += revenue
	}
	result.Iterations = 1
	return result
}

// computeIRCEC produces the RAAP supplementary pension line for
// artist-authors. Below the threshold no contribution is due; below the
// reduced ceiling the reduced rate applies.
func computeIRCEC(rs *Ruleset, base int64) []domain.TaxLineItem {
	if base < rs.IRCEC.Threshold {
		return nil
	}
	rate := rs.IRCEC.FullRate
	capApplied := false
	if base < rs.IRCEC.ReducedCeiling {
		rate = rs.IRCEC.ReducedRate
		capApplied = true
	}
	return []domain.TaxLineItem{{
		Code:         "IRCEC_RAAP",
		Label:        "Retraite complementaire RAAP",
		Base:         base,
		Rate:         rate,
		Amount:       money.ApplyBps(base, rate),
		Organization: domain.OrgIRCEC,
		Category:     domain.CategorySocial,
		Confidence:   domain.ConfidenceEstimated,
		CapApplied:   capApplied,
	}}
}

func kindCode(kind RevenueKind) string {
	switch kind {
	case RevenueSales:
		return "VENTE"
	case RevenueServices:
		return "SERVICE"
	case RevenueBNC:
		return "BNC"
	case RevenueRights:
		return "DROITS"
	}
	return "AUTRE"
}

func kindLabel(kind RevenueKind) string {
	switch kind {
	case RevenueSales:
		return "ventes"
	case RevenueServices:
		return "prestations de services"
	case RevenueBNC:
		return "activite liberale"
	case RevenueRights:
		return "droits d'auteur"
	}
	return "autre"
}
