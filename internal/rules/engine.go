package rules

import (
	"fmt"

	"github.com/fbonnet/fiscal-forecast/internal/domain"
	"github.com/fbonnet/fiscal-forecast/internal/ledger"
	"github.com/fbonnet/fiscal-forecast/pkg/money"
	"go.uber.org/zap"
)

// Result is the full outcome of applying a ruleset to a materialized
// operation. Warnings are non-fatal anomalies surfaced during computation;
// they feed the alert detector and never abort the forecast.
type Result struct {
	Ruleset             *Ruleset
	Bases               domain.Bases
	Taxes               domain.Taxes
	Warnings            []domain.Alert
	Realized            map[RealizedKey]int64
	RegularizationTotal int64
	FranchiseCeiling    int64
}

// Engine applies rulesets to ledgers.
type Engine struct {
	logger *zap.Logger
}

// NewEngine creates a rule engine with the given logger.
// If logger is nil, it will use a no-op logger to prevent panics.
func NewEngine(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{logger: logger}
}

// totals accumulates the fiscal aggregates walked from the occurrences.
type totals struct {
	revenueTTC     int64
	revenueHT      int64
	revenueByKind  map[RevenueKind]int64
	deductibleHT   int64
	realized       map[RealizedKey]int64
	regularization int64
}

// Compute selects the ruleset for the context and applies it to the
// materialized occurrences and ledger.
func (e *Engine) Compute(op *domain.Operation, ctx *domain.FiscalContext, occurrences []ledger.Occurrence, final *domain.LedgerFinal) (*Result, error) {
	rs, err := Select(ctx)
	if err != nil {
		return nil, err
	}

	agg, err := e.walk(occurrences)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Ruleset:             rs,
		Realized:            agg.realized,
		RegularizationTotal: agg.regularization,
		FranchiseCeiling:    franchiseCeiling(rs, agg.revenueByKind),
	}
	result.Bases.RevenueTTC = agg.revenueTTC
	result.Bases.RevenueHT = agg.revenueHT
	result.Bases.DeductibleExpenses = agg.deductibleHT

	switch ctx.UserStatus {
	case domain.StatusSASU:
		e.computeCorporate(rs, ctx, agg, result)
	default:
		e.computeIndependent(rs, ctx, agg, result)
	}

	frequency := op.VATPaymentFrequency
	if frequency != domain.VATMonthly && frequency != domain.VATQuarterly {
		frequency = ctx.VATRegime
	}
	result.Taxes.VAT = computeVAT(rs, frequency, final, op.VATCarryover)

	e.watchFranchiseThreshold(rs, result)

	e.logger.Debug("rule engine computed",
		zap.String("op", "rules.Compute"),
		zap.Int("year", rs.Year),
		zap.String("status", string(rs.Status)),
		zap.Int64("revenueHt", agg.revenueHT),
		zap.Int("warnings", len(result.Warnings)),
	)
	return result, nil
}

// walk accumulates the totals, rejecting any professional category that maps
// to no fiscal line.
func (e *Engine) walk(occurrences []ledger.Occurrence) (*totals, error) {
	agg := &totals{
		revenueByKind: make(map[RevenueKind]int64),
		realized:      make(map[RealizedKey]int64),
	}
	for _, occ := range occurrences {
		kind, err := MapCategory(occ.Nature, occ.Scope, occ.Category)
		if err != nil {
			return nil, err
		}
		switch kind {
		case KindRevenue:
			revKind, err := MapRevenueKind(occ.Category)
			if err != nil {
				return nil, err
			}
			agg.revenueByKind[revKind] += occ.AmountHT
			agg.revenueTTC += occ.AmountTTC
			agg.revenueHT += occ.AmountHT
		case KindExpenseDeductible:
			agg.deductibleHT += occ.AmountHT
		case KindRealizedTax:
			org, _ := TaxOrganization(occ.Category)
			agg.realized[RealizedKey{Org: org, Category: TaxLineCategory(occ.Category)}] += occ.AmountTTC
		case KindRegularization:
			agg.regularization += occ.AmountTTC
		case KindExpensePersonal:
			// Personal flows never reach a fiscal base.
		}
	}
	return agg, nil
}

// computeIndependent handles the freelance and artist-author statuses.
func (e *Engine) computeIndependent(rs *Ruleset, ctx *domain.FiscalContext, agg *totals, result *Result) {
	profit := agg.revenueHT - agg.deductibleHT

	social := computeSocial(rs, ctx.Options.SolverMode, profit, agg.revenueByKind, e.logger)
	result.Bases.SocialBase = social.Base
	result.Taxes.URSSAF = social.Lines
	if social.FellBack {
		result.Warnings = append(result.Warnings, domain.Alert{
			Code:     domain.AlertSolverDivergence,
			Severity: domain.SeverityWarning,
			Message:  fmt.Sprintf("social solver hit the iteration cap after %d rounds; approximate rates applied", social.Iterations),
		})
	}

	if ctx.UserStatus == domain.StatusArtisteAuteur {
		result.Taxes.IRCEC = computeIRCEC(rs, social.Base)
	}

	var netTaxable int64
	if rs.FiscalRegime == domain.RegimeMicro {
		netTaxable = microNetTaxable(rs, agg.revenueByKind)
	} else {
		netTaxable = profit - social.Total
	}
	result.Bases.NetTaxable = netTaxable

	if rs.FiscalRegime == domain.RegimeMicro && ctx.Options.VersementLiberatoire {
		result.Taxes.IR = computeVersementLiberatoire(rs, agg.revenueByKind)
	} else {
		result.Taxes.IR = computeIR(rs, netTaxable, ctx.Household.Parts)
	}
}

// computeCorporate handles the SASU cascade.
func (e *Engine) computeCorporate(rs *Ruleset, ctx *domain.FiscalContext, agg *totals, result *Result) {
	cascade := computeSASU(rs, &ctx.Options, agg.revenueHT-agg.deductibleHT)

	result.Bases.SocialBase = cascade.Gross
	result.Bases.NetTaxable = cascade.NetTaxable
	result.Bases.Distributable = cascade.Distributable
	result.Taxes.URSSAF = cascade.SocialLines

	result.Taxes.IR = append(result.Taxes.IR, cascade.ISLines...)
	result.Taxes.IR = append(result.Taxes.IR, computeIR(rs, cascade.NetTaxable, ctx.Household.Parts)...)
	result.Taxes.IR = append(result.Taxes.IR, cascade.DividendLines...)

	if cascade.DividendsClamped {
		requested := ctx.Options.RequestedDividends
		distributable := cascade.Distributable
		result.Warnings = append(result.Warnings, domain.Alert{
			Code:           domain.AlertInputInconsistent,
			Severity:       domain.SeverityWarning,
			Message:        fmt.Sprintf("requested dividends %s exceed the distributable result %s; clamped", money.FormatEUR(requested), money.FormatEUR(distributable)),
			TriggerValue:   &requested,
			ThresholdValue: &distributable,
		})
	}
}

// watchFranchiseThreshold emits an informative alert when a franchise-regime
// user approaches or exceeds the VAT franchise ceiling.
func (e *Engine) watchFranchiseThreshold(rs *Ruleset, result *Result) {
	if rs.VATRegime != domain.VATFranchise || result.FranchiseCeiling <= 0 {
		return
	}
	revenue := result.Bases.RevenueHT
	ceiling := result.FranchiseCeiling
	switch {
	case revenue >= ceiling:
		result.Warnings = append(result.Warnings, domain.Alert{
			Code:           domain.AlertVATFranchiseThreshold,
			Severity:       domain.SeverityWarning,
			Message:        fmt.Sprintf("annual revenue %s exceeds the VAT franchise ceiling %s", money.FormatEUR(revenue), money.FormatEUR(ceiling)),
			TriggerValue:   &revenue,
			ThresholdValue: &ceiling,
		})
	case revenue*10 >= ceiling*8:
		result.Warnings = append(result.Warnings, domain.Alert{
			Code:           domain.AlertVATFranchiseThreshold,
			Severity:       domain.SeverityInfo,
			Message:        fmt.Sprintf("annual revenue %s is within 20%% of the VAT franchise ceiling %s", money.FormatEUR(revenue), money.FormatEUR(ceiling)),
			TriggerValue:   &revenue,
			ThresholdValue: &ceiling,
		})
	}
}
