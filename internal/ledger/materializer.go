// Package ledger expands recurring entries into dated occurrences and
// aggregates them into the monthly ledger. Materialization is a pure
// function of the operation and context; it owns no state and performs no
// I/O beyond debug logging.
package ledger

import (
	"fmt"
	"time"

	"github.com/fbonnet/fiscal-forecast/internal/domain"
	"github.com/fbonnet/fiscal-forecast/pkg/constants"
	"github.com/fbonnet/fiscal-forecast/pkg/datetime"
	"github.com/fbonnet/fiscal-forecast/pkg/money"
	"go.uber.org/zap"
)

// Occurrence is one materialized, dated instance of an entry. It is immutable
// once produced; downstream stages only ever read it.
type Occurrence struct {
	ID        string
	EntryID   string
	Nature    domain.EntryNature
	Scope     domain.Scope
	Label     string
	Category  string
	Date      time.Time
	AmountTTC int64
	AmountHT  int64
	AmountVAT int64
	VATRate   int64
}

// Materializer expands and aggregates entries.
type Materializer struct {
	logger *zap.Logger
}

// NewMaterializer creates a materializer with the given logger.
// If logger is nil, it will use a no-op logger to prevent panics.
func NewMaterializer(logger *zap.Logger) *Materializer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Materializer{logger: logger}
}

// Materialize expands every entry of the operation into dated occurrences and
// aggregates them into the monthly ledger for the operation's year.
func (m *Materializer) Materialize(op *domain.Operation, ctx *domain.FiscalContext) ([]Occurrence, *domain.LedgerFinal, error) {
	var occurrences []Occurrence
	for i := range op.Entries {
		entry := &op.Entries[i]
		expanded, err := m.expandEntry(op, ctx, entry)
		if err != nil {
			return nil, nil, err
		}
		occurrences = append(occurrences, expanded...)
	}

	final := newLedgerFinal()
	for _, occ := range occurrences {
		aggregate(final, occ)
	}
	return occurrences, final, nil
}

// expandEntry generates the dated occurrences for one entry according to its
// periodicity. Monthly and quarterly entries never project backwards: the
// first occurrence is the entry's own date, so a monthly entry dated in May
// yields nothing for January through April.
func (m *Materializer) expandEntry(op *domain.Operation, ctx *domain.FiscalContext, entry *domain.Entry) ([]Occurrence, error) {
	startDate, err := entry.ParsedDate()
	if err != nil {
		return nil, domain.NewInvalidOperation(op.ID, fmt.Sprintf("entry %s: invalid date %q", entry.ID, entry.Date))
	}

	if startDate.Year() != op.Year {
		m.logger.Debug("skipping entry outside the operation year",
			zap.String("op", "ledger.Materialize"),
			zap.String("entry", entry.ID),
			zap.Int("year", startDate.Year()),
		)
		return nil, nil
	}

	var step int
	switch entry.Periodicity {
	case domain.PeriodicityYearly:
		step = 0
	case domain.PeriodicityMonthly:
		step = 1
	case domain.PeriodicityQuarterly:
		step = constants.MonthsPerQuarter
	default:
		return nil, domain.NewInvalidOperation(op.ID, fmt.Sprintf("entry %s: invalid periodicity %q", entry.ID, entry.Periodicity))
	}

	ht, vat, err := m.splitAmounts(op, ctx, entry)
	if err != nil {
		return nil, err
	}

	if step == 0 {
		return []Occurrence{makeOccurrence(entry, entry.ID, startDate, ht, vat)}, nil
	}

	var occurrences []Occurrence
	for i := 0; ; i++ {
		date := datetime.OffsetMonthClamped(startDate, i*step)
		if date.Year() != op.Year {
			break
		}
		id := fmt.Sprintf("%s-%d", entry.ID, i+1)
		occurrences = append(occurrences, makeOccurrence(entry, id, date, ht, vat))
	}
	return occurrences, nil
}

// splitAmounts resolves the HT/VAT split for one entry. A fully supplied
// triple is verified within the cent tolerance and kept as-is; otherwise the
// split is derived from the TTC amount and the rate.
func (m *Materializer) splitAmounts(op *domain.Operation, ctx *domain.FiscalContext, entry *domain.Entry) (ht, vat int64, err error) {
	if entry.AmountHT != nil && entry.AmountVAT != nil {
		ht, vat = *entry.AmountHT, *entry.AmountVAT
		if money.Abs(ht+vat-entry.AmountTTC) > constants.CentsTolerance {
			return 0, 0, domain.NewIncoherentVATAmounts(op.ID, entry.ID, ht, vat, entry.AmountTTC)
		}
		// Absorb a one-cent drift into HT so the ledger identity holds.
		ht = entry.AmountTTC - vat
		return ht, vat, nil
	}

	rate := entry.VATRate
	if rate == 0 && ctx.Options.EstimateMode && entry.Scope == domain.ScopePro {
		rate = ctx.Options.DefaultVATRate
	}
	ht, vat = money.SplitVAT(entry.AmountTTC, rate)
	return ht, vat, nil
}

func makeOccurrence(entry *domain.Entry, id string, date time.Time, ht, vat int64) Occurrence {
	return Occurrence{
		ID:        id,
		EntryID:   entry.ID,
		Nature:    entry.Nature,
		Scope:     entry.Scope,
		Label:     entry.Label,
		Category:  entry.Category,
		Date:      date,
		AmountTTC: entry.AmountTTC,
		AmountHT:  ht,
		AmountVAT: vat,
		VATRate:   entry.VATRate,
	}
}

func newLedgerFinal() *domain.LedgerFinal {
	final := &domain.LedgerFinal{}
	for i := range final.ByMonth {
		final.ByMonth[i] = domain.MonthLedger{
			Month:              datetime.FrenchMonthName(i + 1),
			ExpensesByCategory: make(map[string]int64),
		}
	}
	return final
}

// aggregate folds one occurrence into its calendar month. Transfers move
// money between the user's own accounts and have no ledger effect. VAT only
// counts for professional-scope flows: collected on income, deductible on
// professional expenses.
func aggregate(final *domain.LedgerFinal, occ Occurrence) {
	month := &final.ByMonth[datetime.MonthIndex(occ.Date)-1]
	switch occ.Nature {
	case domain.NatureIncome:
		month.Income += occ.AmountTTC
		if occ.Scope == domain.ScopePro {
			month.VATCollected += occ.AmountVAT
		}
	case domain.NatureExpensePro:
		month.ExpensesByCategory[occ.Category] += occ.AmountTTC
		month.VATDeductible += occ.AmountVAT
	case domain.NatureExpensePerso:
		month.ExpensesByCategory[occ.Category] += occ.AmountTTC
	case domain.NatureTaxSocial:
		month.ExpensesByCategory[occ.Category] += occ.AmountTTC
	case domain.NatureTransfer:
		// Neutral by definition.
	}
}
