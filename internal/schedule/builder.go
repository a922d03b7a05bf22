// Package schedule turns computed tax line items into a dated, status-tagged
// payment schedule. Events are deterministic: sorted by due date with an
// organization-priority tie-break, and realized payments reduce computed
// provisions instead of duplicating them.
package schedule

import (
	"fmt"
	"sort"
	"time"

	"github.com/fbonnet/fiscal-forecast/internal/domain"
	"github.com/fbonnet/fiscal-forecast/internal/ledger"
	"github.com/fbonnet/fiscal-forecast/internal/rules"
	"github.com/fbonnet/fiscal-forecast/pkg/constants"
	"github.com/fbonnet/fiscal-forecast/pkg/money"
	"go.uber.org/zap"
)

// Builder assembles payment schedules.
type Builder struct {
	logger *zap.Logger
}

// NewBuilder creates a schedule builder with the given logger.
// If logger is nil, it will use a no-op logger to prevent panics.
func NewBuilder(logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{logger: logger}
}

// Build produces the dated payment schedule for one computed operation.
func (b *Builder) Build(op *domain.Operation, ctx *domain.FiscalContext, result *rules.Result, occurrences []ledger.Occurrence) ([]domain.ScheduleEvent, error) {
	now, err := ctx.Clock()
	if err != nil {
		return nil, domain.NewInvalidOperation(op.ID, fmt.Sprintf("invalid now timestamp %q", ctx.Now))
	}

	var events []domain.ScheduleEvent
	events = append(events, b.socialProvisions(op.Year, ctx.UserStatus, result.Taxes.URSSAF)...)
	events = append(events, b.ircecProvision(op.Year, result.Taxes.IRCEC)...)
	events = append(events, b.vatProvisions(op.Year, result.Taxes.VAT)...)
	events = append(events, b.irBalance(op.Year, result.Taxes.IR)...)

	events = reduceByRealized(events, result.Realized)
	events = append(events, realizedEvents(occurrences)...)

	for i := range events {
		due, err := time.Parse(constants.DateLayout, events[i].Date)
		if err != nil {
			return nil, domain.NewInvalidOperation(op.ID, fmt.Sprintf("invalid schedule date %q", events[i].Date))
		}
		if !due.After(now) {
			events[i].Status = domain.StatusLocked
		} else {
			events[i].Status = domain.StatusPending
		}
	}

	sort.SliceStable(events, func(i, j int) bool {
		if events[i].Date != events[j].Date {
			return events[i].Date < events[j].Date
		}
		pi := domain.OrganizationPriority(events[i].Organization, events[i].Category)
		pj := domain.OrganizationPriority(events[j].Organization, events[j].Category)
		if pi != pj {
			return pi < pj
		}
		return events[i].Label < events[j].Label
	})

	b.logger.Debug("schedule built",
		zap.String("op", "schedule.Build"),
		zap.Int("events", len(events)),
	)
	return events, nil
}

// socialProvisions spreads the URSSAF total over the legal declaration
// rhythm: monthly payroll deadlines for a SASU, quarterly declarations for
// independents, each due shortly after its period.
func (b *Builder) socialProvisions(year int, status domain.UserStatus, lines []domain.TaxLineItem) []domain.ScheduleEvent {
	total := lineTotal(lines)
	if total <= 0 {
		return nil
	}
	codes := lineCodes(lines)

	if status == domain.StatusSASU {
		return spreadEvents(total, 12, func(i int, amount int64) domain.ScheduleEvent {
			return domain.ScheduleEvent{
				Date:            dueDate(year, i+1, 15),
				Label:           fmt.Sprintf("Cotisations URSSAF %02d/%d", i+1, year),
				Amount:          amount,
				Organization:    domain.OrgURSSAF,
				Category:        domain.CategorySocial,
				Type:            domain.EventProvision,
				Confidence:      domain.ConfidenceEstimated,
				SourceLineCodes: codes,
			}
		})
	}

	return spreadEvents(total, 4, func(i int, amount int64) domain.ScheduleEvent {
		return domain.ScheduleEvent{
			Date:            dueDate(year, (i+1)*3, 5),
			Label:           fmt.Sprintf("Cotisations URSSAF T%d %d", i+1, year),
			Amount:          amount,
			Organization:    domain.OrgURSSAF,
			Category:        domain.CategorySocial,
			Type:            domain.EventProvision,
			Confidence:      domain.ConfidenceEstimated,
			SourceLineCodes: codes,
		}
	})
}

// ircecProvision emits the single yearly RAAP call.
func (b *Builder) ircecProvision(year int, lines []domain.TaxLineItem) []domain.ScheduleEvent {
	total := lineTotal(lines)
	if total <= 0 {
		return nil
	}
	return []domain.ScheduleEvent{{
		Date:            fmt.Sprintf("%04d-12-15", year),
		Label:           fmt.Sprintf("Cotisation IRCEC RAAP %d", year),
		Amount:          total,
		Organization:    domain.OrgIRCEC,
		Category:        domain.CategorySocial,
		Type:            domain.EventProvision,
		Confidence:      domain.ConfidenceEstimated,
		SourceLineCodes: lineCodes(lines),
	}}
}

// vatProvisions emits one event per VAT period, due on the legal day of the
// month following the period.
func (b *Builder) vatProvisions(year int, lines []domain.TaxLineItem) []domain.ScheduleEvent {
	var events []domain.ScheduleEvent
	periods := len(lines)
	if periods == 0 {
		return nil
	}
	periodMonths := constants.MonthsPerYear / periods
	for i, line := range lines {
		if line.Amount <= 0 {
			continue
		}
		events = append(events, domain.ScheduleEvent{
			Date:            dueDate(year, (i+1)*periodMonths, constants.VATDueDay),
			Label:           line.Label,
			Amount:          line.Amount,
			Organization:    domain.OrgDGFIP,
			Category:        domain.CategoryVAT,
			Type:            domain.EventProvision,
			Confidence:      line.Confidence,
			SourceLineCodes: []string{line.Code},
		})
	}
	return events
}

// irBalance emits the income/corporate tax balance, due the September
// following the fiscal year.
func (b *Builder) irBalance(year int, lines []domain.TaxLineItem) []domain.ScheduleEvent {
	total := lineTotal(lines)
	if total <= 0 {
		return nil
	}
	return []domain.ScheduleEvent{{
		Date:            fmt.Sprintf("%04d-09-15", year+1),
		Label:           fmt.Sprintf("Solde impot %d", year),
		Amount:          total,
		Organization:    domain.OrgDGFIP,
		Category:        domain.CategoryFiscal,
		Type:            domain.EventBalance,
		Confidence:      domain.ConfidenceEstimated,
		SourceLineCodes: lineCodes(lines),
	}}
}

// reduceByRealized subtracts user-entered realized payments from the computed
// provisions of the same organization and line category, earliest events
// first, so realized payments reduce rather than duplicate provisions.
func reduceByRealized(events []domain.ScheduleEvent, realized map[rules.RealizedKey]int64) []domain.ScheduleEvent {
	remaining := make(map[rules.RealizedKey]int64, len(realized))
	for key, amount := range realized {
		if amount > 0 {
			remaining[key] = amount
		}
	}
	if len(remaining) == 0 {
		return events
	}

	sort.SliceStable(events, func(i, j int) bool { return events[i].Date < events[j].Date })
	reduced := events[:0]
	for _, ev := range events {
		key := rules.RealizedKey{Org: ev.Organization, Category: ev.Category}
		if credit := remaining[key]; credit > 0 {
			cut := money.Min(credit, ev.Amount)
			ev.Amount -= cut
			remaining[key] -= cut
		}
		if ev.Amount > 0 {
			reduced = append(reduced, ev)
		}
	}
	return reduced
}

// realizedEvents turns realized TAX_SOCIAL occurrences into CERTIFIED
// schedule events at their own dates. Negative regularizations stay in the
// schedule so the timeline shows the expected refund.
func realizedEvents(occurrences []ledger.Occurrence) []domain.ScheduleEvent {
	var events []domain.ScheduleEvent
	for _, occ := range occurrences {
		if occ.Nature != domain.NatureTaxSocial {
			continue
		}
		org, ok := rules.TaxOrganization(occ.Category)
		if !ok {
			continue
		}
		eventType := domain.EventProvision
		if rules.IsRegularization(occ.Category) {
			eventType = domain.EventRegularization
		}
		events = append(events, domain.ScheduleEvent{
			Date:            occ.Date.Format(constants.DateLayout),
			Label:           occ.Label,
			Amount:          occ.AmountTTC,
			Organization:    org,
			Category:        rules.TaxLineCategory(occ.Category),
			Type:            eventType,
			Confidence:      domain.ConfidenceCertified,
			SourceLineCodes: []string{occ.ID},
		})
	}
	return events
}

// spreadEvents splits a total over n events, pushing the rounding remainder
// into the last one so the sum is exact.
func spreadEvents(total int64, n int, build func(i int, amount int64) domain.ScheduleEvent) []domain.ScheduleEvent {
	events := make([]domain.ScheduleEvent, 0, n)
	share := total / int64(n)
	for i := 0; i < n; i++ {
		amount := share
		if i == n-1 {
			amount = total - share*int64(n-1)
		}
		events = append(events, build(i, amount))
	}
	return events
}

func lineTotal(lines []domain.TaxLineItem) int64 {
	var total int64
	for _, line := range lines {
		total += line.Amount
	}
	return total
}

func lineCodes(lines []domain.TaxLineItem) []string {
	codes := make([]string, 0, len(lines))
	for _, line := range lines {
		codes = append(codes, line.Code)
	}
	return codes
}

// dueDate returns the payment date: the given day of the month following the
// given 1-based period-end month, rolling into the next year past December.
func dueDate(year, periodEndMonth, day int) string {
	t := time.Date(year, time.Month(periodEndMonth+1), day, 0, 0, 0, 0, time.UTC)
	return t.Format(constants.DateLayout)
}
