// Package presenter provides pure read-side projections over finished
// fiscal snapshots. Presenters never touch raw entries; everything they show
// derives from one or two snapshots and the treasury anchor.
package presenter

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/fbonnet/fiscal-forecast/internal/domain"
	"github.com/fbonnet/fiscal-forecast/pkg/constants"
	"github.com/fbonnet/fiscal-forecast/pkg/money"
)

// PeriodType selects the dashboard aggregation window.
type PeriodType string

const (
	PeriodYear    PeriodType = "year"
	PeriodQuarter PeriodType = "quarter"
	PeriodMonth   PeriodType = "month"
)

// Period identifies one dashboard window: "2026", "2026-Q2", or "2026-04".
type Period struct {
	Type  PeriodType `json:"type"`
	Value string     `json:"value"`
}

// SafeToSpendStatus buckets.
const (
	StatusSafe   = "SAFE"
	StatusTendu  = "TENDU"
	StatusDanger = "DANGER"
)

// safeToSpend ratio tiers, in basis points of the closing treasury.
const (
	safeTierBps  = 3000
	tenduTierBps = 1000
)

// DashboardViewModel is the computed dashboard state for one period.
type DashboardViewModel struct {
	Period            Period `json:"period"`
	Income            int64  `json:"income"`
	Outflow           int64  `json:"outflow"`
	Balance           int64  `json:"balance"`
	ClosingTreasury   int64  `json:"closingTreasury"`
	Provisions        int64  `json:"provisions"`
	SafeToSpend       int64  `json:"safeToSpend"`
	SafeToSpendStatus string `json:"safeToSpendStatus"`
}

// DashboardPresenter projects one snapshot into per-period view models.
type DashboardPresenter struct {
	snap   *domain.FiscalSnapshot
	anchor domain.TreasuryAnchor
}

// NewDashboardPresenter creates a presenter over one snapshot and the
// treasury anchor its projections accumulate from.
func NewDashboardPresenter(snap *domain.FiscalSnapshot, anchor domain.TreasuryAnchor) *DashboardPresenter {
	return &DashboardPresenter{snap: snap, anchor: anchor}
}

// GetViewModel computes the dashboard numbers for one period. The closing
// treasury satisfies the recurrence closing(P) == closing(P-1) + net(P), and
// safeToSpend never exceeds the closing treasury.
func (p *DashboardPresenter) GetViewModel(period Period) (*DashboardViewModel, error) {
	year, startMonth, endMonth, err := resolvePeriod(period)
	if err != nil {
		return nil, err
	}
	if year != p.snap.Metadata.RulesetYear {
		return nil, fmt.Errorf("period year %d does not match snapshot year %d", year, p.snap.Metadata.RulesetYear)
	}

	vm := &DashboardViewModel{Period: period}
	for m := startMonth; m <= endMonth; m++ {
		month := &p.snap.LedgerFinal.ByMonth[m-1]
		vm.Income += month.Income
		vm.Outflow += month.Outflow()
	}
	vm.Balance = vm.Income - vm.Outflow
	vm.ClosingTreasury = p.closingTreasury(endMonth)
	vm.Provisions = p.scheduleTotalInMonths(year, startMonth, endMonth)

	now, err := time.Parse(constants.TimestampLayout, p.snap.Metadata.ComputedAt)
	if err != nil {
		return nil, fmt.Errorf("invalid computedAt timestamp: %w", err)
	}
	periodEnd := time.Date(year, time.Month(endMonth+1), 0, 0, 0, 0, 0, time.UTC)
	vm.SafeToSpend = vm.ClosingTreasury - p.lookAheadTotal(now, periodEnd)
	vm.SafeToSpendStatus = safeToSpendStatus(vm.SafeToSpend, vm.ClosingTreasury)
	return vm, nil
}

// closingTreasury accumulates net monthly flow from the anchor month to the
// requested month, in either direction, so the recurrence holds for every
// period of the year.
func (p *DashboardPresenter) closingTreasury(endMonth int) int64 {
	treasury := p.anchor.Amount
	switch {
	case endMonth > p.anchor.MonthIndex:
		for m := p.anchor.MonthIndex + 1; m <= endMonth; m++ {
			treasury += p.snap.LedgerFinal.ByMonth[m-1].Net()
		}
	case endMonth < p.anchor.MonthIndex:
		for m := p.anchor.MonthIndex; m > endMonth; m-- {
			treasury -= p.snap.LedgerFinal.ByMonth[m-1].Net()
		}
	}
	return treasury
}

// scheduleTotalInMonths sums schedule amounts due inside the period.
func (p *DashboardPresenter) scheduleTotalInMonths(year, startMonth, endMonth int) int64 {
	var total int64
	for _, ev := range p.snap.Schedule {
		due, err := time.Parse(constants.DateLayout, ev.Date)
		if err != nil {
			continue
		}
		if due.Year() != year {
			continue
		}
		m := int(due.Month())
		if m >= startMonth && m <= endMonth {
			total += ev.Amount
		}
	}
	return total
}

// lookAheadTotal sums outgoing schedule amounts due within the 30-day window
// after now, restricted to dates strictly after the period end so nothing
// already counted in the period's own outflow is subtracted twice. Negative
// events (expected refunds) are skipped: an upcoming refund must never raise
// safeToSpend above the closing treasury.
func (p *DashboardPresenter) lookAheadTotal(now, periodEnd time.Time) int64 {
	horizon := now.AddDate(0, 0, constants.SafeToSpendWindowDays)
	var total int64
	for _, ev := range p.snap.Schedule {
		if ev.Amount <= 0 {
			continue
		}
		due, err := time.Parse(constants.DateLayout, ev.Date)
		if err != nil {
			continue
		}
		if !due.After(periodEnd) || !due.After(now) || due.After(horizon) {
			continue
		}
		total += ev.Amount
	}
	return total
}

func safeToSpendStatus(safeToSpend, closingTreasury int64) string {
	if closingTreasury <= 0 || safeToSpend <= 0 {
		return StatusDanger
	}
	ratio := money.RatioBps(safeToSpend, closingTreasury)
	switch {
	case ratio >= safeTierBps:
		return StatusSafe
	case ratio >= tenduTierBps:
		return StatusTendu
	default:
		return StatusDanger
	}
}

// resolvePeriod parses a period value into its year and 1-based month range.
func resolvePeriod(period Period) (year, startMonth, endMonth int, err error) {
	switch period.Type {
	case PeriodYear:
		year, err = strconv.Atoi(period.Value)
		if err != nil {
			return 0, 0, 0, fmt.Errorf("invalid year period %q", period.Value)
		}
		return year, 1, 12, nil
	case PeriodQuarter:
		parts := strings.SplitN(period.Value, "-Q", 2)
		if len(parts) != 2 {
			return 0, 0, 0, fmt.Errorf("invalid quarter period %q", period.Value)
		}
		year, err = strconv.Atoi(parts[0])
		if err != nil {
			return 0, 0, 0, fmt.Errorf("invalid quarter period %q", period.Value)
		}
		q, err := strconv.Atoi(parts[1])
		if err != nil || q < 1 || q > 4 {
			return 0, 0, 0, fmt.Errorf("invalid quarter period %q", period.Value)
		}
		return year, q*3 - 2, q * 3, nil
	case PeriodMonth:
		t, err := time.Parse("2006-01", period.Value)
		if err != nil {
			return 0, 0, 0, fmt.Errorf("invalid month period %q", period.Value)
		}
		m := int(t.Month())
		return t.Year(), m, m, nil
	default:
		return 0, 0, 0, fmt.Errorf("invalid period type %q", period.Type)
	}
}
