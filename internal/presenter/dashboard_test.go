package presenter

import (
	"testing"

	"github.com/fbonnet/fiscal-forecast/internal/domain"
)

// dashboardSnapshot builds a snapshot with 40,000.00 monthly income and
// 15,000.00 monthly outflow, and one pending schedule event.
func dashboardSnapshot() *domain.FiscalSnapshot {
	snap := &domain.FiscalSnapshot{
		Metadata: domain.Metadata{
			RulesetYear: 2026,
			ComputedAt:  "2026-03-20T10:00:00Z",
		},
	}
	for i := range snap.LedgerFinal.ByMonth {
		snap.LedgerFinal.ByMonth[i].Income = 4_000_000
		snap.LedgerFinal.ByMonth[i].ExpensesByCategory = map[string]int64{"frais": 1_500_000}
	}
	snap.Schedule = []domain.ScheduleEvent{
		{
			Date:         "2026-04-05",
			Label:        "Cotisations URSSAF T1 2026",
			Amount:       600_000,
			Organization: domain.OrgURSSAF,
			Category:     domain.CategorySocial,
			Type:         domain.EventProvision,
			Status:       domain.StatusPending,
		},
	}
	return snap
}

func TestGetViewModelClosingTreasuryRecurrence(t *testing.T) {
	anchor := domain.TreasuryAnchor{Amount: 1_000_000, MonthIndex: 1}
	presenter := NewDashboardPresenter(dashboardSnapshot(), anchor)

	// closing(P) == closing(P-1) + net(P) for every month of the year.
	previous := anchor.Amount
	months := []string{"2026-02", "2026-03", "2026-04", "2026-05", "2026-06",
		"2026-07", "2026-08", "2026-09", "2026-10", "2026-11", "2026-12"}
	for i, value := range months {
		vm, err := presenter.GetViewModel(Period{Type: PeriodMonth, Value: value})
		if err != nil {
			t.Fatalf("GetViewModel(%s) error = %v", value, err)
		}
		expected := previous + vm.Balance
		if vm.ClosingTreasury != expected {
			t.Errorf("month %d closing = %d, expected %d", i+2, vm.ClosingTreasury, expected)
		}
		previous = vm.ClosingTreasury
	}
}

func TestGetViewModelBackwardFromAnchor(t *testing.T) {
	// Anchor at the end of June; January is resolved by walking backward.
	anchor := domain.TreasuryAnchor{Amount: 20_000_000, MonthIndex: 6}
	presenter := NewDashboardPresenter(dashboardSnapshot(), anchor)

	january, err := presenter.GetViewModel(Period{Type: PeriodMonth, Value: "2026-01"})
	if err != nil {
		t.Fatalf("GetViewModel() error = %v", err)
	}
	// Five months of 25,000.00 net flow separate January from the anchor.
	expected := int64(20_000_000 - 5*2_500_000)
	if january.ClosingTreasury != expected {
		t.Errorf("january closing = %d, expected %d", january.ClosingTreasury, expected)
	}
}

func TestGetViewModelSafeToSpend(t *testing.T) {
	anchor := domain.TreasuryAnchor{Amount: 1_000_000, MonthIndex: 1}
	presenter := NewDashboardPresenter(dashboardSnapshot(), anchor)

	// March period; the April URSSAF call falls within 30 days of the
	// computation clock and after the period end, so it reduces safeToSpend.
	vm, err := presenter.GetViewModel(Period{Type: PeriodMonth, Value: "2026-03"})
	if err != nil {
		t.Fatalf("GetViewModel() error = %v", err)
	}

	if vm.SafeToSpend != vm.ClosingTreasury-600_000 {
		t.Errorf("safeToSpend = %d, expected closing %d minus the pending 600000",
			vm.SafeToSpend, vm.ClosingTreasury)
	}
	if vm.SafeToSpend > vm.ClosingTreasury {
		t.Error("safeToSpend must never exceed the closing treasury")
	}
}

func TestGetViewModelSafeToSpendIgnoresRefunds(t *testing.T) {
	snap := dashboardSnapshot()
	snap.Metadata.ComputedAt = "2026-02-20T10:00:00Z"
	// A declared overpayment lands as a negative regularization inside the
	// 30-day window; it must not raise safeToSpend above the closing treasury.
	snap.Schedule = []domain.ScheduleEvent{
		{
			Date:         "2026-03-10",
			Label:        "Régularisation URSSAF 2025",
			Amount:       -50_000,
			Organization: domain.OrgURSSAF,
			Category:     domain.CategorySocial,
			Type:         domain.EventRegularization,
			Confidence:   domain.ConfidenceCertified,
			Status:       domain.StatusPending,
		},
	}
	anchor := domain.TreasuryAnchor{Amount: 1_000_000, MonthIndex: 1}
	presenter := NewDashboardPresenter(snap, anchor)

	vm, err := presenter.GetViewModel(Period{Type: PeriodMonth, Value: "2026-02"})
	if err != nil {
		t.Fatalf("GetViewModel() error = %v", err)
	}
	if vm.SafeToSpend != vm.ClosingTreasury {
		t.Errorf("safeToSpend = %d, expected %d: refunds are not spendable ahead of collection",
			vm.SafeToSpend, vm.ClosingTreasury)
	}
	if vm.SafeToSpend > vm.ClosingTreasury {
		t.Error("safeToSpend must never exceed the closing treasury")
	}
}

func TestGetViewModelYearAggregates(t *testing.T) {
	anchor := domain.TreasuryAnchor{Amount: 1_000_000, MonthIndex: 1}
	presenter := NewDashboardPresenter(dashboardSnapshot(), anchor)

	vm, err := presenter.GetViewModel(Period{Type: PeriodYear, Value: "2026"})
	if err != nil {
		t.Fatalf("GetViewModel() error = %v", err)
	}
	if vm.Income != 48_000_000 {
		t.Errorf("year income = %d, expected 48000000", vm.Income)
	}
	if vm.Outflow != 18_000_000 {
		t.Errorf("year outflow = %d, expected 18000000", vm.Outflow)
	}
	if vm.Provisions != 600_000 {
		t.Errorf("year provisions = %d, expected 600000", vm.Provisions)
	}
}

func TestGetViewModelWrongYear(t *testing.T) {
	presenter := NewDashboardPresenter(dashboardSnapshot(), domain.TreasuryAnchor{})
	if _, err := presenter.GetViewModel(Period{Type: PeriodYear, Value: "2025"}); err == nil {
		t.Error("GetViewModel() expected error for a period outside the snapshot year")
	}
}

func TestSafeToSpendStatus(t *testing.T) {
	tests := []struct {
		name            string
		safeToSpend     int64
		closingTreasury int64
		expected        string
	}{
		{
			name:            "Comfortable ratio",
			safeToSpend:     500_000,
			closingTreasury: 1_000_000,
			expected:        StatusSafe,
		},
		{
			name:            "Tight ratio",
			safeToSpend:     150_000,
			closingTreasury: 1_000_000,
			expected:        StatusTendu,
		},
		{
			name:            "Thin ratio",
			safeToSpend:     50_000,
			closingTreasury: 1_000_000,
			expected:        StatusDanger,
		},
		{
			name:            "Negative safe to spend",
			safeToSpend:     -10_000,
			closingTreasury: 1_000_000,
			expected:        StatusDanger,
		},
		{
			name:            "Negative treasury",
			safeToSpend:     100_000,
			closingTreasury: -50_000,
			expected:        StatusDanger,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := safeToSpendStatus(tt.safeToSpend, tt.closingTreasury)
			if result != tt.expected {
				t.Errorf("safeToSpendStatus(%d, %d) = %s, expected %s",
					tt.safeToSpend, tt.closingTreasury, result, tt.expected)
			}
		})
	}
}

func TestResolvePeriod(t *testing.T) {
	tests := []struct {
		name       string
		period     Period
		wantYear   int
		wantStart  int
		wantEnd    int
		wantErr    bool
	}{
		{
			name:      "Year",
			period:    Period{Type: PeriodYear, Value: "2026"},
			wantYear:  2026,
			wantStart: 1,
			wantEnd:   12,
		},
		{
			name:      "Second quarter",
			period:    Period{Type: PeriodQuarter, Value: "2026-Q2"},
			wantYear:  2026,
			wantStart: 4,
			wantEnd:   6,
		},
		{
			name:      "Month",
			period:    Period{Type: PeriodMonth, Value: "2026-04"},
			wantYear:  2026,
			wantStart: 4,
			wantEnd:   4,
		},
		{
			name:    "Invalid quarter",
			period:  Period{Type: PeriodQuarter, Value: "2026-Q5"},
			wantErr: true,
		},
		{
			name:    "Unknown type",
			period:  Period{Type: "week", Value: "2026-W12"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			year, start, end, err := resolvePeriod(tt.period)
			if (err != nil) != tt.wantErr {
				t.Fatalf("resolvePeriod() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if year != tt.wantYear || start != tt.wantStart || end != tt.wantEnd {
				t.Errorf("resolvePeriod() = (%d, %d, %d), expected (%d, %d, %d)",
					year, start, end, tt.wantYear, tt.wantStart, tt.wantEnd)
			}
		})
	}
}
