package ledger

import (
	"errors"
	"testing"

	"github.com/fbonnet/fiscal-forecast/internal/domain"
	"go.uber.org/zap"
)

func testContext() *domain.FiscalContext {
	return &domain.FiscalContext{
		TaxYear:      2026,
		Now:          "2026-06-15T10:00:00Z",
		UserStatus:   domain.StatusFreelance,
		FiscalRegime: domain.RegimeMicro,
		VATRegime:    domain.VATFranchise,
		Household:    domain.Household{Parts: 100},
	}
}

func TestMaterializeNoRetroProjection(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	materializer := NewMaterializer(logger)

	// A monthly entry dated in May must produce nothing for January through
	// April and one occurrence each from May to December.
	op := &domain.Operation{
		ID:   "op-2026",
		Year: 2026,
		Entries: []domain.Entry{
			{
				ID:          "rent",
				Nature:      domain.NatureExpensePerso,
				Scope:       domain.ScopePerso,
				Label:       "Loyer",
				AmountTTC:   80000,
				Date:        "2026-05-01",
				Category:    "logement",
				Periodicity: domain.PeriodicityMonthly,
			},
		},
	}

	occurrences, final, err := materializer.Materialize(op, testContext())
	if err != nil {
		t.Fatalf("Materialize() error = %v", err)
	}

	if len(occurrences) != 8 {
		t.Errorf("Materialize() produced %d occurrences, expected 8", len(occurrences))
	}
	if occurrences[0].ID != "rent-1" {
		t.Errorf("first occurrence id = %s, expected rent-1", occurrences[0].ID)
	}
	if occurrences[7].ID != "rent-8" {
		t.Errorf("last occurrence id = %s, expected rent-8", occurrences[7].ID)
	}
	if occurrences[7].Date.Format("2006-01-02") != "2026-12-01" {
		t.Errorf("last occurrence date = %s, expected 2026-12-01", occurrences[7].Date.Format("2006-01-02"))
	}

	for month := 0; month < 4; month++ {
		if final.ByMonth[month].Outflow() != 0 {
			t.Errorf("month %d outflow = %d, expected 0", month+1, final.ByMonth[month].Outflow())
		}
	}
	for month := 4; month < 12; month++ {
		if final.ByMonth[month].ExpensesByCategory["logement"] != 80000 {
			t.Errorf("month %d logement = %d, expected 80000", month+1, final.ByMonth[month].ExpensesByCategory["logement"])
		}
	}
}

func TestMaterializeQuarterly(t *testing.T) {
	materializer := NewMaterializer(nil)

	op := &domain.Operation{
		ID:   "op-2026",
		Year: 2026,
		Entries: []domain.Entry{
			{
				ID:          "insurance",
				Nature:      domain.NatureExpensePro,
				Scope:       domain.ScopePro,
				AmountTTC:   30000,
				VATRate:     2000,
				Date:        "2026-02-10",
				Category:    "assurance",
				Periodicity: domain.PeriodicityQuarterly,
			},
		},
	}

	occurrences, _, err := materializer.Materialize(op, testContext())
	if err != nil {
		t.Fatalf("Materialize() error = %v", err)
	}

	// February, May, August, November.
	expected := []string{"2026-02-10", "2026-05-10", "2026-08-10", "2026-11-10"}
	if len(occurrences) != len(expected) {
		t.Fatalf("Materialize() produced %d occurrences, expected %d", len(occurrences), len(expected))
	}
	for i, date := range expected {
		if occurrences[i].Date.Format("2006-01-02") != date {
			t.Errorf("occurrence %d date = %s, expected %s", i, occurrences[i].Date.Format("2006-01-02"), date)
		}
	}
}

func TestMaterializeYearlyKeepsBaseID(t *testing.T) {
	materializer := NewMaterializer(nil)

	op := &domain.Operation{
		ID:   "op-2026",
		Year: 2026,
		Entries: []domain.Entry{
			{
				ID:          "bonus",
				Nature:      domain.NatureIncome,
				Scope:       domain.ScopePro,
				AmountTTC:   120000,
				VATRate:     2000,
				Date:        "2026-07-01",
				Category:    "prestation",
				Periodicity: domain.PeriodicityYearly,
			},
		},
	}

	occurrences, _, err := materializer.Materialize(op, testContext())
	if err != nil {
		t.Fatalf("Materialize() error = %v", err)
	}
	if len(occurrences) != 1 {
		t.Fatalf("Materialize() produced %d occurrences, expected 1", len(occurrences))
	}
	if occurrences[0].ID != "bonus" {
		t.Errorf("yearly occurrence id = %s, expected bonus", occurrences[0].ID)
	}
}

func TestMaterializeVATSplit(t *testing.T) {
	materializer := NewMaterializer(nil)

	op := &domain.Operation{
		ID:   "op-2026",
		Year: 2026,
		Entries: []domain.Entry{
			{
				ID:          "invoice",
				Nature:      domain.NatureIncome,
				Scope:       domain.ScopePro,
				AmountTTC:   500000,
				VATRate:     2000,
				Date:        "2026-03-05",
				Category:    "prestation",
				Periodicity: domain.PeriodicityYearly,
			},
		},
	}

	occurrences, final, err := materializer.Materialize(op, testContext())
	if err != nil {
		t.Fatalf("Materialize() error = %v", err)
	}

	occ := occurrences[0]
	if occ.AmountVAT != 83333 || occ.AmountHT != 416667 {
		t.Errorf("split = (ht %d, vat %d), expected (416667, 83333)", occ.AmountHT, occ.AmountVAT)
	}
	if occ.AmountHT+occ.AmountVAT != occ.AmountTTC {
		t.Errorf("ht+vat = %d, expected %d", occ.AmountHT+occ.AmountVAT, occ.AmountTTC)
	}
	if final.ByMonth[2].VATCollected != 83333 {
		t.Errorf("march vatCollected = %d, expected 83333", final.ByMonth[2].VATCollected)
	}
}

func TestMaterializeIncoherentTriple(t *testing.T) {
	materializer := NewMaterializer(nil)

	ht := int64(400000)
	vat := int64(80000)
	op := &domain.Operation{
		ID:   "op-2026",
		Year: 2026,
		Entries: []domain.Entry{
			{
				ID:          "bad",
				Nature:      domain.NatureIncome,
				Scope:       domain.ScopePro,
				AmountTTC:   500000, // ht+vat = 480000, off by more than a cent
				AmountHT:    &ht,
				AmountVAT:   &vat,
				VATRate:     2000,
				Date:        "2026-03-05",
				Category:    "prestation",
				Periodicity: domain.PeriodicityYearly,
			},
		},
	}

	_, _, err := materializer.Materialize(op, testContext())
	if err == nil {
		t.Fatal("Materialize() expected error for incoherent HT/VAT/TTC triple")
	}
	var fiscalErr *domain.FiscalError
	if !errors.As(err, &fiscalErr) || fiscalErr.Code != domain.ErrCodeIncoherentVAT {
		t.Errorf("Materialize() error = %v, expected code %s", err, domain.ErrCodeIncoherentVAT)
	}
}

func TestMaterializeSuppliedTripleDriftAbsorbed(t *testing.T) {
	materializer := NewMaterializer(nil)

	ht := int64(416666)
	vat := int64(83333)
	op := &domain.Operation{
		ID:   "op-2026",
		Year: 2026,
		Entries: []domain.Entry{
			{
				ID:          "drift",
				Nature:      domain.NatureIncome,
				Scope:       domain.ScopePro,
				AmountTTC:   500000, // ht+vat = 499999, one cent short
				AmountHT:    &ht,
				AmountVAT:   &vat,
				VATRate:     2000,
				Date:        "2026-03-05",
				Category:    "prestation",
				Periodicity: domain.PeriodicityYearly,
			},
		},
	}

	occurrences, _, err := materializer.Materialize(op, testContext())
	if err != nil {
		t.Fatalf("Materialize() error = %v", err)
	}
	occ := occurrences[0]
	if occ.AmountHT != 416667 || occ.AmountVAT != 83333 {
		t.Errorf("split = (ht %d, vat %d), expected drift absorbed into HT (416667, 83333)", occ.AmountHT, occ.AmountVAT)
	}
}

func TestMaterializeEstimateModeDefaultRate(t *testing.T) {
	materializer := NewMaterializer(nil)

	ctx := testContext()
	ctx.Options.EstimateMode = true
	ctx.Options.DefaultVATRate = 2000

	op := &domain.Operation{
		ID:   "op-2026",
		Year: 2026,
		Entries: []domain.Entry{
			{
				ID:          "estimated",
				Nature:      domain.NatureIncome,
				Scope:       domain.ScopePro,
				AmountTTC:   120000,
				Date:        "2026-04-01",
				Category:    "prestation",
				Periodicity: domain.PeriodicityYearly,
			},
			{
				ID:          "perso",
				Nature:      domain.NatureExpensePerso,
				Scope:       domain.ScopePerso,
				AmountTTC:   60000,
				Date:        "2026-04-01",
				Category:    "courses",
				Periodicity: domain.PeriodicityYearly,
			},
		},
	}

	occurrences, _, err := materializer.Materialize(op, ctx)
	if err != nil {
		t.Fatalf("Materialize() error = %v", err)
	}
	if occurrences[0].AmountVAT != 20000 {
		t.Errorf("estimated pro entry VAT = %d, expected 20000", occurrences[0].AmountVAT)
	}
	// The default rate never applies to personal-scope entries.
	if occurrences[1].AmountVAT != 0 {
		t.Errorf("personal entry VAT = %d, expected 0", occurrences[1].AmountVAT)
	}
}

func TestMaterializeTransferNeutral(t *testing.T) {
	materializer := NewMaterializer(nil)

	op := &domain.Operation{
		ID:   "op-2026",
		Year: 2026,
		Entries: []domain.Entry{
			{
				ID:          "move",
				Nature:      domain.NatureTransfer,
				Scope:       domain.ScopePerso,
				AmountTTC:   100000,
				Date:        "2026-06-01",
				Category:    "virement",
				Periodicity: domain.PeriodicityYearly,
			},
		},
	}

	_, final, err := materializer.Materialize(op, testContext())
	if err != nil {
		t.Fatalf("Materialize() error = %v", err)
	}
	june := final.ByMonth[5]
	if june.Income != 0 || june.Outflow() != 0 {
		t.Errorf("transfer changed the ledger: income %d, outflow %d", june.Income, june.Outflow())
	}
}
