package domain

import (
	"errors"
	"testing"
)

func validOperation() *Operation {
	return &Operation{
		ID:   "op-2026",
		Year: 2026,
		Entries: []Entry{
			{
				ID:          "e1",
				Nature:      NatureIncome,
				Scope:       ScopePro,
				AmountTTC:   500000,
				VATRate:     2000,
				Date:        "2026-03-05",
				Category:    "prestation",
				Periodicity: PeriodicityMonthly,
			},
		},
	}
}

func validContext() *FiscalContext {
	return &FiscalContext{
		TaxYear:      2026,
		Now:          "2026-06-15T10:00:00Z",
		UserStatus:   StatusFreelance,
		FiscalRegime: RegimeMicro,
		VATRegime:    VATFranchise,
		Household:    Household{Parts: 100},
	}
}

func TestValidateOperation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Operation)
		wantErr bool
	}{
		{
			name:    "Valid operation",
			mutate:  func(op *Operation) {},
			wantErr: false,
		},
		{
			name:    "Missing id",
			mutate:  func(op *Operation) { op.ID = "" },
			wantErr: true,
		},
		{
			name:    "Year out of range",
			mutate:  func(op *Operation) { op.Year = 1800 },
			wantErr: true,
		},
		{
			name:    "Invalid entry nature",
			mutate:  func(op *Operation) { op.Entries[0].Nature = "GIFT" },
			wantErr: true,
		},
		{
			name:    "Invalid entry date",
			mutate:  func(op *Operation) { op.Entries[0].Date = "03/05/2026" },
			wantErr: true,
		},
		{
			name:    "Invalid periodicity",
			mutate:  func(op *Operation) { op.Entries[0].Periodicity = "weekly" },
			wantErr: true,
		},
		{
			name:    "Invalid vat payment frequency",
			mutate:  func(op *Operation) { op.VATPaymentFrequency = "hebdomadaire" },
			wantErr: true,
		},
		{
			name:    "Empty vat payment frequency allowed",
			mutate:  func(op *Operation) { op.VATPaymentFrequency = "" },
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op := validOperation()
			tt.mutate(op)
			err := ValidateOperation(op)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateOperation() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateOperationNil(t *testing.T) {
	if err := ValidateOperation(nil); err == nil {
		t.Error("ValidateOperation(nil) expected error")
	}
}

func TestValidateContext(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*FiscalContext)
		wantErr bool
	}{
		{
			name:    "Valid context",
			mutate:  func(ctx *FiscalContext) {},
			wantErr: false,
		},
		{
			name:    "Invalid status",
			mutate:  func(ctx *FiscalContext) { ctx.UserStatus = "auto-entrepreneur-deluxe" },
			wantErr: true,
		},
		{
			name:    "Invalid now timestamp",
			mutate:  func(ctx *FiscalContext) { ctx.Now = "2026-06-15" },
			wantErr: true,
		},
		{
			name:    "Parts below one",
			mutate:  func(ctx *FiscalContext) { ctx.Household.Parts = 50 },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := validContext()
			tt.mutate(ctx)
			err := ValidateContext(ctx)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateContext() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestFiscalErrorIs(t *testing.T) {
	incoherent := NewIncoherentVATAmounts("op", "e1", 400000, 80000, 500000)
	invalid := NewInvalidOperation("op", "bad")
	notFound := NewRulesetNotFound(2031, StatusFreelance, RegimeMicro, VATFranchise)

	if !errors.Is(incoherent, &FiscalError{Code: ErrCodeInvalidOperation}) {
		t.Error("IncoherentVATAmounts should match InvalidOperation targets")
	}
	if errors.Is(invalid, &FiscalError{Code: ErrCodeIncoherentVAT}) {
		t.Error("InvalidOperation should not match IncoherentVATAmounts targets")
	}
	if errors.Is(notFound, &FiscalError{Code: ErrCodeInvalidOperation}) {
		t.Error("RulesetNotFound should not match InvalidOperation targets")
	}
}

func TestOrganizationPriority(t *testing.T) {
	tests := []struct {
		name     string
		org      Organization
		category LineCategory
		expected int
	}{
		{
			name:     "URSSAF first",
			org:      OrgURSSAF,
			category: CategorySocial,
			expected: 0,
		},
		{
			name:     "IRCEC second",
			org:      OrgIRCEC,
			category: CategorySocial,
			expected: 1,
		},
		{
			name:     "DGFIP VAT third",
			org:      OrgDGFIP,
			category: CategoryVAT,
			expected: 2,
		},
		{
			name:     "DGFIP fiscal fourth",
			org:      OrgDGFIP,
			category: CategoryFiscal,
			expected: 3,
		},
		{
			name:     "Other last",
			org:      OrgOther,
			category: CategorySocial,
			expected: 4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := OrganizationPriority(tt.org, tt.category)
			if result != tt.expected {
				t.Errorf("OrganizationPriority(%s, %s) = %d, expected %d", tt.org, tt.category, result, tt.expected)
			}
		})
	}
}

func TestMonthLedgerNet(t *testing.T) {
	month := MonthLedger{
		Income: 500000,
		ExpensesByCategory: map[string]int64{
			"logement": 80000,
			"courses":  40000,
		},
	}
	if month.Outflow() != 120000 {
		t.Errorf("Outflow() = %d, expected 120000", month.Outflow())
	}
	if month.Net() != 380000 {
		t.Errorf("Net() = %d, expected 380000", month.Net())
	}
}
