package rules

import (
	"testing"
)

func TestBracketTax(t *testing.T) {
	brackets := table2026.ir.Brackets

	tests := []struct {
		name     string
		taxable  int64
		expected int64
	}{
		{
			name:     "Zero taxable",
			taxable:  0,
			expected: 0,
		},
		{
			name:     "Loss",
			taxable:  -50000,
			expected: 0,
		},
		{
			name:     "Within the zero bracket",
			taxable:  1_000_000,
			expected: 0,
		},
		{
			name:    "Across two brackets",
			taxable: 2_000_000,
			// 11% of (20000.00 - 11707.00)
			expected: 91_223,
		},
		{
			name:    "Across three brackets",
			taxable: 3_000_000,
			// 11% of the second bracket span + 30% above 29850.00
			expected: 204_073,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := bracketTax(brackets, tt.taxable)
			if result != tt.expected {
				t.Errorf("bracketTax(%d) = %d, expected %d", tt.taxable, result, tt.expected)
			}
		})
	}
}

func TestHouseholdTax(t *testing.T) {
	brackets := table2026.ir.Brackets

	tests := []struct {
		name            string
		taxable         int64
		partsHundredths int64
		expected        int64
	}{
		{
			name:            "Single part is plain bracket tax",
			taxable:         3_000_000,
			partsHundredths: 100,
			expected:        204_073,
		},
		{
			name:            "Two parts halve the marginal pressure",
			taxable:         3_000_000,
			partsHundredths: 200,
			// per part: 11% of (15000.00 - 11707.00), doubled
			expected: 72_446,
		},
		{
			name:            "One and a half parts",
			taxable:         3_000_000,
			partsHundredths: 150,
			// per part 20000.00, tax 91223 * 1.5
			expected: 136_835,
		},
		{
			name:            "Zero parts defaults to one",
			taxable:         3_000_000,
			partsHundredths: 0,
			expected:        204_073,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := householdTax(brackets, tt.taxable, tt.partsHundredths)
			if result != tt.expected {
				t.Errorf("householdTax(%d, %d) = %d, expected %d",
					tt.taxable, tt.partsHundredths, result, tt.expected)
			}
		})
	}
}

func TestMicroNetTaxable(t *testing.T) {
	rs := &Ruleset{IR: table2026.ir}

	tests := []struct {
		name     string
		revenue  map[RevenueKind]int64
		expected int64
	}{
		{
			name:     "BNC 34% abatement",
			revenue:  map[RevenueKind]int64{RevenueBNC: 5_000_000},
			expected: 3_300_000,
		},
		{
			name:     "Services 50% abatement",
			revenue:  map[RevenueKind]int64{RevenueServices: 5_000_000},
			expected: 2_500_000,
		},
		{
			name:    "Minimum abatement floors small revenue",
			revenue: map[RevenueKind]int64{RevenueBNC: 60_000},
			// 34% of 600.00 is 204.00, below the 305.00 floor.
			expected: 29_500,
		},
		{
			name:     "Abatement never exceeds the revenue",
			revenue:  map[RevenueKind]int64{RevenueBNC: 20_000},
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := microNetTaxable(rs, tt.revenue)
			if result != tt.expected {
				t.Errorf("microNetTaxable() = %d, expected %d", result, tt.expected)
			}
		})
	}
}

func TestComputeVersementLiberatoire(t *testing.T) {
	rs := &Ruleset{IR: table2026.ir}

	lines := computeVersementLiberatoire(rs, map[RevenueKind]int64{
		RevenueBNC:      5_000_000,
		RevenueServices: 1_000_000,
	})

	if len(lines) != 2 {
		t.Fatalf("computeVersementLiberatoire() produced %d lines, expected 2", len(lines))
	}
	// Deterministic kind order: sales, services, bnc, rights.
	if lines[0].Code != "IR_VL_SERVICE" || lines[0].Amount != 17_000 {
		t.Errorf("first line = (%s, %d), expected (IR_VL_SERVICE, 17000)", lines[0].Code, lines[0].Amount)
	}
	if lines[1].Code != "IR_VL_BNC" || lines[1].Amount != 110_000 {
		t.Errorf("second line = (%s, %d), expected (IR_VL_BNC, 110000)", lines[1].Code, lines[1].Amount)
	}
}
