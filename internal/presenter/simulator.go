package presenter

import (
	"github.com/fbonnet/fiscal-forecast/internal/domain"
)

// TaxDeltas holds the per-concern total differences between two snapshots.
type TaxDeltas struct {
	URSSAF int64 `json:"urssaf"`
	IRCEC  int64 `json:"ircec"`
	VAT    int64 `json:"vat"`
	IR     int64 `json:"ir"`
	Total  int64 `json:"total"`
}

// Comparison isolates the marginal fiscal effect of a hypothetical change:
// every field is modified minus base.
type Comparison struct {
	BaseHash     string        `json:"baseHash"`
	ModifiedHash string        `json:"modifiedHash"`
	Bases        domain.Bases  `json:"bases"`
	Taxes        TaxDeltas     `json:"taxes"`
	NetEffect    int64         `json:"netEffect"`
}

// SimulatorPresenter diffs two snapshots field-wise.
type SimulatorPresenter struct{}

// NewSimulatorPresenter creates a simulator presenter.
func NewSimulatorPresenter() *SimulatorPresenter {
	return &SimulatorPresenter{}
}

// GetComparison subtracts the base snapshot's bases and tax totals from the
// modified one, answering what a hypothetical added entry really costs after
// tax. NetEffect is the revenue delta minus the total tax delta.
func (p *SimulatorPresenter) GetComparison(base, modified *domain.FiscalSnapshot) *Comparison {
	cmp := &Comparison{
		BaseHash:     base.Metadata.FiscalHash,
		ModifiedHash: modified.Metadata.FiscalHash,
		Bases: domain.Bases{
			RevenueTTC:         modified.Bases.RevenueTTC - base.Bases.RevenueTTC,
			RevenueHT:          modified.Bases.RevenueHT - base.Bases.RevenueHT,
			DeductibleExpenses: modified.Bases.DeductibleExpenses - base.Bases.DeductibleExpenses,
			SocialBase:         modified.Bases.SocialBase - base.Bases.SocialBase,
			NetTaxable:         modified.Bases.NetTaxable - base.Bases.NetTaxable,
			Distributable:      modified.Bases.Distributable - base.Bases.Distributable,
		},
	}
	cmp.Taxes = TaxDeltas{
		URSSAF: lineSum(modified.Taxes.URSSAF) - lineSum(base.Taxes.URSSAF),
		IRCEC:  lineSum(modified.Taxes.IRCEC) - lineSum(base.Taxes.IRCEC),
		VAT:    lineSum(modified.Taxes.VAT) - lineSum(base.Taxes.VAT),
		IR:     lineSum(modified.Taxes.IR) - lineSum(base.Taxes.IR),
	}
	cmp.Taxes.Total = cmp.Taxes.URSSAF + cmp.Taxes.IRCEC + cmp.Taxes.VAT + cmp.Taxes.IR
	cmp.NetEffect = cmp.Bases.RevenueTTC - cmp.Bases.DeductibleExpenses - cmp.Taxes.Total
	return cmp
}

func lineSum(lines []domain.TaxLineItem) int64 {
	var total int64
	for _, line := range lines {
		total += line.Amount
	}
	return total
}
