// Package domain defines the entities, enumerations, and validation contracts
// of the fiscal computation engine. It carries no behavior beyond parsing and
// validation; every computation lives in the dedicated engine packages.
package domain

import (
	"time"

	"github.com/fbonnet/fiscal-forecast/pkg/constants"
)

// EntryNature is the closed set of entry kinds the engine dispatches on.
type EntryNature string

const (
	NatureIncome       EntryNature = "INCOME"
	NatureExpensePro   EntryNature = "EXPENSE_PRO"
	NatureExpensePerso EntryNature = "EXPENSE_PERSO"
	NatureTaxSocial    EntryNature = "TAX_SOCIAL"
	NatureTransfer     EntryNature = "TRANSFER"
)

// Scope distinguishes professional from personal flows.
type Scope string

const (
	ScopePro   Scope = "pro"
	ScopePerso Scope = "perso"
)

// Periodicity controls how an entry is expanded into dated occurrences.
type Periodicity string

const (
	PeriodicityYearly    Periodicity = "yearly"
	PeriodicityMonthly   Periodicity = "monthly"
	PeriodicityQuarterly Periodicity = "quarterly"
)

// UserStatus is the legal status driving ruleset selection.
type UserStatus string

const (
	StatusArtisteAuteur UserStatus = "artiste-auteur"
	StatusFreelance     UserStatus = "freelance"
	StatusSASU          UserStatus = "sasu"
)

// FiscalRegime selects between the micro flat-abatement regime and the real
// expense-deduction regime.
type FiscalRegime string

const (
	RegimeMicro FiscalRegime = "micro"
	RegimeReel  FiscalRegime = "reel"
)

// VATRegime selects the VAT declaration rhythm, or the franchise exemption.
type VATRegime string

const (
	VATFranchise VATRegime = "franchise"
	VATMonthly   VATRegime = "reel"
	VATQuarterly VATRegime = "simplifie"
)

// Organization is the collecting body for a tax line or schedule event.
type Organization string

const (
	OrgURSSAF Organization = "URSSAF"
	OrgIRCEC  Organization = "IRCEC"
	OrgDGFIP  Organization = "DGFIP"
	OrgOther  Organization = "OTHER"
)

// LineCategory classifies a tax line item.
type LineCategory string

const (
	CategorySocial LineCategory = "SOCIAL"
	CategoryFiscal LineCategory = "FISCAL"
	CategoryVAT    LineCategory = "VAT"
)

// Confidence marks whether an amount is engine-estimated or user-certified.
type Confidence string

const (
	ConfidenceEstimated Confidence = "ESTIMATED"
	ConfidenceCertified Confidence = "CERTIFIED"
)

// EventType classifies a schedule event.
type EventType string

const (
	EventProvision      EventType = "PROVISION"
	EventRegularization EventType = "REGULARIZATION"
	EventBalance        EventType = "BALANCE"
)

// EventStatus tags a schedule event relative to the computation clock.
type EventStatus string

const (
	StatusLocked  EventStatus = "LOCKED"
	StatusPending EventStatus = "PENDING"
)

// Severity grades an alert.
type Severity string

const (
	SeverityInfo     Severity = "INFO"
	SeverityWarning  Severity = "WARNING"
	SeverityCritical Severity = "CRITICAL"
)

// SolverMode selects how social contributions are solved.
type SolverMode string

const (
	SolverApprox   SolverMode = "approx"
	SolverIteratif SolverMode = "iteratif"
)

// RemunerationMode selects the SASU remuneration cascade direction.
type RemunerationMode string

const (
	RemunerationTotalCharge RemunerationMode = "total_charge"
	RemunerationNetTarget   RemunerationMode = "net_target"
)

// Entry is one dated income or expense line. Amounts are integer cents,
// rates integer basis points. AmountHT and AmountVAT are optional; when both
// are supplied they must reconcile with AmountTTC within one cent.
type Entry struct {
	ID          string      `json:"id" yaml:"id" validate:"required"`
	Nature      EntryNature `json:"nature" yaml:"nature" validate:"required,oneof=INCOME EXPENSE_PRO EXPENSE_PERSO TAX_SOCIAL TRANSFER"`
	Scope       Scope       `json:"scope" yaml:"scope" validate:"required,oneof=pro perso"`
	Label       string      `json:"label" yaml:"label"`
	AmountTTC   int64       `json:"amountTtc" yaml:"amountTtc"`
	AmountHT    *int64      `json:"amountHt,omitempty" yaml:"amountHt,omitempty"`
	AmountVAT   *int64      `json:"amountVat,omitempty" yaml:"amountVat,omitempty"`
	VATRate     int64       `json:"vatRate" yaml:"vatRate" validate:"gte=0,lte=10000"`
	Date        string      `json:"date" yaml:"date" validate:"required"`
	Category    string      `json:"category" yaml:"category" validate:"required"`
	Periodicity Periodicity `json:"periodicity" yaml:"periodicity" validate:"required,oneof=yearly monthly quarterly"`
}

// ParsedDate returns the entry date as a time.Time.
func (e *Entry) ParsedDate() (time.Time, error) {
	return time.Parse(constants.DateLayout, e.Date)
}

// Meta carries operation versioning metadata.
type Meta struct {
	Version   int    `json:"version" yaml:"version"`
	CreatedAt string `json:"createdAt" yaml:"createdAt"`
	UpdatedAt string `json:"updatedAt" yaml:"updatedAt"`
}

// Operation is one fiscal year (or a scenario variant of it) for a user.
// It is always replaced as a whole unit, never partially persisted.
type Operation struct {
	ID                  string      `json:"id" yaml:"id" validate:"required"`
	Year                int         `json:"year" yaml:"year" validate:"required,gte=2000,lte=2100"`
	IsScenario          bool        `json:"isScenario" yaml:"isScenario"`
	ScenarioName        string      `json:"scenarioName,omitempty" yaml:"scenarioName,omitempty"`
	CashCurrent         int64       `json:"cashCurrent" yaml:"cashCurrent"`
	VATPaymentFrequency VATRegime   `json:"vatPaymentFrequency" yaml:"vatPaymentFrequency"`
	VATCarryover        int64       `json:"vatCarryover" yaml:"vatCarryover"`
	Entries             []Entry     `json:"entries" yaml:"entries" validate:"dive"`
	Meta                Meta        `json:"meta" yaml:"meta"`
}

// Household holds the fiscal household composition. Parts is expressed in
// hundredths of a part (150 = 1.5 parts) to keep the model integer-only.
type Household struct {
	Parts    int64 `json:"parts" yaml:"parts" validate:"gte=100"`
	Children int   `json:"children" yaml:"children" validate:"gte=0"`
}

// Options carries computation options and SASU remuneration inputs.
type Options struct {
	EstimateMode          bool             `json:"estimateMode" yaml:"estimateMode"`
	DefaultVATRate        int64            `json:"defaultVatRate" yaml:"defaultVatRate"`
	SolverMode            SolverMode       `json:"solverMode" yaml:"solverMode"`
	VersementLiberatoire  bool             `json:"versementLiberatoire" yaml:"versementLiberatoire"`
	RemunerationMode      RemunerationMode `json:"remunerationMode,omitempty" yaml:"remunerationMode,omitempty"`
	RemunerationGross     int64            `json:"remunerationGross,omitempty" yaml:"remunerationGross,omitempty"`
	RemunerationNetTarget int64            `json:"remunerationNetTarget,omitempty" yaml:"remunerationNetTarget,omitempty"`
	RequestedDividends    int64            `json:"requestedDividends,omitempty" yaml:"requestedDividends,omitempty"`
	FeatureFlags          []string         `json:"featureFlags,omitempty" yaml:"featureFlags,omitempty"`
}

// FiscalContext carries the computation parameters. Now is the sole time
// source of the engine; nothing downstream ever reads a wall clock.
type FiscalContext struct {
	TaxYear      int           `json:"taxYear" yaml:"taxYear" validate:"required,gte=2000,lte=2100"`
	Now          string        `json:"now" yaml:"now" validate:"required"`
	UserStatus   UserStatus    `json:"userStatus" yaml:"userStatus" validate:"required,oneof=artiste-auteur freelance sasu"`
	FiscalRegime FiscalRegime  `json:"fiscalRegime" yaml:"fiscalRegime" validate:"required,oneof=micro reel"`
	VATRegime    VATRegime     `json:"vatRegime" yaml:"vatRegime" validate:"required,oneof=franchise reel simplifie"`
	Household    Household     `json:"household" yaml:"household"`
	Options      Options       `json:"options" yaml:"options"`
}

// Clock returns the injected computation time.
func (c *FiscalContext) Clock() (time.Time, error) {
	return time.Parse(constants.TimestampLayout, c.Now)
}

// TreasuryAnchor is the known real balance as of the end of a given month,
// from which all projections accumulate forward. MonthIndex is 1-based;
// 0 means the anchor precedes the fiscal year.
type TreasuryAnchor struct {
	Amount     int64 `json:"amount" yaml:"amount"`
	MonthIndex int   `json:"monthIndex" yaml:"monthIndex" validate:"gte=0,lte=12"`
}

// MonthLedger aggregates one calendar month of materialized occurrences.
type MonthLedger struct {
	Month              string           `json:"month"`
	Income             int64            `json:"income"`
	ExpensesByCategory map[string]int64 `json:"expensesByCategory"`
	VATCollected       int64            `json:"vatCollected"`
	VATDeductible      int64            `json:"vatDeductible"`
}

// Outflow returns the total of all expense categories for the month.
func (m *MonthLedger) Outflow() int64 {
	var total int64
	for _, v := range m.ExpensesByCategory {
		total += v
	}
	return total
}

// Net returns income minus outflow for the month.
func (m *MonthLedger) Net() int64 {
	return m.Income - m.Outflow()
}

// LedgerFinal is the derived monthly ledger, rebuilt on every computation.
// ByMonth is a fixed 12-slot array indexed by calendar month minus one so
// iteration order is deterministic.
type LedgerFinal struct {
	ByMonth [12]MonthLedger `json:"byMonth"`
}

// TaxLineItem is one computed tax line.
type TaxLineItem struct {
	Code         string       `json:"code"`
	Label        string       `json:"label"`
	Base         int64        `json:"base"`
	Rate         int64        `json:"rate"`
	Amount       int64        `json:"amount"`
	Organization Organization `json:"organization"`
	Category     LineCategory `json:"category"`
	Confidence   Confidence   `json:"confidence"`
	Formula      string       `json:"formula,omitempty"`
	CapApplied   bool         `json:"capApplied,omitempty"`
}

// Bases holds the computed tax bases.
type Bases struct {
	RevenueTTC         int64 `json:"revenueTtc"`
	RevenueHT          int64 `json:"revenueHt"`
	DeductibleExpenses int64 `json:"deductibleExpenses"`
	SocialBase         int64 `json:"socialBase"`
	NetTaxable         int64 `json:"netTaxable"`
	Distributable      int64 `json:"distributable"`
}

// Taxes groups the computed line items per concern.
type Taxes struct {
	URSSAF []TaxLineItem `json:"urssaf"`
	IRCEC  []TaxLineItem `json:"ircec"`
	VAT    []TaxLineItem `json:"vat"`
	IR     []TaxLineItem `json:"ir"`
}

// All returns every line item across concerns, in URSSAF, IRCEC, VAT, IR order.
func (t *Taxes) All() []TaxLineItem {
	all := make([]TaxLineItem, 0, len(t.URSSAF)+len(t.IRCEC)+len(t.VAT)+len(t.IR))
	all = append(all, t.URSSAF...)
	all = append(all, t.IRCEC...)
	all = append(all, t.VAT...)
	all = append(all, t.IR...)
	return all
}

// ScheduleEvent is one dated payment obligation.
type ScheduleEvent struct {
	Date            string       `json:"date"`
	Label           string       `json:"label"`
	Amount          int64        `json:"amount"`
	Organization    Organization `json:"organization"`
	Category        LineCategory `json:"category"`
	Type            EventType    `json:"type"`
	Confidence      Confidence   `json:"confidence"`
	Status          EventStatus  `json:"status"`
	SourceLineCodes []string     `json:"sourceLineCodes,omitempty"`
}

// Alert is a non-fatal anomaly discovered after successful computation.
type Alert struct {
	Code           string   `json:"code"`
	Severity       Severity `json:"severity"`
	Message        string   `json:"message"`
	TriggerValue   *int64   `json:"triggerValue,omitempty"`
	ThresholdValue *int64   `json:"thresholdValue,omitempty"`
}

// Alert codes.
const (
	AlertNegativeRegularization = "NEGATIVE_REGULARIZATION"
	AlertExcessiveContributions = "EXCESSIVE_SOCIAL_CONTRIBUTIONS"
	AlertSolverDivergence       = "SOLVER_DIVERGENCE_FALLBACK_APPROX"
	AlertInputInconsistent      = "INPUT_INCONSISTENT"
	AlertVATFranchiseThreshold  = "VAT_FRANCHISE_THRESHOLD"
)

// Metadata identifies a snapshot and the inputs that produced it.
type Metadata struct {
	EngineVersion     string `json:"engineVersion"`
	RulesetYear       int    `json:"rulesetYear"`
	FiscalHash        string `json:"fiscalHash"`
	ComputedAt        string `json:"computedAt"`
	ParamsFingerprint string `json:"paramsFingerprint"`
}

// FiscalSnapshot is the root aggregate of one computation. It is immutable
// once assembled; a new computation always produces a new snapshot.
type FiscalSnapshot struct {
	Metadata    Metadata        `json:"metadata"`
	Bases       Bases           `json:"bases"`
	Taxes       Taxes           `json:"taxes"`
	Schedule    []ScheduleEvent `json:"schedule"`
	Alerts      []Alert         `json:"alerts"`
	LedgerFinal LedgerFinal     `json:"ledgerFinal"`
}

// OrganizationPriority returns the deterministic tie-break rank used when
// schedule events share a due date: URSSAF first, then IRCEC, then VAT
// (collected by DGFIP), then IR, then anything else.
func OrganizationPriority(org Organization, category LineCategory) int {
	switch org {
	case OrgURSSAF:
		return 0
	case OrgIRCEC:
		return 1
	case OrgDGFIP:
		if category == CategoryVAT {
			return 2
		}
		return 3
	default:
		return 4
	}
}
