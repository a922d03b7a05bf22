package domain

import "fmt"

// ErrorCode tags a fatal computation error.
type ErrorCode string

const (
	ErrCodeRulesetNotFound  ErrorCode = "RULESET_NOT_FOUND"
	ErrCodeInvalidOperation ErrorCode = "INVALID_OPERATION"
	ErrCodeIncoherentVAT    ErrorCode = "INCOHERENT_VAT_AMOUNTS"
	ErrCodeUnknownCategory  ErrorCode = "UNKNOWN_CATEGORY_MAPPING"
)

// FiscalError is the root of the engine's fatal error hierarchy. All four
// codes abort the computation and propagate to the caller; anomalies that do
// not prevent a best-effort forecast are Alerts, never FiscalErrors.
type FiscalError struct {
	Code    ErrorCode
	Message string
}

func (e *FiscalError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is makes IncoherentVATAmounts match InvalidOperation targets, since the
// former is a specialization of the latter.
func (e *FiscalError) Is(target error) bool {
	t, ok := target.(*FiscalError)
	if !ok {
		return false
	}
	if e.Code == t.Code {
		return true
	}
	return e.Code == ErrCodeIncoherentVAT && t.Code == ErrCodeInvalidOperation
}

// NewRulesetNotFound reports that no rule-set exists for the requested
// (year, status, regime, VAT regime) combination.
func NewRulesetNotFound(year int, status UserStatus, regime FiscalRegime, vat VATRegime) *FiscalError {
	return &FiscalError{
		Code:    ErrCodeRulesetNotFound,
		Message: fmt.Sprintf("no ruleset for year %d, status %s, regime %s, vat %s", year, status, regime, vat),
	}
}

// NewInvalidOperation reports a malformed operation or entry.
func NewInvalidOperation(opID, reason string) *FiscalError {
	return &FiscalError{
		Code:    ErrCodeInvalidOperation,
		Message: fmt.Sprintf("operation %s: %s", opID, reason),
	}
}

// NewIncoherentVATAmounts reports a supplied HT/VAT/TTC triple that disagrees
// beyond rounding tolerance.
func NewIncoherentVATAmounts(opID, entryID string, ht, vat, ttc int64) *FiscalError {
	return &FiscalError{
		Code:    ErrCodeIncoherentVAT,
		Message: fmt.Sprintf("operation %s entry %s: ht %d + vat %d != ttc %d", opID, entryID, ht, vat, ttc),
	}
}

// NewUnknownCategoryMapping reports an entry category that maps to no fiscal
// line. This is a data or configuration defect, not a forecasting ambiguity.
func NewUnknownCategoryMapping(category string) *FiscalError {
	return &FiscalError{
		Code:    ErrCodeUnknownCategory,
		Message: fmt.Sprintf("category %q cannot be mapped to any fiscal line", category),
	}
}
