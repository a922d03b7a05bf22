package domain

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// validate is shared; validator.Validate is safe for concurrent use.
var validate = validator.New()

// ValidateOperation performs boundary shape-validation of an operation before
// it reaches the materializer or rule engine. Untrusted input is rejected
// here into InvalidOperation so the engine packages only ever see
// well-formed data.
func ValidateOperation(op *Operation) error {
	if op == nil {
		return NewInvalidOperation("", "operation is nil")
	}
	if err := validate.Struct(op); err != nil {
		return NewInvalidOperation(op.ID, err.Error())
	}
	for i := range op.Entries {
		entry := &op.Entries[i]
		if _, err := entry.ParsedDate(); err != nil {
			return NewInvalidOperation(op.ID, fmt.Sprintf("entry %s: invalid date %q", entry.ID, entry.Date))
		}
	}
	switch op.VATPaymentFrequency {
	case "", VATFranchise, VATMonthly, VATQuarterly:
	default:
		return NewInvalidOperation(op.ID, fmt.Sprintf("invalid vat payment frequency %q", op.VATPaymentFrequency))
	}
	return nil
}

// ValidateContext performs boundary shape-validation of a fiscal context.
func ValidateContext(ctx *FiscalContext) error {
	if ctx == nil {
		return NewInvalidOperation("", "fiscal context is nil")
	}
	if err := validate.Struct(ctx); err != nil {
		return NewInvalidOperation("", fmt.Sprintf("context: %s", err.Error()))
	}
	if _, err := ctx.Clock(); err != nil {
		return NewInvalidOperation("", fmt.Sprintf("context: invalid now timestamp %q", ctx.Now))
	}
	return nil
}
