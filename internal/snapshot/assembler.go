// Package snapshot packages a finished computation into an immutable,
// hashable FiscalSnapshot. The fiscal hash is a pure function of the inputs,
// which is what makes the simulator's snapshot diffing and any caching layer
// keyed on it safe.
package snapshot

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/fbonnet/fiscal-forecast/internal/domain"
	"github.com/fbonnet/fiscal-forecast/pkg/constants"
)

// hashInput is the canonical serialization hashed into the fiscal hash.
// Entries keep their operation order; encoding/json serializes struct fields
// in declaration order, so identical inputs always produce identical bytes.
type hashInput struct {
	Operations []domain.Operation   `json:"operations"`
	Context    domain.FiscalContext `json:"context"`
}

// Fingerprint computes the stable hash of (operations, context).
func Fingerprint(operations []domain.Operation, ctx *domain.FiscalContext) (string, error) {
	return hashJSON(hashInput{Operations: operations, Context: *ctx})
}

// ParamsFingerprint computes the stable hash of the context alone, letting a
// caller tell a parameter change apart from an entry change.
func ParamsFingerprint(ctx *domain.FiscalContext) (string, error) {
	return hashJSON(*ctx)
}

func hashJSON(v interface{}) (string, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to serialize hash input: %w", err)
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}

// Assemble packages the computed parts into a snapshot. ComputedAt is copied
// verbatim from the context clock; the assembler never reads wall-clock time.
func Assemble(operations []domain.Operation, ctx *domain.FiscalContext, bases domain.Bases, taxes domain.Taxes, schedule []domain.ScheduleEvent, alerts []domain.Alert, final *domain.LedgerFinal) (*domain.FiscalSnapshot, error) {
	fiscalHash, err := Fingerprint(operations, ctx)
	if err != nil {
		return nil, err
	}
	paramsFingerprint, err := ParamsFingerprint(ctx)
	if err != nil {
		return nil, err
	}

	if schedule == nil {
		schedule = []domain.ScheduleEvent{}
	}
	if alerts == nil {
		alerts = []domain.Alert{}
	}

	return &domain.FiscalSnapshot{
		Metadata: domain.Metadata{
			EngineVersion:     constants.EngineVersion,
			RulesetYear:       ctx.TaxYear,
			FiscalHash:        fiscalHash,
			ComputedAt:        ctx.Now,
			ParamsFingerprint: paramsFingerprint,
		},
		Bases:       bases,
		Taxes:       taxes,
		Schedule:    schedule,
		Alerts:      alerts,
		LedgerFinal: *final,
	}, nil
}
