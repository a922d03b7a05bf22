// Package engine wires the materializer, rule engine, schedule builder,
// alert detector, and snapshot assembler into the single entry point of the
// fiscal computation. ComputeFiscalSnapshot is referentially transparent: it
// owns no shared state, performs no I/O, and never reads a clock, so it may
// be invoked concurrently from any number of callers.
package engine

import (
	"fmt"

	"github.com/fbonnet/fiscal-forecast/internal/alerts"
	"github.com/fbonnet/fiscal-forecast/internal/domain"
	"github.com/fbonnet/fiscal-forecast/internal/ledger"
	"github.com/fbonnet/fiscal-forecast/internal/rules"
	"github.com/fbonnet/fiscal-forecast/internal/schedule"
	"github.com/fbonnet/fiscal-forecast/internal/snapshot"
	"go.uber.org/zap"
)

// ComputeFiscalSnapshot runs the full deterministic computation for the
// operation matching the context's tax year. The operations slice as a whole
// is hashed into the snapshot metadata so scenario variants produce distinct
// fiscal hashes.
func ComputeFiscalSnapshot(logger *zap.Logger, operations []domain.Operation, ctx *domain.FiscalContext, anchor domain.TreasuryAnchor) (*domain.FiscalSnapshot, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if err := domain.ValidateContext(ctx); err != nil {
		return nil, err
	}
	for i := range operations {
		if err := domain.ValidateOperation(&operations[i]); err != nil {
			return nil, err
		}
	}
	if anchor.MonthIndex < 0 || anchor.MonthIndex > 12 {
		return nil, domain.NewInvalidOperation("", fmt.Sprintf("treasury anchor month %d out of range", anchor.MonthIndex))
	}

	op, err := selectOperation(operations, ctx)
	if err != nil {
		return nil, err
	}

	materializer := ledger.NewMaterializer(logger)
	occurrences, final, err := materializer.Materialize(op, ctx)
	if err != nil {
		return nil, err
	}

	ruleEngine := rules.NewEngine(logger)
	result, err := ruleEngine.Compute(op, ctx, occurrences, final)
	if err != nil {
		return nil, err
	}

	builder := schedule.NewBuilder(logger)
	events, err := builder.Build(op, ctx, result, occurrences)
	if err != nil {
		return nil, err
	}

	detector := alerts.NewDetector(logger)
	allAlerts := detector.Detect(result)

	snap, err := snapshot.Assemble(operations, ctx, result.Bases, result.Taxes, events, allAlerts, final)
	if err != nil {
		return nil, err
	}

	logger.Debug("fiscal snapshot computed",
		zap.String("op", "engine.ComputeFiscalSnapshot"),
		zap.String("operation", op.ID),
		zap.String("fiscalHash", snap.Metadata.FiscalHash),
		zap.Int("scheduleEvents", len(snap.Schedule)),
		zap.Int("alerts", len(snap.Alerts)),
	)
	return snap, nil
}

// selectOperation picks the operation to compute: the non-scenario operation
// for the context's tax year, or the only operation given.
func selectOperation(operations []domain.Operation, ctx *domain.FiscalContext) (*domain.Operation, error) {
	if len(operations) == 1 {
		if operations[0].Year != ctx.TaxYear {
			return nil, domain.NewInvalidOperation(operations[0].ID, fmt.Sprintf("operation year %d does not match tax year %d", operations[0].Year, ctx.TaxYear))
		}
		return &operations[0], nil
	}
	var fallback *domain.Operation
	for i := range operations {
		op := &operations[i]
		if op.Year != ctx.TaxYear {
			continue
		}
		if !op.IsScenario {
			return op, nil
		}
		if fallback == nil {
			fallback = op
		}
	}
	if fallback != nil {
		return fallback, nil
	}
	return nil, domain.NewInvalidOperation("", fmt.Sprintf("no operation for tax year %d", ctx.TaxYear))
}
