package inventory

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/manufactura-api/internal/domain"
)

// ReconcileResult total agregado antes y después de conciliar contra los lotes.
type ReconcileResult struct {
	MaterialID int64
	Before     decimal.Decimal
	After      decimal.Decimal
	Adjusted   bool
}

// Reconcile recalcula el total agregado como la suma de los lotes, bajo el mismo candado
// por materia que usa el consumo. Repara diferencias heredadas.
func (l *Ledger) Reconcile(ctx context.Context, materialID int64) (*ReconcileResult, error) {
	if materialID <= 0 {
		return nil, domain.ErrInvalidInput
	}
	var res ReconcileResult
	err := l.withRetry(ctx, "reconcile", func() error {
		return l.tx.Run(ctx, func(ctx context.Context, r Repos) error {
			entry, err := r.Stock.GetForUpdate(ctx, materialID)
			if err != nil {
				return err
			}
			sum, err := r.Batches.TotalAvailable(ctx, materialID)
			if err != nil {
				return err
			}
			res = ReconcileResult{MaterialID: materialID, Before: entry.Quantity, After: sum}
			if entry.Quantity.Equal(sum) {
				return nil
			}
			res.Adjusted = true
			return r.Stock.SetQuantity(ctx, materialID, sum, l.opts.Now())
		})
	})
	if err != nil {
		return nil, err
	}
	if res.Adjusted {
		l.log.Warn().
			Int64("material_id", materialID).
			Str("before", res.Before.String()).
			Str("after", res.After.String()).
			Msg("stock agregado conciliado con lotes")
	}
	return &res, nil
}
