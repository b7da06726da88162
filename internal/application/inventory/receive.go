package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/manufactura-api/internal/domain"
	"github.com/jhoicas/manufactura-api/internal/domain/entity"
	"github.com/jhoicas/manufactura-api/internal/domain/inventory"
)

// ReceiveRequest recepción de un lote nuevo.
// ReceivedAt es informativo; el orden FIFO lo da el ID asignado al insertar.
type ReceiveRequest struct {
	MaterialID int64
	Code       string
	Quantity   decimal.Decimal
	Unit       string
	ReceivedAt time.Time
	Location   string
	UserID     string
}

// Receive registra un lote y suma su cantidad al stock agregado en la misma transacción.
// La primera recepción de una materia crea su entrada de stock.
func (l *Ledger) Receive(ctx context.Context, req ReceiveRequest) (*entity.Batch, error) {
	if err := inventory.CheckQuantity(req.Quantity); err != nil {
		return nil, err
	}
	code := inventory.NormalizeCode(req.Code)
	unit := strings.TrimSpace(req.Unit)
	if req.MaterialID <= 0 || code == "" || unit == "" {
		return nil, domain.ErrInvalidInput
	}

	var batch *entity.Batch
	err := l.withRetry(ctx, "receive", func() error {
		return l.tx.Run(ctx, func(ctx context.Context, r Repos) error {
			b, err := l.receive(ctx, r, req, code, unit)
			if err != nil {
				return err
			}
			batch = b
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	l.metrics.observeReceipt()
	l.log.Info().
		Int64("material_id", batch.MaterialID).
		Int64("batch_id", batch.ID).
		Str("code", batch.Code).
		Str("quantity", batch.Quantity.String()).
		Str("user_id", req.UserID).
		Msg("lote recibido")
	return batch, nil
}

func (l *Ledger) receive(ctx context.Context, r Repos, req ReceiveRequest, code, unit string) (*entity.Batch, error) {
	material, err := r.Materials.GetByID(ctx, req.MaterialID)
	if err != nil {
		return nil, err
	}
	now := l.opts.Now()

	// 1) Bloquea (o crea) la entrada de stock de la materia
	entry, err := r.Stock.GetForUpdate(ctx, req.MaterialID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		entry = &entity.StockEntry{
			MaterialID:       material.ID,
			MaterialName:     material.Name,
			Quantity:         decimal.Zero,
			Unit:             unit,
			Location:         strings.TrimSpace(req.Location),
			MinimumThreshold: l.opts.DefaultMinThreshold,
			UpdatedAt:        now,
		}
		if err := r.Stock.Create(ctx, entry); err != nil {
			if errors.Is(err, domain.ErrDuplicate) {
				// Otra recepción creó la entrada en paralelo
				return nil, fmt.Errorf("crear entrada de stock: %w", domain.ErrConcurrentModification)
			}
			return nil, err
		}
	case err != nil:
		return nil, err
	case !strings.EqualFold(entry.Unit, unit):
		return nil, fmt.Errorf("%w: unidad %q distinta de la del inventario %q", domain.ErrInvalidInput, unit, entry.Unit)
	}

	receivedAt := req.ReceivedAt
	if receivedAt.IsZero() {
		receivedAt = now
	}
	// 2) Lote nuevo; el ID asignado define su posición FIFO
	batch := &entity.Batch{
		MaterialID:      material.ID,
		Code:            code,
		ReceivedAt:      receivedAt,
		InitialQuantity: req.Quantity,
		Quantity:        req.Quantity,
		Unit:            entry.Unit,
		CreatedAt:       now,
	}
	if err := r.Batches.Create(ctx, batch); err != nil {
		return nil, err
	}
	// 3) Suma al total agregado
	if err := r.Stock.ApplyDelta(ctx, material.ID, req.Quantity, now); err != nil {
		return nil, err
	}
	return batch, nil
}
