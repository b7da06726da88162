package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/manufactura-api/internal/domain/entity"
)

// HistoryFilter filtra el historial de trazabilidad. Exactamente un criterio:
// por operación (OperationKind + OperationID), por lote (BatchID) o por materia (MaterialID).
type HistoryFilter struct {
	OperationKind entity.OperationKind
	OperationID   int64
	BatchID       int64
	MaterialID    int64
	Limit         int
	Offset        int
}

// ConsumptionRecordRepository es el Traceability Recorder: log de solo inserción.
type ConsumptionRecordRepository interface {
	// Append inserta un registro; nunca actualiza ni elimina.
	Append(ctx context.Context, record *entity.ConsumptionRecord) error
	// List devuelve los registros del filtro, más recientes primero.
	List(ctx context.Context, filter HistoryFilter) ([]*entity.ConsumptionRecord, error)
	// SumConsumedSince suma lo consumido de la materia desde since (inclusive).
	SumConsumedSince(ctx context.Context, materialID int64, since time.Time) (decimal.Decimal, error)
}
