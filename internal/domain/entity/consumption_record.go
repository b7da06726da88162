package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// OperationKind identifica el tipo de operación que consumió materia prima.
type OperationKind string

// Tipos de operación consumidora.
const (
	OperationOutboundNote    OperationKind = "outbound_note"
	OperationProductionOrder OperationKind = "production_order"
)

// IsValid verifica que el tipo de operación sea conocido.
func (k OperationKind) IsValid() bool {
	switch k {
	case OperationOutboundNote, OperationProductionOrder:
		return true
	}
	return false
}

// ConsumptionRecord es un registro inmutable de trazabilidad por (lote, operación)
// (tabla trazabilidad_lotes). Solo se inserta; nunca se actualiza ni se elimina.
type ConsumptionRecord struct {
	ID            int64
	BatchID       int64
	BatchCode     string
	MaterialID    int64
	Quantity      decimal.Decimal // siempre > 0
	OperationKind OperationKind
	OperationID   int64
	OperationCode string
	ConsumedAt    time.Time
	UserID        string
}
