package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de nota de salida.
const (
	OutboundNoteStatusCompleted = "Completado"
)

// OutboundNote es la cabecera de una nota de salida manual de materia prima (tabla nota_salida).
type OutboundNote struct {
	ID        int64
	Code      string
	Date      time.Time
	Reason    string // motivo
	Status    string
	UserID    string
	CreatedAt time.Time
	Lines     []OutboundNoteLine
}

// OutboundNoteLine es una línea de la nota: una por cada lote efectivamente consumido
// (tabla detalle_nota_salida).
type OutboundNoteLine struct {
	ID           int64
	NoteID       int64
	MaterialID   int64
	MaterialName string
	BatchID      int64
	BatchCode    string
	Quantity     decimal.Decimal
	Unit         string
}
