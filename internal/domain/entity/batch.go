package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de un lote.
const (
	BatchStatusAvailable = "Disponible"
	BatchStatusExhausted = "Agotado"
)

// Batch representa un lote recibido de una materia prima (tabla lotes).
// Quantity es la cantidad restante; nunca es negativa. Un lote agotado no se elimina.
// El orden FIFO es el orden ascendente de ID (orden de inserción).
type Batch struct {
	ID              int64
	MaterialID      int64
	Code            string // codigo_lote, único
	ReceivedAt      time.Time
	InitialQuantity decimal.Decimal
	Quantity        decimal.Decimal
	Unit            string
	CreatedAt       time.Time
}

// Exhausted indica si el lote ya no tiene cantidad disponible.
func (b *Batch) Exhausted() bool {
	return !b.Quantity.GreaterThan(decimal.Zero)
}

// Status deriva el estado del lote a partir de su cantidad restante.
func (b *Batch) Status() string {
	if b.Exhausted() {
		return BatchStatusExhausted
	}
	return BatchStatusAvailable
}
