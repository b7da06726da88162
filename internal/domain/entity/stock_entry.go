package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados derivados del stock agregado.
const (
	StockStatusAvailable = "available"
	StockStatusLow       = "low"
	StockStatusDepleted  = "depleted"
)

// StockEntry es el total agregado por materia prima (tabla inventario).
// Objetivo: Quantity == suma de Quantity de los lotes de la materia.
// El estado no se almacena; se deriva en cada lectura con StockStatus.
type StockEntry struct {
	ID               int64
	MaterialID       int64
	MaterialName     string
	Quantity         decimal.Decimal
	Unit             string
	Location         string
	MinimumThreshold decimal.Decimal
	UpdatedAt        time.Time
}

// Status devuelve el estado derivado de la entrada.
func (s *StockEntry) Status() string {
	return StockStatus(s.Quantity, s.MinimumThreshold)
}

// StockStatus es función pura de (cantidad, umbral): depleted si es cero,
// low si está por debajo del umbral, available en otro caso.
func StockStatus(quantity, minimumThreshold decimal.Decimal) string {
	switch {
	case !quantity.GreaterThan(decimal.Zero):
		return StockStatusDepleted
	case quantity.LessThan(minimumThreshold):
		return StockStatusLow
	default:
		return StockStatusAvailable
	}
}
