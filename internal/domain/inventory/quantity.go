package inventory

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/manufactura-api/internal/domain"
)

// QuantityScale decimales que guardan las columnas NUMERIC(14,4) de cantidades.
const QuantityScale int32 = 4

// maxQuantity límite exclusivo de la parte entera de NUMERIC(14,4).
var maxQuantity = decimal.New(1, 10)

// HasValidScale indica si q se puede guardar sin redondeo.
func HasValidScale(q decimal.Decimal) bool {
	return q.Equal(q.Truncate(QuantityScale))
}

// CheckQuantity valida una cantidad a recibir o consumir: positiva, con a lo sumo
// QuantityScale decimales y dentro del rango de la columna.
func CheckQuantity(q decimal.Decimal) error {
	if !q.GreaterThan(decimal.Zero) {
		return fmt.Errorf("%w: la cantidad debe ser mayor que cero", domain.ErrInvalidQuantity)
	}
	return checkStorable(q)
}

// CheckThreshold valida un umbral mínimo: cero o positivo, representable.
func CheckThreshold(q decimal.Decimal) error {
	if q.IsNegative() {
		return fmt.Errorf("%w: el umbral no puede ser negativo", domain.ErrInvalidQuantity)
	}
	return checkStorable(q)
}

func checkStorable(q decimal.Decimal) error {
	if !HasValidScale(q) {
		return fmt.Errorf("%w: %s tiene más de %d decimales", domain.ErrInvalidQuantity, q.String(), QuantityScale)
	}
	if q.GreaterThanOrEqual(maxQuantity) {
		return fmt.Errorf("%w: %s excede el máximo permitido", domain.ErrInvalidQuantity, q.String())
	}
	return nil
}
