package inventory

import "github.com/shopspring/decimal"

// IdealStockFactor multiplica el umbral mínimo para obtener el stock ideal de reposición.
var IdealStockFactor = decimal.NewFromFloat(1.5)

// SuggestedOrderQuantity = umbral * 1.5 - stock actual, nunca negativa.
func SuggestedOrderQuantity(current, minimumThreshold decimal.Decimal) decimal.Decimal {
	ideal := minimumThreshold.Mul(IdealStockFactor)
	qty := ideal.Sub(current)
	if qty.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return qty
}
