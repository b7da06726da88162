package inventory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/manufactura-api/internal/domain/inventory"
)

// replenishmentWindowDays ventana del consumo reciente usada para desempatar.
const replenishmentWindowDays = 30

// ReplenishmentSuggestion materia por debajo de su umbral con la cantidad sugerida de pedido.
type ReplenishmentSuggestion struct {
	MaterialID         int64
	MaterialName       string
	Unit               string
	CurrentStock       decimal.Decimal
	MinimumThreshold   decimal.Decimal
	IdealStock         decimal.Decimal
	SuggestedOrderQty  decimal.Decimal
	ConsumedLast30Days decimal.Decimal
	Status             string
	Priority           int
}

// ReplenishmentList devuelve las materias con total por debajo del umbral mínimo,
// ordenadas por mayor déficit y luego por mayor consumo reciente.
func (l *Ledger) ReplenishmentList(ctx context.Context) ([]ReplenishmentSuggestion, error) {
	// 1. Entradas bajo el umbral
	entries, err := l.repos.Stock.List(ctx)
	if err != nil {
		return nil, err
	}
	since := l.opts.Now().AddDate(0, 0, -replenishmentWindowDays)

	suggestions := make([]ReplenishmentSuggestion, 0)
	for _, e := range entries {
		if !e.MinimumThreshold.GreaterThan(decimal.Zero) || !e.Quantity.LessThan(e.MinimumThreshold) {
			continue
		}
		// 2. Consumo reciente desde la trazabilidad
		consumed, err := l.repos.Records.SumConsumedSince(ctx, e.MaterialID, since)
		if err != nil {
			return nil, err
		}

		suggestions = append(suggestions, ReplenishmentSuggestion{
			MaterialID:         e.MaterialID,
			MaterialName:       e.MaterialName,
			Unit:               e.Unit,
			CurrentStock:       e.Quantity,
			MinimumThreshold:   e.MinimumThreshold,
			IdealStock:         e.MinimumThreshold.Mul(inventory.IdealStockFactor),
			SuggestedOrderQty:  inventory.SuggestedOrderQuantity(e.Quantity, e.MinimumThreshold),
			ConsumedLast30Days: consumed,
			Status:             e.Status(),
		})
	}

	// 3. Ordenar: mayor déficit bajo el umbral, luego mayor consumo reciente
	sort.SliceStable(suggestions, func(i, j int) bool {
		a, b := suggestions[i], suggestions[j]
		defA := a.MinimumThreshold.Sub(a.CurrentStock)
		defB := b.MinimumThreshold.Sub(b.CurrentStock)
		if !defA.Equal(defB) {
			return defA.GreaterThan(defB)
		}
		if !a.ConsumedLast30Days.Equal(b.ConsumedLast30Days) {
			return a.ConsumedLast30Days.GreaterThan(b.ConsumedLast30Days)
		}
		return a.MaterialID < b.MaterialID
	})

	// 4. Prioridad (1 = más urgente)
	for i := range suggestions {
		suggestions[i].Priority = i + 1
	}
	return suggestions, nil
}
