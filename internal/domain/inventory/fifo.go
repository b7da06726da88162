package inventory

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/manufactura-api/internal/domain"
	"github.com/jhoicas/manufactura-api/internal/domain/entity"
)

// Allocation es la porción a tomar de un lote concreto.
type Allocation struct {
	BatchID   int64
	BatchCode string
	Quantity  decimal.Decimal // cantidad a consumir (> 0)
	Remaining decimal.Decimal // cantidad que queda en el lote después del consumo
}

// PlanFIFO calcula el reparto de requested sobre los lotes, del más antiguo (menor ID)
// al más reciente. Los lotes sin cantidad se saltan y no generan asignación.
// Si la suma disponible no alcanza devuelve *domain.InsufficientStockError y ninguna asignación.
//
// take = min(lote.Quantity, restante); el último lote nunca queda negativo.
func PlanFIFO(materialID int64, requested decimal.Decimal, batches []*entity.Batch) ([]Allocation, error) {
	if !requested.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidQuantity
	}

	ordered := make([]*entity.Batch, 0, len(batches))
	available := decimal.Zero
	for _, b := range batches {
		if b == nil || !b.Quantity.GreaterThan(decimal.Zero) {
			continue
		}
		ordered = append(ordered, b)
		available = available.Add(b.Quantity)
	}
	if available.LessThan(requested) {
		return nil, domain.NewInsufficientStock(materialID, requested, available)
	}
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })

	remaining := requested
	allocations := make([]Allocation, 0, len(ordered))
	for _, b := range ordered {
		if !remaining.GreaterThan(decimal.Zero) {
			break
		}
		take := decimal.Min(b.Quantity, remaining)
		if !take.GreaterThan(decimal.Zero) {
			continue
		}
		allocations = append(allocations, Allocation{
			BatchID:   b.ID,
			BatchCode: b.Code,
			Quantity:  take,
			Remaining: b.Quantity.Sub(take),
		})
		remaining = remaining.Sub(take)
	}
	return allocations, nil
}

// SumAllocations devuelve la cantidad total asignada.
func SumAllocations(allocations []Allocation) decimal.Decimal {
	total := decimal.Zero
	for _, a := range allocations {
		total = total.Add(a.Quantity)
	}
	return total
}
