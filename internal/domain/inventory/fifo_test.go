package inventory_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/manufactura-api/internal/domain"
	"github.com/jhoicas/manufactura-api/internal/domain/entity"
	"github.com/jhoicas/manufactura-api/internal/domain/inventory"
)

func batch(id int64, code string, qty int64) *entity.Batch {
	return &entity.Batch{ID: id, MaterialID: 1, Code: code, Quantity: decimal.NewFromInt(qty)}
}

// B1 (10, más antiguo), B2 (5), B3 (20): consumir 12 toma 10 de B1 y 2 de B2.
func TestPlanFIFO_OrdenMasAntiguoPrimero(t *testing.T) {
	batches := []*entity.Batch{batch(1, "B1", 10), batch(2, "B2", 5), batch(3, "B3", 20)}

	plan, err := inventory.PlanFIFO(1, decimal.NewFromInt(12), batches)
	require.NoError(t, err)
	require.Len(t, plan, 2)

	assert.Equal(t, int64(1), plan[0].BatchID)
	assert.True(t, plan[0].Quantity.Equal(decimal.NewFromInt(10)))
	assert.True(t, plan[0].Remaining.IsZero())
	assert.Equal(t, int64(2), plan[1].BatchID)
	assert.True(t, plan[1].Quantity.Equal(decimal.NewFromInt(2)))
	assert.True(t, plan[1].Remaining.Equal(decimal.NewFromInt(3)))
	assert.True(t, inventory.SumAllocations(plan).Equal(decimal.NewFromInt(12)))
}

func TestPlanFIFO_AgotamientoExacto(t *testing.T) {
	batches := []*entity.Batch{batch(1, "B1", 10), batch(2, "B2", 5), batch(3, "B3", 20)}

	plan, err := inventory.PlanFIFO(1, decimal.NewFromInt(35), batches)
	require.NoError(t, err)
	require.Len(t, plan, 3)
	for _, a := range plan {
		assert.True(t, a.Remaining.IsZero(), "lote %s debe quedar en cero", a.BatchCode)
		assert.False(t, a.Remaining.IsNegative())
	}
}

func TestPlanFIFO_IgnoraOrdenDeEntradaYLotesVacios(t *testing.T) {
	batches := []*entity.Batch{batch(9, "B9", 4), batch(2, "B2", 0), batch(5, "B5", 3)}

	plan, err := inventory.PlanFIFO(1, decimal.NewFromInt(5), batches)
	require.NoError(t, err)
	require.Len(t, plan, 2)
	assert.Equal(t, int64(5), plan[0].BatchID, "el lote 2 está vacío y no genera asignación")
	assert.Equal(t, int64(9), plan[1].BatchID)
	assert.True(t, plan[1].Quantity.Equal(decimal.NewFromInt(2)))
}

func TestPlanFIFO_Decimales(t *testing.T) {
	batches := []*entity.Batch{
		{ID: 1, Code: "A", Quantity: decimal.RequireFromString("0.75")},
		{ID: 2, Code: "B", Quantity: decimal.RequireFromString("1.30")},
	}
	plan, err := inventory.PlanFIFO(1, decimal.RequireFromString("1.5"), batches)
	require.NoError(t, err)
	require.Len(t, plan, 2)
	assert.Equal(t, "0.75", plan[1].Quantity.String())
	assert.Equal(t, "0.55", plan[1].Remaining.String())
}

func TestPlanFIFO_StockInsuficiente(t *testing.T) {
	batches := []*entity.Batch{batch(1, "B1", 10), batch(2, "B2", 5)}

	plan, err := inventory.PlanFIFO(4, decimal.NewFromInt(16), batches)
	require.Error(t, err)
	assert.Nil(t, plan)

	var ise *domain.InsufficientStockError
	require.True(t, errors.As(err, &ise))
	assert.Equal(t, int64(4), ise.MaterialID)
	assert.True(t, ise.Available.Equal(decimal.NewFromInt(15)))
	assert.True(t, ise.Requested.Equal(decimal.NewFromInt(16)))
}

func TestPlanFIFO_CantidadNoPositiva(t *testing.T) {
	for _, q := range []decimal.Decimal{decimal.Zero, decimal.NewFromInt(-3)} {
		_, err := inventory.PlanFIFO(1, q, []*entity.Batch{batch(1, "B1", 10)})
		assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
	}
}

func TestNormalizeCode(t *testing.T) {
	assert.Equal(t, "LOTE-ANO 1", inventory.NormalizeCode("  lote-año   1 "))
	assert.Equal(t, "ALGODON-001", inventory.NormalizeCode("Algodón-001"))
	assert.Equal(t, "", inventory.NormalizeCode("   "))
}

func TestSuggestedOrderQuantity(t *testing.T) {
	d := decimal.NewFromInt
	assert.True(t, inventory.SuggestedOrderQuantity(d(4), d(10)).Equal(d(11)))
	assert.True(t, inventory.SuggestedOrderQuantity(d(20), d(10)).IsZero())
}
