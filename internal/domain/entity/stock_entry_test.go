package entity_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/manufactura-api/internal/domain/entity"
)

func TestStockStatus(t *testing.T) {
	d := decimal.NewFromInt
	cases := []struct {
		name      string
		quantity  decimal.Decimal
		threshold decimal.Decimal
		want      string
	}{
		{"cero es agotado", d(0), d(10), entity.StockStatusDepleted},
		{"cero sin umbral es agotado", d(0), d(0), entity.StockStatusDepleted},
		{"bajo el umbral", d(9), d(10), entity.StockStatusLow},
		{"igual al umbral es disponible", d(10), d(10), entity.StockStatusAvailable},
		{"sin umbral es disponible", decimal.RequireFromString("0.01"), d(0), entity.StockStatusAvailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, entity.StockStatus(tc.quantity, tc.threshold))
			e := entity.StockEntry{Quantity: tc.quantity, MinimumThreshold: tc.threshold}
			assert.Equal(t, tc.want, e.Status())
		})
	}
}

func TestBatchStatus(t *testing.T) {
	b := entity.Batch{Quantity: decimal.Zero}
	assert.True(t, b.Exhausted())
	assert.Equal(t, entity.BatchStatusExhausted, b.Status())

	b.Quantity = decimal.NewFromInt(3)
	assert.False(t, b.Exhausted())
	assert.Equal(t, entity.BatchStatusAvailable, b.Status())
}

func TestOperationKind_IsValid(t *testing.T) {
	assert.True(t, entity.OperationOutboundNote.IsValid())
	assert.True(t, entity.OperationProductionOrder.IsValid())
	assert.False(t, entity.OperationKind("invoice").IsValid())
}
