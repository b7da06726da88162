package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/manufactura-api/internal/domain/entity"
)

// BatchRepository es el Batch Store: almacenamiento durable de lotes y lectura ordenada para FIFO.
type BatchRepository interface {
	// Create inserta un lote y asigna su ID (creciente). Código duplicado: domain.ErrDuplicate.
	Create(ctx context.Context, batch *entity.Batch) error
	GetByID(ctx context.Context, id int64) (*entity.Batch, error)
	// ListAvailable devuelve los lotes con cantidad > 0 en orden ascendente de ID,
	// bloqueando sus filas (SELECT ... FOR UPDATE) cuando el adaptador lo soporta.
	ListAvailable(ctx context.Context, materialID int64) ([]*entity.Batch, error)
	// ListByMaterial devuelve todos los lotes de la materia (incluidos los agotados) por ID ascendente.
	ListByMaterial(ctx context.Context, materialID int64, includeExhausted bool) ([]*entity.Batch, error)
	// Decrement resta amount del lote. amount <= 0: domain.ErrInvalidQuantity.
	// Si la cantidad restante ya no alcanza, deja el lote en cero y devuelve
	// domain.ErrConcurrentModification.
	Decrement(ctx context.Context, batchID int64, amount decimal.Decimal) error
	// TotalAvailable suma la cantidad restante de todos los lotes de la materia.
	TotalAvailable(ctx context.Context, materialID int64) (decimal.Decimal, error)
}
