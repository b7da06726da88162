package repository

import (
	"context"

	"github.com/jhoicas/manufactura-api/internal/domain/entity"
)

// ProductionOrderRepository persiste órdenes de producción.
type ProductionOrderRepository interface {
	// Create inserta la orden; código duplicado: domain.ErrDuplicate.
	Create(ctx context.Context, order *entity.ProductionOrder) error
	GetByID(ctx context.Context, id int64) (*entity.ProductionOrder, error)
}
