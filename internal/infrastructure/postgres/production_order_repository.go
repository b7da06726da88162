package postgres

import (
	"context"
	"time"

	"github.com/jhoicas/manufactura-api/internal/domain/entity"
	"github.com/jhoicas/manufactura-api/internal/domain/repository"
)

var _ repository.ProductionOrderRepository = (*ProductionOrderRepo)(nil)

// ProductionOrderRepo órdenes de producción sobre PostgreSQL (tabla orden_produccion).
type ProductionOrderRepo struct {
	q Querier
}

// NewProductionOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewProductionOrderRepository(q Querier) *ProductionOrderRepo {
	return &ProductionOrderRepo{q: q}
}

func (r *ProductionOrderRepo) Create(ctx context.Context, o *entity.ProductionOrder) error {
	query := `
		INSERT INTO orden_produccion
			(cod_orden, fecha_inicio, fecha_fin, fecha_entrega, estado, modelo_producto, color, talla,
			 cantidad_total, id_usuario, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`
	err := conn(ctx, r.q).QueryRow(ctx, query,
		o.Code, o.StartDate, nullTime(o.EndDate), nullTime(o.DeliveryDate), o.Status, o.ProductModel,
		o.Color, o.Size, o.TotalQuantity, o.UserID, o.CreatedAt,
	).Scan(&o.ID)
	return classify("create production order", err)
}

func (r *ProductionOrderRepo) GetByID(ctx context.Context, id int64) (*entity.ProductionOrder, error) {
	query := `
		SELECT id, cod_orden, fecha_inicio, fecha_fin, fecha_entrega, estado, modelo_producto, color, talla,
		       cantidad_total, id_usuario, created_at
		FROM orden_produccion WHERE id = $1`
	var (
		o             entity.ProductionOrder
		end, delivery *time.Time
	)
	err := conn(ctx, r.q).QueryRow(ctx, query, id).Scan(
		&o.ID, &o.Code, &o.StartDate, &end, &delivery, &o.Status, &o.ProductModel, &o.Color, &o.Size,
		&o.TotalQuantity, &o.UserID, &o.CreatedAt,
	)
	if err != nil {
		return nil, classify("get production order", err)
	}
	o.EndDate = fromNullTime(end)
	o.DeliveryDate = fromNullTime(delivery)
	return &o, nil
}
