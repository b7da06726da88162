package entity

import "time"

// Estados de orden de producción.
const (
	ProductionOrderStatusInProgress = "En Proceso"
)

// ProductionOrder representa una orden de producción (tabla orden_produccion).
// Su creación consume materia prima por FIFO; el consumo queda en trazabilidad_lotes
// con OperationKind = production_order.
type ProductionOrder struct {
	ID            int64
	Code          string // cod_orden, único
	StartDate     time.Time
	EndDate       time.Time
	DeliveryDate  time.Time
	Status        string
	ProductModel  string
	Color         string
	Size          string
	TotalQuantity int
	UserID        string
	CreatedAt     time.Time
}
