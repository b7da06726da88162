package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ─── Lotes ───────────────────────────────────────────────────────────────────

// ReceiveBatchRequest entrada para registrar un lote recibido.
type ReceiveBatchRequest struct {
	MaterialID int64           `json:"material_id" validate:"required,gt=0"`
	Code       string          `json:"code" validate:"required,max=60"`
	Quantity   decimal.Decimal `json:"quantity" validate:"required,gt=0,qscale"`
	Unit       string          `json:"unit" validate:"required,max=20"`
	ReceivedAt *time.Time      `json:"received_at,omitempty"`
	Location   string          `json:"location" validate:"max=100"`
}

// BatchDTO salida de un lote. Status se deriva de la cantidad restante.
type BatchDTO struct {
	ID              int64           `json:"id"`
	MaterialID      int64           `json:"material_id"`
	Code            string          `json:"code"`
	ReceivedAt      time.Time       `json:"received_at"`
	InitialQuantity decimal.Decimal `json:"initial_quantity"`
	Quantity        decimal.Decimal `json:"quantity"`
	Unit            string          `json:"unit"`
	Status          string          `json:"status"`
}

// ─── Stock agregado ──────────────────────────────────────────────────────────

// StockDTO total agregado de una materia con su estado derivado.
type StockDTO struct {
	MaterialID       int64           `json:"material_id"`
	MaterialName     string          `json:"material_name"`
	Quantity         decimal.Decimal `json:"quantity"`
	Unit             string          `json:"unit"`
	Location         string          `json:"location"`
	Status           string          `json:"status"`
	MinimumThreshold decimal.Decimal `json:"minimum_threshold"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// SetThresholdRequest entrada para fijar el umbral mínimo (cero lo desactiva).
type SetThresholdRequest struct {
	MinimumThreshold decimal.Decimal `json:"minimum_threshold" validate:"gte=0,qscale"`
}

// ReconcileDTO resultado de la conciliación del agregado contra los lotes.
type ReconcileDTO struct {
	MaterialID int64           `json:"material_id"`
	Before     decimal.Decimal `json:"before"`
	After      decimal.Decimal `json:"after"`
	Adjusted   bool            `json:"adjusted"`
}

// ReplenishmentSuggestionDTO fila de la lista de reposición.
type ReplenishmentSuggestionDTO struct {
	MaterialID         int64           `json:"material_id"`
	MaterialName       string          `json:"material_name"`
	Unit               string          `json:"unit"`
	CurrentStock       decimal.Decimal `json:"current_stock"`
	MinimumThreshold   decimal.Decimal `json:"minimum_threshold"`
	IdealStock         decimal.Decimal `json:"ideal_stock"`
	SuggestedOrderQty  decimal.Decimal `json:"suggested_order_qty"`
	ConsumedLast30Days decimal.Decimal `json:"consumed_last_30_days"`
	Status             string          `json:"status"`
	Priority           int             `json:"priority"`
}

// ─── Consumo ─────────────────────────────────────────────────────────────────

// ItemRequest materia y cantidad pedida por una operación.
type ItemRequest struct {
	MaterialID int64           `json:"material_id" validate:"required,gt=0"`
	Quantity   decimal.Decimal `json:"quantity" validate:"required,gt=0,qscale"`
}

// LotTouchedDTO cantidad tomada de un lote.
type LotTouchedDTO struct {
	BatchID   int64           `json:"batch_id"`
	BatchCode string          `json:"batch_code"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// ConsumptionDTO detalle del consumo FIFO de una materia.
type ConsumptionDTO struct {
	MaterialID    int64           `json:"material_id"`
	MaterialName  string          `json:"material_name"`
	Unit          string          `json:"unit"`
	TotalConsumed decimal.Decimal `json:"total_consumed"`
	Lots          []LotTouchedDTO `json:"lots"`
}

// ConsumptionRecordDTO registro de trazabilidad.
type ConsumptionRecordDTO struct {
	ID            int64           `json:"id"`
	BatchID       int64           `json:"batch_id"`
	BatchCode     string          `json:"batch_code"`
	MaterialID    int64           `json:"material_id"`
	Quantity      decimal.Decimal `json:"quantity"`
	OperationKind string          `json:"operation_kind"`
	OperationID   int64           `json:"operation_id"`
	OperationCode string          `json:"operation_code"`
	ConsumedAt    time.Time       `json:"consumed_at"`
	UserID        string          `json:"user_id"`
}

// HistoryResponse página de trazabilidad.
type HistoryResponse struct {
	Records []ConsumptionRecordDTO `json:"records"`
	Page    PageResponse           `json:"page"`
}

// ─── Notas de salida ─────────────────────────────────────────────────────────

// CreateOutboundNoteRequest entrada de una nota de salida. Code vacío: se genera.
type CreateOutboundNoteRequest struct {
	Code   string        `json:"code" validate:"max=40"`
	Date   *time.Time    `json:"date,omitempty"`
	Reason string        `json:"reason" validate:"max=500"`
	Items  []ItemRequest `json:"items" validate:"required,min=1,dive"`
}

// OutboundNoteLineDTO línea de nota: una por lote consumido.
type OutboundNoteLineDTO struct {
	ID           int64           `json:"id"`
	MaterialID   int64           `json:"material_id"`
	MaterialName string          `json:"material_name"`
	BatchID      int64           `json:"batch_id"`
	BatchCode    string          `json:"batch_code"`
	Quantity     decimal.Decimal `json:"quantity"`
	Unit         string          `json:"unit"`
}

// OutboundNoteDTO salida de una nota con sus líneas.
type OutboundNoteDTO struct {
	ID     int64                 `json:"id"`
	Code   string                `json:"code"`
	Date   time.Time             `json:"date"`
	Reason string                `json:"reason"`
	Status string                `json:"status"`
	UserID string                `json:"user_id"`
	Lines  []OutboundNoteLineDTO `json:"lines"`
}

// ─── Órdenes de producción ───────────────────────────────────────────────────

// CreateProductionOrderRequest entrada de una orden de producción.
type CreateProductionOrderRequest struct {
	Code          string        `json:"code" validate:"required,max=40"`
	StartDate     *time.Time    `json:"start_date,omitempty"`
	EndDate       *time.Time    `json:"end_date,omitempty"`
	DeliveryDate  *time.Time    `json:"delivery_date,omitempty"`
	ProductModel  string        `json:"product_model" validate:"required,max=100"`
	Color         string        `json:"color" validate:"max=50"`
	Size          string        `json:"size" validate:"max=20"`
	TotalQuantity int           `json:"total_quantity" validate:"required,gt=0"`
	Materials     []ItemRequest `json:"materials" validate:"required,min=1,dive"`
}

// ProductionOrderDTO salida de una orden.
type ProductionOrderDTO struct {
	ID            int64      `json:"id"`
	Code          string     `json:"code"`
	StartDate     time.Time  `json:"start_date"`
	EndDate       *time.Time `json:"end_date,omitempty"`
	DeliveryDate  *time.Time `json:"delivery_date,omitempty"`
	Status        string     `json:"status"`
	ProductModel  string     `json:"product_model"`
	Color         string     `json:"color"`
	Size          string     `json:"size"`
	TotalQuantity int        `json:"total_quantity"`
	UserID        string     `json:"user_id"`
}

// ProductionOrderResultDTO orden creada con el consumo por materia.
type ProductionOrderResultDTO struct {
	Order         ProductionOrderDTO `json:"order"`
	Consumptions  []ConsumptionDTO   `json:"consumptions"`
	SyntheticNote *OutboundNoteDTO   `json:"synthetic_note,omitempty"`
}

// ProductionOrderDetailDTO orden con su trazabilidad.
type ProductionOrderDetailDTO struct {
	Order   ProductionOrderDTO     `json:"order"`
	Records []ConsumptionRecordDTO `json:"records"`
}
