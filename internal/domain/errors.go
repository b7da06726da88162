package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Errores de dominio (sin dependencias de infraestructura).
var (
	ErrNotFound               = errors.New("recurso no encontrado")
	ErrInvalidInput           = errors.New("entrada inválida")
	ErrInvalidQuantity        = errors.New("cantidad inválida")
	ErrInsufficientStock      = errors.New("stock insuficiente")
	ErrConcurrentModification = errors.New("modificación concurrente detectada")
	ErrStorageUnavailable     = errors.New("almacenamiento no disponible")
	ErrConsumptionFailed      = errors.New("consumo de materia prima fallido")
	ErrDuplicate              = errors.New("recurso duplicado")
	ErrUnauthorized           = errors.New("no autorizado")
	ErrForbidden              = errors.New("acceso denegado")
)

// InsufficientStockError lleva las cantidades que el caller muestra al usuario.
// errors.Is(err, ErrInsufficientStock) es verdadero.
type InsufficientStockError struct {
	MaterialID int64
	Requested  decimal.Decimal
	Available  decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente para materia %d: disponible %s, requerido %s",
		e.MaterialID, e.Available.String(), e.Requested.String())
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// NewInsufficientStock construye el error con las cantidades disponibles y requeridas.
func NewInsufficientStock(materialID int64, requested, available decimal.Decimal) *InsufficientStockError {
	return &InsufficientStockError{MaterialID: materialID, Requested: requested, Available: available}
}

// ConsumptionError envuelve una falla ocurrida mientras se recorrían los lotes.
// Coincide con ErrConsumptionFailed y también con la causa original.
type ConsumptionError struct {
	MaterialID int64
	BatchID    int64
	Err        error
}

func (e *ConsumptionError) Error() string {
	if e.BatchID != 0 {
		return fmt.Sprintf("consumo de materia %d fallido en lote %d: %v", e.MaterialID, e.BatchID, e.Err)
	}
	return fmt.Sprintf("consumo de materia %d fallido: %v", e.MaterialID, e.Err)
}

func (e *ConsumptionError) Unwrap() []error { return []error{ErrConsumptionFailed, e.Err} }

// IsRetryable indica si la operación puede reintentarse tras un rollback completo.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConcurrentModification)
}
