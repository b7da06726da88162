package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/manufactura-api/internal/domain/entity"
)

// StockEntryRepository es el Aggregate Stock View: total por materia, tabla independiente de lotes.
type StockEntryRepository interface {
	// Get devuelve domain.ErrNotFound si no hay entrada para la materia.
	Get(ctx context.Context, materialID int64) (*entity.StockEntry, error)
	// GetForUpdate igual que Get pero bloquea la fila; sirve de candado por materia.
	GetForUpdate(ctx context.Context, materialID int64) (*entity.StockEntry, error)
	List(ctx context.Context) ([]*entity.StockEntry, error)
	Create(ctx context.Context, entry *entity.StockEntry) error
	// ApplyDelta suma delta al total (limitando en cero) y actualiza la fecha.
	ApplyDelta(ctx context.Context, materialID int64, delta decimal.Decimal, at time.Time) error
	// SetQuantity fija el total (usado por la conciliación).
	SetQuantity(ctx context.Context, materialID int64, quantity decimal.Decimal, at time.Time) error
	SetMinimumThreshold(ctx context.Context, materialID int64, threshold decimal.Decimal, at time.Time) error
}
