package inventory

import (
	"context"

	"github.com/jhoicas/manufactura-api/internal/domain/repository"
)

// Repos agrupa los repositorios del ledger atados a una misma transacción (o al pool fuera de ella).
type Repos struct {
	Materials repository.MaterialRepository
	Batches   repository.BatchRepository
	Stock     repository.StockEntryRepository
	Records   repository.ConsumptionRecordRepository
	Notes     repository.OutboundNoteRepository
	Orders    repository.ProductionOrderRepository
}

// TxRunner ejecuta una función dentro de una transacción, pasando repositorios atados a esa tx.
// El ctx recibido por fn lleva la transacción: si se llama Run otra vez con ese ctx,
// la función interna corre en una transacción anidada (savepoint) que se deshace sola
// si falla, y que solo se confirma cuando la transacción externa hace Commit.
type TxRunner interface {
	Run(ctx context.Context, fn func(ctx context.Context, repos Repos) error) error
}
