package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/manufactura-api/internal/application/inventory"
)

var _ inventory.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool        *pgxpool.Pool
	lockTimeout time.Duration
}

// NewTxRunner construye el runner con el pool. lockTimeout > 0 se aplica con SET LOCAL
// a cada transacción: esperar un candado más de eso termina en ErrConcurrentModification.
func NewTxRunner(pool *pgxpool.Pool, lockTimeout time.Duration) *TxRunner {
	return &TxRunner{pool: pool, lockTimeout: lockTimeout}
}

// Repos devuelve los repositorios sobre el pool (fuera de transacción).
func (r *TxRunner) Repos() inventory.Repos {
	return newRepos(r.pool)
}

func newRepos(q Querier) inventory.Repos {
	return inventory.Repos{
		Materials: NewMaterialRepository(q),
		Batches:   NewBatchRepository(q),
		Stock:     NewStockEntryRepository(q),
		Records:   NewConsumptionRecordRepository(q),
		Notes:     NewOutboundNoteRepository(q),
		Orders:    NewProductionOrderRepository(q),
	}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
// Si ctx ya lleva una transacción, abre un SAVEPOINT: un error en fn deshace solo lo hecho
// dentro de fn y la transacción externa decide el Commit final.
func (r *TxRunner) Run(ctx context.Context, fn func(ctx context.Context, repos inventory.Repos) error) error {
	if outer, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		sp, err := outer.Begin(ctx)
		if err != nil {
			return classify("savepoint", err)
		}
		defer func() { _ = sp.Rollback(ctx) }()

		if err := fn(context.WithValue(ctx, txKey{}, sp), newRepos(sp)); err != nil {
			return err
		}
		if err := sp.Commit(ctx); err != nil {
			return classify("release savepoint", err)
		}
		return nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return classify("begin transaction", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if r.lockTimeout > 0 {
		timeout := fmt.Sprintf("%dms", r.lockTimeout.Milliseconds())
		if _, err := tx.Exec(ctx, `SELECT set_config('lock_timeout', $1, true)`, timeout); err != nil {
			return classify("set lock_timeout", err)
		}
	}

	if err := fn(context.WithValue(ctx, txKey{}, tx), newRepos(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return classify("commit transaction", err)
	}
	return nil
}
