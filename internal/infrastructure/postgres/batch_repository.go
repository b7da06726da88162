package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/manufactura-api/internal/domain"
	"github.com/jhoicas/manufactura-api/internal/domain/entity"
	"github.com/jhoicas/manufactura-api/internal/domain/repository"
)

var _ repository.BatchRepository = (*BatchRepo)(nil)

// BatchRepo lotes sobre PostgreSQL (tabla lotes).
type BatchRepo struct {
	q Querier
}

// NewBatchRepository construye el adaptador. Pasar pool o tx (Querier).
func NewBatchRepository(q Querier) *BatchRepo {
	return &BatchRepo{q: q}
}

const batchColumns = `id, id_materia, codigo_lote, fecha_recepcion, cantidad_inicial, cantidad, unidad_medida, created_at`

func scanBatch(row pgx.Row) (*entity.Batch, error) {
	var b entity.Batch
	err := row.Scan(&b.ID, &b.MaterialID, &b.Code, &b.ReceivedAt, &b.InitialQuantity, &b.Quantity, &b.Unit, &b.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BatchRepo) Create(ctx context.Context, b *entity.Batch) error {
	query := `
		INSERT INTO lotes (id_materia, codigo_lote, fecha_recepcion, cantidad_inicial, cantidad, unidad_medida)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`
	err := conn(ctx, r.q).QueryRow(ctx, query,
		b.MaterialID, b.Code, b.ReceivedAt, b.InitialQuantity, b.Quantity, b.Unit,
	).Scan(&b.ID, &b.CreatedAt)
	return classify("create batch", err)
}

func (r *BatchRepo) GetByID(ctx context.Context, id int64) (*entity.Batch, error) {
	b, err := scanBatch(conn(ctx, r.q).QueryRow(ctx, `SELECT `+batchColumns+` FROM lotes WHERE id = $1`, id))
	if err != nil {
		return nil, classify("get batch", err)
	}
	return b, nil
}

// ListAvailable lotes con cantidad > 0, más antiguos primero, bloqueados hasta el fin de la tx.
func (r *BatchRepo) ListAvailable(ctx context.Context, materialID int64) ([]*entity.Batch, error) {
	query := `
		SELECT ` + batchColumns + `
		FROM lotes
		WHERE id_materia = $1 AND cantidad > 0
		ORDER BY id
		FOR UPDATE`
	return r.list(ctx, "list available batches", query, materialID)
}

func (r *BatchRepo) ListByMaterial(ctx context.Context, materialID int64, includeExhausted bool) ([]*entity.Batch, error) {
	query := `SELECT ` + batchColumns + ` FROM lotes WHERE id_materia = $1 AND ($2 OR cantidad > 0) ORDER BY id`
	return r.list(ctx, "list batches", query, materialID, includeExhausted)
}

func (r *BatchRepo) list(ctx context.Context, op, query string, args ...any) ([]*entity.Batch, error) {
	rows, err := conn(ctx, r.q).Query(ctx, query, args...)
	if err != nil {
		return nil, classify(op, err)
	}
	defer rows.Close()

	var out []*entity.Batch
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, classify(op, err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(op, err)
	}
	return out, nil
}

// Decrement resta solo si alcanza. Si no alcanza, deja el lote en cero y reporta
// modificación concurrente; la transacción del llamador se deshace de todos modos.
func (r *BatchRepo) Decrement(ctx context.Context, batchID int64, amount decimal.Decimal) error {
	if !amount.GreaterThan(decimal.Zero) {
		return domain.ErrInvalidQuantity
	}
	q := conn(ctx, r.q)
	tag, err := q.Exec(ctx, `UPDATE lotes SET cantidad = cantidad - $2 WHERE id = $1 AND cantidad >= $2`, batchID, amount)
	if err != nil {
		return classify("decrement batch", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	var id int64
	err = q.QueryRow(ctx, `UPDATE lotes SET cantidad = 0 WHERE id = $1 RETURNING id`, batchID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	if err != nil {
		return classify("clamp batch", err)
	}
	return domain.ErrConcurrentModification
}

func (r *BatchRepo) TotalAvailable(ctx context.Context, materialID int64) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := conn(ctx, r.q).QueryRow(ctx,
		`SELECT COALESCE(SUM(cantidad), 0) FROM lotes WHERE id_materia = $1`, materialID,
	).Scan(&total)
	if err != nil {
		return decimal.Zero, classify("total available", err)
	}
	return total, nil
}
