package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/manufactura-api/internal/domain"
	"github.com/jhoicas/manufactura-api/internal/domain/entity"
	"github.com/jhoicas/manufactura-api/internal/domain/repository"
)

var _ repository.ConsumptionRecordRepository = (*ConsumptionRecordRepo)(nil)

// ConsumptionRecordRepo trazabilidad sobre PostgreSQL (tabla trazabilidad_lotes).
// La tabla tiene un trigger que rechaza UPDATE y DELETE.
type ConsumptionRecordRepo struct {
	q Querier
}

// NewConsumptionRecordRepository construye el adaptador. Pasar pool o tx (Querier).
func NewConsumptionRecordRepository(q Querier) *ConsumptionRecordRepo {
	return &ConsumptionRecordRepo{q: q}
}

func (r *ConsumptionRecordRepo) Append(ctx context.Context, rec *entity.ConsumptionRecord) error {
	if !rec.Quantity.GreaterThan(decimal.Zero) {
		return domain.ErrInvalidQuantity
	}
	query := `
		INSERT INTO trazabilidad_lotes
			(id_lote, id_materia, cantidad_consumida, tipo_operacion, id_operacion, codigo_operacion, fecha_consumo, id_usuario)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`
	err := conn(ctx, r.q).QueryRow(ctx, query,
		rec.BatchID, rec.MaterialID, rec.Quantity, string(rec.OperationKind), rec.OperationID,
		rec.OperationCode, rec.ConsumedAt, rec.UserID,
	).Scan(&rec.ID)
	return classify("append consumption record", err)
}

// List aplica un único criterio del filtro; más recientes primero.
func (r *ConsumptionRecordRepo) List(ctx context.Context, f repository.HistoryFilter) ([]*entity.ConsumptionRecord, error) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	switch {
	case f.OperationKind != "":
		add("t.tipo_operacion = $%d", string(f.OperationKind))
		add("t.id_operacion = $%d", f.OperationID)
	case f.BatchID != 0:
		add("t.id_lote = $%d", f.BatchID)
	case f.MaterialID != 0:
		add("t.id_materia = $%d", f.MaterialID)
	}

	query := `
		SELECT t.id, t.id_lote, l.codigo_lote, t.id_materia, t.cantidad_consumida, t.tipo_operacion,
		       t.id_operacion, t.codigo_operacion, t.fecha_consumo, t.id_usuario
		FROM trazabilidad_lotes t
		JOIN lotes l ON l.id = t.id_lote`
	if len(where) > 0 {
		query += "\n\t\tWHERE " + strings.Join(where, " AND ")
	}
	query += "\n\t\tORDER BY t.fecha_consumo DESC, t.id DESC"
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if f.Offset > 0 {
		args = append(args, f.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := conn(ctx, r.q).Query(ctx, query, args...)
	if err != nil {
		return nil, classify("list consumption records", err)
	}
	defer rows.Close()

	out := []*entity.ConsumptionRecord{}
	for rows.Next() {
		var (
			rec  entity.ConsumptionRecord
			kind string
		)
		if err := rows.Scan(&rec.ID, &rec.BatchID, &rec.BatchCode, &rec.MaterialID, &rec.Quantity, &kind,
			&rec.OperationID, &rec.OperationCode, &rec.ConsumedAt, &rec.UserID); err != nil {
			return nil, classify("list consumption records", err)
		}
		rec.OperationKind = entity.OperationKind(kind)
		out = append(out, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("list consumption records", err)
	}
	return out, nil
}

// SumConsumedSince usa idx_traza_materia (id_materia, fecha_consumo).
func (r *ConsumptionRecordRepo) SumConsumedSince(ctx context.Context, materialID int64, since time.Time) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(cantidad_consumida), 0)
		FROM trazabilidad_lotes
		WHERE id_materia = $1 AND fecha_consumo >= $2`
	var total decimal.Decimal
	if err := conn(ctx, r.q).QueryRow(ctx, query, materialID, since).Scan(&total); err != nil {
		return decimal.Zero, classify("sum consumption records", err)
	}
	return total, nil
}
