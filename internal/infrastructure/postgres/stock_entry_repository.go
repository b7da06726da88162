package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/manufactura-api/internal/domain"
	"github.com/jhoicas/manufactura-api/internal/domain/entity"
	"github.com/jhoicas/manufactura-api/internal/domain/repository"
)

var _ repository.StockEntryRepository = (*StockEntryRepo)(nil)

// StockEntryRepo stock agregado por materia sobre PostgreSQL (tabla inventario).
// El estado no se guarda: se deriva al leer.
type StockEntryRepo struct {
	q Querier
}

// NewStockEntryRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockEntryRepository(q Querier) *StockEntryRepo {
	return &StockEntryRepo{q: q}
}

const stockSelect = `
	SELECT i.id, i.id_materia, m.nombre, i.cantidad_actual, i.unidad_medida, i.ubicacion,
	       i.umbral_minimo, i.fecha_actualizacion
	FROM inventario i
	JOIN materias_primas m ON m.id = i.id_materia`

func scanStockEntry(row pgx.Row) (*entity.StockEntry, error) {
	var e entity.StockEntry
	err := row.Scan(&e.ID, &e.MaterialID, &e.MaterialName, &e.Quantity, &e.Unit, &e.Location,
		&e.MinimumThreshold, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Get obtiene el total agregado de una materia.
func (r *StockEntryRepo) Get(ctx context.Context, materialID int64) (*entity.StockEntry, error) {
	e, err := scanStockEntry(conn(ctx, r.q).QueryRow(ctx, stockSelect+` WHERE i.id_materia = $1`, materialID))
	if err != nil {
		return nil, classify("get stock entry", err)
	}
	return e, nil
}

// GetForUpdate obtiene el total y bloquea la fila (SELECT FOR UPDATE); es el candado por materia.
func (r *StockEntryRepo) GetForUpdate(ctx context.Context, materialID int64) (*entity.StockEntry, error) {
	e, err := scanStockEntry(conn(ctx, r.q).QueryRow(ctx, stockSelect+` WHERE i.id_materia = $1 FOR UPDATE OF i`, materialID))
	if err != nil {
		return nil, classify("get stock entry for update", err)
	}
	return e, nil
}

func (r *StockEntryRepo) List(ctx context.Context) ([]*entity.StockEntry, error) {
	rows, err := conn(ctx, r.q).Query(ctx, stockSelect+` ORDER BY i.id_materia`)
	if err != nil {
		return nil, classify("list stock", err)
	}
	defer rows.Close()

	var out []*entity.StockEntry
	for rows.Next() {
		e, err := scanStockEntry(rows)
		if err != nil {
			return nil, classify("list stock", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("list stock", err)
	}
	return out, nil
}

func (r *StockEntryRepo) Create(ctx context.Context, e *entity.StockEntry) error {
	query := `
		INSERT INTO inventario (id_materia, cantidad_actual, unidad_medida, ubicacion, umbral_minimo, fecha_actualizacion)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	err := conn(ctx, r.q).QueryRow(ctx, query,
		e.MaterialID, e.Quantity, e.Unit, e.Location, e.MinimumThreshold, e.UpdatedAt,
	).Scan(&e.ID)
	return classify("create stock entry", err)
}

// ApplyDelta suma delta al total, limitando en cero.
func (r *StockEntryRepo) ApplyDelta(ctx context.Context, materialID int64, delta decimal.Decimal, at time.Time) error {
	return r.exec(ctx, "apply stock delta",
		`UPDATE inventario SET cantidad_actual = GREATEST(cantidad_actual + $2, 0), fecha_actualizacion = $3 WHERE id_materia = $1`,
		materialID, delta, at)
}

func (r *StockEntryRepo) SetQuantity(ctx context.Context, materialID int64, quantity decimal.Decimal, at time.Time) error {
	return r.exec(ctx, "set stock quantity",
		`UPDATE inventario SET cantidad_actual = GREATEST($2::numeric, 0), fecha_actualizacion = $3 WHERE id_materia = $1`,
		materialID, quantity, at)
}

func (r *StockEntryRepo) SetMinimumThreshold(ctx context.Context, materialID int64, threshold decimal.Decimal, at time.Time) error {
	return r.exec(ctx, "set minimum threshold",
		`UPDATE inventario SET umbral_minimo = $2, fecha_actualizacion = $3 WHERE id_materia = $1`,
		materialID, threshold, at)
}

func (r *StockEntryRepo) exec(ctx context.Context, op, query string, args ...any) error {
	tag, err := conn(ctx, r.q).Exec(ctx, query, args...)
	if err != nil {
		return classify(op, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
