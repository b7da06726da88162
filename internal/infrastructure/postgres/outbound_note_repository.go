package postgres

import (
	"context"

	"github.com/jhoicas/manufactura-api/internal/domain/entity"
	"github.com/jhoicas/manufactura-api/internal/domain/repository"
)

var _ repository.OutboundNoteRepository = (*OutboundNoteRepo)(nil)

// OutboundNoteRepo notas de salida sobre PostgreSQL (nota_salida y detalle_nota_salida).
type OutboundNoteRepo struct {
	q Querier
}

// NewOutboundNoteRepository construye el adaptador. Pasar pool o tx (Querier).
func NewOutboundNoteRepository(q Querier) *OutboundNoteRepo {
	return &OutboundNoteRepo{q: q}
}

func (r *OutboundNoteRepo) Create(ctx context.Context, n *entity.OutboundNote) error {
	query := `
		INSERT INTO nota_salida (codigo, fecha, motivo, estado, id_usuario, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	err := conn(ctx, r.q).QueryRow(ctx, query,
		n.Code, n.Date, n.Reason, n.Status, n.UserID, n.CreatedAt,
	).Scan(&n.ID)
	return classify("create outbound note", err)
}

func (r *OutboundNoteRepo) AddLine(ctx context.Context, l *entity.OutboundNoteLine) error {
	query := `
		INSERT INTO detalle_nota_salida (id_nota, id_materia, id_lote, cantidad, unidad_medida)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	err := conn(ctx, r.q).QueryRow(ctx, query,
		l.NoteID, l.MaterialID, l.BatchID, l.Quantity, l.Unit,
	).Scan(&l.ID)
	return classify("add outbound note line", err)
}

// GetByID devuelve la cabecera con sus líneas en orden de inserción.
func (r *OutboundNoteRepo) GetByID(ctx context.Context, id int64) (*entity.OutboundNote, error) {
	q := conn(ctx, r.q)
	var n entity.OutboundNote
	err := q.QueryRow(ctx,
		`SELECT id, codigo, fecha, motivo, estado, id_usuario, created_at FROM nota_salida WHERE id = $1`, id,
	).Scan(&n.ID, &n.Code, &n.Date, &n.Reason, &n.Status, &n.UserID, &n.CreatedAt)
	if err != nil {
		return nil, classify("get outbound note", err)
	}

	rows, err := q.Query(ctx, `
		SELECT d.id, d.id_nota, d.id_materia, m.nombre, d.id_lote, l.codigo_lote, d.cantidad, d.unidad_medida
		FROM detalle_nota_salida d
		JOIN materias_primas m ON m.id = d.id_materia
		JOIN lotes l ON l.id = d.id_lote
		WHERE d.id_nota = $1
		ORDER BY d.id`, id)
	if err != nil {
		return nil, classify("list outbound note lines", err)
	}
	defer rows.Close()
	for rows.Next() {
		var l entity.OutboundNoteLine
		if err := rows.Scan(&l.ID, &l.NoteID, &l.MaterialID, &l.MaterialName, &l.BatchID, &l.BatchCode,
			&l.Quantity, &l.Unit); err != nil {
			return nil, classify("list outbound note lines", err)
		}
		n.Lines = append(n.Lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("list outbound note lines", err)
	}
	return &n, nil
}
