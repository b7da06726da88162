package postgres

import (
	"context"

	"github.com/jhoicas/manufactura-api/internal/domain/entity"
	"github.com/jhoicas/manufactura-api/internal/domain/repository"
)

var _ repository.MaterialRepository = (*MaterialRepo)(nil)

// MaterialRepo materias primas sobre PostgreSQL (tabla materias_primas).
type MaterialRepo struct {
	q Querier
}

// NewMaterialRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMaterialRepository(q Querier) *MaterialRepo {
	return &MaterialRepo{q: q}
}

func (r *MaterialRepo) Create(ctx context.Context, m *entity.Material) error {
	query := `
		INSERT INTO materias_primas (nombre, tipo_material)
		VALUES ($1, $2)
		RETURNING id, created_at`
	err := conn(ctx, r.q).QueryRow(ctx, query, m.Name, m.Category).Scan(&m.ID, &m.CreatedAt)
	return classify("create material", err)
}

func (r *MaterialRepo) GetByID(ctx context.Context, id int64) (*entity.Material, error) {
	query := `SELECT id, nombre, tipo_material, created_at FROM materias_primas WHERE id = $1`
	var m entity.Material
	if err := conn(ctx, r.q).QueryRow(ctx, query, id).Scan(&m.ID, &m.Name, &m.Category, &m.CreatedAt); err != nil {
		return nil, classify("get material", err)
	}
	return &m, nil
}
