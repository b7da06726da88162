package repository

import (
	"context"

	"github.com/jhoicas/manufactura-api/internal/domain/entity"
)

// MaterialRepository define el puerto de lectura de materias primas.
// Create existe para la administración de inventario y para sembrar datos.
type MaterialRepository interface {
	Create(ctx context.Context, material *entity.Material) error
	// GetByID devuelve domain.ErrNotFound si la materia no existe.
	GetByID(ctx context.Context, id int64) (*entity.Material, error)
}
