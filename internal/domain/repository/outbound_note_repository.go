package repository

import (
	"context"

	"github.com/jhoicas/manufactura-api/internal/domain/entity"
)

// OutboundNoteRepository persiste notas de salida y sus líneas.
type OutboundNoteRepository interface {
	Create(ctx context.Context, note *entity.OutboundNote) error
	AddLine(ctx context.Context, line *entity.OutboundNoteLine) error
	// GetByID devuelve la nota con sus líneas; domain.ErrNotFound si no existe.
	GetByID(ctx context.Context, id int64) (*entity.OutboundNote, error)
}
