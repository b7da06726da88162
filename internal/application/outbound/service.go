package outbound

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/manufactura-api/internal/application/inventory"
	"github.com/jhoicas/manufactura-api/internal/domain"
	"github.com/jhoicas/manufactura-api/internal/domain/entity"
	invdomain "github.com/jhoicas/manufactura-api/internal/domain/inventory"
	"github.com/jhoicas/manufactura-api/pkg/logger"
)

// Item materia y cantidad a retirar.
type Item struct {
	MaterialID int64
	Quantity   decimal.Decimal
}

// CreateNoteRequest nota de salida manual. Si Code está vacío se genera NS-YYYYMMDD-xxxxxxxx.
type CreateNoteRequest struct {
	Code   string
	Date   time.Time
	Reason string
	UserID string
	Items  []Item
}

// Service driver de notas de salida: una nota consume todas sus materias o ninguna.
type Service struct {
	tx     inventory.TxRunner
	ledger *inventory.Ledger
	repos  inventory.Repos
	log    *logger.Logger
	now    func() time.Time
}

// NewService construye el driver.
func NewService(tx inventory.TxRunner, ledger *inventory.Ledger, repos inventory.Repos, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{tx: tx, ledger: ledger, repos: repos, log: log.Component("outbound"), now: time.Now}
}

// Create registra la nota y consume cada materia por FIFO dentro de una sola transacción.
// Genera una línea por cada lote efectivamente tocado. Cualquier error (incluido
// stock insuficiente en una sola materia) deshace la nota completa y se devuelve tal cual.
func (s *Service) Create(ctx context.Context, req CreateNoteRequest) (*entity.OutboundNote, error) {
	items, err := MergeItems(req.Items)
	if err != nil {
		return nil, err
	}
	now := s.now()
	code := strings.TrimSpace(req.Code)
	if code == "" {
		code = NewNoteCode(now)
	}
	date := req.Date
	if date.IsZero() {
		date = now
	}

	ctx, scope := inventory.WithCommitScope(ctx)
	var created *entity.OutboundNote
	err = s.tx.Run(ctx, func(ctx context.Context, r inventory.Repos) error {
		note := &entity.OutboundNote{
			Code:      code,
			Date:      date,
			Reason:    strings.TrimSpace(req.Reason),
			Status:    entity.OutboundNoteStatusCompleted,
			UserID:    req.UserID,
			CreatedAt: now,
		}
		if err := r.Notes.Create(ctx, note); err != nil {
			return err
		}
		lines, err := s.consumeIntoNote(ctx, r, note, items)
		if err != nil {
			return err
		}
		note.Lines = lines
		created = note
		return nil
	})
	if err != nil {
		s.log.Info().Err(err).Str("code", code).Msg("nota de salida rechazada")
		return nil, err
	}
	scope.Committed()
	s.log.Info().Int64("note_id", created.ID).Str("code", created.Code).Int("lines", len(created.Lines)).Msg("nota de salida registrada")
	return created, nil
}

// Get devuelve la nota con sus líneas.
func (s *Service) Get(ctx context.Context, id int64) (*entity.OutboundNote, error) {
	if id <= 0 {
		return nil, domain.ErrInvalidInput
	}
	return s.repos.Notes.GetByID(ctx, id)
}

// consumeIntoNote consume cada item con el ledger (anidado en la transacción de ctx)
// y agrega a la nota una línea por lote tocado.
func (s *Service) consumeIntoNote(ctx context.Context, r inventory.Repos, note *entity.OutboundNote, items []Item) ([]entity.OutboundNoteLine, error) {
	var lines []entity.OutboundNoteLine
	for _, it := range items {
		res, err := s.ledger.ConsumeInTx(ctx, inventory.ConsumptionRequest{
			MaterialID:    it.MaterialID,
			Quantity:      it.Quantity,
			OperationKind: entity.OperationOutboundNote,
			OperationID:   note.ID,
			OperationCode: note.Code,
			UserID:        note.UserID,
		})
		if err != nil {
			return nil, err
		}
		added, err := AddLines(ctx, r, note.ID, res)
		if err != nil {
			return nil, err
		}
		lines = append(lines, added...)
	}
	return lines, nil
}

// AddLines agrega una línea por lote del resultado de consumo.
func AddLines(ctx context.Context, r inventory.Repos, noteID int64, res *inventory.ConsumptionResult) ([]entity.OutboundNoteLine, error) {
	lines := make([]entity.OutboundNoteLine, 0, len(res.LotsTouched))
	for _, lot := range res.LotsTouched {
		line := &entity.OutboundNoteLine{
			NoteID:       noteID,
			MaterialID:   res.MaterialID,
			MaterialName: res.MaterialName,
			BatchID:      lot.BatchID,
			BatchCode:    lot.BatchCode,
			Quantity:     lot.Quantity,
			Unit:         res.Unit,
		}
		if err := r.Notes.AddLine(ctx, line); err != nil {
			return nil, err
		}
		lines = append(lines, *line)
	}
	return lines, nil
}

// MergeItems valida los items, suma los repetidos por materia y los ordena por ID de materia
// para que operaciones concurrentes tomen los candados en el mismo orden.
func MergeItems(items []Item) ([]Item, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: se requiere al menos una materia", domain.ErrInvalidInput)
	}
	byMaterial := make(map[int64]decimal.Decimal, len(items))
	for _, it := range items {
		if it.MaterialID <= 0 {
			return nil, domain.ErrInvalidInput
		}
		if err := invdomain.CheckQuantity(it.Quantity); err != nil {
			return nil, fmt.Errorf("materia %d: %w", it.MaterialID, err)
		}
		byMaterial[it.MaterialID] = byMaterial[it.MaterialID].Add(it.Quantity)
	}
	merged := make([]Item, 0, len(byMaterial))
	for id, qty := range byMaterial {
		if err := invdomain.CheckQuantity(qty); err != nil {
			return nil, fmt.Errorf("materia %d: %w", id, err)
		}
		merged = append(merged, Item{MaterialID: id, Quantity: qty})
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].MaterialID < merged[j].MaterialID })
	return merged, nil
}

// NewNoteCode genera un código NS-YYYYMMDD-xxxxxxxx.
func NewNoteCode(at time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("NS-%s-%s", at.Format("20060102"), suffix)
}
