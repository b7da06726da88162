package production

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/manufactura-api/internal/application/inventory"
	"github.com/jhoicas/manufactura-api/internal/application/outbound"
	"github.com/jhoicas/manufactura-api/internal/domain"
	"github.com/jhoicas/manufactura-api/internal/domain/entity"
	"github.com/jhoicas/manufactura-api/internal/domain/repository"
	"github.com/jhoicas/manufactura-api/pkg/logger"
)

// CreateOrderRequest orden de producción con las materias que consume.
type CreateOrderRequest struct {
	Code          string
	StartDate     time.Time
	EndDate       time.Time
	DeliveryDate  time.Time
	ProductModel  string
	Color         string
	Size          string
	TotalQuantity int
	UserID        string
	Materials     []outbound.Item
}

// OrderResult orden creada con el detalle de consumo por materia.
// SyntheticNote solo se llena con la opción de compatibilidad activada.
type OrderResult struct {
	Order         *entity.ProductionOrder
	Consumptions  []*inventory.ConsumptionResult
	SyntheticNote *entity.OutboundNote
}

// OrderDetail orden con su trazabilidad.
type OrderDetail struct {
	Order   *entity.ProductionOrder
	Records []*entity.ConsumptionRecord
}

// Options del driver de órdenes.
type Options struct {
	// SyntheticOutboundNote crea además una nota de salida con una línea por lote,
	// para reportes que todavía leen consumos desde las notas.
	SyntheticOutboundNote bool
	Logger                *logger.Logger
}

// Service driver de órdenes de producción.
type Service struct {
	tx     inventory.TxRunner
	ledger *inventory.Ledger
	repos  inventory.Repos
	opts   Options
	log    *logger.Logger
	now    func() time.Time
}

// NewService construye el driver.
func NewService(tx inventory.TxRunner, ledger *inventory.Ledger, repos inventory.Repos, opts Options) *Service {
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	return &Service{
		tx:     tx,
		ledger: ledger,
		repos:  repos,
		opts:   opts,
		log:    opts.Logger.Component("production"),
		now:    time.Now,
	}
}

func (req CreateOrderRequest) validate() error {
	if strings.TrimSpace(req.Code) == "" || strings.TrimSpace(req.ProductModel) == "" {
		return fmt.Errorf("%w: código y modelo son obligatorios", domain.ErrInvalidInput)
	}
	if req.TotalQuantity <= 0 {
		return fmt.Errorf("%w: cantidad total de la orden", domain.ErrInvalidQuantity)
	}
	if !req.EndDate.IsZero() && !req.StartDate.IsZero() && req.EndDate.Before(req.StartDate) {
		return fmt.Errorf("%w: la fecha fin es anterior a la de inicio", domain.ErrInvalidInput)
	}
	return nil
}

// Create crea la orden (estado "En Proceso") y consume sus materias por FIFO en una sola
// transacción. Los consumos quedan etiquetados como production_order con el ID de la orden.
func (s *Service) Create(ctx context.Context, req CreateOrderRequest) (*OrderResult, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	items, err := outbound.MergeItems(req.Materials)
	if err != nil {
		return nil, err
	}
	now := s.now()
	start := req.StartDate
	if start.IsZero() {
		start = now
	}

	ctx, scope := inventory.WithCommitScope(ctx)
	var result *OrderResult
	err = s.tx.Run(ctx, func(ctx context.Context, r inventory.Repos) error {
		// 1) Orden
		order := &entity.ProductionOrder{
			Code:          strings.TrimSpace(req.Code),
			StartDate:     start,
			EndDate:       req.EndDate,
			DeliveryDate:  req.DeliveryDate,
			Status:        entity.ProductionOrderStatusInProgress,
			ProductModel:  strings.TrimSpace(req.ProductModel),
			Color:         strings.TrimSpace(req.Color),
			Size:          strings.TrimSpace(req.Size),
			TotalQuantity: req.TotalQuantity,
			UserID:        req.UserID,
			CreatedAt:     now,
		}
		if err := r.Orders.Create(ctx, order); err != nil {
			return err
		}
		res := &OrderResult{Order: order}

		// 2) Nota sintética antes de consumir (solo compatibilidad)
		if s.opts.SyntheticOutboundNote {
			note := &entity.OutboundNote{
				Code:      outbound.NewNoteCode(now),
				Date:      now,
				Reason:    fmt.Sprintf("Producción: %s - %s", order.ProductModel, order.Code),
				Status:    entity.OutboundNoteStatusCompleted,
				UserID:    req.UserID,
				CreatedAt: now,
			}
			if err := r.Notes.Create(ctx, note); err != nil {
				return err
			}
			res.SyntheticNote = note
		}

		// 3) Consumo FIFO por materia, en orden de ID de materia
		for _, it := range items {
			c, err := s.ledger.ConsumeInTx(ctx, inventory.ConsumptionRequest{
				MaterialID:    it.MaterialID,
				Quantity:      it.Quantity,
				OperationKind: entity.OperationProductionOrder,
				OperationID:   order.ID,
				OperationCode: order.Code,
				UserID:        req.UserID,
			})
			if err != nil {
				return err
			}
			res.Consumptions = append(res.Consumptions, c)
			if res.SyntheticNote != nil {
				lines, err := outbound.AddLines(ctx, r, res.SyntheticNote.ID, c)
				if err != nil {
					return err
				}
				res.SyntheticNote.Lines = append(res.SyntheticNote.Lines, lines...)
			}
		}
		result = res
		return nil
	})
	if err != nil {
		s.log.Info().Err(err).Str("code", req.Code).Msg("orden de producción rechazada")
		return nil, err
	}
	scope.Committed()
	s.log.Info().
		Int64("order_id", result.Order.ID).
		Str("code", result.Order.Code).
		Int("materials", len(result.Consumptions)).
		Msg("orden de producción creada")
	return result, nil
}

// Get devuelve la orden con los registros de trazabilidad de su consumo.
func (s *Service) Get(ctx context.Context, id int64) (*OrderDetail, error) {
	if id <= 0 {
		return nil, domain.ErrInvalidInput
	}
	order, err := s.repos.Orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	filter := repository.HistoryFilter{
		OperationKind: entity.OperationProductionOrder,
		OperationID:   order.ID,
		Limit:         inventory.MaxHistoryLimit,
	}
	var records []*entity.ConsumptionRecord
	for {
		page, err := s.ledger.ListConsumptionHistory(ctx, filter)
		if err != nil {
			return nil, err
		}
		records = append(records, page...)
		if len(page) < filter.Limit {
			break
		}
		filter.Offset += len(page)
	}
	return &OrderDetail{Order: order, Records: records}, nil
}
