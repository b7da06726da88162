package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/manufactura-api/internal/domain"
	"github.com/jhoicas/manufactura-api/internal/domain/entity"
	"github.com/jhoicas/manufactura-api/internal/domain/inventory"
	"github.com/jhoicas/manufactura-api/internal/domain/repository"
	"github.com/jhoicas/manufactura-api/pkg/logger"
)

// Paginación del historial de trazabilidad.
const (
	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 500
)

// Options parámetros del ledger. Los valores cero toman los defaults.
type Options struct {
	Logger               *logger.Logger
	Metrics              *Metrics
	RetryMaxAttempts     int
	RetryInitialInterval time.Duration
	DefaultMinThreshold  decimal.Decimal
	Now                  func() time.Time
}

// Ledger es el motor de consumo FIFO por lotes junto con las lecturas del stock agregado
// y de la trazabilidad. Todas las mutaciones pasan por TxRunner.
type Ledger struct {
	tx      TxRunner
	repos   Repos
	log     *logger.Logger
	metrics *Metrics
	opts    Options
}

// NewLedger construye el ledger. repos se usa para lecturas fuera de transacción.
func NewLedger(tx TxRunner, repos Repos, opts Options) *Ledger {
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	if opts.RetryMaxAttempts < 1 {
		opts.RetryMaxAttempts = 3
	}
	if opts.RetryInitialInterval <= 0 {
		opts.RetryInitialInterval = 50 * time.Millisecond
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Ledger{
		tx:      tx,
		repos:   repos,
		log:     opts.Logger.Component("ledger"),
		metrics: opts.Metrics,
		opts:    opts,
	}
}

// ConsumptionRequest solicitud de consumo; la arma el driver de la operación.
type ConsumptionRequest struct {
	MaterialID    int64
	Quantity      decimal.Decimal
	OperationKind entity.OperationKind
	OperationID   int64
	OperationCode string
	UserID        string
}

// Validate verifica la solicitud antes de abrir la transacción.
func (r ConsumptionRequest) Validate() error {
	if err := inventory.CheckQuantity(r.Quantity); err != nil {
		return err
	}
	if r.MaterialID <= 0 || r.OperationID <= 0 {
		return domain.ErrInvalidInput
	}
	if !r.OperationKind.IsValid() {
		return fmt.Errorf("%w: tipo de operación %q", domain.ErrInvalidInput, r.OperationKind)
	}
	return nil
}

// LotTouched porción tomada de un lote.
type LotTouched struct {
	BatchID   int64
	BatchCode string
	Quantity  decimal.Decimal
}

// ConsumptionResult resultado de un consumo confirmado.
type ConsumptionResult struct {
	MaterialID    int64
	MaterialName  string
	Unit          string
	TotalConsumed decimal.Decimal
	LotsTouched   []LotTouched
}

// StockTotal lectura del stock agregado con estado derivado.
type StockTotal struct {
	MaterialID       int64
	MaterialName     string
	Quantity         decimal.Decimal
	Unit             string
	Location         string
	Status           string
	MinimumThreshold decimal.Decimal
	UpdatedAt        time.Time
}

func toStockTotal(e *entity.StockEntry) StockTotal {
	return StockTotal{
		MaterialID:       e.MaterialID,
		MaterialName:     e.MaterialName,
		Quantity:         e.Quantity,
		Unit:             e.Unit,
		Location:         e.Location,
		Status:           e.Status(),
		MinimumThreshold: e.MinimumThreshold,
		UpdatedAt:        e.UpdatedAt,
	}
}

// Consume es el único punto de entrada mutante para consumos sueltos.
// Corre en su propia transacción y reintenta, con backoff acotado, solo ante
// domain.ErrConcurrentModification (la transacción anterior ya se deshizo por completo).
func (l *Ledger) Consume(ctx context.Context, req ConsumptionRequest) (*ConsumptionResult, error) {
	if err := req.Validate(); err != nil {
		l.metrics.observeConsumption(req.OperationKind, ResultInvalid, decimal.Zero, 0)
		return nil, err
	}
	var result *ConsumptionResult
	err := l.withRetry(ctx, "consume", func() error {
		res, err := l.ConsumeInTx(ctx, req)
		if err != nil {
			return err
		}
		result = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ConsumeInTx ejecuta el consumo sin reintentos. Si ctx lleva una transacción abierta
// (driver de nota u orden), el consumo corre anidado en ella y solo se confirma con la externa;
// con un CommitScope en ctx, las métricas de éxito esperan a ese Commit.
func (l *Ledger) ConsumeInTx(ctx context.Context, req ConsumptionRequest) (*ConsumptionResult, error) {
	if err := req.Validate(); err != nil {
		l.metrics.observeConsumption(req.OperationKind, ResultInvalid, decimal.Zero, 0)
		return nil, err
	}
	var result *ConsumptionResult
	err := l.tx.Run(ctx, func(ctx context.Context, r Repos) error {
		res, err := l.consume(ctx, r, req)
		if err != nil {
			return err
		}
		result = res
		return nil
	})
	if err != nil {
		l.observe(req, nil, err)
		return nil, err
	}
	// Anidado en un driver: solo cuenta si la transacción externa confirma
	afterCommit(ctx, func() { l.observe(req, result, nil) })
	return result, nil
}

// consume aplica el algoritmo FIFO dentro de la transacción recibida.
func (l *Ledger) consume(ctx context.Context, r Repos, req ConsumptionRequest) (*ConsumptionResult, error) {
	// 1) Candado por materia: fila del stock agregado (SELECT FOR UPDATE)
	entry, err := r.Stock.GetForUpdate(ctx, req.MaterialID)
	if err != nil {
		return nil, err
	}
	// 2) Lotes disponibles, más antiguos primero, también bloqueados
	batches, err := r.Batches.ListAvailable(ctx, req.MaterialID)
	if err != nil {
		return nil, err
	}
	// 3) Verificación dentro de la misma transacción contra el Batch Store
	available, err := r.Batches.TotalAvailable(ctx, req.MaterialID)
	if err != nil {
		return nil, err
	}
	if available.LessThan(req.Quantity) {
		return nil, domain.NewInsufficientStock(req.MaterialID, req.Quantity, available)
	}
	allocations, err := inventory.PlanFIFO(req.MaterialID, req.Quantity, batches)
	if err != nil {
		return nil, err
	}

	// 4) Descontar lote por lote y registrar trazabilidad
	now := l.opts.Now()
	lots := make([]LotTouched, 0, len(allocations))
	for _, a := range allocations {
		if err := r.Batches.Decrement(ctx, a.BatchID, a.Quantity); err != nil {
			return nil, &domain.ConsumptionError{MaterialID: req.MaterialID, BatchID: a.BatchID, Err: err}
		}
		rec := &entity.ConsumptionRecord{
			BatchID:       a.BatchID,
			BatchCode:     a.BatchCode,
			MaterialID:    req.MaterialID,
			Quantity:      a.Quantity,
			OperationKind: req.OperationKind,
			OperationID:   req.OperationID,
			OperationCode: req.OperationCode,
			ConsumedAt:    now,
			UserID:        req.UserID,
		}
		if err := r.Records.Append(ctx, rec); err != nil {
			return nil, &domain.ConsumptionError{MaterialID: req.MaterialID, BatchID: a.BatchID, Err: err}
		}
		lots = append(lots, LotTouched{BatchID: a.BatchID, BatchCode: a.BatchCode, Quantity: a.Quantity})
	}

	// 5) Total agregado: una sola vez por la cantidad solicitada
	if err := r.Stock.ApplyDelta(ctx, req.MaterialID, req.Quantity.Neg(), now); err != nil {
		return nil, &domain.ConsumptionError{MaterialID: req.MaterialID, Err: err}
	}

	return &ConsumptionResult{
		MaterialID:    req.MaterialID,
		MaterialName:  entry.MaterialName,
		Unit:          entry.Unit,
		TotalConsumed: req.Quantity,
		LotsTouched:   lots,
	}, nil
}

func (l *Ledger) observe(req ConsumptionRequest, res *ConsumptionResult, err error) {
	switch {
	case err == nil:
		l.metrics.observeConsumption(req.OperationKind, ResultOK, res.TotalConsumed, len(res.LotsTouched))
		l.log.Debug().
			Int64("material_id", req.MaterialID).
			Str("operation_kind", string(req.OperationKind)).
			Int64("operation_id", req.OperationID).
			Str("quantity", req.Quantity.String()).
			Int("lots_touched", len(res.LotsTouched)).
			Msg("consumo aplicado")
	case errors.Is(err, domain.ErrInsufficientStock):
		l.metrics.observeConsumption(req.OperationKind, ResultInsufficientStock, decimal.Zero, 0)
		l.log.Info().Err(err).Int64("material_id", req.MaterialID).Msg("stock insuficiente")
	case errors.Is(err, domain.ErrConcurrentModification):
		l.metrics.observeConsumption(req.OperationKind, ResultConflict, decimal.Zero, 0)
	case errors.Is(err, domain.ErrNotFound):
		l.metrics.observeConsumption(req.OperationKind, ResultNotFound, decimal.Zero, 0)
	case errors.Is(err, domain.ErrInvalidQuantity), errors.Is(err, domain.ErrInvalidInput):
		l.metrics.observeConsumption(req.OperationKind, ResultInvalid, decimal.Zero, 0)
	default:
		l.metrics.observeConsumption(req.OperationKind, ResultError, decimal.Zero, 0)
		l.log.Error().Err(err).Int64("material_id", req.MaterialID).Msg("consumo fallido")
	}
}

// GetTotal devuelve el total agregado con su estado derivado.
func (l *Ledger) GetTotal(ctx context.Context, materialID int64) (*StockTotal, error) {
	if materialID <= 0 {
		return nil, domain.ErrInvalidInput
	}
	entry, err := l.repos.Stock.Get(ctx, materialID)
	if err != nil {
		return nil, err
	}
	t := toStockTotal(entry)
	return &t, nil
}

// ListStock devuelve todas las entradas de stock agregado.
func (l *Ledger) ListStock(ctx context.Context) ([]StockTotal, error) {
	entries, err := l.repos.Stock.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]StockTotal, 0, len(entries))
	for _, e := range entries {
		out = append(out, toStockTotal(e))
	}
	return out, nil
}

// SetMinimumThreshold cambia el umbral que define el estado "low".
func (l *Ledger) SetMinimumThreshold(ctx context.Context, materialID int64, threshold decimal.Decimal) (*StockTotal, error) {
	if materialID <= 0 {
		return nil, domain.ErrInvalidInput
	}
	if err := inventory.CheckThreshold(threshold); err != nil {
		return nil, err
	}
	var total StockTotal
	err := l.tx.Run(ctx, func(ctx context.Context, r Repos) error {
		if err := r.Stock.SetMinimumThreshold(ctx, materialID, threshold, l.opts.Now()); err != nil {
			return err
		}
		entry, err := r.Stock.Get(ctx, materialID)
		if err != nil {
			return err
		}
		total = toStockTotal(entry)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &total, nil
}

// ListBatches devuelve los lotes de la materia en orden FIFO.
func (l *Ledger) ListBatches(ctx context.Context, materialID int64, includeExhausted bool) ([]*entity.Batch, error) {
	if materialID <= 0 {
		return nil, domain.ErrInvalidInput
	}
	if _, err := l.repos.Materials.GetByID(ctx, materialID); err != nil {
		return nil, err
	}
	return l.repos.Batches.ListByMaterial(ctx, materialID, includeExhausted)
}

// GetBatch devuelve un lote por ID.
func (l *Ledger) GetBatch(ctx context.Context, id int64) (*entity.Batch, error) {
	if id <= 0 {
		return nil, domain.ErrInvalidInput
	}
	return l.repos.Batches.GetByID(ctx, id)
}

// ListConsumptionHistory consulta la trazabilidad por operación, por lote o por materia,
// más reciente primero.
func (l *Ledger) ListConsumptionHistory(ctx context.Context, filter repository.HistoryFilter) ([]*entity.ConsumptionRecord, error) {
	f, err := normalizeHistoryFilter(filter)
	if err != nil {
		return nil, err
	}
	return l.repos.Records.List(ctx, f)
}

func normalizeHistoryFilter(f repository.HistoryFilter) (repository.HistoryFilter, error) {
	criteria := 0
	if f.OperationKind != "" || f.OperationID != 0 {
		if !f.OperationKind.IsValid() || f.OperationID <= 0 {
			return f, fmt.Errorf("%w: operación requiere tipo e ID", domain.ErrInvalidInput)
		}
		criteria++
	}
	if f.BatchID != 0 {
		criteria++
	}
	if f.MaterialID != 0 {
		criteria++
	}
	if criteria != 1 || f.BatchID < 0 || f.MaterialID < 0 {
		return f, fmt.Errorf("%w: se requiere exactamente un criterio de búsqueda", domain.ErrInvalidInput)
	}
	if f.Limit <= 0 {
		f.Limit = DefaultHistoryLimit
	}
	if f.Limit > MaxHistoryLimit {
		f.Limit = MaxHistoryLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f, nil
}
