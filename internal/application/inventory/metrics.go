package inventory

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/manufactura-api/internal/domain/entity"
)

// Resultados posibles de un intento de consumo.
const (
	ResultOK                = "ok"
	ResultInsufficientStock = "insufficient_stock"
	ResultConflict          = "conflict"
	ResultInvalid           = "invalid"
	ResultNotFound          = "not_found"
	ResultError             = "error"
)

// Metrics instrumenta el ledger. Un *Metrics nil es válido y no registra nada.
type Metrics struct {
	consumptions     *prometheus.CounterVec
	consumedQuantity *prometheus.CounterVec
	batchesTouched   prometheus.Histogram
	receipts         prometheus.Counter
	retries          *prometheus.CounterVec
}

// NewMetrics registra las métricas del ledger en reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		consumptions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "manufactura",
			Subsystem: "ledger",
			Name:      "consumptions_total",
			Help:      "Intentos de consumo FIFO por tipo de operación y resultado.",
		}, []string{"operation_kind", "result"}),
		consumedQuantity: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "manufactura",
			Subsystem: "ledger",
			Name:      "consumed_quantity_total",
			Help:      "Cantidad de materia prima consumida por tipo de operación.",
		}, []string{"operation_kind"}),
		batchesTouched: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "manufactura",
			Subsystem: "ledger",
			Name:      "batches_touched",
			Help:      "Lotes tocados por consumo exitoso.",
			Buckets:   []float64{1, 2, 3, 5, 8, 13, 21},
		}),
		receipts: f.NewCounter(prometheus.CounterOpts{
			Namespace: "manufactura",
			Subsystem: "ledger",
			Name:      "receipts_total",
			Help:      "Lotes recibidos.",
		}),
		retries: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "manufactura",
			Subsystem: "ledger",
			Name:      "retries_total",
			Help:      "Reintentos por modificación concurrente.",
		}, []string{"operation"}),
	}
}

func (m *Metrics) observeConsumption(kind entity.OperationKind, result string, quantity decimal.Decimal, lots int) {
	if m == nil {
		return
	}
	m.consumptions.WithLabelValues(string(kind), result).Inc()
	if result != ResultOK {
		return
	}
	m.consumedQuantity.WithLabelValues(string(kind)).Add(quantity.InexactFloat64())
	m.batchesTouched.Observe(float64(lots))
}

func (m *Metrics) observeReceipt() {
	if m == nil {
		return
	}
	m.receipts.Inc()
}

func (m *Metrics) observeRetry(operation string) {
	if m == nil {
		return
	}
	m.retries.WithLabelValues(operation).Inc()
}
