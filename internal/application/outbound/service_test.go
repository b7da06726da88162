package outbound_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/manufactura-api/internal/application/inventory"
	"github.com/jhoicas/manufactura-api/internal/application/outbound"
	"github.com/jhoicas/manufactura-api/internal/domain"
	"github.com/jhoicas/manufactura-api/internal/domain/entity"
	"github.com/jhoicas/manufactura-api/internal/domain/repository"
	"github.com/jhoicas/manufactura-api/internal/infrastructure/memory"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type env struct {
	store  *memory.Store
	ledger *inventory.Ledger
	svc    *outbound.Service
	reg    *prometheus.Registry
}

func newEnv(t *testing.T) *env {
	t.Helper()
	store := memory.NewStore()
	reg := prometheus.NewRegistry()
	ledger := inventory.NewLedger(store, store.Repos(), inventory.Options{
		Metrics:              inventory.NewMetrics(reg),
		RetryInitialInterval: time.Millisecond,
	})
	return &env{store: store, ledger: ledger, svc: outbound.NewService(store, ledger, store.Repos(), nil), reg: reg}
}

func (e *env) material(t *testing.T, name, unit string, batches ...string) int64 {
	t.Helper()
	ctx := context.Background()
	m := &entity.Material{Name: name}
	require.NoError(t, e.store.Repos().Materials.Create(ctx, m))
	for i, qty := range batches {
		_, err := e.ledger.Receive(ctx, inventory.ReceiveRequest{
			MaterialID: m.ID, Code: name + "-" + decimal.NewFromInt(int64(i+1)).String(), Quantity: d(qty), Unit: unit,
		})
		require.NoError(t, err)
	}
	return m.ID
}

func (e *env) total(t *testing.T, materialID int64) decimal.Decimal {
	t.Helper()
	tot, err := e.ledger.GetTotal(context.Background(), materialID)
	require.NoError(t, err)
	return tot.Quantity
}

// ─────────────────────────────────────────────────────────────────────────────
// Create
// ─────────────────────────────────────────────────────────────────────────────

func TestCreate_UnaLineaPorLoteTocado(t *testing.T) {
	e := newEnv(t)
	tela := e.material(t, "Tela", "m", "10", "5", "20")
	hilo := e.material(t, "Hilo", "cono", "3")

	note, err := e.svc.Create(context.Background(), outbound.CreateNoteRequest{
		Reason: "Muestras",
		UserID: "almacen-1",
		Items: []outbound.Item{
			{MaterialID: hilo, Quantity: d("2")},
			{MaterialID: tela, Quantity: d("12")},
		},
	})
	require.NoError(t, err)
	assert.Regexp(t, `^NS-\d{8}-[0-9A-F]{8}$`, note.Code)
	assert.Equal(t, entity.OutboundNoteStatusCompleted, note.Status)

	// Materias en orden de ID: tela (2 lotes) y luego hilo (1 lote)
	require.Len(t, note.Lines, 3)
	assert.Equal(t, tela, note.Lines[0].MaterialID)
	assert.True(t, note.Lines[0].Quantity.Equal(d("10")))
	assert.Equal(t, "TELA-1", note.Lines[0].BatchCode)
	assert.True(t, note.Lines[1].Quantity.Equal(d("2")))
	assert.Equal(t, "m", note.Lines[1].Unit)
	assert.Equal(t, hilo, note.Lines[2].MaterialID)
	assert.Equal(t, "Hilo", note.Lines[2].MaterialName)
	assert.Equal(t, "cono", note.Lines[2].Unit)

	stored, err := e.svc.Get(context.Background(), note.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Lines, 3)
	assert.Equal(t, "Muestras", stored.Reason)

	recs, err := e.ledger.ListConsumptionHistory(context.Background(), repository.HistoryFilter{
		OperationKind: entity.OperationOutboundNote, OperationID: note.ID,
	})
	require.NoError(t, err)
	require.Len(t, recs, 3)
	for _, r := range recs {
		assert.Equal(t, note.Code, r.OperationCode)
		assert.Equal(t, "almacen-1", r.UserID)
	}

	assert.True(t, e.total(t, tela).Equal(d("23")))
	assert.True(t, e.total(t, hilo).Equal(d("1")))
}

func TestCreate_FallaEnUnaMateriaDeshaceTodaLaNota(t *testing.T) {
	e := newEnv(t)
	tela := e.material(t, "Tela", "m", "10", "5")
	hilo := e.material(t, "Hilo", "cono", "3")

	_, err := e.svc.Create(context.Background(), outbound.CreateNoteRequest{
		Code:   "NS-FALLA",
		UserID: "almacen-1",
		Items: []outbound.Item{
			{MaterialID: tela, Quantity: d("12")},
			{MaterialID: hilo, Quantity: d("4")},
		},
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	var ise *domain.InsufficientStockError
	require.ErrorAs(t, err, &ise)
	assert.Equal(t, hilo, ise.MaterialID)

	// La tela ya se había consumido dentro de la transacción: debe volver intacta
	assert.True(t, e.total(t, tela).Equal(d("15")))
	batches, err := e.ledger.ListBatches(context.Background(), tela, true)
	require.NoError(t, err)
	assert.True(t, batches[0].Quantity.Equal(d("10")))
	assert.True(t, batches[1].Quantity.Equal(d("5")))

	recs, err := e.ledger.ListConsumptionHistory(context.Background(), repository.HistoryFilter{MaterialID: tela})
	require.NoError(t, err)
	assert.Empty(t, recs)

	_, err = e.svc.Get(context.Background(), 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// El código queda libre para reintentar
	_, err = e.svc.Create(context.Background(), outbound.CreateNoteRequest{
		Code:  "NS-FALLA",
		Items: []outbound.Item{{MaterialID: tela, Quantity: d("1")}},
	})
	assert.NoError(t, err)
}

// Un consumo anidado que se deshace con la nota no se publica en las métricas de éxito.
func TestCreate_MetricasSoloTrasCommit(t *testing.T) {
	e := newEnv(t)
	tela := e.material(t, "Tela", "m", "10")
	hilo := e.material(t, "Hilo", "cono", "1")
	ctx := context.Background()

	_, err := e.svc.Create(ctx, outbound.CreateNoteRequest{Items: []outbound.Item{
		{MaterialID: tela, Quantity: d("4")},
		{MaterialID: hilo, Quantity: d("2")},
	}})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.True(t, e.total(t, tela).Equal(d("10")))

	consumed, err := testutil.GatherAndCount(e.reg, "manufactura_ledger_consumed_quantity_total")
	require.NoError(t, err)
	assert.Zero(t, consumed, "la tela se consumió solo dentro de la transacción deshecha")

	_, err = e.svc.Create(ctx, outbound.CreateNoteRequest{Items: []outbound.Item{{MaterialID: tela, Quantity: d("4")}}})
	require.NoError(t, err)

	expected := `
# HELP manufactura_ledger_consumed_quantity_total Cantidad de materia prima consumida por tipo de operación.
# TYPE manufactura_ledger_consumed_quantity_total counter
manufactura_ledger_consumed_quantity_total{operation_kind="outbound_note"} 4
# HELP manufactura_ledger_consumptions_total Intentos de consumo FIFO por tipo de operación y resultado.
# TYPE manufactura_ledger_consumptions_total counter
manufactura_ledger_consumptions_total{operation_kind="outbound_note",result="insufficient_stock"} 1
manufactura_ledger_consumptions_total{operation_kind="outbound_note",result="ok"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(e.reg, strings.NewReader(expected),
		"manufactura_ledger_consumed_quantity_total", "manufactura_ledger_consumptions_total"))
}

func TestCreate_MateriaSinStock(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	m := &entity.Material{Name: "Nueva"}
	require.NoError(t, e.store.Repos().Materials.Create(ctx, m))

	_, err := e.svc.Create(ctx, outbound.CreateNoteRequest{Items: []outbound.Item{{MaterialID: m.ID, Quantity: d("1")}}})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreate_CodigoDuplicado(t *testing.T) {
	e := newEnv(t)
	tela := e.material(t, "Tela", "m", "10")
	req := outbound.CreateNoteRequest{Code: "NS-1", Items: []outbound.Item{{MaterialID: tela, Quantity: d("1")}}}

	_, err := e.svc.Create(context.Background(), req)
	require.NoError(t, err)
	_, err = e.svc.Create(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrDuplicate)
	assert.True(t, e.total(t, tela).Equal(d("9")))
}

// ─────────────────────────────────────────────────────────────────────────────
// MergeItems
// ─────────────────────────────────────────────────────────────────────────────

func TestMergeItems(t *testing.T) {
	merged, err := outbound.MergeItems([]outbound.Item{
		{MaterialID: 3, Quantity: d("1.5")},
		{MaterialID: 1, Quantity: d("2")},
		{MaterialID: 3, Quantity: d("0.5")},
	})
	require.NoError(t, err)
	require.Len(t, merged, 2)
	assert.Equal(t, int64(1), merged[0].MaterialID)
	assert.Equal(t, int64(3), merged[1].MaterialID)
	assert.True(t, merged[1].Quantity.Equal(d("2")))

	_, err = outbound.MergeItems(nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = outbound.MergeItems([]outbound.Item{{MaterialID: 1, Quantity: d("0")}})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
	_, err = outbound.MergeItems([]outbound.Item{{MaterialID: 0, Quantity: d("1")}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = outbound.MergeItems([]outbound.Item{{MaterialID: 1, Quantity: d("0.00001")}})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
}

func TestNewNoteCode_Formato(t *testing.T) {
	at := time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC)
	code := outbound.NewNoteCode(at)
	assert.Regexp(t, `^NS-20260203-[0-9A-F]{8}$`, code)
	assert.NotEqual(t, code, outbound.NewNoteCode(at))
}
