package production_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/manufactura-api/internal/application/inventory"
	"github.com/jhoicas/manufactura-api/internal/application/outbound"
	"github.com/jhoicas/manufactura-api/internal/application/production"
	"github.com/jhoicas/manufactura-api/internal/domain"
	"github.com/jhoicas/manufactura-api/internal/domain/entity"
	"github.com/jhoicas/manufactura-api/internal/domain/repository"
	"github.com/jhoicas/manufactura-api/internal/infrastructure/memory"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type env struct {
	store  *memory.Store
	ledger *inventory.Ledger
}

func newEnv(t *testing.T) *env {
	t.Helper()
	store := memory.NewStore()
	return &env{store: store, ledger: inventory.NewLedger(store, store.Repos(), inventory.Options{})}
}

func (e *env) service(synthetic bool) *production.Service {
	return production.NewService(e.store, e.ledger, e.store.Repos(), production.Options{SyntheticOutboundNote: synthetic})
}

func (e *env) material(t *testing.T, name string, batches ...string) int64 {
	t.Helper()
	ctx := context.Background()
	m := &entity.Material{Name: name}
	require.NoError(t, e.store.Repos().Materials.Create(ctx, m))
	for i, qty := range batches {
		_, err := e.ledger.Receive(ctx, inventory.ReceiveRequest{
			MaterialID: m.ID, Code: name + "-" + decimal.NewFromInt(int64(i+1)).String(), Quantity: d(qty), Unit: "m",
		})
		require.NoError(t, err)
	}
	return m.ID
}

func orderRequest(code string, items ...outbound.Item) production.CreateOrderRequest {
	start := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	return production.CreateOrderRequest{
		Code:          code,
		StartDate:     start,
		EndDate:       start.AddDate(0, 0, 10),
		DeliveryDate:  start.AddDate(0, 0, 15),
		ProductModel:  "Camisa Oxford",
		Color:         "Azul",
		Size:          "M",
		TotalQuantity: 50,
		UserID:        "produccion-1",
		Materials:     items,
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Create
// ─────────────────────────────────────────────────────────────────────────────

func TestCreate_ConsumeConEtiquetaDeOrden(t *testing.T) {
	e := newEnv(t)
	tela := e.material(t, "Tela", "10", "5", "20")
	boton := e.material(t, "Boton", "100")
	ctx := context.Background()

	res, err := e.service(false).Create(ctx, orderRequest("OP-001",
		outbound.Item{MaterialID: boton, Quantity: d("30")},
		outbound.Item{MaterialID: tela, Quantity: d("12")},
	))
	require.NoError(t, err)
	assert.Equal(t, entity.ProductionOrderStatusInProgress, res.Order.Status)
	assert.Nil(t, res.SyntheticNote)
	require.Len(t, res.Consumptions, 2)
	assert.Equal(t, tela, res.Consumptions[0].MaterialID)
	assert.Len(t, res.Consumptions[0].LotsTouched, 2)

	detail, err := e.service(false).Get(ctx, res.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, "OP-001", detail.Order.Code)
	require.Len(t, detail.Records, 3)
	sum := decimal.Zero
	for _, r := range detail.Records {
		assert.Equal(t, entity.OperationProductionOrder, r.OperationKind)
		assert.Equal(t, "OP-001", r.OperationCode)
		sum = sum.Add(r.Quantity)
	}
	assert.True(t, sum.Equal(d("42")))

	notes, err := e.ledger.ListConsumptionHistory(ctx, repository.HistoryFilter{
		OperationKind: entity.OperationOutboundNote, OperationID: res.Order.ID,
	})
	require.NoError(t, err)
	assert.Empty(t, notes, "sin nota sombra por defecto")
}

func TestCreate_NotaSinteticaOpcional(t *testing.T) {
	e := newEnv(t)
	tela := e.material(t, "Tela", "10", "5")
	ctx := context.Background()

	res, err := e.service(true).Create(ctx, orderRequest("OP-002", outbound.Item{MaterialID: tela, Quantity: d("12")}))
	require.NoError(t, err)
	require.NotNil(t, res.SyntheticNote)
	assert.Equal(t, "Producción: Camisa Oxford - OP-002", res.SyntheticNote.Reason)
	require.Len(t, res.SyntheticNote.Lines, 2)

	stored, err := e.store.Repos().Notes.GetByID(ctx, res.SyntheticNote.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Lines, 2)

	// Los consumos siguen etiquetados con la orden
	recs, err := e.ledger.ListConsumptionHistory(ctx, repository.HistoryFilter{MaterialID: tela})
	require.NoError(t, err)
	require.Len(t, recs, 2)
	for _, r := range recs {
		assert.Equal(t, entity.OperationProductionOrder, r.OperationKind)
		assert.Equal(t, res.Order.ID, r.OperationID)
	}
}

func TestCreate_InsuficienteDeshaceOrdenYConsumos(t *testing.T) {
	e := newEnv(t)
	tela := e.material(t, "Tela", "10")
	hilo := e.material(t, "Hilo", "2")
	ctx := context.Background()
	svc := e.service(true)

	_, err := svc.Create(ctx, orderRequest("OP-003",
		outbound.Item{MaterialID: tela, Quantity: d("4")},
		outbound.Item{MaterialID: hilo, Quantity: d("3")},
	))
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	tot, err := e.ledger.GetTotal(ctx, tela)
	require.NoError(t, err)
	assert.True(t, tot.Quantity.Equal(d("10")))
	_, err = svc.Get(ctx, 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = e.store.Repos().Notes.GetByID(ctx, 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreate_CodigoDuplicadoNoConsume(t *testing.T) {
	e := newEnv(t)
	tela := e.material(t, "Tela", "10")
	ctx := context.Background()
	svc := e.service(false)

	_, err := svc.Create(ctx, orderRequest("OP-004", outbound.Item{MaterialID: tela, Quantity: d("1")}))
	require.NoError(t, err)
	_, err = svc.Create(ctx, orderRequest("OP-004", outbound.Item{MaterialID: tela, Quantity: d("1")}))
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	tot, err := e.ledger.GetTotal(ctx, tela)
	require.NoError(t, err)
	assert.True(t, tot.Quantity.Equal(d("9")))
}

func TestCreate_Validacion(t *testing.T) {
	e := newEnv(t)
	svc := e.service(false)
	ctx := context.Background()
	item := outbound.Item{MaterialID: 1, Quantity: d("1")}

	req := orderRequest("", item)
	_, err := svc.Create(ctx, req)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	req = orderRequest("OP-X", item)
	req.TotalQuantity = 0
	_, err = svc.Create(ctx, req)
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	req = orderRequest("OP-X", item)
	req.EndDate = req.StartDate.AddDate(0, 0, -1)
	_, err = svc.Create(ctx, req)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.Create(ctx, orderRequest("OP-X"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ─────────────────────────────────────────────────────────────────────────────
// Get
// ─────────────────────────────────────────────────────────────────────────────

func TestGet_DetalleCompletoConMasDeUnaPagina(t *testing.T) {
	e := newEnv(t)
	lots := make([]string, inventory.MaxHistoryLimit+1)
	for i := range lots {
		lots[i] = "1"
	}
	tela := e.material(t, "Tela", lots...)
	svc := e.service(false)
	ctx := context.Background()

	res, err := svc.Create(ctx, orderRequest("OP-LARGA", outbound.Item{MaterialID: tela, Quantity: d("501")}))
	require.NoError(t, err)
	require.Len(t, res.Consumptions[0].LotsTouched, inventory.MaxHistoryLimit+1)

	detail, err := svc.Get(ctx, res.Order.ID)
	require.NoError(t, err)
	require.Len(t, detail.Records, inventory.MaxHistoryLimit+1)
	sum := decimal.Zero
	seen := make(map[int64]bool, len(detail.Records))
	for _, r := range detail.Records {
		sum = sum.Add(r.Quantity)
		seen[r.ID] = true
	}
	assert.True(t, sum.Equal(d("501")))
	assert.Len(t, seen, inventory.MaxHistoryLimit+1, "sin registros repetidos entre páginas")
}
