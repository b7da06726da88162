package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/manufactura-api/internal/application/inventory"
	"github.com/jhoicas/manufactura-api/internal/application/outbound"
	"github.com/jhoicas/manufactura-api/internal/application/production"
	"github.com/jhoicas/manufactura-api/internal/domain/entity"
	"github.com/jhoicas/manufactura-api/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/manufactura-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/manufactura-api/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// App completa sobre el store en memoria
// ──────────────────────────────────────────────────────────────────────────────

type testAPI struct {
	app   *fiber.App
	store *memory.Store
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	store := memory.NewStore()
	reg := prometheus.NewRegistry()
	repos := store.Repos()
	ledger := inventory.NewLedger(store, repos, inventory.Options{
		Metrics:              inventory.NewMetrics(reg),
		RetryInitialInterval: time.Millisecond,
	})
	app := apphttp.NewApp(apphttp.RouterDeps{
		Ledger:     ledger,
		Outbound:   outbound.NewService(store, ledger, repos, nil),
		Production: production.NewService(store, ledger, repos, production.Options{}),
		JWTSecret:  testJWTSecret,
		JWTIssuer:  testIssuer,
		Gatherer:   reg,
		AppName:    "manufactura-test",
	})
	return &testAPI{app: app, store: store}
}

func (a *testAPI) material(t *testing.T, name string) int64 {
	t.Helper()
	m := &entity.Material{Name: name, Category: "tela"}
	require.NoError(t, a.store.Repos().Materials.Create(context.Background(), m))
	return m.ID
}

// call hace la petición con el rol indicado ("" = sin token) y decodifica el JSON en out.
func (a *testAPI) call(t *testing.T, method, path, role string, body interface{}, out interface{}) int {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = strings.NewReader(string(raw))
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if role != "" {
		req.Header.Set("Authorization", tokenForRole(t, role))
	}
	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func (a *testAPI) receive(t *testing.T, materialID int64, code, qty string) {
	t.Helper()
	status := a.call(t, http.MethodPost, "/api/batches", pkgjwt.RoleAlmacen, fiber.Map{
		"material_id": materialID, "code": code, "quantity": qty, "unit": "m",
	}, nil)
	require.Equal(t, http.StatusCreated, status)
}

func dec(t *testing.T, v interface{}) decimal.Decimal {
	t.Helper()
	s, ok := v.(string)
	require.True(t, ok, "decimal serializado como string: %v", v)
	return decimal.RequireFromString(s)
}

// ──────────────────────────────────────────────────────────────────────────────
// Lotes y stock
// ──────────────────────────────────────────────────────────────────────────────

func TestBatches_RecepcionYConsultaDeStock(t *testing.T) {
	api := newTestAPI(t)
	m := api.material(t, "Algodón")

	var batch map[string]interface{}
	status := api.call(t, http.MethodPost, "/api/batches", pkgjwt.RoleAlmacen, fiber.Map{
		"material_id": m, "code": "l-001", "quantity": "10.5", "unit": "m", "location": "Bodega A",
	}, &batch)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "L-001", batch["code"])
	assert.Equal(t, entity.BatchStatusAvailable, batch["status"])

	var stock map[string]interface{}
	status = api.call(t, http.MethodGet, fmt.Sprintf("/api/stock/%d", m), pkgjwt.RoleProduccion, nil, &stock)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, dec(t, stock["quantity"]).Equal(decimal.RequireFromString("10.5")))
	assert.Equal(t, entity.StockStatusAvailable, stock["status"])

	var batches []map[string]interface{}
	status = api.call(t, http.MethodGet, fmt.Sprintf("/api/materials/%d/batches", m), pkgjwt.RoleAdmin, nil, &batches)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, batches, 1)
}

func TestBatches_Errores(t *testing.T) {
	api := newTestAPI(t)
	m := api.material(t, "Algodón")
	api.receive(t, m, "L-1", "5")

	var body map[string]interface{}
	status := api.call(t, http.MethodPost, "/api/batches", pkgjwt.RoleAlmacen, fiber.Map{
		"material_id": m, "code": "L-2", "unit": "m",
	}, &body)
	assert.Equal(t, http.StatusUnprocessableEntity, status, "sin cantidad")
	assert.Equal(t, "VALIDATION", body["code"])

	status = api.call(t, http.MethodPost, "/api/batches", pkgjwt.RoleAlmacen, fiber.Map{
		"material_id": m, "code": "L-2", "quantity": "1.00005", "unit": "m",
	}, &body)
	assert.Equal(t, http.StatusUnprocessableEntity, status, "más de cuatro decimales")
	assert.Equal(t, "VALIDATION", body["code"])

	status = api.call(t, http.MethodPost, "/api/batches", pkgjwt.RoleAlmacen, fiber.Map{
		"material_id": m, "code": "l-1", "quantity": "1", "unit": "m",
	}, &body)
	assert.Equal(t, http.StatusConflict, status, "código duplicado")
	assert.Equal(t, "DUPLICATE", body["code"])

	status = api.call(t, http.MethodPost, "/api/batches", pkgjwt.RoleProduccion, fiber.Map{
		"material_id": m, "code": "L-3", "quantity": "1", "unit": "m",
	}, nil)
	assert.Equal(t, http.StatusForbidden, status, "producción no recibe lotes")

	status = api.call(t, http.MethodGet, "/api/stock/999", pkgjwt.RoleAdmin, nil, &body)
	assert.Equal(t, http.StatusNotFound, status)

	status = api.call(t, http.MethodGet, "/api/stock/abc", pkgjwt.RoleAdmin, nil, &body)
	assert.Equal(t, http.StatusBadRequest, status)

	status = api.call(t, http.MethodGet, "/api/stock", "", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestStock_UmbralYReposicion(t *testing.T) {
	api := newTestAPI(t)
	m := api.material(t, "Hilo")
	api.receive(t, m, "H-1", "4")

	var stock map[string]interface{}
	status := api.call(t, http.MethodPut, fmt.Sprintf("/api/stock/%d/threshold", m), pkgjwt.RoleAlmacen,
		fiber.Map{"minimum_threshold": "20"}, &stock)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, entity.StockStatusLow, stock["status"])

	var body struct {
		Total          int                      `json:"total"`
		Replenishments []map[string]interface{} `json:"replenishments"`
	}
	status = api.call(t, http.MethodGet, "/api/stock/replenishment", pkgjwt.RoleProduccion, nil, &body)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, 1, body.Total)
	assert.True(t, dec(t, body.Replenishments[0]["suggested_order_qty"]).Equal(decimal.RequireFromString("26")))

	var rec map[string]interface{}
	status = api.call(t, http.MethodPost, fmt.Sprintf("/api/stock/%d/reconcile", m), pkgjwt.RoleAlmacen, nil, &rec)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, false, rec["adjusted"])
}

// ──────────────────────────────────────────────────────────────────────────────
// Operaciones consumidoras
// ──────────────────────────────────────────────────────────────────────────────

func TestOutboundNotes_CreaLineasPorLote(t *testing.T) {
	api := newTestAPI(t)
	m := api.material(t, "Algodón")
	api.receive(t, m, "L-1", "10")
	api.receive(t, m, "L-2", "5")

	var note map[string]interface{}
	status := api.call(t, http.MethodPost, "/api/outbound-notes", pkgjwt.RoleAlmacen, fiber.Map{
		"reason": "muestra",
		"items":  []fiber.Map{{"material_id": m, "quantity": "12"}},
	}, &note)
	require.Equal(t, http.StatusCreated, status)
	assert.True(t, strings.HasPrefix(note["code"].(string), "NS-"))
	assert.Equal(t, testUserID, note["user_id"])
	lines := note["lines"].([]interface{})
	require.Len(t, lines, 2)

	var got map[string]interface{}
	id := int64(note["id"].(float64))
	status = api.call(t, http.MethodGet, fmt.Sprintf("/api/outbound-notes/%d", id), pkgjwt.RoleProduccion, nil, &got)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, got["lines"], 2)

	var hist struct {
		Records []map[string]interface{} `json:"records"`
	}
	status = api.call(t, http.MethodGet, fmt.Sprintf("/api/traceability/operations/outbound_note/%d", id),
		pkgjwt.RoleAdmin, nil, &hist)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, hist.Records, 2)
}

func TestOutboundNotes_StockInsuficiente409(t *testing.T) {
	api := newTestAPI(t)
	m := api.material(t, "Algodón")
	api.receive(t, m, "L-1", "3")

	var body map[string]interface{}
	status := api.call(t, http.MethodPost, "/api/outbound-notes", pkgjwt.RoleAlmacen, fiber.Map{
		"items": []fiber.Map{{"material_id": m, "quantity": "4"}},
	}, &body)
	require.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "INSUFFICIENT_STOCK", body["code"])
	assert.True(t, dec(t, body["requested"]).Equal(decimal.NewFromInt(4)))
	assert.True(t, dec(t, body["available"]).Equal(decimal.NewFromInt(3)))

	status = api.call(t, http.MethodPost, "/api/outbound-notes", pkgjwt.RoleAlmacen, fiber.Map{
		"items": []fiber.Map{},
	}, &body)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
}

func TestProductionOrders_ConsumeYTraza(t *testing.T) {
	api := newTestAPI(t)
	tela := api.material(t, "Tela")
	api.receive(t, tela, "T-1", "30")

	var res struct {
		Order struct {
			ID   int64  `json:"id"`
			Code string `json:"code"`
		} `json:"order"`
		Consumptions []map[string]interface{} `json:"consumptions"`
		Synthetic    interface{}              `json:"synthetic_note"`
	}
	status := api.call(t, http.MethodPost, "/api/production-orders", pkgjwt.RoleProduccion, fiber.Map{
		"code": "OP-100", "product_model": "Camisa", "total_quantity": 20,
		"materials": []fiber.Map{{"material_id": tela, "quantity": "12"}},
	}, &res)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "OP-100", res.Order.Code)
	require.Len(t, res.Consumptions, 1)
	assert.Nil(t, res.Synthetic)

	var detail struct {
		Records []map[string]interface{} `json:"records"`
	}
	status = api.call(t, http.MethodGet, fmt.Sprintf("/api/production-orders/%d", res.Order.ID), pkgjwt.RoleAlmacen, nil, &detail)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, detail.Records, 1)
	assert.Equal(t, string(entity.OperationProductionOrder), detail.Records[0]["operation_kind"])
	assert.Equal(t, "OP-100", detail.Records[0]["operation_code"])

	status = api.call(t, http.MethodPost, "/api/production-orders", pkgjwt.RoleAlmacen, fiber.Map{
		"code": "OP-101", "product_model": "Camisa", "total_quantity": 1,
		"materials": []fiber.Map{{"material_id": tela, "quantity": "1"}},
	}, nil)
	assert.Equal(t, http.StatusForbidden, status, "almacén no crea órdenes")
}

func TestTraceability_TipoDeOperacionInvalido400(t *testing.T) {
	api := newTestAPI(t)
	status := api.call(t, http.MethodGet, "/api/traceability/operations/factura/1", pkgjwt.RoleAdmin, nil, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status = api.call(t, http.MethodGet, "/api/traceability/materials/1?limit=9999", pkgjwt.RoleAdmin, nil, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
}

// ──────────────────────────────────────────────────────────────────────────────
// Health y métricas
// ──────────────────────────────────────────────────────────────────────────────

func TestHealthYMetricas(t *testing.T) {
	api := newTestAPI(t)
	m := api.material(t, "Algodón")
	api.receive(t, m, "L-1", "3")

	status := api.call(t, http.MethodGet, "/health", "", nil, nil)
	assert.Equal(t, http.StatusOK, status)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp, err := api.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), "manufactura_ledger_receipts_total 1")
}
