package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/application/usecase"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/docstore"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/redisstore"
	apphttp "github.com/jhoicas/inventario-ledger/internal/interfaces/http"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

type pdfFalso struct{ productos []string }

func (p *pdfFalso) RenderKardex(r *inventory.KardexReport) ([]byte, error) {
	p.productos = append(p.productos, r.Product.ID)
	return []byte("%PDF-1.4 falso"), nil
}

type colaFalsa struct{ encolados []string }

func (q *colaFalsa) EnqueueReconcile(_ context.Context, productID string) (string, string, error) {
	q.encolados = append(q.encolados, productID)
	return "task-1", "default", nil
}

type api struct {
	app  *fiber.App
	mr   *miniredis.Miniredis
	pdf  *pdfFalso
	cola *colaFalsa
}

func nuevaAPI(t *testing.T, jwtSecret string) *api {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	store := redisstore.NewStore(client, redisstore.Options{})
	log := logger.Nop()

	counters := docstore.NewCounterRepository(store)
	ids := inventory.NewCounterAllocator(counters)
	catRepo := docstore.NewCategoryRepository(store)
	supRepo := docstore.NewSupplierRepository(store)
	prodRepo := docstore.NewProductRepository(store)
	ledger := inventory.NewMovementLedger(
		docstore.NewTxRunner(store), prodRepo, docstore.NewMovementRepository(store), docstore.NewJournalRepository(store),
		ids, inventory.NoopPublisher{}, log, inventory.LedgerOptions{StrictReversal: true},
	)

	a := &api{app: fiber.New(), mr: mr, pdf: &pdfFalso{}, cola: &colaFalsa{}}
	apphttp.Router(a.app, apphttp.RouterDeps{
		CategoryUC: usecase.NewCategoryUseCase(catRepo, ids, log),
		SupplierUC: usecase.NewSupplierUseCase(supRepo, ids, log),
		ProductUC:  usecase.NewProductUseCase(prodRepo, catRepo, supRepo, ids, log),
		Ledger:     ledger,
		KardexPDF:  a.pdf,
		Reconciler: a.cola,
		Health:     func(c *fiber.Ctx) error { return store.Ping(c.UserContext()) },
		JWTSecret:  jwtSecret,
		JWTIssuer:  testIssuer,
	})
	return a
}

func (a *api) do(t *testing.T, method, path string, body any, auth string) (*http.Response, []byte) {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, raw
}

func (a *api) crearProducto(t *testing.T, stock string) string {
	t.Helper()
	resp, raw := a.do(t, http.MethodPost, "/api/products", dto.CreateProductRequest{
		Name: "Leche", Category: "Lácteos", Stock: stock, Price: "2.50",
	}, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	var p dto.ProductResponse
	require.NoError(t, json.Unmarshal(raw, &p))
	return p.ID
}

func (a *api) registrar(t *testing.T, productID, tipo string, qty int64) (*http.Response, []byte) {
	t.Helper()
	return a.do(t, http.MethodPost, "/api/movements", dto.RecordMovementRequest{
		ProductID: productID, Type: tipo, Quantity: qty,
	}, "")
}

func codigo(t *testing.T, raw []byte) string {
	t.Helper()
	var e dto.ErrorResponse
	require.NoError(t, json.Unmarshal(raw, &e))
	return e.Code
}

// ── Catálogo ──

func TestAPI_CategoriasCRUD(t *testing.T) {
	a := nuevaAPI(t, "")

	resp, raw := a.do(t, http.MethodPost, "/api/categories", dto.CreateCategoryRequest{Name: "Bebidas"}, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var cat dto.CategoryResponse
	require.NoError(t, json.Unmarshal(raw, &cat))
	assert.Equal(t, "CAT001", cat.ID)

	resp, raw = a.do(t, http.MethodPut, "/api/categories/CAT001", dto.UpdateCategoryRequest{Name: "Refrescos"}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), "Refrescos")

	resp, raw = a.do(t, http.MethodGet, "/api/categories", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list dto.ListResponse[dto.CategoryResponse]
	require.NoError(t, json.Unmarshal(raw, &list))
	assert.Equal(t, 1, list.Total)

	resp, _ = a.do(t, http.MethodDelete, "/api/categories/CAT001", nil, "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp, raw = a.do(t, http.MethodGet, "/api/categories/CAT001", nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", codigo(t, raw))
}

func TestAPI_ProductoEntradaInvalida(t *testing.T) {
	a := nuevaAPI(t, "")
	tests := []struct {
		name string
		req  dto.CreateProductRequest
	}{
		{"stock_negativo", dto.CreateProductRequest{Name: "X", Stock: "-1", Price: "1"}},
		{"stock_decimal", dto.CreateProductRequest{Name: "X", Stock: "1.5", Price: "1"}},
		{"precio_cero", dto.CreateProductRequest{Name: "X", Stock: "1", Price: "0"}},
		{"sin_nombre", dto.CreateProductRequest{Stock: "1", Price: "1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, raw := a.do(t, http.MethodPost, "/api/products", tt.req, "")
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, "INVALID_INPUT", codigo(t, raw))
		})
	}
}

func TestAPI_CuerpoInvalido(t *testing.T) {
	a := nuevaAPI(t, "")
	tests := []struct {
		name   string
		method string
		path   string
		body   string
	}{
		{"movimiento_no_json", http.MethodPost, "/api/movements", "{no-json"},
		{"movimiento_cantidad_texto", http.MethodPost, "/api/movements", `{"product_id":"prod001","type":"entry","quantity":"abc"}`},
		{"producto_no_json", http.MethodPost, "/api/products", "{no-json"},
		{"producto_update_no_json", http.MethodPut, "/api/products/prod001", "[1,"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			resp, err := a.app.Test(req, -1)
			require.NoError(t, err)
			defer resp.Body.Close()
			raw, _ := io.ReadAll(resp.Body)

			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, domain.CodeInvalidInput, codigo(t, raw))
		})
	}
}

// ── Movimientos ──

func TestAPI_RegistrarYStockInsuficiente(t *testing.T) {
	a := nuevaAPI(t, "")
	id := a.crearProducto(t, "10")

	resp, raw := a.registrar(t, id, "entry", 5)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	var rec dto.RecordMovementResponse
	require.NoError(t, json.Unmarshal(raw, &rec))
	assert.Equal(t, "mov001", rec.Movement.ID)
	assert.Equal(t, int64(15), rec.Stock)

	resp, raw = a.registrar(t, id, "exit", 16)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "INSUFFICIENT_STOCK", codigo(t, raw), "stock insuficiente distinguible de otros conflictos")

	resp, raw = a.registrar(t, id, "traslado", 1)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_INPUT", codigo(t, raw))

	resp, raw = a.registrar(t, "prod999", "entry", 1)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", codigo(t, raw))

	resp, raw = a.do(t, http.MethodGet, "/api/movements?product_id="+id, nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list dto.ListResponse[dto.MovementResponse]
	require.NoError(t, json.Unmarshal(raw, &list))
	assert.Equal(t, 1, list.Total, "los rechazos no dejan movimientos")
}

func TestAPI_EliminarMovimientoRevierte(t *testing.T) {
	a := nuevaAPI(t, "")
	id := a.crearProducto(t, "10")
	_, raw := a.registrar(t, id, "exit", 4)
	var rec dto.RecordMovementResponse
	require.NoError(t, json.Unmarshal(raw, &rec))

	resp, raw := a.do(t, http.MethodDelete, "/api/movements/"+rec.Movement.ID, nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	var del dto.DeleteMovementResponse
	require.NoError(t, json.Unmarshal(raw, &del))
	assert.True(t, del.StockAdjusted)
	assert.Equal(t, int64(10), del.Stock)
	assert.Empty(t, del.Warning)

	resp, _ = a.do(t, http.MethodGet, "/api/movements/"+rec.Movement.ID, nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPI_EliminarMovimientoProductoBorradoAdvierte(t *testing.T) {
	a := nuevaAPI(t, "")
	id := a.crearProducto(t, "10")
	_, raw := a.registrar(t, id, "entry", 3)
	var rec dto.RecordMovementResponse
	require.NoError(t, json.Unmarshal(raw, &rec))

	resp, _ := a.do(t, http.MethodDelete, "/api/products/"+id, nil, "")
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, raw = a.do(t, http.MethodDelete, "/api/movements/"+rec.Movement.ID, nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	var del dto.DeleteMovementResponse
	require.NoError(t, json.Unmarshal(raw, &del))
	assert.False(t, del.StockAdjusted)
	assert.NotEmpty(t, del.JournalID, "la reversión perdida queda en el journal")
	assert.NotEmpty(t, del.Warning)
}

func TestAPI_CreatedByDesdeToken(t *testing.T) {
	a := nuevaAPI(t, testJWTSecret)

	resp, _ := a.do(t, http.MethodGet, "/api/products", nil, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	auth := bearer(t, testJWTSecret, testIssuer, time.Hour)
	resp, raw := a.do(t, http.MethodPost, "/api/products", dto.CreateProductRequest{Name: "Pan", Stock: "2", Price: "1"}, auth)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	var p dto.ProductResponse
	require.NoError(t, json.Unmarshal(raw, &p))

	resp, raw = a.do(t, http.MethodPost, "/api/movements", dto.RecordMovementRequest{ProductID: p.ID, Type: "salida", Quantity: 2}, auth)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	var rec dto.RecordMovementResponse
	require.NoError(t, json.Unmarshal(raw, &rec))
	assert.Equal(t, testUserID, rec.Movement.CreatedBy)
	assert.Equal(t, "exit", rec.Movement.Type)
	assert.Equal(t, int64(0), rec.Stock)
}

// ── Kardex y reconciliación ──

func TestAPI_KardexJSONYPDF(t *testing.T) {
	a := nuevaAPI(t, "")
	id := a.crearProducto(t, "10")
	a.registrar(t, id, "entry", 5)
	a.registrar(t, id, "exit", 12)

	resp, raw := a.do(t, http.MethodGet, "/api/products/"+id+"/kardex", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	var k dto.KardexResponse
	require.NoError(t, json.Unmarshal(raw, &k))
	require.Len(t, k.Lines, 2)
	assert.Equal(t, int64(10), k.InitialStock)
	assert.Equal(t, int64(15), k.Lines[0].Balance)
	assert.Equal(t, int64(3), k.Lines[1].Balance)
	assert.Equal(t, int64(3), k.FinalBalance)

	resp, raw = a.do(t, http.MethodGet, "/api/products/"+id+"/kardex.pdf", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(raw, []byte("%PDF")))
	assert.Equal(t, []string{id}, a.pdf.productos)
}

func TestAPI_ReconciliarEncola(t *testing.T) {
	a := nuevaAPI(t, "")
	resp, raw := a.do(t, http.MethodPost, "/api/products/prod001/reconcile", nil, "")
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	var out dto.ReconcileResponse
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, "task-1", out.TaskID)
	assert.Equal(t, []string{"prod001"}, a.cola.encolados)
}

// ── Almacén caído ──

func TestAPI_AlmacenCaidoRetorna503Reintentable(t *testing.T) {
	a := nuevaAPI(t, "")
	id := a.crearProducto(t, "10")
	a.mr.Close()

	resp, raw := a.registrar(t, id, "exit", 1)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("Retry-After"))
	var e dto.ErrorResponse
	require.NoError(t, json.Unmarshal(raw, &e))
	assert.Equal(t, "STORE_UNAVAILABLE", e.Code)
	assert.True(t, e.Retryable)

	resp, _ = a.do(t, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
