package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	catalogapp "github.com/erp/puntoventa/internal/application/catalog"
	financeapp "github.com/erp/puntoventa/internal/application/finance"
	partnerapp "github.com/erp/puntoventa/internal/application/partner"
	posapp "github.com/erp/puntoventa/internal/application/pos"
	sequenceapp "github.com/erp/puntoventa/internal/application/sequence"
	"github.com/erp/puntoventa/internal/infrastructure/persistence"
	"github.com/erp/puntoventa/internal/infrastructure/persistence/models"
	"github.com/erp/puntoventa/internal/interfaces/http/dto"
	"github.com/erp/puntoventa/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

// testEnv is the HTTP API over real services and an in-memory SQLite store
type testEnv struct {
	t        *testing.T
	tenantID uuid.UUID
	engine   *gin.Engine
	db       *gorm.DB
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(models.AllModels()...))

	orderRepo := persistence.NewGormOrderRepository(db)
	paymentRepo := persistence.NewGormPaymentRepository(db)
	productRepo := persistence.NewGormProductRepository(db)
	taxRepo := persistence.NewGormTaxRepository(db)
	customerRepo := persistence.NewGormCustomerRepository(db)
	sequenceRepo := persistence.NewGormSequenceRepository(db)
	scope := persistence.NewGormTransactionScope(db, nil)

	orders := NewOrderHandler(posapp.NewOrderService(scope, orderRepo, productRepo, taxRepo, customerRepo, nil, nil))
	payments := NewPaymentHandler(financeapp.NewPaymentService(scope, paymentRepo, orderRepo, nil))
	sequences := NewSequenceHandler(sequenceapp.NewSequenceService(scope, sequenceRepo, nil))
	products := NewProductHandler(catalogapp.NewProductService(productRepo, taxRepo, orderRepo, nil))
	taxes := NewTaxHandler(catalogapp.NewTaxService(taxRepo, orderRepo, nil))
	customers := NewCustomerHandler(partnerapp.NewCustomerService(customerRepo, orderRepo, nil))

	engine := gin.New()
	engine.Use(middleware.RequestID())
	engine.Use(middleware.TenantMiddleware(middleware.DefaultTenantConfig()))

	api := engine.Group("/api/v1")
	api.POST("/orders", orders.Create)
	api.GET("/orders", orders.List)
	api.POST("/orders/bulk-delete", orders.BulkDelete)
	api.GET("/orders/:id", orders.GetByID)
	api.PUT("/orders/:id", orders.Update)
	api.DELETE("/orders/:id", orders.Delete)
	api.POST("/orders/:id/lines", orders.AddLine)
	api.PUT("/orders/:id/lines/:line_id", orders.UpdateLine)
	api.DELETE("/orders/:id/lines/:line_id", orders.RemoveLine)
	api.PUT("/orders/:id/lines/:line_id/taxes", orders.SetLineTaxes)
	api.DELETE("/orders/:id/lines/:line_id/taxes", orders.ResetLineTaxes)
	api.POST("/orders/:id/recompute", orders.Recompute)
	api.GET("/orders/:id/payment-action", orders.PaymentFormAction)
	api.GET("/orders/:id/payments", payments.ListByOrder)

	api.POST("/payments", payments.Create)
	api.GET("/payments", payments.List)
	api.GET("/payments/:id", payments.GetByID)
	api.PUT("/payments/:id", payments.Update)
	api.DELETE("/payments/:id", payments.Delete)
	api.POST("/payments/:id/post", payments.Post)
	api.POST("/payments/:id/cancel", payments.Cancel)

	api.GET("/sequences", sequences.List)
	api.GET("/sequences/:code", sequences.Get)
	api.POST("/sequences/:code/reset", sequences.Reset)

	api.POST("/catalog/products", products.Create)
	api.GET("/catalog/products", products.List)
	api.GET("/catalog/products/code/:code", products.GetByCode)
	api.GET("/catalog/products/:id", products.GetByID)
	api.PUT("/catalog/products/:id", products.Update)
	api.DELETE("/catalog/products/:id", products.Delete)
	api.POST("/catalog/products/:id/activate", products.Activate)
	api.POST("/catalog/products/:id/deactivate", products.Deactivate)

	api.POST("/catalog/taxes", taxes.Create)
	api.GET("/catalog/taxes", taxes.List)
	api.GET("/catalog/taxes/:id", taxes.GetByID)
	api.PUT("/catalog/taxes/:id", taxes.Update)
	api.DELETE("/catalog/taxes/:id", taxes.Delete)

	api.POST("/partner/customers", customers.Create)
	api.GET("/partner/customers", customers.List)
	api.GET("/partner/customers/:id", customers.GetByID)
	api.PUT("/partner/customers/:id", customers.Update)
	api.DELETE("/partner/customers/:id", customers.Delete)

	return &testEnv{t: t, tenantID: uuid.New(), engine: engine, db: db}
}

// do sends a request as the env tenant
func (e *testEnv) do(method, path string, body any) *httptest.ResponseRecorder {
	e.t.Helper()
	return e.doAs(e.tenantID, method, path, body)
}

func (e *testEnv) doAs(tenantID uuid.UUID, method, path string, body any) *httptest.ResponseRecorder {
	e.t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(e.t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, "/api/v1"+path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.TenantHeaderKey, tenantID.String())
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

// envelope mirrors dto.Response with the data left raw
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *dto.ErrorInfo  `json:"error"`
	Meta    *dto.Meta       `json:"meta"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

// decodeData decodes a success envelope into out
func decodeData[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	env := decodeEnvelope(t, w)
	require.True(t, env.Success, w.Body.String())
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}

// requireError asserts the status and error code of a failed request
func requireError(t *testing.T, w *httptest.ResponseRecorder, status int, code string) *dto.ErrorInfo {
	t.Helper()
	require.Equal(t, status, w.Code, w.Body.String())
	env := decodeEnvelope(t, w)
	require.False(t, env.Success)
	require.NotNil(t, env.Error)
	require.Equal(t, code, env.Error.Code)
	return env.Error
}

// fixtures

func (e *testEnv) createTax(name, amount string) catalogapp.TaxResponse {
	e.t.Helper()
	w := e.do(http.MethodPost, "/catalog/taxes", map[string]any{"name": name, "amount": amount})
	require.Equal(e.t, http.StatusCreated, w.Code, w.Body.String())
	return decodeData[catalogapp.TaxResponse](e.t, w)
}

func (e *testEnv) createProduct(code, price string, taxIDs ...uuid.UUID) catalogapp.ProductResponse {
	e.t.Helper()
	if taxIDs == nil {
		taxIDs = []uuid.UUID{}
	}
	w := e.do(http.MethodPost, "/catalog/products", map[string]any{
		"code":       code,
		"name":       "Producto " + code,
		"list_price": price,
		"tax_ids":    taxIDs,
	})
	require.Equal(e.t, http.StatusCreated, w.Code, w.Body.String())
	return decodeData[catalogapp.ProductResponse](e.t, w)
}

func (e *testEnv) createCustomer(name string) partnerapp.CustomerResponse {
	e.t.Helper()
	w := e.do(http.MethodPost, "/partner/customers", map[string]any{"name": name})
	require.Equal(e.t, http.StatusCreated, w.Code, w.Body.String())
	return decodeData[partnerapp.CustomerResponse](e.t, w)
}

func (e *testEnv) createOrder(customerID uuid.UUID, lines ...map[string]any) posapp.OrderResponse {
	e.t.Helper()
	if lines == nil {
		lines = []map[string]any{}
	}
	w := e.do(http.MethodPost, "/orders", map[string]any{
		"customer_id": customerID,
		"lines":       lines,
	})
	require.Equal(e.t, http.StatusCreated, w.Code, w.Body.String())
	return decodeData[posapp.OrderResponse](e.t, w)
}
