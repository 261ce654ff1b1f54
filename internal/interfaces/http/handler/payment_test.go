package handler

import (
	"net/http"
	"testing"

	financeapp "github.com/erp/puntoventa/internal/application/finance"
	posapp "github.com/erp/puntoventa/internal/application/pos"
	"github.com/erp/puntoventa/internal/interfaces/http/dto"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// paidOrder creates an order worth 100 for a fresh customer
func (e *testEnv) paidOrder() posapp.OrderResponse {
	e.t.Helper()
	product := e.createProduct("ART"+uuid.NewString()[:6], "100")
	customer := e.createCustomer("Cliente")
	return e.createOrder(customer.ID, map[string]any{"product_id": product.ID})
}

func (e *testEnv) createPayment(orderID uuid.UUID, amount string) financeapp.PaymentResponse {
	e.t.Helper()
	w := e.do(http.MethodPost, "/payments", map[string]any{"order_id": orderID, "amount": amount})
	require.Equal(e.t, http.StatusCreated, w.Code, w.Body.String())
	return decodeData[financeapp.PaymentResponse](e.t, w)
}

func TestPaymentHandler_Create(t *testing.T) {
	env := newTestEnv(t)
	order := env.paidOrder()

	payment := env.createPayment(order.ID, "100")

	assert.Equal(t, order.ID, payment.OrderID)
	assert.Equal(t, order.OrderNumber, payment.OrderNumber)
	assert.Equal(t, "Cliente", payment.CustomerName)
	assert.Equal(t, "CASH", payment.Method)
	assert.Equal(t, "draft", payment.State)
	assert.Empty(t, payment.Name)
	assertDecimal(t, "100", payment.Amount)
}

func TestPaymentHandler_CreateRejectsNonPositiveAmount(t *testing.T) {
	env := newTestEnv(t)
	order := env.paidOrder()

	for _, amount := range []string{"0", "-5"} {
		t.Run(amount, func(t *testing.T) {
			w := env.do(http.MethodPost, "/payments", map[string]any{"order_id": order.ID, "amount": amount})
			errInfo := requireError(t, w, http.StatusBadRequest, dto.ErrCodeValidation)
			assert.Equal(t, "El monto del pago debe ser mayor que cero.", errInfo.Message)
		})
	}

	w := env.do(http.MethodGet, "/orders/"+order.ID.String()+"/payments", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodeData[[]financeapp.PaymentResponse](t, w))
}

func TestPaymentHandler_CreateRejectsAmountBeyondColumnScale(t *testing.T) {
	env := newTestEnv(t)
	order := env.paidOrder()

	w := env.do(http.MethodPost, "/payments", map[string]any{"order_id": order.ID, "amount": "0.00001"})
	errInfo := requireError(t, w, http.StatusBadRequest, dto.ErrCodeValidation)
	assert.Equal(t, "El monto del pago admite como máximo 4 decimales.", errInfo.Message)

	w = env.do(http.MethodGet, "/orders/"+order.ID.String()+"/payments", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodeData[[]financeapp.PaymentResponse](t, w))

	payment := env.createPayment(order.ID, "0.0001")
	assertDecimal(t, "0.0001", payment.Amount)
}

func TestPaymentHandler_CreateRejections(t *testing.T) {
	env := newTestEnv(t)
	order := env.paidOrder()

	requireError(t, env.do(http.MethodPost, "/payments", map[string]any{"order_id": uuid.New(), "amount": "10"}),
		http.StatusBadRequest, "ERR_INVALID_ORDER")
	requireError(t, env.do(http.MethodPost, "/payments", map[string]any{"order_id": order.ID, "amount": "10", "method": "BITCOIN"}),
		http.StatusBadRequest, dto.ErrCodeValidation)
	requireError(t, env.do(http.MethodPost, "/payments", map[string]any{"amount": "10"}),
		http.StatusBadRequest, dto.ErrCodeValidation)
}

func TestPaymentHandler_Post(t *testing.T) {
	env := newTestEnv(t)
	order := env.paidOrder()
	first := env.createPayment(order.ID, "60")
	second := env.createPayment(order.ID, "40")

	w := env.do(http.MethodPost, "/payments/"+first.ID.String()+"/post", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	posted := decodeData[financeapp.PaymentResponse](t, w)
	assert.Equal(t, "PAGO/00001", posted.Name)
	assert.Equal(t, "posted", posted.State)
	assert.NotNil(t, posted.PostedAt)
	assert.NotNil(t, posted.PaymentDate)

	w = env.do(http.MethodPost, "/payments/"+second.ID.String()+"/post", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "PAGO/00002", decodeData[financeapp.PaymentResponse](t, w).Name)

	w = env.do(http.MethodPost, "/payments/"+first.ID.String()+"/post", nil)
	requireError(t, w, http.StatusUnprocessableEntity, dto.ErrCodeInvalidState)

	// the failed attempt drew no number
	third := env.createPayment(order.ID, "1")
	w = env.do(http.MethodPost, "/payments/"+third.ID.String()+"/post", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "PAGO/00003", decodeData[financeapp.PaymentResponse](t, w).Name)

	requireError(t, env.do(http.MethodPost, "/payments/"+uuid.NewString()+"/post", nil), http.StatusNotFound, dto.ErrCodeNotFound)
}

func TestPaymentHandler_Update(t *testing.T) {
	env := newTestEnv(t)
	order := env.paidOrder()
	payment := env.createPayment(order.ID, "100")
	path := "/payments/" + payment.ID.String()

	w := env.do(http.MethodPut, path, map[string]any{"amount": "80", "method": "CARD", "reference": " 4242 "})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decodeData[financeapp.PaymentResponse](t, w)
	assertDecimal(t, "80", updated.Amount)
	assert.Equal(t, "CARD", updated.Method)
	assert.Equal(t, "4242", updated.Reference)

	errInfo := requireError(t, env.do(http.MethodPut, path, map[string]any{"amount": "0"}), http.StatusBadRequest, dto.ErrCodeValidation)
	assert.Equal(t, "El monto del pago debe ser mayor que cero.", errInfo.Message)

	require.Equal(t, http.StatusOK, env.do(http.MethodPost, path+"/post", nil).Code)
	requireError(t, env.do(http.MethodPut, path, map[string]any{"amount": "90"}), http.StatusUnprocessableEntity, dto.ErrCodeInvalidState)
}

func TestPaymentHandler_Cancel(t *testing.T) {
	env := newTestEnv(t)
	order := env.paidOrder()
	payment := env.createPayment(order.ID, "100")
	path := "/payments/" + payment.ID.String()
	require.Equal(t, http.StatusOK, env.do(http.MethodPost, path+"/post", nil).Code)

	w := env.do(http.MethodPost, path+"/cancel", map[string]any{"reason": "cobro duplicado"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	cancelled := decodeData[financeapp.PaymentResponse](t, w)
	assert.Equal(t, "cancelled", cancelled.State)
	assert.Equal(t, "cobro duplicado", cancelled.CancelReason)
	assert.NotNil(t, cancelled.CancelledAt)

	requireError(t, env.do(http.MethodPost, path+"/cancel", nil), http.StatusUnprocessableEntity, dto.ErrCodeInvalidState)

	// a draft can be cancelled without a body
	draft := env.createPayment(order.ID, "5")
	w = env.do(http.MethodPost, "/payments/"+draft.ID.String()+"/cancel", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "cancelled", decodeData[financeapp.PaymentResponse](t, w).State)
}

func TestPaymentHandler_Delete(t *testing.T) {
	env := newTestEnv(t)
	order := env.paidOrder()
	draft := env.createPayment(order.ID, "10")
	posted := env.createPayment(order.ID, "20")
	require.Equal(t, http.StatusOK, env.do(http.MethodPost, "/payments/"+posted.ID.String()+"/post", nil).Code)

	require.Equal(t, http.StatusNoContent, env.do(http.MethodDelete, "/payments/"+draft.ID.String(), nil).Code)
	requireError(t, env.do(http.MethodGet, "/payments/"+draft.ID.String(), nil), http.StatusNotFound, dto.ErrCodeNotFound)

	requireError(t, env.do(http.MethodDelete, "/payments/"+posted.ID.String(), nil), http.StatusUnprocessableEntity, dto.ErrCodeInvalidState)
	requireError(t, env.do(http.MethodDelete, "/payments/oops", nil), http.StatusBadRequest, dto.ErrCodeInvalidInput)
}

func TestPaymentHandler_List(t *testing.T) {
	env := newTestEnv(t)
	first := env.paidOrder()
	second := env.paidOrder()
	env.createPayment(first.ID, "10")
	env.createPayment(first.ID, "20")
	p := env.createPayment(second.ID, "30")
	require.Equal(t, http.StatusOK, env.do(http.MethodPost, "/payments/"+p.ID.String()+"/post", nil).Code)

	w := env.do(http.MethodGet, "/payments", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(3), decodeEnvelope(t, w).Meta.Total)

	w = env.do(http.MethodGet, "/payments?state=posted", nil)
	require.Equal(t, http.StatusOK, w.Code)
	posted := decodeData[[]financeapp.PaymentResponse](t, w)
	require.Len(t, posted, 1)
	assert.Equal(t, second.ID, posted[0].OrderID)

	w = env.do(http.MethodGet, "/orders/"+first.ID.String()+"/payments", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeData[[]financeapp.PaymentResponse](t, w), 2)

	w = env.do(http.MethodGet, "/payments?order_id="+first.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	byOrder := decodeData[[]financeapp.PaymentResponse](t, w)
	require.Len(t, byOrder, 2)
	for _, payment := range byOrder {
		assert.Equal(t, first.ID, payment.OrderID)
	}

	w = env.do(http.MethodGet, "/payments?state=draft&order_id="+second.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Empty(t, decodeData[[]financeapp.PaymentResponse](t, w))

	requireError(t, env.do(http.MethodGet, "/payments?state=paid", nil), http.StatusBadRequest, dto.ErrCodeValidation)
	requireError(t, env.do(http.MethodGet, "/payments?order_id=123", nil), http.StatusBadRequest, dto.ErrCodeValidation)

	// payments are tenant scoped
	w = env.doAs(uuid.New(), http.MethodGet, "/payments", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodeData[[]financeapp.PaymentResponse](t, w))
}
