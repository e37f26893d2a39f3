package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/powerfit/powerfit-api/internal/domain/auth"
	"github.com/powerfit/powerfit-api/internal/domain/order"
	"github.com/powerfit/powerfit-api/internal/domain/payment"
	"github.com/powerfit/powerfit-api/internal/domain/product"
	"github.com/powerfit/powerfit-api/internal/domain/promo"
	"github.com/powerfit/powerfit-api/internal/domain/user"
)

// --- In-memory fakes ---

type fakeProducts struct {
	items map[string]product.Product
}

func (f *fakeProducts) List(_ context.Context) ([]product.Product, error) {
	out := make([]product.Product, 0, len(f.items))
	for _, p := range f.items {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeProducts) GetByID(_ context.Context, id string) (*product.Product, error) {
	p, ok := f.items[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	return &p, nil
}

func (f *fakeProducts) GetByIDs(_ context.Context, ids []string) ([]product.Product, error) {
	var out []product.Product
	for _, id := range ids {
		if p, ok := f.items[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeFilters struct {
	filters []product.Filter
}

func (f *fakeFilters) ListFilters(_ context.Context) ([]product.Filter, error) {
	return f.filters, nil
}

func (f *fakeFilters) SwapOrder(_ context.Context, idA, idB string) error {
	var a, b *product.Filter
	for i := range f.filters {
		switch f.filters[i].ID {
		case idA:
			a = &f.filters[i]
		case idB:
			b = &f.filters[i]
		}
	}
	if a == nil || b == nil {
		return product.ErrFilterNotFound
	}
	a.SortOrder, b.SortOrder = b.SortOrder, a.SortOrder
	return nil
}

type fakeUsers struct {
	user    *user.User
	address *user.Address
	err     error
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (*user.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.user == nil || f.user.ID != id {
		return nil, user.ErrNotFound
	}
	return f.user, nil
}

func (f *fakeUsers) GetAddress(_ context.Context, userID, addressID string) (*user.Address, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.address == nil || f.address.ID != addressID || f.address.UserID != userID {
		return nil, user.ErrAddressNotFound
	}
	return f.address, nil
}

type fakePromos struct {
	byCode map[string]*promo.Promotion
	listed []promo.Promotion
}

func (f *fakePromos) FindByCode(_ context.Context, code string) (*promo.Promotion, error) {
	for _, p := range f.byCode {
		if strings.EqualFold(p.Code, code) {
			return p, nil
		}
	}
	return nil, promo.ErrInvalidPromo
}

func (f *fakePromos) List(_ context.Context) ([]promo.Promotion, error) {
	return f.listed, nil
}

func (f *fakePromos) Create(_ context.Context, p *promo.Promotion) error {
	f.listed = append(f.listed, *p)
	return nil
}

func (f *fakePromos) Update(_ context.Context, p *promo.Promotion) error {
	for i := range f.listed {
		if f.listed[i].ID == p.ID {
			f.listed[i] = *p
			return nil
		}
	}
	return promo.ErrInvalidPromo
}

func (f *fakePromos) Delete(_ context.Context, id string) error {
	for i := range f.listed {
		if f.listed[i].ID == id {
			f.listed = append(f.listed[:i], f.listed[i+1:]...)
			return nil
		}
	}
	return promo.ErrInvalidPromo
}

type fakeOrders struct {
	byID      map[string]*order.Order
	createErr error
}

func (f *fakeOrders) Create(_ context.Context, o *order.Order) error {
	if f.createErr != nil {
		return f.createErr
	}
	if f.byID == nil {
		f.byID = make(map[string]*order.Order)
	}
	f.byID[o.ID] = o
	return nil
}

func (f *fakeOrders) GetByID(_ context.Context, id string) (*order.Order, error) {
	o, ok := f.byID[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	return o, nil
}

func (f *fakeOrders) SetPreference(_ context.Context, orderID, preferenceID string) error {
	if o, ok := f.byID[orderID]; ok {
		o.PreferenceID = preferenceID
	}
	return nil
}

func (f *fakeOrders) UpdateStatus(_ context.Context, orderID string, status order.Status) error {
	o, ok := f.byID[orderID]
	if !ok {
		return order.ErrNotFound
	}
	o.Status = status
	return nil
}

func (f *fakeOrders) SetFulfillment(_ context.Context, orderID string, s order.FulfillmentStatus) error {
	o, ok := f.byID[orderID]
	if !ok {
		return order.ErrNotFound
	}
	o.Fulfillment = s
	return nil
}

type fakeGateway struct {
	pref      *payment.Preference
	createErr error
	info      *payment.Info
}

func (f *fakeGateway) CreatePreference(_ context.Context, _ *payment.PreferenceRequest) (*payment.Preference, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.pref, nil
}

func (f *fakeGateway) GetPreference(_ context.Context, id string) (*payment.Preference, error) {
	if f.pref != nil && f.pref.ID == id {
		return f.pref, nil
	}
	return nil, errors.New("not found")
}

func (f *fakeGateway) GetPayment(_ context.Context, _ string) (*payment.Info, error) {
	if f.info == nil {
		return nil, errors.New("not found")
	}
	return f.info, nil
}

type fakeTransactions struct {
	rows []payment.Transaction
}

func (f *fakeTransactions) Append(_ context.Context, t *payment.Transaction) error {
	for _, row := range f.rows {
		if row.OrderID == t.OrderID && row.PaymentID == t.PaymentID && row.Status == t.Status {
			return nil
		}
	}
	f.rows = append(f.rows, *t)
	return nil
}

func (f *fakeTransactions) ListByOrder(_ context.Context, orderID string) ([]payment.Transaction, error) {
	var out []payment.Transaction
	for _, t := range f.rows {
		if t.OrderID == orderID {
			out = append(out, t)
		}
	}
	return out, nil
}

type fakeAPIKeys struct {
	hash string
}

func (f *fakeAPIKeys) FindByHash(_ context.Context, hash string) (*auth.APIKeyInfo, error) {
	if hash != f.hash {
		return nil, errors.New("api key not found")
	}
	return &auth.APIKeyInfo{ID: "k1", KeyHash: hash, Name: "back-office"}, nil
}

// --- Harness ---

const testAPIKey = "pf_test_key"

type env struct {
	handler      *Handler
	products     *fakeProducts
	filters      *fakeFilters
	users        *fakeUsers
	promos       *fakePromos
	orders       *fakeOrders
	gateway      *fakeGateway
	transactions *fakeTransactions
}

func newEnv() *env {
	products := &fakeProducts{items: map[string]product.Product{
		"whey-900": {
			ID:        "whey-900",
			Name:      "Whey Protein 900g",
			Price:     decimal.RequireFromString("50.00"),
			Category:  "suplementos",
			Image:     "/images/whey-900.jpg",
			Inventory: 10,
		},
	}}
	filters := &fakeFilters{filters: []product.Filter{
		{ID: "f1", Name: "Proteinas", Category: "suplementos", SortOrder: 1},
		{ID: "f2", Name: "Creatina", Category: "suplementos", SortOrder: 2},
	}}
	users := &fakeUsers{
		user:    &user.User{ID: "u1", Name: "Maria Souza", Email: "maria@example.com"},
		address: &user.Address{ID: "a1", UserID: "u1", Street: "Rua Augusta", City: "Sao Paulo", State: "SP", ZipCode: "01305-000"},
	}
	promos := &fakePromos{byCode: map[string]*promo.Promotion{
		"POWER10": {
			ID:            "pr1",
			Name:          "Power 10",
			Code:          "POWER10",
			DiscountType:  promo.DiscountPercentage,
			DiscountValue: decimal.RequireFromString("10"),
			StartsAt:      time.Now().Add(-time.Hour),
			EndsAt:        time.Now().Add(time.Hour),
			Active:        true,
		},
	}}
	orders := &fakeOrders{}
	gateway := &fakeGateway{pref: &payment.Preference{ID: "pref-1", InitPoint: "https://mp/init"}}
	transactions := &fakeTransactions{}

	validator := promo.NewRepoValidator(promos)
	cfg := order.Config{
		ShippingFee: decimal.RequireFromString("15.00"),
		Currency:    "BRL",
		BaseURL:     "https://loja.example.com",
		Provider:    "mercadopago",
	}
	svc := order.NewService(products, users, validator, orders, gateway, cfg)
	processor := order.NewWebhookProcessor(gateway, orders, transactions, "mercadopago")

	keys := &fakeAPIKeys{}
	apiAuth := NewAPIKeyAuth(keys, []byte("pepper"))
	keys.hash = apiAuth.HashKey(testAPIKey)

	h := NewHandler(svc, processor, products, filters, users, promos, validator, orders, transactions, apiAuth)
	return &env{
		handler:      h,
		products:     products,
		filters:      filters,
		users:        users,
		promos:       promos,
		orders:       orders,
		gateway:      gateway,
		transactions: transactions,
	}
}

func (e *env) do(t *testing.T, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	e.handler.Routes().ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

// --- Tests ---

func TestListProducts(t *testing.T) {
	e := newEnv()
	rec := e.do(t, http.MethodGet, "/api/products", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	products := decodeBody[[]productResponse](t, rec)
	require.Len(t, products, 1)
	assert.Equal(t, "whey-900", products[0].ID)
	assert.Equal(t, "50.00", products[0].Price)
	assert.Equal(t, 10, products[0].Inventory)
}

func TestGetProduct_NotFound(t *testing.T) {
	e := newEnv()
	rec := e.do(t, http.MethodGet, "/api/products/ghost", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListFilters(t *testing.T) {
	e := newEnv()
	rec := e.do(t, http.MethodGet, "/api/filters", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	filters := decodeBody[[]filterResponse](t, rec)
	require.Len(t, filters, 2)
	assert.Equal(t, 1, filters[0].SortOrder)
}

func TestValidateCoupon(t *testing.T) {
	e := newEnv()

	rec := e.do(t, http.MethodPost, "/api/coupons/validate",
		validateCouponRequest{Code: "power10", Subtotal: "100.00"}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeBody[validateCouponResponse](t, rec)
	assert.True(t, resp.Valid)
	assert.Equal(t, "10.00", resp.Discount)
}

func TestValidateCoupon_Invalid(t *testing.T) {
	e := newEnv()

	rec := e.do(t, http.MethodPost, "/api/coupons/validate",
		validateCouponRequest{Code: "NOPE", Subtotal: "100.00"}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeBody[validateCouponResponse](t, rec)
	assert.False(t, resp.Valid)
	assert.NotEmpty(t, resp.Message)
}

func TestValidateCoupon_BadSubtotal(t *testing.T) {
	e := newEnv()
	rec := e.do(t, http.MethodPost, "/api/coupons/validate",
		validateCouponRequest{Code: "POWER10", Subtotal: "abc"}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCheckout(t *testing.T) {
	e := newEnv()

	rec := e.do(t, http.MethodPost, "/api/checkout", checkoutRequest{
		UserID:        "u1",
		AddressID:     "a1",
		Items:         []checkoutItemBody{{ProductID: "whey-900", Quantity: 2}},
		CouponCode:    "POWER10",
		PaymentMethod: "mercadopago",
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	resp := decodeBody[checkoutResponse](t, rec)
	assert.Equal(t, "100.00", resp.Order.Subtotal)
	assert.Equal(t, "10.00", resp.Order.Discount)
	assert.Equal(t, "15.00", resp.Order.Shipping)
	assert.Equal(t, "105.00", resp.Order.Total)
	assert.Equal(t, "pending", resp.Order.Status)
	require.NotNil(t, resp.Payment)
	assert.Equal(t, "pref-1", resp.Payment.PreferenceID)
}

func TestCheckout_EmptyItems(t *testing.T) {
	e := newEnv()
	rec := e.do(t, http.MethodPost, "/api/checkout", checkoutRequest{
		UserID: "u1", AddressID: "a1", PaymentMethod: "mercadopago",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCheckout_MissingPaymentMethod(t *testing.T) {
	e := newEnv()
	rec := e.do(t, http.MethodPost, "/api/checkout", checkoutRequest{
		UserID:    "u1",
		AddressID: "a1",
		Items:     []checkoutItemBody{{ProductID: "whey-900", Quantity: 1}},
	}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCheckout_UnknownProduct(t *testing.T) {
	e := newEnv()
	rec := e.do(t, http.MethodPost, "/api/checkout", checkoutRequest{
		UserID:        "u1",
		AddressID:     "a1",
		Items:         []checkoutItemBody{{ProductID: "ghost", Quantity: 1}},
		PaymentMethod: "mercadopago",
	}, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestCheckout_InsufficientStock(t *testing.T) {
	e := newEnv()
	e.orders.createErr = &order.InsufficientStockError{ProductID: "whey-900"}

	rec := e.do(t, http.MethodPost, "/api/checkout", checkoutRequest{
		UserID:        "u1",
		AddressID:     "a1",
		Items:         []checkoutItemBody{{ProductID: "whey-900", Quantity: 99}},
		PaymentMethod: "mercadopago",
	}, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCheckout_GatewayDown(t *testing.T) {
	e := newEnv()
	e.gateway.createErr = errors.New("provider unavailable")

	rec := e.do(t, http.MethodPost, "/api/checkout", checkoutRequest{
		UserID:        "u1",
		AddressID:     "a1",
		Items:         []checkoutItemBody{{ProductID: "whey-900", Quantity: 1}},
		PaymentMethod: "mercadopago",
	}, nil)
	require.Equal(t, http.StatusBadGateway, rec.Code)

	resp := decodeBody[checkoutFailedResponse](t, rec)
	assert.NotEmpty(t, resp.OrderID)

	// The order survived the gateway failure and can be fetched.
	rec = e.do(t, http.MethodGet, "/api/orders/"+resp.OrderID, nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCreateOrderPreference_Retry(t *testing.T) {
	e := newEnv()
	e.gateway.createErr = errors.New("provider unavailable")

	rec := e.do(t, http.MethodPost, "/api/checkout", checkoutRequest{
		UserID:        "u1",
		AddressID:     "a1",
		Items:         []checkoutItemBody{{ProductID: "whey-900", Quantity: 1}},
		PaymentMethod: "mercadopago",
	}, nil)
	require.Equal(t, http.StatusBadGateway, rec.Code)
	orderID := decodeBody[checkoutFailedResponse](t, rec).OrderID

	e.gateway.createErr = nil

	rec = e.do(t, http.MethodPost, "/api/orders/"+orderID+"/preference", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pref-1", decodeBody[paymentRedirect](t, rec).PreferenceID)
}

func TestGetOrder_WithTransactions(t *testing.T) {
	e := newEnv()

	rec := e.do(t, http.MethodPost, "/api/checkout", checkoutRequest{
		UserID:        "u1",
		AddressID:     "a1",
		Items:         []checkoutItemBody{{ProductID: "whey-900", Quantity: 1}},
		PaymentMethod: "mercadopago",
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	orderID := decodeBody[checkoutResponse](t, rec).Order.ID

	e.gateway.info = &payment.Info{
		ID:                "pay-1",
		Status:            "approved",
		Amount:            decimal.RequireFromString("65.00"),
		ExternalReference: "order_" + orderID,
	}
	rec = e.do(t, http.MethodPost, "/webhooks/payment", map[string]any{
		"type": "payment", "data": map[string]string{"id": "pay-1"},
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = e.do(t, http.MethodGet, "/api/orders/"+orderID, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	detail := decodeBody[orderDetailResponse](t, rec)
	assert.Equal(t, "paid", detail.Status)
	require.NotNil(t, detail.Buyer)
	assert.Equal(t, "Maria Souza", detail.Buyer.Name)
	require.NotNil(t, detail.Address)
	assert.Equal(t, "Rua Augusta", detail.Address.Street)
	require.Len(t, detail.Transactions, 1)
	assert.Equal(t, "approved", detail.Transactions[0].Status)
}

func TestGetOrder_UserLookupFailure(t *testing.T) {
	e := newEnv()

	rec := e.do(t, http.MethodPost, "/api/checkout", checkoutRequest{
		UserID:        "u1",
		AddressID:     "a1",
		Items:         []checkoutItemBody{{ProductID: "whey-900", Quantity: 1}},
		PaymentMethod: "mercadopago",
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	orderID := decodeBody[checkoutResponse](t, rec).Order.ID

	// A transient store failure must surface as an error, not as an order
	// that merely lost its buyer section.
	e.users.err = errors.New("connection reset")

	rec = e.do(t, http.MethodGet, "/api/orders/"+orderID, nil, nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestWebhook_NotProcessed(t *testing.T) {
	e := newEnv()
	rec := e.do(t, http.MethodPost, "/webhooks/payment", map[string]any{
		"type": "merchant_order", "data": map[string]string{"id": "1"},
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeBody[webhookResponse](t, rec)
	assert.False(t, resp.Success)
	assert.Equal(t, "not processed", resp.Message)
}

func TestWebhook_QueryParams(t *testing.T) {
	e := newEnv()

	rec := e.do(t, http.MethodPost, "/api/checkout", checkoutRequest{
		UserID:        "u1",
		AddressID:     "a1",
		Items:         []checkoutItemBody{{ProductID: "whey-900", Quantity: 1}},
		PaymentMethod: "mercadopago",
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	orderID := decodeBody[checkoutResponse](t, rec).Order.ID

	e.gateway.info = &payment.Info{
		ID:                "pay-2",
		Status:            "rejected",
		ExternalReference: "order_" + orderID,
	}

	rec = e.do(t, http.MethodPost, "/webhooks/payment?topic=payment&id=pay-2", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decodeBody[webhookResponse](t, rec).Success)
	assert.Equal(t, order.StatusCancelled, e.orders.byID[orderID].Status)
}

func TestAdmin_RequiresAPIKey(t *testing.T) {
	e := newEnv()

	rec := e.do(t, http.MethodGet, "/api/admin/promotions", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = e.do(t, http.MethodGet, "/api/admin/promotions", nil,
		map[string]string{APIKeyHeader: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = e.do(t, http.MethodGet, "/api/admin/promotions", nil,
		map[string]string{APIKeyHeader: testAPIKey})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdmin_PromotionLifecycle(t *testing.T) {
	e := newEnv()
	authed := map[string]string{APIKeyHeader: testAPIKey}

	body := promotionBody{
		Name:          "Launch promo",
		Code:          "LAUNCH15",
		DiscountType:  "fixed",
		DiscountValue: "15.00",
		StartsAt:      time.Now(),
		EndsAt:        time.Now().Add(24 * time.Hour),
		Active:        true,
		MinPurchase:   "50.00",
	}

	rec := e.do(t, http.MethodPost, "/api/admin/promotions", body, authed)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeBody[promotionResponse](t, rec)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "15.00", created.DiscountValue)

	body.Name = "Launch promo v2"
	rec = e.do(t, http.MethodPut, "/api/admin/promotions/"+created.ID, body, authed)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Launch promo v2", decodeBody[promotionResponse](t, rec).Name)

	rec = e.do(t, http.MethodDelete, "/api/admin/promotions/"+created.ID, nil, authed)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = e.do(t, http.MethodDelete, "/api/admin/promotions/"+created.ID, nil, authed)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestAdmin_CreatePromotion_CodeUppercased(t *testing.T) {
	e := newEnv()
	authed := map[string]string{APIKeyHeader: testAPIKey}

	rec := e.do(t, http.MethodPost, "/api/admin/promotions", promotionBody{
		Name:          "Lowercase entry",
		Code:          "power10",
		DiscountType:  "percentage",
		DiscountValue: "10",
		StartsAt:      time.Now(),
		EndsAt:        time.Now().Add(time.Hour),
		Active:        true,
	}, authed)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	created := decodeBody[promotionResponse](t, rec)
	assert.Equal(t, "POWER10", created.Code)

	// Updates normalize the same way.
	rec = e.do(t, http.MethodPut, "/api/admin/promotions/"+created.ID, promotionBody{
		Name:          "Lowercase entry",
		Code:          "Power10",
		DiscountType:  "percentage",
		DiscountValue: "10",
		StartsAt:      time.Now(),
		EndsAt:        time.Now().Add(time.Hour),
		Active:        true,
	}, authed)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "POWER10", decodeBody[promotionResponse](t, rec).Code)
}

func TestAdmin_CreatePromotion_BadType(t *testing.T) {
	e := newEnv()
	rec := e.do(t, http.MethodPost, "/api/admin/promotions", promotionBody{
		Name:          "Bad",
		Code:          "BAD",
		DiscountType:  "bogo",
		DiscountValue: "1.00",
		StartsAt:      time.Now(),
		EndsAt:        time.Now().Add(time.Hour),
	}, map[string]string{APIKeyHeader: testAPIKey})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdmin_SetFulfillment(t *testing.T) {
	e := newEnv()
	authed := map[string]string{APIKeyHeader: testAPIKey}

	rec := e.do(t, http.MethodPost, "/api/checkout", checkoutRequest{
		UserID:        "u1",
		AddressID:     "a1",
		Items:         []checkoutItemBody{{ProductID: "whey-900", Quantity: 1}},
		PaymentMethod: "mercadopago",
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	orderID := decodeBody[checkoutResponse](t, rec).Order.ID

	rec = e.do(t, http.MethodPut, "/api/admin/orders/"+orderID+"/fulfillment", fulfillmentBody{Status: "shipped"}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = e.do(t, http.MethodPut, "/api/admin/orders/"+orderID+"/fulfillment", fulfillmentBody{Status: "shipped"}, authed)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "shipped", decodeBody[orderResponse](t, rec).Fulfillment)

	rec = e.do(t, http.MethodPut, "/api/admin/orders/"+orderID+"/fulfillment", fulfillmentBody{Status: "lost"}, authed)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdmin_SwapFilters(t *testing.T) {
	e := newEnv()
	authed := map[string]string{APIKeyHeader: testAPIKey}

	rec := e.do(t, http.MethodPost, "/api/admin/filters/swap",
		swapFiltersBody{FilterA: "f1", FilterB: "f2"}, authed)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = e.do(t, http.MethodGet, "/api/filters", nil, nil)
	filters := decodeBody[[]filterResponse](t, rec)
	byID := map[string]int{}
	for _, f := range filters {
		byID[f.ID] = f.SortOrder
	}
	assert.Equal(t, 2, byID["f1"])
	assert.Equal(t, 1, byID["f2"])
}
