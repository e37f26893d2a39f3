//go:build integration

package integration

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/powerfit/powerfit-api/internal/domain/order"
	"github.com/powerfit/powerfit-api/internal/domain/promo"
	"github.com/powerfit/powerfit-api/internal/mercadopago"
	"github.com/powerfit/powerfit-api/internal/repository"
)

// fakeMercadoPago serves the subset of the provider API the service calls.
type fakeMercadoPago struct {
	mu       sync.Mutex
	failNext bool
	prefSeq  int
	payments map[string]string // payment id -> external reference
	statuses map[string]string // payment id -> status
}

func newFakeMercadoPago() *fakeMercadoPago {
	return &fakeMercadoPago{
		payments: make(map[string]string),
		statuses: make(map[string]string),
	}
}

func (f *fakeMercadoPago) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /checkout/preferences", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.failNext {
			f.failNext = false
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"message": "internal error"}`))
			return
		}
		f.prefSeq++
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id": "pref-` + strconv.Itoa(f.prefSeq) + `", "init_point": "https://mp/init"}`))
	})
	mux.HandleFunc("GET /checkout/preferences/{id}", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id": "` + r.PathValue("id") + `", "init_point": "https://mp/init"}`))
	})
	mux.HandleFunc("GET /v1/payments/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		id := r.PathValue("id")
		ref, ok := f.payments[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message": "Payment not found"}`))
			return
		}
		_, _ = w.Write([]byte(`{"id": ` + id + `, "status": "` + f.statuses[id] +
			`", "transaction_amount": 105.00, "external_reference": "` + ref + `"}`))
	})
	return mux
}

type stack struct {
	service      *order.Service
	processor    *order.WebhookProcessor
	orders       *repository.OrderRepository
	transactions *repository.TransactionRepository
	provider     *fakeMercadoPago
}

func newStack(t *testing.T) *stack {
	t.Helper()

	provider := newFakeMercadoPago()
	srv := httptest.NewServer(provider.handler())
	t.Cleanup(srv.Close)

	gateway := mercadopago.NewClient("test-token", mercadopago.WithBaseURL(srv.URL))

	products := repository.NewProductRepository(pool)
	users := repository.NewUserRepository(pool)
	promos := repository.NewPromoRepository(pool)
	orders := repository.NewOrderRepository(pool)
	transactions := repository.NewTransactionRepository(pool)

	svc := order.NewService(products, users, promo.NewRepoValidator(promos), orders, gateway, order.Config{
		ShippingFee: decimal.RequireFromString("15.00"),
		Currency:    "BRL",
		BaseURL:     "https://loja.example.com",
		Provider:    "mercadopago",
	})
	processor := order.NewWebhookProcessor(gateway, orders, transactions, "mercadopago")

	return &stack{
		service:      svc,
		processor:    processor,
		orders:       orders,
		transactions: transactions,
		provider:     provider,
	}
}

func inventoryOf(t *testing.T, productID string) int {
	t.Helper()
	var inventory int
	err := pool.QueryRow(context.Background(),
		`SELECT inventory FROM products WHERE id = $1`, productID).Scan(&inventory)
	require.NoError(t, err)
	return inventory
}

func TestCheckout_EndToEnd(t *testing.T) {
	s := newStack(t)
	before := inventoryOf(t, "whey-900")

	result, err := s.service.Checkout(context.Background(), order.CheckoutRequest{
		UserID:        "u1",
		AddressID:     "a1",
		Items:         []order.LineItem{{ProductID: "whey-900", Quantity: 2}},
		CouponCode:    "power10",
		PaymentMethod: "mercadopago",
	})
	require.NoError(t, err)

	o := result.Order
	assert.True(t, decimal.RequireFromString("100.00").Equal(o.Subtotal))
	assert.True(t, decimal.RequireFromString("10.00").Equal(o.Discount))
	assert.True(t, decimal.RequireFromString("15.00").Equal(o.Shipping))
	assert.True(t, decimal.RequireFromString("105.00").Equal(o.Total))
	require.NotNil(t, result.Preference)

	assert.Equal(t, before-2, inventoryOf(t, "whey-900"))

	stored, err := s.orders.GetByID(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusPending, stored.Status)
	assert.Equal(t, result.Preference.ID, stored.PreferenceID)
	require.Len(t, stored.Items, 1)
	assert.Equal(t, "Whey Protein Concentrado 900g", stored.Items[0].ProductName)
}

func TestCheckout_InsufficientStockRollsBack(t *testing.T) {
	s := newStack(t)
	wheyBefore := inventoryOf(t, "whey-900")
	creatinaBefore := inventoryOf(t, "creatina-300")

	_, err := s.service.Checkout(context.Background(), order.CheckoutRequest{
		UserID:    "u1",
		AddressID: "a1",
		Items: []order.LineItem{
			{ProductID: "whey-900", Quantity: 1},
			{ProductID: "creatina-300", Quantity: creatinaBefore + 1},
		},
		PaymentMethod: "mercadopago",
	})

	var stockErr *order.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "creatina-300", stockErr.ProductID)

	// Nothing from the failed checkout sticks, including the first item's
	// decrement.
	assert.Equal(t, wheyBefore, inventoryOf(t, "whey-900"))
	assert.Equal(t, creatinaBefore, inventoryOf(t, "creatina-300"))
}

func TestCheckout_ConcurrentInventory(t *testing.T) {
	s := newStack(t)
	before := inventoryOf(t, "creatina-300")
	require.GreaterOrEqual(t, before, 1)

	// More concurrent buyers than units in stock: exactly `before` orders
	// may succeed.
	buyers := before + 3
	var wg sync.WaitGroup
	results := make([]error, buyers)

	for i := range buyers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.service.Checkout(context.Background(), order.CheckoutRequest{
				UserID:        "u1",
				AddressID:     "a1",
				Items:         []order.LineItem{{ProductID: "creatina-300", Quantity: 1}},
				PaymentMethod: "mercadopago",
			})
			results[i] = err
		}()
	}
	wg.Wait()

	succeeded := 0
	for _, err := range results {
		if err == nil {
			succeeded++
		} else {
			var stockErr *order.InsufficientStockError
			require.ErrorAs(t, err, &stockErr)
		}
	}

	assert.Equal(t, before, succeeded)
	assert.Equal(t, 0, inventoryOf(t, "creatina-300"))
}

func TestCheckout_GatewayFailureThenRetry(t *testing.T) {
	s := newStack(t)
	s.provider.mu.Lock()
	s.provider.failNext = true
	s.provider.mu.Unlock()

	result, err := s.service.Checkout(context.Background(), order.CheckoutRequest{
		UserID:        "u1",
		AddressID:     "a1",
		Items:         []order.LineItem{{ProductID: "whey-900", Quantity: 1}},
		PaymentMethod: "mercadopago",
	})

	var gwErr *order.GatewayError
	require.ErrorAs(t, err, &gwErr)
	require.NotNil(t, result)
	assert.Empty(t, result.Order.PreferenceID)

	// The order survived; the retry succeeds and persists the preference.
	pref, err := s.service.EnsurePreference(context.Background(), result.Order.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, pref.ID)

	stored, err := s.orders.GetByID(context.Background(), result.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, pref.ID, stored.PreferenceID)
}

func TestWebhook_ReplayConverges(t *testing.T) {
	s := newStack(t)

	result, err := s.service.Checkout(context.Background(), order.CheckoutRequest{
		UserID:        "u1",
		AddressID:     "a1",
		Items:         []order.LineItem{{ProductID: "whey-900", Quantity: 1}},
		PaymentMethod: "mercadopago",
	})
	require.NoError(t, err)
	orderID := result.Order.ID

	s.provider.mu.Lock()
	s.provider.payments["77001"] = "order_" + orderID
	s.provider.statuses["77001"] = "approved"
	s.provider.mu.Unlock()

	n := order.Notification{Type: "payment", PaymentID: "77001"}
	for range 3 {
		processed, err := s.processor.Process(context.Background(), n)
		require.NoError(t, err)
		assert.True(t, processed)
	}

	stored, err := s.orders.GetByID(context.Background(), orderID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusPaid, stored.Status)

	txs, err := s.transactions.ListByOrder(context.Background(), orderID)
	require.NoError(t, err)
	assert.Len(t, txs, 1, "replayed webhooks must not duplicate audit rows")
}

func TestWebhook_StatusTransitions(t *testing.T) {
	s := newStack(t)

	result, err := s.service.Checkout(context.Background(), order.CheckoutRequest{
		UserID:        "u1",
		AddressID:     "a1",
		Items:         []order.LineItem{{ProductID: "whey-900", Quantity: 1}},
		PaymentMethod: "mercadopago",
	})
	require.NoError(t, err)
	orderID := result.Order.ID

	n := order.Notification{Type: "payment", PaymentID: "77002"}
	for _, status := range []string{"pending", "in_process", "approved"} {
		s.provider.mu.Lock()
		s.provider.payments["77002"] = "order_" + orderID
		s.provider.statuses["77002"] = status
		s.provider.mu.Unlock()

		_, err := s.processor.Process(context.Background(), n)
		require.NoError(t, err)
	}

	stored, err := s.orders.GetByID(context.Background(), orderID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusPaid, stored.Status)

	txs, err := s.transactions.ListByOrder(context.Background(), orderID)
	require.NoError(t, err)
	assert.Len(t, txs, 3, "each distinct status keeps its own audit row")
}
