package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	domcheckout "example.com/coffee-shop/app/internal/domain/checkout"
	domorder "example.com/coffee-shop/app/internal/domain/order"
	domuser "example.com/coffee-shop/app/internal/domain/user"
)

func TestCheckout_RequiresAuthentication(t *testing.T) {
	env := setupAPI(t)
	cart := withCart(uuid.NewString())
	env.do(t, http.MethodPost, "/api/v1/cart/items", map[string]any{"product_id": 1}, cart)

	rec := env.do(t, http.MethodPost, "/api/v1/cart/checkout", nil, cart)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	body := decodeMap(t, rec)
	require.Equal(t, "requires_authentication", body["status"])
	require.Equal(t, "/login", body["redirect_to"])
	require.Equal(t, "/cart", body["from"])
	require.Equal(t, "Please login to complete your purchase", body["message"])

	rec = env.do(t, http.MethodPost, "/api/v1/cart/checkout?from=/menu", nil, cart)
	require.Equal(t, "/menu", decodeMap(t, rec)["from"])

	rec = env.do(t, http.MethodGet, "/api/v1/cart", nil, cart)
	require.Equal(t, float64(1), decodeMap(t, rec)["total_items"])
}

func TestCheckout_Success(t *testing.T) {
	env := setupAPI(t)
	cart := withCart(uuid.NewString())
	token := withToken(env.token(t, 7))
	env.do(t, http.MethodPost, "/api/v1/cart/items", map[string]any{"product_id": 1}, cart)
	env.do(t, http.MethodPost, "/api/v1/cart/items", map[string]any{"product_id": 2}, cart)

	rec := env.do(t, http.MethodPost, "/api/v1/cart/checkout", nil, cart, token)
	require.Equal(t, http.StatusCreated, rec.Code)
	body := decodeMap(t, rec)
	require.Equal(t, "success", body["status"])
	require.Equal(t, float64(4321), body["order_id"])

	rec = env.do(t, http.MethodGet, "/api/v1/cart", nil, cart)
	require.Equal(t, float64(0), decodeMap(t, rec)["total_items"])

	rec = env.do(t, http.MethodGet, "/api/v1/cart/checkout", nil, cart)
	require.Equal(t, "completed", decodeMap(t, rec)["state"])

	rec = env.do(t, http.MethodGet, "/api/v1/me/orders", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	var orders []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &orders))
	require.Len(t, orders, 1)
	require.Equal(t, float64(4321), orders[0]["number"])
	require.Equal(t, "8.01", orders[0]["total"])
	require.Equal(t, string(domorder.StatusPending), orders[0]["status"])
}

func TestCheckout_EmptyCart(t *testing.T) {
	env := setupAPI(t)

	rec := env.do(t, http.MethodPost, "/api/v1/cart/checkout", nil,
		withCart(uuid.NewString()), withToken(env.token(t, 7)))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestCheckout_PaymentFailures(t *testing.T) {
	tests := []struct {
		name       string
		result     domcheckout.PaymentResult
		err        error
		wantReason string
	}{
		{name: "Declined", result: domcheckout.PaymentFailed("card declined"), wantReason: "card declined"},
		{name: "Gateway error", err: errors.New("gateway unreachable"), wantReason: "gateway unreachable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupAPI(t)
			env.gateway.result = tt.result
			env.gateway.err = tt.err
			cart := withCart(uuid.NewString())
			env.do(t, http.MethodPost, "/api/v1/cart/items", map[string]any{"product_id": 4}, cart)

			rec := env.do(t, http.MethodPost, "/api/v1/cart/checkout", nil, cart, withToken(env.token(t, 7)))
			require.Equal(t, http.StatusPaymentRequired, rec.Code)
			body := decodeMap(t, rec)
			require.Equal(t, "failed", body["status"])
			require.Equal(t, tt.wantReason, body["reason"])

			rec = env.do(t, http.MethodGet, "/api/v1/cart", nil, cart)
			require.Equal(t, float64(1), decodeMap(t, rec)["total_items"])

			rec = env.do(t, http.MethodGet, "/api/v1/cart/checkout", nil, cart)
			require.Equal(t, "idle", decodeMap(t, rec)["state"])

			orders, err := env.orders.List(context.Background())
			require.NoError(t, err)
			require.Empty(t, orders)
		})
	}
}

func TestCheckout_InFlightAndAbandon(t *testing.T) {
	env := setupAPI(t)
	env.gateway.started = make(chan struct{}, 1)
	env.gateway.release = make(chan struct{})
	sessionID := uuid.NewString()
	cart := withCart(sessionID)
	token := withToken(env.token(t, 7, domuser.RoleUser))
	env.do(t, http.MethodPost, "/api/v1/cart/items", map[string]any{"product_id": 5}, cart)

	first := make(chan int, 1)
	go func() {
		first <- env.do(t, http.MethodPost, "/api/v1/cart/checkout", nil, cart, token).Code
	}()

	select {
	case <-env.gateway.started:
	case <-time.After(2 * time.Second):
		t.Fatal("payment never started")
	}

	rec := env.do(t, http.MethodGet, "/api/v1/cart/checkout", nil, cart)
	require.Equal(t, "processing", decodeMap(t, rec)["state"])

	rec = env.do(t, http.MethodPost, "/api/v1/cart/checkout", nil, cart, token)
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, "in_flight", decodeMap(t, rec)["status"])

	rec = env.do(t, http.MethodDelete, "/api/v1/cart/checkout", nil, cart)
	require.Equal(t, http.StatusAccepted, rec.Code)

	select {
	case code := <-first:
		require.Equal(t, http.StatusConflict, code)
	case <-time.After(2 * time.Second):
		t.Fatal("abandoned checkout did not return")
	}

	rec = env.do(t, http.MethodGet, "/api/v1/cart", nil, cart)
	require.Equal(t, float64(1), decodeMap(t, rec)["total_items"])

	rec = env.do(t, http.MethodDelete, "/api/v1/cart/checkout", nil, cart)
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestCheckout_ItemAddedDuringPaymentIsKept(t *testing.T) {
	env := setupAPI(t)
	env.gateway.started = make(chan struct{}, 1)
	env.gateway.release = make(chan struct{})
	cart := withCart(uuid.NewString())
	token := withToken(env.token(t, 7))
	env.do(t, http.MethodPost, "/api/v1/cart/items", map[string]any{"product_id": 1}, cart)

	first := make(chan int, 1)
	go func() {
		first <- env.do(t, http.MethodPost, "/api/v1/cart/checkout", nil, cart, token).Code
	}()

	select {
	case <-env.gateway.started:
	case <-time.After(2 * time.Second):
		t.Fatal("payment never started")
	}

	rec := env.do(t, http.MethodPost, "/api/v1/cart/items", map[string]any{"product_id": 2}, cart)
	require.Equal(t, http.StatusCreated, rec.Code)
	close(env.gateway.release)

	select {
	case code := <-first:
		require.Equal(t, http.StatusCreated, code)
	case <-time.After(2 * time.Second):
		t.Fatal("checkout did not return")
	}

	rec = env.do(t, http.MethodGet, "/api/v1/cart", nil, cart)
	body := decodeMap(t, rec)
	require.Equal(t, float64(1), body["total_items"])
	items := body["items"].([]any)
	require.Len(t, items, 1)
	require.Equal(t, float64(2), items[0].(map[string]any)["product_id"])

	orders, err := env.orders.List(context.Background())
	require.NoError(t, err)
	require.Len(t, orders, 1)
	require.Len(t, orders[0].Items, 1)
	require.Equal(t, int64(1), orders[0].Items[0].ProductID)
}
