package httpx_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/febriand/go-shop-api/internal/accounts"
	"github.com/febriand/go-shop-api/internal/analytics"
	"github.com/febriand/go-shop-api/internal/auth"
	"github.com/febriand/go-shop-api/internal/httpx"
	"github.com/febriand/go-shop-api/internal/orders"
	"github.com/febriand/go-shop-api/internal/store"
)

type env struct {
	srv    *httptest.Server
	store  *store.Memory
	tokens *auth.TokenService
}

func newTestServer(t *testing.T) *env {
	t.Helper()
	m := store.NewMemory()
	tokens := auth.NewTokenService("test-secret", time.Hour)
	handler := httpx.NewRouter(httpx.Deps{
		Store:       m,
		Orders:      orders.NewService(m),
		Analytics:   analytics.NewService(m, nil),
		Tokens:      tokens,
		ServiceName: "shop-api-test",
	})
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return &env{srv: srv, store: m, tokens: tokens}
}

func (e *env) seedUser(t *testing.T, username, role string) string {
	t.Helper()
	hash, err := auth.HashPassword("password123")
	require.NoError(t, err)
	id := username + "-id"
	require.NoError(t, e.store.CreateUser(context.Background(), &accounts.User{
		ID:           id,
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}))
	return id
}

func (e *env) token(t *testing.T, userID, username, role string) string {
	t.Helper()
	token, _, err := e.tokens.Issue(userID, username, role)
	require.NoError(t, err)
	return token
}

func (e *env) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, e.srv.URL+path, &buf)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestRegisterAndLogin(t *testing.T) {
	e := newTestServer(t)

	resp := e.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username": "alice", "email": "alice@example.com",
		"password": "password123", "password2": "password123",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = e.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": "alice", "password": "password123",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	login := decode[map[string]any](t, resp)
	assert.NotEmpty(t, login["access_token"])

	resp = e.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": "alice", "password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRegisterPasswordMismatch(t *testing.T) {
	e := newTestServer(t)
	resp := e.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username": "alice", "email": "alice@example.com",
		"password": "password123", "password2": "different123",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestOrderFlow(t *testing.T) {
	e := newTestServer(t)
	adminID := e.seedUser(t, "admin", accounts.RoleAdmin)
	adminToken := e.token(t, adminID, "admin", accounts.RoleAdmin)
	userID := e.seedUser(t, "alice", accounts.RoleCustomer)
	userToken := e.token(t, userID, "alice", accounts.RoleCustomer)

	resp := e.do(t, http.MethodPost, "/api/v1/categories", adminToken, map[string]string{"name": "Books"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	category := decode[map[string]any](t, resp)

	resp = e.do(t, http.MethodPost, "/api/v1/products", adminToken, map[string]any{
		"name": "Product X", "category": category["id"],
		"price": "15.00", "stock_quantity": 5,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	product := decode[map[string]any](t, resp)
	productID := product["id"].(string)

	resp = e.do(t, http.MethodPost, "/api/v1/cart/items", userToken, map[string]any{
		"product_id": productID, "quantity": 2,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = e.do(t, http.MethodPost, "/api/v1/orders", userToken, map[string]string{
		"shipping_address": "1 Main St", "billing_address": "1 Main St",
		"payment_method": "credit_card",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	order := decode[map[string]any](t, resp)
	assert.Equal(t, "30.00", order["total_amount"])
	assert.Equal(t, "pending", order["status"])

	// cart is empty and stock is down
	resp = e.do(t, http.MethodGet, "/api/v1/cart", userToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	cart := decode[struct {
		Items []any `json:"items"`
	}](t, resp)
	assert.Empty(t, cart.Items)

	resp = e.do(t, http.MethodGet, "/api/v1/products/"+productID, "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	product = decode[map[string]any](t, resp)
	assert.Equal(t, float64(3), product["stock_quantity"])

	// oversized explicit order is rejected with the stock details
	resp = e.do(t, http.MethodPost, "/api/v1/orders", userToken, map[string]any{
		"items":            []map[string]any{{"product_id": productID, "quantity": 10}},
		"shipping_address": "1 Main St", "billing_address": "1 Main St",
		"payment_method": "credit_card",
	})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	conflict := decode[map[string]any](t, resp)
	assert.Equal(t, productID, conflict["product_id"])
	assert.Equal(t, float64(3), conflict["available"])

	// admin advances the status; skipping a step is rejected
	orderID := order["id"].(string)
	resp = e.do(t, http.MethodPatch, "/api/v1/orders/"+orderID+"/status", adminToken,
		map[string]string{"status": "confirmed"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = e.do(t, http.MethodPatch, "/api/v1/orders/"+orderID+"/status", adminToken,
		map[string]string{"status": "delivered"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestAuthBoundaries(t *testing.T) {
	e := newTestServer(t)
	userID := e.seedUser(t, "alice", accounts.RoleCustomer)
	userToken := e.token(t, userID, "alice", accounts.RoleCustomer)

	resp := e.do(t, http.MethodGet, "/api/v1/orders", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = e.do(t, http.MethodGet, "/api/v1/analytics/dashboard", userToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = e.do(t, http.MethodPost, "/api/v1/categories", userToken, map[string]string{"name": "Books"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestOrderOwnership(t *testing.T) {
	e := newTestServer(t)
	adminID := e.seedUser(t, "admin", accounts.RoleAdmin)
	adminToken := e.token(t, adminID, "admin", accounts.RoleAdmin)
	aliceID := e.seedUser(t, "alice", accounts.RoleCustomer)
	aliceToken := e.token(t, aliceID, "alice", accounts.RoleCustomer)
	bobID := e.seedUser(t, "bob", accounts.RoleCustomer)
	bobToken := e.token(t, bobID, "bob", accounts.RoleCustomer)

	resp := e.do(t, http.MethodPost, "/api/v1/categories", adminToken, map[string]string{"name": "Books"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	category := decode[map[string]any](t, resp)
	resp = e.do(t, http.MethodPost, "/api/v1/products", adminToken, map[string]any{
		"name": "Product X", "category": category["id"], "price": "5.00", "stock_quantity": 10,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	product := decode[map[string]any](t, resp)

	resp = e.do(t, http.MethodPost, "/api/v1/orders", aliceToken, map[string]any{
		"items":            []map[string]any{{"product_id": product["id"], "quantity": 1}},
		"shipping_address": "1 Main St", "billing_address": "1 Main St",
		"payment_method": "paypal",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	order := decode[map[string]any](t, resp)
	orderID := order["id"].(string)

	resp = e.do(t, http.MethodGet, "/api/v1/orders/"+orderID, bobToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = e.do(t, http.MethodGet, "/api/v1/orders/"+orderID, adminToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
