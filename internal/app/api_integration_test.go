//go:build integration

package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap/zaptest"

	"github.com/cafefusion/backend/internal/storage/postgres"
)

// Response types are local to keep the test black-box.

type tokenResponse struct {
	Token string `json:"token"`
}

type menuItemResponse struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

type orderResponse struct {
	OrderID    int64    `json:"orderId"`
	UserID     int64    `json:"userId"`
	Status     string   `json:"status"`
	TotalPrice float64  `json:"totalPrice"`
	ItemNames  []string `json:"itemNames"`
}

type pageResponse struct {
	Content       []orderResponse `json:"content"`
	TotalElements int64           `json:"totalElements"`
}

type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type noopTelemetry struct{}

func (noopTelemetry) TracerProvider() trace.TracerProvider { return tracenoop.NewTracerProvider() }
func (noopTelemetry) MeterProvider() metric.MeterProvider  { return metricnoop.NewMeterProvider() }

type client struct {
	t    *testing.T
	base string
}

func (c *client) do(method, path, token string, body any, out any) int {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequestWithContext(context.Background(), method, c.base+path, &buf)
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(c.t, err)
	defer func() { _ = resp.Body.Close() }()
	if out != nil && resp.StatusCode < http.StatusMultipleChoices {
		require.NoError(c.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func startAPI(t *testing.T) *client {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("cafe"),
		tcpostgres.WithUsername("cafe"),
		tcpostgres.WithPassword("cafe"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, container.Terminate(context.Background()))
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	pool, err := postgres.NewPool(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, postgres.RunMigrations(ctx, pool))

	cfg := &Config{
		DatabaseURL:      dsn,
		AllowAdminSignup: true,
		JWT:              JWTConfig{Secret: "integration", TTL: time.Hour, Issuer: "cafe-test"},
		RateLimit:        RateLimitConfig{Rate: 100, Per: time.Minute},
	}
	api, err := NewAPI(ctx, zaptest.NewLogger(t), noopTelemetry{}, cfg, pool)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, api.Close()) })
	api.Health.SetReady(true)

	srv := httptest.NewServer(api.Handler)
	t.Cleanup(srv.Close)
	return &client{t: t, base: srv.URL}
}

func TestAPI_OrderLifecycle(t *testing.T) {
	c := startAPI(t)

	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/readyz", "", nil, nil))
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/livez", "", nil, nil))

	var admin, customer, other tokenResponse
	require.Equal(t, http.StatusCreated, c.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"firstName": "Ada", "lastName": "Admin", "email": "admin@cafe.test", "password": "admin-pass", "role": "ADMIN",
	}, &admin))
	require.Equal(t, http.StatusCreated, c.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"firstName": "Cy", "lastName": "Customer", "email": "cy@cafe.test", "password": "customer-pass",
	}, &customer))
	require.Equal(t, http.StatusCreated, c.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"firstName": "Oz", "lastName": "Other", "email": "oz@cafe.test", "password": "other-pass",
	}, &other))
	assert.Equal(t, http.StatusConflict, c.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"firstName": "Cy", "lastName": "Again", "email": "CY@cafe.test", "password": "customer-pass",
	}, nil))

	var login tokenResponse
	require.Equal(t, http.StatusOK, c.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "cy@cafe.test", "password": "customer-pass",
	}, &login))
	assert.NotEmpty(t, login.Token)
	assert.Equal(t, http.StatusUnauthorized, c.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "cy@cafe.test", "password": "wrong-pass",
	}, nil))

	var grilled, bowl menuItemResponse
	require.Equal(t, http.StatusCreated, c.do(http.MethodPost, "/api/v1/menu", admin.Token, map[string]any{
		"name": "Kimchi Grilled Cheese", "price": "12.50",
	}, &grilled))
	require.Equal(t, http.StatusCreated, c.do(http.MethodPost, "/api/v1/menu", admin.Token, map[string]any{
		"name": "Tandoori Chicken Bowl", "price": 18.00,
	}, &bowl))
	assert.Equal(t, http.StatusForbidden, c.do(http.MethodPost, "/api/v1/menu", customer.Token, map[string]any{
		"name": "Sneaky", "price": 1,
	}, nil))

	var placed orderResponse
	require.Equal(t, http.StatusCreated, c.do(http.MethodPost, "/api/v1/orders", customer.Token, map[string]any{
		"menuItemIds": []int64{grilled.ID, bowl.ID},
	}, &placed))
	assert.Equal(t, "PENDING_APPROVAL", placed.Status)
	assert.InDelta(t, 30.50, placed.TotalPrice, 0.001)
	assert.Equal(t, []string{"Kimchi Grilled Cheese", "Tandoori Chicken Bowl"}, placed.ItemNames)

	assert.Equal(t, http.StatusUnprocessableEntity, c.do(http.MethodPost, "/api/v1/orders", customer.Token, map[string]any{
		"menuItemIds": []int64{grilled.ID, 999999},
	}, nil))

	orderPath := "/api/v1/orders/" + strconv.FormatInt(placed.OrderID, 10)
	assert.Equal(t, http.StatusNotFound, c.do(http.MethodGet, orderPath, other.Token, nil, nil))

	statusPath := "/api/v1/admin/orders/" + strconv.FormatInt(placed.OrderID, 10) + "/status"
	for _, st := range []string{"CONFIRMED", "IN_PROGRESS"} {
		var updated orderResponse
		require.Equal(t, http.StatusOK, c.do(http.MethodPut, statusPath, admin.Token, map[string]string{"newStatus": st}, &updated))
		assert.Equal(t, st, updated.Status)
	}
	assert.Equal(t, http.StatusBadRequest, c.do(http.MethodPut, statusPath, admin.Token, map[string]string{"newStatus": "COMPLETED"}, nil))

	var kitchen pageResponse
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/api/v1/admin/orders/kitchen", admin.Token, nil, &kitchen))
	require.Equal(t, int64(1), kitchen.TotalElements)
	assert.Equal(t, placed.OrderID, kitchen.Content[0].OrderID)

	var stats map[string]int64
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/api/v1/admin/orders/stats", admin.Token, nil, &stats))
	assert.Len(t, stats, 6)
	assert.Equal(t, int64(1), stats["IN_PROGRESS"])

	var mine []orderResponse
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/api/v1/orders/me", customer.Token, nil, &mine))
	require.Len(t, mine, 1)
	assert.Equal(t, "IN_PROGRESS", mine[0].Status)

	// Override ignores the workflow.
	overridePath := "/api/v1/orders/" + strconv.FormatInt(placed.OrderID, 10) + "/status"
	require.Equal(t, http.StatusOK, c.do(http.MethodPut, overridePath, admin.Token, map[string]string{"newStatus": "PENDING_APPROVAL"}, nil))

	assert.Equal(t, http.StatusNoContent, c.do(http.MethodDelete, orderPath, admin.Token, nil, nil))
	assert.Equal(t, http.StatusNotFound, c.do(http.MethodGet, orderPath, admin.Token, nil, nil))
}

func TestAPI_Errors(t *testing.T) {
	c := startAPI(t)

	assert.Equal(t, http.StatusUnauthorized, c.do(http.MethodGet, "/api/v1/orders/me", "", nil, nil))
	assert.Equal(t, http.StatusUnauthorized, c.do(http.MethodGet, "/api/v1/orders/me", "not-a-token", nil, nil))
	assert.Equal(t, http.StatusNotFound, c.do(http.MethodGet, "/api/v1/menu/12345", "", nil, nil))

	var items []menuItemResponse
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/api/v1/menu", "", nil, &items))
	assert.Empty(t, items)

	var e errorResponse
	req, err := http.NewRequest(http.MethodGet, c.base+"/api/v1/unknown", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&e))
	assert.Equal(t, http.StatusNotFound, e.Code)
}
