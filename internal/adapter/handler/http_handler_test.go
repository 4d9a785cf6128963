package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baedalgo/delivery/internal/core/domain"
	"github.com/baedalgo/delivery/internal/core/service"
)

// In-memory OrderRepository
type memOrderRepo struct {
	mu     sync.Mutex
	orders map[string]domain.Order
}

func newMemOrderRepo(orders ...domain.Order) *memOrderRepo {
	m := &memOrderRepo{orders: make(map[string]domain.Order)}
	for _, o := range orders {
		m.orders[o.ID] = o
	}
	return m
}

func (m *memOrderRepo) CreateOrder(ctx context.Context, order domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders[order.ID] = order
	return nil
}

func (m *memOrderRepo) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, nil
	}
	cp := o
	return &cp, nil
}

func (m *memOrderRepo) UpdateOrderStatus(ctx context.Context, id string, from, to domain.OrderStatus, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok || o.Status != from {
		return false, nil
	}
	o.Status = to
	o.UpdatedAt = at
	m.orders[id] = o
	return true, nil
}

// In-memory UserDirectory
type memUserDirectory struct {
	roles map[string]domain.Role
}

func (m *memUserDirectory) GetRole(ctx context.Context, userID string) (domain.Role, error) {
	role, ok := m.roles[userID]
	if !ok {
		return "", domain.ErrUserNotFound
	}
	return role, nil
}

// In-memory SearchRepository
type memSearchRepo struct {
	mu      sync.Mutex
	counts  map[string]int64
	results []domain.SearchPopularity
}

func newMemSearchRepo() *memSearchRepo {
	return &memSearchRepo{counts: make(map[string]int64)}
}

func (m *memSearchRepo) UpsertSearch(ctx context.Context, userID, keyword, region string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts[userID+"|"+keyword+"|"+region]++
	return nil
}

func (m *memSearchRepo) TopSearches(ctx context.Context, region string, limit int) ([]domain.SearchPopularity, error) {
	if len(m.results) > limit {
		return m.results[:limit], nil
	}
	return m.results, nil
}

// In-memory CacheRepository (idempotency only)
type memCache struct {
	mu      sync.Mutex
	idemSet map[string]bool
}

func newMemCache() *memCache {
	return &memCache{idemSet: make(map[string]bool)}
}

func (m *memCache) GetPopularSearches(ctx context.Context, region string, limit int) ([]domain.SearchPopularity, bool, error) {
	return nil, false, nil
}

func (m *memCache) SetPopularSearches(ctx context.Context, region string, limit int, entries []domain.SearchPopularity) error {
	return nil
}

func (m *memCache) SetIdempotency(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.idemSet[key] {
		return false, nil
	}
	m.idemSet[key] = true
	return true, nil
}

type testServer struct {
	mux        *http.ServeMux
	orders     *memOrderRepo
	searches   *memSearchRepo
	dispatcher *service.Dispatcher
}

func newTestServer(t *testing.T, orders ...domain.Order) *testServer {
	t.Helper()

	orderRepo := newMemOrderRepo(orders...)
	searchRepo := newMemSearchRepo()
	directory := &memUserDirectory{roles: map[string]domain.Role{
		"customer-1": domain.RoleCustomer,
		"store-1":    domain.RoleStore,
	}}

	dispatcher := service.NewDispatcher(nil, 10, 1, time.Second, zerolog.Nop())
	dispatcher.Start()
	t.Cleanup(dispatcher.Close)

	orderService := service.NewOrderService(orderRepo, directory, dispatcher, zerolog.Nop())
	searchService := service.NewSearchService(searchRepo, nil, zerolog.Nop())

	h := NewHTTPHandler(orderService, searchService, newMemCache(), zerolog.Nop())
	mux := http.NewServeMux()
	h.Register(mux)

	return &testServer{mux: mux, orders: orderRepo, searches: searchRepo, dispatcher: dispatcher}
}

func (s *testServer) do(method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.mux.ServeHTTP(rec, req)
	return rec
}

func waitingOrder(id string) domain.Order {
	now := time.Now().Add(-time.Minute)
	return domain.Order{
		ID: id, UserID: "customer-1", StoreID: "store-1",
		Status: domain.StatusWaiting, CreatedAt: now, UpdatedAt: now,
	}
}

func storeHeaders() map[string]string {
	return map[string]string{"X-User-ID": "store-1"}
}

func TestUpdateStatus_Success(t *testing.T) {
	srv := newTestServer(t, waitingOrder("order-1"))

	rec := srv.do(http.MethodPatch, "/api/orders/order-1/status",
		UpdateStatusRequest{Status: "ACCEPTED"}, storeHeaders())

	require.Equal(t, http.StatusOK, rec.Code)

	var resp UpdateStatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "order-1", resp.OrderID)
	assert.Equal(t, "ACCEPTED", resp.Status)
}

func TestUpdateStatus_MissingActorHeader(t *testing.T) {
	srv := newTestServer(t, waitingOrder("order-1"))

	rec := srv.do(http.MethodPatch, "/api/orders/order-1/status",
		UpdateStatusRequest{Status: "ACCEPTED"}, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateStatus_UnknownStatus(t *testing.T) {
	srv := newTestServer(t, waitingOrder("order-1"))

	rec := srv.do(http.MethodPatch, "/api/orders/order-1/status",
		UpdateStatusRequest{Status: "SHIPPED"}, storeHeaders())

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateStatus_NotFound(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(http.MethodPatch, "/api/orders/missing/status",
		UpdateStatusRequest{Status: "ACCEPTED"}, storeHeaders())

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateStatus_Forbidden(t *testing.T) {
	srv := newTestServer(t, waitingOrder("order-1"))

	rec := srv.do(http.MethodPatch, "/api/orders/order-1/status",
		UpdateStatusRequest{Status: "ACCEPTED"},
		map[string]string{"X-User-ID": "customer-1"})

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestUpdateStatus_InvalidTransitionPayload(t *testing.T) {
	order := waitingOrder("order-1")
	order.Status = domain.StatusCompleted
	srv := newTestServer(t, order)

	rec := srv.do(http.MethodPatch, "/api/orders/order-1/status",
		UpdateStatusRequest{Status: "CANCELED"}, storeHeaders())

	require.Equal(t, http.StatusConflict, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "COMPLETED", resp.CurrentStatus)
	assert.Equal(t, "CANCELED", resp.RequestedStatus)
}

func TestUpdateStatus_IdempotentReplay(t *testing.T) {
	srv := newTestServer(t, waitingOrder("order-1"))
	headers := storeHeaders()
	headers["Idempotency-Key"] = "req-42"

	rec := srv.do(http.MethodPatch, "/api/orders/order-1/status",
		UpdateStatusRequest{Status: "ACCEPTED"}, headers)
	require.Equal(t, http.StatusOK, rec.Code)

	// Replaying the same request acknowledges with the current state
	// instead of re-running the transition.
	rec = srv.do(http.MethodPatch, "/api/orders/order-1/status",
		UpdateStatusRequest{Status: "ACCEPTED"}, headers)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp UpdateStatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ACCEPTED", resp.Status)
}

func TestCreateAndGetOrder(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(http.MethodPost, "/api/orders",
		CreateOrderRequest{UserID: "customer-1", StoreID: "store-1"}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created OrderResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "WAITING", created.Status)

	rec = srv.do(http.MethodGet, "/api/orders/"+created.OrderID, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = srv.do(http.MethodGet, "/api/orders/missing", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRecordSearch(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(http.MethodPost, "/api/searches",
		RecordSearchRequest{UserID: "customer-1", Keyword: "Fried Chicken", Region: "Seoul"}, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	assert.Equal(t, int64(1), srv.searches.counts["customer-1|fried chicken|Seoul"])
}

func TestRecordSearch_EmptyKeyword(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(http.MethodPost, "/api/searches",
		RecordSearchRequest{UserID: "customer-1", Keyword: "   ", Region: "Seoul"}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPopularSearches(t *testing.T) {
	srv := newTestServer(t)
	srv.searches.results = []domain.SearchPopularity{
		{UserID: "u1", Keyword: "chicken", Region: "Seoul", Count: 10},
		{UserID: "u2", Keyword: "pizza", Region: "Seoul", Count: 7},
	}

	rec := srv.do(http.MethodGet, "/api/searches/popular?region=Seoul&limit=2", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp PopularSearchesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Seoul", resp.Region)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, "chicken", resp.Results[0].Keyword)
}

func TestPopularSearches_BadLimit(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(http.MethodGet, "/api/searches/popular?region=Seoul&limit=abc", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = srv.do(http.MethodGet, "/api/searches/popular?region=Seoul&limit=0", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPopularSearches_MissingRegion(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(http.MethodGet, "/api/searches/popular?limit=3", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthCheck(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
