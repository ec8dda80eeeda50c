package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pratik-mahalle/smmpanel/internal/api/middleware"
	"github.com/pratik-mahalle/smmpanel/internal/auth"
	"github.com/pratik-mahalle/smmpanel/internal/domain/ordersync"
	"github.com/pratik-mahalle/smmpanel/internal/domain/synclog"
	"github.com/pratik-mahalle/smmpanel/internal/pkg/errors"
	"github.com/pratik-mahalle/smmpanel/internal/pkg/logger"
	"github.com/pratik-mahalle/smmpanel/internal/pkg/validator"
	"github.com/pratik-mahalle/smmpanel/internal/services"
	"github.com/pratik-mahalle/smmpanel/internal/testutil"
	"github.com/pratik-mahalle/smmpanel/internal/worker"
)

type fakeSyncService struct {
	lastOpts   ordersync.Options
	lastUser   int64
	lastOrder  int64
	adminCalls int
	userCalls  int
	err        error
}

func (f *fakeSyncService) result() *ordersync.RunResult {
	now := time.Now()
	return &ordersync.RunResult{
		Action:       synclog.ActionManualSync,
		Synced:       1,
		Failed:       1,
		Skipped:      1,
		TotalChecked: 3,
		Errors:       []string{"order 7: provider 1: empty response body"},
		StartedAt:    now,
		FinishedAt:   now.Add(40 * time.Millisecond),
	}
}

func (f *fakeSyncService) Run(ctx context.Context, opts ordersync.Options) (*ordersync.RunResult, error) {
	f.lastOpts = opts
	if f.err != nil {
		return nil, f.err
	}
	return f.result(), nil
}

func (f *fakeSyncService) SyncOrder(ctx context.Context, orderID int64) (*ordersync.RunResult, error) {
	f.adminCalls++
	f.lastOrder = orderID
	if f.err != nil {
		return nil, f.err
	}
	return f.result(), nil
}

func (f *fakeSyncService) SyncUserOrder(ctx context.Context, userID, orderID int64) (*ordersync.RunResult, error) {
	f.userCalls++
	f.lastUser = userID
	f.lastOrder = orderID
	if f.err != nil {
		return nil, f.err
	}
	return f.result(), nil
}

type fakeScheduler struct {
	err error
}

func (f *fakeScheduler) TriggerNow(ctx context.Context) (*ordersync.RunResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &ordersync.RunResult{Action: synclog.ActionCronSync, Synced: 4}, nil
}

func (f *fakeScheduler) Status() worker.Status {
	return worker.Status{Started: true, Schedule: "@every 5m", LastSynced: 4}
}

func withIdentity(r *http.Request, userID int64, role string) *http.Request {
	ctx := context.WithValue(r.Context(), middleware.UserIDKey, userID)
	ctx = context.WithValue(ctx, middleware.UserRoleKey, role)
	return r.WithContext(ctx)
}

func decodeData(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body struct {
		Success bool                   `json:"success"`
		Data    map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	require.True(t, body.Success)
	return body.Data
}

func TestSyncHandler_Sync(t *testing.T) {
	svc := &fakeSyncService{}
	h := NewSyncHandler(svc, &fakeScheduler{}, logger.Nop(), validator.New())

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"explicit ids", `{"orderIds":["42",7]}`, http.StatusOK},
		{"sync all for provider", `{"syncAll":true,"providerId":"3"}`, http.StatusOK},
		{"empty selection", `{}`, http.StatusBadRequest},
		{"bad id", `{"orderIds":[-1]}`, http.StatusBadRequest},
		{"malformed", `{"orderIds":`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/orders/sync", bytes.NewBufferString(tt.body))
			rr := httptest.NewRecorder()
			h.Sync(rr, req)
			assert.Equal(t, tt.wantStatus, rr.Code, rr.Body.String())
		})
	}

	assert.True(t, svc.lastOpts.SyncAll)
	assert.True(t, svc.lastOpts.Broadcast)
	require.NotNil(t, svc.lastOpts.ProviderID)
	assert.Equal(t, int64(3), *svc.lastOpts.ProviderID)
}

func TestSyncHandler_SyncResponseShape(t *testing.T) {
	h := NewSyncHandler(&fakeSyncService{}, &fakeScheduler{}, logger.Nop(), validator.New())

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"orderIds":[42]}`))
	rr := httptest.NewRecorder()
	h.Sync(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	data := decodeData(t, rr)
	assert.Equal(t, float64(1), data["syncedCount"])
	assert.Equal(t, float64(1), data["failedCount"])
	assert.Equal(t, float64(2), data["totalProcessed"])
	assert.Equal(t, float64(3), data["totalChecked"])
	assert.Len(t, data["errors"], 1)
}

func TestSyncHandler_SyncOrder(t *testing.T) {
	svc := &fakeSyncService{}
	h := NewSyncHandler(svc, &fakeScheduler{}, logger.Nop(), validator.New())

	serve := func(r *http.Request) *httptest.ResponseRecorder {
		router := chi.NewRouter()
		router.Post("/orders/{id}/sync", h.SyncOrder)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, r)
		return rr
	}

	rr := serve(withIdentity(httptest.NewRequest(http.MethodPost, "/orders/42/sync", nil), 5, auth.RoleUser))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 1, svc.userCalls)
	assert.Equal(t, int64(5), svc.lastUser)
	assert.Equal(t, int64(42), svc.lastOrder)

	rr = serve(withIdentity(httptest.NewRequest(http.MethodPost, "/orders/43/sync", nil), 1, auth.RoleAdmin))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 1, svc.adminCalls)

	rr = serve(withIdentity(httptest.NewRequest(http.MethodPost, "/orders/abc/sync", nil), 1, auth.RoleAdmin))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	svc.err = errors.NotFound("Order")
	rr = serve(withIdentity(httptest.NewRequest(http.MethodPost, "/orders/44/sync", nil), 5, auth.RoleUser))
	assert.Equal(t, http.StatusNotFound, rr.Code)

	svc.err = services.ErrSyncInProgress
	rr = serve(withIdentity(httptest.NewRequest(http.MethodPost, "/orders/44/sync", nil), 5, auth.RoleUser))
	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestSyncHandler_TriggerAndStatus(t *testing.T) {
	sched := &fakeScheduler{}
	h := NewSyncHandler(&fakeSyncService{}, sched, logger.Nop(), validator.New())

	rr := httptest.NewRecorder()
	h.Trigger(rr, httptest.NewRequest(http.MethodPost, "/", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, float64(4), decodeData(t, rr)["syncedCount"])

	sched.err = worker.ErrAlreadyRunning
	rr = httptest.NewRecorder()
	h.Trigger(rr, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = httptest.NewRecorder()
	h.Status(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	data := decodeData(t, rr)
	assert.Equal(t, "@every 5m", data["schedule"])
	assert.Equal(t, true, data["started"])
}

func TestSyncLogHandler_List(t *testing.T) {
	repo := testutil.NewMockSyncLogRepository()
	ctx := context.Background()
	for i := int64(1); i <= 3; i++ {
		require.NoError(t, repo.Create(ctx, &synclog.Entry{
			OrderID: i, Action: synclog.ActionManualSync, Status: synclog.OutcomeSuccess, CreatedAt: time.Now(),
		}))
	}
	require.NoError(t, repo.Create(ctx, &synclog.Entry{
		OrderID: 9, Action: synclog.ActionCronSync, Status: synclog.OutcomeFailed, Message: "timeout", CreatedAt: time.Now(),
	}))

	h := NewSyncLogHandler(services.NewSyncLogService(repo, logger.Nop()), logger.Nop())

	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantTotal  float64
	}{
		{"all", "", http.StatusOK, 4},
		{"failed only", "?status=failed", http.StatusOK, 1},
		{"by order", "?order_id=2", http.StatusOK, 1},
		{"unknown action", "?action=webhook", http.StatusBadRequest, 0},
		{"bad order id", "?order_id=x", http.StatusBadRequest, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			h.List(rr, httptest.NewRequest(http.MethodGet, "/api/v1/admin/sync/logs"+tt.query, nil))
			require.Equal(t, tt.wantStatus, rr.Code, rr.Body.String())
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, tt.wantTotal, decodeData(t, rr)["total_items"])
			}
		})
	}
}
