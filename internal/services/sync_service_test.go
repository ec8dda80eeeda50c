package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pratik-mahalle/smmpanel/internal/config"
	"github.com/pratik-mahalle/smmpanel/internal/domain/order"
	"github.com/pratik-mahalle/smmpanel/internal/domain/ordersync"
	"github.com/pratik-mahalle/smmpanel/internal/domain/provider"
	"github.com/pratik-mahalle/smmpanel/internal/domain/synclog"
	apperrors "github.com/pratik-mahalle/smmpanel/internal/pkg/errors"
	"github.com/pratik-mahalle/smmpanel/internal/pkg/logger"
	"github.com/pratik-mahalle/smmpanel/internal/pkg/runlock"
	"github.com/pratik-mahalle/smmpanel/internal/providers"
	"github.com/pratik-mahalle/smmpanel/internal/testutil"
)

// fakeProviderAPI answers status requests keyed by the provider order id
type fakeProviderAPI struct {
	replies map[string]string
	slow    map[string]bool
	hits    atomic.Int64
}

func (f *fakeProviderAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.hits.Add(1)
	if err := r.ParseForm(); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	id := r.PostForm.Get("order")
	if f.slow[id] {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
			return
		}
	}
	body, ok := f.replies[id]
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(body))
}

type syncHarness struct {
	api       *fakeProviderAPI
	server    *httptest.Server
	orders    *testutil.MockOrderRepository
	providers *testutil.MockProviderRepository
	logs      *testutil.MockSyncLogRepository
	publisher *testutil.RecordingPublisher
	locker    *runlock.MemoryLocker
	svc       *SyncService
}

var syncNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newSyncHarness(t *testing.T, cfg config.SyncConfig, orders ...*order.Order) *syncHarness {
	t.Helper()

	api := &fakeProviderAPI{replies: map[string]string{}, slow: map[string]bool{}}
	server := httptest.NewServer(api)
	t.Cleanup(server.Close)

	active := &provider.Provider{
		ID:         1,
		Name:       "alpha",
		APIURL:     server.URL + "/api/v2",
		APIKey:     "k",
		HTTPMethod: "POST",
		Status:     provider.StatusActive,
		Spec:       provider.DefaultAPISpec(),
	}
	inactive := &provider.Provider{
		ID:         2,
		Name:       "beta",
		APIURL:     server.URL + "/api/v2",
		HTTPMethod: "POST",
		Status:     provider.StatusInactive,
		Spec:       provider.DefaultAPISpec(),
	}
	broken := &provider.Provider{
		ID:         3,
		Name:       "gamma",
		APIURL:     server.URL + "/api/v2",
		HTTPMethod: "POST",
		Status:     provider.StatusActive,
		Spec:       provider.APISpec{},
	}

	h := &syncHarness{
		api:       api,
		server:    server,
		orders:    testutil.NewMockOrderRepository(orders...),
		providers: testutil.NewMockProviderRepository(active, inactive, broken),
		logs:      testutil.NewMockSyncLogRepository(),
		publisher: &testutil.RecordingPublisher{},
		locker:    runlock.NewMemoryLocker(),
	}
	h.svc = NewSyncService(h.orders, h.providers, h.logs, cfg, logger.Nop(),
		WithPublisher(h.publisher),
		WithLocker(h.locker),
		WithHTTPTransport(server.Client().Transport),
		WithClock(func() time.Time { return syncNow }),
	)
	return h
}

func defaultSyncConfig() config.SyncConfig {
	return config.SyncConfig{
		Workers:         4,
		ProviderTimeout: 2 * time.Second,
		ErrorLimit:      10,
		LockTTL:         time.Minute,
		NotifyTerminal:  true,
	}
}

func newOrder(id, providerID int64, status order.Status, providerOrderID string) *order.Order {
	o := &order.Order{
		ID:        id,
		UserID:    100 + id,
		ServiceID: 10,
		Status:    status,
		Quantity:  1000,
		Remains:   int64Ptr(1000),
		CreatedAt: syncNow.Add(-time.Hour),
		UpdatedAt: syncNow.Add(-time.Hour),
	}
	if providerID != 0 {
		o.ProviderID = int64Ptr(providerID)
	}
	if providerOrderID != "" {
		o.ProviderOrderID = strPtr(providerOrderID)
	}
	return o
}

func strPtr(s string) *string { return &s }
func int64Ptr(n int64) *int64 { return &n }

func TestSyncService_Run_CompletesOrder(t *testing.T) {
	h := newSyncHarness(t, defaultSyncConfig(), newOrder(42, 1, order.StatusInProgress, "P-42"))
	h.api.replies["P-42"] = `{"status":"Completed","remains":"0","start_count":"150"}`

	result, err := h.svc.Run(context.Background(), ordersync.Options{OrderIDs: []int64{42}})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Synced)
	assert.Equal(t, 0, result.Failed)
	assert.Equal(t, 1, result.TotalChecked)
	assert.Equal(t, 1, result.TotalProcessed())
	assert.Equal(t, synclog.ActionManualSync, result.Action)
	assert.Empty(t, result.Errors)

	stored := h.orders.Get(42)
	assert.Equal(t, order.StatusCompleted, stored.Status)
	assert.Equal(t, "Completed", *stored.ProviderStatus)
	assert.Equal(t, int64(0), *stored.Remains)
	assert.Equal(t, int64(150), *stored.StartCount)
	require.NotNil(t, stored.LastSyncAt)
	assert.True(t, syncNow.Equal(*stored.LastSyncAt))

	logs := h.logs.ForOrder(42)
	require.Len(t, logs, 1)
	assert.Equal(t, synclog.OutcomeSuccess, logs[0].Status)
	assert.Equal(t, synclog.ActionManualSync, logs[0].Action)
	assert.Equal(t, int64(1), *logs[0].ProviderID)

	require.Len(t, result.Results, 1)
	assert.Equal(t, ordersync.OutcomeSynced, result.Results[0].Outcome)
	assert.Equal(t, order.StatusInProgress, result.Results[0].PreviousStatus)
	assert.Equal(t, order.StatusCompleted, result.Results[0].Status)
}

func TestSyncService_Run_EmptyBodyFails(t *testing.T) {
	h := newSyncHarness(t, defaultSyncConfig(), newOrder(7, 1, order.StatusPending, "P-7"))
	h.api.replies["P-7"] = ""

	result, err := h.svc.Run(context.Background(), ordersync.Options{OrderIDs: []int64{7}})
	require.NoError(t, err)

	assert.Equal(t, 0, result.Synced)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Errors, 1)
	assert.True(t, strings.HasPrefix(result.Errors[0], "order 7:"), result.Errors[0])

	logs := h.logs.ForOrder(7)
	require.Len(t, logs, 1)
	assert.Equal(t, synclog.OutcomeFailed, logs[0].Status)
	assert.NotEmpty(t, logs[0].Message)

	assert.Equal(t, order.StatusPending, h.orders.Get(7).Status)
	assert.Zero(t, h.orders.UpdateCount(7))
}

func TestSyncService_Run_InactiveProviderSkipped(t *testing.T) {
	h := newSyncHarness(t, defaultSyncConfig(), newOrder(9, 2, order.StatusPending, "P-9"))

	result, err := h.svc.Run(context.Background(), ordersync.Options{OrderIDs: []int64{9}})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, 0, result.TotalProcessed())
	assert.Equal(t, ordersync.ReasonProviderInactive, result.Results[0].Reason)
	assert.Zero(t, h.logs.Count())
	assert.Zero(t, h.api.hits.Load())
}

func TestSyncService_Run_SkipReasons(t *testing.T) {
	h := newSyncHarness(t, defaultSyncConfig(),
		newOrder(1, 1, order.StatusPending, ""),
		newOrder(2, 0, order.StatusPending, "P-2"),
		newOrder(3, 77, order.StatusPending, "P-3"),
	)

	result, err := h.svc.Run(context.Background(), ordersync.Options{OrderIDs: []int64{1, 2, 3, 4}})
	require.NoError(t, err)

	assert.Equal(t, 4, result.Skipped)
	assert.Equal(t, 4, result.TotalChecked)
	reasons := map[int64]string{}
	for _, r := range result.Results {
		reasons[r.OrderID] = r.Reason
	}
	assert.Equal(t, ordersync.ReasonNoProviderOrderID, reasons[1])
	assert.Equal(t, ordersync.ReasonNoProvider, reasons[2])
	assert.Equal(t, ordersync.ReasonProviderNotFound, reasons[3])
	assert.Equal(t, ordersync.ReasonOrderNotFound, reasons[4])
	assert.Zero(t, h.logs.Count())
}

func TestSyncService_Run_SyncAllExcludesIneligible(t *testing.T) {
	h := newSyncHarness(t, defaultSyncConfig(),
		newOrder(1, 1, order.StatusPending, "P-1"),
		newOrder(2, 1, order.StatusPending, ""),
		newOrder(3, 1, order.StatusCompleted, "P-3"),
	)
	h.api.replies["P-1"] = `{"status":"In progress","remains":500}`

	result, err := h.svc.Run(context.Background(), ordersync.Options{SyncAll: true, Action: synclog.ActionCronSync})
	require.NoError(t, err)

	assert.Equal(t, 1, result.TotalChecked)
	assert.Equal(t, 1, result.Synced)
	assert.Equal(t, order.StatusInProgress, h.orders.Get(1).Status)
	assert.Equal(t, int64(500), *h.orders.Get(1).Remains)
	assert.Equal(t, int64(1), h.api.hits.Load())

	logs := h.logs.ForOrder(1)
	require.Len(t, logs, 1)
	assert.Equal(t, synclog.ActionCronSync, logs[0].Action)
}

func TestSyncService_Run_ProviderFilter(t *testing.T) {
	h := newSyncHarness(t, defaultSyncConfig(),
		newOrder(1, 1, order.StatusPending, "P-1"),
		newOrder(2, 2, order.StatusPending, "P-2"),
	)
	h.api.replies["P-1"] = `{"status":"Pending"}`

	result, err := h.svc.Run(context.Background(), ordersync.Options{OrderIDs: []int64{1, 2}, ProviderID: int64Ptr(1)})
	require.NoError(t, err)

	assert.Equal(t, 1, result.TotalChecked)
	require.Len(t, result.Results, 1)
	assert.Equal(t, int64(1), result.Results[0].OrderID)
}

func TestSyncService_Run_MissingRemainsKeepsStoredValue(t *testing.T) {
	o := newOrder(5, 1, order.StatusPending, "P-5")
	o.Remains = int64Ptr(640)
	h := newSyncHarness(t, defaultSyncConfig(), o)
	h.api.replies["P-5"] = `{"status":"Processing"}`

	result, err := h.svc.Run(context.Background(), ordersync.Options{OrderIDs: []int64{5}})
	require.NoError(t, err)
	require.Equal(t, 1, result.Synced)

	stored := h.orders.Get(5)
	assert.Equal(t, order.StatusProcessing, stored.Status)
	assert.Equal(t, int64(640), *stored.Remains)
	assert.Nil(t, stored.StartCount)
}

func TestSyncService_Run_Idempotent(t *testing.T) {
	h := newSyncHarness(t, defaultSyncConfig(), newOrder(42, 1, order.StatusInProgress, "P-42"))
	h.api.replies["P-42"] = `{"status":"Partial","remains":"120","start_count":"10"}`

	opts := ordersync.Options{OrderIDs: []int64{42}}
	firstRun, err := h.svc.Run(context.Background(), opts)
	require.NoError(t, err)
	first := h.orders.Get(42)

	secondRun, err := h.svc.Run(context.Background(), opts)
	require.NoError(t, err)
	second := h.orders.Get(42)

	assert.Equal(t, 1, firstRun.Synced)
	assert.Equal(t, firstRun.Synced, secondRun.Synced)
	assert.Equal(t, firstRun.Failed, secondRun.Failed)
	assert.Equal(t, first.Status, second.Status)
	assert.Equal(t, *first.Remains, *second.Remains)
	assert.Equal(t, *first.StartCount, *second.StartCount)
	assert.Equal(t, *first.ProviderStatus, *second.ProviderStatus)
	assert.Len(t, h.logs.ForOrder(42), 2)
}

func TestSyncService_Run_TimeoutIsolated(t *testing.T) {
	cfg := defaultSyncConfig()
	cfg.ProviderTimeout = 100 * time.Millisecond
	h := newSyncHarness(t, cfg,
		newOrder(1, 1, order.StatusPending, "SLOW"),
		newOrder(2, 1, order.StatusPending, "P-2"),
	)
	h.api.slow["SLOW"] = true
	h.api.replies["SLOW"] = `{"status":"Completed"}`
	h.api.replies["P-2"] = `{"status":"Completed","remains":0}`

	result, err := h.svc.Run(context.Background(), ordersync.Options{OrderIDs: []int64{1, 2}})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Synced)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, ordersync.OutcomeFailed, result.Results[0].Outcome)
	assert.Contains(t, result.Results[0].Reason, "timed out")
	assert.Equal(t, order.StatusPending, h.orders.Get(1).Status)
	assert.Equal(t, order.StatusCompleted, h.orders.Get(2).Status)

	logs := h.logs.ForOrder(1)
	require.Len(t, logs, 1)
	assert.Equal(t, synclog.OutcomeFailed, logs[0].Status)
}

func TestSyncService_Run_TerminalNeverRegresses(t *testing.T) {
	h := newSyncHarness(t, defaultSyncConfig(), newOrder(8, 1, order.StatusCompleted, "P-8"))
	h.api.replies["P-8"] = `{"status":"Pending","remains":"3"}`

	result, err := h.svc.Run(context.Background(), ordersync.Options{OrderIDs: []int64{8}})
	require.NoError(t, err)
	require.Equal(t, 1, result.Synced)

	stored := h.orders.Get(8)
	assert.Equal(t, order.StatusCompleted, stored.Status)
	assert.Equal(t, "Pending", *stored.ProviderStatus)
	assert.Equal(t, int64(3), *stored.Remains)
}

func TestSyncService_Run_DedupesIDs(t *testing.T) {
	h := newSyncHarness(t, defaultSyncConfig(), newOrder(42, 1, order.StatusPending, "P-42"))
	h.api.replies["P-42"] = `{"status":"Completed"}`

	result, err := h.svc.Run(context.Background(), ordersync.Options{OrderIDs: []int64{42, 42, 42}})
	require.NoError(t, err)

	assert.Equal(t, 1, result.TotalChecked)
	assert.Equal(t, int64(1), h.api.hits.Load())
	assert.Equal(t, 1, h.orders.UpdateCount(42))
}

func TestSyncService_Run_LockedOrderSkipped(t *testing.T) {
	h := newSyncHarness(t, defaultSyncConfig(), newOrder(42, 1, order.StatusPending, "P-42"))
	h.api.replies["P-42"] = `{"status":"Completed"}`

	release, ok, err := h.locker.TryLock(context.Background(), runlock.OrderKey(42), time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	result, err := h.svc.Run(context.Background(), ordersync.Options{OrderIDs: []int64{42}})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, ordersync.ReasonSyncInProgress, result.Results[0].Reason)
	assert.Zero(t, h.api.hits.Load())

	_, err = h.svc.SyncOrder(context.Background(), 42)
	assert.ErrorIs(t, err, ErrSyncInProgress)

	release()
	result, err = h.svc.SyncOrder(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Synced)
}

func TestSyncService_Run_BroadcastsAndNotifies(t *testing.T) {
	h := newSyncHarness(t, defaultSyncConfig(),
		newOrder(1, 1, order.StatusInProgress, "P-1"),
		newOrder(2, 1, order.StatusPending, "P-2"),
	)
	h.api.replies["P-1"] = `{"status":"Completed","remains":0}`
	h.api.replies["P-2"] = `{"status":"In progress"}`

	_, err := h.svc.Run(context.Background(), ordersync.Options{OrderIDs: []int64{1, 2}, Broadcast: true})
	require.NoError(t, err)

	require.Len(t, h.publisher.Updates, 2)
	owners := map[int64]int64{}
	for _, u := range h.publisher.Updates {
		owners[u.OrderID] = u.UserID
	}
	assert.Equal(t, int64(101), owners[1])
	assert.Equal(t, int64(102), owners[2])

	// one per order plus the final summary
	require.Len(t, h.publisher.Progress, 3)
	last, ok := h.publisher.Progress[2].(ordersync.Progress)
	require.True(t, ok)
	assert.True(t, last.Done)
	assert.Equal(t, 2, last.Synced)
	assert.Equal(t, 2, last.Processed)

	require.Len(t, h.publisher.Notifications, 1)
	n := h.publisher.Notifications[0]
	assert.Equal(t, int64(101), n.UserID)
	assert.Equal(t, int64(1), n.Notification.OrderID)
	assert.Contains(t, n.Notification.Message, "completed")
}

func TestSyncService_Run_NoBroadcastWhenDisabled(t *testing.T) {
	cfg := defaultSyncConfig()
	cfg.NotifyTerminal = false
	h := newSyncHarness(t, cfg, newOrder(1, 1, order.StatusInProgress, "P-1"))
	h.api.replies["P-1"] = `{"status":"Completed"}`

	_, err := h.svc.Run(context.Background(), ordersync.Options{OrderIDs: []int64{1}})
	require.NoError(t, err)

	assert.Empty(t, h.publisher.Updates)
	assert.Empty(t, h.publisher.Progress)
	assert.Empty(t, h.publisher.Notifications)
}

func TestSyncService_Run_ErrorListCapped(t *testing.T) {
	cfg := defaultSyncConfig()
	cfg.ErrorLimit = 3
	var orders []*order.Order
	var ids []int64
	for i := int64(1); i <= 6; i++ {
		orders = append(orders, newOrder(i, 1, order.StatusPending, fmt.Sprintf("MISSING-%d", i)))
		ids = append(ids, i)
	}
	h := newSyncHarness(t, cfg, orders...)

	result, err := h.svc.Run(context.Background(), ordersync.Options{OrderIDs: ids})
	require.NoError(t, err)

	assert.Equal(t, 6, result.Failed)
	assert.Len(t, result.Errors, 3)
	assert.Equal(t, 6, h.logs.Count())
}

func TestSyncService_Run_ConfigurationErrorFails(t *testing.T) {
	h := newSyncHarness(t, defaultSyncConfig(), newOrder(1, 3, order.StatusPending, "P-1"))

	result, err := h.svc.Run(context.Background(), ordersync.Options{OrderIDs: []int64{1}})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Failed)
	assert.Contains(t, result.Errors[0], "invalid api specification")
	assert.Len(t, h.logs.ForOrder(1), 1)
	assert.Zero(t, h.api.hits.Load())
}

func TestSyncService_Run_ProviderLoadedOncePerRun(t *testing.T) {
	var orders []*order.Order
	var ids []int64
	for i := int64(1); i <= 5; i++ {
		orders = append(orders, newOrder(i, 1, order.StatusPending, fmt.Sprintf("P-%d", i)))
		ids = append(ids, i)
	}
	h := newSyncHarness(t, defaultSyncConfig(), orders...)
	for i := 1; i <= 5; i++ {
		h.api.replies[fmt.Sprintf("P-%d", i)] = `{"status":"Pending"}`
	}

	result, err := h.svc.Run(context.Background(), ordersync.Options{OrderIDs: ids})
	require.NoError(t, err)
	assert.Equal(t, 5, result.Synced)
	assert.Equal(t, 1, h.providers.GetCalls)

	for i, r := range result.Results {
		assert.Equal(t, int64(i+1), r.OrderID, "results are ordered by order id")
	}
}

func TestSyncService_Run_CandidateQueryFailure(t *testing.T) {
	h := newSyncHarness(t, defaultSyncConfig())
	h.orders.ListError = errors.New("connection reset")

	_, err := h.svc.Run(context.Background(), ordersync.Options{SyncAll: true})
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrCodeDatabase, appErr.Code)
}

func TestSyncService_Run_PersistenceFailure(t *testing.T) {
	h := newSyncHarness(t, defaultSyncConfig(), newOrder(11, 1, order.StatusPending, "P-11"))
	h.api.replies["P-11"] = `{"status":"Completed"}`
	h.orders.UpdateError = errors.New("disk full")

	result, err := h.svc.Run(context.Background(), ordersync.Options{OrderIDs: []int64{11}})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, []string{"failed to sync order 11"}, result.Errors)

	logs := h.logs.ForOrder(11)
	require.Len(t, logs, 1)
	assert.Contains(t, logs[0].Message, "disk full")
}

func TestSyncService_Run_RequiresSelection(t *testing.T) {
	h := newSyncHarness(t, defaultSyncConfig())

	_, err := h.svc.Run(context.Background(), ordersync.Options{})
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrCodeBadRequest, appErr.Code)

	_, err = h.svc.Run(context.Background(), ordersync.Options{SyncAll: true, Action: "bogus"})
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrCodeBadRequest, appErr.Code)
}

func TestSyncService_Run_CancelledContextSkipsRemaining(t *testing.T) {
	h := newSyncHarness(t, defaultSyncConfig(), newOrder(1, 1, order.StatusPending, "P-1"))
	h.api.replies["P-1"] = `{"status":"Completed"}`

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := h.svc.Run(ctx, ordersync.Options{OrderIDs: []int64{1}})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, ordersync.ReasonRunCancelled, result.Results[0].Reason)
}

func TestSyncService_SyncOrder(t *testing.T) {
	h := newSyncHarness(t, defaultSyncConfig(), newOrder(42, 1, order.StatusPending, "P-42"))
	h.api.replies["P-42"] = `{"status":"Completed"}`

	_, err := h.svc.SyncOrder(context.Background(), 404)
	assert.True(t, apperrors.IsNotFound(err))

	result, err := h.svc.SyncOrder(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Synced)
	assert.Empty(t, h.publisher.Updates, "single-order sync does not broadcast")
}

func TestSyncService_SyncUserOrder(t *testing.T) {
	h := newSyncHarness(t, defaultSyncConfig(), newOrder(42, 1, order.StatusPending, "P-42"))
	h.api.replies["P-42"] = `{"status":"Completed"}`

	_, err := h.svc.SyncUserOrder(context.Background(), 999, 42)
	assert.True(t, apperrors.IsNotFound(err))
	assert.Zero(t, h.api.hits.Load())

	result, err := h.svc.SyncUserOrder(context.Background(), 142, 42)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Synced)
}

func TestBuildSyncUpdate(t *testing.T) {
	tests := []struct {
		name       string
		current    order.Status
		reported   *string
		wantStatus *order.Status
	}{
		{"advances", order.StatusPending, strPtr("In progress"), statusPtr(order.StatusInProgress)},
		{"unknown maps to pending", order.StatusProcessing, strPtr("weird"), statusPtr(order.StatusPending)},
		{"terminal to terminal", order.StatusCompleted, strPtr("Refunded"), statusPtr(order.StatusRefunded)},
		{"terminal guarded", order.StatusCancelled, strPtr("Processing"), nil},
		{"no status reported", order.StatusPending, nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := &order.Order{ID: 1, Status: tt.current}
			update := buildSyncUpdate(o, &providers.StatusResult{Status: tt.reported}, syncNow)
			assert.Equal(t, tt.wantStatus, update.Status)
			assert.Equal(t, tt.reported, update.ProviderStatus)
			assert.Equal(t, syncNow, update.SyncedAt)
		})
	}
}

func statusPtr(s order.Status) *order.Status { return &s }
