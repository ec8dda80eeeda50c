package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/pratik-mahalle/smmpanel/internal/config"
	"github.com/pratik-mahalle/smmpanel/internal/domain/order"
	"github.com/pratik-mahalle/smmpanel/internal/domain/ordersync"
	"github.com/pratik-mahalle/smmpanel/internal/domain/provider"
	"github.com/pratik-mahalle/smmpanel/internal/domain/synclog"
	apperrors "github.com/pratik-mahalle/smmpanel/internal/pkg/errors"
	"github.com/pratik-mahalle/smmpanel/internal/pkg/logger"
	"github.com/pratik-mahalle/smmpanel/internal/pkg/metrics"
	"github.com/pratik-mahalle/smmpanel/internal/pkg/runlock"
	"github.com/pratik-mahalle/smmpanel/internal/providers"
	"github.com/pratik-mahalle/smmpanel/internal/realtime"
)

// ErrSyncInProgress is returned when a single-order sync finds the order locked by another run
var ErrSyncInProgress = apperrors.SyncInProgress("sync already in progress for this order")

// PersistenceError wraps a failed order update or log insert
type PersistenceError struct {
	OrderID int64
	Op      string
	Err     error
}

// Error returns the generic user-facing text
func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to sync order %d", e.OrderID)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Detail includes the underlying cause for operators
func (e *PersistenceError) Detail() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Publisher receives realtime events produced by sync runs
type Publisher interface {
	PublishOrderUpdate(orderID, userID int64, data any)
	PublishSyncProgress(progress any)
	PublishNotification(userID int64, n realtime.Notification)
}

type nopPublisher struct{}

func (nopPublisher) PublishOrderUpdate(int64, int64, any)             {}
func (nopPublisher) PublishSyncProgress(any)                          {}
func (nopPublisher) PublishNotification(int64, realtime.Notification) {}

// SyncService implements ordersync.Service
type SyncService struct {
	orders    order.Repository
	providers provider.Repository
	logs      synclog.Repository
	publisher Publisher
	locker    runlock.Locker
	transport http.RoundTripper
	cfg       config.SyncConfig
	logger    *logger.Logger
	now       func() time.Time

	limitersMu sync.Mutex
	limiters   map[int64]*rate.Limiter
}

// SyncOption customizes a SyncService
type SyncOption func(*SyncService)

// WithPublisher sets the realtime publisher
func WithPublisher(p Publisher) SyncOption {
	return func(s *SyncService) {
		if p != nil {
			s.publisher = p
		}
	}
}

// WithLocker sets the per-order lock implementation
func WithLocker(l runlock.Locker) SyncOption {
	return func(s *SyncService) {
		if l != nil {
			s.locker = l
		}
	}
}

// WithHTTPTransport sets the round tripper used for provider calls
func WithHTTPTransport(rt http.RoundTripper) SyncOption {
	return func(s *SyncService) {
		if rt != nil {
			s.transport = rt
		}
	}
}

// WithClock overrides time.Now
func WithClock(now func() time.Time) SyncOption {
	return func(s *SyncService) {
		s.now = now
	}
}

// NewSyncService creates the sync orchestrator
func NewSyncService(
	orders order.Repository,
	providerRepo provider.Repository,
	logs synclog.Repository,
	cfg config.SyncConfig,
	log *logger.Logger,
	opts ...SyncOption,
) *SyncService {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.ErrorLimit < 1 {
		cfg.ErrorLimit = ordersync.DefaultErrorLimit
	}
	if cfg.ProviderTimeout <= 0 {
		cfg.ProviderTimeout = providers.DefaultTimeout
	}
	if cfg.LockTTL < cfg.ProviderTimeout {
		cfg.LockTTL = 2 * cfg.ProviderTimeout
	}
	if log == nil {
		log = logger.Nop()
	}

	s := &SyncService{
		orders:    orders,
		providers: providerRepo,
		logs:      logs,
		publisher: nopPublisher{},
		locker:    runlock.NewMemoryLocker(),
		transport: http.DefaultTransport,
		cfg:       cfg,
		logger:    log.WithComponent("sync"),
		now:       time.Now,
		limiters:  make(map[int64]*rate.Limiter),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run performs one synchronization pass
func (s *SyncService) Run(ctx context.Context, opts ordersync.Options) (*ordersync.RunResult, error) {
	if !opts.SyncAll && len(opts.OrderIDs) == 0 {
		return nil, apperrors.BadRequest("either orderIds or syncAll is required")
	}
	if opts.Action == "" {
		opts.Action = synclog.ActionManualSync
	}
	if !opts.Action.IsValid() {
		return nil, apperrors.BadRequest(fmt.Sprintf("invalid sync action: %s", opts.Action))
	}

	done := metrics.SyncRunStarted()
	defer done()

	candidates, missing, err := s.resolveCandidates(ctx, opts)
	if err != nil {
		s.logger.WithFields(map[string]interface{}{
			"action":   opts.Action,
			"sync_all": opts.SyncAll,
		}).ErrorWithErr(err, "Failed to resolve sync candidates")
		return nil, apperrors.DatabaseError("Failed to load orders for sync", err)
	}

	state := &runState{
		result: &ordersync.RunResult{
			Action:       opts.Action,
			TotalChecked: len(candidates) + len(missing),
			Results:      make([]ordersync.OrderResult, 0, len(candidates)+len(missing)),
			Errors:       []string{},
			StartedAt:    s.now(),
		},
		errorLimit: s.cfg.ErrorLimit,
	}

	runLog := s.logger.WithFields(map[string]interface{}{
		"action":     opts.Action,
		"sync_all":   opts.SyncAll,
		"candidates": state.result.TotalChecked,
	})
	runLog.Info("Order sync run started")

	for _, id := range missing {
		progress := state.record(ordersync.OrderResult{
			OrderID: id,
			Outcome: ordersync.OutcomeSkipped,
			Reason:  ordersync.ReasonOrderNotFound,
		}, "")
		s.publishProgress(opts, progress)
	}

	cache := newProviderCache(s)
	g := new(errgroup.Group)
	g.SetLimit(s.cfg.Workers)
	for _, o := range candidates {
		o := o
		g.Go(func() error {
			res, errMsg := s.syncOne(ctx, o, opts, cache)
			progress := state.record(res, errMsg)
			s.publishProgress(opts, progress)
			return nil
		})
	}
	_ = g.Wait()

	result := state.finish(s.now())
	if opts.Broadcast {
		s.publisher.PublishSyncProgress(ordersync.Progress{
			Action:    result.Action,
			Total:     result.TotalChecked,
			Processed: len(result.Results),
			Synced:    result.Synced,
			Failed:    result.Failed,
			Skipped:   result.Skipped,
			Done:      true,
		})
	}

	metrics.RecordSyncRun(string(result.Action), result.Synced, result.Failed, result.Skipped, result.Duration())
	runLog.WithFields(map[string]interface{}{
		"synced":      result.Synced,
		"failed":      result.Failed,
		"skipped":     result.Skipped,
		"duration_ms": result.Duration().Milliseconds(),
	}).Info("Order sync run finished")

	return result, nil
}

// SyncOrder syncs one order on demand without broadcasting
func (s *SyncService) SyncOrder(ctx context.Context, orderID int64) (*ordersync.RunResult, error) {
	result, err := s.Run(ctx, ordersync.Options{
		OrderIDs: []int64{orderID},
		Action:   synclog.ActionManualSync,
	})
	if err != nil {
		return nil, err
	}
	if len(result.Results) == 1 && result.Results[0].Outcome == ordersync.OutcomeSkipped {
		switch result.Results[0].Reason {
		case ordersync.ReasonOrderNotFound:
			return nil, apperrors.NotFound("Order")
		case ordersync.ReasonSyncInProgress:
			return result, ErrSyncInProgress
		}
	}
	return result, nil
}

// SyncUserOrder syncs an order only when userID owns it. Foreign orders look missing.
func (s *SyncService) SyncUserOrder(ctx context.Context, userID, orderID int64) (*ordersync.RunResult, error) {
	found, err := s.orders.GetByIDs(ctx, []int64{orderID})
	if err != nil {
		return nil, apperrors.DatabaseError("Failed to load order", err)
	}
	if len(found) == 0 || found[0].UserID != userID {
		return nil, apperrors.NotFound("Order")
	}
	return s.SyncOrder(ctx, orderID)
}

func (s *SyncService) resolveCandidates(ctx context.Context, opts ordersync.Options) ([]*order.Order, []int64, error) {
	if opts.SyncAll {
		orders, err := s.orders.ListEligible(ctx, order.DefaultEligibility(opts.ProviderID))
		if err != nil {
			return nil, nil, err
		}
		// stores must already exclude these; guard against a lax filter
		eligible := orders[:0]
		for _, o := range orders {
			if o.ProviderOrderID != nil && !o.Status.IsTerminal() {
				eligible = append(eligible, o)
			}
		}
		return eligible, nil, nil
	}

	ids := dedupeIDs(opts.OrderIDs)
	found, err := s.orders.GetByIDs(ctx, ids)
	if err != nil {
		return nil, nil, err
	}

	byID := make(map[int64]*order.Order, len(found))
	for _, o := range found {
		byID[o.ID] = o
	}

	var candidates []*order.Order
	var missing []int64
	for _, id := range ids {
		o, ok := byID[id]
		if !ok {
			missing = append(missing, id)
			continue
		}
		if opts.ProviderID != nil && (o.ProviderID == nil || *o.ProviderID != *opts.ProviderID) {
			continue
		}
		candidates = append(candidates, o)
	}
	return candidates, missing, nil
}

func dedupeIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// syncOne processes a single candidate and returns its result and, for failures,
// the message destined for the run's error list.
func (s *SyncService) syncOne(ctx context.Context, o *order.Order, opts ordersync.Options, cache *providerCache) (ordersync.OrderResult, string) {
	res := ordersync.OrderResult{
		OrderID:        o.ID,
		ProviderID:     o.ProviderID,
		PreviousStatus: o.Status,
		Status:         o.Status,
	}
	skip := func(reason string) (ordersync.OrderResult, string) {
		res.Outcome = ordersync.OutcomeSkipped
		res.Reason = reason
		return res, ""
	}

	if ctx.Err() != nil {
		return skip(ordersync.ReasonRunCancelled)
	}
	if o.ProviderOrderID == nil || strings.TrimSpace(*o.ProviderOrderID) == "" {
		return skip(ordersync.ReasonNoProviderOrderID)
	}
	if o.ProviderID == nil {
		return skip(ordersync.ReasonNoProvider)
	}

	entry := cache.get(ctx, *o.ProviderID)
	if entry.err != nil {
		if apperrors.IsNotFound(entry.err) {
			return skip(ordersync.ReasonProviderNotFound)
		}
		return s.fail(ctx, res, opts.Action, entry.err)
	}
	if !entry.provider.IsActive() {
		return skip(ordersync.ReasonProviderInactive)
	}

	release, acquired, err := s.locker.TryLock(ctx, runlock.OrderKey(o.ID), s.cfg.LockTTL)
	if err != nil {
		return s.fail(ctx, res, opts.Action, fmt.Errorf("acquire order lock: %w", err))
	}
	if !acquired {
		return skip(ordersync.ReasonSyncInProgress)
	}
	defer release()

	if entry.adapterErr != nil {
		return s.fail(ctx, res, opts.Action, entry.adapterErr)
	}

	start := time.Now()
	status, err := entry.adapter.FetchOrderStatus(ctx, *o.ProviderOrderID)
	metrics.RecordProviderRequest(*o.ProviderID, requestOutcome(err), time.Since(start))
	if err != nil {
		return s.fail(ctx, res, opts.Action, err)
	}

	update := buildSyncUpdate(o, status, s.now())
	updated, err := s.orders.ApplySyncUpdate(ctx, o.ID, update)
	if err != nil {
		return s.fail(ctx, res, opts.Action, &PersistenceError{OrderID: o.ID, Op: "update order", Err: err})
	}

	if err := s.writeLog(ctx, o, opts.Action, synclog.OutcomeSuccess, ""); err != nil {
		res.Status = updated.Status
		return s.failWithoutLog(res, opts.Action, &PersistenceError{OrderID: o.ID, Op: "insert sync log", Err: err})
	}

	res.Outcome = ordersync.OutcomeSynced
	res.Status = updated.Status
	res.ProviderStatus = updated.ProviderStatus
	res.Remains = updated.Remains
	res.StartCount = updated.StartCount

	if opts.Broadcast {
		s.publisher.PublishOrderUpdate(updated.ID, updated.UserID, updated)
	}
	if s.cfg.NotifyTerminal && !o.Status.IsTerminal() && updated.Status.IsTerminal() {
		s.publisher.PublishNotification(updated.UserID, terminalNotification(updated))
	}

	return res, ""
}

// buildSyncUpdate carries over only the fields the provider supplied. A terminal
// order never moves back to a non-terminal status.
func buildSyncUpdate(o *order.Order, status *providers.StatusResult, now time.Time) order.SyncUpdate {
	update := order.SyncUpdate{
		Remains:    status.Remains,
		StartCount: status.StartCount,
		SyncedAt:   now,
	}
	if status.Status != nil {
		raw := *status.Status
		update.ProviderStatus = &raw

		mapped := order.MapProviderStatus(raw)
		if !o.Status.IsTerminal() || mapped.IsTerminal() {
			update.Status = &mapped
		}
	}
	return update
}

func (s *SyncService) fail(ctx context.Context, res ordersync.OrderResult, action synclog.Action, cause error) (ordersync.OrderResult, string) {
	message := cause.Error()
	var perr *PersistenceError
	if errors.As(cause, &perr) {
		message = perr.Detail()
	}

	o := &order.Order{ID: res.OrderID, ProviderID: res.ProviderID}
	if err := s.writeLog(ctx, o, action, synclog.OutcomeFailed, message); err != nil {
		s.logger.WithFields(map[string]interface{}{
			"order_id": res.OrderID,
			"action":   action,
		}).ErrorWithErr(err, "Failed to record sync failure")
	}
	return s.failWithoutLog(res, action, cause)
}

func (s *SyncService) failWithoutLog(res ordersync.OrderResult, action synclog.Action, cause error) (ordersync.OrderResult, string) {
	res.Outcome = ordersync.OutcomeFailed
	res.Reason = cause.Error()

	fields := map[string]interface{}{
		"order_id": res.OrderID,
		"action":   action,
	}
	if res.ProviderID != nil {
		fields["provider_id"] = *res.ProviderID
	}
	s.logger.WithFields(fields).WarnWithErr(cause, "Order sync failed")

	var perr *PersistenceError
	if errors.As(cause, &perr) {
		return res, perr.Error()
	}
	return res, fmt.Sprintf("order %d: %s", res.OrderID, cause.Error())
}

// writeLog survives cancellation of the run context so every attempt is recorded
func (s *SyncService) writeLog(ctx context.Context, o *order.Order, action synclog.Action, outcome synclog.Outcome, message string) error {
	return s.logs.Create(context.WithoutCancel(ctx), &synclog.Entry{
		OrderID:    o.ID,
		ProviderID: o.ProviderID,
		Action:     action,
		Status:     outcome,
		Message:    message,
		CreatedAt:  s.now(),
	})
}

func (s *SyncService) publishProgress(opts ordersync.Options, p ordersync.Progress) {
	if opts.Broadcast {
		s.publisher.PublishSyncProgress(p)
	}
}

func (s *SyncService) limiterFor(p *provider.Provider) *rate.Limiter {
	if p.RateLimitPerSec <= 0 {
		return nil
	}

	s.limitersMu.Lock()
	defer s.limitersMu.Unlock()

	limit := rate.Limit(p.RateLimitPerSec)
	if l, ok := s.limiters[p.ID]; ok && l.Limit() == limit {
		return l
	}
	burst := int(p.RateLimitPerSec)
	if burst < 1 {
		burst = 1
	}
	l := rate.NewLimiter(limit, burst)
	s.limiters[p.ID] = l
	return l
}

func requestOutcome(err error) string {
	var netErr *providers.NetworkError
	var respErr *providers.ResponseError
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &netErr) && netErr.Timeout:
		return "timeout"
	case errors.As(err, &netErr):
		return "network_error"
	case errors.As(err, &respErr):
		return "bad_response"
	default:
		return "error"
	}
}

func terminalNotification(o *order.Order) realtime.Notification {
	title := "Order " + strings.ReplaceAll(string(o.Status), "_", " ")
	return realtime.Notification{
		Type:    "order_status",
		Title:   title,
		Message: fmt.Sprintf("Your order #%d is now %s", o.ID, o.Status),
		OrderID: o.ID,
		Data:    map[string]any{"status": string(o.Status)},
	}
}

// runState collects per-order results from concurrent workers
type runState struct {
	mu         sync.Mutex
	result     *ordersync.RunResult
	errorLimit int
}

func (st *runState) record(res ordersync.OrderResult, errMsg string) ordersync.Progress {
	st.mu.Lock()
	defer st.mu.Unlock()

	r := st.result
	r.Results = append(r.Results, res)
	switch res.Outcome {
	case ordersync.OutcomeSynced:
		r.Synced++
	case ordersync.OutcomeFailed:
		r.Failed++
		if errMsg != "" && len(r.Errors) < st.errorLimit {
			r.Errors = append(r.Errors, errMsg)
		}
	default:
		r.Skipped++
	}

	return ordersync.Progress{
		Action:    r.Action,
		Total:     r.TotalChecked,
		Processed: len(r.Results),
		Synced:    r.Synced,
		Failed:    r.Failed,
		Skipped:   r.Skipped,
		OrderID:   res.OrderID,
	}
}

func (st *runState) finish(at time.Time) *ordersync.RunResult {
	st.mu.Lock()
	defer st.mu.Unlock()

	sort.Slice(st.result.Results, func(i, j int) bool {
		return st.result.Results[i].OrderID < st.result.Results[j].OrderID
	})
	st.result.FinishedAt = at
	return st.result
}

// providerCache resolves each provider and its adapter once per run
type providerCache struct {
	svc     *SyncService
	mu      sync.Mutex
	entries map[int64]*providerEntry
}

type providerEntry struct {
	once       sync.Once
	provider   *provider.Provider
	adapter    *providers.Adapter
	err        error
	adapterErr error
}

func newProviderCache(svc *SyncService) *providerCache {
	return &providerCache{svc: svc, entries: make(map[int64]*providerEntry)}
}

func (c *providerCache) get(ctx context.Context, id int64) *providerEntry {
	c.mu.Lock()
	e, ok := c.entries[id]
	if !ok {
		e = &providerEntry{}
		c.entries[id] = e
	}
	c.mu.Unlock()

	e.once.Do(func() {
		p, err := c.svc.providers.GetByID(ctx, id)
		if err != nil {
			e.err = err
			return
		}
		if p == nil {
			e.err = apperrors.NotFound("Provider")
			return
		}
		e.provider = p
		e.adapter, e.adapterErr = providers.NewAdapter(p,
			providers.WithTransport(c.svc.transport),
			providers.WithLimiter(c.svc.limiterFor(p)),
			providers.WithDefaultTimeout(c.svc.cfg.ProviderTimeout),
		)
	})
	return e
}

var _ ordersync.Service = (*SyncService)(nil)
