package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/pratik-mahalle/smmpanel/internal/domain/ordersync"
	"github.com/pratik-mahalle/smmpanel/internal/domain/synclog"
	"github.com/pratik-mahalle/smmpanel/internal/pkg/logger"
)

var (
	// ErrAlreadyStarted is returned by a second call to Start
	ErrAlreadyStarted = errors.New("order sync scheduler already started")
	// ErrAlreadyRunning is returned when a scheduled pass is still in flight
	ErrAlreadyRunning = errors.New("order sync pass already in progress")
)

// Status reports the scheduler state
type Status struct {
	Started      bool       `json:"started"`
	InFlight     bool       `json:"inFlight"`
	Schedule     string     `json:"schedule"`
	NextRun      *time.Time `json:"nextRun,omitempty"`
	LastRunAt    *time.Time `json:"lastRunAt,omitempty"`
	LastDuration string     `json:"lastDuration,omitempty"`
	LastSynced   int        `json:"lastSynced"`
	LastFailed   int        `json:"lastFailed"`
	LastSkipped  int        `json:"lastSkipped"`
	LastError    string     `json:"lastError,omitempty"`
	SkippedTicks int64      `json:"skippedTicks"`
}

// OrderSyncScheduler runs a sync-all pass on a cron schedule
type OrderSyncScheduler struct {
	syncService ordersync.Service
	schedule    string
	logger      *logger.Logger

	mu      sync.Mutex
	cron    *cron.Cron
	entryID cron.EntryID
	started bool
	ctx     context.Context
	cancel  context.CancelFunc

	// runMu is held for the duration of a pass, scheduled or triggered
	runMu        sync.Mutex
	inFlight     atomic.Bool
	skippedTicks atomic.Int64

	statusMu sync.RWMutex
	last     Status
}

// NewOrderSyncScheduler creates a scheduler for the given cron spec
func NewOrderSyncScheduler(syncService ordersync.Service, schedule string, log *logger.Logger) (*OrderSyncScheduler, error) {
	if _, err := cron.ParseStandard(schedule); err != nil {
		return nil, fmt.Errorf("invalid sync schedule %q: %w", schedule, err)
	}
	if log == nil {
		log = logger.Nop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &OrderSyncScheduler{
		syncService: syncService,
		schedule:    schedule,
		logger:      log.WithComponent("order_sync_scheduler"),
		ctx:         ctx,
		cancel:      cancel,
	}, nil
}

// Start registers the periodic pass. It may be called only once.
func (s *OrderSyncScheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return ErrAlreadyStarted
	}

	c := cron.New()
	entryID, err := c.AddFunc(s.schedule, s.tick)
	if err != nil {
		return fmt.Errorf("failed to schedule order sync: %w", err)
	}
	c.Start()

	s.cron = c
	s.entryID = entryID
	s.started = true

	s.logger.WithFields(map[string]interface{}{
		"schedule": s.schedule,
	}).Info("Order sync scheduler started")

	return nil
}

// Stop halts the schedule, cancels an in-flight scheduled pass and waits for it to return
func (s *OrderSyncScheduler) Stop() {
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	s.mu.Unlock()

	s.cancel()
	if c == nil {
		return
	}

	<-c.Stop().Done()

	s.logger.Info("Order sync scheduler stopped")
}

// TriggerNow runs a sync-all pass synchronously. It fails with ErrAlreadyRunning
// while another scheduled or triggered pass is in flight.
func (s *OrderSyncScheduler) TriggerNow(ctx context.Context) (*ordersync.RunResult, error) {
	return s.runOnce(ctx)
}

// Status returns the current scheduler state
func (s *OrderSyncScheduler) Status() Status {
	s.statusMu.RLock()
	st := s.last
	s.statusMu.RUnlock()

	s.mu.Lock()
	st.Started = s.started
	if s.cron != nil {
		if next := s.cron.Entry(s.entryID).Next; !next.IsZero() {
			st.NextRun = &next
		}
	}
	s.mu.Unlock()

	st.Schedule = s.schedule
	st.InFlight = s.inFlight.Load()
	st.SkippedTicks = s.skippedTicks.Load()
	return st
}

func (s *OrderSyncScheduler) tick() {
	defer func() {
		if r := recover(); r != nil {
			s.logger.WithFields(map[string]interface{}{
				"panic": fmt.Sprint(r),
			}).Error("Scheduled order sync panicked")
		}
	}()

	if _, err := s.runOnce(s.ctx); err != nil {
		if errors.Is(err, ErrAlreadyRunning) {
			s.skippedTicks.Add(1)
			s.logger.Warn("Skipping scheduled order sync: previous pass still running")
			return
		}
		s.logger.ErrorWithErr(err, "Scheduled order sync failed")
	}
}

func (s *OrderSyncScheduler) runOnce(ctx context.Context) (*ordersync.RunResult, error) {
	if !s.runMu.TryLock() {
		return nil, ErrAlreadyRunning
	}
	defer s.runMu.Unlock()

	s.inFlight.Store(true)
	defer s.inFlight.Store(false)

	started := time.Now()
	result, err := s.syncService.Run(ctx, ordersync.Options{
		SyncAll:   true,
		Broadcast: false,
		Action:    synclog.ActionCronSync,
	})
	s.recordRun(started, result, err)
	return result, err
}

func (s *OrderSyncScheduler) recordRun(started time.Time, result *ordersync.RunResult, err error) {
	s.statusMu.Lock()
	defer s.statusMu.Unlock()

	s.last.LastRunAt = &started
	s.last.LastDuration = time.Since(started).Round(time.Millisecond).String()
	if err != nil {
		s.last.LastError = err.Error()
		return
	}
	s.last.LastError = ""
	s.last.LastSynced = result.Synced
	s.last.LastFailed = result.Failed
	s.last.LastSkipped = result.Skipped
}
