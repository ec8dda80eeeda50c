package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pratik-mahalle/smmpanel/internal/domain/ordersync"
	"github.com/pratik-mahalle/smmpanel/internal/domain/synclog"
	"github.com/pratik-mahalle/smmpanel/internal/pkg/logger"
)

type fakeSyncService struct {
	mu      sync.Mutex
	calls   []ordersync.Options
	block   chan struct{}
	entered chan struct{}
	err     error
}

func (f *fakeSyncService) Run(ctx context.Context, opts ordersync.Options) (*ordersync.RunResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, opts)
	f.mu.Unlock()

	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return &ordersync.RunResult{Action: opts.Action, Synced: 2, Failed: 1, Skipped: 3}, nil
}

func (f *fakeSyncService) SyncOrder(ctx context.Context, orderID int64) (*ordersync.RunResult, error) {
	return nil, errors.New("not used")
}

func (f *fakeSyncService) SyncUserOrder(ctx context.Context, userID, orderID int64) (*ordersync.RunResult, error) {
	return nil, errors.New("not used")
}

func (f *fakeSyncService) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func TestNewOrderSyncScheduler_InvalidSchedule(t *testing.T) {
	_, err := NewOrderSyncScheduler(&fakeSyncService{}, "every now and then", logger.Nop())
	assert.Error(t, err)
}

func TestOrderSyncScheduler_StartOnce(t *testing.T) {
	s, err := NewOrderSyncScheduler(&fakeSyncService{}, "@every 1h", logger.Nop())
	require.NoError(t, err)

	require.NoError(t, s.Start())
	defer s.Stop()

	assert.ErrorIs(t, s.Start(), ErrAlreadyStarted)

	st := s.Status()
	assert.True(t, st.Started)
	assert.Equal(t, "@every 1h", st.Schedule)
}

func TestOrderSyncScheduler_TriggerNow(t *testing.T) {
	svc := &fakeSyncService{}
	s, err := NewOrderSyncScheduler(svc, "@every 5m", logger.Nop())
	require.NoError(t, err)

	result, err := s.TriggerNow(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Synced)

	require.Equal(t, 1, svc.callCount())
	opts := svc.calls[0]
	assert.True(t, opts.SyncAll)
	assert.False(t, opts.Broadcast)
	assert.Equal(t, synclog.ActionCronSync, opts.Action)
	assert.Empty(t, opts.OrderIDs)

	st := s.Status()
	require.NotNil(t, st.LastRunAt)
	assert.Equal(t, 2, st.LastSynced)
	assert.Equal(t, 1, st.LastFailed)
	assert.Equal(t, 3, st.LastSkipped)
	assert.Empty(t, st.LastError)
}

func TestOrderSyncScheduler_RecordsRunError(t *testing.T) {
	svc := &fakeSyncService{err: errors.New("database is down")}
	s, err := NewOrderSyncScheduler(svc, "@every 5m", logger.Nop())
	require.NoError(t, err)

	_, err = s.TriggerNow(context.Background())
	require.Error(t, err)
	assert.Equal(t, "database is down", s.Status().LastError)
}

func TestOrderSyncScheduler_SkipsOverlappingPasses(t *testing.T) {
	svc := &fakeSyncService{block: make(chan struct{}), entered: make(chan struct{}, 1)}
	s, err := NewOrderSyncScheduler(svc, "@every 5m", logger.Nop())
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := s.TriggerNow(context.Background())
		done <- err
	}()

	select {
	case <-svc.entered:
	case <-time.After(5 * time.Second):
		t.Fatal("first pass never started")
	}
	assert.True(t, s.Status().InFlight)

	_, err = s.TriggerNow(context.Background())
	assert.ErrorIs(t, err, ErrAlreadyRunning)

	s.tick()
	assert.Equal(t, int64(1), s.Status().SkippedTicks)

	close(svc.block)
	require.NoError(t, <-done)
	assert.Equal(t, 1, svc.callCount())
	assert.False(t, s.Status().InFlight)
}

func TestOrderSyncScheduler_StopCancelsScheduledPass(t *testing.T) {
	svc := &fakeSyncService{block: make(chan struct{}), entered: make(chan struct{}, 1)}
	s, err := NewOrderSyncScheduler(svc, "@every 1h", logger.Nop())
	require.NoError(t, err)
	require.NoError(t, s.Start())

	tickDone := make(chan struct{})
	go func() {
		s.tick()
		close(tickDone)
	}()
	<-svc.entered

	s.Stop()
	s.Stop()

	select {
	case <-tickDone:
	case <-time.After(5 * time.Second):
		t.Fatal("scheduled pass was not cancelled by Stop")
	}
	assert.Contains(t, s.Status().LastError, context.Canceled.Error())
}
