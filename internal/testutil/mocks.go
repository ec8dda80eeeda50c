package testutil

import (
	"context"
	"sort"
	"sync"

	"github.com/pratik-mahalle/smmpanel/internal/domain/order"
	"github.com/pratik-mahalle/smmpanel/internal/domain/provider"
	"github.com/pratik-mahalle/smmpanel/internal/domain/synclog"
	apperrors "github.com/pratik-mahalle/smmpanel/internal/pkg/errors"
	"github.com/pratik-mahalle/smmpanel/internal/realtime"
)

// MockOrderRepository is a mock implementation of order.Repository
type MockOrderRepository struct {
	mu          sync.Mutex
	Orders      map[int64]*order.Order
	Updates     map[int64][]order.SyncUpdate
	GetError    error
	ListError   error
	UpdateError error
}

func NewMockOrderRepository(orders ...*order.Order) *MockOrderRepository {
	m := &MockOrderRepository{
		Orders:  make(map[int64]*order.Order),
		Updates: make(map[int64][]order.SyncUpdate),
	}
	for _, o := range orders {
		m.Orders[o.ID] = o
	}
	return m
}

func (m *MockOrderRepository) GetByIDs(ctx context.Context, ids []int64) ([]*order.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.GetError != nil {
		return nil, m.GetError
	}
	var result []*order.Order
	for _, id := range ids {
		if o, ok := m.Orders[id]; ok {
			c := *o
			result = append(result, &c)
		}
	}
	return result, nil
}

func (m *MockOrderRepository) ListEligible(ctx context.Context, filter order.EligibilityFilter) ([]*order.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ListError != nil {
		return nil, m.ListError
	}
	excluded := make(map[order.Status]bool, len(filter.ExcludeStatuses))
	for _, s := range filter.ExcludeStatuses {
		excluded[s] = true
	}

	var result []*order.Order
	for _, o := range m.Orders {
		if o.ProviderOrderID == nil || excluded[o.Status] {
			continue
		}
		if filter.ProviderID != nil && (o.ProviderID == nil || *o.ProviderID != *filter.ProviderID) {
			continue
		}
		c := *o
		result = append(result, &c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *MockOrderRepository) ApplySyncUpdate(ctx context.Context, id int64, update order.SyncUpdate) (*order.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.UpdateError != nil {
		return nil, m.UpdateError
	}
	o, ok := m.Orders[id]
	if !ok {
		return nil, apperrors.NotFound("Order")
	}
	if update.Status != nil {
		o.Status = *update.Status
	}
	if update.ProviderStatus != nil {
		o.ProviderStatus = update.ProviderStatus
	}
	if update.Remains != nil {
		o.Remains = update.Remains
	}
	if update.StartCount != nil {
		o.StartCount = update.StartCount
	}
	syncedAt := update.SyncedAt
	o.LastSyncAt = &syncedAt
	o.UpdatedAt = syncedAt

	m.Updates[id] = append(m.Updates[id], update)
	c := *o
	return &c, nil
}

// Get returns a copy of the stored order
func (m *MockOrderRepository) Get(id int64) *order.Order {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.Orders[id]
	if !ok {
		return nil
	}
	c := *o
	return &c
}

// UpdateCount returns how many updates were applied to id
func (m *MockOrderRepository) UpdateCount(id int64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Updates[id])
}

// MockProviderRepository is a mock implementation of provider.Repository
type MockProviderRepository struct {
	mu        sync.Mutex
	Providers map[int64]*provider.Provider
	Services  map[int64]*provider.Service
	NextID    int64
	GetError  error
	GetCalls  int
}

func NewMockProviderRepository(providers ...*provider.Provider) *MockProviderRepository {
	m := &MockProviderRepository{
		Providers: make(map[int64]*provider.Provider),
		Services:  make(map[int64]*provider.Service),
		NextID:    1,
	}
	for _, p := range providers {
		m.Providers[p.ID] = p
		if p.ID >= m.NextID {
			m.NextID = p.ID + 1
		}
	}
	return m
}

func (m *MockProviderRepository) GetByID(ctx context.Context, id int64) (*provider.Provider, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.GetCalls++
	if m.GetError != nil {
		return nil, m.GetError
	}
	p, ok := m.Providers[id]
	if !ok {
		return nil, apperrors.NotFound("Provider")
	}
	c := *p
	return &c, nil
}

func (m *MockProviderRepository) List(ctx context.Context) ([]*provider.Provider, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([]*provider.Provider, 0, len(m.Providers))
	for _, p := range m.Providers {
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *MockProviderRepository) Upsert(ctx context.Context, p *provider.Provider) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.Providers {
		if existing.Name == p.Name {
			p.ID = existing.ID
			m.Providers[p.ID] = p
			return nil
		}
	}
	p.ID = m.NextID
	m.NextID++
	m.Providers[p.ID] = p
	return nil
}

func (m *MockProviderRepository) UpsertService(ctx context.Context, s *provider.Service) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s.ID == 0 {
		s.ID = int64(len(m.Services) + 1)
	}
	m.Services[s.ID] = s
	return nil
}

// MockSyncLogRepository is a mock implementation of synclog.Repository
type MockSyncLogRepository struct {
	mu          sync.Mutex
	Entries     []*synclog.Entry
	CreateError error
}

func NewMockSyncLogRepository() *MockSyncLogRepository {
	return &MockSyncLogRepository{}
}

func (m *MockSyncLogRepository) Create(ctx context.Context, entry *synclog.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.CreateError != nil {
		return m.CreateError
	}
	entry.ID = int64(len(m.Entries) + 1)
	m.Entries = append(m.Entries, entry)
	return nil
}

func (m *MockSyncLogRepository) List(ctx context.Context, filter synclog.Filter, limit, offset int) ([]*synclog.Entry, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var matched []*synclog.Entry
	for i := len(m.Entries) - 1; i >= 0; i-- {
		e := m.Entries[i]
		if filter.OrderID != nil && e.OrderID != *filter.OrderID {
			continue
		}
		if filter.ProviderID != nil && (e.ProviderID == nil || *e.ProviderID != *filter.ProviderID) {
			continue
		}
		if filter.Action != nil && e.Action != *filter.Action {
			continue
		}
		if filter.Status != nil && e.Status != *filter.Status {
			continue
		}
		matched = append(matched, e)
	}

	total := int64(len(matched))
	if offset >= len(matched) {
		return []*synclog.Entry{}, total, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

// ForOrder returns the entries recorded for orderID
func (m *MockSyncLogRepository) ForOrder(orderID int64) []*synclog.Entry {
	m.mu.Lock()
	defer m.mu.Unlock()

	var result []*synclog.Entry
	for _, e := range m.Entries {
		if e.OrderID == orderID {
			result = append(result, e)
		}
	}
	return result
}

// Count returns the number of recorded entries
func (m *MockSyncLogRepository) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Entries)
}

// PublishedUpdate is one order update captured by RecordingPublisher
type PublishedUpdate struct {
	OrderID int64
	UserID  int64
	Data    any
}

// PublishedNotification is one notification captured by RecordingPublisher
type PublishedNotification struct {
	UserID       int64
	Notification realtime.Notification
}

// RecordingPublisher captures realtime events for assertions
type RecordingPublisher struct {
	mu            sync.Mutex
	Updates       []PublishedUpdate
	Progress      []any
	Notifications []PublishedNotification
}

func (p *RecordingPublisher) PublishOrderUpdate(orderID, userID int64, data any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Updates = append(p.Updates, PublishedUpdate{OrderID: orderID, UserID: userID, Data: data})
}

func (p *RecordingPublisher) PublishSyncProgress(progress any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Progress = append(p.Progress, progress)
}

func (p *RecordingPublisher) PublishNotification(userID int64, n realtime.Notification) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Notifications = append(p.Notifications, PublishedNotification{UserID: userID, Notification: n})
}
