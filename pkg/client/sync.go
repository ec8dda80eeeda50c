package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// SyncService triggers and inspects order synchronization
type SyncService struct {
	client *Client
}

// Run syncs the selected orders now. Admin only.
func (s *SyncService) Run(ctx context.Context, req SyncRequest) (*SyncResponse, error) {
	var resp SyncResponse
	if err := s.client.doRequest(ctx, http.MethodPost, "/api/v1/admin/orders/sync", nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Order syncs a single order. Non-admin callers may only sync their own orders.
func (s *SyncService) Order(ctx context.Context, orderID int64) (*SyncResponse, error) {
	var resp SyncResponse
	path := "/api/v1/orders/" + formatID(orderID) + "/sync"
	if err := s.client.doRequest(ctx, http.MethodPost, path, nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Trigger runs the scheduled sync-all pass immediately
func (s *SyncService) Trigger(ctx context.Context) (*SyncResponse, error) {
	var resp SyncResponse
	if err := s.client.doRequest(ctx, http.MethodPost, "/api/v1/admin/sync/trigger", nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Status returns the scheduler state
func (s *SyncService) Status(ctx context.Context) (*SchedulerStatus, error) {
	var status SchedulerStatus
	if err := s.client.doRequest(ctx, http.MethodGet, "/api/v1/admin/sync/status", nil, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// Logs lists sync log entries, newest first
func (s *SyncService) Logs(ctx context.Context, filter *SyncLogFilter) (*SyncLogPage, error) {
	query := url.Values{}
	if filter != nil {
		if filter.OrderID != nil {
			query.Set("order_id", formatID(*filter.OrderID))
		}
		if filter.ProviderID != nil {
			query.Set("provider_id", formatID(*filter.ProviderID))
		}
		if filter.Action != "" {
			query.Set("action", filter.Action)
		}
		if filter.Status != "" {
			query.Set("status", filter.Status)
		}
		if filter.Page > 0 {
			query.Set("page", strconv.Itoa(filter.Page))
		}
		if filter.PageSize > 0 {
			query.Set("page_size", strconv.Itoa(filter.PageSize))
		}
	}

	var page SyncLogPage
	if err := s.client.doRequest(ctx, http.MethodGet, "/api/v1/admin/sync/logs", query, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// ProviderService lists provider configurations
type ProviderService struct {
	client *Client
}

// List returns every configured provider. Admin only.
func (s *ProviderService) List(ctx context.Context) ([]Provider, error) {
	var providers []Provider
	if err := s.client.doRequest(ctx, http.MethodGet, "/api/v1/admin/providers", nil, nil, &providers); err != nil {
		return nil, err
	}
	return providers, nil
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
