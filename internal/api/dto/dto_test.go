package dto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pratik-mahalle/smmpanel/internal/domain/synclog"
	"github.com/pratik-mahalle/smmpanel/internal/pkg/validator"
)

func TestSyncRequest_Decode(t *testing.T) {
	var req SyncRequest
	err := json.Unmarshal([]byte(`{"orderIds":[42,"9007199254740993"],"providerId":"3"}`), &req)
	require.NoError(t, err)

	opts := req.Options()
	assert.Equal(t, []int64{42, 9007199254740993}, opts.OrderIDs)
	require.NotNil(t, opts.ProviderID)
	assert.Equal(t, int64(3), *opts.ProviderID)
	assert.True(t, opts.Broadcast)
	assert.Equal(t, synclog.ActionManualSync, opts.Action)

	assert.Error(t, json.Unmarshal([]byte(`{"orderIds":["abc"]}`), &req))
}

func TestSyncRequest_Validate(t *testing.T) {
	v := validator.New()

	tests := []struct {
		name  string
		req   SyncRequest
		valid bool
	}{
		{"ids", SyncRequest{OrderIDs: []ID{1, 2}}, true},
		{"sync all", SyncRequest{SyncAll: true}, true},
		{"nothing", SyncRequest{}, false},
		{"non-positive id", SyncRequest{OrderIDs: []ID{0}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := v.Validate(tt.req)
			assert.Equal(t, tt.valid, len(errs) == 0, "%+v", errs)
		})
	}
}

func TestID_MarshalAsString(t *testing.T) {
	b, err := json.Marshal(struct {
		ID ID `json:"id"`
	}{ID: 9007199254740993})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"9007199254740993"}`, string(b))
}
