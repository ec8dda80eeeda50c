package seed

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pratik-mahalle/smmpanel/internal/domain/provider"
	"github.com/pratik-mahalle/smmpanel/internal/pkg/logger"
	"github.com/pratik-mahalle/smmpanel/internal/testutil"
)

const base = `
providers:
  - name: alpha
    api_url: https://alpha.example/api/v2
    api_key: ${ALPHA_KEY}
    timeout: 20s
    rate_limit_per_sec: 5
  - name: beta
    api_url: https://beta.example/api
    http_method: get
    status: inactive
    spec:
      method: GET
      auth:
        placement: header
        header: Authorization
        prefix: "Bearer "
      request:
        order_id_field: id
      response:
        status: data.state
        remains: data.left
services:
  - id: 10
    name: Instagram Followers
    provider: alpha
  - id: 11
    name: Manual Service
`

func lookup(env map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestLoadAndApply(t *testing.T) {
	f, err := Load(lookup(map[string]string{"ALPHA_KEY": "k-123"}), strings.NewReader(base))
	require.NoError(t, err)
	require.Len(t, f.Providers, 2)
	require.Len(t, f.Services, 2)

	repo := testutil.NewMockProviderRepository()
	res, err := Apply(context.Background(), repo, f, logger.Nop())
	require.NoError(t, err)
	assert.Equal(t, Result{Providers: 2, Services: 2}, res)

	all, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 2)

	alpha := all[0]
	assert.Equal(t, "k-123", alpha.APIKey)
	assert.Equal(t, 20*time.Second, alpha.Timeout)
	assert.Equal(t, "order", alpha.Spec.Request.OrderIDField, "default contract applies")
	assert.True(t, alpha.IsActive())

	beta := all[1]
	assert.Equal(t, "GET", beta.HTTPMethod)
	assert.Equal(t, provider.StatusInactive, beta.Status)
	assert.Equal(t, "data.state", beta.Spec.Response.Status)

	require.NotNil(t, repo.Services[10].ProviderID)
	assert.Equal(t, alpha.ID, *repo.Services[10].ProviderID)
	assert.Nil(t, repo.Services[11].ProviderID)
}

func TestLoad_LaterSourcesOverride(t *testing.T) {
	override := `
services:
  - id: 10
    name: Renamed
    provider: beta
`
	f, err := Load(lookup(map[string]string{"ALPHA_KEY": "x"}), strings.NewReader(base), strings.NewReader(override))
	require.NoError(t, err)
	require.Len(t, f.Services, 1)
	assert.Equal(t, "Renamed", f.Services[0].Name)
}

func TestApply_RejectsInvalidProvider(t *testing.T) {
	tests := map[string]string{
		"unknown status": `
providers:
  - name: x
    api_url: https://x.example
    status: paused
`,
		"bad timeout": `
providers:
  - name: x
    api_url: https://x.example
    timeout: soon
`,
		"unusable spec": `
providers:
  - name: x
    api_url: https://x.example
    spec:
      request:
        order_id_field: id
`,
		"unknown service provider": `
services:
  - name: orphan
    provider: nowhere
`,
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			f, err := Load(lookup(nil), strings.NewReader(doc))
			require.NoError(t, err)

			repo := testutil.NewMockProviderRepository()
			_, err = Apply(context.Background(), repo, f, logger.Nop())
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingVariable(t *testing.T) {
	_, err := Load(lookup(nil), strings.NewReader(base))
	assert.Error(t, err)
}
