// Package seed imports provider configurations and service links from YAML.
package seed

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/config"

	"github.com/pratik-mahalle/smmpanel/internal/domain/provider"
	"github.com/pratik-mahalle/smmpanel/internal/pkg/logger"
	"github.com/pratik-mahalle/smmpanel/internal/providers"
)

// LookupFunc resolves ${VAR} references, usually os.LookupEnv
type LookupFunc func(key string) (string, bool)

// File is the seed document
type File struct {
	Providers []ProviderSeed
	Services  []ServiceSeed
}

// ProviderSeed describes one provider. Spec falls back to the common SMM contract.
type ProviderSeed struct {
	Name            string            `yaml:"name"`
	APIURL          string            `yaml:"api_url"`
	APIKey          string            `yaml:"api_key"`
	HTTPMethod      string            `yaml:"http_method"`
	Status          string            `yaml:"status"`
	Timeout         string            `yaml:"timeout"`
	RateLimitPerSec float64           `yaml:"rate_limit_per_sec"`
	Spec            *provider.APISpec `yaml:"spec"`
}

// ServiceSeed links a service to a provider by name
type ServiceSeed struct {
	ID       int64  `yaml:"id"`
	Name     string `yaml:"name"`
	Provider string `yaml:"provider"`
}

// Result counts what Apply wrote
type Result struct {
	Providers int
	Services  int
}

// Load merges the given YAML sources, later sources overriding earlier ones,
// and expands ${VAR} and ${VAR:default} references with lookup.
func Load(lookup LookupFunc, sources ...io.Reader) (*File, error) {
	var options []config.YAMLOption
	for _, s := range sources {
		options = append(options, config.Source(s))
	}
	options = append(options, config.Expand(config.LookupFunc(lookup)))

	yaml, err := config.NewYAML(options...)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed yaml: %w", err)
	}

	var f File
	readError := func(key string, cause error) error {
		return fmt.Errorf("failed to read '%s' from seed yaml: %w", key, cause)
	}
	key := "providers"
	if yaml.Get(key).HasValue() {
		if err := yaml.Get(key).Populate(&f.Providers); err != nil {
			return nil, readError(key, err)
		}
	}
	key = "services"
	if yaml.Get(key).HasValue() {
		if err := yaml.Get(key).Populate(&f.Services); err != nil {
			return nil, readError(key, err)
		}
	}
	return &f, nil
}

// toProvider validates a seed entry the same way the sync engine will
func (s ProviderSeed) toProvider() (*provider.Provider, error) {
	if strings.TrimSpace(s.Name) == "" {
		return nil, fmt.Errorf("provider name is required")
	}

	p := &provider.Provider{
		Name:            s.Name,
		APIURL:          s.APIURL,
		APIKey:          s.APIKey,
		HTTPMethod:      strings.ToUpper(s.HTTPMethod),
		Status:          provider.Status(s.Status),
		RateLimitPerSec: s.RateLimitPerSec,
		Spec:            provider.DefaultAPISpec(),
	}
	if p.HTTPMethod == "" {
		p.HTTPMethod = "POST"
	}
	if p.Status == "" {
		p.Status = provider.StatusActive
	}
	if p.Status != provider.StatusActive && p.Status != provider.StatusInactive {
		return nil, fmt.Errorf("provider %s: unknown status %q", s.Name, s.Status)
	}
	if s.Timeout != "" {
		d, err := time.ParseDuration(s.Timeout)
		if err != nil || d < 0 {
			return nil, fmt.Errorf("provider %s: invalid timeout %q", s.Name, s.Timeout)
		}
		p.Timeout = d
	}
	if s.Spec != nil {
		p.Spec = *s.Spec
	}

	if _, err := providers.NewAdapter(p); err != nil {
		return nil, err
	}
	return p, nil
}

// Apply upserts every provider, then every service. Nothing is written when
// any provider entry is invalid.
func Apply(ctx context.Context, repo provider.Repository, f *File, log *logger.Logger) (Result, error) {
	var res Result

	parsed := make([]*provider.Provider, 0, len(f.Providers))
	for _, s := range f.Providers {
		p, err := s.toProvider()
		if err != nil {
			return res, err
		}
		parsed = append(parsed, p)
	}

	ids := make(map[string]int64, len(parsed))
	for _, p := range parsed {
		if err := repo.Upsert(ctx, p); err != nil {
			return res, fmt.Errorf("upsert provider %s: %w", p.Name, err)
		}
		ids[p.Name] = p.ID
		res.Providers++
		log.WithFields(map[string]interface{}{
			"provider_id": p.ID,
			"name":        p.Name,
			"status":      p.Status,
		}).Info("Seeded provider")
	}

	if len(f.Services) > 0 {
		existing, err := repo.List(ctx)
		if err != nil {
			return res, err
		}
		for _, p := range existing {
			if _, ok := ids[p.Name]; !ok {
				ids[p.Name] = p.ID
			}
		}
	}

	for _, s := range f.Services {
		svc := &provider.Service{ID: s.ID, Name: s.Name}
		if s.Provider != "" {
			id, ok := ids[s.Provider]
			if !ok {
				return res, fmt.Errorf("service %s: unknown provider %q", s.Name, s.Provider)
			}
			svc.ProviderID = &id
		}
		if err := repo.UpsertService(ctx, svc); err != nil {
			return res, fmt.Errorf("upsert service %s: %w", s.Name, err)
		}
		res.Services++
	}

	return res, nil
}
