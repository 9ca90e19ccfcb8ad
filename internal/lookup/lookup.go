// Package lookup serves the reference lists behind the intake form.
package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/datara/scholarhub/internal/metrics"
	"github.com/datara/scholarhub/internal/session"
)

// Result is a lookup list. Fallback means the list could not be produced and
// the caller should accept free-text entry instead.
type Result struct {
	Items    []string `json:"items"`
	Fallback bool     `json:"fallback"`
}

type university struct {
	Name string `json:"name"`
}

// Service answers lookups. Universities come from a remote directory and are
// cached in the session store.
type Service struct {
	baseURL  string
	client   *http.Client
	cache    session.Store
	cacheTTL time.Duration
}

func NewService(baseURL string, timeout time.Duration, cache session.Store, cacheTTL time.Duration) *Service {
	return &Service{
		baseURL:  strings.TrimRight(baseURL, "/"),
		client:   &http.Client{Timeout: timeout},
		cache:    cache,
		cacheTTL: cacheTTL,
	}
}

// Countries returns the country list in alphabetical order.
func (s *Service) Countries() Result {
	items := slices.Clone(countries)
	slices.Sort(items)
	return Result{Items: items}
}

// Provinces returns the subdivisions of country, or a fallback when none are known.
func (s *Service) Provinces(country string) Result {
	for name, list := range provinces {
		if strings.EqualFold(name, strings.TrimSpace(country)) {
			items := slices.Clone(list)
			slices.Sort(items)
			return Result{Items: items}
		}
	}
	return Result{Items: []string{}, Fallback: true}
}

// Universities returns the de-duplicated, sorted university names for country.
// Any upstream failure or an empty answer yields a fallback result; errors are
// never returned to the caller.
func (s *Service) Universities(ctx context.Context, country string) Result {
	country = strings.TrimSpace(country)
	if country == "" {
		return Result{Items: []string{}, Fallback: true}
	}

	key := "lookup:universities:" + strings.ToLower(country)

	var items []string
	err := session.GetOrSet(ctx, s.cache, key, &items, s.cacheTTL, func() (interface{}, error) {
		return s.fetchUniversities(ctx, country)
	})
	if err != nil {
		slog.WarnContext(ctx, "University lookup fell back to manual entry", "country", country, "error", err)
		metrics.LookupFallbacks.Inc()
		return Result{Items: []string{}, Fallback: true}
	}

	return Result{Items: items}
}

func (s *Service) fetchUniversities(ctx context.Context, country string) ([]string, error) {
	endpoint := s.baseURL + "/search?country=" + url.QueryEscape(country)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("requesting universities: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("university directory returned HTTP %d", resp.StatusCode)
	}

	var body []university
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding universities: %w", err)
	}

	seen := make(map[string]struct{}, len(body))
	names := make([]string, 0, len(body))
	for _, u := range body {
		name := strings.TrimSpace(u.Name)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}

	// Empty answers are not cached so a later request can try again.
	if len(names) == 0 {
		return nil, fmt.Errorf("no universities found for %s", country)
	}

	slices.Sort(names)
	return names, nil
}
