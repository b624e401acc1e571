package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/brocantio/checkout/internal/infrastructure/observability"
	"github.com/brocantio/checkout/pkg/retry"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Country is one entry of the shipping form's country selector.
type Country struct {
	Name string `json:"name"`
	Code string `json:"code"`
	Flag string `json:"flag"`
}

// fallbackCountries is served when both the upstream list and the cache are
// unavailable. Country validation stays a plain non-empty check either way,
// so a degraded list never blocks a purchase.
var fallbackCountries = []Country{
	{Name: "France"},
	{Name: "Germany"},
	{Name: "Spain"},
	{Name: "Italy"},
	{Name: "United States"},
}

const countriesCacheKey = "checkout:countries"

// CountryClient fetches the country reference list from an external source,
// with a Redis cache in front of it.
type CountryClient struct {
	url      string
	http     *http.Client
	cache    *redis.Client
	cacheTTL time.Duration
	metrics  *observability.Metrics
	logger   zerolog.Logger
}

// NewCountryClient creates a CountryClient. cache and metrics may be nil;
// without a cache every call goes upstream.
func NewCountryClient(url string, timeout time.Duration, cache *redis.Client, cacheTTL time.Duration, metrics *observability.Metrics, logger zerolog.Logger) *CountryClient {
	return &CountryClient{
		url:      url,
		http:     &http.Client{Timeout: timeout},
		cache:    cache,
		cacheTTL: cacheTTL,
		metrics:  metrics,
		logger:   logger.With().Str("component", "countries").Logger(),
	}
}

func (c *CountryClient) countServed(source string) {
	if c.metrics != nil {
		c.metrics.CountryListServed.WithLabelValues(source).Inc()
	}
}

// Countries returns the country list, sorted by name. Lookup order: cache,
// upstream, built-in fallback. It never returns an error: absence of the
// reference list degrades to free-text country entry.
func (c *CountryClient) Countries(ctx context.Context) []Country {
	if cached := c.fromCache(ctx); cached != nil {
		c.countServed("cache")
		return cached
	}

	countries, err := retry.DoWithResult(ctx, retry.DefaultConfig(), func() ([]Country, error) {
		return c.fetch(ctx)
	})
	if err != nil {
		c.logger.Warn().Err(err).Msg("country list unavailable, serving fallback")
		c.countServed("fallback")
		return fallbackCountries
	}

	c.store(ctx, countries)
	c.countServed("upstream")
	return countries
}

func (c *CountryClient) fromCache(ctx context.Context) []Country {
	if c.cache == nil {
		return nil
	}
	raw, err := c.cache.Get(ctx, countriesCacheKey).Bytes()
	if err != nil {
		return nil
	}
	var countries []Country
	if err := json.Unmarshal(raw, &countries); err != nil {
		return nil
	}
	return countries
}

func (c *CountryClient) store(ctx context.Context, countries []Country) {
	if c.cache == nil {
		return
	}
	raw, err := json.Marshal(countries)
	if err != nil {
		return
	}
	if err := c.cache.Set(ctx, countriesCacheKey, raw, c.cacheTTL).Err(); err != nil {
		c.logger.Debug().Err(err).Msg("failed to cache country list")
	}
}

// restCountry matches the shape of the restcountries.com payload.
type restCountry struct {
	Name struct {
		Common string `json:"common"`
	} `json:"name"`
	CCA2  string `json:"cca2"`
	Flags struct {
		PNG string `json:"png"`
	} `json:"flags"`
}

func (c *CountryClient) fetch(ctx context.Context) ([]Country, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch countries: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("countries upstream returned status %d", resp.StatusCode)
	}

	var raw []restCountry
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode countries: %w", err)
	}

	countries := make([]Country, 0, len(raw))
	for _, rc := range raw {
		if rc.Name.Common == "" {
			continue
		}
		countries = append(countries, Country{
			Name: rc.Name.Common,
			Code: rc.CCA2,
			Flag: rc.Flags.PNG,
		})
	}
	sort.Slice(countries, func(i, j int) bool {
		return countries[i].Name < countries[j].Name
	})
	return countries, nil
}
