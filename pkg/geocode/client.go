// Package geocode turns free-text address queries into structured suggestions for the
// address book, restricted to the provinces the salon serves.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/jmespath/go-jmespath"
	"golang.org/x/time/rate"

	"github.com/Ramsey-B/peony/pkg/httpclient"
	"github.com/Ramsey-B/peony/pkg/metrics"
	"github.com/Ramsey-B/peony/pkg/tracing"
	"github.com/Ramsey-B/peony/pkg/utils"
)

// MinQueryLength is the shortest query sent upstream.
const MinQueryLength = 3

// candidateExpression flattens a Nominatim jsonv2 result list.
const candidateExpression = "[].{label: display_name, lat: lat, lon: lon, street: address.road, houseNumber: address.house_number, postalCode: address.postcode, city: address.city || address.town || address.village || address.municipality, county: address.county || address.province, country: address.country, countryCode: address.country_code}"

type Suggestion struct {
	Label       string  `json:"label"`
	Street      string  `json:"street,omitempty"`
	HouseNumber string  `json:"houseNumber,omitempty"`
	PostalCode  string  `json:"postalCode,omitempty"`
	City        string  `json:"city,omitempty"`
	Province    *string `json:"province,omitempty"`
	Country     string  `json:"country,omitempty"`
	CountryCode string  `json:"countryCode,omitempty"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
}

type candidate struct {
	Label       string `json:"label"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	Street      string `json:"street"`
	HouseNumber string `json:"houseNumber"`
	PostalCode  string `json:"postalCode"`
	City        string `json:"city"`
	County      string `json:"county"`
	Country     string `json:"country"`
	CountryCode string `json:"countryCode"`
}

// Cache stores lookup results between requests
type Cache interface {
	GetJSON(ctx context.Context, key string, dest any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
}

type Config struct {
	BaseURL       string
	UserAgent     string
	RatePerSecond float64
	CacheTTL      time.Duration
	CountryCodes  string
	Limit         int
	Language      string
}

// Client queries a Nominatim-compatible search API
type Client struct {
	cfg     Config
	http    *httpclient.Client
	limiter *rate.Limiter
	cache   Cache
	query   *jmespath.JMESPath
	logger  ectologger.Logger
}

// NewClient builds a client. cache may be nil.
func NewClient(cfg Config, httpClient *httpclient.Client, cache Cache, logger ectologger.Logger) (*Client, error) {
	if cfg.RatePerSecond <= 0 {
		cfg.RatePerSecond = 1
	}
	if cfg.Limit <= 0 {
		cfg.Limit = 5
	}

	query, err := jmespath.Compile(candidateExpression)
	if err != nil {
		return nil, fmt.Errorf("failed to compile candidate expression: %w", err)
	}

	return &Client{
		cfg:     cfg,
		http:    httpClient,
		limiter: rate.NewLimiter(rate.Limit(cfg.RatePerSecond), 1),
		cache:   cache,
		query:   query,
		logger:  logger,
	}, nil
}

// StatusError is a non-2xx answer from the geocoding provider.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("geocoding provider returned status %d", e.StatusCode)
}

// Search returns suggestions for q. Short queries and malformed upstream payloads yield an
// empty list; transport failures and non-2xx statuses (as *StatusError) are errors.
func (c *Client) Search(ctx context.Context, q string) ([]Suggestion, error) {
	ctx, span := tracing.StartSpan(ctx, "GeocodeClient.Search")
	defer span.End()

	normalized := utils.FoldFields(q)
	if len([]rune(normalized)) < MinQueryLength {
		return []Suggestion{}, nil
	}

	cacheKey := "geocode:" + c.cfg.Language + ":" + normalized
	if c.cache != nil {
		var cached []Suggestion
		found, err := c.cache.GetJSON(ctx, cacheKey, &cached)
		if err != nil {
			c.logger.WithContext(ctx).WithError(err).Warn("Failed to read geocode cache")
		} else if found {
			metrics.RecordGeocodeCacheHit()
			return cached, nil
		}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	resp, err := c.http.Get(ctx, c.searchURL(strings.TrimSpace(q)), map[string]string{
		"User-Agent": c.cfg.UserAgent,
	})
	if err != nil {
		metrics.RecordGeocodeLookup("error")
		return nil, err
	}
	if !resp.OK() {
		metrics.RecordGeocodeLookup("error")
		return nil, &StatusError{StatusCode: resp.StatusCode}
	}

	suggestions, ok := c.parse(resp.Body)
	if !ok {
		metrics.RecordGeocodeLookup("malformed")
		c.logger.WithContext(ctx).WithField("query", normalized).Warn("Malformed geocoding response, returning no suggestions")
		return []Suggestion{}, nil
	}
	metrics.RecordGeocodeLookup("success")

	if c.cache != nil {
		if err := c.cache.SetJSON(ctx, cacheKey, suggestions, c.cfg.CacheTTL); err != nil {
			c.logger.WithContext(ctx).WithError(err).Warn("Failed to write geocode cache")
		}
	}

	return suggestions, nil
}

func (c *Client) searchURL(q string) string {
	params := url.Values{}
	params.Set("q", q)
	params.Set("format", "jsonv2")
	params.Set("addressdetails", "1")
	params.Set("limit", strconv.Itoa(c.cfg.Limit))
	if c.cfg.CountryCodes != "" {
		params.Set("countrycodes", c.cfg.CountryCodes)
	}
	if c.cfg.Language != "" {
		params.Set("accept-language", c.cfg.Language)
	}
	return strings.TrimRight(c.cfg.BaseURL, "/") + "/search?" + params.Encode()
}

func (c *Client) parse(body []byte) ([]Suggestion, bool) {
	var payload any
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, false
	}
	if _, ok := payload.([]any); !ok {
		return nil, false
	}

	projected, err := c.query.Search(payload)
	if err != nil {
		return nil, false
	}
	raw, err := json.Marshal(projected)
	if err != nil {
		return nil, false
	}
	var candidates []candidate
	if err := json.Unmarshal(raw, &candidates); err != nil {
		return nil, false
	}

	suggestions := make([]Suggestion, 0, len(candidates))
	for _, cand := range candidates {
		if cand.Label == "" {
			continue
		}
		s := Suggestion{
			Label:       cand.Label,
			Street:      cand.Street,
			HouseNumber: cand.HouseNumber,
			PostalCode:  cand.PostalCode,
			City:        cand.City,
			Country:     cand.Country,
			CountryCode: strings.ToUpper(cand.CountryCode),
		}
		if province, ok := NormalizeProvince(cand.County); ok {
			s.Province = &province
		}
		s.Lat, _ = strconv.ParseFloat(cand.Lat, 64)
		s.Lng, _ = strconv.ParseFloat(cand.Lon, 64)
		suggestions = append(suggestions, s)
	}
	return suggestions, true
}
