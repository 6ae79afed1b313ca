// Package scorecard is a thin client for the College Scorecard API,
// used to backfill campus coordinates.
package scorecard

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Gobusters/ectologger"
)

const (
	// DefaultBaseURL is the public College Scorecard endpoint
	DefaultBaseURL = "https://api.data.gov/ed/collegescorecard/v1/schools"

	// DefaultTimeout is the default request timeout
	DefaultTimeout = 30 * time.Second

	// MaxBatchSize is the most scorecard IDs a single request may carry
	MaxBatchSize = 100

	// MaxResponseSize caps the response body (10MB)
	MaxResponseSize = 10 * 1024 * 1024

	lookupFields = "id,school.name,location.lat,location.lon"
)

// Location is a campus coordinate pair.
type Location struct {
	Latitude  float64
	Longitude float64
}

// Config holds scorecard client configuration
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Client queries the College Scorecard API
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  ectologger.Logger
}

// NewClient creates a new scorecard client
func NewClient(cfg Config, logger ectologger.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("scorecard api key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: cfg.Timeout},
		logger:  logger,
	}, nil
}

type lookupResponse struct {
	Results []schoolResult `json:"results"`
}

// The fields projection comes back as flat dotted keys.
type schoolResult struct {
	ID        json.Number `json:"id"`
	Name      string      `json:"school.name"`
	Latitude  *float64    `json:"location.lat"`
	Longitude *float64    `json:"location.lon"`
}

// Lookup fetches coordinates for up to MaxBatchSize scorecard IDs.
// IDs the API does not know, or that have no coordinates, are absent
// from the result map.
func (c *Client) Lookup(ctx context.Context, scorecardIDs []string) (map[string]Location, error) {
	if len(scorecardIDs) == 0 {
		return map[string]Location{}, nil
	}
	if len(scorecardIDs) > MaxBatchSize {
		return nil, fmt.Errorf("too many scorecard ids: %d (max %d)", len(scorecardIDs), MaxBatchSize)
	}

	query := url.Values{}
	query.Set("api_key", c.apiKey)
	query.Set("id", strings.Join(scorecardIDs, ","))
	query.Set("fields", lookupFields)
	query.Set("per_page", fmt.Sprintf("%d", MaxBatchSize))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.WithContext(ctx).WithError(err).Error("scorecard request failed")
		return nil, fmt.Errorf("scorecard request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read scorecard response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("scorecard returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed lookupResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse scorecard response: %w", err)
	}

	locations := make(map[string]Location, len(parsed.Results))
	for _, result := range parsed.Results {
		if result.Latitude == nil || result.Longitude == nil {
			continue
		}
		locations[result.ID.String()] = Location{
			Latitude:  *result.Latitude,
			Longitude: *result.Longitude,
		}
	}

	c.logger.WithContext(ctx).Debugf("scorecard lookup: %d ids -> %d locations (%s)",
		len(scorecardIDs), len(locations), time.Since(start))

	return locations, nil
}
