// Package watch keeps server-side watches in sync with client intent:
// a request/response client for the /watch call and a debounced
// coordinator that reconciles what the server actually activated.
package watch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"tickflash/internal/domain"
)

// StartWatchResponse describes what the server actually activated. The
// provider may differ from the one requested.
type StartWatchResponse struct {
	OK       bool            `json:"ok"`
	Provider string          `json:"provider"`
	Env      json.RawMessage `json:"env"`
}

// Client issues watch requests.
type Client interface {
	StartWatch(ctx context.Context, intent domain.Intent) (*StartWatchResponse, error)
}

// HTTPClient calls the server's /watch endpoint.
type HTTPClient struct {
	baseURL string
	client  *http.Client
	logger  zerolog.Logger
}

// NewHTTPClient constructs a watch client. timeout bounds each request.
func NewHTTPClient(baseURL string, timeout time.Duration, logger zerolog.Logger) *HTTPClient {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		logger:  logger.With().Str("component", "watch_client").Logger(),
	}
}

// StartWatch issues a watch request carrying the full intent.
func (c *HTTPClient) StartWatch(ctx context.Context, intent domain.Intent) (*StartWatchResponse, error) {
	q := url.Values{}
	setCSV := func(k string, vals []string) {
		if len(vals) > 0 {
			q.Set(k, strings.Join(vals, ","))
		}
	}
	setCSV("symbols", intent.Instruments)
	setCSV("eqForTS", intent.EquityInstruments)
	if intent.BackfillDepth > 0 {
		q.Set("backfill", strconv.Itoa(intent.BackfillDepth))
	}
	if intent.Moneyness > 0 {
		q.Set("moneyness", strconv.FormatFloat(intent.Moneyness, 'f', -1, 64))
	}
	if intent.Limit > 0 {
		q.Set("limit", strconv.Itoa(intent.Limit))
	}
	if intent.Provider != "" {
		q.Set("provider", intent.Provider)
	}
	if intent.Live {
		q.Set("live", "1")
	}
	if intent.Replay {
		q.Set("replay", "1")
	}

	reqURL := fmt.Sprintf("%s/watch?%s", c.baseURL, q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build watch request: %w", err)
	}

	c.logger.Debug().Str("url", reqURL).Msg("issuing watch request")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("watch request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read watch response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("watch request failed: HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out StartWatchResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode watch response: %w", err)
	}
	return &out, nil
}
