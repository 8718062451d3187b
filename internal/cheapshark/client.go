// Package cheapshark is a best-effort client for the CheapShark deals API.
// Failures are logged and degraded to empty results; they never reach callers.
package cheapshark

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog"

	"lootradar/internal/metrics"
	"lootradar/internal/version"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	DefaultBaseURL      = "https://www.cheapshark.com/api/1.0"
	DefaultRedirectBase = "https://www.cheapshark.com/redirect"

	gamesPath = "/games"

	endpointSearch = "search"
	endpointDeals  = "deals"

	maxErrorBody = 512
)

// Recorder receives one observation per upstream call.
type Recorder interface {
	ObserveUpstream(endpoint, outcome string, duration time.Duration)
}

// Options parameterise the client. A zero Timeout keeps the transport default.
type Options struct {
	BaseURL      string
	RedirectBase string
	Timeout      time.Duration
	UserAgent    string
	HTTPClient   *http.Client
}

// Client calls the two CheapShark game endpoints.
type Client struct {
	baseURL      string
	redirectBase string
	userAgent    string
	client       *http.Client
	recorder     Recorder
	logger       zerolog.Logger
}

// New constructs a client. recorder may be nil.
func New(opts Options, recorder Recorder, logger zerolog.Logger) *Client {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	redirectBase := strings.TrimSpace(opts.RedirectBase)
	if redirectBase == "" {
		redirectBase = DefaultRedirectBase
	}
	userAgent := strings.TrimSpace(opts.UserAgent)
	if userAgent == "" {
		userAgent = version.UserAgent()
	}

	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}

	return &Client{
		baseURL:      baseURL,
		redirectBase: redirectBase,
		userAgent:    userAgent,
		client:       client,
		recorder:     recorder,
		logger:       logger.With().Str("component", "cheapshark").Logger(),
	}
}

// SearchGames looks up titles matching title. Any failure yields an empty slice.
func (c *Client) SearchGames(ctx context.Context, title string, limit int) []GameSummary {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil
	}

	query := url.Values{}
	query.Set("title", title)
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	var games []GameSummary
	if err := c.getJSON(ctx, endpointSearch, query, &games); err != nil {
		c.logger.Warn().Err(err).Str("title", title).Msg("title search failed; returning no results")
		return nil
	}

	c.logger.Debug().Str("title", title).Int("count", len(games)).Msg("title search complete")
	return games
}

// GameDeals fetches every current deal for gameID. ok is false on any failure.
func (c *Client) GameDeals(ctx context.Context, gameID string) (GameDetail, bool) {
	gameID = strings.TrimSpace(gameID)
	if gameID == "" {
		return GameDetail{}, false
	}

	query := url.Values{}
	query.Set("id", gameID)

	var detail GameDetail
	if err := c.getJSON(ctx, endpointDeals, query, &detail); err != nil {
		c.logger.Warn().Err(err).Str("game_id", gameID).Msg("deal lookup failed; treating as no deals")
		return GameDetail{}, false
	}
	return detail, true
}

// RedirectURL builds the CheapShark redirect link for a deal. It is never fetched.
func (c *Client) RedirectURL(dealID string) string {
	return c.redirectBase + "?dealID=" + url.QueryEscape(dealID)
}

func (c *Client) getJSON(ctx context.Context, endpoint string, query url.Values, out any) error {
	start := time.Now()
	outcome, err := c.do(ctx, query, out)
	c.recorder.ObserveUpstream(endpoint, outcome, time.Since(start))
	return err
}

func (c *Client) do(ctx context.Context, query url.Values, out any) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+gamesPath+"?"+query.Encode(), http.NoBody)
	if err != nil {
		return metrics.OutcomeTransportError, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return metrics.OutcomeTransportError, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return metrics.OutcomeTransportError, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return metrics.OutcomeStatusError, parseHTTPError(resp.StatusCode, payload)
	}

	if err := json.Unmarshal(payload, out); err != nil {
		return metrics.OutcomeDecodeError, fmt.Errorf("decode response: %w", err)
	}
	return metrics.OutcomeOK, nil
}

// StatusError reports a non-2xx upstream response.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("cheapshark api error (%d)", e.StatusCode)
	}
	return fmt.Sprintf("cheapshark api error (%d): %s", e.StatusCode, e.Message)
}

func parseHTTPError(status int, payload []byte) error {
	var apiErr errorResponse
	if err := json.Unmarshal(payload, &apiErr); err == nil && apiErr.Error != "" {
		return &StatusError{StatusCode: status, Message: apiErr.Error}
	}
	if len(payload) > maxErrorBody {
		payload = payload[:maxErrorBody]
	}
	return &StatusError{StatusCode: status, Message: strings.TrimSpace(string(payload))}
}

type nopRecorder struct{}

func (nopRecorder) ObserveUpstream(string, string, time.Duration) {}

var _ Recorder = (*metrics.Recorder)(nil)
