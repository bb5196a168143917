// Package odds fetches bookmaker quotes from The Odds API.
package odds

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/mselser95/sharpline/pkg/oddsmath"
	"github.com/mselser95/sharpline/pkg/types"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	sourceName = "odds-api"

	// RemainingHeader carries the provider's remaining request quota.
	RemainingHeader = "x-requests-remaining"
	// UsedHeader carries the number of requests used in the current period.
	UsedHeader = "x-requests-used"

	maxErrorBody = 512
)

// ClientConfig holds configuration for the odds client.
type ClientConfig struct {
	BaseURL    string
	APIKey     string
	Sport      string
	Regions    string
	Markets    string
	Timeout    time.Duration
	RateLimit  float64 // requests per second, <= 0 disables limiting
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Result is one successful fetch. Dropped records are reported in Errors.
type Result struct {
	Games     []types.Game
	Errors    []error
	Remaining int // -1 when the provider did not report a quota
	Used      int
	FetchedAt time.Time
}

// Client is an HTTP client for The Odds API v4.
type Client struct {
	cfg        ClientConfig
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	limiter    *rate.Limiter
	logger     *zap.Logger
}

// NewClient creates a new odds client.
func NewClient(cfg *ClientConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("odds api key is required")
	}
	if cfg.BaseURL == "" {
		return nil, errors.New("odds api base url is required")
	}

	c := *cfg
	if c.Sport == "" {
		c.Sport = "americanfootball_nfl"
	}
	if c.Regions == "" {
		c.Regions = "us"
	}
	if c.Markets == "" {
		c.Markets = "h2h,spreads,totals"
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: c.Timeout}
	}

	logger := c.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	limit := rate.Inf
	if c.RateLimit > 0 {
		limit = rate.Limit(c.RateLimit)
	}

	return &Client{
		cfg:        c,
		httpClient: httpClient,
		breaker:    newBreaker(sourceName, logger),
		limiter:    rate.NewLimiter(limit, 1),
		logger:     logger,
	}, nil
}

func newBreaker(name string, logger *zap.Logger) *gobreaker.CircuitBreaker {
	st := gobreaker.Settings{
		Name:     name,
		Interval: 60 * time.Second,
		Timeout:  60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			BreakerState.Set(float64(to))
			logger.Warn("odds-breaker-state-changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	}
	return gobreaker.NewCircuitBreaker(st)
}

// FetchOdds fetches every upcoming game for the configured sport.
// A transport or status failure returns a FetchError; an undecodable body returns a ParseError.
// Individual malformed games and bookmakers are dropped and listed in Result.Errors.
func (c *Client) FetchOdds(ctx context.Context) (*Result, error) {
	err := c.limiter.Wait(ctx)
	if err != nil {
		return nil, fmt.Errorf("wait for rate limiter: %w", err)
	}

	start := time.Now()
	out, err := c.breaker.Execute(func() (any, error) {
		return c.fetch(ctx)
	})
	FetchDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		FetchErrorsTotal.WithLabelValues(errorReason(err)).Inc()
		c.logger.Error("odds-fetch-failed", zap.Error(err))

		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, &types.FetchError{Source: sourceName, Err: err}
		}
		return nil, err
	}

	res, ok := out.(*Result)
	if !ok {
		return nil, fmt.Errorf("unexpected breaker result %T", out)
	}

	GamesFetchedTotal.Add(float64(len(res.Games)))
	RecordsDroppedTotal.Add(float64(len(res.Errors)))
	if res.Remaining >= 0 {
		RequestsRemaining.Set(float64(res.Remaining))
	}

	c.logger.Info("odds-fetched",
		zap.Int("games", len(res.Games)),
		zap.Int("dropped", len(res.Errors)),
		zap.Int("requests-remaining", res.Remaining))

	return res, nil
}

func (c *Client) fetch(ctx context.Context) (*Result, error) {
	params := url.Values{}
	params.Add("apiKey", c.cfg.APIKey)
	params.Add("regions", c.cfg.Regions)
	params.Add("markets", c.cfg.Markets)
	params.Add("oddsFormat", "american")

	endpoint := fmt.Sprintf("%s/sports/%s/odds", c.cfg.BaseURL, url.PathEscape(c.cfg.Sport))
	requestURL := fmt.Sprintf("%s?%s", endpoint, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "sharpline/1.0")

	c.logger.Debug("fetching-odds",
		zap.String("endpoint", endpoint),
		zap.String("markets", c.cfg.Markets))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &types.FetchError{Source: sourceName, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &types.FetchError{
			Source: sourceName,
			Err:    &StatusError{Code: resp.StatusCode, Body: string(body)},
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &types.FetchError{Source: sourceName, Err: fmt.Errorf("read response body: %w", err)}
	}

	res, err := decodeGames(body)
	if err != nil {
		return nil, err
	}

	res.Remaining = headerInt(resp.Header, RemainingHeader)
	res.Used = headerInt(resp.Header, UsedHeader)
	res.FetchedAt = time.Now().UTC()

	return res, nil
}

// decodeGames decodes each game independently so one bad record never loses the batch.
func decodeGames(body []byte) (*Result, error) {
	var raw []json.RawMessage
	err := json.Unmarshal(body, &raw)
	if err != nil {
		return nil, &types.ParseError{Source: sourceName, Err: err}
	}

	res := &Result{Games: make([]types.Game, 0, len(raw))}
	for i, msg := range raw {
		var g types.Game
		err = json.Unmarshal(msg, &g)
		if err != nil {
			res.Errors = append(res.Errors, &types.ParseError{
				Source: fmt.Sprintf("%s game %d", sourceName, i),
				Err:    err,
			})
			continue
		}

		err = g.Validate()
		if err != nil {
			res.Errors = append(res.Errors, err)
			continue
		}

		res.Errors = append(res.Errors, g.PruneBookmakers()...)
		res.Errors = append(res.Errors, oddsmath.AnnotateGame(&g)...)
		observeOverround(&g)
		res.Games = append(res.Games, g)
	}

	return res, nil
}

func observeOverround(g *types.Game) {
	for i := range g.Bookmakers {
		for j := range g.Bookmakers[i].Markets {
			m := &g.Bookmakers[i].Markets[j]
			if v, ok := oddsmath.MarketOverround(m); ok {
				MarketOverround.WithLabelValues(m.Key).Observe(v)
			}
		}
	}
}

func headerInt(h http.Header, key string) int {
	v := h.Get(key)
	if v == "" {
		return -1
	}

	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return -1
	}
	return int(n)
}

// StatusError is a non-200 response from the provider.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code %d: %s", e.Code, e.Body)
}

func errorReason(err error) string {
	var statusErr *StatusError
	var parseErr *types.ParseError
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return "breaker_open"
	case errors.As(err, &statusErr):
		return "status_" + strconv.Itoa(statusErr.Code)
	case errors.As(err, &parseErr):
		return "parse"
	default:
		return "transport"
	}
}
