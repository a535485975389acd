package gamebackend

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/singleflight"

	"github.com/riskibarqy/budget-gm/internal/domain/leaderboard"
	"github.com/riskibarqy/budget-gm/internal/domain/player"
	"github.com/riskibarqy/budget-gm/internal/domain/submission"
	"github.com/riskibarqy/budget-gm/internal/platform/logging"
	"github.com/riskibarqy/budget-gm/internal/platform/resilience"
	"github.com/riskibarqy/budget-gm/internal/usecase"
)

const (
	defaultBaseURL = "http://localhost:5000"
	defaultTimeout = 5 * time.Second

	playersPath     = "/api/players"
	submitPath      = "/api/submit-team"
	leaderboardPath = "/api/leaderboard"
	historyPath     = "/api/history"

	maxResponseBytes = 4 << 20
)

var errBackendTransient = crerr.New("game backend transient failure")

// Recorder receives upstream call telemetry.
type Recorder interface {
	UpstreamRequest(operation, status string, elapsed time.Duration)
	BreakerState(state string)
}

type nopRecorder struct{}

func (nopRecorder) UpstreamRequest(string, string, time.Duration) {}
func (nopRecorder) BreakerState(string) {}

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
	Metrics        Recorder
}

// Client talks to the game backend that owns the daily player pool,
// submissions and the leaderboard.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	maxRetries     int
	logger         *logging.Logger
	metrics        Recorder
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         singleflight.Group
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = nopRecorder{}
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = timeout
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	breakerCfg := cfg.CircuitBreaker.Normalize()
	breaker := resilience.NewCircuitBreaker(breakerCfg,
		resilience.WithFailureFilter(isTransientFailure),
		resilience.WithStateListener(func(from, to resilience.CircuitState) {
			metrics.BreakerState(string(to))
			logger.Warn("game backend circuit breaker state changed", "from", from, "to", to)
		}),
	)

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		maxRetries:     max(cfg.MaxRetries, 0),
		logger:         logger,
		metrics:        metrics,
		breaker:        breaker,
		circuitEnabled: breakerCfg.Enabled,
	}
}

func (c *Client) ListPool(ctx context.Context) ([]player.Player, error) {
	raw, err := c.getJSON(ctx, "list_pool", playersPath, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch player pool: %w", err)
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, player.ErrNoPlayersAvailable
	}

	var payload []playerPayload
	if err := sonic.Unmarshal(trimmed, &payload); err != nil {
		return nil, fmt.Errorf("decode player pool: %w", err)
	}
	if len(payload) == 0 {
		return nil, player.ErrNoPlayersAvailable
	}
	return toPlayers(payload), nil
}

func (c *Client) GetByDate(ctx context.Context, date string) (leaderboard.Board, error) {
	raw, err := c.getJSON(ctx, "leaderboard", leaderboardPath, url.Values{"date": []string{date}})
	if err != nil {
		return leaderboard.Board{}, fmt.Errorf("fetch leaderboard date=%s: %w", date, err)
	}

	var payload leaderboardResponse
	if err := sonic.Unmarshal(raw, &payload); err != nil {
		return leaderboard.Board{}, fmt.Errorf("decode leaderboard: %w", err)
	}
	return payload.toDomain(date), nil
}

func (c *Client) History(ctx context.Context, nickname string) (leaderboard.History, error) {
	raw, err := c.getJSON(ctx, "history", historyPath, url.Values{"nickname": []string{nickname}})
	if err != nil {
		return leaderboard.History{}, fmt.Errorf("fetch history: %w", err)
	}

	var payload historyResponse
	if err := sonic.Unmarshal(raw, &payload); err != nil {
		return leaderboard.History{}, fmt.Errorf("decode history: %w", err)
	}
	return payload.toDomain(), nil
}

// Submit posts one submission. It never retries: the backend is the
// authority on whether a submission landed.
func (c *Client) Submit(ctx context.Context, entry submission.Entry) error {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	if err := sonic.ConfigDefault.NewEncoder(buf).Encode(newSubmitRequest(entry)); err != nil {
		return fmt.Errorf("encode submission: %w", err)
	}

	return c.guard(ctx, func(ctx context.Context) error {
		start := time.Now()
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+submitPath, bytes.NewReader(buf.Bytes()))
		if err != nil {
			return fmt.Errorf("build submit request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			c.metrics.UpstreamRequest("submit", "error", time.Since(start))
			return fmt.Errorf("%w: %w: send request: %v", submission.ErrSubmissionFailed, errBackendTransient, err)
		}
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
		_ = resp.Body.Close()
		c.metrics.UpstreamRequest("submit", statusLabel(resp.StatusCode), time.Since(start))

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			return nil
		case resp.StatusCode == http.StatusConflict:
			return fmt.Errorf("%w: %s", submission.ErrNicknameTaken, backendMessage(body))
		case isRetryableStatus(resp.StatusCode):
			return fmt.Errorf("%w: %w: status=%d body=%s", submission.ErrSubmissionFailed, errBackendTransient, resp.StatusCode, abbreviateBody(body))
		default:
			return fmt.Errorf("%w: status=%d body=%s", submission.ErrSubmissionFailed, resp.StatusCode, abbreviateBody(body))
		}
	})
}

func (c *Client) getJSON(ctx context.Context, operation, path string, query url.Values) ([]byte, error) {
	fullURL := c.baseURL + path
	if encoded := query.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	out, err, _ := c.flight.Do(fullURL, func() (any, error) {
		var raw []byte
		err := c.guard(ctx, func(ctx context.Context) error {
			var reqErr error
			raw, reqErr = c.executeGET(ctx, operation, fullURL)
			return reqErr
		})
		return raw, err
	})
	if err != nil {
		return nil, err
	}

	raw, ok := out.([]byte)
	if !ok {
		return nil, fmt.Errorf("unexpected response payload type %T", out)
	}
	return raw, nil
}

func (c *Client) guard(ctx context.Context, fn func(context.Context) error) error {
	if !c.circuitEnabled {
		return fn(ctx)
	}

	err := c.breaker.Execute(ctx, fn)
	if stderrors.Is(err, resilience.ErrCircuitOpen) {
		c.logger.WarnContext(ctx, "game backend circuit breaker rejected request", "state", c.breaker.State())
		return fmt.Errorf("%w: game backend is temporarily unavailable", usecase.ErrDependencyUnavailable)
	}
	return err
}

func (c *Client) executeGET(ctx context.Context, operation, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		start := time.Now()
		resp, err := c.httpClient.Do(req)
		if err != nil {
			c.metrics.UpstreamRequest(operation, "error", time.Since(start))
			lastErr = fmt.Errorf("%w: send request: %v", errBackendTransient, err)
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
			_ = resp.Body.Close()
			c.metrics.UpstreamRequest(operation, statusLabel(resp.StatusCode), time.Since(start))

			switch {
			case readErr != nil:
				lastErr = fmt.Errorf("%w: read response body: %v", errBackendTransient, readErr)
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return raw, nil
			case isRetryableStatus(resp.StatusCode):
				lastErr = fmt.Errorf("%w: backend status=%d body=%s", errBackendTransient, resp.StatusCode, abbreviateBody(raw))
			default:
				return nil, fmt.Errorf("backend status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
			}
		}

		if attempt == c.maxRetries {
			break
		}
		backoff := time.Duration(attempt+1) * time.Second
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("backend request failed")
	}
	c.logger.WarnContext(ctx, "game backend request failed", "operation", operation, "error", lastErr)
	return nil, fmt.Errorf("%w: %w", usecase.ErrDependencyUnavailable, lastErr)
}

func isTransientFailure(err error) bool {
	if err == nil {
		return false
	}
	return stderrors.Is(err, errBackendTransient)
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func statusLabel(code int) string {
	return fmt.Sprintf("%dxx", code/100)
}

func backendMessage(body []byte) string {
	var payload errorResponse
	if err := sonic.Unmarshal(body, &payload); err == nil && strings.TrimSpace(payload.Error) != "" {
		return strings.TrimSpace(payload.Error)
	}
	return abbreviateBody(body)
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}
