package yahoo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/ndewijer/ETF-Dashboard-Backend/internal/apperrors"
)

// DefaultChartEndpoint is the public v8 chart resource; the symbol is appended as a path segment.
const DefaultChartEndpoint = "https://query1.finance.yahoo.com/v8/finance/chart/"

// DefaultTimeout bounds a single HTTP call. The endpoint has no contractual SLA.
const DefaultTimeout = 20 * time.Second

// Client defines the interface for fetching chart data from Yahoo Finance.
// This interface enables dependency injection and testing with mock implementations.
type Client interface {
	QueryChart(ctx context.Context, symbol string, res Resolution) (Result, error)
}

// FinanceClient provides methods for fetching chart data from the Yahoo Finance API.
// It wraps an HTTP client and optionally routes requests through a relay, falling
// back to a direct request when the relay cannot be reached.
type FinanceClient struct {
	httpClient    *http.Client
	chartEndpoint string
	relayURL      string
	logger        *slog.Logger
}

// Option configures a FinanceClient.
type Option func(*FinanceClient)

// WithChartEndpoint overrides the chart base URL (used by tests and mirrors).
func WithChartEndpoint(endpoint string) Option {
	return func(c *FinanceClient) { c.chartEndpoint = endpoint }
}

// WithRelay routes every request through relayURL as <relayURL>?url=<escaped chart URL>.
func WithRelay(relayURL string) Option {
	return func(c *FinanceClient) { c.relayURL = relayURL }
}

// WithTimeout sets the per-request timeout. A timeout is reported as a NetworkError.
func WithTimeout(d time.Duration) Option {
	return func(c *FinanceClient) { c.httpClient.Timeout = d }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *FinanceClient) { c.httpClient = hc }
}

// WithLogger sets the logger used for relay fallbacks and payload shape warnings.
func WithLogger(l *slog.Logger) Option {
	return func(c *FinanceClient) { c.logger = l }
}

// NewFinanceClient creates a new Yahoo Finance client.
//
// Without options the client talks directly to DefaultChartEndpoint with
// DefaultTimeout per request.
//
// Returns:
//   - *FinanceClient: A new client instance ready for use
func NewFinanceClient(opts ...Option) *FinanceClient {
	c := &FinanceClient{
		httpClient:    &http.Client{Timeout: DefaultTimeout},
		chartEndpoint: DefaultChartEndpoint,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// QueryChart fetches one symbol at one resolution and returns its first chart result.
//
// The method issues GET <endpoint>/<symbol>?interval=<interval>&range=<range>. When a
// relay is configured the request goes through the relay first; a transport failure
// there is retried once directly before giving up.
//
// Parameters:
//   - ctx: Cancels the in-flight request; a cancelled call returns ctx.Err()
//   - symbol: Ticker symbol (e.g., "IVV.AX")
//   - res: Range and interval of the requested series
//
// Returns:
//   - Result: The first chart result of the response
//   - error: *apperrors.RequestFailedError on a non-2xx status,
//     *apperrors.NetworkError on a transport failure or timeout,
//     *apperrors.MalformedResponseError when the body is not valid chart JSON,
//     *apperrors.NoChartDataError when the body has no chart result,
//     or the context error when ctx is done
func (c *FinanceClient) QueryChart(ctx context.Context, symbol string, res Resolution) (Result, error) {
	chartURL, err := c.chartURL(symbol, res)
	if err != nil {
		return Result{}, err
	}

	body, err := c.fetch(ctx, chartURL)
	if err != nil {
		return Result{}, err
	}

	var response Response
	if err := json.Unmarshal(body, &response); err != nil {
		return Result{}, &apperrors.MalformedResponseError{Cause: err}
	}

	if len(response.Chart.Result) == 0 {
		message := "No chart data returned"
		if response.Chart.Error != nil && response.Chart.Error.Description != "" {
			message = response.Chart.Error.Description
		}
		return Result{}, &apperrors.NoChartDataError{Message: message}
	}

	result := response.Chart.Result[0]
	if err := result.Validate(); err != nil {
		c.logger.Warn("unexpected chart payload shape",
			"symbol", symbol,
			"range", res.Range,
			"interval", res.Interval,
			"error", err,
		)
	}

	return result, nil
}

func (c *FinanceClient) chartURL(symbol string, res Resolution) (string, error) {
	base, err := url.Parse(c.chartEndpoint)
	if err != nil {
		return "", fmt.Errorf("invalid chart endpoint %q: %w", c.chartEndpoint, err)
	}
	u := base.JoinPath(symbol)
	q := u.Query()
	q.Set("interval", res.Interval)
	q.Set("range", res.Range)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (c *FinanceClient) relayedURL(chartURL string) (string, error) {
	relay, err := url.Parse(c.relayURL)
	if err != nil {
		return "", fmt.Errorf("invalid relay URL %q: %w", c.relayURL, err)
	}
	q := relay.Query()
	q.Set("url", chartURL)
	relay.RawQuery = q.Encode()
	return relay.String(), nil
}

// fetch performs the transport step, including the relay-then-direct fallback,
// and returns the body of a successful response.
func (c *FinanceClient) fetch(ctx context.Context, chartURL string) ([]byte, error) {
	if c.relayURL == "" {
		body, err := c.get(ctx, chartURL)
		if err != nil {
			return nil, c.transportError(ctx, err, nil)
		}
		return body, nil
	}

	relayed, err := c.relayedURL(chartURL)
	if err != nil {
		return nil, err
	}
	body, relayErr := c.get(ctx, relayed)
	if relayErr == nil {
		return body, nil
	}
	if !isTransportFailure(relayErr) || ctx.Err() != nil {
		return nil, c.transportError(ctx, relayErr, nil)
	}

	c.logger.Warn("relay request failed, retrying direct", "url", chartURL, "error", relayErr)
	body, directErr := c.get(ctx, chartURL)
	if directErr != nil {
		return nil, c.transportError(ctx, directErr, relayErr)
	}
	return body, nil
}

// transportError converts a raw error from get into the caller-facing error.
// Status and decode errors pass through; transport failures become NetworkError,
// unless the caller's context is done, in which case its error wins.
func (c *FinanceClient) transportError(ctx context.Context, err, earlier error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if !isTransportFailure(err) {
		return err
	}
	var tf *transportFailure
	errors.As(err, &tf)
	cause := tf.cause
	if earlier != nil {
		var etf *transportFailure
		if errors.As(earlier, &etf) {
			cause = errors.Join(etf.cause, cause)
		}
	}
	return &apperrors.NetworkError{Cause: cause}
}

// transportFailure marks errors from http.Client.Do so that the relay fallback
// only triggers on them and not on status or body errors.
type transportFailure struct {
	cause error
}

func (e *transportFailure) Error() string { return e.cause.Error() }
func (e *transportFailure) Unwrap() error { return e.cause }

func isTransportFailure(err error) bool {
	var tf *transportFailure
	return errors.As(err, &tf)
}

// get is an internal helper that executes one GET request and returns the body of
// a 2xx response.
//
// The method sets required headers:
//   - User-Agent: Mimics a browser to avoid API blocking
//   - Accept: Requests JSON response format
func (c *FinanceClient) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &transportFailure{cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &apperrors.RequestFailedError{Status: resp.StatusCode}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &apperrors.MalformedResponseError{Cause: err}
	}

	return data, nil
}
