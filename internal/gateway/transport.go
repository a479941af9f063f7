package gateway

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/taskforge/task-gateway/internal/config"
)

// transportResult is a completed upstream round trip, whatever the status.
type transportResult struct {
	StatusCode int
	Body       []byte
}

// retryingTransport owns the pooled HTTP client for the gateway's lifetime
// and executes single logical calls with bounded retries.
//
// Only transport-level failures (no response obtained) are retried. A
// completed round trip is returned immediately even on 5xx: repeating a
// non-idempotent write after a 5xx could double-apply it upstream.
type retryingTransport struct {
	client     *http.Client
	baseURL    string
	userAgent  string
	maxRetries int
	backoff    []time.Duration

	// attemptTimeout bounds each attempt: pool wait + dial + write + read.
	attemptTimeout time.Duration
}

func newRetryingTransport(cfg config.UpstreamConfig, client *http.Client) *retryingTransport {
	if client == nil {
		client = &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   cfg.ConnectTimeout,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout:   cfg.WriteTimeout,
				ResponseHeaderTimeout: cfg.ReadTimeout,
				MaxConnsPerHost:       cfg.MaxConnections,
				MaxIdleConns:          cfg.MaxKeepAlive,
				MaxIdleConnsPerHost:   cfg.MaxKeepAlive,
				IdleConnTimeout:       config.DefaultIdleConnTimeout,
			},
		}
	}
	return &retryingTransport{
		client:         client,
		baseURL:        strings.TrimSuffix(cfg.BaseURL, "/"),
		userAgent:      cfg.UserAgent,
		maxRetries:     cfg.MaxRetries,
		backoff:        cfg.Backoff,
		attemptTimeout: cfg.PoolTimeout + cfg.ConnectTimeout + cfg.WriteTimeout + cfg.ReadTimeout,
	}
}

// backoffFor returns the delay before retry n (0-based). The last
// configured value repeats when retries outnumber the schedule.
func (t *retryingTransport) backoffFor(n int) time.Duration {
	if len(t.backoff) == 0 {
		return 0
	}
	if n >= len(t.backoff) {
		n = len(t.backoff) - 1
	}
	return t.backoff[n]
}

// do executes one logical call: up to 1+maxRetries attempts, deterministic
// backoff between them, abandoned as soon as ctx is done.
func (t *retryingTransport) do(ctx context.Context, method, path string, query url.Values, body []byte) (*transportResult, *GatewayError) {
	u := t.baseURL + "/" + strings.TrimPrefix(path, "/")
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	// Defensive double-check: placement already strips bodies from read
	// methods, but a body must never go out on GET/DELETE.
	if method == http.MethodGet || method == http.MethodDelete {
		body = nil
	}

	var lastErr *GatewayError
	for attempt := 0; attempt <= t.maxRetries; attempt++ {
		if attempt > 0 {
			delay := t.backoffFor(attempt - 1)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, timeoutError(ctx.Err())
			}
		}

		res, gwErr := t.attempt(ctx, method, u, body)
		if gwErr == nil {
			return res, nil
		}
		if !gwErr.Retryable {
			return nil, gwErr
		}
		lastErr = gwErr

		if ctx.Err() != nil {
			// Caller is gone; no background retry may continue.
			return nil, timeoutError(ctx.Err())
		}
		log.Warn().
			Str("method", method).
			Str("url", u).
			Int("attempt", attempt+1).
			Int("max_attempts", t.maxRetries+1).
			Err(gwErr.Err).
			Msg("upstream attempt failed, will retry")
	}
	return nil, lastErr
}

func (t *retryingTransport) attempt(ctx context.Context, method, u string, body []byte) (*transportResult, *GatewayError) {
	attemptCtx, cancel := context.WithTimeout(ctx, t.attemptTimeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(attemptCtx, method, u, reader)
	if err != nil {
		return nil, malformedResponse(fmt.Sprintf("building request for %s", u), err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", t.userAgent)

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, classifyTransportErr(err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		// Status arrived but the body broke off. The round trip may have
		// been applied upstream, so this is not safe to retry.
		return nil, malformedResponse("reading upstream response body", err)
	}
	return &transportResult{StatusCode: resp.StatusCode, Body: respBody}, nil
}

// classifyTransportErr sorts a failed round trip into the error taxonomy.
// Everything here is retryable: no HTTP response was obtained.
func classifyTransportErr(err error) *GatewayError {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return timeoutError(err)
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return timeoutError(err)
	}
	// Dial refused, DNS failure, connection reset before response.
	return connectionFailed(err)
}
