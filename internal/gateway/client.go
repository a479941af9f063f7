package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"

	"github.com/taskforge/task-gateway/internal/adapters"
	"github.com/taskforge/task-gateway/internal/config"
	"github.com/taskforge/task-gateway/internal/rewrite"
)

// Client is the task-service gateway façade. Route handlers call Call and
// receive the normalized envelope; every runtime failure is folded into the
// envelope, and only identifier-validation failures return a Go error.
//
// Construct one Client at process start and inject it into handlers. Safe
// for concurrent use; the pooled HTTP client is the only shared resource.
type Client struct {
	cfg       config.UpstreamConfig
	table     *rewrite.Table
	transport *retryingTransport

	httpClient *http.Client // set via option, nil means build the pooled default

	// Cached health probe result to avoid hitting the upstream on every
	// liveness check.
	healthMu sync.RWMutex
	healthOK bool
	healthAt time.Time
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client. Intended for tests injecting a
// fake RoundTripper; production callers should let the Client build its own
// pooled transport from config.
func WithHTTPClient(c *http.Client) Option {
	return func(client *Client) {
		client.httpClient = c
	}
}

// WithTable overrides the default route table.
func WithTable(t *rewrite.Table) Option {
	return func(client *Client) {
		client.table = t
	}
}

// NewClient creates a gateway client from resolved settings.
func NewClient(cfg config.UpstreamConfig, opts ...Option) *Client {
	c := &Client{
		cfg:   cfg,
		table: rewrite.DefaultTable(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.transport = newRetryingTransport(cfg, c.httpClient)
	return c
}

// Close releases pooled connections. The route table needs no teardown.
func (c *Client) Close() {
	c.transport.client.CloseIdleConnections()
}

// Call executes one logical call through the full pipeline: validate,
// rewrite, place, execute, adapt. The returned error is non-nil only for
// invalid identifiers, which fail before any network I/O.
func (c *Client) Call(ctx context.Context, req CallRequest) (*CallResponse, error) {
	if _, err := ValidateIdentifier(req.UserID, "user_id"); err != nil {
		return nil, err
	}
	for name, value := range req.PathParams {
		if !identifierParam(name) {
			continue
		}
		if _, err := ValidateIdentifier(value, name); err != nil {
			return nil, err
		}
	}

	target, err := c.table.Rewrite(req.Method, req.LogicalPath, req.PathParams)
	if err != nil {
		// Missing template parameter: a programming bug in the caller, but
		// the façade contract still returns an envelope rather than failing.
		log.Error().Err(err).
			Str("method", string(req.Method)).
			Str("path", req.LogicalPath).
			Msg("route rewrite failed")
		return errorResponse(malformedResponse(err.Error(), err)), nil
	}

	placement := rewrite.Place(target, req.Method, req.UserID, req.Body, req.Query)

	var body []byte
	if placement.Body != nil {
		body, err = json.Marshal(placement.Body)
		if err != nil {
			return errorResponse(malformedResponse("encoding request body", err)), nil
		}
	}

	res, gwErr := c.transport.do(ctx, string(target.Method), target.Path, encodeQuery(placement.Query), body)
	if gwErr != nil {
		log.Error().
			Str("method", string(target.Method)).
			Str("path", target.Path).
			Str("kind", gwErr.Kind.String()).
			Bool("retryable", gwErr.Retryable).
			Err(gwErr.Err).
			Msg("upstream call failed")
		return errorResponse(gwErr), nil
	}
	return c.buildResponse(res), nil
}

// buildResponse turns a completed round trip into the caller envelope.
func (c *Client) buildResponse(res *transportResult) *CallResponse {
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return errorResponse(upstreamError(res))
	}

	if !gjson.ValidBytes(res.Body) {
		return errorResponse(malformedResponse(
			fmt.Sprintf("upstream returned non-JSON body: %s", truncate(res.Body)), nil))
	}
	parsed := gjson.ParseBytes(res.Body)

	code := 200
	message := "success"
	dataRaw := res.Body

	// Some upstream endpoints already wrap their payload in a
	// {code, success, message, data} envelope. The business code and
	// message pass through; only data is adapted.
	if parsed.IsObject() && parsed.Get("data").Exists() &&
		(parsed.Get("code").Exists() || parsed.Get("success").Exists()) {
		if v := parsed.Get("code"); v.Exists() {
			code = int(v.Int())
		}
		if v := parsed.Get("message"); v.Exists() {
			message = v.String()
		}
		dataRaw = []byte(parsed.Get("data").Raw)
	}

	adapted, err := adapters.AdaptData(dataRaw)
	if err != nil {
		return errorResponse(malformedResponse(
			fmt.Sprintf("adapting upstream payload: %s", truncate(dataRaw)), err))
	}

	return &CallResponse{
		Code:    code,
		Success: code >= 200 && code <= 299,
		Message: message,
		Data:    adapted,
	}
}

// upstreamError extracts the business code and message from an error body.
// The upstream is authoritative for its own business codes: when the body
// carries one, it passes through verbatim.
func upstreamError(res *transportResult) *GatewayError {
	businessCode := 0
	message := ""
	if gjson.ValidBytes(res.Body) {
		parsed := gjson.ParseBytes(res.Body)
		if v := parsed.Get("code"); v.Exists() {
			businessCode = int(v.Int())
		}
		for _, key := range []string{"message", "detail", "error"} {
			if v := parsed.Get(key); v.Exists() && v.Type == gjson.String {
				message = v.String()
				break
			}
		}
	}
	if message == "" {
		message = truncate(res.Body)
	}
	return upstreamHTTP(res.StatusCode, businessCode, message)
}

// errorResponse folds a gateway failure into the caller envelope.
func errorResponse(e *GatewayError) *CallResponse {
	var code int
	message := e.Message
	switch e.Kind {
	case KindConnectionFailed:
		code = http.StatusServiceUnavailable
		message = "task service unavailable"
	case KindTimeout:
		code = http.StatusGatewayTimeout
		message = "task service timed out"
	case KindUpstreamHTTP:
		if e.BusinessCode != 0 {
			code = e.BusinessCode
		} else {
			// HTTP statuses map through verbatim (400, 401, 403, 404,
			// 409, 422, and the rest alike).
			code = e.StatusCode
		}
	default:
		code = http.StatusInternalServerError
		if message == "" {
			message = e.Error()
		}
	}
	return &CallResponse{Code: code, Success: false, Message: message, Data: nil}
}

// encodeQuery serializes placement query fields. Scalars keep their JSON
// literal form without quotes; anything structured is JSON-encoded.
func encodeQuery(q map[string]any) url.Values {
	vals := url.Values{}
	for k, v := range q {
		switch t := v.(type) {
		case nil:
			continue
		case string:
			vals.Set(k, t)
		case bool:
			vals.Set(k, strconv.FormatBool(t))
		case int:
			vals.Set(k, strconv.Itoa(t))
		case int64:
			vals.Set(k, strconv.FormatInt(t, 10))
		case float64:
			vals.Set(k, strconv.FormatFloat(t, 'f', -1, 64))
		default:
			b, err := json.Marshal(v)
			if err != nil {
				continue
			}
			vals.Set(k, string(b))
		}
	}
	return vals
}

func truncate(body []byte) string {
	if len(body) > config.MaxErrorBodyLen {
		return string(body[:config.MaxErrorBodyLen]) + "..."
	}
	return string(body)
}
