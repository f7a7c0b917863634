// Package gateway is the typed HTTP client of the ticket service.
//
// Every call resolves a bearer credential first and fails with
// errorutil.ErrUnauthenticated, without touching the network, when none is
// available. Responses use the {success, data} envelope; anything else is a
// *errorutil.RemoteError. Network failures are *errorutil.TransportError.
package gateway

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-console/internal/auth"
	"github.com/spec-kit/ticket-console/internal/observability"
	apperrors "github.com/spec-kit/ticket-console/pkg/util/errorutil"
)

// Options configures a Client.
type Options struct {
	// BaseURL is the ticket service root, e.g. "http://localhost:8000".
	BaseURL string
	// Timeout bounds each call. Zero leaves only the caller's context.
	Timeout time.Duration
	// Tokens supplies the bearer credential. Required.
	Tokens auth.TokenProvider

	Logger  *zap.Logger
	Metrics *observability.Metrics

	// Transport replaces the default HTTP transport. Tests use it to stub the network.
	Transport http.RoundTripper
	// Now is the clock used for fallback export filenames. Defaults to time.Now.
	Now func() time.Time
}

// Client talks to the ticket service.
type Client struct {
	http    *resty.Client
	tokens  auth.TokenProvider
	logger  *zap.Logger
	metrics *observability.Metrics
	now     func() time.Time
}

// New constructs a Client from opts.
func New(opts Options) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("gateway: base URL is required")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, errors.New("gateway: invalid base URL " + baseURL)
	}
	if opts.Tokens == nil {
		return nil, errors.New("gateway: token provider is required")
	}

	logger := observability.OrNop(opts.Logger).Named("gateway")
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	rc := resty.New().
		SetBaseURL(baseURL).
		SetLogger(logger.Sugar()).
		SetHeader("Accept", "application/json")
	if opts.Timeout > 0 {
		rc.SetTimeout(opts.Timeout)
	}
	if opts.Transport != nil {
		rc.SetTransport(opts.Transport)
	}

	return &Client{
		http:    rc,
		tokens:  opts.Tokens,
		logger:  logger,
		metrics: opts.Metrics,
		now:     now,
	}, nil
}

// request describes one call. Route is the path template used as the metrics label.
type request struct {
	Method string
	Route  string
	Path   string
	Query  url.Values
	Body   any
}

// send executes r and returns the raw response regardless of status code.
func (c *Client) send(ctx context.Context, r request) (*resty.Response, error) {
	token, ok := c.tokens.AccessToken(ctx)
	if !ok {
		return nil, apperrors.ErrUnauthenticated
	}

	requestID := uuid.NewString()
	req := c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetHeader(observability.RequestIDHeader, requestID)
	if len(r.Query) > 0 {
		req.SetQueryParamsFromValues(r.Query)
	}
	if r.Body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(r.Body)
	}

	start := time.Now()
	resp, err := req.Execute(r.Method, r.Path)
	elapsed := time.Since(start)
	if err != nil {
		c.metrics.RecordError(r.Route, r.Method, "transport")
		c.logger.Warn("call failed",
			zap.String("method", r.Method),
			zap.String("path", r.Path),
			zap.String("request_id", requestID),
			zap.Duration("duration", elapsed),
			zap.Error(err))
		return nil, &apperrors.TransportError{Op: r.Method + " " + r.Path, Err: err}
	}

	c.metrics.RecordRequest(r.Route, r.Method, resp.StatusCode(), elapsed)
	c.logger.Debug("call",
		zap.String("method", r.Method),
		zap.String("path", r.Path),
		zap.Int("status", resp.StatusCode()),
		zap.String("request_id", requestID),
		zap.Duration("duration", elapsed))
	return resp, nil
}

// call executes r and checks the envelope. The returned envelope is successful.
func (c *Client) call(ctx context.Context, r request) (envelope, error) {
	resp, err := c.send(ctx, r)
	if err != nil {
		return envelope{}, err
	}
	env := parseEnvelope(resp.Body())
	if !resp.IsSuccess() || !env.Success {
		remote := apperrors.NewRemoteError(resp.StatusCode(), env.errorMessage(), requestIDOf(resp))
		c.metrics.RecordError(r.Route, r.Method, "remote")
		c.logger.Warn("call rejected",
			zap.String("method", r.Method),
			zap.String("path", r.Path),
			zap.Int("status", resp.StatusCode()),
			zap.String("request_id", remote.RequestID),
			zap.String("message", remote.Message))
		return envelope{}, remote
	}
	env.status = resp.StatusCode()
	return env, nil
}

// callInto executes r and decodes the envelope data into out. A nil out discards the data.
func (c *Client) callInto(ctx context.Context, r request, out any) error {
	env, err := c.call(ctx, r)
	if err != nil {
		return err
	}
	return env.decode(r.Route, out)
}

func requestIDOf(resp *resty.Response) string {
	if id := resp.Header().Get(observability.RequestIDHeader); id != "" {
		return id
	}
	if resp.Request != nil {
		return resp.Request.Header.Get(observability.RequestIDHeader)
	}
	return ""
}

// segment escapes one path segment.
func segment(s string) string {
	return url.PathEscape(s)
}
