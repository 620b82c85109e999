package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/posbok/storefront/pkg/config"
	pkgerrors "github.com/posbok/storefront/pkg/errors"
	"github.com/posbok/storefront/pkg/logger"
	"github.com/posbok/storefront/pkg/metrics"
)

const sessionHeader = "x-session-id"

var (
	errSessionsRequired = errors.New("gateway: session provider is required")
	errBaseURLRequired  = errors.New("gateway: upstream base url is required")
)

type sessionProvider interface {
	GetOrCreate(ctx context.Context) string
}

// Client talks to the remote POSBOK business API. It attaches the anonymous
// session identity to cart calls and decodes the success/error envelope
// uniformly, mapping failures to typed errors.
type Client struct {
	baseURL  string
	http     *http.Client
	sessions sessionProvider
	logg     *logger.Logger
	metrics  *metrics.UpstreamMetrics
}

// NewClient validates the configuration and builds the upstream client.
func NewClient(cfg config.UpstreamConfig, sessions sessionProvider, logg *logger.Logger, m *metrics.UpstreamMetrics) (*Client, error) {
	if sessions == nil {
		return nil, errSessionsRequired
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errBaseURLRequired
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:  baseURL,
		http:     &http.Client{Timeout: timeout},
		sessions: sessions,
		logg:     logg,
		metrics:  m,
	}, nil
}

// SessionID exposes the identity the client attaches to cart calls.
func (c *Client) SessionID(ctx context.Context) string {
	return c.sessions.GetOrCreate(ctx)
}

type request struct {
	operation   string
	method      string
	path        string
	body        any
	withSession bool
}

// doEnvelope performs the request and unwraps the envelope's data field.
func (c *Client) doEnvelope(ctx context.Context, req request, out any) error {
	env, err := c.do(ctx, req)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if len(env.Data) == 0 {
		return pkgerrors.New(pkgerrors.CodeDependency, "upstream response missing data")
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decoding upstream data")
	}
	return nil
}

// doBody performs the request and decodes the whole response body. A few
// endpoints (reviews) skip the data wrapper; the dual success check still
// applies.
func (c *Client) doBody(ctx context.Context, req request, out any) error {
	raw, err := c.doRaw(ctx, req)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decoding upstream response")
	}
	return nil
}

func (c *Client) do(ctx context.Context, req request) (*envelope, error) {
	raw, err := c.doRaw(ctx, req)
	if err != nil {
		return nil, err
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decoding upstream envelope")
	}
	return &env, nil
}

func (c *Client) doRaw(ctx context.Context, req request) ([]byte, error) {
	start := time.Now()
	raw, err := c.roundTrip(ctx, req)
	c.metrics.ObserveDuration(req.operation, time.Since(start))
	if err != nil {
		code := string(pkgerrors.CodeDependency)
		if typed := pkgerrors.As(err); typed != nil {
			code = string(typed.Code())
		}
		c.metrics.IncFailure(req.operation, code)
		if c.logg != nil {
			opCtx := c.logg.WithOperation(ctx, req.operation)
			c.logg.Warn(opCtx, "upstream request failed: "+err.Error())
		}
		return nil, err
	}
	c.metrics.IncSuccess(req.operation)
	return raw, nil
}

func (c *Client) roundTrip(ctx context.Context, req request) ([]byte, error) {
	var body io.Reader
	if req.body != nil {
		payload, err := json.Marshal(req.body)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding request body")
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, c.baseURL+req.path, body)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "building upstream request")
	}
	if req.body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if req.withSession {
		httpReq.Header.Set(sessionHeader, c.sessions.GetOrCreate(ctx))
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upstream unreachable")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reading upstream response")
	}

	// The backend sometimes signals business failure with HTTP 200, so a
	// 2xx status alone is not success: the body's flag is checked too.
	var probe envelope
	decodable := json.Unmarshal(raw, &probe) == nil

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		message := probe.Message
		if !decodable || message == "" {
			message = fmt.Sprintf("request failed with status %d", resp.StatusCode)
		}
		return nil, pkgerrors.New(codeForStatus(resp.StatusCode), message).WithStatus(resp.StatusCode)
	}

	if !decodable {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "upstream returned non-JSON response").WithStatus(resp.StatusCode)
	}

	if probe.Success != nil && !*probe.Success {
		message := probe.Message
		if message == "" {
			message = "request failed"
		}
		return nil, pkgerrors.New(pkgerrors.CodeBusiness, message).WithStatus(resp.StatusCode)
	}

	return raw, nil
}

func codeForStatus(status int) pkgerrors.Code {
	switch {
	case status == http.StatusNotFound:
		return pkgerrors.CodeNotFound
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		return pkgerrors.CodeValidation
	case status >= 500:
		return pkgerrors.CodeDependency
	default:
		return pkgerrors.CodeBusiness
	}
}
