// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package flow

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/go-core-stack/estimate-gateway/pkg/apperr"
	"github.com/go-core-stack/estimate-gateway/pkg/auth"
	"github.com/go-core-stack/estimate-gateway/pkg/config"
)

// maxResponseBody bounds how much of a flow answer is read into memory.
const maxResponseBody = 8 << 20

// Request describes one outbound flow call.
type Request struct {
	// Target is the configured trigger URL; nil means it is not configured.
	Target *url.URL
	// Setting names the configuration entry Target came from.
	Setting string
	Method  string
	Query   url.Values
	// Body is serialized as JSON when non-nil.
	Body any
}

// Response is the decoded answer of a flow.
type Response struct {
	Status int
	// Payload holds the decoded JSON value with numbers kept as json.Number.
	// It is nil when the body is empty or not valid JSON.
	Payload any
	Raw     []byte
	// DecodeErr is set when a non-empty body is not valid JSON.
	DecodeErr error
}

// OK reports whether the flow answered with a 2xx status.
func (r *Response) OK() bool {
	return r.Status >= http.StatusOK && r.Status < http.StatusMultipleChoices
}

// Diagnostic returns the payload to echo back on failure: the decoded value,
// or the raw text when the body was not JSON.
func (r *Response) Diagnostic() any {
	if r.Payload != nil || r.DecodeErr == nil {
		return r.Payload
	}
	return string(r.Raw)
}

// Option customizes a Client.
type Option func(*Client)

// WithTransport replaces the HTTP transport, mainly for tests.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		c.client.Transport = rt
	}
}

// Client performs flow calls over a pooled HTTP client.
type Client struct {
	client *http.Client
	signer *auth.KeySigner
	logger zerolog.Logger
}

// New constructs a Client from the runtime configuration.
func New(cfg config.Config, opts ...Option) *Client {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: 30 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: cfg.InsecureSkipVerify, // nolint:gosec -- opt-in for development scenarios
		},
	}

	c := &Client{
		client: &http.Client{
			Timeout:   cfg.RequestTimeout,
			Transport: transport,
		},
		signer: auth.NewKeySigner(cfg.FlowKey, cfg.FlowKeyParam),
		logger: log.With().Str("component", "flow").Logger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Call performs req and returns the decoded answer. A non-2xx answer is
// returned together with an apperr gateway error so callers can still
// inspect it.
func (c *Client) Call(ctx context.Context, req Request) (*Response, error) {
	if req.Target == nil {
		return nil, apperr.Configuration(req.Setting)
	}

	target := BuildURL(req.Target, req.Query)
	c.signer.Sign(target)

	var body io.Reader
	if req.Body != nil {
		encoded, err := json.Marshal(req.Body)
		if err != nil {
			return nil, apperr.Internal("encode flow request", err)
		}
		body = bytes.NewReader(encoded)
	}

	method := req.Method
	if method == "" {
		method = http.MethodPost
	}

	upstreamReq, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return nil, apperr.Internal("build flow request", err)
	}
	upstreamReq.Header.Set("Content-Type", "application/json")
	upstreamReq.Header.Set("Accept", "application/json")
	upstreamReq.Header.Set("Cache-Control", "no-cache")

	event := c.logger.With().
		Str("method", method).
		Str("flow_host", target.Host).
		Str("flow_path", target.Path).
		Logger()

	start := time.Now()
	resp, err := c.client.Do(upstreamReq)
	if err != nil {
		event.Error().Err(err).Dur("duration", time.Since(start)).Msg("flow request failed")
		return nil, apperr.Internal(describeTransportError(err), err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			event.Error().Err(closeErr).Msg("close flow response body failed")
		}
	}()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, apperr.Internal("read flow response", err)
	}

	out := &Response{Status: resp.StatusCode, Raw: raw}
	out.Payload, out.DecodeErr = decode(raw)

	if !out.OK() {
		event.Warn().
			Int("status", resp.StatusCode).
			Bytes("upstream_body", truncate(raw, 64*1024)).
			Dur("duration", time.Since(start)).
			Msg("flow returned error")
		return out, apperr.Gateway(resp.StatusCode, out.Diagnostic())
	}

	event.Debug().
		Int("status", resp.StatusCode).
		Int("bytes", len(raw)).
		Dur("duration", time.Since(start)).
		Msg("flow call completed")
	return out, nil
}

// BuildURL returns a copy of base with query merged over its own parameters.
func BuildURL(base *url.URL, query url.Values) *url.URL {
	clone := *base
	if len(query) == 0 {
		return &clone
	}
	merged := clone.Query()
	for k, vv := range query {
		merged[k] = append([]string(nil), vv...)
	}
	clone.RawQuery = merged.Encode()
	return &clone
}

// decode parses raw as JSON, keeping numbers as json.Number so that large or
// precise values survive the relay unchanged.
func decode(raw []byte) (any, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("decode flow response: %w", err)
	}
	if err := dec.Decode(new(any)); err != io.EOF {
		return nil, errors.New("decode flow response: trailing data")
	}
	return v, nil
}

func describeTransportError(err error) string {
	switch {
	case errors.Is(err, context.Canceled):
		return "flow request canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return "flow request timed out"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "flow request timed out"
	}
	return "flow request failed"
}

func truncate(b []byte, n int) []byte {
	if len(b) <= n {
		return b
	}
	return b[:n]
}
