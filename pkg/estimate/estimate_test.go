// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package estimate

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-core-stack/estimate-gateway/pkg/apperr"
	"github.com/go-core-stack/estimate-gateway/pkg/config"
	"github.com/go-core-stack/estimate-gateway/pkg/flow"
)

type captured struct {
	method  string
	query   url.Values
	body    []byte
	hasBody bool
}

func newService(t *testing.T, cfg config.Config, status int, reply string) (*Service, *captured, *int32) {
	t.Helper()
	var calls int32
	got := &captured{}
	client := flow.New(cfg, flow.WithTransport(roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		atomic.AddInt32(&calls, 1)
		got.method = req.Method
		got.query = req.URL.Query()
		if req.Body != nil {
			body, err := io.ReadAll(req.Body)
			if err != nil {
				return nil, err
			}
			got.body = body
			got.hasBody = len(body) > 0
		}
		return &http.Response{
			StatusCode: status,
			Header:     make(http.Header),
			Body:       io.NopCloser(strings.NewReader(reply)),
		}, nil
	})))
	return NewService(cfg, client), got, &calls
}

func baseConfig(t *testing.T) config.Config {
	t.Helper()
	register, err := url.Parse("https://flows.example.com/register?sig=abc")
	require.NoError(t, err)
	list, err := url.Parse("https://flows.example.com/list")
	require.NoError(t, err)
	return config.Config{
		RegisterFlowURL: register,
		ListFlowURL:     list,
		FlowKeyParam:    "sig",
		ListFlowMethod:  http.MethodPost,
		RequestTimeout:  time.Second,
	}
}

func float(v float64) *float64 { return &v }

func text(v string) *string { return &v }

func TestRegisterRejectsMissingFieldsWithoutCallingFlow(t *testing.T) {
	tests := []struct {
		name string
		req  Request
	}{
		{name: "missing_customer", req: Request{ProjectName: "Roof"}},
		{name: "missing_project", req: Request{CustomerName: "Acme"}},
		{name: "blank_customer", req: Request{CustomerName: "  ", ProjectName: "Roof"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, calls := newService(t, baseConfig(t), http.StatusOK, `{}`)

			_, err := svc.Register(context.Background(), tt.req)

			assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
			assert.Equal(t, apperr.TitleMissingFields, apperr.From(err).Title)
			assert.Zero(t, atomic.LoadInt32(calls))
		})
	}
}

func TestRegisterForwardsRequest(t *testing.T) {
	svc, got, calls := newService(t, baseConfig(t), http.StatusAccepted, `{"id":"run-1"}`)

	flowResp, err := svc.Register(context.Background(), Request{
		CustomerName: "Acme",
		ProjectName:  "Roof",
		Quantity:     float(3),
		UnitPrice:    float(12.5),
	})
	require.NoError(t, err)

	assert.EqualValues(t, 1, atomic.LoadInt32(calls))
	assert.Equal(t, http.MethodPost, got.method)
	assert.Equal(t, "abc", got.query.Get("sig"))
	assert.JSONEq(t, `{"CustomerName":"Acme","ProjectName":"Roof","Quantity":3,"UnitPrice":12.5}`, string(got.body))
	assert.Equal(t, map[string]any{"id": "run-1"}, flowResp)
}

func TestRegisterKeepsEmptyOptionalFields(t *testing.T) {
	svc, got, _ := newService(t, baseConfig(t), http.StatusOK, `{}`)

	_, err := svc.Register(context.Background(), Request{
		CustomerName: "Acme",
		ProjectName:  "Roof",
		Requester:    text(""),
		WorkType:     text("Repair"),
	})
	require.NoError(t, err)

	assert.JSONEq(t, `{"CustomerName":"Acme","ProjectName":"Roof","Requester":"","WorkType":"Repair"}`, string(got.body))
}

func TestRegisterUpstreamFailure(t *testing.T) {
	svc, _, _ := newService(t, baseConfig(t), http.StatusBadRequest, `{"error":{"code":"InvalidTemplate"}}`)

	_, err := svc.Register(context.Background(), Request{CustomerName: "Acme", ProjectName: "Roof"})

	appErr := apperr.From(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperr.KindGateway, appErr.Kind)
	assert.Equal(t, http.StatusBadRequest, appErr.UpstreamStatus)
}

func TestRegisterMissingConfiguration(t *testing.T) {
	cfg := baseConfig(t)
	cfg.RegisterFlowURL = nil
	svc, _, calls := newService(t, cfg, http.StatusOK, `{}`)

	_, err := svc.Register(context.Background(), Request{CustomerName: "Acme", ProjectName: "Roof"})

	assert.Equal(t, apperr.KindConfiguration, apperr.KindOf(err))
	assert.Zero(t, atomic.LoadInt32(calls))
}

func TestRegisterToleratesNonJSONSuccess(t *testing.T) {
	svc, _, _ := newService(t, baseConfig(t), http.StatusOK, `accepted`)

	flowResp, err := svc.Register(context.Background(), Request{CustomerName: "Acme", ProjectName: "Roof"})

	require.NoError(t, err)
	assert.Nil(t, flowResp)
}

func TestListGetIsRelayedAsPost(t *testing.T) {
	svc, got, _ := newService(t, baseConfig(t), http.StatusOK, `{"value":[{"a":1}]}`)

	result, err := svc.List(context.Background(), FilterQuery("acme", "10"), nil)
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, got.method)
	assert.Equal(t, `{}`, string(got.body))
	assert.Equal(t, "acme", got.query.Get("filter"))
	assert.Equal(t, "10", got.query.Get("limit"))

	assert.True(t, result.IsList)
	assert.Equal(t, 1, result.Count())
	assert.Equal(t, []any{map[string]any{"a": json.Number("1")}}, result.Data)
	assert.Equal(t, map[string]any{"value": []any{map[string]any{"a": json.Number("1")}}}, result.Raw)
}

func TestListGetMethod(t *testing.T) {
	cfg := baseConfig(t)
	cfg.ListFlowMethod = http.MethodGet
	svc, got, _ := newService(t, cfg, http.StatusOK, `[{"a":1},{"a":2}]`)

	result, err := svc.List(context.Background(), nil, nil)
	require.NoError(t, err)

	assert.Equal(t, http.MethodGet, got.method)
	assert.False(t, got.hasBody)
	assert.Equal(t, 2, result.Count())
}

func TestListPostForwardsBody(t *testing.T) {
	svc, got, _ := newService(t, baseConfig(t), http.StatusOK, `{"foo":"bar"}`)

	result, err := svc.List(context.Background(), nil, map[string]any{"filter": "acme"})
	require.NoError(t, err)

	assert.JSONEq(t, `{"filter":"acme"}`, string(got.body))
	assert.False(t, result.IsList)
	assert.Equal(t, -1, result.Count())
	assert.Equal(t, map[string]any{"foo": "bar"}, result.Data)
}

func TestListInvalidJSON(t *testing.T) {
	svc, _, _ := newService(t, baseConfig(t), http.StatusOK, `<html></html>`)

	_, err := svc.List(context.Background(), nil, nil)

	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
}

func TestListTransportFailure(t *testing.T) {
	cfg := baseConfig(t)
	client := flow.New(cfg, flow.WithTransport(roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		return nil, errors.New("no route to host")
	})))

	_, err := NewService(cfg, client).List(context.Background(), nil, nil)

	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
}

func TestFilterQuery(t *testing.T) {
	assert.Empty(t, FilterQuery(" ", ""))
	assert.Equal(t, url.Values{"filter": {"x"}}, FilterQuery(" x ", ""))
}

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}
