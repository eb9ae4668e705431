// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

// Package estimate implements the two gateway operations: registering an
// estimate with the register flow and listing estimates through the list
// flow. Both are single relays; nothing is stored locally.
package estimate

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-core-stack/estimate-gateway/pkg/apperr"
	"github.com/go-core-stack/estimate-gateway/pkg/config"
	"github.com/go-core-stack/estimate-gateway/pkg/flow"
	"github.com/go-core-stack/estimate-gateway/pkg/normalize"
)

// RegisteredMessage is returned after the register flow accepted a record.
const RegisteredMessage = "Data successfully added to Estimates."

// Request is an estimate submitted for registration. Field names match the
// schema of the register flow trigger. Optional fields are pointers so a
// submitted empty value is forwarded while an absent one is omitted.
type Request struct {
	CustomerName  string   `json:"CustomerName"`
	ProjectName   string   `json:"ProjectName"`
	Requester     *string  `json:"Requester,omitempty"`
	CustomerEmail *string  `json:"CustomerEmail,omitempty"`
	WorkType      *string  `json:"WorkType,omitempty"`
	Quantity      *float64 `json:"Quantity,omitempty"`
	Unit          *string  `json:"Unit,omitempty"`
	UnitPrice     *float64 `json:"UnitPrice,omitempty"`
	Subtotal      *float64 `json:"Subtotal,omitempty"`
	Tax           *float64 `json:"Tax,omitempty"`
}

// Validate checks the required fields.
func (r Request) Validate() error {
	if strings.TrimSpace(r.CustomerName) == "" || strings.TrimSpace(r.ProjectName) == "" {
		return apperr.MissingFields("CustomerName and ProjectName are required")
	}
	return nil
}

// ListResult is the normalized answer of the list flow.
type ListResult struct {
	// Data is the extracted record list, or Raw when the payload is not
	// list-shaped.
	Data any
	Raw  any
	// Items is set when Data is a list.
	Items  []any
	IsList bool
}

// Count returns the number of records, or -1 when Data is not a list.
func (r *ListResult) Count() int {
	if !r.IsList {
		return -1
	}
	return len(r.Items)
}

// Service performs estimate operations against the configured flows.
type Service struct {
	cfg  config.Config
	flow *flow.Client
}

// NewService binds the flows from cfg to client.
func NewService(cfg config.Config, client *flow.Client) *Service {
	return &Service{cfg: cfg, flow: client}
}

// Register validates req and forwards it to the register flow, returning the
// decoded flow answer. Invalid requests never reach the flow.
func (s *Service) Register(ctx context.Context, req Request) (any, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	resp, err := s.flow.Call(ctx, flow.Request{
		Target:  s.cfg.RegisterFlowURL,
		Setting: config.SettingRegisterFlowURL,
		Method:  http.MethodPost,
		Body:    req,
	})
	if err != nil {
		return nil, err
	}
	return resp.Payload, nil
}

// List relays a list call with query merged onto the list flow URL. A nil
// body marks a GET-originated call, which is sent with the configured list
// method; POST calls forward body unchanged.
func (s *Service) List(ctx context.Context, query url.Values, body any) (*ListResult, error) {
	req := flow.Request{
		Target:  s.cfg.ListFlowURL,
		Setting: config.SettingListFlowURL,
		Method:  http.MethodPost,
		Query:   query,
		Body:    body,
	}
	if body == nil {
		req.Method = s.cfg.ListFlowMethod
		if req.Method != http.MethodGet {
			req.Method = http.MethodPost
			req.Body = map[string]any{}
		}
	}

	resp, err := s.flow.Call(ctx, req)
	if err != nil {
		return nil, err
	}
	if resp.DecodeErr != nil {
		return nil, apperr.Internal("flow returned invalid JSON", resp.DecodeErr)
	}

	result := &ListResult{Data: resp.Payload, Raw: resp.Payload}
	if items, ok := normalize.Items(resp.Payload); ok {
		result.Data = items
		result.Items = items
		result.IsList = true
	}
	return result, nil
}

// FilterQuery keeps the non-empty list parameters understood by the list
// flow.
func FilterQuery(filter, limit string) url.Values {
	query := url.Values{}
	if f := strings.TrimSpace(filter); f != "" {
		query.Set("filter", f)
	}
	if l := strings.TrimSpace(limit); l != "" {
		query.Set("limit", l)
	}
	return query
}
