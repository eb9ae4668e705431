// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package proxy

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/go-core-stack/estimate-gateway/pkg/apperr"
	"github.com/go-core-stack/estimate-gateway/pkg/estimate"
	"github.com/go-core-stack/estimate-gateway/pkg/web"
)

// maxRequestBody bounds inbound JSON bodies.
const maxRequestBody = 1 << 20

// timestampLayout matches JavaScript's Date.toISOString.
const timestampLayout = "2006-01-02T15:04:05.000Z"

// Gateway serves the estimate API and pages.
type Gateway struct {
	// estimates performs the flow relays.
	estimates *estimate.Service
	// logger emits structured logs for observability.
	logger zerolog.Logger
	// router dispatches inbound requests.
	router *mux.Router
	// now stamps list responses.
	now func() time.Time
}

// New constructs a Gateway routing the API and pages onto svc.
func New(svc *estimate.Service) (http.Handler, error) {
	if svc == nil {
		return nil, errors.New("proxy: nil estimate service")
	}

	g := &Gateway{
		estimates: svc,
		logger:    log.With().Str("component", "proxy").Logger(),
		router:    mux.NewRouter(),
		now: func() time.Time {
			return time.Now().UTC()
		},
	}

	pages, err := web.New(svc)
	if err != nil {
		return nil, err
	}

	g.router.Use(requestLogger(g.logger))

	api := g.router.PathPrefix("/api").Subrouter()
	api.Use(allowCORS)
	api.HandleFunc("/register", g.handleRegister).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/powerapp", g.handleList).Methods(http.MethodGet, http.MethodPost, http.MethodOptions)

	// mux skips middleware on a method mismatch, so the 405 handlers carry
	// their own chain.
	notAllowed := http.HandlerFunc(g.handleMethodNotAllowed)
	api.MethodNotAllowedHandler = requestLogger(g.logger)(allowCORS(notAllowed))
	g.router.MethodNotAllowedHandler = requestLogger(g.logger)(notAllowed)

	g.router.HandleFunc("/healthz", g.handleHealth).Methods(http.MethodGet)
	pages.Register(g.router)

	return g, nil
}

// ServeHTTP dispatches to the router.
func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	g.router.ServeHTTP(w, r)
}

type registerResponse struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	FlowResponse any    `json:"flowResponse"`
}

type listResponse struct {
	Success   bool   `json:"success"`
	Data      any    `json:"data"`
	Raw       any    `json:"raw"`
	Count     *int   `json:"count,omitempty"`
	Timestamp string `json:"timestamp"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

type gatewayErrorResponse struct {
	errorResponse
	Status       int `json:"status"`
	FlowResponse any `json:"flowResponse"`
}

// handleRegister forwards an estimate to the register flow.
func (g *Gateway) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req estimate.Request
	if err := decodeBody(r, &req); err != nil {
		g.writeError(w, r, err)
		return
	}

	flowResp, err := g.estimates.Register(r.Context(), req)
	if err != nil {
		g.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, registerResponse{
		Success:      true,
		Message:      estimate.RegisteredMessage,
		FlowResponse: flowResp,
	})
}

// handleList relays a list query. GET passes its filter and limit through
// the query string; POST forwards its JSON body.
func (g *Gateway) handleList(w http.ResponseWriter, r *http.Request) {
	var body any
	if r.Method == http.MethodPost {
		if err := decodeBody(r, &body); err != nil {
			g.writeError(w, r, err)
			return
		}
		if body == nil {
			body = map[string]any{}
		}
	}

	result, err := g.estimates.List(r.Context(), r.URL.Query(), body)
	if err != nil {
		g.writeError(w, r, err)
		return
	}

	resp := listResponse{
		Success:   true,
		Data:      result.Data,
		Raw:       result.Raw,
		Timestamp: g.now().Format(timestampLayout),
	}
	if result.IsList {
		count := result.Count()
		resp.Count = &count
	}
	writeJSON(w, http.StatusOK, resp)
}

func (g *Gateway) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (g *Gateway) handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	g.logger.Warn().
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Msg("method not allowed")
	writeJSON(w, http.StatusMethodNotAllowed, errorResponse{
		Success: false,
		Error:   "Method not allowed",
		Message: r.Method + " is not supported on " + r.URL.Path,
	})
}

// writeError converts err into the failure envelope.
func (g *Gateway) writeError(w http.ResponseWriter, r *http.Request, err error) {
	appErr := apperr.From(err)
	status := appErr.Status()

	level := zerolog.WarnLevel
	if status >= http.StatusInternalServerError && appErr.Kind != apperr.KindGateway {
		level = zerolog.ErrorLevel
	}
	g.logger.WithLevel(level).
		Err(err).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Str("kind", string(appErr.Kind)).
		Int("status", status).
		Msg("request failed")

	base := errorResponse{
		Success: false,
		Error:   appErr.Title,
		Message: appErr.Message,
	}
	if appErr.Kind == apperr.KindGateway {
		writeJSON(w, status, gatewayErrorResponse{
			errorResponse: base,
			Status:        appErr.UpstreamStatus,
			FlowResponse:  appErr.UpstreamPayload,
		})
		return
	}
	writeJSON(w, status, base)
}

// decodeBody reads a single JSON value from the request body into v.
func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return apperr.InvalidRequest(err)
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return apperr.InvalidRequest(errors.New("unexpected data after JSON body"))
	}
	return nil
}

// writeJSON writes v as a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
