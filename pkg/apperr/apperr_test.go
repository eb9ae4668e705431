// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantKind Kind
	}{
		{name: "nil", err: nil, wantCode: http.StatusOK, wantKind: ""},
		{name: "missing_fields", err: MissingFields("x"), wantCode: http.StatusBadRequest, wantKind: KindValidation},
		{name: "invalid_request", err: InvalidRequest(errors.New("eof")), wantCode: http.StatusBadRequest, wantKind: KindValidation},
		{name: "configuration", err: Configuration("POWERAPP_FLOW_URL"), wantCode: http.StatusInternalServerError, wantKind: KindConfiguration},
		{name: "gateway", err: Gateway(503, nil), wantCode: http.StatusBadGateway, wantKind: KindGateway},
		{name: "internal", err: Internal("boom", nil), wantCode: http.StatusInternalServerError, wantKind: KindInternal},
		{name: "wrapped", err: fmt.Errorf("call flow: %w", Gateway(404, "nope")), wantCode: http.StatusBadGateway, wantKind: KindGateway},
		{name: "unknown", err: errors.New("plain"), wantCode: http.StatusInternalServerError, wantKind: KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HTTPStatus(tt.err); got != tt.wantCode {
				t.Errorf("HTTPStatus() = %d, want %d", got, tt.wantCode)
			}
			if got := KindOf(tt.err); got != tt.wantKind {
				t.Errorf("KindOf() = %q, want %q", got, tt.wantKind)
			}
		})
	}
}

func TestGatewayCarriesUpstreamDetails(t *testing.T) {
	err := Gateway(http.StatusForbidden, map[string]any{"error": "denied"})

	if err.UpstreamStatus != http.StatusForbidden {
		t.Fatalf("upstream status = %d", err.UpstreamStatus)
	}
	if err.Title != TitleFlowFailed {
		t.Fatalf("title = %q", err.Title)
	}
	if err.Message != "flow returned status 403" {
		t.Fatalf("message = %q", err.Message)
	}
}

func TestFromUnwrapsCause(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := fmt.Errorf("list estimates: %w", Internal("call flow", cause))

	if !errors.Is(err, cause) {
		t.Fatal("expected cause to be reachable through errors.Is")
	}
	if got := From(err).Message; got != "call flow" {
		t.Fatalf("message = %q", got)
	}
}
