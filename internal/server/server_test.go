package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/agbru/mpicalc/internal/calc"
	apperrors "github.com/agbru/mpicalc/internal/errors"
)

func newTestServer(opts ...Option) *Server {
	opts = append([]Option{WithLogger(newTestLogger())}, opts...)
	return NewServer("127.0.0.1:0", calc.NewDefaultFactory(), opts...)
}

func post(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", "/v1/eval", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandleEval_Success(t *testing.T) {
	t.Parallel()
	h := newTestServer().Handler()

	tests := []struct {
		name string
		body string
		want EvalResponse
	}{
		{
			name: "default backend",
			body: `{"expr": "x = 6; x * 7"}`,
			want: EvalResponse{Result: "42", Bits: 6, Backend: "mpi", Assigned: []string{"x"}},
		},
		{
			name: "explicit backend with hex",
			body: `{"expr": "1 << 64", "backend": "big", "hex": true}`,
			want: EvalResponse{Result: "18446744073709551616", Hex: "0x10000000000000000", Bits: 65, Backend: "big"},
		},
		{
			name: "empty result",
			body: `{"expr": "# nothing"}`,
			want: EvalResponse{Backend: "mpi"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := post(t, h, tt.body)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q", ct)
			}
			var got EvalResponse
			if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
				t.Fatal(err)
			}
			got.DurationMS = 0
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("response mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestHandleEval_AllBackends(t *testing.T) {
	t.Parallel()
	rec := post(t, newTestServer().Handler(), `{"expr": "gcd(2310, 46189) << 3", "backend": "all"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	var got EvalResponse
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if got.Result != "88" {
		t.Errorf("Result = %q, want 88", got.Result)
	}
	if len(got.Backends) != len(calc.NewDefaultFactory().List()) {
		t.Fatalf("Backends = %+v", got.Backends)
	}
	for _, b := range got.Backends {
		if b.Result != "88" || b.Error != "" {
			t.Errorf("backend row %+v", b)
		}
	}
}

func TestHandleEval_Errors(t *testing.T) {
	t.Parallel()
	small := DefaultSecurityConfig()
	small.MaxDigits = 3
	small.MaxExprLength = 32

	tests := []struct {
		name     string
		server   *Server
		method   string
		body     string
		wantCode int
		wantKind string
	}{
		{"wrong method", newTestServer(), "GET", "", http.StatusMethodNotAllowed, "validation"},
		{"invalid json", newTestServer(), "POST", `{"expr":`, http.StatusBadRequest, "validation"},
		{"empty expr", newTestServer(), "POST", `{"expr": ""}`, http.StatusBadRequest, "validation"},
		{"syntax", newTestServer(), "POST", `{"expr": "1 +"}`, http.StatusBadRequest, "parse"},
		{"undefined", newTestServer(), "POST", `{"expr": "y + 1"}`, http.StatusBadRequest, "undefined"},
		{"underflow", newTestServer(), "POST", `{"expr": "1 - 2"}`, http.StatusUnprocessableEntity, "underflow"},
		{"division by zero", newTestServer(), "POST", `{"expr": "1 / 0", "backend": "all"}`, http.StatusUnprocessableEntity, "division_by_zero"},
		{"unknown backend", newTestServer(), "POST", `{"expr": "1", "backend": "nope"}`, http.StatusBadRequest, "other"},
		{"literal too long", newTestServer(WithSecurityConfig(small)), "POST", `{"expr": "12345"}`, http.StatusBadRequest, "validation"},
		{"expr too long", newTestServer(WithSecurityConfig(small)), "POST", fmt.Sprintf(`{"expr": %q}`, strings.Repeat("1+", 20)+"1"), http.StatusRequestEntityTooLarge, "validation"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(tt.method, "/v1/eval", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			tt.server.Handler().ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.wantCode, rec.Body)
			}
			var got ErrorResponse
			if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
				t.Fatal(err)
			}
			if got.Kind != tt.wantKind {
				t.Errorf("kind = %q, want %q (error %q)", got.Kind, tt.wantKind, got.Error)
			}
		})
	}
}

func TestHandleEval_BodyTooLarge(t *testing.T) {
	t.Parallel()
	cfg := DefaultSecurityConfig()
	cfg.MaxBodyBytes = 16
	rec := post(t, newTestServer(WithSecurityConfig(cfg)).Handler(), `{"expr": "123456789 * 987654321"}`)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusRequestEntityTooLarge)
	}
}

func TestHandleEval_CanceledRequest(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest("POST", "/v1/eval", strings.NewReader(`{"expr": "1 + 1"}`)).WithContext(ctx)
	rec := httptest.NewRecorder()
	newTestServer().Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
}

func TestHandleEval_TimeoutInsideStatement(t *testing.T) {
	t.Parallel()
	h := newTestServer(WithEvalTimeout(50 * time.Millisecond)).Handler()

	start := time.Now()
	rec := post(t, h, `{"expr": "(1 << 2000000) % ((1 << 1000000) + 1)"}`)
	if rec.Code != http.StatusGatewayTimeout {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, http.StatusGatewayTimeout, rec.Body)
	}
	var got ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if got.Kind != "timeout" {
		t.Errorf("kind = %q, want timeout (error %q)", got.Kind, got.Error)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("request took %v with a 50ms evaluation timeout", elapsed)
	}
}

func TestStatusFor(t *testing.T) {
	t.Parallel()
	tests := []struct {
		err  error
		want int
	}{
		{apperrors.WrapError(context.DeadlineExceeded, "eval"), http.StatusGatewayTimeout},
		{context.Canceled, http.StatusServiceUnavailable},
		{errMismatch, http.StatusInternalServerError},
		{apperrors.CalculationError{Backend: "mpi", Cause: apperrors.NewArithmeticError("Sub", apperrors.ErrUnderflow)}, http.StatusUnprocessableEntity},
		{apperrors.ErrParse, http.StatusBadRequest},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestHandleHealth(t *testing.T) {
	t.Parallel()
	h := newTestServer().Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/health", http.NoBody))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var got struct {
		Status   string   `json:"status"`
		Backends []string `json:"backends"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if got.Status != "ok" {
		t.Errorf("status = %q", got.Status)
	}
	if diff := cmp.Diff(calc.NewDefaultFactory().List(), got.Backends); diff != "" {
		t.Errorf("backends mismatch (-want +got):\n%s", diff)
	}
	if rec.Header().Get("X-Frame-Options") != "DENY" {
		t.Error("security headers should apply to every route")
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("DELETE", "/health", http.NoBody))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("DELETE status = %d", rec.Code)
	}
}

func TestHandler_CountsEvalErrors(t *testing.T) {
	t.Parallel()
	s := newTestServer()
	h := s.Handler()
	post(t, h, `{"expr": "3 - 4"}`)
	post(t, h, `{"expr": "3 - 4"}`)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", http.NoBody))
	body := rec.Body.String()
	if !strings.Contains(body, `mpicalc_eval_errors_total{kind="underflow"} 2`) {
		t.Errorf("expected two underflow errors in metrics:\n%s", body)
	}
	if !strings.Contains(body, `mpicalc_requests_total{code="422",path="/v1/eval"} 2`) {
		t.Error("expected two 422 responses in metrics")
	}
}

func TestServer_GracefulShutdown(t *testing.T) {
	t.Parallel()
	s := newTestServer()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	url := "http://" + ln.Addr().String() + "/v1/eval"
	resp, err := http.Post(url, "application/json", strings.NewReader(`{"expr": "2 * 21"}`))
	if err != nil {
		t.Fatal(err)
	}
	var got EvalResponse
	err = json.NewDecoder(resp.Body).Decode(&got)
	resp.Body.Close()
	if err != nil || got.Result != "42" {
		t.Fatalf("live request: %v %+v", err, got)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve returned %v after shutdown", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
