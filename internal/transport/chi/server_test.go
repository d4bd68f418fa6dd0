package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/provquery/internal/domain/query/plan"
	compileuc "github.com/kailas-cloud/provquery/internal/usecase/compile"
)

// --- Mocks ---

type mockCompiler struct {
	res compileuc.Result
	err error
	got plan.Plan
}

func (m *mockCompiler) Compile(_ context.Context, p plan.Plan) (compileuc.Result, error) {
	m.got = p
	return m.res, m.err
}

type panicCompiler struct{}

func (panicCompiler) Compile(context.Context, plan.Plan) (compileuc.Result, error) {
	panic("boom")
}

func newTestRouter(c Compiler, keys ...string) http.Handler {
	return NewRouter(NewServer(c, 1<<10, zap.NewNop()), keys, zap.NewNop())
}

func doRequest(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

// --- Tests ---

func TestCompileQuery_OK(t *testing.T) {
	mc := &mockCompiler{res: compileuc.Result{
		Query:        "?per_page=10&name=Smith&filter=gender:female",
		FilterFields: []string{"gender"},
		Vector:       "name",
	}}
	h := newTestRouter(mc)

	body := `{"ops":[{"op":"param","name":"per_page","value":10},` +
		`{"op":"filter","field":"gender","values":["female"]},` +
		`{"op":"vector","field":"name","value":"Smith"}]}`
	rr := doRequest(h, "POST", "/api/v1/queries", body)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	if rr.Header().Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID header")
	}

	var resp CompileResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Query != mc.res.Query {
		t.Errorf("Query = %q", resp.Query)
	}
	if resp.Vector != "name" {
		t.Errorf("Vector = %q", resp.Vector)
	}
	if len(mc.got.Ops) != 3 || mc.got.Ops[1].Kind != plan.KindFilter {
		t.Errorf("compiler received %+v", mc.got)
	}
}

func TestCompileQuery_EmptyFieldsIsArray(t *testing.T) {
	h := newTestRouter(&mockCompiler{})

	rr := doRequest(h, "POST", "/api/v1/queries", `{"ops":[]}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"filter_fields":[]`) {
		t.Errorf("body = %s", rr.Body.String())
	}
}

func TestCompileQuery_Errors(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		err      error
		wantCode int
		wantErr  ErrorCode
	}{
		{"malformed json", `{"ops":`, nil, http.StatusBadRequest, ErrorCodeBadRequest},
		{"unknown field", `{"ops":[],"extra":1}`, nil, http.StatusBadRequest, ErrorCodeBadRequest},
		{"too large", `{"ops":[{"op":"or","values":["` + strings.Repeat("x", 2048) + `"]}]}`,
			nil, http.StatusBadRequest, ErrorCodeBadRequest},
		{"invalid plan", `{"ops":[]}`, plan.ErrInvalidPlan, http.StatusBadRequest, ErrorCodeInvalidPlan},
		{"unknown vector", `{"ops":[]}`, plan.ErrUnknownVector, http.StatusBadRequest, ErrorCodeUnknownVector},
		{"internal", `{"ops":[]}`, errors.New("boom"), http.StatusInternalServerError, ErrorCodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestRouter(&mockCompiler{err: tt.err})
			rr := doRequest(h, "POST", "/api/v1/queries", tt.body)

			if rr.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d (body %s)", rr.Code, tt.wantCode, rr.Body.String())
			}
			var errResp ErrorResponse
			if err := json.NewDecoder(rr.Body).Decode(&errResp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if errResp.Code != tt.wantErr {
				t.Errorf("code = %s, want %s", errResp.Code, tt.wantErr)
			}
		})
	}
}

func TestCompileQuery_InternalErrorHidesDetails(t *testing.T) {
	h := newTestRouter(&mockCompiler{err: errors.New("secret detail")})
	rr := doRequest(h, "POST", "/api/v1/queries", `{"ops":[]}`)

	if strings.Contains(rr.Body.String(), "secret detail") {
		t.Errorf("internal error leaked: %s", rr.Body.String())
	}
}

func TestCompileQuery_RequiresAuth(t *testing.T) {
	h := newTestRouter(&mockCompiler{}, "secret")

	rr := doRequest(h, "POST", "/api/v1/queries", `{"ops":[]}`)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rr.Code)
	}

	rr = doRequest(h, "GET", "/health", "")
	if rr.Code != http.StatusOK {
		t.Errorf("health status = %d, want 200", rr.Code)
	}
}

func TestHealthCheck(t *testing.T) {
	rr := doRequest(newTestRouter(&mockCompiler{}), "GET", "/health", "")

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var resp HealthResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "ok" {
		t.Errorf("Status = %q", resp.Status)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	rr := doRequest(newTestRouter(&mockCompiler{}), "GET", "/metrics", "")

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if rr.Body.Len() == 0 {
		t.Error("expected non-empty metrics response")
	}
}

func TestRouter_NotFoundAndMethod(t *testing.T) {
	h := newTestRouter(&mockCompiler{})

	if rr := doRequest(h, "GET", "/nope", ""); rr.Code != http.StatusNotFound {
		t.Errorf("unknown route status = %d, want 404", rr.Code)
	}
	if rr := doRequest(h, "GET", "/api/v1/queries", ""); rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("wrong method status = %d, want 405", rr.Code)
	}
}

func TestRouter_RecoversPanics(t *testing.T) {
	rr := doRequest(newTestRouter(panicCompiler{}), "POST", "/api/v1/queries", `{"ops":[]}`)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), string(ErrorCodeInternalError)) {
		t.Errorf("body = %s", rr.Body.String())
	}
}
