package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/deppfellow/client-directory/internal/config"
	"github.com/deppfellow/client-directory/internal/errs"
	"github.com/deppfellow/client-directory/internal/handler"
	"github.com/deppfellow/client-directory/internal/metrics"
	"github.com/deppfellow/client-directory/internal/model"
	"github.com/deppfellow/client-directory/internal/server"
	"github.com/deppfellow/client-directory/internal/service"
	"github.com/deppfellow/client-directory/internal/testutil"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T, rateLimit float64) (*echo.Echo, *testutil.MemStore) {
	t.Helper()

	logger := zerolog.Nop()
	s := &server.Server{
		Config: &config.Config{
			Primary: config.Primary{Env: "test"},
			Server: config.ServerConfig{
				Port:               "8080",
				CORSAllowedOrigins: []string{"*"},
				RateLimit:          rateLimit,
			},
			Observability: config.DefaultObservabilityConfig(),
		},
		Logger:  &logger,
		Metrics: metrics.NewPrometheus(),
	}

	store := testutil.NewMemStore()
	services := &service.Services{
		Clients: service.NewClientService(store, &logger, s.Metrics, 0),
	}
	return NewRouter(s, handler.NewHandlers(s, services)), store
}

func do(t *testing.T, e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestClientLifecycleOverHTTP(t *testing.T) {
	e, store := newTestRouter(t, 0)

	rec := do(t, e, http.MethodPost, "/api/v1/clients", `{"first_name":"Nikolay","last_name":"Shirokov","email":"nsh@internet.ru"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[model.Client](t, rec)
	assert.Equal(t, int64(1), created.ID)
	assert.Equal(t, "nsh@internet.ru", *created.Email)

	rec = do(t, e, http.MethodPost, "/api/v1/clients", `{"first_name":"Alexandr","last_name":"Zubarev"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Nil(t, decode[model.Client](t, rec).Email)

	rec = do(t, e, http.MethodPatch, "/api/v1/clients/1", `{"last_name":"Shirokova"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[model.Client](t, rec)
	assert.Equal(t, "Nikolay", updated.FirstName)
	assert.Equal(t, "Shirokova", updated.LastName)

	rec = do(t, e, http.MethodPost, "/api/v1/clients/1/phones", `{"phone_number":"89693239999"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "89693239999", decode[model.Phone](t, rec).PhoneNumber)

	rec = do(t, e, http.MethodGet, "/api/v1/clients/1/phones", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]model.Phone](t, rec), 1)

	rec = do(t, e, http.MethodGet, "/api/v1/clients?last_name=Shirokova", "")
	require.Equal(t, http.StatusOK, rec.Code)
	records := decode[[]model.ClientRecord](t, rec)
	require.Len(t, records, 1)
	assert.Equal(t, "89693239999", *records[0].PhoneNumber)

	rec = do(t, e, http.MethodGet, "/api/v1/clients/find?phone_number=89693239999", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(1), decode[model.ClientRecord](t, rec).ID)

	rec = do(t, e, http.MethodDelete, "/api/v1/clients/1/phones", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]model.Phone](t, rec), 1)

	rec = do(t, e, http.MethodDelete, "/api/v1/clients/1", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, e, http.MethodDelete, "/api/v1/clients/1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	assert.Len(t, store.Clients(), 1)
}

func TestErrorResponses(t *testing.T) {
	e, _ := newTestRouter(t, 0)
	do(t, e, http.MethodPost, "/api/v1/clients", `{"first_name":"Ksenya","last_name":"Shirokova","email":"ks@internet.ru"}`)

	tests := []struct {
		name       string
		method     string
		target     string
		body       string
		wantStatus int
		wantCode   string
	}{
		{"duplicate email", http.MethodPost, "/api/v1/clients", `{"first_name":"K","last_name":"S","email":"ks@internet.ru"}`, http.StatusBadRequest, "CLIENT_ALREADY_EXISTS"},
		{"missing names", http.MethodPost, "/api/v1/clients", `{"email":"x@y.z"}`, http.StatusBadRequest, "BAD_REQUEST"},
		{"phone for unknown client", http.MethodPost, "/api/v1/clients/42/phones", `{"phone_number":"80000000000"}`, http.StatusBadRequest, "CLIENT_NOT_FOUND"},
		{"unknown client", http.MethodGet, "/api/v1/clients/42", "", http.StatusNotFound, "NOT_FOUND"},
		{"update unknown client", http.MethodPatch, "/api/v1/clients/42", `{"first_name":"X"}`, http.StatusNotFound, "NOT_FOUND"},
		{"non-numeric id", http.MethodGet, "/api/v1/clients/abc", "", http.StatusBadRequest, "BAD_REQUEST"},
		{"no match", http.MethodGet, "/api/v1/clients/find?first_name=Nobody", "", http.StatusNotFound, "NOT_FOUND"},
		{"unknown route", http.MethodGet, "/api/v2/anything", "", http.StatusNotFound, "NOT_FOUND"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, e, tt.method, tt.target, tt.body)
			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())

			body := decode[errs.HTTPError](t, rec)
			assert.Equal(t, tt.wantCode, body.Code)
			assert.Equal(t, tt.wantStatus, body.Status)
			assert.NotEmpty(t, body.Message)
		})
	}
}

func TestValidationErrorNamesFields(t *testing.T) {
	e, _ := newTestRouter(t, 0)

	rec := do(t, e, http.MethodPost, "/api/v1/clients", `{"first_name":"","last_name":"Zubarev"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body := decode[errs.HTTPError](t, rec)
	assert.Equal(t, []errs.FieldError{{Field: "first_name", Error: "is required"}}, body.Errors)
}

func TestClientIDOutsideIntegerRange(t *testing.T) {
	e, _ := newTestRouter(t, 0)

	for _, target := range []string{
		"/api/v1/clients/3000000000",
		"/api/v1/clients/3000000000/phones",
	} {
		rec := do(t, e, http.MethodGet, target, "")
		require.Equal(t, http.StatusBadRequest, rec.Code, target)

		body := decode[errs.HTTPError](t, rec)
		assert.Equal(t, []errs.FieldError{{Field: "id", Error: "must not exceed 2147483647"}}, body.Errors)
	}

	rec := do(t, e, http.MethodGet, "/api/v1/clients/2147483647", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStoreFailureIs500(t *testing.T) {
	e, store := newTestRouter(t, 0)
	store.Err = assert.AnError

	rec := do(t, e, http.MethodGet, "/api/v1/clients/1", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), assert.AnError.Error())
}

func TestRequestIDIsEchoed(t *testing.T) {
	e, _ := newTestRouter(t, 0)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/clients", nil)
	req.Header.Set("X-Request-ID", "req-123")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, "req-123", rec.Header().Get("X-Request-ID"))

	rec = do(t, e, http.MethodGet, "/api/v1/clients", "")
	assert.Len(t, rec.Header().Get("X-Request-ID"), 36)
}

func TestSystemRoutes(t *testing.T) {
	e, _ := newTestRouter(t, 0)
	do(t, e, http.MethodGet, "/api/v1/clients", "")

	rec := do(t, e, http.MethodGet, "/status", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"unhealthy"`)

	rec = do(t, e, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `clientdir_operations_total{operation="find_clients",result="success"} 1`)

	rec = do(t, e, http.MethodGet, "/docs", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/docs/openapi.json")

	rec = do(t, e, http.MethodGet, "/docs/openapi.json", "")
	require.Equal(t, http.StatusOK, rec.Code)
	doc := decode[map[string]any](t, rec)
	assert.Equal(t, "3.0.3", doc["openapi"])
}

func TestRateLimit(t *testing.T) {
	e, _ := newTestRouter(t, 1)

	first := do(t, e, http.MethodGet, "/api/v1/clients", "")
	assert.Equal(t, http.StatusOK, first.Code)

	second := do(t, e, http.MethodGet, "/api/v1/clients", "")
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "TOO_MANY_REQUESTS", decode[errs.HTTPError](t, second).Code)
}
