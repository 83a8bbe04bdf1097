package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusObserve(t *testing.T) {
	rec := NewPrometheus()
	ctx := context.Background()

	rec.Observe(ctx, "add_client", true, 5*time.Millisecond)
	rec.Observe(ctx, "add_client", true, 7*time.Millisecond)
	rec.Observe(ctx, "add_client", false, time.Millisecond)
	rec.Observe(ctx, "", true, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(rec.operations.WithLabelValues("add_client", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.operations.WithLabelValues("add_client", "error")))
	assert.Equal(t, 1, testutil.CollectAndCount(rec.durations))
}

func TestPrometheusHandler(t *testing.T) {
	rec := NewPrometheus()
	rec.Observe(context.Background(), "find_client", true, time.Millisecond)

	w := httptest.NewRecorder()
	rec.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.True(t, strings.Contains(body, `clientdir_operations_total{operation="find_client",result="success"} 1`))
	assert.Contains(t, body, "clientdir_operation_duration_seconds_bucket")
}

func TestNop(t *testing.T) {
	var r Recorder = Nop{}
	r.Observe(context.Background(), "anything", false, time.Second)
}
