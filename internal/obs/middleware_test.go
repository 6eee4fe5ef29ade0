package obs_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/kasir-api/internal/obs"
)

func TestHTTPMetricsLabels(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := obs.NewHTTPMetrics("kasir", []float64{1, 10}, registry)
	handler := obs.HTTPObs{Metrics: metrics}.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	req = req.WithContext(obs.WithRoutePattern(req.Context(), "/health/ready"))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusNoContent, rr.Code)

	total := testutil.ToFloat64(metrics.ReqTotal.WithLabelValues(http.MethodGet, "/health/ready", "204"))
	require.EqualValues(t, 1, total)

	require.NotZero(t, testutil.CollectAndCount(metrics.ReqDur))
	require.EqualValues(t, 0, testutil.ToFloat64(metrics.InFlight))
}

func TestDomainMetricsRegisterOnce(t *testing.T) {
	registry := prometheus.NewRegistry()
	obs.MustRegisterDomainMetrics("kasir", registry)
	require.NotNil(t, obs.DraftSubmitTotal)

	obs.DraftSubmitTotal.WithLabelValues("success").Inc()
	require.EqualValues(t, 1, testutil.ToFloat64(obs.DraftSubmitTotal.WithLabelValues("success")))

	// second call is a no-op rather than a duplicate registration panic
	obs.MustRegisterDomainMetrics("kasir", registry)
}
