package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddleware_RouteLabel(t *testing.T) {
	m := New()
	r := mux.NewRouter()
	r.Use(m.Middleware)
	r.HandleFunc("/api/networks/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, id := range []string{"a", "b"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/networks/"+id, nil))
	}

	got := testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues("GET", "/api/networks/{id}", "404"))
	assert.Equal(t, 2.0, got)
}

func TestDeploymentFinished(t *testing.T) {
	m := New()
	m.DeploymentFinished("completed", 3*time.Second)
	m.DeploymentFinished("failed", time.Second)
	m.DeploymentFinished("completed", time.Second)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.deployments.WithLabelValues("completed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.deployments.WithLabelValues("failed")))
}

func TestHandler(t *testing.T) {
	m := New()
	m.ObserveRestart("frontend", "ok")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, _ := io.ReadAll(rec.Body)
	assert.Contains(t, string(body), `cosmos_platform_service_restarts_total{result="ok",service="frontend"} 1`)
}
