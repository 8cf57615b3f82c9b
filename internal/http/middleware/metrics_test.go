package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_CountersAndUnmatchedPath(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := newHTTPMetrics(prometheus.NewRegistry())

	r := gin.New()
	r.Use(m.handler())
	r.GET("/products/:id", func(c *gin.Context) { c.String(http.StatusOK, "hello") })
	r.DELETE("/products/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	for _, req := range []*http.Request{
		httptest.NewRequest(http.MethodGet, "/products/1", nil),
		httptest.NewRequest(http.MethodGet, "/products/2", nil),
		httptest.NewRequest(http.MethodDelete, "/products/2", nil),
		httptest.NewRequest(http.MethodGet, "/random/a", nil),
		httptest.NewRequest(http.MethodGet, "/random/b", nil),
	} {
		r.ServeHTTP(httptest.NewRecorder(), req)
	}

	if got := testutil.ToFloat64(m.requests.WithLabelValues("GET", "/products/:id", "200")); got != 2 {
		t.Fatalf("GET route counter = %v; want 2", got)
	}
	if got := testutil.ToFloat64(m.requests.WithLabelValues("DELETE", "/products/:id", "204")); got != 1 {
		t.Fatalf("DELETE route counter = %v; want 1", got)
	}
	if got := testutil.ToFloat64(m.requests.WithLabelValues("GET", unmatchedPath, "404")); got != 2 {
		t.Fatalf("unmatched counter = %v; want 2", got)
	}
	// one series per route, not per URL
	if n := testutil.CollectAndCount(m.requests); n != 3 {
		t.Fatalf("series count = %d; want 3", n)
	}
	if got := testutil.ToFloat64(m.inflight); got != 0 {
		t.Fatalf("inflight = %v; want 0", got)
	}
	if n := testutil.CollectAndCount(m.latency); n != 3 {
		t.Fatalf("latency series = %d; want 3", n)
	}
}

func TestMetrics_DefaultRegistryMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Metrics())
	r.GET("/metrics-default", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	base := testutil.ToFloat64(defaultHTTPMetrics.requests.WithLabelValues("GET", "/metrics-default", "200"))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/metrics-default", nil))
	if got := testutil.ToFloat64(defaultHTTPMetrics.requests.WithLabelValues("GET", "/metrics-default", "200")); got != base+1 {
		t.Fatalf("default counter = %v; want %v", got, base+1)
	}
}
