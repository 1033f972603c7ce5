package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPMiddlewareCountsByRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg, "test", "store")

	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/api/store/:collection", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, path := range []string{"/api/store/products", "/api/store/sales", "/missing"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("store", "GET", "/api/store/:collection", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("store", "GET", "unmatched", "404")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.statuses.WithLabelValues("store", "2xx")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.statuses.WithLabelValues("store", "4xx")))
}

func TestHandlerExposesRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewStoreMetrics(reg, "test")
	m.ObserveWrite("products", OutcomeConflict)

	w := httptest.NewRecorder()
	Handler(reg).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `test_collection_writes_total{collection="products",outcome="conflict"} 1`)
}

func TestStoreMetricsNilIsNoop(t *testing.T) {
	var m *StoreMetrics
	assert.NotPanics(t, func() {
		m.ObserveRead("products")
		m.ObserveWrite("products", OutcomeSuccess)
		m.ObserveStored("products", 1, 1)
		m.ObserveLogin(OutcomeDenied)
	})
}

func TestStoreMetricsRecordsState(t *testing.T) {
	m := NewStoreMetrics(prometheus.NewRegistry(), "test")

	m.ObserveRead("sales")
	m.ObserveStored("sales", 4, 7)
	m.ObserveLogin(OutcomeSuccess)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.reads.WithLabelValues("sales")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.items.WithLabelValues("sales")))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.version.WithLabelValues("sales")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.logins.WithLabelValues(OutcomeSuccess)))
}
