package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsMiddleware_CountsByRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(MetricsMiddleware())
	r.GET("/students/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	before := testutil.ToFloat64(RequestCounter.WithLabelValues("GET", "/students/:id", "200"))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/students/abc", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/students/def", nil))

	after := testutil.ToFloat64(RequestCounter.WithLabelValues("GET", "/students/:id", "200"))
	assert.Equal(t, before+2, after)
}

func TestObserveMLRequest(t *testing.T) {
	okBefore := testutil.ToFloat64(MLRequestCounter.WithLabelValues("/chat", "ok"))
	errBefore := testutil.ToFloat64(MLRequestCounter.WithLabelValues("/chat", "error"))

	ObserveMLRequest("/chat", nil, 10*time.Millisecond)
	ObserveMLRequest("/chat", errors.New("timeout"), time.Second)

	assert.Equal(t, okBefore+1, testutil.ToFloat64(MLRequestCounter.WithLabelValues("/chat", "ok")))
	assert.Equal(t, errBefore+1, testutil.ToFloat64(MLRequestCounter.WithLabelValues("/chat", "error")))
}

func TestRecordFallback(t *testing.T) {
	before := testutil.ToFloat64(FallbackCounter.WithLabelValues("quiz"))
	RecordFallback("quiz")
	assert.Equal(t, before+1, testutil.ToFloat64(FallbackCounter.WithLabelValues("quiz")))
}

func TestInitIsIdempotent(t *testing.T) {
	assert.NotPanics(t, func() {
		Init()
		Init()
	})
}
