package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestInit(t *testing.T) {
	t.Run("Disabled returns noop recorder", func(t *testing.T) {
		recorder := Init(false)
		_, ok := recorder.(*NoopMetrics)
		assert.True(t, ok)
	})

	t.Run("Enabled returns the same instance on repeated calls", func(t *testing.T) {
		first := Init(true)
		second := Init(true)
		assert.Same(t, first, second)
	})
}

func TestNoopRecorderIsSafe(t *testing.T) {
	recorder := NewNoopMetrics()

	// None of these should panic
	recorder.RecordLogin(true)
	recorder.RecordLogout()
	recorder.RecordSessionValidation("valid")
	recorder.RecordCodeIssued(true)
	recorder.RecordCodeRedemption("success")
	recorder.RecordTokenIssued("authorization_code", time.Millisecond)
	recorder.RecordTokenValidation("valid", time.Millisecond)
	recorder.RecordTokenRevoked()
	recorder.RecordClientRegistered()
	recorder.SetActiveSessionsCount(1)
	recorder.SetActiveClientsCount(1)
	recorder.RecordDatabaseQueryError("count_sessions")
}

func TestHTTPMetricsMiddleware_Noop(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(HTTPMetricsMiddleware(NewNoopMetrics()))
	router.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
}
