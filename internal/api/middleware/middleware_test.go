package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	goleak.VerifyTestMain(m)
}

func newEngine(mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(mw...)
	r.POST("/echo", func(c *gin.Context) {
		data, err := c.GetRawData()
		if err != nil {
			c.String(http.StatusBadRequest, err.Error())
			return
		}
		c.String(http.StatusOK, string(data))
	})
	r.GET("/echo", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/panic", func(c *gin.Context) { panic("boom") })
	return r
}

func post(r http.Handler, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(body)))
	return w
}

func TestDeduplicator(t *testing.T) {
	d := NewDeduplicator(time.Minute)
	defer d.Stop()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	d.now = func() time.Time { return now }

	r := newEngine(d.Handler())

	w := post(r, `{"text": "two eggs"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `{"text": "two eggs"}`, w.Body.String())

	w = post(r, `{"text": "two eggs"}`)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	w = post(r, `{"text": "three eggs"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	now = now.Add(2 * time.Minute)
	w = post(r, `{"text": "two eggs"}`)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestDeduplicator_IgnoresGet(t *testing.T) {
	d := NewDeduplicator(time.Minute)
	defer d.Stop()
	r := newEngine(d.Handler())

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/echo", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestDeduplicator_StopIdempotent(t *testing.T) {
	d := NewDeduplicator(0)
	assert.Equal(t, time.Second, d.window)
	d.Stop()
	d.Stop()
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(2, time.Second)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	rl.lastTime = now

	assert.True(t, rl.Allow())
	assert.True(t, rl.Allow())
	assert.False(t, rl.Allow())

	now = now.Add(500 * time.Millisecond)
	assert.True(t, rl.Allow())
	assert.False(t, rl.Allow())

	// 長時間閒置後不超過容量
	now = now.Add(time.Hour)
	assert.True(t, rl.Allow())
	assert.True(t, rl.Allow())
	assert.False(t, rl.Allow())
}

func TestRateLimit_PerClient(t *testing.T) {
	r := newEngine(RateLimit(1, time.Minute))

	get := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/echo", nil)
		req.RemoteAddr = ip + ":5555"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, get("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, get("10.0.0.1"))
	assert.Equal(t, http.StatusOK, get("10.0.0.2"))
}

func TestBodySizeLimit(t *testing.T) {
	r := newEngine(BodySizeLimit(8))

	w := post(r, "small")
	assert.Equal(t, http.StatusOK, w.Code)

	w = post(r, "this body is too large")
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Contains(t, w.Body.String(), "request body too large")
}

func TestBodySizeLimit_UnknownLength(t *testing.T) {
	r := newEngine(BodySizeLimit(8))

	req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader("this body is too large"))
	req.ContentLength = -1
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRecovery(t *testing.T) {
	r := newEngine(Recovery())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "INTERNAL_ERROR")
}

func TestTimeout(t *testing.T) {
	r := gin.New()
	r.Use(Timeout(20 * time.Millisecond))
	r.GET("/slow", func(c *gin.Context) {
		select {
		case <-c.Request.Context().Done():
			c.Status(http.StatusGatewayTimeout)
		case <-time.After(time.Second):
			c.Status(http.StatusOK)
		}
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/slow", nil))
	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
}
