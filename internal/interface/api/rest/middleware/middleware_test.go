package middleware

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"json-share-api/internal/infrastructure/metrics"
)

func doReq(t *testing.T, r *gin.Engine, method, path string, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	req, err := http.NewRequest(method, path, strings.NewReader(body))
	require.NoError(t, err)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func errorCode(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var resp struct {
		Success bool `json:"success"`
		Error   struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	return resp.Error.Code
}

func TestRequireOwner(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/", RequireOwner(), func(c *gin.Context) {
		c.String(http.StatusOK, OwnerID(c))
	})

	tests := []struct {
		name       string
		headers    map[string]string
		wantStatus int
		wantBody   string
	}{
		{name: "401 missing header", wantStatus: http.StatusUnauthorized},
		{name: "401 blank header", headers: map[string]string{HeaderUserID: "  "}, wantStatus: http.StatusUnauthorized},
		{name: "200 owner passed on", headers: map[string]string{HeaderUserID: " user-1 "}, wantStatus: http.StatusOK, wantBody: "user-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doReq(t, r, http.MethodGet, "/", "", tt.headers)
			require.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantStatus == http.StatusUnauthorized {
				assert.Equal(t, "UNAUTHORIZED", errorCode(t, rr))
				return
			}
			assert.Equal(t, tt.wantBody, rr.Body.String())
		})
	}
}

func doReqFrom(t *testing.T, r *gin.Engine, remoteAddr string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	req, err := http.NewRequest(http.MethodPost, "/", nil)
	require.NoError(t, err)
	req.RemoteAddr = remoteAddr
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func newLimitedRouter(t *testing.T, rl *RateLimiter) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	require.NoError(t, r.SetTrustedProxies(nil))
	r.POST("/", rl.Middleware(), func(c *gin.Context) { c.Status(http.StatusCreated) })
	return r
}

func TestRateLimiter(t *testing.T) {
	mCounter := metrics.NewUnregisteredCounter()
	rl := NewRateLimiter(0.001, 2, time.Minute, mCounter)
	r := newLimitedRouter(t, rl)

	alice := map[string]string{HeaderUserID: "alice"}

	assert.Equal(t, http.StatusCreated, doReqFrom(t, r, "10.0.0.1:1000", alice).Code)
	assert.Equal(t, http.StatusCreated, doReqFrom(t, r, "10.0.0.1:1001", alice).Code)

	rr := doReqFrom(t, r, "10.0.0.1:1002", alice)
	require.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "RATE_LIMITED", errorCode(t, rr))
	assert.Equal(t, "1", rr.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusCreated, doReqFrom(t, r, "10.0.0.2:1000", alice).Code, "buckets are per client IP")

	assert.Equal(t, float64(1), testutil.ToFloat64(mCounter.WithLabelValues(metrics.RateLimited)))
}

func TestRateLimiter_RotatingOwnerIDsShareOneBucket(t *testing.T) {
	rl := NewRateLimiter(0.001, 2, time.Minute, nil)
	r := newLimitedRouter(t, rl)

	codes := make([]int, 0, 4)
	for i := 0; i < 4; i++ {
		headers := map[string]string{
			HeaderUserID:      "owner-" + strconv.Itoa(i),
			"X-Forwarded-For": "203.0.113." + strconv.Itoa(i),
		}
		codes = append(codes, doReqFrom(t, r, "10.0.0.1:1000", headers).Code)
	}

	assert.Equal(t, []int{
		http.StatusCreated,
		http.StatusCreated,
		http.StatusTooManyRequests,
		http.StatusTooManyRequests,
	}, codes)
	assert.Equal(t, 1, rl.size())
}

func TestRateLimiter_EvictsIdleBuckets(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(0.001, 1, time.Minute, nil)
	rl.now = func() time.Time { return now }
	r := newLimitedRouter(t, rl)

	for i := 0; i < 50; i++ {
		doReqFrom(t, r, "10.0.1."+strconv.Itoa(i)+":1000", nil)
	}
	assert.Equal(t, 50, rl.size())
	assert.Equal(t, http.StatusTooManyRequests, doReqFrom(t, r, "10.0.1.0:1000", nil).Code)

	now = now.Add(2 * time.Minute)
	assert.Equal(t, http.StatusCreated, doReqFrom(t, r, "10.0.1.0:1000", nil).Code, "idle bucket was dropped")
	assert.Equal(t, 1, rl.size())
}

func TestRateLimiter_Disabled(t *testing.T) {
	rl := NewRateLimiter(0, 0, 0, nil)
	r := newLimitedRouter(t, rl)

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusCreated, doReqFrom(t, r, "10.0.0.1:1000", nil).Code)
	}
	assert.Equal(t, 0, rl.size())
}

func TestRequestTimeout(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name         string
		timeout      time.Duration
		wantDeadline bool
	}{
		{name: "bounded", timeout: time.Second, wantDeadline: true},
		{name: "disabled", timeout: 0, wantDeadline: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var hasDeadline bool
			r := gin.New()
			r.GET("/", RequestTimeout(tt.timeout), func(c *gin.Context) {
				_, hasDeadline = c.Request.Context().Deadline()
				c.Status(http.StatusOK)
			})

			doReq(t, r, http.MethodGet, "/", "", nil)
			assert.Equal(t, tt.wantDeadline, hasDeadline)
		})
	}
}

func TestRequestLogGin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.InfoLevel)
	mCounter := metrics.NewUnregisteredCounter()

	var got string
	r := gin.New()
	r.Use(RequestLogGin(zap.New(core), mCounter))
	r.POST("/echo", func(c *gin.Context) {
		b, _ := io.ReadAll(c.Request.Body)
		got = string(b)
		c.Status(http.StatusOK)
	})
	r.GET("/api/metrics", func(c *gin.Context) { c.Status(http.StatusOK) })

	big := strings.Repeat("x", maxLogBodySize+100)
	doReq(t, r, http.MethodPost, "/echo", big, map[string]string{HeaderUserID: "alice"})

	assert.Equal(t, big, got, "handler sees the whole body")
	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "alice", fields["owner_id"])
	assert.Equal(t, "/echo", fields["url"])
	assert.Len(t, fields["body"], maxLogBodySize)

	doReq(t, r, http.MethodPost, "/echo", "--b--", map[string]string{"Content-Type": "multipart/form-data; boundary=b"})
	require.Equal(t, 2, logs.Len())
	assert.Equal(t, "<multipart/form-data omitted>", logs.All()[1].ContextMap()["body"])

	doReq(t, r, http.MethodGet, "/api/metrics", "", nil)
	assert.Equal(t, 2, logs.Len(), "metrics scrapes are not logged")
	assert.Equal(t, float64(2), testutil.ToFloat64(mCounter.WithLabelValues(metrics.AppRequests)))
}
