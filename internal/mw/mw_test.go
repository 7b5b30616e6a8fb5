package mw

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestActor(t *testing.T) {
	testCases := []struct {
		name       string
		header     string
		wantStatus int
		wantActor  int64
	}{
		{name: "no header is anonymous", wantStatus: http.StatusOK},
		{name: "valid id", header: "42", wantStatus: http.StatusOK, wantActor: 42},
		{name: "not a number", header: "abc", wantStatus: http.StatusBadRequest},
		{name: "not positive", header: "-3", wantStatus: http.StatusBadRequest},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var got int64
			r := gin.New()
			r.Use(Actor("X-Person-ID"))
			r.GET("/", func(c *gin.Context) {
				got = ActorID(c)
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("X-Person-ID", tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tc.wantStatus, w.Code)
			assert.Equal(t, tc.wantActor, got)
		})
	}
}

func TestRateLimiter_ByActor(t *testing.T) {
	r := gin.New()
	r.Use(Actor("X-Person-ID"), RateLimiter(rate.Limit(0.001), 2, ByActor))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	do := func(actor string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Person-ID", actor)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, do("1"))
	assert.Equal(t, http.StatusOK, do("1"))
	assert.Equal(t, http.StatusTooManyRequests, do("1"))
	assert.Equal(t, http.StatusOK, do("2"), "other actors have their own bucket")
}

func TestCache(t *testing.T) {
	calls := 0
	r := gin.New()
	r.Use(Cache(cache.New(time.Minute, time.Minute), time.Minute))
	r.GET("/positions", func(c *gin.Context) {
		calls++
		c.JSON(http.StatusOK, gin.H{"calls": calls})
	})
	r.GET("/broken", func(c *gin.Context) {
		calls++
		c.JSON(http.StatusInternalServerError, gin.H{"error": "boom"})
	})

	get := func(path string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		return w
	}

	first := get("/positions")
	second := get("/positions")
	assert.Equal(t, "MISS", first.Header().Get(CacheHeader))
	assert.Equal(t, "HIT", second.Header().Get(CacheHeader))
	assert.JSONEq(t, first.Body.String(), second.Body.String())
	assert.Equal(t, "application/json; charset=utf-8", second.Header().Get("Content-Type"))
	assert.Equal(t, 1, calls)

	get("/broken")
	get("/broken")
	assert.Equal(t, 3, calls, "errors are not cached")
}
