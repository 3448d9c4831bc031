package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func limitedHandler(rl *RateLimiter, maxPerMinute int) http.Handler {
	return rl.Limit(maxPerMinute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func hit(h http.Handler, addr string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/events", nil)
	req.RemoteAddr = addr
	h.ServeHTTP(rec, req)
	return rec
}

func TestRateLimiter_UnderAndOverLimit(t *testing.T) {
	rl := NewRateLimiter(time.Minute)
	defer rl.Stop()

	h := limitedHandler(rl, 5)

	for i := 0; i < 5; i++ {
		rec := hit(h, "1.2.3.4:1234")
		assert.Equal(t, http.StatusOK, rec.Code, fmt.Sprintf("request %d should pass", i))
	}

	rec := hit(h, "1.2.3.4:1234")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func TestRateLimiter_ClientsAreIndependent(t *testing.T) {
	rl := NewRateLimiter(time.Minute)
	defer rl.Stop()

	h := limitedHandler(rl, 2)

	hit(h, "1.1.1.1:1234")
	hit(h, "1.1.1.1:1234")
	assert.Equal(t, http.StatusTooManyRequests, hit(h, "1.1.1.1:1234").Code)

	assert.Equal(t, http.StatusOK, hit(h, "2.2.2.2:5678").Code)
}

func TestRateLimiter_Refills(t *testing.T) {
	rl := NewRateLimiter(time.Minute)
	defer rl.Stop()

	// 60 per minute refills one token per second.
	h := limitedHandler(rl, 60)

	for i := 0; i < 60; i++ {
		hit(h, "3.3.3.3:1234")
	}
	assert.Equal(t, http.StatusTooManyRequests, hit(h, "3.3.3.3:1234").Code)

	time.Sleep(1100 * time.Millisecond)

	assert.Equal(t, http.StatusOK, hit(h, "3.3.3.3:1234").Code)
}
