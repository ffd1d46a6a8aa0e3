package ratelimit

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimiter_AllowPerKey(t *testing.T) {
	t.Parallel()

	l := New(Config{DefaultRPS: 1, DefaultBurst: 2})
	now := time.Date(2026, 2, 16, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("10.0.0.1"))
	assert.True(t, l.Allow("10.0.0.1"))
	assert.False(t, l.Allow("10.0.0.1"), "burst exhausted")
	assert.True(t, l.Allow("10.0.0.2"), "other clients keep their own bucket")

	now = now.Add(time.Second)
	assert.True(t, l.Allow("10.0.0.1"), "token refilled after one second")
}

func TestLimiter_NonPositiveRateIsUnlimited(t *testing.T) {
	t.Parallel()

	l := New(Config{})
	for range 100 {
		require.True(t, l.Allow("10.0.0.1"))
	}
}

func TestLimiter_EvictsIdleKeys(t *testing.T) {
	t.Parallel()

	l := New(Config{DefaultRPS: 1, DefaultBurst: 1, MaxKeys: 2})
	now := time.Date(2026, 2, 16, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	l.Allow("a")
	l.Allow("b")
	now = now.Add(idleAfter + time.Minute)
	l.Allow("c")

	assert.Equal(t, 1, l.Len())
}

func TestLimiter_BoundsTrackedKeys(t *testing.T) {
	t.Parallel()

	l := New(Config{DefaultRPS: 1, DefaultBurst: 1, MaxKeys: 10})
	now := time.Date(2026, 2, 16, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	for i := range 1000 {
		now = now.Add(time.Millisecond)
		l.Allow(fmt.Sprintf("10.0.%d.%d", i/256, i%256))
	}

	assert.Equal(t, 10, l.Len())
}

func TestLimiter_EvictsLeastRecentlySeenAtCapacity(t *testing.T) {
	t.Parallel()

	l := New(Config{DefaultRPS: 0.001, DefaultBurst: 1, MaxKeys: 2})
	now := time.Date(2026, 2, 16, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	require.True(t, l.Allow("a"))
	now = now.Add(time.Second)
	require.True(t, l.Allow("b"))
	now = now.Add(time.Second)
	require.True(t, l.Allow("c"), "a is evicted to make room")

	assert.Equal(t, 2, l.Len())
	assert.False(t, l.Allow("c"), "c keeps its bucket")
	assert.True(t, l.Allow("a"), "a starts over with a fresh bucket")
}

func TestLimiter_Middleware(t *testing.T) {
	t.Parallel()

	l := New(Config{DefaultRPS: 0.001, DefaultBurst: 1})
	reject := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	h := l.Middleware(func(r *http.Request) string { return r.RemoteAddr }, reject)(ok)

	req := httptest.NewRequest(http.MethodPost, "/api/lead", nil)
	req.RemoteAddr = "192.0.2.1"

	first := httptest.NewRecorder()
	h.ServeHTTP(first, req)
	second := httptest.NewRecorder()
	h.ServeHTTP(second, req)

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}
