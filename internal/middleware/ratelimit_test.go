package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimiterRejectsAboveBurst(t *testing.T) {
	rl := NewRateLimiter(1, 2, nil)
	h := rl.Handler(okHandler())

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(UserIDHeader, "user-1")
		req = withIdentity(req)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusOK {
		t.Fatalf("burst requests rejected: %v", codes)
	}
	if codes[2] != http.StatusTooManyRequests {
		t.Fatalf("third request = %d, want 429", codes[2])
	}
}

func TestRateLimiterKeysAreIndependent(t *testing.T) {
	rl := NewRateLimiter(1, 1, nil)
	h := rl.Handler(okHandler())

	for _, user := range []string{"user-1", "user-2"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(UserIDHeader, user)
		req = withIdentity(req)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("first request for %s = %d", user, rec.Code)
		}
	}
}

func TestRateLimiterEvictsIdleEntries(t *testing.T) {
	rl := NewRateLimiter(1, 1, nil)
	rl.getLimiter("stale")
	rl.getLimiter("fresh")

	rl.mu.Lock()
	rl.limiters["stale"].lastSeen = time.Now().Add(-time.Hour)
	rl.mu.Unlock()

	rl.evictIdle(30 * time.Minute)

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if _, ok := rl.limiters["stale"]; ok {
		t.Fatal("stale entry not evicted")
	}
	if _, ok := rl.limiters["fresh"]; !ok {
		t.Fatal("fresh entry evicted")
	}
}

// withIdentity runs the identity middleware's extraction for a single request.
func withIdentity(r *http.Request) *http.Request {
	var out *http.Request
	IdentityMiddleware()(http.HandlerFunc(func(_ http.ResponseWriter, req *http.Request) {
		out = req
	})).ServeHTTP(httptest.NewRecorder(), r)
	return out
}
