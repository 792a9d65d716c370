package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestLoginRateLimiter_BurstThenThrottle(t *testing.T) {
	rl := NewLoginRateLimiter(1, 3)
	defer rl.Stop()

	for i := 0; i < 3; i++ {
		if !rl.Allow("10.0.0.1") {
			t.Fatalf("Expected attempt %d within burst to pass", i+1)
		}
	}
	if rl.Allow("10.0.0.1") {
		t.Error("Expected attempt beyond burst to be throttled")
	}

	// A different address gets its own bucket
	if !rl.Allow("10.0.0.2") {
		t.Error("Expected a fresh address to pass")
	}
}

func TestLoginRateLimiter_Middleware429(t *testing.T) {
	rl := NewLoginRateLimiter(1, 1)
	defer rl.Stop()

	e := echo.New()
	handler := rl.Middleware()(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	run := func() int {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
		req.RemoteAddr = "10.0.0.3:1234"
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		if err := handler(c); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		return rec.Code
	}

	if code := run(); code != http.StatusOK {
		t.Fatalf("Expected first attempt to pass, got %d", code)
	}
	if code := run(); code != http.StatusTooManyRequests {
		t.Fatalf("Expected 429 after burst, got %d", code)
	}
}
