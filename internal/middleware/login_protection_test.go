// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// testLoginProtectionConfig returns a config suitable for fast testing.
func testLoginProtectionConfig(maxAttempts int, lockoutDuration, attemptWindow time.Duration) LoginProtectionConfig {
	return LoginProtectionConfig{
		IPRateLimit:       10,  // High rate for testing
		IPBurst:           100, // High burst for testing
		MaxFailedAttempts: maxAttempts,
		LockoutDuration:   lockoutDuration,
		AttemptWindow:     attemptWindow,
	}
}

func TestDefaultLoginProtectionConfig(t *testing.T) {
	cfg := DefaultLoginProtectionConfig()

	if cfg.IPRateLimit != 0.5 {
		t.Errorf("IPRateLimit = %v, want 0.5", cfg.IPRateLimit)
	}
	if cfg.MaxFailedAttempts != 5 {
		t.Errorf("MaxFailedAttempts = %d, want 5", cfg.MaxFailedAttempts)
	}
	if cfg.LockoutDuration != 15*time.Minute {
		t.Errorf("LockoutDuration = %v, want 15m", cfg.LockoutDuration)
	}
}

func TestAccountLockoutAfterMaxAttempts(t *testing.T) {
	lp := NewLoginProtection(testLoginProtectionConfig(3, time.Minute, time.Minute))

	for i := 0; i < 2; i++ {
		locked, _ := lp.RecordFailedAttempt("alice")
		if locked {
			t.Fatalf("locked after %d attempts, want lock at 3", i+1)
		}
	}

	locked, duration := lp.RecordFailedAttempt("alice")
	if !locked {
		t.Fatal("account not locked after max failed attempts")
	}
	if duration != time.Minute {
		t.Errorf("lock duration = %v, want 1m", duration)
	}

	isLocked, remaining := lp.IsAccountLocked("alice")
	if !isLocked {
		t.Error("IsAccountLocked() = false after lockout")
	}
	if remaining <= 0 || remaining > time.Minute {
		t.Errorf("remaining = %v, want (0, 1m]", remaining)
	}
}

func TestLockoutExponentialBackoff(t *testing.T) {
	lp := NewLoginProtection(testLoginProtectionConfig(2, time.Minute, time.Hour))

	lp.RecordFailedAttempt("bob")
	_, first := lp.RecordFailedAttempt("bob")
	if first != time.Minute {
		t.Fatalf("first lockout = %v, want 1m", first)
	}

	// Clear the lock but keep lockout history, then trip again.
	lp.attemptsMu.Lock()
	lp.failedAttempts["bob"].lockedUntil = time.Now().Add(-time.Second)
	lp.attemptsMu.Unlock()

	lp.RecordFailedAttempt("bob")
	_, second := lp.RecordFailedAttempt("bob")
	if second != 2*time.Minute {
		t.Errorf("second lockout = %v, want 2m", second)
	}
}

func TestSuccessfulLoginClearsAttempts(t *testing.T) {
	lp := NewLoginProtection(testLoginProtectionConfig(3, time.Minute, time.Minute))

	lp.RecordFailedAttempt("carol")
	lp.RecordFailedAttempt("carol")
	if got := lp.GetRemainingAttempts("carol"); got != 1 {
		t.Errorf("GetRemainingAttempts() = %d, want 1", got)
	}

	lp.RecordSuccessfulLogin("carol")
	if got := lp.GetRemainingAttempts("carol"); got != 3 {
		t.Errorf("GetRemainingAttempts() after success = %d, want 3", got)
	}
}

func TestAttemptWindowReset(t *testing.T) {
	lp := NewLoginProtection(testLoginProtectionConfig(3, time.Minute, 50*time.Millisecond))

	lp.RecordFailedAttempt("dave")
	lp.RecordFailedAttempt("dave")
	time.Sleep(60 * time.Millisecond)

	// Window expired, counter restarts at 1.
	locked, _ := lp.RecordFailedAttempt("dave")
	if locked {
		t.Error("account locked although attempt window had expired")
	}
	if got := lp.GetRemainingAttempts("dave"); got != 2 {
		t.Errorf("GetRemainingAttempts() = %d, want 2", got)
	}
}

func TestLoginProtectionMiddleware(t *testing.T) {
	lp := NewLoginProtection(LoginProtectionConfig{
		IPRateLimit:       1,
		IPBurst:           2,
		MaxFailedAttempts: 5,
		LockoutDuration:   time.Minute,
		AttemptWindow:     time.Minute,
	})

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mw := lp.Middleware()(next)

	t.Run("GET requests bypass rate limiting", func(t *testing.T) {
		for i := 0; i < 10; i++ {
			req := httptest.NewRequest(http.MethodGet, "/admin/login", nil)
			req.RemoteAddr = "192.0.2.1:5000"
			rec := httptest.NewRecorder()
			mw.ServeHTTP(rec, req)
			if rec.Code != http.StatusOK {
				t.Fatalf("GET request %d: status = %d, want 200", i, rec.Code)
			}
		}
	})

	t.Run("POST burst is limited", func(t *testing.T) {
		var last int
		for i := 0; i < 5; i++ {
			req := httptest.NewRequest(http.MethodPost, "/admin/login", nil)
			req.RemoteAddr = "192.0.2.2:5000"
			rec := httptest.NewRecorder()
			mw.ServeHTTP(rec, req)
			last = rec.Code
		}
		if last != http.StatusTooManyRequests {
			t.Errorf("status after burst = %d, want 429", last)
		}
	})
}
