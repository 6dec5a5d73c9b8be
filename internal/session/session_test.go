package session

import (
	"net/http"
	"testing"

	"github.com/bhasha-cms/bhasha/internal/testutil"
)

func TestNew(t *testing.T) {
	db := testutil.TestDB(t)

	sm := New(db, false)

	if sm.Cookie.Name != "bhasha_session" {
		t.Errorf("cookie name = %q", sm.Cookie.Name)
	}
	if sm.Lifetime != lifetime {
		t.Errorf("lifetime = %v; want %v", sm.Lifetime, lifetime)
	}
	if sm.IdleTimeout != idleTimeout {
		t.Errorf("idle timeout = %v; want %v", sm.IdleTimeout, idleTimeout)
	}
	if !sm.Cookie.HttpOnly {
		t.Error("cookie should be HttpOnly")
	}
	if sm.Cookie.SameSite != http.SameSiteLaxMode {
		t.Errorf("samesite = %v; want lax", sm.Cookie.SameSite)
	}
	if !sm.Cookie.Secure {
		t.Error("production cookie should be Secure")
	}

	if dev := New(db, true); dev.Cookie.Secure {
		t.Error("dev cookie should not be Secure")
	}
}
