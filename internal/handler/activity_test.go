package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bhasha-cms/bhasha/internal/audit"
	"github.com/bhasha-cms/bhasha/internal/geoip"
	"github.com/bhasha-cms/bhasha/internal/model"
	"github.com/bhasha-cms/bhasha/internal/testutil"
)

func TestActivityIndex(t *testing.T) {
	env := newTestEnv(t)
	recorder := audit.NewRecorder(env.queries, testutil.TestLogger())
	h := NewActivityHandler(env.queries, recorder, env.renderer, geoip.NewLookup())

	admin := env.createTestUser(t, "admin1", model.RoleAdmin, "")
	editor := env.createTestUser(t, "editor1", model.RoleEditor, "hi")
	insertPost(t, env.queries, "hi", editor.ID)

	ctx := context.Background()
	recorder.RecordLogin(ctx, editor.ID, "203.0.113.9", "Mozilla/5.0 (X11; Linux x86_64) Firefox/130.0", "IN")
	recorder.RecordActivity(ctx, editor.ID, model.ActionCreate, 1, map[string]any{"language": "hi"})

	req := httptest.NewRequest(http.MethodGet, "/admin/activity", nil)
	rr := env.serve(h.Index, req, &admin)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, "editor1") {
		t.Error("activity page should name the acting user")
	}
	if !strings.Contains(body, "203.0.113.9") {
		t.Error("login IP missing")
	}
	if !strings.Contains(body, "India") {
		t.Error("country code should render as a country name")
	}
	if !strings.Contains(body, "Firefox") {
		t.Error("user agent should render as a client summary")
	}
	if !strings.Contains(body, model.ActionCreate) {
		t.Error("content action missing")
	}
}

func TestClientSummary(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"empty", "", ""},
		{"firefox linux", "Mozilla/5.0 (X11; Linux x86_64; rv:130.0) Gecko/20100101 Firefox/130.0", "Firefox 130.0 on Linux"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := clientSummary(tt.raw); got != tt.want {
				t.Errorf("clientSummary(%q) = %q; want %q", tt.raw, got, tt.want)
			}
		})
	}
}
