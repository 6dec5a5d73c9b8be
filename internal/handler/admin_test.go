package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bhasha-cms/bhasha/internal/model"
)

func TestDashboardShowsOnlyAssignedLanguages(t *testing.T) {
	env := newTestEnv(t)
	h := NewAdminHandler(env.db, env.renderer)
	editor := env.createTestUser(t, "editor1", model.RoleEditor, "en,hi")
	insertPost(t, env.queries, "en", editor.ID)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	rr := env.serve(h.Dashboard, req, &editor)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, "English") || !strings.Contains(body, "Hindi") {
		t.Error("assigned language tabs missing")
	}
	if strings.Contains(body, "Tamil") {
		t.Error("unassigned language must not appear")
	}
	if !strings.Contains(body, "headline") {
		t.Error("post list missing")
	}
}

func TestDashboardRejectsForeignLanguageQuery(t *testing.T) {
	env := newTestEnv(t)
	h := NewAdminHandler(env.db, env.renderer)
	editor := env.createTestUser(t, "editor1", model.RoleEditor, "hi")
	insertPost(t, env.queries, "hi", editor.ID)
	insertPost(t, env.queries, "ta", editor.ID)

	// ?lang=ta is outside the editor's set and falls back to hi.
	req := httptest.NewRequest(http.MethodGet, "/admin?lang=ta", nil)
	rr := env.serve(h.Dashboard, req, &editor)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Hindi") {
		t.Error("dashboard should fall back to an assigned language")
	}
}

func TestDashboardAdminSeesAllLanguages(t *testing.T) {
	env := newTestEnv(t)
	h := NewAdminHandler(env.db, env.renderer)
	admin := env.createTestUser(t, "admin1", model.RoleAdmin, "")

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	rr := env.serve(h.Dashboard, req, &admin)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", rr.Code)
	}
	body := rr.Body.String()
	for _, lang := range model.AllLanguages {
		if !strings.Contains(body, lang.Label) {
			t.Errorf("admin dashboard missing %s tab", lang.Label)
		}
	}
}

func TestDashboardEditorWithoutLanguages(t *testing.T) {
	env := newTestEnv(t)
	h := NewAdminHandler(env.db, env.renderer)
	editor := env.createTestUser(t, "editor1", model.RoleEditor, "")

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	rr := env.serve(h.Dashboard, req, &editor)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", rr.Code)
	}
}
