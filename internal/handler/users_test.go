package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/bhasha-cms/bhasha/internal/mailer"
	"github.com/bhasha-cms/bhasha/internal/model"
)

func newUserHandler(t *testing.T, env *testEnv) *UserHandler {
	t.Helper()

	// SMTP stays unconfigured in tests; credential mail is skipped.
	m := mailer.New("", 0, "", "", "")
	return NewUserHandler(env.db, env.renderer, env.sessions, m, "http://localhost:8080/admin/login")
}

func createUserForm(username, role string, languages ...string) *http.Request {
	form := url.Values{}
	form.Set("username", username)
	form.Set("role", role)
	for _, l := range languages {
		form.Add("languages", l)
	}
	req := httptest.NewRequest(http.MethodPost, "/admin/users", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestUserCreate(t *testing.T) {
	env := newTestEnv(t)
	h := newUserHandler(t, env)
	admin := env.createTestUser(t, "admin1", model.RoleAdmin, "")

	rr := env.serve(h.Create, createUserForm("meera", model.RoleEditor, "ta", "ml", "xx"), &admin)

	if rr.Code != http.StatusSeeOther {
		t.Fatalf("status = %d; want 303", rr.Code)
	}

	user, err := env.queries.GetUserByUsername(context.Background(), "meera")
	if err != nil {
		t.Fatalf("created user not found: %v", err)
	}
	if user.Role != model.RoleEditor {
		t.Errorf("role = %q", user.Role)
	}
	// Unknown code "xx" is dropped, the rest keep the fixed set order.
	if user.Languages != "ta,ml" {
		t.Errorf("languages = %q; want ta,ml", user.Languages)
	}
	if user.PasswordHash == "" {
		t.Error("password hash should be set")
	}
}

func TestUserCreateEditorWithoutLanguages(t *testing.T) {
	env := newTestEnv(t)
	h := newUserHandler(t, env)
	admin := env.createTestUser(t, "admin1", model.RoleAdmin, "")

	rr := env.serve(h.Create, createUserForm("ravi", model.RoleEditor), &admin)

	if rr.Code != http.StatusSeeOther {
		t.Fatalf("status = %d; want 303", rr.Code)
	}
	user, err := env.queries.GetUserByUsername(context.Background(), "ravi")
	if err != nil {
		t.Fatalf("created user not found: %v", err)
	}
	// An editor never ends up with no assigned languages.
	if user.Languages != model.DefaultLanguageCode {
		t.Errorf("languages = %q; want %q", user.Languages, model.DefaultLanguageCode)
	}
}

func TestUserCreateRejectsBadInput(t *testing.T) {
	env := newTestEnv(t)
	h := newUserHandler(t, env)
	admin := env.createTestUser(t, "admin1", model.RoleAdmin, "")

	tests := []struct {
		name string
		req  *http.Request
	}{
		{"bad username", createUserForm("x", model.RoleEditor, "en")},
		{"bad role", createUserForm("valid-name", "owner", "en")},
		{"duplicate", createUserForm("admin1", model.RoleEditor, "en")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := env.serve(h.Create, tt.req, &admin)
			if rr.Code != http.StatusSeeOther {
				t.Fatalf("status = %d; want 303", rr.Code)
			}
			if loc := rr.Header().Get("Location"); loc != "/admin/users" {
				t.Errorf("redirect = %q", loc)
			}
		})
	}

	users, err := env.queries.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("list users: %v", err)
	}
	if len(users) != 1 {
		t.Errorf("got %d users; want only the admin", len(users))
	}
}

func TestUserBlockSelfProtection(t *testing.T) {
	env := newTestEnv(t)
	h := newUserHandler(t, env)
	admin := env.createTestUser(t, "admin1", model.RoleAdmin, "")

	req := httptest.NewRequest(http.MethodPost, "/admin/users/"+strconv.FormatInt(admin.ID, 10)+"/block", nil)
	req = withIDParam(req, strconv.FormatInt(admin.ID, 10))
	rr := env.serve(h.Block, req, &admin)

	if rr.Code != http.StatusSeeOther {
		t.Fatalf("status = %d; want 303", rr.Code)
	}
	got, err := env.queries.GetUserByID(context.Background(), admin.ID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if got.Blocked {
		t.Error("admin must not be able to block themselves")
	}
}

func TestUserBlockAndUnblock(t *testing.T) {
	env := newTestEnv(t)
	h := newUserHandler(t, env)
	admin := env.createTestUser(t, "admin1", model.RoleAdmin, "")
	editor := env.createTestUser(t, "editor1", model.RoleEditor, "en")

	id := strconv.FormatInt(editor.ID, 10)

	req := withIDParam(httptest.NewRequest(http.MethodPost, "/admin/users/"+id+"/block", nil), id)
	env.serve(h.Block, req, &admin)

	got, err := env.queries.GetUserByID(context.Background(), editor.ID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if !got.Blocked {
		t.Fatal("editor should be blocked")
	}

	req = withIDParam(httptest.NewRequest(http.MethodPost, "/admin/users/"+id+"/unblock", nil), id)
	env.serve(h.Unblock, req, &admin)

	got, err = env.queries.GetUserByID(context.Background(), editor.ID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if got.Blocked {
		t.Error("editor should be unblocked")
	}
}

func TestUserDeleteKeepsPosts(t *testing.T) {
	env := newTestEnv(t)
	h := newUserHandler(t, env)
	admin := env.createTestUser(t, "admin1", model.RoleAdmin, "")
	editor := env.createTestUser(t, "editor1", model.RoleEditor, "en")
	post := insertPost(t, env.queries, "en", editor.ID)

	id := strconv.FormatInt(editor.ID, 10)
	req := withIDParam(httptest.NewRequest(http.MethodPost, "/admin/users/"+id+"/delete", nil), id)
	rr := env.serve(h.Delete, req, &admin)

	if rr.Code != http.StatusSeeOther {
		t.Fatalf("status = %d; want 303", rr.Code)
	}
	if _, err := env.queries.GetUserByID(context.Background(), editor.ID); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("user should be gone, got err %v", err)
	}
	if _, err := env.queries.GetPostByID(context.Background(), post.ID); err != nil {
		t.Errorf("post should survive its author's deletion: %v", err)
	}
}
