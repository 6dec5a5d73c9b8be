package handler

import (
	"bytes"
	"context"
	"database/sql"
	"image"
	"image/color"
	"image/png"
	"io/fs"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"

	"github.com/bhasha-cms/bhasha/internal/auth"
	"github.com/bhasha-cms/bhasha/internal/middleware"
	"github.com/bhasha-cms/bhasha/internal/model"
	"github.com/bhasha-cms/bhasha/internal/render"
	"github.com/bhasha-cms/bhasha/internal/session"
	"github.com/bhasha-cms/bhasha/internal/store"
	"github.com/bhasha-cms/bhasha/internal/testutil"
	"github.com/bhasha-cms/bhasha/web"
)

const testPassword = "correct-horse-battery"

// testEnv bundles the pieces most handler tests need.
type testEnv struct {
	db       *sql.DB
	queries  *store.Queries
	renderer *render.Renderer
	sessions *scs.SessionManager
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.TestDB(t)
	sm := session.New(db, true)

	templatesFS, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		t.Fatalf("templates fs: %v", err)
	}
	renderer, err := render.New(render.Config{
		TemplatesFS:    templatesFS,
		SessionManager: sm,
		IsDev:          true,
	})
	if err != nil {
		t.Fatalf("renderer: %v", err)
	}

	return &testEnv{
		db:       db,
		queries:  store.New(db),
		renderer: renderer,
		sessions: sm,
	}
}

// createTestUser inserts a user whose password is testPassword.
func (e *testEnv) createTestUser(t *testing.T, username, role, languages string) model.User {
	t.Helper()

	hash, err := auth.HashPassword(testPassword)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user, err := e.queries.CreateUser(context.Background(), store.CreateUserParams{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: hash,
		Role:         role,
		Languages:    languages,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

// serve runs a handler inside the session middleware, with user preloaded
// into the request context the way LoadUser does.
func (e *testEnv) serve(h http.HandlerFunc, req *http.Request, user *model.User) *httptest.ResponseRecorder {
	if user != nil {
		ctx := context.WithValue(req.Context(), middleware.ContextKeyUser, *user)
		req = req.WithContext(ctx)
	}
	rr := httptest.NewRecorder()
	e.sessions.LoadAndSave(h).ServeHTTP(rr, req)
	return rr
}

// withIDParam attaches a chi route context carrying the {id} parameter.
func withIDParam(req *http.Request, id string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

// multipartPostForm builds a multipart form body with the given fields and
// an optional PNG named by imageField.
func multipartPostForm(t *testing.T, fields map[string]string, imageField string) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if imageField != "" {
		fw, err := mw.CreateFormFile(imageField, "test.png")
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		img := image.NewRGBA(image.Rect(0, 0, 40, 30))
		for y := 0; y < 30; y++ {
			for x := 0; x < 40; x++ {
				img.Set(x, y, color.RGBA{R: uint8(x * 6), G: uint8(y * 8), B: 120, A: 255})
			}
		}
		if err := png.Encode(fw, img); err != nil {
			t.Fatalf("encode png: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, mw.FormDataContentType()
}
