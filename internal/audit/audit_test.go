package audit

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bhasha-cms/bhasha/internal/model"
	"github.com/bhasha-cms/bhasha/internal/store"
	"github.com/bhasha-cms/bhasha/internal/testutil"
)

func newEditor(t *testing.T, q *store.Queries, username string) model.User {
	t.Helper()
	u, err := q.CreateUser(context.Background(), store.CreateUserParams{
		Username:     username,
		Email:        username + "@example.org",
		PasswordHash: "x",
		Role:         model.RoleEditor,
		Languages:    "en",
	})
	require.NoError(t, err)
	return u
}

func TestRecordLoginAndReadBack(t *testing.T) {
	db := testutil.TestDB(t)
	q := store.New(db)
	rec := NewRecorder(q, testutil.TestLogger())
	u := newEditor(t, q, "alice")

	rec.RecordLogin(context.Background(), u.ID, "203.0.113.9", "curl/8.0", "IN")

	rows, err := rec.RecentLogins(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "alice", rows[0].Username)
	require.Equal(t, "203.0.113.9", rows[0].IP)
	require.Equal(t, "IN", rows[0].Country)
}

func TestLoginHistorySurvivesUserDeletion(t *testing.T) {
	db := testutil.TestDB(t)
	q := store.New(db)
	rec := NewRecorder(q, testutil.TestLogger())
	u := newEditor(t, q, "bob")

	rec.RecordLogin(context.Background(), u.ID, "198.51.100.1", "Mozilla/5.0", "")
	rec.RecordActivity(context.Background(), u.ID, model.ActionCreate, 7, map[string]any{"language": "hi"})

	require.NoError(t, q.DeleteUser(context.Background(), u.ID))

	logins, err := rec.RecentLogins(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, logins, 1, "login history must survive account deletion")
	require.Empty(t, logins[0].Username, "deleted account shows blank user fields")

	acts, err := rec.ActivityStream(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, acts, 1)
	require.Equal(t, model.ActionCreate, acts[0].Action)
}

func TestRecordActivityMeta(t *testing.T) {
	db := testutil.TestDB(t)
	q := store.New(db)
	rec := NewRecorder(q, testutil.TestLogger())
	u := newEditor(t, q, "carol")

	rec.RecordActivity(context.Background(), u.ID, model.ActionEdit, 3, map[string]any{"from": "en", "to": "hi"})
	rec.RecordActivity(context.Background(), u.ID, model.ActionDelete, 0, nil)

	acts, err := rec.ActivityStream(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, acts, 2)

	// Newest first.
	require.Equal(t, model.ActionDelete, acts[0].Action)
	require.False(t, acts[0].PostID.Valid)
	require.Equal(t, model.ActionEdit, acts[1].Action)
	require.Equal(t, sql.NullInt64{Int64: 3, Valid: true}, acts[1].PostID)
	require.Contains(t, acts[1].Meta, `"from":"en"`)
}

func TestRecordSwallowsFailures(t *testing.T) {
	db := testutil.TestDB(t)
	q := store.New(db)
	rec := NewRecorder(q, testutil.TestLogger())

	require.NoError(t, db.Close())

	// Must not panic or surface the error to callers.
	rec.RecordLogin(context.Background(), 1, "127.0.0.1", "ua", "")
	rec.RecordActivity(context.Background(), 1, model.ActionCreate, 1, nil)
}

func TestPostCountsByUser(t *testing.T) {
	db := testutil.TestDB(t)
	q := store.New(db)
	rec := NewRecorder(q, testutil.TestLogger())
	a := newEditor(t, q, "dave")
	b := newEditor(t, q, "erin")

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := q.CreatePost(ctx, store.CreatePostParams{
			ImagePath: "/uploads/x.jpg",
			Language:  "en",
			CreatedBy: sql.NullInt64{Int64: a.ID, Valid: true},
		})
		require.NoError(t, err)
	}
	_, err := q.CreatePost(ctx, store.CreatePostParams{
		ImagePath: "/uploads/y.jpg",
		Language:  "en",
		CreatedBy: sql.NullInt64{Int64: b.ID, Valid: true},
	})
	require.NoError(t, err)

	counts, err := rec.PostCountsByUser(ctx)
	require.NoError(t, err)
	require.Len(t, counts, 2)
	require.Equal(t, "dave", counts[0].Username)
	require.EqualValues(t, 3, counts[0].PostsCreated)
}
