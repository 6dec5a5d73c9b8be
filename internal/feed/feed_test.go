package feed

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bhasha-cms/bhasha/internal/store"
	"github.com/bhasha-cms/bhasha/internal/testutil"
)

func seedPosts(t *testing.T, q *store.Queries, lang string, n int) []int64 {
	t.Helper()
	ctx := context.Background()
	ids := make([]int64, 0, n)
	for i := 0; i < n; i++ {
		p, err := q.CreatePost(ctx, store.CreatePostParams{
			Headline:  sql.NullString{String: "headline", Valid: true},
			ImagePath: "/uploads/test.jpg",
			Language:  lang,
		})
		require.NoError(t, err)
		ids = append(ids, p.ID)
	}
	return ids
}

func TestClampLimit(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, DefaultLimit},
		{-5, DefaultLimit},
		{1, 1},
		{10, 10},
		{50, 50},
		{51, 50},
		{1000, 50},
	}
	for _, tt := range tests {
		if got := ClampLimit(tt.in); got != tt.want {
			t.Errorf("ClampLimit(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestFetchNewestFirst(t *testing.T) {
	db := testutil.TestDB(t)
	q := store.New(db)
	seedPosts(t, q, "en", 5)

	page, err := New(q).Fetch(context.Background(), Request{})
	require.NoError(t, err)
	require.Len(t, page.Items, 5)
	for i := 1; i < len(page.Items); i++ {
		require.Greater(t, page.Items[i-1].ID, page.Items[i].ID, "feed must be ordered by id descending")
	}
	require.NotNil(t, page.NextCursor, "non-empty page always advertises a cursor")
	require.Equal(t, page.Items[len(page.Items)-1].ID, *page.NextCursor)
}

func TestFetchPagesAreDisjointAndExhaustive(t *testing.T) {
	db := testutil.TestDB(t)
	q := store.New(db)
	ids := seedPosts(t, q, "en", 23)
	svc := New(q)

	seen := make(map[int64]bool)
	req := Request{Limit: 10}
	pages := 0
	for {
		page, err := svc.Fetch(context.Background(), req)
		require.NoError(t, err)
		pages++
		for _, p := range page.Items {
			require.False(t, seen[p.ID], "post %d returned twice", p.ID)
			seen[p.ID] = true
		}
		if page.NextCursor == nil {
			break
		}
		require.Equal(t, page.Items[len(page.Items)-1].ID, *page.NextCursor)
		req.Cursor = *page.NextCursor
	}

	// 10, 10, 3, then the empty page that ends the walk.
	require.Equal(t, 4, pages)
	require.Len(t, seen, len(ids), "every post must appear exactly once")
}

func TestFetchLanguageFilter(t *testing.T) {
	db := testutil.TestDB(t)
	q := store.New(db)
	seedPosts(t, q, "hi", 3)
	seedPosts(t, q, "te", 2)
	svc := New(q)

	page, err := svc.Fetch(context.Background(), Request{Language: "hi"})
	require.NoError(t, err)
	require.Len(t, page.Items, 3)
	for _, p := range page.Items {
		require.Equal(t, "hi", p.Language)
	}

	empty, err := svc.Fetch(context.Background(), Request{Language: "mr"})
	require.NoError(t, err)
	require.Empty(t, empty.Items)
	require.Nil(t, empty.NextCursor)
}

func TestFetchCursorIsStrict(t *testing.T) {
	db := testutil.TestDB(t)
	q := store.New(db)
	ids := seedPosts(t, q, "en", 4)
	svc := New(q)

	cursor := ids[2]
	page, err := svc.Fetch(context.Background(), Request{Cursor: cursor})
	require.NoError(t, err)
	for _, p := range page.Items {
		require.Less(t, p.ID, cursor, "cursor boundary must be exclusive")
	}
	require.Len(t, page.Items, 2)
}

func TestFetchExactlyFullLastPage(t *testing.T) {
	db := testutil.TestDB(t)
	q := store.New(db)
	seedPosts(t, q, "en", 10)
	svc := New(q)

	first, err := svc.Fetch(context.Background(), Request{Limit: 10})
	require.NoError(t, err)
	require.Len(t, first.Items, 10)
	require.NotNil(t, first.NextCursor, "full page advertises a cursor even at the end")

	second, err := svc.Fetch(context.Background(), Request{Limit: 10, Cursor: *first.NextCursor})
	require.NoError(t, err)
	require.Empty(t, second.Items)
	require.Nil(t, second.NextCursor)
}

func TestFetchPartialPageCarriesCursor(t *testing.T) {
	db := testutil.TestDB(t)
	q := store.New(db)
	ids := seedPosts(t, q, "en", 10)
	svc := New(q)

	// Only one post sits below ids[1]; the partial page still points at it.
	page, err := svc.Fetch(context.Background(), Request{Limit: 3, Cursor: ids[1]})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	require.Equal(t, ids[0], page.Items[0].ID)
	require.NotNil(t, page.NextCursor)
	require.Equal(t, ids[0], *page.NextCursor)

	tail, err := svc.Fetch(context.Background(), Request{Limit: 3, Cursor: *page.NextCursor})
	require.NoError(t, err)
	require.Empty(t, tail.Items)
	require.Nil(t, tail.NextCursor)
}

func TestFetchStableUnderConcurrentInserts(t *testing.T) {
	db := testutil.TestDB(t)
	q := store.New(db)
	seedPosts(t, q, "en", 12)
	svc := New(q)

	first, err := svc.Fetch(context.Background(), Request{Limit: 10})
	require.NoError(t, err)
	require.NotNil(t, first.NextCursor)

	// New posts land above the cursor and must not shift the next page.
	seedPosts(t, q, "en", 5)

	second, err := svc.Fetch(context.Background(), Request{Limit: 10, Cursor: *first.NextCursor})
	require.NoError(t, err)
	require.Len(t, second.Items, 2)
	for _, p := range second.Items {
		require.Less(t, p.ID, *first.NextCursor)
	}
}
