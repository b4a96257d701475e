package gormstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/UkralStul/feed-engine/internal/domain"
	"github.com/UkralStul/feed-engine/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := OpenSQLite(filepath.Join(t.TempDir(), "feed.db"), logger.Silent)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func author(handle string) domain.Author {
	return domain.Author{ID: handle, Handle: handle, DisplayName: handle}
}

var base = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func seed(t *testing.T, store *Store) {
	t.Helper()
	poll := domain.NewPoll([]string{"yes", "no"}, base.Add(time.Hour))
	poll.Votes[0] = 1
	poll.Ballots["bob"] = 0

	p1 := domain.Original{
		Header: domain.Header{ID: "p1", Author: author("alice"), CreatedAt: base},
		Body: domain.Body{
			Content: "hello",
			Media:   []string{"a.png"},
			Poll:    &poll,
			Stats:   domain.Stats{Likes: 2, Reposts: 2},
		},
	}
	q1 := domain.QuoteRepost{
		Header:         domain.Header{ID: "q1", Author: author("bob"), CreatedAt: base.Add(time.Minute)},
		Body:           domain.Body{Content: "quoting"},
		OriginalPostID: "p1",
		QuotedPost:     domain.Snapshot(p1),
	}
	r1 := domain.NormalRepost{
		Header:         domain.Header{ID: "r1", Author: author("carol"), CreatedAt: base.Add(2 * time.Minute)},
		OriginalPostID: "p1",
	}
	r2 := domain.NormalRepost{
		Header:         domain.Header{ID: "r2", Author: author("dave"), CreatedAt: base.Add(3 * time.Minute)},
		OriginalPostID: "q1",
	}
	require.NoError(t, store.SavePosts(context.Background(), []domain.Post{p1, q1, r1, r2}, nil))
}

func TestStore_PostsRoundTrip(t *testing.T) {
	store := newTestStore(t)
	seed(t, store)
	ctx := context.Background()

	posts, err := store.ListPosts(ctx, storage.ListArgs{Limit: 10})
	require.NoError(t, err)
	require.Len(t, posts, 4)
	assert.Equal(t, "r2", posts[0].Head().ID)
	assert.Equal(t, "p1", posts[3].Head().ID)

	got, err := store.GetPostsByIDs(ctx, []string{"p1", "q1", "r1"})
	require.NoError(t, err)

	p1, ok := got["p1"].(domain.Original)
	require.True(t, ok)
	assert.Equal(t, []string{"a.png"}, p1.Media)
	assert.Equal(t, 2, p1.Stats.Likes)
	require.NotNil(t, p1.Poll)
	assert.Equal(t, 1, p1.Poll.Votes[0])
	assert.Equal(t, map[string]int{"bob": 0}, p1.Poll.Ballots)

	q1, ok := got["q1"].(domain.QuoteRepost)
	require.True(t, ok)
	assert.Equal(t, "p1", q1.OriginalPostID)
	require.NotNil(t, q1.QuotedPost)
	assert.Equal(t, "hello", q1.QuotedPost.Content)

	r1, ok := got["r1"].(domain.NormalRepost)
	require.True(t, ok)
	assert.Equal(t, "p1", r1.OriginalPostID)

	byCarol, err := store.ListPosts(ctx, storage.ListArgs{Author: "carol"})
	require.NoError(t, err)
	require.Len(t, byCarol, 1)
}

func TestStore_RelatedPostsAndCascadeDelete(t *testing.T) {
	store := newTestStore(t)
	seed(t, store)
	ctx := context.Background()

	related, err := store.RelatedPosts(ctx, "p1")
	require.NoError(t, err)
	assert.Len(t, related, 4)

	_, err = store.RelatedPosts(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, store.SaveComment(ctx, domain.Comment{ID: "c1", PostID: "p1", Author: author("bob"), Content: "hi", CreatedAt: base}))
	require.NoError(t, store.SetCommentLike(ctx, "carol", "c1", true))
	require.NoError(t, store.SetPostLike(ctx, "carol", "p1", true))

	require.NoError(t, store.SavePosts(ctx, nil, []string{"p1", "q1", "r1", "r2"}))

	posts, err := store.ListPosts(ctx, storage.ListArgs{})
	require.NoError(t, err)
	assert.Empty(t, posts)
	_, err = store.GetCommentByID(ctx, "c1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_LikesAndRepostTargets(t *testing.T) {
	store := newTestStore(t)
	seed(t, store)
	ctx := context.Background()

	require.NoError(t, store.SetPostLike(ctx, "erin", "p1", true))
	require.NoError(t, store.SetPostLike(ctx, "erin", "p1", true))
	likes, err := store.PostLikes(ctx, "erin", []string{"p1", "q1"})
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"p1": true}, likes)

	require.NoError(t, store.SetPostLike(ctx, "erin", "p1", false))
	likes, err = store.PostLikes(ctx, "erin", []string{"p1"})
	require.NoError(t, err)
	assert.Empty(t, likes)

	assert.ErrorIs(t, store.SetPostLike(ctx, "erin", "missing", true), domain.ErrNotFound)

	targets, err := store.RepostedTargets(ctx, "carol", []string{"p1", "q1"})
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"p1": true}, targets)

	// цитата не считается обычным репостом
	targets, err = store.RepostedTargets(ctx, "bob", []string{"p1"})
	require.NoError(t, err)
	assert.Empty(t, targets)
}

func TestStore_CommentsPagination(t *testing.T) {
	store := newTestStore(t)
	seed(t, store)
	ctx := context.Background()

	for i, id := range []string{"c1", "c2", "c3", "c4", "c5"} {
		c := domain.Comment{ID: id, PostID: "p1", Author: author("bob"), Content: "comment", CreatedAt: base.Add(time.Duration(i) * time.Second)}
		require.NoError(t, store.SaveComment(ctx, c))
	}

	first, err := store.GetCommentsByPostID(ctx, "p1", storage.PaginationArgs{Limit: 2})
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, "c1", first[0].ID)

	cursor := first[1].ID
	second, err := store.GetCommentsByPostID(ctx, "p1", storage.PaginationArgs{Limit: 3, Cursor: &cursor})
	require.NoError(t, err)
	require.Len(t, second, 3)
	assert.Equal(t, "c3", second[0].ID)

	assert.ErrorIs(t, store.SaveComment(ctx, domain.Comment{ID: "x", PostID: "missing"}), domain.ErrNotFound)
}

func TestStore_Moderation(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.AddMute(ctx, domain.Mute{Viewer: "eve", Target: "bob"}))
	assert.ErrorIs(t, store.AddMute(ctx, domain.Mute{Viewer: "eve", Target: "bob"}), domain.ErrDuplicateAction)
	require.NoError(t, store.AddBlock(ctx, domain.Block{Viewer: "eve", Target: "bob"}))

	muted, err := store.MutedHandles(ctx, "eve")
	require.NoError(t, err)
	assert.Equal(t, []string{"bob"}, muted)
	blocked, err := store.BlockedHandles(ctx, "eve")
	require.NoError(t, err)
	assert.Equal(t, []string{"bob"}, blocked)

	require.NoError(t, store.RemoveMute(ctx, "eve", "bob"))
	assert.ErrorIs(t, store.RemoveMute(ctx, "eve", "bob"), domain.ErrNotFound)
	muted, err = store.MutedHandles(ctx, "eve")
	require.NoError(t, err)
	assert.Empty(t, muted)

	enabled, err := store.AutoHideReported(ctx, "eve")
	require.NoError(t, err)
	assert.True(t, enabled)
	require.NoError(t, store.SetAutoHideReported(ctx, "eve", false))
	enabled, err = store.AutoHideReported(ctx, "eve")
	require.NoError(t, err)
	assert.False(t, enabled)

	require.NoError(t, store.AddReport(ctx, domain.Report{
		ID: "rep1", Reporter: "eve", ContentType: domain.ContentPost, ContentID: "p1",
		Reason: domain.ReasonSpam, CreatedAt: base,
	}))
	reports, err := store.ReportsBy(ctx, "eve")
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, domain.ReasonSpam, reports[0].Reason)
}

func TestStore_Bookmarks(t *testing.T) {
	store := newTestStore(t)
	seed(t, store)
	ctx := context.Background()

	require.NoError(t, store.AddBookmark(ctx, domain.Bookmark{Viewer: "erin", PostID: "p1", CreatedAt: base}))
	require.NoError(t, store.AddBookmark(ctx, domain.Bookmark{Viewer: "erin", PostID: "q1", CreatedAt: base.Add(time.Minute)}))
	assert.ErrorIs(t, store.AddBookmark(ctx, domain.Bookmark{Viewer: "erin", PostID: "p1", CreatedAt: base}), domain.ErrDuplicateAction)
	assert.ErrorIs(t, store.AddBookmark(ctx, domain.Bookmark{Viewer: "erin", PostID: "nope"}), domain.ErrNotFound)

	marks, err := store.ListBookmarks(ctx, "erin", storage.ListArgs{Limit: 10})
	require.NoError(t, err)
	require.Len(t, marks, 2)
	assert.Equal(t, "q1", marks[0].PostID)
	assert.Equal(t, "p1", marks[1].PostID)
	assert.True(t, base.Equal(marks[1].CreatedAt))

	flags, err := store.PostBookmarks(ctx, "erin", []string{"p1", "q1", "r1"})
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"p1": true, "q1": true}, flags)

	require.NoError(t, store.RemoveBookmark(ctx, "erin", "q1"))
	assert.ErrorIs(t, store.RemoveBookmark(ctx, "erin", "q1"), domain.ErrNotFound)

	require.NoError(t, store.SavePosts(ctx, nil, []string{"p1", "q1", "r1", "r2"}))
	marks, err = store.ListBookmarks(ctx, "erin", storage.ListArgs{})
	require.NoError(t, err)
	assert.Empty(t, marks)
}
