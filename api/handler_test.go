package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UkralStul/feed-engine/internal/domain"
	"github.com/UkralStul/feed-engine/internal/moderation"
	"github.com/UkralStul/feed-engine/internal/service"
	"github.com/UkralStul/feed-engine/internal/storage/inmemory"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	store := inmemory.New()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	clock := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	n := 0
	svc := service.New(store, logger,
		service.WithClock(func() time.Time {
			clock = clock.Add(time.Second)
			return clock
		}),
		service.WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("id-%d", n)
		}),
	)
	srv := httptest.NewServer(NewRouter(svc, store, logger))
	t.Cleanup(srv.Close)
	return srv
}

// call выполняет запрос от имени handle и декодирует ответ в out, если он передан.
func call(t *testing.T, srv *httptest.Server, method, path, handle string, body any, out any) int {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, srv.URL+path, reader)
	require.NoError(t, err)
	if handle != "" {
		req.Header.Set(ViewerHeader, handle)
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil && resp.StatusCode < 300 {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func createPost(t *testing.T, srv *httptest.Server, handle string, body draftRequest) domain.Record {
	t.Helper()
	var rec domain.Record
	status := call(t, srv, http.MethodPost, "/posts", handle, body, &rec)
	require.Equal(t, http.StatusCreated, status)
	return rec
}

func TestAPI_RequiresViewer(t *testing.T) {
	srv := newTestServer(t)

	status := call(t, srv, http.MethodPost, "/posts", "", draftRequest{Text: "hi"}, nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	// чтение доступно анонимно
	var resp feedResponse
	status = call(t, srv, http.MethodGet, "/feed", "", nil, &resp)
	assert.Equal(t, http.StatusOK, status)
	assert.Empty(t, resp.Items)
}

func TestAPI_CreatePostValidation(t *testing.T) {
	srv := newTestServer(t)

	status := call(t, srv, http.MethodPost, "/posts", "alice", draftRequest{}, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/posts", bytes.NewBufferString("{"))
	require.NoError(t, err)
	req.Header.Set(ViewerHeader, "alice")
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	rec := createPost(t, srv, "alice", draftRequest{Text: "hello"})
	assert.Equal(t, domain.KindPost, rec.Kind)
	assert.Equal(t, "alice", rec.Author.Handle)
	assert.Equal(t, "hello", rec.Content)
}

func TestAPI_RepostToggleAndFeed(t *testing.T) {
	srv := newTestServer(t)
	orig := createPost(t, srv, "alice", draftRequest{Text: "original"})

	var rp repostResponse
	status := call(t, srv, http.MethodPost, "/posts/"+orig.ID+"/repost", "bob", nil, &rp)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "created", rp.Outcome)
	require.NotNil(t, rp.Target.Post.Stats)
	assert.Equal(t, 1, rp.Target.Post.Stats.Reposts)
	require.NotNil(t, rp.Target.Post.UserInteractions)
	assert.True(t, rp.Target.Post.UserInteractions.Reposted)

	var page feedResponse
	status = call(t, srv, http.MethodGet, "/feed", "carol", nil, &page)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, page.Items, 2)
	first := page.Items[0]
	assert.Equal(t, domain.KindNormalRepost, first.Post.Kind)
	require.NotNil(t, first.Display)
	assert.Equal(t, orig.ID, first.Display.ID)

	status = call(t, srv, http.MethodPost, "/posts/"+orig.ID+"/repost", "bob", nil, &rp)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "undone", rp.Outcome)
	assert.Equal(t, 0, rp.Target.Post.Stats.Reposts)

	status = call(t, srv, http.MethodPost, "/posts/missing/repost", "bob", nil, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestAPI_QuoteAndLike(t *testing.T) {
	srv := newTestServer(t)
	orig := createPost(t, srv, "alice", draftRequest{Text: "original"})

	var quote domain.Record
	status := call(t, srv, http.MethodPost, "/posts/"+orig.ID+"/quote", "bob", draftRequest{Text: "so true"}, &quote)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, domain.KindQuoteRepost, quote.Kind)
	assert.Equal(t, orig.ID, quote.OriginalPostID)
	require.NotNil(t, quote.QuotedPost)
	assert.Equal(t, "original", quote.QuotedPost.Content)

	var like likeResponse
	status = call(t, srv, http.MethodPost, "/posts/"+quote.ID+"/like", "carol", nil, &like)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, like.Liked)
	assert.Equal(t, 1, like.Post.Post.Stats.Likes)

	status = call(t, srv, http.MethodPost, "/posts/"+quote.ID+"/like", "carol", nil, &like)
	require.Equal(t, http.StatusOK, status)
	assert.False(t, like.Liked)
	assert.Equal(t, 0, like.Post.Post.Stats.Likes)
}

func TestAPI_PollVotes(t *testing.T) {
	srv := newTestServer(t)
	rec := createPost(t, srv, "alice", draftRequest{
		Text: "tabs or spaces",
		Poll: &pollRequest{Options: []string{"tabs", "spaces"}, DurationDays: 3},
	})
	require.NotNil(t, rec.Poll)

	path := "/posts/" + rec.ID + "/poll/votes"
	status := call(t, srv, http.MethodPost, path, "bob", voteRequest{}, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	bad := 5
	status = call(t, srv, http.MethodPost, path, "bob", voteRequest{Option: &bad}, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	first, second := 0, 1
	var poll pollResponse
	status = call(t, srv, http.MethodPost, path, "bob", voteRequest{Option: &first}, &poll)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []int{1, 0}, poll.Results)
	assert.Equal(t, 1, poll.TotalVotes)
	require.NotNil(t, poll.UserVote)
	assert.Equal(t, 0, *poll.UserVote)

	status = call(t, srv, http.MethodPost, path, "bob", voteRequest{Option: &second}, &poll)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []int{0, 1}, poll.Results)
	assert.Equal(t, 1, poll.TotalVotes)
}

func TestAPI_DeletePost(t *testing.T) {
	srv := newTestServer(t)
	rec := createPost(t, srv, "alice", draftRequest{Text: "bye"})

	status := call(t, srv, http.MethodDelete, "/posts/"+rec.ID, "bob", nil, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status = call(t, srv, http.MethodDelete, "/posts/"+rec.ID, "alice", nil, nil)
	assert.Equal(t, http.StatusNoContent, status)

	status = call(t, srv, http.MethodGet, "/posts/"+rec.ID, "alice", nil, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestAPI_Comments(t *testing.T) {
	srv := newTestServer(t)
	rec := createPost(t, srv, "alice", draftRequest{Text: "discuss"})

	var comment domain.Comment
	status := call(t, srv, http.MethodPost, "/posts/"+rec.ID+"/comments", "bob", draftRequest{Text: "first"}, &comment)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, rec.ID, comment.PostID)

	status = call(t, srv, http.MethodPost, "/comments/"+comment.ID+"/like", "alice", nil, &comment)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 1, comment.Likes)
	assert.True(t, comment.UserLiked)

	var list commentsResponse
	status = call(t, srv, http.MethodGet, "/posts/"+rec.ID+"/comments", "alice", nil, &list)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "first", list.Items[0].Content)

	status = call(t, srv, http.MethodGet, "/posts/"+rec.ID+"/comments?limit=abc", "alice", nil, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestAPI_Moderation(t *testing.T) {
	srv := newTestServer(t)
	createPost(t, srv, "spammer", draftRequest{Text: "buy now"})

	status := call(t, srv, http.MethodPut, "/moderation/mutes/spammer", "alice", nil, nil)
	require.Equal(t, http.StatusNoContent, status)
	status = call(t, srv, http.MethodPut, "/moderation/mutes/spammer", "alice", nil, nil)
	assert.Equal(t, http.StatusConflict, status)
	status = call(t, srv, http.MethodPut, "/moderation/blocks/alice", "alice", nil, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	var page feedResponse
	status = call(t, srv, http.MethodGet, "/feed", "alice", nil, &page)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, page.Items)

	var snap moderation.Snapshot
	status = call(t, srv, http.MethodGet, "/moderation", "alice", nil, &snap)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []string{"spammer"}, snap.Muted)
	assert.True(t, snap.AutoHideReported)

	status = call(t, srv, http.MethodDelete, "/moderation/mutes/spammer", "alice", nil, nil)
	assert.Equal(t, http.StatusNoContent, status)
	status = call(t, srv, http.MethodDelete, "/moderation/mutes/spammer", "alice", nil, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status = call(t, srv, http.MethodPut, "/moderation/auto-hide", "alice", autoHideRequest{}, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	off := false
	status = call(t, srv, http.MethodPut, "/moderation/auto-hide", "alice", autoHideRequest{Enabled: &off}, nil)
	assert.Equal(t, http.StatusNoContent, status)
}

func TestAPI_Report(t *testing.T) {
	srv := newTestServer(t)
	rec := createPost(t, srv, "spammer", draftRequest{Text: "buy now"})

	status := call(t, srv, http.MethodPost, "/moderation/reports", "alice", reportRequest{
		ContentType: "post", ContentID: rec.ID, Reason: "nonsense",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	var report domain.Report
	status = call(t, srv, http.MethodPost, "/moderation/reports", "alice", reportRequest{
		ContentType: "post", ContentID: rec.ID, Reason: "spam",
	}, &report)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "spammer", report.TargetAuthor)
	assert.Equal(t, domain.ReasonSpam, report.Reason)

	// при включённом автоскрытии пост пропадает из ленты жалобщика
	var page feedResponse
	status = call(t, srv, http.MethodGet, "/feed", "alice", nil, &page)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, page.Items)
}

func TestAPI_Healthz(t *testing.T) {
	srv := newTestServer(t)
	resp, err := srv.Client().Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAPI_Bookmarks(t *testing.T) {
	srv := newTestServer(t)
	orig := createPost(t, srv, "alice", draftRequest{Text: "original"})
	var rp repostResponse
	require.Equal(t, http.StatusOK, call(t, srv, http.MethodPost, "/posts/"+orig.ID+"/repost", "bob", nil, &rp))

	var page feedResponse
	require.Equal(t, http.StatusOK, call(t, srv, http.MethodGet, "/feed", "carol", nil, &page))
	require.Len(t, page.Items, 2)
	repostID := page.Items[0].Post.ID

	var added bookmarkResponse
	status := call(t, srv, http.MethodPut, "/posts/"+repostID+"/bookmarks", "carol", nil, &added)
	require.Equal(t, http.StatusCreated, status)
	assert.True(t, added.Bookmarked)
	assert.Equal(t, orig.ID, added.PostID)

	status = call(t, srv, http.MethodPut, "/posts/"+orig.ID+"/bookmarks", "carol", nil, nil)
	assert.Equal(t, http.StatusConflict, status)
	status = call(t, srv, http.MethodPut, "/posts/"+orig.ID+"/bookmarks", "", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	var list bookmarksResponse
	require.Equal(t, http.StatusOK, call(t, srv, http.MethodGet, "/bookmarks", "carol", nil, &list))
	require.Len(t, list.Items, 1)
	assert.Equal(t, orig.ID, list.Items[0].Post.ID)
	assert.False(t, list.Items[0].BookmarkedAt.IsZero())
	require.NotNil(t, list.Items[0].Post.UserInteractions)
	assert.True(t, list.Items[0].Post.UserInteractions.Bookmarked)

	status = call(t, srv, http.MethodGet, "/bookmarks?limit=x", "carol", nil, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status = call(t, srv, http.MethodDelete, "/posts/"+orig.ID+"/bookmarks", "carol", nil, nil)
	assert.Equal(t, http.StatusNoContent, status)
	status = call(t, srv, http.MethodDelete, "/posts/"+orig.ID+"/bookmarks", "carol", nil, nil)
	assert.Equal(t, http.StatusNotFound, status)
}
