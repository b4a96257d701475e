package feed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UkralStul/feed-engine/internal/domain"
)

func author(handle string) domain.Author {
	return domain.Author{ID: handle, Handle: handle}
}

func original(id, handle string) domain.Original {
	return domain.Original{Header: domain.Header{ID: id, Author: author(handle)}, Body: domain.Body{Content: id}}
}

func repost(id, handle, target string) domain.NormalRepost {
	return domain.NormalRepost{Header: domain.Header{ID: id, Author: author(handle)}, OriginalPostID: target}
}

func rowIDs(rows []Row) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Post.Head().ID)
	}
	return out
}

func TestCompose_RepostedByAnnotation(t *testing.T) {
	posts := []domain.Post{
		repost("r1", "bob", "p1"),
		original("p1", "alice"),
	}

	rows := Compose(posts, "carol", nil)
	require.Equal(t, []string{"r1", "p1"}, rowIDs(rows))
	assert.Equal(t, "p1", rows[0].Display.Head().ID)
	require.NotNil(t, rows[1].RepostedBy)
	assert.Equal(t, "bob", rows[1].RepostedBy.Handle)
	assert.Nil(t, rows[0].RepostedBy)
}

func TestCompose_HidesViewersOwnRepost(t *testing.T) {
	posts := []domain.Post{
		repost("r1", "bob", "p1"),
		original("p1", "alice"),
	}

	rows := Compose(posts, "bob", nil)
	require.Equal(t, []string{"p1"}, rowIDs(rows))
	assert.Nil(t, rows[0].RepostedBy)
}

func TestCompose_HidesRepostsOfViewersPosts(t *testing.T) {
	posts := []domain.Post{
		repost("r1", "bob", "p1"),
		original("p1", "alice"),
	}

	rows := Compose(posts, "alice", nil)
	require.Equal(t, []string{"p1"}, rowIDs(rows))
	require.NotNil(t, rows[0].RepostedBy)
	assert.Equal(t, "bob", rows[0].RepostedBy.Handle)
}

func TestCompose_FirstNonViewerReposter(t *testing.T) {
	posts := []domain.Post{
		repost("r1", "carol", "p1"),
		repost("r2", "bob", "p1"),
		original("p1", "alice"),
	}

	rows := Compose(posts, "carol", nil)
	require.Equal(t, []string{"r2", "p1"}, rowIDs(rows))
	assert.Equal(t, "bob", rows[1].RepostedBy.Handle)
}

func TestCompose_DropsDanglingRepost(t *testing.T) {
	posts := []domain.Post{repost("r1", "bob", "gone"), original("p2", "alice")}
	assert.Equal(t, []string{"p2"}, rowIDs(Compose(posts, "carol", nil)))
}

func TestCompose_ResolvesFromExtraLookup(t *testing.T) {
	posts := []domain.Post{repost("r1", "bob", "p1")}
	extra := domain.NewIndex([]domain.Post{original("p1", "alice")})

	rows := Compose(posts, "carol", extra)
	require.Len(t, rows, 1)
	assert.Equal(t, "p1", rows[0].Display.Head().ID)
}

func TestCompose_QuoteAlwaysKept(t *testing.T) {
	q := domain.QuoteRepost{
		Header:         domain.Header{ID: "q1", Author: author("bob")},
		Body:           domain.Body{Content: "nice"},
		OriginalPostID: "p1",
	}
	posts := []domain.Post{q, original("p1", "alice")}

	rows := Compose(posts, "alice", nil)
	require.Equal(t, []string{"q1", "p1"}, rowIDs(rows))
	assert.Equal(t, "q1", rows[0].Display.Head().ID)
	assert.Nil(t, rows[1].RepostedBy)

	rows = Compose(posts, "bob", nil)
	assert.Equal(t, []string{"q1", "p1"}, rowIDs(rows))
}

func TestCompose_SelfQuoteShownToEveryone(t *testing.T) {
	q := domain.QuoteRepost{
		Header:         domain.Header{ID: "q1", Author: author("alice")},
		Body:           domain.Body{Content: "worth a re-read"},
		OriginalPostID: "p1",
	}
	posts := []domain.Post{q, original("p1", "alice")}

	for _, viewer := range []string{"alice", "carol"} {
		t.Run(viewer, func(t *testing.T) {
			rows := Compose(posts, viewer, nil)
			require.Equal(t, []string{"q1", "p1"}, rowIDs(rows))
			assert.Equal(t, "q1", rows[0].Display.Head().ID)
			assert.Equal(t, "p1", rows[1].Display.Head().ID)
			assert.Nil(t, rows[1].RepostedBy)
		})
	}
}

func TestCompose_DeduplicatesByID(t *testing.T) {
	posts := []domain.Post{original("p1", "alice"), original("p2", "bob"), original("p1", "alice")}
	assert.Equal(t, []string{"p1", "p2"}, rowIDs(Compose(posts, "", nil)))
}

func TestCompose_EmptyInput(t *testing.T) {
	assert.Empty(t, Compose(nil, "alice", nil))
}
