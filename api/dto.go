package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/UkralStul/feed-engine/internal/domain"
	"github.com/UkralStul/feed-engine/internal/feed"
	"github.com/UkralStul/feed-engine/internal/ledger"
	"github.com/UkralStul/feed-engine/internal/service"
)

type viewerKey struct{}

// requireViewer отклоняет запрос без заголовка зрителя.
func requireViewer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handle := strings.TrimSpace(r.Header.Get(ViewerHeader))
		if handle == "" {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: ViewerHeader + " header is required"})
			return
		}
		name := strings.TrimSpace(r.Header.Get(ViewerNameHeader))
		if name == "" {
			name = handle
		}
		author := domain.Author{ID: handle, Handle: handle, DisplayName: name}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), viewerKey{}, author)))
	})
}

func viewer(r *http.Request) domain.Author {
	if a, ok := r.Context().Value(viewerKey{}).(domain.Author); ok {
		return a
	}
	handle := strings.TrimSpace(r.Header.Get(ViewerHeader))
	return domain.Author{ID: handle, Handle: handle, DisplayName: handle}
}

// rowResponse - строка ленты. Display заполнен только у обычных репостов.
type rowResponse struct {
	Post       domain.Record  `json:"post"`
	Display    *domain.Record `json:"display,omitempty"`
	RepostedBy *domain.Author `json:"repostedBy,omitempty"`
}

func toRow(row feed.Row) rowResponse {
	out := rowResponse{Post: domain.ToRecord(row.Post), RepostedBy: row.RepostedBy}
	if row.Display != nil && row.Display.Head().ID != row.Post.Head().ID {
		display := domain.ToRecord(row.Display)
		out.Display = &display
	}
	return out
}

type feedResponse struct {
	Items []rowResponse `json:"items"`
}

type bookmarkResponse struct {
	Bookmarked bool   `json:"bookmarked"`
	PostID     string `json:"postId"`
}

type bookmarkedRowResponse struct {
	rowResponse
	BookmarkedAt time.Time `json:"bookmarkedAt"`
}

type bookmarksResponse struct {
	Items []bookmarkedRowResponse `json:"items"`
}

type pollRequest struct {
	Options      []string `json:"options"`
	DurationDays int      `json:"durationDays"`
}

type draftRequest struct {
	Text   string       `json:"text"`
	Media  []string     `json:"media"`
	GifURL string       `json:"gifUrl"`
	Poll   *pollRequest `json:"poll"`
}

func (d draftRequest) toDraft() service.Draft {
	out := service.Draft{Text: d.Text, Media: d.Media, GifURL: d.GifURL}
	if d.Poll != nil {
		out.PollOptions = d.Poll.Options
		out.PollDays = d.Poll.DurationDays
	}
	return out
}

type voteRequest struct {
	Option *int `json:"option"`
}

type pollResponse struct {
	domain.Poll
	Results    []int `json:"results"`
	TotalVotes int   `json:"totalVotes"`
}

func toPoll(p domain.Poll) pollResponse {
	results, total := ledger.Results(p)
	return pollResponse{Poll: p, Results: results, TotalVotes: total}
}

type repostResponse struct {
	Outcome string      `json:"outcome"`
	Target  rowResponse `json:"target"`
}

type likeResponse struct {
	Liked bool        `json:"liked"`
	Post  rowResponse `json:"post"`
}

type reportRequest struct {
	ContentType string `json:"contentType"`
	ContentID   string `json:"contentId"`
	Reason      string `json:"reason"`
	Description string `json:"description"`
}

type autoHideRequest struct {
	Enabled *bool `json:"enabled"`
}
