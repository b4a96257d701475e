package gormstore

import (
	"fmt"
	"time"

	"github.com/UkralStul/feed-engine/internal/domain"
)

// postRow - строка таблицы posts. Все три варианта поста лежат в одной таблице,
// вариант определяется колонкой kind.
type postRow struct {
	ID             string `gorm:"primaryKey;size:64"`
	Kind           string `gorm:"size:16;not null"`
	AuthorID       string `gorm:"size:64"`
	AuthorHandle   string `gorm:"size:64;not null;index"`
	AuthorName     string
	AuthorAvatar   string
	AuthorBadge    string
	Content        string         `gorm:"type:text"`
	Media          []string       `gorm:"serializer:json"`
	GifURL         string
	Poll           *domain.Poll   `gorm:"serializer:json"`
	Ballots        map[string]int `gorm:"serializer:json"`
	Likes          int            `gorm:"not null;default:0"`
	Comments       int            `gorm:"not null;default:0"`
	Reposts        int            `gorm:"not null;default:0"`
	OriginalPostID string         `gorm:"size:64;index"`
	Snapshot       *domain.Record `gorm:"serializer:json"`
	CreatedAt      time.Time      `gorm:"index"`
}

func (postRow) TableName() string { return "posts" }

type commentRow struct {
	ID           string `gorm:"primaryKey;size:64"`
	PostID       string `gorm:"size:64;not null;index"`
	AuthorID     string `gorm:"size:64"`
	AuthorHandle string `gorm:"size:64;not null"`
	AuthorName   string
	AuthorAvatar string
	AuthorBadge  string
	Content      string         `gorm:"type:text"`
	Media        []string       `gorm:"serializer:json"`
	GifURL       string
	Poll         *domain.Poll   `gorm:"serializer:json"`
	Ballots      map[string]int `gorm:"serializer:json"`
	Likes        int            `gorm:"not null;default:0"`
	CreatedAt    time.Time      `gorm:"index"`
}

func (commentRow) TableName() string { return "comments" }

type postLikeRow struct {
	Handle string `gorm:"primaryKey;size:64"`
	PostID string `gorm:"primaryKey;size:64;index"`
}

func (postLikeRow) TableName() string { return "post_likes" }

type commentLikeRow struct {
	Handle    string `gorm:"primaryKey;size:64"`
	CommentID string `gorm:"primaryKey;size:64;index"`
}

func (commentLikeRow) TableName() string { return "comment_likes" }

type bookmarkRow struct {
	Handle    string `gorm:"primaryKey;size:64"`
	PostID    string `gorm:"primaryKey;size:64;index"`
	CreatedAt time.Time
}

func (bookmarkRow) TableName() string { return "bookmarks" }

// relationRow хранит и мьюты, и блокировки: Type различает их.
type relationRow struct {
	Viewer    string `gorm:"primaryKey;size:64"`
	Target    string `gorm:"primaryKey;size:64"`
	Type      string `gorm:"primaryKey;size:8"`
	CreatedAt time.Time
}

func (relationRow) TableName() string { return "content_filters" }

const (
	relationMute  = "mute"
	relationBlock = "block"
)

type reportRow struct {
	ID           string `gorm:"primaryKey;size:64"`
	Reporter     string `gorm:"size:64;not null;index"`
	ContentType  string `gorm:"size:16;not null"`
	ContentID    string `gorm:"size:64;not null"`
	TargetAuthor string `gorm:"size:64"`
	Reason       string `gorm:"size:32;not null"`
	Description  string `gorm:"type:text"`
	CreatedAt    time.Time
}

func (reportRow) TableName() string { return "reports" }

type settingsRow struct {
	Viewer           string `gorm:"primaryKey;size:64"`
	AutoHideReported bool
}

func (settingsRow) TableName() string { return "moderation_settings" }

func toPostRow(p domain.Post) postRow {
	h := p.Head()
	row := postRow{
		ID:           h.ID,
		Kind:         string(p.Kind()),
		AuthorID:     h.Author.ID,
		AuthorHandle: h.Author.Handle,
		AuthorName:   h.Author.DisplayName,
		AuthorAvatar: h.Author.Avatar,
		AuthorBadge:  h.Author.Badge,
		CreatedAt:    h.CreatedAt,
	}
	if d, ok := p.(domain.Displayable); ok {
		b := d.Payload()
		row.Content, row.Media, row.GifURL = b.Content, b.Media, b.GifURL
		row.Likes, row.Comments, row.Reposts = b.Stats.Likes, b.Stats.Comments, b.Stats.Reposts
		row.Poll, row.Ballots = splitPoll(b.Poll)
	}
	switch v := p.(type) {
	case domain.NormalRepost:
		row.OriginalPostID = v.OriginalPostID
	case domain.QuoteRepost:
		row.OriginalPostID = v.OriginalPostID
		if v.QuotedPost != nil {
			snap := domain.ToRecord(*v.QuotedPost)
			row.Snapshot = &snap
		}
	}
	return row
}

func (r postRow) toDomain() (domain.Post, error) {
	rec := domain.Record{
		ID:             r.ID,
		Kind:           domain.Kind(r.Kind),
		Author:         r.author(),
		CreatedAt:      r.CreatedAt,
		Content:        r.Content,
		Media:          r.Media,
		GifURL:         r.GifURL,
		Poll:           joinPoll(r.Poll, r.Ballots),
		Stats:          &domain.Stats{Likes: r.Likes, Comments: r.Comments, Reposts: r.Reposts},
		OriginalPostID: r.OriginalPostID,
		QuotedPost:     r.Snapshot,
	}
	p, err := domain.FromRecord(rec)
	if err != nil {
		return nil, fmt.Errorf("decode post row %s: %w", r.ID, err)
	}
	return p, nil
}

func (r postRow) author() domain.Author {
	return domain.Author{ID: r.AuthorID, Handle: r.AuthorHandle, DisplayName: r.AuthorName, Avatar: r.AuthorAvatar, Badge: r.AuthorBadge}
}

func toCommentRow(c domain.Comment) commentRow {
	row := commentRow{
		ID:           c.ID,
		PostID:       c.PostID,
		AuthorID:     c.Author.ID,
		AuthorHandle: c.Author.Handle,
		AuthorName:   c.Author.DisplayName,
		AuthorAvatar: c.Author.Avatar,
		AuthorBadge:  c.Author.Badge,
		Content:      c.Content,
		Media:        c.Media,
		GifURL:       c.GifURL,
		Likes:        c.Likes,
		CreatedAt:    c.CreatedAt,
	}
	row.Poll, row.Ballots = splitPoll(c.Poll)
	return row
}

func (r commentRow) toDomain() domain.Comment {
	return domain.Comment{
		ID:        r.ID,
		PostID:    r.PostID,
		Author:    domain.Author{ID: r.AuthorID, Handle: r.AuthorHandle, DisplayName: r.AuthorName, Avatar: r.AuthorAvatar, Badge: r.AuthorBadge},
		Content:   r.Content,
		Media:     r.Media,
		GifURL:    r.GifURL,
		Poll:      joinPoll(r.Poll, r.Ballots),
		Likes:     r.Likes,
		CreatedAt: r.CreatedAt,
	}
}

// splitPoll отделяет журнал голосов: в JSON опроса он не попадает.
func splitPoll(p *domain.Poll) (*domain.Poll, map[string]int) {
	if p == nil {
		return nil, nil
	}
	poll := p.Clone()
	ballots := poll.Ballots
	poll.Ballots, poll.UserVote = nil, nil
	if ballots == nil {
		ballots = map[string]int{}
	}
	return &poll, ballots
}

func joinPoll(p *domain.Poll, ballots map[string]int) *domain.Poll {
	if p == nil {
		return nil
	}
	poll := *p
	if poll.Votes == nil {
		poll.Votes = map[int]int{}
	}
	poll.Ballots = ballots
	if poll.Ballots == nil {
		poll.Ballots = map[string]int{}
	}
	return &poll
}
