// Package repost содержит чистые операции над коллекцией постов:
// обычные репосты, цитаты, удаление с каскадом и лайки.
// Каждая операция возвращает новую коллекцию и не меняет входную.
package repost

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/UkralStul/feed-engine/internal/domain"
)

// Outcome - результат переключения обычного репоста.
type Outcome int

const (
	OutcomeNoop Outcome = iota
	OutcomeCreated
	OutcomeUndone
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCreated:
		return "created"
	case OutcomeUndone:
		return "undone"
	}
	return "noop"
}

// Engine выдаёт идентификаторы и время для новых записей.
type Engine struct {
	NewID func() string
	Now   func() time.Time
}

func New() *Engine {
	return &Engine{
		NewID: uuid.NewString,
		Now:   func() time.Time { return time.Now().UTC() },
	}
}

// Quote - содержимое цитаты.
type Quote struct {
	Text   string
	Media  []string
	GifURL string
	Poll   *domain.Poll
}

// target находит пост targetID и сворачивает обычный репост до его оригинала.
// Итоговая цель должна присутствовать в коллекции, иначе её счётчики некуда записать.
func target(posts []domain.Post, targetID string) (domain.Displayable, error) {
	idx := domain.NewIndex(posts)
	p, ok := idx.Get(targetID)
	if !ok {
		return nil, fmt.Errorf("post %s: %w", targetID, domain.ErrNotFound)
	}
	d, err := domain.ResolveDisplayPost(p, idx)
	if err != nil {
		return nil, err
	}
	if _, ok := idx.Get(d.Head().ID); !ok {
		return nil, fmt.Errorf("post %s: %w", d.Head().ID, domain.ErrNotFound)
	}
	return d, nil
}

// CreateNormalRepost переключает обычный репост actor на пост targetID.
// Если репост уже есть, он отменяется. Репост репоста становится репостом оригинала.
func (e *Engine) CreateNormalRepost(posts []domain.Post, targetID string, actor domain.Author) ([]domain.Post, Outcome, error) {
	t, err := target(posts, targetID)
	if err != nil {
		return posts, OutcomeNoop, err
	}
	originalID := t.Head().ID

	if HasNormalRepost(posts, actor.Handle, originalID) {
		return e.UndoNormalRepost(posts, originalID, actor)
	}

	repost := domain.NormalRepost{
		Header:         domain.Header{ID: e.NewID(), Author: actor, CreatedAt: e.Now()},
		OriginalPostID: originalID,
	}
	out := make([]domain.Post, 0, len(posts)+1)
	out = append(out, repost)
	out = append(out, posts...)
	out, _ = domain.Patch(out, originalID, func(b domain.Body) domain.Body {
		b.Stats.Reposts++
		b.Interactions.Reposted = true
		return b
	})
	return out, OutcomeCreated, nil
}

// UndoNormalRepost удаляет обычный репост actor на originalID.
// Если репоста нет, возвращает OutcomeNoop и исходную коллекцию.
func (e *Engine) UndoNormalRepost(posts []domain.Post, originalID string, actor domain.Author) ([]domain.Post, Outcome, error) {
	removed := 0
	out := make([]domain.Post, 0, len(posts))
	for _, p := range posts {
		if r, ok := p.(domain.NormalRepost); ok && r.OriginalPostID == originalID && r.Author.Handle == actor.Handle {
			removed++
			continue
		}
		out = append(out, p)
	}
	if removed == 0 {
		return posts, OutcomeNoop, nil
	}
	out, _ = domain.Patch(out, originalID, func(b domain.Body) domain.Body {
		b.Stats.Reposts = max(b.Stats.Reposts-removed, 0)
		b.Interactions.Reposted = false
		return b
	})
	return out, OutcomeUndone, nil
}

// CreateQuoteRepost добавляет цитату actor на пост targetID.
// Флаг reposted цели не меняется: он относится только к обычным репостам.
func (e *Engine) CreateQuoteRepost(posts []domain.Post, targetID string, actor domain.Author, q Quote) ([]domain.Post, domain.QuoteRepost, error) {
	if err := domain.ValidateContent(q.Text, q.Media, q.GifURL, q.Poll); err != nil {
		return posts, domain.QuoteRepost{}, err
	}
	t, err := target(posts, targetID)
	if err != nil {
		return posts, domain.QuoteRepost{}, err
	}

	quote := domain.QuoteRepost{
		Header: domain.Header{ID: e.NewID(), Author: actor, CreatedAt: e.Now()},
		Body: domain.Body{
			Content: q.Text,
			Media:   append([]string(nil), q.Media...),
			GifURL:  q.GifURL,
		},
		OriginalPostID: t.Head().ID,
		QuotedPost:     domain.Snapshot(t),
	}
	if q.Poll != nil {
		poll := domain.NewPoll(q.Poll.Options, q.Poll.ExpiresAt)
		quote.Poll = &poll
	}
	out := make([]domain.Post, 0, len(posts)+1)
	out = append(out, quote)
	out = append(out, posts...)
	out, _ = domain.Patch(out, t.Head().ID, func(b domain.Body) domain.Body {
		b.Stats.Reposts++
		return b
	})
	return out, quote, nil
}

// HasNormalRepost сообщает, есть ли в коллекции обычный репост handle на originalID.
func HasNormalRepost(posts []domain.Post, handle, originalID string) bool {
	for _, p := range posts {
		if r, ok := p.(domain.NormalRepost); ok && r.OriginalPostID == originalID && r.Author.Handle == handle {
			return true
		}
	}
	return false
}
