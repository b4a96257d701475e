// Package service связывает чистое ядро ленты с хранилищем: грузит рабочий
// набор постов, применяет к нему операцию и сохраняет разницу.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/UkralStul/feed-engine/internal/domain"
	"github.com/UkralStul/feed-engine/internal/ledger"
	"github.com/UkralStul/feed-engine/internal/moderation"
	"github.com/UkralStul/feed-engine/internal/repost"
	"github.com/UkralStul/feed-engine/internal/storage"
)

const (
	DefaultFeedLimit = 50
	MaxFeedLimit     = 200
)

var tracer = otel.Tracer("github.com/UkralStul/feed-engine/internal/service")

// Invalidator сбрасывает закэшированный снимок модерации зрителя.
type Invalidator interface {
	Invalidate(ctx context.Context, viewer string) error
}

// Service - точка входа для всех операций ленты.
// Мутации выполняются под одной блокировкой: каждая читает актуальное
// состояние непосредственно перед решением.
type Service struct {
	store      storage.Storage
	moderation moderation.Loader
	engine     *repost.Engine
	logger     *slog.Logger
	now        func() time.Time

	mu sync.Mutex
}

type Option func(*Service)

// WithModerationLoader подменяет источник снимков модерации, например кэшем.
func WithModerationLoader(l moderation.Loader) Option {
	return func(s *Service) { s.moderation = l }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
		s.engine.Now = now
	}
}

func WithIDGenerator(newID func() string) Option {
	return func(s *Service) { s.engine.NewID = newID }
}

func New(store storage.Storage, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		store:      store,
		moderation: moderation.StoreLoader{Source: store},
		engine:     repost.New(),
		logger:     logger.With("component", "service"),
		now:        func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// workingSet грузит всё, что может затронуть операция над постом id:
// сам пост, его оригинал, если это обычный репост, и все записи,
// которые ссылаются на оригинал.
func (s *Service) workingSet(ctx context.Context, id string) ([]domain.Post, error) {
	got, err := s.store.GetPostsByIDs(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	p, ok := got[id]
	if !ok {
		return nil, fmt.Errorf("post with id %s: %w", id, domain.ErrNotFound)
	}
	root := id
	if r, ok := p.(domain.NormalRepost); ok {
		root = r.OriginalPostID
	}
	return s.store.RelatedPosts(ctx, root)
}

// commit сохраняет разницу между рабочим набором до и после операции.
func (s *Service) commit(ctx context.Context, before, after []domain.Post) error {
	prev := domain.NewIndex(before)
	next := domain.NewIndex(after)

	var upserts []domain.Post
	for _, p := range after {
		old, ok := prev[p.Head().ID]
		if !ok || !reflect.DeepEqual(domain.Canonical(old), domain.Canonical(p)) {
			upserts = append(upserts, p)
		}
	}
	var deletes []string
	for _, p := range before {
		if _, ok := next[p.Head().ID]; !ok {
			deletes = append(deletes, p.Head().ID)
		}
	}
	if len(upserts) == 0 && len(deletes) == 0 {
		return nil
	}
	trace.SpanFromContext(ctx).AddEvent("saving posts")
	return s.store.SavePosts(ctx, upserts, deletes)
}

// viewerState - какие посты зритель лайкнул, репостнул и сохранил.
type viewerState struct {
	liked, reposted, bookmarked map[string]bool
}

// interactions грузит состояние viewer для постов с содержимым.
func (s *Service) interactions(ctx context.Context, viewer string, posts []domain.Post) (viewerState, error) {
	var ids []string
	for _, p := range posts {
		if _, ok := p.(domain.Displayable); ok {
			ids = append(ids, p.Head().ID)
		}
	}
	st := viewerState{liked: map[string]bool{}, reposted: map[string]bool{}, bookmarked: map[string]bool{}}
	if viewer == "" || len(ids) == 0 {
		return st, nil
	}
	var err error
	if st.liked, err = s.store.PostLikes(ctx, viewer, ids); err != nil {
		return viewerState{}, fmt.Errorf("load likes: %w", err)
	}
	if st.reposted, err = s.store.RepostedTargets(ctx, viewer, ids); err != nil {
		return viewerState{}, fmt.Errorf("load reposts: %w", err)
	}
	if st.bookmarked, err = s.store.PostBookmarks(ctx, viewer, ids); err != nil {
		return viewerState{}, fmt.Errorf("load bookmarks: %w", err)
	}
	return st, nil
}

// project проставляет состояние зрителя: лайк, репост, закладку, его голос
// и закрытость опросов. Результат только для показа, сохранять его нельзя.
func (s *Service) project(ctx context.Context, viewer string, posts []domain.Post) ([]domain.Post, error) {
	st, err := s.interactions(ctx, viewer, posts)
	if err != nil {
		return nil, err
	}

	now := s.now()
	out := make([]domain.Post, len(posts))
	for i, p := range posts {
		d, ok := p.(domain.Displayable)
		if !ok {
			out[i] = p
			continue
		}
		id := p.Head().ID
		b := d.Payload()
		b.Interactions = domain.Interactions{Liked: st.liked[id], Bookmarked: st.bookmarked[id]}
		if b.Poll != nil {
			poll := ledger.Project(*b.Poll, viewer, now)
			b.Poll = &poll
		}
		out[i] = domain.WithPayload(d, b)
	}
	return repost.MarkReposted(out, st.reposted), nil
}

func (s *Service) projectComments(ctx context.Context, viewer string, comments []domain.Comment) ([]domain.Comment, error) {
	liked := map[string]bool{}
	if viewer != "" && len(comments) > 0 {
		ids := make([]string, len(comments))
		for i, c := range comments {
			ids[i] = c.ID
		}
		var err error
		if liked, err = s.store.CommentLikes(ctx, viewer, ids); err != nil {
			return nil, fmt.Errorf("load comment likes: %w", err)
		}
	}
	now := s.now()
	out := make([]domain.Comment, len(comments))
	for i, c := range comments {
		c.UserLiked = liked[c.ID]
		if c.Poll != nil {
			poll := ledger.Project(*c.Poll, viewer, now)
			c.Poll = &poll
		}
		out[i] = c
	}
	return out, nil
}

func (s *Service) invalidate(ctx context.Context, viewer string) {
	inv, ok := s.moderation.(Invalidator)
	if !ok {
		return
	}
	if err := inv.Invalidate(ctx, viewer); err != nil {
		s.logger.Warn("failed to invalidate moderation cache", "viewer", viewer, "error", err)
	}
}
