package service

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/UkralStul/feed-engine/internal/dataloader"
	"github.com/UkralStul/feed-engine/internal/domain"
	"github.com/UkralStul/feed-engine/internal/feed"
	"github.com/UkralStul/feed-engine/internal/moderation"
	"github.com/UkralStul/feed-engine/internal/storage"
)

// Feed возвращает страницу ленты viewer.
func (s *Service) Feed(ctx context.Context, viewer string, args storage.ListArgs) ([]feed.Row, error) {
	ctx, span := tracer.Start(ctx, "Service.Feed")
	defer span.End()

	if args.Limit <= 0 {
		args.Limit = DefaultFeedLimit
	}
	args.Limit = min(args.Limit, MaxFeedLimit)

	posts, err := s.store.ListPosts(ctx, args)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	extra, err := s.missingOriginals(ctx, posts)
	if err != nil {
		return nil, fmt.Errorf("load originals: %w", err)
	}

	snap, err := s.moderation.Snapshot(ctx, viewer)
	if err != nil {
		return nil, fmt.Errorf("load moderation: %w", err)
	}
	visible := moderation.FilterByBlockAndMute(posts, snap)
	rowsDropped.WithLabelValues("block_mute").Add(float64(len(posts) - len(visible)))
	unreported := moderation.FilterReportedPosts(visible, snap)
	rowsDropped.WithLabelValues("reported").Add(float64(len(visible) - len(unreported)))
	extra = moderation.Posts(extra, snap)

	projected, err := s.project(ctx, viewer, append(append([]domain.Post{}, unreported...), extra...))
	if err != nil {
		return nil, err
	}
	page, originals := projected[:len(unreported)], projected[len(unreported):]

	rows := feed.Compose(page, viewer, domain.NewIndex(originals))
	rowsDropped.WithLabelValues("composition").Add(float64(len(page) - len(rows)))
	feedSize.Observe(float64(len(rows)))

	trace.SpanFromContext(ctx).AddEvent("feed composed",
		trace.WithAttributes(
			attribute.String("viewer", viewer),
			attribute.Int("loaded", len(posts)),
			attribute.Int("rows", len(rows)),
		))
	return rows, nil
}

// Post возвращает один пост глазами viewer. Скрытый модерацией пост не найден.
func (s *Service) Post(ctx context.Context, viewer, id string) (feed.Row, error) {
	ctx, span := tracer.Start(ctx, "Service.Post")
	defer span.End()

	got, err := s.store.GetPostsByIDs(ctx, []string{id})
	if err != nil {
		return feed.Row{}, err
	}
	p, ok := got[id]
	if !ok {
		return feed.Row{}, fmt.Errorf("post with id %s: %w", id, domain.ErrNotFound)
	}
	extra, err := s.missingOriginals(ctx, []domain.Post{p})
	if err != nil {
		return feed.Row{}, err
	}

	snap, err := s.moderation.Snapshot(ctx, viewer)
	if err != nil {
		return feed.Row{}, fmt.Errorf("load moderation: %w", err)
	}
	if len(moderation.Posts([]domain.Post{p}, snap)) == 0 {
		return feed.Row{}, fmt.Errorf("post with id %s: %w", id, domain.ErrNotFound)
	}
	// скрытый оригинал прячет и репост
	extra = moderation.Posts(extra, snap)

	projected, err := s.project(ctx, viewer, append([]domain.Post{p}, extra...))
	if err != nil {
		return feed.Row{}, err
	}
	display, err := domain.ResolveDisplayPost(projected[0], domain.NewIndex(projected[1:]))
	if err != nil {
		return feed.Row{}, err
	}
	return feed.Row{Post: projected[0], Display: display}, nil
}

// missingOriginals догружает оригиналы обычных репостов, которых нет среди posts.
func (s *Service) missingOriginals(ctx context.Context, posts []domain.Post) ([]domain.Post, error) {
	have := domain.NewIndex(posts)
	var ids []string
	wanted := map[string]bool{}
	for _, p := range posts {
		r, ok := p.(domain.NormalRepost)
		if !ok || wanted[r.OriginalPostID] {
			continue
		}
		if _, ok := have[r.OriginalPostID]; ok {
			continue
		}
		wanted[r.OriginalPostID] = true
		ids = append(ids, r.OriginalPostID)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	var found map[string]domain.Post
	var err error
	if loaders, ok := dataloader.For(ctx); ok {
		found, err = loaders.LoadPosts(ctx, ids)
	} else {
		found, err = s.store.GetPostsByIDs(ctx, ids)
	}
	if err != nil {
		return nil, err
	}
	out := make([]domain.Post, 0, len(found))
	for _, id := range ids {
		if p, ok := found[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}
