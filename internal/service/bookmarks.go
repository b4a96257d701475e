package service

import (
	"context"
	"fmt"
	"time"

	"github.com/UkralStul/feed-engine/internal/domain"
	"github.com/UkralStul/feed-engine/internal/feed"
	"github.com/UkralStul/feed-engine/internal/moderation"
	"github.com/UkralStul/feed-engine/internal/storage"
)

// BookmarkedRow - сохранённый пост и время, когда зритель его сохранил.
type BookmarkedRow struct {
	feed.Row
	BookmarkedAt time.Time
}

// Bookmark сохраняет пост id в закладки viewer. Закладка на обычный репост
// ставится оригиналу. Возвращает id сохранённого поста.
func (s *Service) Bookmark(ctx context.Context, viewer, id string) (string, error) {
	ctx, span := tracer.Start(ctx, "Service.Bookmark")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	target, err := s.bookmarkTarget(ctx, id)
	if err != nil {
		return "", err
	}
	b := domain.Bookmark{Viewer: viewer, PostID: target, CreatedAt: s.now()}
	if err := s.store.AddBookmark(ctx, b); err != nil {
		return "", err
	}
	bookmarksTotal.WithLabelValues("add").Inc()
	s.logger.Debug("bookmark added", "target", target, "viewer", viewer)
	return target, nil
}

// Unbookmark убирает закладку viewer с поста id.
func (s *Service) Unbookmark(ctx context.Context, viewer, id string) error {
	ctx, span := tracer.Start(ctx, "Service.Unbookmark")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	target, err := s.bookmarkTarget(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.RemoveBookmark(ctx, viewer, target); err != nil {
		return err
	}
	bookmarksTotal.WithLabelValues("remove").Inc()
	s.logger.Debug("bookmark removed", "target", target, "viewer", viewer)
	return nil
}

func (s *Service) bookmarkTarget(ctx context.Context, id string) (string, error) {
	set, err := s.workingSet(ctx, id)
	if err != nil {
		return "", err
	}
	target, err := resolve(set, id)
	if err != nil {
		return "", err
	}
	return target.Head().ID, nil
}

// Bookmarks возвращает страницу закладок viewer, новые первыми.
// Скрытые модерацией посты пропускаются.
func (s *Service) Bookmarks(ctx context.Context, viewer string, args storage.ListArgs) ([]BookmarkedRow, error) {
	ctx, span := tracer.Start(ctx, "Service.Bookmarks")
	defer span.End()

	if args.Limit <= 0 {
		args.Limit = DefaultFeedLimit
	}
	args.Limit = min(args.Limit, MaxFeedLimit)

	marks, err := s.store.ListBookmarks(ctx, viewer, args)
	if err != nil {
		return nil, fmt.Errorf("list bookmarks: %w", err)
	}
	ids := make([]string, len(marks))
	for i, b := range marks {
		ids[i] = b.PostID
	}
	found, err := s.store.GetPostsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load bookmarked posts: %w", err)
	}
	posts := make([]domain.Post, 0, len(found))
	for _, id := range ids {
		if p, ok := found[id]; ok {
			posts = append(posts, p)
		}
	}

	snap, err := s.moderation.Snapshot(ctx, viewer)
	if err != nil {
		return nil, fmt.Errorf("load moderation: %w", err)
	}
	projected, err := s.project(ctx, viewer, moderation.Posts(posts, snap))
	if err != nil {
		return nil, err
	}

	savedAt := make(map[string]time.Time, len(marks))
	for _, b := range marks {
		savedAt[b.PostID] = b.CreatedAt
	}
	rows := make([]BookmarkedRow, 0, len(projected))
	for _, p := range projected {
		d, ok := p.(domain.Displayable)
		if !ok {
			continue
		}
		rows = append(rows, BookmarkedRow{
			Row:          feed.Row{Post: p, Display: d},
			BookmarkedAt: savedAt[p.Head().ID],
		})
	}
	return rows, nil
}
