package service

import (
	"context"
	"fmt"

	"github.com/UkralStul/feed-engine/internal/domain"
	"github.com/UkralStul/feed-engine/internal/ledger"
	"github.com/UkralStul/feed-engine/internal/moderation"
	"github.com/UkralStul/feed-engine/internal/repost"
	"github.com/UkralStul/feed-engine/internal/storage"
)

// Comments возвращает комментарии к посту глазами viewer.
// Комментарии к обычному репосту - это комментарии к его оригиналу.
func (s *Service) Comments(ctx context.Context, viewer, postID string, args storage.PaginationArgs) ([]domain.Comment, error) {
	ctx, span := tracer.Start(ctx, "Service.Comments")
	defer span.End()

	posts, err := s.workingSet(ctx, postID)
	if err != nil {
		return nil, err
	}
	target, err := resolve(posts, postID)
	if err != nil {
		return nil, err
	}
	comments, err := s.store.GetCommentsByPostID(ctx, target.Head().ID, args)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	snap, err := s.moderation.Snapshot(ctx, viewer)
	if err != nil {
		return nil, fmt.Errorf("load moderation: %w", err)
	}
	return s.projectComments(ctx, viewer, moderation.Comments(comments, snap))
}

// CreateComment добавляет комментарий и увеличивает счётчик комментариев поста.
func (s *Service) CreateComment(ctx context.Context, author domain.Author, postID string, d Draft) (domain.Comment, error) {
	ctx, span := tracer.Start(ctx, "Service.CreateComment")
	defer span.End()

	now := s.now()
	if err := d.validate(now); err != nil {
		return domain.Comment{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	before, err := s.workingSet(ctx, postID)
	if err != nil {
		return domain.Comment{}, err
	}
	target, err := resolve(before, postID)
	if err != nil {
		return domain.Comment{}, err
	}
	after, err := repost.AdjustComments(before, postID, 1)
	if err != nil {
		return domain.Comment{}, err
	}

	comment := domain.Comment{
		ID:        s.engine.NewID(),
		PostID:    target.Head().ID,
		Author:    author,
		Content:   d.Text,
		Media:     append([]string(nil), d.Media...),
		GifURL:    d.GifURL,
		Poll:      d.poll(now),
		CreatedAt: now,
	}
	if err := s.store.SaveComment(ctx, comment); err != nil {
		return domain.Comment{}, fmt.Errorf("save comment: %w", err)
	}
	if err := s.commit(ctx, before, after); err != nil {
		return domain.Comment{}, fmt.Errorf("save comment count: %w", err)
	}
	s.logger.Info("comment created", "id", comment.ID, "post", comment.PostID, "author", author.Handle)
	return comment, nil
}

// ToggleCommentLike переключает лайк viewer на комментарии.
func (s *Service) ToggleCommentLike(ctx context.Context, viewer, commentID string) (domain.Comment, error) {
	ctx, span := tracer.Start(ctx, "Service.ToggleCommentLike")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	comment, err := s.store.GetCommentByID(ctx, commentID)
	if err != nil {
		return domain.Comment{}, err
	}
	likes, err := s.store.CommentLikes(ctx, viewer, []string{commentID})
	if err != nil {
		return domain.Comment{}, err
	}
	liked := !likes[commentID]
	if liked {
		comment.Likes++
	} else {
		comment.Likes = max(comment.Likes-1, 0)
	}
	if err := s.store.SetCommentLike(ctx, viewer, commentID, liked); err != nil {
		return domain.Comment{}, fmt.Errorf("save comment like: %w", err)
	}
	if err := s.store.SaveComment(ctx, comment); err != nil {
		return domain.Comment{}, fmt.Errorf("save comment: %w", err)
	}

	projected, err := s.projectComments(ctx, viewer, []domain.Comment{comment})
	if err != nil {
		return domain.Comment{}, err
	}
	return projected[0], nil
}

// VoteCommentPoll записывает голос viewer в опросе комментария.
func (s *Service) VoteCommentPoll(ctx context.Context, viewer, commentID string, option int) (domain.Poll, error) {
	ctx, span := tracer.Start(ctx, "Service.VoteCommentPoll")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	comment, err := s.store.GetCommentByID(ctx, commentID)
	if err != nil {
		return domain.Poll{}, err
	}
	if comment.Poll == nil {
		return domain.Poll{}, fmt.Errorf("poll of comment %s: %w", commentID, domain.ErrNotFound)
	}

	now := s.now()
	next, err := ledger.Apply(*comment.Poll, viewer, option, now)
	if err != nil {
		votesTotal.WithLabelValues("comment", voteStatus(err)).Inc()
		return domain.Poll{}, err
	}
	comment.Poll = &next
	if err := s.store.SaveComment(ctx, comment); err != nil {
		return domain.Poll{}, fmt.Errorf("save vote: %w", err)
	}

	votesTotal.WithLabelValues("comment", "ok").Inc()
	return ledger.Project(next, viewer, now), nil
}
