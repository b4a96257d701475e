package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/UkralStul/feed-engine/internal/domain"
	"github.com/UkralStul/feed-engine/internal/ledger"
	"github.com/UkralStul/feed-engine/internal/repost"
)

const (
	minPollDays = 1
	maxPollDays = 7
)

// Draft - содержимое нового поста, цитаты или комментария.
type Draft struct {
	Text        string
	Media       []string
	GifURL      string
	PollOptions []string
	// PollDays - срок опроса в днях, приводится к диапазону 1..7.
	PollDays int
}

func (d Draft) poll(now time.Time) *domain.Poll {
	if len(d.PollOptions) == 0 {
		return nil
	}
	days := min(max(d.PollDays, minPollDays), maxPollDays)
	poll := domain.NewPoll(d.PollOptions, now.Add(time.Duration(days)*24*time.Hour))
	return &poll
}

func (d Draft) validate(now time.Time) error {
	return domain.ValidateContent(d.Text, d.Media, d.GifURL, d.poll(now))
}

// CreatePost публикует оригинальный пост.
func (s *Service) CreatePost(ctx context.Context, author domain.Author, d Draft) (domain.Original, error) {
	ctx, span := tracer.Start(ctx, "Service.CreatePost")
	defer span.End()

	now := s.now()
	if err := d.validate(now); err != nil {
		return domain.Original{}, err
	}
	post := domain.Original{
		Header: domain.Header{ID: s.engine.NewID(), Author: author, CreatedAt: now},
		Body: domain.Body{
			Content: d.Text,
			Media:   append([]string(nil), d.Media...),
			GifURL:  d.GifURL,
			Poll:    d.poll(now),
		},
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.SavePosts(ctx, []domain.Post{post}, nil); err != nil {
		return domain.Original{}, fmt.Errorf("save post: %w", err)
	}
	s.logger.Info("post created", "id", post.ID, "author", author.Handle)
	return post, nil
}

// ToggleRepost создаёт или отменяет обычный репост actor. Возвращает id оригинала.
func (s *Service) ToggleRepost(ctx context.Context, actor domain.Author, id string) (repost.Outcome, string, error) {
	ctx, span := tracer.Start(ctx, "Service.ToggleRepost")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	before, err := s.workingSet(ctx, id)
	if err != nil {
		return repost.OutcomeNoop, "", err
	}
	after, outcome, err := s.engine.CreateNormalRepost(before, id, actor)
	if err != nil {
		return repost.OutcomeNoop, "", err
	}
	target, err := resolve(before, id)
	if err != nil {
		return repost.OutcomeNoop, "", err
	}
	if err := s.commit(ctx, before, after); err != nil {
		return repost.OutcomeNoop, "", fmt.Errorf("save repost: %w", err)
	}

	repostsTotal.WithLabelValues("normal", outcome.String()).Inc()
	s.logger.Info("repost toggled", "target", target.Head().ID, "actor", actor.Handle, "outcome", outcome.String())
	return outcome, target.Head().ID, nil
}

// QuoteRepost публикует цитату на пост id.
func (s *Service) QuoteRepost(ctx context.Context, actor domain.Author, id string, d Draft) (domain.QuoteRepost, error) {
	ctx, span := tracer.Start(ctx, "Service.QuoteRepost")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	before, err := s.workingSet(ctx, id)
	if err != nil {
		return domain.QuoteRepost{}, err
	}
	after, quote, err := s.engine.CreateQuoteRepost(before, id, actor, repost.Quote{
		Text:   d.Text,
		Media:  d.Media,
		GifURL: d.GifURL,
		Poll:   d.poll(s.now()),
	})
	if err != nil {
		repostsTotal.WithLabelValues("quote", "rejected").Inc()
		return domain.QuoteRepost{}, err
	}
	if err := s.commit(ctx, before, after); err != nil {
		return domain.QuoteRepost{}, fmt.Errorf("save quote: %w", err)
	}

	repostsTotal.WithLabelValues("quote", "created").Inc()
	s.logger.Info("quote created", "id", quote.ID, "target", quote.OriginalPostID, "actor", actor.Handle)
	return quote, nil
}

// DeletePost удаляет пост автора вместе с репостами и цитатами на него.
func (s *Service) DeletePost(ctx context.Context, actor, id string) error {
	ctx, span := tracer.Start(ctx, "Service.DeletePost")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	got, err := s.store.GetPostsByIDs(ctx, []string{id})
	if err != nil {
		return err
	}
	victim, ok := got[id]
	if !ok {
		return fmt.Errorf("post with id %s: %w", id, domain.ErrNotFound)
	}
	if victim.Head().Author.Handle != actor {
		return fmt.Errorf("post %s belongs to %s: %w", id, victim.Head().Author.Handle, domain.ErrForbidden)
	}

	before, err := s.store.RelatedPosts(ctx, id)
	if err != nil {
		return err
	}
	if targetID, isRepost := domain.OriginalPostID(victim); isRepost {
		targets, err := s.store.GetPostsByIDs(ctx, []string{targetID})
		if err != nil {
			return err
		}
		if t, ok := targets[targetID]; ok {
			before = append(before, t)
		}
	}

	after, err := repost.DeletePost(before, id)
	if err != nil {
		return err
	}
	if err := s.commit(ctx, before, after); err != nil {
		return fmt.Errorf("delete post: %w", err)
	}

	removed := len(before) - len(after)
	postsDeleted.Add(float64(removed))
	s.logger.Info("post deleted", "id", id, "actor", actor, "removed", removed)
	return nil
}

// ToggleLike переключает лайк viewer. Лайк обычного репоста ставится оригиналу.
func (s *Service) ToggleLike(ctx context.Context, viewer, id string) (domain.Displayable, error) {
	ctx, span := tracer.Start(ctx, "Service.ToggleLike")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	before, err := s.workingSet(ctx, id)
	if err != nil {
		return nil, err
	}
	st, err := s.interactions(ctx, viewer, before)
	if err != nil {
		return nil, err
	}
	projected := markLiked(before, st.liked)
	after, on, err := repost.ToggleLike(projected, id)
	if err != nil {
		return nil, err
	}
	target, err := resolve(after, id)
	if err != nil {
		return nil, err
	}
	if err := s.store.SetPostLike(ctx, viewer, target.Head().ID, on); err != nil {
		return nil, fmt.Errorf("save like: %w", err)
	}
	if err := s.commit(ctx, before, after); err != nil {
		return nil, fmt.Errorf("save like: %w", err)
	}
	s.logger.Debug("like toggled", "target", target.Head().ID, "viewer", viewer, "liked", on)
	return target, nil
}

// VotePoll записывает голос viewer в опросе поста id.
func (s *Service) VotePoll(ctx context.Context, viewer, id string, option int) (domain.Poll, error) {
	ctx, span := tracer.Start(ctx, "Service.VotePoll")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	before, err := s.workingSet(ctx, id)
	if err != nil {
		return domain.Poll{}, err
	}
	target, err := resolve(before, id)
	if err != nil {
		return domain.Poll{}, err
	}
	poll := target.Payload().Poll
	if poll == nil {
		return domain.Poll{}, fmt.Errorf("poll of post %s: %w", target.Head().ID, domain.ErrNotFound)
	}

	now := s.now()
	next, err := ledger.Apply(*poll, viewer, option, now)
	if err != nil {
		votesTotal.WithLabelValues("post", voteStatus(err)).Inc()
		return domain.Poll{}, err
	}
	after, err := repost.ReplacePoll(before, target.Head().ID, next)
	if err != nil {
		return domain.Poll{}, err
	}
	if err := s.commit(ctx, before, after); err != nil {
		return domain.Poll{}, fmt.Errorf("save vote: %w", err)
	}

	votesTotal.WithLabelValues("post", "ok").Inc()
	return ledger.Project(next, viewer, now), nil
}

func voteStatus(err error) string {
	switch {
	case errors.Is(err, domain.ErrPollClosed):
		return "closed"
	case errors.Is(err, domain.ErrInvalidOption):
		return "invalid_option"
	}
	return "error"
}

// resolve находит в наборе пост id и возвращает то, что для него показывается.
func resolve(posts []domain.Post, id string) (domain.Displayable, error) {
	idx := domain.NewIndex(posts)
	p, ok := idx.Get(id)
	if !ok {
		return nil, fmt.Errorf("post with id %s: %w", id, domain.ErrNotFound)
	}
	return domain.ResolveDisplayPost(p, idx)
}

func markLiked(posts []domain.Post, liked map[string]bool) []domain.Post {
	out := make([]domain.Post, len(posts))
	for i, p := range posts {
		out[i] = p
		if d, ok := p.(domain.Displayable); ok {
			b := d.Payload()
			b.Interactions.Liked = liked[p.Head().ID]
			out[i] = domain.WithPayload(d, b)
		}
	}
	return out
}
