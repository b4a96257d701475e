package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/UkralStul/feed-engine/internal/domain"
	"github.com/UkralStul/feed-engine/internal/service"
)

func demoUser(handle, name string) domain.Author {
	return domain.Author{ID: handle, Handle: handle, DisplayName: name}
}

func fillWithMockData(ctx context.Context, svc *service.Service, log *slog.Logger) error {
	alice := demoUser("alice", "Alice")
	bob := demoUser("bob", "Bob")
	carol := demoUser("carol", "Carol")

	// 1. Оригинальный пост.
	post, err := svc.CreatePost(ctx, alice, service.Draft{
		Text: "Первый пост в ленте. Здесь обсуждаем репосты и цитаты.",
	})
	if err != nil {
		return fmt.Errorf("fillWithMockData: failed to create post: %w", err)
	}

	// 2. Пост с опросом.
	pollPost, err := svc.CreatePost(ctx, bob, service.Draft{
		Text:        "Табы или пробелы?",
		PollOptions: []string{"Табы", "Пробелы"},
		PollDays:    3,
	})
	if err != nil {
		return fmt.Errorf("fillWithMockData: failed to create poll post: %w", err)
	}
	if _, err := svc.VotePoll(ctx, carol.Handle, pollPost.ID, 0); err != nil {
		return fmt.Errorf("fillWithMockData: failed to vote: %w", err)
	}

	// 3. Обычный репост и цитата первого поста.
	if _, _, err := svc.ToggleRepost(ctx, bob, post.ID); err != nil {
		return fmt.Errorf("fillWithMockData: failed to repost: %w", err)
	}
	quote, err := svc.QuoteRepost(ctx, carol, post.ID, service.Draft{Text: "Согласна, отличная тема."})
	if err != nil {
		return fmt.Errorf("fillWithMockData: failed to quote: %w", err)
	}

	// 4. Комментарий и лайк.
	if _, err := svc.CreateComment(ctx, bob, post.ID, service.Draft{Text: "Отличный пост!"}); err != nil {
		return fmt.Errorf("fillWithMockData: failed to create comment: %w", err)
	}
	if _, err := svc.ToggleLike(ctx, alice.Handle, quote.ID); err != nil {
		return fmt.Errorf("fillWithMockData: failed to like: %w", err)
	}

	log.Info("mock data filled", "post", post.ID, "poll", pollPost.ID, "quote", quote.ID)
	return nil
}
